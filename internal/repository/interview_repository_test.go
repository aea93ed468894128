package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/careerday-api/internal/models"
)

func interviewRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "student_id", "company_id", "job_role_id", "panel_id", "start_time", "end_time", "status", "pinned", "created_at", "updated_at"}).
		AddRow("INT-1", "S1", "C1", "R1", "P1", now, now.Add(30*time.Minute), "scheduled", false, now, now)
}

func TestInterviewRepositoryListAll(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewInterviewRepository(db)

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM interviews ORDER BY start_time, id").
		WillReturnRows(interviewRows(now))

	interviews, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, interviews, 1)
	assert.Equal(t, "INT-1", interviews[0].ID)
	assert.Equal(t, models.InterviewScheduled, interviews[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInterviewRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewInterviewRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE interviews SET status = $2, updated_at = $3 WHERE id = $1")).
		WithArgs("INT-1", models.InterviewInProgress, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateStatus(context.Background(), "INT-1", models.InterviewInProgress)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInterviewRepositoryUpdateStatusNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewInterviewRepository(db)

	mock.ExpectExec("UPDATE interviews SET status").
		WithArgs("MISSING", models.InterviewCancelled, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), "MISSING", models.InterviewCancelled)
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrNoRows) || err == sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInterviewRepositoryReplaceGenerated(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewInterviewRepository(db)

	now := time.Now()
	generated := []models.Interview{
		{ID: "INT-1", StudentID: "S1", CompanyID: "C1", JobRoleID: "R1", PanelID: "P1",
			StartTime: now, EndTime: now.Add(30 * time.Minute), Status: models.InterviewScheduled,
			CreatedAt: now, UpdatedAt: now},
		{ID: "INT-9", StudentID: "S2", CompanyID: "C2", JobRoleID: "R1", PanelID: "P1",
			StartTime: now, EndTime: now.Add(30 * time.Minute), Status: models.InterviewScheduled,
			Pinned: true, CreatedAt: now, UpdatedAt: now},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM interviews WHERE pinned = false")).
		WillReturnResult(sqlmock.NewResult(0, 3))
	// Only the non-pinned row is inserted; the pinned one survives in place.
	mock.ExpectExec("INSERT INTO interviews").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.ReplaceGenerated(context.Background(), generated)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInterviewRepositoryReplaceGeneratedRollsBack(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewInterviewRepository(db)

	now := time.Now()
	generated := []models.Interview{
		{ID: "INT-1", StudentID: "S1", CompanyID: "C1", JobRoleID: "R1", PanelID: "P1",
			StartTime: now, EndTime: now.Add(30 * time.Minute), Status: models.InterviewScheduled,
			CreatedAt: now, UpdatedAt: now},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM interviews WHERE pinned = false")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO interviews").
		WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	err := repo.ReplaceGenerated(context.Background(), generated)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
