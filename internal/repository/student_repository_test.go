package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/careerday-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestStudentRepositoryListWithApplications(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, email, created_at, updated_at FROM students ORDER BY id")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "created_at", "updated_at"}).
			AddRow("S1", "Dana", "dana@event.test", now, now).
			AddRow("S2", "Eli", "eli@event.test", now, now))
	mock.ExpectQuery("SELECT id, student_id, company_id, job_role_id, status, priority, cv_link, created_at, updated_at").
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "company_id", "job_role_id", "status", "priority", "cv_link", "created_at", "updated_at"}).
			AddRow("A1", "S1", "C1", "R1", "shortlisted", 1, "", now, now).
			AddRow("A2", "S1", "C2", "R1", "applied", nil, "", now, now))

	students, err := repo.ListWithApplications(context.Background())
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Len(t, students[0].Applications, 2)
	assert.Empty(t, students[1].Applications)
	assert.Equal(t, models.ApplicationShortlisted, students[0].Applications[0].Status)
	require.NotNil(t, students[0].Applications[0].Priority)
	assert.Equal(t, 1, *students[0].Applications[0].Priority)
	assert.Nil(t, students[0].Applications[1].Priority)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, email, created_at, updated_at FROM students WHERE id = $1")).
		WithArgs("S1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "created_at", "updated_at"}).
			AddRow("S1", "Dana", "dana@event.test", now, now))
	mock.ExpectQuery("SELECT id, student_id, company_id, job_role_id, status, priority, cv_link, created_at, updated_at").
		WithArgs("S1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "company_id", "job_role_id", "status", "priority", "cv_link", "created_at", "updated_at"}).
			AddRow("A1", "S1", "C1", "R1", "shortlisted", nil, "", now, now))

	student, err := repo.FindByID(context.Background(), "S1")
	require.NoError(t, err)
	assert.Equal(t, "Dana", student.Name)
	assert.Len(t, student.Applications, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryUpdateApplicationStatuses(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("UPDATE applications SET status").
		WithArgs(models.ApplicationWaitlisted, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))

	err := repo.UpdateApplicationStatuses(context.Background(), []string{"A1", "A2"}, models.ApplicationWaitlisted)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryUpdateApplicationStatusesEmptyBatch(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	err := repo.UpdateApplicationStatuses(context.Background(), nil, models.ApplicationWaitlisted)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
