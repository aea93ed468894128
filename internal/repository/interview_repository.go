package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/careerday-api/internal/models"
)

// InterviewRepository manages persistence for scheduled interviews.
type InterviewRepository struct {
	db *sqlx.DB
}

// NewInterviewRepository constructs an InterviewRepository.
func NewInterviewRepository(db *sqlx.DB) *InterviewRepository {
	return &InterviewRepository{db: db}
}

const interviewColumns = `id, student_id, company_id, job_role_id, panel_id, start_time, end_time, status, pinned, created_at, updated_at`

// ListAll returns every interview ordered by start time.
func (r *InterviewRepository) ListAll(ctx context.Context) ([]models.Interview, error) {
	query := fmt.Sprintf(`SELECT %s FROM interviews ORDER BY start_time, id`, interviewColumns)
	var interviews []models.Interview
	if err := r.db.SelectContext(ctx, &interviews, query); err != nil {
		return nil, fmt.Errorf("list interviews: %w", err)
	}
	return interviews, nil
}

// ListByCompany returns a company's interviews ordered by panel and start time.
func (r *InterviewRepository) ListByCompany(ctx context.Context, companyID string) ([]models.Interview, error) {
	query := fmt.Sprintf(`SELECT %s FROM interviews WHERE company_id = $1 ORDER BY panel_id, start_time, id`, interviewColumns)
	var interviews []models.Interview
	if err := r.db.SelectContext(ctx, &interviews, query, companyID); err != nil {
		return nil, fmt.Errorf("list company interviews: %w", err)
	}
	return interviews, nil
}

// FindByID fetches one interview.
func (r *InterviewRepository) FindByID(ctx context.Context, id string) (*models.Interview, error) {
	query := fmt.Sprintf(`SELECT %s FROM interviews WHERE id = $1`, interviewColumns)
	var iv models.Interview
	if err := r.db.GetContext(ctx, &iv, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find interview: %w", err)
	}
	return &iv, nil
}

// UpdateStatus transitions an interview to the given status.
func (r *InterviewRepository) UpdateStatus(ctx context.Context, id string, status models.InterviewStatus) error {
	const query = `UPDATE interviews SET status = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update interview status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update interview status: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ReplaceGenerated swaps the generated schedule atomically: pinned rows
// survive, everything else is replaced by the new batch.
func (r *InterviewRepository) ReplaceGenerated(ctx context.Context, generated []models.Interview) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM interviews WHERE pinned = false`); err != nil {
		return fmt.Errorf("clear generated interviews: %w", err)
	}

	const insert = `INSERT INTO interviews (id, student_id, company_id, job_role_id, panel_id, start_time, end_time, status, pinned, created_at, updated_at)
        VALUES (:id, :student_id, :company_id, :job_role_id, :panel_id, :start_time, :end_time, :status, :pinned, :created_at, :updated_at)`
	for i := range generated {
		if generated[i].Pinned {
			continue
		}
		if _, err := tx.NamedExecContext(ctx, insert, generated[i]); err != nil {
			return fmt.Errorf("insert interview %s: %w", generated[i].ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}
	return nil
}
