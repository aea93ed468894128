package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/careerday-api/internal/models"
)

// StudentRepository manages persistence for students and their applications.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// ListWithApplications returns every student with applications attached,
// ordered by student id for stable output.
func (r *StudentRepository) ListWithApplications(ctx context.Context) ([]models.Student, error) {
	const studentQuery = `SELECT id, name, email, created_at, updated_at FROM students ORDER BY id`
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, studentQuery); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}

	const appQuery = `SELECT id, student_id, company_id, job_role_id, status, priority, cv_link, created_at, updated_at
        FROM applications ORDER BY student_id, id`
	var apps []models.Application
	if err := r.db.SelectContext(ctx, &apps, appQuery); err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}

	byStudent := make(map[string][]models.Application, len(students))
	for _, app := range apps {
		byStudent[app.StudentID] = append(byStudent[app.StudentID], app)
	}
	for i := range students {
		students[i].Applications = byStudent[students[i].ID]
	}
	return students, nil
}

// FindByID fetches a single student with applications.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	const query = `SELECT id, name, email, created_at, updated_at FROM students WHERE id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find student: %w", err)
	}

	const appQuery = `SELECT id, student_id, company_id, job_role_id, status, priority, cv_link, created_at, updated_at
        FROM applications WHERE student_id = $1 ORDER BY id`
	if err := r.db.SelectContext(ctx, &student.Applications, appQuery, id); err != nil {
		return nil, fmt.Errorf("find student applications: %w", err)
	}
	return &student, nil
}

// UpdateApplicationStatuses sets the status on a batch of applications.
func (r *StudentRepository) UpdateApplicationStatuses(ctx context.Context, ids []string, status models.ApplicationStatus) error {
	if len(ids) == 0 {
		return nil
	}
	const query = `UPDATE applications SET status = $1, updated_at = $2 WHERE id = ANY($3)`
	if _, err := r.db.ExecContext(ctx, query, status, time.Now().UTC(), pq.Array(ids)); err != nil {
		return fmt.Errorf("update application statuses: %w", err)
	}
	return nil
}
