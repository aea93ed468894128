package models

import "time"

// ApplicationStatus enumerates the lifecycle of a student application.
type ApplicationStatus string

const (
	ApplicationApplied     ApplicationStatus = "applied"
	ApplicationShortlisted ApplicationStatus = "shortlisted"
	ApplicationWaitlisted  ApplicationStatus = "waitlisted"
	ApplicationRejected    ApplicationStatus = "rejected"
)

// Valid reports whether the status is a known application status.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationApplied, ApplicationShortlisted, ApplicationWaitlisted, ApplicationRejected:
		return true
	}
	return false
}

// Application links a student to a company job role.
type Application struct {
	ID        string            `db:"id" json:"id"`
	StudentID string            `db:"student_id" json:"student_id"`
	CompanyID string            `db:"company_id" json:"company_id"`
	JobRoleID string            `db:"job_role_id" json:"job_role_id"`
	Status    ApplicationStatus `db:"status" json:"status"`
	Priority  *int              `db:"priority" json:"priority,omitempty"`
	CVLink    string            `db:"cv_link" json:"cv_link,omitempty"`
	CreatedAt time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt time.Time         `db:"updated_at" json:"updated_at"`
}

// Student represents a registered candidate and their applications.
type Student struct {
	ID           string        `db:"id" json:"id"`
	Name         string        `db:"name" json:"name"`
	Email        string        `db:"email" json:"email"`
	Applications []Application `db:"-" json:"applications"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time     `db:"updated_at" json:"updated_at"`
}
