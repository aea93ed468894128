package models

import "time"

// InterviewStatus enumerates the interview lifecycle.
type InterviewStatus string

const (
	InterviewScheduled  InterviewStatus = "scheduled"
	InterviewInProgress InterviewStatus = "in_progress"
	InterviewCompleted  InterviewStatus = "completed"
	InterviewCancelled  InterviewStatus = "cancelled"
)

// Valid reports whether the status is a known interview status.
func (s InterviewStatus) Valid() bool {
	switch s {
	case InterviewScheduled, InterviewInProgress, InterviewCompleted, InterviewCancelled:
		return true
	}
	return false
}

// Terminal reports whether the status permits no further transitions.
func (s InterviewStatus) Terminal() bool {
	return s == InterviewCompleted || s == InterviewCancelled
}

// interviewTransitions is the legal transition table. Completed and
// cancelled are terminal.
var interviewTransitions = map[InterviewStatus][]InterviewStatus{
	InterviewScheduled:  {InterviewInProgress, InterviewCancelled},
	InterviewInProgress: {InterviewCompleted, InterviewCancelled},
}

// CanTransition reports whether moving from one status to another is legal.
// Re-asserting the current status is treated as an idempotent no-op.
func CanTransition(from, to InterviewStatus) bool {
	if from == to {
		return true
	}
	for _, next := range interviewTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Interview is one allocated (or externally pinned) panel slot.
type Interview struct {
	ID        string          `db:"id" json:"id"`
	StudentID string          `db:"student_id" json:"student_id"`
	CompanyID string          `db:"company_id" json:"company_id"`
	JobRoleID string          `db:"job_role_id" json:"job_role_id"`
	PanelID   string          `db:"panel_id" json:"panel_id"`
	StartTime time.Time       `db:"start_time" json:"start_time"`
	EndTime   time.Time       `db:"end_time" json:"end_time"`
	Status    InterviewStatus `db:"status" json:"status"`
	Pinned    bool            `db:"pinned" json:"pinned"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// Overlaps reports whether two interviews occupy intersecting [start, end)
// intervals.
func (iv Interview) Overlaps(other Interview) bool {
	return iv.StartTime.Before(other.EndTime) && other.StartTime.Before(iv.EndTime)
}
