package dto

// RunScheduleRequest triggers an allocation run for an event day.
type RunScheduleRequest struct {
	EventDate        string   `json:"event_date" validate:"required,datetime=2006-01-02"`
	PinnedCompanyIDs []string `json:"pinned_company_ids"`
	TimeBudget       string   `json:"time_budget" validate:"omitempty"`
	RandomSeed       *int64   `json:"random_seed"`
}

// DroppedRequest reports an interview request the run could not place.
type DroppedRequest struct {
	StudentID string `json:"student_id"`
	CompanyID string `json:"company_id"`
	JobRoleID string `json:"job_role_id"`
	Reason    string `json:"reason"`
}

// RunScheduleResponse summarises an allocation run.
type RunScheduleResponse struct {
	RunID        string           `json:"run_id"`
	EventDate    string           `json:"event_date"`
	SolverStatus string           `json:"solver_status"`
	Scheduled    int              `json:"scheduled"`
	Pinned       int              `json:"pinned"`
	Demoted      int              `json:"demoted"`
	Dropped      []DroppedRequest `json:"dropped,omitempty"`
	Warnings     []string         `json:"warnings,omitempty"`
}
