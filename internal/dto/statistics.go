package dto

// StudentStats aggregates candidate counts.
type StudentStats struct {
	Total            int `json:"total"`
	Shortlisted      int `json:"shortlisted"`
	WalkinCandidates int `json:"walkin_candidates"`
}

// ApplicationStats aggregates application counts by status.
type ApplicationStats struct {
	Total       int `json:"total"`
	Shortlisted int `json:"shortlisted"`
	Applied     int `json:"applied"`
}

// CompanyStats aggregates company-level configuration counts.
type CompanyStats struct {
	Total                    int `json:"total"`
	WalkinEnabled            int `json:"walkin_enabled"`
	TotalReservedWalkinSlots int `json:"total_reserved_walkin_slots"`
}

// CompanyBreakdown lists the per-company application split.
type CompanyBreakdown struct {
	CompanyID   string `json:"company_id"`
	CompanyName string `json:"company_name"`
	Shortlisted int    `json:"shortlisted"`
	Applied     int    `json:"applied"`
}

// WalkinStudent identifies a candidate with no shortlisted application.
type WalkinStudent struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	ApplicationCount int    `json:"application_count"`
}

// InterviewStats aggregates interview counts.
type InterviewStats struct {
	TotalScheduled int `json:"total_scheduled"`
}

// StatisticsResponse is the event-wide statistics snapshot.
type StatisticsResponse struct {
	Students       StudentStats       `json:"students"`
	Applications   ApplicationStats   `json:"applications"`
	Companies      CompanyStats       `json:"companies"`
	Interviews     InterviewStats     `json:"interviews"`
	PerCompany     []CompanyBreakdown `json:"per_company"`
	WalkinStudents []WalkinStudent    `json:"walkin_students"`
}

// CompanySummary is the per-company operational overview for event staff.
type CompanySummary struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	NumPanels           int      `json:"num_panels"`
	WalkInOpen          bool     `json:"walk_in_open"`
	Positions           []string `json:"positions"`
	InterviewStart      string   `json:"interview_start"`
	InterviewEnd        string   `json:"interview_end"`
	TotalScheduled      int      `json:"total_scheduled"`
	NextInterviewAt     *string  `json:"next_interview_at"`
	SlotsRemainingToday int      `json:"slots_remaining_today"`
}
