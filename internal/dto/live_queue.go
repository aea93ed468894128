package dto

// LiveQueueEntry is one interview rendered for the live queue board.
type LiveQueueEntry struct {
	InterviewID string `json:"interview_id"`
	StudentID   string `json:"student_id"`
	StudentName string `json:"student_name"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Role        string `json:"role"`
	Status      string `json:"status"`
}

// PanelQueue is the previous/current/next projection for one panel.
type PanelQueue struct {
	PanelID    string           `json:"panel_id"`
	PanelLabel string           `json:"panel_label"`
	Previous   *LiveQueueEntry  `json:"previous"`
	Current    *LiveQueueEntry  `json:"current"`
	Next       []LiveQueueEntry `json:"next"`
}

// CompanyQueue groups panel queues per company.
type CompanyQueue struct {
	CompanyID   string       `json:"company_id"`
	CompanyName string       `json:"company_name"`
	Panels      []PanelQueue `json:"panels"`
}
