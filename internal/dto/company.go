package dto

// BreakIntervalRequest carries one HH:MM break window.
type BreakIntervalRequest struct {
	Start string `json:"start" validate:"required,datetime=15:04"`
	End   string `json:"end" validate:"required,datetime=15:04"`
}

// PanelRequest configures or replaces a single interview panel.
type PanelRequest struct {
	PanelID             string                 `json:"panel_id" validate:"required"`
	Label               string                 `json:"label" validate:"required"`
	JobRoleIDs          []string               `json:"job_role_ids" validate:"required,min=1"`
	SlotDurationMinutes int                    `json:"slot_duration_minutes" validate:"required,min=5,max=240"`
	ReservedWalkinSlots int                    `json:"reserved_walkin_slots" validate:"min=0"`
	WalkInOpen          bool                   `json:"walk_in_open"`
	Breaks              []BreakIntervalRequest `json:"breaks" validate:"omitempty,dive"`
}

// CompanySettingsRequest updates the availability window and breaks of a
// company, optionally replacing its panels.
type CompanySettingsRequest struct {
	AvailabilityStart string                 `json:"availability_start" validate:"required,datetime=15:04"`
	AvailabilityEnd   string                 `json:"availability_end" validate:"required,datetime=15:04"`
	Breaks            []BreakIntervalRequest `json:"breaks" validate:"omitempty,dive"`
	Pinned            *bool                  `json:"pinned"`
	Panels            []PanelRequest         `json:"panels" validate:"omitempty,dive"`
}
