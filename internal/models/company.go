package models

import "time"

// BreakInterval marks a half-open [Start, End) pause in HH:MM wall-clock time.
type BreakInterval struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// JobRole describes an open position offered by a company.
type JobRole struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	DurationMinutes int    `json:"duration_minutes"`
}

// Panel is an interview station. A company may run several in parallel and
// panels may share job roles. Panel breaks, when present, replace the
// company breaks entirely for that panel.
type Panel struct {
	PanelID             string          `json:"panel_id"`
	Label               string          `json:"label"`
	JobRoleIDs          []string        `json:"job_role_ids"`
	SlotDurationMinutes int             `json:"slot_duration_minutes"`
	ReservedWalkinSlots int             `json:"reserved_walkin_slots"`
	WalkInOpen          bool            `json:"walk_in_open"`
	Breaks              []BreakInterval `json:"breaks"`
}

// ServesRole reports whether the panel covers the given job role.
func (p Panel) ServesRole(roleID string) bool {
	for _, id := range p.JobRoleIDs {
		if id == roleID {
			return true
		}
	}
	return false
}

// Company aggregates job roles and interview panels with a shared
// availability window.
type Company struct {
	ID                string          `db:"id" json:"id"`
	Name              string          `db:"name" json:"name"`
	JobRoles          []JobRole       `db:"-" json:"job_roles"`
	Panels            []Panel         `db:"-" json:"panels"`
	AvailabilityStart string          `db:"availability_start" json:"availability_start"`
	AvailabilityEnd   string          `db:"availability_end" json:"availability_end"`
	Breaks            []BreakInterval `db:"-" json:"breaks"`
	WalkInOpen        bool            `db:"walk_in_open" json:"walk_in_open"`
	Pinned            bool            `db:"pinned" json:"pinned"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at" json:"updated_at"`
}

// Role resolves a job role by id.
func (c Company) Role(roleID string) (JobRole, bool) {
	for _, r := range c.JobRoles {
		if r.ID == roleID {
			return r, true
		}
	}
	return JobRole{}, false
}

// EffectiveBreaks returns the break intervals that apply to a panel: the
// panel's own set when non-empty, otherwise the company-wide set.
func (c Company) EffectiveBreaks(p Panel) []BreakInterval {
	if len(p.Breaks) > 0 {
		return p.Breaks
	}
	return c.Breaks
}

// DefaultPanel synthesises the single fallback panel used when a company has
// no panel configuration: one station covering every role.
func (c Company) DefaultPanel(slotDuration int) Panel {
	roleIDs := make([]string, 0, len(c.JobRoles))
	for _, r := range c.JobRoles {
		roleIDs = append(roleIDs, r.ID)
	}
	return Panel{
		PanelID:             c.ID + "-P1",
		Label:               "Panel 1 (Default)",
		JobRoleIDs:          roleIDs,
		SlotDurationMinutes: slotDuration,
	}
}
