package service

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/careerday-api/internal/models"
)

// interviewRequest is one candidate (student, panel) pairing the solver may
// satisfy with exactly one start slot.
type interviewRequest struct {
	student  *models.Student
	app      *models.Application
	company  *models.Company
	panel    models.Panel
	duration int
	slots    int   // base slots occupied
	starts   []int // valid candidate start slot indices
	groupKey string
}

func groupKeyOf(studentID, companyID, roleID string) string {
	return studentID + "|" + companyID + "|" + roleID
}

// requestPool holds the flattened request set plus sibling-panel groups.
type requestPool struct {
	requests []*interviewRequest
	groups   map[string][]*interviewRequest
	dropped  []droppedRequest
	warnings []string
}

type droppedRequest struct {
	studentID string
	companyID string
	roleID    string
	reason    string
	dangling  bool
}

// slotRange is an occupied [start, end) base-slot span.
type slotRange struct {
	start int
	end   int
}

func panelKeyOf(companyID, panelID string) string {
	return companyID + "|" + panelID
}

// pinnedOccupancy records the base slots already held by pinned
// interviews, keyed per student and per (company, panel).
type pinnedOccupancy struct {
	students map[string][]slotRange
	panels   map[string][]slotRange
}

// eligibleForOptimization mirrors the scheduling policy: rejected
// applications never enter the pool, everything else competes with
// status-tiered weights.
func eligibleForOptimization(status models.ApplicationStatus) bool {
	switch status {
	case models.ApplicationShortlisted, models.ApplicationWaitlisted, models.ApplicationApplied:
		return true
	}
	return false
}

// buildRequestPool flattens student applications into per-panel interview
// requests, each carrying its valid start-slot candidates after
// availability, break, reserved walk-in, and pinned-collision filtering.
// Companies in the pinned set are excluded entirely.
func buildRequestPool(
	grid *slotGrid,
	students []models.Student,
	companies []models.Company,
	pinnedCompanies map[string]bool,
	pinnedBusy pinnedOccupancy,
	defaultDuration int,
	logger *zap.Logger,
) *requestPool {
	pool := &requestPool{groups: make(map[string][]*interviewRequest)}

	companyMap := make(map[string]*models.Company, len(companies))
	for i := range companies {
		companyMap[companies[i].ID] = &companies[i]
	}

	// Per-panel candidate lists are shared by every request on the panel;
	// compute them once.
	type panelSlots struct {
		panel  models.Panel
		starts []int
		slots  int
		dur    int
	}
	panelCache := make(map[string][]panelSlots)

	panelsFor := func(c *models.Company, roleID string) []panelSlots {
		key := c.ID + "|" + roleID
		if cached, ok := panelCache[key]; ok {
			return cached
		}

		panels := make([]models.Panel, 0, 1)
		for _, p := range c.Panels {
			if p.ServesRole(roleID) {
				panels = append(panels, p)
			}
		}
		if len(panels) == 0 && len(c.Panels) > 0 {
			panels = append(panels, c.Panels[0])
		}
		if len(panels) == 0 {
			panels = append(panels, c.DefaultPanel(defaultDuration))
		}

		availStart, errStart := clockMinutes(c.AvailabilityStart)
		availEnd, errEnd := clockMinutes(c.AvailabilityEnd)
		if errStart != nil || errEnd != nil {
			availStart = grid.dayStart
			availEnd = grid.dayEnd
		}

		role, _ := c.Role(roleID)
		out := make([]panelSlots, 0, len(panels))
		for _, p := range panels {
			dur := p.SlotDurationMinutes
			if dur <= 0 {
				dur = role.DurationMinutes
			}
			if dur <= 0 {
				dur = defaultDuration
			}

			breaks, skipped := parseBreaks(c.EffectiveBreaks(p))
			if skipped > 0 {
				logger.Warn("ignoring malformed break intervals",
					zap.String("company_id", c.ID),
					zap.String("panel_id", p.PanelID),
					zap.Int("skipped", skipped))
				pool.warnings = append(pool.warnings,
					fmt.Sprintf("company %s panel %s: %d malformed break interval(s) ignored", c.ID, p.PanelID, skipped))
			}

			starts := grid.validStartSlots(availStart, availEnd, dur, breaks)
			// Trailing eligible slots are held back for walk-ins.
			if p.ReservedWalkinSlots > 0 {
				keep := len(starts) - p.ReservedWalkinSlots
				if keep < 0 {
					keep = 0
				}
				starts = starts[:keep]
			}
			out = append(out, panelSlots{panel: p, starts: starts, slots: grid.slotsNeeded(dur), dur: dur})
		}
		panelCache[key] = out
		return out
	}

	for si := range students {
		student := &students[si]
		for ai := range student.Applications {
			app := &student.Applications[ai]
			if !eligibleForOptimization(app.Status) {
				continue
			}
			company, ok := companyMap[app.CompanyID]
			if !ok {
				logger.Warn("application references unknown company",
					zap.String("student_id", student.ID),
					zap.String("company_id", app.CompanyID))
				pool.dropped = append(pool.dropped, droppedRequest{
					studentID: student.ID, companyID: app.CompanyID, roleID: app.JobRoleID,
					reason: "unknown company", dangling: true,
				})
				continue
			}
			if pinnedCompanies[company.ID] {
				continue
			}
			if _, ok := company.Role(app.JobRoleID); !ok {
				logger.Warn("application references unknown job role",
					zap.String("student_id", student.ID),
					zap.String("company_id", company.ID),
					zap.String("job_role_id", app.JobRoleID))
				pool.dropped = append(pool.dropped, droppedRequest{
					studentID: student.ID, companyID: company.ID, roleID: app.JobRoleID,
					reason: "unknown job role", dangling: true,
				})
				continue
			}

			key := groupKeyOf(student.ID, company.ID, app.JobRoleID)
			added := false
			for _, ps := range panelsFor(company, app.JobRoleID) {
				starts := filterPinnedCollisions(ps.starts, ps.slots, pinnedBusy.students[student.ID])
				starts = filterPinnedCollisions(starts, ps.slots, pinnedBusy.panels[panelKeyOf(company.ID, ps.panel.PanelID)])
				if len(starts) == 0 {
					continue
				}
				req := &interviewRequest{
					student:  student,
					app:      app,
					company:  company,
					panel:    ps.panel,
					duration: ps.dur,
					slots:    ps.slots,
					starts:   starts,
					groupKey: key,
				}
				pool.requests = append(pool.requests, req)
				pool.groups[key] = append(pool.groups[key], req)
				added = true
			}
			if !added {
				pool.dropped = append(pool.dropped, droppedRequest{
					studentID: student.ID, companyID: company.ID, roleID: app.JobRoleID,
					reason: "no valid candidate slot",
				})
			}
		}
	}

	return pool
}

// filterPinnedCollisions removes start slots whose occupied span would
// intersect any slot range already held by a pinned interview.
func filterPinnedCollisions(starts []int, slots int, busy []slotRange) []int {
	if len(busy) == 0 {
		return starts
	}
	out := make([]int, 0, len(starts))
	for _, t := range starts {
		collides := false
		for _, r := range busy {
			if t < r.end && r.start < t+slots {
				collides = true
				break
			}
		}
		if !collides {
			out = append(out, t)
		}
	}
	return out
}
