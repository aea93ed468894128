package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/careerday-api/internal/models"
	"github.com/noah-isme/careerday-api/pkg/config"
	appErrors "github.com/noah-isme/careerday-api/pkg/errors"
)

// AllocationInput is the immutable snapshot an allocation run consumes.
type AllocationInput struct {
	EventDate          time.Time
	Students           []models.Student
	Companies          []models.Company
	PinnedCompanyIDs   []string
	ExistingInterviews []models.Interview
	TimeBudget         time.Duration
	Seed               int64
}

// AllocationOutcome is the result of one allocation run. Interviews holds
// the pinned fixtures first, followed by the freshly generated schedule.
type AllocationOutcome struct {
	Interviews            []models.Interview
	GeneratedCount        int
	PinnedCount           int
	SolverStatus          SolveStatus
	Restarts              int
	DemotedApplicationIDs []string
	Dropped               []droppedRequest
	Warnings              []string
}

// Allocator turns a snapshot of students, companies, and pinned interviews
// into a conflict-free interview schedule. It is a stateless batch
// computation; the solver call is its only suspension point.
type Allocator struct {
	cfg       config.AllocatorConfig
	logger    *zap.Logger
	newSolver SolverFactory
}

// NewAllocator wires the allocation engine.
func NewAllocator(cfg config.AllocatorConfig, logger *zap.Logger, factory SolverFactory) *Allocator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if factory == nil {
		factory = NewGreedySolver
	}
	return &Allocator{cfg: cfg, logger: logger, newSolver: factory}
}

// varRef ties one solver variable back to its (request, start slot) pair.
type varRef struct {
	req   *interviewRequest
	start int
}

// Allocate runs the full pipeline: slot grid, request pool, constraint
// model, tiered objective, solve, pinned merge. Only configuration errors
// abort the run; unplaceable requests are reported, not fatal.
func (a *Allocator) Allocate(ctx context.Context, in AllocationInput) (*AllocationOutcome, error) {
	granularity := baseGranularity(in.Companies, a.cfg.DefaultGranularity)
	grid, err := newSlotGrid(in.EventDate, a.cfg.DayStart, a.cfg.DayEnd, granularity)
	if err != nil {
		return nil, err
	}

	for _, c := range in.Companies {
		start, errStart := clockMinutes(c.AvailabilityStart)
		end, errEnd := clockMinutes(c.AvailabilityEnd)
		if errStart == nil && errEnd == nil && start >= end {
			return nil, appErrors.Clone(appErrors.ErrConfig,
				fmt.Sprintf("company %s availability window %s-%s is inverted", c.ID, c.AvailabilityStart, c.AvailabilityEnd))
		}
	}

	pinnedCompanies := make(map[string]bool, len(in.PinnedCompanyIDs))
	for _, id := range in.PinnedCompanyIDs {
		pinnedCompanies[id] = true
	}
	for _, c := range in.Companies {
		if c.Pinned {
			pinnedCompanies[c.ID] = true
		}
	}

	pinned, pinnedBusy := a.extractPinned(grid, in.ExistingInterviews, pinnedCompanies)

	pool := buildRequestPool(grid, in.Students, in.Companies, pinnedCompanies, pinnedBusy, a.cfg.DefaultDuration, a.logger)

	solver := a.newSolver(in.Seed, a.cfg.MaxRestarts)
	refs := a.buildModel(solver, grid, pool, in.Companies)

	budget := in.TimeBudget
	if budget <= 0 {
		budget = a.cfg.SolverTimeBudget
	}
	sol, err := solver.Solve(ctx, budget)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "solver failed")
	}
	if sol.Status == SolveTimeout {
		a.logger.Warn("solver time budget exhausted, keeping best feasible schedule",
			zap.Duration("budget", budget),
			zap.Int("restarts", sol.Restarts))
	}

	generated := a.extractInterviews(grid, refs, sol.Selected, pinned)

	outcome := &AllocationOutcome{
		Interviews:     append(append([]models.Interview{}, pinned...), generated...),
		GeneratedCount: len(generated),
		PinnedCount:    len(pinned),
		SolverStatus:   sol.Status,
		Restarts:       sol.Restarts,
		Warnings:       pool.warnings,
		Dropped:        pool.dropped,
	}
	outcome.DemotedApplicationIDs = a.demoteUnscheduled(in.Students, pinnedCompanies, outcome.Interviews, pool.dropped)
	return outcome, nil
}

// extractPinned collects non-cancelled interviews of pinned companies (and
// individually pinned fixtures), returning them verbatim along with the
// base slots each student and each panel is already committed to.
func (a *Allocator) extractPinned(grid *slotGrid, existing []models.Interview, pinnedCompanies map[string]bool) ([]models.Interview, pinnedOccupancy) {
	var pinned []models.Interview
	busy := pinnedOccupancy{
		students: make(map[string][]slotRange),
		panels:   make(map[string][]slotRange),
	}
	for _, iv := range existing {
		if iv.Status == models.InterviewCancelled {
			continue
		}
		if !iv.Pinned && !pinnedCompanies[iv.CompanyID] {
			continue
		}
		iv.Pinned = true
		pinned = append(pinned, iv)

		startMin := int(iv.StartTime.Sub(grid.date) / time.Minute)
		endMin := int(iv.EndTime.Sub(grid.date) / time.Minute)
		rStart := (startMin - grid.dayStart) / grid.granularity
		rEnd := (endMin - grid.dayStart + grid.granularity - 1) / grid.granularity
		if rStart < 0 {
			rStart = 0
		}
		if rEnd > grid.numSlots() {
			rEnd = grid.numSlots()
		}
		if rStart < rEnd {
			r := slotRange{start: rStart, end: rEnd}
			busy.students[iv.StudentID] = append(busy.students[iv.StudentID], r)
			pk := panelKeyOf(iv.CompanyID, iv.PanelID)
			busy.panels[pk] = append(busy.panels[pk], r)
		}
	}
	return pinned, busy
}

// buildModel emits the structural constraints and the tiered objective.
func (a *Allocator) buildModel(solver Solver, grid *slotGrid, pool *requestPool, companies []models.Company) []varRef {
	numSlots := grid.numSlots()

	var refs []varRef
	reqVars := make(map[*interviewRequest][]VarID, len(pool.requests))
	studentSlot := make(map[string][][]VarID)
	panelSlot := make(map[string][][]VarID)

	for _, req := range pool.requests {
		vars := make([]VarID, 0, len(req.starts))
		for _, start := range req.starts {
			v := solver.AddVar()
			refs = append(refs, varRef{req: req, start: start})
			vars = append(vars, v)

			// A request starting at t and needing k slots is active on
			// every base index in [t, t+k).
			if studentSlot[req.student.ID] == nil {
				studentSlot[req.student.ID] = make([][]VarID, numSlots)
			}
			panelKey := req.company.ID + "|" + req.panel.PanelID
			if panelSlot[panelKey] == nil {
				panelSlot[panelKey] = make([][]VarID, numSlots)
			}
			for t := start; t < start+req.slots && t < numSlots; t++ {
				studentSlot[req.student.ID][t] = append(studentSlot[req.student.ID][t], v)
				panelSlot[panelKey][t] = append(panelSlot[panelKey][t], v)
			}
		}
		reqVars[req] = vars
		solver.AddAtMostOne(vars)
	}

	// One assignment per (student, company, role) group across sibling
	// panels.
	for _, group := range pool.groups {
		if len(group) < 2 {
			continue
		}
		var vars []VarID
		for _, req := range group {
			vars = append(vars, reqVars[req]...)
		}
		solver.AddAtMostOne(vars)
	}

	for _, slots := range studentSlot {
		for _, vars := range slots {
			if len(vars) > 1 {
				solver.AddAtMostOne(vars)
			}
		}
	}
	for _, slots := range panelSlot {
		for _, vars := range slots {
			if len(vars) > 1 {
				solver.AddAtMostOne(vars)
			}
		}
	}

	// Tier weights: any satisfied request outweighs every possible
	// balance and packing contribution; one unit of balance outweighs the
	// maximum packing total.
	tier3Max := int64(len(refs))*int64(numSlots) + 1
	balanceWeight := tier3Max + 1
	tier2Max := balanceWeight * int64(numSlots+1) * int64(len(companies)+1)
	tier1 := tier2Max + tier3Max + 1

	for _, c := range companies {
		panels := make(map[string][]VarID)
		var order []string
		for _, req := range pool.requests {
			if req.company.ID != c.ID {
				continue
			}
			if _, seen := panels[req.panel.PanelID]; !seen {
				order = append(order, req.panel.PanelID)
			}
			panels[req.panel.PanelID] = append(panels[req.panel.PanelID], reqVars[req]...)
		}
		if len(order) < 2 {
			continue
		}
		sort.Strings(order)
		panelVars := make([][]VarID, 0, len(order))
		for _, pid := range order {
			panelVars = append(panelVars, panels[pid])
		}
		solver.AddLoadBalanceAux(c.ID, panelVars, balanceWeight)
	}

	terms := make([]ObjectiveTerm, 0, len(refs))
	for i, ref := range refs {
		weight := tier1*requestBoost(ref.req.app) + int64(numSlots-ref.start)
		terms = append(terms, ObjectiveTerm{Var: VarID(i), Weight: weight})
	}
	solver.SetObjective(terms)

	return refs
}

// requestBoost ranks a request within the satisfaction tier: shortlist
// status dominates priority, lower priority numbers rank higher. Unranked
// applications sit just below priority 5.
func requestBoost(app *models.Application) int64 {
	rank := int64(0)
	switch app.Status {
	case models.ApplicationShortlisted:
		rank = 2
	case models.ApplicationWaitlisted:
		rank = 1
	}
	prio := 6
	if app.Priority != nil {
		prio = *app.Priority
	}
	if prio < 1 {
		prio = 1
	}
	if prio > 9 {
		prio = 9
	}
	return 1 + 16*rank + int64(10-prio)
}

// extractInterviews materialises the selected variables, ordered by start
// time, with sequential ids that skip over ids held by pinned fixtures.
func (a *Allocator) extractInterviews(grid *slotGrid, refs []varRef, selected []bool, pinned []models.Interview) []models.Interview {
	var chosen []varRef
	for i, ref := range refs {
		if i < len(selected) && selected[i] {
			chosen = append(chosen, ref)
		}
	}
	sort.Slice(chosen, func(i, j int) bool {
		if chosen[i].start != chosen[j].start {
			return chosen[i].start < chosen[j].start
		}
		if chosen[i].req.company.ID != chosen[j].req.company.ID {
			return chosen[i].req.company.ID < chosen[j].req.company.ID
		}
		if chosen[i].req.panel.PanelID != chosen[j].req.panel.PanelID {
			return chosen[i].req.panel.PanelID < chosen[j].req.panel.PanelID
		}
		return chosen[i].req.student.ID < chosen[j].req.student.ID
	})

	taken := make(map[string]bool, len(pinned))
	for _, iv := range pinned {
		taken[iv.ID] = true
	}

	now := time.Now().UTC()
	out := make([]models.Interview, 0, len(chosen))
	seq := 1
	for _, ref := range chosen {
		for taken[fmt.Sprintf("INT-%d", seq)] {
			seq++
		}
		start := grid.slotTime(ref.start)
		out = append(out, models.Interview{
			ID:        fmt.Sprintf("INT-%d", seq),
			StudentID: ref.req.student.ID,
			CompanyID: ref.req.company.ID,
			JobRoleID: ref.req.app.JobRoleID,
			PanelID:   ref.req.panel.PanelID,
			StartTime: start,
			EndTime:   start.Add(time.Duration(ref.req.duration) * time.Minute),
			Status:    models.InterviewScheduled,
			CreatedAt: now,
			UpdatedAt: now,
		})
		seq++
	}
	return out
}

// demoteUnscheduled downgrades shortlisted applications the run could not
// place, mutating the snapshot and returning the affected application ids.
// Pinned companies are left untouched, as are applications dropped for
// dangling company or role references; those never entered the
// optimization, so the run reports them without touching their status.
func (a *Allocator) demoteUnscheduled(students []models.Student, pinnedCompanies map[string]bool, interviews []models.Interview, dropped []droppedRequest) []string {
	satisfied := make(map[string]bool, len(interviews))
	for _, iv := range interviews {
		satisfied[groupKeyOf(iv.StudentID, iv.CompanyID, iv.JobRoleID)] = true
	}
	dangling := make(map[string]bool)
	for _, d := range dropped {
		if d.dangling {
			dangling[groupKeyOf(d.studentID, d.companyID, d.roleID)] = true
		}
	}

	var demoted []string
	for si := range students {
		for ai := range students[si].Applications {
			app := &students[si].Applications[ai]
			if app.Status != models.ApplicationShortlisted {
				continue
			}
			if pinnedCompanies[app.CompanyID] {
				continue
			}
			if dangling[groupKeyOf(app.StudentID, app.CompanyID, app.JobRoleID)] {
				continue
			}
			if satisfied[groupKeyOf(app.StudentID, app.CompanyID, app.JobRoleID)] {
				continue
			}
			app.Status = models.ApplicationWaitlisted
			demoted = append(demoted, app.ID)
		}
	}
	return demoted
}
