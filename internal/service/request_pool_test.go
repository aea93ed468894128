package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/careerday-api/internal/models"
)

func intPtr(v int) *int { return &v }

func testStudent(id string, apps ...models.Application) models.Student {
	for i := range apps {
		apps[i].StudentID = id
		if apps[i].ID == "" {
			apps[i].ID = id + "-A" + apps[i].CompanyID
		}
	}
	return models.Student{ID: id, Name: "Student " + id, Email: id + "@event.test", Applications: apps}
}

func testCompany(id string, panels ...models.Panel) models.Company {
	return models.Company{
		ID:                id,
		Name:              "Company " + id,
		JobRoles:          []models.JobRole{{ID: "R1", Title: "Engineer", DurationMinutes: 30}},
		Panels:            panels,
		AvailabilityStart: "09:00",
		AvailabilityEnd:   "17:00",
	}
}

func TestRequestPoolSharedRolePanels(t *testing.T) {
	grid := mustGrid(t, "09:00", "17:00", 30)
	company := testCompany("C1",
		models.Panel{PanelID: "P1", Label: "Panel 1", JobRoleIDs: []string{"R1"}, SlotDurationMinutes: 30},
		models.Panel{PanelID: "P2", Label: "Panel 2", JobRoleIDs: []string{"R1"}, SlotDurationMinutes: 30},
	)
	students := []models.Student{testStudent("S1",
		models.Application{CompanyID: "C1", JobRoleID: "R1", Status: models.ApplicationShortlisted})}

	pool := buildRequestPool(grid, students, []models.Company{company}, nil, pinnedOccupancy{}, 30, zap.NewNop())

	require.Len(t, pool.requests, 2)
	key := groupKeyOf("S1", "C1", "R1")
	assert.Len(t, pool.groups[key], 2)
	assert.Equal(t, "P1", pool.requests[0].panel.PanelID)
	assert.Equal(t, "P2", pool.requests[1].panel.PanelID)
}

func TestRequestPoolReservedWalkinSlots(t *testing.T) {
	grid := mustGrid(t, "09:00", "17:00", 30)
	company := testCompany("C1",
		models.Panel{PanelID: "P1", Label: "Panel 1", JobRoleIDs: []string{"R1"}, SlotDurationMinutes: 30, ReservedWalkinSlots: 2})
	students := []models.Student{testStudent("S1",
		models.Application{CompanyID: "C1", JobRoleID: "R1", Status: models.ApplicationShortlisted})}

	pool := buildRequestPool(grid, students, []models.Company{company}, nil, pinnedOccupancy{}, 30, zap.NewNop())

	require.Len(t, pool.requests, 1)
	starts := pool.requests[0].starts
	// 16 eligible starts minus the two trailing reserved ones.
	require.Len(t, starts, 14)
	assert.Equal(t, 13, starts[len(starts)-1])
}

func TestRequestPoolPanelBreaksOverrideCompanyBreaks(t *testing.T) {
	grid := mustGrid(t, "09:00", "17:00", 30)
	company := testCompany("C1",
		models.Panel{PanelID: "P1", Label: "Panel 1", JobRoleIDs: []string{"R1"}, SlotDurationMinutes: 30},
		models.Panel{PanelID: "P2", Label: "Panel 2", JobRoleIDs: []string{"R1"}, SlotDurationMinutes: 30,
			Breaks: []models.BreakInterval{{Start: "10:00", End: "10:30"}}},
	)
	company.Breaks = []models.BreakInterval{{Start: "12:00", End: "13:00"}}
	students := []models.Student{testStudent("S1",
		models.Application{CompanyID: "C1", JobRoleID: "R1", Status: models.ApplicationShortlisted})}

	pool := buildRequestPool(grid, students, []models.Company{company}, nil, pinnedOccupancy{}, 30, zap.NewNop())
	require.Len(t, pool.requests, 2)

	noon := grid.slotIndexAt(eventDay.Add(12 * time.Hour))
	ten := grid.slotIndexAt(eventDay.Add(10 * time.Hour))

	// P1 inherits the company lunch break.
	assert.NotContains(t, pool.requests[0].starts, noon)
	assert.Contains(t, pool.requests[0].starts, ten)

	// P2's own break replaces the company set entirely.
	assert.Contains(t, pool.requests[1].starts, noon)
	assert.NotContains(t, pool.requests[1].starts, ten)
}

func TestRequestPoolDanglingReferences(t *testing.T) {
	grid := mustGrid(t, "09:00", "17:00", 30)
	company := testCompany("C1",
		models.Panel{PanelID: "P1", Label: "Panel 1", JobRoleIDs: []string{"R1"}, SlotDurationMinutes: 30})
	students := []models.Student{testStudent("S1",
		models.Application{CompanyID: "NOPE", JobRoleID: "R1", Status: models.ApplicationShortlisted},
		models.Application{CompanyID: "C1", JobRoleID: "GHOST", Status: models.ApplicationShortlisted},
	)}

	pool := buildRequestPool(grid, students, []models.Company{company}, nil, pinnedOccupancy{}, 30, zap.NewNop())

	assert.Empty(t, pool.requests)
	require.Len(t, pool.dropped, 2)
	assert.Equal(t, "unknown company", pool.dropped[0].reason)
	assert.Equal(t, "unknown job role", pool.dropped[1].reason)
}

func TestRequestPoolSkipsIneligibleAndPinned(t *testing.T) {
	grid := mustGrid(t, "09:00", "17:00", 30)
	companies := []models.Company{
		testCompany("C1", models.Panel{PanelID: "P1", Label: "Panel 1", JobRoleIDs: []string{"R1"}, SlotDurationMinutes: 30}),
		testCompany("C2", models.Panel{PanelID: "P1", Label: "Panel 1", JobRoleIDs: []string{"R1"}, SlotDurationMinutes: 30}),
	}
	students := []models.Student{testStudent("S1",
		models.Application{CompanyID: "C1", JobRoleID: "R1", Status: models.ApplicationRejected},
		models.Application{CompanyID: "C2", JobRoleID: "R1", Status: models.ApplicationShortlisted},
	)}

	pool := buildRequestPool(grid, students, companies, map[string]bool{"C2": true}, pinnedOccupancy{}, 30, zap.NewNop())
	assert.Empty(t, pool.requests)
	assert.Empty(t, pool.dropped)
}

func TestRequestPoolPinnedCollisionFiltering(t *testing.T) {
	grid := mustGrid(t, "09:00", "17:00", 30)
	company := testCompany("C1",
		models.Panel{PanelID: "P1", Label: "Panel 1", JobRoleIDs: []string{"R1"}, SlotDurationMinutes: 30})
	students := []models.Student{testStudent("S1",
		models.Application{CompanyID: "C1", JobRoleID: "R1", Status: models.ApplicationShortlisted})}

	// The student already holds a pinned interview covering slots 2-3.
	busy := pinnedOccupancy{students: map[string][]slotRange{"S1": {{start: 2, end: 4}}}}
	pool := buildRequestPool(grid, students, []models.Company{company}, nil, busy, 30, zap.NewNop())

	require.Len(t, pool.requests, 1)
	assert.NotContains(t, pool.requests[0].starts, 2)
	assert.NotContains(t, pool.requests[0].starts, 3)
	assert.Contains(t, pool.requests[0].starts, 1)
	assert.Contains(t, pool.requests[0].starts, 4)
}

func TestRequestPoolPinnedPanelCollisionFiltering(t *testing.T) {
	grid := mustGrid(t, "09:00", "17:00", 30)
	company := testCompany("C1",
		models.Panel{PanelID: "P1", Label: "Panel 1", JobRoleIDs: []string{"R1"}, SlotDurationMinutes: 30})
	students := []models.Student{testStudent("S2",
		models.Application{CompanyID: "C1", JobRoleID: "R1", Status: models.ApplicationShortlisted})}

	// Another student's pinned interview holds slot 0 on the panel. S2 is
	// free then, but the panel is not.
	busy := pinnedOccupancy{panels: map[string][]slotRange{panelKeyOf("C1", "P1"): {{start: 0, end: 1}}}}
	pool := buildRequestPool(grid, students, []models.Company{company}, nil, busy, 30, zap.NewNop())

	require.Len(t, pool.requests, 1)
	assert.NotContains(t, pool.requests[0].starts, 0)
	assert.Contains(t, pool.requests[0].starts, 1)
}

func TestRequestPoolFallsBackToDefaultPanel(t *testing.T) {
	grid := mustGrid(t, "09:00", "17:00", 30)
	company := testCompany("C1")
	students := []models.Student{testStudent("S1",
		models.Application{CompanyID: "C1", JobRoleID: "R1", Status: models.ApplicationApplied, Priority: intPtr(1)})}

	pool := buildRequestPool(grid, students, []models.Company{company}, nil, pinnedOccupancy{}, 30, zap.NewNop())

	require.Len(t, pool.requests, 1)
	assert.Equal(t, "C1-P1", pool.requests[0].panel.PanelID)
	assert.Equal(t, 30, pool.requests[0].duration)
}
