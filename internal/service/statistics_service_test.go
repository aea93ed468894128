package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/careerday-api/internal/models"
)

func disabledCache() *CacheService {
	return NewCacheService(nil, nil, time.Minute, nil, false)
}

func TestStatisticsAggregation(t *testing.T) {
	companies := []models.Company{
		testCompany("C1", models.Panel{PanelID: "P1", Label: "Panel 1", JobRoleIDs: []string{"R1"}, SlotDurationMinutes: 30, ReservedWalkinSlots: 2, WalkInOpen: true}),
		testCompany("C2", models.Panel{PanelID: "P1", Label: "Panel 1", JobRoleIDs: []string{"R1"}, SlotDurationMinutes: 30}),
	}
	students := []models.Student{
		testStudent("S1",
			models.Application{CompanyID: "C1", JobRoleID: "R1", Status: models.ApplicationShortlisted},
			models.Application{CompanyID: "C2", JobRoleID: "R1", Status: models.ApplicationApplied}),
		testStudent("S2",
			models.Application{CompanyID: "C2", JobRoleID: "R1", Status: models.ApplicationApplied}),
		testStudent("S3"),
	}
	interviews := []models.Interview{
		queueInterview("INT-1", "S1", "P1", 9, 0, models.InterviewScheduled),
		queueInterview("INT-2", "S2", "P1", 9, 30, models.InterviewCancelled),
	}

	svc := NewStatisticsService(
		&stubStudentRepo{students: students},
		&stubCompanyRepo{companies: companies},
		&stubInterviewRepo{interviews: interviews},
		disabledCache(), time.Minute, nil)

	stats, err := svc.Statistics(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Students.Total)
	assert.Equal(t, 1, stats.Students.Shortlisted)
	assert.Equal(t, 2, stats.Students.WalkinCandidates)

	assert.Equal(t, 3, stats.Applications.Total)
	assert.Equal(t, 1, stats.Applications.Shortlisted)
	assert.Equal(t, 2, stats.Applications.Applied)

	assert.Equal(t, 2, stats.Companies.Total)
	assert.Equal(t, 1, stats.Companies.WalkinEnabled)
	assert.Equal(t, 2, stats.Companies.TotalReservedWalkinSlots)

	// Cancelled interviews do not count as scheduled.
	assert.Equal(t, 1, stats.Interviews.TotalScheduled)

	require.Len(t, stats.PerCompany, 2)
	assert.Equal(t, 1, stats.PerCompany[0].Shortlisted)
	assert.Equal(t, 2, stats.PerCompany[1].Applied)

	require.Len(t, stats.WalkinStudents, 2)
	assert.Equal(t, "S2", stats.WalkinStudents[0].ID)
	assert.Equal(t, 1, stats.WalkinStudents[0].ApplicationCount)
	assert.Equal(t, "S3", stats.WalkinStudents[1].ID)
}

func TestCompanySummary(t *testing.T) {
	company := testCompany("C1",
		models.Panel{PanelID: "P1", Label: "Panel 1", JobRoleIDs: []string{"R1"}, SlotDurationMinutes: 30})
	interviews := []models.Interview{
		queueInterview("INT-1", "S1", "P1", 9, 0, models.InterviewCompleted),
		queueInterview("INT-2", "S2", "P1", 11, 0, models.InterviewScheduled),
	}

	svc := NewStatisticsService(
		&stubStudentRepo{},
		&stubCompanyRepo{companies: []models.Company{company}},
		&stubInterviewRepo{interviews: interviews},
		disabledCache(), time.Minute, nil)
	svc.now = func() time.Time { return eventDay.Add(10 * time.Hour) }

	summaries, err := svc.Summary(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 1)

	s := summaries[0]
	assert.Equal(t, "C1", s.ID)
	assert.Equal(t, 1, s.NumPanels)
	assert.Equal(t, []string{"Engineer"}, s.Positions)
	assert.Equal(t, 2, s.TotalScheduled)
	require.NotNil(t, s.NextInterviewAt)
	assert.Equal(t, "11:00", *s.NextInterviewAt)
	// Seven hours remain at 30 minutes each, one already booked ahead.
	assert.Equal(t, 13, s.SlotsRemainingToday)
}
