package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/careerday-api/internal/dto"
	"github.com/noah-isme/careerday-api/internal/models"
	"github.com/noah-isme/careerday-api/pkg/config"
	appErrors "github.com/noah-isme/careerday-api/pkg/errors"
)

type recordingStudentRepo struct {
	stubStudentRepo
	demotedIDs []string
	demotedTo  models.ApplicationStatus
}

func (s *recordingStudentRepo) UpdateApplicationStatuses(ctx context.Context, ids []string, status models.ApplicationStatus) error {
	s.demotedIDs = append(s.demotedIDs, ids...)
	s.demotedTo = status
	return nil
}

func newRunService(students []models.Student, companies []models.Company, existing []models.Interview) (*AllocationService, *recordingStudentRepo, *stubInterviewRepo) {
	cfg := config.AllocatorConfig{
		DayStart:           "09:00",
		DayEnd:             "17:00",
		DefaultGranularity: 30,
		DefaultDuration:    30,
		SolverTimeBudget:   5 * time.Second,
		MaxRestarts:        30,
	}
	studentRepo := &recordingStudentRepo{stubStudentRepo: stubStudentRepo{students: students}}
	interviewRepo := &stubInterviewRepo{interviews: existing}
	svc := NewAllocationService(
		studentRepo,
		&stubCompanyRepo{companies: companies},
		interviewRepo,
		studentRepo,
		NewAllocator(cfg, nil, nil),
		disabledCache(),
		cfg, nil, nil, nil)
	return svc, studentRepo, interviewRepo
}

func TestRunSchedulePersistsOutcome(t *testing.T) {
	company := testCompany("C1",
		models.Panel{PanelID: "P1", Label: "Panel 1", JobRoleIDs: []string{"R1"}, SlotDurationMinutes: 30})
	company.AvailabilityStart = "09:00"
	company.AvailabilityEnd = "10:00"
	students := shortlistedStudents(3, "C1", "R1")
	svc, studentRepo, interviewRepo := newRunService(students, []models.Company{company}, nil)

	seed := int64(17)
	resp, err := svc.Run(context.Background(), dto.RunScheduleRequest{
		EventDate:  "2026-03-14",
		RandomSeed: &seed,
	})
	require.NoError(t, err)

	// Two slots for three shortlisted candidates.
	assert.Equal(t, 2, resp.Scheduled)
	assert.Equal(t, 1, resp.Demoted)
	assert.Equal(t, string(SolveFeasible), resp.SolverStatus)
	assert.NotEmpty(t, resp.RunID)

	assert.Len(t, interviewRepo.replaced, 2)
	assert.Len(t, studentRepo.demotedIDs, 1)
	assert.Equal(t, models.ApplicationWaitlisted, studentRepo.demotedTo)
}

func TestRunScheduleValidatesRequest(t *testing.T) {
	svc, _, _ := newRunService(nil, nil, nil)

	_, err := svc.Run(context.Background(), dto.RunScheduleRequest{EventDate: "14-03-2026"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Run(context.Background(), dto.RunScheduleRequest{EventDate: "2026-03-14", TimeBudget: "sideways"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConfig.Code, appErrors.FromError(err).Code)
}

func TestRunScheduleKeepsPinnedRows(t *testing.T) {
	pinnedCo := testCompany("C2",
		models.Panel{PanelID: "P1", Label: "Panel 1", JobRoleIDs: []string{"R1"}, SlotDurationMinutes: 30})
	pinnedCo.Pinned = true
	existing := []models.Interview{{
		ID:        "INT-1",
		StudentID: "S1",
		CompanyID: "C2",
		JobRoleID: "R1",
		PanelID:   "P1",
		StartTime: eventDay.Add(10 * time.Hour),
		EndTime:   eventDay.Add(10*time.Hour + 30*time.Minute),
		Status:    models.InterviewScheduled,
	}}
	students := []models.Student{testStudent("S1",
		models.Application{CompanyID: "C2", JobRoleID: "R1", Status: models.ApplicationShortlisted})}
	svc, studentRepo, interviewRepo := newRunService(students, []models.Company{pinnedCo}, existing)

	seed := int64(5)
	resp, err := svc.Run(context.Background(), dto.RunScheduleRequest{EventDate: "2026-03-14", RandomSeed: &seed})
	require.NoError(t, err)

	assert.Equal(t, 1, resp.Pinned)
	assert.Equal(t, 0, resp.Scheduled)
	// The pinned company's shortlisted application is never demoted.
	assert.Empty(t, studentRepo.demotedIDs)

	// ReplaceGenerated receives the merged list; the pinned row survives.
	require.Len(t, interviewRepo.replaced, 1)
	assert.True(t, interviewRepo.replaced[0].Pinned)
}
