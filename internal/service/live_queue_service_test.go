package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/careerday-api/internal/models"
)

type stubStudentRepo struct {
	students []models.Student
	err      error
}

func (s *stubStudentRepo) ListWithApplications(ctx context.Context) ([]models.Student, error) {
	return s.students, s.err
}

func (s *stubStudentRepo) UpdateApplicationStatuses(ctx context.Context, ids []string, status models.ApplicationStatus) error {
	return nil
}

type stubCompanyRepo struct {
	companies []models.Company
	err       error
}

func (s *stubCompanyRepo) List(ctx context.Context) ([]models.Company, error) {
	return s.companies, s.err
}

type stubInterviewRepo struct {
	interviews []models.Interview
	replaced   []models.Interview
	err        error
}

func (s *stubInterviewRepo) ListAll(ctx context.Context) ([]models.Interview, error) {
	return s.interviews, s.err
}

func (s *stubInterviewRepo) ReplaceGenerated(ctx context.Context, generated []models.Interview) error {
	s.replaced = generated
	return s.err
}

func queueInterview(id, studentID, panelID string, startHour, startMin int, status models.InterviewStatus) models.Interview {
	start := eventDay.Add(time.Duration(startHour)*time.Hour + time.Duration(startMin)*time.Minute)
	return models.Interview{
		ID:        id,
		StudentID: studentID,
		CompanyID: "C1",
		JobRoleID: "R1",
		PanelID:   panelID,
		StartTime: start,
		EndTime:   start.Add(30 * time.Minute),
		Status:    status,
	}
}

func TestProjectLiveQueueBuckets(t *testing.T) {
	now := eventDay.Add(10*time.Hour + 15*time.Minute)
	company := testCompany("C1",
		models.Panel{PanelID: "P1", Label: "Panel 1", JobRoleIDs: []string{"R1"}, SlotDurationMinutes: 30})
	students := []models.Student{
		testStudent("S1"), testStudent("S2"), testStudent("S3"),
		testStudent("S4"), testStudent("S5"),
	}
	interviews := []models.Interview{
		queueInterview("INT-1", "S1", "P1", 9, 0, models.InterviewCompleted),
		queueInterview("INT-2", "S2", "P1", 9, 30, models.InterviewCompleted),
		queueInterview("INT-3", "S3", "P1", 10, 0, models.InterviewScheduled),
		queueInterview("INT-4", "S4", "P1", 10, 30, models.InterviewScheduled),
		queueInterview("INT-5", "S5", "P1", 11, 0, models.InterviewScheduled),
		queueInterview("INT-6", "S1", "P1", 11, 30, models.InterviewCancelled),
	}

	queues := ProjectLiveQueue(now, interviews, []models.Company{company}, students)
	require.Len(t, queues, 1)
	require.Len(t, queues[0].Panels, 1)
	panel := queues[0].Panels[0]

	require.NotNil(t, panel.Current)
	assert.Equal(t, "INT-3", panel.Current.InterviewID)
	assert.Equal(t, "Student S3", panel.Current.StudentName)
	assert.Equal(t, "Engineer", panel.Current.Role)

	// The latest finished interview forms previous.
	require.NotNil(t, panel.Previous)
	assert.Equal(t, "INT-2", panel.Previous.InterviewID)

	// At most two upcoming entries; the cancelled one never appears.
	require.Len(t, panel.Next, 2)
	assert.Equal(t, "INT-4", panel.Next[0].InterviewID)
	assert.Equal(t, "INT-5", panel.Next[1].InterviewID)
}

func TestProjectLiveQueueInProgressOverridesTimeWindow(t *testing.T) {
	// INT-1 ran long: its window has passed but it is still running.
	now := eventDay.Add(9*time.Hour + 45*time.Minute)
	company := testCompany("C1",
		models.Panel{PanelID: "P1", Label: "Panel 1", JobRoleIDs: []string{"R1"}, SlotDurationMinutes: 30})
	interviews := []models.Interview{
		queueInterview("INT-1", "S1", "P1", 9, 0, models.InterviewInProgress),
		queueInterview("INT-2", "S2", "P1", 9, 30, models.InterviewScheduled),
	}

	queues := ProjectLiveQueue(now, interviews, []models.Company{company}, nil)
	panel := queues[0].Panels[0]

	require.NotNil(t, panel.Current)
	assert.Equal(t, "INT-1", panel.Current.InterviewID)
	// INT-2 matches the time window but is displaced; it is neither
	// previous nor next since it is not finished and not in the future.
	assert.Nil(t, panel.Previous)
	assert.Empty(t, panel.Next)
}

func TestProjectLiveQueueEmptyPanel(t *testing.T) {
	company := testCompany("C1",
		models.Panel{PanelID: "P1", Label: "Panel 1", JobRoleIDs: []string{"R1"}, SlotDurationMinutes: 30})
	queues := ProjectLiveQueue(eventDay.Add(9*time.Hour), nil, []models.Company{company}, nil)
	panel := queues[0].Panels[0]
	assert.Nil(t, panel.Previous)
	assert.Nil(t, panel.Current)
	assert.Empty(t, panel.Next)
}

func TestLiveQueueServiceByCompany(t *testing.T) {
	company := testCompany("C1",
		models.Panel{PanelID: "P1", Label: "Panel 1", JobRoleIDs: []string{"R1"}, SlotDurationMinutes: 30})
	svc := NewLiveQueueService(
		&stubStudentRepo{},
		&stubCompanyRepo{companies: []models.Company{company}},
		&stubInterviewRepo{},
		nil,
		func() time.Time { return eventDay.Add(9 * time.Hour) },
	)

	queue, err := svc.CompanyQueue(context.Background(), "C1")
	require.NoError(t, err)
	assert.Equal(t, "C1", queue.CompanyID)

	_, err = svc.CompanyQueue(context.Background(), "MISSING")
	assert.Error(t, err)
}
