package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/careerday-api/internal/dto"
	"github.com/noah-isme/careerday-api/internal/models"
	appErrors "github.com/noah-isme/careerday-api/pkg/errors"
)

// LiveQueueService renders the per-panel previous/current/next board. The
// projection is recomputed on every query: it depends on the wall clock
// and the schedule may have changed since the last call.
type LiveQueueService struct {
	students   StudentReader
	companies  CompanyReader
	interviews InterviewStore
	logger     *zap.Logger
	now        func() time.Time
}

// NewLiveQueueService wires the projector. nowFn is injectable for tests
// and defaults to time.Now.
func NewLiveQueueService(students StudentReader, companies CompanyReader, interviews InterviewStore, logger *zap.Logger, nowFn func() time.Time) *LiveQueueService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if nowFn == nil {
		nowFn = time.Now
	}
	return &LiveQueueService{students: students, companies: companies, interviews: interviews, logger: logger, now: nowFn}
}

// Queues projects the live board for every company.
func (s *LiveQueueService) Queues(ctx context.Context) ([]dto.CompanyQueue, error) {
	students, err := s.students.ListWithApplications(ctx)
	if err != nil {
		return nil, appErrors.FromError(err)
	}
	companies, err := s.companies.List(ctx)
	if err != nil {
		return nil, appErrors.FromError(err)
	}
	interviews, err := s.interviews.ListAll(ctx)
	if err != nil {
		return nil, appErrors.FromError(err)
	}
	return ProjectLiveQueue(s.now(), interviews, companies, students), nil
}

// CompanyQueue projects the live board for one company.
func (s *LiveQueueService) CompanyQueue(ctx context.Context, companyID string) (*dto.CompanyQueue, error) {
	queues, err := s.Queues(ctx)
	if err != nil {
		return nil, err
	}
	for i := range queues {
		if queues[i].CompanyID == companyID {
			return &queues[i], nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "company "+companyID+" not found")
}

// ProjectLiveQueue maps (now, interviews) onto per-panel buckets. Cancelled
// interviews never appear. An in_progress interview always claims the
// current slot; otherwise the time window decides. The two earliest future
// interviews form next, and the latest finished one forms previous.
func ProjectLiveQueue(now time.Time, interviews []models.Interview, companies []models.Company, students []models.Student) []dto.CompanyQueue {
	studentNames := make(map[string]string, len(students))
	for _, st := range students {
		studentNames[st.ID] = st.Name
	}

	byPanel := make(map[string]map[string][]models.Interview)
	for _, iv := range interviews {
		if iv.Status == models.InterviewCancelled {
			continue
		}
		panels := byPanel[iv.CompanyID]
		if panels == nil {
			panels = make(map[string][]models.Interview)
			byPanel[iv.CompanyID] = panels
		}
		panels[iv.PanelID] = append(panels[iv.PanelID], iv)
	}

	var out []dto.CompanyQueue
	for _, c := range companies {
		panels := c.Panels
		if len(panels) == 0 {
			panels = []models.Panel{c.DefaultPanel(0)}
		}
		queue := dto.CompanyQueue{CompanyID: c.ID, CompanyName: c.Name}
		for _, p := range panels {
			entries := byPanel[c.ID][p.PanelID]
			sort.Slice(entries, func(i, j int) bool {
				if !entries[i].StartTime.Equal(entries[j].StartTime) {
					return entries[i].StartTime.Before(entries[j].StartTime)
				}
				return entries[i].ID < entries[j].ID
			})
			queue.Panels = append(queue.Panels, projectPanel(now, p, entries, c, studentNames))
		}
		out = append(out, queue)
	}
	return out
}

func projectPanel(now time.Time, panel models.Panel, entries []models.Interview, c models.Company, studentNames map[string]string) dto.PanelQueue {
	pq := dto.PanelQueue{PanelID: panel.PanelID, PanelLabel: panel.Label}

	var current *models.Interview
	for i := range entries {
		if entries[i].Status == models.InterviewInProgress {
			current = &entries[i]
			break
		}
	}
	if current == nil {
		for i := range entries {
			if !entries[i].StartTime.After(now) && now.Before(entries[i].EndTime) {
				current = &entries[i]
				break
			}
		}
	}

	var previous *models.Interview
	for i := range entries {
		if current != nil && entries[i].ID == current.ID {
			continue
		}
		if entries[i].EndTime.After(now) {
			continue
		}
		if previous == nil || entries[i].EndTime.After(previous.EndTime) {
			previous = &entries[i]
		}
	}

	var next []models.Interview
	for i := range entries {
		if current != nil && entries[i].ID == current.ID {
			continue
		}
		if entries[i].StartTime.After(now) {
			next = append(next, entries[i])
			if len(next) == 2 {
				break
			}
		}
	}

	if previous != nil {
		entry := queueEntry(*previous, c, studentNames)
		pq.Previous = &entry
	}
	if current != nil {
		entry := queueEntry(*current, c, studentNames)
		pq.Current = &entry
	}
	for _, iv := range next {
		pq.Next = append(pq.Next, queueEntry(iv, c, studentNames))
	}
	return pq
}

func queueEntry(iv models.Interview, c models.Company, studentNames map[string]string) dto.LiveQueueEntry {
	role := iv.JobRoleID
	if r, ok := c.Role(iv.JobRoleID); ok {
		role = r.Title
	}
	return dto.LiveQueueEntry{
		InterviewID: iv.ID,
		StudentID:   iv.StudentID,
		StudentName: studentNames[iv.StudentID],
		StartTime:   iv.StartTime.Format("15:04"),
		EndTime:     iv.EndTime.Format("15:04"),
		Role:        role,
		Status:      string(iv.Status),
	}
}
