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

const (
	statisticsCacheKey = "careerday:statistics"
	summaryCacheKey    = "careerday:summary"
)

// StatisticsService aggregates event-wide and per-company counts. Results
// are cached; allocation runs invalidate the cache.
type StatisticsService struct {
	students   StudentReader
	companies  CompanyReader
	interviews InterviewStore
	cache      *CacheService
	logger     *zap.Logger
	ttl        time.Duration
	now        func() time.Time
}

// NewStatisticsService wires the aggregator.
func NewStatisticsService(students StudentReader, companies CompanyReader, interviews InterviewStore, cache *CacheService, ttl time.Duration, logger *zap.Logger) *StatisticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatisticsService{
		students:   students,
		companies:  companies,
		interviews: interviews,
		cache:      cache,
		logger:     logger,
		ttl:        ttl,
		now:        time.Now,
	}
}

// Statistics returns the event-wide snapshot.
func (s *StatisticsService) Statistics(ctx context.Context) (*dto.StatisticsResponse, error) {
	var cached dto.StatisticsResponse
	if hit, _ := s.cache.Get(ctx, statisticsCacheKey, &cached); hit {
		return &cached, nil
	}

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

	resp := buildStatistics(students, companies, interviews)
	if err := s.cache.Set(ctx, statisticsCacheKey, resp, s.ttl); err != nil {
		s.logger.Warn("statistics cache write failed", zap.Error(err))
	}
	return resp, nil
}

// Summary returns the per-company operational overview.
func (s *StatisticsService) Summary(ctx context.Context) ([]dto.CompanySummary, error) {
	var cached []dto.CompanySummary
	if hit, _ := s.cache.Get(ctx, summaryCacheKey, &cached); hit {
		return cached, nil
	}

	companies, err := s.companies.List(ctx)
	if err != nil {
		return nil, appErrors.FromError(err)
	}
	interviews, err := s.interviews.ListAll(ctx)
	if err != nil {
		return nil, appErrors.FromError(err)
	}

	summaries := buildSummaries(s.now(), companies, interviews)
	if err := s.cache.Set(ctx, summaryCacheKey, summaries, s.ttl); err != nil {
		s.logger.Warn("summary cache write failed", zap.Error(err))
	}
	return summaries, nil
}

// InvalidateCache drops cached aggregates after a schedule change.
func (s *StatisticsService) InvalidateCache(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, "careerday:*"); err != nil {
		s.logger.Warn("statistics cache invalidation failed", zap.Error(err))
	}
}

func buildStatistics(students []models.Student, companies []models.Company, interviews []models.Interview) *dto.StatisticsResponse {
	resp := &dto.StatisticsResponse{}
	resp.Students.Total = len(students)
	resp.Companies.Total = len(companies)

	companyNames := make(map[string]string, len(companies))
	perCompany := make(map[string]*dto.CompanyBreakdown, len(companies))
	var companyOrder []string
	for _, c := range companies {
		companyNames[c.ID] = c.Name
		perCompany[c.ID] = &dto.CompanyBreakdown{CompanyID: c.ID, CompanyName: c.Name}
		companyOrder = append(companyOrder, c.ID)
		walkin := c.WalkInOpen
		for _, p := range c.Panels {
			resp.Companies.TotalReservedWalkinSlots += p.ReservedWalkinSlots
			if p.WalkInOpen {
				walkin = true
			}
		}
		if walkin {
			resp.Companies.WalkinEnabled++
		}
	}
	sort.Strings(companyOrder)

	for _, st := range students {
		shortlisted := false
		for _, app := range st.Applications {
			resp.Applications.Total++
			switch app.Status {
			case models.ApplicationShortlisted:
				resp.Applications.Shortlisted++
				shortlisted = true
				if b := perCompany[app.CompanyID]; b != nil {
					b.Shortlisted++
				}
			case models.ApplicationApplied:
				resp.Applications.Applied++
				if b := perCompany[app.CompanyID]; b != nil {
					b.Applied++
				}
			}
		}
		if shortlisted {
			resp.Students.Shortlisted++
		} else {
			resp.Students.WalkinCandidates++
			resp.WalkinStudents = append(resp.WalkinStudents, dto.WalkinStudent{
				ID:               st.ID,
				Name:             st.Name,
				Email:            st.Email,
				ApplicationCount: len(st.Applications),
			})
		}
	}

	for _, iv := range interviews {
		if iv.Status != models.InterviewCancelled {
			resp.Interviews.TotalScheduled++
		}
	}
	for _, id := range companyOrder {
		resp.PerCompany = append(resp.PerCompany, *perCompany[id])
	}
	return resp
}

func buildSummaries(now time.Time, companies []models.Company, interviews []models.Interview) []dto.CompanySummary {
	byCompany := make(map[string][]models.Interview)
	for _, iv := range interviews {
		if iv.Status == models.InterviewCancelled {
			continue
		}
		byCompany[iv.CompanyID] = append(byCompany[iv.CompanyID], iv)
	}

	summaries := make([]dto.CompanySummary, 0, len(companies))
	for _, c := range companies {
		s := dto.CompanySummary{
			ID:             c.ID,
			Name:           c.Name,
			NumPanels:      len(c.Panels),
			WalkInOpen:     c.WalkInOpen,
			InterviewStart: c.AvailabilityStart,
			InterviewEnd:   c.AvailabilityEnd,
		}
		if s.NumPanels == 0 {
			s.NumPanels = 1
		}
		for _, r := range c.JobRoles {
			s.Positions = append(s.Positions, r.Title)
		}

		own := byCompany[c.ID]
		s.TotalScheduled = len(own)
		var next *time.Time
		for _, iv := range own {
			if iv.StartTime.After(now) {
				if next == nil || iv.StartTime.Before(*next) {
					t := iv.StartTime
					next = &t
				}
			}
		}
		if next != nil {
			formatted := next.Format("15:04")
			s.NextInterviewAt = &formatted
		}
		s.SlotsRemainingToday = remainingSlots(now, c, own)
		summaries = append(summaries, s)
	}
	return summaries
}

// remainingSlots estimates how many interview starts each panel still has
// before the availability window closes, net of already-booked interviews.
func remainingSlots(now time.Time, c models.Company, booked []models.Interview) int {
	endMin, err := clockMinutes(c.AvailabilityEnd)
	if err != nil {
		return 0
	}
	startMin, err := clockMinutes(c.AvailabilityStart)
	if err != nil {
		return 0
	}
	nowMin := now.Hour()*60 + now.Minute()
	if nowMin < startMin {
		nowMin = startMin
	}
	if nowMin >= endMin {
		return 0
	}

	panels := c.Panels
	if len(panels) == 0 {
		panels = []models.Panel{c.DefaultPanel(30)}
	}
	total := 0
	for _, p := range panels {
		dur := p.SlotDurationMinutes
		if dur <= 0 {
			dur = 30
		}
		capacity := (endMin - nowMin) / dur
		used := 0
		for _, iv := range booked {
			if iv.PanelID == p.PanelID && iv.EndTime.After(now) {
				used++
			}
		}
		if capacity > used {
			total += capacity - used
		}
	}
	return total
}
