package service

import (
	"context"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/careerday-api/internal/dto"
	"github.com/noah-isme/careerday-api/internal/models"
	"github.com/noah-isme/careerday-api/pkg/config"
	appErrors "github.com/noah-isme/careerday-api/pkg/errors"
)

// StudentReader loads the student snapshot for an allocation run.
type StudentReader interface {
	ListWithApplications(ctx context.Context) ([]models.Student, error)
}

// CompanyReader loads the company snapshot for an allocation run.
type CompanyReader interface {
	List(ctx context.Context) ([]models.Company, error)
}

// InterviewStore persists allocation output and serves the current schedule.
type InterviewStore interface {
	ListAll(ctx context.Context) ([]models.Interview, error)
	ReplaceGenerated(ctx context.Context, generated []models.Interview) error
}

// ApplicationStatusWriter applies post-run application demotions.
type ApplicationStatusWriter interface {
	UpdateApplicationStatuses(ctx context.Context, ids []string, status models.ApplicationStatus) error
}

// AllocationService orchestrates schedule runs: snapshot load, allocation,
// and atomic persistence. The mutex serialises runs against lifecycle
// writes so concurrent mutations never interleave with a replace.
type AllocationService struct {
	students     StudentReader
	companies    CompanyReader
	interviews   InterviewStore
	applications ApplicationStatusWriter
	allocator    *Allocator
	cache        *CacheService
	validator    *validator.Validate
	logger       *zap.Logger
	metrics      *MetricsService
	cfg          config.AllocatorConfig

	mu *sync.Mutex
}

// NewAllocationService wires the run orchestrator. The guard mutex is
// shared with InterviewService so a lifecycle write can never race a run.
func NewAllocationService(
	students StudentReader,
	companies CompanyReader,
	interviews InterviewStore,
	applications ApplicationStatusWriter,
	allocator *Allocator,
	cache *CacheService,
	cfg config.AllocatorConfig,
	logger *zap.Logger,
	metrics *MetricsService,
	guard *sync.Mutex,
) *AllocationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if guard == nil {
		guard = &sync.Mutex{}
	}
	return &AllocationService{
		students:     students,
		companies:    companies,
		interviews:   interviews,
		applications: applications,
		allocator:    allocator,
		cache:        cache,
		validator:    validator.New(),
		logger:       logger,
		metrics:      metrics,
		cfg:          cfg,
		mu:           guard,
	}
}

// Run executes one allocation over the current database snapshot and
// replaces the generated schedule. Pinned interviews survive verbatim.
func (s *AllocationService) Run(ctx context.Context, req dto.RunScheduleRequest) (*dto.RunScheduleResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid run request")
	}
	eventDate, err := time.ParseInLocation("2006-01-02", req.EventDate, time.UTC)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrConfig, "event_date must be YYYY-MM-DD")
	}
	budget := s.cfg.SolverTimeBudget
	if req.TimeBudget != "" {
		parsed, err := time.ParseDuration(req.TimeBudget)
		if err != nil || parsed <= 0 {
			return nil, appErrors.Clone(appErrors.ErrConfig, "time_budget must be a positive duration")
		}
		budget = parsed
	}
	seed := s.cfg.RandomSeed
	if req.RandomSeed != nil {
		seed = *req.RandomSeed
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	students, err := s.students.ListWithApplications(ctx)
	if err != nil {
		return nil, appErrors.FromError(err)
	}
	companies, err := s.companies.List(ctx)
	if err != nil {
		return nil, appErrors.FromError(err)
	}
	existing, err := s.interviews.ListAll(ctx)
	if err != nil {
		return nil, appErrors.FromError(err)
	}

	started := time.Now()
	outcome, err := s.allocator.Allocate(ctx, AllocationInput{
		EventDate:          eventDate,
		Students:           students,
		Companies:          companies,
		PinnedCompanyIDs:   req.PinnedCompanyIDs,
		ExistingInterviews: existing,
		TimeBudget:         budget,
		Seed:               seed,
	})
	if err != nil {
		return nil, appErrors.FromError(err)
	}

	if err := s.interviews.ReplaceGenerated(ctx, outcome.Interviews); err != nil {
		return nil, appErrors.FromError(err)
	}
	if err := s.applications.UpdateApplicationStatuses(ctx, outcome.DemotedApplicationIDs, models.ApplicationWaitlisted); err != nil {
		return nil, appErrors.FromError(err)
	}

	if err := s.cache.Invalidate(ctx, "careerday:*"); err != nil {
		s.logger.Warn("statistics cache invalidation failed", zap.Error(err))
	}

	elapsed := time.Since(started)
	s.metrics.ObserveAllocationRun(outcome.SolverStatus, outcome.GeneratedCount, len(outcome.DemotedApplicationIDs), outcome.Restarts, elapsed)

	runID := uuid.NewString()
	s.logger.Info("allocation run completed",
		zap.String("run_id", runID),
		zap.String("event_date", req.EventDate),
		zap.String("solver_status", string(outcome.SolverStatus)),
		zap.Int("scheduled", outcome.GeneratedCount),
		zap.Int("pinned", outcome.PinnedCount),
		zap.Int("demoted", len(outcome.DemotedApplicationIDs)),
		zap.Int("dropped", len(outcome.Dropped)),
		zap.Duration("elapsed", elapsed))

	resp := &dto.RunScheduleResponse{
		RunID:        runID,
		EventDate:    req.EventDate,
		SolverStatus: string(outcome.SolverStatus),
		Scheduled:    outcome.GeneratedCount,
		Pinned:       outcome.PinnedCount,
		Demoted:      len(outcome.DemotedApplicationIDs),
		Warnings:     outcome.Warnings,
	}
	for _, d := range outcome.Dropped {
		resp.Dropped = append(resp.Dropped, dto.DroppedRequest{
			StudentID: d.studentID,
			CompanyID: d.companyID,
			JobRoleID: d.roleID,
			Reason:    d.reason,
		})
	}
	return resp, nil
}

// Schedule returns the current schedule ordered by start time.
func (s *AllocationService) Schedule(ctx context.Context) ([]models.Interview, error) {
	interviews, err := s.interviews.ListAll(ctx)
	if err != nil {
		return nil, appErrors.FromError(err)
	}
	return interviews, nil
}
