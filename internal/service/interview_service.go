package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/careerday-api/internal/models"
	appErrors "github.com/noah-isme/careerday-api/pkg/errors"
)

// InterviewReaderWriter serves single interviews and status updates.
type InterviewReaderWriter interface {
	FindByID(ctx context.Context, id string) (*models.Interview, error)
	ListAll(ctx context.Context) ([]models.Interview, error)
	UpdateStatus(ctx context.Context, id string, status models.InterviewStatus) error
}

// InterviewService applies lifecycle transitions under the same guard the
// allocation run holds, so a transition never lands mid-replace.
type InterviewService struct {
	interviews InterviewReaderWriter
	cache      *CacheService
	logger     *zap.Logger
	metrics    *MetricsService
	mu         *sync.Mutex
}

// NewInterviewService wires the lifecycle service.
func NewInterviewService(interviews InterviewReaderWriter, cache *CacheService, logger *zap.Logger, metrics *MetricsService, guard *sync.Mutex) *InterviewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if guard == nil {
		guard = &sync.Mutex{}
	}
	return &InterviewService{interviews: interviews, cache: cache, logger: logger, metrics: metrics, mu: guard}
}

// Transition moves an interview to the target status. Repeating the
// current status is a no-op; transitions out of a terminal state fail.
func (s *InterviewService) Transition(ctx context.Context, id string, target models.InterviewStatus) (*models.Interview, error) {
	if !target.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown interview status %q", target))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	iv, err := s.interviews.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("interview %s not found", id))
		}
		return nil, appErrors.FromError(err)
	}

	if iv.Status == target {
		return iv, nil
	}
	if !models.CanTransition(iv.Status, target) {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition,
			fmt.Sprintf("cannot move interview %s from %s to %s", id, iv.Status, target))
	}

	if err := s.interviews.UpdateStatus(ctx, id, target); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("interview %s not found", id))
		}
		return nil, appErrors.FromError(err)
	}

	if err := s.cache.Invalidate(ctx, "careerday:*"); err != nil {
		s.logger.Warn("statistics cache invalidation failed", zap.Error(err))
	}

	s.metrics.RecordTransition(string(target))
	s.logger.Info("interview transitioned",
		zap.String("interview_id", id),
		zap.String("from", string(iv.Status)),
		zap.String("to", string(target)))

	iv.Status = target
	return iv, nil
}

// Get fetches one interview.
func (s *InterviewService) Get(ctx context.Context, id string) (*models.Interview, error) {
	iv, err := s.interviews.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("interview %s not found", id))
		}
		return nil, appErrors.FromError(err)
	}
	return iv, nil
}
