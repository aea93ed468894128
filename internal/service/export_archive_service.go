package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/careerday-api/internal/dto"
	appErrors "github.com/noah-isme/careerday-api/pkg/errors"
	"github.com/noah-isme/careerday-api/pkg/jobs"
)

// Export kinds accepted by the archive queue.
const (
	ExportKindScheduleCSV = "schedule_csv"
	ExportKindSchedulePDF = "schedule_pdf"
	ExportKindWalkinsCSV  = "walkins_csv"
)

// Archive job states.
const (
	archiveStatusQueued = "queued"
	archiveStatusDone   = "done"
	archiveStatusFailed = "failed"
)

type exportFileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type exportTokenSigner interface {
	Generate(jobID, relPath string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error)
}

// ExportArchiveConfig tunes background export generation.
type ExportArchiveConfig struct {
	APIPrefix string
	ResultTTL time.Duration
	Workers   int
}

// ExportDownload bundles a resolved archived file for streaming.
type ExportDownload struct {
	File      *os.File
	Filename  string
	MimeType  string
	ExpiresAt time.Time
}

type archiveJob struct {
	ID        string
	Kind      string
	Status    string
	Token     string
	URL       string
	ExpiresAt time.Time
	Error     string
	CreatedAt time.Time
}

// ExportArchiveService renders exports in the background and keeps the
// results on disk behind signed download tokens.
type ExportArchiveService struct {
	exporter *ExportService
	storage  exportFileStorage
	signer   exportTokenSigner
	queue    *jobs.Queue

	mu       sync.RWMutex
	registry map[string]*archiveJob

	validator *validator.Validate
	logger    *zap.Logger
	cfg       ExportArchiveConfig
}

// NewExportArchiveService constructs the archive service and its worker queue.
func NewExportArchiveService(exporter *ExportService, store exportFileStorage, signer exportTokenSigner, cfg ExportArchiveConfig, logger *zap.Logger) *ExportArchiveService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	s := &ExportArchiveService{
		exporter:  exporter,
		storage:   store,
		signer:    signer,
		registry:  make(map[string]*archiveJob),
		validator: validator.New(),
		logger:    logger,
		cfg:       cfg,
	}
	s.queue = jobs.NewQueue("export-archive", s.process, jobs.QueueConfig{
		Workers: cfg.Workers,
		Logger:  logger,
	})
	return s
}

// Start launches the worker pool.
func (s *ExportArchiveService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the worker pool.
func (s *ExportArchiveService) Stop() {
	s.queue.Stop()
}

// Enqueue registers an export job and hands it to the queue.
func (s *ExportArchiveService) Enqueue(ctx context.Context, req dto.ArchiveExportRequest) (*dto.ArchiveExportResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export request")
	}

	job := &archiveJob{
		ID:        uuid.NewString(),
		Kind:      req.Kind,
		Status:    archiveStatusQueued,
		CreatedAt: time.Now().UTC(),
	}
	s.mu.Lock()
	s.registry[job.ID] = job
	s.mu.Unlock()

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: req.Kind}); err != nil {
		s.fail(job.ID, err)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export")
	}
	s.logger.Sugar().Infow("export queued", "job_id", job.ID, "kind", req.Kind)
	return s.Status(job.ID)
}

// Status reports a job's state by id.
func (s *ExportArchiveService) Status(id string) (*dto.ArchiveExportResponse, error) {
	s.mu.RLock()
	job, ok := s.registry[id]
	if !ok {
		s.mu.RUnlock()
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
	}
	resp := &dto.ArchiveExportResponse{
		ID:          job.ID,
		Kind:        job.Kind,
		Status:      job.Status,
		DownloadURL: job.URL,
		Error:       job.Error,
	}
	if !job.ExpiresAt.IsZero() {
		resp.ExpiresAt = job.ExpiresAt.UTC().Format(time.RFC3339)
	}
	s.mu.RUnlock()
	return resp, nil
}

// Resolve validates a download token and opens the archived file.
func (s *ExportArchiveService) Resolve(token string) (*ExportDownload, error) {
	jobID, relPath, expiresAt, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "invalid download token")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		s.logger.Sugar().Warnw("archived export missing", "job_id", jobID, "path", relPath, "error", err)
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export no longer available")
	}
	return &ExportDownload{
		File:      file,
		Filename:  filepath.Base(relPath),
		MimeType:  mimeForFilename(relPath),
		ExpiresAt: expiresAt,
	}, nil
}

// Cleanup removes expired files and prunes finished registry entries.
func (s *ExportArchiveService) Cleanup() ([]string, error) {
	deleted, err := s.storage.CleanupOlderThan(s.cfg.ResultTTL)
	if err != nil {
		return nil, err
	}
	cutoff := time.Now().Add(-s.cfg.ResultTTL)
	s.mu.Lock()
	for id, job := range s.registry {
		if job.Status != archiveStatusQueued && job.CreatedAt.Before(cutoff) {
			delete(s.registry, id)
		}
	}
	s.mu.Unlock()
	return deleted, nil
}

func (s *ExportArchiveService) process(ctx context.Context, job jobs.Job) error {
	payload, ext, err := s.render(ctx, job.Type)
	if err != nil {
		s.fail(job.ID, err)
		return err
	}

	filename := fmt.Sprintf("%s_%s.%s", job.Type, time.Now().UTC().Format("20060102_150405"), ext)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		s.fail(job.ID, err)
		return err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		s.fail(job.ID, err)
		return err
	}

	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	url := fmt.Sprintf("%s/exports/download/%s", prefix, token)

	s.mu.Lock()
	if j, ok := s.registry[job.ID]; ok {
		j.Status = archiveStatusDone
		j.Token = token
		j.URL = url
		j.ExpiresAt = expiresAt
		j.Error = ""
	}
	s.mu.Unlock()
	s.logger.Sugar().Infow("export archived", "job_id", job.ID, "kind", job.Type, "path", relPath)
	return nil
}

func (s *ExportArchiveService) render(ctx context.Context, kind string) ([]byte, string, error) {
	switch kind {
	case ExportKindScheduleCSV:
		out, err := s.exporter.ScheduleCSV(ctx)
		return out, "csv", err
	case ExportKindSchedulePDF:
		out, err := s.exporter.SchedulePDF(ctx)
		return out, "pdf", err
	case ExportKindWalkinsCSV:
		out, err := s.exporter.WalkinCSV(ctx)
		return out, "csv", err
	default:
		return nil, "", fmt.Errorf("unsupported export kind %s", kind)
	}
}

func (s *ExportArchiveService) fail(id string, err error) {
	s.mu.Lock()
	if j, ok := s.registry[id]; ok {
		j.Status = archiveStatusFailed
		j.Error = err.Error()
	}
	s.mu.Unlock()
}

func mimeForFilename(name string) string {
	if strings.HasSuffix(name, ".pdf") {
		return "application/pdf"
	}
	return "text/csv"
}
