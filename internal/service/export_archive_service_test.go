package service

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/careerday-api/internal/dto"
	"github.com/noah-isme/careerday-api/internal/models"
	appErrors "github.com/noah-isme/careerday-api/pkg/errors"
	"github.com/noah-isme/careerday-api/pkg/storage"
)

func newArchiveServiceForTest(t *testing.T) *ExportArchiveService {
	t.Helper()

	students := &stubStudentRepo{students: []models.Student{{
		ID: "S1", Name: "Dana", Email: "dana@event.test",
		Applications: []models.Application{{
			ID: "A1", StudentID: "S1", CompanyID: "C1", JobRoleID: "R1",
			Status: models.ApplicationShortlisted,
		}},
	}}}
	companies := &stubCompanyRepo{companies: []models.Company{{
		ID: "C1", Name: "Acme",
		JobRoles: []models.JobRole{{ID: "R1", Title: "Engineer", DurationMinutes: 30}},
	}}}
	start := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	interviews := &stubInterviewRepo{interviews: []models.Interview{{
		ID: "INT-1", StudentID: "S1", CompanyID: "C1", JobRoleID: "R1", PanelID: "C1-P1",
		StartTime: start, EndTime: start.Add(30 * time.Minute), Status: models.InterviewScheduled,
	}}}
	exporter := NewExportService(students, companies, interviews, nil, true)

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("secret", time.Hour)

	svc := NewExportArchiveService(exporter, store, signer, ExportArchiveConfig{
		APIPrefix: "/api/v1",
		ResultTTL: time.Hour,
		Workers:   1,
	}, nil)
	svc.Start(context.Background())
	t.Cleanup(svc.Stop)
	return svc
}

func TestExportArchiveLifecycle(t *testing.T) {
	svc := newArchiveServiceForTest(t)

	resp, err := svc.Enqueue(context.Background(), dto.ArchiveExportRequest{Kind: ExportKindScheduleCSV})
	require.NoError(t, err)
	require.NotEmpty(t, resp.ID)

	var final *dto.ArchiveExportResponse
	require.Eventually(t, func() bool {
		st, err := svc.Status(resp.ID)
		if err != nil {
			return false
		}
		final = st
		return st.Status == "done"
	}, 5*time.Second, 10*time.Millisecond)

	require.Contains(t, final.DownloadURL, "/api/v1/exports/download/")
	assert.NotEmpty(t, final.ExpiresAt)

	token := final.DownloadURL[strings.LastIndex(final.DownloadURL, "/")+1:]
	dl, err := svc.Resolve(token)
	require.NoError(t, err)
	defer dl.File.Close() //nolint:errcheck

	assert.Equal(t, "text/csv", dl.MimeType)
	body, err := io.ReadAll(dl.File)
	require.NoError(t, err)
	assert.Contains(t, string(body), "INT-1")
	assert.Contains(t, string(body), "Acme")
}

func TestExportArchiveRejectsUnknownKind(t *testing.T) {
	svc := newArchiveServiceForTest(t)

	_, err := svc.Enqueue(context.Background(), dto.ArchiveExportRequest{Kind: "nope"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExportArchiveStatusNotFound(t *testing.T) {
	svc := newArchiveServiceForTest(t)

	_, err := svc.Status("missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestExportArchiveResolveBadToken(t *testing.T) {
	svc := newArchiveServiceForTest(t)

	_, err := svc.Resolve("not.a.valid.token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
