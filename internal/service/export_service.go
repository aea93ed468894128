package service

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/noah-isme/careerday-api/internal/models"
	appErrors "github.com/noah-isme/careerday-api/pkg/errors"
	"github.com/noah-isme/careerday-api/pkg/export"
)

// ExportService renders the current schedule as CSV or PDF.
type ExportService struct {
	students   StudentReader
	companies  CompanyReader
	interviews InterviewStore
	csv        *export.CSVExporter
	pdf        *export.PDFExporter
	logger     *zap.Logger
	enabled    bool
}

// NewExportService wires the exporter.
func NewExportService(students StudentReader, companies CompanyReader, interviews InterviewStore, logger *zap.Logger, enabled bool) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		students:   students,
		companies:  companies,
		interviews: interviews,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		logger:     logger,
		enabled:    enabled,
	}
}

// Enabled reports whether exports are switched on.
func (s *ExportService) Enabled() bool {
	return s != nil && s.enabled
}

// ScheduleCSV renders the full schedule as CSV.
func (s *ExportService) ScheduleCSV(ctx context.Context) ([]byte, error) {
	data, err := s.scheduleDataset(ctx)
	if err != nil {
		return nil, err
	}
	out, err := s.csv.Render(*data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render schedule csv")
	}
	return out, nil
}

// SchedulePDF renders the full schedule as a PDF table.
func (s *ExportService) SchedulePDF(ctx context.Context) ([]byte, error) {
	data, err := s.scheduleDataset(ctx)
	if err != nil {
		return nil, err
	}
	out, err := s.pdf.Render(*data, "Interview Schedule")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render schedule pdf")
	}
	return out, nil
}

// CompanyScheduleCSV renders one company's schedule as CSV.
func (s *ExportService) CompanyScheduleCSV(ctx context.Context, companyID string) ([]byte, error) {
	snap, err := s.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := snap.companyByID[companyID]; !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "company not found")
	}
	filtered := make([]models.Interview, 0, len(snap.interviews))
	for _, iv := range snap.interviews {
		if iv.CompanyID == companyID {
			filtered = append(filtered, iv)
		}
	}
	snap.interviews = filtered

	out, err := s.csv.Render(*buildScheduleDataset(snap))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render company schedule csv")
	}
	return out, nil
}

// WalkinCSV lists candidates without a shortlisted application.
func (s *ExportService) WalkinCSV(ctx context.Context) ([]byte, error) {
	students, err := s.students.ListWithApplications(ctx)
	if err != nil {
		return nil, appErrors.FromError(err)
	}

	data := export.Dataset{Headers: []string{"Student ID", "Name", "Email", "Applications"}}
	for _, st := range students {
		shortlisted := false
		for _, app := range st.Applications {
			if app.Status == models.ApplicationShortlisted {
				shortlisted = true
				break
			}
		}
		if shortlisted {
			continue
		}
		data.Rows = append(data.Rows, map[string]string{
			"Student ID":   st.ID,
			"Name":         st.Name,
			"Email":        st.Email,
			"Applications": strconv.Itoa(len(st.Applications)),
		})
	}

	out, err := s.csv.Render(data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render walkin csv")
	}
	return out, nil
}

type exportSnapshot struct {
	studentNames map[string]string
	companyByID  map[string]models.Company
	interviews   []models.Interview
}

func (s *ExportService) loadSnapshot(ctx context.Context) (*exportSnapshot, error) {
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

	snap := &exportSnapshot{
		studentNames: make(map[string]string, len(students)),
		companyByID:  make(map[string]models.Company, len(companies)),
		interviews:   interviews,
	}
	for _, st := range students {
		snap.studentNames[st.ID] = st.Name
	}
	for _, c := range companies {
		snap.companyByID[c.ID] = c
	}
	return snap, nil
}

func (s *ExportService) scheduleDataset(ctx context.Context) (*export.Dataset, error) {
	snap, err := s.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	return buildScheduleDataset(snap), nil
}

func buildScheduleDataset(snap *exportSnapshot) *export.Dataset {
	data := &export.Dataset{
		Headers: []string{"Interview", "Start", "End", "Student", "Company", "Role", "Panel", "Status", "Pinned"},
	}
	for _, iv := range snap.interviews {
		c := snap.companyByID[iv.CompanyID]
		role := iv.JobRoleID
		if r, ok := c.Role(iv.JobRoleID); ok {
			role = r.Title
		}
		pinned := ""
		if iv.Pinned {
			pinned = "yes"
		}
		data.Rows = append(data.Rows, map[string]string{
			"Interview": iv.ID,
			"Start":     iv.StartTime.Format("15:04"),
			"End":       iv.EndTime.Format("15:04"),
			"Student":   fmt.Sprintf("%s (%s)", snap.studentNames[iv.StudentID], iv.StudentID),
			"Company":   c.Name,
			"Role":      role,
			"Panel":     iv.PanelID,
			"Status":    string(iv.Status),
			"Pinned":    pinned,
		})
	}
	return data
}
