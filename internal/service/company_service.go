package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/careerday-api/internal/dto"
	"github.com/noah-isme/careerday-api/internal/models"
	appErrors "github.com/noah-isme/careerday-api/pkg/errors"
)

// CompanyWriter persists company configuration changes.
type CompanyWriter interface {
	FindByID(ctx context.Context, id string) (*models.Company, error)
	Update(ctx context.Context, company *models.Company) error
}

// CompanyService manages company scheduling configuration.
type CompanyService struct {
	companies CompanyReader
	writer    CompanyWriter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCompanyService wires the configuration service.
func NewCompanyService(companies CompanyReader, writer CompanyWriter, logger *zap.Logger) *CompanyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CompanyService{companies: companies, writer: writer, validator: validator.New(), logger: logger}
}

// List returns all companies.
func (s *CompanyService) List(ctx context.Context) ([]models.Company, error) {
	companies, err := s.companies.List(ctx)
	if err != nil {
		return nil, appErrors.FromError(err)
	}
	return companies, nil
}

// Get fetches one company.
func (s *CompanyService) Get(ctx context.Context, id string) (*models.Company, error) {
	c, err := s.writer.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("company %s not found", id))
		}
		return nil, appErrors.FromError(err)
	}
	return c, nil
}

// UpdateSettings replaces the availability window, breaks, pinned flag, and
// optionally the panel configuration of a company.
func (s *CompanyService) UpdateSettings(ctx context.Context, id string, req dto.CompanySettingsRequest) (*models.Company, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid company settings")
	}
	startMin, err := clockMinutes(req.AvailabilityStart)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrConfig, "availability_start must be HH:MM")
	}
	endMin, err := clockMinutes(req.AvailabilityEnd)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrConfig, "availability_end must be HH:MM")
	}
	if startMin >= endMin {
		return nil, appErrors.Clone(appErrors.ErrConfig, "availability window is inverted")
	}

	company, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	company.AvailabilityStart = req.AvailabilityStart
	company.AvailabilityEnd = req.AvailabilityEnd
	company.Breaks = toBreakIntervals(req.Breaks)
	if req.Pinned != nil {
		company.Pinned = *req.Pinned
	}
	if req.Panels != nil {
		panels := make([]models.Panel, 0, len(req.Panels))
		for _, p := range req.Panels {
			for _, roleID := range p.JobRoleIDs {
				if _, ok := company.Role(roleID); !ok {
					return nil, appErrors.Clone(appErrors.ErrValidation,
						fmt.Sprintf("panel %s references unknown job role %s", p.PanelID, roleID))
				}
			}
			panels = append(panels, models.Panel{
				PanelID:             p.PanelID,
				Label:               p.Label,
				JobRoleIDs:          p.JobRoleIDs,
				SlotDurationMinutes: p.SlotDurationMinutes,
				ReservedWalkinSlots: p.ReservedWalkinSlots,
				WalkInOpen:          p.WalkInOpen,
				Breaks:              toBreakIntervals(p.Breaks),
			})
		}
		company.Panels = panels
	}

	if err := s.writer.Update(ctx, company); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("company %s not found", id))
		}
		return nil, appErrors.FromError(err)
	}

	s.logger.Info("company settings updated",
		zap.String("company_id", id),
		zap.Int("panels", len(company.Panels)),
		zap.Bool("pinned", company.Pinned))
	return company, nil
}

func toBreakIntervals(reqs []dto.BreakIntervalRequest) []models.BreakInterval {
	if len(reqs) == 0 {
		return nil
	}
	out := make([]models.BreakInterval, 0, len(reqs))
	for _, b := range reqs {
		out = append(out, models.BreakInterval{Start: b.Start, End: b.End})
	}
	return out
}
