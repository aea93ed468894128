package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/noah-isme/careerday-api/internal/models"
)

// CompanyRepository manages persistence for companies. Job roles, panels,
// and break intervals are stored as JSONB documents on the company row.
type CompanyRepository struct {
	db *sqlx.DB
}

// NewCompanyRepository constructs a CompanyRepository.
func NewCompanyRepository(db *sqlx.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

type companyRow struct {
	ID                string         `db:"id"`
	Name              string         `db:"name"`
	JobRoles          types.JSONText `db:"job_roles"`
	Panels            types.JSONText `db:"panels"`
	AvailabilityStart string         `db:"availability_start"`
	AvailabilityEnd   string         `db:"availability_end"`
	Breaks            types.JSONText `db:"breaks"`
	WalkInOpen        bool           `db:"walk_in_open"`
	Pinned            bool           `db:"pinned"`
	CreatedAt         time.Time      `db:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at"`
}

func (row companyRow) toModel() (models.Company, error) {
	c := models.Company{
		ID:                row.ID,
		Name:              row.Name,
		AvailabilityStart: row.AvailabilityStart,
		AvailabilityEnd:   row.AvailabilityEnd,
		WalkInOpen:        row.WalkInOpen,
		Pinned:            row.Pinned,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}
	if len(row.JobRoles) > 0 {
		if err := json.Unmarshal(row.JobRoles, &c.JobRoles); err != nil {
			return c, fmt.Errorf("decode job roles for %s: %w", row.ID, err)
		}
	}
	if len(row.Panels) > 0 {
		if err := json.Unmarshal(row.Panels, &c.Panels); err != nil {
			return c, fmt.Errorf("decode panels for %s: %w", row.ID, err)
		}
	}
	if len(row.Breaks) > 0 {
		if err := json.Unmarshal(row.Breaks, &c.Breaks); err != nil {
			return c, fmt.Errorf("decode breaks for %s: %w", row.ID, err)
		}
	}
	return c, nil
}

const companyColumns = `id, name, job_roles, panels, availability_start, availability_end, breaks, walk_in_open, pinned, created_at, updated_at`

// List returns all companies ordered by id.
func (r *CompanyRepository) List(ctx context.Context) ([]models.Company, error) {
	query := fmt.Sprintf(`SELECT %s FROM companies ORDER BY id`, companyColumns)
	var rows []companyRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	companies := make([]models.Company, 0, len(rows))
	for _, row := range rows {
		c, err := row.toModel()
		if err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}
	return companies, nil
}

// FindByID fetches one company.
func (r *CompanyRepository) FindByID(ctx context.Context, id string) (*models.Company, error) {
	query := fmt.Sprintf(`SELECT %s FROM companies WHERE id = $1`, companyColumns)
	var row companyRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find company: %w", err)
	}
	c, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Update persists scheduling settings and panel configuration.
func (r *CompanyRepository) Update(ctx context.Context, company *models.Company) error {
	jobRoles, err := json.Marshal(company.JobRoles)
	if err != nil {
		return fmt.Errorf("encode job roles: %w", err)
	}
	panels, err := json.Marshal(company.Panels)
	if err != nil {
		return fmt.Errorf("encode panels: %w", err)
	}
	breaks, err := json.Marshal(company.Breaks)
	if err != nil {
		return fmt.Errorf("encode breaks: %w", err)
	}
	company.UpdatedAt = time.Now().UTC()

	const query = `UPDATE companies
        SET name = $2, job_roles = $3, panels = $4, availability_start = $5, availability_end = $6,
            breaks = $7, walk_in_open = $8, pinned = $9, updated_at = $10
        WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, company.ID, company.Name, jobRoles, panels,
		company.AvailabilityStart, company.AvailabilityEnd, breaks,
		company.WalkInOpen, company.Pinned, company.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update company: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update company: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
