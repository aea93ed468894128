package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/careerday-api/internal/models"
	appErrors "github.com/noah-isme/careerday-api/pkg/errors"
)

// StudentFinder fetches a single student.
type StudentFinder interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

// StudentService serves student records for the collaborator surface.
type StudentService struct {
	students StudentReader
	finder   StudentFinder
	logger   *zap.Logger
}

// NewStudentService constructs StudentService.
func NewStudentService(students StudentReader, finder StudentFinder, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{students: students, finder: finder, logger: logger}
}

// List returns all students with applications.
func (s *StudentService) List(ctx context.Context) ([]models.Student, error) {
	students, err := s.students.ListWithApplications(ctx)
	if err != nil {
		return nil, appErrors.FromError(err)
	}
	return students, nil
}

// Get fetches one student.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.finder.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("student %s not found", id))
		}
		return nil, appErrors.FromError(err)
	}
	return student, nil
}
