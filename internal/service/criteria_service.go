package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"saodo/internal/models"
	"saodo/internal/repository"
	"saodo/internal/validation"
)

// CriteriaInput is the editable part of a criteria config
type CriteriaInput struct {
	Name      string `json:"name" validate:"required,max=100"`
	MaxPoints int    `json:"maxPoints" validate:"gt=0,max=100"`
	Type      string `json:"type" validate:"required,oneof=discipline hygiene study uniform other"`
}

// CriteriaService manages the discipline rules deductions refer to
type CriteriaService struct {
	criteriaRepo *repository.CriteriaRepository
	logger       *slog.Logger
}

// NewCriteriaService creates a new criteria service
func NewCriteriaService(criteriaRepo *repository.CriteriaRepository, logger *slog.Logger) *CriteriaService {
	return &CriteriaService{
		criteriaRepo: criteriaRepo,
		logger:       logger.With(slog.String("component", "criteria_service")),
	}
}

// List returns every criteria config
func (s *CriteriaService) List(ctx context.Context) ([]models.CriteriaConfig, error) {
	return s.criteriaRepo.GetAllCriteria(ctx)
}

// Get returns one criteria config
func (s *CriteriaService) Get(ctx context.Context, id string) (*models.CriteriaConfig, error) {
	c, err := s.criteriaRepo.GetCriteriaByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("criteria %s: %w", id, ErrNotFound)
	}
	return c, nil
}

// Create adds a criteria config
func (s *CriteriaService) Create(ctx context.Context, in CriteriaInput) (*models.CriteriaConfig, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	c := models.CriteriaConfig{ID: uuid.New().String(), Name: in.Name, MaxPoints: in.MaxPoints, Type: in.Type}
	if err := s.criteriaRepo.CreateCriteria(ctx, c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Update changes a criteria config. Existing deductions keep their recorded points.
func (s *CriteriaService) Update(ctx context.Context, id string, in CriteriaInput) (*models.CriteriaConfig, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	c := models.CriteriaConfig{ID: id, Name: in.Name, MaxPoints: in.MaxPoints, Type: in.Type}
	found, err := s.criteriaRepo.UpdateCriteria(ctx, c)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("criteria %s: %w", id, ErrNotFound)
	}
	return &c, nil
}

// Delete removes a criteria config
func (s *CriteriaService) Delete(ctx context.Context, id string) error {
	found, err := s.criteriaRepo.DeleteCriteria(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("criteria %s: %w", id, ErrNotFound)
	}
	return nil
}

// SeedDefaults fills an empty criteria table with the default rules
func (s *CriteriaService) SeedDefaults(ctx context.Context) (int, error) {
	count, err := s.criteriaRepo.CountCriteria(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}
	defaults := models.DefaultCriteria()
	for _, c := range defaults {
		c.ID = uuid.New().String()
		if err := s.criteriaRepo.CreateCriteria(ctx, c); err != nil {
			return 0, fmt.Errorf("failed to seed criteria %q: %w", c.Name, err)
		}
	}
	s.logger.Info("criteria_seeded", slog.Int("count", len(defaults)))
	return len(defaults), nil
}

// names maps criteria IDs to display names
func (s *CriteriaService) names(ctx context.Context) (map[string]string, error) {
	all, err := s.criteriaRepo.GetAllCriteria(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(all))
	for _, c := range all {
		out[c.ID] = c.Name
	}
	return out, nil
}
