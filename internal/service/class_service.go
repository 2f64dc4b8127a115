package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"saodo/internal/events"
	"saodo/internal/models"
	"saodo/internal/realtime"
	"saodo/internal/repository"
	"saodo/internal/validation"
)

// ClassInput is the editable part of a class
type ClassInput struct {
	Name  string `json:"name" validate:"required,max=32"`
	Grade int    `json:"grade" validate:"min=1,max=5"`
}

// ClassService manages the list of scored classes
type ClassService struct {
	classRepo *repository.ClassRepository
	store     *realtime.Store
	publisher *events.Publisher
	logger    *slog.Logger
}

// NewClassService creates a new class service
func NewClassService(classRepo *repository.ClassRepository, store *realtime.Store, publisher *events.Publisher, logger *slog.Logger) *ClassService {
	return &ClassService{
		classRepo: classRepo,
		store:     store,
		publisher: publisher,
		logger:    logger.With(slog.String("component", "class_service")),
	}
}

// List returns every class ordered by grade then name
func (s *ClassService) List(ctx context.Context) ([]models.Class, error) {
	return s.classRepo.GetAllClasses(ctx)
}

// Create adds a class
func (s *ClassService) Create(ctx context.Context, in ClassInput) (*models.Class, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	class := models.Class{ID: uuid.New().String(), Name: in.Name, Grade: in.Grade}
	if err := s.classRepo.CreateClass(ctx, class); err != nil {
		return nil, err
	}
	s.changed(ctx, class.ID)
	s.logger.Info("class_created", slog.String("class", class.ID), slog.String("name", class.Name))
	return &class, nil
}

// Update changes a class's name and grade
func (s *ClassService) Update(ctx context.Context, id string, in ClassInput) (*models.Class, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	class := models.Class{ID: id, Name: in.Name, Grade: in.Grade}
	found, err := s.classRepo.UpdateClass(ctx, class)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("class %s: %w", id, ErrNotFound)
	}
	s.changed(ctx, id)
	return &class, nil
}

// Delete removes a class. Its historical logs stay stored and stop being ranked.
func (s *ClassService) Delete(ctx context.Context, id string) error {
	found, err := s.classRepo.DeleteClass(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("class %s: %w", id, ErrNotFound)
	}
	s.changed(ctx, id)
	s.logger.Info("class_deleted", slog.String("class", id))
	return nil
}

func (s *ClassService) changed(ctx context.Context, id string) {
	refresh(ctx, s.store, realtime.Classes, s.logger)
	publish(ctx, s.publisher, events.Event{Type: events.TypeClassChanged, RecordID: id, ClassID: id}, s.logger)
}
