package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"saodo/internal/models"
	"saodo/internal/repository"
	"saodo/internal/validation"
)

// AnnouncementInput is a new announcement request
type AnnouncementInput struct {
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content" validate:"required,max=5000"`
	Pinned  bool   `json:"pinned"`
}

const defaultAnnouncementLimit = 50

// AnnouncementService manages dashboard announcements
type AnnouncementService struct {
	repo *repository.AnnouncementRepository
}

// NewAnnouncementService creates a new announcement service
func NewAnnouncementService(repo *repository.AnnouncementRepository) *AnnouncementService {
	return &AnnouncementService{repo: repo}
}

// Create publishes an announcement authored by actor
func (s *AnnouncementService) Create(ctx context.Context, actor *models.User, in AnnouncementInput) (*models.Announcement, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	a := models.Announcement{
		ID:        uuid.New().String(),
		Title:     in.Title,
		Content:   in.Content,
		Author:    actor.Name,
		Pinned:    in.Pinned,
		CreatedAt: time.Now(),
	}
	if err := s.repo.CreateAnnouncement(ctx, a); err != nil {
		return nil, err
	}
	return &a, nil
}

// List returns pinned announcements first, then the newest
func (s *AnnouncementService) List(ctx context.Context, limit int) ([]models.Announcement, error) {
	if limit <= 0 || limit > defaultAnnouncementLimit {
		limit = defaultAnnouncementLimit
	}
	return s.repo.GetAnnouncements(ctx, limit)
}

// Delete removes an announcement
func (s *AnnouncementService) Delete(ctx context.Context, id string) error {
	found, err := s.repo.DeleteAnnouncement(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("announcement %s: %w", id, ErrNotFound)
	}
	return nil
}
