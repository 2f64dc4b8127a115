package repository

import (
	"context"
	"fmt"

	"saodo/internal/database"
	"saodo/internal/models"
)

// AnnouncementRepository handles database operations for announcements
type AnnouncementRepository struct {
	db *database.DB
}

// NewAnnouncementRepository creates a new announcement repository
func NewAnnouncementRepository(db *database.DB) *AnnouncementRepository {
	return &AnnouncementRepository{db: db}
}

// CreateAnnouncement inserts an announcement
func (r *AnnouncementRepository) CreateAnnouncement(ctx context.Context, a models.Announcement) error {
	query := "INSERT INTO announcements (id, title, content, author, pinned, created_at) VALUES (?, ?, ?, ?, ?, ?)"
	if _, err := r.db.ExecContext(ctx, query, a.ID, a.Title, a.Content, a.Author, a.Pinned, a.CreatedAt); err != nil {
		return fmt.Errorf("failed to create announcement: %w", err)
	}
	return nil
}

// GetAnnouncements lists announcements with pinned ones first, then newest first
func (r *AnnouncementRepository) GetAnnouncements(ctx context.Context, limit int) ([]models.Announcement, error) {
	query := `
		SELECT id, title, content, author, pinned, created_at
		FROM announcements
		ORDER BY pinned DESC, created_at DESC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query announcements: %w", err)
	}
	defer rows.Close()

	announcements := []models.Announcement{}
	for rows.Next() {
		var a models.Announcement
		if err := rows.Scan(&a.ID, &a.Title, &a.Content, &a.Author, &a.Pinned, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan announcement: %w", err)
		}
		announcements = append(announcements, a)
	}
	return announcements, rows.Err()
}

// DeleteAnnouncement deletes an announcement
func (r *AnnouncementRepository) DeleteAnnouncement(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM announcements WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete announcement: %w", err)
	}
	return affected(result)
}
