package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"saodo/internal/database"
	"saodo/internal/models"
	"saodo/internal/repository"
)

// BackupVersion is written into every export
const BackupVersion = "1.0"

// BackupData represents the complete database backup structure
type BackupData struct {
	Version       string                  `json:"version"`
	ExportedAt    time.Time               `json:"exported_at"`
	DatabaseType  string                  `json:"database_type"`
	Users         []UserBackup            `json:"users"`
	Classes       []models.Class          `json:"classes"`
	Criteria      []models.CriteriaConfig `json:"criteria"`
	Logs          []LogBackup             `json:"logs"`
	Announcements []models.Announcement   `json:"announcements"`
	Reports       []models.WeeklyReport   `json:"reports"`
}

// UserBackup represents a user record for backup
type UserBackup struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"password_hash"`
	Name          string    `json:"name"`
	Role          string    `json:"role"`
	OAuthProvider string    `json:"oauth_provider"`
	OAuthSubject  string    `json:"oauth_subject"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// LogBackup represents a daily log and its deductions
type LogBackup struct {
	ID           string            `json:"id"`
	Date         string            `json:"date"`
	Week         int               `json:"week"`
	ClassID      string            `json:"class_id"`
	BonusPoints  int               `json:"bonus_points"`
	TotalScore   int               `json:"total_score"`
	ReporterID   string            `json:"reporter_id"`
	ReporterName string            `json:"reporter_name"`
	Comment      string            `json:"comment"`
	CreatedAt    time.Time         `json:"created_at"`
	Deductions   []DeductionBackup `json:"deductions"`
}

// DeductionBackup represents one deduction inside a log
type DeductionBackup struct {
	CriteriaID string `json:"criteria_id"`
	PointsLost int    `json:"points_lost"`
	Note       string `json:"note"`
}

// BackupService exports and imports the whole database as JSON
type BackupService struct {
	db     *database.DB
	logger *slog.Logger
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB, logger *slog.Logger) *BackupService {
	return &BackupService{db: db, logger: logger.With(slog.String("component", "backup"))}
}

// Snapshot reads every table into a BackupData
func (s *BackupService) Snapshot(ctx context.Context) (*BackupData, error) {
	backup := &BackupData{
		Version:      BackupVersion,
		ExportedAt:   time.Now(),
		DatabaseType: s.db.Dialect.Name(),
	}

	users, err := repository.NewUserRepository(s.db).GetAllUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export users: %w", err)
	}
	for _, u := range users {
		backup.Users = append(backup.Users, UserBackup{
			ID:            u.ID,
			Email:         u.Email,
			PasswordHash:  u.PasswordHash,
			Name:          u.Name,
			Role:          u.Role,
			OAuthProvider: u.OAuthProvider,
			OAuthSubject:  u.OAuthSubject,
			CreatedAt:     u.CreatedAt,
			UpdatedAt:     u.UpdatedAt,
		})
	}

	if backup.Classes, err = repository.NewClassRepository(s.db).GetAllClasses(ctx); err != nil {
		return nil, fmt.Errorf("failed to export classes: %w", err)
	}
	if backup.Criteria, err = repository.NewCriteriaRepository(s.db).GetAllCriteria(ctx); err != nil {
		return nil, fmt.Errorf("failed to export criteria: %w", err)
	}

	logs, err := repository.NewLogRepository(s.db).GetAllLogs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export logs: %w", err)
	}
	for _, l := range logs {
		lb := LogBackup{
			ID:           l.ID,
			Date:         l.Date.Format(models.DateLayout),
			Week:         l.Week,
			ClassID:      l.ClassID,
			BonusPoints:  l.BonusPoints,
			TotalScore:   l.TotalScore,
			ReporterID:   l.ReporterID,
			ReporterName: l.ReporterName,
			Comment:      l.Comment,
			CreatedAt:    l.CreatedAt,
		}
		for _, d := range l.Deductions {
			lb.Deductions = append(lb.Deductions, DeductionBackup{CriteriaID: d.CriteriaID, PointsLost: d.PointsLost, Note: d.Note})
		}
		backup.Logs = append(backup.Logs, lb)
	}

	// a large limit keeps every announcement
	if backup.Announcements, err = repository.NewAnnouncementRepository(s.db).GetAnnouncements(ctx, 1<<30); err != nil {
		return nil, fmt.Errorf("failed to export announcements: %w", err)
	}
	if backup.Reports, err = repository.NewReportRepository(s.db).GetAllReports(ctx); err != nil {
		return nil, fmt.Errorf("failed to export reports: %w", err)
	}
	return backup, nil
}

// ExportToWriter writes the database as indented JSON
func (s *BackupService) ExportToWriter(ctx context.Context, w io.Writer) (*BackupData, error) {
	backup, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}
	s.logger.Info("backup_exported",
		slog.Int("users", len(backup.Users)),
		slog.Int("classes", len(backup.Classes)),
		slog.Int("criteria", len(backup.Criteria)),
		slog.Int("logs", len(backup.Logs)),
		slog.Int("announcements", len(backup.Announcements)),
		slog.Int("reports", len(backup.Reports)))
	return backup, nil
}

// ImportFromReader restores a backup in one transaction. With clear set,
// existing rows are deleted first.
func (s *BackupService) ImportFromReader(ctx context.Context, r io.Reader, clear bool) (*BackupData, error) {
	var backup BackupData
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return nil, fmt.Errorf("failed to decode backup: %w", err)
	}
	s.logger.Info("backup_import_started", slog.String("version", backup.Version), slog.Time("exported_at", backup.ExportedAt))

	err := s.db.WithTx(ctx, func(tx *database.Tx) error {
		if clear {
			if err := clearTables(ctx, tx); err != nil {
				return err
			}
		}
		steps := []func(context.Context, database.DBTX, *BackupData) error{
			importUsers, importClasses, importCriteria, importLogs, importAnnouncements, importReports,
		}
		for _, step := range steps {
			if err := step(ctx, tx, &backup); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("backup_imported", slog.Int("logs", len(backup.Logs)), slog.Int("classes", len(backup.Classes)))
	return &backup, nil
}

// clearTables deletes all rows in reverse order of dependencies
func clearTables(ctx context.Context, q database.DBTX) error {
	tables := []string{"deductions", "daily_logs", "weekly_reports", "announcements", "criteria", "classes", "users"}
	for _, table := range tables {
		if _, err := q.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear table %s: %w", table, err)
		}
	}
	return nil
}

func importUsers(ctx context.Context, q database.DBTX, b *BackupData) error {
	for _, u := range b.Users {
		query := "INSERT INTO users (id, email, password_hash, name, role, oauth_provider, oauth_subject, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)"
		_, err := q.ExecContext(ctx, query, u.ID, u.Email, u.PasswordHash, u.Name, u.Role, nullIfEmpty(u.OAuthProvider), nullIfEmpty(u.OAuthSubject), u.CreatedAt, u.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to import user %s: %w", u.ID, err)
		}
	}
	return nil
}

func importClasses(ctx context.Context, q database.DBTX, b *BackupData) error {
	now := time.Now()
	for _, c := range b.Classes {
		query := "INSERT INTO classes (id, name, grade, created_at, updated_at) VALUES (?, ?, ?, ?, ?)"
		if _, err := q.ExecContext(ctx, query, c.ID, c.Name, c.Grade, now, now); err != nil {
			return fmt.Errorf("failed to import class %s: %w", c.ID, err)
		}
	}
	return nil
}

func importCriteria(ctx context.Context, q database.DBTX, b *BackupData) error {
	now := time.Now()
	for _, c := range b.Criteria {
		query := "INSERT INTO criteria (id, name, max_points, type, created_at) VALUES (?, ?, ?, ?, ?)"
		if _, err := q.ExecContext(ctx, query, c.ID, c.Name, c.MaxPoints, c.Type, now); err != nil {
			return fmt.Errorf("failed to import criteria %s: %w", c.ID, err)
		}
	}
	return nil
}

func importLogs(ctx context.Context, q database.DBTX, b *BackupData) error {
	for _, l := range b.Logs {
		if _, err := time.Parse(models.DateLayout, l.Date); err != nil {
			return fmt.Errorf("log %s has invalid date %q: %w", l.ID, l.Date, err)
		}
		query := "INSERT INTO daily_logs (id, log_date, week, class_id, bonus_points, total_score, reporter_id, reporter_name, comment, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
		_, err := q.ExecContext(ctx, query, l.ID, l.Date, l.Week, l.ClassID, l.BonusPoints, l.TotalScore, l.ReporterID, l.ReporterName, l.Comment, l.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to import log %s: %w", l.ID, err)
		}
		for i, d := range l.Deductions {
			dq := "INSERT INTO deductions (log_id, position, criteria_id, points_lost, note) VALUES (?, ?, ?, ?, ?)"
			if _, err := q.ExecContext(ctx, dq, l.ID, i, d.CriteriaID, d.PointsLost, d.Note); err != nil {
				return fmt.Errorf("failed to import deduction %d of log %s: %w", i, l.ID, err)
			}
		}
	}
	return nil
}

func importAnnouncements(ctx context.Context, q database.DBTX, b *BackupData) error {
	for _, a := range b.Announcements {
		query := "INSERT INTO announcements (id, title, content, author, pinned, created_at) VALUES (?, ?, ?, ?, ?, ?)"
		if _, err := q.ExecContext(ctx, query, a.ID, a.Title, a.Content, a.Author, a.Pinned, a.CreatedAt); err != nil {
			return fmt.Errorf("failed to import announcement %s: %w", a.ID, err)
		}
	}
	return nil
}

func importReports(ctx context.Context, q database.DBTX, b *BackupData) error {
	for _, r := range b.Reports {
		query := "INSERT INTO weekly_reports (id, week, content, model, created_by, created_at) VALUES (?, ?, ?, ?, ?, ?)"
		if _, err := q.ExecContext(ctx, query, r.ID, r.Week, r.Content, r.Model, r.CreatedBy, r.CreatedAt); err != nil {
			return fmt.Errorf("failed to import report %s: %w", r.ID, err)
		}
	}
	return nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
