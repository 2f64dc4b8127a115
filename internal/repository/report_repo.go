package repository

import (
	"context"
	"database/sql"
	"fmt"

	"saodo/internal/database"
	"saodo/internal/models"
)

// ReportRepository handles database operations for generated weekly reports
type ReportRepository struct {
	db *database.DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *database.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// CreateReport stores a generated report. Older reports for the same week are kept.
func (r *ReportRepository) CreateReport(ctx context.Context, report models.WeeklyReport) error {
	query := "INSERT INTO weekly_reports (id, week, content, model, created_by, created_at) VALUES (?, ?, ?, ?, ?, ?)"
	_, err := r.db.ExecContext(ctx, query, report.ID, report.Week, report.Content, report.Model, report.CreatedBy, report.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	return nil
}

// GetLatestReport returns the most recently generated report, or nil when none exist
func (r *ReportRepository) GetLatestReport(ctx context.Context) (*models.WeeklyReport, error) {
	query := "SELECT id, week, content, model, created_by, created_at FROM weekly_reports ORDER BY created_at DESC LIMIT 1"
	return r.scanOne(r.db.QueryRowContext(ctx, query))
}

// GetReportForWeek returns the newest report generated for a week, or nil
func (r *ReportRepository) GetReportForWeek(ctx context.Context, week int) (*models.WeeklyReport, error) {
	query := `
		SELECT id, week, content, model, created_by, created_at
		FROM weekly_reports
		WHERE week = ?
		ORDER BY created_at DESC
		LIMIT 1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, week))
}

// GetAllReports lists every stored report, newest first
func (r *ReportRepository) GetAllReports(ctx context.Context) ([]models.WeeklyReport, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, week, content, model, created_by, created_at FROM weekly_reports ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	reports := []models.WeeklyReport{}
	for rows.Next() {
		var report models.WeeklyReport
		if err := rows.Scan(&report.ID, &report.Week, &report.Content, &report.Model, &report.CreatedBy, &report.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}

func (r *ReportRepository) scanOne(row *sql.Row) (*models.WeeklyReport, error) {
	report := &models.WeeklyReport{}
	err := row.Scan(&report.ID, &report.Week, &report.Content, &report.Model, &report.CreatedBy, &report.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return report, nil
}
