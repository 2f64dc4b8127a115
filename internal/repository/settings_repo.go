package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"saodo/internal/database"
	"saodo/internal/models"
)

// Setting keys
const (
	SettingSchoolYearStart = "school_year_start"
)

// SettingsRepository stores runtime key/value settings
type SettingsRepository struct {
	db *database.DB
}

func NewSettingsRepository(db *database.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// GetSetting retrieves a setting value by key. A missing key returns "" and no error.
func (r *SettingsRepository) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT setting_value FROM settings WHERE setting_key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return value, nil
}

// SetSetting updates or inserts a setting
func (r *SettingsRepository) SetSetting(ctx context.Context, key, value string) error {
	if _, err := r.db.ExecContext(ctx, r.db.Dialect.UpsertSettingQuery(), key, value); err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, err)
	}
	return nil
}

// SchoolYearStart returns the stored first day of the school year, or fallback when unset
func (r *SettingsRepository) SchoolYearStart(ctx context.Context, fallback time.Time) (time.Time, error) {
	value, err := r.GetSetting(ctx, SettingSchoolYearStart)
	if err != nil || value == "" {
		return fallback, err
	}
	start, err := time.Parse(models.DateLayout, value)
	if err != nil {
		return fallback, fmt.Errorf("invalid stored school year start %q: %w", value, err)
	}
	return start, nil
}

// SetSchoolYearStart stores the first day of the school year
func (r *SettingsRepository) SetSchoolYearStart(ctx context.Context, start time.Time) error {
	return r.SetSetting(ctx, SettingSchoolYearStart, start.Format(models.DateLayout))
}
