package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"saodo/internal/database"
	"saodo/internal/models"
)

// LogRepository handles database operations for daily logs and their deductions
type LogRepository struct {
	db *database.DB
}

// NewLogRepository creates a new log repository
func NewLogRepository(db *database.DB) *LogRepository {
	return &LogRepository{db: db}
}

const logColumns = "id, log_date, week, class_id, bonus_points, total_score, reporter_id, reporter_name, comment, created_at"

// CreateLog inserts a daily log together with its deductions
func (r *LogRepository) CreateLog(ctx context.Context, log models.DailyLog) error {
	return r.db.WithTx(ctx, func(tx *database.Tx) error {
		query := "INSERT INTO daily_logs (" + logColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
		_, err := tx.ExecContext(ctx, query,
			log.ID,
			log.Date.Format(models.DateLayout),
			log.Week,
			log.ClassID,
			log.BonusPoints,
			log.TotalScore,
			log.ReporterID,
			log.ReporterName,
			log.Comment,
			log.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create log: %w", err)
		}
		return insertDeductions(ctx, tx, log.ID, log.Deductions)
	})
}

// UpdateLog replaces a log's fields and deductions
func (r *LogRepository) UpdateLog(ctx context.Context, log models.DailyLog) (bool, error) {
	found := false
	err := r.db.WithTx(ctx, func(tx *database.Tx) error {
		query := `
			UPDATE daily_logs
			SET log_date = ?, week = ?, class_id = ?, bonus_points = ?, total_score = ?, reporter_name = ?, comment = ?
			WHERE id = ?
		`
		result, err := tx.ExecContext(ctx, query,
			log.Date.Format(models.DateLayout),
			log.Week,
			log.ClassID,
			log.BonusPoints,
			log.TotalScore,
			log.ReporterName,
			log.Comment,
			log.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update log: %w", err)
		}
		if found, err = affected(result); err != nil || !found {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM deductions WHERE log_id = ?", log.ID); err != nil {
			return fmt.Errorf("failed to clear deductions: %w", err)
		}
		return insertDeductions(ctx, tx, log.ID, log.Deductions)
	})
	return found, err
}

// DeleteLog deletes a log and its deductions
func (r *LogRepository) DeleteLog(ctx context.Context, id string) (bool, error) {
	found := false
	err := r.db.WithTx(ctx, func(tx *database.Tx) error {
		// foreign_keys is per connection in SQLite, so cascade is not relied on
		if _, err := tx.ExecContext(ctx, "DELETE FROM deductions WHERE log_id = ?", id); err != nil {
			return fmt.Errorf("failed to delete deductions: %w", err)
		}
		result, err := tx.ExecContext(ctx, "DELETE FROM daily_logs WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("failed to delete log: %w", err)
		}
		found, err = affected(result)
		return err
	})
	return found, err
}

// GetLogByID retrieves one log with its deductions, returning nil when it does not exist
func (r *LogRepository) GetLogByID(ctx context.Context, id string) (*models.DailyLog, error) {
	logs, err := r.queryLogs(ctx, "id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(logs) == 0 {
		return nil, nil
	}
	return &logs[0], nil
}

// GetAllLogs retrieves every log in insertion order
func (r *LogRepository) GetAllLogs(ctx context.Context) ([]models.DailyLog, error) {
	return r.queryLogs(ctx, "")
}

// GetLogsByWeek retrieves the logs recorded for a school week
func (r *LogRepository) GetLogsByWeek(ctx context.Context, week int) ([]models.DailyLog, error) {
	return r.queryLogs(ctx, "week = ?", week)
}

// queryLogs loads the logs matching an optional daily_logs predicate,
// then the deductions of exactly those logs
func (r *LogRepository) queryLogs(ctx context.Context, where string, args ...interface{}) ([]models.DailyLog, error) {
	query := "SELECT " + logColumns + " FROM daily_logs"
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY created_at ASC, id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query logs: %w", err)
	}
	defer rows.Close()

	logs := []models.DailyLog{}
	index := make(map[string]int)
	for rows.Next() {
		var log models.DailyLog
		var rawDate string
		if err := rows.Scan(
			&log.ID,
			&rawDate,
			&log.Week,
			&log.ClassID,
			&log.BonusPoints,
			&log.TotalScore,
			&log.ReporterID,
			&log.ReporterName,
			&log.Comment,
			&log.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan log: %w", err)
		}
		log.Date, err = time.Parse(models.DateLayout, rawDate)
		if err != nil {
			return nil, fmt.Errorf("failed to parse date of log %s: %w", log.ID, err)
		}
		index[log.ID] = len(logs)
		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read logs: %w", err)
	}
	if len(logs) == 0 {
		return logs, nil
	}

	if err := r.attachDeductions(ctx, logs, index, where, args); err != nil {
		return nil, err
	}
	return logs, nil
}

// attachDeductions loads, in position order, the deductions of the logs
// selected by the same predicate queryLogs used
func (r *LogRepository) attachDeductions(ctx context.Context, logs []models.DailyLog, index map[string]int, where string, args []interface{}) error {
	rows, err := r.db.QueryContext(ctx, deductionsQuery(where), args...)
	if err != nil {
		return fmt.Errorf("failed to query deductions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var logID string
		var d models.Deduction
		if err := rows.Scan(&logID, &d.CriteriaID, &d.PointsLost, &d.Note); err != nil {
			return fmt.Errorf("failed to scan deduction: %w", err)
		}
		i, ok := index[logID]
		if !ok {
			continue
		}
		logs[i].Deductions = append(logs[i].Deductions, d)
	}
	return rows.Err()
}

func deductionsQuery(where string) string {
	query := "SELECT log_id, criteria_id, points_lost, note FROM deductions"
	if where != "" {
		query += " WHERE log_id IN (SELECT id FROM daily_logs WHERE " + where + ")"
	}
	return query + " ORDER BY log_id ASC, position ASC"
}

func insertDeductions(ctx context.Context, tx database.DBTX, logID string, deductions []models.Deduction) error {
	if len(deductions) == 0 {
		return nil
	}
	placeholders := make([]string, len(deductions))
	args := make([]interface{}, 0, len(deductions)*5)
	for i, d := range deductions {
		placeholders[i] = "(?, ?, ?, ?, ?)"
		args = append(args, logID, i, d.CriteriaID, d.PointsLost, d.Note)
	}
	query := "INSERT INTO deductions (log_id, position, criteria_id, points_lost, note) VALUES " +
		strings.Join(placeholders, ", ")
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert deductions: %w", err)
	}
	return nil
}

// CountLogs returns the number of stored logs
func (r *LogRepository) CountLogs(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM daily_logs").Scan(&count)
	if err != nil && err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to count logs: %w", err)
	}
	return count, nil
}
