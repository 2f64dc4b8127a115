package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"saodo/internal/database"
	"saodo/internal/models"
)

// CriteriaRepository handles database operations for criteria configs
type CriteriaRepository struct {
	db *database.DB
}

// NewCriteriaRepository creates a new criteria repository
func NewCriteriaRepository(db *database.DB) *CriteriaRepository {
	return &CriteriaRepository{db: db}
}

// CreateCriteria inserts a criteria config
func (r *CriteriaRepository) CreateCriteria(ctx context.Context, c models.CriteriaConfig) error {
	query := "INSERT INTO criteria (id, name, max_points, type, created_at) VALUES (?, ?, ?, ?, ?)"
	if _, err := r.db.ExecContext(ctx, query, c.ID, c.Name, c.MaxPoints, c.Type, time.Now()); err != nil {
		return fmt.Errorf("failed to create criteria: %w", err)
	}
	return nil
}

// GetCriteriaByID retrieves one criteria config, returning nil when it does not exist
func (r *CriteriaRepository) GetCriteriaByID(ctx context.Context, id string) (*models.CriteriaConfig, error) {
	query := "SELECT id, name, max_points, type FROM criteria WHERE id = ?"
	c := &models.CriteriaConfig{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.MaxPoints, &c.Type)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get criteria: %w", err)
	}
	return c, nil
}

// GetAllCriteria retrieves every criteria config ordered by type then name
func (r *CriteriaRepository) GetAllCriteria(ctx context.Context) ([]models.CriteriaConfig, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, max_points, type FROM criteria ORDER BY type ASC, name ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query criteria: %w", err)
	}
	defer rows.Close()

	criteria := []models.CriteriaConfig{}
	for rows.Next() {
		var c models.CriteriaConfig
		if err := rows.Scan(&c.ID, &c.Name, &c.MaxPoints, &c.Type); err != nil {
			return nil, fmt.Errorf("failed to scan criteria: %w", err)
		}
		criteria = append(criteria, c)
	}
	return criteria, rows.Err()
}

// CountCriteria returns the number of criteria configs
func (r *CriteriaRepository) CountCriteria(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM criteria").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count criteria: %w", err)
	}
	return count, nil
}

// UpdateCriteria updates a criteria config
func (r *CriteriaRepository) UpdateCriteria(ctx context.Context, c models.CriteriaConfig) (bool, error) {
	query := "UPDATE criteria SET name = ?, max_points = ?, type = ? WHERE id = ?"
	result, err := r.db.ExecContext(ctx, query, c.Name, c.MaxPoints, c.Type, c.ID)
	if err != nil {
		return false, fmt.Errorf("failed to update criteria: %w", err)
	}
	return affected(result)
}

// DeleteCriteria deletes a criteria config
func (r *CriteriaRepository) DeleteCriteria(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM criteria WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete criteria: %w", err)
	}
	return affected(result)
}
