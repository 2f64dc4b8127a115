package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"saodo/internal/database"
	"saodo/internal/models"
)

// ClassRepository handles database operations for classes
type ClassRepository struct {
	db *database.DB
}

// NewClassRepository creates a new class repository
func NewClassRepository(db *database.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// CreateClass inserts a new class
func (r *ClassRepository) CreateClass(ctx context.Context, class models.Class) error {
	now := time.Now()
	query := "INSERT INTO classes (id, name, grade, created_at, updated_at) VALUES (?, ?, ?, ?, ?)"
	if _, err := r.db.ExecContext(ctx, query, class.ID, class.Name, class.Grade, now, now); err != nil {
		return fmt.Errorf("failed to create class: %w", err)
	}
	return nil
}

// GetClassByID retrieves a class by ID, returning nil when it does not exist
func (r *ClassRepository) GetClassByID(ctx context.Context, id string) (*models.Class, error) {
	query := "SELECT id, name, grade FROM classes WHERE id = ?"
	class := &models.Class{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&class.ID, &class.Name, &class.Grade)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get class: %w", err)
	}
	return class, nil
}

// GetAllClasses retrieves every class ordered by grade then name
func (r *ClassRepository) GetAllClasses(ctx context.Context) ([]models.Class, error) {
	query := "SELECT id, name, grade FROM classes ORDER BY grade ASC, name ASC"
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query classes: %w", err)
	}
	defer rows.Close()

	classes := []models.Class{}
	for rows.Next() {
		var class models.Class
		if err := rows.Scan(&class.ID, &class.Name, &class.Grade); err != nil {
			return nil, fmt.Errorf("failed to scan class: %w", err)
		}
		classes = append(classes, class)
	}
	return classes, rows.Err()
}

// UpdateClass updates a class's display fields
func (r *ClassRepository) UpdateClass(ctx context.Context, class models.Class) (bool, error) {
	query := "UPDATE classes SET name = ?, grade = ?, updated_at = ? WHERE id = ?"
	result, err := r.db.ExecContext(ctx, query, class.Name, class.Grade, time.Now(), class.ID)
	if err != nil {
		return false, fmt.Errorf("failed to update class: %w", err)
	}
	return affected(result)
}

// DeleteClass deletes a class. Logs referencing it are kept.
func (r *ClassRepository) DeleteClass(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM classes WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete class: %w", err)
	}
	return affected(result)
}

// affected reports whether a statement touched at least one row
func affected(result sql.Result) (bool, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}
