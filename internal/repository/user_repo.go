package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"saodo/internal/database"
	"saodo/internal/models"
)

// UserRepository handles database operations for user accounts
type UserRepository struct {
	db *database.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = "id, email, password_hash, name, role, COALESCE(oauth_provider, ''), COALESCE(oauth_subject, ''), created_at, updated_at"

// CreateUser inserts a new user. The first user ever created becomes an admin
// regardless of the requested role.
func (r *UserRepository) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	err := r.db.WithTx(ctx, func(tx *database.Tx) error {
		var userCount int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&userCount); err != nil {
			return fmt.Errorf("failed to count users: %w", err)
		}
		if userCount == 0 {
			user.Role = models.RoleAdmin
		}

		now := time.Now()
		user.CreatedAt = now
		user.UpdatedAt = now
		query := `
			INSERT INTO users (id, email, password_hash, name, role, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`
		if _, err := tx.ExecContext(ctx, query, user.ID, user.Email, user.PasswordHash, user.Name, user.Role, now, now); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email address
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", email)
}

// GetUserByID retrieves a user by ID
func (r *UserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
}

// GetUserByOAuth retrieves a user by OAuth provider and subject
func (r *UserRepository) GetUserByOAuth(ctx context.Context, provider, subject string) (*models.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE oauth_provider = ? AND oauth_subject = ?", provider, subject)
}

func (r *UserRepository) getOne(ctx context.Context, query string, args ...interface{}) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(scanTargets(user)...)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func scanTargets(user *models.User) []interface{} {
	return []interface{}{
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.Role,
		&user.OAuthProvider,
		&user.OAuthSubject,
		&user.CreatedAt,
		&user.UpdatedAt,
	}
}

// GetAllUsers retrieves all users
func (r *UserRepository) GetAllUsers(ctx context.Context) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var user models.User
		if err := rows.Scan(scanTargets(&user)...); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// UpdatePassword replaces a user's password hash
func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) (bool, error) {
	query := "UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?"
	result, err := r.db.ExecContext(ctx, query, passwordHash, time.Now(), id)
	if err != nil {
		return false, fmt.Errorf("failed to update password: %w", err)
	}
	return affected(result)
}

// UpdateRole changes a user's role
func (r *UserRepository) UpdateRole(ctx context.Context, id, role string) (bool, error) {
	result, err := r.db.ExecContext(ctx, "UPDATE users SET role = ?, updated_at = ? WHERE id = ?", role, time.Now(), id)
	if err != nil {
		return false, fmt.Errorf("failed to update role: %w", err)
	}
	return affected(result)
}

// DeleteUser deletes a user
func (r *UserRepository) DeleteUser(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete user: %w", err)
	}
	return affected(result)
}

// CountAdmins returns the number of admin accounts
func (r *UserRepository) CountAdmins(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE role = ?", models.RoleAdmin).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count admins: %w", err)
	}
	return count, nil
}

// LinkOAuthProvider links an existing user to an OAuth provider
func (r *UserRepository) LinkOAuthProvider(ctx context.Context, userID, provider, subject string) error {
	query := `
		UPDATE users
		SET oauth_provider = ?, oauth_subject = ?, updated_at = ?
		WHERE id = ?
		AND (oauth_provider IS NULL OR oauth_provider = '')
	`
	result, err := r.db.ExecContext(ctx, query, provider, subject, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("failed to link oauth provider: %w", err)
	}
	linked, err := affected(result)
	if err != nil {
		return err
	}
	if !linked {
		return fmt.Errorf("oauth provider already linked")
	}
	return nil
}
