package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"saodo/internal/credentials"
	"saodo/internal/models"
	"saodo/internal/repository"
	"saodo/internal/security"
	"saodo/internal/validation"
)

// UserInput is an admin request to create a staff account.
// An empty Password gets a generated one.
type UserInput struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,max=100"`
	Role     string `json:"role" validate:"required,oneof=admin reporter"`
	Password string `json:"password" validate:"omitempty,min=8"`
}

// AuthService handles authentication and account administration
type AuthService struct {
	userRepo *repository.UserRepository
	tokens   *security.TokenIssuer
	logger   *slog.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo *repository.UserRepository, tokens *security.TokenIssuer, logger *slog.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		logger:   logger.With(slog.String("component", "auth_service")),
	}
}

// Login authenticates a user by password and issues a session token
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.Session, *models.User, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return "", nil, nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || !security.CheckPassword(password, user.PasswordHash) {
		return "", nil, nil, ErrInvalidCredentials
	}
	return s.issue(user)
}

// OAuthLogin signs in an existing account through an identity provider.
// Accounts are provisioned by admins, so an unknown email is rejected.
func (s *AuthService) OAuthLogin(ctx context.Context, provider, subject, email string) (string, *models.Session, *models.User, error) {
	if provider == "" || subject == "" {
		return "", nil, nil, errors.New("missing oauth provider information")
	}

	user, err := s.userRepo.GetUserByOAuth(ctx, provider, subject)
	if err != nil {
		return "", nil, nil, fmt.Errorf("failed to lookup oauth user: %w", err)
	}
	if user == nil {
		if err := validation.ValidateEmail(email); err != nil {
			return "", nil, nil, err
		}
		existing, err := s.userRepo.GetUserByEmail(ctx, normalizeEmail(email))
		if err != nil {
			return "", nil, nil, fmt.Errorf("failed to check existing user: %w", err)
		}
		if existing == nil {
			s.logger.Warn("oauth_login_unknown_email", slog.String("provider", provider))
			return "", nil, nil, ErrAccountNotProvisioned
		}
		if existing.OAuthProvider != "" {
			return "", nil, nil, ErrEmailTaken
		}
		if err := s.userRepo.LinkOAuthProvider(ctx, existing.ID, provider, subject); err != nil {
			return "", nil, nil, fmt.Errorf("failed to link oauth provider: %w", err)
		}
		s.logger.Info("oauth_linked", slog.String("user", existing.ID), slog.String("provider", provider))
		user = existing
	}
	return s.issue(user)
}

func (s *AuthService) issue(user *models.User) (string, *models.Session, *models.User, error) {
	token, session, err := s.tokens.Issue(user)
	if err != nil {
		return "", nil, nil, err
	}
	return token, &session, user, nil
}

// Authenticate validates a session token and loads its user
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, *models.Session, error) {
	session, err := s.tokens.Parse(token)
	if err != nil {
		return nil, nil, err
	}
	user, err := s.userRepo.GetUserByID(ctx, session.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, nil, security.ErrInvalidToken
	}
	return user, session, nil
}

// CreateUser provisions an account and returns the password to hand over
func (s *AuthService) CreateUser(ctx context.Context, in UserInput) (*models.User, string, error) {
	in.Email = normalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Struct(in); err != nil {
		return nil, "", err
	}

	existing, err := s.userRepo.GetUserByEmail(ctx, in.Email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, "", ErrEmailTaken
	}

	password := in.Password
	if password == "" {
		if password, err = credentials.GenerateInitialPassword(); err != nil {
			return nil, "", fmt.Errorf("failed to generate password: %w", err)
		}
	}
	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.userRepo.CreateUser(ctx, models.User{
		ID:           uuid.New().String(),
		Email:        in.Email,
		PasswordHash: hash,
		Name:         in.Name,
		Role:         in.Role,
	})
	if err != nil {
		return nil, "", err
	}
	s.logger.Info("user_created", slog.String("user", user.ID), slog.String("role", user.Role))
	return user, password, nil
}

// EnsureAdmin creates the bootstrap admin when no account uses its email yet
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password, name string) (bool, error) {
	if email == "" || password == "" {
		return false, nil
	}
	existing, err := s.userRepo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}
	if _, _, err := s.CreateUser(ctx, UserInput{Email: email, Name: name, Role: models.RoleAdmin, Password: password}); err != nil {
		return false, fmt.Errorf("failed to create bootstrap admin: %w", err)
	}
	return true, nil
}

// ListUsers returns every account
func (s *AuthService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.userRepo.GetAllUsers(ctx)
}

// ResetPassword replaces a user's password with a generated one and returns it
func (s *AuthService) ResetPassword(ctx context.Context, userID string) (string, error) {
	password, err := credentials.GenerateInitialPassword()
	if err != nil {
		return "", fmt.Errorf("failed to generate password: %w", err)
	}
	hash, err := security.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	found, err := s.userRepo.UpdatePassword(ctx, userID, hash)
	if err != nil {
		return "", err
	}
	if !found {
		return "", fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	s.logger.Info("password_reset", slog.String("user", userID))
	return password, nil
}

// ChangePassword lets a signed-in user replace their own password
func (s *AuthService) ChangePassword(ctx context.Context, user *models.User, current, next string) error {
	if !security.CheckPassword(current, user.PasswordHash) {
		return ErrInvalidCredentials
	}
	if err := validation.ValidatePassword(next); err != nil {
		return err
	}
	hash, err := security.HashPassword(next)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	_, err = s.userRepo.UpdatePassword(ctx, user.ID, hash)
	return err
}

// DeleteUser removes an account, refusing to remove the last admin
func (s *AuthService) DeleteUser(ctx context.Context, userID string) error {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	if user.IsAdmin() {
		admins, err := s.userRepo.CountAdmins(ctx)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return ErrLastAdmin
		}
	}
	if _, err := s.userRepo.DeleteUser(ctx, userID); err != nil {
		return err
	}
	s.logger.Info("user_deleted", slog.String("user", userID))
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
