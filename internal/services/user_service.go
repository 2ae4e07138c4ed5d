package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/db"
	"storefront/internal/models"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const userColumns = "id, email, password_hash, first_name, last_name, role, is_active, created_at"

// UserService is the credential store.
type UserService struct {
	db         *sql.DB
	logger     zerolog.Logger
	bcryptCost int
}

func NewUserService(db *sql.DB, logger zerolog.Logger) *UserService {
	return &UserService{
		db:         db,
		logger:     logger,
		bcryptCost: bcrypt.DefaultCost,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	return s.create(ctx, req.Email, req.Password, req.FirstName, req.LastName, models.RoleUser)
}

// CreateAdmin seeds an administrator account.
func (s *UserService) CreateAdmin(ctx context.Context, email, password string) (*models.User, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}
	return s.create(ctx, email, password, "Admin", "User", models.RoleAdmin)
}

func (s *UserService) create(ctx context.Context, email, password, firstName, lastName string, role models.UserRole) (*models.User, error) {
	email = normalizeEmail(email)

	var existingID int64
	err := s.db.QueryRowContext(ctx, "SELECT id FROM users WHERE email = ?", email).Scan(&existingID)
	if err == nil {
		s.logger.Warn().Str("email", email).Msg("Registration attempt with existing email")
		return nil, fmt.Errorf("%w: user with this email already exists", ErrConflict)
	} else if !errors.Is(err, sql.ErrNoRows) {
		s.logger.Error().Err(err).Msg("Error checking existing user")
		return nil, fmt.Errorf("database error: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error hashing password")
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	result, err := s.db.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, first_name, last_name, role, is_active) VALUES (?, ?, ?, ?, ?, ?)",
		email, string(hashedPassword), nullString(firstName), nullString(lastName), string(role), true,
	)
	if db.IsDuplicateKey(err) {
		return nil, fmt.Errorf("%w: user with this email already exists", ErrConflict)
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("Error creating user")
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	userID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get user ID: %w", err)
	}

	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("user_id", user.ID).Str("email", user.Email).Str("role", string(user.Role)).Msg("User registered")
	return user, nil
}

// Authenticate returns ErrInvalidCredentials for an unknown email, an
// inactive account and a wrong password alike.
func (s *UserService) Authenticate(ctx context.Context, req *models.LoginRequest) (*models.User, error) {
	email := normalizeEmail(req.Email)

	user, err := s.getUser(ctx, "email = ?", email)
	if errors.Is(err, ErrNotFound) {
		s.logger.Warn().Str("email", email).Msg("Login attempt with unknown email")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !user.IsActive {
		s.logger.Warn().Str("email", email).Msg("Login attempt with inactive account")
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn().Str("email", email).Msg("Failed authentication attempt")
		return nil, ErrInvalidCredentials
	}

	s.logger.Info().Int64("user_id", user.ID).Str("email", user.Email).Msg("User authenticated")
	return user, nil
}

func (s *UserService) GetUserByID(ctx context.Context, userID int64) (*models.User, error) {
	return s.getUser(ctx, "id = ?", userID)
}

// GetActiveUser resolves a token subject to a live account.
func (s *UserService) GetActiveUser(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.GetUserByID(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: user not found or inactive", ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: user not found or inactive", ErrUnauthorized)
	}
	return user, nil
}

func (s *UserService) getUser(ctx context.Context, where string, arg any) (*models.User, error) {
	var (
		user                models.User
		firstName, lastName sql.NullString
		role                string
	)

	err := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE "+where, arg).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &firstName, &lastName, &role, &user.IsActive, &user.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: user", ErrNotFound)
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("Error fetching user")
		return nil, fmt.Errorf("database error: %w", err)
	}

	user.FirstName = firstName.String
	user.LastName = lastName.String
	user.Role = models.UserRole(role)
	return &user, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
