package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/kaushikchopra/urlShortener-server/internal/entities"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrDuplicateUser = errors.New("username already exists")
)

const userColumns = `id, first_name, last_name, username, password_hash, is_activated,
	activation_token, refresh_token, reset_token, daily_url_counts, monthly_url_counts,
	created_at, updated_at`

// UserRepository defines the persistence operations for user accounts
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	FindByID(ctx context.Context, id string) (*entities.User, error)
	FindByUsername(ctx context.Context, username string) (*entities.User, error)
	FindByRefreshToken(ctx context.Context, token string) (*entities.User, error)
	FindByResetToken(ctx context.Context, token string) (*entities.User, error)
	SetActivationToken(ctx context.Context, id, token string) error
	Activate(ctx context.Context, id string) error
	SetRefreshToken(ctx context.Context, id, token string) error
	ClearRefreshToken(ctx context.Context, id string) error
	SetResetToken(ctx context.Context, id, token string) error
	ResetPassword(ctx context.Context, id, passwordHash string) error
	UpdateURLCounts(ctx context.Context, id string, daily, monthly entities.CountMap) error
}

type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts a new (inactive) user and fills in the generated fields
func (r *userRepository) Create(ctx context.Context, user *entities.User) error {
	query := `
		INSERT INTO users (first_name, last_name, username, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, is_activated, daily_url_counts, monthly_url_counts, created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		user.FirstName,
		user.LastName,
		user.Username,
		user.PasswordHash,
	).Scan(
		&user.ID,
		&user.IsActivated,
		&user.DailyURLCounts,
		&user.MonthlyURLCounts,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateUser
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// FindByID finds a user by ID (UUID)
func (r *userRepository) FindByID(ctx context.Context, id string) (*entities.User, error) {
	return r.findOne(ctx, "id = $1", id)
}

// FindByUsername finds a user by username (email)
func (r *userRepository) FindByUsername(ctx context.Context, username string) (*entities.User, error) {
	return r.findOne(ctx, "username = $1", username)
}

// FindByRefreshToken finds the user currently holding the given refresh token
func (r *userRepository) FindByRefreshToken(ctx context.Context, token string) (*entities.User, error) {
	return r.findOne(ctx, "refresh_token = $1", token)
}

// FindByResetToken finds the user currently holding the given reset token
func (r *userRepository) FindByResetToken(ctx context.Context, token string) (*entities.User, error) {
	return r.findOne(ctx, "reset_token = $1", token)
}

func (r *userRepository) findOne(ctx context.Context, where string, arg interface{}) (*entities.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE %s", userColumns, where)

	var user entities.User
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Username,
		&user.PasswordHash,
		&user.IsActivated,
		&user.ActivationToken,
		&user.RefreshToken,
		&user.ResetToken,
		&user.DailyURLCounts,
		&user.MonthlyURLCounts,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return &user, nil
}

// SetActivationToken stores a new activation token, replacing any prior one
func (r *userRepository) SetActivationToken(ctx context.Context, id, token string) error {
	return r.update(ctx, id, "activation_token = $2", token)
}

// Activate marks the account active and clears the stored activation token
func (r *userRepository) Activate(ctx context.Context, id string) error {
	return r.update(ctx, id, "is_activated = TRUE, activation_token = NULL")
}

// SetRefreshToken stores the single active refresh token for the user
func (r *userRepository) SetRefreshToken(ctx context.Context, id, token string) error {
	return r.update(ctx, id, "refresh_token = $2", token)
}

// ClearRefreshToken removes the stored refresh token (logout)
func (r *userRepository) ClearRefreshToken(ctx context.Context, id string) error {
	return r.update(ctx, id, "refresh_token = NULL")
}

// SetResetToken stores a new password reset token, replacing any prior one
func (r *userRepository) SetResetToken(ctx context.Context, id, token string) error {
	return r.update(ctx, id, "reset_token = $2", token)
}

// ResetPassword stores the new password hash and consumes the reset token
func (r *userRepository) ResetPassword(ctx context.Context, id, passwordHash string) error {
	return r.update(ctx, id, "password_hash = $2, reset_token = NULL", passwordHash)
}

// UpdateURLCounts persists the per-period shortening counters
func (r *userRepository) UpdateURLCounts(ctx context.Context, id string, daily, monthly entities.CountMap) error {
	return r.update(ctx, id, "daily_url_counts = $2, monthly_url_counts = $3", daily, monthly)
}

func (r *userRepository) update(ctx context.Context, id, set string, args ...interface{}) error {
	query := fmt.Sprintf("UPDATE users SET %s, updated_at = NOW() WHERE id = $1", set)

	result, err := r.db.ExecContext(ctx, query, append([]interface{}{id}, args...)...)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrUserNotFound
	}

	return nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint error
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
