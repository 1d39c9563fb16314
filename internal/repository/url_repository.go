package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kaushikchopra/urlShortener-server/internal/entities"
)

var (
	ErrURLNotFound   = errors.New("URL not found")
	ErrDuplicateCode = errors.New("short code already exists")
)

const urlColumns = `id, user_id, orig_url, short_url, short_code, count, created_at`

// URLRepository defines the persistence operations for short URLs
type URLRepository interface {
	Create(ctx context.Context, url *entities.ShortURL) error
	FindByShortCode(ctx context.Context, code string) (*entities.ShortURL, error)
	FindByUserAndOrigURL(ctx context.Context, userID, origURL string) (*entities.ShortURL, error)
	IncrementCount(ctx context.Context, code string) error
	ListByUser(ctx context.Context, userID string) ([]*entities.ShortURL, error)
}

type urlRepository struct {
	db *sql.DB
}

// NewURLRepository creates a new URL repository
func NewURLRepository(db *sql.DB) URLRepository {
	return &urlRepository{db: db}
}

// Create inserts a new short URL row and fills in the generated fields
func (r *urlRepository) Create(ctx context.Context, url *entities.ShortURL) error {
	query := `
		INSERT INTO short_urls (user_id, orig_url, short_url, short_code)
		VALUES ($1, $2, $3, $4)
		RETURNING id, count, created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		url.UserID,
		url.OrigURL,
		url.ShortURL,
		url.ShortCode,
	).Scan(&url.ID, &url.Count, &url.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateCode
		}
		return fmt.Errorf("failed to create short URL: %w", err)
	}

	return nil
}

// FindByShortCode finds a short URL by its code
func (r *urlRepository) FindByShortCode(ctx context.Context, code string) (*entities.ShortURL, error) {
	query := fmt.Sprintf("SELECT %s FROM short_urls WHERE short_code = $1", urlColumns)
	return r.scanOne(r.db.QueryRowContext(ctx, query, code))
}

// FindByUserAndOrigURL finds the user's existing record for an original URL,
// used for the idempotent shorten path.
func (r *urlRepository) FindByUserAndOrigURL(ctx context.Context, userID, origURL string) (*entities.ShortURL, error) {
	query := fmt.Sprintf("SELECT %s FROM short_urls WHERE user_id = $1 AND orig_url = $2", urlColumns)
	return r.scanOne(r.db.QueryRowContext(ctx, query, userID, origURL))
}

// IncrementCount adds one visit to the short URL's counter
func (r *urlRepository) IncrementCount(ctx context.Context, code string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE short_urls SET count = count + 1 WHERE short_code = $1`, code)
	if err != nil {
		return fmt.Errorf("failed to increment count: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrURLNotFound
	}

	return nil
}

// ListByUser retrieves all short URLs created by a user, newest first
func (r *urlRepository) ListByUser(ctx context.Context, userID string) ([]*entities.ShortURL, error) {
	query := fmt.Sprintf("SELECT %s FROM short_urls WHERE user_id = $1 ORDER BY created_at DESC", urlColumns)

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list URLs: %w", err)
	}
	defer rows.Close()

	var urls []*entities.ShortURL
	for rows.Next() {
		var url entities.ShortURL
		if err := rows.Scan(
			&url.ID,
			&url.UserID,
			&url.OrigURL,
			&url.ShortURL,
			&url.ShortCode,
			&url.Count,
			&url.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan URL: %w", err)
		}
		urls = append(urls, &url)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating URLs: %w", err)
	}

	return urls, nil
}

func (r *urlRepository) scanOne(row *sql.Row) (*entities.ShortURL, error) {
	var url entities.ShortURL
	err := row.Scan(
		&url.ID,
		&url.UserID,
		&url.OrigURL,
		&url.ShortURL,
		&url.ShortCode,
		&url.Count,
		&url.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrURLNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find URL: %w", err)
	}

	return &url, nil
}
