package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/kaushikchopra/urlShortener-server/internal/cache"
	"github.com/kaushikchopra/urlShortener-server/internal/entities"
	"github.com/kaushikchopra/urlShortener-server/internal/models"
	"github.com/kaushikchopra/urlShortener-server/internal/repository"
)

// URL workflow errors
var (
	ErrInvalidURL           = errors.New("invalid URL")
	ErrURLNotFound          = errors.New("URL not found")
	ErrDailyLimitExceeded   = errors.New("daily limit exceeded")
	ErrMonthlyLimitExceeded = errors.New("monthly limit exceeded")
)

const (
	shortCodeLength  = 8
	maxCodeAttempts  = 5
	redirectCacheTTL = time.Hour
)

// URLLimits is the per-user quota configuration injected at construction time
type URLLimits struct {
	Daily   int
	Monthly int
}

// URLService drives short URL allocation and resolution
type URLService interface {
	// Shorten allocates (or returns the existing) short URL for the user's
	// original URL. The bool reports whether a new record was created.
	Shorten(ctx context.Context, userID, origURL string) (*entities.ShortURL, bool, error)
	// Resolve returns the original URL for a code and counts the visit.
	Resolve(ctx context.Context, code string) (string, error)
	// ShortURLFor returns the full short URL for a code without counting a visit.
	ShortURLFor(ctx context.Context, code string) (string, error)
	Dashboard(ctx context.Context, userID string) (*models.ProfileResponse, error)
	ListUserURLs(ctx context.Context, userID string) ([]models.URLData, error)
}

type urlService struct {
	urlRepo  repository.URLRepository
	userRepo repository.UserRepository
	cache    cache.Cache // may be nil (graceful degradation)
	baseURL  string
	limits   URLLimits
}

// NewURLService creates a new URL service
func NewURLService(urlRepo repository.URLRepository, userRepo repository.UserRepository, cacheClient cache.Cache, baseURL string, limits URLLimits) URLService {
	return &urlService{
		urlRepo:  urlRepo,
		userRepo: userRepo,
		cache:    cacheClient,
		baseURL:  baseURL,
		limits:   limits,
	}
}

// Shorten validates the URL, charges the user's daily and monthly counters,
// enforces the quotas, and allocates a code if the URL is new for this user.
//
// The counters are incremented and persisted before the limit checks and are
// not rolled back on rejection: a call that exceeds the quota still consumes
// the slot. Repeat calls for the same (user, origUrl) return the existing
// record unchanged.
func (s *urlService) Shorten(ctx context.Context, userID, origURL string) (*entities.ShortURL, bool, error) {
	if !isValidURL(origURL) {
		return nil, false, ErrInvalidURL
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, false, ErrUserNotFound
		}
		return nil, false, err
	}

	now := time.Now()
	today := now.Format("2006-01-02")
	thisMonth := strconv.Itoa(int(now.Month()))

	if user.DailyURLCounts == nil {
		user.DailyURLCounts = entities.CountMap{}
	}
	if user.MonthlyURLCounts == nil {
		user.MonthlyURLCounts = entities.CountMap{}
	}
	user.DailyURLCounts[today]++
	user.MonthlyURLCounts[thisMonth]++

	if err := s.userRepo.UpdateURLCounts(ctx, user.ID, user.DailyURLCounts, user.MonthlyURLCounts); err != nil {
		return nil, false, err
	}

	if user.DailyURLCounts[today] > s.limits.Daily {
		return nil, false, ErrDailyLimitExceeded
	}
	if user.MonthlyURLCounts[thisMonth] > s.limits.Monthly {
		return nil, false, ErrMonthlyLimitExceeded
	}

	// Idempotent per (user, origUrl): hand back the existing record untouched.
	existing, err := s.urlRepo.FindByUserAndOrigURL(ctx, user.ID, origURL)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrURLNotFound) {
		return nil, false, err
	}

	shortURL, err := s.createShortURL(ctx, user.ID, origURL)
	if err != nil {
		return nil, false, err
	}

	if s.cache != nil {
		// Best effort; the redirect path falls back to the database.
		s.cache.Set(ctx, cacheKey(shortURL.ShortCode), shortURL.OrigURL, redirectCacheTTL)
	}

	return shortURL, true, nil
}

// createShortURL allocates a random code and persists the row, retrying on
// the (unlikely) code collision.
func (s *urlService) createShortURL(ctx context.Context, userID, origURL string) (*entities.ShortURL, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := generateShortCode()
		if err != nil {
			return nil, err
		}

		shortURL := &entities.ShortURL{
			UserID:    userID,
			OrigURL:   origURL,
			ShortURL:  s.baseURL + "/" + code,
			ShortCode: code,
		}

		err = s.urlRepo.Create(ctx, shortURL)
		if err == nil {
			return shortURL, nil
		}
		if !errors.Is(err, repository.ErrDuplicateCode) {
			return nil, err
		}
	}

	return nil, fmt.Errorf("failed to generate unique short code after %d attempts", maxCodeAttempts)
}

// Resolve looks up the original URL for a code and increments its visit
// count, exactly once per call.
func (s *urlService) Resolve(ctx context.Context, code string) (string, error) {
	origURL := ""
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey(code)); err == nil {
			origURL = cached
		}
	}

	if origURL == "" {
		record, err := s.urlRepo.FindByShortCode(ctx, code)
		if err != nil {
			if errors.Is(err, repository.ErrURLNotFound) {
				return "", ErrURLNotFound
			}
			return "", err
		}
		origURL = record.OrigURL

		if s.cache != nil {
			s.cache.Set(ctx, cacheKey(code), origURL, redirectCacheTTL)
		}
	}

	// The increment is the source of truth for the visit count; a zero-row
	// update also catches a stale cache entry for a deleted row.
	if err := s.urlRepo.IncrementCount(ctx, code); err != nil {
		if errors.Is(err, repository.ErrURLNotFound) {
			return "", ErrURLNotFound
		}
		return "", err
	}

	return origURL, nil
}

// ShortURLFor returns the stored short URL for a code, used by the QR code
// endpoint. Unlike Resolve it does not touch the visit count.
func (s *urlService) ShortURLFor(ctx context.Context, code string) (string, error) {
	record, err := s.urlRepo.FindByShortCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrURLNotFound) {
			return "", ErrURLNotFound
		}
		return "", err
	}
	return record.ShortURL, nil
}

// Dashboard returns the user's profile projection: identity plus the daily
// and monthly shortening counters.
func (s *urlService) Dashboard(ctx context.Context, userID string) (*models.ProfileResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return &models.ProfileResponse{
		FirstName:        user.FirstName,
		LastName:         user.LastName,
		Username:         user.Username,
		DailyURLCounts:   user.DailyURLCounts,
		MonthlyURLCounts: user.MonthlyURLCounts,
	}, nil
}

// ListUserURLs returns the user's short URLs as list projections
func (s *urlService) ListUserURLs(ctx context.Context, userID string) ([]models.URLData, error) {
	urls, err := s.urlRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	data := make([]models.URLData, len(urls))
	for i, u := range urls {
		data[i] = models.URLData{
			OrigURL:  u.OrigURL,
			ShortURL: u.ShortURL,
			Count:    u.Count,
		}
	}

	return data, nil
}

// generateShortCode generates a random 8-character URL-safe code
func generateShortCode() (string, error) {
	bytes := make([]byte, 6)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	return base64.URLEncoding.EncodeToString(bytes)[:shortCodeLength], nil
}

// isValidURL reports whether raw is a well-formed absolute URI
func isValidURL(raw string) bool {
	u, err := url.ParseRequestURI(raw)
	return err == nil && u.Scheme != "" && u.Host != ""
}

func cacheKey(code string) string {
	return "url:" + code
}
