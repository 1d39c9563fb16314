// Package mocks provides in-memory fakes for the service-layer tests.
package mocks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/kaushikchopra/urlShortener-server/internal/entities"
	"github.com/kaushikchopra/urlShortener-server/internal/repository"
)

// MockUserRepository is an in-memory repository.UserRepository
type MockUserRepository struct {
	mu     sync.RWMutex
	users  map[string]*entities.User
	nextID int
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[string]*entities.User)}
}

func (m *MockUserRepository) Create(ctx context.Context, user *entities.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Username == user.Username {
			return repository.ErrDuplicateUser
		}
	}

	m.nextID++
	user.ID = "user-" + strconv.Itoa(m.nextID)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	if user.DailyURLCounts == nil {
		user.DailyURLCounts = entities.CountMap{}
	}
	if user.MonthlyURLCounts == nil {
		user.MonthlyURLCounts = entities.CountMap{}
	}

	m.users[user.ID] = copyUser(user)
	return nil
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*entities.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if u, ok := m.users[id]; ok {
		return copyUser(u), nil
	}
	return nil, repository.ErrUserNotFound
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*entities.User, error) {
	return m.findBy(func(u *entities.User) bool { return u.Username == username })
}

func (m *MockUserRepository) FindByRefreshToken(ctx context.Context, token string) (*entities.User, error) {
	return m.findBy(func(u *entities.User) bool {
		return u.RefreshToken.Valid && u.RefreshToken.String == token
	})
}

func (m *MockUserRepository) FindByResetToken(ctx context.Context, token string) (*entities.User, error) {
	return m.findBy(func(u *entities.User) bool {
		return u.ResetToken.Valid && u.ResetToken.String == token
	})
}

func (m *MockUserRepository) findBy(match func(*entities.User) bool) (*entities.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if match(u) {
			return copyUser(u), nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *MockUserRepository) SetActivationToken(ctx context.Context, id, token string) error {
	return m.mutate(id, func(u *entities.User) {
		u.ActivationToken = sql.NullString{String: token, Valid: true}
	})
}

func (m *MockUserRepository) Activate(ctx context.Context, id string) error {
	return m.mutate(id, func(u *entities.User) {
		u.IsActivated = true
		u.ActivationToken = sql.NullString{}
	})
}

func (m *MockUserRepository) SetRefreshToken(ctx context.Context, id, token string) error {
	return m.mutate(id, func(u *entities.User) {
		u.RefreshToken = sql.NullString{String: token, Valid: true}
	})
}

func (m *MockUserRepository) ClearRefreshToken(ctx context.Context, id string) error {
	return m.mutate(id, func(u *entities.User) {
		u.RefreshToken = sql.NullString{}
	})
}

func (m *MockUserRepository) SetResetToken(ctx context.Context, id, token string) error {
	return m.mutate(id, func(u *entities.User) {
		u.ResetToken = sql.NullString{String: token, Valid: true}
	})
}

func (m *MockUserRepository) ResetPassword(ctx context.Context, id, passwordHash string) error {
	return m.mutate(id, func(u *entities.User) {
		u.PasswordHash = passwordHash
		u.ResetToken = sql.NullString{}
	})
}

func (m *MockUserRepository) UpdateURLCounts(ctx context.Context, id string, daily, monthly entities.CountMap) error {
	return m.mutate(id, func(u *entities.User) {
		u.DailyURLCounts = copyCounts(daily)
		u.MonthlyURLCounts = copyCounts(monthly)
	})
}

func (m *MockUserRepository) mutate(id string, fn func(*entities.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	fn(u)
	u.UpdatedAt = time.Now()
	return nil
}

func copyUser(u *entities.User) *entities.User {
	clone := *u
	clone.DailyURLCounts = copyCounts(u.DailyURLCounts)
	clone.MonthlyURLCounts = copyCounts(u.MonthlyURLCounts)
	return &clone
}

func copyCounts(counts entities.CountMap) entities.CountMap {
	if counts == nil {
		return nil
	}
	clone := make(entities.CountMap, len(counts))
	for k, v := range counts {
		clone[k] = v
	}
	return clone
}

// MockURLRepository is an in-memory repository.URLRepository
type MockURLRepository struct {
	mu     sync.RWMutex
	urls   map[string]*entities.ShortURL // keyed by short code
	nextID int
}

func NewMockURLRepository() *MockURLRepository {
	return &MockURLRepository{urls: make(map[string]*entities.ShortURL)}
}

func (m *MockURLRepository) Create(ctx context.Context, url *entities.ShortURL) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.urls[url.ShortCode]; exists {
		return repository.ErrDuplicateCode
	}

	m.nextID++
	url.ID = "url-" + strconv.Itoa(m.nextID)
	url.CreatedAt = time.Now()

	clone := *url
	m.urls[url.ShortCode] = &clone
	return nil
}

func (m *MockURLRepository) FindByShortCode(ctx context.Context, code string) (*entities.ShortURL, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if u, ok := m.urls[code]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, repository.ErrURLNotFound
}

func (m *MockURLRepository) FindByUserAndOrigURL(ctx context.Context, userID, origURL string) (*entities.ShortURL, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.urls {
		if u.UserID == userID && u.OrigURL == origURL {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repository.ErrURLNotFound
}

func (m *MockURLRepository) IncrementCount(ctx context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.urls[code]
	if !ok {
		return repository.ErrURLNotFound
	}
	u.Count++
	return nil
}

func (m *MockURLRepository) ListByUser(ctx context.Context, userID string) ([]*entities.ShortURL, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var urls []*entities.ShortURL
	for _, u := range m.urls {
		if u.UserID == userID {
			clone := *u
			urls = append(urls, &clone)
		}
	}
	return urls, nil
}

// SentEmail records one email handed to the mock mailer
type SentEmail struct {
	To    string
	Token string
	Kind  string // "activation" or "reset"
}

// MockMailer records sends instead of talking to a provider
type MockMailer struct {
	mu   sync.Mutex
	Sent []SentEmail
	Fail bool
}

func NewMockMailer() *MockMailer {
	return &MockMailer{}
}

func (m *MockMailer) SendActivation(ctx context.Context, to, token string) error {
	return m.record(to, token, "activation")
}

func (m *MockMailer) SendPasswordReset(ctx context.Context, to, token string) error {
	return m.record(to, token, "reset")
}

func (m *MockMailer) record(to, token, kind string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Fail {
		return errors.New("smtp unavailable")
	}
	m.Sent = append(m.Sent, SentEmail{To: to, Token: token, Kind: kind})
	return nil
}

// LastSent returns the most recent email, or nil when nothing was sent
func (m *MockMailer) LastSent() *SentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.Sent) == 0 {
		return nil
	}
	last := m.Sent[len(m.Sent)-1]
	return &last
}

// MockCache is an in-memory cache.Cache without expiry
type MockCache struct {
	mu      sync.RWMutex
	entries map[string]string
}

func NewMockCache() *MockCache {
	return &MockCache{entries: make(map[string]string)}
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if v, ok := m.entries[key]; ok {
		return v, nil
	}
	return "", fmt.Errorf("key not found")
}

func (m *MockCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
	return nil
}
