package entities

import "time"

// ShortURL represents a shortened URL owned by a user.
// Unique per original URL; only Count mutates after creation (redirects).
type ShortURL struct {
	ID        string    `json:"id"`     // UUID
	UserID    string    `json:"user"`   // owning user, UUID
	OrigURL   string    `json:"origUrl"`
	ShortURL  string    `json:"shortUrl"` // BASE_URL + "/" + short code
	ShortCode string    `json:"urlId"`    // 8-character random code
	Count     int       `json:"count"`    // visit count, incremented on redirect
	CreatedAt time.Time `json:"created_at"`
}
