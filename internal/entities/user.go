package entities

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// CountMap is a period-keyed usage counter (date string or month string -> count).
// Missing keys read as zero, so counters "reset" naturally when the period
// rolls over and a new key is used. Stored as JSONB.
type CountMap map[string]int

// Get returns the count for a period key, defaulting to zero.
func (m CountMap) Get(key string) int {
	return m[key]
}

// Value implements driver.Valuer so the map can be written as JSONB.
func (m CountMap) Value() (driver.Value, error) {
	if m == nil {
		m = CountMap{}
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner for JSONB columns.
func (m *CountMap) Scan(src interface{}) error {
	if src == nil {
		*m = CountMap{}
		return nil
	}

	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into CountMap", src)
	}

	return json.Unmarshal(data, m)
}

// User represents a user account in the database
type User struct {
	ID           string `json:"id"` // UUID
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Username     string `json:"username"` // email address, unique
	PasswordHash string `json:"-"`        // never serialized to callers

	IsActivated     bool           `json:"isActivated"`
	ActivationToken sql.NullString `json:"-"` // single active value per token type
	RefreshToken    sql.NullString `json:"-"`
	ResetToken      sql.NullString `json:"-"`

	DailyURLCounts   CountMap `json:"dailyUrlCounts"`
	MonthlyURLCounts CountMap `json:"monthlyUrlCounts"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
