package models

// ShortenRequest represents the request body for creating a short URL
type ShortenRequest struct {
	OrigURL string `json:"origUrl" binding:"required"`
}
