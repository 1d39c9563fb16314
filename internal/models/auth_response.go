package models

import "github.com/kaushikchopra/urlShortener-server/internal/entities"

// SignupResponse confirms the pending activation. The activation token is
// echoed back alongside the emailed link.
type SignupResponse struct {
	Status          string `json:"status"`
	ActivationToken string `json:"activationToken,omitempty"`
}

// LoginResult carries both tokens out of the auth service. The controller
// moves the refresh token into an HTTP-only cookie and only the access token
// reaches the response body.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
}

// LoginResponse represents the login response body
type LoginResponse struct {
	Status      string `json:"status"`
	AccessToken string `json:"accessToken"`
}

// ProfileResponse is the read projection of a user: identity plus usage counters
type ProfileResponse struct {
	FirstName        string            `json:"firstName"`
	LastName         string            `json:"lastName"`
	Username         string            `json:"username"`
	DailyURLCounts   entities.CountMap `json:"dailyUrlCounts"`
	MonthlyURLCounts entities.CountMap `json:"monthlyUrlCounts"`
}
