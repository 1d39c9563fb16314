package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/kaushikchopra/urlShortener-server/internal/entities"
	"github.com/kaushikchopra/urlShortener-server/internal/mailer"
	"github.com/kaushikchopra/urlShortener-server/internal/models"
	"github.com/kaushikchopra/urlShortener-server/internal/repository"
	"github.com/kaushikchopra/urlShortener-server/internal/token"
)

// Auth workflow errors
var (
	ErrDuplicateUser      = errors.New("email already in use")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrAlreadyActivated   = errors.New("user is already activated")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotActivated       = errors.New("please activate your account before login")
	ErrUserNotFound       = errors.New("user not found")
	ErrForbidden          = errors.New("forbidden")
)

// AuthTokens groups the per-type token services used by the auth workflow
type AuthTokens struct {
	Activation *token.Service
	Access     *token.Service
	Refresh    *token.Service
	Reset      *token.Service
}

// AuthService drives the account lifecycle:
// Unregistered -> Registered(inactive) -> Active.
type AuthService interface {
	Signup(ctx context.Context, req *models.SignupRequest) (*models.SignupResponse, error)
	Activate(ctx context.Context, activationToken string) error
	ResendActivation(ctx context.Context, email string) (*models.SignupResponse, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Logout(ctx context.Context, refreshToken string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, resetToken, newPassword string) error
	GetProfile(ctx context.Context, userID string) (*models.ProfileResponse, error)
}

type authService struct {
	userRepo repository.UserRepository
	mailer   mailer.Mailer
	tokens   AuthTokens
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo repository.UserRepository, m mailer.Mailer, tokens AuthTokens) AuthService {
	return &authService{
		userRepo: userRepo,
		mailer:   m,
		tokens:   tokens,
	}
}

// Signup creates an inactive account and emails the activation link.
// It does not log the user in.
func (s *authService) Signup(ctx context.Context, req *models.SignupRequest) (*models.SignupResponse, error) {
	if _, err := s.userRepo.FindByUsername(ctx, req.Username); err == nil {
		return nil, ErrDuplicateUser
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entities.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Username:     req.Username,
		PasswordHash: string(hash),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return nil, ErrDuplicateUser
		}
		return nil, err
	}

	activationToken, err := s.tokens.Activation.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue activation token: %w", err)
	}
	if err := s.userRepo.SetActivationToken(ctx, user.ID, activationToken); err != nil {
		return nil, err
	}

	// Blocking send: a mail-provider failure fails the signup request.
	if err := s.mailer.SendActivation(ctx, user.Username, activationToken); err != nil {
		return nil, fmt.Errorf("failed to send activation email: %w", err)
	}

	return &models.SignupResponse{
		Status:          fmt.Sprintf("Verification link has been sent to your email %s", user.Username),
		ActivationToken: activationToken,
	}, nil
}

// Activate flips the account to active, exactly once. The presented token
// must both verify and match the stored one, so a superseded token from a
// resend is rejected even before it expires.
func (s *authService) Activate(ctx context.Context, activationToken string) error {
	userID, err := s.tokens.Activation.Verify(activationToken)
	if err != nil {
		return ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrInvalidToken
		}
		return err
	}

	if user.IsActivated {
		return ErrAlreadyActivated
	}
	if !user.ActivationToken.Valid || user.ActivationToken.String != activationToken {
		return ErrInvalidToken
	}

	return s.userRepo.Activate(ctx, user.ID)
}

// ResendActivation issues a fresh activation token and re-sends the email.
// The previous token is overwritten and becomes permanently invalid.
// Already-active accounts get a no-op success.
func (s *authService) ResendActivation(ctx context.Context, email string) (*models.SignupResponse, error) {
	user, err := s.userRepo.FindByUsername(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if user.IsActivated {
		return &models.SignupResponse{Status: "Account is already activated."}, nil
	}

	activationToken, err := s.tokens.Activation.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue activation token: %w", err)
	}
	if err := s.userRepo.SetActivationToken(ctx, user.ID, activationToken); err != nil {
		return nil, err
	}

	if err := s.mailer.SendActivation(ctx, user.Username, activationToken); err != nil {
		return nil, fmt.Errorf("failed to send activation email: %w", err)
	}

	return &models.SignupResponse{
		Status:          fmt.Sprintf("A new activation link has been sent to your email %s", email),
		ActivationToken: activationToken,
	}, nil
}

// Login authenticates and issues the access/refresh token pair. The refresh
// token is persisted as the user's single active one, invalidating any prior
// session's refresh token.
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResult, error) {
	user, err := s.userRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActivated {
		return nil, ErrNotActivated
	}

	accessToken, err := s.tokens.Access.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}
	refreshToken, err := s.tokens.Refresh.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	if err := s.userRepo.SetRefreshToken(ctx, user.ID, refreshToken); err != nil {
		return nil, err
	}

	return &models.LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refresh mints a new access token against a stored refresh token.
// The refresh token itself is not rotated.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	user, err := s.userRepo.FindByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", ErrForbidden
		}
		return "", err
	}

	userID, err := s.tokens.Refresh.Verify(refreshToken)
	if err != nil || userID != user.ID {
		return "", ErrForbidden
	}

	accessToken, err := s.tokens.Access.Issue(user.ID)
	if err != nil {
		return "", fmt.Errorf("failed to issue access token: %w", err)
	}

	return accessToken, nil
}

// Logout clears the stored refresh token. Unknown tokens are a no-op success.
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	user, err := s.userRepo.FindByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil
		}
		return err
	}

	return s.userRepo.ClearRefreshToken(ctx, user.ID)
}

// ForgotPassword stores a reset token and emails the reset link
func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByUsername(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	resetToken, err := s.tokens.Reset.Issue(user.ID)
	if err != nil {
		return fmt.Errorf("failed to issue reset token: %w", err)
	}
	if err := s.userRepo.SetResetToken(ctx, user.ID, resetToken); err != nil {
		return err
	}

	if err := s.mailer.SendPasswordReset(ctx, user.Username, resetToken); err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}

	return nil
}

// ResetPassword sets a new password for the user holding the reset token and
// consumes the token, so a second reset with the same token fails.
func (s *authService) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	user, err := s.userRepo.FindByResetToken(ctx, resetToken)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return token.ErrInvalidOrExpiredToken
		}
		return err
	}

	userID, err := s.tokens.Reset.Verify(resetToken)
	if err != nil || userID != user.ID {
		return token.ErrInvalidOrExpiredToken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.userRepo.ResetPassword(ctx, user.ID, string(hash))
}

// GetProfile returns the user's identity and usage counters
func (s *authService) GetProfile(ctx context.Context, userID string) (*models.ProfileResponse, error) {
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
