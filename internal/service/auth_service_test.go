package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/kaushikchopra/urlShortener-server/internal/models"
	"github.com/kaushikchopra/urlShortener-server/internal/service/mocks"
	"github.com/kaushikchopra/urlShortener-server/internal/token"
)

func newAuthFixture() (AuthService, *mocks.MockUserRepository, *mocks.MockMailer) {
	userRepo := mocks.NewMockUserRepository()
	m := mocks.NewMockMailer()
	tokens := AuthTokens{
		Activation: token.NewService("activation-secret", time.Hour),
		Access:     token.NewService("access-secret", 15*time.Minute),
		Refresh:    token.NewService("refresh-secret", 24*time.Hour),
		Reset:      token.NewService("reset-secret", time.Hour),
	}
	return NewAuthService(userRepo, m, tokens), userRepo, m
}

func signupRequest(email string) *models.SignupRequest {
	return &models.SignupRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Username:  email,
		Password:  "secret123",
	}
}

func TestSignupCreatesInactiveUserAndSendsEmail(t *testing.T) {
	svc, userRepo, m := newAuthFixture()

	resp, err := svc.Signup(context.Background(), signupRequest("ada@example.com"))
	require.NoError(t, err)
	assert.Contains(t, resp.Status, "ada@example.com")
	assert.NotEmpty(t, resp.ActivationToken)

	user, err := userRepo.FindByUsername(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.False(t, user.IsActivated)
	require.True(t, user.ActivationToken.Valid)
	assert.Equal(t, resp.ActivationToken, user.ActivationToken.String)

	sent := m.LastSent()
	require.NotNil(t, sent)
	assert.Equal(t, "activation", sent.Kind)
	assert.Equal(t, "ada@example.com", sent.To)
	assert.Equal(t, resp.ActivationToken, sent.Token)
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc, _, _ := newAuthFixture()

	_, err := svc.Signup(context.Background(), signupRequest("ada@example.com"))
	require.NoError(t, err)

	_, err = svc.Signup(context.Background(), signupRequest("ada@example.com"))
	assert.ErrorIs(t, err, ErrDuplicateUser)
}

func TestSignupFailsWhenEmailCannotBeSent(t *testing.T) {
	svc, _, m := newAuthFixture()
	m.Fail = true

	_, err := svc.Signup(context.Background(), signupRequest("ada@example.com"))
	assert.Error(t, err)
}

func TestActivateFlipsAccountOnce(t *testing.T) {
	svc, userRepo, _ := newAuthFixture()

	resp, err := svc.Signup(context.Background(), signupRequest("ada@example.com"))
	require.NoError(t, err)

	require.NoError(t, svc.Activate(context.Background(), resp.ActivationToken))

	user, err := userRepo.FindByUsername(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.True(t, user.IsActivated)
	assert.False(t, user.ActivationToken.Valid)

	// Second activation with the same token reports already activated.
	err = svc.Activate(context.Background(), resp.ActivationToken)
	assert.ErrorIs(t, err, ErrAlreadyActivated)
}

func TestActivateRejectsGarbageToken(t *testing.T) {
	svc, _, _ := newAuthFixture()

	err := svc.Activate(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestResendActivationInvalidatesPriorToken(t *testing.T) {
	svc, _, _ := newAuthFixture()

	first, err := svc.Signup(context.Background(), signupRequest("ada@example.com"))
	require.NoError(t, err)

	second, err := svc.ResendActivation(context.Background(), "ada@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, second.ActivationToken)

	err = svc.Activate(context.Background(), first.ActivationToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	require.NoError(t, svc.Activate(context.Background(), second.ActivationToken))
}

func TestResendActivationUnknownEmail(t *testing.T) {
	svc, _, _ := newAuthFixture()

	_, err := svc.ResendActivation(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestResendActivationAlreadyActive(t *testing.T) {
	svc, _, m := newAuthFixture()

	resp, err := svc.Signup(context.Background(), signupRequest("ada@example.com"))
	require.NoError(t, err)
	require.NoError(t, svc.Activate(context.Background(), resp.ActivationToken))

	sentBefore := len(m.Sent)
	result, err := svc.ResendActivation(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.Empty(t, result.ActivationToken)
	assert.Len(t, m.Sent, sentBefore)
}

func activatedUser(t *testing.T, svc AuthService, email string) {
	t.Helper()
	resp, err := svc.Signup(context.Background(), signupRequest(email))
	require.NoError(t, err)
	require.NoError(t, svc.Activate(context.Background(), resp.ActivationToken))
}

func TestLoginIssuesTokensAndStoresRefresh(t *testing.T) {
	svc, userRepo, _ := newAuthFixture()
	activatedUser(t, svc, "ada@example.com")

	result, err := svc.Login(context.Background(), &models.LoginRequest{
		Username: "ada@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)

	user, err := userRepo.FindByRefreshToken(context.Background(), result.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Username)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _ := newAuthFixture()
	activatedUser(t, svc, "ada@example.com")

	_, err := svc.Login(context.Background(), &models.LoginRequest{
		Username: "ada@example.com",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownUser(t *testing.T) {
	svc, _, _ := newAuthFixture()

	_, err := svc.Login(context.Background(), &models.LoginRequest{
		Username: "nobody@example.com",
		Password: "secret123",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginInactiveAccount(t *testing.T) {
	svc, _, _ := newAuthFixture()

	_, err := svc.Signup(context.Background(), signupRequest("ada@example.com"))
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), &models.LoginRequest{
		Username: "ada@example.com",
		Password: "secret123",
	})
	assert.ErrorIs(t, err, ErrNotActivated)
}

func TestRefreshMintsNewAccessToken(t *testing.T) {
	svc, _, _ := newAuthFixture()
	activatedUser(t, svc, "ada@example.com")

	result, err := svc.Login(context.Background(), &models.LoginRequest{
		Username: "ada@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	accessToken, err := svc.Refresh(context.Background(), result.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, accessToken)
}

func TestRefreshUnknownToken(t *testing.T) {
	svc, _, _ := newAuthFixture()

	_, err := svc.Refresh(context.Background(), "never-issued")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestLogoutInvalidatesRefreshToken(t *testing.T) {
	svc, _, _ := newAuthFixture()
	activatedUser(t, svc, "ada@example.com")

	result, err := svc.Login(context.Background(), &models.LoginRequest{
		Username: "ada@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), result.RefreshToken))

	_, err = svc.Refresh(context.Background(), result.RefreshToken)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestLogoutUnknownTokenIsNoOp(t *testing.T) {
	svc, _, _ := newAuthFixture()

	assert.NoError(t, svc.Logout(context.Background(), "never-issued"))
}

func TestForgotPasswordSendsResetEmail(t *testing.T) {
	svc, userRepo, m := newAuthFixture()
	activatedUser(t, svc, "ada@example.com")

	require.NoError(t, svc.ForgotPassword(context.Background(), "ada@example.com"))

	sent := m.LastSent()
	require.NotNil(t, sent)
	assert.Equal(t, "reset", sent.Kind)

	user, err := userRepo.FindByUsername(context.Background(), "ada@example.com")
	require.NoError(t, err)
	require.True(t, user.ResetToken.Valid)
	assert.Equal(t, sent.Token, user.ResetToken.String)
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	svc, _, _ := newAuthFixture()

	err := svc.ForgotPassword(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestResetPasswordConsumesToken(t *testing.T) {
	svc, userRepo, m := newAuthFixture()
	activatedUser(t, svc, "ada@example.com")

	require.NoError(t, svc.ForgotPassword(context.Background(), "ada@example.com"))
	resetToken := m.LastSent().Token

	require.NoError(t, svc.ResetPassword(context.Background(), resetToken, "newsecret"))

	user, err := userRepo.FindByUsername(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.False(t, user.ResetToken.Valid)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("newsecret")))

	// The old password no longer works, the new one does.
	_, err = svc.Login(context.Background(), &models.LoginRequest{
		Username: "ada@example.com",
		Password: "secret123",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), &models.LoginRequest{
		Username: "ada@example.com",
		Password: "newsecret",
	})
	assert.NoError(t, err)

	// Second reset with the consumed token fails.
	err = svc.ResetPassword(context.Background(), resetToken, "another")
	assert.ErrorIs(t, err, token.ErrInvalidOrExpiredToken)
}

func TestResetPasswordGarbageToken(t *testing.T) {
	svc, _, _ := newAuthFixture()

	err := svc.ResetPassword(context.Background(), "not-a-token", "newsecret")
	assert.ErrorIs(t, err, token.ErrInvalidOrExpiredToken)
}

func TestGetProfile(t *testing.T) {
	svc, _, _ := newAuthFixture()
	activatedUser(t, svc, "ada@example.com")

	result, err := svc.Login(context.Background(), &models.LoginRequest{
		Username: "ada@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	userID, err := token.NewService("access-secret", 15*time.Minute).Verify(result.AccessToken)
	require.NoError(t, err)

	profile, err := svc.GetProfile(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", profile.FirstName)
	assert.Equal(t, "ada@example.com", profile.Username)
}
