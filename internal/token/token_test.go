package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	svc := NewService("test-secret", time.Hour)

	signed, err := svc.Issue("user-1")
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	userID, err := svc.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestVerifyWrongSecret(t *testing.T) {
	signed, err := NewService("secret-a", time.Hour).Issue("user-1")
	require.NoError(t, err)

	_, err = NewService("secret-b", time.Hour).Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)
}

func TestVerifyExpired(t *testing.T) {
	signed, err := NewService("test-secret", -time.Minute).Issue("user-1")
	require.NoError(t, err)

	_, err = NewService("test-secret", -time.Minute).Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)
}

func TestVerifyGarbage(t *testing.T) {
	_, err := NewService("test-secret", time.Hour).Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)
}

func TestTokenTypesAreNotInterchangeable(t *testing.T) {
	access := NewService("access-secret", AccessTokenTTL)
	refresh := NewService("refresh-secret", RefreshTokenTTL)

	signed, err := refresh.Issue("user-1")
	require.NoError(t, err)

	_, err = access.Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)
}
