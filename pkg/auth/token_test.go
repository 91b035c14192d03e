package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskboardhq/taskboard/pkg/config"
	"github.com/taskboardhq/taskboard/pkg/store"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:       "test-secret-key",
		Issuer:          "taskboard-test",
		Audience:        "taskboard",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
		ContextTTL:      5 * time.Minute,
	}
}

func testUser() *store.User {
	profileID := "profile-1"
	return &store.User{
		ID:        "user-1",
		Name:      "Ana",
		Email:     "ana@example.com",
		ProfileID: &profileID,
		Status:    store.UserStatusActive,
	}
}

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	tm, err := NewTokenManager(testAuthConfig())
	require.NoError(t, err)

	pair, err := tm.Issue(testUser())
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.True(t, pair.RefreshExpiresAt.After(pair.AccessExpiresAt))

	claims, err := tm.VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "ana@example.com", claims.Email)
	require.NotNil(t, claims.ProfileID)
	assert.Equal(t, "profile-1", *claims.ProfileID)

	refreshClaims, err := tm.VerifyRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", refreshClaims.Subject)
}

func TestVerifyRejectsWrongKind(t *testing.T) {
	tm, err := NewTokenManager(testAuthConfig())
	require.NoError(t, err)

	pair, err := tm.Issue(testUser())
	require.NoError(t, err)

	_, err = tm.VerifyAccess(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken, "a refresh token must never authorize a request")

	_, err = tm.VerifyRefresh(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpired(t *testing.T) {
	cfg := testAuthConfig()
	cfg.AccessTokenTTL = -time.Minute
	tm, err := NewTokenManager(cfg)
	require.NoError(t, err)

	pair, err := tm.Issue(testUser())
	require.NoError(t, err)

	_, err = tm.VerifyAccess(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	tm, err := NewTokenManager(testAuthConfig())
	require.NoError(t, err)
	pair, err := tm.Issue(testUser())
	require.NoError(t, err)

	other := testAuthConfig()
	other.Issuer = "someone-else"
	tm2, err := NewTokenManager(other)
	require.NoError(t, err)

	_, err = tm2.VerifyAccess(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	tm, err := NewTokenManager(testAuthConfig())
	require.NoError(t, err)
	pair, err := tm.Issue(testUser())
	require.NoError(t, err)

	other := testAuthConfig()
	other.JWTSecret = "a-different-secret"
	tm2, err := NewTokenManager(other)
	require.NoError(t, err)

	_, err = tm2.VerifyAccess(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	tm, err := NewTokenManager(testAuthConfig())
	require.NoError(t, err)

	for _, token := range []string{"", "   ", "not.a.jwt", "a.b"} {
		_, err := tm.VerifyAccess(token)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", token)
	}
}

func TestNewTokenManagerRequiresSecret(t *testing.T) {
	cfg := testAuthConfig()
	cfg.JWTSecret = "   "
	_, err := NewTokenManager(cfg)
	assert.Error(t, err)
}
