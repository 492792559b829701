package helpers

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWT() *JWTManager {
	return NewJWTManager("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	m := newTestJWT()
	tok, exp, err := m.GenerateAccessToken("user-1", "admin")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), exp, 2*time.Second)

	claims, err := m.ParseAccessToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "admin", claims.Role)
}

func TestSecretsAreSeparated(t *testing.T) {
	m := newTestJWT()
	access, _, err := m.GenerateAccessToken("user-1", "user")
	require.NoError(t, err)
	refresh, _, err := m.GenerateRefreshToken("user-1")
	require.NoError(t, err)

	_, err = m.ParseRefreshToken(access)
	assert.ErrorIs(t, err, ErrTokenInvalid)
	_, err = m.ParseAccessToken(refresh)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestRefreshTokensAreUnique(t *testing.T) {
	m := newTestJWT()
	a, _, err := m.GenerateRefreshToken("user-1")
	require.NoError(t, err)
	b, _, err := m.GenerateRefreshToken("user-1")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	claims, err := m.ParseRefreshToken(a)
	require.NoError(t, err)
	assert.Empty(t, claims.Role)
	assert.NotEmpty(t, claims.ID)
}

func TestExpiredToken(t *testing.T) {
	m := NewJWTManager("a", "r", -time.Minute, time.Hour)
	tok, _, err := m.GenerateAccessToken("user-1", "user")
	require.NoError(t, err)

	_, err = m.ParseAccessToken(tok)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyRejectsTampering(t *testing.T) {
	m := newTestJWT()
	tok, _, err := m.GenerateAccessToken("user-1", "user")
	require.NoError(t, err)

	_, err = m.ParseAccessToken(tok + "x")
	assert.ErrorIs(t, err, ErrTokenInvalid)
	_, err = m.ParseAccessToken("garbage")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyRejectsOtherAlgorithms(t *testing.T) {
	claims := &Claims{UserID: "user-1"}
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Minute))
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("access-secret"))
	require.NoError(t, err)

	_, err = newTestJWT().ParseAccessToken(tok)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyRequiresExpiry(t *testing.T) {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{UserID: "user-1"}).SignedString([]byte("access-secret"))
	require.NoError(t, err)

	_, err = newTestJWT().ParseAccessToken(tok)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
