package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeDropsSecrets(t *testing.T) {
	u := &User{
		ID:           "u1",
		Username:     "alice",
		Email:        "alice@x.com",
		Password:     "$2a$10$hash",
		Role:         RoleUser,
		RefreshToken: "refresh",
		EmailVerification: VerificationSecret{
			Selector: "sel", Hash: "$2a$10$secret", ExpiresAt: time.Now().Add(time.Hour),
		},
	}

	b, err := json.Marshal(u.Sanitize())
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	for _, k := range []string{"password", "refreshToken", "emailVerificationToken", "forgotPasswordToken"} {
		assert.NotContains(t, m, k)
	}
	assert.NotContains(t, string(b), "$2a$10$")
	assert.Equal(t, "alice", m["username"])
}

func TestSecretSelectsFieldPair(t *testing.T) {
	u := &User{
		EmailVerification: VerificationSecret{Selector: "v"},
		PasswordReset:     VerificationSecret{Selector: "r"},
	}
	assert.Equal(t, "v", u.Secret(TokenKindVerify).Selector)
	assert.Equal(t, "r", u.Secret(TokenKindReset).Selector)
	assert.True(t, VerificationSecret{}.IsZero())
}
