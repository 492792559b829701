package entity

import (
	"time"
)

// User is the aggregate root for the user domain.
// Password holds a bcrypt hash; the token fields hold server-side secrets
// and must never leave the service. Use Sanitize before serialising.
type User struct {
	ID              string
	Username        string
	Email           string
	FullName        string
	AvatarURL       string
	Password        string
	Role            Role
	IsEmailVerified bool

	// RefreshToken is the single live refresh token, empty when logged out.
	RefreshToken string

	EmailVerification VerificationSecret
	PasswordReset     VerificationSecret

	CreatedAt time.Time
	UpdatedAt time.Time
}

// VerificationSecret is the stored half of a one-time secret.
// Selector is a non-secret lookup key; Hash is the bcrypt hash of the verifier.
type VerificationSecret struct {
	Selector  string
	Hash      string
	ExpiresAt time.Time
}

// IsZero reports whether no secret is pending.
func (v VerificationSecret) IsZero() bool {
	return v.Selector == "" && v.Hash == ""
}

// Secret returns the field pair selected by kind.
func (u *User) Secret(kind TokenKind) VerificationSecret {
	if kind == TokenKindReset {
		return u.PasswordReset
	}
	return u.EmailVerification
}

// SanitizedUser is the public view of a User. It has no secret-bearing fields.
type SanitizedUser struct {
	ID              string    `json:"_id"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	FullName        string    `json:"fullname"`
	AvatarURL       string    `json:"avatar"`
	Role            Role      `json:"role"`
	IsEmailVerified bool      `json:"isEmailVerified"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (u *User) Sanitize() SanitizedUser {
	return SanitizedUser{
		ID:              u.ID,
		Username:        u.Username,
		Email:           u.Email,
		FullName:        u.FullName,
		AvatarURL:       u.AvatarURL,
		Role:            u.Role,
		IsEmailVerified: u.IsEmailVerified,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}
