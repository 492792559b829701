package repository

import (
	"context"
	"errors"
	"time"

	"github.com/oksasatya/go-auth-service/internal/domain/entity"
)

var (
	// ErrNotFound is returned when no user matches.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicate is returned when a username or email is already taken.
	ErrDuplicate = errors.New("username or email already exists")
)

// UserRepository defines the interface for user-related database operations.
// Conditional writes report whether a row was changed so callers can detect
// a lost race without holding locks.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	// ExistsByUsernameOrEmail reports whether either value is taken as a
	// username or as an email.
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)

	SetRefreshToken(ctx context.Context, id, token string) error
	// RotateRefreshToken replaces oldToken with newToken only if oldToken is still stored.
	RotateRefreshToken(ctx context.Context, id, oldToken, newToken string) (bool, error)
	ClearRefreshToken(ctx context.Context, id string) error

	SetVerificationSecret(ctx context.Context, id string, kind entity.TokenKind, selector, hash string, expiresAt time.Time) error
	GetBySelector(ctx context.Context, kind entity.TokenKind, selector string) (*entity.User, error)
	// MarkEmailVerified sets the verified flag and clears the VERIFY pair if selector still matches.
	MarkEmailVerified(ctx context.Context, id, selector string) (bool, error)
	// ResetPassword stores passwordHash, clears the RESET pair and the refresh token if selector still matches.
	ResetPassword(ctx context.Context, id, selector, passwordHash string) (bool, error)
}
