package memory

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/oksasatya/go-auth-service/internal/domain/entity"
	repo "github.com/oksasatya/go-auth-service/internal/domain/repository"
)

// UserRepository keeps users in a map. Conditional writes behave like the
// Postgres store, so it can stand in for it in tests.
type UserRepository struct {
	mu    sync.Mutex
	seq   int
	users map[string]*entity.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: map[string]*entity.User{}}
}

func (r *UserRepository) clone(u *entity.User) *entity.User {
	c := *u
	return &c
}

func (r *UserRepository) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.users {
		if x.Username == u.Username || x.Email == u.Email || x.Username == u.Email || x.Email == u.Username {
			return repo.ErrDuplicate
		}
	}
	r.seq++
	u.ID = "user-" + strconv.Itoa(r.seq)
	now := time.Now()
	u.CreatedAt, u.UpdatedAt = now, now
	r.users[u.ID] = r.clone(u)
	return nil
}

func (r *UserRepository) find(match func(*entity.User) bool) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			return r.clone(u), nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.ID == id })
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.Email == email })
}

func (r *UserRepository) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.Username == username })
}

func (r *UserRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	_, err := r.find(func(u *entity.User) bool {
		return u.Username == username || u.Username == email || u.Email == username || u.Email == email
	})
	if errors.Is(err, repo.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *UserRepository) update(id string, fn func(u *entity.User) bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return false, repo.ErrNotFound
	}
	changed := fn(u)
	if changed {
		u.UpdatedAt = time.Now()
	}
	return changed, nil
}

func (r *UserRepository) SetRefreshToken(_ context.Context, id, token string) error {
	_, err := r.update(id, func(u *entity.User) bool { u.RefreshToken = token; return true })
	return err
}

func (r *UserRepository) RotateRefreshToken(_ context.Context, id, oldToken, newToken string) (bool, error) {
	return r.update(id, func(u *entity.User) bool {
		if u.RefreshToken != oldToken {
			return false
		}
		u.RefreshToken = newToken
		return true
	})
}

func (r *UserRepository) ClearRefreshToken(_ context.Context, id string) error {
	_, err := r.update(id, func(u *entity.User) bool { u.RefreshToken = ""; return true })
	return err
}

func (r *UserRepository) SetVerificationSecret(_ context.Context, id string, kind entity.TokenKind, selector, hash string, expiresAt time.Time) error {
	_, err := r.update(id, func(u *entity.User) bool {
		s := entity.VerificationSecret{Selector: selector, Hash: hash, ExpiresAt: expiresAt}
		if kind == entity.TokenKindReset {
			u.PasswordReset = s
		} else {
			u.EmailVerification = s
		}
		return true
	})
	return err
}

func (r *UserRepository) GetBySelector(_ context.Context, kind entity.TokenKind, selector string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.Secret(kind).Selector == selector })
}

func (r *UserRepository) MarkEmailVerified(_ context.Context, id, selector string) (bool, error) {
	return r.update(id, func(u *entity.User) bool {
		if u.EmailVerification.Selector != selector {
			return false
		}
		u.IsEmailVerified = true
		u.EmailVerification = entity.VerificationSecret{}
		return true
	})
}

func (r *UserRepository) ResetPassword(_ context.Context, id, selector, passwordHash string) (bool, error) {
	return r.update(id, func(u *entity.User) bool {
		if u.PasswordReset.Selector != selector {
			return false
		}
		u.Password = passwordHash
		u.PasswordReset = entity.VerificationSecret{}
		u.RefreshToken = ""
		return true
	})
}

var _ repo.UserRepository = (*UserRepository)(nil)
