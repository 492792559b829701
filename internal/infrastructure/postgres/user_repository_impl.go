package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/oksasatya/go-auth-service/internal/domain/entity"
	"github.com/oksasatya/go-auth-service/internal/domain/repository"
)

const uniqueViolation = "23505"

const userColumns = `id, username, email, fullname, avatar_url, password_hash, role, is_email_verified,
	refresh_token,
	email_verification_selector, email_verification_token, email_verification_token_expiry,
	forgot_password_selector, forgot_password_token, forgot_password_token_expiry,
	created_at, updated_at`

// DB is the subset of *pgxpool.Pool used by the repository.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type UserRepository struct {
	db DB
}

func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	if u.Role == "" {
		u.Role = entity.RoleUser
	}
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (username, email, fullname, avatar_url, password_hash, role, is_email_verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, u.Username, u.Email, u.FullName, u.AvatarURL, u.Password, string(u.Role), u.IsEmailVerified)

	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *UserRepository) GetBySelector(ctx context.Context, kind entity.TokenKind, selector string) (*entity.User, error) {
	col, err := selectorColumn(kind)
	if err != nil {
		return nil, err
	}
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE `+col+` = $1`, selector)
}

func (r *UserRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE username IN ($1, $2) OR email IN ($1, $2))`,
		username, email,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists user: %w", err)
	}
	return exists, nil
}

func (r *UserRepository) SetRefreshToken(ctx context.Context, id, token string) error {
	res, err := r.db.Exec(ctx,
		`UPDATE users SET refresh_token = $1, updated_at = NOW() WHERE id = $2`,
		token, id)
	if err != nil {
		return fmt.Errorf("set refresh token: %w", err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) RotateRefreshToken(ctx context.Context, id, oldToken, newToken string) (bool, error) {
	return r.execConditional(ctx,
		`UPDATE users SET refresh_token = $1, updated_at = NOW() WHERE id = $2 AND refresh_token = $3`,
		newToken, id, oldToken)
}

func (r *UserRepository) ClearRefreshToken(ctx context.Context, id string) error {
	res, err := r.db.Exec(ctx,
		`UPDATE users SET refresh_token = NULL, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("clear refresh token: %w", err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) SetVerificationSecret(ctx context.Context, id string, kind entity.TokenKind, selector, hash string, expiresAt time.Time) error {
	var q string
	switch kind {
	case entity.TokenKindVerify:
		q = `UPDATE users SET email_verification_selector = $1, email_verification_token = $2,
			email_verification_token_expiry = $3, updated_at = NOW() WHERE id = $4`
	case entity.TokenKindReset:
		q = `UPDATE users SET forgot_password_selector = $1, forgot_password_token = $2,
			forgot_password_token_expiry = $3, updated_at = NOW() WHERE id = $4`
	default:
		return fmt.Errorf("unknown token kind %q", kind)
	}
	res, err := r.db.Exec(ctx, q, selector, hash, expiresAt, id)
	if err != nil {
		return fmt.Errorf("set verification secret: %w", err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) MarkEmailVerified(ctx context.Context, id, selector string) (bool, error) {
	return r.execConditional(ctx, `
		UPDATE users
		SET is_email_verified = TRUE,
			email_verification_selector = NULL,
			email_verification_token = NULL,
			email_verification_token_expiry = NULL,
			updated_at = NOW()
		WHERE id = $1 AND email_verification_selector = $2
	`, id, selector)
}

func (r *UserRepository) ResetPassword(ctx context.Context, id, selector, passwordHash string) (bool, error) {
	return r.execConditional(ctx, `
		UPDATE users
		SET password_hash = $3,
			forgot_password_selector = NULL,
			forgot_password_token = NULL,
			forgot_password_token_expiry = NULL,
			refresh_token = NULL,
			updated_at = NOW()
		WHERE id = $1 AND forgot_password_selector = $2
	`, id, selector, passwordHash)
}

func (r *UserRepository) execConditional(ctx context.Context, q string, args ...any) (bool, error) {
	res, err := r.db.Exec(ctx, q, args...)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() == 1, nil
}

func (r *UserRepository) getOne(ctx context.Context, q string, arg any) (*entity.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, q, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var (
		u                      entity.User
		role                   string
		avatar, refresh        pgtype.Text
		verifySel, verifyHash  pgtype.Text
		resetSel, resetHash    pgtype.Text
		verifyExpiry, resetExp pgtype.Timestamptz
	)
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FullName, &avatar, &u.Password, &role, &u.IsEmailVerified,
		&refresh,
		&verifySel, &verifyHash, &verifyExpiry,
		&resetSel, &resetHash, &resetExp,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u.Role = entity.Role(role)
	u.AvatarURL = avatar.String
	u.RefreshToken = refresh.String
	u.EmailVerification = entity.VerificationSecret{Selector: verifySel.String, Hash: verifyHash.String, ExpiresAt: verifyExpiry.Time}
	u.PasswordReset = entity.VerificationSecret{Selector: resetSel.String, Hash: resetHash.String, ExpiresAt: resetExp.Time}
	return &u, nil
}

func selectorColumn(kind entity.TokenKind) (string, error) {
	switch kind {
	case entity.TokenKindVerify:
		return "email_verification_selector", nil
	case entity.TokenKindReset:
		return "forgot_password_selector", nil
	}
	return "", fmt.Errorf("unknown token kind %q", kind)
}

var _ repository.UserRepository = (*UserRepository)(nil)
