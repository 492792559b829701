package application

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-auth-service/internal/domain/entity"
	repo "github.com/oksasatya/go-auth-service/internal/domain/repository"
	"github.com/oksasatya/go-auth-service/pkg/helpers"
	"github.com/oksasatya/go-auth-service/pkg/mailer"
	tpl "github.com/oksasatya/go-auth-service/pkg/mailer/templates"
)

const (
	selectorBytes = 12
	verifierBytes = 32
)

// Links are the front-end pages that receive one-time tokens.
type Links struct {
	VerifyEmailURL   string
	ResetPasswordURL string
}

// VerificationService issues and redeems one-time secrets for email
// verification and password reset.
//
// A raw secret has the form "<selector>.<verifier>". The selector is stored
// in plain text and used for lookup; only a bcrypt hash of the verifier is
// stored.
type VerificationService struct {
	Repo     repo.UserRepository
	Hasher   *helpers.PasswordHasher
	Mailer   mailer.Sender
	Links    Links
	Branding tpl.Branding
	TTL      time.Duration
	Logger   *logrus.Logger
	Audit    AuditLogger

	Now       func() time.Time
	NewSecret func() (selector, verifier string, err error)
}

func NewVerificationService(repo repo.UserRepository, hasher *helpers.PasswordHasher, m mailer.Sender, links Links, branding tpl.Branding, ttl time.Duration, logger *logrus.Logger, audit AuditLogger) *VerificationService {
	return &VerificationService{
		Repo:     repo,
		Hasher:   hasher,
		Mailer:   m,
		Links:    links,
		Branding: branding,
		TTL:      ttl,
		Logger:   logger,
		Audit:    audit,
	}
}

func (s *VerificationService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *VerificationService) newSecret() (string, string, error) {
	if s.NewSecret != nil {
		return s.NewSecret()
	}
	sel, err := helpers.RandomHex(selectorBytes)
	if err != nil {
		return "", "", err
	}
	ver, err := helpers.RandomHex(verifierBytes)
	if err != nil {
		return "", "", err
	}
	return sel, ver, nil
}

// Issue stores a fresh secret of the given kind for u and mails the raw value.
// A previous secret of the same kind is overwritten; the other kind is untouched.
// When delivery fails the stored secret is kept and ErrEmailDeliveryFailed is returned.
func (s *VerificationService) Issue(ctx context.Context, u *entity.User, kind entity.TokenKind) (string, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("%w: unknown token kind %q", ErrValidation, kind)
	}
	sel, ver, err := s.newSecret()
	if err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}
	hash, err := s.Hasher.Hash(ver)
	if err != nil {
		return "", fmt.Errorf("hash secret: %w", err)
	}
	expiresAt := s.now().Add(s.TTL)
	if err := s.Repo.SetVerificationSecret(ctx, u.ID, kind, sel, hash, expiresAt); err != nil {
		return "", fmt.Errorf("store secret: %w", err)
	}

	raw := sel + "." + ver
	msg, err := s.render(u, kind, raw, expiresAt)
	if err != nil {
		return "", err
	}
	if err := s.Mailer.Send(ctx, msg); err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithFields(logrus.Fields{"user_id": u.ID, "kind": kind}).Error("send email failed")
		}
		return "", fmt.Errorf("%w: %v", ErrEmailDeliveryFailed, err)
	}
	return raw, nil
}

func (s *VerificationService) render(u *entity.User, kind entity.TokenKind, raw string, expiresAt time.Time) (mailer.Message, error) {
	base, name := s.Links.VerifyEmailURL, tpl.VerifyEmail
	if kind == entity.TokenKindReset {
		base, name = s.Links.ResetPasswordURL, tpl.ForgotPassword
	}
	link := base + "?token=" + url.QueryEscape(raw)
	data := tpl.NewActionEmailData(s.Branding, name, u.Email, link,
		tpl.WithName(u.FullName),
		tpl.WithTime(s.now()),
		tpl.WithExpiresAt(expiresAt),
		tpl.WithTTL(s.TTL),
	)
	subject, text, html, err := tpl.Render(name, data)
	if err != nil {
		return mailer.Message{}, fmt.Errorf("render %s: %w", name, err)
	}
	return mailer.Message{To: u.Email, Subject: subject, Text: text, HTML: html}, nil
}

// Redeem verifies the email address owning raw and consumes the secret.
func (s *VerificationService) Redeem(ctx context.Context, raw string) error {
	u, sel, err := s.consume(ctx, entity.TokenKindVerify, raw)
	if err != nil {
		record(ctx, s.Audit, AuditEvent{Action: "verify_email", Reason: err.Error()})
		return err
	}
	ok, err := s.Repo.MarkEmailVerified(ctx, u.ID, sel)
	if err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	if !ok {
		// another request consumed the secret first
		return ErrTokenExpiredOrInvalid
	}
	record(ctx, s.Audit, AuditEvent{Action: "verify_email", UserID: u.ID, Success: true})
	return nil
}

// ResendVerification issues a new VERIFY secret for an unverified account.
func (s *VerificationService) ResendVerification(ctx context.Context, email string) error {
	email = normalize(email)
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	u, err := s.Repo.GetByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	if u.IsEmailVerified {
		return ErrAlreadyVerified
	}
	_, err = s.Issue(ctx, u, entity.TokenKindVerify)
	return err
}

// ForgotPassword issues a RESET secret when the account exists. Unknown
// addresses succeed silently so callers cannot probe for accounts.
func (s *VerificationService) ForgotPassword(ctx context.Context, email string) error {
	email = normalize(email)
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	u, err := s.Repo.GetByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) {
		record(ctx, s.Audit, AuditEvent{Action: "forgot_password", Identifier: email, Reason: "unknown email"})
		return nil
	}
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	_, err = s.Issue(ctx, u, entity.TokenKindReset)
	record(ctx, s.Audit, AuditEvent{Action: "forgot_password", UserID: u.ID, Success: err == nil})
	return err
}

// ResetPassword consumes a RESET secret, stores the new password and ends
// the current session.
func (s *VerificationService) ResetPassword(ctx context.Context, raw, newPassword string) error {
	if err := checkPassword(newPassword); err != nil {
		return err
	}
	u, sel, err := s.consume(ctx, entity.TokenKindReset, raw)
	if err != nil {
		record(ctx, s.Audit, AuditEvent{Action: "reset_password", Reason: err.Error()})
		return err
	}
	hash, err := s.Hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	ok, err := s.Repo.ResetPassword(ctx, u.ID, sel, hash)
	if err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	if !ok {
		return ErrTokenExpiredOrInvalid
	}
	record(ctx, s.Audit, AuditEvent{Action: "reset_password", UserID: u.ID, Success: true})
	return nil
}

// consume finds the owner of raw and checks expiry before the hash.
func (s *VerificationService) consume(ctx context.Context, kind entity.TokenKind, raw string) (*entity.User, string, error) {
	sel, ver, ok := strings.Cut(strings.TrimSpace(raw), ".")
	if !ok || sel == "" || ver == "" {
		return nil, "", ErrTokenExpiredOrInvalid
	}
	u, err := s.Repo.GetBySelector(ctx, kind, sel)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, "", ErrTokenExpiredOrInvalid
	}
	if err != nil {
		return nil, "", fmt.Errorf("lookup secret: %w", err)
	}
	secret := u.Secret(kind)
	if secret.ExpiresAt.IsZero() || !s.now().Before(secret.ExpiresAt) {
		return nil, "", ErrTokenExpiredOrInvalid
	}
	if !s.Hasher.Compare(ver, secret.Hash) {
		return nil, "", ErrTokenExpiredOrInvalid
	}
	return u, sel, nil
}
