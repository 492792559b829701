package application

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-auth-service/internal/domain/entity"
	repo "github.com/oksasatya/go-auth-service/internal/domain/repository"
	"github.com/oksasatya/go-auth-service/pkg/helpers"
)

const (
	minPasswordLen = 8
	// bcrypt refuses inputs longer than 72 bytes.
	maxPasswordBytes = 72
)

// AuthService runs registration, login, refresh-token rotation and logout.
type AuthService struct {
	Repo         repo.UserRepository
	JWT          *helpers.JWTManager
	Hasher       *helpers.PasswordHasher
	Verification *VerificationService
	Avatars      AvatarStore
	Logger       *logrus.Logger
	Audit        AuditLogger

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(repo repo.UserRepository, jwt *helpers.JWTManager, hasher *helpers.PasswordHasher, verification *VerificationService, avatars AvatarStore, logger *logrus.Logger, audit AuditLogger) *AuthService {
	return &AuthService{
		Repo:         repo,
		JWT:          jwt,
		Hasher:       hasher,
		Verification: verification,
		Avatars:      avatars,
		Logger:       logger,
		Audit:        audit,
	}
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

type LoginResult struct {
	User entity.SanitizedUser
	TokenPair
}

// Avatar is an optional uploaded image.
type Avatar struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

type RegisterInput struct {
	FullName string
	Username string
	Email    string
	Password string
	Avatar   *Avatar
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func checkPassword(pw string) error {
	if len(pw) < minPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters long", ErrValidation, minPasswordLen)
	}
	if len(pw) > maxPasswordBytes {
		return fmt.Errorf("%w: password must be at most %d bytes long", ErrValidation, maxPasswordBytes)
	}
	return nil
}

// Register creates an unverified account and mails a verification link.
// A failed avatar upload aborts before the user is created. A failed mail
// leaves the user in place and returns ErrEmailDeliveryFailed with the user.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Username = normalize(in.Username)
	in.Email = normalize(in.Email)
	if in.FullName == "" || in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: all fields (fullname, email, username, password) are required", ErrValidation)
	}
	if strings.Contains(in.Username, "@") {
		return nil, fmt.Errorf("%w: username must not contain '@'", ErrValidation)
	}
	if err := checkPassword(in.Password); err != nil {
		return nil, err
	}

	exists, err := s.Repo.ExistsByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if exists {
		return nil, ErrUserExists
	}

	avatarURL := ""
	if in.Avatar != nil {
		if s.Avatars == nil {
			return nil, fmt.Errorf("%w: storage not configured", ErrAvatarUploadFailed)
		}
		avatarURL, err = s.Avatars.Upload(ctx, in.Avatar.Filename, in.Avatar.ContentType, in.Avatar.Body)
		if err != nil {
			if s.Logger != nil {
				s.Logger.WithError(err).WithField("username", in.Username).Error("avatar upload failed")
			}
			return nil, fmt.Errorf("%w: %v", ErrAvatarUploadFailed, err)
		}
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &entity.User{
		Username:  in.Username,
		Email:     in.Email,
		FullName:  in.FullName,
		AvatarURL: avatarURL,
		Password:  hash,
		Role:      entity.RoleUser,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	record(ctx, s.Audit, AuditEvent{Action: "register", UserID: u.ID, Success: true})

	if _, err := s.Verification.Issue(ctx, u, entity.TokenKindVerify); err != nil {
		return u, err
	}
	return u, nil
}

// compareDummy burns one bcrypt comparison so unknown identifiers take as
// long as wrong passwords.
func (s *AuthService) compareDummy(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.Hasher.Hash("dummy-password-for-timing")
	})
	s.Hasher.Compare(password, s.dummyHash)
}

// Login authenticates by username or email and starts a new session,
// replacing any refresh token stored for the user. An identifier containing
// '@' is an email; usernames cannot contain one.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	identifier = normalize(identifier)
	if identifier == "" {
		return nil, fmt.Errorf("%w: please provide email or username", ErrValidation)
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrValidation)
	}

	var u *entity.User
	var err error
	if strings.Contains(identifier, "@") {
		u, err = s.Repo.GetByEmail(ctx, identifier)
	} else {
		u, err = s.Repo.GetByUsername(ctx, identifier)
	}
	if errors.Is(err, repo.ErrNotFound) {
		s.compareDummy(password)
		record(ctx, s.Audit, AuditEvent{Action: "login", Identifier: identifier, Reason: "unknown identifier"})
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if !s.Hasher.Compare(password, u.Password) {
		record(ctx, s.Audit, AuditEvent{Action: "login", UserID: u.ID, Reason: "wrong password"})
		return nil, ErrInvalidCredentials
	}
	if !u.IsEmailVerified {
		record(ctx, s.Audit, AuditEvent{Action: "login", UserID: u.ID, Reason: "email not verified"})
		return nil, ErrEmailNotVerified
	}

	pair, err := s.issueTokens(u)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.SetRefreshToken(ctx, u.ID, pair.RefreshToken); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}
	u.RefreshToken = pair.RefreshToken
	record(ctx, s.Audit, AuditEvent{Action: "login", UserID: u.ID, Success: true})
	return &LoginResult{User: u.Sanitize(), TokenPair: pair}, nil
}

func (s *AuthService) issueTokens(u *entity.User) (TokenPair, error) {
	access, aexp, err := s.JWT.GenerateAccessToken(u.ID, string(u.Role))
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate access token failed")
		}
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(u.ID)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate refresh token failed")
		}
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

// Refresh rotates a refresh token. The presented token must be the one
// currently stored; the swap is conditional on it so a token is accepted at
// most once even under concurrent calls.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	if refreshToken == "" {
		return TokenPair{}, ErrMissingToken
	}
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		record(ctx, s.Audit, AuditEvent{Action: "refresh", Reason: err.Error()})
		return TokenPair{}, ErrInvalidOrExpiredToken
	}
	u, err := s.Repo.GetByID(ctx, claims.UserID)
	if errors.Is(err, repo.ErrNotFound) {
		return TokenPair{}, ErrInvalidToken
	}
	if err != nil {
		return TokenPair{}, fmt.Errorf("get user: %w", err)
	}
	if subtle.ConstantTimeCompare([]byte(u.RefreshToken), []byte(refreshToken)) != 1 {
		record(ctx, s.Audit, AuditEvent{Action: "refresh", UserID: u.ID, Reason: "token mismatch"})
		return TokenPair{}, ErrInvalidToken
	}

	pair, err := s.issueTokens(u)
	if err != nil {
		return TokenPair{}, err
	}
	ok, err := s.Repo.RotateRefreshToken(ctx, u.ID, refreshToken, pair.RefreshToken)
	if err != nil {
		return TokenPair{}, fmt.Errorf("rotate refresh token: %w", err)
	}
	if !ok {
		record(ctx, s.Audit, AuditEvent{Action: "refresh", UserID: u.ID, Reason: "lost rotation race"})
		return TokenPair{}, ErrInvalidToken
	}
	record(ctx, s.Audit, AuditEvent{Action: "refresh", UserID: u.ID, Success: true})
	return pair, nil
}

// Logout drops the stored refresh token. It succeeds when no session exists.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrMissingToken
	}
	if err := s.Repo.ClearRefreshToken(ctx, userID); err != nil && !errors.Is(err, repo.ErrNotFound) {
		return fmt.Errorf("clear refresh token: %w", err)
	}
	record(ctx, s.Audit, AuditEvent{Action: "logout", UserID: userID, Success: true})
	return nil
}

func (s *AuthService) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}
