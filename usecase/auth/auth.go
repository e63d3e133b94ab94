package auth

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/fastygo/daybook/domain"
	"github.com/fastygo/daybook/repository"
	"github.com/fastygo/daybook/usecase"
)

const MinPasswordLength = 8

var ErrInvalidCredentials = domain.NewError(domain.ErrCodeUnauthorized, "invalid email or password")

type Config struct {
	Secret     string
	Issuer     string
	AccessTTL  time.Duration
	SessionTTL time.Duration
}

// Claims are carried by access tokens.
type Claims struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}

// Tokens is returned by every sign-in style operation. RefreshToken is the session id.
type Tokens struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	TokenType    string          `json:"token_type"`
	ExpiresAt    time.Time       `json:"expires_at"`
	Session      *domain.Session `json:"session"`
}

type UseCase struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	cfg      Config
	now      usecase.Clock
	logger   *zap.Logger
}

func New(users repository.UserRepository, sessions repository.SessionRepository, cfg Config, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 15 * time.Minute
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 30 * 24 * time.Hour
	}
	return &UseCase{
		users:    users,
		sessions: sessions,
		cfg:      cfg,
		now:      time.Now,
		logger:   logger,
	}
}

// WithClock replaces the time source; used by tests.
func (uc *UseCase) WithClock(now usecase.Clock) *UseCase {
	uc.now = now
	return uc
}

// SignUp registers a new user and opens a session for it.
func (uc *UseCase) SignUp(ctx context.Context, email, password string, metadata map[string]string) (*Tokens, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if len(password) < MinPasswordLength {
		return nil, domain.NewError(domain.ErrCodeInvalid, "password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "failed to hash password", err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Metadata:     allowedMetadata(metadata),
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, usecase.Internal("failed to create user", err)
	}
	uc.logger.Info("user signed up", zap.String("user_id", user.ID))
	return uc.openSession(ctx, user)
}

// SignIn checks the password and opens a new session.
func (uc *UseCase) SignIn(ctx context.Context, email, password string) (*Tokens, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, usecase.Internal("failed to load user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return uc.openSession(ctx, user)
}

// Refresh extends the session behind refreshToken and issues a new access token.
func (uc *UseCase) Refresh(ctx context.Context, refreshToken string) (*Tokens, error) {
	session, err := uc.Current(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if err := uc.sessions.Extend(ctx, session.ID, uc.cfg.SessionTTL); err != nil {
		return nil, usecase.Internal("failed to extend session", err)
	}
	session.ExpiresAt = uc.now().Add(uc.cfg.SessionTTL)
	return uc.issue(session)
}

// SignOut revokes the session; its access tokens stop working immediately.
func (uc *UseCase) SignOut(ctx context.Context, session *domain.Session) error {
	if _, err := session.RequireUser(); err != nil {
		return err
	}
	if err := uc.sessions.Delete(ctx, session.ID); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		return usecase.Internal("failed to revoke session", err)
	}
	return nil
}

// Current loads a live session. Expired sessions are removed and reported missing.
func (uc *UseCase) Current(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, usecase.Internal("failed to load session", err)
	}
	if session.IsExpired(uc.now()) {
		_ = uc.sessions.Delete(ctx, sessionID)
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// Authenticate verifies an access token and resolves its still-open session.
func (uc *UseCase) Authenticate(ctx context.Context, token string) (*domain.Session, error) {
	claims, err := uc.Verify(token)
	if err != nil {
		return nil, err
	}
	session, err := uc.Current(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	if session.UserID != claims.UserID {
		return nil, domain.ErrUnauthorized
	}
	return session, nil
}

// Verify parses an access token signed with the configured secret.
func (uc *UseCase) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	parsed, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(uc.cfg.Secret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, domain.WrapError(domain.ErrCodeUnauthorized, "invalid access token", err)
	}
	if claims.UserID == "" || claims.SessionID == "" {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}

func (uc *UseCase) openSession(ctx context.Context, user *domain.User) (*Tokens, error) {
	now := uc.now()
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Email:     user.Email,
		CreatedAt: now,
		ExpiresAt: now.Add(uc.cfg.SessionTTL),
	}
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, usecase.Internal("failed to save session", err)
	}
	return uc.issue(session)
}

func (uc *UseCase) issue(session *domain.Session) (*Tokens, error) {
	now := uc.now()
	expires := now.Add(uc.cfg.AccessTTL)
	if session.ExpiresAt.Before(expires) {
		expires = session.ExpiresAt
	}
	claims := Claims{
		UserID:    session.UserID,
		SessionID: session.ID,
		Email:     session.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    uc.cfg.Issuer,
			Subject:   session.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(uc.cfg.Secret))
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "failed to sign token", err)
	}
	return &Tokens{
		AccessToken:  signed,
		RefreshToken: session.ID,
		TokenType:    "Bearer",
		ExpiresAt:    expires,
		Session:      session,
	}, nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", domain.NewError(domain.ErrCodeInvalid, "invalid email address")
	}
	return email, nil
}

func allowedMetadata(in map[string]string) map[string]string {
	out := make(map[string]string, len(domain.ProfileKeys))
	for _, key := range domain.ProfileKeys {
		if v, ok := in[key]; ok {
			out[key] = strings.TrimSpace(v)
		}
	}
	return out
}
