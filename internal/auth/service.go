package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"kingdojo/internal/security"
)

// Config controls auth TTLs.
type Config struct {
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	// ReuseGrace is how long a just-rotated refresh token is still honoured.
	// Parallel requests carrying the same expired cookies land in this window.
	// Zero turns every reuse into a revocation.
	ReuseGrace time.Duration
}

var (
	// ErrInvalidCredentials signals wrong email or password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrRefreshReuse signals refresh token reuse.
	ErrRefreshReuse = errors.New("refresh token reused and session revoked")
	// ErrSessionRevoked signals revoked session.
	ErrSessionRevoked = errors.New("session revoked")
	// ErrSessionExpired signals an expired access or refresh token.
	ErrSessionExpired = errors.New("session expired")
)

// Identity is the authenticated principal behind a session.
type Identity struct {
	UserID uuid.UUID
	Email  string
}

// Tokens is a freshly issued or rotated Session Credential.
type Tokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Rejected reports whether err is a definitive answer about the credential,
// as opposed to an outage or timeout.
func Rejected(err error) bool {
	return errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrSessionRevoked) ||
		errors.Is(err, ErrSessionExpired) ||
		errors.Is(err, ErrRefreshReuse) ||
		errors.Is(err, ErrUserNotFound)
}

// Service issues, validates, refreshes and revokes admin sessions.
type Service struct {
	repo   Repository
	config Config
	now    func() time.Time
}

func NewService(repo Repository, cfg Config) *Service {
	return &Service{repo: repo, config: cfg, now: time.Now}
}

// CreateUser registers an account with a bcrypt password hash.
func (s *Service) CreateUser(ctx context.Context, email, password string) (User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return User{}, fmt.Errorf("email required")
	}
	passHash, err := security.HashPassword(password)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	return s.repo.CreateUser(ctx, email, passHash)
}

// SetPassword replaces the password of an existing account and revokes its sessions.
func (s *Service) SetPassword(ctx context.Context, email, password string) error {
	user, err := s.repo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return err
	}
	passHash, err := security.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.repo.UpdatePassword(ctx, user.ID, passHash); err != nil {
		return err
	}
	return s.repo.RevokeUserSessions(ctx, user.ID, "password_reset")
}

// SignInWithPassword verifies credentials and issues a new session.
func (s *Service) SignInWithPassword(ctx context.Context, email, password, userAgent, ip string) (Tokens, error) {
	user, err := s.repo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return Tokens{}, ErrInvalidCredentials
		}
		return Tokens{}, err
	}
	if !security.CheckPassword(user.PasswordHash, password) {
		return Tokens{}, ErrInvalidCredentials
	}
	return s.issueSession(ctx, user, userAgent, ip)
}

// GetUser resolves the identity behind an access token.
func (s *Service) GetUser(ctx context.Context, accessToken string) (Identity, error) {
	if accessToken == "" {
		return Identity{}, ErrSessionNotFound
	}
	session, err := s.repo.GetSessionByAccess(ctx, security.HashToken(accessToken))
	if err != nil {
		return Identity{}, err
	}
	if session.RevokedAt != nil {
		return Identity{}, ErrSessionRevoked
	}
	now := s.now()
	if session.AccessExpiresAt.Before(now) || session.ExpiresAt.Before(now) {
		return Identity{}, ErrSessionExpired
	}
	user, err := s.repo.GetUserByID(ctx, session.UserID)
	if err != nil {
		return Identity{}, err
	}
	return Identity{UserID: user.ID, Email: user.Email}, nil
}

// Refresh rotates tokens and detects reuse. A token presented again within
// ReuseGrace of its rotation gets a sibling session instead of a revocation.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (Tokens, error) {
	if refreshToken == "" {
		return Tokens{}, ErrSessionNotFound
	}
	refreshHash := security.HashToken(refreshToken)
	session, matchedPrev, err := s.repo.GetSessionByRefresh(ctx, refreshHash)
	if err != nil {
		return Tokens{}, err
	}
	if session.RevokedAt != nil {
		return Tokens{}, ErrSessionRevoked
	}
	now := s.now()
	if matchedPrev {
		if !s.inReuseGrace(session, now) {
			_ = s.repo.RevokeSession(ctx, session.ID, "refresh_reuse")
			return Tokens{}, ErrRefreshReuse
		}
		return s.issueSibling(ctx, session, now)
	}
	if session.ExpiresAt.Before(now) {
		return Tokens{}, ErrSessionExpired
	}

	newAccess, newAccessHash, err := security.GenerateOpaqueToken()
	if err != nil {
		return Tokens{}, err
	}
	newRefresh, newRefreshHash, err := security.GenerateOpaqueToken()
	if err != nil {
		return Tokens{}, err
	}
	expiresAt := now.Add(s.config.RefreshTokenTTL)
	err = s.repo.UpdateSessionTokens(ctx, Rotation{
		SessionID:        session.ID,
		PrevRefreshHash:  refreshHash,
		AccessTokenHash:  newAccessHash,
		RefreshTokenHash: newRefreshHash,
		AccessExpiresAt:  now.Add(s.config.AccessTokenTTL),
		ExpiresAt:        expiresAt,
		RotatedAt:        now,
	})
	if errors.Is(err, ErrSessionRotated) {
		return s.issueSibling(ctx, session, now)
	}
	if err != nil {
		return Tokens{}, err
	}
	return Tokens{AccessToken: newAccess, RefreshToken: newRefresh, ExpiresAt: expiresAt}, nil
}

func (s *Service) inReuseGrace(session Session, now time.Time) bool {
	if s.config.ReuseGrace <= 0 || session.RotatedAt == nil {
		return false
	}
	return now.Sub(*session.RotatedAt) <= s.config.ReuseGrace
}

// issueSibling answers a request that lost the rotation race with a new
// session for the same user. The rotated session stays valid.
func (s *Service) issueSibling(ctx context.Context, session Session, now time.Time) (Tokens, error) {
	if session.ExpiresAt.Before(now) {
		return Tokens{}, ErrSessionExpired
	}
	user, err := s.repo.GetUserByID(ctx, session.UserID)
	if err != nil {
		return Tokens{}, err
	}
	return s.issueSession(ctx, user, session.UserAgent, session.IP)
}

// SignOut revokes the session owning the access token.
func (s *Service) SignOut(ctx context.Context, accessToken string) error {
	session, err := s.repo.GetSessionByAccess(ctx, security.HashToken(accessToken))
	if err != nil {
		return err
	}
	return s.repo.RevokeSession(ctx, session.ID, "logout")
}

func (s *Service) issueSession(ctx context.Context, user User, userAgent, ip string) (Tokens, error) {
	accessToken, accessHash, err := security.GenerateOpaqueToken()
	if err != nil {
		return Tokens{}, err
	}
	refreshToken, refreshHash, err := security.GenerateOpaqueToken()
	if err != nil {
		return Tokens{}, err
	}

	now := s.now()
	expiresAt := now.Add(s.config.RefreshTokenTTL)
	if _, err = s.repo.CreateSession(ctx, NewSession{
		UserID:           user.ID,
		AccessTokenHash:  accessHash,
		RefreshTokenHash: refreshHash,
		AccessExpiresAt:  now.Add(s.config.AccessTokenTTL),
		ExpiresAt:        expiresAt,
		UserAgent:        userAgent,
		IP:               ip,
	}); err != nil {
		return Tokens{}, fmt.Errorf("create session: %w", err)
	}
	return Tokens{AccessToken: accessToken, RefreshToken: refreshToken, ExpiresAt: expiresAt}, nil
}

// Emails are stored as typed apart from surrounding whitespace; the allowlist
// compares them exactly, so no case folding happens here.
func normalizeEmail(email string) string {
	return strings.TrimSpace(email)
}
