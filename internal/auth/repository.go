package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrUserExists signals unique email conflict.
	ErrUserExists = errors.New("user already exists")
	// ErrUserNotFound signals missing user.
	ErrUserNotFound = errors.New("user not found")
	// ErrSessionNotFound signals missing session.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionRotated signals that another request rotated the session first.
	ErrSessionRotated = errors.New("session rotated concurrently")
)

// User represents an auth user.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
}

// Session holds session data for refresh rotation.
type Session struct {
	ID                   uuid.UUID
	UserID               uuid.UUID
	AccessTokenHash      []byte
	RefreshTokenHash     []byte
	LastRefreshTokenHash []byte
	AccessExpiresAt      time.Time
	ExpiresAt            time.Time
	RotatedAt            *time.Time
	RevokedAt            *time.Time
	RevokedReason        string
	UserAgent            string
	IP                   string
}

// NewSession is the data needed to persist a freshly issued credential.
type NewSession struct {
	UserID           uuid.UUID
	AccessTokenHash  []byte
	RefreshTokenHash []byte
	AccessExpiresAt  time.Time
	ExpiresAt        time.Time
	UserAgent        string
	IP               string
}

// Rotation replaces the token pair of a session. It only applies while the
// session still holds PrevRefreshHash.
type Rotation struct {
	SessionID        uuid.UUID
	PrevRefreshHash  []byte
	AccessTokenHash  []byte
	RefreshTokenHash []byte
	AccessExpiresAt  time.Time
	ExpiresAt        time.Time
	RotatedAt        time.Time
}

type Repository interface {
	CreateUser(ctx context.Context, email string, passwordHash []byte) (User, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash []byte) error
	GetUserByEmail(ctx context.Context, email string) (User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (User, error)
	CreateSession(ctx context.Context, s NewSession) (uuid.UUID, error)
	GetSessionByAccess(ctx context.Context, accessHash []byte) (Session, error)
	GetSessionByRefresh(ctx context.Context, refreshHash []byte) (Session, bool, error)
	UpdateSessionTokens(ctx context.Context, rot Rotation) error
	RevokeSession(ctx context.Context, sessionID uuid.UUID, reason string) error
	RevokeUserSessions(ctx context.Context, userID uuid.UUID, reason string) error
}

type pgRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const sessionColumns = `id, user_id, access_token_hash, refresh_token_hash, last_refresh_token_hash, access_expires_at, expires_at, rotated_at, revoked_at, revoked_reason, user_agent, ip`

func scanSession(row pgx.Row) (Session, error) {
	var s Session
	err := row.Scan(&s.ID, &s.UserID, &s.AccessTokenHash, &s.RefreshTokenHash, &s.LastRefreshTokenHash, &s.AccessExpiresAt, &s.ExpiresAt, &s.RotatedAt, &s.RevokedAt, &s.RevokedReason, &s.UserAgent, &s.IP)
	return s, err
}

func (r *pgRepository) CreateUser(ctx context.Context, email string, passwordHash []byte) (User, error) {
	query := `
		INSERT INTO users (email, password_hash)
		VALUES ($1, $2)
		RETURNING id, email, password_hash, created_at`
	var u User
	err := r.pool.QueryRow(ctx, query, email, passwordHash).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return User{}, ErrUserExists
		}
		return User{}, err
	}
	return u, nil
}

func (r *pgRepository) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash []byte) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, userID, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *pgRepository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	query := `SELECT id, email, password_hash, created_at FROM users WHERE email = $1 LIMIT 1`
	var u User
	err := r.pool.QueryRow(ctx, query, email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	return u, err
}

func (r *pgRepository) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	query := `SELECT id, email, password_hash, created_at FROM users WHERE id = $1 LIMIT 1`
	var u User
	err := r.pool.QueryRow(ctx, query, id).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	return u, err
}

func (r *pgRepository) CreateSession(ctx context.Context, s NewSession) (uuid.UUID, error) {
	query := `
		INSERT INTO sessions (user_id, access_token_hash, refresh_token_hash, access_expires_at, expires_at, user_agent, ip)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	var id uuid.UUID
	if err := r.pool.QueryRow(ctx, query, s.UserID, s.AccessTokenHash, s.RefreshTokenHash, s.AccessExpiresAt, s.ExpiresAt, s.UserAgent, s.IP).Scan(&id); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (r *pgRepository) GetSessionByAccess(ctx context.Context, accessHash []byte) (Session, error) {
	s, err := scanSession(r.pool.QueryRow(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions
		WHERE access_token_hash = $1
		LIMIT 1`, accessHash))
	if errors.Is(err, pgx.ErrNoRows) {
		return Session{}, ErrSessionNotFound
	}
	return s, err
}

// GetSessionByRefresh returns session and bool indicating whether hash matched last_refresh_token_hash (reuse).
func (r *pgRepository) GetSessionByRefresh(ctx context.Context, refreshHash []byte) (Session, bool, error) {
	s, err := scanSession(r.pool.QueryRow(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions
		WHERE refresh_token_hash = $1
		LIMIT 1`, refreshHash))
	if err == nil {
		return s, false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Session{}, false, err
	}

	s, err = scanSession(r.pool.QueryRow(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions
		WHERE last_refresh_token_hash = $1
		LIMIT 1`, refreshHash))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Session{}, false, ErrSessionNotFound
		}
		return Session{}, false, err
	}
	return s, true, nil
}

func (r *pgRepository) UpdateSessionTokens(ctx context.Context, rot Rotation) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE sessions
		SET last_refresh_token_hash = refresh_token_hash,
		    refresh_token_hash = $2,
		    access_token_hash = $1,
		    access_expires_at = $3,
		    expires_at = $4,
		    rotated_at = $5
		WHERE id = $6 AND refresh_token_hash = $7
	`, rot.AccessTokenHash, rot.RefreshTokenHash, rot.AccessExpiresAt, rot.ExpiresAt, rot.RotatedAt, rot.SessionID, rot.PrevRefreshHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionRotated
	}
	return nil
}

func (r *pgRepository) RevokeSession(ctx context.Context, sessionID uuid.UUID, reason string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE sessions
		SET revoked_at = NOW(),
		    revoked_reason = $2
		WHERE id = $1 AND revoked_at IS NULL
	`, sessionID, reason)
	return err
}

func (r *pgRepository) RevokeUserSessions(ctx context.Context, userID uuid.UUID, reason string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE sessions
		SET revoked_at = NOW(),
		    revoked_reason = $2
		WHERE user_id = $1 AND revoked_at IS NULL
	`, userID, reason)
	return err
}
