package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Auth token purposes. One table backs both mail-delivered token flows.
const (
	TokenPurposeReset  = "password_reset"
	TokenPurposeVerify = "email_verify"
)

// AuthTokenRepo stores one-time tokens delivered by email (password reset
// links, address verification links) in the `auth_tokens` table. Tokens
// are stored hashed, expire, and are consumed at most once.
type AuthTokenRepo struct{ DB *sql.DB }

func NewAuthTokenRepo(db *sql.DB) *AuthTokenRepo { return &AuthTokenRepo{DB: db} }

// Store records a new token of the given purpose for an identity.
func (r *AuthTokenRepo) Store(ctx context.Context, uid, purpose, tokenHash string, expiresAt time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO auth_tokens (uid, purpose, token_hash, expires_at, created_at) VALUES (?,?,?,?,?)",
		uid, purpose, tokenHash, expiresAt, time.Now().UTC())
	return err
}

// Consume looks up an unused, unexpired token by purpose and hash, marks
// it used and returns the owning identity UID. Unknown, expired and
// already-used tokens all surface as ErrNotFound; callers present the
// three identically.
func (r *AuthTokenRepo) Consume(ctx context.Context, purpose, tokenHash string) (string, error) {
	now := time.Now().UTC()
	var uid string
	err := r.DB.QueryRowContext(ctx,
		"SELECT uid FROM auth_tokens WHERE purpose=? AND token_hash=? AND used_at IS NULL AND expires_at > ? LIMIT 1",
		purpose, tokenHash, now).Scan(&uid)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	if _, err := r.DB.ExecContext(ctx,
		"UPDATE auth_tokens SET used_at=? WHERE purpose=? AND token_hash=?", now, purpose, tokenHash); err != nil {
		return "", err
	}
	return uid, nil
}
