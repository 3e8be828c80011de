package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// SessionRepo stores revocable sessions in the `sessions` table. Only the
// SHA-256 hash of a session token is persisted.
type SessionRepo struct{ DB *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

// Store records a new session for an identity.
func (r *SessionRepo) Store(ctx context.Context, uid, tokenHash string, expiresAt time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO sessions (uid, token_hash, expires_at, created_at) VALUES (?,?,?,?)",
		uid, tokenHash, expiresAt, time.Now().UTC())
	return err
}

// Active reports whether an unrevoked, unexpired session with this token
// hash exists. The token middleware consults it on every protected
// request so revocation takes effect before the JWT expires.
func (r *SessionRepo) Active(ctx context.Context, tokenHash string) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM sessions WHERE token_hash=? AND revoked_at IS NULL AND expires_at > ? LIMIT 1",
		tokenHash, time.Now().UTC()).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// RevokeAllForUID revokes every active session belonging to an identity.
// Used by sign-out and by the login flow when a sign-in must be undone
// (role mismatch, unprovisioned identity).
func (r *SessionRepo) RevokeAllForUID(ctx context.Context, uid string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE sessions SET revoked_at=? WHERE uid=? AND revoked_at IS NULL",
		time.Now().UTC(), uid)
	return err
}

// RevokeByHash revokes the single session matching the token hash.
func (r *SessionRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE sessions SET revoked_at=? WHERE token_hash=? AND revoked_at IS NULL",
		time.Now().UTC(), tokenHash)
	return err
}
