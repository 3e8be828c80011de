package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/nanaacademy/academy-server/internal/model"
)

// IdentityRepo stores login principals in the `identities` table. It is
// consumed only by the auth provider; application services read identities
// through role records instead.
type IdentityRepo struct{ DB *sql.DB }

func NewIdentityRepo(db *sql.DB) *IdentityRepo { return &IdentityRepo{DB: db} }

// Create inserts a new identity. The email is normalized to lower case and
// must be unique; collisions surface as ErrEmailExists.
func (r *IdentityRepo) Create(ctx context.Context, id model.Identity) error {
	id.Email = strings.ToLower(strings.TrimSpace(id.Email))
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO identities (uid, email, password_hash, email_verified, disabled, created_at, updated_at) VALUES (?,?,?,?,?,?,?)",
		id.UID, id.Email, id.PasswordHash, id.EmailVerified, id.Disabled, id.CreatedAt, id.UpdatedAt)
	if err != nil {
		if isDuplicate(err) {
			return ErrEmailExists
		}
		return err
	}
	return nil
}

// GetByEmail fetches an identity by normalized email.
func (r *IdentityRepo) GetByEmail(ctx context.Context, email string) (model.Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var id model.Identity
	err := r.DB.QueryRowContext(ctx,
		"SELECT uid,email,password_hash,email_verified,disabled,created_at,updated_at FROM identities WHERE email=? LIMIT 1",
		email).Scan(&id.UID, &id.Email, &id.PasswordHash, &id.EmailVerified, &id.Disabled, &id.CreatedAt, &id.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Identity{}, ErrNotFound
	}
	return id, err
}

// GetByUID fetches an identity by its UUID.
func (r *IdentityRepo) GetByUID(ctx context.Context, uid string) (model.Identity, error) {
	var id model.Identity
	err := r.DB.QueryRowContext(ctx,
		"SELECT uid,email,password_hash,email_verified,disabled,created_at,updated_at FROM identities WHERE uid=? LIMIT 1",
		uid).Scan(&id.UID, &id.Email, &id.PasswordHash, &id.EmailVerified, &id.Disabled, &id.CreatedAt, &id.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Identity{}, ErrNotFound
	}
	return id, err
}

// MarkEmailVerified flips the email_verified flag.
func (r *IdentityRepo) MarkEmailVerified(ctx context.Context, uid string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE identities SET email_verified=1, updated_at=? WHERE uid=?",
		time.Now().UTC(), uid)
	return err
}

// SetPassword replaces the stored password hash, completing a reset flow.
func (r *IdentityRepo) SetPassword(ctx context.Context, uid, passwordHash string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE identities SET password_hash=?, updated_at=? WHERE uid=?",
		passwordHash, time.Now().UTC(), uid)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
