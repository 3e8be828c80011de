package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/nanaacademy/academy-server/internal/model"
)

// RoleRepo stores role records in the `role_records` table, keyed by
// identity UID. A missing row means the identity has not been provisioned;
// callers must not substitute a default role.
type RoleRepo struct{ DB *sql.DB }

func NewRoleRepo(db *sql.DB) *RoleRepo { return &RoleRepo{DB: db} }

// Get fetches the role record for an identity. Returns ErrNotFound when
// the identity is not provisioned.
func (r *RoleRepo) Get(ctx context.Context, uid string) (model.RoleRecord, error) {
	var rec model.RoleRecord
	err := r.DB.QueryRowContext(ctx,
		"SELECT uid,email,display_name,role,student_id,teacher_id,created_at,last_login FROM role_records WHERE uid=? LIMIT 1",
		uid).Scan(&rec.UID, &rec.Email, &rec.DisplayName, &rec.Role, &rec.StudentID, &rec.TeacherID, &rec.CreatedAt, &rec.LastLogin)
	if errors.Is(err, sql.ErrNoRows) {
		return model.RoleRecord{}, ErrNotFound
	}
	return rec, err
}

// Create writes the role record for a freshly provisioned identity.
func (r *RoleRepo) Create(ctx context.Context, rec model.RoleRecord) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO role_records (uid, email, display_name, role, student_id, teacher_id, created_at, last_login) VALUES (?,?,?,?,?,?,?,?)",
		rec.UID, rec.Email, rec.DisplayName, rec.Role, rec.StudentID, rec.TeacherID, rec.CreatedAt, rec.LastLogin)
	if isDuplicate(err) {
		return ErrDuplicateID
	}
	return err
}

// TouchLastLogin stamps last_login with the current server time. Failures
// here are logged by the caller and never block a sign-in.
func (r *RoleRepo) TouchLastLogin(ctx context.Context, uid string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE role_records SET last_login=? WHERE uid=?",
		time.Now().UTC(), uid)
	return err
}
