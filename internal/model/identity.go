package model

import "time"

// Application roles stored in role records and carried in JWT claims.
const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// CreatedBySystem is the sentinel recorded in created_by when a record is
// written without an authenticated session (e.g. seed scripts).
const CreatedBySystem = "system"

// Identity represents a login principal as stored in the `identities`
// table. It is owned by the auth provider; the rest of the application
// only reads it. The UID is a UUID assigned at account creation and is
// the key shared with the identity's role record.
//
// Fields:
//
//	UID           – UUID primary key of the identity.
//	Email         – unique login email address.
//	PasswordHash  – bcrypt hashed password.
//	EmailVerified – whether the address has been confirmed.
//	Disabled      – administratively disabled accounts cannot sign in.
//	CreatedAt     – timestamp of creation.
//	UpdatedAt     – timestamp of last update.
type Identity struct {
	UID           string
	Email         string
	PasswordHash  string
	EmailVerified bool
	Disabled      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// RoleRecord binds an identity to its application role. Exactly one role
// record exists per provisioned identity, keyed by the shared UID. It is
// created once at provisioning time and only its LastLogin field is
// mutated afterwards. Role records are never deleted; an identity without
// one is considered not provisioned.
//
// Fields:
//
//	UID         – identity UID (primary key).
//	Email       – copy of the login email for display.
//	DisplayName – human readable name shown in the UI.
//	Role        – one of RoleAdmin, RoleTeacher, RoleStudent.
//	StudentID   – linked student record id ("" unless Role is student).
//	TeacherID   – linked teacher record id ("" unless Role is teacher).
//	CreatedAt   – timestamp of provisioning.
//	LastLogin   – stamped on every successful sign-in.
type RoleRecord struct {
	UID         string
	Email       string
	DisplayName string
	Role        string
	StudentID   string
	TeacherID   string
	CreatedAt   time.Time
	LastLogin   time.Time
}

// Session models an entry in the `sessions` table. A session is created on
// successful sign-in and revoked on sign-out or when a sign-in attempt is
// aborted mid-flight (role mismatch, unprovisioned identity). The plain
// session token is not stored; only its SHA-256 hash.
type Session struct {
	ID        uint64
	UID       string
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}

// AuthToken models a one-time token delivered by email (password reset
// or address verification, per Purpose). Only the SHA-256 hash of the
// token is stored; the raw value is embedded in the link mailed to the
// user. A token is consumed at most once and expires.
type AuthToken struct {
	ID        uint64
	UID       string
	Purpose   string
	TokenHash string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}
