package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnprovisioned is returned when an identity signs in but has no
	// role record. The identity-provider session is revoked before this
	// is returned so no half-authenticated state survives.
	ErrUnprovisioned = errors.New("user account not properly set up, please contact administrator")

	// ErrNoActor is returned when an operation that stamps authorship is
	// attempted without an authenticated session.
	ErrNoActor = errors.New("no authenticated session")

	// ErrPermissionDenied is returned when a non-admin reaches an
	// admin-gated operation.
	ErrPermissionDenied = errors.New("access denied, admin privileges required")

	// ErrIDExhausted is returned when record id generation keeps
	// colliding after the bounded retries. The colliding operation is
	// rejected; existing records are never overwritten.
	ErrIDExhausted = errors.New("could not allocate a unique record id")
)

// ValidationError reports missing required fields. It is produced before
// any remote call is made.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// RoleMismatchError is returned when the role selected at login does not
// match the stored role. It names the true role so the user can retry
// with the right selection.
type RoleMismatchError struct {
	Actual string
}

func (e *RoleMismatchError) Error() string {
	return fmt.Sprintf("please login as %s, selected role does not match", e.Actual)
}
