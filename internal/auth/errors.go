package auth

import "errors"

// Classified sign-in and account errors. Handlers map these to the
// human-readable messages shown on the login form; anything else falls
// through to a generic failure message.
var (
	ErrInvalidEmail    = errors.New("invalid email address")
	ErrEmailExists     = errors.New("an account with this email already exists")
	ErrDisabled        = errors.New("this account has been disabled")
	ErrUserNotFound    = errors.New("no account found with this email")
	ErrWrongPassword   = errors.New("incorrect password")
	ErrTooManyRequests = errors.New("too many failed attempts, try again later")
)
