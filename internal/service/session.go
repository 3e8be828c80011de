package service

import (
	"context"
	"log"
	"time"

	"github.com/nanaacademy/academy-server/internal/auth"
	"github.com/nanaacademy/academy-server/internal/model"
	"github.com/nanaacademy/academy-server/internal/utils"
)

// Dashboard paths per role; the login response carries the one matching
// the resolved role so the frontend can redirect after a short delay.
const (
	PathAdminDashboard   = "/admin-dashboard"
	PathTeacherDashboard = "/teacher-dashboard"
	PathStudentDashboard = "/student-dashboard"
	PathLogin            = "/login"
	PathHome             = "/"
)

// SessionService is the session controller: it owns sign-in and sign-out
// and is the single writer of session state. Every other component sees
// the session only as an Actor value derived from a validated token.
type SessionService struct {
	Provider     auth.Provider
	Resolver     *RoleResolver
	Roles        RoleStore
	Sessions     SessionStore
	JWTSecret    string
	AccessTTLMin int
}

func NewSessionService(p auth.Provider, resolver *RoleResolver, roles RoleStore, sessions SessionStore, secret string, ttlMin int) *SessionService {
	return &SessionService{
		Provider:     p,
		Resolver:     resolver,
		Roles:        roles,
		Sessions:     sessions,
		JWTSecret:    secret,
		AccessTTLMin: ttlMin,
	}
}

// LoginResult is returned on a successful sign-in.
type LoginResult struct {
	Token         string
	ExpiresAt     time.Time
	UID           string
	Email         string
	DisplayName   string
	Role          string
	RedirectTo    string
	EmailVerified bool
}

// Login drives the sign-in state machine. The requested role must match
// the stored role record:
//
//	credentials rejected        -> classified auth error
//	identity ok, role absent    -> provider session revoked, ErrUnprovisioned
//	identity ok, role mismatch  -> provider session revoked, RoleMismatchError naming the true role
//	identity ok, role match     -> last_login stamped, session stored, token issued
//
// The revocations ensure a failed role check never leaves a
// half-authenticated identity behind.
func (s *SessionService) Login(ctx context.Context, email, password, requestedRole string) (LoginResult, error) {
	id, err := s.Provider.SignIn(ctx, email, password)
	if err != nil {
		return LoginResult{}, err
	}

	rec, ok := s.Resolver.Resolve(ctx, id.UID)
	if !ok {
		s.forceSignOut(ctx, id.UID)
		return LoginResult{}, ErrUnprovisioned
	}
	if rec.Role != requestedRole {
		s.forceSignOut(ctx, id.UID)
		return LoginResult{}, &RoleMismatchError{Actual: rec.Role}
	}

	// Failures stamping last_login are logged, never fatal to the login.
	if err := s.Roles.TouchLastLogin(ctx, id.UID); err != nil {
		log.Printf("session: stamping last_login for %s failed: %v", id.UID, err)
	}

	tok, err := utils.NewSessionToken(s.AccessTTLMin)
	if err != nil {
		return LoginResult{}, err
	}
	if err := s.Sessions.Store(ctx, id.UID, utils.HashTokenRaw(tok.Raw), tok.Exp); err != nil {
		return LoginResult{}, err
	}
	access, err := utils.NewAccessToken(s.JWTSecret, id.UID, id.Email, rec.Role, tok.Raw, s.AccessTTLMin)
	if err != nil {
		return LoginResult{}, err
	}

	return LoginResult{
		Token:         access.Token,
		ExpiresAt:     access.Exp,
		UID:           id.UID,
		Email:         id.Email,
		DisplayName:   rec.DisplayName,
		Role:          rec.Role,
		RedirectTo:    DashboardPath(rec.Role),
		EmailVerified: id.EmailVerified,
	}, nil
}

// Logout revokes the presented session. The token middleware checks the
// session row on every request, so the JWT carrying this sid stops
// working immediately; sessions on other devices are untouched.
func (s *SessionService) Logout(ctx context.Context, sid string) error {
	return s.Sessions.RevokeByHash(ctx, utils.HashTokenRaw(sid))
}

func (s *SessionService) forceSignOut(ctx context.Context, uid string) {
	if err := s.Provider.SignOut(ctx, uid); err != nil {
		log.Printf("session: forced sign-out for %s failed: %v", uid, err)
	}
}

// DashboardPath maps a role to its dashboard route; unknown roles land on
// the entry page.
func DashboardPath(role string) string {
	switch role {
	case model.RoleAdmin:
		return PathAdminDashboard
	case model.RoleTeacher:
		return PathTeacherDashboard
	case model.RoleStudent:
		return PathStudentDashboard
	default:
		return PathHome
	}
}
