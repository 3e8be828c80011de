package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanaacademy/academy-server/internal/model"
	"github.com/nanaacademy/academy-server/internal/utils"
)

func newSessionFixture() (*SessionService, *fakeProvider, *fakeRoles, *fakeSessions) {
	provider := newFakeProvider()
	roles := newFakeRoles()
	sessions := &fakeSessions{}
	svc := NewSessionService(provider, NewRoleResolver(roles), roles, sessions, "test-secret", 15)
	return svc, provider, roles, sessions
}

func TestLoginSuccess(t *testing.T) {
	svc, provider, roles, sessions := newSessionFixture()
	provider.identities["admin@nana.academy"] = model.Identity{UID: "uid-1", Email: "admin@nana.academy", EmailVerified: true}
	roles.records["uid-1"] = model.RoleRecord{UID: "uid-1", Role: model.RoleAdmin, DisplayName: "The Admin"}

	res, err := svc.Login(context.Background(), "admin@nana.academy", "good", model.RoleAdmin)
	require.NoError(t, err)

	assert.NotEmpty(t, res.Token)
	assert.Equal(t, PathAdminDashboard, res.RedirectTo)
	assert.Equal(t, "The Admin", res.DisplayName)
	assert.True(t, res.EmailVerified)
	assert.Equal(t, []string{"uid-1"}, roles.touched)
	assert.Equal(t, 1, sessions.stored)
	assert.Empty(t, provider.signedOut)
}

func TestLoginRoleMismatchRevokesSession(t *testing.T) {
	svc, provider, roles, sessions := newSessionFixture()
	provider.identities["x@nana.academy"] = model.Identity{UID: "uid-1", Email: "x@nana.academy"}
	roles.records["uid-1"] = model.RoleRecord{UID: "uid-1", Role: model.RoleAdmin}

	_, err := svc.Login(context.Background(), "x@nana.academy", "good", model.RoleTeacher)

	var rm *RoleMismatchError
	require.ErrorAs(t, err, &rm)
	// The message names the true role so the user can retry.
	assert.Equal(t, model.RoleAdmin, rm.Actual)
	assert.Contains(t, rm.Error(), "admin")
	// The half-authenticated identity session is revoked.
	assert.Equal(t, []string{"uid-1"}, provider.signedOut)
	assert.Zero(t, sessions.stored)
	assert.Empty(t, roles.touched)
}

func TestLoginUnprovisionedRevokesSession(t *testing.T) {
	svc, provider, _, sessions := newSessionFixture()
	provider.identities["ghost@nana.academy"] = model.Identity{UID: "uid-ghost", Email: "ghost@nana.academy"}

	_, err := svc.Login(context.Background(), "ghost@nana.academy", "good", model.RoleStudent)

	require.ErrorIs(t, err, ErrUnprovisioned)
	assert.Equal(t, []string{"uid-ghost"}, provider.signedOut)
	assert.Zero(t, sessions.stored)
}

func TestLoginRoleReadFailureLooksUnprovisioned(t *testing.T) {
	svc, provider, roles, _ := newSessionFixture()
	provider.identities["x@nana.academy"] = model.Identity{UID: "uid-1", Email: "x@nana.academy"}
	roles.getErr = errFakeAuth

	_, err := svc.Login(context.Background(), "x@nana.academy", "good", model.RoleAdmin)
	assert.ErrorIs(t, err, ErrUnprovisioned)
}

func TestLoginBadCredentials(t *testing.T) {
	svc, provider, _, sessions := newSessionFixture()
	provider.identities["x@nana.academy"] = model.Identity{UID: "uid-1", Email: "x@nana.academy"}

	_, err := svc.Login(context.Background(), "x@nana.academy", "wrong", model.RoleAdmin)
	require.Error(t, err)
	assert.Zero(t, sessions.stored)
}

func TestLogoutRevokesPresentedSession(t *testing.T) {
	svc, _, _, sessions := newSessionFixture()

	require.NoError(t, svc.Logout(context.Background(), "raw-session-token"))

	// The stored hash is revoked, never the raw token.
	require.Len(t, sessions.revoked, 1)
	assert.Equal(t, utils.HashTokenRaw("raw-session-token"), sessions.revoked[0])
	assert.NotEqual(t, "raw-session-token", sessions.revoked[0])
}

func TestDashboardPath(t *testing.T) {
	assert.Equal(t, PathAdminDashboard, DashboardPath(model.RoleAdmin))
	assert.Equal(t, PathTeacherDashboard, DashboardPath(model.RoleTeacher))
	assert.Equal(t, PathStudentDashboard, DashboardPath(model.RoleStudent))
	assert.Equal(t, PathHome, DashboardPath("janitor"))
}
