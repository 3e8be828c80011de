package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanaacademy/academy-server/internal/utils"
)

type stubChecker struct {
	live    bool
	err     error
	queried []string
}

func (s *stubChecker) Active(_ context.Context, tokenHash string) (bool, error) {
	s.queried = append(s.queried, tokenHash)
	return s.live, s.err
}

func runJWTAuth(t *testing.T, token string, checker *stubChecker) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	next := func(c echo.Context) error {
		called = true
		return c.String(http.StatusOK, "ok")
	}
	require.NoError(t, JWTAuth("test-secret", checker)(next)(c))
	return rec, called
}

func TestJWTAuthAcceptsLiveSession(t *testing.T) {
	at, err := utils.NewAccessToken("test-secret", "uid-1", "a@nana.academy", "admin", "sid-1", 15)
	require.NoError(t, err)
	checker := &stubChecker{live: true}

	rec, called := runJWTAuth(t, at.Token, checker)

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
	// The store is asked about the hashed sid, never the raw value.
	require.Len(t, checker.queried, 1)
	assert.Equal(t, utils.HashTokenRaw("sid-1"), checker.queried[0])
}

func TestJWTAuthRejectsRevokedSession(t *testing.T) {
	// Signature-valid token whose session row was revoked (or never
	// existed): the request must not reach the handler.
	at, err := utils.NewAccessToken("test-secret", "uid-1", "a@nana.academy", "admin", "sid-revoked", 15)
	require.NoError(t, err)
	checker := &stubChecker{live: false}

	rec, called := runJWTAuth(t, at.Token, checker)

	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "session revoked")
}

func TestJWTAuthRejectsBadSignature(t *testing.T) {
	at, err := utils.NewAccessToken("other-secret", "uid-1", "a@nana.academy", "admin", "sid-1", 15)
	require.NoError(t, err)
	checker := &stubChecker{live: true}

	rec, called := runJWTAuth(t, at.Token, checker)

	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	// The session store is never consulted for an unverified token.
	assert.Empty(t, checker.queried)
}

func TestJWTAuthRejectsMissingHeader(t *testing.T) {
	rec, called := runJWTAuth(t, "", &stubChecker{live: true})
	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
