// Package middleware provides reusable HTTP middleware: bearer token
// validation with server-side session revocation and role gating for the
// admin surface.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/nanaacademy/academy-server/internal/service"
	"github.com/nanaacademy/academy-server/internal/utils"
)

// Context keys set by JWTAuth for downstream middleware and handlers.
const (
	CtxUserID    = "user_id"
	CtxEmail     = "email"
	CtxRole      = "role"
	CtxSessionID = "session_id"
)

// SessionChecker reports whether the session behind a token hash is still
// live. Logout and forced sign-out revoke rows here, which invalidates
// the JWT before its exp claim runs out.
type SessionChecker interface {
	Active(ctx context.Context, tokenHash string) (bool, error)
}

// JWTAuth returns an Echo middleware that validates a Bearer access
// token, checks that its sid claim still maps to a live session, and
// injects the subject, email, role and session claims into the request
// context. The secret must match the one used when issuing tokens.
func JWTAuth(secret string, sessions SessionChecker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				// Only HMAC-signed tokens are accepted.
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}

			sid := str(claims["sid"])
			if sid == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}
			live, err := sessions.Active(c.Request().Context(), utils.HashTokenRaw(sid))
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "session lookup failed"})
			}
			if !live {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "session revoked or expired"})
			}

			c.Set(CtxUserID, str(claims["sub"]))
			c.Set(CtxEmail, str(claims["email"]))
			c.Set(CtxRole, str(claims["role"]))
			c.Set(CtxSessionID, sid)
			return next(c)
		}
	}
}

// ActorFrom rebuilds the session actor from the context values stored by
// JWTAuth. The zero Actor means no authenticated session.
func ActorFrom(c echo.Context) service.Actor {
	return service.Actor{
		UID:   str(c.Get(CtxUserID)),
		Email: str(c.Get(CtxEmail)),
		Role:  str(c.Get(CtxRole)),
	}
}

// SessionIDFrom returns the raw session token stored by JWTAuth.
func SessionIDFrom(c echo.Context) string {
	return str(c.Get(CtxSessionID))
}

func str(v interface{}) string {
	s, _ := v.(string)
	return s
}
