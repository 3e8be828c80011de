package utils // package utils provides helpers for token creation and hashing

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessToken represents a signed JWT access token along with its expiry.
// Access tokens are short-lived and sent in the Authorization header when
// calling protected endpoints.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// SessionToken is the opaque token backing a server-side session row. The
// Raw value is embedded in the JWT as the "sid" claim; only its SHA-256
// hash is stored so that a leaked database cannot be replayed.
type SessionToken struct {
	Raw string
	Exp time.Time
}

// NewAccessToken builds and signs an HS256 JWT for an identity. Claims:
// subject (sub) carries the identity UID, email and role carry the login
// address and resolved application role, sid ties the token to its
// revocable session row, exp/iat are standard.
func NewAccessToken(secret, uid, email, role, sid string, ttlMin int) (AccessToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":   uid,
		"email": email,
		"role":  role,
		"sid":   sid,
		"exp":   exp.Unix(),
		"iat":   time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// NewSessionToken returns a cryptographically secure random token and its
// expiration time. The ttl mirrors the access token TTL so a revoked
// session and an expired JWT age out together.
func NewSessionToken(ttlMin int) (SessionToken, error) {
	raw, err := randomHex(24) // 24 bytes -> 48 hex chars
	if err != nil {
		return SessionToken{}, err
	}
	return SessionToken{
		Raw: raw,
		Exp: time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute),
	}, nil
}

// NewResetToken returns a random token for a password reset link and its
// expiration time.
func NewResetToken(ttl time.Duration) (SessionToken, error) {
	raw, err := randomHex(24)
	if err != nil {
		return SessionToken{}, err
	}
	return SessionToken{Raw: raw, Exp: time.Now().UTC().Add(ttl)}, nil
}

// HashTokenRaw returns the SHA-256 hash of a raw token as a hex string.
// Session and reset tokens are stored hashed.
func HashTokenRaw(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// randomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
