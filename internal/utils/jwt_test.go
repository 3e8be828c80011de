package utils

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccessTokenClaims(t *testing.T) {
	at, err := NewAccessToken("secret", "uid-1", "a@nana.academy", "admin", "sid-1", 15)
	require.NoError(t, err)

	tok, err := jwt.Parse(at.Token, func(tok *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	require.NoError(t, err)
	require.True(t, tok.Valid)

	claims := tok.Claims.(jwt.MapClaims)
	assert.Equal(t, "uid-1", claims["sub"])
	assert.Equal(t, "a@nana.academy", claims["email"])
	assert.Equal(t, "admin", claims["role"])
	assert.Equal(t, "sid-1", claims["sid"])
}

func TestHashTokenRawIsStable(t *testing.T) {
	tok, err := NewSessionToken(15)
	require.NoError(t, err)
	assert.Equal(t, HashTokenRaw(tok.Raw), HashTokenRaw(tok.Raw))
	assert.NotEqual(t, tok.Raw, HashTokenRaw(tok.Raw))
	assert.Len(t, HashTokenRaw(tok.Raw), 64)
}
