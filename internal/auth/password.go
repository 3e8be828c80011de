package auth

import (
	"crypto/rand"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// passwordAlphabet is the fixed alphabet for generated temporary
// passwords: upper, lower, digits and a small symbol set.
const passwordAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789!@#$%^&*"

// GeneratedPasswordLength is the length of temporary passwords handed to
// admins when provisioning a login without an explicit password.
const GeneratedPasswordLength = 8

// GeneratePassword returns a temporary password of GeneratedPasswordLength
// characters, each drawn uniformly from passwordAlphabet using crypto/rand.
// The plaintext is returned to the caller exactly once so the admin can
// pass it on out of band; it is never persisted.
func GeneratePassword() (string, error) {
	max := big.NewInt(int64(len(passwordAlphabet)))
	out := make([]byte, GeneratedPasswordLength)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = passwordAlphabet[n.Int64()]
	}
	return string(out), nil
}

// hashPassword bcrypt-hashes a plaintext at the service's configured cost.
func hashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// verifyPassword reports whether the plaintext matches the stored hash.
// The comparison is constant time inside bcrypt.
func verifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
