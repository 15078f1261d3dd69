package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const (
	refreshTokenBytes = 32
	sessionIDBytes    = 18
)

// newOpaqueToken returns n random bytes as unpadded base64url, safe in JSON,
// headers and Redis keys.
func newOpaqueToken(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("invalid token size %d", n)
	}

	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func NewRefreshToken() (string, error) {
	return newOpaqueToken(refreshTokenBytes)
}

func NewSessionID() (string, error) {
	return newOpaqueToken(sessionIDBytes)
}
