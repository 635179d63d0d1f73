package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// NewOpaqueToken returns byteLen random bytes, hex encoded.
func NewOpaqueToken(byteLen int) (string, error) {
	if byteLen <= 0 {
		return "", fmt.Errorf("invalid token size")
	}
	b := make([]byte, byteLen)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func NewRefreshToken() (string, error) {
	return NewOpaqueToken(32)
}

func NewSessionID() (string, error) {
	return NewOpaqueToken(20)
}

func newResetToken() (string, error) {
	return NewOpaqueToken(24)
}

func newOAuthState() (string, error) {
	return NewOpaqueToken(16)
}
