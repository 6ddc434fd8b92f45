package identikit

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword produces a salted one-way digest of plaintext. An empty
// plaintext yields an empty digest - callers must treat that as "no local
// credential" (federated-only accounts have no password at all).
func HashPassword(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(digest), nil
}

// VerifyPassword reports whether plaintext matches the stored digest.
// The comparison is constant time, and a malformed digest fails closed.
func VerifyPassword(plaintext, digest string) bool {
	if plaintext == "" || digest == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
