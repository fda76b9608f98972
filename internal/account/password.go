package account

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

const (
	saltBytes  = 16
	tokenBytes = 16
)

// randomToken returns n bytes of crypto/rand entropy hex encoded.
func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate random token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// NewSalt returns a fresh per-account salt.
func NewSalt() (string, error) {
	return randomToken(saltBytes)
}

// NewToken returns a fresh opaque bearer token.
func NewToken() (string, error) {
	return randomToken(tokenBytes)
}

// HashPassword returns base64(SHA-256(password + salt)).
func HashPassword(password, salt string) string {
	sum := sha256.Sum256([]byte(password + salt))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// VerifyPassword recomputes the salted hash and compares it in constant time.
func VerifyPassword(password, salt, hash string) bool {
	computed := HashPassword(password, salt)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(hash)) == 1
}
