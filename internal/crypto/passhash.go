// Package crypto implements server-side password hashing and verification.
package crypto

import (
	"crypto/rand"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost balances security and login latency.
const bcryptCost = 12

// RandBytes returns n cryptographically secure random bytes.
func RandBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// HashPassword returns a salted bcrypt hash of the plaintext. Each call
// produces a different output; hashes must never be compared directly.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether plaintext matches the stored hash.
// bcrypt's comparison is constant-time over the digest.
func VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
