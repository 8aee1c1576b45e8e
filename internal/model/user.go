// Package model defines the persistent entities shared by store and services.
package model

import "time"

// User is a registered account. Username and email are unique and
// immutable after creation; PasswordHash is a bcrypt digest, never the
// plaintext.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
