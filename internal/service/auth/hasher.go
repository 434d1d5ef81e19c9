// Package auth keeps user credentials safe: passwords are stored and compared as hashes only.
package auth

import (
	"errors"
)

var ErrPasswordMismatch = errors.New("password does not match")

// Interface to create or compare user password hashes
type PasswordHasher interface {
	// Generate Hash from password
	Hash(password string) (string, error)

	// Compare known hashedPassword and user provided password
	// Must return ErrPasswordMismatch if they do not match
	// Must be protected against timing attacks
	Compare(hashedPassword string, password string) error
}

// Hasher used when nothing else is configured
var DefaultHasher PasswordHasher = BcryptHasher{}
