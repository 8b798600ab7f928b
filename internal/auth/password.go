package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is fixed; changing it only affects newly hashed passwords.
const bcryptCost = 12

var ErrPasswordMismatch = errors.New("password mismatch")

// HashPassword returns a salted bcrypt hash of the plaintext.
// The plaintext must never be persisted or logged.
func HashPassword(plain string) (string, error) {
	if plain == "" {
		return "", errors.New("password is required")
	}
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// CheckPassword compares a stored hash against a candidate plaintext.
func CheckPassword(hash, plain string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)); err != nil {
		return ErrPasswordMismatch
	}
	return nil
}
