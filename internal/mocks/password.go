package mocks

import (
	"errors"

	"github.com/avelkov/cardvault/internal/service/auth"
)

// MockPasswordHasher implements auth.PasswordHasher for testing. The default
// behavior is a reversible marker prefix so tests never pay for bcrypt.
type MockPasswordHasher struct {
	HashFn func(plaintext string) (string, error)
	Err    error
}

// Ensure MockPasswordHasher implements auth.PasswordHasher
var _ auth.PasswordHasher = (*MockPasswordHasher)(nil)

// Hash implements the auth.PasswordHasher interface
func (m *MockPasswordHasher) Hash(plaintext string) (string, error) {
	if m.HashFn != nil {
		return m.HashFn(plaintext)
	}
	if m.Err != nil {
		return "", m.Err
	}
	return "hashed:" + plaintext, nil
}

// MockPasswordVerifier implements auth.PasswordVerifier for testing. The
// default behavior matches MockPasswordHasher's marker prefix.
type MockPasswordVerifier struct {
	CompareFn func(hashedPassword, password string) error
	Err       error
}

// Ensure MockPasswordVerifier implements auth.PasswordVerifier
var _ auth.PasswordVerifier = (*MockPasswordVerifier)(nil)

// Compare implements the auth.PasswordVerifier interface
func (m *MockPasswordVerifier) Compare(hashedPassword, password string) error {
	if m.CompareFn != nil {
		return m.CompareFn(hashedPassword, password)
	}
	if m.Err != nil {
		return m.Err
	}
	if hashedPassword != "hashed:"+password {
		return errors.New("password mismatch")
	}
	return nil
}
