package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned for a wrong or empty secret.
	ErrInvalidCredentials   = errors.New("auth: invalid credentials")
	ErrPasswordHashRequired = errors.New("auth: password hash required")
	ErrPasswordHashInvalid  = errors.New("auth: password hash is not a bcrypt hash")
	ErrPasswordEmpty        = errors.New("auth: password must not be empty")
)

// PasswordVerifier checks secrets against a single bcrypt hash.
type PasswordVerifier struct {
	hash []byte
}

// NewPasswordVerifier validates hash and returns a verifier for it.
func NewPasswordVerifier(hash string) (*PasswordVerifier, error) {
	hash = strings.TrimSpace(hash)
	if hash == "" {
		return nil, ErrPasswordHashRequired
	}
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPasswordHashInvalid, err)
	}
	return &PasswordVerifier{hash: []byte(hash)}, nil
}

// Verify implements interfaces.CredentialVerifier.
func (v *PasswordVerifier) Verify(_ context.Context, secret string) error {
	if v == nil || secret == "" {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(v.hash, []byte(secret)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// HashPassword returns the bcrypt hash of password. A cost of zero selects
// bcrypt.DefaultCost.
func HashPassword(password string, cost int) (string, error) {
	if password == "" {
		return "", ErrPasswordEmpty
	}
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("auth: hash password: %w", err)
	}
	return string(hash), nil
}
