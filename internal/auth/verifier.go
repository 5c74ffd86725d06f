package auth

import (
	"crypto/subtle"
	"fmt"

	"github.com/carte-app/api/internal/database"
	"github.com/carte-app/api/internal/enum"
	"golang.org/x/crypto/bcrypt"
)

// AdminVerifier decides whether a candidate password unlocks a menu's admin
// views, and prepares new passwords for storage. Callers never compare
// passwords themselves.
type AdminVerifier interface {
	VerifyAdmin(menu database.Menu, candidate string) bool
	HashSecret(secret string) (string, error)
}

// NewVerifier returns the verifier for a configured scheme.
func NewVerifier(scheme string) (AdminVerifier, error) {
	switch scheme {
	case enum.PasswordSchemePlaintext, "":
		return PlaintextVerifier{}, nil
	case enum.PasswordSchemeBcrypt:
		return BcryptVerifier{Cost: bcrypt.DefaultCost}, nil
	}
	return nil, fmt.Errorf("unknown password scheme %q", scheme)
}

// PlaintextVerifier stores the password as given and compares for equality.
type PlaintextVerifier struct{}

func (PlaintextVerifier) VerifyAdmin(menu database.Menu, candidate string) bool {
	return subtle.ConstantTimeCompare([]byte(menu.AdminPassword), []byte(candidate)) == 1
}

func (PlaintextVerifier) HashSecret(secret string) (string, error) {
	return secret, nil
}

// BcryptVerifier stores bcrypt hashes.
type BcryptVerifier struct {
	Cost int
}

func (v BcryptVerifier) VerifyAdmin(menu database.Menu, candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(menu.AdminPassword), []byte(candidate)) == nil
}

func (v BcryptVerifier) HashSecret(secret string) (string, error) {
	cost := v.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
