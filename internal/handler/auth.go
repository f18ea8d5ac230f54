package handler

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Gate checks the shared admin password that guards notice writes.
// The password is hashed once at startup; plaintext is not retained.
type Gate struct {
	hash []byte
}

// NewGate hashes password. An empty password yields a gate that rejects
// everything.
func NewGate(password string) (*Gate, error) {
	if password == "" {
		return &Gate{}, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	return &Gate{hash: hash}, nil
}

// Enabled reports whether a password is configured.
func (g *Gate) Enabled() bool {
	return g != nil && len(g.hash) > 0
}

func (g *Gate) Check(password string) bool {
	if !g.Enabled() || password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword(g.hash, []byte(password)) == nil
}
