package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher decides how passwords sit in the user table.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Matches(stored, password string) bool
}

// Plaintext stores passwords as typed. It exists for demo parity only.
type Plaintext struct{}

func (Plaintext) Hash(password string) (string, error) { return password, nil }

func (Plaintext) Matches(stored, password string) bool { return stored == password }

type Bcrypt struct {
	Cost int
}

func (b Bcrypt) Hash(password string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (Bcrypt) Matches(stored, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
}

// HasherFor maps the PASSWORD_HASHING setting to an implementation.
func HasherFor(name string) PasswordHasher {
	if name == "bcrypt" {
		return Bcrypt{}
	}
	return Plaintext{}
}
