package cryptox

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// HashCost is the bcrypt work factor used for all stored password hashes.
// Changing it only affects newly written hashes; verification reads the cost
// embedded in each hash.
const HashCost = 12

// HashPassword hashes a plaintext password with bcrypt at HashCost.
// The salt is generated by bcrypt and embedded in the returned string.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), HashCost)
	if err != nil {
		return "", fmt.Errorf("cryptox: hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword compares a plaintext password against a bcrypt hash.
// Returns nil on match.
func VerifyPassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// GeneratePassword returns a random password for accounts that are created
// without one (federated signups). It is never shown to anyone; the account
// stays locked to the federated login until a password is set.
func GeneratePassword() (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	const length = 24

	password := make([]byte, length)
	for i := range password {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", fmt.Errorf("cryptox: generate password: %w", err)
		}
		password[i] = charset[n.Int64()]
	}
	return string(password), nil
}
