package auth

import (
	"github.com/goliatone/go-errors"
	"golang.org/x/crypto/bcrypt"
)

// HashPassword will generate a password hash
func HashPassword(password string) (string, error) {
	return HashPasswordWithCost(password, passwordHashCost())
}

// HashPasswordWithCost generates a password hash with an explicit bcrypt cost
func HashPasswordWithCost(password string, cost int) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString.Clone()
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to hash password")
	}
	return string(h), nil
}

// ComparePasswordAndHash will validate the given cleartext
// password matches the hashed password
func ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials.Clone()
	}
	return nil
}

// BcryptAuthenticator is the default PasswordAuthenticator
type BcryptAuthenticator struct {
	Cost int
}

var _ PasswordAuthenticator = BcryptAuthenticator{}

// HashPassword hashes with the configured cost, or the package default
func (b BcryptAuthenticator) HashPassword(password string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = passwordHashCost()
	}
	return HashPasswordWithCost(password, cost)
}

// ComparePasswordAndHash satisfies PasswordAuthenticator
func (b BcryptAuthenticator) ComparePasswordAndHash(password, hash string) error {
	return ComparePasswordAndHash(password, hash)
}
