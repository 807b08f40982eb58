//go:build race

package auth

import "golang.org/x/crypto/bcrypt"

// race builds hash with the library default cost
func passwordHashCost() int { return bcrypt.DefaultCost }
