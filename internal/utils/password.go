package utils

import "golang.org/x/crypto/bcrypt"

// PasswordPolicy decides how passwords are stored and compared. With hashing
// off the stored value is the password itself.
type PasswordPolicy struct {
	hash bool
	cost int
}

func NewPasswordPolicy(hash bool) PasswordPolicy {
	return PasswordPolicy{hash: hash, cost: bcrypt.DefaultCost}
}

// Hash returns the value to persist for password.
func (p PasswordPolicy) Hash(password string) (string, error) {
	if !p.hash {
		return password, nil
	}
	return HashPassword(password, p.cost)
}

// Matches reports whether password is the one that produced stored.
func (p PasswordPolicy) Matches(password, stored string) bool {
	if !p.hash {
		return password == stored
	}
	return CheckPasswordHash(password, stored)
}

// HashPassword hashes a given password using bcrypt.
func HashPassword(password string, cost int) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(bytes), err
}

// CheckPasswordHash compares a plain password with its hashed version.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
