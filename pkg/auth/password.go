package auth

import (
	"crypto/rand"
	"fmt"
	"regexp"
	"sync"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

const (
	BcryptCost       = 12
	MinPasswordLen   = 6
	MaxPasswordBytes = 72 // bcrypt input limit
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// PasswordValidationError reports why a password was rejected. The message is
// shown to the user as-is.
type PasswordValidationError struct {
	Reason string
}

func (e *PasswordValidationError) Error() string {
	return e.Reason
}

func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

func ComparePassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// CheckPassword reports whether password matches the stored hash. A malformed
// or empty hash never matches.
func CheckPassword(hashedPassword, password string) bool {
	if hashedPassword == "" {
		return false
	}
	return ComparePassword(hashedPassword, password) == nil
}

var (
	dummyOnce sync.Once
	dummy     string
)

// DummyHash returns a bcrypt hash at BcryptCost of random bytes. Comparing a
// password against it costs the same as checking a real account and never
// matches.
func DummyHash() string {
	dummyOnce.Do(func() {
		secret := make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			panic(fmt.Sprintf("failed to read random bytes: %v", err))
		}
		h, err := bcrypt.GenerateFromPassword(secret, BcryptCost)
		if err != nil {
			panic(fmt.Sprintf("failed to build dummy hash: %v", err))
		}
		dummy = string(h)
	})
	return dummy
}

// ValidatePassword enforces the club password policy: at least 6 characters,
// at least one letter and at least one digit.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLen {
		return &PasswordValidationError{Reason: fmt.Sprintf("password must be at least %d characters", MinPasswordLen)}
	}

	hasLetter := false
	hasDigit := false
	for _, r := range password {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			hasLetter = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}

	if !hasLetter {
		return &PasswordValidationError{Reason: "password must contain at least one letter"}
	}
	if !hasDigit {
		return &PasswordValidationError{Reason: "password must contain at least one digit"}
	}
	if len(password) > MaxPasswordBytes {
		return &PasswordValidationError{Reason: fmt.Sprintf("password must be at most %d bytes", MaxPasswordBytes)}
	}

	return nil
}

// ValidateEmail reports whether email looks like local-part@domain.tld.
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}
