package models

import (
	"time"
)

// User is a registered club member or administrator.
type User struct {
	ID                 string
	Username           string // Case-sensitive, unique
	Email              string // Stored lower-cased, unique
	PasswordHash       string // Never exposed
	FullName           string
	Phone              string
	RegistrationNumber string // Shooter registration (CR)
	Club               string
	Category           string
	IsActive           bool
	IsAdmin            bool
	LastLogin          *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ProfileUpdate carries the mutable profile fields. A nil field is left untouched,
// a pointer to "" clears the field.
type ProfileUpdate struct {
	FullName           *string
	Email              *string
	Phone              *string
	RegistrationNumber *string
	Club               *string
	Category           *string
}
