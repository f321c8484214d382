package domain

import (
	"strings"

	"github.com/google/uuid"
)

// User is the identity resolved by the calling context. The engine never
// fetches users itself; it only snapshots contact fields onto new orders.
type User struct {
	ID                  uuid.UUID
	Email               string
	EmailVerified       bool
	PhoneNumber         string
	PhoneNumberVerified bool
	FirstName           string
	LastName            string
	Name                string
}

// ContactEmail returns the user's email only when it has been verified.
func (u *User) ContactEmail() string {
	if u.EmailVerified {
		return u.Email
	}
	return ""
}

// ContactPhone returns the user's phone number only when it has been verified.
func (u *User) ContactPhone() string {
	if u.PhoneNumberVerified {
		return u.PhoneNumber
	}
	return ""
}

// FullName prefers first+last name and falls back to the display name.
func (u *User) FullName() string {
	full := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if full != "" {
		return full
	}
	return u.Name
}
