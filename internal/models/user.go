package models

import "strings"

// User is the single locally stored account. Field names match the persisted JSON record.
type User struct {
	Email           string `json:"email"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	PhoneNumber     string `json:"phoneNumber,omitempty"`
	Password        string `json:"password"` // bcrypt hash of the trimmed password
	ConfirmPassword string `json:"confirmPassword,omitempty"`
	LoginTime       string `json:"loginTime,omitempty"` // RFC 3339, stamped on every login
}

// NormalizedEmail returns the email in the form used for credential matching
func (u *User) NormalizedEmail() string {
	return NormalizeEmail(u.Email)
}

// NormalizeEmail trims and lowercases an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Clone returns a copy that callers may mutate freely
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// Public returns a copy without password material, for views
func (u *User) Public() *User {
	c := u.Clone()
	if c != nil {
		c.Password = ""
		c.ConfirmPassword = ""
	}
	return c
}
