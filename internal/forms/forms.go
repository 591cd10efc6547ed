// Package forms holds the typed screen forms and their validation rules.
package forms

import "github.com/BradenHooton/lockbox/internal/models"

// RegistrationForm is the payload of the registration screen
type RegistrationForm struct {
	FirstName       string `json:"firstName" validate:"required"`
	LastName        string `json:"lastName" validate:"required"`
	Email           string `json:"email" validate:"required,gmail"`
	PhoneNumber     string `json:"phoneNumber" validate:"required,phone10"`
	Password        string `json:"password" validate:"required,min=8,maxbytes=72"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// LoginForm is the payload of the login screen
type LoginForm struct {
	Email    string `json:"email" validate:"required,gmail"`
	Password string `json:"password" validate:"required,min=8"`
}

// User converts a valid registration into the stored record.
// The password is left as entered; callers hash it before persisting.
func (f *RegistrationForm) User() *models.User {
	return &models.User{
		Email:       f.Email,
		FirstName:   f.FirstName,
		LastName:    f.LastName,
		PhoneNumber: f.PhoneNumber,
		Password:    f.Password,
	}
}
