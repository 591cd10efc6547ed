package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrBadRequest     = errors.New("bad request")
	ErrValidation     = errors.New("validation failed")
	ErrInternalServer = errors.New("internal server error")

	// Storage and platform errors
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrSensorUnavailable  = errors.New("biometric sensor unavailable")
	ErrKeyCreationFailed  = errors.New("biometric key creation failed")
	ErrPresenceRequired   = errors.New("user presence required")

	// Authentication errors
	ErrNoRegisteredUser   = errors.New("no registered user found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrTooManyAttempts    = errors.New("too many failed attempts")
	ErrLockedOut          = errors.New("account is temporarily locked")
	ErrBiometricCancelled = errors.New("biometric login was cancelled")
	ErrBiometricFailed    = errors.New("biometric authentication failed")
	ErrNotLoggedIn        = errors.New("not logged in")
)
