package handlers

import (
	"errors"
	"net/http"

	"github.com/BradenHooton/lockbox/internal/forms"
	"github.com/BradenHooton/lockbox/internal/models"
	"github.com/BradenHooton/lockbox/internal/services"
	pkghttp "github.com/BradenHooton/lockbox/pkg/http"
)

// apiError is the HTTP rendering of a service error
type apiError struct {
	status  int
	code    string
	message string
}

// classifyError maps service sentinels to status codes and user-facing messages
func classifyError(err error) apiError {
	switch {
	case errors.Is(err, models.ErrValidation):
		return apiError{http.StatusBadRequest, "validation_failed", "One or more fields are invalid"}
	case errors.Is(err, models.ErrBadRequest):
		return apiError{http.StatusBadRequest, "bad_request", "Invalid request"}
	case errors.Is(err, models.ErrNoRegisteredUser):
		return apiError{http.StatusNotFound, "no_registered_user", "No registered user found. Please register first."}
	case errors.Is(err, models.ErrInvalidCredentials):
		return apiError{http.StatusUnauthorized, "invalid_credentials", "Invalid email or password. Please try again."}
	case errors.Is(err, models.ErrTooManyAttempts):
		return apiError{http.StatusTooManyRequests, "too_many_attempts", "Too many failed attempts. Please try again later."}
	case errors.Is(err, models.ErrLockedOut):
		return apiError{http.StatusTooManyRequests, "locked_out", "Please try again later."}
	case errors.Is(err, models.ErrBiometricCancelled):
		return apiError{http.StatusUnauthorized, "biometric_cancelled", "Fingerprint login was cancelled."}
	case errors.Is(err, models.ErrBiometricFailed), errors.Is(err, models.ErrPresenceRequired):
		return apiError{http.StatusUnauthorized, "biometric_failed", "Authentication failed"}
	case errors.Is(err, models.ErrNotLoggedIn):
		return apiError{http.StatusUnauthorized, "unauthorized", "Not logged in"}
	case errors.Is(err, models.ErrKeyCreationFailed):
		return apiError{http.StatusInternalServerError, "key_creation_failed", "Failed to enable biometric authentication"}
	case errors.Is(err, models.ErrSensorUnavailable):
		return apiError{http.StatusServiceUnavailable, "sensor_unavailable", "Biometric sensor unavailable"}
	case errors.Is(err, models.ErrStorageUnavailable):
		return apiError{http.StatusServiceUnavailable, "unavailable", "Storage unavailable"}
	default:
		return apiError{http.StatusInternalServerError, "internal_error", "Something went wrong. Please try again."}
	}
}

// writeServiceError writes err as a JSON error body; validation errors list their fields
func writeServiceError(w http.ResponseWriter, err error) {
	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		pkghttp.WriteValidationErrors(w, toFieldErrors(validationErr.Fields))
		return
	}

	e := classifyError(err)
	pkghttp.WriteError(w, e.status, e.code, e.message)
}

func toFieldErrors(fields []forms.FieldError) []pkghttp.FieldError {
	out := make([]pkghttp.FieldError, 0, len(fields))
	for _, f := range fields {
		out = append(out, pkghttp.FieldError{Field: f.Field, Message: f.Message})
	}
	return out
}
