package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/BradenHooton/lockbox/internal/forms"
	"github.com/BradenHooton/lockbox/internal/models"
	"github.com/BradenHooton/lockbox/internal/services"
	pkghttp "github.com/BradenHooton/lockbox/pkg/http"
)

// AuthServiceInterface is the part of the session service behind the auth endpoints
type AuthServiceInterface interface {
	Register(ctx context.Context, form *forms.RegistrationForm) (*models.RegisterResult, error)
	SubmitLogin(ctx context.Context, form *forms.LoginForm, prompt string) (*models.LoginResult, error)
	BiometricLogin(ctx context.Context, prompt string) (*models.LoginResult, error)
	Logout(ctx context.Context) error
	State() models.SessionState
}

// AuthHandler serves registration, login and logout
type AuthHandler struct {
	service AuthServiceInterface
	logger  *slog.Logger
}

func NewAuthHandler(service AuthServiceInterface, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger,
	}
}

// LoginRequest is the login screen submission. Prompt is only used once the
// primary action has switched to biometric login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Prompt   string `json:"prompt,omitempty"`
}

// BiometricLoginRequest optionally overrides the sensor prompt
type BiometricLoginRequest struct {
	Prompt string `json:"prompt,omitempty"`
}

// LoginResponse is returned on a successful login
type LoginResponse struct {
	*models.LoginResult
	User *models.User `json:"user"`
}

// LoginErrorResponse keeps the attempt bookkeeping next to the error
type LoginErrorResponse struct {
	pkghttp.ErrorResponse
	Action         models.PrimaryAction        `json:"action"`
	FailedAttempts int                         `json:"failedAttempts"`
	Biometric      *models.BiometricAuthResult `json:"biometric,omitempty"`
}

// Register handles the registration form
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var form forms.RegistrationForm
	if err := pkghttp.DecodeJSON(r, &form); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	result, err := h.service.Register(r.Context(), &form)
	if err != nil {
		h.logFailure("registration failed", err)
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, result)
}

// Login runs the login screen's primary action
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := pkghttp.DecodeJSON(r, &req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	form := &forms.LoginForm{Email: req.Email, Password: req.Password}
	result, err := h.service.SubmitLogin(r.Context(), form, req.Prompt)
	h.writeLoginResult(w, result, err)
}

// BiometricLogin runs the fingerprint login path directly
func (h *AuthHandler) BiometricLogin(w http.ResponseWriter, r *http.Request) {
	var req BiometricLoginRequest
	if err := pkghttp.DecodeJSON(r, &req); err != nil && !errors.Is(err, pkghttp.ErrEmptyBody) {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	result, err := h.service.BiometricLogin(r.Context(), req.Prompt)
	h.writeLoginResult(w, result, err)
}

func (h *AuthHandler) writeLoginResult(w http.ResponseWriter, result *models.LoginResult, err error) {
	if err != nil {
		h.logFailure("login failed", err)

		var validationErr *services.ValidationError
		if result == nil || errors.As(err, &validationErr) {
			writeServiceError(w, err)
			return
		}

		e := classifyError(err)
		message := e.message
		// The sensor path carries its own message, e.g. the remaining lockout minutes
		if result.Biometric != nil && result.Biometric.Error != "" && errors.Is(err, models.ErrLockedOut) {
			message = result.Biometric.Error
		}

		pkghttp.WriteJSON(w, e.status, LoginErrorResponse{
			ErrorResponse:  pkghttp.ErrorResponse{Error: e.code, Message: message},
			Action:         result.Action,
			FailedAttempts: result.FailedAttempts,
			Biometric:      result.Biometric,
		})
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, LoginResponse{
		LoginResult: result,
		User:        h.service.State().CurrentUser.Public(),
	})
}

// Logout clears the persisted login
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context()); err != nil {
		h.logFailure("logout failed", err)
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) logFailure(msg string, err error) {
	if h.logger == nil {
		return
	}
	h.logger.Info(msg, slog.Any("error", err))
}
