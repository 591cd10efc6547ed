package handlers

import (
	"net/http"

	"github.com/BradenHooton/lockbox/internal/models"
	pkghttp "github.com/BradenHooton/lockbox/pkg/http"
)

// SessionServiceInterface is the read and navigation side of the session
type SessionServiceInterface interface {
	State() models.SessionState
	PrimaryAction() models.PrimaryAction
	FailedLoginAttempts() int
	NavigateTo(screen models.Screen) error
	Profile() (*models.User, error)
}

// SessionHandler exposes the session snapshot the UI shell renders from
type SessionHandler struct {
	service SessionServiceInterface
}

func NewSessionHandler(service SessionServiceInterface) *SessionHandler {
	return &SessionHandler{service: service}
}

// SessionResponse is the session snapshot plus what the login screen needs
type SessionResponse struct {
	models.SessionState
	PrimaryAction  models.PrimaryAction `json:"primaryAction"`
	FailedAttempts int                  `json:"failedAttempts"`
}

type NavigateRequest struct {
	Screen models.Screen `json:"screen"`
}

func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	pkghttp.WriteJSON(w, http.StatusOK, h.snapshot())
}

// Navigate switches the current screen
func (h *SessionHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	var req NavigateRequest
	if err := pkghttp.DecodeJSON(r, &req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := h.service.NavigateTo(req.Screen); err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, h.snapshot())
}

// GetProfile returns the current user without password material
func (h *SessionHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.Profile()
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, user.Public())
}

func (h *SessionHandler) snapshot() SessionResponse {
	state := h.service.State()
	state.CurrentUser = state.CurrentUser.Public()

	return SessionResponse{
		SessionState:   state,
		PrimaryAction:  h.service.PrimaryAction(),
		FailedAttempts: h.service.FailedLoginAttempts(),
	}
}
