package handlers

import (
	"net/http"

	"github.com/BradenHooton/lockbox/internal/models"
	"github.com/BradenHooton/lockbox/internal/services"
	pkghttp "github.com/BradenHooton/lockbox/pkg/http"
)

type ThemeServiceInterface interface {
	View() services.ThemeView
	Set(mode models.ThemeMode) error
	Toggle() models.ThemeMode
}

type ThemeHandler struct {
	service ThemeServiceInterface
}

func NewThemeHandler(service ThemeServiceInterface) *ThemeHandler {
	return &ThemeHandler{service: service}
}

// UpdateThemeRequest either toggles the mode or sets it explicitly
type UpdateThemeRequest struct {
	Mode   models.ThemeMode `json:"mode,omitempty"`
	Toggle bool             `json:"toggle,omitempty"`
}

func (h *ThemeHandler) GetTheme(w http.ResponseWriter, r *http.Request) {
	pkghttp.WriteJSON(w, http.StatusOK, h.service.View())
}

func (h *ThemeHandler) UpdateTheme(w http.ResponseWriter, r *http.Request) {
	var req UpdateThemeRequest
	if err := pkghttp.DecodeJSON(r, &req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	switch {
	case req.Toggle:
		h.service.Toggle()
	case req.Mode != "":
		if err := h.service.Set(req.Mode); err != nil {
			writeServiceError(w, err)
			return
		}
	default:
		pkghttp.WriteBadRequest(w, "mode or toggle is required")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, h.service.View())
}
