package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/BradenHooton/lockbox/internal/models"
	pkghttp "github.com/BradenHooton/lockbox/pkg/http"
)

// BiometricServiceInterface is the biometric setup surface
type BiometricServiceInterface interface {
	Status(ctx context.Context) models.BiometricStatus
	SetBiometricEnabled(ctx context.Context, enabled bool) error
	DeleteKeys(ctx context.Context) error
	LockoutStatus(ctx context.Context) models.LockoutStatus
}

// BiometricHandler serves the biometric setup view
type BiometricHandler struct {
	service BiometricServiceInterface
	logger  *slog.Logger
}

func NewBiometricHandler(service BiometricServiceInterface, logger *slog.Logger) *BiometricHandler {
	return &BiometricHandler{
		service: service,
		logger:  logger,
	}
}

// BiometricStatusResponse is the setup toggle state plus the current lockout
type BiometricStatusResponse struct {
	models.BiometricStatus
	Lockout models.LockoutStatus `json:"lockout"`
	Message string               `json:"message,omitempty"`
}

type SetBiometricRequest struct {
	Enabled *bool `json:"enabled"`
}

func (h *BiometricHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	pkghttp.WriteJSON(w, http.StatusOK, h.status(r.Context(), ""))
}

// SetEnabled flips the biometric toggle. Enabling creates fresh key material.
func (h *BiometricHandler) SetEnabled(w http.ResponseWriter, r *http.Request) {
	var req SetBiometricRequest
	if err := pkghttp.DecodeJSON(r, &req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if req.Enabled == nil {
		pkghttp.WriteBadRequest(w, "enabled is required")
		return
	}

	if err := h.service.SetBiometricEnabled(r.Context(), *req.Enabled); err != nil {
		h.logger.Warn("failed to update biometric setting", slog.Bool("enabled", *req.Enabled), slog.Any("error", err))
		e := classifyError(err)
		if e.status == http.StatusInternalServerError {
			e.message = "Failed to update biometric settings"
			if *req.Enabled {
				e.message = "Failed to enable biometric authentication"
			}
		}
		pkghttp.WriteError(w, e.status, e.code, e.message)
		return
	}

	message := "Biometric authentication disabled"
	if *req.Enabled {
		message = "Biometric authentication enabled successfully!"
	}
	pkghttp.WriteJSON(w, http.StatusOK, h.status(r.Context(), message))
}

// DeleteKeys removes the enrolled key material
func (h *BiometricHandler) DeleteKeys(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteKeys(r.Context()); err != nil {
		h.logger.Warn("failed to delete biometric keys", slog.Any("error", err))
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *BiometricHandler) status(ctx context.Context, message string) BiometricStatusResponse {
	return BiometricStatusResponse{
		BiometricStatus: h.service.Status(ctx),
		Lockout:         h.service.LockoutStatus(ctx),
		Message:         message,
	}
}
