package routes

import (
	"github.com/BradenHooton/lockbox/internal/handlers"
	"github.com/BradenHooton/lockbox/internal/middleware"
	"github.com/go-chi/chi/v5"
)

// Handlers groups everything the view adapter serves
type Handlers struct {
	Session   *handlers.SessionHandler
	Auth      *handlers.AuthHandler
	Biometric *handlers.BiometricHandler
	Theme     *handlers.ThemeHandler
	Health    *handlers.HealthHandler
}

// RegisterRoutes registers all application routes
func RegisterRoutes(router chi.Router, h Handlers, rateLimitConfig middleware.RateLimitConfig) {
	router.Get("/health", h.Health.Health)

	router.Get("/session", h.Session.GetSession)
	router.Post("/session/navigate", h.Session.Navigate)
	router.Get("/profile", h.Session.GetProfile)

	// Credential endpoints are rate limited per client
	router.Route("/auth", func(r chi.Router) {
		r.Use(middleware.RateLimitByIP(rateLimitConfig))
		r.Post("/register", h.Auth.Register)
		r.Post("/login", h.Auth.Login)
		r.Post("/biometric", h.Auth.BiometricLogin)
		r.Post("/logout", h.Auth.Logout)
	})

	router.Get("/biometrics", h.Biometric.GetStatus)
	router.Put("/biometrics", h.Biometric.SetEnabled)
	router.Delete("/biometrics/keys", h.Biometric.DeleteKeys)

	router.Get("/theme", h.Theme.GetTheme)
	router.Put("/theme", h.Theme.UpdateTheme)
}
