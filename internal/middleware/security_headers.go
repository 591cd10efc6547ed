package middleware

import "net/http"

// SecurityHeadersConfig holds security headers configuration
type SecurityHeadersConfig struct {
	Env string
}

// SecurityHeaders returns a middleware that adds security headers to all responses.
// The adapter only serves JSON, so the content policy blocks every resource type.
func SecurityHeaders(config SecurityHeadersConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("Referrer-Policy", "no-referrer")
			w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
			w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")

			// Session and profile responses carry account data
			w.Header().Set("Cache-Control", "no-store")

			if config.Env == "production" {
				w.Header().Set("Cross-Origin-Resource-Policy", "same-origin")
			} else {
				// The shell's dev server runs on a different port
				w.Header().Set("Cross-Origin-Resource-Policy", "same-site")
			}

			next.ServeHTTP(w, r)
		})
	}
}
