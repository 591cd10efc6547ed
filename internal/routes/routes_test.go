package routes_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BradenHooton/lockbox/internal/auth"
	"github.com/BradenHooton/lockbox/internal/handlers"
	"github.com/BradenHooton/lockbox/internal/middleware"
	"github.com/BradenHooton/lockbox/internal/models"
	"github.com/BradenHooton/lockbox/internal/repositories"
	"github.com/BradenHooton/lockbox/internal/routes"
	"github.com/BradenHooton/lockbox/internal/services"
	pkgauth "github.com/BradenHooton/lockbox/pkg/auth"
	pkglogger "github.com/BradenHooton/lockbox/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type app struct {
	server *httptest.Server
	sensor *auth.SoftwareSensor
}

func newApp(t *testing.T) *app {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	audit := pkglogger.NewAuditLogger(logger)
	kv := repositories.NewMemoryStore()

	store := services.NewCredentialStore(kv, logger)
	lockout := services.NewLockoutService(store, logger)
	sensor := auth.NewSoftwareSensor(auth.SimulatorApprove, models.BiometryTouchID)
	secure, err := auth.NewSealedItemStore(kv, make([]byte, 32))
	require.NoError(t, err)

	biometric := services.NewBiometricService(sensor, store, secure, lockout, logger, audit)

	session := services.NewSessionService(store, biometric, secure, pkgauth.NewHasher(4),
		auth.NewTimingDelay(auth.TimingConfig{}),
		services.SessionConfig{RegisterRedirectDelay: 10 * time.Millisecond},
		logger, audit)
	t.Cleanup(session.Close)
	session.Restore(t.Context())

	router := chi.NewRouter()
	routes.RegisterRoutes(router, routes.Handlers{
		Session:   handlers.NewSessionHandler(session),
		Auth:      handlers.NewAuthHandler(session, logger),
		Biometric: handlers.NewBiometricHandler(biometric, logger),
		Theme:     handlers.NewThemeHandler(services.NewThemeService(models.ThemeLight)),
		Health:    handlers.NewHealthHandler(store, "memory", logger),
	}, middleware.RateLimitConfig{RequestsPerMinute: 100})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &app{server: server, sensor: sensor}
}

func (a *app) do(t *testing.T, method, path string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, a.server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]interface{}
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(data) > 0 {
		require.NoError(t, json.Unmarshal(data, &decoded))
	}
	return resp, decoded
}

var registration = map[string]string{
	"firstName":       "Ada",
	"lastName":        "Lovelace",
	"email":           "a@gmail.com",
	"phoneNumber":     "5551234567",
	"password":        "password1",
	"confirmPassword": "password1",
}

func TestRegisterLoginProfileLogout(t *testing.T) {
	a := newApp(t)

	resp, _ := a.do(t, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = a.do(t, "GET", "/profile", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = a.do(t, "POST", "/session/navigate", map[string]string{"screen": "register"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := a.do(t, "POST", "/auth/register", registration)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, true, body["success"])

	// The registration screen hands over to login after the delay
	assert.Eventually(t, func() bool {
		_, session := a.do(t, "GET", "/session", nil)
		return session["currentScreen"] == "login"
	}, time.Second, 10*time.Millisecond)

	resp, body = a.do(t, "POST", "/auth/login", map[string]string{"email": "a@gmail.com", "password": "password2"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, float64(1), body["failedAttempts"])

	resp, body = a.do(t, "POST", "/auth/login", map[string]string{"email": "a@gmail.com", "password": "password1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "a@gmail.com", user["email"])
	assert.Empty(t, user["password"])

	_, session := a.do(t, "GET", "/session", nil)
	assert.Equal(t, true, session["isLoggedIn"])
	assert.Equal(t, "profile", session["currentScreen"])

	resp, body = a.do(t, "GET", "/profile", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Ada", body["firstName"])

	resp, _ = a.do(t, "POST", "/auth/logout", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	_, session = a.do(t, "GET", "/session", nil)
	assert.Equal(t, false, session["isLoggedIn"])
	assert.Equal(t, "login", session["currentScreen"])
}

func TestFingerprintFallbackAfterFiveFailures(t *testing.T) {
	a := newApp(t)

	resp, body := a.do(t, "PUT", "/biometrics", map[string]bool{"enabled": true})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["enabled"])

	resp, _ = a.do(t, "POST", "/auth/register", registration)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	wrong := map[string]string{"email": "a@gmail.com", "password": "wrongpass1"}
	for i := 1; i <= 4; i++ {
		resp, _ = a.do(t, "POST", "/auth/login", wrong)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}

	resp, body = a.do(t, "POST", "/auth/login", wrong)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "too_many_attempts", body["error"])

	_, session := a.do(t, "GET", "/session", nil)
	assert.Equal(t, "biometric_login", session["primaryAction"])

	// The sensor refuses once, then the user presents a finger
	a.sensor.SetMode(auth.SimulatorDeny)
	resp, body = a.do(t, "POST", "/auth/login", map[string]string{"prompt": "Login with Fingerprint"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "biometric_failed", body["error"])

	a.sensor.SetMode(auth.SimulatorApprove)
	resp, body = a.do(t, "POST", "/auth/biometric", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), body["failedAttempts"])

	_, session = a.do(t, "GET", "/session", nil)
	assert.Equal(t, true, session["isLoggedIn"])
	assert.Equal(t, "submit_form", session["primaryAction"])

	_, status := a.do(t, "GET", "/biometrics", nil)
	lockout := status["lockout"].(map[string]interface{})
	assert.Equal(t, false, lockout["locked"])
}

func TestRegisterValidationOverHTTP(t *testing.T) {
	a := newApp(t)

	invalid := map[string]string{
		"firstName":       "Ada",
		"lastName":        "Lovelace",
		"email":           "a@yahoo.com",
		"phoneNumber":     "555",
		"password":        "password1",
		"confirmPassword": "password1",
	}

	resp, body := a.do(t, "POST", "/auth/register", invalid)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	fields := body["fields"].([]interface{})
	require.Len(t, fields, 2)
	assert.Equal(t, "email", fields[0].(map[string]interface{})["field"])
	assert.Equal(t, "phoneNumber", fields[1].(map[string]interface{})["field"])
}

func TestThemeRoutes(t *testing.T) {
	a := newApp(t)

	resp, body := a.do(t, "PUT", "/theme", map[string]bool{"toggle": true})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "dark", body["mode"])

	_, body = a.do(t, "GET", "/theme", nil)
	assert.Equal(t, "dark", body["mode"])
}

func TestBiometricKeysRoute(t *testing.T) {
	a := newApp(t)

	resp, _ := a.do(t, "PUT", "/biometrics", map[string]bool{"enabled": true})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = a.do(t, "DELETE", "/biometrics/keys", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	_, status := a.do(t, "GET", "/biometrics", nil)
	assert.Equal(t, false, status["enabled"])
}
