package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BradenHooton/lockbox/internal/forms"
	"github.com/BradenHooton/lockbox/internal/models"
	"github.com/BradenHooton/lockbox/internal/services"
	pkghttp "github.com/BradenHooton/lockbox/pkg/http"
	"github.com/stretchr/testify/assert"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// AssertJSONResponse checks that response has correct status and decodes JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target interface{}) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	contentType := w.Header().Get("Content-Type")
	assert.Equal(t, "application/json", contentType, "Content-Type should be application/json")

	if target != nil {
		err := json.Unmarshal(w.Body.Bytes(), target)
		assert.NoError(t, err, "Failed to decode response JSON")
	}
}

// AssertErrorResponse checks that response is a valid error response
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedError string) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err, "Failed to decode error response")
	assert.Equal(t, expectedError, resp.Error, "Error code mismatch")
	assert.NotEmpty(t, resp.Message, "Error message should not be empty")
}

// MockSessionService implements AuthServiceInterface and SessionServiceInterface for testing
type MockSessionService struct {
	RegisterFunc            func(ctx context.Context, form *forms.RegistrationForm) (*models.RegisterResult, error)
	SubmitLoginFunc         func(ctx context.Context, form *forms.LoginForm, prompt string) (*models.LoginResult, error)
	BiometricLoginFunc      func(ctx context.Context, prompt string) (*models.LoginResult, error)
	LogoutFunc              func(ctx context.Context) error
	StateFunc               func() models.SessionState
	PrimaryActionFunc       func() models.PrimaryAction
	FailedLoginAttemptsFunc func() int
	NavigateToFunc          func(screen models.Screen) error
	ProfileFunc             func() (*models.User, error)
}

func (m *MockSessionService) Register(ctx context.Context, form *forms.RegistrationForm) (*models.RegisterResult, error) {
	if m.RegisterFunc == nil {
		return &models.RegisterResult{Success: true}, nil
	}
	return m.RegisterFunc(ctx, form)
}

func (m *MockSessionService) SubmitLogin(ctx context.Context, form *forms.LoginForm, prompt string) (*models.LoginResult, error) {
	if m.SubmitLoginFunc == nil {
		return &models.LoginResult{Action: models.ActionSubmitForm, FailedAttempts: 1}, models.ErrInvalidCredentials
	}
	return m.SubmitLoginFunc(ctx, form, prompt)
}

func (m *MockSessionService) BiometricLogin(ctx context.Context, prompt string) (*models.LoginResult, error) {
	if m.BiometricLoginFunc == nil {
		return &models.LoginResult{Action: models.ActionBiometricLogin}, models.ErrBiometricFailed
	}
	return m.BiometricLoginFunc(ctx, prompt)
}

func (m *MockSessionService) Logout(ctx context.Context) error {
	if m.LogoutFunc == nil {
		return nil
	}
	return m.LogoutFunc(ctx)
}

func (m *MockSessionService) State() models.SessionState {
	if m.StateFunc == nil {
		return models.SessionState{CurrentScreen: models.ScreenLogin}
	}
	return m.StateFunc()
}

func (m *MockSessionService) PrimaryAction() models.PrimaryAction {
	if m.PrimaryActionFunc == nil {
		return models.ActionSubmitForm
	}
	return m.PrimaryActionFunc()
}

func (m *MockSessionService) FailedLoginAttempts() int {
	if m.FailedLoginAttemptsFunc == nil {
		return 0
	}
	return m.FailedLoginAttemptsFunc()
}

func (m *MockSessionService) NavigateTo(screen models.Screen) error {
	if m.NavigateToFunc == nil {
		return nil
	}
	return m.NavigateToFunc(screen)
}

func (m *MockSessionService) Profile() (*models.User, error) {
	if m.ProfileFunc == nil {
		return nil, models.ErrNotLoggedIn
	}
	return m.ProfileFunc()
}

// MockBiometricService implements BiometricServiceInterface for testing
type MockBiometricService struct {
	StatusFunc              func(ctx context.Context) models.BiometricStatus
	SetBiometricEnabledFunc func(ctx context.Context, enabled bool) error
	DeleteKeysFunc          func(ctx context.Context) error
	LockoutStatusFunc       func(ctx context.Context) models.LockoutStatus
}

func (m *MockBiometricService) Status(ctx context.Context) models.BiometricStatus {
	if m.StatusFunc == nil {
		return models.BiometricStatus{}
	}
	return m.StatusFunc(ctx)
}

func (m *MockBiometricService) SetBiometricEnabled(ctx context.Context, enabled bool) error {
	if m.SetBiometricEnabledFunc == nil {
		return nil
	}
	return m.SetBiometricEnabledFunc(ctx, enabled)
}

func (m *MockBiometricService) DeleteKeys(ctx context.Context) error {
	if m.DeleteKeysFunc == nil {
		return nil
	}
	return m.DeleteKeysFunc(ctx)
}

func (m *MockBiometricService) LockoutStatus(ctx context.Context) models.LockoutStatus {
	if m.LockoutStatusFunc == nil {
		return models.LockoutStatus{}
	}
	return m.LockoutStatusFunc(ctx)
}

// MockThemeService implements ThemeServiceInterface for testing
type MockThemeService struct {
	ViewFunc   func() services.ThemeView
	SetFunc    func(mode models.ThemeMode) error
	ToggleFunc func() models.ThemeMode
}

func (m *MockThemeService) View() services.ThemeView {
	if m.ViewFunc == nil {
		return services.ThemeView{Mode: models.ThemeLight}
	}
	return m.ViewFunc()
}

func (m *MockThemeService) Set(mode models.ThemeMode) error {
	if m.SetFunc == nil {
		return nil
	}
	return m.SetFunc(mode)
}

func (m *MockThemeService) Toggle() models.ThemeMode {
	if m.ToggleFunc == nil {
		return models.ThemeDark
	}
	return m.ToggleFunc()
}

// MockPinger implements Pinger for testing
type MockPinger struct {
	PingFunc func(ctx context.Context) error
}

func (m *MockPinger) Ping(ctx context.Context) error {
	if m.PingFunc == nil {
		return nil
	}
	return m.PingFunc(ctx)
}
