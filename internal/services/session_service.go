package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/BradenHooton/lockbox/internal/auth"
	"github.com/BradenHooton/lockbox/internal/background"
	"github.com/BradenHooton/lockbox/internal/forms"
	"github.com/BradenHooton/lockbox/internal/models"
	pkgauth "github.com/BradenHooton/lockbox/pkg/auth"
	pkglogger "github.com/BradenHooton/lockbox/pkg/logger"
)

// SecureService is the secure item store entry holding the fallback credentials
const SecureService = "lockbox"

// BiometricAuthenticator is the part of the biometric gateway the session needs
type BiometricAuthenticator interface {
	Authenticate(ctx context.Context, prompt string) (models.BiometricAuthResult, *auth.Presence)
}

// ValidationError carries the per-field failures of a rejected form
type ValidationError struct {
	Fields []forms.FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return models.ErrValidation
}

type SessionConfig struct {
	RegisterRedirectDelay time.Duration
	// RegistrationPersist also writes registrations under registeredUser
	RegistrationPersist bool
}

// SessionService owns the application session: current screen, login state and user.
// Every action holds the session lock, so concurrent requests serialize like button presses.
type SessionService struct {
	mu    sync.Mutex
	state models.SessionState
	// passwordFailures belongs to the login screen and resets when the session leaves it
	passwordFailures int
	// redirectGen invalidates a registration redirect that fires after a login
	redirectGen int

	store       *CredentialStore
	biometrics  BiometricAuthenticator
	secure      auth.SecureItemStore
	hasher      *pkgauth.Hasher
	timing      *auth.TimingDelay
	redirect    *background.DelayedTask
	config      SessionConfig
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
	now         func() time.Time
}

func NewSessionService(
	store *CredentialStore,
	biometrics BiometricAuthenticator,
	secure auth.SecureItemStore,
	hasher *pkgauth.Hasher,
	timing *auth.TimingDelay,
	config SessionConfig,
	logger *slog.Logger,
	auditLogger *pkglogger.AuditLogger,
) *SessionService {
	return &SessionService{
		state: models.SessionState{
			CurrentScreen: models.ScreenLogin,
			Loading:       true,
		},
		store:       store,
		biometrics:  biometrics,
		secure:      secure,
		hasher:      hasher,
		timing:      timing,
		redirect:    background.NewDelayedTask("register_redirect", logger),
		config:      config,
		logger:      logger,
		auditLogger: auditLogger,
		now:         time.Now,
	}
}

// Restore rebuilds the session from storage at start-up
func (s *SessionService) Restore(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() { s.state.Loading = false }()

	if s.store.IsLoggedIn(ctx) {
		if user := s.store.LoadUser(ctx, KeyCurrentUser); user != nil {
			s.state.IsLoggedIn = true
			s.state.CurrentUser = user
			s.state.CurrentScreen = models.ScreenProfile
			s.logger.Info("session restored", slog.String("email", pkglogger.SanitizedEmail(user.Email)))
			return
		}
	}

	if s.config.RegistrationPersist {
		s.state.CurrentUser = s.store.LoadUser(ctx, KeyRegisteredUser)
	}
}

// State returns a snapshot of the session
func (s *SessionService) State() models.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state
	snapshot.CurrentUser = s.state.CurrentUser.Clone()
	return snapshot
}

// PrimaryAction is what the login screen's main button does right now
func (s *SessionService) PrimaryAction() models.PrimaryAction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.primaryActionLocked()
}

func (s *SessionService) primaryActionLocked() models.PrimaryAction {
	if s.passwordFailures >= MaxFailedAttempts {
		return models.ActionBiometricLogin
	}
	return models.ActionSubmitForm
}

func (s *SessionService) FailedLoginAttempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.passwordFailures
}

// Login stamps loginTime, persists the login flags and moves to the profile screen.
// On a storage error the session is left unchanged.
func (s *SessionService) Login(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loginLocked(ctx, user)
}

func (s *SessionService) loginLocked(ctx context.Context, user *models.User) error {
	stamped := user.Clone()
	stamped.ConfirmPassword = ""
	stamped.LoginTime = s.now().UTC().Format(time.RFC3339)

	if err := s.store.Set(ctx, KeyIsLoggedIn, "true"); err != nil {
		return fmt.Errorf("failed to persist login: %w", err)
	}
	if err := s.store.SaveUser(ctx, KeyCurrentUser, stamped); err != nil {
		return fmt.Errorf("failed to persist login: %w", err)
	}

	s.redirect.Cancel()
	s.redirectGen++
	s.state.IsLoggedIn = true
	s.state.CurrentUser = stamped
	s.state.CurrentScreen = models.ScreenProfile

	s.logger.Info("user logged in", slog.String("email", pkglogger.SanitizedEmail(stamped.Email)))
	return nil
}

// Register validates the form and makes the user current. Navigation to the login
// screen follows after the redirect delay.
func (s *SessionService) Register(ctx context.Context, form *forms.RegistrationForm) (*models.RegisterResult, error) {
	if errs := forms.Validate(form); len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	// the form bounds the length, so bcrypt only rejects a password that is blank once trimmed
	hash, err := s.hasher.HashPassword(form.Password)
	if err != nil {
		s.logger.Warn("rejected registration password", slog.Any("error", err))
		return nil, &ValidationError{Fields: []forms.FieldError{{Field: "password", Message: "This field is required."}}}
	}

	user := form.User()
	user.Password = hash

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.config.RegistrationPersist {
		if err := s.store.SaveUser(ctx, KeyRegisteredUser, user); err != nil {
			return nil, fmt.Errorf("failed to persist registration: %w", err)
		}
	}

	s.state.CurrentUser = user
	s.passwordFailures = 0
	s.auditLogger.LogAccountAction("register", user.Email, map[string]string{
		"persisted": fmt.Sprintf("%t", s.config.RegistrationPersist),
	})

	s.redirectGen++
	gen := s.redirectGen
	s.redirect.Schedule(context.Background(), s.config.RegisterRedirectDelay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.redirectGen != gen {
			return
		}
		s.state.CurrentScreen = models.ScreenLogin
	})

	return &models.RegisterResult{Success: true}, nil
}

// Logout removes the login flags and returns to the login screen
func (s *SessionService) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := ""
	if s.state.CurrentUser != nil {
		email = s.state.CurrentUser.Email
	}

	if err := s.store.RemoveMany(ctx, []string{KeyIsLoggedIn, KeyCurrentUser}); err != nil {
		return fmt.Errorf("failed to clear login: %w", err)
	}

	s.state.IsLoggedIn = false
	s.state.CurrentUser = nil
	s.state.CurrentScreen = models.ScreenLogin
	s.passwordFailures = 0

	if s.config.RegistrationPersist {
		s.state.CurrentUser = s.store.LoadUser(ctx, KeyRegisteredUser)
	}

	s.auditLogger.LogAccountAction("logout", email, nil)
	return nil
}

// NavigateTo switches screens without guards; unknown screens are rejected.
// Leaving the login screen clears its failed attempts.
func (s *SessionService) NavigateTo(screen models.Screen) error {
	if !screen.Valid() {
		return fmt.Errorf("%w: unknown screen %q", models.ErrBadRequest, screen)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if screen != models.ScreenLogin {
		s.passwordFailures = 0
	}
	s.state.CurrentScreen = screen
	return nil
}

// Profile returns the current user, guarded on its presence
func (s *SessionService) Profile() (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.CurrentUser == nil {
		return nil, models.ErrNotLoggedIn
	}
	return s.state.CurrentUser.Clone(), nil
}

// SubmitLogin is the login screen's primary action. Below the failure threshold it
// compares credentials; from then on it runs the biometric fallback.
// A rejected password is padded with the timing delay after the session lock is released.
func (s *SessionService) SubmitLogin(ctx context.Context, form *forms.LoginForm, prompt string) (*models.LoginResult, error) {
	result, rejected, err := s.submitLogin(ctx, form, prompt)
	if rejected {
		s.timing.Wait(ctx, false)
	}
	return result, err
}

// submitLogin reports whether the credentials were compared and rejected
func (s *SessionService) submitLogin(ctx context.Context, form *forms.LoginForm, prompt string) (*models.LoginResult, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.primaryActionLocked() == models.ActionBiometricLogin {
		result, err := s.biometricLoginLocked(ctx, prompt)
		return result, false, err
	}

	result := &models.LoginResult{Action: models.ActionSubmitForm}

	if errs := forms.Validate(form); len(errs) > 0 {
		result.FailedAttempts = s.passwordFailures
		return result, false, &ValidationError{Fields: errs}
	}

	user := s.state.CurrentUser
	if user == nil {
		result.FailedAttempts = s.passwordFailures
		return result, false, models.ErrNoRegisteredUser
	}

	emailMatch := models.NormalizeEmail(form.Email) == user.NormalizedEmail()
	passwordMatch := pkgauth.ComparePassword(user.Password, form.Password) == nil

	if !emailMatch || !passwordMatch {
		s.passwordFailures++
		result.FailedAttempts = s.passwordFailures

		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "login_failed",
			Email:         form.Email,
			Method:        pkglogger.MethodPassword,
			FailureReason: "invalid_credentials",
			Attempts:      s.passwordFailures,
		})

		if s.passwordFailures >= MaxFailedAttempts {
			s.storeCredentials(ctx, user)
			s.logger.Warn("password login disabled after failed attempts", slog.Int("attempts", s.passwordFailures))
			return result, true, models.ErrTooManyAttempts
		}
		return result, true, models.ErrInvalidCredentials
	}

	s.passwordFailures = 0
	if err := s.loginLocked(ctx, user); err != nil {
		return result, false, err
	}

	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: "login_success",
		Email:     user.Email,
		Method:    pkglogger.MethodPassword,
		Success:   true,
	})
	return result, false, nil
}

// storeCredentials seals the account credentials behind biometric presence so the
// fallback path can release them. Failures are logged only.
func (s *SessionService) storeCredentials(ctx context.Context, user *models.User) {
	err := s.secure.SetGenericPassword(ctx, SecureService, user.Email, user.Password, auth.BiometricPolicy)
	if err != nil {
		s.logger.Error("failed to store credentials", slog.Any("error", err))
		return
	}
	s.logger.Info("credentials stored for biometric login")
}

// BiometricLogin logs the current user in after a successful biometric challenge
func (s *SessionService) BiometricLogin(ctx context.Context, prompt string) (*models.LoginResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.biometricLoginLocked(ctx, prompt)
}

func (s *SessionService) biometricLoginLocked(ctx context.Context, prompt string) (*models.LoginResult, error) {
	result := &models.LoginResult{
		Action:         models.ActionBiometricLogin,
		FailedAttempts: s.passwordFailures,
	}

	user := s.state.CurrentUser
	if user == nil {
		return result, models.ErrNoRegisteredUser
	}

	authResult, presence := s.biometrics.Authenticate(ctx, prompt)
	result.Biometric = &authResult
	if !authResult.Success {
		if authResult.Err != nil {
			return result, authResult.Err
		}
		return result, models.ErrBiometricFailed
	}

	creds, err := s.secure.GetGenericPassword(ctx, SecureService, presence)
	if err != nil {
		s.logger.Error("failed to read stored credentials", slog.Any("error", err))
		if errors.Is(err, models.ErrPresenceRequired) {
			return result, err
		}
		return result, fmt.Errorf("%w: %w", models.ErrBiometricFailed, err)
	}
	if creds == nil {
		return result, models.ErrBiometricCancelled
	}

	if models.NormalizeEmail(creds.Username) != user.NormalizedEmail() || creds.Password != user.Password {
		s.logger.Warn("stored credentials do not match the current user")
		return result, models.ErrBiometricFailed
	}

	s.passwordFailures = 0
	result.FailedAttempts = 0
	if err := s.loginLocked(ctx, user); err != nil {
		return result, err
	}

	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: "login_success",
		Email:     user.Email,
		Method:    pkglogger.MethodBiometric,
		Success:   true,
	})
	return result, nil
}

// Close cancels the pending post-registration navigation
func (s *SessionService) Close() {
	s.redirect.Stop()
}
