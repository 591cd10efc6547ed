package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/BradenHooton/lockbox/internal/auth"
	"github.com/BradenHooton/lockbox/internal/forms"
	"github.com/BradenHooton/lockbox/internal/models"
	"github.com/BradenHooton/lockbox/internal/services"
	pkgauth "github.com/BradenHooton/lockbox/pkg/auth"
	pkglogger "github.com/BradenHooton/lockbox/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sessionEnv struct {
	kv        *services.MockKeyValueStore
	sensor    *services.MockSensor
	biometric *services.BiometricService
	secure    auth.SecureItemStore
	session   *services.SessionService
}

func newSessionEnv(t *testing.T, config services.SessionConfig) *sessionEnv {
	t.Helper()

	kv := services.NewMockKeyValueStore()
	logger := newTestLogger()
	audit := pkglogger.NewAuditLogger(logger)
	store := services.NewCredentialStore(kv, logger)
	lockout := services.NewLockoutService(store, logger)
	sensor := services.NewMockSensor()
	secure, err := auth.NewSealedItemStore(kv, make([]byte, 32))
	require.NoError(t, err)

	biometric := services.NewBiometricService(sensor, store, secure, lockout, logger, audit)

	if config.RegisterRedirectDelay == 0 {
		config.RegisterRedirectDelay = time.Hour
	}

	session := services.NewSessionService(
		store,
		biometric,
		secure,
		pkgauth.NewHasher(4),
		auth.NewTimingDelay(auth.TimingConfig{}),
		config,
		logger,
		audit,
	)
	t.Cleanup(session.Close)

	return &sessionEnv{kv: kv, sensor: sensor, biometric: biometric, secure: secure, session: session}
}

func registrationForm(email, password string) *forms.RegistrationForm {
	return &forms.RegistrationForm{
		FirstName:       "Ada",
		LastName:        "Lovelace",
		Email:           email,
		PhoneNumber:     "5551234567",
		Password:        password,
		ConfirmPassword: password,
	}
}

func register(t *testing.T, env *sessionEnv) {
	t.Helper()
	result, err := env.session.Register(context.Background(), registrationForm("a@gmail.com", "password1"))
	require.NoError(t, err)
	require.True(t, result.Success)
}

func failLogin(t *testing.T, env *sessionEnv, times int) {
	t.Helper()
	for i := 0; i < times; i++ {
		_, err := env.session.SubmitLogin(context.Background(), &forms.LoginForm{Email: "a@gmail.com", Password: "wrongpass1"}, "")
		require.Error(t, err)
	}
}

func TestSessionService_RestoreLoggedIn(t *testing.T) {
	ctx := context.Background()
	env := newSessionEnv(t, services.SessionConfig{})
	require.NoError(t, env.kv.Set(ctx, services.KeyIsLoggedIn, "true"))
	require.NoError(t, env.kv.Set(ctx, services.KeyCurrentUser, `{"email":"a@gmail.com","firstName":"Ada","lastName":"Lovelace","password":"x"}`))

	assert.True(t, env.session.State().Loading)
	env.session.Restore(ctx)

	state := env.session.State()
	assert.False(t, state.Loading)
	assert.True(t, state.IsLoggedIn)
	assert.Equal(t, models.ScreenProfile, state.CurrentScreen)
	require.NotNil(t, state.CurrentUser)
	assert.Equal(t, "a@gmail.com", state.CurrentUser.Email)
}

func TestSessionService_RestoreFallsBackToLogin(t *testing.T) {
	tests := []struct {
		name  string
		setup func(kv *services.MockKeyValueStore)
	}{
		{"empty storage", func(kv *services.MockKeyValueStore) {}},
		{"flag without user", func(kv *services.MockKeyValueStore) {
			_ = kv.Set(context.Background(), services.KeyIsLoggedIn, "true")
		}},
		{"corrupt user", func(kv *services.MockKeyValueStore) {
			_ = kv.Set(context.Background(), services.KeyIsLoggedIn, "true")
			_ = kv.Set(context.Background(), services.KeyCurrentUser, "{")
		}},
		{"storage offline", func(kv *services.MockKeyValueStore) {
			kv.GetFunc = func(ctx context.Context, key string) (string, bool, error) { return "", false, errStorage }
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newSessionEnv(t, services.SessionConfig{})
			tt.setup(env.kv)

			env.session.Restore(context.Background())

			state := env.session.State()
			assert.False(t, state.Loading)
			assert.False(t, state.IsLoggedIn)
			assert.Equal(t, models.ScreenLogin, state.CurrentScreen)
			assert.Nil(t, state.CurrentUser)
		})
	}
}

func TestSessionService_RegisterThenLogin(t *testing.T) {
	ctx := context.Background()
	env := newSessionEnv(t, services.SessionConfig{})
	env.session.Restore(ctx)
	register(t, env)

	// Registration is in memory only
	state := env.session.State()
	assert.False(t, state.IsLoggedIn)
	require.NotNil(t, state.CurrentUser)
	assert.NotEqual(t, "password1", state.CurrentUser.Password)
	_, ok, _ := env.kv.Get(ctx, services.KeyCurrentUser)
	assert.False(t, ok)
	_, ok, _ = env.kv.Get(ctx, services.KeyRegisteredUser)
	assert.False(t, ok)

	result, err := env.session.SubmitLogin(ctx, &forms.LoginForm{Email: "a@gmail.com", Password: "password1"}, "")
	require.NoError(t, err)
	assert.Equal(t, models.ActionSubmitForm, result.Action)

	state = env.session.State()
	assert.True(t, state.IsLoggedIn)
	assert.Equal(t, models.ScreenProfile, state.CurrentScreen)
	assert.Equal(t, "a@gmail.com", state.CurrentUser.Email)

	loginTime, err := time.Parse(time.RFC3339, state.CurrentUser.LoginTime)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), loginTime, 5*time.Second)

	value, _, _ := env.kv.Get(ctx, services.KeyIsLoggedIn)
	assert.Equal(t, "true", value)
	_, ok, _ = env.kv.Get(ctx, services.KeyCurrentUser)
	assert.True(t, ok)
}

func TestSessionService_LoginNormalizesEmailAndPassword(t *testing.T) {
	env := newSessionEnv(t, services.SessionConfig{})
	register(t, env)

	_, err := env.session.SubmitLogin(context.Background(), &forms.LoginForm{Email: "A@gmail.com", Password: "password1  "}, "")
	require.NoError(t, err)
	assert.True(t, env.session.State().IsLoggedIn)
}

func TestSessionService_WrongPasswordLeavesSessionUnchanged(t *testing.T) {
	ctx := context.Background()
	env := newSessionEnv(t, services.SessionConfig{})
	register(t, env)
	before := env.session.State()

	result, err := env.session.SubmitLogin(ctx, &forms.LoginForm{Email: "a@gmail.com", Password: "password2"}, "")

	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	assert.Equal(t, 1, result.FailedAttempts)
	assert.Equal(t, 1, env.session.FailedLoginAttempts())
	assert.Equal(t, before, env.session.State())
}

func TestSessionService_WrongEmailCounts(t *testing.T) {
	env := newSessionEnv(t, services.SessionConfig{})
	register(t, env)

	_, err := env.session.SubmitLogin(context.Background(), &forms.LoginForm{Email: "b@gmail.com", Password: "password1"}, "")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	assert.Equal(t, 1, env.session.FailedLoginAttempts())
}

func TestSessionService_ValidationErrorsDoNotCount(t *testing.T) {
	env := newSessionEnv(t, services.SessionConfig{})
	register(t, env)

	_, err := env.session.SubmitLogin(context.Background(), &forms.LoginForm{Email: "a@yahoo.com", Password: "short"}, "")

	var validationErr *services.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.ErrorIs(t, err, models.ErrValidation)
	assert.Len(t, validationErr.Fields, 2)
	assert.Equal(t, 0, env.session.FailedLoginAttempts())
}

func TestSessionService_NoRegisteredUser(t *testing.T) {
	env := newSessionEnv(t, services.SessionConfig{})

	_, err := env.session.SubmitLogin(context.Background(), &forms.LoginForm{Email: "a@gmail.com", Password: "password1"}, "")
	assert.ErrorIs(t, err, models.ErrNoRegisteredUser)
	assert.Equal(t, 0, env.session.FailedLoginAttempts())
}

func TestSessionService_PrimaryActionSwitchesOnFifthFailure(t *testing.T) {
	ctx := context.Background()
	env := newSessionEnv(t, services.SessionConfig{})
	register(t, env)

	for i := 1; i <= 4; i++ {
		_, err := env.session.SubmitLogin(ctx, &forms.LoginForm{Email: "a@gmail.com", Password: "wrongpass1"}, "")
		assert.ErrorIs(t, err, models.ErrInvalidCredentials)
		assert.Equal(t, models.ActionSubmitForm, env.session.PrimaryAction(), "after %d failures", i)
	}

	result, err := env.session.SubmitLogin(ctx, &forms.LoginForm{Email: "a@gmail.com", Password: "wrongpass1"}, "")
	assert.ErrorIs(t, err, models.ErrTooManyAttempts)
	assert.Equal(t, 5, result.FailedAttempts)
	assert.Equal(t, models.ActionBiometricLogin, env.session.PrimaryAction())

	// The fifth failure seals the credentials for the biometric path
	_, ok, _ := env.kv.Get(ctx, auth.SecureItemPrefix+services.SecureService)
	assert.True(t, ok)
}

func TestSessionService_SixthAttemptUsesBiometricPath(t *testing.T) {
	ctx := context.Background()
	env := newSessionEnv(t, services.SessionConfig{})
	register(t, env)
	failLogin(t, env, 5)

	// Even the right password is not compared any more
	env.sensor.Software.SetMode(auth.SimulatorDeny)
	result, err := env.session.SubmitLogin(ctx, &forms.LoginForm{Email: "a@gmail.com", Password: "password1"}, "")

	assert.ErrorIs(t, err, models.ErrBiometricFailed)
	assert.Equal(t, models.ActionBiometricLogin, result.Action)
	require.NotNil(t, result.Biometric)
	assert.False(t, result.Biometric.Success)
	assert.Equal(t, 1, env.sensor.ChallengeCalls())
	assert.False(t, env.session.State().IsLoggedIn)
}

func TestSessionService_BiometricFallbackLogsIn(t *testing.T) {
	ctx := context.Background()
	env := newSessionEnv(t, services.SessionConfig{})
	require.NoError(t, env.biometric.SetBiometricEnabled(ctx, true))
	register(t, env)
	failLogin(t, env, 5)

	result, err := env.session.SubmitLogin(ctx, &forms.LoginForm{}, "Login with Fingerprint")
	require.NoError(t, err)
	require.NotNil(t, result.Biometric)
	assert.True(t, result.Biometric.Success)

	state := env.session.State()
	assert.True(t, state.IsLoggedIn)
	assert.Equal(t, models.ScreenProfile, state.CurrentScreen)
	assert.Equal(t, 0, env.session.FailedLoginAttempts())
	assert.Equal(t, models.ActionSubmitForm, env.session.PrimaryAction())
}

func TestSessionService_BiometricLoginWithoutStoredCredentials(t *testing.T) {
	ctx := context.Background()
	env := newSessionEnv(t, services.SessionConfig{})
	require.NoError(t, env.biometric.SetBiometricEnabled(ctx, true))
	register(t, env)

	_, err := env.session.BiometricLogin(ctx, "")
	assert.ErrorIs(t, err, models.ErrBiometricCancelled)
	assert.False(t, env.session.State().IsLoggedIn)
}

func TestSessionService_BiometricLoginRejectsOtherAccount(t *testing.T) {
	ctx := context.Background()
	env := newSessionEnv(t, services.SessionConfig{})
	require.NoError(t, env.biometric.SetBiometricEnabled(ctx, true))
	register(t, env)
	require.NoError(t, env.secure.SetGenericPassword(ctx, services.SecureService, "someone@gmail.com", "x", auth.BiometricPolicy))

	_, err := env.session.BiometricLogin(ctx, "")
	assert.ErrorIs(t, err, models.ErrBiometricFailed)
	assert.False(t, env.session.State().IsLoggedIn)
}

func TestSessionService_BiometricLoginNoUser(t *testing.T) {
	env := newSessionEnv(t, services.SessionConfig{})

	_, err := env.session.BiometricLogin(context.Background(), "")
	assert.ErrorIs(t, err, models.ErrNoRegisteredUser)
	assert.Equal(t, 0, env.sensor.ChallengeCalls())
}

func TestSessionService_BiometricLoginWithMocks(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	store := services.NewCredentialStore(services.NewMockKeyValueStore(), logger)

	authenticator := &services.MockBiometricAuthenticator{
		AuthenticateFunc: func(ctx context.Context, prompt string) (models.BiometricAuthResult, *auth.Presence) {
			assert.Equal(t, "Unlock", prompt)
			return models.BiometricAuthResult{Success: true}, auth.NewPresence("nonce", time.Now())
		},
	}
	secure := &services.MockSecureItemStore{
		GetGenericPasswordFunc: func(ctx context.Context, service string, presence *auth.Presence) (*auth.Credentials, error) {
			return nil, errors.New("keychain locked")
		},
	}

	session := services.NewSessionService(store, authenticator, secure, pkgauth.NewHasher(4),
		auth.NewTimingDelay(auth.TimingConfig{}), services.SessionConfig{RegisterRedirectDelay: time.Hour},
		logger, pkglogger.NewAuditLogger(logger))
	defer session.Close()

	_, err := session.Register(ctx, registrationForm("a@gmail.com", "password1"))
	require.NoError(t, err)

	_, err = session.BiometricLogin(ctx, "Unlock")
	assert.ErrorIs(t, err, models.ErrBiometricFailed)
}

func TestSessionService_LoginStorageErrorLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	env := newSessionEnv(t, services.SessionConfig{})
	register(t, env)
	before := env.session.State()

	env.kv.SetFunc = func(ctx context.Context, key, value string) error { return errStorage }

	_, err := env.session.SubmitLogin(ctx, &forms.LoginForm{Email: "a@gmail.com", Password: "password1"}, "")
	assert.ErrorIs(t, err, errStorage)
	assert.Equal(t, before, env.session.State())
}

func TestSessionService_Logout(t *testing.T) {
	ctx := context.Background()
	env := newSessionEnv(t, services.SessionConfig{})
	register(t, env)
	_, err := env.session.SubmitLogin(ctx, &forms.LoginForm{Email: "a@gmail.com", Password: "password1"}, "")
	require.NoError(t, err)

	require.NoError(t, env.session.Logout(ctx))

	state := env.session.State()
	assert.False(t, state.IsLoggedIn)
	assert.Nil(t, state.CurrentUser)
	assert.Equal(t, models.ScreenLogin, state.CurrentScreen)

	for _, key := range []string{services.KeyIsLoggedIn, services.KeyCurrentUser} {
		_, ok, _ := env.kv.Get(ctx, key)
		assert.False(t, ok, key)
	}

	_, err = env.session.Profile()
	assert.ErrorIs(t, err, models.ErrNotLoggedIn)
}

func TestSessionService_LogoutStorageError(t *testing.T) {
	ctx := context.Background()
	env := newSessionEnv(t, services.SessionConfig{})
	register(t, env)
	_, err := env.session.SubmitLogin(ctx, &forms.LoginForm{Email: "a@gmail.com", Password: "password1"}, "")
	require.NoError(t, err)

	env.kv.RemoveManyFunc = func(ctx context.Context, keys []string) error { return errStorage }

	assert.ErrorIs(t, env.session.Logout(ctx), errStorage)
	assert.True(t, env.session.State().IsLoggedIn)
}

func TestSessionService_RegisterValidation(t *testing.T) {
	env := newSessionEnv(t, services.SessionConfig{})

	form := registrationForm("a@outlook.com", "password1")
	form.ConfirmPassword = "password2"

	_, err := env.session.Register(context.Background(), form)

	var validationErr *services.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, []forms.FieldError{
		{Field: "email", Message: "Only Gmail addresses are allowed"},
		{Field: "confirmPassword", Message: "Passwords must match"},
	}, validationErr.Fields)
	assert.Nil(t, env.session.State().CurrentUser)
}

func TestSessionService_RegisterBlankPassword(t *testing.T) {
	env := newSessionEnv(t, services.SessionConfig{})

	_, err := env.session.Register(context.Background(), registrationForm("a@gmail.com", "          "))
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestSessionService_RegisterRedirectsToLogin(t *testing.T) {
	env := newSessionEnv(t, services.SessionConfig{RegisterRedirectDelay: 20 * time.Millisecond})
	require.NoError(t, env.session.NavigateTo(models.ScreenRegister))
	register(t, env)

	assert.Equal(t, models.ScreenRegister, env.session.State().CurrentScreen)
	assert.Eventually(t, func() bool {
		return env.session.State().CurrentScreen == models.ScreenLogin
	}, time.Second, 5*time.Millisecond)
}

func TestSessionService_CloseCancelsRedirect(t *testing.T) {
	env := newSessionEnv(t, services.SessionConfig{RegisterRedirectDelay: 30 * time.Millisecond})
	require.NoError(t, env.session.NavigateTo(models.ScreenRegister))
	register(t, env)

	env.session.Close()
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, models.ScreenRegister, env.session.State().CurrentScreen)
}

func TestSessionService_LoginCancelsRedirect(t *testing.T) {
	ctx := context.Background()
	env := newSessionEnv(t, services.SessionConfig{RegisterRedirectDelay: 30 * time.Millisecond})
	register(t, env)

	_, err := env.session.SubmitLogin(ctx, &forms.LoginForm{Email: "a@gmail.com", Password: "password1"}, "")
	require.NoError(t, err)

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, models.ScreenProfile, env.session.State().CurrentScreen)
}

func TestSessionService_NavigateTo(t *testing.T) {
	env := newSessionEnv(t, services.SessionConfig{})

	// No guard against visiting profile while logged out
	require.NoError(t, env.session.NavigateTo(models.ScreenProfile))
	assert.Equal(t, models.ScreenProfile, env.session.State().CurrentScreen)

	err := env.session.NavigateTo(models.Screen("settings"))
	assert.ErrorIs(t, err, models.ErrBadRequest)
	assert.Equal(t, models.ScreenProfile, env.session.State().CurrentScreen)
}

func TestSessionService_ProfileGuard(t *testing.T) {
	env := newSessionEnv(t, services.SessionConfig{})

	_, err := env.session.Profile()
	assert.ErrorIs(t, err, models.ErrNotLoggedIn)

	register(t, env)
	user, err := env.session.Profile()
	require.NoError(t, err)
	assert.Equal(t, "Ada", user.FirstName)
}

func TestSessionService_RegistrationPersist(t *testing.T) {
	ctx := context.Background()
	env := newSessionEnv(t, services.SessionConfig{RegistrationPersist: true})
	register(t, env)

	raw, ok, _ := env.kv.Get(ctx, services.KeyRegisteredUser)
	require.True(t, ok)
	assert.Contains(t, raw, "a@gmail.com")
	assert.NotContains(t, raw, "password1")

	// A new process finds the registration again
	logger := newTestLogger()
	store := services.NewCredentialStore(env.kv, logger)
	restarted := services.NewSessionService(store, env.biometric, env.secure, pkgauth.NewHasher(4),
		auth.NewTimingDelay(auth.TimingConfig{}), services.SessionConfig{RegistrationPersist: true, RegisterRedirectDelay: time.Hour},
		logger, pkglogger.NewAuditLogger(logger))
	defer restarted.Close()
	restarted.Restore(ctx)

	_, err := restarted.SubmitLogin(ctx, &forms.LoginForm{Email: "a@gmail.com", Password: "password1"}, "")
	require.NoError(t, err)

	// Logout keeps the registration available
	require.NoError(t, restarted.Logout(ctx))
	require.NotNil(t, restarted.State().CurrentUser)
	assert.False(t, restarted.State().IsLoggedIn)
}

func TestSessionService_StateIsSnapshot(t *testing.T) {
	env := newSessionEnv(t, services.SessionConfig{})
	register(t, env)

	state := env.session.State()
	state.CurrentUser.FirstName = "Changed"

	assert.Equal(t, "Ada", env.session.State().CurrentUser.FirstName)
}

func TestSessionService_RegisterAgainAfterFiveFailures(t *testing.T) {
	ctx := context.Background()
	env := newSessionEnv(t, services.SessionConfig{})
	register(t, env)
	failLogin(t, env, 5)
	require.Equal(t, models.ActionBiometricLogin, env.session.PrimaryAction())

	require.NoError(t, env.session.NavigateTo(models.ScreenRegister))
	_, err := env.session.Register(ctx, registrationForm("b@gmail.com", "password2"))
	require.NoError(t, err)
	require.NoError(t, env.session.NavigateTo(models.ScreenLogin))

	assert.Equal(t, models.ActionSubmitForm, env.session.PrimaryAction())

	result, err := env.session.SubmitLogin(ctx, &forms.LoginForm{Email: "b@gmail.com", Password: "password2"}, "")
	require.NoError(t, err)
	assert.Equal(t, models.ActionSubmitForm, result.Action)
	assert.Equal(t, 0, env.sensor.ChallengeCalls())

	state := env.session.State()
	assert.True(t, state.IsLoggedIn)
	assert.Equal(t, "b@gmail.com", state.CurrentUser.Email)
}

func TestSessionService_LeavingLoginScreenClearsFailures(t *testing.T) {
	env := newSessionEnv(t, services.SessionConfig{})
	register(t, env)
	failLogin(t, env, 3)

	// Staying on the login screen keeps the count
	require.NoError(t, env.session.NavigateTo(models.ScreenLogin))
	assert.Equal(t, 3, env.session.FailedLoginAttempts())

	require.NoError(t, env.session.NavigateTo(models.ScreenRegister))
	assert.Equal(t, 0, env.session.FailedLoginAttempts())
}

func TestSessionService_RegisterClearsFailures(t *testing.T) {
	env := newSessionEnv(t, services.SessionConfig{})
	register(t, env)
	failLogin(t, env, 5)

	register(t, env)
	assert.Equal(t, 0, env.session.FailedLoginAttempts())
	assert.Equal(t, models.ActionSubmitForm, env.session.PrimaryAction())
}

func TestSessionService_LogoutClearsFailures(t *testing.T) {
	env := newSessionEnv(t, services.SessionConfig{})
	register(t, env)
	failLogin(t, env, 2)

	require.NoError(t, env.session.Logout(context.Background()))
	assert.Equal(t, 0, env.session.FailedLoginAttempts())
}

func TestSessionService_RegisterMultibytePasswordTooLong(t *testing.T) {
	env := newSessionEnv(t, services.SessionConfig{})

	_, err := env.session.Register(context.Background(), registrationForm("a@gmail.com", strings.Repeat("é", 40)))

	var validationErr *services.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, []forms.FieldError{
		{Field: "password", Message: "Password must be at most 72 bytes"},
	}, validationErr.Fields)
}

func TestSessionService_FailedLoginPaddingDoesNotHoldSession(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	store := services.NewCredentialStore(services.NewMockKeyValueStore(), logger)

	session := services.NewSessionService(store, &services.MockBiometricAuthenticator{}, &services.MockSecureItemStore{},
		pkgauth.NewHasher(4), auth.NewTimingDelay(auth.TimingConfig{BaseDelayMs: 300}),
		services.SessionConfig{RegisterRedirectDelay: time.Hour}, logger, pkglogger.NewAuditLogger(logger))
	defer session.Close()

	_, err := session.Register(ctx, registrationForm("a@gmail.com", "password1"))
	require.NoError(t, err)

	done := make(chan error, 1)
	start := time.Now()
	go func() {
		_, err := session.SubmitLogin(ctx, &forms.LoginForm{Email: "a@gmail.com", Password: "wrongpass1"}, "")
		done <- err
	}()

	// Wait until the attempt is counted, then the session must answer while the padding runs
	require.Eventually(t, func() bool { return session.FailedLoginAttempts() == 1 }, time.Second, time.Millisecond)
	_ = session.State()
	require.NoError(t, session.NavigateTo(models.ScreenLogin))
	assert.Less(t, time.Since(start), 250*time.Millisecond)

	assert.ErrorIs(t, <-done, models.ErrInvalidCredentials)
	assert.GreaterOrEqual(t, time.Since(start), 300*time.Millisecond)
}
