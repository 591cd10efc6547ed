package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/BradenHooton/lockbox/internal/auth"
	"github.com/BradenHooton/lockbox/internal/models"
	pkglogger "github.com/BradenHooton/lockbox/pkg/logger"
)

// DefaultBiometricPrompt is shown when the caller supplies no prompt
const DefaultBiometricPrompt = "Authenticate to continue"

// BiometricService gates the platform sensor behind the persisted lockout policy.
// Platform failures are converted into results and never returned to callers.
type BiometricService struct {
	sensor      auth.Sensor
	store       *CredentialStore
	secure      auth.SecureItemStore
	lockout     *LockoutService
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
	now         func() time.Time
}

func NewBiometricService(
	sensor auth.Sensor,
	store *CredentialStore,
	secure auth.SecureItemStore,
	lockout *LockoutService,
	logger *slog.Logger,
	auditLogger *pkglogger.AuditLogger,
) *BiometricService {
	return &BiometricService{
		sensor:      sensor,
		store:       store,
		secure:      secure,
		lockout:     lockout,
		logger:      logger,
		auditLogger: auditLogger,
		now:         time.Now,
	}
}

// IsSensorAvailable queries the platform; errors read as unavailable
func (s *BiometricService) IsSensorAvailable(ctx context.Context) models.SensorAvailability {
	availability, err := s.sensor.CheckAvailability(ctx)
	if err != nil {
		s.logger.Error("biometric sensor check failed", slog.Any("error", err))
		return models.SensorAvailability{}
	}
	if !availability.Available {
		return models.SensorAvailability{}
	}
	return availability
}

func (s *BiometricService) IsBiometricEnabled(ctx context.Context) bool {
	value, ok := s.store.Get(ctx, KeyBiometricEnabled)
	return ok && value == "true"
}

// Status is what the biometric setup view renders
func (s *BiometricService) Status(ctx context.Context) models.BiometricStatus {
	availability := s.IsSensorAvailable(ctx)
	return models.BiometricStatus{
		Available:    availability.Available,
		BiometryType: availability.BiometryType,
		Enabled:      s.IsBiometricEnabled(ctx),
	}
}

// SetBiometricEnabled persists the flag. Enabling creates key material first and
// the flag is only written "true" once the keys exist.
func (s *BiometricService) SetBiometricEnabled(ctx context.Context, enabled bool) error {
	if !enabled {
		if err := s.store.Set(ctx, KeyBiometricEnabled, "false"); err != nil {
			s.auditLogger.LogBiometricChange("biometric_disabled", false, "storage_error")
			return err
		}
		s.auditLogger.LogBiometricChange("biometric_disabled", true, "")
		return nil
	}

	publicKey, err := s.sensor.CreateKeyMaterial(ctx)
	if err != nil {
		s.logger.Error("biometric key creation failed", slog.Any("error", err))
		_ = s.store.Set(ctx, KeyBiometricEnabled, "false")
		s.auditLogger.LogBiometricChange("biometric_enabled", false, "key_creation_failed")
		return fmt.Errorf("%w: %w", models.ErrKeyCreationFailed, err)
	}

	if err := s.store.Set(ctx, KeyBiometricPublicKey, publicKey); err != nil {
		s.rollbackKeys(ctx)
		s.auditLogger.LogBiometricChange("biometric_enabled", false, "storage_error")
		return err
	}

	if err := s.store.Set(ctx, KeyBiometricEnabled, "true"); err != nil {
		s.rollbackKeys(ctx)
		s.auditLogger.LogBiometricChange("biometric_enabled", false, "storage_error")
		return err
	}

	s.auditLogger.LogBiometricChange("biometric_enabled", true, "")
	return nil
}

// rollbackKeys undoes a half finished enable
func (s *BiometricService) rollbackKeys(ctx context.Context) {
	if err := s.sensor.DeleteKeyMaterial(ctx); err != nil {
		s.logger.Error("failed to delete key material after enable failure", slog.Any("error", err))
	}
	_ = s.store.Remove(ctx, KeyBiometricPublicKey)
	_ = s.store.Set(ctx, KeyBiometricEnabled, "false")
}

// Authenticate runs one biometric challenge. Locked out devices fail without a sensor
// prompt; every failure, including a locked one, counts as a failed attempt.
func (s *BiometricService) Authenticate(ctx context.Context, prompt string) (models.BiometricAuthResult, *auth.Presence) {
	if prompt == "" {
		prompt = DefaultBiometricPrompt
	}

	if lockout := s.lockout.IsLockedOut(ctx); lockout.Locked {
		message := fmt.Sprintf("Account locked. Try again in %d minutes.", lockout.RemainingTime)
		return s.fail(ctx, message, models.ErrLockedOut), nil
	}

	nonce := auth.NewChallenge()
	challenge, err := s.sensor.Challenge(ctx, prompt, nonce)
	if err != nil {
		s.logger.Error("biometric challenge failed", slog.Any("error", err))
		return s.fail(ctx, err.Error(), fmt.Errorf("%w: %w", models.ErrBiometricFailed, err)), nil
	}

	if !challenge.Success {
		s.logger.Info("biometric challenge rejected", slog.String("reason", challenge.Error))
		return s.fail(ctx, "Authentication failed", models.ErrBiometricFailed), nil
	}

	publicKey, ok := s.store.Get(ctx, KeyBiometricPublicKey)
	if !ok {
		s.logger.Warn("biometric signature received without an enrolled key")
		return s.fail(ctx, "Authentication failed", models.ErrBiometricFailed), nil
	}

	if err := auth.VerifyChallenge(publicKey, challenge.Signature, nonce); err != nil {
		s.logger.Warn("biometric signature rejected", slog.Any("error", err))
		return s.fail(ctx, "Authentication failed", models.ErrBiometricFailed), nil
	}

	s.lockout.ResetFailedAttempts(ctx)
	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: "biometric_auth",
		Method:    pkglogger.MethodBiometric,
		Success:   true,
	})

	return models.BiometricAuthResult{Success: true}, auth.NewPresence(nonce, s.now())
}

func (s *BiometricService) fail(ctx context.Context, message string, err error) models.BiometricAuthResult {
	status := s.lockout.RecordFailedAttempt(ctx)

	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType:     "biometric_auth",
		Method:        pkglogger.MethodBiometric,
		Success:       false,
		FailureReason: message,
		Attempts:      status.Attempts,
	})

	return models.BiometricAuthResult{
		Success:       false,
		Error:         message,
		LockoutStatus: &status,
		Err:           err,
	}
}

// DeleteKeys removes platform key material and force-disables the feature.
// Credentials sealed for the fallback login go with the keys.
func (s *BiometricService) DeleteKeys(ctx context.Context) error {
	if err := s.sensor.DeleteKeyMaterial(ctx); err != nil {
		s.logger.Error("biometric key deletion failed", slog.Any("error", err))
		s.auditLogger.LogBiometricChange("biometric_keys_deleted", false, "sensor_error")
		return fmt.Errorf("%w: %w", models.ErrSensorUnavailable, err)
	}

	if err := s.store.Set(ctx, KeyBiometricEnabled, "false"); err != nil {
		s.auditLogger.LogBiometricChange("biometric_keys_deleted", false, "storage_error")
		return err
	}
	_ = s.store.Remove(ctx, KeyBiometricPublicKey)

	if err := s.secure.ResetGenericPassword(ctx, SecureService); err != nil {
		s.logger.Error("failed to remove stored credentials", slog.Any("error", err))
	}

	s.auditLogger.LogBiometricChange("biometric_keys_deleted", true, "")
	return nil
}

// LockoutStatus exposes the current biometric lockout for views
func (s *BiometricService) LockoutStatus(ctx context.Context) models.LockoutStatus {
	return s.lockout.IsLockedOut(ctx)
}
