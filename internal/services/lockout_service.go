package services

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/BradenHooton/lockbox/internal/models"
)

// Lockout policy constants
const (
	MaxFailedAttempts = 5
	LockoutWindow     = 30 * time.Minute
)

// LockoutService tracks persisted failed attempts and the lockout window.
// "Locked" is derived from lockout_until on every read and never cached.
type LockoutService struct {
	store  *CredentialStore
	logger *slog.Logger
	now    func() time.Time
}

func NewLockoutService(store *CredentialStore, logger *slog.Logger) *LockoutService {
	return &LockoutService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock replaces the time source
func (s *LockoutService) WithClock(now func() time.Time) *LockoutService {
	s.now = now
	return s
}

// GetFailedAttempts returns the persisted counter, 0 when absent or unreadable
func (s *LockoutService) GetFailedAttempts(ctx context.Context) int {
	raw, ok := s.store.Get(ctx, KeyFailedAttempts)
	if !ok {
		return 0
	}

	attempts, err := strconv.Atoi(raw)
	if err != nil || attempts < 0 {
		s.logger.Warn("ignoring malformed failed attempt counter", slog.String("value", raw))
		return 0
	}
	return attempts
}

// RecordFailedAttempt increments the counter and opens the lockout window at the threshold
func (s *LockoutService) RecordFailedAttempt(ctx context.Context) models.AttemptStatus {
	attempts := s.GetFailedAttempts(ctx) + 1

	if err := s.store.Set(ctx, KeyFailedAttempts, strconv.Itoa(attempts)); err != nil {
		return models.AttemptStatus{}
	}

	if attempts < MaxFailedAttempts {
		return models.AttemptStatus{Attempts: attempts}
	}

	lockoutUntil := s.now().Add(LockoutWindow).UnixMilli()
	if err := s.store.Set(ctx, KeyLockoutUntil, strconv.FormatInt(lockoutUntil, 10)); err != nil {
		return models.AttemptStatus{}
	}

	s.logger.Warn("biometric authentication locked",
		slog.Int("failed_attempts", attempts),
		slog.Duration("lockout_duration", LockoutWindow))

	return models.AttemptStatus{
		Locked:          true,
		Attempts:        attempts,
		LockoutDuration: int(LockoutWindow / time.Minute),
	}
}

// IsLockedOut compares now with lockout_until. An expired window is cleared as a side effect.
func (s *LockoutService) IsLockedOut(ctx context.Context) models.LockoutStatus {
	raw, ok := s.store.Get(ctx, KeyLockoutUntil)
	if !ok {
		return models.LockoutStatus{}
	}

	until, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		s.logger.Warn("ignoring malformed lockout timestamp", slog.String("value", raw))
		return models.LockoutStatus{}
	}

	remaining := time.UnixMilli(until).Sub(s.now())
	if remaining > 0 {
		return models.LockoutStatus{
			Locked:        true,
			RemainingTime: models.RemainingMinutes(remaining),
		}
	}

	s.ResetFailedAttempts(ctx)
	return models.LockoutStatus{}
}

// ResetFailedAttempts clears both persisted keys; failures are only logged
func (s *LockoutService) ResetFailedAttempts(ctx context.Context) {
	_ = s.store.RemoveMany(ctx, []string{KeyFailedAttempts, KeyLockoutUntil})
}
