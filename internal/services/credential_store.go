package services

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/BradenHooton/lockbox/internal/models"
	"github.com/BradenHooton/lockbox/internal/repositories"
)

// Persisted key names
const (
	KeyIsLoggedIn         = "isLoggedIn"
	KeyCurrentUser        = "currentUser"
	KeyFailedAttempts     = "failed_attempts"
	KeyLockoutUntil       = "lockout_until"
	KeyBiometricEnabled   = "biometric_enabled"
	KeyBiometricPublicKey = "biometric_public_key"
	KeyRegisteredUser     = "registeredUser"
)

// CredentialStore is typed access to the local key-value storage.
// Reads fail open: a storage error is logged and reported as an absent key.
type CredentialStore struct {
	store  repositories.KeyValueStore
	logger *slog.Logger
}

func NewCredentialStore(store repositories.KeyValueStore, logger *slog.Logger) *CredentialStore {
	return &CredentialStore{
		store:  store,
		logger: logger,
	}
}

func (s *CredentialStore) Get(ctx context.Context, key string) (string, bool) {
	value, ok, err := s.store.Get(ctx, key)
	if err != nil {
		s.logger.Error("storage read failed", slog.String("key", key), slog.Any("error", err))
		return "", false
	}
	return value, ok
}

func (s *CredentialStore) Set(ctx context.Context, key, value string) error {
	if err := s.store.Set(ctx, key, value); err != nil {
		s.logger.Error("storage write failed", slog.String("key", key), slog.Any("error", err))
		return err
	}
	return nil
}

func (s *CredentialStore) Remove(ctx context.Context, key string) error {
	if err := s.store.Remove(ctx, key); err != nil {
		s.logger.Error("storage remove failed", slog.String("key", key), slog.Any("error", err))
		return err
	}
	return nil
}

func (s *CredentialStore) RemoveMany(ctx context.Context, keys []string) error {
	if err := s.store.RemoveMany(ctx, keys); err != nil {
		s.logger.Error("storage remove failed", slog.Any("keys", keys), slog.Any("error", err))
		return err
	}
	return nil
}

// LoadUser decodes the user record under key; absent or corrupt records yield nil
func (s *CredentialStore) LoadUser(ctx context.Context, key string) *models.User {
	raw, ok := s.Get(ctx, key)
	if !ok {
		return nil
	}

	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		s.logger.Warn("discarding corrupt user record", slog.String("key", key), slog.Any("error", err))
		return nil
	}
	return &user
}

func (s *CredentialStore) SaveUser(ctx context.Context, key string, user *models.User) error {
	record := user.Clone()
	record.ConfirmPassword = ""

	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return s.Set(ctx, key, string(data))
}

// IsLoggedIn reports the persisted login flag; storage errors read as logged out
func (s *CredentialStore) IsLoggedIn(ctx context.Context) bool {
	value, ok := s.Get(ctx, KeyIsLoggedIn)
	return ok && value == "true"
}

func (s *CredentialStore) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
