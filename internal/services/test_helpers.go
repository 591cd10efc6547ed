package services

import (
	"context"
	"sync"

	"github.com/BradenHooton/lockbox/internal/auth"
	"github.com/BradenHooton/lockbox/internal/models"
	"github.com/BradenHooton/lockbox/internal/repositories"
)

// MockKeyValueStore implements repositories.KeyValueStore for testing.
// Calls without an override go to an in-memory store.
type MockKeyValueStore struct {
	GetFunc        func(ctx context.Context, key string) (string, bool, error)
	SetFunc        func(ctx context.Context, key, value string) error
	RemoveFunc     func(ctx context.Context, key string) error
	RemoveManyFunc func(ctx context.Context, keys []string) error
	PingFunc       func(ctx context.Context) error

	Memory *repositories.MemoryStore
}

func NewMockKeyValueStore() *MockKeyValueStore {
	return &MockKeyValueStore{Memory: repositories.NewMemoryStore()}
}

func (m *MockKeyValueStore) Get(ctx context.Context, key string) (string, bool, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	return m.Memory.Get(ctx, key)
}

func (m *MockKeyValueStore) Set(ctx context.Context, key, value string) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value)
	}
	return m.Memory.Set(ctx, key, value)
}

func (m *MockKeyValueStore) Remove(ctx context.Context, key string) error {
	if m.RemoveFunc != nil {
		return m.RemoveFunc(ctx, key)
	}
	return m.Memory.Remove(ctx, key)
}

func (m *MockKeyValueStore) RemoveMany(ctx context.Context, keys []string) error {
	if m.RemoveManyFunc != nil {
		return m.RemoveManyFunc(ctx, keys)
	}
	return m.Memory.RemoveMany(ctx, keys)
}

func (m *MockKeyValueStore) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}

// MockSensor implements auth.Sensor for testing.
// Calls without an override go to an approving software sensor.
type MockSensor struct {
	CheckAvailabilityFunc func(ctx context.Context) (models.SensorAvailability, error)
	CreateKeyMaterialFunc func(ctx context.Context) (string, error)
	ChallengeFunc         func(ctx context.Context, prompt, payload string) (auth.ChallengeResult, error)
	DeleteKeyMaterialFunc func(ctx context.Context) error

	Software *auth.SoftwareSensor

	mu            sync.Mutex
	challengeCall int
}

func NewMockSensor() *MockSensor {
	return &MockSensor{Software: auth.NewSoftwareSensor(auth.SimulatorApprove, models.BiometryBiometrics)}
}

func (m *MockSensor) CheckAvailability(ctx context.Context) (models.SensorAvailability, error) {
	if m.CheckAvailabilityFunc != nil {
		return m.CheckAvailabilityFunc(ctx)
	}
	return m.Software.CheckAvailability(ctx)
}

func (m *MockSensor) CreateKeyMaterial(ctx context.Context) (string, error) {
	if m.CreateKeyMaterialFunc != nil {
		return m.CreateKeyMaterialFunc(ctx)
	}
	return m.Software.CreateKeyMaterial(ctx)
}

func (m *MockSensor) Challenge(ctx context.Context, prompt, payload string) (auth.ChallengeResult, error) {
	m.mu.Lock()
	m.challengeCall++
	m.mu.Unlock()

	if m.ChallengeFunc != nil {
		return m.ChallengeFunc(ctx, prompt, payload)
	}
	return m.Software.Challenge(ctx, prompt, payload)
}

func (m *MockSensor) DeleteKeyMaterial(ctx context.Context) error {
	if m.DeleteKeyMaterialFunc != nil {
		return m.DeleteKeyMaterialFunc(ctx)
	}
	return m.Software.DeleteKeyMaterial(ctx)
}

// ChallengeCalls reports how many times the sensor was prompted
func (m *MockSensor) ChallengeCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.challengeCall
}

// MockSecureItemStore implements auth.SecureItemStore for testing
type MockSecureItemStore struct {
	SetGenericPasswordFunc   func(ctx context.Context, service, username, password string, policy auth.AccessPolicy) error
	GetGenericPasswordFunc   func(ctx context.Context, service string, presence *auth.Presence) (*auth.Credentials, error)
	ResetGenericPasswordFunc func(ctx context.Context, service string) error
}

func (m *MockSecureItemStore) SetGenericPassword(ctx context.Context, service, username, password string, policy auth.AccessPolicy) error {
	if m.SetGenericPasswordFunc != nil {
		return m.SetGenericPasswordFunc(ctx, service, username, password, policy)
	}
	return nil
}

func (m *MockSecureItemStore) GetGenericPassword(ctx context.Context, service string, presence *auth.Presence) (*auth.Credentials, error) {
	if m.GetGenericPasswordFunc != nil {
		return m.GetGenericPasswordFunc(ctx, service, presence)
	}
	return nil, nil
}

func (m *MockSecureItemStore) ResetGenericPassword(ctx context.Context, service string) error {
	if m.ResetGenericPasswordFunc != nil {
		return m.ResetGenericPasswordFunc(ctx, service)
	}
	return nil
}

// MockBiometricAuthenticator implements BiometricAuthenticator for testing
type MockBiometricAuthenticator struct {
	AuthenticateFunc func(ctx context.Context, prompt string) (models.BiometricAuthResult, *auth.Presence)
}

func (m *MockBiometricAuthenticator) Authenticate(ctx context.Context, prompt string) (models.BiometricAuthResult, *auth.Presence) {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx, prompt)
	}
	return models.BiometricAuthResult{Success: false, Error: "Authentication failed", Err: models.ErrBiometricFailed}, nil
}
