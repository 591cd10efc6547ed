package auth

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"sync"
	"time"

	"github.com/BradenHooton/lockbox/internal/models"
)

// ChallengeResult is the sensor's answer to a signature prompt
type ChallengeResult struct {
	Success   bool
	Signature string
	Error     string
}

// Sensor is the platform biometric capability
type Sensor interface {
	CheckAvailability(ctx context.Context) (models.SensorAvailability, error)
	// CreateKeyMaterial generates a key pair and returns the PEM encoded public key
	CreateKeyMaterial(ctx context.Context) (string, error)
	// Challenge prompts the user and signs payload with the private key on success
	Challenge(ctx context.Context, prompt, payload string) (ChallengeResult, error)
	DeleteKeyMaterial(ctx context.Context) error
}

// SimulatorMode decides how SoftwareSensor answers prompts
type SimulatorMode string

const (
	SimulatorApprove     SimulatorMode = "approve"
	SimulatorDeny        SimulatorMode = "deny"
	SimulatorUnavailable SimulatorMode = "unavailable"
)

// SoftwareSensor stands in for platform biometrics on hosts without one.
// Keys live in memory only and are gone after a restart.
type SoftwareSensor struct {
	mu           sync.Mutex
	mode         SimulatorMode
	biometryType models.BiometryType
	key          *ecdsa.PrivateKey
	now          func() time.Time
}

func NewSoftwareSensor(mode SimulatorMode, biometryType models.BiometryType) *SoftwareSensor {
	return &SoftwareSensor{
		mode:         mode,
		biometryType: biometryType,
		now:          time.Now,
	}
}

// SetMode switches the simulated user response
func (s *SoftwareSensor) SetMode(mode SimulatorMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = mode
}

func (s *SoftwareSensor) CheckAvailability(ctx context.Context) (models.SensorAvailability, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode == SimulatorUnavailable {
		return models.SensorAvailability{}, nil
	}
	return models.SensorAvailability{Available: true, BiometryType: s.biometryType}, nil
}

func (s *SoftwareSensor) CreateKeyMaterial(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode == SimulatorUnavailable {
		return "", models.ErrSensorUnavailable
	}

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return "", fmt.Errorf("failed to generate key pair: %w", err)
	}

	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return "", fmt.Errorf("failed to encode public key: %w", err)
	}

	s.key = key
	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})), nil
}

func (s *SoftwareSensor) Challenge(ctx context.Context, prompt, payload string) (ChallengeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.mode {
	case SimulatorUnavailable:
		return ChallengeResult{}, models.ErrSensorUnavailable
	case SimulatorDeny:
		return ChallengeResult{Error: "User cancelled"}, nil
	}

	if s.key == nil {
		return ChallengeResult{Error: "Key not found"}, nil
	}

	signature, err := SignChallenge(s.key, payload, prompt, s.now())
	if err != nil {
		return ChallengeResult{}, err
	}
	return ChallengeResult{Success: true, Signature: signature}, nil
}

func (s *SoftwareSensor) DeleteKeyMaterial(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.key = nil
	return nil
}
