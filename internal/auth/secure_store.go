package auth

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/BradenHooton/lockbox/internal/models"
)

// AccessControl names what the user must prove before an item is released
type AccessControl string

// Accessible names the device state an item can be read in
type Accessible string

const (
	AccessBiometryAny AccessControl = "BiometryAny"
	AccessNone        AccessControl = "None"

	AccessibleWhenUnlocked Accessible = "WhenUnlocked"
)

// SecureItemPrefix namespaces sealed items inside the key-value store
const SecureItemPrefix = "secure_item:"

type AccessPolicy struct {
	AccessControl AccessControl `json:"accessControl"`
	Accessible    Accessible    `json:"accessible"`
}

// BiometricPolicy is the policy stored credentials are written with
var BiometricPolicy = AccessPolicy{
	AccessControl: AccessBiometryAny,
	Accessible:    AccessibleWhenUnlocked,
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SecureItemStore is the platform keychain for generic passwords
type SecureItemStore interface {
	SetGenericPassword(ctx context.Context, service, username, password string, policy AccessPolicy) error
	// GetGenericPassword returns nil credentials when no item exists for service
	GetGenericPassword(ctx context.Context, service string, presence *Presence) (*Credentials, error)
	ResetGenericPassword(ctx context.Context, service string) error
}

// ItemBackend is the storage sealed items are written to
type ItemBackend interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

type sealedItem struct {
	Policy     AccessPolicy `json:"policy"`
	Nonce      []byte       `json:"nonce"`
	Ciphertext []byte       `json:"ciphertext"`
}

// SealedItemStore keeps AES-256-GCM sealed credentials in an ItemBackend
type SealedItemStore struct {
	backend ItemBackend
	aead    cipher.AEAD
	now     func() time.Time
}

// NewSealedItemStore creates a store sealing with key, which must be exactly 32 bytes
func NewSealedItemStore(backend ItemBackend, key []byte) (*SealedItemStore, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("encryption key must be exactly 32 bytes, got %d", len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &SealedItemStore{backend: backend, aead: aead, now: time.Now}, nil
}

func (s *SealedItemStore) SetGenericPassword(ctx context.Context, service, username, password string, policy AccessPolicy) error {
	plaintext, err := json.Marshal(Credentials{Username: username, Password: password})
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}

	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}

	// The service name is bound as associated data so items cannot be swapped between keys
	item := sealedItem{
		Policy:     policy,
		Nonce:      nonce,
		Ciphertext: s.aead.Seal(nil, nonce, plaintext, []byte(service)),
	}

	encoded, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to encode sealed item: %w", err)
	}

	return s.backend.Set(ctx, SecureItemPrefix+service, string(encoded))
}

func (s *SealedItemStore) GetGenericPassword(ctx context.Context, service string, presence *Presence) (*Credentials, error) {
	raw, ok, err := s.backend.Get(ctx, SecureItemPrefix+service)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var item sealedItem
	if err := json.Unmarshal([]byte(raw), &item); err != nil {
		return nil, fmt.Errorf("corrupt sealed item: %w", err)
	}

	if item.Policy.AccessControl == AccessBiometryAny && !presence.Fresh(s.now()) {
		return nil, models.ErrPresenceRequired
	}

	plaintext, err := s.aead.Open(nil, item.Nonce, item.Ciphertext, []byte(service))
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt item: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(plaintext, &creds); err != nil {
		return nil, fmt.Errorf("corrupt credentials: %w", err)
	}
	return &creds, nil
}

func (s *SealedItemStore) ResetGenericPassword(ctx context.Context, service string) error {
	return s.backend.Remove(ctx, SecureItemPrefix+service)
}
