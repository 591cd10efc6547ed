package auth

import (
	"crypto/ecdsa"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ChallengeTTL bounds how long a signed challenge is accepted
const ChallengeTTL = time.Minute

// ChallengeClaims is the payload the sensor signs after the user proves presence
type ChallengeClaims struct {
	Nonce  string `json:"nonce"`
	Prompt string `json:"prompt,omitempty"`
	jwt.RegisteredClaims
}

// NewChallenge returns a fresh nonce for one authentication attempt
func NewChallenge() string {
	return uuid.New().String()
}

// SignChallenge produces the ES256 signature a sensor hands back for a nonce
func SignChallenge(key *ecdsa.PrivateKey, nonce, prompt string, now time.Time) (string, error) {
	claims := &ChallengeClaims{
		Nonce:  nonce,
		Prompt: prompt,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        nonce,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ChallengeTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodES256, claims).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("failed to sign challenge: %w", err)
	}
	return signed, nil
}

// VerifyChallenge checks a signature against the enrolled public key and the expected nonce
func VerifyChallenge(publicKeyPEM, signature, nonce string) error {
	publicKey, err := jwt.ParseECPublicKeyFromPEM([]byte(publicKeyPEM))
	if err != nil {
		return fmt.Errorf("invalid public key: %w", err)
	}

	claims := &ChallengeClaims{}
	token, err := jwt.ParseWithClaims(signature, claims, func(token *jwt.Token) (interface{}, error) {
		return publicKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodES256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return fmt.Errorf("failed to parse challenge: %w", err)
	}

	if !token.Valid {
		return fmt.Errorf("invalid challenge signature")
	}

	if claims.Nonce != nonce {
		return fmt.Errorf("challenge nonce mismatch")
	}

	return nil
}
