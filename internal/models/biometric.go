package models

// BiometryType is the modality reported by the platform sensor
type BiometryType string

const (
	BiometryTouchID    BiometryType = "TouchID"
	BiometryFaceID     BiometryType = "FaceID"
	BiometryBiometrics BiometryType = "Biometrics"
)

// SensorAvailability is the result of a platform capability query
type SensorAvailability struct {
	Available    bool         `json:"available"`
	BiometryType BiometryType `json:"biometryType,omitempty"`
}

// BiometricStatus is what the biometric setup view needs to render
type BiometricStatus struct {
	Available    bool         `json:"available"`
	BiometryType BiometryType `json:"biometryType,omitempty"`
	Enabled      bool         `json:"enabled"`
}

// BiometricAuthResult is the structured outcome of a biometric authentication.
// Err carries the matching sentinel so callers can use errors.Is.
type BiometricAuthResult struct {
	Success       bool           `json:"success"`
	Error         string         `json:"error,omitempty"`
	LockoutStatus *AttemptStatus `json:"lockoutStatus,omitempty"`
	Err           error          `json:"-"`
}
