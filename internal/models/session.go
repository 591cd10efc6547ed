package models

// Screen identifies which view the UI shell should render
type Screen string

const (
	ScreenLogin    Screen = "login"
	ScreenRegister Screen = "register"
	ScreenProfile  Screen = "profile"
)

// Valid reports whether s is one of the known screens
func (s Screen) Valid() bool {
	switch s {
	case ScreenLogin, ScreenRegister, ScreenProfile:
		return true
	}
	return false
}

// PrimaryAction is what the login screen's main button does
type PrimaryAction string

const (
	ActionSubmitForm     PrimaryAction = "submit_form"
	ActionBiometricLogin PrimaryAction = "biometric_login"
)

// SessionState is a snapshot of the application session
type SessionState struct {
	CurrentScreen Screen `json:"currentScreen"`
	IsLoggedIn    bool   `json:"isLoggedIn"`
	CurrentUser   *User  `json:"currentUser"`
	Loading       bool   `json:"loading"`
}

// RegisterResult mirrors the result the registration screen expects
type RegisterResult struct {
	Success bool `json:"success"`
}

// LoginResult describes how a login screen submission was handled
type LoginResult struct {
	Action         PrimaryAction        `json:"action"`
	FailedAttempts int                  `json:"failedAttempts"`
	Biometric      *BiometricAuthResult `json:"biometric,omitempty"`
}
