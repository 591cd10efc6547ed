package models

import "time"

// AttemptStatus is the outcome of recording a failed authentication attempt
type AttemptStatus struct {
	Locked          bool `json:"locked"`
	Attempts        int  `json:"attempts"`
	LockoutDuration int  `json:"lockoutDuration"` // minutes, 0 when not locked
}

// LockoutStatus reports whether attempts are currently blocked
type LockoutStatus struct {
	Locked        bool `json:"locked"`
	RemainingTime int  `json:"remainingTime"` // minutes, rounded up
}

// RemainingMinutes rounds a remaining lockout interval up to whole minutes
func RemainingMinutes(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	minutes := int(d / time.Minute)
	if d%time.Minute != 0 {
		minutes++
	}
	return minutes
}
