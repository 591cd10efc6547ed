package auth

import "time"

// PresenceTTL is how long a verified biometric proof unlocks protected items
const PresenceTTL = 30 * time.Second

// Presence proves the user passed a biometric challenge moments ago
type Presence struct {
	nonce      string
	verifiedAt time.Time
}

func NewPresence(nonce string, verifiedAt time.Time) *Presence {
	return &Presence{nonce: nonce, verifiedAt: verifiedAt}
}

func (p *Presence) Nonce() string {
	if p == nil {
		return ""
	}
	return p.nonce
}

// Fresh reports whether the proof is still usable at now
func (p *Presence) Fresh(now time.Time) bool {
	if p == nil || p.nonce == "" || p.verifiedAt.IsZero() {
		return false
	}
	age := now.Sub(p.verifiedAt)
	return age >= 0 && age <= PresenceTTL
}
