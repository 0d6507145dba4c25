package entity

import (
	"time"
)

// OtpChallenge is the single outstanding verification challenge for an email.
// A new request replaces the previous challenge wholesale.
type OtpChallenge struct {
	Email     string
	Code      string // HMAC digest of the issued code, never the plaintext
	CreatedAt time.Time
	ExpiresAt time.Time
	Attempts  int64
	Verified  bool
}

// Expired reports whether the challenge is past its expiry at the given time.
func (c OtpChallenge) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
