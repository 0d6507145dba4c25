package otp

import (
	"crypto/rand"
	"math/big"
	"time"

	"github.com/pquerna/otp"
)

// Coder issues the short-lived numeric codes delivered to users out-of-band.
type Coder interface {
	// Generate returns a uniformly-random numeric code.
	Generate() (string, error)
	// Lifetime returns how long a generated code stays valid.
	Lifetime() time.Duration
}

// Numeric implements Coder with fixed-length random numeric codes.
//
// Codes never start with zero, so the printed form always has exactly the
// configured number of digits.
type Numeric struct {
	digits   otp.Digits
	lifetime time.Duration
}

// NewNumeric constructs a Numeric code generator.
//
// If digits is not 6 or 8, it falls back to 6 digits. If lifetime is not
// positive, it uses 10 minutes.
func NewNumeric(digits otp.Digits, lifetime time.Duration) *Numeric {
	if digits != otp.DigitsSix && digits != otp.DigitsEight {
		digits = otp.DigitsSix
	}

	if lifetime <= 0 {
		lifetime = 10 * time.Minute
	}

	return &Numeric{
		digits:   digits,
		lifetime: lifetime,
	}
}

// Generate returns a uniformly-random numeric code read from crypto/rand.
func (o *Numeric) Generate() (string, error) {
	min := int64(1)
	for range o.digits.Length() - 1 {
		min *= 10
	}

	// Uniform over [min, 10*min), e.g. [100000, 1000000) for six digits.
	n, err := rand.Int(rand.Reader, big.NewInt(9*min))
	if err != nil {
		return "", err
	}

	return o.digits.Format(int32(n.Int64() + min)), nil
}

// Lifetime returns the validity window for generated codes.
func (o *Numeric) Lifetime() time.Duration {
	return o.lifetime
}
