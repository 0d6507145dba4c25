package otp

import (
	"testing"
	"time"

	libotp "github.com/pquerna/otp"
)

func TestNumericGenerate(t *testing.T) {
	t.Run("SixDigits", func(t *testing.T) {
		gen := NewNumeric(libotp.DigitsSix, 10*time.Minute)

		for range 200 {
			code, err := gen.Generate()
			if err != nil {
				t.Fatalf("generate: %v", err)
			}
			if len(code) != 6 {
				t.Fatalf("expected 6-digit code, got %q", code)
			}
			if code[0] == '0' {
				t.Fatalf("code must not start with zero, got %q", code)
			}
			for _, r := range code {
				if r < '0' || r > '9' {
					t.Fatalf("non-numeric code %q", code)
				}
			}
		}
	})

	t.Run("FallbackDigits", func(t *testing.T) {
		gen := NewNumeric(libotp.Digits(4), 0)

		code, err := gen.Generate()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("expected fallback to 6 digits, got %q", code)
		}
		if gen.Lifetime() != 10*time.Minute {
			t.Fatalf("expected fallback lifetime 10m, got %v", gen.Lifetime())
		}
	})
}
