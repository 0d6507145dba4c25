package jwt

import (
	"errors"
	"testing"
	"time"
)

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

type fakeUUID struct{}

func (fakeUUID) Generate() string { return "0198b7a0-0000-7000-8000-000000000000" }

func newTestJWT(t *testing.T, ttl time.Duration, clk clocker) *Symmetric {
	t.Helper()

	secret := make([]byte, 64)
	for i := range secret {
		secret[i] = byte(i)
	}

	j, err := NewHS512(Config{
		Secret:    secret,
		Issuer:    "hireline",
		Audiences: []string{"hireline-api"},
		TTL:       ttl,
		Clock:     clk,
		UUID:      fakeUUID{},
	})
	if err != nil {
		t.Fatalf("NewHS512() error = %v", err)
	}

	return j
}

func TestNewHS512(t *testing.T) {
	t.Run("RejectsShortSecret", func(t *testing.T) {
		// Arrange
		cfg := Config{Secret: []byte("too short")}

		// Act
		_, err := NewHS512(cfg)

		// Assert
		if !errors.Is(err, ErrSigningKeyTooShort) {
			t.Fatalf("NewHS512() error = %v, want %v", err, ErrSigningKeyTooShort)
		}
	})
}

func TestSymmetricGenerateVerify(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		// Arrange
		clk := &fakeClock{now: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
		j := newTestJWT(t, 15*time.Minute, clk)

		// Act
		token, err := j.Generate(42, "ana@example.com", "employer")
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}

		claims, err := j.Verify(token)

		// Assert
		if err != nil {
			t.Fatalf("Verify() error = %v", err)
		}
		if claims.UserID != 42 {
			t.Errorf("claims.UserID = %d, want 42", claims.UserID)
		}
		if claims.UserEmail != "ana@example.com" {
			t.Errorf("claims.UserEmail = %q, want %q", claims.UserEmail, "ana@example.com")
		}
		if claims.UserRole != "employer" {
			t.Errorf("claims.UserRole = %q, want %q", claims.UserRole, "employer")
		}
		if claims.Subject != "42" {
			t.Errorf("claims.Subject = %q, want %q", claims.Subject, "42")
		}
	})

	t.Run("ExpiredAfterTTL", func(t *testing.T) {
		// Arrange
		clk := &fakeClock{now: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
		j := newTestJWT(t, 15*time.Minute, clk)

		token, err := j.Generate(42, "ana@example.com", "user")
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}

		// Act
		clk.now = clk.now.Add(16 * time.Minute)
		_, err = j.Verify(token)

		// Assert
		if !errors.Is(err, ErrTokenExpired) {
			t.Fatalf("Verify() error = %v, want %v", err, ErrTokenExpired)
		}
	})

	t.Run("ValidJustBeforeTTL", func(t *testing.T) {
		// Arrange
		clk := &fakeClock{now: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
		j := newTestJWT(t, 15*time.Minute, clk)

		token, err := j.Generate(42, "ana@example.com", "user")
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}

		// Act
		clk.now = clk.now.Add(14 * time.Minute)
		_, err = j.Verify(token)

		// Assert
		if err != nil {
			t.Fatalf("Verify() error = %v, want nil", err)
		}
	})

	t.Run("RejectsTokenFromOtherClass", func(t *testing.T) {
		// Arrange
		clk := &fakeClock{now: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
		access := newTestJWT(t, 15*time.Minute, clk)

		otherSecret := make([]byte, 64)
		for i := range otherSecret {
			otherSecret[i] = byte(64 - i)
		}
		refresh, err := NewHS512(Config{
			Secret:    otherSecret,
			Issuer:    "hireline",
			Audiences: []string{"hireline-api"},
			TTL:       7 * 24 * time.Hour,
			Clock:     clk,
			UUID:      fakeUUID{},
		})
		if err != nil {
			t.Fatalf("NewHS512() error = %v", err)
		}

		token, err := refresh.Generate(42, "", "user")
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}

		// Act
		_, err = access.Verify(token)

		// Assert
		if !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("Verify() error = %v, want %v", err, ErrInvalidToken)
		}
	})

	t.Run("RejectsGarbage", func(t *testing.T) {
		// Arrange
		clk := &fakeClock{now: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
		j := newTestJWT(t, 15*time.Minute, clk)

		// Act
		_, err := j.Verify("not.a.token")

		// Assert
		if !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("Verify() error = %v, want %v", err, ErrInvalidToken)
		}
	})
}
