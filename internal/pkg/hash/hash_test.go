package hash

import (
	"testing"
)

func TestBcrypt(t *testing.T) {
	h := NewBcrypt(4, "pepper") // min cost keeps the test fast

	t.Run("HashAndVerify", func(t *testing.T) {
		hashed, err := h.Hash("Sup3rSecret!")
		if err != nil {
			t.Fatalf("hash: %v", err)
		}
		if string(hashed) == "Sup3rSecret!" {
			t.Fatal("hash must not equal the plaintext")
		}
		if !h.Verify(string(hashed), "Sup3rSecret!") {
			t.Fatal("verify must accept the original plaintext")
		}
		if h.Verify(string(hashed), "wrong") {
			t.Fatal("verify must reject a different plaintext")
		}
	})

	t.Run("PepperMatters", func(t *testing.T) {
		hashed, err := h.Hash("Sup3rSecret!")
		if err != nil {
			t.Fatalf("hash: %v", err)
		}

		other := NewBcrypt(4, "different-pepper")
		if other.Verify(string(hashed), "Sup3rSecret!") {
			t.Fatal("a different pepper must not verify")
		}
	})
}

func TestHMACSHA256(t *testing.T) {
	h := NewHMACSHA256("secret-key")

	t.Run("Deterministic", func(t *testing.T) {
		a, err := h.Hash("482913")
		if err != nil {
			t.Fatalf("hash: %v", err)
		}
		b, err := h.Hash("482913")
		if err != nil {
			t.Fatalf("hash: %v", err)
		}
		if string(a) != string(b) {
			t.Fatal("same input must produce the same digest")
		}
	})

	t.Run("Verify", func(t *testing.T) {
		digest, err := h.Hash("482913")
		if err != nil {
			t.Fatalf("hash: %v", err)
		}
		if !h.Verify(string(digest), "482913") {
			t.Fatal("verify must accept the original input")
		}
		if h.Verify(string(digest), "482914") {
			t.Fatal("verify must reject a different input")
		}
	})

	t.Run("KeyMatters", func(t *testing.T) {
		digest, err := h.Hash("482913")
		if err != nil {
			t.Fatalf("hash: %v", err)
		}
		if NewHMACSHA256("other-key").Verify(string(digest), "482913") {
			t.Fatal("a different key must not verify")
		}
	})
}

func TestArgon2id(t *testing.T) {
	h := NewArgon2id("pepper")

	t.Run("HashAndVerify", func(t *testing.T) {
		hashed, err := h.Hash("Sup3rSecret!")
		if err != nil {
			t.Fatalf("hash: %v", err)
		}
		if !h.Verify(string(hashed), "Sup3rSecret!") {
			t.Fatal("verify must accept the original plaintext")
		}
		if h.Verify(string(hashed), "wrong") {
			t.Fatal("verify must reject a different plaintext")
		}
	})

	t.Run("SaltedHashesDiffer", func(t *testing.T) {
		a, err := h.Hash("Sup3rSecret!")
		if err != nil {
			t.Fatalf("hash: %v", err)
		}
		b, err := h.Hash("Sup3rSecret!")
		if err != nil {
			t.Fatalf("hash: %v", err)
		}
		if string(a) == string(b) {
			t.Fatal("two hashes of the same input must use different salts")
		}
	})

	t.Run("MalformedHash", func(t *testing.T) {
		if h.Verify("not-an-argon2-hash", "anything") {
			t.Fatal("malformed hash must not verify")
		}
	})
}
