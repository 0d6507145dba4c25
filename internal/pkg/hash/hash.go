package hash

// Hash abstracts a one-way hashing scheme with verification.
type Hash interface {
	// Hash derives a hash from the plaintext.
	Hash(plaintext string) ([]byte, error)
	// Verify reports whether plaintext matches the previously derived hash.
	Verify(hashed, plaintext string) bool
}
