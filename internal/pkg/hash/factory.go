package hash

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// DriverBcrypt selects the bcrypt hasher.
	DriverBcrypt = "bcrypt"
	// DriverArgon2id selects the Argon2id hasher.
	DriverArgon2id = "argon2id"
)

// ErrUnknownDriver indicates an unsupported hash driver.
var ErrUnknownDriver = errors.New("hash: unknown driver")

// FactoryOptions groups configuration for hash drivers.
type FactoryOptions struct {
	// Bcrypt configures the bcrypt hasher.
	Bcrypt BcryptOptions
	// Argon2id configures the Argon2id hasher.
	Argon2id Argon2idOptions
}

// BcryptOptions configures the bcrypt hasher.
type BcryptOptions struct {
	Cost   int
	Pepper string
}

// Argon2idOptions configures the Argon2id hasher.
type Argon2idOptions struct {
	Pepper string
}

// NewFromDriver constructs a Hash implementation by driver name.
func NewFromDriver(driver string, opts FactoryOptions) (Hash, error) {
	switch strings.ToLower(driver) {
	case DriverBcrypt:
		return NewBcrypt(opts.Bcrypt.Cost, opts.Bcrypt.Pepper), nil
	case DriverArgon2id:
		return NewArgon2id(opts.Argon2id.Pepper), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}
}
