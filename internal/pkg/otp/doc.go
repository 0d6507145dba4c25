// Package otp generates the one-time numeric codes used to prove control of
// an email address within a bounded time window.
//
// Codes are random (not derived from a shared secret); matching and attempt
// accounting happen against the persisted challenge record.
package otp
