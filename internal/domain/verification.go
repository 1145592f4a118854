package domain

import "time"

// VerificationCode is the one active login code for an identifier.
// Only the bcrypt hash of the code is kept; the plain code leaves the
// process once, in the email (or inline fallback) at issue time.
// A zero ExpiresAt means the code never expires.
type VerificationCode struct {
	Identifier string    `json:"identifier"`
	CodeHash   string    `json:"code_hash"`
	IssuedAt   time.Time `json:"issued_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Expired reports whether the code is past its expiry at now.
func (v *VerificationCode) Expired(now time.Time) bool {
	return !v.ExpiresAt.IsZero() && now.After(v.ExpiresAt)
}
