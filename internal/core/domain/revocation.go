package domain

import "time"

// RevocationEntry records that a token identifier has been revoked until a deadline.
type RevocationEntry struct {
	// JTI is the unique identifier of the revoked token.
	JTI string
	// ExpiresAt is the instant the revocation lapses. The zero value means the
	// revocation never expires.
	ExpiresAt time.Time
}

// NewRevocationEntry builds an entry expiring ttl from now. A zero ttl yields an
// entry that is already expired at the reference instant.
func NewRevocationEntry(jti string, now time.Time, ttl time.Duration) RevocationEntry {
	return RevocationEntry{JTI: jti, ExpiresAt: now.Add(ttl)}
}

// ExpiredAt reports whether the entry has lapsed at the supplied instant. The
// exact deadline instant counts as expired: comparison is strict, so an entry
// whose ExpiresAt equals now is already gone.
func (e RevocationEntry) ExpiredAt(now time.Time) bool {
	if e.ExpiresAt.IsZero() {
		return false
	}
	return !e.ExpiresAt.After(now)
}
