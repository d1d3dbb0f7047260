package port

import (
	"context"
	"time"
)

// RevocationStore caches token revocation flags for rapid access-token checks.
//
// Both implementations honour the same contract: MarkRevoked records the JTI as
// revoked for at least ttl from now, overwriting any previous entry for the
// same JTI; IsRevoked reports whether a non-expired entry exists and returns
// false, not an error, for unknown or expired identifiers. A zero ttl stores an
// entry that is observably not revoked immediately afterwards.
type RevocationStore interface {
	MarkRevoked(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// RevocationMetrics captures telemetry hooks for revocation operations.
type RevocationMetrics interface {
	IncCheckHit()
	IncCheckMiss()
	IncCheckError()
	IncMark()
	ObserveCheckDuration(duration time.Duration)
}
