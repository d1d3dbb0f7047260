package domain

import "strings"

// FallbackPolicyMode enumerates supported behaviors when a revocation lookup fails mid-flight.
type FallbackPolicyMode string

const (
	// FallbackPolicyModeFailClosed answers "revoked" whenever revocation state cannot be confirmed.
	FallbackPolicyModeFailClosed FallbackPolicyMode = "fail_closed"
	// FallbackPolicyModeFailOpen answers "not revoked" whenever revocation state cannot be confirmed.
	FallbackPolicyModeFailOpen FallbackPolicyMode = "fail_open"
)

// FallbackPolicy centralises how the service answers revocation checks when the
// selected backend errors after startup. The default is fail-closed: a token
// whose revocation state is unknown is treated as revoked.
type FallbackPolicy struct {
	mode FallbackPolicyMode
}

// NewFallbackPolicy constructs a policy with the provided mode, defaulting to fail-closed when unspecified.
func NewFallbackPolicy(mode FallbackPolicyMode) FallbackPolicy {
	if mode != FallbackPolicyModeFailOpen {
		mode = FallbackPolicyModeFailClosed
	}
	return FallbackPolicy{mode: mode}
}

// ParseFallbackPolicyMode normalises textual input into a supported policy mode.
func ParseFallbackPolicyMode(value string) FallbackPolicyMode {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case string(FallbackPolicyModeFailOpen):
		return FallbackPolicyModeFailOpen
	default:
		return FallbackPolicyModeFailClosed
	}
}

// Mode returns the underlying policy mode.
func (p FallbackPolicy) Mode() FallbackPolicyMode {
	return p.mode
}

// IsFailClosed indicates whether unconfirmed revocation state rejects the token.
func (p FallbackPolicy) IsFailClosed() bool {
	return p.mode != FallbackPolicyModeFailOpen
}

// VerdictOnFailure resolves the answer a revocation check gives when the
// backend could not be consulted.
func (p FallbackPolicy) VerdictOnFailure() bool {
	return p.IsFailClosed()
}
