package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/arklim/token-revocation/internal/core/domain"
	"github.com/arklim/token-revocation/internal/core/port"
	"github.com/arklim/token-revocation/internal/repository"
)

// RevocationTable is the in-process fallback store used when no Redis backend
// is configured or reachable. It keeps explicit expiry bookkeeping under a
// single mutex; expired entries are lazily purged on the next access to their
// key rather than swept in the background. It never fails for reasons other
// than argument validation.
type RevocationTable struct {
	mu      sync.Mutex
	entries map[string]domain.RevocationEntry
	now     func() time.Time
}

// NewRevocationTable constructs an empty in-memory revocation table.
func NewRevocationTable() *RevocationTable {
	return &RevocationTable{
		entries: make(map[string]domain.RevocationEntry),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the internal clock for deterministic testing.
func (t *RevocationTable) WithClock(clock func() time.Time) *RevocationTable {
	if clock != nil {
		t.mu.Lock()
		defer t.mu.Unlock()
		t.now = clock
	}
	return t
}

// MarkRevoked inserts or overwrites the entry for the JTI with a deadline ttl
// from now. Last write wins: an earlier, longer ttl does not linger past a
// rewrite. A negative ttl is rejected; a zero ttl stores an already-lapsed
// entry, observably absent on the next check.
func (t *RevocationTable) MarkRevoked(_ context.Context, jti string, ttl time.Duration) error {
	key := strings.TrimSpace(jti)
	if key == "" {
		return fmt.Errorf("%w: jti must not be empty", repository.ErrInvalidArgument)
	}
	if ttl < 0 {
		return fmt.Errorf("%w: ttl must not be negative", repository.ErrInvalidArgument)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries[key] = domain.NewRevocationEntry(key, t.now(), ttl)
	return nil
}

// IsRevoked reports whether a live entry exists for the JTI. An entry whose
// deadline has passed is deleted on the spot and reported absent; the deadline
// instant itself already counts as expired.
func (t *RevocationTable) IsRevoked(_ context.Context, jti string) (bool, error) {
	key := strings.TrimSpace(jti)
	if key == "" {
		return false, fmt.Errorf("%w: jti must not be empty", repository.ErrInvalidArgument)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.entries[key]
	if !ok {
		return false, nil
	}
	if entry.ExpiredAt(t.now()) {
		// Expired entries are lazily pruned on access.
		delete(t.entries, key)
		return false, nil
	}
	return true, nil
}

// Len returns the number of physically present entries, including any whose
// deadline has passed but which no check has touched yet.
func (t *RevocationTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

var _ port.RevocationStore = (*RevocationTable)(nil)
