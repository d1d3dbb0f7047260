package usecase

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/arklim/token-revocation/internal/core/port"
	"github.com/arklim/token-revocation/internal/infra/config"
	redisinfra "github.com/arklim/token-revocation/internal/infra/redis"
	memoryrepo "github.com/arklim/token-revocation/internal/repository/memory"
	redisrepo "github.com/arklim/token-revocation/internal/repository/redis"
)

// Backend names reported by the provider.
const (
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// StoreProvider selects the revocation store exactly once, on first use. When
// no Redis URL is configured, or the configured backend cannot be reached
// during the startup probe, the in-memory table is substituted silently; store
// selection is never the reason a revocation check becomes unavailable.
//
// The provider is constructed during app wiring and handed to callers by
// reference, so the "construct once" behaviour is an explicit dependency
// rather than package state.
type StoreProvider struct {
	cfg    *config.AppConfig
	logger *zap.Logger

	once    sync.Once
	store   port.RevocationStore
	backend string
	client  *redisinfra.Client
}

// NewStoreProvider wires configuration and logging into a provider. Selection
// is deferred until the first Store call.
func NewStoreProvider(cfg *config.AppConfig, logger *zap.Logger) *StoreProvider {
	return &StoreProvider{cfg: cfg, logger: logger}
}

// Store returns the process-wide revocation store, performing at-most-once
// selection on first call. Concurrent first callers observe the same instance.
func (p *StoreProvider) Store() port.RevocationStore {
	p.once.Do(p.selectStore)
	return p.store
}

// Backend reports which store was selected. It forces selection when the
// provider has not been used yet.
func (p *StoreProvider) Backend() string {
	p.once.Do(p.selectStore)
	return p.backend
}

// HealthCheck verifies the selected backend is responsive. The in-memory table
// is always healthy.
func (p *StoreProvider) HealthCheck(ctx context.Context) error {
	p.once.Do(p.selectStore)
	if p.client == nil {
		return nil
	}
	return p.client.HealthCheck(ctx)
}

// Close releases the Redis connection pool when one was selected.
func (p *StoreProvider) Close() error {
	if p.client == nil {
		return nil
	}
	return p.client.Close()
}

func (p *StoreProvider) selectStore() {
	if p.cfg.Redis.URL == "" {
		p.logger.Info("redis not configured, using in-memory revocation table")
		p.store = memoryrepo.NewRevocationTable()
		p.backend = BackendMemory
		return
	}

	client, err := redisinfra.NewClient(p.cfg.Redis, p.logger)
	if err != nil {
		p.logger.Warn("redis unreachable, falling back to in-memory revocation table",
			zap.Error(err),
		)
		p.store = memoryrepo.NewRevocationTable()
		p.backend = BackendMemory
		return
	}

	p.client = client
	p.store = redisrepo.NewRevocationRepository(client.Client(), p.cfg.Redis.KeyPrefix)
	p.backend = BackendRedis
}
