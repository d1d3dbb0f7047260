package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	red "github.com/redis/go-redis/v9"

	"github.com/arklim/token-revocation/internal/repository"
)

func newTestRedis(t *testing.T) (*red.Client, *miniredis.Miniredis) {
	t.Helper()

	server, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := red.NewClient(&red.Options{Addr: server.Addr()})

	t.Cleanup(func() {
		_ = client.Close()
		server.Close()
	})

	return client, server
}

func TestRevocationRepository_MarkAndCheck(t *testing.T) {
	client, server := newTestRedis(t)
	repo := NewRevocationRepository(client, "blacklist")

	ctx := context.Background()
	ttl := time.Hour

	if err := repo.MarkRevoked(ctx, "abc123", ttl); err != nil {
		t.Fatalf("MarkRevoked returned error: %v", err)
	}

	revoked, err := repo.IsRevoked(ctx, "abc123")
	if err != nil {
		t.Fatalf("IsRevoked returned error: %v", err)
	}
	if !revoked {
		t.Fatalf("expected jti to be marked revoked")
	}

	revoked, err = repo.IsRevoked(ctx, "xyz999")
	if err != nil {
		t.Fatalf("IsRevoked returned error: %v", err)
	}
	if revoked {
		t.Fatalf("expected unknown jti to not be revoked")
	}

	remaining := server.TTL("blacklist:abc123")
	if remaining <= 0 || remaining > ttl {
		t.Fatalf("expected ttl within (0, %v], got %v", ttl, remaining)
	}
}

func TestRevocationRepository_Expiry(t *testing.T) {
	client, server := newTestRedis(t)
	repo := NewRevocationRepository(client, "blacklist")

	ctx := context.Background()
	if err := repo.MarkRevoked(ctx, "jti-short", time.Second); err != nil {
		t.Fatalf("MarkRevoked returned error: %v", err)
	}

	server.FastForward(1100 * time.Millisecond)

	revoked, err := repo.IsRevoked(ctx, "jti-short")
	if err != nil {
		t.Fatalf("IsRevoked returned error: %v", err)
	}
	if revoked {
		t.Fatalf("expected jti to have expired")
	}
}

func TestRevocationRepository_LastWriteWins(t *testing.T) {
	client, server := newTestRedis(t)
	repo := NewRevocationRepository(client, "blacklist")

	ctx := context.Background()
	if err := repo.MarkRevoked(ctx, "jti-overwrite", 10*time.Second); err != nil {
		t.Fatalf("MarkRevoked returned error: %v", err)
	}
	if err := repo.MarkRevoked(ctx, "jti-overwrite", time.Second); err != nil {
		t.Fatalf("MarkRevoked overwrite returned error: %v", err)
	}

	server.FastForward(1100 * time.Millisecond)

	revoked, err := repo.IsRevoked(ctx, "jti-overwrite")
	if err != nil {
		t.Fatalf("IsRevoked returned error: %v", err)
	}
	if revoked {
		t.Fatalf("expected the shorter rewrite ttl to win")
	}
}

func TestRevocationRepository_ZeroTTLIsImmediatelyExpired(t *testing.T) {
	client, server := newTestRedis(t)
	repo := NewRevocationRepository(client, "blacklist")

	ctx := context.Background()
	if err := repo.MarkRevoked(ctx, "jti-zero", 0); err != nil {
		t.Fatalf("MarkRevoked returned error: %v", err)
	}

	revoked, err := repo.IsRevoked(ctx, "jti-zero")
	if err != nil {
		t.Fatalf("IsRevoked returned error: %v", err)
	}
	if revoked {
		t.Fatalf("expected zero ttl to be observably not revoked")
	}
	if server.Exists("blacklist:jti-zero") {
		t.Fatalf("expected no key to be written for zero ttl")
	}
}

func TestRevocationRepository_ZeroTTLRewriteWinsOverLiveEntry(t *testing.T) {
	client, server := newTestRedis(t)
	repo := NewRevocationRepository(client, "blacklist")

	ctx := context.Background()
	if err := repo.MarkRevoked(ctx, "jti-rewrite", time.Hour); err != nil {
		t.Fatalf("MarkRevoked returned error: %v", err)
	}
	if err := repo.MarkRevoked(ctx, "jti-rewrite", 0); err != nil {
		t.Fatalf("MarkRevoked rewrite returned error: %v", err)
	}

	revoked, err := repo.IsRevoked(ctx, "jti-rewrite")
	if err != nil {
		t.Fatalf("IsRevoked returned error: %v", err)
	}
	if revoked {
		t.Fatalf("last write (zero ttl) must win over the earlier live entry")
	}
	if server.Exists("blacklist:jti-rewrite") {
		t.Fatalf("expected the earlier entry to be removed by the zero ttl rewrite")
	}
}

func TestRevocationRepository_InvalidInput(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewRevocationRepository(client, "blacklist")

	ctx := context.Background()
	if err := repo.MarkRevoked(ctx, "", time.Minute); !errors.Is(err, repository.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument for empty jti, got %v", err)
	}
	if err := repo.MarkRevoked(ctx, "jti", -time.Second); !errors.Is(err, repository.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument for negative ttl, got %v", err)
	}
	if _, err := repo.IsRevoked(ctx, "  "); !errors.Is(err, repository.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument for blank jti in IsRevoked, got %v", err)
	}
}

func TestRevocationRepository_BackendUnreachable(t *testing.T) {
	client, server := newTestRedis(t)
	repo := NewRevocationRepository(client, "blacklist")

	server.Close()

	ctx := context.Background()
	if err := repo.MarkRevoked(ctx, "jti-down", time.Minute); !errors.Is(err, repository.ErrBackendUnreachable) {
		t.Fatalf("expected backend unreachable from MarkRevoked, got %v", err)
	}
	if _, err := repo.IsRevoked(ctx, "jti-down"); !errors.Is(err, repository.ErrBackendUnreachable) {
		t.Fatalf("expected backend unreachable from IsRevoked, got %v", err)
	}
}
