package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/arklim/token-revocation/internal/core/domain"
	"github.com/arklim/token-revocation/internal/core/port"
	"github.com/arklim/token-revocation/internal/infra/logger"
	"github.com/arklim/token-revocation/internal/repository"
)

const tracerName = "token-revocation/usecase"

// RevocationService is the caller-facing revocation API. The authentication
// layer calls Revoke when a token is invalidated and IsRevoked on every
// token-authenticated request before trusting the token.
type RevocationService struct {
	store   port.RevocationStore
	policy  domain.FallbackPolicy
	metrics port.RevocationMetrics
	logger  *zap.Logger
	tracer  trace.Tracer
}

// NewRevocationService wires the selected store and failure policy into a service.
func NewRevocationService(store port.RevocationStore, policy domain.FallbackPolicy, log *zap.Logger) *RevocationService {
	return &RevocationService{
		store:  store,
		policy: policy,
		logger: log,
		tracer: otel.Tracer(tracerName),
	}
}

// WithMetrics attaches telemetry hooks for revocation operations.
func (s *RevocationService) WithMetrics(metrics port.RevocationMetrics) *RevocationService {
	s.metrics = metrics
	return s
}

// Revoke records the JTI as revoked for the remaining token lifetime. Failures
// to record a revocation are surfaced: a logout that silently failed to stick
// would leave a live token the caller believes is dead.
func (s *RevocationService) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	ctx, span := s.tracer.Start(ctx, "revocation.revoke")
	defer span.End()

	if err := s.store.MarkRevoked(ctx, jti, ttl); err != nil {
		span.RecordError(err)
		return fmt.Errorf("mark revoked: %w", err)
	}

	if s.metrics != nil {
		s.metrics.IncMark()
	}
	s.logger.Info("token revoked",
		zap.String("jti", logger.MaskString(jti)),
		zap.Duration("ttl", ttl),
	)
	return nil
}

// IsRevoked reports whether the token must be rejected. When the backend fails
// to answer, the configured fallback policy resolves the verdict instead of
// propagating the failure: fail-closed treats the token as revoked, fail-open
// as not revoked. Invalid arguments are still reported as errors.
func (s *RevocationService) IsRevoked(ctx context.Context, jti string) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "revocation.check")
	defer span.End()

	start := time.Now()
	revoked, err := s.store.IsRevoked(ctx, jti)
	if s.metrics != nil {
		s.metrics.ObserveCheckDuration(time.Since(start))
	}

	if err != nil {
		span.RecordError(err)
		if errors.Is(err, repository.ErrInvalidArgument) {
			return false, err
		}

		if s.metrics != nil {
			s.metrics.IncCheckError()
		}
		verdict := s.policy.VerdictOnFailure()
		s.logger.Warn("revocation check failed, applying fallback policy",
			zap.String("jti", logger.MaskString(jti)),
			zap.String("policy", string(s.policy.Mode())),
			zap.Bool("verdict_revoked", verdict),
			zap.Error(err),
		)
		return verdict, nil
	}

	if s.metrics != nil {
		if revoked {
			s.metrics.IncCheckHit()
		} else {
			s.metrics.IncCheckMiss()
		}
	}
	return revoked, nil
}
