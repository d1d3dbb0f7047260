package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/arklim/token-revocation/internal/core/domain"
	"github.com/arklim/token-revocation/internal/infra/config"
	"github.com/arklim/token-revocation/internal/infra/logger"
	"github.com/arklim/token-revocation/internal/infra/telemetry"
	"github.com/arklim/token-revocation/internal/usecase"
)

// Application owns the wired revocation service, the selected store and the
// ops HTTP endpoints (health, readiness, metrics). It exposes no revocation
// wire protocol; callers consume the service in-process.
type Application struct {
	cfg      *config.AppConfig
	engine   *gin.Engine
	logger   *zap.Logger
	provider *usecase.StoreProvider
	tracing  *telemetry.TracerProvider
	service  *usecase.RevocationService
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	var tracing *telemetry.TracerProvider
	if cfg.Telemetry.OTLPEndpoint != "" {
		tracing, err = telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
		if err != nil {
			return nil, fmt.Errorf("init tracing: %w", err)
		}
	}

	metrics, err := telemetry.NewRevocationMetrics(telemetry.MetricsOptions{})
	if err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	provider := usecase.NewStoreProvider(cfg, log)
	metrics.SetBackend(provider.Backend())

	policy := domain.NewFallbackPolicy(domain.ParseFallbackPolicyMode(cfg.Revocation.FallbackPolicy))
	service := usecase.NewRevocationService(provider.Store(), policy, log).
		WithMetrics(metrics)

	log.Info("revocation service initialized",
		zap.String("instance_id", uuid.NewString()),
		zap.String("backend", provider.Backend()),
		zap.String("fallback_policy", string(policy.Mode())),
	)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/readyz", func(c *gin.Context) {
		if err := provider.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "degraded",
				"backend": provider.Backend(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "ready",
			"backend": provider.Backend(),
		})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return &Application{
		cfg:      cfg,
		engine:   engine,
		logger:   log,
		provider: provider,
		tracing:  tracing,
		service:  service,
	}, nil
}

// Service returns the wired revocation service for in-process callers.
func (a *Application) Service() *usecase.RevocationService {
	return a.service
}

// Run serves the ops endpoints until the context is cancelled, then shuts down
// gracefully and releases the selected backend.
func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		_ = a.provider.Close()
	}()
	if a.tracing != nil {
		defer func() {
			_ = a.tracing.Shutdown(context.Background())
		}()
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler: a.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	a.logger.Info("ops endpoints listening", zap.String("address", srv.Addr))

	select {
	case err := <-errCh:
		return fmt.Errorf("ops server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown ops server: %w", err)
	}
	return nil
}
