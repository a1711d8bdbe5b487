package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	historyhandler "tickethub/internal/history/handler"
	historymetrics "tickethub/internal/history/metrics"
	historyservice "tickethub/internal/history/service"
	identitymodels "tickethub/internal/identity/models"
	"tickethub/internal/identity/rolecache"
	jwttoken "tickethub/internal/jwt_token"
	"tickethub/internal/notify"
	"tickethub/internal/platform/config"
	"tickethub/internal/platform/httpserver"
	"tickethub/internal/platform/logger"
	"tickethub/internal/platform/metrics"
	"tickethub/internal/platform/redis"
	provisioninghandler "tickethub/internal/provisioning/handler"
	provisioningmetrics "tickethub/internal/provisioning/metrics"
	provisioningservice "tickethub/internal/provisioning/service"
	"tickethub/internal/ratelimit"
	"tickethub/pkg/secrets"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Server.LogLevel, cfg.Server.LogFormat)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	adminStatus, err := identitymodels.ParseStatus(cfg.Auth.AdminDefaultStatus)
	if err != nil {
		return err
	}
	trustedProxies, err := ratelimit.ParseTrustedProxies(cfg.RateLimit.TrustedProxies)
	if err != nil {
		return err
	}
	location := time.Local
	if cfg.History.Location != "" {
		if location, err = time.LoadLocation(cfg.History.Location); err != nil {
			return err
		}
	}

	st, err := openStores(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer st.Close()

	var (
		roleBackend rolecache.Backend
		rateStore   ratelimit.Store = ratelimit.NewInMemoryStore()
	)
	redisClient, err := redis.New(ctx, cfg.Redis, log)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		roleBackend = rolecache.NewRedisBackend(redisClient)
		rateStore = ratelimit.NewRedisStore(redisClient)
		st.checks["redis"] = redisPinger{redisClient}
	} else {
		log.Info("REDIS_URL not set, role cache and rate limits are in-process")
	}
	roles := rolecache.New(st.identity, roleBackend,
		rolecache.WithTTL(cfg.Redis.RoleCacheTTL),
		rolecache.WithLogger(log),
	)

	sink, err := newEventSink(ctx, cfg.Events, log)
	if err != nil {
		return err
	}
	dispatcher := notify.NewDispatcher(sink,
		notify.WithLogger(log),
		notify.WithBufferSize(cfg.Events.BufferSize),
		notify.WithPublishTimeout(cfg.Events.PublishTimeout),
	)
	dispatcher.Start()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := metrics.New(registry)

	tokens := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer)

	provisioning := provisioningservice.New(
		st.identity,
		roles,
		st.companies,
		st.tx,
		secrets.NewHasher(cfg.Auth.BcryptCost),
		tokens,
		provisioningservice.WithLogger(log),
		provisioningservice.WithMetrics(provisioningmetrics.New(registry)),
		provisioningservice.WithPublisher(dispatcher),
		provisioningservice.WithTokenTTLs(cfg.Auth.UserTokenTTL, cfg.Auth.AdminTokenTTL),
		provisioningservice.WithAdminDefaultStatus(adminStatus),
	)
	history := historyservice.New(st.identity, tokens, st.tickets,
		historyservice.WithLogger(log),
		historyservice.WithMetrics(historymetrics.New(registry)),
		historyservice.WithTimeout(cfg.History.Timeout),
		historyservice.WithEnrichConcurrency(cfg.History.EnrichConcurrency),
		historyservice.WithLocation(location),
	)

	router := newRouter(log, registry, st.checks,
		provisioninghandler.New(provisioning, tokens, log, httpMetrics, cfg.Server.AdminAPIToken,
			provisioninghandler.WithRateLimiter(ratelimit.NewLimiter(rateStore, cfg.RateLimit.AuthLimit, cfg.RateLimit.Window, log,
				ratelimit.WithTrustedProxies(trustedProxies),
			)),
		),
		historyhandler.New(history, log, httpMetrics, cfg.Server.AdminAPIToken),
	)
	srv := httpserver.New(cfg.Server.Addr, router, cfg.History.Timeout)

	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting account service", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		log.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		log.Error("event dispatcher close failed", "error", err, "pending", dispatcher.Pending())
	}
	return nil
}

type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Health(ctx)
}
