package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/example/interview-engine/internal/application"
	"github.com/example/interview-engine/internal/auth"
	"github.com/example/interview-engine/internal/config"
	"github.com/example/interview-engine/internal/events"
	httptransport "github.com/example/interview-engine/internal/http"
	"github.com/example/interview-engine/internal/lock"
	"github.com/example/interview-engine/internal/metrics"
	"github.com/example/interview-engine/internal/persistence/sqlite"
)

const serviceName = "interviewd"

// app holds the wired dependencies of one interviewd process.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	storage  *sqlite.Storage
	rdb      redis.UniversalClient
	metrics  *metrics.Metrics
	verifier *auth.Verifier
	service  *application.InterviewService
}

// openStorage opens and migrates the configured database.
func openStorage(ctx context.Context, cfg config.Config, logger *slog.Logger) (*sqlite.Storage, error) {
	storage, err := sqlite.Open(cfg.SQLiteDSN, sqlite.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	if err := storage.Migrate(ctx); err != nil {
		_ = storage.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	return storage, nil
}

func tokenParams(cfg config.Config) application.Argon2idParams {
	params := application.DefaultArgon2idParams
	params.Memory = cfg.TokenHash.MemoryKiB
	params.Iterations = cfg.TokenHash.Iterations
	params.Parallelism = cfg.TokenHash.Parallelism
	return params
}

// newApp wires storage, coordination, metrics and the services. Without a
// Redis address the process uses an in-process lock and drops events, which
// is only safe for a single instance.
func newApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (*app, error) {
	storage, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger, storage: storage, metrics: metrics.New()}

	var (
		locker    application.Locker = lock.NewLocal()
		publisher events.Publisher   = events.Noop{}
	)
	if cfg.RedisAddr != "" {
		a.rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := a.rdb.Ping(ctx).Err(); err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
		}
		locker = lock.NewRedis(a.rdb, "", cfg.LockTTL, 0).WithLogger(logger)
		publisher = events.NewRedisPublisher(a.rdb, events.DefaultChannelPrefix)
		logger.Info("redis coordination enabled", "addr", cfg.RedisAddr)
	} else {
		logger.Warn("redis not configured; using in-process locks and dropping events")
	}

	a.verifier, err = auth.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	a.service = application.NewInterviewService(
		newInterviewRepositoryAdapter(storage),
		uuid.NewString,
		time.Now,
		application.WithLogger(logger),
		application.WithLocker(locker),
		application.WithPublisher(publisher),
		application.WithMetrics(a.metrics),
		application.WithPublicBaseURL(cfg.PublicBaseURL),
		application.WithDefaultExpiryWindow(cfg.DefaultExpiryWindow),
		application.WithTokenParams(tokenParams(cfg)),
	)
	return a, nil
}

func (a *app) handler() http.Handler {
	return httptransport.NewRouter(httptransport.RouterConfig{
		Interviews:        httptransport.NewInterviewHandler(a.service, a.logger),
		Sessions:          httptransport.NewSessionHandler(a.service.AccessGateway(), a.logger),
		Verifier:          a.verifier,
		MetricsMiddleware: a.metrics.Middleware,
		MetricsHandler:    a.metrics.Handler(),
		AllowedOrigins:    a.cfg.AllowedOrigins,
		Logger:            a.logger,
	})
}

// Close releases storage and the Redis client.
func (a *app) Close() error {
	var errs []error
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if a.storage != nil {
		if err := a.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close storage: %w", err))
		}
	}
	return errors.Join(errs...)
}
