package main

import (
	"context"
	"fmt"
	"strings"

	echomiddleware "github.com/labstack/echo/v4/middleware"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/taskflow/taskflow-api/internal/api/handler"
	"github.com/taskflow/taskflow-api/internal/api/middleware"
	"github.com/taskflow/taskflow-api/internal/core/ports"
	"github.com/taskflow/taskflow-api/internal/core/service"
	"github.com/taskflow/taskflow-api/internal/infrastructure/config"
	"github.com/taskflow/taskflow-api/internal/infrastructure/db/mongo"
	"github.com/taskflow/taskflow-api/internal/infrastructure/db/postgres"
	redisstore "github.com/taskflow/taskflow-api/internal/infrastructure/db/redis"
	"github.com/taskflow/taskflow-api/pkg/logger"
)

// app holds the process-wide dependencies shared by serve and seed.
type app struct {
	cfg    *config.Config
	log    zerolog.Logger
	users  ports.UserRepository
	tasks  ports.TaskRepository
	checks map[string]handler.Check

	auth      *service.AuthService
	taskSvc   *service.TaskService
	analytics ports.AnalyticsService

	closers []func()
}

// setup loads config, initialises the logger and opens the configured store.
// Postgres migrations are applied first when migrate is set.
func setup(ctx context.Context, migrate bool) (*app, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  strings.EqualFold(cfg.Env, "development"),
		Service: cfg.AppName,
		Version: cfg.AppVersion,
	})
	if cfg.UsesPlaceholderSecret() {
		log.Warn().Msg("JWT_SECRET is the shipped placeholder; set a real secret before exposing this server")
	}

	a := &app{cfg: cfg, log: log, checks: map[string]handler.Check{}}
	if err := a.openStore(ctx, migrate); err != nil {
		a.close()
		return nil, err
	}

	tokens, err := service.NewTokenService(service.TokenConfig{
		Secret:     cfg.JWT.Secret,
		Algorithm:  cfg.JWT.Algorithm,
		AccessTTL:  cfg.JWT.AccessTTL,
		RefreshTTL: cfg.JWT.RefreshTTL,
	})
	if err != nil {
		a.close()
		return nil, err
	}

	a.auth = service.NewAuthService(a.users, tokens, log)
	a.taskSvc = service.NewTaskService(a.tasks, log)
	a.analytics = service.NewAnalyticsService(a.tasks, log)
	return a, nil
}

func (a *app) openStore(ctx context.Context, migrate bool) error {
	switch a.cfg.Store.Driver {
	case config.DriverMongo:
		client, db, err := mongo.Connect(ctx, mongo.Config{URI: a.cfg.Mongo.URI, Database: a.cfg.Mongo.Database})
		if err != nil {
			return err
		}
		a.closers = append(a.closers, func() { _ = client.Disconnect(context.Background()) })

		users := mongo.NewUserRepository(db)
		tasks := mongo.NewTaskRepository(db)
		if err := mongo.EnsureIndexes(ctx, users, tasks); err != nil {
			return err
		}
		a.users, a.tasks = users, tasks
		a.checks["mongo"] = func(ctx context.Context) error { return client.Ping(ctx, nil) }
		a.log.Info().Str("database", a.cfg.Mongo.Database).Msg("connected to mongo")

	default:
		if migrate {
			if err := postgres.Migrate(a.cfg.Postgres.URL, postgres.Up); err != nil {
				return err
			}
			a.log.Info().Msg("postgres migrations applied")
		}
		pool, err := postgres.Connect(ctx, postgres.Config{
			URL:             a.cfg.Postgres.URL,
			MaxConns:        a.cfg.Postgres.MaxConns,
			MinConns:        a.cfg.Postgres.MinConns,
			MaxConnLifetime: a.cfg.Postgres.MaxConnLifetime,
		})
		if err != nil {
			return err
		}
		a.closers = append(a.closers, pool.Close)

		a.users = postgres.NewUserRepository(pool)
		a.tasks = postgres.NewTaskRepository(pool)
		a.checks["postgres"] = pool.Ping
		a.log.Info().Msg("connected to postgres")
	}
	return nil
}

// rateLimitStore picks the Redis-backed limiter when REDIS_ADDR is set and
// the in-process one otherwise. Nil disables limiting.
func (a *app) rateLimitStore(ctx context.Context) (echomiddleware.RateLimiterStore, error) {
	rl := a.cfg.RateLimit
	if !rl.Enabled {
		return nil, nil
	}

	client, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     a.cfg.Redis.Addr,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	if client == nil {
		a.log.Info().Int("requests", rl.Requests).Dur("window", rl.Window).Msg("rate limiting in memory")
		return middleware.NewMemoryRateLimiterStore(rl.Requests, rl.Window), nil
	}

	a.closers = append(a.closers, func() { _ = client.Close() })
	a.checks["redis"] = func(ctx context.Context) error { return pingRedis(ctx, client) }
	a.log.Info().Str("addr", a.cfg.Redis.Addr).Int("requests", rl.Requests).Dur("window", rl.Window).Msg("rate limiting in redis")
	return redisstore.NewRateLimiterStore(client, rl.Requests, rl.Window), nil
}

func pingRedis(ctx context.Context, client *goredis.Client) error {
	return client.Ping(ctx).Err()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
