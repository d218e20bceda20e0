package app

import (
	"context"
	"fmt"
	"time"

	"taskmanager/internal/cache"
	"taskmanager/internal/config"
	"taskmanager/internal/metrics"
	"taskmanager/internal/ratelimit"
	"taskmanager/internal/repo"
	"taskmanager/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type App struct {
	cfg    config.Config
	log    zerolog.Logger
	tasks  repo.TaskRepo
	redis  *redis.Client
	router *gin.Engine
}

func New(ctx context.Context, cfg config.Config, log zerolog.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log}

	tasks, err := newTaskRepo(ctx, cfg.DB, log)
	if err != nil {
		return nil, err
	}
	a.tasks = tasks

	if cfg.Redis.Enabled() {
		rdb, err := newRedis(ctx, cfg.Redis)
		if err != nil {
			_ = tasks.Close(ctx)
			return nil, err
		}
		a.redis = rdb
		log.Info().Str("addr", cfg.Redis.Addr).Msg("redis connected, cache and rate limiting enabled")
	} else {
		log.Info().Msg("redis not configured, cache and rate limiting disabled")
	}

	m := metrics.New()
	opts := []service.Option{service.WithRecorder(m), service.WithLogger(log)}
	var limiter *ratelimit.Limiter
	if a.redis != nil {
		opts = append(opts, service.WithCache(cache.NewTaskCache(a.redis, cfg.Redis.CacheTTL.Duration())))
		limiter = ratelimit.NewLimiter(a.redis, cfg.RateLimit.Max, cfg.RateLimit.Window.Duration())
	}

	a.router = NewRouter(Deps{
		Config:  cfg,
		Log:     log,
		Tasks:   service.NewTaskService(tasks, opts...),
		Limiter: limiter,
		Metrics: m,
		Started: time.Now(),
	})
	return a, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func (a *App) Close(ctx context.Context) error {
	var firstErr error
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			firstErr = err
		}
	}
	if a.tasks != nil {
		if err := a.tasks.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func newRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return rdb, nil
}
