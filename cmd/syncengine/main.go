/*
Copyright (c) 2026 GeneClackman
SPDX-License-Identifier: MIT
*/

/*
syncengine is the synchronization engine's server process: it runs the
asynq workers for the three job queues (supplier-sync, product-family,
image-upload), the background schedules in internal/cron, and the
HTTP control surface of internal/httpapi, all against one shared set
of store/queue/lock handles built here per DN1.

Adapted from the teacher's cmd/gateway/main.go composition-root style
(flat func main, signal-driven graceful shutdown) generalized from one
HTTP server to three asynq workers plus an HTTP server plus four
background schedules, all sharing one shutdown path.
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/atlaspim/syncengine/internal/config"
	"github.com/atlaspim/syncengine/internal/cron"
	"github.com/atlaspim/syncengine/internal/httpapi"
	"github.com/atlaspim/syncengine/internal/images"
	"github.com/atlaspim/syncengine/internal/jobs"
	"github.com/atlaspim/syncengine/internal/lockplane"
	"github.com/atlaspim/syncengine/internal/observability"
	"github.com/atlaspim/syncengine/internal/reconciler"
	"github.com/atlaspim/syncengine/internal/sinks"
	"github.com/atlaspim/syncengine/internal/upstream"
)

// shutdownGrace bounds how long in-flight jobs and HTTP requests get to
// finish before the process force-exits, per §4.7's drain-then-force
// shutdown contract.
const shutdownGrace = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	store := reconciler.NewPgStore(pool)

	redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(redisOptToClientOpt(cfg.RedisURL))
	defer func() { _ = rdb.Close() }()

	locks := lockplane.New(rdb, cfg.LockTTL, cfg.StopTTL)
	statsCache := lockplane.NewStatsCache(0, 0)

	enqueuer := jobs.NewEnqueuer(redisOpt)
	defer func() { _ = enqueuer.Close() }()
	admin := jobs.NewAdmin(redisOpt)
	defer func() { _ = admin.Close() }()

	flags := config.NewSupplierFlagCache(store.ListSuppliers, 0)
	if err := flags.RefreshIfStale(ctx); err != nil {
		logger.Warn("initial supplier flag load failed, starting with an empty set", zap.Error(err))
	}

	upstreamClient := upstream.New(cfg.UpstreamBaseURL)

	objectStore, err := images.NewS3Store(ctx, cfg.ObjectStoreEndpoint, cfg.ObjectStoreAccessKey,
		cfg.ObjectStoreSecret, cfg.ObjectStoreBucket, cfg.ObjectStorePublicURL)
	if err != nil {
		return fmt.Errorf("build object store: %w", err)
	}
	imagePipeline := images.New(upstreamClient, objectStore, store)

	fulltextSink, err := sinks.New("fulltext", cfg.SinkFulltextEndpoint)
	if err != nil {
		return fmt.Errorf("build fulltext sink: %w", err)
	}
	semanticSink, err := sinks.New("semantic", cfg.SinkSemanticEndpoint)
	if err != nil {
		return fmt.Errorf("build semantic sink: %w", err)
	}

	handlers := jobs.NewHandlers(upstreamClient, store, imagePipeline, locks, enqueuer,
		fulltextSink, semanticSink, logger, cfg.UpstreamBaseURL)

	mux := asynq.NewServeMux()
	handlers.Register(mux)

	servers := []*asynq.Server{
		newQueueServer(redisOpt, jobs.QueueSupplierSync, cfg.ConcurrencySuppliers, logger),
		newQueueServer(redisOpt, jobs.QueueProductFamily, cfg.ConcurrencyFamilies, logger),
		newQueueServer(redisOpt, jobs.QueueImageUpload, cfg.ConcurrencyImages, logger),
	}
	for _, srv := range servers {
		srv := srv
		go func() {
			if err := srv.Run(mux); err != nil {
				logger.Error("asynq server exited", zap.Error(err))
			}
		}()
	}

	scheduler := cron.NewScheduler(enqueuer, admin, flags, flags.Codes(), logger)
	scheduler.Start(ctx)

	rateLimiter := httpapi.NewRateLimiter(cfg.RateLimitPerMinute)
	api := httpapi.New(enqueuer, admin, locks, flags, store, rateLimiter, cfg.AdminAPIToken, statsCache, logger)
	httpSrv := &http.Server{
		Addr:         ":8080",
		Handler:      api.Mux(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("control surface listening", zap.String("addr", httpSrv.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	_ = httpSrv.Shutdown(shutdownCtx)

	for _, srv := range servers {
		srv.Shutdown()
	}

	return nil
}

func newQueueServer(redisOpt asynq.RedisConnOpt, queue string, concurrency int, logger *zap.Logger) *asynq.Server {
	return asynq.NewServer(redisOpt, asynq.Config{
		Concurrency:    concurrency,
		Queues:         map[string]int{queue: 1},
		Logger:         zapAsynqLogger{logger.Sugar()},
		RetryDelayFunc: jobs.RetryDelayFunc,
	})
}

// redisOptToClientOpt builds a *redis.Options for the plain go-redis
// client internal/lockplane needs, from the same REDIS_URL asynq's
// RedisConnOpt was parsed from.
func redisOptToClientOpt(redisURL string) *redis.Options {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		// config.Load already validated REDIS_URL is non-empty; a parse
		// failure here means an invalid URL shape, which ParseRedisURI
		// above would also have already rejected.
		return &redis.Options{Addr: redisURL}
	}
	return opt
}

// zapAsynqLogger adapts *zap.SugaredLogger to asynq's minimal Logger
// interface, the same adapter shape the teacher uses nowhere directly
// but which every zap-based server in the ecosystem needs when handed
// to a library with its own logging interface.
type zapAsynqLogger struct {
	s *zap.SugaredLogger
}

func (l zapAsynqLogger) Debug(args ...interface{}) { l.s.Debug(args...) }
func (l zapAsynqLogger) Info(args ...interface{})  { l.s.Info(args...) }
func (l zapAsynqLogger) Warn(args ...interface{})  { l.s.Warn(args...) }
func (l zapAsynqLogger) Error(args ...interface{}) { l.s.Error(args...) }
func (l zapAsynqLogger) Fatal(args ...interface{}) { l.s.Fatal(args...) }
