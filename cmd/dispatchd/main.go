// cmd/dispatchd/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"notifyd/internal/adapters"
	"notifyd/internal/archive"
	"notifyd/internal/common/config"
	"notifyd/internal/common/database"
	"notifyd/internal/common/httpclient"
	"notifyd/internal/common/logger"
	"notifyd/internal/common/observability"
	"notifyd/internal/dispatch"
	"notifyd/internal/sse"
	"notifyd/internal/store"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting dispatchd...",
		zap.String("environment", cfg.App.Environment),
		zap.String("version", cfg.App.Version),
	)

	obs := observability.New("dispatchd")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Directory: PostgreSQL when configured, in-memory otherwise ---
	var directory store.Directory
	if cfg.Database.Postgres.Host != "" {
		var pg *database.PostgresClient
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()
		zapLog.Info("PostgreSQL connected successfully")
		directory = store.NewPostgresDirectory(pg)
	} else {
		zapLog.Warn("no postgres host configured, using in-memory directory")
		directory = store.NewMemoryDirectory()
	}

	// --- Idempotency: Redis when configured, in-memory otherwise ---
	var idem store.IdempotencyStore
	if cfg.Database.Redis.Address != "" {
		var redis *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			redis, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redis.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")

		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redis.Close()
		zapLog.Info("Redis connected successfully")
		idem = store.NewRedisIdempotencyStore(redis, config.GetDuration(cfg.Dispatch.IdempotencyTTL))
	} else {
		zapLog.Warn("no redis address configured, using in-memory idempotency store")
		idem = store.NewMemoryIdempotencyStore()
	}

	// --- Archive: Elasticsearch when configured ---
	var indexer archive.Indexer = archive.NopIndexer{}
	if cfg.Database.Elasticsearch.GetURL() != "" {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		zapLog.Info("Elasticsearch connected successfully")
		indexer = archive.NewElasticsearchIndexer(esClient, cfg.Database.Elasticsearch.Index, log)
	} else {
		zapLog.Warn("no elasticsearch configured, terminal notifications will not be archived")
	}

	// --- SSE registry and channel adapters ---
	registry := sse.NewRegistry(cfg.Channels.SSE.EventBuffer, log)

	webhookClient := httpclient.NewClient(config.GetDuration(cfg.Channels.Webhook.Timeout))
	channelAdapters := []adapters.Adapter{
		adapters.NewWebhookAdapter(webhookClient, cfg.Channels.Webhook, log),
		adapters.NewSSEAdapter(registry),
	}

	emailAdapter, err := adapters.NewEmailAdapter(cfg.Channels.Email, log)
	if err != nil {
		zapLog.Fatal("email adapter init failed", zap.Error(err))
	}
	channelAdapters = append(channelAdapters, emailAdapter)

	smsAdapter, err := adapters.NewSMSAdapter(cfg.Channels.SMS, log)
	if err != nil {
		zapLog.Fatal("sms adapter init failed", zap.Error(err))
	}
	channelAdapters = append(channelAdapters, smsAdapter)

	// --- Dispatcher ---
	tracker := dispatch.NewTracker(indexer, log)
	dispatcher := dispatch.NewDispatcher(cfg.Dispatch, directory, idem, tracker, channelAdapters, obs, log)
	dispatcher.Start()

	// --- API Server ---
	mux := http.NewServeMux()
	dispatch.NewAPI(dispatcher, log).Register(mux)
	mux.Handle("GET /v1/events", sse.NewStreamHandler(registry, config.GetDuration(cfg.Channels.SSE.HeartbeatInterval), log))
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	apiServer := &http.Server{
		Addr:    cfg.Server.ListenAddress,
		Handler: mux,
	}
	go func() {
		zapLog.Info("API server listening", zap.String("address", cfg.Server.ListenAddress))
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("API server failed", zap.Error(err))
		}
	}()

	// --- Metrics Server ---
	go func() {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Metrics server listening", zap.String("address", cfg.Server.MetricsListenAddress))
		if err := http.ListenAndServe(cfg.Server.MetricsListenAddress, metricsMux); err != nil {
			zapLog.Error("Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining queue...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("API server shutdown failed", zap.Error(err))
	}

	registry.Close()
	dispatcher.Stop()

	zapLog.Info("dispatchd stopped gracefully")
}
