package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"notify-engine/internal/alert"
	"notify-engine/internal/common/config"
	"notify-engine/internal/common/database"
	"notify-engine/internal/common/logger"
	"notify-engine/internal/common/observability"
	"notify-engine/internal/engine"
	"notify-engine/internal/feed"
	"notify-engine/internal/models"
	"notify-engine/internal/statestore"
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
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New("info", "console")
		fallback.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting notification engine...")

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Redis)
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

	state := statestore.New(redis, log)
	feedClient := feed.NewClient(cfg.Feed, log)

	// The dispatcher reads settings through the engine, which is built after
	// it; the closure bridges the cycle.
	var eng *engine.Engine
	dispatcher := alert.NewDispatcher(func() models.Settings {
		if eng == nil {
			return models.DefaultSettings()
		}
		return eng.Settings()
	}, log)

	if cfg.Alerts.Email.ToEmail != "" {
		emailEmitter, err := alert.NewEmailEmitter(ctx, cfg.Alerts, log)
		if err != nil {
			zapLog.Fatal("failed to create email emitter", zap.Error(err))
		}
		dispatcher.WithEmail(emailEmitter)
		zapLog.Info("Email alert channel enabled")
	}

	if cfg.Alerts.Push.TopicARN != "" {
		pushEmitter, err := alert.NewPushEmitter(ctx, cfg.Alerts, log)
		if err != nil {
			zapLog.Fatal("failed to create push emitter", zap.Error(err))
		}
		dispatcher.WithPush(pushEmitter)
		zapLog.Info("Push alert channel enabled")
	}

	dispatcher.WithCue(alert.NewBellCue(os.Stdout))

	eng = engine.New(cfg.Engine, feedClient, dispatcher, state, obs, log)
	eng.Hydrate(ctx)

	go eng.Run(ctx)

	// --- Health & Metrics Server ---
	if cfg.Metrics.Enabled {
		go func() {
			mux := http.NewServeMux()
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				json.NewEncoder(w).Encode(map[string]string{
					"status": "healthy",
					"time":   time.Now().Format(time.RFC3339),
				})
			})
			mux.Handle("/metrics", promhttp.Handler())

			addr := fmt.Sprintf(":%d", cfg.Metrics.Port)
			zapLog.Info("Health/Metrics server listening", zap.String("addr", addr))
			if err := http.ListenAndServe(addr, mux); err != nil {
				zapLog.Error("Health/Metrics server failed", zap.Error(err))
			}
		}()
	}

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping engine...")
	cancel()
	zapLog.Info("Shutdown complete")
}
