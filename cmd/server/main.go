// vidrepair server — batch YouTube reference validation over HTTP.
//
// Exposes POST /api/repair-batch plus /health and /metrics. Validation
// runs a fast oEmbed tier always and a detailed Data API tier when a
// credential is configured.
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

	"github.com/redis/go-redis/v9"

	"github.com/adhamqabban37/vidrepair/internal/batch"
	"github.com/adhamqabban37/vidrepair/internal/env"
	"github.com/adhamqabban37/vidrepair/internal/server"
	"github.com/adhamqabban37/vidrepair/internal/validate"
)

var version = "dev"

func main() {
	env.Load()

	port := env.Str("PORT", "8790")
	redisURL := env.Str("REDIS_URL", "")

	httpClient := &http.Client{
		Timeout: 15 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     60 * time.Second,
		},
	}

	oembed := &validate.OEmbedClient{
		HTTP:    httpClient,
		Timeout: env.Duration("OEMBED_TIMEOUT", 5*time.Second),
	}
	api := &validate.DataAPIClient{
		Key:         env.Str("YOUTUBE_API_KEY", ""),
		FallbackKey: env.Str("YOUTUBE_API_KEY_FALLBACK", ""),
		HTTP:        httpClient,
		Timeout:     env.Duration("DATA_API_TIMEOUT", 8*time.Second),
	}
	cache := validate.NewOutcomeCache(redisURL, env.Duration("CACHE_TTL", 2*time.Minute))
	strategy := validate.NewStrategy(oembed, api, cache)

	orch := &batch.Orchestrator{
		Validator:     strategy,
		Limiter:       newLimiter(redisURL),
		RepairEnabled: env.Bool("ENABLE_VIDEO_REPAIR", false),
		AdminToken:    env.Str("ADMIN_API_TOKEN", ""),
		ChunkSize:     env.Int("BATCH_CONCURRENCY", 3),
		Retry: validate.RetryConfig{
			MaxAttempts: env.Int("RETRY_ATTEMPTS", 3),
			BaseDelay:   env.Duration("RETRY_BASE_DELAY", time.Second),
		},
	}

	slog.Info("starting vidrepair",
		slog.String("version", version),
		slog.String("port", port),
		slog.Bool("repair_enabled", orch.RepairEnabled),
		slog.Bool("detailed_tier", api.Available()),
		slog.Bool("redis", redisURL != ""),
	)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           server.New(orch, slog.Default()).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	slog.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown failed", slog.Any("error", err))
	}
}

// newLimiter prefers a Redis-backed sliding window so multiple replicas
// share one budget; without Redis each process enforces its own.
func newLimiter(redisURL string) batch.RateLimiter {
	limit := env.Int("RATE_LIMIT", 10)
	window := env.Duration("RATE_WINDOW", 60*time.Second)

	if redisURL != "" {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			slog.Warn("invalid REDIS_URL, using in-memory rate limiter", slog.Any("error", err))
			return batch.NewMemoryLimiter(limit, window)
		}
		return batch.NewRedisLimiter(redis.NewClient(opt), limit, window)
	}
	return batch.NewMemoryLimiter(limit, window)
}
