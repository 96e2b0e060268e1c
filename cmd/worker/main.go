package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/kelseyhightower/envconfig"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"go.uber.org/zap"

	"github.com/jwalitptl/clinic-queue-api/internal/repository/postgres"
	"github.com/jwalitptl/clinic-queue-api/pkg/logger"
	"github.com/jwalitptl/clinic-queue-api/pkg/messaging/redis"
	"github.com/jwalitptl/clinic-queue-api/pkg/metrics"
	"github.com/jwalitptl/clinic-queue-api/pkg/worker"
)

// WorkerEnv is the full environment of the outbox drainer. The worker runs
// headless in its own container, so it is configured by environment
// variables rather than the API's config file.
type WorkerEnv struct {
	DatabaseURL   string        `envconfig:"DATABASE_URL" required:"true"`
	RedisURL      string        `envconfig:"REDIS_URL" default:"redis://localhost:6379/0"`
	BatchSize     int           `envconfig:"OUTBOX_BATCH_SIZE" default:"100"`
	PollInterval  time.Duration `envconfig:"OUTBOX_POLL_INTERVAL" default:"5s"`
	RetryAttempts int           `envconfig:"OUTBOX_RETRY_ATTEMPTS" default:"3"`
	RetryDelay    time.Duration `envconfig:"OUTBOX_RETRY_DELAY" default:"5s"`
	HealthPort    int           `envconfig:"HEALTH_PORT" default:"8081"`
}

func main() {
	zlog, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer zlog.Sync()

	var env WorkerEnv
	if err := envconfig.Process("", &env); err != nil {
		zlog.Fatal("failed to load environment", zap.Error(err))
	}

	db, err := sqlx.Connect("postgres", env.DatabaseURL)
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	brokerLogger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	broker, err := redis.NewRedisBroker(redis.Config{
		URL:          env.RedisURL,
		MaxRetries:   3,
		RetryBackoff: 100 * time.Millisecond,
		PoolSize:     10,
		MinIdleConns: 2,
	}, &brokerLogger)
	if err != nil {
		zlog.Fatal("failed to create Redis broker", zap.Error(err))
	}
	defer broker.Close()

	baseRepo := postgres.NewBaseRepository(db)
	outboxRepo := postgres.NewOutboxRepository(baseRepo)

	processor := worker.NewOutboxProcessor(
		outboxRepo,
		broker,
		worker.OutboxProcessorConfig{
			BatchSize:     env.BatchSize,
			PollInterval:  env.PollInterval,
			RetryAttempts: env.RetryAttempts,
			RetryDelay:    env.RetryDelay,
		},
		logger.NewLogger(nil),
		metrics.NewMetrics("clinic_queue", "worker"),
	)

	setupHealthCheck(zlog, env.HealthPort)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		zlog.Info("shutting down")
		cancel()
	}()

	zlog.Info("outbox worker started",
		zap.Int("batch_size", env.BatchSize),
		zap.Duration("poll_interval", env.PollInterval))
	processor.Start(ctx)
}

func setupHealthCheck(zlog *zap.Logger, port int) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	go func() {
		if err := http.ListenAndServe(fmt.Sprintf(":%d", port), mux); err != nil {
			zlog.Error("health check server failed", zap.Error(err))
			os.Exit(1)
		}
	}()
}
