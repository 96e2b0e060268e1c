package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jwalitptl/clinic-queue-api/internal/model"
	"github.com/jwalitptl/clinic-queue-api/internal/repository"
	"github.com/jwalitptl/clinic-queue-api/pkg/logger"
	"github.com/jwalitptl/clinic-queue-api/pkg/messaging"
	"github.com/jwalitptl/clinic-queue-api/pkg/metrics"
)

type OutboxProcessorConfig struct {
	BatchSize     int
	PollInterval  time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
}

// OutboxProcessor drains staged appointment events to the broker. Events
// commit in the same transaction as their appointment mutation; this loop
// only publishes them, so losing it delays delivery but never loses an
// event.
type OutboxProcessor struct {
	repo    repository.OutboxRepository
	broker  messaging.Broker
	config  OutboxProcessorConfig
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewOutboxProcessor(
	repo repository.OutboxRepository,
	broker messaging.Broker,
	config OutboxProcessorConfig,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *OutboxProcessor {
	if config.BatchSize <= 0 {
		panic("BatchSize must be greater than 0")
	}
	if config.PollInterval <= 0 {
		panic("PollInterval must be greater than 0")
	}
	if config.RetryAttempts <= 0 {
		panic("RetryAttempts must be greater than 0")
	}
	if config.RetryDelay <= 0 {
		panic("RetryDelay must be greater than 0")
	}

	return &OutboxProcessor{
		repo:    repo,
		broker:  broker,
		config:  config,
		logger:  logger,
		metrics: metrics,
	}
}

// Start polls until ctx is cancelled. It blocks; callers run it as the
// main loop of the worker binary.
func (p *OutboxProcessor) Start(ctx context.Context) {
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	p.logger.Info("outbox processor started",
		"batch_size", p.config.BatchSize,
		"poll_interval", p.config.PollInterval.String())

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("outbox processor stopped")
			return
		case <-ticker.C:
			if err := p.drainOnce(ctx); err != nil {
				p.logger.Error(err, "outbox drain failed")
			}
		}
	}
}

// drainOnce publishes one locked batch of pending events. Rows stay
// locked until the surrounding poll finishes, so two workers never
// publish the same event.
func (p *OutboxProcessor) drainOnce(ctx context.Context) error {
	timer := prometheus.NewTimer(p.metrics.OutboxProcessingLatency)
	defer timer.ObserveDuration()

	events, err := p.repo.GetPendingEventsWithLock(ctx, p.config.BatchSize)
	if err != nil {
		p.metrics.DatabaseOperations.WithLabelValues("get_pending_events", "error").Inc()
		return fmt.Errorf("failed to get pending events: %w", err)
	}
	p.metrics.DatabaseOperations.WithLabelValues("get_pending_events", "success").Inc()
	p.metrics.OutboxQueueSize.Set(float64(len(events)))

	if len(events) == 0 {
		return nil
	}

	published := 0
	for _, event := range events {
		if err := p.publish(ctx, event); err != nil {
			p.logger.Error(err, "event publish failed",
				"event_id", event.ID.String(),
				"event_type", event.EventType)
			continue
		}
		published++
	}

	p.logger.Debug("outbox batch drained", "published", published, "picked_up", len(events))
	return nil
}

func (p *OutboxProcessor) publish(ctx context.Context, event *model.OutboxEvent) error {
	err := retry(ctx, p.config.RetryAttempts, p.config.RetryDelay, func() error {
		return p.broker.Publish(ctx, event.EventType, json.RawMessage(event.Payload))
	})

	if err != nil {
		p.metrics.OutboxEventsFailed.Inc()
		p.metrics.OutboxRetries.WithLabelValues(event.EventType).Inc()
		errStr := err.Error()
		if updateErr := p.repo.UpdateStatus(ctx, event.ID, model.OutboxStatusFailed, &errStr); updateErr != nil {
			p.logger.Error(updateErr, "failed to mark event failed", "event_id", event.ID.String())
		}
		return err
	}

	if err := p.repo.UpdateStatus(ctx, event.ID, model.OutboxStatusProcessed, nil); err != nil {
		// The event went out but the row stays PENDING, so it will be
		// published again. Subscribers must tolerate duplicates.
		return fmt.Errorf("failed to mark event processed: %w", err)
	}

	p.metrics.OutboxEventsProcessed.Inc()
	return nil
}

func retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return err
}
