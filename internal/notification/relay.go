package notification

import (
	"context"
	"log/slog"
	"time"
)

type Relay struct {
	repo      OutboxRepositoryAPI
	publisher Publisher
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
}

func NewRelay(repo OutboxRepositoryAPI, publisher Publisher, logger *slog.Logger, interval time.Duration, batchSize int) *Relay {
	if interval <= 0 {
		interval = 3 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 50
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Relay{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		interval:  interval,
		batchSize: batchSize,
	}
}

// Run polls the outbox until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("outbox relay started", "poll_interval", r.interval, "batch_size", r.batchSize)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("outbox relay stopped")
			return
		case <-ticker.C:
			if _, err := r.ProcessPending(ctx); err != nil {
				r.logger.Error("process outbox events failed", "error", err)
			}
		}
	}
}

// ProcessPending publishes one batch and returns how many messages were sent.
// A message that fails to publish is rescheduled and never blocks the rest.
func (r *Relay) ProcessPending(ctx context.Context) (int, error) {
	messages, err := r.repo.ListPending(ctx, r.batchSize, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	if len(messages) == 0 {
		return 0, nil
	}

	r.logger.Info("processing pending outbox events", "count", len(messages))

	sent := 0
	for _, msg := range messages {
		if err := r.publisher.Publish(ctx, msg); err != nil {
			r.logger.Error("publish outbox event failed",
				"outbox_id", msg.ID,
				"event_type", msg.EventType,
				"topic", msg.Topic,
				"error", err)
			next := time.Now().UTC().Add(Backoff(msg.RetryCount))
			if markErr := r.repo.MarkFailed(ctx, msg.ID, truncate(err.Error(), maxErrorLength), next); markErr != nil {
				r.logger.Error("mark outbox failed failed", "outbox_id", msg.ID, "error", markErr)
			}
			continue
		}

		if err := r.repo.MarkSent(ctx, msg.ID, time.Now().UTC()); err != nil {
			r.logger.Error("mark outbox sent failed", "outbox_id", msg.ID, "error", err)
			continue
		}
		sent++

		r.logger.Debug("outbox event sent",
			"outbox_id", msg.ID,
			"event_type", msg.EventType,
			"topic", msg.Topic)
	}
	return sent, nil
}
