package notification

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/frahmantamala/hr-backoffice/internal/core/events"
	kafkago "github.com/segmentio/kafka-go"
)

// MessageReader is satisfied by *kafkago.Reader.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

func NewKafkaReader(brokers []string, topic, group string) *kafkago.Reader {
	return kafkago.NewReader(kafkago.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: group,
	})
}

const (
	minRetryDelay = 500 * time.Millisecond
	maxRetryDelay = 30 * time.Second
)

// Consumer reads relayed events, drops duplicates and hands the rest to the
// handler. A message that fails is retried in place until it succeeds, so no
// later offset is committed past it.
type Consumer struct {
	reader   MessageReader
	dedupe   *Deduplicator
	handler  events.Handler
	logger   *slog.Logger
	minDelay time.Duration
	maxDelay time.Duration
}

func NewConsumer(reader MessageReader, dedupe *Deduplicator, handler events.Handler, logger *slog.Logger) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{
		reader:   reader,
		dedupe:   dedupe,
		handler:  handler,
		logger:   logger,
		minDelay: minRetryDelay,
		maxDelay: maxRetryDelay,
	}
}

// WithRetryDelay bounds the doubling wait between attempts on one message.
func (c *Consumer) WithRetryDelay(minDelay, maxDelay time.Duration) *Consumer {
	c.minDelay = minDelay
	c.maxDelay = maxDelay
	return c
}

// Run consumes until ctx is cancelled or the reader is closed.
func (c *Consumer) Run(ctx context.Context) {
	c.logger.Info("notification consumer started")
	defer c.logger.Info("notification consumer stopped")

	fetchAttempt := 0
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return
			}
			c.logger.Error("fetch notification message failed", "error", err)
			if !c.wait(ctx, fetchAttempt) {
				return
			}
			fetchAttempt++
			continue
		}
		fetchAttempt = 0

		for attempt := 0; !c.Handle(ctx, msg); attempt++ {
			c.logger.Warn("notification will be retried",
				"offset", msg.Offset, "partition", msg.Partition, "attempt", attempt+1)
			if !c.wait(ctx, attempt) {
				return
			}
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Error("commit notification message failed", "offset", msg.Offset, "error", err)
		}
	}
}

// wait sleeps for the attempt's delay and reports false when ctx ends first.
func (c *Consumer) wait(ctx context.Context, attempt int) bool {
	timer := time.NewTimer(c.retryDelay(attempt))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (c *Consumer) retryDelay(attempt int) time.Duration {
	d := c.minDelay
	for i := 0; i < attempt && d < c.maxDelay; i++ {
		d *= 2
	}
	if d > c.maxDelay {
		d = c.maxDelay
	}
	return d
}

// Handle processes one message and reports whether its offset may be committed.
func (c *Consumer) Handle(ctx context.Context, msg kafkago.Message) bool {
	event, err := Decode(msg.Value)
	if err != nil || event.ID == "" {
		c.logger.Error("decode notification event failed", "error", err, "offset", msg.Offset)
		return true
	}

	if c.dedupe != nil {
		first, err := c.dedupe.FirstDelivery(ctx, event.ID)
		if err != nil {
			c.logger.Error("dedupe check failed", "event_id", event.ID, "error", err)
			return false
		}
		if !first {
			c.logger.Info("duplicate notification skipped", "event_id", event.ID, "event_type", event.Type)
			return true
		}
	}

	if err := c.handler(ctx, event); err != nil {
		c.logger.Error("notification handler failed", "event_id", event.ID, "event_type", event.Type, "error", err)
		if c.dedupe != nil {
			if err := c.dedupe.Forget(ctx, event.ID); err != nil {
				c.logger.Warn("release dedupe claim failed", "event_id", event.ID, "error", err)
			}
		}
		return false
	}
	return true
}

// LogDispatcher stands in for the outbound notification channel and records
// each resolved request it would announce.
func LogDispatcher(logger *slog.Logger) events.Handler {
	return func(ctx context.Context, event events.Event) error {
		logger.Info("notification dispatched",
			"event_id", event.EventID(),
			"event_type", event.EventType(),
			"payload", event.Payload())
		return nil
	}
}
