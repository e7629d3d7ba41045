// Package notification delivers domain events to the outside world. Events are
// written to the outbox table in the same transaction as the change they
// describe, relayed at-least-once, and deduplicated on the consuming side.
package notification

import (
	"context"
	"encoding/json"
	"time"

	"github.com/frahmantamala/hr-backoffice/internal/core/events"
)

const (
	maxBackoffSteps = 10
	backoffStep     = 15 * time.Second
	maxErrorLength  = 500
)

// Message is one outbox row on its way to a broker.
type Message struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Topic         string
	Payload       []byte
	RetryCount    int
	CreatedAt     time.Time
}

type OutboxRepositoryAPI interface {
	ListPending(ctx context.Context, limit int, now time.Time) ([]Message, error)
	MarkSent(ctx context.Context, id string, at time.Time) error
	MarkFailed(ctx context.Context, id string, reason string, nextRetryAt time.Time) error
}

// Publisher hands a relayed message to a transport.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
}

// Backoff grows linearly with the retry count and caps at ten steps.
func Backoff(retryCount int) time.Duration {
	steps := retryCount + 1
	if steps > maxBackoffSteps {
		steps = maxBackoffSteps
	}
	return time.Duration(steps) * backoffStep
}

// Decode turns a relayed payload back into an event carrying its original id.
func Decode(payload []byte) (events.BaseEvent, error) {
	var event events.BaseEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return events.BaseEvent{}, err
	}
	return event, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
