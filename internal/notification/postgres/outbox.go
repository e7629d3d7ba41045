package postgres

import (
	"context"
	"encoding/json"
	"time"

	outboxDatamodel "github.com/frahmantamala/hr-backoffice/internal/core/datamodel/outbox"
	"github.com/frahmantamala/hr-backoffice/internal/core/events"
	"github.com/frahmantamala/hr-backoffice/internal/core/store"
	"github.com/frahmantamala/hr-backoffice/internal/notification"
	"gorm.io/gorm"
)

// OutboxRepository stores events in outbox_events. Built on a transaction
// handle, Enqueue commits or rolls back with the caller's change.
type OutboxRepository struct {
	db    *gorm.DB
	topic string
}

func NewOutboxRepository(db *gorm.DB, topic string) *OutboxRepository {
	return &OutboxRepository{db: db, topic: topic}
}

func (r *OutboxRepository) WithTx(tx *gorm.DB) *OutboxRepository {
	return &OutboxRepository{db: tx, topic: r.topic}
}

func (r *OutboxRepository) Enqueue(ctx context.Context, aggregateType, aggregateID string, event events.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	row := &outboxDatamodel.Event{
		ID:            event.EventID(),
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     event.EventType(),
		Topic:         r.topic,
		Payload:       payload,
		Status:        outboxDatamodel.StatusPending,
		CreatedAt:     time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return store.Translate(err, "failed to enqueue outbox event", nil)
	}
	return nil
}

// ListPending returns pending and failed rows whose retry time has come, oldest first.
func (r *OutboxRepository) ListPending(ctx context.Context, limit int, now time.Time) ([]notification.Message, error) {
	var rows []outboxDatamodel.Event
	err := r.db.WithContext(ctx).
		Where("status IN ?", []string{outboxDatamodel.StatusPending, outboxDatamodel.StatusFailed}).
		Where("next_retry_at IS NULL OR next_retry_at <= ?", now).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, store.Translate(err, "failed to list outbox events", nil)
	}

	messages := make([]notification.Message, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, notification.Message{
			ID:            row.ID,
			AggregateType: row.AggregateType,
			AggregateID:   row.AggregateID,
			EventType:     row.EventType,
			Topic:         row.Topic,
			Payload:       row.Payload,
			RetryCount:    row.RetryCount,
			CreatedAt:     row.CreatedAt,
		})
	}
	return messages, nil
}

func (r *OutboxRepository) MarkSent(ctx context.Context, id string, at time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&outboxDatamodel.Event{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        outboxDatamodel.StatusSent,
			"processed_at":  at,
			"error_message": nil,
		}).Error
	return store.Translate(err, "failed to mark outbox event sent", nil)
}

func (r *OutboxRepository) MarkFailed(ctx context.Context, id string, reason string, nextRetryAt time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&outboxDatamodel.Event{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        outboxDatamodel.StatusFailed,
			"retry_count":   gorm.Expr("retry_count + 1"),
			"error_message": reason,
			"next_retry_at": nextRetryAt,
		}).Error
	return store.Translate(err, "failed to mark outbox event failed", nil)
}
