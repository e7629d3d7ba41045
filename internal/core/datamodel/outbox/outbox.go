package outbox

import (
	"encoding/json"
	"time"
)

const (
	StatusPending = "pending"
	StatusSent    = "sent"
	StatusFailed  = "failed"
)

type Event struct {
	ID            string          `gorm:"column:id;primaryKey;size:36"`
	AggregateType string          `gorm:"column:aggregate_type;not null"`
	AggregateID   string          `gorm:"column:aggregate_id;not null"`
	EventType     string          `gorm:"column:event_type;not null"`
	Topic         string          `gorm:"column:topic;not null"`
	Payload       json.RawMessage `gorm:"column:payload;type:jsonb;not null"`
	Status        string          `gorm:"column:status;not null;index"`
	RetryCount    int             `gorm:"column:retry_count;not null;default:0"`
	NextRetryAt   *time.Time      `gorm:"column:next_retry_at"`
	ErrorMessage  *string         `gorm:"column:error_message"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	ProcessedAt   *time.Time      `gorm:"column:processed_at"`
}

func (Event) TableName() string { return "outbox_events" }
