package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/frahmantamala/hr-backoffice/internal/core/events"
	notificationPostgres "github.com/frahmantamala/hr-backoffice/internal/notification/postgres"
	"github.com/frahmantamala/hr-backoffice/pkg/logger"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Publish test events onto the in-process bus or into the outbox`,
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [event-type]",
	Short: "Publish a test event",
	Long:  `Publish a test event on the in-process bus, or enqueue it in the outbox with --outbox so the relay delivers it`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		publishTestEvent(args[0])
	},
}

var (
	eventData    string
	eventOutbox  bool
	eventAggType string
	eventAggID   string
)

func newTestEvent(eventType string) events.BaseEvent {
	return events.BaseEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data: map[string]interface{}{
			"message": eventData,
			"source":  "cli-command",
		},
	}
}

func publishTestEvent(eventType string) {
	log := logger.LoggerWrapper()
	testEvent := newTestEvent(eventType)
	ctx := context.Background()

	if eventOutbox {
		config, err := loadConfig(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		sqlDB, err := initDB(config.Database)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize database: %v\n", err)
			os.Exit(1)
		}
		defer sqlDB.Close()
		db, err := initGorm(sqlDB)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize gorm: %v\n", err)
			os.Exit(1)
		}

		outbox := notificationPostgres.NewOutboxRepository(db, config.Messaging.Topic)
		if err := outbox.Enqueue(ctx, eventAggType, eventAggID, testEvent); err != nil {
			log.Error("failed to enqueue event", "error", err)
			return
		}
		log.Info("test event enqueued", "event_type", eventType, "event_id", testEvent.ID, "topic", config.Messaging.Topic)
		return
	}

	eventBus := events.NewEventBus(log)
	eventBus.Subscribe(eventType, func(ctx context.Context, event events.Event) error {
		log.Info("test handler received event",
			"event_id", event.EventID(),
			"event_type", event.EventType(),
			"payload", event.Payload())
		return nil
	})

	log.Info("publishing test event", "event_type", eventType, "event_id", testEvent.ID)
	if err := eventBus.Publish(ctx, testEvent); err != nil {
		log.Error("failed to publish event", "error", err)
		return
	}

	eventBus.Wait()
	log.Info("test event published successfully")
}

func init() {
	publishEventCmd.Flags().StringVar(&eventData, "data", "test message", "Event data message")
	publishEventCmd.Flags().BoolVar(&eventOutbox, "outbox", false, "Enqueue in the outbox instead of the in-process bus")
	publishEventCmd.Flags().StringVar(&eventAggType, "aggregate-type", "cli", "Aggregate type recorded with an outbox event")
	publishEventCmd.Flags().StringVar(&eventAggID, "aggregate-id", "test", "Aggregate id, used as the kafka key")

	eventCmd.AddCommand(publishEventCmd)

	rootCmd.AddCommand(eventCmd)
}
