package notification_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"

	"github.com/frahmantamala/hr-backoffice/internal/core/events"
	"github.com/frahmantamala/hr-backoffice/internal/notification"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	kafkago "github.com/segmentio/kafka-go"
)

type captureWriter struct {
	messages []kafkago.Message
}

func (w *captureWriter) WriteMessages(ctx context.Context, msgs ...kafkago.Message) error {
	w.messages = append(w.messages, msgs...)
	return nil
}

var _ = Describe("Publishers", func() {
	var (
		ctx   context.Context
		event *events.EmployeeLifecycleEvent
		msg   notification.Message
	)

	BeforeEach(func() {
		ctx = context.Background()
		event = events.NewEmployeeLifecycleEvent(events.EventTypeEmployeeOnboarded, 7, 1)
		payload, err := json.Marshal(event)
		Expect(err).NotTo(HaveOccurred())
		msg = notification.Message{
			ID:            event.ID,
			AggregateType: "employee",
			AggregateID:   "7",
			EventType:     event.Type,
			Topic:         "hr.events",
			Payload:       payload,
		}
	})

	It("keys kafka messages by aggregate and carries the event id header", func() {
		writer := &captureWriter{}
		Expect(notification.NewKafkaPublisher(writer).Publish(ctx, msg)).To(Succeed())

		Expect(writer.messages).To(HaveLen(1))
		written := writer.messages[0]
		Expect(written.Topic).To(Equal("hr.events"))
		Expect(string(written.Key)).To(Equal("7"))
		Expect(written.Headers).To(ContainElement(kafkago.Header{Key: "event_id", Value: []byte(event.ID)}))
	})

	It("replays messages onto the in-process bus", func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		bus := events.NewEventBus(logger)
		var received []string
		bus.Subscribe(events.EventTypeEmployeeOnboarded, func(ctx context.Context, e events.Event) error {
			received = append(received, e.EventID())
			return nil
		})

		Expect(notification.NewBusPublisher(bus).Publish(ctx, msg)).To(Succeed())
		Expect(received).To(Equal([]string{event.ID}))
	})

	It("rejects payloads that are not events", func() {
		bus := events.NewEventBus(slog.Default())
		msg.Payload = []byte("{")
		Expect(notification.NewBusPublisher(bus).Publish(ctx, msg)).NotTo(Succeed())
	})
})
