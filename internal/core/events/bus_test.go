package events_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/frahmantamala/hr-backoffice/internal/core/events"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("EventBus", func() {
	var bus *events.EventBus

	BeforeEach(func() {
		bus = events.NewEventBus(slog.New(slog.NewTextHandler(io.Discard, nil)))
	})

	It("delivers an event to every handler of its type", func() {
		var calls int32
		handler := func(ctx context.Context, e events.Event) error {
			atomic.AddInt32(&calls, 1)
			return nil
		}
		bus.Subscribe(events.EventTypeRequestResolved, handler)
		bus.Subscribe(events.EventTypeRequestResolved, handler)
		bus.Subscribe(events.EventTypePayrollGenerated, handler)

		err := bus.Publish(context.Background(), events.NewRequestResolvedEvent("leave", 7, 3, "Approved", 1))
		Expect(err).NotTo(HaveOccurred())

		bus.Wait()
		Expect(atomic.LoadInt32(&calls)).To(Equal(int32(2)))
	})

	It("keeps delivering after the caller's context is cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		seen := make(chan error, 1)
		bus.Subscribe(events.EventTypePayrollGenerated, func(hctx context.Context, e events.Event) error {
			seen <- hctx.Err()
			return nil
		})

		Expect(bus.Publish(ctx, events.NewPayrollGeneratedEvent(3, "March", 2025, "7350.00"))).To(Succeed())
		cancel()
		bus.Wait()

		Eventually(seen).Should(Receive(BeNil()))
	})

	It("ignores events nobody listens to", func() {
		Expect(bus.Publish(context.Background(), events.BaseEvent{ID: "x", Type: "unknown"})).To(Succeed())
		Expect(bus.PublishSync(context.Background(), events.BaseEvent{ID: "x", Type: "unknown"})).To(Succeed())
	})

	It("returns the first handler error from PublishSync", func() {
		boom := errors.New("boom")
		var second bool
		bus.Subscribe(events.EventTypeEmployeeOnboarded, func(ctx context.Context, e events.Event) error { return boom })
		bus.Subscribe(events.EventTypeEmployeeOnboarded, func(ctx context.Context, e events.Event) error {
			second = true
			return nil
		})

		err := bus.PublishSync(context.Background(), events.NewEmployeeLifecycleEvent(events.EventTypeEmployeeOnboarded, 4, 9))
		Expect(err).To(MatchError(boom))
		Expect(second).To(BeFalse())
	})
})

var _ = Describe("domain events", func() {
	It("carries the resolution in the payload", func() {
		e := events.NewRequestResolvedEvent("bank_change", 12, 5, "Rejected", 2)
		Expect(e.EventType()).To(Equal(events.EventTypeRequestResolved))
		Expect(e.EventID()).NotTo(BeEmpty())
		Expect(e.Payload()).To(HaveKeyWithValue("request_id", int64(12)))
		Expect(e.Payload()).To(HaveKeyWithValue("status", "Rejected"))
	})

	It("gives lifecycle events the requested type", func() {
		e := events.NewEmployeeLifecycleEvent(events.EventTypeEmployeeTerminated, 4, 9)
		Expect(e.EventType()).To(Equal(events.EventTypeEmployeeTerminated))
		Expect(e.EmployeeID).To(Equal(int64(4)))
		Expect(e.UserID).To(Equal(int64(9)))
	})
})
