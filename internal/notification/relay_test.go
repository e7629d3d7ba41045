package notification_test

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/hr-backoffice/internal/notification"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type fakeOutbox struct {
	pending []notification.Message
	sent    []string
	failed  map[string]time.Time
	listErr error
}

func (f *fakeOutbox) ListPending(ctx context.Context, limit int, now time.Time) ([]notification.Message, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if len(f.pending) > limit {
		return f.pending[:limit], nil
	}
	return f.pending, nil
}

func (f *fakeOutbox) MarkSent(ctx context.Context, id string, at time.Time) error {
	f.sent = append(f.sent, id)
	return nil
}

func (f *fakeOutbox) MarkFailed(ctx context.Context, id string, reason string, nextRetryAt time.Time) error {
	f.failed[id] = nextRetryAt
	return nil
}

type fakePublisher struct {
	failFor   map[string]bool
	published []string
}

func (p *fakePublisher) Publish(ctx context.Context, msg notification.Message) error {
	if p.failFor[msg.ID] {
		return errors.New("broker unavailable")
	}
	p.published = append(p.published, msg.ID)
	return nil
}

var _ = Describe("Relay", func() {
	var (
		outbox    *fakeOutbox
		publisher *fakePublisher
		ctx       context.Context
	)

	BeforeEach(func() {
		outbox = &fakeOutbox{
			pending: []notification.Message{
				{ID: "a", EventType: "request.resolved", Topic: "hr.events"},
				{ID: "b", EventType: "request.resolved", Topic: "hr.events", RetryCount: 2},
				{ID: "c", EventType: "payroll.generated", Topic: "hr.events"},
			},
			failed: make(map[string]time.Time),
		}
		publisher = &fakePublisher{failFor: map[string]bool{}}
		ctx = context.Background()
	})

	It("publishes every pending message and marks it sent", func() {
		relay := notification.NewRelay(outbox, publisher, nil, time.Second, 10)

		sent, err := relay.ProcessPending(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(sent).To(Equal(3))
		Expect(publisher.published).To(Equal([]string{"a", "b", "c"}))
		Expect(outbox.sent).To(Equal([]string{"a", "b", "c"}))
	})

	It("reschedules a failed message without blocking the rest", func() {
		publisher.failFor["b"] = true
		relay := notification.NewRelay(outbox, publisher, nil, time.Second, 10)

		before := time.Now().UTC()
		sent, err := relay.ProcessPending(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(sent).To(Equal(2))
		Expect(outbox.sent).To(Equal([]string{"a", "c"}))
		Expect(outbox.failed).To(HaveKey("b"))
		Expect(outbox.failed["b"]).To(BeTemporally(">=", before.Add(notification.Backoff(2))))
	})

	It("honours the batch size", func() {
		relay := notification.NewRelay(outbox, publisher, nil, time.Second, 2)

		sent, err := relay.ProcessPending(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(sent).To(Equal(2))
	})

	It("returns list errors", func() {
		outbox.listErr = errors.New("db down")
		relay := notification.NewRelay(outbox, publisher, nil, time.Second, 10)

		_, err := relay.ProcessPending(ctx)
		Expect(err).To(MatchError("db down"))
	})

	DescribeTable("Backoff",
		func(retries int, expected time.Duration) {
			Expect(notification.Backoff(retries)).To(Equal(expected))
		},
		Entry("first retry", 0, 15*time.Second),
		Entry("third retry", 2, 45*time.Second),
		Entry("capped", 40, 150*time.Second),
	)
})
