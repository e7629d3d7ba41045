package notification_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/frahmantamala/hr-backoffice/internal/core/events"
	"github.com/frahmantamala/hr-backoffice/internal/notification"
	"github.com/go-redis/redismock/v9"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
)

var _ = Describe("Consumer", func() {
	var (
		mock    redismock.ClientMock
		dedupe  *notification.Deduplicator
		handled []events.Event
		failing bool
		ctx     context.Context
		event   *events.RequestResolvedEvent
		msg     kafkago.Message
	)

	handler := func(ctx context.Context, e events.Event) error {
		if failing {
			return errors.New("smtp down")
		}
		handled = append(handled, e)
		return nil
	}

	BeforeEach(func() {
		var db *redis.Client
		db, mock = redismock.NewClientMock()
		dedupe = notification.NewDeduplicator(db, time.Hour)
		handled = nil
		failing = false
		ctx = context.Background()

		event = events.NewRequestResolvedEvent("leave", 3, 7, "Approved", 42)
		payload, err := json.Marshal(event)
		Expect(err).NotTo(HaveOccurred())
		msg = kafkago.Message{Value: payload, Offset: 11}
	})

	AfterEach(func() {
		Expect(mock.ExpectationsWereMet()).To(Succeed())
	})

	It("hands a first delivery to the handler", func() {
		mock.ExpectSetNX(notification.Key(event.ID), "1", time.Hour).SetVal(true)
		consumer := notification.NewConsumer(nil, dedupe, handler, nil)

		Expect(consumer.Handle(ctx, msg)).To(BeTrue())
		Expect(handled).To(HaveLen(1))
		Expect(handled[0].EventID()).To(Equal(event.ID))
		Expect(handled[0].EventType()).To(Equal(events.EventTypeRequestResolved))
	})

	It("skips a redelivered event but commits it", func() {
		mock.ExpectSetNX(notification.Key(event.ID), "1", time.Hour).SetVal(false)
		consumer := notification.NewConsumer(nil, dedupe, handler, nil)

		Expect(consumer.Handle(ctx, msg)).To(BeTrue())
		Expect(handled).To(BeEmpty())
	})

	It("releases the claim when the handler fails", func() {
		failing = true
		mock.ExpectSetNX(notification.Key(event.ID), "1", time.Hour).SetVal(true)
		mock.ExpectDel(notification.Key(event.ID)).SetVal(1)
		consumer := notification.NewConsumer(nil, dedupe, handler, nil)

		Expect(consumer.Handle(ctx, msg)).To(BeFalse())
	})

	It("does not commit when redis is unavailable", func() {
		mock.ExpectSetNX(notification.Key(event.ID), "1", time.Hour).SetErr(errors.New("connection refused"))
		consumer := notification.NewConsumer(nil, dedupe, handler, nil)

		Expect(consumer.Handle(ctx, msg)).To(BeFalse())
		Expect(handled).To(BeEmpty())
	})

	It("commits messages it cannot decode", func() {
		consumer := notification.NewConsumer(nil, dedupe, handler, nil)

		Expect(consumer.Handle(ctx, kafkago.Message{Value: []byte("not json")})).To(BeTrue())
		Expect(handled).To(BeEmpty())
	})
})

// Scripted reader for testing; io.EOF once the messages run out, like a closed kafka reader.
type scriptedReader struct {
	mu        sync.Mutex
	messages  []kafkago.Message
	committed []int64
	fetchErrs []error
}

func (r *scriptedReader) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.fetchErrs) > 0 {
		err := r.fetchErrs[0]
		r.fetchErrs = r.fetchErrs[1:]
		return kafkago.Message{}, err
	}
	if len(r.messages) == 0 {
		return kafkago.Message{}, io.EOF
	}
	msg := r.messages[0]
	r.messages = r.messages[1:]
	return msg, nil
}

func (r *scriptedReader) CommitMessages(ctx context.Context, msgs ...kafkago.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *scriptedReader) Committed() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.committed...)
}

var _ = Describe("Consumer.Run", func() {
	var (
		first, second *events.RequestResolvedEvent
		reader        *scriptedReader
		calls         map[string]int
		failuresLeft  map[string]int
		mu            sync.Mutex
	)

	encode := func(e events.Event, offset int64) kafkago.Message {
		payload, err := json.Marshal(e)
		Expect(err).NotTo(HaveOccurred())
		return kafkago.Message{Value: payload, Offset: offset}
	}

	handler := func(ctx context.Context, e events.Event) error {
		mu.Lock()
		defer mu.Unlock()
		calls[e.EventID()]++
		if failuresLeft[e.EventID()] != 0 {
			failuresLeft[e.EventID()]--
			return errors.New("smtp down")
		}
		return nil
	}

	callsFor := func(id string) int {
		mu.Lock()
		defer mu.Unlock()
		return calls[id]
	}

	BeforeEach(func() {
		first = events.NewRequestResolvedEvent("bank_change", 3, 7, "Rejected", 42)
		second = events.NewRequestResolvedEvent("leave", 3, 7, "Approved", 42)
		reader = &scriptedReader{messages: []kafkago.Message{encode(first, 10), encode(second, 11)}}
		calls = map[string]int{}
		failuresLeft = map[string]int{}
	})

	It("retries a failed message before moving past its offset", func() {
		failuresLeft[first.ID] = 2
		consumer := notification.NewConsumer(reader, nil, handler, nil).WithRetryDelay(time.Millisecond, 5*time.Millisecond)

		consumer.Run(context.Background())

		Expect(callsFor(first.ID)).To(Equal(3))
		Expect(callsFor(second.ID)).To(Equal(1))
		Expect(reader.Committed()).To(Equal([]int64{10, 11}))
	})

	It("stops without committing when cancelled during retries", func() {
		failuresLeft[first.ID] = -1
		consumer := notification.NewConsumer(reader, nil, handler, nil).WithRetryDelay(time.Millisecond, 2*time.Millisecond)
		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan struct{})
		go func() {
			defer close(done)
			consumer.Run(ctx)
		}()

		Eventually(func() int { return callsFor(first.ID) }).Should(BeNumerically(">=", 3))
		cancel()
		Eventually(done).Should(BeClosed())

		Expect(callsFor(second.ID)).To(BeZero())
		Expect(reader.Committed()).To(BeEmpty())
	})

	It("returns once the reader is closed", func() {
		reader.messages = nil
		consumer := notification.NewConsumer(reader, nil, handler, nil)

		done := make(chan struct{})
		go func() {
			defer close(done)
			consumer.Run(context.Background())
		}()

		Eventually(done).Should(BeClosed())
	})

	It("backs off and keeps fetching after a transient fetch error", func() {
		reader.fetchErrs = []error{errors.New("broker not available")}
		consumer := notification.NewConsumer(reader, nil, handler, nil).WithRetryDelay(time.Millisecond, time.Millisecond)

		consumer.Run(context.Background())

		Expect(reader.Committed()).To(Equal([]int64{10, 11}))
	})
})
