package workflow_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	apperrors "github.com/frahmantamala/hr-backoffice/internal"
	"github.com/frahmantamala/hr-backoffice/internal/core/events"
	"github.com/frahmantamala/hr-backoffice/internal/workflow"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// Mock repository for testing
type mockRequestRepository struct {
	requests  map[string]*workflow.Request
	employees map[int64]bool
	enqueued  []events.Event
	nextID    int64
	casErr    error
}

func newMockRequestRepository() *mockRequestRepository {
	return &mockRequestRepository{
		requests:  make(map[string]*workflow.Request),
		employees: map[int64]bool{7: true},
		nextID:    100,
	}
}

func requestKey(kind workflow.Kind, id int64) string {
	return fmt.Sprintf("%s/%d", kind, id)
}

func (m *mockRequestRepository) add(r workflow.Request) {
	m.requests[requestKey(r.Kind, r.ID)] = &r
}

// WithinTx applies fn against a copy and keeps it only when fn succeeds.
func (m *mockRequestRepository) WithinTx(ctx context.Context, fn func(repo workflow.RepositoryAPI) error) error {
	snapshot := make(map[string]*workflow.Request, len(m.requests))
	for k, v := range m.requests {
		cp := *v
		snapshot[k] = &cp
	}
	enqueued := len(m.enqueued)

	if err := fn(m); err != nil {
		m.requests = snapshot
		m.enqueued = m.enqueued[:enqueued]
		return err
	}
	return nil
}

func (m *mockRequestRepository) List(ctx context.Context, filter workflow.Filter) ([]workflow.Request, error) {
	var out []workflow.Request
	for _, r := range m.requests {
		if filter.Kind != nil && r.Kind != *filter.Kind {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

func (m *mockRequestRepository) Get(ctx context.Context, kind workflow.Kind, id int64) (*workflow.Request, error) {
	r, ok := m.requests[requestKey(kind, id)]
	if !ok {
		return nil, apperrors.ErrRequestNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *mockRequestRepository) Exists(ctx context.Context, kind workflow.Kind, id int64) (bool, error) {
	_, ok := m.requests[requestKey(kind, id)]
	return ok, nil
}

func (m *mockRequestRepository) EmployeeExists(ctx context.Context, employeeID int64) (bool, error) {
	return m.employees[employeeID], nil
}

func (m *mockRequestRepository) CompareAndSetStatus(ctx context.Context, kind workflow.Kind, id int64, from, to workflow.Status, resolvedBy int64, resolvedAt time.Time) (bool, error) {
	if m.casErr != nil {
		return false, m.casErr
	}
	r, ok := m.requests[requestKey(kind, id)]
	if !ok || r.Status != from {
		return false, nil
	}
	r.Status = to
	r.ResolvedBy = &resolvedBy
	r.ResolvedAt = &resolvedAt
	return true, nil
}

func (m *mockRequestRepository) Create(ctx context.Context, employeeID int64, payload workflow.Payload, submittedAt time.Time) (int64, error) {
	id := m.nextID
	m.nextID++
	m.add(workflow.Request{
		Kind:        payload.RequestKind(),
		ID:          id,
		EmployeeID:  employeeID,
		Status:      workflow.StatusPending,
		SubmittedAt: submittedAt,
		Payload:     payload,
	})
	return id, nil
}

func (m *mockRequestRepository) Enqueue(ctx context.Context, aggregateID string, event events.Event) error {
	m.enqueued = append(m.enqueued, event)
	return nil
}

func (m *mockRequestRepository) AggregateCounts(ctx context.Context) (*workflow.Counts, error) {
	c := &workflow.Counts{}
	for _, r := range m.requests {
		if r.Status != workflow.StatusPending {
			continue
		}
		c.TotalPending++
		switch r.Kind {
		case workflow.KindLeave:
			c.PendingLeave++
		case workflow.KindBankChange:
			c.PendingBankChange++
		case workflow.KindSalaryAdvance:
			c.PendingSalaryAdvance++
		case workflow.KindReimbursement:
			c.PendingReimbursement++
		}
	}
	return c, nil
}

type recordingPublisher struct {
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.events = append(p.events, event)
	return p.err
}

var _ = Describe("Service", func() {
	var (
		repo      *mockRequestRepository
		publisher *recordingPublisher
		service   *workflow.Service
		ctx       context.Context
		hr        *apperrors.Actor
		submitted time.Time
	)

	BeforeEach(func() {
		repo = newMockRequestRepository()
		publisher = &recordingPublisher{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = workflow.NewService(repo, publisher, logger)
		ctx = context.Background()
		hr = &apperrors.Actor{UserID: 1, Username: "hr.lead", Role: apperrors.RoleHR}
		submitted = time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)

		repo.add(workflow.Request{Kind: workflow.KindLeave, ID: 3, EmployeeID: 7, Status: workflow.StatusPending, SubmittedAt: submitted})
		repo.add(workflow.Request{Kind: workflow.KindReimbursement, ID: 3, EmployeeID: 7, Status: workflow.StatusPending, SubmittedAt: submitted})
	})

	Describe("UpdateStatus", func() {
		It("approves only the addressed kind", func() {
			resolved, err := service.UpdateStatus(ctx, hr, workflow.KindLeave, 3, workflow.StatusApproved)
			Expect(err).NotTo(HaveOccurred())
			Expect(resolved.Status).To(Equal(workflow.StatusApproved))
			Expect(*resolved.ResolvedBy).To(Equal(int64(1)))

			other, err := service.Get(ctx, workflow.KindReimbursement, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(other.Status).To(Equal(workflow.StatusPending))
		})

		It("enqueues and publishes a resolved event", func() {
			_, err := service.UpdateStatus(ctx, hr, workflow.KindLeave, 3, workflow.StatusRejected)
			Expect(err).NotTo(HaveOccurred())

			Expect(repo.enqueued).To(HaveLen(1))
			Expect(repo.enqueued[0].EventType()).To(Equal(events.EventTypeRequestResolved))
			Expect(publisher.events).To(HaveLen(1))
			Expect(publisher.events[0].EventID()).To(Equal(repo.enqueued[0].EventID()))
		})

		It("keeps the change when the in-process publish fails", func() {
			publisher.err = errors.New("bus down")
			resolved, err := service.UpdateStatus(ctx, hr, workflow.KindLeave, 3, workflow.StatusApproved)
			Expect(err).NotTo(HaveOccurred())
			Expect(resolved.Status).To(Equal(workflow.StatusApproved))
		})

		It("reports a conflict when the request already left pending", func() {
			_, err := service.UpdateStatus(ctx, hr, workflow.KindLeave, 3, workflow.StatusApproved)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.UpdateStatus(ctx, hr, workflow.KindLeave, 3, workflow.StatusRejected)
			Expect(err).To(MatchError(apperrors.ErrRequestAlreadyResolved))

			r, err := service.Get(ctx, workflow.KindLeave, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(r.Status).To(Equal(workflow.StatusApproved))
			Expect(repo.enqueued).To(HaveLen(1))
		})

		It("reports not found and changes nothing for a missing id", func() {
			before, err := service.AggregateCounts(ctx)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.UpdateStatus(ctx, hr, workflow.KindBankChange, 3, workflow.StatusApproved)
			Expect(err).To(MatchError(apperrors.ErrRequestNotFound))

			after, err := service.AggregateCounts(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(after).To(Equal(before))
			Expect(repo.enqueued).To(BeEmpty())
		})

		It("rejects pending as a target", func() {
			_, err := service.UpdateStatus(ctx, hr, workflow.KindLeave, 3, workflow.StatusPending)
			Expect(err).To(MatchError(apperrors.ErrInvalidTargetStatus))
		})

		It("rejects an unknown kind", func() {
			_, err := service.UpdateStatus(ctx, hr, workflow.Kind("overtime"), 3, workflow.StatusApproved)
			Expect(err).To(MatchError(apperrors.ErrInvalidRequestKind))
		})

		It("requires an acting user allowed to resolve requests", func() {
			_, err := service.UpdateStatus(ctx, nil, workflow.KindLeave, 3, workflow.StatusApproved)
			Expect(apperrors.IsType(err, apperrors.ErrorTypeUnauthorized)).To(BeTrue())

			employee := &apperrors.Actor{UserID: 9, Role: apperrors.RoleEmployee}
			_, err = service.UpdateStatus(ctx, employee, workflow.KindLeave, 3, workflow.StatusApproved)
			Expect(err).To(MatchError(apperrors.ErrInsufficientRole))
		})

		It("surfaces store failures and rolls back", func() {
			repo.casErr = apperrors.NewStoreError("failed to update request status", context.DeadlineExceeded)
			_, err := service.UpdateStatus(ctx, hr, workflow.KindLeave, 3, workflow.StatusApproved)
			Expect(apperrors.IsType(err, apperrors.ErrorTypeStore)).To(BeTrue())
			Expect(publisher.events).To(BeEmpty())
		})
	})

	Describe("AggregateCounts", func() {
		It("drops by exactly one after an approval", func() {
			before, err := service.AggregateCounts(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(before.TotalPending).To(Equal(int64(2)))

			_, err = service.UpdateStatus(ctx, hr, workflow.KindLeave, 3, workflow.StatusApproved)
			Expect(err).NotTo(HaveOccurred())

			after, err := service.AggregateCounts(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(after.TotalPending).To(Equal(before.TotalPending - 1))
			Expect(after.PendingLeave).To(Equal(before.PendingLeave - 1))
			Expect(after.PendingReimbursement).To(Equal(before.PendingReimbursement))
		})
	})

	Describe("List", func() {
		It("returns both kinds sharing an id", func() {
			requests, err := service.List(ctx, workflow.Filter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(requests).To(HaveLen(2))
			Expect(requests[0].Kind).To(Equal(workflow.KindLeave))
			Expect(requests[1].Kind).To(Equal(workflow.KindReimbursement))
		})

		It("rejects an unknown status filter", func() {
			_, err := service.List(ctx, workflow.Filter{Status: "Cancelled"})
			Expect(apperrors.IsType(err, apperrors.ErrorTypeValidation)).To(BeTrue())
		})

		It("returns an empty slice when nothing matches", func() {
			kind := workflow.KindBankChange
			requests, err := service.List(ctx, workflow.Filter{Kind: &kind})
			Expect(err).NotTo(HaveOccurred())
			Expect(requests).NotTo(BeNil())
			Expect(requests).To(BeEmpty())
		})
	})

	Describe("Submit", func() {
		It("creates a pending request", func() {
			start := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)
			created, err := service.Submit(ctx, workflow.SubmitInput{Kind: workflow.KindLeave, EmployeeID: 7, Start: start, End: start.AddDate(0, 0, 4)})
			Expect(err).NotTo(HaveOccurred())
			Expect(created.Status).To(Equal(workflow.StatusPending))
			Expect(created.Payload).To(BeAssignableToTypeOf(workflow.LeavePayload{}))
		})

		It("rejects an unknown employee", func() {
			_, err := service.Submit(ctx, workflow.SubmitInput{Kind: workflow.KindBankChange, EmployeeID: 99, NewAccount: "123"})
			Expect(err).To(MatchError(apperrors.ErrEmployeeNotFound))
		})
	})
})
