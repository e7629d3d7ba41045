package workflow

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	apperrors "github.com/frahmantamala/hr-backoffice/internal"
	"github.com/frahmantamala/hr-backoffice/internal/core/events"
)

// RepositoryAPI reads and writes all four request tables. The repository
// passed to WithinTx shares one transaction across its methods.
type RepositoryAPI interface {
	WithinTx(ctx context.Context, fn func(repo RepositoryAPI) error) error
	List(ctx context.Context, filter Filter) ([]Request, error)
	Get(ctx context.Context, kind Kind, id int64) (*Request, error)
	Exists(ctx context.Context, kind Kind, id int64) (bool, error)
	EmployeeExists(ctx context.Context, employeeID int64) (bool, error)
	CompareAndSetStatus(ctx context.Context, kind Kind, id int64, from, to Status, resolvedBy int64, resolvedAt time.Time) (bool, error)
	Create(ctx context.Context, employeeID int64, payload Payload, submittedAt time.Time) (int64, error)
	Enqueue(ctx context.Context, aggregateID string, event events.Event) error
	AggregateCounts(ctx context.Context) (*Counts, error)
}

type Service struct {
	repo      RepositoryAPI
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, publisher events.Publisher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// List merges every request table into one sequence, newest first.
func (s *Service) List(ctx context.Context, filter Filter) ([]Request, error) {
	if filter.Kind != nil && !filter.Kind.Valid() {
		return nil, apperrors.ErrInvalidRequestKind
	}
	if filter.Status != "" && filter.Status != StatusPending && !filter.Status.Terminal() {
		return nil, apperrors.NewValidationFieldError("status", "status must be Pending, Approved or Rejected", apperrors.ErrCodeInvalidStatus)
	}

	requests, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list requests", "error", err)
		return nil, err
	}
	if requests == nil {
		requests = []Request{}
	}
	Sort(requests)
	return requests, nil
}

func (s *Service) Get(ctx context.Context, kind Kind, id int64) (*Request, error) {
	if !kind.Valid() {
		return nil, apperrors.ErrInvalidRequestKind
	}
	if id <= 0 {
		return nil, apperrors.ErrRequestNotFound
	}
	return s.repo.Get(ctx, kind, id)
}

// UpdateStatus resolves a pending request. The status change and the outbox
// row for the notification commit together; a request that already left
// Pending is a conflict.
func (s *Service) UpdateStatus(ctx context.Context, actor *apperrors.Actor, kind Kind, id int64, target Status) (*Request, error) {
	if actor == nil {
		return nil, apperrors.ErrInvalidToken
	}
	if !actor.CanResolveRequests() {
		s.logger.Warn("resolve request denied: insufficient role", "user_id", actor.UserID, "role", actor.Role, "kind", kind, "id", id)
		return nil, apperrors.ErrInsufficientRole
	}
	if !kind.Valid() {
		return nil, apperrors.ErrInvalidRequestKind
	}
	if !target.Terminal() {
		return nil, apperrors.ErrInvalidTargetStatus
	}

	var resolved *Request
	var event *events.RequestResolvedEvent
	err := s.repo.WithinTx(ctx, func(repo RepositoryAPI) error {
		moved, err := repo.CompareAndSetStatus(ctx, kind, id, StatusPending, target, actor.UserID, time.Now().UTC())
		if err != nil {
			return err
		}
		if !moved {
			exists, err := repo.Exists(ctx, kind, id)
			if err != nil {
				return err
			}
			if !exists {
				return apperrors.ErrRequestNotFound
			}
			return apperrors.ErrRequestAlreadyResolved
		}

		resolved, err = repo.Get(ctx, kind, id)
		if err != nil {
			return err
		}

		event = events.NewRequestResolvedEvent(string(kind), id, resolved.EmployeeID, string(target), actor.UserID)
		return repo.Enqueue(ctx, aggregateID(kind, id), event)
	})
	if err != nil {
		s.logger.Error("failed to resolve request", "error", err, "kind", kind, "id", id, "status", target)
		return nil, err
	}

	s.logger.Info("request resolved",
		"kind", kind,
		"id", id,
		"status", target,
		"resolved_by", actor.UserID)

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish request resolved event", "error", err, "kind", kind, "id", id)
		}
	}
	return resolved, nil
}

// Submit files a new Pending request for an employee.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*Request, error) {
	if err := in.Validate(); err != nil {
		s.logger.Warn("request validation failed", "error", err, "kind", in.Kind, "employee_id", in.EmployeeID)
		return nil, err
	}

	var created *Request
	err := s.repo.WithinTx(ctx, func(repo RepositoryAPI) error {
		exists, err := repo.EmployeeExists(ctx, in.EmployeeID)
		if err != nil {
			return err
		}
		if !exists {
			return apperrors.ErrEmployeeNotFound
		}

		id, err := repo.Create(ctx, in.EmployeeID, in.Payload(), time.Now().UTC())
		if err != nil {
			return err
		}
		created, err = repo.Get(ctx, in.Kind, id)
		return err
	})
	if err != nil {
		s.logger.Error("failed to submit request", "error", err, "kind", in.Kind, "employee_id", in.EmployeeID)
		return nil, err
	}

	s.logger.Info("request submitted", "kind", created.Kind, "id", created.ID, "employee_id", created.EmployeeID)
	return created, nil
}

func (s *Service) AggregateCounts(ctx context.Context) (*Counts, error) {
	counts, err := s.repo.AggregateCounts(ctx)
	if err != nil {
		s.logger.Error("failed to aggregate request counts", "error", err)
		return nil, err
	}
	return counts, nil
}

func aggregateID(kind Kind, id int64) string {
	return string(kind) + ":" + strconv.FormatInt(id, 10)
}
