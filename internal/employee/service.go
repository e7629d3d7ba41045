package employee

import (
	"context"
	"log/slog"
	"strings"

	apperrors "github.com/frahmantamala/hr-backoffice/internal"
	"github.com/frahmantamala/hr-backoffice/internal/core/events"
)

type PasswordHasher interface {
	Hash(password string) (string, error)
}

// RepositoryAPI persists employees and their user accounts. Methods of the
// repository handed to WithinTx share one transaction.
type RepositoryAPI interface {
	WithinTx(ctx context.Context, fn func(repo RepositoryAPI) error) error
	RoleExists(ctx context.Context, roleID int64) (bool, error)
	DepartmentExists(ctx context.Context, departmentID int64) (bool, error)
	CreateUser(ctx context.Context, user NewUser) (int64, error)
	CreateEmployee(ctx context.Context, emp NewEmployee) (int64, error)
	Get(ctx context.Context, employeeID int64) (*Employee, error)
	List(ctx context.Context) ([]Employee, error)
	SetStatus(ctx context.Context, employeeID int64, status string) error
	SetDepartment(ctx context.Context, employeeID, departmentID int64) error
}

type Service struct {
	repo      RepositoryAPI
	hasher    PasswordHasher
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, hasher PasswordHasher, publisher events.Publisher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		hasher:    hasher,
		publisher: publisher,
		logger:    logger,
	}
}

// Onboard creates the user account and the employee row together.
func (s *Service) Onboard(ctx context.Context, in OnboardInput) (*Employee, error) {
	if err := in.Validate(); err != nil {
		s.logger.Warn("onboard validation failed", "error", err, "username", in.Username)
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return nil, apperrors.NewInternalError("failed to hash password", err)
	}

	var created *Employee
	err = s.repo.WithinTx(ctx, func(repo RepositoryAPI) error {
		ok, err := repo.RoleExists(ctx, in.RoleID)
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.ErrRoleNotFound
		}
		if in.DepartmentID != nil {
			ok, err := repo.DepartmentExists(ctx, *in.DepartmentID)
			if err != nil {
				return err
			}
			if !ok {
				return apperrors.ErrDepartmentNotFound
			}
		}

		userID, err := repo.CreateUser(ctx, NewUser{
			Username:     strings.TrimSpace(in.Username),
			FirstName:    strings.TrimSpace(in.FirstName),
			LastName:     strings.TrimSpace(in.LastName),
			Email:        in.Email,
			Phone:        in.Phone,
			RoleID:       in.RoleID,
			DepartmentID: in.DepartmentID,
			Designation:  in.Designation,
			PasswordHash: hash,
			DateJoined:   in.DateJoined,
		})
		if err != nil {
			return err
		}

		employeeID, err := repo.CreateEmployee(ctx, NewEmployee{
			UserID:       userID,
			DepartmentID: in.DepartmentID,
			Position:     in.Position,
			Salary:       in.salary(),
			Gender:       in.Gender,
			BankAccount:  in.BankAccount,
			DateJoined:   in.DateJoined,
		})
		if err != nil {
			return err
		}

		created, err = repo.Get(ctx, employeeID)
		return err
	})
	if err != nil {
		s.logger.Error("failed to onboard employee", "error", err, "username", in.Username)
		return nil, err
	}

	s.logger.Info("employee onboarded", "employee_id", created.ID, "user_id", created.UserID)
	s.publish(ctx, events.NewEmployeeLifecycleEvent(events.EventTypeEmployeeOnboarded, created.ID, created.UserID))
	return created, nil
}

// Terminate deactivates the employee and its user account. Terminating an
// inactive employee is a no-op.
func (s *Service) Terminate(ctx context.Context, employeeID int64) (*Employee, error) {
	var emp *Employee
	changed := false
	err := s.repo.WithinTx(ctx, func(repo RepositoryAPI) error {
		var err error
		emp, err = repo.Get(ctx, employeeID)
		if err != nil {
			return err
		}
		if !emp.IsActive() {
			return nil
		}
		if err := repo.SetStatus(ctx, employeeID, StatusInactive); err != nil {
			return err
		}
		emp.Status = StatusInactive
		changed = true
		return nil
	})
	if err != nil {
		s.logger.Error("failed to terminate employee", "error", err, "employee_id", employeeID)
		return nil, err
	}

	if changed {
		s.logger.Info("employee terminated", "employee_id", employeeID)
		s.publish(ctx, events.NewEmployeeLifecycleEvent(events.EventTypeEmployeeTerminated, emp.ID, emp.UserID))
	}
	return emp, nil
}

func (s *Service) Reassign(ctx context.Context, employeeID, departmentID int64) (*Employee, error) {
	var emp *Employee
	err := s.repo.WithinTx(ctx, func(repo RepositoryAPI) error {
		if _, err := repo.Get(ctx, employeeID); err != nil {
			return err
		}
		ok, err := repo.DepartmentExists(ctx, departmentID)
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.ErrDepartmentNotFound
		}
		if err := repo.SetDepartment(ctx, employeeID, departmentID); err != nil {
			return err
		}
		emp, err = repo.Get(ctx, employeeID)
		return err
	})
	if err != nil {
		s.logger.Error("failed to reassign employee", "error", err, "employee_id", employeeID, "department_id", departmentID)
		return nil, err
	}

	s.logger.Info("employee reassigned", "employee_id", employeeID, "department_id", departmentID)
	return emp, nil
}

func (s *Service) Get(ctx context.Context, employeeID int64) (*Employee, error) {
	if employeeID <= 0 {
		return nil, apperrors.ErrEmployeeNotFound
	}
	return s.repo.Get(ctx, employeeID)
}

func (s *Service) List(ctx context.Context) ([]Employee, error) {
	employees, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list employees", "error", err)
		return nil, err
	}
	if employees == nil {
		employees = []Employee{}
	}
	return employees, nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish employee event", "error", err, "event_type", event.EventType())
	}
}
