package payroll

import (
	"context"
	"errors"
	"log/slog"

	apperrors "github.com/frahmantamala/hr-backoffice/internal"
	"github.com/frahmantamala/hr-backoffice/internal/core/events"
	"github.com/frahmantamala/hr-backoffice/internal/core/period"
	"github.com/shopspring/decimal"
)

// RepositoryAPI is the payroll store. Methods called on the repository handed
// to WithinTx share that transaction.
type RepositoryAPI interface {
	WithinTx(ctx context.Context, fn func(repo RepositoryAPI) error) error
	GetCompensation(ctx context.Context, employeeID int64) (*Compensation, error)
	ActiveTaxPolicies(ctx context.Context) ([]TaxPolicy, error)
	FindLine(ctx context.Context, employeeID int64, p period.Period) (*Line, error)
	Upsert(ctx context.Context, line *Line) (*Line, error)
	TransitionStatus(ctx context.Context, lineID int64, from, to string) (bool, error)
	ListViews(ctx context.Context, filter Filter) ([]View, error)
	ActiveEmployeeIDs(ctx context.Context) ([]int64, error)
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

// Generate computes the line from the employee's salary and the active tax
// policy, keeping allowances and deductions already recorded for the period.
func (s *Service) Generate(ctx context.Context, employeeID int64, p period.Period) (decimal.Decimal, error) {
	if err := validateKey(employeeID, p); err != nil {
		return decimal.Zero, err
	}

	var saved *Line
	err := s.repo.WithinTx(ctx, func(repo RepositoryAPI) error {
		comp, err := repo.GetCompensation(ctx, employeeID)
		if err != nil {
			return err
		}
		if !comp.BaseSalary.Valid {
			return apperrors.ErrSalaryNotFound
		}

		policy, err := activePolicy(ctx, repo)
		if err != nil {
			return err
		}

		line := &Line{
			EmployeeID: employeeID,
			Period:     p,
			BaseSalary: comp.BaseSalary.Decimal,
			Allowances: decimal.Zero,
			Deductions: decimal.Zero,
			Tax:        ComputeTax(comp.BaseSalary.Decimal, policy.TaxRate),
		}

		existing, err := repo.FindLine(ctx, employeeID, p)
		switch {
		case err == nil:
			if existing.IsProcessed() {
				return apperrors.ErrPayrollProcessed
			}
			line.Allowances = existing.Allowances
			line.Deductions = existing.Deductions
		case !errors.Is(err, apperrors.ErrPayrollNotFound):
			return err
		}

		saved, err = repo.Upsert(ctx, line)
		return err
	})
	if err != nil {
		s.logger.Error("failed to generate payroll", "error", err, "employee_id", employeeID, "period", p.String())
		return decimal.Zero, err
	}

	s.logger.Info("payroll generated",
		"employee_id", employeeID,
		"period", p.String(),
		"net_salary", saved.Net().StringFixed(2))

	s.publishGenerated(ctx, saved)
	return saved.Net(), nil
}

// Record stores a manually supplied breakdown through the same upsert as Generate.
func (s *Service) Record(ctx context.Context, in RecordInput) (*Line, error) {
	if err := in.Validate(); err != nil {
		s.logger.Warn("payroll record validation failed", "error", err, "employee_id", in.EmployeeID)
		return nil, err
	}

	var saved *Line
	err := s.repo.WithinTx(ctx, func(repo RepositoryAPI) error {
		if _, err := repo.GetCompensation(ctx, in.EmployeeID); err != nil {
			return err
		}
		existing, err := repo.FindLine(ctx, in.EmployeeID, in.Period)
		switch {
		case err == nil && existing.IsProcessed():
			return apperrors.ErrPayrollProcessed
		case err != nil && !errors.Is(err, apperrors.ErrPayrollNotFound):
			return err
		}
		saved, err = repo.Upsert(ctx, in.Line())
		return err
	})
	if err != nil {
		s.logger.Error("failed to record payroll", "error", err, "employee_id", in.EmployeeID, "period", in.Period.String())
		return nil, err
	}

	s.logger.Info("payroll recorded", "employee_id", in.EmployeeID, "period", in.Period.String())
	s.publishGenerated(ctx, saved)
	return saved, nil
}

func (s *Service) MarkProcessed(ctx context.Context, employeeID int64, p period.Period) (*Line, error) {
	if err := validateKey(employeeID, p); err != nil {
		return nil, err
	}

	var line *Line
	err := s.repo.WithinTx(ctx, func(repo RepositoryAPI) error {
		var err error
		line, err = repo.FindLine(ctx, employeeID, p)
		if err != nil {
			return err
		}
		if line.IsProcessed() {
			return apperrors.ErrPayrollProcessed
		}
		moved, err := repo.TransitionStatus(ctx, line.ID, StatusGenerated, StatusProcessed)
		if err != nil {
			return err
		}
		if !moved {
			return apperrors.ErrPayrollProcessed
		}
		line.Status = StatusProcessed
		return nil
	})
	if err != nil {
		s.logger.Error("failed to mark payroll processed", "error", err, "employee_id", employeeID, "period", p.String())
		return nil, err
	}

	s.logger.Info("payroll marked processed", "employee_id", employeeID, "period", p.String())
	return line, nil
}

func (s *Service) List(ctx context.Context) ([]View, error) {
	return s.ListFiltered(ctx, Filter{})
}

func (s *Service) ListForEmployee(ctx context.Context, employeeID int64) ([]View, error) {
	if employeeID <= 0 {
		return nil, apperrors.NewValidationFieldError("employee_id", "employee_id must be positive", apperrors.ErrCodeValidationFailed)
	}
	return s.ListFiltered(ctx, Filter{EmployeeID: &employeeID})
}

func (s *Service) ListFiltered(ctx context.Context, filter Filter) ([]View, error) {
	if filter.Period != nil {
		if err := filter.Period.Validate(); err != nil {
			return nil, err
		}
	}
	if filter.Status != "" && filter.Status != StatusGenerated && filter.Status != StatusProcessed {
		return nil, apperrors.NewValidationFieldError("status", "status must be Generated or Processed", apperrors.ErrCodeInvalidStatus)
	}

	views, err := s.repo.ListViews(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list payroll", "error", err)
		return nil, err
	}
	if views == nil {
		views = []View{}
	}
	return views, nil
}

// BatchResult reports one scheduled generation run.
type BatchResult struct {
	Period    period.Period
	Generated int
	Failures  map[int64]error
}

// GenerateForActive runs Generate for every active employee. A failure for one
// employee is recorded and the batch moves on.
func (s *Service) GenerateForActive(ctx context.Context, p period.Period) (*BatchResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	ids, err := s.repo.ActiveEmployeeIDs(ctx)
	if err != nil {
		s.logger.Error("failed to load active employees", "error", err)
		return nil, err
	}

	result := &BatchResult{Period: p, Failures: make(map[int64]error)}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if _, err := s.Generate(ctx, id, p); err != nil {
			result.Failures[id] = err
			continue
		}
		result.Generated++
	}

	s.logger.Info("payroll batch finished",
		"period", p.String(),
		"generated", result.Generated,
		"failed", len(result.Failures))
	return result, nil
}

func (s *Service) publishGenerated(ctx context.Context, line *Line) {
	if s.publisher == nil {
		return
	}
	event := events.NewPayrollGeneratedEvent(line.EmployeeID, line.Period.MonthName(), line.Period.Year, line.Net().StringFixed(2))
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish payroll event", "error", err, "employee_id", line.EmployeeID)
	}
}

func activePolicy(ctx context.Context, repo RepositoryAPI) (*TaxPolicy, error) {
	policies, err := repo.ActiveTaxPolicies(ctx)
	if err != nil {
		return nil, err
	}
	switch len(policies) {
	case 0:
		return nil, apperrors.ErrTaxPolicyNotFound
	case 1:
		return &policies[0], nil
	default:
		return nil, apperrors.ErrAmbiguousTaxPolicy
	}
}

func validateKey(employeeID int64, p period.Period) error {
	if employeeID <= 0 {
		return apperrors.NewValidationFieldError("employee_id", "employee_id must be positive", apperrors.ErrCodeValidationFailed)
	}
	return p.Validate()
}
