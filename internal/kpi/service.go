package kpi

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/hr-backoffice/internal/core/period"
	"github.com/frahmantamala/hr-backoffice/internal/workflow"
)

type RepositoryAPI interface {
	Headcount(ctx context.Context) (Headcount, error)
	DepartmentCount(ctx context.Context) (int64, error)
	HeadcountByDepartment(ctx context.Context) ([]DepartmentHeadcount, error)
	GenderDistribution(ctx context.Context) ([]Bucket, error)
	AttendanceDistribution(ctx context.Context, day time.Time) (AttendanceDistribution, error)
	PayrollTotals(ctx context.Context, p period.Period) (PayrollTotals, error)
}

// PendingCounter is the workflow engine's pending snapshot.
type PendingCounter interface {
	AggregateCounts(ctx context.Context) (*workflow.Counts, error)
}

type Service struct {
	repo    RepositoryAPI
	pending PendingCounter
	logger  *slog.Logger
	now     func() time.Time
}

func NewService(repo RepositoryAPI, pending PendingCounter, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:    repo,
		pending: pending,
		logger:  logger,
		now:     time.Now,
	}
}

// WithClock replaces the clock used to pick "today".
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	headcount, err := s.repo.Headcount(ctx)
	if err != nil {
		s.logger.Error("failed to read headcount", "error", err)
		return nil, err
	}

	departments, err := s.repo.DepartmentCount(ctx)
	if err != nil {
		s.logger.Error("failed to count departments", "error", err)
		return nil, err
	}

	counts, err := s.pending.AggregateCounts(ctx)
	if err != nil {
		s.logger.Error("failed to read pending counts", "error", err)
		return nil, err
	}

	attendance, err := s.repo.AttendanceDistribution(ctx, day(s.now()))
	if err != nil {
		s.logger.Error("failed to read attendance distribution", "error", err)
		return nil, err
	}

	return &Summary{
		Headcount:   headcount,
		Departments: departments,
		Pending:     *counts,
		Attendance:  attendance,
	}, nil
}

func (s *Service) HeadcountByDepartment(ctx context.Context) ([]DepartmentHeadcount, error) {
	rows, err := s.repo.HeadcountByDepartment(ctx)
	if err != nil {
		s.logger.Error("failed to read headcount by department", "error", err)
		return nil, err
	}
	if rows == nil {
		rows = []DepartmentHeadcount{}
	}
	return rows, nil
}

func (s *Service) GenderDistribution(ctx context.Context) ([]Bucket, error) {
	buckets, err := s.repo.GenderDistribution(ctx)
	if err != nil {
		s.logger.Error("failed to read gender distribution", "error", err)
		return nil, err
	}
	if buckets == nil {
		buckets = []Bucket{}
	}
	return buckets, nil
}

// AttendanceDistribution counts marks for the calendar day of date; a zero
// date means today.
func (s *Service) AttendanceDistribution(ctx context.Context, date time.Time) (*AttendanceDistribution, error) {
	if date.IsZero() {
		date = s.now()
	}
	dist, err := s.repo.AttendanceDistribution(ctx, day(date))
	if err != nil {
		s.logger.Error("failed to read attendance distribution", "error", err, "date", date)
		return nil, err
	}
	return &dist, nil
}

func (s *Service) PayrollTotals(ctx context.Context, p period.Period) (*PayrollTotals, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	totals, err := s.repo.PayrollTotals(ctx, p)
	if err != nil {
		s.logger.Error("failed to read payroll totals", "error", err, "period", p.String())
		return nil, err
	}
	return &totals, nil
}

func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
