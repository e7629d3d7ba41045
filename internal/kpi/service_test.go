package kpi_test

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/frahmantamala/hr-backoffice/internal"
	"github.com/frahmantamala/hr-backoffice/internal/core/period"
	"github.com/frahmantamala/hr-backoffice/internal/kpi"
	"github.com/frahmantamala/hr-backoffice/internal/workflow"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

type fakeReader struct {
	headcount kpi.Headcount
	days      []time.Time
	totalsFor []period.Period
	failWith  error
}

func (f *fakeReader) Headcount(ctx context.Context) (kpi.Headcount, error) {
	return f.headcount, f.failWith
}

func (f *fakeReader) DepartmentCount(ctx context.Context) (int64, error) {
	return 3, nil
}

func (f *fakeReader) HeadcountByDepartment(ctx context.Context) ([]kpi.DepartmentHeadcount, error) {
	return nil, nil
}

func (f *fakeReader) GenderDistribution(ctx context.Context) ([]kpi.Bucket, error) {
	return nil, f.failWith
}

func (f *fakeReader) AttendanceDistribution(ctx context.Context, day time.Time) (kpi.AttendanceDistribution, error) {
	f.days = append(f.days, day)
	return kpi.AttendanceDistribution{Date: day, Present: 2, Leave: 1}, nil
}

func (f *fakeReader) PayrollTotals(ctx context.Context, p period.Period) (kpi.PayrollTotals, error) {
	f.totalsFor = append(f.totalsFor, p)
	return kpi.PayrollTotals{Month: p.MonthName(), Year: p.Year, Lines: 1, Net: decimal.NewFromInt(45000)}, nil
}

type fakeCounter struct {
	counts workflow.Counts
}

func (f fakeCounter) AggregateCounts(ctx context.Context) (*workflow.Counts, error) {
	c := f.counts
	return &c, nil
}

var _ = Describe("Service", func() {
	var (
		reader  *fakeReader
		service *kpi.Service
		ctx     context.Context
		clock   time.Time
	)

	BeforeEach(func() {
		reader = &fakeReader{headcount: kpi.Headcount{Active: 4, Inactive: 1, Total: 5}}
		clock = time.Date(2025, time.March, 14, 17, 30, 0, 0, time.UTC)
		counter := fakeCounter{counts: workflow.Counts{TotalPending: 2, PendingLeave: 1, PendingReimbursement: 1}}
		service = kpi.NewService(reader, counter, nil).WithClock(func() time.Time { return clock })
		ctx = context.Background()
	})

	It("assembles the summary for today", func() {
		summary, err := service.Summary(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(summary.Headcount.Total).To(Equal(int64(5)))
		Expect(summary.Departments).To(Equal(int64(3)))
		Expect(summary.Pending.TotalPending).To(Equal(int64(2)))
		Expect(summary.Attendance.Marked()).To(Equal(int64(3)))
		Expect(reader.days).To(Equal([]time.Time{time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC)}))
	})

	It("passes store errors through", func() {
		reader.failWith = apperrors.NewStoreError("failed to read headcount", errors.New("conn refused"))

		_, err := service.Summary(ctx)
		Expect(apperrors.IsType(err, apperrors.ErrorTypeStore)).To(BeTrue())

		_, err = service.GenderDistribution(ctx)
		Expect(apperrors.IsType(err, apperrors.ErrorTypeStore)).To(BeTrue())
	})

	It("returns empty slices rather than nil", func() {
		rows, err := service.HeadcountByDepartment(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).NotTo(BeNil())
	})

	It("truncates the requested date to the day", func() {
		_, err := service.AttendanceDistribution(ctx, time.Date(2025, time.February, 2, 9, 15, 0, 0, time.UTC))
		Expect(err).NotTo(HaveOccurred())
		Expect(reader.days).To(Equal([]time.Time{time.Date(2025, time.February, 2, 0, 0, 0, 0, time.UTC)}))
	})

	It("validates the payroll period", func() {
		_, err := service.PayrollTotals(ctx, period.Period{Month: 13, Year: 2025})
		Expect(apperrors.IsType(err, apperrors.ErrorTypeValidation)).To(BeTrue())
		Expect(reader.totalsFor).To(BeEmpty())

		totals, err := service.PayrollTotals(ctx, period.Period{Month: time.March, Year: 2025})
		Expect(err).NotTo(HaveOccurred())
		Expect(totals.Month).To(Equal("March"))
	})
})
