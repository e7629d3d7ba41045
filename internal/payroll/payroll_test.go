package payroll_test

import (
	"time"

	"github.com/frahmantamala/hr-backoffice/internal/core/period"
	"github.com/frahmantamala/hr-backoffice/internal/payroll"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var _ = Describe("Line", func() {
	It("derives net from its components", func() {
		line := payroll.Line{
			BaseSalary: dec("50000"),
			Allowances: dec("2500.50"),
			Deductions: dec("1000"),
			Tax:        dec("5000"),
		}
		Expect(line.Net().Equal(dec("46500.50"))).To(BeTrue())
	})

	DescribeTable("ComputeTax rounds to cents",
		func(base, rate, want string) {
			Expect(payroll.ComputeTax(dec(base), dec(rate)).String()).To(Equal(want))
		},
		Entry("whole amounts", "50000", "10", "5000"),
		Entry("fractional rate", "1234.56", "12.5", "154.32"),
		Entry("half rounds away from zero", "0.05", "10", "0.01"),
		Entry("zero rate", "50000", "0", "0"),
	)
})

var _ = Describe("Enrich", func() {
	march := period.Period{Month: time.March, Year: 2025}
	april := period.Period{Month: time.April, Year: 2025}

	It("counts present days and leave days per employee and month", func() {
		views := []payroll.View{
			{Line: payroll.Line{EmployeeID: 7, Period: march}},
			{Line: payroll.Line{EmployeeID: 7, Period: april}},
			{Line: payroll.Line{EmployeeID: 8, Period: march}},
		}
		present := []payroll.AttendanceMark{
			{EmployeeID: 7, Date: day(2025, time.March, 3)},
			{EmployeeID: 7, Date: day(2025, time.March, 4)},
			{EmployeeID: 7, Date: day(2025, time.April, 1)},
			{EmployeeID: 8, Date: day(2025, time.March, 3)},
		}
		leaves := []payroll.LeaveSpan{
			{EmployeeID: 7, Start: day(2025, time.March, 10), End: day(2025, time.March, 12)},
			{EmployeeID: 7, Start: day(2025, time.March, 30), End: day(2025, time.April, 2)},
		}

		payroll.Enrich(views, present, leaves)

		Expect(views[0].DaysPresent).To(Equal(2))
		Expect(views[0].LeaveDays).To(Equal(7))
		Expect(views[1].DaysPresent).To(Equal(1))
		Expect(views[1].LeaveDays).To(Equal(0))
		Expect(views[2].DaysPresent).To(Equal(1))
		Expect(views[2].LeaveDays).To(Equal(0))
	})

	It("treats an inverted leave span as zero days", func() {
		span := payroll.LeaveSpan{Start: day(2025, time.March, 5), End: day(2025, time.March, 1)}
		Expect(span.Days()).To(Equal(0))
	})

	It("computes the window spanning all periods", func() {
		from, to, ok := payroll.Window([]payroll.View{
			{Line: payroll.Line{Period: april}},
			{Line: payroll.Line{Period: march}},
		})
		Expect(ok).To(BeTrue())
		Expect(from).To(Equal(day(2025, time.March, 1)))
		Expect(to).To(Equal(day(2025, time.May, 1)))
	})
})
