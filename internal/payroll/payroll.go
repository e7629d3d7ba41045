package payroll

import (
	"time"

	payrollDatamodel "github.com/frahmantamala/hr-backoffice/internal/core/datamodel/payroll"
	"github.com/frahmantamala/hr-backoffice/internal/core/period"
	"github.com/shopspring/decimal"
)

const (
	StatusGenerated = "Generated"
	StatusProcessed = "Processed"
)

var hundred = decimal.NewFromInt(100)

// Line is one payroll line per employee and pay period.
type Line struct {
	ID          int64           `json:"payroll_id"`
	EmployeeID  int64           `json:"employee_id"`
	Period      period.Period   `json:"-"`
	BaseSalary  decimal.Decimal `json:"base_salary"`
	Allowances  decimal.Decimal `json:"allowances"`
	Deductions  decimal.Decimal `json:"deductions"`
	Tax         decimal.Decimal `json:"tax"`
	Status      string          `json:"status"`
	GeneratedOn time.Time       `json:"generated_on"`
}

// Net is derived from the components on every read; the stored column is never trusted.
func (l Line) Net() decimal.Decimal {
	return l.BaseSalary.Add(l.Allowances).Sub(l.Deductions).Sub(l.Tax)
}

func (l Line) IsProcessed() bool {
	return l.Status == StatusProcessed
}

// ComputeTax applies a percentage rate to base, rounded to cents.
func ComputeTax(base, ratePercent decimal.Decimal) decimal.Decimal {
	return base.Mul(ratePercent).Div(hundred).Round(2)
}

type TaxPolicy struct {
	ID      int64
	Name    string
	TaxRate decimal.Decimal
}

// Compensation is what the policy calculation needs to know about an employee.
type Compensation struct {
	EmployeeID int64
	BaseSalary decimal.NullDecimal
}

// View is a payroll line enriched for display. DaysPresent and LeaveDays are
// computed per listing and never stored.
type View struct {
	Line
	Month          string          `json:"month"`
	Year           int             `json:"year"`
	EmployeeName   string          `json:"employee_name"`
	DepartmentID   *int64          `json:"department_id,omitempty"`
	DepartmentName string          `json:"department_name,omitempty"`
	Position       string          `json:"position,omitempty"`
	DaysPresent    int             `json:"days_present"`
	LeaveDays      int             `json:"leave_days"`
	NetSalary      decimal.Decimal `json:"net_salary"`
}

type Filter struct {
	Period       *period.Period
	DepartmentID *int64
	Status       string
	EmployeeID   *int64
}

func (f Filter) IsEmpty() bool {
	return f.Period == nil && f.DepartmentID == nil && f.Status == "" && f.EmployeeID == nil
}

func ToDataModel(l *Line) *payrollDatamodel.Payroll {
	return &payrollDatamodel.Payroll{
		PayrollID:   l.ID,
		EmpID:       l.EmployeeID,
		Month:       l.Period.MonthName(),
		Year:        l.Period.Year,
		BaseSalary:  l.BaseSalary,
		Allowances:  l.Allowances,
		Deductions:  l.Deductions,
		Tax:         l.Tax,
		NetSalary:   l.Net(),
		Status:      l.Status,
		GeneratedOn: l.GeneratedOn,
	}
}

// FromDataModel converts a stored row; an unparseable month yields a zero period.
func FromDataModel(p *payrollDatamodel.Payroll) *Line {
	pp, _ := period.Parse(p.Month, p.Year)
	return &Line{
		ID:          p.PayrollID,
		EmployeeID:  p.EmpID,
		Period:      pp,
		BaseSalary:  p.BaseSalary,
		Allowances:  p.Allowances,
		Deductions:  p.Deductions,
		Tax:         p.Tax,
		Status:      p.Status,
		GeneratedOn: p.GeneratedOn,
	}
}
