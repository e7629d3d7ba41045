package payroll

import (
	"github.com/frahmantamala/hr-backoffice/internal/core/common/validation"
	"github.com/frahmantamala/hr-backoffice/internal/core/period"
	"github.com/shopspring/decimal"
)

// RecordInput is a full manual breakdown for one employee and period.
type RecordInput struct {
	EmployeeID int64
	Period     period.Period
	BaseSalary decimal.Decimal
	Allowances decimal.Decimal
	Deductions decimal.Decimal
	Tax        decimal.Decimal
}

func (in RecordInput) Validate() error {
	v := validation.NewValidator()
	v.Field("employee_id", in.EmployeeID).Required().Positive()
	v.Field("base_salary", in.BaseSalary).NonNegative()
	v.Field("allowances", in.Allowances).NonNegative()
	v.Field("deductions", in.Deductions).NonNegative()
	v.Field("tax", in.Tax).NonNegative()
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return in.Period.Validate()
}

func (in RecordInput) Line() *Line {
	return &Line{
		EmployeeID: in.EmployeeID,
		Period:     in.Period,
		BaseSalary: in.BaseSalary,
		Allowances: in.Allowances,
		Deductions: in.Deductions,
		Tax:        in.Tax,
	}
}

type GenerateRequest struct {
	EmployeeID int64  `json:"employee_id" validate:"required,gt=0"`
	Month      string `json:"month" validate:"required"`
	Year       int    `json:"year" validate:"required"`
}

type GenerateResponse struct {
	EmployeeID int64           `json:"employee_id"`
	Month      string          `json:"month"`
	Year       int             `json:"year"`
	NetSalary  decimal.Decimal `json:"net_salary"`
}

type RecordRequest struct {
	EmployeeID int64           `json:"employee_id" validate:"required,gt=0"`
	Month      string          `json:"month" validate:"required"`
	Year       int             `json:"year" validate:"required"`
	BaseSalary decimal.Decimal `json:"base_salary"`
	Allowances decimal.Decimal `json:"allowances"`
	Deductions decimal.Decimal `json:"deductions"`
	Tax        decimal.Decimal `json:"tax"`
}

func (r RecordRequest) ToInput() (RecordInput, error) {
	p, err := period.Parse(r.Month, r.Year)
	if err != nil {
		return RecordInput{}, err
	}
	return RecordInput{
		EmployeeID: r.EmployeeID,
		Period:     p,
		BaseSalary: r.BaseSalary,
		Allowances: r.Allowances,
		Deductions: r.Deductions,
		Tax:        r.Tax,
	}, nil
}

// LineResponse is the wire form of a stored line.
type LineResponse struct {
	ID         int64           `json:"payroll_id"`
	EmployeeID int64           `json:"employee_id"`
	Month      string          `json:"month"`
	Year       int             `json:"year"`
	BaseSalary decimal.Decimal `json:"base_salary"`
	Allowances decimal.Decimal `json:"allowances"`
	Deductions decimal.Decimal `json:"deductions"`
	Tax        decimal.Decimal `json:"tax"`
	NetSalary  decimal.Decimal `json:"net_salary"`
	Status     string          `json:"status"`
}

func NewLineResponse(l *Line) LineResponse {
	return LineResponse{
		ID:         l.ID,
		EmployeeID: l.EmployeeID,
		Month:      l.Period.MonthName(),
		Year:       l.Period.Year,
		BaseSalary: l.BaseSalary,
		Allowances: l.Allowances,
		Deductions: l.Deductions,
		Tax:        l.Tax,
		NetSalary:  l.Net(),
		Status:     l.Status,
	}
}
