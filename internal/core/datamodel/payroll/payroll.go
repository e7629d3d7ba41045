package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

type Payroll struct {
	PayrollID   int64           `gorm:"column:payroll_id;primaryKey"`
	EmpID       int64           `gorm:"column:emp_id;not null;uniqueIndex:uq_payroll_emp_period"`
	Month       string          `gorm:"column:month;size:9;not null;uniqueIndex:uq_payroll_emp_period"`
	Year        int             `gorm:"column:year;not null;uniqueIndex:uq_payroll_emp_period"`
	BaseSalary  decimal.Decimal `gorm:"column:base_salary;type:numeric(14,2);not null"`
	Allowances  decimal.Decimal `gorm:"column:allowances;type:numeric(14,2);not null"`
	Deductions  decimal.Decimal `gorm:"column:deductions;type:numeric(14,2);not null"`
	Tax         decimal.Decimal `gorm:"column:tax;type:numeric(14,2);not null"`
	NetSalary   decimal.Decimal `gorm:"column:net_salary;type:numeric(14,2);not null"`
	Status      string          `gorm:"column:status;not null"`
	GeneratedOn time.Time       `gorm:"column:generated_on;not null"`
}

func (Payroll) TableName() string { return "payroll" }

type TaxPolicy struct {
	PolicyID      int64           `gorm:"column:policy_id;primaryKey"`
	Name          string          `gorm:"column:name;not null"`
	TaxRate       decimal.Decimal `gorm:"column:tax_rate;type:numeric(5,2);not null"`
	IsActive      bool            `gorm:"column:is_active;not null"`
	EffectiveFrom time.Time       `gorm:"column:effective_from;type:date;not null"`
}

func (TaxPolicy) TableName() string { return "tax_policies" }
