// Package kpi answers read-only dashboard questions over the HR tables.
package kpi

import (
	"time"

	"github.com/frahmantamala/hr-backoffice/internal/workflow"
	"github.com/shopspring/decimal"
)

// UnassignedDepartment labels employees without a department.
const UnassignedDepartment = "Unassigned"

type Headcount struct {
	Active   int64 `json:"active"`
	Inactive int64 `json:"inactive"`
	Total    int64 `json:"total"`
}

type DepartmentHeadcount struct {
	DepartmentID   *int64 `json:"department_id,omitempty"`
	DepartmentName string `json:"department_name"`
	Active         int64  `json:"active"`
}

type Bucket struct {
	Label string `json:"label" db:"label"`
	Count int64  `json:"count" db:"count"`
}

type AttendanceDistribution struct {
	Date    time.Time `json:"date"`
	Present int64     `json:"present"`
	Absent  int64     `json:"absent"`
	Leave   int64     `json:"leave"`
}

func (d AttendanceDistribution) Marked() int64 {
	return d.Present + d.Absent + d.Leave
}

type PayrollTotals struct {
	Month      string          `json:"month"`
	Year       int             `json:"year"`
	Lines      int64           `json:"lines"`
	BaseSalary decimal.Decimal `json:"base_salary"`
	Allowances decimal.Decimal `json:"allowances"`
	Deductions decimal.Decimal `json:"deductions"`
	Tax        decimal.Decimal `json:"tax"`
	Net        decimal.Decimal `json:"net"`
}

type Summary struct {
	Headcount   Headcount              `json:"headcount"`
	Departments int64                  `json:"departments"`
	Pending     workflow.Counts        `json:"pending_requests"`
	Attendance  AttendanceDistribution `json:"attendance_today"`
}
