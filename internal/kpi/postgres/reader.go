package postgres

import (
	"context"
	"database/sql"
	"time"

	attendanceDatamodel "github.com/frahmantamala/hr-backoffice/internal/core/datamodel/attendance"
	employeeDatamodel "github.com/frahmantamala/hr-backoffice/internal/core/datamodel/employee"
	"github.com/frahmantamala/hr-backoffice/internal/core/period"
	"github.com/frahmantamala/hr-backoffice/internal/core/store"
	"github.com/frahmantamala/hr-backoffice/internal/kpi"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

const (
	headcountQuery = `
SELECT
	COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS active,
	COALESCE(SUM(CASE WHEN status <> ? THEN 1 ELSE 0 END), 0) AS inactive
FROM employees`

	departmentCountQuery = `SELECT COUNT(*) FROM departments`

	byDepartmentQuery = `
SELECT e.dept_id AS dept_id, d.dept_name AS dept_name, COUNT(*) AS active
FROM employees e
LEFT JOIN departments d ON d.dept_id = e.dept_id
WHERE e.status = ?
GROUP BY e.dept_id, d.dept_name
ORDER BY active DESC, e.dept_id IS NULL, d.dept_name ASC`

	genderQuery = `
SELECT COALESCE(NULLIF(gender, ''), 'Unspecified') AS label, COUNT(*) AS count
FROM employees
WHERE status = ?
GROUP BY COALESCE(NULLIF(gender, ''), 'Unspecified')
ORDER BY count DESC, label ASC`

	attendanceQuery = `
SELECT
	COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS present,
	COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS absent,
	COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS on_leave
FROM attendance
WHERE attendance_date >= ? AND attendance_date < ?`

	payrollTotalsQuery = `
SELECT
	COUNT(*) AS lines,
	COALESCE(SUM(base_salary), 0) AS base_salary,
	COALESCE(SUM(allowances), 0) AS allowances,
	COALESCE(SUM(deductions), 0) AS deductions,
	COALESCE(SUM(tax), 0) AS tax,
	COALESCE(SUM(base_salary + allowances - deductions - tax), 0) AS net
FROM payroll
WHERE month = ? AND year = ?`
)

// Reader implements kpi.RepositoryAPI with raw SQL over sqlx.
type Reader struct {
	db      *sqlx.DB
	timeout store.Timeout
}

func NewReader(db *sqlx.DB, timeout time.Duration) *Reader {
	return &Reader{db: db, timeout: store.Timeout(timeout)}
}

func (r *Reader) Headcount(ctx context.Context) (kpi.Headcount, error) {
	ctx, cancel := r.timeout.Context(ctx)
	defer cancel()

	var row struct {
		Active   int64 `db:"active"`
		Inactive int64 `db:"inactive"`
	}
	active := employeeDatamodel.StatusActive
	if err := r.db.GetContext(ctx, &row, r.db.Rebind(headcountQuery), active, active); err != nil {
		return kpi.Headcount{}, store.Translate(err, "failed to read headcount", nil)
	}
	return kpi.Headcount{
		Active:   row.Active,
		Inactive: row.Inactive,
		Total:    row.Active + row.Inactive,
	}, nil
}

func (r *Reader) DepartmentCount(ctx context.Context) (int64, error) {
	ctx, cancel := r.timeout.Context(ctx)
	defer cancel()

	var n int64
	if err := r.db.GetContext(ctx, &n, departmentCountQuery); err != nil {
		return 0, store.Translate(err, "failed to count departments", nil)
	}
	return n, nil
}

func (r *Reader) HeadcountByDepartment(ctx context.Context) ([]kpi.DepartmentHeadcount, error) {
	ctx, cancel := r.timeout.Context(ctx)
	defer cancel()

	var rows []struct {
		DeptID   sql.NullInt64  `db:"dept_id"`
		DeptName sql.NullString `db:"dept_name"`
		Active   int64          `db:"active"`
	}
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(byDepartmentQuery), employeeDatamodel.StatusActive); err != nil {
		return nil, store.Translate(err, "failed to read headcount by department", nil)
	}

	out := make([]kpi.DepartmentHeadcount, 0, len(rows))
	for _, row := range rows {
		entry := kpi.DepartmentHeadcount{DepartmentName: kpi.UnassignedDepartment, Active: row.Active}
		if row.DeptID.Valid {
			id := row.DeptID.Int64
			entry.DepartmentID = &id
		}
		if row.DeptName.Valid {
			entry.DepartmentName = row.DeptName.String
		}
		out = append(out, entry)
	}
	return out, nil
}

func (r *Reader) GenderDistribution(ctx context.Context) ([]kpi.Bucket, error) {
	ctx, cancel := r.timeout.Context(ctx)
	defer cancel()

	var buckets []kpi.Bucket
	if err := r.db.SelectContext(ctx, &buckets, r.db.Rebind(genderQuery), employeeDatamodel.StatusActive); err != nil {
		return nil, store.Translate(err, "failed to read gender distribution", nil)
	}
	return buckets, nil
}

func (r *Reader) AttendanceDistribution(ctx context.Context, day time.Time) (kpi.AttendanceDistribution, error) {
	ctx, cancel := r.timeout.Context(ctx)
	defer cancel()

	var row struct {
		Present int64 `db:"present"`
		Absent  int64 `db:"absent"`
		Leave   int64 `db:"on_leave"`
	}
	err := r.db.GetContext(ctx, &row, r.db.Rebind(attendanceQuery),
		attendanceDatamodel.StatusPresent,
		attendanceDatamodel.StatusAbsent,
		attendanceDatamodel.StatusLeave,
		day, day.AddDate(0, 0, 1))
	if err != nil {
		return kpi.AttendanceDistribution{}, store.Translate(err, "failed to read attendance distribution", nil)
	}
	return kpi.AttendanceDistribution{
		Date:    day,
		Present: row.Present,
		Absent:  row.Absent,
		Leave:   row.Leave,
	}, nil
}

func (r *Reader) PayrollTotals(ctx context.Context, p period.Period) (kpi.PayrollTotals, error) {
	ctx, cancel := r.timeout.Context(ctx)
	defer cancel()

	var row struct {
		Lines      int64           `db:"lines"`
		BaseSalary decimal.Decimal `db:"base_salary"`
		Allowances decimal.Decimal `db:"allowances"`
		Deductions decimal.Decimal `db:"deductions"`
		Tax        decimal.Decimal `db:"tax"`
		Net        decimal.Decimal `db:"net"`
	}
	if err := r.db.GetContext(ctx, &row, r.db.Rebind(payrollTotalsQuery), p.MonthName(), p.Year); err != nil {
		return kpi.PayrollTotals{}, store.Translate(err, "failed to read payroll totals", nil)
	}
	return kpi.PayrollTotals{
		Month:      p.MonthName(),
		Year:       p.Year,
		Lines:      row.Lines,
		BaseSalary: row.BaseSalary,
		Allowances: row.Allowances,
		Deductions: row.Deductions,
		Tax:        row.Tax,
		Net:        row.Net,
	}, nil
}
