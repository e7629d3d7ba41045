package postgres

import (
	"context"
	"database/sql"
	"time"

	apperrors "github.com/frahmantamala/hr-backoffice/internal"
	attendanceDatamodel "github.com/frahmantamala/hr-backoffice/internal/core/datamodel/attendance"
	employeeDatamodel "github.com/frahmantamala/hr-backoffice/internal/core/datamodel/employee"
	payrollDatamodel "github.com/frahmantamala/hr-backoffice/internal/core/datamodel/payroll"
	requestDatamodel "github.com/frahmantamala/hr-backoffice/internal/core/datamodel/request"
	"github.com/frahmantamala/hr-backoffice/internal/core/period"
	"github.com/frahmantamala/hr-backoffice/internal/core/store"
	"github.com/frahmantamala/hr-backoffice/internal/payroll"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PayrollRepository implements payroll.RepositoryAPI with GORM.
type PayrollRepository struct {
	db      *gorm.DB
	timeout store.Timeout
}

func NewPayrollRepository(db *gorm.DB, timeout time.Duration) *PayrollRepository {
	return &PayrollRepository{db: db, timeout: store.Timeout(timeout)}
}

func (r *PayrollRepository) WithinTx(ctx context.Context, fn func(repo payroll.RepositoryAPI) error) error {
	ctx, cancel := r.timeout.Context(ctx)
	defer cancel()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PayrollRepository{db: tx, timeout: r.timeout})
	})
	return store.Translate(err, "payroll transaction failed", nil)
}

func (r *PayrollRepository) GetCompensation(ctx context.Context, employeeID int64) (*payroll.Compensation, error) {
	ctx, cancel := r.timeout.Context(ctx)
	defer cancel()

	var row struct {
		EmpID  int64
		Salary decimal.NullDecimal
	}
	err := r.db.WithContext(ctx).
		Table("employees").
		Select("emp_id, salary").
		Where("emp_id = ?", employeeID).
		Take(&row).Error
	if err != nil {
		return nil, store.Translate(err, "failed to load employee salary", apperrors.ErrEmployeeNotFound)
	}
	return &payroll.Compensation{EmployeeID: row.EmpID, BaseSalary: row.Salary}, nil
}

func (r *PayrollRepository) ActiveTaxPolicies(ctx context.Context) ([]payroll.TaxPolicy, error) {
	ctx, cancel := r.timeout.Context(ctx)
	defer cancel()

	var rows []payrollDatamodel.TaxPolicy
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("policy_id").
		Find(&rows).Error
	if err != nil {
		return nil, store.Translate(err, "failed to load tax policies", nil)
	}

	policies := make([]payroll.TaxPolicy, 0, len(rows))
	for _, row := range rows {
		policies = append(policies, payroll.TaxPolicy{ID: row.PolicyID, Name: row.Name, TaxRate: row.TaxRate})
	}
	return policies, nil
}

func (r *PayrollRepository) FindLine(ctx context.Context, employeeID int64, p period.Period) (*payroll.Line, error) {
	ctx, cancel := r.timeout.Context(ctx)
	defer cancel()

	var row payrollDatamodel.Payroll
	err := r.db.WithContext(ctx).
		Where("emp_id = ? AND month = ? AND year = ?", employeeID, p.MonthName(), p.Year).
		Take(&row).Error
	if err != nil {
		return nil, store.Translate(err, "failed to load payroll line", apperrors.ErrPayrollNotFound)
	}
	return payroll.FromDataModel(&row), nil
}

// Upsert is the only payroll write. It inserts or overwrites the line keyed by
// (emp_id, month, year) and re-reads the row. A Processed line is never
// overwritten; the write then fails with ErrPayrollProcessed.
func (r *PayrollRepository) Upsert(ctx context.Context, line *payroll.Line) (*payroll.Line, error) {
	ctx, cancel := r.timeout.Context(ctx)
	defer cancel()

	write := *line
	write.ID = 0
	write.Status = payroll.StatusGenerated
	write.GeneratedOn = time.Now().UTC()
	row := payroll.ToDataModel(&write)

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "emp_id"}, {Name: "month"}, {Name: "year"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"base_salary", "allowances", "deductions", "tax", "net_salary", "generated_on",
			}),
			Where: clause.Where{Exprs: []clause.Expression{
				clause.Expr{SQL: "payroll.status = ?", Vars: []interface{}{payroll.StatusGenerated}},
			}},
		}).
		Create(row).Error
	if err != nil {
		return nil, store.Translate(err, "failed to save payroll line", nil)
	}

	var stored payrollDatamodel.Payroll
	err = r.db.WithContext(ctx).
		Where("emp_id = ? AND month = ? AND year = ?", row.EmpID, row.Month, row.Year).
		Take(&stored).Error
	if err != nil {
		return nil, store.Translate(err, "failed to reload payroll line", apperrors.ErrPayrollNotFound)
	}
	saved := payroll.FromDataModel(&stored)
	if saved.IsProcessed() {
		return nil, apperrors.ErrPayrollProcessed
	}
	return saved, nil
}

func (r *PayrollRepository) TransitionStatus(ctx context.Context, lineID int64, from, to string) (bool, error) {
	ctx, cancel := r.timeout.Context(ctx)
	defer cancel()

	res := r.db.WithContext(ctx).
		Model(&payrollDatamodel.Payroll{}).
		Where("payroll_id = ? AND status = ?", lineID, from).
		Update("status", to)
	if res.Error != nil {
		return false, store.Translate(res.Error, "failed to update payroll status", nil)
	}
	return res.RowsAffected == 1, nil
}

type viewRow struct {
	PayrollID   int64
	EmpID       int64
	Month       string
	Year        int
	BaseSalary  decimal.Decimal
	Allowances  decimal.Decimal
	Deductions  decimal.Decimal
	Tax         decimal.Decimal
	Status      string
	GeneratedOn time.Time
	FirstName   sql.NullString
	LastName    sql.NullString
	DeptID      sql.NullInt64
	DeptName    sql.NullString
	Position    sql.NullString
}

// ListViews loads the lines matching filter, then derives attendance and
// leave figures for all of them with two batched queries.
func (r *PayrollRepository) ListViews(ctx context.Context, filter payroll.Filter) ([]payroll.View, error) {
	ctx, cancel := r.timeout.Context(ctx)
	defer cancel()

	q := r.db.WithContext(ctx).
		Table("payroll p").
		Select(`p.payroll_id, p.emp_id, p.month, p.year, p.base_salary, p.allowances, p.deductions, p.tax,
			p.status, p.generated_on, u.first_name, u.last_name, e.dept_id, d.dept_name, e.position`).
		Joins("LEFT JOIN employees e ON e.emp_id = p.emp_id").
		Joins("LEFT JOIN users u ON u.user_id = e.user_id").
		Joins("LEFT JOIN departments d ON d.dept_id = e.dept_id")

	if filter.Period != nil {
		q = q.Where("p.month = ? AND p.year = ?", filter.Period.MonthName(), filter.Period.Year)
	}
	if filter.DepartmentID != nil {
		q = q.Where("e.dept_id = ?", *filter.DepartmentID)
	}
	if filter.Status != "" {
		q = q.Where("p.status = ?", filter.Status)
	}
	if filter.EmployeeID != nil {
		q = q.Where("p.emp_id = ?", *filter.EmployeeID)
	}

	var rows []viewRow
	if err := q.Order("p.generated_on DESC").Order("p.payroll_id DESC").Scan(&rows).Error; err != nil {
		return nil, store.Translate(err, "failed to list payroll", nil)
	}

	views := make([]payroll.View, 0, len(rows))
	for _, row := range rows {
		views = append(views, toView(row))
	}
	if len(views) == 0 {
		return views, nil
	}

	present, leaves, err := r.loadDerivationInputs(ctx, views)
	if err != nil {
		return nil, err
	}
	payroll.Enrich(views, present, leaves)
	return views, nil
}

func (r *PayrollRepository) loadDerivationInputs(ctx context.Context, views []payroll.View) ([]payroll.AttendanceMark, []payroll.LeaveSpan, error) {
	from, to, ok := payroll.Window(views)
	if !ok {
		return nil, nil, nil
	}

	seen := make(map[int64]struct{}, len(views))
	ids := make([]int64, 0, len(views))
	for _, v := range views {
		if _, dup := seen[v.EmployeeID]; dup {
			continue
		}
		seen[v.EmployeeID] = struct{}{}
		ids = append(ids, v.EmployeeID)
	}

	var marks []attendanceDatamodel.Attendance
	err := r.db.WithContext(ctx).
		Where("status = ? AND emp_id IN ? AND attendance_date >= ? AND attendance_date < ?",
			attendanceDatamodel.StatusPresent, ids, from, to).
		Find(&marks).Error
	if err != nil {
		return nil, nil, store.Translate(err, "failed to load attendance", nil)
	}

	var leaveRows []requestDatamodel.LeaveRequest
	err = r.db.WithContext(ctx).
		Select("leave_id, emp_id, start_date, end_date").
		Where("status = ? AND emp_id IN ? AND start_date >= ? AND start_date < ?",
			requestDatamodel.StatusApproved, ids, from, to).
		Find(&leaveRows).Error
	if err != nil {
		return nil, nil, store.Translate(err, "failed to load approved leave", nil)
	}

	present := make([]payroll.AttendanceMark, 0, len(marks))
	for _, m := range marks {
		present = append(present, payroll.AttendanceMark{EmployeeID: m.EmpID, Date: m.AttendanceDate})
	}
	leaves := make([]payroll.LeaveSpan, 0, len(leaveRows))
	for _, l := range leaveRows {
		leaves = append(leaves, payroll.LeaveSpan{EmployeeID: l.EmpID, Start: l.StartDate, End: l.EndDate})
	}
	return present, leaves, nil
}

func (r *PayrollRepository) ActiveEmployeeIDs(ctx context.Context) ([]int64, error) {
	ctx, cancel := r.timeout.Context(ctx)
	defer cancel()

	var ids []int64
	err := r.db.WithContext(ctx).
		Table("employees").
		Where("status = ?", employeeDatamodel.StatusActive).
		Order("emp_id").
		Pluck("emp_id", &ids).Error
	if err != nil {
		return nil, store.Translate(err, "failed to list active employees", nil)
	}
	return ids, nil
}

func toView(row viewRow) payroll.View {
	line := payroll.FromDataModel(&payrollDatamodel.Payroll{
		PayrollID:   row.PayrollID,
		EmpID:       row.EmpID,
		Month:       row.Month,
		Year:        row.Year,
		BaseSalary:  row.BaseSalary,
		Allowances:  row.Allowances,
		Deductions:  row.Deductions,
		Tax:         row.Tax,
		Status:      row.Status,
		GeneratedOn: row.GeneratedOn,
	})

	v := payroll.View{
		Line:           *line,
		Month:          row.Month,
		Year:           row.Year,
		EmployeeName:   store.DisplayName(row.FirstName, row.LastName),
		DepartmentName: row.DeptName.String,
		Position:       row.Position.String,
		NetSalary:      line.Net(),
	}
	if row.DeptID.Valid {
		id := row.DeptID.Int64
		v.DepartmentID = &id
	}
	return v
}
