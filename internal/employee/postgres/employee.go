package postgres

import (
	"context"
	"database/sql"
	"time"

	apperrors "github.com/frahmantamala/hr-backoffice/internal"
	employeeDatamodel "github.com/frahmantamala/hr-backoffice/internal/core/datamodel/employee"
	"github.com/frahmantamala/hr-backoffice/internal/core/store"
	"github.com/frahmantamala/hr-backoffice/internal/employee"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EmployeeRepository implements employee.RepositoryAPI using GORM
type EmployeeRepository struct {
	db      *gorm.DB
	timeout store.Timeout
}

func NewEmployeeRepository(db *gorm.DB, timeout time.Duration) *EmployeeRepository {
	return &EmployeeRepository{db: db, timeout: store.Timeout(timeout)}
}

func (r *EmployeeRepository) WithinTx(ctx context.Context, fn func(repo employee.RepositoryAPI) error) error {
	ctx, cancel := r.timeout.Context(ctx)
	defer cancel()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&EmployeeRepository{db: tx, timeout: r.timeout})
	})
	return store.Translate(err, "employee transaction failed", nil)
}

func (r *EmployeeRepository) RoleExists(ctx context.Context, roleID int64) (bool, error) {
	return r.exists(ctx, &employeeDatamodel.Role{}, "role_id = ?", roleID)
}

func (r *EmployeeRepository) DepartmentExists(ctx context.Context, departmentID int64) (bool, error) {
	return r.exists(ctx, &employeeDatamodel.Department{}, "dept_id = ?", departmentID)
}

func (r *EmployeeRepository) exists(ctx context.Context, model interface{}, query string, args ...interface{}) (bool, error) {
	ctx, cancel := r.timeout.Context(ctx)
	defer cancel()

	var n int64
	if err := r.db.WithContext(ctx).Model(model).Where(query, args...).Count(&n).Error; err != nil {
		return false, store.Translate(err, "failed to look up reference", nil)
	}
	return n > 0, nil
}

func (r *EmployeeRepository) CreateUser(ctx context.Context, u employee.NewUser) (int64, error) {
	ctx, cancel := r.timeout.Context(ctx)
	defer cancel()

	row := &employeeDatamodel.User{
		Username:      u.Username,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Email:         u.Email,
		Phone:         u.Phone,
		RoleID:        u.RoleID,
		DeptID:        u.DepartmentID,
		Designation:   u.Designation,
		DateOfJoining: u.DateJoined,
		PasswordHash:  u.PasswordHash,
		Status:        employeeDatamodel.StatusActive,
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		if store.IsUniqueViolation(err) {
			return 0, apperrors.ErrDuplicateUser.WithCause(err)
		}
		return 0, store.Translate(err, "failed to create user", nil)
	}
	return row.UserID, nil
}

func (r *EmployeeRepository) CreateEmployee(ctx context.Context, e employee.NewEmployee) (int64, error) {
	ctx, cancel := r.timeout.Context(ctx)
	defer cancel()

	row := &employeeDatamodel.Employee{
		UserID:      e.UserID,
		DeptID:      e.DepartmentID,
		Position:    e.Position,
		Salary:      e.Salary,
		Status:      employeeDatamodel.StatusActive,
		Gender:      e.Gender,
		BankAccount: e.BankAccount,
		DateJoined:  e.DateJoined,
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return 0, store.Translate(err, "failed to create employee", nil)
	}
	return row.EmpID, nil
}

type employeeRow struct {
	EmpID       int64
	UserID      int64
	DeptID      sql.NullInt64
	Position    string
	Salary      decimal.NullDecimal
	Status      string
	Gender      string
	BankAccount string
	DateJoined  sql.NullTime
	Username    sql.NullString
	FirstName   sql.NullString
	LastName    sql.NullString
	Email       sql.NullString
	RoleName    sql.NullString
	DeptName    sql.NullString
}

func (r *EmployeeRepository) query(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("employees e").
		Select(`e.emp_id, e.user_id, e.dept_id, e.position, e.salary, e.status, e.gender, e.bank_account, e.date_joined,
			u.username, u.first_name, u.last_name, u.email, ro.role_name, d.dept_name`).
		Joins("LEFT JOIN users u ON u.user_id = e.user_id").
		Joins("LEFT JOIN roles ro ON ro.role_id = u.role_id").
		Joins("LEFT JOIN departments d ON d.dept_id = e.dept_id")
}

func (r *EmployeeRepository) Get(ctx context.Context, employeeID int64) (*employee.Employee, error) {
	ctx, cancel := r.timeout.Context(ctx)
	defer cancel()

	var rows []employeeRow
	if err := r.query(ctx).Where("e.emp_id = ?", employeeID).Limit(1).Scan(&rows).Error; err != nil {
		return nil, store.Translate(err, "failed to load employee", nil)
	}
	if len(rows) == 0 {
		return nil, apperrors.ErrEmployeeNotFound
	}
	emp := toEmployee(rows[0])
	return &emp, nil
}

func (r *EmployeeRepository) List(ctx context.Context) ([]employee.Employee, error) {
	ctx, cancel := r.timeout.Context(ctx)
	defer cancel()

	var rows []employeeRow
	if err := r.query(ctx).Order("e.emp_id").Scan(&rows).Error; err != nil {
		return nil, store.Translate(err, "failed to list employees", nil)
	}

	employees := make([]employee.Employee, 0, len(rows))
	for _, row := range rows {
		employees = append(employees, toEmployee(row))
	}
	return employees, nil
}

// SetStatus updates the employee row and its linked user account.
func (r *EmployeeRepository) SetStatus(ctx context.Context, employeeID int64, status string) error {
	ctx, cancel := r.timeout.Context(ctx)
	defer cancel()

	db := r.db.WithContext(ctx)
	res := db.Model(&employeeDatamodel.Employee{}).Where("emp_id = ?", employeeID).Update("status", status)
	if res.Error != nil {
		return store.Translate(res.Error, "failed to update employee status", nil)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrEmployeeNotFound
	}

	err := db.Model(&employeeDatamodel.User{}).
		Where("user_id = (?)", db.Model(&employeeDatamodel.Employee{}).Select("user_id").Where("emp_id = ?", employeeID)).
		Update("status", status).Error
	return store.Translate(err, "failed to update user status", nil)
}

func (r *EmployeeRepository) SetDepartment(ctx context.Context, employeeID, departmentID int64) error {
	ctx, cancel := r.timeout.Context(ctx)
	defer cancel()

	db := r.db.WithContext(ctx)
	res := db.Model(&employeeDatamodel.Employee{}).Where("emp_id = ?", employeeID).Update("dept_id", departmentID)
	if res.Error != nil {
		return store.Translate(res.Error, "failed to update employee department", nil)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrEmployeeNotFound
	}

	err := db.Model(&employeeDatamodel.User{}).
		Where("user_id = (?)", db.Model(&employeeDatamodel.Employee{}).Select("user_id").Where("emp_id = ?", employeeID)).
		Update("dept_id", departmentID).Error
	return store.Translate(err, "failed to update user department", nil)
}

func toEmployee(row employeeRow) employee.Employee {
	e := employee.Employee{
		ID:             row.EmpID,
		UserID:         row.UserID,
		Username:       row.Username.String,
		FirstName:      row.FirstName.String,
		LastName:       row.LastName.String,
		Email:          row.Email.String,
		Role:           row.RoleName.String,
		DepartmentName: row.DeptName.String,
		Position:       row.Position,
		Salary:         row.Salary,
		Gender:         row.Gender,
		BankAccount:    row.BankAccount,
		Status:         row.Status,
	}
	if row.DeptID.Valid {
		id := row.DeptID.Int64
		e.DepartmentID = &id
	}
	if row.DateJoined.Valid {
		t := row.DateJoined.Time
		e.DateJoined = &t
	}
	return e
}
