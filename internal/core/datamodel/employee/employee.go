package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
)

type Department struct {
	DeptID   int64  `gorm:"column:dept_id;primaryKey"`
	DeptName string `gorm:"column:dept_name;not null;uniqueIndex"`
}

func (Department) TableName() string { return "departments" }

type Role struct {
	RoleID   int64  `gorm:"column:role_id;primaryKey"`
	RoleName string `gorm:"column:role_name;not null;uniqueIndex"`
}

func (Role) TableName() string { return "roles" }

type User struct {
	UserID        int64      `gorm:"column:user_id;primaryKey"`
	Username      string     `gorm:"column:username;not null;uniqueIndex"`
	FirstName     string     `gorm:"column:first_name;not null"`
	LastName      string     `gorm:"column:last_name"`
	Email         string     `gorm:"column:email"`
	Phone         string     `gorm:"column:phone"`
	RoleID        int64      `gorm:"column:role_id;not null"`
	DeptID        *int64     `gorm:"column:dept_id"`
	Designation   string     `gorm:"column:designation"`
	DateOfJoining *time.Time `gorm:"column:date_of_joining;type:date"`
	PasswordHash  string     `gorm:"column:password_hash"`
	Status        string     `gorm:"column:status;not null;default:Active"`
}

func (User) TableName() string { return "users" }

type Employee struct {
	EmpID       int64               `gorm:"column:emp_id;primaryKey"`
	UserID      int64               `gorm:"column:user_id;not null;uniqueIndex"`
	DeptID      *int64              `gorm:"column:dept_id"`
	Position    string              `gorm:"column:position"`
	Salary      decimal.NullDecimal `gorm:"column:salary;type:numeric(14,2)"`
	Status      string              `gorm:"column:status;not null;default:Active"`
	Gender      string              `gorm:"column:gender"`
	BankAccount string              `gorm:"column:bank_account"`
	DateJoined  *time.Time          `gorm:"column:date_joined;type:date"`
}

func (Employee) TableName() string { return "employees" }
