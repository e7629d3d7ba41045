package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
)

// Employee is an employee joined with its user account and department.
type Employee struct {
	ID             int64               `json:"employee_id"`
	UserID         int64               `json:"user_id"`
	Username       string              `json:"username"`
	FirstName      string              `json:"first_name"`
	LastName       string              `json:"last_name"`
	Email          string              `json:"email,omitempty"`
	Role           string              `json:"role"`
	DepartmentID   *int64              `json:"department_id,omitempty"`
	DepartmentName string              `json:"department_name,omitempty"`
	Position       string              `json:"position,omitempty"`
	Salary         decimal.NullDecimal `json:"salary"`
	Gender         string              `json:"gender,omitempty"`
	BankAccount    string              `json:"bank_account,omitempty"`
	Status         string              `json:"status"`
	DateJoined     *time.Time          `json:"date_joined,omitempty"`
}

func (e *Employee) FullName() string {
	if e.LastName == "" {
		return e.FirstName
	}
	return e.FirstName + " " + e.LastName
}

func (e *Employee) IsActive() bool {
	return e.Status == StatusActive
}

// NewUser is the account half of an onboarding.
type NewUser struct {
	Username     string
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	RoleID       int64
	DepartmentID *int64
	Designation  string
	PasswordHash string
	DateJoined   *time.Time
}

// NewEmployee is the employment half of an onboarding.
type NewEmployee struct {
	UserID       int64
	DepartmentID *int64
	Position     string
	Salary       decimal.NullDecimal
	Gender       string
	BankAccount  string
	DateJoined   *time.Time
}
