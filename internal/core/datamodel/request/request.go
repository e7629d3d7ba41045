package request

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusPending  = "Pending"
	StatusApproved = "Approved"
	StatusRejected = "Rejected"
)

type LeaveRequest struct {
	LeaveID     int64      `gorm:"column:leave_id;primaryKey"`
	EmpID       int64      `gorm:"column:emp_id;not null;index"`
	Status      string     `gorm:"column:status;not null;index"`
	RequestedOn time.Time  `gorm:"column:requested_on;not null"`
	StartDate   time.Time  `gorm:"column:start_date;type:date;not null"`
	EndDate     time.Time  `gorm:"column:end_date;type:date;not null"`
	Reason      string     `gorm:"column:reason"`
	ResolvedBy  *int64     `gorm:"column:resolved_by"`
	ResolvedAt  *time.Time `gorm:"column:resolved_at"`
}

func (LeaveRequest) TableName() string { return "leave_requests" }

type BankRequest struct {
	RequestID   int64      `gorm:"column:request_id;primaryKey"`
	EmpID       int64      `gorm:"column:emp_id;not null;index"`
	Status      string     `gorm:"column:status;not null;index"`
	RequestDate time.Time  `gorm:"column:request_date;not null"`
	OldAccount  string     `gorm:"column:old_account"`
	NewAccount  string     `gorm:"column:new_account;not null"`
	ResolvedBy  *int64     `gorm:"column:resolved_by"`
	ResolvedAt  *time.Time `gorm:"column:resolved_at"`
}

func (BankRequest) TableName() string { return "bank_requests" }

type SalaryAdvanceRequest struct {
	AdvanceID   int64           `gorm:"column:advance_id;primaryKey"`
	EmpID       int64           `gorm:"column:emp_id;not null;index"`
	Status      string          `gorm:"column:status;not null;index"`
	RequestDate time.Time       `gorm:"column:request_date;not null"`
	Amount      decimal.Decimal `gorm:"column:amount;type:numeric(14,2);not null"`
	Reason      string          `gorm:"column:reason"`
	ResolvedBy  *int64          `gorm:"column:resolved_by"`
	ResolvedAt  *time.Time      `gorm:"column:resolved_at"`
}

func (SalaryAdvanceRequest) TableName() string { return "salary_advance_requests" }

type Reimbursement struct {
	ReimbID     int64           `gorm:"column:reimb_id;primaryKey"`
	EmpID       int64           `gorm:"column:emp_id;not null;index"`
	Status      string          `gorm:"column:status;not null;index"`
	RequestDate time.Time       `gorm:"column:request_date;not null"`
	Amount      decimal.Decimal `gorm:"column:amount;type:numeric(14,2);not null"`
	Reason      string          `gorm:"column:reason"`
	ResolvedBy  *int64          `gorm:"column:resolved_by"`
	ResolvedAt  *time.Time      `gorm:"column:resolved_at"`
}

func (Reimbursement) TableName() string { return "reimbursements" }
