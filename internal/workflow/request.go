package workflow

import (
	"sort"
	"strings"
	"time"

	apperrors "github.com/frahmantamala/hr-backoffice/internal"
	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindLeave         Kind = "leave"
	KindBankChange    Kind = "bank_change"
	KindSalaryAdvance Kind = "salary_advance"
	KindReimbursement Kind = "reimbursement"
)

// Kinds is the fixed set of request kinds in listing tie-break order.
var Kinds = []Kind{KindLeave, KindBankChange, KindSalaryAdvance, KindReimbursement}

func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", apperrors.ErrInvalidRequestKind
	}
	return k, nil
}

func (k Kind) Valid() bool {
	_, ok := tables[k]
	return ok
}

func (k Kind) order() int {
	for i, kind := range Kinds {
		if kind == k {
			return i
		}
	}
	return len(Kinds)
}

type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusRejected Status = "Rejected"
)

// ParseTargetStatus accepts only the two terminal states a request can move to.
func ParseTargetStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "approved":
		return StatusApproved, nil
	case "rejected":
		return StatusRejected, nil
	default:
		return "", apperrors.ErrInvalidTargetStatus
	}
}

func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Table describes where a kind is stored.
type Table struct {
	Name       string
	IDColumn   string
	DateColumn string
}

var tables = map[Kind]Table{
	KindLeave:         {Name: "leave_requests", IDColumn: "leave_id", DateColumn: "requested_on"},
	KindBankChange:    {Name: "bank_requests", IDColumn: "request_id", DateColumn: "request_date"},
	KindSalaryAdvance: {Name: "salary_advance_requests", IDColumn: "advance_id", DateColumn: "request_date"},
	KindReimbursement: {Name: "reimbursements", IDColumn: "reimb_id", DateColumn: "request_date"},
}

func TableFor(k Kind) (Table, error) {
	t, ok := tables[k]
	if !ok {
		return Table{}, apperrors.ErrInvalidRequestKind
	}
	return t, nil
}

// Payload carries the kind-specific fields of a request.
type Payload interface {
	RequestKind() Kind
}

type LeavePayload struct {
	Start  time.Time `json:"start_date"`
	End    time.Time `json:"end_date"`
	Reason string    `json:"reason,omitempty"`
}

func (LeavePayload) RequestKind() Kind { return KindLeave }

// Days is the inclusive length of the leave.
func (p LeavePayload) Days() int {
	if p.End.Before(p.Start) {
		return 0
	}
	return int(p.End.Sub(p.Start).Hours()/24) + 1
}

type BankChangePayload struct {
	OldAccount string `json:"old_account"`
	NewAccount string `json:"new_account"`
}

func (BankChangePayload) RequestKind() Kind { return KindBankChange }

type SalaryAdvancePayload struct {
	Amount decimal.Decimal `json:"amount"`
	Reason string          `json:"reason,omitempty"`
}

func (SalaryAdvancePayload) RequestKind() Kind { return KindSalaryAdvance }

type ReimbursementPayload struct {
	Amount decimal.Decimal `json:"amount"`
	Reason string          `json:"reason,omitempty"`
}

func (ReimbursementPayload) RequestKind() Kind { return KindReimbursement }

// Request is one row from any of the four request tables, tagged with its kind.
type Request struct {
	Kind         Kind       `json:"kind"`
	ID           int64      `json:"id"`
	EmployeeID   int64      `json:"employee_id"`
	EmployeeName string     `json:"employee_name"`
	Status       Status     `json:"status"`
	SubmittedAt  time.Time  `json:"submitted_at"`
	ResolvedBy   *int64     `json:"resolved_by,omitempty"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty"`
	Payload      Payload    `json:"details"`
}

type Filter struct {
	Kind       *Kind
	Status     Status
	EmployeeID *int64
}

// Counts is a single snapshot of pending requests per kind.
type Counts struct {
	TotalPending         int64 `json:"total_pending"`
	PendingLeave         int64 `json:"pending_leave"`
	PendingBankChange    int64 `json:"pending_bank_change"`
	PendingSalaryAdvance int64 `json:"pending_salary_advance"`
	PendingReimbursement int64 `json:"pending_reimbursement"`
}

// Sort orders requests newest submission first. Equal timestamps fall back
// to kind order and then to the higher id.
func Sort(requests []Request) {
	sort.SliceStable(requests, func(i, j int) bool {
		a, b := requests[i], requests[j]
		if !a.SubmittedAt.Equal(b.SubmittedAt) {
			return a.SubmittedAt.After(b.SubmittedAt)
		}
		if a.Kind != b.Kind {
			return a.Kind.order() < b.Kind.order()
		}
		return a.ID > b.ID
	})
}
