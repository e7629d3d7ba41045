package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeRequestResolved    = "request.resolved"
	EventTypePayrollGenerated   = "payroll.generated"
	EventTypeEmployeeOnboarded  = "employee.onboarded"
	EventTypeEmployeeTerminated = "employee.terminated"
)

type RequestResolvedEvent struct {
	BaseEvent
	Kind       string `json:"kind"`
	RequestID  int64  `json:"request_id"`
	EmployeeID int64  `json:"employee_id"`
	Status     string `json:"status"`
	ResolvedBy int64  `json:"resolved_by"`
}

func NewRequestResolvedEvent(kind string, requestID, employeeID int64, status string, resolvedBy int64) *RequestResolvedEvent {
	return &RequestResolvedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeRequestResolved,
			Timestamp: time.Now().UTC(),
			Data: map[string]interface{}{
				"kind":        kind,
				"request_id":  requestID,
				"employee_id": employeeID,
				"status":      status,
				"resolved_by": resolvedBy,
			},
		},
		Kind:       kind,
		RequestID:  requestID,
		EmployeeID: employeeID,
		Status:     status,
		ResolvedBy: resolvedBy,
	}
}

type PayrollGeneratedEvent struct {
	BaseEvent
	EmployeeID int64  `json:"employee_id"`
	Month      string `json:"month"`
	Year       int    `json:"year"`
	NetSalary  string `json:"net_salary"`
}

func NewPayrollGeneratedEvent(employeeID int64, month string, year int, net string) *PayrollGeneratedEvent {
	return &PayrollGeneratedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypePayrollGenerated,
			Timestamp: time.Now().UTC(),
			Data: map[string]interface{}{
				"employee_id": employeeID,
				"month":       month,
				"year":        year,
				"net_salary":  net,
			},
		},
		EmployeeID: employeeID,
		Month:      month,
		Year:       year,
		NetSalary:  net,
	}
}

type EmployeeLifecycleEvent struct {
	BaseEvent
	EmployeeID int64 `json:"employee_id"`
	UserID     int64 `json:"user_id"`
}

func NewEmployeeLifecycleEvent(eventType string, employeeID, userID int64) *EmployeeLifecycleEvent {
	return &EmployeeLifecycleEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now().UTC(),
			Data: map[string]interface{}{
				"employee_id": employeeID,
				"user_id":     userID,
			},
		},
		EmployeeID: employeeID,
		UserID:     userID,
	}
}
