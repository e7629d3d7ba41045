package payroll

import (
	"time"

	"github.com/frahmantamala/hr-backoffice/internal/core/period"
)

// AttendanceMark is one Present attendance row.
type AttendanceMark struct {
	EmployeeID int64
	Date       time.Time
}

// LeaveSpan is one Approved leave request.
type LeaveSpan struct {
	EmployeeID int64
	Start      time.Time
	End        time.Time
}

// Days counts the inclusive calendar days of the span.
func (s LeaveSpan) Days() int {
	start := truncateDay(s.Start)
	end := truncateDay(s.End)
	if end.Before(start) {
		return 0
	}
	return int(end.Sub(start).Hours()/24) + 1
}

type employeePeriod struct {
	employeeID int64
	period     period.Period
}

// Enrich fills DaysPresent and LeaveDays on every view. A leave counts toward
// the month its start date falls in, even if it runs past month end.
func Enrich(views []View, present []AttendanceMark, leaves []LeaveSpan) {
	presentDays := make(map[employeePeriod]int)
	for _, m := range present {
		presentDays[employeePeriod{m.EmployeeID, period.Of(m.Date.UTC())}]++
	}

	leaveDays := make(map[employeePeriod]int)
	for _, l := range leaves {
		leaveDays[employeePeriod{l.EmployeeID, period.Of(l.Start.UTC())}] += l.Days()
	}

	for i := range views {
		key := employeePeriod{views[i].EmployeeID, views[i].Period}
		views[i].DaysPresent = presentDays[key]
		views[i].LeaveDays = leaveDays[key]
	}
}

// Window returns the smallest [from, to) range covering every view's period.
func Window(views []View) (from, to time.Time, ok bool) {
	for _, v := range views {
		if v.Period.Month == 0 {
			continue
		}
		if !ok || v.Period.Start().Before(from) {
			from = v.Period.Start()
		}
		if !ok || v.Period.End().After(to) {
			to = v.Period.End()
		}
		ok = true
	}
	return from, to, ok
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
