// Package period models the (month, year) pay period used by payroll and reporting.
package period

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	errors "github.com/frahmantamala/hr-backoffice/internal"
)

const (
	minYear = 2000
	maxYear = 9999
)

type Period struct {
	Month time.Month `json:"month"`
	Year  int        `json:"year"`
}

// Parse accepts an English month name or its three letter abbreviation, case-insensitive.
func Parse(month string, year int) (Period, error) {
	m, ok := lookupMonth(month)
	if !ok {
		return Period{}, errors.NewValidationFieldError("month", fmt.Sprintf("unknown month %q", month), errors.ErrCodeInvalidPeriod)
	}
	p := Period{Month: m, Year: year}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

// ParseYearMonth parses the "2025-03" form used by query strings.
func ParseYearMonth(s string) (Period, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return Period{}, errors.NewValidationFieldError("period", "period must look like YYYY-MM", errors.ErrCodeInvalidPeriod)
	}
	p := Period{Month: t.Month(), Year: t.Year()}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

func Of(t time.Time) Period {
	return Period{Month: t.Month(), Year: t.Year()}
}

func (p Period) Validate() error {
	if p.Month < time.January || p.Month > time.December {
		return errors.NewValidationFieldError("month", "month must be between January and December", errors.ErrCodeInvalidPeriod)
	}
	if p.Year < minYear || p.Year > maxYear {
		return errors.NewValidationFieldError("year", "year must be between "+strconv.Itoa(minYear)+" and "+strconv.Itoa(maxYear), errors.ErrCodeInvalidPeriod)
	}
	return nil
}

// MonthName is the stored representation of the month column.
func (p Period) MonthName() string {
	return p.Month.String()
}

// Start is the first instant of the period in UTC.
func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End is the first instant after the period.
func (p Period) End() time.Time {
	return p.Start().AddDate(0, 1, 0)
}

func (p Period) Contains(t time.Time) bool {
	t = t.UTC()
	return t.Year() == p.Year && t.Month() == p.Month
}

func (p Period) Before(o Period) bool {
	if p.Year != o.Year {
		return p.Year < o.Year
	}
	return p.Month < o.Month
}

func (p Period) String() string {
	return fmt.Sprintf("%s %d", p.MonthName(), p.Year)
}

func lookupMonth(s string) (time.Month, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}
	for m := time.January; m <= time.December; m++ {
		name := strings.ToLower(m.String())
		if s == name || s == name[:3] {
			return m, true
		}
	}
	return 0, false
}
