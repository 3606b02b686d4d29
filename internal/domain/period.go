package domain

import (
	"fmt"
	"time"
)

// PayrollPeriod identifies one monthly payroll cycle.
type PayrollPeriod struct {
	Year  int `yaml:"year" json:"year" validate:"min=1900,max=9999"`
	Month int `yaml:"month" json:"month" validate:"min=1,max=12"`
}

// NewPayrollPeriod creates a period, rejecting months outside 1-12.
func NewPayrollPeriod(year, month int) (PayrollPeriod, error) {
	if month < 1 || month > 12 {
		return PayrollPeriod{}, fmt.Errorf("month must be between 1 and 12, got %d", month)
	}
	if year < 1 {
		return PayrollPeriod{}, fmt.Errorf("year must be positive, got %d", year)
	}
	return PayrollPeriod{Year: year, Month: month}, nil
}

// MustPayrollPeriod is NewPayrollPeriod for compiled-in values; it panics on error.
func MustPayrollPeriod(year, month int) PayrollPeriod {
	p, err := NewPayrollPeriod(year, month)
	if err != nil {
		panic(err)
	}
	return p
}

// ParsePeriod parses a "YYYY-MM" key.
func ParsePeriod(key string) (PayrollPeriod, error) {
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return PayrollPeriod{}, fmt.Errorf("invalid period %q, expected YYYY-MM: %w", key, err)
	}
	return NewPayrollPeriod(t.Year(), int(t.Month()))
}

// CurrentPeriod returns the period containing now.
func CurrentPeriod(now time.Time) PayrollPeriod {
	return PayrollPeriod{Year: now.Year(), Month: int(now.Month())}
}

// Validate reports whether the period is well formed.
func (p PayrollPeriod) Validate() error {
	_, err := NewPayrollPeriod(p.Year, p.Month)
	return err
}

// StartDate is midnight UTC on the first day of the month.
func (p PayrollPeriod) StartDate() time.Time {
	return time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
}

// EndDate is midnight UTC on the last day of the month.
func (p PayrollPeriod) EndDate() time.Time {
	return p.StartDate().AddDate(0, 1, -1)
}

// DaysInMonth returns the calendar day count of the period.
func (p PayrollPeriod) DaysInMonth() int {
	return p.EndDate().Day()
}

// WorkingDays counts Monday-Friday dates in the period. Public holidays are not
// considered.
func (p PayrollPeriod) WorkingDays() int {
	days := 0
	for d := p.StartDate(); d.Month() == time.Month(p.Month); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			days++
		}
	}
	return days
}

// Key returns the stable "YYYY-MM" identifier.
func (p PayrollPeriod) Key() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

func (p PayrollPeriod) String() string {
	return p.Key()
}

// Next returns the following month, rolling the year after December.
func (p PayrollPeriod) Next() PayrollPeriod {
	if p.Month == 12 {
		return PayrollPeriod{Year: p.Year + 1, Month: 1}
	}
	return PayrollPeriod{Year: p.Year, Month: p.Month + 1}
}

// Previous returns the preceding month, rolling the year before January.
func (p PayrollPeriod) Previous() PayrollPeriod {
	if p.Month == 1 {
		return PayrollPeriod{Year: p.Year - 1, Month: 12}
	}
	return PayrollPeriod{Year: p.Year, Month: p.Month - 1}
}

// Equal compares by year and month.
func (p PayrollPeriod) Equal(other PayrollPeriod) bool {
	return p.Year == other.Year && p.Month == other.Month
}

// Before reports whether p is earlier than other.
func (p PayrollPeriod) Before(other PayrollPeriod) bool {
	if p.Year != other.Year {
		return p.Year < other.Year
	}
	return p.Month < other.Month
}

// IsCurrent reports whether the period contains the wall-clock date.
func (p PayrollPeriod) IsCurrent() bool {
	return p.IsCurrentAt(time.Now())
}

// IsCurrentAt reports whether the period contains t.
func (p PayrollPeriod) IsCurrentAt(t time.Time) bool {
	return p.Equal(CurrentPeriod(t))
}
