package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Employee is the read model the engine needs about one employee.
type Employee struct {
	EmployeeNumber    string                            `yaml:"employee_number" json:"employee_number" validate:"required"`
	Name              string                            `yaml:"name" json:"name"`
	BaseSalary        decimal.Decimal                   `yaml:"base_salary" json:"base_salary"`
	HireDate          time.Time                         `yaml:"hire_date" json:"hire_date"`
	Department        string                            `yaml:"department" json:"department"`
	Region            string                            `yaml:"region,omitempty" json:"region,omitempty"`
	Education         string                            `yaml:"education,omitempty" json:"education,omitempty"`
	SpecialDeductions map[DeductionType]decimal.Decimal `yaml:"special_deductions,omitempty" json:"special_deductions,omitempty"`
}

// YearsOfService returns completed whole years between the hire date and at.
func (e *Employee) YearsOfService(at time.Time) int {
	if e.HireDate.IsZero() || at.Before(e.HireDate) {
		return 0
	}
	years := at.Year() - e.HireDate.Year()
	if at.Month() < e.HireDate.Month() || (at.Month() == e.HireDate.Month() && at.Day() < e.HireDate.Day()) {
		years--
	}
	return years
}

// MonthlySpecialDeduction returns the declared monthly amount for t, or zero.
func (e *Employee) MonthlySpecialDeduction(t DeductionType) decimal.Decimal {
	if e.SpecialDeductions == nil {
		return decimal.Zero
	}
	return e.SpecialDeductions[t]
}
