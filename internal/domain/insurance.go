package domain

import (
	"github.com/shopspring/decimal"
)

// InsuranceType is one of the five insurances or the housing fund (五险一金).
type InsuranceType string

const (
	InsurancePension      InsuranceType = "pension"
	InsuranceMedical      InsuranceType = "medical"
	InsuranceUnemployment InsuranceType = "unemployment"
	InsuranceWorkInjury   InsuranceType = "work_injury"
	InsuranceMaternity    InsuranceType = "maternity"
	InsuranceHousingFund  InsuranceType = "housing_fund"
)

var insuranceLabels = map[InsuranceType]string{
	InsurancePension:      "养老保险",
	InsuranceMedical:      "医疗保险",
	InsuranceUnemployment: "失业保险",
	InsuranceWorkInjury:   "工伤保险",
	InsuranceMaternity:    "生育保险",
	InsuranceHousingFund:  "住房公积金",
}

// AllInsuranceTypes lists the six types in display order.
func AllInsuranceTypes() []InsuranceType {
	return []InsuranceType{
		InsurancePension, InsuranceMedical, InsuranceUnemployment,
		InsuranceWorkInjury, InsuranceMaternity, InsuranceHousingFund,
	}
}

// Valid reports whether t is a known type.
func (t InsuranceType) Valid() bool {
	_, ok := insuranceLabels[t]
	return ok
}

// Label returns the Chinese display label.
func (t InsuranceType) Label() string {
	if l, ok := insuranceLabels[t]; ok {
		return l
	}
	return string(t)
}

// StatutoryEmployeeExempt is true for types the employee never pays into.
func (t InsuranceType) StatutoryEmployeeExempt() bool {
	return t == InsuranceWorkInjury || t == InsuranceMaternity
}

// IsHousingFund distinguishes the housing fund from the five social insurances.
func (t InsuranceType) IsHousingFund() bool {
	return t == InsuranceHousingFund
}

// ContributionBase is the declared base for one insurance type together with the
// limits it must be clamped to.
type ContributionBase struct {
	InsuranceType InsuranceType   `yaml:"insurance_type" json:"insurance_type" validate:"required"`
	SalaryBase    decimal.Decimal `yaml:"salary_base" json:"salary_base"`
	LowerLimit    decimal.Decimal `yaml:"lower_limit" json:"lower_limit"`
	UpperLimit    decimal.Decimal `yaml:"upper_limit" json:"upper_limit"`
	Region        string          `yaml:"region,omitempty" json:"region,omitempty"`
	Year          int             `yaml:"year" json:"year"`
}

// HasLimits reports whether the base carries its own limits.
func (b ContributionBase) HasLimits() bool {
	return !b.UpperLimit.IsZero()
}

// EffectiveBase clamps SalaryBase to [LowerLimit, UpperLimit].
func (b ContributionBase) EffectiveBase() decimal.Decimal {
	return ClampBase(b.SalaryBase, b.LowerLimit, b.UpperLimit)
}

// ClampBase bounds base to [lower, upper]. An upper limit of zero means no cap.
func ClampBase(base, lower, upper decimal.Decimal) decimal.Decimal {
	if base.LessThan(lower) {
		return lower
	}
	if !upper.IsZero() && base.GreaterThan(upper) {
		return upper
	}
	return base
}

// InsuranceRates is the employer/employee split for one type in one region.
type InsuranceRates struct {
	Employer decimal.Decimal `yaml:"employer" json:"employer"`
	Employee decimal.Decimal `yaml:"employee" json:"employee"`
}

// ContributionLimits bounds the contribution base for one type, region and year.
type ContributionLimits struct {
	Lower decimal.Decimal `yaml:"lower" json:"lower"`
	Upper decimal.Decimal `yaml:"upper" json:"upper"`
}

// Valid reports whether the limits can be passed to ClampBase: a
// non-negative floor and either no cap (zero) or a cap at or above it.
func (l ContributionLimits) Valid() bool {
	if l.Lower.IsNegative() || l.Upper.IsNegative() {
		return false
	}
	return l.Upper.IsZero() || l.Upper.GreaterThanOrEqual(l.Lower)
}

// SocialInsuranceResult is the computed contribution for one insurance type.
type SocialInsuranceResult struct {
	EmployeeNumber   string          `json:"employee_number"`
	Period           PayrollPeriod   `json:"period"`
	InsuranceType    InsuranceType   `json:"insurance_type"`
	ContributionBase decimal.Decimal `json:"contribution_base"`
	EmployerAmount   decimal.Decimal `json:"employer_amount"`
	EmployeeAmount   decimal.Decimal `json:"employee_amount"`
	EmployerRate     decimal.Decimal `json:"employer_rate"`
	EmployeeRate     decimal.Decimal `json:"employee_rate"`
	Region           string          `json:"region"`
}

// TotalAmount is the employer plus employee contribution.
func (r SocialInsuranceResult) TotalAmount() decimal.Decimal {
	return r.EmployerAmount.Add(r.EmployeeAmount)
}
