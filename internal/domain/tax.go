package domain

import (
	"github.com/shopspring/decimal"
)

// TaxBracket is one band of a progressive schedule. A nil UpperBound means the
// band is unbounded. Containment is [LowerBound, UpperBound).
type TaxBracket struct {
	LowerBound     decimal.Decimal  `yaml:"lower_bound" json:"lower_bound"`
	UpperBound     *decimal.Decimal `yaml:"upper_bound,omitempty" json:"upper_bound,omitempty"`
	Rate           decimal.Decimal  `yaml:"rate" json:"rate"`
	QuickDeduction decimal.Decimal  `yaml:"quick_deduction" json:"quick_deduction"`
}

// IsUnbounded reports whether the bracket extends to infinity.
func (b TaxBracket) IsUnbounded() bool {
	return b.UpperBound == nil
}

// Contains reports whether amount falls inside the bracket.
func (b TaxBracket) Contains(amount decimal.Decimal) bool {
	if amount.LessThan(b.LowerBound) {
		return false
	}
	return b.UpperBound == nil || amount.LessThan(*b.UpperBound)
}

// DeductionType is a statutory special additional deduction category (专项附加扣除).
type DeductionType string

const (
	DeductionChildEducation      DeductionType = "child_education"
	DeductionContinuingEducation DeductionType = "continuing_education"
	DeductionHousingLoan         DeductionType = "housing_loan"
	DeductionHousingRent         DeductionType = "housing_rent"
	DeductionElderlySupport      DeductionType = "elderly_support"
	DeductionInfantCare          DeductionType = "infant_care"
)

type deductionTypeInfo struct {
	label        string
	monthlyLimit int64
}

var deductionTypes = map[DeductionType]deductionTypeInfo{
	DeductionChildEducation:      {label: "子女教育", monthlyLimit: 2000},
	DeductionContinuingEducation: {label: "继续教育", monthlyLimit: 400},
	DeductionHousingLoan:         {label: "住房贷款利息", monthlyLimit: 1000},
	DeductionHousingRent:         {label: "住房租金", monthlyLimit: 1500},
	DeductionElderlySupport:      {label: "赡养老人", monthlyLimit: 3000},
	DeductionInfantCare:          {label: "3岁以下婴幼儿照护", monthlyLimit: 2000},
}

// AllDeductionTypes lists the categories in display order.
func AllDeductionTypes() []DeductionType {
	return []DeductionType{
		DeductionChildEducation, DeductionContinuingEducation, DeductionHousingLoan,
		DeductionHousingRent, DeductionElderlySupport, DeductionInfantCare,
	}
}

// Valid reports whether t is a known category.
func (t DeductionType) Valid() bool {
	_, ok := deductionTypes[t]
	return ok
}

// Label returns the Chinese display label.
func (t DeductionType) Label() string {
	if info, ok := deductionTypes[t]; ok {
		return info.label
	}
	return string(t)
}

// MonthlyLimit is the statutory monthly ceiling; zero for unknown types.
func (t DeductionType) MonthlyLimit() decimal.Decimal {
	return decimal.NewFromInt(deductionTypes[t].monthlyLimit)
}

// LimitForPeriods is the cumulative ceiling after the given number of months.
func (t DeductionType) LimitForPeriods(periods int) decimal.Decimal {
	return t.MonthlyLimit().Mul(decimal.NewFromInt(int64(periods)))
}

// Deduction is a cumulative year-to-date special additional deduction.
type Deduction struct {
	Type        DeductionType   `yaml:"type" json:"type"`
	Amount      decimal.Decimal `yaml:"amount" json:"amount"`
	Description string          `yaml:"description,omitempty" json:"description,omitempty"`
}

// DeductionsForPeriod turns an employee's monthly declarations into cumulative
// deductions for the given withholding month.
func DeductionsForPeriod(e *Employee, currentPeriod int) []Deduction {
	var out []Deduction
	months := decimal.NewFromInt(int64(currentPeriod))
	for _, t := range AllDeductionTypes() {
		monthly := e.MonthlySpecialDeduction(t)
		if monthly.IsZero() {
			continue
		}
		out = append(out, Deduction{
			Type:        t,
			Amount:      monthly.Mul(months),
			Description: t.Label(),
		})
	}
	return out
}

// TaxResult is the outcome of one cumulative withholding calculation.
type TaxResult struct {
	EmployeeNumber         string          `json:"employee_number"`
	Period                 *PayrollPeriod  `json:"period,omitempty"`
	CurrentPeriod          int             `json:"current_period"`
	PeriodIncome           decimal.Decimal `json:"period_income"`
	CumulativeIncome       decimal.Decimal `json:"cumulative_income"`
	TaxableIncome          decimal.Decimal `json:"taxable_income"`
	CumulativeTaxDue       decimal.Decimal `json:"cumulative_tax_due"`
	CumulativeTaxPaid      decimal.Decimal `json:"cumulative_tax_paid"`
	TaxAmount              decimal.Decimal `json:"tax_amount"`
	NetIncome              decimal.Decimal `json:"net_income"`
	MarginalTaxRate        decimal.Decimal `json:"marginal_tax_rate"`
	EffectiveTaxRate       decimal.Decimal `json:"effective_tax_rate"`
	BasicExemption         decimal.Decimal `json:"basic_exemption"`
	SpecialDeductionsTotal decimal.Decimal `json:"special_deductions_total"`
	TotalDeductions        decimal.Decimal `json:"total_deductions"`
	Deductions             []Deduction     `json:"deductions,omitempty"`
	Bracket                TaxBracket      `json:"bracket"`
	IsValid                bool            `json:"is_valid"`
}

// AnnualBonusTaxResult is the outcome of separately taxing a one-off annual bonus.
type AnnualBonusTaxResult struct {
	Bonus          decimal.Decimal `json:"bonus"`
	MonthlyAverage decimal.Decimal `json:"monthly_average"`
	Rate           decimal.Decimal `json:"rate"`
	QuickDeduction decimal.Decimal `json:"quick_deduction"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	NetBonus       decimal.Decimal `json:"net_bonus"`
}
