package calculation

import (
	"fmt"

	"github.com/rgehrsitz/cnpay/internal/domain"
	"github.com/shopspring/decimal"
)

// DefaultTaxYear is used when the context carries no payroll period.
const DefaultTaxYear = 2025

// MonthlyBasicExemption is the standard deduction (基本减除费用) per month.
var MonthlyBasicExemption = decimal.NewFromInt(5000)

// TaxContext carries the year-to-date state for cumulative withholding.
type TaxContext struct {
	// CurrentPeriod is the month index within the tax year (1-12). Zero means 1.
	CurrentPeriod int
	// CumulativeIncome includes the current period. Nil means the period income.
	CumulativeIncome *decimal.Decimal
	// CumulativeTaxPaid is tax already withheld in earlier periods.
	CumulativeTaxPaid decimal.Decimal
	// Deductions are cumulative special additional deductions.
	Deductions []domain.Deduction
	// Period attributes the result and selects the tax year.
	Period *domain.PayrollPeriod
}

// TaxCalculator computes income tax with the cumulative withholding method
// (累计预扣法). It is safe for concurrent use.
type TaxCalculator struct {
	brackets TaxBracketProvider
	logger   Logger
}

// NewTaxCalculator creates a calculator over the statutory schedule.
func NewTaxCalculator() *TaxCalculator {
	return &TaxCalculator{brackets: NewStatutoryBracketProvider(), logger: nopLogger{}}
}

// NewTaxCalculatorWithProvider creates a calculator over a custom schedule.
func NewTaxCalculatorWithProvider(provider TaxBracketProvider) *TaxCalculator {
	return &TaxCalculator{brackets: provider, logger: nopLogger{}}
}

// SetLogger sets the debug logger; nil restores the no-op logger.
func (tc *TaxCalculator) SetLogger(l Logger) {
	tc.logger = loggerOrNop(l)
}

// Calculate computes the tax to withhold for one period.
func (tc *TaxCalculator) Calculate(employee *domain.Employee, periodIncome decimal.Decimal, tctx TaxContext) (*domain.TaxResult, error) {
	currentPeriod := tctx.CurrentPeriod
	if currentPeriod == 0 {
		currentPeriod = 1
	}
	cumulativeIncome := periodIncome
	if tctx.CumulativeIncome != nil {
		cumulativeIncome = *tctx.CumulativeIncome
	}

	if periodIncome.IsNegative() {
		return nil, domain.NewTaxValidationError("period_income", periodIncome,
			"应税收入不能为负数: %s", periodIncome.StringFixed(2))
	}
	if cumulativeIncome.LessThan(periodIncome) {
		return nil, domain.NewTaxValidationError("cumulative_income", cumulativeIncome,
			"累计收入(%s)不能小于本期收入(%s)", cumulativeIncome.StringFixed(2), periodIncome.StringFixed(2))
	}
	if currentPeriod < 1 || currentPeriod > 12 {
		return nil, domain.NewTaxValidationError("current_period", currentPeriod,
			"当前期数必须在1到12之间: %d", currentPeriod)
	}
	if tctx.CumulativeTaxPaid.IsNegative() {
		return nil, domain.NewTaxValidationError("cumulative_tax_paid", tctx.CumulativeTaxPaid,
			"累计已缴税额不能为负数: %s", tctx.CumulativeTaxPaid.StringFixed(2))
	}
	special, err := sumSpecialDeductions(tctx.Deductions, currentPeriod)
	if err != nil {
		return nil, err
	}

	year := DefaultTaxYear
	if tctx.Period != nil {
		year = tctx.Period.Year
	}
	brackets, err := tc.brackets.Brackets(year)
	if err != nil {
		return nil, err
	}
	if err := ValidateBrackets(brackets); err != nil {
		return nil, err
	}

	exemption := MonthlyBasicExemption.Mul(decimal.NewFromInt(int64(currentPeriod)))
	taxable := decimal.Max(decimal.Zero, cumulativeIncome.Sub(exemption).Sub(special))
	bracket, err := FindBracket(brackets, taxable)
	if err != nil {
		return nil, err
	}
	due := decimal.Max(decimal.Zero, taxable.Mul(bracket.Rate).Sub(bracket.QuickDeduction)).Round(2)
	periodTax := decimal.Max(decimal.Zero, due.Sub(tctx.CumulativeTaxPaid)).Round(2)

	effective := decimal.Zero
	if cumulativeIncome.IsPositive() {
		effective = due.Div(cumulativeIncome).Round(4)
	}

	employeeNumber := ""
	if employee != nil {
		employeeNumber = employee.EmployeeNumber
	}
	tc.logger.Debugf("tax %s period=%d cumulative=%s taxable=%s rate=%s due=%s paid=%s tax=%s",
		employeeNumber, currentPeriod, cumulativeIncome.StringFixed(2), taxable.StringFixed(2),
		bracket.Rate.String(), due.StringFixed(2), tctx.CumulativeTaxPaid.StringFixed(2), periodTax.StringFixed(2))

	deductions := make([]domain.Deduction, len(tctx.Deductions))
	copy(deductions, tctx.Deductions)

	return &domain.TaxResult{
		EmployeeNumber:         employeeNumber,
		Period:                 tctx.Period,
		CurrentPeriod:          currentPeriod,
		PeriodIncome:           periodIncome,
		CumulativeIncome:       cumulativeIncome,
		TaxableIncome:          taxable,
		CumulativeTaxDue:       due,
		CumulativeTaxPaid:      tctx.CumulativeTaxPaid,
		TaxAmount:              periodTax,
		NetIncome:              periodIncome.Sub(periodTax),
		MarginalTaxRate:        bracket.Rate,
		EffectiveTaxRate:       effective,
		BasicExemption:         exemption,
		SpecialDeductionsTotal: special,
		TotalDeductions:        exemption.Add(special),
		Deductions:             deductions,
		Bracket:                bracket,
		IsValid:                true,
	}, nil
}

// sumSpecialDeductions validates each deduction against its cumulative limit
// and returns the total. Excess amounts are rejected, never clamped.
func sumSpecialDeductions(deductions []domain.Deduction, currentPeriod int) (decimal.Decimal, error) {
	total := decimal.Zero
	for i, d := range deductions {
		field := fmt.Sprintf("deductions[%d]", i)
		if !d.Type.Valid() {
			return decimal.Zero, domain.NewTaxValidationError(field, d.Type,
				"未知的专项附加扣除类型: %s", d.Type)
		}
		if d.Amount.IsNegative() {
			return decimal.Zero, domain.NewTaxValidationError(field, d.Amount,
				"专项附加扣除[%s]金额不能为负数: %s", d.Type.Label(), d.Amount.StringFixed(2))
		}
		limit := d.Type.LimitForPeriods(currentPeriod)
		if d.Amount.GreaterThan(limit) {
			return decimal.Zero, domain.NewTaxValidationError(field, d.Amount,
				"专项附加扣除[%s]金额%s超过法定上限%s", d.Type.Label(), d.Amount.StringFixed(2), limit.StringFixed(2))
		}
		total = total.Add(d.Amount)
	}
	return total, nil
}

// CalculateAnnualBonus taxes a one-off annual bonus separately from monthly
// wages: the bracket is chosen by bonus/12 on the monthly schedule and the tax
// is bonus × rate − quick deduction.
func (tc *TaxCalculator) CalculateAnnualBonus(bonus decimal.Decimal) (*domain.AnnualBonusTaxResult, error) {
	if bonus.IsNegative() {
		return nil, domain.NewTaxValidationError("bonus", bonus,
			"年终奖金额不能为负数: %s", bonus.StringFixed(2))
	}
	average := bonus.Div(decimal.NewFromInt(12))
	bracket := annualBonusBracket(average)
	tax := decimal.Max(decimal.Zero, bonus.Mul(bracket.Rate).Sub(bracket.QuickDeduction)).Round(2)
	return &domain.AnnualBonusTaxResult{
		Bonus:          bonus,
		MonthlyAverage: average.Round(2),
		Rate:           bracket.Rate,
		QuickDeduction: bracket.QuickDeduction,
		TaxAmount:      tax,
		NetBonus:       bonus.Sub(tax),
	}, nil
}

// annualBonusBracket picks the monthly band whose upper bound is not exceeded.
// Bands are upper-inclusive here ("不超过3000元"), unlike FindBracket, because
// the bonus tax is not continuous across band edges.
func annualBonusBracket(average decimal.Decimal) domain.TaxBracket {
	brackets := MonthlyBrackets()
	for _, b := range brackets {
		if b.IsUnbounded() || average.LessThanOrEqual(*b.UpperBound) {
			return b
		}
	}
	return brackets[len(brackets)-1]
}
