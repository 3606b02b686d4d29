package calculation

import (
	"fmt"

	"github.com/rgehrsitz/cnpay/internal/domain"
	"github.com/shopspring/decimal"
)

// DefaultOvertimeMultiplier is the weekday overtime premium (150%).
var DefaultOvertimeMultiplier = decimal.RequireFromString("1.5")

// OvertimeRule pays overtime hours at baseSalary/174 per hour times a multiplier.
type OvertimeRule struct {
	Priority          int
	DefaultMultiplier decimal.Decimal
}

// NewOvertimeRule creates the rule with its default order and multiplier.
func NewOvertimeRule() *OvertimeRule {
	return &OvertimeRule{Priority: OrderOvertime, DefaultMultiplier: DefaultOvertimeMultiplier}
}

func (r *OvertimeRule) Type() domain.SalaryItemType { return domain.ItemOvertime }
func (r *OvertimeRule) Order() int                  { return r.Priority }

// IsApplicable requires a positive salary and positive overtime hours.
func (r *OvertimeRule) IsApplicable(employee *domain.Employee, _ domain.PayrollPeriod, ctx Context) bool {
	if !employee.BaseSalary.IsPositive() {
		return false
	}
	return ctx.DecimalOr(CtxOvertimeHours, decimal.Zero).IsPositive()
}

// HourlyRate is the employee's base salary divided by the standard monthly hours.
func HourlyRate(baseSalary decimal.Decimal) decimal.Decimal {
	return baseSalary.Div(StandardMonthlyHours)
}

// Calculate returns the overtime line.
func (r *OvertimeRule) Calculate(employee *domain.Employee, _ domain.PayrollPeriod, ctx Context) domain.SalaryItem {
	hours := decimal.Max(decimal.Zero, ctx.DecimalOr(CtxOvertimeHours, decimal.Zero))
	multiplier := ctx.DecimalOr(CtxOvertimeMultiplier, r.defaultMultiplier())
	if !multiplier.IsPositive() {
		multiplier = r.defaultMultiplier()
	}
	rate := HourlyRate(employee.BaseSalary)
	amount := hours.Mul(rate).Mul(multiplier).Round(2)

	description := fmt.Sprintf("加班费 (%s小时 × %s倍)", hours.StringFixed(1), multiplier.StringFixed(1))
	item := domain.NewSalaryItem(domain.ItemOvertime, amount, description)
	item.Metadata = domain.Metadata{
		"hours":       hours,
		"multiplier":  multiplier,
		"hourly_rate": rate.Round(4),
	}
	return item
}

func (r *OvertimeRule) defaultMultiplier() decimal.Decimal {
	if r.DefaultMultiplier.IsPositive() {
		return r.DefaultMultiplier
	}
	return DefaultOvertimeMultiplier
}
