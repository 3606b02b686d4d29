package calculation

import (
	"fmt"

	"github.com/rgehrsitz/cnpay/internal/domain"
	"github.com/shopspring/decimal"
)

// BonusRule pays the one-off amounts supplied for the period: bonus,
// performance bonus and commission. The three are reported as one bonus line
// with a breakdown.
type BonusRule struct {
	Priority int
}

// NewBonusRule creates the rule with its default order.
func NewBonusRule() *BonusRule {
	return &BonusRule{Priority: OrderBonus}
}

func (r *BonusRule) Type() domain.SalaryItemType { return domain.ItemBonus }
func (r *BonusRule) Order() int                  { return r.Priority }

var bonusKeys = []string{CtxBonus, CtxPerformanceBonus, CtxCommission}

func (r *BonusRule) components(ctx Context) domain.Metadata {
	out := domain.Metadata{}
	for _, key := range bonusKeys {
		if v, ok := ctx.Decimal(key); ok && v.IsPositive() {
			out[key] = v
		}
	}
	return out
}

// IsApplicable is true when any bonus amount is positive.
func (r *BonusRule) IsApplicable(_ *domain.Employee, _ domain.PayrollPeriod, ctx Context) bool {
	return len(r.components(ctx)) > 0
}

// Calculate returns the bonus line.
func (r *BonusRule) Calculate(_ *domain.Employee, _ domain.PayrollPeriod, ctx Context) domain.SalaryItem {
	parts := r.components(ctx)
	total := decimal.Zero
	for _, v := range parts {
		total = total.Add(v)
	}
	item := domain.NewSalaryItem(domain.ItemBonus, total.Round(2), "")
	item.Metadata = parts
	return item
}

// AttendanceRule deducts unpaid absence at the daily rate baseSalary/21.75.
type AttendanceRule struct {
	Priority int
}

// NewAttendanceRule creates the rule with its default order.
func NewAttendanceRule() *AttendanceRule {
	return &AttendanceRule{Priority: OrderAttendance}
}

func (r *AttendanceRule) Type() domain.SalaryItemType { return domain.ItemAttendance }
func (r *AttendanceRule) Order() int                  { return r.Priority }

// IsApplicable requires a positive salary and positive absence days.
func (r *AttendanceRule) IsApplicable(employee *domain.Employee, _ domain.PayrollPeriod, ctx Context) bool {
	if !employee.BaseSalary.IsPositive() {
		return false
	}
	return ctx.DecimalOr(CtxAbsenceDays, decimal.Zero).IsPositive()
}

// DailyRate is the base salary divided by the standard monthly work days.
func DailyRate(baseSalary decimal.Decimal) decimal.Decimal {
	return baseSalary.Div(StandardMonthlyWorkDays)
}

// Calculate returns a negative attendance line. The deduction never exceeds the
// monthly base salary.
func (r *AttendanceRule) Calculate(employee *domain.Employee, _ domain.PayrollPeriod, ctx Context) domain.SalaryItem {
	days := ctx.DecimalOr(CtxAbsenceDays, decimal.Zero)
	rate := DailyRate(employee.BaseSalary)
	deduction := decimal.Min(days.Mul(rate), employee.BaseSalary).Round(2)

	description := fmt.Sprintf("%s (缺勤%s天)", domain.ItemAttendance.Label(), days.StringFixed(1))
	item := domain.NewSalaryItem(domain.ItemAttendance, deduction.Neg(), description)
	item.Metadata = domain.Metadata{
		"absence_days": days,
		"daily_rate":   rate.Round(4),
	}
	return item
}
