package calculation

import (
	"fmt"

	"github.com/rgehrsitz/cnpay/internal/domain"
	"github.com/shopspring/decimal"
)

// Statutory working-time constants (劳动和社会保障部 [2008] 3号).
var (
	StandardMonthlyWorkDays = decimal.RequireFromString("21.75")
	StandardMonthlyHours    = decimal.NewFromInt(174)
)

// Default rule ordering.
const (
	OrderBasicSalary = 10
	OrderOvertime    = 20
	OrderAllowance   = 30
	OrderBonus       = 40
	OrderAttendance  = 50
)

// BasicSalaryRule emits the contractual monthly salary, pro-rated when the
// context carries worked_days.
type BasicSalaryRule struct {
	Priority int
}

// NewBasicSalaryRule creates the rule with its default order.
func NewBasicSalaryRule() *BasicSalaryRule {
	return &BasicSalaryRule{Priority: OrderBasicSalary}
}

func (r *BasicSalaryRule) Type() domain.SalaryItemType { return domain.ItemBasicSalary }
func (r *BasicSalaryRule) Order() int                  { return r.Priority }

// IsApplicable is true when there is a salary to pay.
func (r *BasicSalaryRule) IsApplicable(employee *domain.Employee, _ domain.PayrollPeriod, ctx Context) bool {
	return r.monthlyBase(employee, ctx).IsPositive()
}

func (r *BasicSalaryRule) monthlyBase(employee *domain.Employee, ctx Context) decimal.Decimal {
	if override, ok := ctx.Decimal(CtxBaseSalaryOverride); ok && !override.IsNegative() {
		return override
	}
	return employee.BaseSalary
}

// Calculate returns the basic salary line.
func (r *BasicSalaryRule) Calculate(employee *domain.Employee, period domain.PayrollPeriod, ctx Context) domain.SalaryItem {
	base := r.monthlyBase(employee, ctx)
	amount := base
	description := domain.ItemBasicSalary.Label()
	meta := domain.Metadata{"monthly_base": base}

	if worked, ok := ctx.Decimal(CtxWorkedDays); ok {
		days := decimal.NewFromInt(int64(period.DaysInMonth()))
		worked = decimal.Max(decimal.Zero, decimal.Min(worked, days))
		amount = base.Mul(worked).Div(days)
		meta["worked_days"] = worked
		meta["days_in_month"] = days
		description = fmt.Sprintf("%s (出勤%s/%s天)", description, worked.String(), days.String())
	}

	item := domain.NewSalaryItem(domain.ItemBasicSalary, amount.Round(2), description)
	item.Metadata = meta
	return item
}
