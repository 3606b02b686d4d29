package calculation

import (
	"sort"
	"sync"

	"github.com/rgehrsitz/cnpay/internal/domain"
)

// CalculationRule produces one salary line for an employee and period.
type CalculationRule interface {
	// Type identifies the rule; a pipeline holds at most one rule per type.
	Type() domain.SalaryItemType
	// Order positions the rule in the pipeline, lowest first.
	Order() int
	IsApplicable(employee *domain.Employee, period domain.PayrollPeriod, ctx Context) bool
	Calculate(employee *domain.Employee, period domain.PayrollPeriod, ctx Context) domain.SalaryItem
}

// SalaryPipeline applies an ordered set of rules to build a SalaryCalculation.
// Rules may be added or removed while calculations run.
type SalaryPipeline struct {
	mu     sync.RWMutex
	rules  []CalculationRule
	logger Logger
}

// NewSalaryPipeline creates a pipeline holding the given rules.
func NewSalaryPipeline(rules ...CalculationRule) *SalaryPipeline {
	p := &SalaryPipeline{logger: nopLogger{}}
	for _, r := range rules {
		p.AddRule(r)
	}
	return p
}

// NewDefaultPipeline registers every built-in rule.
func NewDefaultPipeline() *SalaryPipeline {
	return NewSalaryPipeline(
		NewBasicSalaryRule(),
		NewOvertimeRule(),
		NewAllowanceRule(),
		NewBonusRule(),
		NewAttendanceRule(),
	)
}

// SetLogger sets the debug logger; nil restores the no-op logger.
func (p *SalaryPipeline) SetLogger(l Logger) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.logger = loggerOrNop(l)
}

// AddRule registers a rule, replacing any rule of the same type.
func (p *SalaryPipeline) AddRule(rule CalculationRule) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, r := range p.rules {
		if r.Type() == rule.Type() {
			p.rules[i] = rule
			return
		}
	}
	p.rules = append(p.rules, rule)
}

// RemoveRule drops the rule of the given type and reports whether one existed.
func (p *SalaryPipeline) RemoveRule(t domain.SalaryItemType) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, r := range p.rules {
		if r.Type() == t {
			p.rules = append(p.rules[:i], p.rules[i+1:]...)
			return true
		}
	}
	return false
}

// Rules returns the registered rules in execution order.
func (p *SalaryPipeline) Rules() []CalculationRule {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.sortedRules()
}

// sortedRules must be called with mu held.
func (p *SalaryPipeline) sortedRules() []CalculationRule {
	out := make([]CalculationRule, len(p.rules))
	copy(out, p.rules)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Order() < out[j].Order()
	})
	return out
}

// Calculate runs every applicable rule and returns a fresh calculation.
func (p *SalaryPipeline) Calculate(employee domain.Employee, period domain.PayrollPeriod, ctx Context) (*domain.SalaryCalculation, error) {
	if employee.EmployeeNumber == "" {
		return nil, domain.NewSalaryValidationError("employee_number", "", "员工编号不能为空")
	}
	if employee.BaseSalary.IsNegative() {
		return nil, domain.NewSalaryValidationError("base_salary", employee.BaseSalary,
			"员工[%s]基本工资不能为负数: %s", employee.EmployeeNumber, employee.BaseSalary.StringFixed(2))
	}
	if err := period.Validate(); err != nil {
		return nil, domain.NewSalaryValidationError("period", period.Key(), "薪资期间无效: %v", err)
	}
	if ctx == nil {
		ctx = Context{}
	}

	p.mu.RLock()
	rules := p.sortedRules()
	logger := p.logger
	p.mu.RUnlock()

	calc := domain.NewSalaryCalculation(employee, period)
	for _, rule := range rules {
		if !rule.IsApplicable(&employee, period, ctx) {
			logger.Debugf("rule %s skipped for %s", rule.Type(), employee.EmployeeNumber)
			continue
		}
		item := rule.Calculate(&employee, period, ctx)
		logger.Debugf("rule %s for %s: %s", rule.Type(), employee.EmployeeNumber, item.Amount.StringFixed(2))
		calc.AddItem(item)
	}
	return calc, nil
}
