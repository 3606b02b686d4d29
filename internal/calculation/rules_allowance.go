package calculation

import (
	"sort"
	"strings"

	"github.com/rgehrsitz/cnpay/internal/domain"
	"github.com/shopspring/decimal"
)

// Allowance component keys, also used in the item's metadata breakdown.
const (
	AllowancePosition        = "position"
	AllowanceSkill           = "skill"
	AllowanceRegional        = "regional"
	AllowanceEducation       = "education"
	AllowanceSeniority       = "seniority"
	AllowanceSpecialPosition = "special_position"
)

var (
	executiveKeywords = []string{"管理", "总监", "经理", "高管", "executive", "management", "director"}
	technicalKeywords = []string{"研发", "技术", "工程", "technical", "engineering", "r&d", "tech"}
)

type salaryTier struct {
	minSalary decimal.Decimal
	amount    decimal.Decimal
}

// skillTiers is ordered from the highest threshold down.
var skillTiers = []salaryTier{
	{decimal.NewFromInt(20000), decimal.NewFromInt(1500)},
	{decimal.NewFromInt(12000), decimal.NewFromInt(1000)},
	{decimal.NewFromInt(8000), decimal.NewFromInt(500)},
}

var regionalAllowances = map[string]decimal.Decimal{
	"beijing":   decimal.NewFromInt(1000),
	"shanghai":  decimal.NewFromInt(1000),
	"shenzhen":  decimal.NewFromInt(800),
	"guangzhou": decimal.NewFromInt(800),
}

var educationAllowances = map[string]decimal.Decimal{
	"doctorate": decimal.NewFromInt(1500),
	"master":    decimal.NewFromInt(800),
	"bachelor":  decimal.NewFromInt(300),
}

var educationSynonyms = map[string]string{
	"doctorate": "doctorate", "doctor": "doctorate", "phd": "doctorate", "博士": "doctorate",
	"master": "master", "masters": "master", "硕士": "master", "研究生": "master",
	"bachelor": "bachelor", "bachelors": "bachelor", "undergraduate": "bachelor", "本科": "bachelor",
}

var (
	positionAllowance        = decimal.NewFromInt(2000)
	specialPositionAllowance = decimal.NewFromInt(600)
	seniorityAllowance10     = decimal.NewFromInt(500)
	seniorityAllowance20     = decimal.NewFromInt(1000)
)

// AllowanceRule sums fixed allowance components looked up from employee
// attributes. The thresholds are fixed business constants.
type AllowanceRule struct {
	Priority int
}

// NewAllowanceRule creates the rule with its default order.
func NewAllowanceRule() *AllowanceRule {
	return &AllowanceRule{Priority: OrderAllowance}
}

func (r *AllowanceRule) Type() domain.SalaryItemType { return domain.ItemAllowance }
func (r *AllowanceRule) Order() int                  { return r.Priority }

// IsApplicable is false only when every component is zero.
func (r *AllowanceRule) IsApplicable(employee *domain.Employee, period domain.PayrollPeriod, _ Context) bool {
	return len(r.Breakdown(employee, period)) > 0
}

// Calculate returns the allowance line with the per-component breakdown.
func (r *AllowanceRule) Calculate(employee *domain.Employee, period domain.PayrollPeriod, _ Context) domain.SalaryItem {
	breakdown := r.Breakdown(employee, period)
	total := decimal.Zero
	keys := make([]string, 0, len(breakdown))
	for k, v := range breakdown {
		total = total.Add(v)
		keys = append(keys, k)
	}
	sort.Strings(keys)

	labels := make([]string, 0, len(keys))
	for _, k := range keys {
		labels = append(labels, allowanceLabel(k))
	}
	description := domain.ItemAllowance.Label()
	if len(labels) > 0 {
		description += " (" + strings.Join(labels, "、") + ")"
	}

	item := domain.NewSalaryItem(domain.ItemAllowance, total, description)
	item.Metadata = breakdown
	return item
}

// Breakdown returns the non-zero allowance components.
func (r *AllowanceRule) Breakdown(employee *domain.Employee, period domain.PayrollPeriod) domain.Metadata {
	components := domain.Metadata{
		AllowancePosition:        positionComponent(employee),
		AllowanceSkill:           skillComponent(employee),
		AllowanceRegional:        regionalComponent(employee),
		AllowanceEducation:       educationComponent(employee),
		AllowanceSeniority:       seniorityComponent(employee, period),
		AllowanceSpecialPosition: specialPositionComponent(employee),
	}
	for k, v := range components {
		if v.IsZero() {
			delete(components, k)
		}
	}
	return components
}

func allowanceLabel(key string) string {
	switch key {
	case AllowancePosition:
		return "岗位津贴"
	case AllowanceSkill:
		return "技能津贴"
	case AllowanceRegional:
		return "地区津贴"
	case AllowanceEducation:
		return "学历津贴"
	case AllowanceSeniority:
		return "工龄津贴"
	case AllowanceSpecialPosition:
		return "特殊岗位津贴"
	}
	return key
}

func departmentMatches(department string, keywords []string) bool {
	d := strings.ToLower(department)
	for _, k := range keywords {
		if strings.Contains(d, k) {
			return true
		}
	}
	return false
}

func positionComponent(e *domain.Employee) decimal.Decimal {
	if departmentMatches(e.Department, executiveKeywords) {
		return positionAllowance
	}
	return decimal.Zero
}

func skillComponent(e *domain.Employee) decimal.Decimal {
	for _, tier := range skillTiers {
		if e.BaseSalary.GreaterThanOrEqual(tier.minSalary) {
			return tier.amount
		}
	}
	return decimal.Zero
}

func regionalComponent(e *domain.Employee) decimal.Decimal {
	if e.Region == "" {
		return decimal.Zero
	}
	if v, ok := regionalAllowances[domain.NormalizeRegion(e.Region)]; ok {
		return v
	}
	return decimal.Zero
}

func educationComponent(e *domain.Employee) decimal.Decimal {
	level, ok := educationSynonyms[strings.ToLower(strings.TrimSpace(e.Education))]
	if !ok {
		return decimal.Zero
	}
	return educationAllowances[level]
}

func seniorityComponent(e *domain.Employee, period domain.PayrollPeriod) decimal.Decimal {
	years := e.YearsOfService(period.EndDate())
	switch {
	case years >= 20:
		return seniorityAllowance20
	case years >= 10:
		return seniorityAllowance10
	}
	return decimal.Zero
}

func specialPositionComponent(e *domain.Employee) decimal.Decimal {
	if departmentMatches(e.Department, technicalKeywords) {
		return specialPositionAllowance
	}
	return decimal.Zero
}
