package domain

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SalaryItemType classifies a payslip line.
type SalaryItemType string

const (
	ItemBasicSalary     SalaryItemType = "basic_salary"
	ItemOvertime        SalaryItemType = "overtime"
	ItemAllowance       SalaryItemType = "allowance"
	ItemBonus           SalaryItemType = "bonus"
	ItemCommission      SalaryItemType = "commission"
	ItemPerformance     SalaryItemType = "performance"
	ItemSubsidy         SalaryItemType = "subsidy"
	ItemAttendance      SalaryItemType = "attendance"
	ItemAdjustment      SalaryItemType = "adjustment"
	ItemOther           SalaryItemType = "other"
	ItemSocialInsurance SalaryItemType = "social_insurance"
	ItemIncomeTax       SalaryItemType = "income_tax"
)

type salaryItemTypeInfo struct {
	label     string
	deduction bool
}

var salaryItemTypes = map[SalaryItemType]salaryItemTypeInfo{
	ItemBasicSalary:     {label: "基本工资"},
	ItemOvertime:        {label: "加班费"},
	ItemAllowance:       {label: "津贴"},
	ItemBonus:           {label: "奖金"},
	ItemCommission:      {label: "提成"},
	ItemPerformance:     {label: "绩效工资"},
	ItemSubsidy:         {label: "补贴"},
	ItemAttendance:      {label: "考勤扣款"},
	ItemAdjustment:      {label: "薪资调整"},
	ItemOther:           {label: "其他"},
	ItemSocialInsurance: {label: "社会保险", deduction: true},
	ItemIncomeTax:       {label: "个人所得税", deduction: true},
}

// AllSalaryItemTypes lists every item type in display order.
func AllSalaryItemTypes() []SalaryItemType {
	return []SalaryItemType{
		ItemBasicSalary, ItemOvertime, ItemAllowance, ItemBonus, ItemCommission, ItemPerformance,
		ItemSubsidy, ItemAttendance, ItemAdjustment, ItemOther, ItemSocialInsurance, ItemIncomeTax,
	}
}

// Valid reports whether t is a known item type.
func (t SalaryItemType) Valid() bool {
	_, ok := salaryItemTypes[t]
	return ok
}

// Label returns the Chinese display label.
func (t SalaryItemType) Label() string {
	if info, ok := salaryItemTypes[t]; ok {
		return info.label
	}
	return string(t)
}

// IsDeduction is true for withheld amounts: social insurance and income tax.
func (t SalaryItemType) IsDeduction() bool {
	return salaryItemTypes[t].deduction
}

// Metadata carries typed numeric details about a line, such as rule inputs or an
// allowance breakdown.
type Metadata map[string]decimal.Decimal

// Get returns the value for key and whether it was present.
func (m Metadata) Get(key string) (decimal.Decimal, bool) {
	v, ok := m[key]
	return v, ok
}

// Clone returns an independent copy.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// SalaryItem is one line of a salary calculation. Negative amounts reduce pay.
type SalaryItem struct {
	Type        SalaryItemType  `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Metadata    Metadata        `json:"metadata,omitempty"`
}

// NewSalaryItem builds an item; the description defaults to the type label.
func NewSalaryItem(t SalaryItemType, amount decimal.Decimal, description string) SalaryItem {
	if description == "" {
		description = t.Label()
	}
	return SalaryItem{Type: t, Amount: amount, Description: description}
}

// IsDeduction is decided by the item type alone.
func (i SalaryItem) IsDeduction() bool {
	return i.Type.IsDeduction()
}

// calculationNamespace scopes the deterministic calculation IDs.
var calculationNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("cnpay.salary-calculation"))

// SalaryCalculation collects the items computed for one employee and period.
// It is owned by a single pipeline run and is not safe for concurrent mutation.
type SalaryCalculation struct {
	ID       uuid.UUID
	Employee Employee
	Period   PayrollPeriod
	items    []SalaryItem
}

// NewSalaryCalculation creates an empty calculation whose ID is derived from the
// employee number and period, so repeated runs produce the same ID.
func NewSalaryCalculation(employee Employee, period PayrollPeriod) *SalaryCalculation {
	name := fmt.Sprintf("%s/%s", employee.EmployeeNumber, period.Key())
	return &SalaryCalculation{
		ID:       uuid.NewSHA1(calculationNamespace, []byte(name)),
		Employee: employee,
		Period:   period,
	}
}

// AddItem appends an item.
func (sc *SalaryCalculation) AddItem(item SalaryItem) {
	item.Metadata = item.Metadata.Clone()
	sc.items = append(sc.items, item)
}

// Items returns a copy of the items in insertion order.
func (sc *SalaryCalculation) Items() []SalaryItem {
	out := make([]SalaryItem, len(sc.items))
	copy(out, sc.items)
	return out
}

// ItemsOfType returns the items with the given type.
func (sc *SalaryCalculation) ItemsOfType(t SalaryItemType) []SalaryItem {
	var out []SalaryItem
	for _, item := range sc.items {
		if item.Type == t {
			out = append(out, item)
		}
	}
	return out
}

// AmountOf sums the amounts of items with the given type.
func (sc *SalaryCalculation) AmountOf(t SalaryItemType) decimal.Decimal {
	total := decimal.Zero
	for _, item := range sc.items {
		if item.Type == t {
			total = total.Add(item.Amount)
		}
	}
	return total
}

// GrossAmount sums all non-deduction items.
func (sc *SalaryCalculation) GrossAmount() decimal.Decimal {
	total := decimal.Zero
	for _, item := range sc.items {
		if !item.IsDeduction() {
			total = total.Add(item.Amount)
		}
	}
	return total
}

// DeductionsAmount sums the absolute values of deduction items.
func (sc *SalaryCalculation) DeductionsAmount() decimal.Decimal {
	total := decimal.Zero
	for _, item := range sc.items {
		if item.IsDeduction() {
			total = total.Add(item.Amount.Abs())
		}
	}
	return total
}

// NetAmount is gross minus deductions.
func (sc *SalaryCalculation) NetAmount() decimal.Decimal {
	return sc.GrossAmount().Sub(sc.DeductionsAmount())
}
