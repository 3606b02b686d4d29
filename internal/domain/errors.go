package domain

import (
	"fmt"
	"strings"
)

// ErrorKind separates caller mistakes from missing or inconsistent configuration.
// Neither kind is transient; retrying with the same input fails the same way.
type ErrorKind string

const (
	KindValidation    ErrorKind = "validation"
	KindConfiguration ErrorKind = "configuration"
)

// hintRule maps a message fragment to user-facing guidance.
type hintRule struct {
	fragment string
	hint     string
}

const defaultHint = "请检查输入数据后重试"

func lookupHint(rules []hintRule, message string) string {
	for _, r := range rules {
		if strings.Contains(message, r.fragment) {
			return r.hint
		}
	}
	return defaultHint
}

// CalculationError is the shared shape of engine errors.
type CalculationError struct {
	Kind    ErrorKind
	Field   string
	Value   string
	Message string
}

func (e *CalculationError) Error() string {
	return e.Message
}

// ErrorKind returns the error classification.
func (e *CalculationError) ErrorKind() ErrorKind {
	return e.Kind
}

func newCalculationError(kind ErrorKind, field string, value any, format string, args ...any) CalculationError {
	return CalculationError{
		Kind:    kind,
		Field:   field,
		Value:   fmt.Sprint(value),
		Message: fmt.Sprintf(format, args...),
	}
}

// taxHints map tax error messages to recovery hints.
var taxHints = []hintRule{
	{"超过法定上限", "请检查专项附加扣除金额，确保不超过法定上限（月度上限 × 当前期数）"},
	{"扣除类型", "请使用受支持的专项附加扣除类型：子女教育、继续教育、住房贷款利息、住房租金、赡养老人、3岁以下婴幼儿照护"},
	{"累计收入", "请确认累计收入已包含本期收入，且不小于本期收入"},
	{"期数", "当前期数应为本纳税年度内的发薪月份序号（1-12）"},
	{"纳税年度", "请确认纳税年度在税率表支持范围内（2019年及以后）"},
	{"税率档次", "请检查税率表配置，确保各档次连续且最后一档无上限"},
	{"不能为负数", "请检查输入金额，确保为非负数"},
}

// TaxCalculationError reports an income tax calculation failure.
type TaxCalculationError struct {
	CalculationError
}

// NewTaxValidationError creates a validation error for the tax calculator.
func NewTaxValidationError(field string, value any, format string, args ...any) *TaxCalculationError {
	return &TaxCalculationError{newCalculationError(KindValidation, field, value, format, args...)}
}

// NewTaxConfigurationError creates a configuration error for the tax calculator.
func NewTaxConfigurationError(field string, value any, format string, args ...any) *TaxCalculationError {
	return &TaxCalculationError{newCalculationError(KindConfiguration, field, value, format, args...)}
}

// RecoveryHint suggests how to fix the input.
func (e *TaxCalculationError) RecoveryHint() string {
	return lookupHint(taxHints, e.Message)
}

// insuranceHints map social insurance error messages to recovery hints.
var insuranceHints = []hintRule{
	{"不支持的地区", "请检查地区名称，或使用 default 地区配置"},
	{"缺少", "请为需要计算的每个险种提供缴费基数，并确认地区费率表完整"},
	{"年度", "请确认缴费基数所属年度与薪资期间年度一致"},
	{"险种不匹配", "请确认缴费基数的险种与计算请求的险种一致"},
	{"重复", "每个险种只能提供一条缴费基数"},
	{"上下限", "请检查缴费基数上下限配置，确保下限不大于上限"},
	{"不能为负数", "请检查缴费基数，确保为非负数"},
	{"险种", "请使用受支持的险种：养老、医疗、失业、工伤、生育、住房公积金"},
}

// InsuranceCalculationError reports a social insurance calculation failure.
type InsuranceCalculationError struct {
	CalculationError
}

// NewInsuranceValidationError creates a validation error for the insurance calculator.
func NewInsuranceValidationError(field string, value any, format string, args ...any) *InsuranceCalculationError {
	return &InsuranceCalculationError{newCalculationError(KindValidation, field, value, format, args...)}
}

// NewInsuranceConfigurationError creates a configuration error for the insurance calculator.
func NewInsuranceConfigurationError(field string, value any, format string, args ...any) *InsuranceCalculationError {
	return &InsuranceCalculationError{newCalculationError(KindConfiguration, field, value, format, args...)}
}

// RecoveryHint suggests how to fix the input.
func (e *InsuranceCalculationError) RecoveryHint() string {
	return lookupHint(insuranceHints, e.Message)
}

// salaryHints map salary calculation error messages to recovery hints.
var salaryHints = []hintRule{
	{"员工编号", "请提供员工编号"},
	{"基本工资", "请检查员工基本工资，确保为非负数"},
	{"规则", "请检查薪资规则配置"},
}

// SalaryCalculationError reports a salary pipeline failure.
type SalaryCalculationError struct {
	CalculationError
}

// NewSalaryValidationError creates a validation error for the salary pipeline.
func NewSalaryValidationError(field string, value any, format string, args ...any) *SalaryCalculationError {
	return &SalaryCalculationError{newCalculationError(KindValidation, field, value, format, args...)}
}

// NewSalaryConfigurationError creates a configuration error for the salary pipeline.
func NewSalaryConfigurationError(field string, value any, format string, args ...any) *SalaryCalculationError {
	return &SalaryCalculationError{newCalculationError(KindConfiguration, field, value, format, args...)}
}

// RecoveryHint suggests how to fix the input.
func (e *SalaryCalculationError) RecoveryHint() string {
	return lookupHint(salaryHints, e.Message)
}

// RecoveryHinter is implemented by every engine error.
type RecoveryHinter interface {
	error
	RecoveryHint() string
}
