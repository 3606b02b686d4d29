package domain

import (
	"fmt"
	"strings"
)

// Synonym tables accept the English keys, common English spellings and the
// Chinese names used on payroll sheets.

var salaryItemSynonyms = map[string]SalaryItemType{
	"basic_salary": ItemBasicSalary, "basic": ItemBasicSalary, "base_salary": ItemBasicSalary, "salary": ItemBasicSalary,
	"基本工资": ItemBasicSalary, "基本薪资": ItemBasicSalary, "底薪": ItemBasicSalary,
	"overtime": ItemOvertime, "overtime_pay": ItemOvertime, "ot": ItemOvertime,
	"加班费": ItemOvertime, "加班工资": ItemOvertime, "加班": ItemOvertime,
	"allowance": ItemAllowance, "allowances": ItemAllowance, "津贴": ItemAllowance,
	"bonus": ItemBonus, "奖金": ItemBonus, "年终奖": ItemBonus,
	"commission": ItemCommission, "提成": ItemCommission, "佣金": ItemCommission,
	"performance": ItemPerformance, "performance_bonus": ItemPerformance, "绩效": ItemPerformance, "绩效工资": ItemPerformance,
	"subsidy": ItemSubsidy, "补贴": ItemSubsidy, "补助": ItemSubsidy,
	"attendance": ItemAttendance, "absence": ItemAttendance, "考勤": ItemAttendance, "考勤扣款": ItemAttendance, "缺勤扣款": ItemAttendance,
	"adjustment": ItemAdjustment, "调整": ItemAdjustment, "薪资调整": ItemAdjustment,
	"other": ItemOther, "其他": ItemOther,
	"social_insurance": ItemSocialInsurance, "insurance": ItemSocialInsurance, "社保": ItemSocialInsurance, "社会保险": ItemSocialInsurance,
	"income_tax": ItemIncomeTax, "tax": ItemIncomeTax, "iit": ItemIncomeTax, "个税": ItemIncomeTax, "个人所得税": ItemIncomeTax,
}

var insuranceSynonyms = map[string]InsuranceType{
	"pension": InsurancePension, "endowment": InsurancePension, "养老": InsurancePension, "养老保险": InsurancePension,
	"medical": InsuranceMedical, "health": InsuranceMedical, "医疗": InsuranceMedical, "医疗保险": InsuranceMedical, "医保": InsuranceMedical,
	"unemployment": InsuranceUnemployment, "失业": InsuranceUnemployment, "失业保险": InsuranceUnemployment,
	"work_injury": InsuranceWorkInjury, "injury": InsuranceWorkInjury, "occupational_injury": InsuranceWorkInjury, "工伤": InsuranceWorkInjury, "工伤保险": InsuranceWorkInjury,
	"maternity": InsuranceMaternity, "birth": InsuranceMaternity, "生育": InsuranceMaternity, "生育保险": InsuranceMaternity,
	"housing_fund": InsuranceHousingFund, "housing_provident_fund": InsuranceHousingFund, "provident_fund": InsuranceHousingFund,
	"公积金": InsuranceHousingFund, "住房公积金": InsuranceHousingFund,
}

var deductionSynonyms = map[string]DeductionType{
	"child_education": DeductionChildEducation, "children_education": DeductionChildEducation, "子女教育": DeductionChildEducation,
	"continuing_education": DeductionContinuingEducation, "继续教育": DeductionContinuingEducation,
	"housing_loan": DeductionHousingLoan, "housing_loan_interest": DeductionHousingLoan, "mortgage": DeductionHousingLoan,
	"住房贷款利息": DeductionHousingLoan, "房贷利息": DeductionHousingLoan, "房贷": DeductionHousingLoan,
	"housing_rent": DeductionHousingRent, "rent": DeductionHousingRent, "住房租金": DeductionHousingRent, "租房": DeductionHousingRent,
	"elderly_support": DeductionElderlySupport, "elderly_care": DeductionElderlySupport, "support_elderly": DeductionElderlySupport,
	"赡养老人":        DeductionElderlySupport,
	"infant_care": DeductionInfantCare, "childcare": DeductionInfantCare, "婴幼儿照护": DeductionInfantCare, "3岁以下婴幼儿照护": DeductionInfantCare,
}

var regionSynonyms = map[string]string{
	"beijing": "beijing", "bj": "beijing", "北京": "beijing", "北京市": "beijing",
	"shanghai": "shanghai", "sh": "shanghai", "上海": "shanghai", "上海市": "shanghai",
	"shenzhen": "shenzhen", "sz": "shenzhen", "深圳": "shenzhen", "深圳市": "shenzhen",
	"guangzhou": "guangzhou", "gz": "guangzhou", "广州": "guangzhou", "广州市": "guangzhou",
	"default": "default", "": "default", "默认": "default",
}

func normalizeKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "-", "_")
	return strings.ReplaceAll(s, " ", "_")
}

// ParseSalaryItemType maps a key or synonym to an item type.
func ParseSalaryItemType(s string) (SalaryItemType, error) {
	if t, ok := salaryItemSynonyms[normalizeKey(s)]; ok {
		return t, nil
	}
	return "", fmt.Errorf("unknown salary item type: %q", s)
}

// ParseInsuranceType maps a key or synonym to an insurance type.
func ParseInsuranceType(s string) (InsuranceType, error) {
	if t, ok := insuranceSynonyms[normalizeKey(s)]; ok {
		return t, nil
	}
	return "", fmt.Errorf("unknown insurance type: %q", s)
}

// ParseDeductionType maps a key or synonym to a deduction category.
func ParseDeductionType(s string) (DeductionType, error) {
	if t, ok := deductionSynonyms[normalizeKey(s)]; ok {
		return t, nil
	}
	return "", fmt.Errorf("unknown deduction type: %q", s)
}

// NormalizeRegion maps known aliases to the canonical region key. Unknown names
// are lower-cased and returned unchanged so the caller can reject them.
func NormalizeRegion(s string) string {
	key := normalizeKey(s)
	if r, ok := regionSynonyms[key]; ok {
		return r
	}
	return key
}
