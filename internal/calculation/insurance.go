package calculation

import (
	"github.com/rgehrsitz/cnpay/internal/domain"
	"github.com/shopspring/decimal"
)

// SocialInsuranceCalculator computes 五险一金 contributions. Rates always come
// from the regional table so callers cannot supply their own.
type SocialInsuranceCalculator struct {
	regions RegionalConfigProvider
	logger  Logger
}

// NewSocialInsuranceCalculator creates a calculator over the built-in region table.
func NewSocialInsuranceCalculator() *SocialInsuranceCalculator {
	return &SocialInsuranceCalculator{regions: NewStaticRegionalConfig(), logger: nopLogger{}}
}

// NewSocialInsuranceCalculatorWithProvider creates a calculator over a custom provider.
func NewSocialInsuranceCalculatorWithProvider(provider RegionalConfigProvider) *SocialInsuranceCalculator {
	return &SocialInsuranceCalculator{regions: provider, logger: nopLogger{}}
}

// SetLogger sets the debug logger; nil restores the no-op logger.
func (sc *SocialInsuranceCalculator) SetLogger(l Logger) {
	sc.logger = loggerOrNop(l)
}

// Regions exposes the provider backing this calculator.
func (sc *SocialInsuranceCalculator) Regions() RegionalConfigProvider {
	return sc.regions
}

// CalculateInsurance computes one insurance type. An empty region means the
// default table, which honors limits embedded in the base.
func (sc *SocialInsuranceCalculator) CalculateInsurance(employee *domain.Employee, period domain.PayrollPeriod,
	t domain.InsuranceType, base domain.ContributionBase, region string) (*domain.SocialInsuranceResult, error) {
	key := domain.NormalizeRegion(region)
	if !sc.regions.IsRegionSupported(key) {
		return nil, unsupportedRegion(region)
	}
	if !t.Valid() {
		return nil, domain.NewInsuranceValidationError("insurance_type", t, "未知的险种: %s", t)
	}
	if base.InsuranceType != t {
		return nil, domain.NewInsuranceValidationError("insurance_type", base.InsuranceType,
			"缴费基数险种不匹配: 期望%s, 实际%s", t, base.InsuranceType)
	}
	if base.Year != period.Year {
		return nil, domain.NewInsuranceValidationError("year", base.Year,
			"缴费基数年度(%d)与计算期间年度(%d)不一致", base.Year, period.Year)
	}
	if base.SalaryBase.IsNegative() {
		return nil, domain.NewInsuranceValidationError("salary_base", base.SalaryBase,
			"缴费基数不能为负数: %s", base.SalaryBase.StringFixed(2))
	}

	lower, upper := base.LowerLimit, base.UpperLimit
	if key != DefaultRegion || !base.HasLimits() {
		limits, err := sc.regions.ContributionLimits(key, t, period.Year)
		if err != nil {
			return nil, err
		}
		lower, upper = limits.Lower, limits.Upper
	}
	if lower.IsNegative() || (!upper.IsZero() && upper.LessThan(lower)) {
		return nil, domain.NewInsuranceValidationError("limits", lower,
			"缴费基数上下限无效: [%s, %s]", lower.StringFixed(2), upper.StringFixed(2))
	}

	rates, err := sc.regions.InsuranceRates(key, t)
	if err != nil {
		return nil, err
	}
	employeeRate := rates.Employee
	if t.StatutoryEmployeeExempt() {
		employeeRate = decimal.Zero
	}

	effective := domain.ClampBase(base.SalaryBase, lower, upper)
	employerAmount := effective.Mul(rates.Employer).Round(2)
	employeeAmount := effective.Mul(employeeRate).Round(2)

	employeeNumber := ""
	if employee != nil {
		employeeNumber = employee.EmployeeNumber
	}
	sc.logger.Debugf("insurance %s %s %s region=%s base=%s effective=%s employer=%s employee=%s",
		employeeNumber, period.Key(), t, key, base.SalaryBase.StringFixed(2), effective.StringFixed(2),
		employerAmount.StringFixed(2), employeeAmount.StringFixed(2))

	return &domain.SocialInsuranceResult{
		EmployeeNumber:   employeeNumber,
		Period:           period,
		InsuranceType:    t,
		ContributionBase: effective,
		EmployerAmount:   employerAmount,
		EmployeeAmount:   employeeAmount,
		EmployerRate:     rates.Employer,
		EmployeeRate:     employeeRate,
		Region:           key,
	}, nil
}

// CalculateAllInsurance computes every type present in bases, keyed by the
// type's string value. Partial sets are allowed; duplicates are rejected.
func (sc *SocialInsuranceCalculator) CalculateAllInsurance(employee *domain.Employee, period domain.PayrollPeriod,
	bases []domain.ContributionBase, region string) (map[string]*domain.SocialInsuranceResult, error) {
	results := make(map[string]*domain.SocialInsuranceResult, len(bases))
	for _, base := range bases {
		if _, dup := results[string(base.InsuranceType)]; dup {
			return nil, domain.NewInsuranceValidationError("insurance_type", base.InsuranceType,
				"重复的缴费基数: %s", base.InsuranceType.Label())
		}
		res, err := sc.CalculateInsurance(employee, period, base.InsuranceType, base, region)
		if err != nil {
			return nil, err
		}
		results[string(base.InsuranceType)] = res
	}
	return results, nil
}

// CalculateRequested computes exactly the requested types; each must have a base.
func (sc *SocialInsuranceCalculator) CalculateRequested(employee *domain.Employee, period domain.PayrollPeriod,
	types []domain.InsuranceType, bases []domain.ContributionBase, region string) (map[string]*domain.SocialInsuranceResult, error) {
	byType := make(map[domain.InsuranceType]domain.ContributionBase, len(bases))
	for _, b := range bases {
		if _, dup := byType[b.InsuranceType]; dup {
			return nil, domain.NewInsuranceValidationError("insurance_type", b.InsuranceType,
				"重复的缴费基数: %s", b.InsuranceType.Label())
		}
		byType[b.InsuranceType] = b
	}
	selected := make([]domain.ContributionBase, 0, len(types))
	for _, t := range types {
		b, ok := byType[t]
		if !ok {
			return nil, domain.NewInsuranceConfigurationError("insurance_type", t,
				"缺少险种[%s]的缴费基数", t.Label())
		}
		selected = append(selected, b)
	}
	return sc.CalculateAllInsurance(employee, period, selected, region)
}

// ValidateContributionBase is true iff the raw base is non-negative and the
// region is supported.
func (sc *SocialInsuranceCalculator) ValidateContributionBase(base domain.ContributionBase, region string) bool {
	return !base.SalaryBase.IsNegative() && sc.regions.IsRegionSupported(region)
}

// CalculateTotalTaxDeduction sums the employee contributions, which are
// deductible from taxable income.
func (sc *SocialInsuranceCalculator) CalculateTotalTaxDeduction(results map[string]*domain.SocialInsuranceResult) decimal.Decimal {
	total := decimal.Zero
	for _, r := range results {
		if r != nil {
			total = total.Add(r.EmployeeAmount)
		}
	}
	return total
}

// StandardBases builds all six bases from one salary with the region's limits
// for year embedded.
func (sc *SocialInsuranceCalculator) StandardBases(salary decimal.Decimal, region string, year int) ([]domain.ContributionBase, error) {
	key := domain.NormalizeRegion(region)
	if !sc.regions.IsRegionSupported(key) {
		return nil, unsupportedRegion(region)
	}
	bases := make([]domain.ContributionBase, 0, 6)
	for _, t := range domain.AllInsuranceTypes() {
		limits, err := sc.regions.ContributionLimits(key, t, year)
		if err != nil {
			return nil, err
		}
		bases = append(bases, domain.ContributionBase{
			InsuranceType: t,
			SalaryBase:    salary,
			LowerLimit:    limits.Lower,
			UpperLimit:    limits.Upper,
			Region:        key,
			Year:          year,
		})
	}
	return bases, nil
}
