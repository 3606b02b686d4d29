package calculation

import (
	"testing"

	"github.com/rgehrsitz/cnpay/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jan2025 = domain.MustPayrollPeriod(2025, 1)

func pensionBase(salary string) domain.ContributionBase {
	return domain.ContributionBase{
		InsuranceType: domain.InsurancePension,
		SalaryBase:    d(salary),
		LowerLimit:    d("4800"),
		UpperLimit:    d("35000"),
		Region:        "beijing",
		Year:          2025,
	}
}

func TestStaticRegionalConfig(t *testing.T) {
	cfg := NewStaticRegionalConfig()

	assert.Equal(t, []string{"beijing", "default", "guangzhou", "shanghai", "shenzhen"}, cfg.SupportedRegions())
	assert.True(t, cfg.IsRegionSupported("beijing"))
	assert.True(t, cfg.IsRegionSupported("北京"))
	assert.True(t, cfg.IsRegionSupported(""))
	assert.False(t, cfg.IsRegionSupported("chengdu"))

	rates, err := cfg.InsuranceRates("Beijing", domain.InsurancePension)
	require.NoError(t, err)
	assert.True(t, rates.Employer.Equal(d("0.19")))
	assert.True(t, rates.Employee.Equal(d("0.08")))

	limits, err := cfg.ContributionLimits("beijing", domain.InsurancePension, 2025)
	require.NoError(t, err)
	assert.True(t, limits.Lower.Equal(d("4800")))
	assert.True(t, limits.Upper.Equal(d("35000")))

	_, err = cfg.ContributionLimits("beijing", domain.InsurancePension, 2030)
	var insErr *domain.InsuranceCalculationError
	require.ErrorAs(t, err, &insErr)
	assert.Equal(t, domain.KindConfiguration, insErr.Kind)

	_, err = cfg.InsuranceRates("chengdu", domain.InsurancePension)
	require.ErrorAs(t, err, &insErr)
	assert.Contains(t, insErr.Error(), "不支持的地区")
}

func TestBuiltinRegionTable_Valid(t *testing.T) {
	table := BuiltinRegionTable()
	require.NoError(t, table.Validate())
	for _, region := range table.Regions() {
		for _, it := range domain.AllInsuranceTypes() {
			rates, ok := table[region].Rates[it]
			require.True(t, ok, "%s %s", region, it)
			if it.StatutoryEmployeeExempt() {
				assert.True(t, rates.Employee.IsZero(), "%s %s", region, it)
			}
			for _, year := range []int{2024, 2025} {
				_, ok := table[region].Limits[year][it]
				assert.True(t, ok, "%s %s %d", region, it, year)
			}
		}
	}
}

func TestNewRegionalConfigFromTable(t *testing.T) {
	table := domain.RegionTable{
		"成都": {
			Rates: map[domain.InsuranceType]domain.InsuranceRates{
				domain.InsurancePension: {Employer: d("0.16"), Employee: d("0.08")},
			},
			Limits: map[int]map[domain.InsuranceType]domain.ContributionLimits{
				2025: {domain.InsurancePension: {Lower: d("4000"), Upper: d("20000")}},
			},
		},
	}
	cfg, err := NewRegionalConfigFromTable(table)
	require.NoError(t, err)
	assert.True(t, cfg.IsRegionSupported("成都"))
	assert.False(t, cfg.IsRegionSupported("beijing"))

	uncapped := domain.RegionTable{"成都": table["成都"]}
	uncapped["成都"].Limits[2025][domain.InsurancePension] = domain.ContributionLimits{Lower: d("4000")}
	cfg, err = NewRegionalConfigFromTable(uncapped)
	require.NoError(t, err)
	base := domain.ContributionBase{InsuranceType: domain.InsurancePension, SalaryBase: d("50000"), Year: 2025}
	res, err := NewSocialInsuranceCalculatorWithProvider(cfg).CalculateInsurance(nil, jan2025, domain.InsurancePension, base, "成都")
	require.NoError(t, err)
	assert.True(t, res.ContributionBase.Equal(d("50000")), "base %s", res.ContributionBase)

	table["成都"].Rates[domain.InsuranceMaternity] = domain.InsuranceRates{Employer: d("0.01"), Employee: d("0.01")}
	_, err = NewRegionalConfigFromTable(table)
	assert.ErrorContains(t, err, "employee rate must be zero")
}

func TestSocialInsuranceCalculator_BeijingPension(t *testing.T) {
	sc := NewSocialInsuranceCalculator()
	employee := testEmployee(12000)

	tests := []struct {
		name      string
		salary    string
		effective string
		employer  string
		employee  string
	}{
		{"within limits", "12000", "12000", "2280", "960"},
		{"capped", "50000", "35000", "6650", "2800"},
		{"floored", "3000", "4800", "912", "384"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := sc.CalculateInsurance(&employee, jan2025, domain.InsurancePension, pensionBase(tt.salary), "beijing")
			require.NoError(t, err)
			assert.True(t, res.ContributionBase.Equal(d(tt.effective)), "base: got %s", res.ContributionBase)
			assert.True(t, res.EmployerAmount.Equal(d(tt.employer)), "employer: got %s", res.EmployerAmount)
			assert.True(t, res.EmployeeAmount.Equal(d(tt.employee)), "employee: got %s", res.EmployeeAmount)
			assert.True(t, res.TotalAmount().Equal(res.EmployerAmount.Add(res.EmployeeAmount)))
			assert.Equal(t, "beijing", res.Region)
			assert.Equal(t, "E001", res.EmployeeNumber)
		})
	}
}

func TestSocialInsuranceCalculator_DefaultRegionUsesEmbeddedLimits(t *testing.T) {
	sc := NewSocialInsuranceCalculator()
	base := domain.ContributionBase{
		InsuranceType: domain.InsurancePension,
		SalaryBase:    d("50000"),
		LowerLimit:    d("1000"),
		UpperLimit:    d("20000"),
		Year:          2025,
	}
	res, err := sc.CalculateInsurance(nil, jan2025, domain.InsurancePension, base, "")
	require.NoError(t, err)
	assert.True(t, res.ContributionBase.Equal(d("20000")))
	assert.True(t, res.EmployerAmount.Equal(d("3200")))
	assert.Equal(t, DefaultRegion, res.Region)

	// named regions ignore embedded limits
	res, err = sc.CalculateInsurance(nil, jan2025, domain.InsurancePension, base, "beijing")
	require.NoError(t, err)
	assert.True(t, res.ContributionBase.Equal(d("35000")))

	// no embedded limits falls back to the default table
	base.LowerLimit, base.UpperLimit = decimal.Zero, decimal.Zero
	res, err = sc.CalculateInsurance(nil, jan2025, domain.InsurancePension, base, "default")
	require.NoError(t, err)
	assert.True(t, res.ContributionBase.Equal(d("30000")))
}

func TestSocialInsuranceCalculator_ExemptTypesHaveZeroEmployeeAmount(t *testing.T) {
	sc := NewSocialInsuranceCalculator()
	for _, region := range []string{"beijing", "shanghai", "shenzhen", "guangzhou", "default"} {
		for _, it := range []domain.InsuranceType{domain.InsuranceWorkInjury, domain.InsuranceMaternity} {
			base := domain.ContributionBase{InsuranceType: it, SalaryBase: d("20000"), Year: 2025}
			res, err := sc.CalculateInsurance(nil, jan2025, it, base, region)
			require.NoError(t, err)
			assert.True(t, res.EmployeeAmount.IsZero(), "%s %s", region, it)
			assert.True(t, res.EmployeeRate.IsZero())
			assert.True(t, res.EmployerAmount.IsPositive())
		}
	}
}

// employeeRateProvider wraps the built-in table but reports a nonzero
// employee rate for every type.
type employeeRateProvider struct {
	*StaticRegionalConfig
}

func (p employeeRateProvider) InsuranceRates(region string, t domain.InsuranceType) (domain.InsuranceRates, error) {
	return domain.InsuranceRates{Employer: d("0.01"), Employee: d("0.05")}, nil
}

func TestSocialInsuranceCalculator_ExemptEvenWithProviderRate(t *testing.T) {
	sc := NewSocialInsuranceCalculatorWithProvider(employeeRateProvider{NewStaticRegionalConfig()})
	base := domain.ContributionBase{InsuranceType: domain.InsuranceMaternity, SalaryBase: d("10000"), Year: 2025}
	res, err := sc.CalculateInsurance(nil, jan2025, domain.InsuranceMaternity, base, "beijing")
	require.NoError(t, err)
	assert.True(t, res.EmployeeAmount.IsZero())
}

func TestSocialInsuranceCalculator_Errors(t *testing.T) {
	sc := NewSocialInsuranceCalculator()

	tests := []struct {
		name   string
		t      domain.InsuranceType
		base   domain.ContributionBase
		region string
		field  string
	}{
		{"unsupported region", domain.InsurancePension, pensionBase("12000"), "chengdu", "region"},
		{"type mismatch", domain.InsuranceMedical, pensionBase("12000"), "beijing", "insurance_type"},
		{"unknown type", domain.InsuranceType("dental"), pensionBase("12000"), "beijing", "insurance_type"},
		{"year mismatch", domain.InsurancePension, func() domain.ContributionBase {
			b := pensionBase("12000")
			b.Year = 2024
			return b
		}(), "beijing", "year"},
		{"negative base", domain.InsurancePension, pensionBase("-1"), "beijing", "salary_base"},
		{"inverted embedded limits", domain.InsurancePension, domain.ContributionBase{
			InsuranceType: domain.InsurancePension, SalaryBase: d("1"), LowerLimit: d("500"), UpperLimit: d("100"), Year: 2025,
		}, "default", "limits"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := sc.CalculateInsurance(nil, jan2025, tt.t, tt.base, tt.region)
			assert.Nil(t, res)
			var insErr *domain.InsuranceCalculationError
			require.ErrorAs(t, err, &insErr)
			assert.Equal(t, tt.field, insErr.Field)
			assert.NotEmpty(t, insErr.RecoveryHint())
		})
	}
}

func TestSocialInsuranceCalculator_CalculateAll(t *testing.T) {
	sc := NewSocialInsuranceCalculator()
	employee := testEmployee(12000)

	bases, err := sc.StandardBases(d("12000"), "beijing", 2025)
	require.NoError(t, err)
	require.Len(t, bases, 6)

	results, err := sc.CalculateAllInsurance(&employee, jan2025, bases, "beijing")
	require.NoError(t, err)
	require.Len(t, results, 6)
	for _, it := range domain.AllInsuranceTypes() {
		assert.Contains(t, results, string(it))
	}
	// 960 + 240 + 60 + 0 + 0 + 1440
	assert.True(t, sc.CalculateTotalTaxDeduction(results).Equal(d("2700")), "got %s", sc.CalculateTotalTaxDeduction(results))

	partial, err := sc.CalculateAllInsurance(&employee, jan2025, bases[:2], "beijing")
	require.NoError(t, err)
	assert.Len(t, partial, 2)

	_, err = sc.CalculateAllInsurance(&employee, jan2025, append(bases, bases[0]), "beijing")
	var insErr *domain.InsuranceCalculationError
	require.ErrorAs(t, err, &insErr)
	assert.Contains(t, insErr.Error(), "重复")
}

func TestSocialInsuranceCalculator_CalculateRequested(t *testing.T) {
	sc := NewSocialInsuranceCalculator()
	bases := []domain.ContributionBase{pensionBase("12000")}

	results, err := sc.CalculateRequested(nil, jan2025, []domain.InsuranceType{domain.InsurancePension}, bases, "beijing")
	require.NoError(t, err)
	assert.Len(t, results, 1)

	_, err = sc.CalculateRequested(nil, jan2025,
		[]domain.InsuranceType{domain.InsurancePension, domain.InsuranceMedical}, bases, "beijing")
	var insErr *domain.InsuranceCalculationError
	require.ErrorAs(t, err, &insErr)
	assert.Equal(t, domain.KindConfiguration, insErr.Kind)
	assert.Contains(t, insErr.Error(), "缺少")
}

func TestSocialInsuranceCalculator_ValidateContributionBase(t *testing.T) {
	sc := NewSocialInsuranceCalculator()
	assert.True(t, sc.ValidateContributionBase(pensionBase("0"), "beijing"))
	assert.True(t, sc.ValidateContributionBase(pensionBase("100"), "上海"))
	assert.False(t, sc.ValidateContributionBase(pensionBase("-0.01"), "beijing"))
	assert.False(t, sc.ValidateContributionBase(pensionBase("100"), "chengdu"))
}

func TestSocialInsuranceCalculator_StandardBasesUnsupported(t *testing.T) {
	sc := NewSocialInsuranceCalculator()
	_, err := sc.StandardBases(d("10000"), "chengdu", 2025)
	assert.Error(t, err)
	_, err = sc.StandardBases(d("10000"), "beijing", 2019)
	assert.Error(t, err)
}
