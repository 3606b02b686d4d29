package calculation

import (
	"fmt"

	"github.com/rgehrsitz/cnpay/internal/domain"
	"github.com/shopspring/decimal"
)

// DefaultRegion is the fallback table used when no city is specified.
const DefaultRegion = "default"

// RegionalConfigProvider supplies contribution rates and base limits per region.
type RegionalConfigProvider interface {
	InsuranceRates(region string, t domain.InsuranceType) (domain.InsuranceRates, error)
	ContributionLimits(region string, t domain.InsuranceType, year int) (domain.ContributionLimits, error)
	IsRegionSupported(region string) bool
	SupportedRegions() []string
}

// StaticRegionalConfig serves a read-only region table.
type StaticRegionalConfig struct {
	table domain.RegionTable
}

// NewStaticRegionalConfig serves the compiled-in table.
func NewStaticRegionalConfig() *StaticRegionalConfig {
	return &StaticRegionalConfig{table: BuiltinRegionTable()}
}

// NewRegionalConfigFromTable validates and serves a custom table.
func NewRegionalConfigFromTable(table domain.RegionTable) (*StaticRegionalConfig, error) {
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("invalid region table: %w", err)
	}
	normalized := make(domain.RegionTable, len(table))
	for region, cfg := range table {
		normalized[domain.NormalizeRegion(region)] = cfg
	}
	return &StaticRegionalConfig{table: normalized}, nil
}

// IsRegionSupported reports whether region (or one of its aliases) is configured.
func (c *StaticRegionalConfig) IsRegionSupported(region string) bool {
	_, ok := c.table[domain.NormalizeRegion(region)]
	return ok
}

// SupportedRegions lists the configured region keys, sorted.
func (c *StaticRegionalConfig) SupportedRegions() []string {
	return c.table.Regions()
}

// InsuranceRates returns the employer/employee rates for a type in a region.
func (c *StaticRegionalConfig) InsuranceRates(region string, t domain.InsuranceType) (domain.InsuranceRates, error) {
	key := domain.NormalizeRegion(region)
	cfg, ok := c.table[key]
	if !ok {
		return domain.InsuranceRates{}, unsupportedRegion(region)
	}
	rates, ok := cfg.Rates[t]
	if !ok {
		return domain.InsuranceRates{}, domain.NewInsuranceConfigurationError("insurance_type", t,
			"缺少地区[%s]险种[%s]的费率配置", key, t.Label())
	}
	return rates, nil
}

// ContributionLimits returns the base floor and cap for a type, region and year.
func (c *StaticRegionalConfig) ContributionLimits(region string, t domain.InsuranceType, year int) (domain.ContributionLimits, error) {
	key := domain.NormalizeRegion(region)
	cfg, ok := c.table[key]
	if !ok {
		return domain.ContributionLimits{}, unsupportedRegion(region)
	}
	limits, ok := cfg.Limits[year][t]
	if !ok {
		return domain.ContributionLimits{}, domain.NewInsuranceConfigurationError("year", year,
			"缺少地区[%s]险种[%s]%d年度的缴费基数上下限配置", key, t.Label(), year)
	}
	return limits, nil
}

func unsupportedRegion(region string) error {
	return domain.NewInsuranceConfigurationError("region", region, "不支持的地区: %s", region)
}

func rates(employer, employee string) domain.InsuranceRates {
	return domain.InsuranceRates{
		Employer: decimal.RequireFromString(employer),
		Employee: decimal.RequireFromString(employee),
	}
}

// yearLimits applies one floor/cap to the five social insurances and a
// separate one to the housing fund.
func yearLimits(socialLower, socialUpper, fundLower, fundUpper int64) map[domain.InsuranceType]domain.ContributionLimits {
	social := domain.ContributionLimits{Lower: decimal.NewFromInt(socialLower), Upper: decimal.NewFromInt(socialUpper)}
	out := make(map[domain.InsuranceType]domain.ContributionLimits, 6)
	for _, t := range domain.AllInsuranceTypes() {
		out[t] = social
	}
	out[domain.InsuranceHousingFund] = domain.ContributionLimits{Lower: decimal.NewFromInt(fundLower), Upper: decimal.NewFromInt(fundUpper)}
	return out
}

// BuiltinRegionTable returns a fresh copy of the compiled-in table.
func BuiltinRegionTable() domain.RegionTable {
	return domain.RegionTable{
		"beijing": {
			Rates: map[domain.InsuranceType]domain.InsuranceRates{
				domain.InsurancePension:      rates("0.19", "0.08"),
				domain.InsuranceMedical:      rates("0.098", "0.02"),
				domain.InsuranceUnemployment: rates("0.005", "0.005"),
				domain.InsuranceWorkInjury:   rates("0.004", "0"),
				domain.InsuranceMaternity:    rates("0.008", "0"),
				domain.InsuranceHousingFund:  rates("0.12", "0.12"),
			},
			Limits: map[int]map[domain.InsuranceType]domain.ContributionLimits{
				2024: yearLimits(6326, 33891, 2420, 33891),
				2025: yearLimits(4800, 35000, 2540, 35811),
			},
		},
		"shanghai": {
			Rates: map[domain.InsuranceType]domain.InsuranceRates{
				domain.InsurancePension:      rates("0.16", "0.08"),
				domain.InsuranceMedical:      rates("0.09", "0.02"),
				domain.InsuranceUnemployment: rates("0.005", "0.005"),
				domain.InsuranceWorkInjury:   rates("0.0026", "0"),
				domain.InsuranceMaternity:    rates("0.01", "0"),
				domain.InsuranceHousingFund:  rates("0.07", "0.07"),
			},
			Limits: map[int]map[domain.InsuranceType]domain.ContributionLimits{
				2024: yearLimits(7310, 36549, 2690, 36549),
				2025: yearLimits(7460, 37302, 2690, 37302),
			},
		},
		"shenzhen": {
			Rates: map[domain.InsuranceType]domain.InsuranceRates{
				domain.InsurancePension:      rates("0.15", "0.08"),
				domain.InsuranceMedical:      rates("0.06", "0.02"),
				domain.InsuranceUnemployment: rates("0.007", "0.003"),
				domain.InsuranceWorkInjury:   rates("0.0014", "0"),
				domain.InsuranceMaternity:    rates("0.0045", "0"),
				domain.InsuranceHousingFund:  rates("0.05", "0.05"),
			},
			Limits: map[int]map[domain.InsuranceType]domain.ContributionLimits{
				2024: yearLimits(2360, 27501, 2360, 41190),
				2025: yearLimits(2520, 28200, 2520, 42918),
			},
		},
		"guangzhou": {
			Rates: map[domain.InsuranceType]domain.InsuranceRates{
				domain.InsurancePension:      rates("0.15", "0.08"),
				domain.InsuranceMedical:      rates("0.055", "0.02"),
				domain.InsuranceUnemployment: rates("0.0032", "0.002"),
				domain.InsuranceWorkInjury:   rates("0.002", "0"),
				domain.InsuranceMaternity:    rates("0.0085", "0"),
				domain.InsuranceHousingFund:  rates("0.05", "0.05"),
			},
			Limits: map[int]map[domain.InsuranceType]domain.ContributionLimits{
				2024: yearLimits(4588, 26421, 2300, 38082),
				2025: yearLimits(4780, 27501, 2300, 40000),
			},
		},
		DefaultRegion: {
			Rates: map[domain.InsuranceType]domain.InsuranceRates{
				domain.InsurancePension:      rates("0.16", "0.08"),
				domain.InsuranceMedical:      rates("0.08", "0.02"),
				domain.InsuranceUnemployment: rates("0.005", "0.005"),
				domain.InsuranceWorkInjury:   rates("0.005", "0"),
				domain.InsuranceMaternity:    rates("0.008", "0"),
				domain.InsuranceHousingFund:  rates("0.12", "0.12"),
			},
			Limits: map[int]map[domain.InsuranceType]domain.ContributionLimits{
				2024: yearLimits(4000, 30000, 2000, 30000),
				2025: yearLimits(4000, 30000, 2000, 30000),
			},
		},
	}
}
