package domain

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// RegionConfig holds one region's contribution rates and yearly base limits.
type RegionConfig struct {
	Rates  map[InsuranceType]InsuranceRates             `yaml:"rates" json:"rates"`
	Limits map[int]map[InsuranceType]ContributionLimits `yaml:"limits" json:"limits"`
}

// RegionTable maps a canonical region key to its configuration.
type RegionTable map[string]RegionConfig

// Regions returns the region keys, sorted.
func (t RegionTable) Regions() []string {
	out := make([]string, 0, len(t))
	for r := range t {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

// Validate checks rates and limits for every region.
func (t RegionTable) Validate() error {
	one := decimal.NewFromInt(1)
	for _, region := range t.Regions() {
		cfg := t[region]
		if len(cfg.Rates) == 0 {
			return fmt.Errorf("region %s: no rates configured", region)
		}
		for it, rates := range cfg.Rates {
			if !it.Valid() {
				return fmt.Errorf("region %s: unknown insurance type %q", region, it)
			}
			if rates.Employer.IsNegative() || rates.Employer.GreaterThan(one) {
				return fmt.Errorf("region %s %s: employer rate must be between 0 and 1", region, it)
			}
			if rates.Employee.IsNegative() || rates.Employee.GreaterThan(one) {
				return fmt.Errorf("region %s %s: employee rate must be between 0 and 1", region, it)
			}
			if it.StatutoryEmployeeExempt() && !rates.Employee.IsZero() {
				return fmt.Errorf("region %s %s: employee rate must be zero", region, it)
			}
		}
		for year, byType := range cfg.Limits {
			for it, limits := range byType {
				if !it.Valid() {
					return fmt.Errorf("region %s %d: unknown insurance type %q", region, year, it)
				}
				if !limits.Valid() {
					return fmt.Errorf("region %s %d %s: invalid limits [%s, %s]",
						region, year, it, limits.Lower.String(), limits.Upper.String())
				}
			}
		}
	}
	return nil
}
