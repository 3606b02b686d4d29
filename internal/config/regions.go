package config

import (
	"fmt"
	"os"

	"github.com/rgehrsitz/cnpay/internal/calculation"
	"github.com/rgehrsitz/cnpay/internal/domain"
	"gopkg.in/yaml.v3"
)

// LoadRegionTable reads a region table from YAML. The file replaces the
// built-in table entirely.
func LoadRegionTable(filename string) (domain.RegionTable, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read regions file %s: %w", filename, err)
	}
	var table domain.RegionTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse regions YAML: %w", err)
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("regions file %s defines no regions", filename)
	}
	return table, nil
}

// RegionalProvider returns the provider for filename, or the built-in table
// when filename is empty.
func RegionalProvider(filename string) (calculation.RegionalConfigProvider, error) {
	if filename == "" {
		return calculation.NewStaticRegionalConfig(), nil
	}
	table, err := LoadRegionTable(filename)
	if err != nil {
		return nil, err
	}
	return calculation.NewRegionalConfigFromTable(table)
}
