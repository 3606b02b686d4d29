package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rgehrsitz/cnpay/internal/calculation"
	"github.com/rgehrsitz/cnpay/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRegionTable(t *testing.T) {
	table, err := LoadRegionTable(filepath.Join("testdata", "regions.yaml"))
	require.NoError(t, err)
	assert.Equal(t, []string{"chengdu", "default"}, table.Regions())
	assert.True(t, table["chengdu"].Rates[domain.InsuranceMedical].Employer.Equal(decimal.RequireFromString("0.065")))
	assert.True(t, table["chengdu"].Limits[2025][domain.InsuranceHousingFund].Upper.Equal(decimal.NewFromInt(27234)))
	assert.NoError(t, table.Validate())
}

func TestRegionalProvider(t *testing.T) {
	builtin, err := RegionalProvider("")
	require.NoError(t, err)
	assert.True(t, builtin.IsRegionSupported("beijing"))

	custom, err := RegionalProvider(filepath.Join("testdata", "regions.yaml"))
	require.NoError(t, err)
	assert.True(t, custom.IsRegionSupported("chengdu"))
	assert.False(t, custom.IsRegionSupported("beijing"))

	sc := calculation.NewSocialInsuranceCalculatorWithProvider(custom)
	bases, err := sc.StandardBases(decimal.NewFromInt(30000), "chengdu", 2025)
	require.NoError(t, err)
	results, err := sc.CalculateAllInsurance(nil, domain.MustPayrollPeriod(2025, 6), bases, "chengdu")
	require.NoError(t, err)
	assert.True(t, results["pension"].ContributionBase.Equal(decimal.NewFromInt(20355)))
}

func TestRegionalProvider_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := RegionalProvider(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("{}\n"), 0o644))
	_, err = RegionalProvider(empty)
	assert.ErrorContains(t, err, "no regions")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("x:\n  rates:\n    maternity: {employer: 0.01, employee: 0.01}\n"), 0o644))
	_, err = RegionalProvider(bad)
	assert.ErrorContains(t, err, "must be zero")
}
