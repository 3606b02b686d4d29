package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettings_Defaults(t *testing.T) {
	s, err := LoadSettings("")
	require.NoError(t, err)
	assert.Equal(t, "warn", s.Log.Level)
	assert.Equal(t, "console", s.Log.Format)
	assert.Equal(t, "stderr", s.Log.OutputPath)
	assert.Equal(t, "default", s.Payroll.Region)
	assert.Equal(t, 4, s.Payroll.Concurrency)
	assert.Equal(t, "console", s.Output.Format)
	assert.Empty(t, s.RegionsFile)
}

func TestLoadSettings_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cnpay.yaml")
	content := `log:
  level: debug
  format: json
payroll:
  region: beijing
  concurrency: 2
output:
  format: csv
regions_file: regions.yaml
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", s.Log.Level)
	assert.Equal(t, "json", s.Log.Format)
	assert.Equal(t, "beijing", s.Payroll.Region)
	assert.Equal(t, 2, s.Payroll.Concurrency)
	assert.Equal(t, "csv", s.Output.Format)
	assert.Equal(t, "regions.yaml", s.RegionsFile)

	t.Setenv("CNPAY_PAYROLL_CONCURRENCY", "8")
	t.Setenv("CNPAY_LOG_LEVEL", "error")
	s, err = LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, 8, s.Payroll.Concurrency)
	assert.Equal(t, "error", s.Log.Level)
}

func TestLoadSettings_Invalid(t *testing.T) {
	_, err := LoadSettings(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	t.Setenv("CNPAY_OUTPUT_FORMAT", "pdf")
	_, err = LoadSettings("")
	assert.ErrorContains(t, err, "output.format")
}

func TestSettings_Validate(t *testing.T) {
	base := Settings{
		Log:     LogSettings{Format: "console"},
		Payroll: PayrollSettings{Concurrency: 1},
		Output:  OutputSettings{Format: "json"},
	}
	assert.NoError(t, base.Validate())

	bad := base
	bad.Log.Format = "xml"
	assert.ErrorContains(t, bad.Validate(), "log.format")

	bad = base
	bad.Payroll.Concurrency = 0
	assert.ErrorContains(t, bad.Validate(), "concurrency")
}
