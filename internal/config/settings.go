package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. CNPAY_LOG_LEVEL.
const EnvPrefix = "CNPAY"

// Settings holds application configuration.
type Settings struct {
	Log         LogSettings     `mapstructure:"log"`
	Payroll     PayrollSettings `mapstructure:"payroll"`
	Output      OutputSettings  `mapstructure:"output"`
	RegionsFile string          `mapstructure:"regions_file"`
}

// LogSettings configures the zap logger.
type LogSettings struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// PayrollSettings configures the processor.
type PayrollSettings struct {
	Region      string `mapstructure:"region"`
	Concurrency int    `mapstructure:"concurrency"`
}

// OutputSettings configures report rendering.
type OutputSettings struct {
	Format string `mapstructure:"format"`
}

// LoadSettings reads settings from configFile (optional), cnpay.yaml in the
// working directory, .env and CNPAY_* environment variables, in increasing
// precedence.
func LoadSettings(configFile string) (*Settings, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("cnpay")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &s, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output_path", "stderr")
	v.SetDefault("payroll.region", "default")
	v.SetDefault("payroll.concurrency", 4)
	v.SetDefault("output.format", "console")
	v.SetDefault("regions_file", "")
}

// Validate checks settings values.
func (s *Settings) Validate() error {
	switch s.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json, got %q", s.Log.Format)
	}
	if s.Payroll.Concurrency < 1 {
		return fmt.Errorf("payroll.concurrency must be at least 1, got %d", s.Payroll.Concurrency)
	}
	switch s.Output.Format {
	case "console", "json", "csv":
	default:
		return fmt.Errorf("output.format must be console, json or csv, got %q", s.Output.Format)
	}
	return nil
}
