package main

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/rgehrsitz/cnpay/internal/config"
	"github.com/rgehrsitz/cnpay/internal/domain"
	"github.com/rgehrsitz/cnpay/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	settings *config.Settings
	logger   = zap.NewNop()
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cnpay %s (commit %s, built %s)\n", version, commit, date)
			if info := buildInfo(); info != "" {
				fmt.Fprintln(cmd.OutOrStdout(), info)
			}
		},
	}
}

func buildInfo() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		return bi.Main.Version
	}
	return ""
}

var rootCmd = &cobra.Command{
	Use:           "cnpay",
	Short:         "PRC payroll calculator",
	Long:          "Salary, individual income tax (cumulative withholding) and 五险一金 calculator",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configFile, _ := cmd.Flags().GetString("config")
		s, err := config.LoadSettings(configFile)
		if err != nil {
			return err
		}
		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			s.Log.Level = level
		}
		l, err := logging.New(s.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		settings, logger = s, l
		logger.Debug("settings loaded",
			zap.String("region", s.Payroll.Region),
			zap.Int("concurrency", s.Payroll.Concurrency),
			zap.String("regions_file", s.RegionsFile))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Settings file (default: ./cnpay.yaml if it exists)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level override (debug, info, warn, error)")

	rootCmd.AddCommand(calculateCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(taxCmd)
	rootCmd.AddCommand(bracketsCmd)
	rootCmd.AddCommand(insuranceCmd)
	rootCmd.AddCommand(regionsCmd)
	rootCmd.AddCommand(versionCmd())
}

// reportError prints err and, for calculation errors, the recovery hint.
func reportError(err error) {
	logger.Error("command failed", zap.Error(err))
	_ = logger.Sync()
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	var hinter domain.RecoveryHinter
	if errors.As(err, &hinter) {
		fmt.Fprintf(os.Stderr, "提示: %s\n", hinter.RecoveryHint())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		reportError(err)
		os.Exit(1)
	}
}
