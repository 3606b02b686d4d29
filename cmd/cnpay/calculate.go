package main

import (
	"fmt"
	"time"

	"github.com/rgehrsitz/cnpay/internal/calculation"
	"github.com/rgehrsitz/cnpay/internal/config"
	"github.com/rgehrsitz/cnpay/internal/logging"
	"github.com/rgehrsitz/cnpay/internal/output"
	"github.com/rgehrsitz/cnpay/internal/payroll"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var calculateCmd = &cobra.Command{
	Use:   "calculate [run-file]",
	Short: "Calculate payslips for a payroll run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parser := config.NewInputParser()
		run, err := parser.LoadFromFile(args[0])
		if err != nil {
			return err
		}
		pipeline, err := parser.Pipeline(run)
		if err != nil {
			return err
		}
		provider, err := config.RegionalProvider(settings.RegionsFile)
		if err != nil {
			return err
		}

		region := settings.Payroll.Region
		if run.Region != "" {
			region = run.Region
		}
		if flagRegion, _ := cmd.Flags().GetString("region"); flagRegion != "" {
			region = flagRegion
		}
		concurrency := settings.Payroll.Concurrency
		if n, _ := cmd.Flags().GetInt("concurrency"); n > 0 {
			concurrency = n
		}
		format := settings.Output.Format
		if f, _ := cmd.Flags().GetString("format"); f != "" {
			format = f
		}
		formatter := output.GetFormatterByName(format)
		if formatter == nil {
			return fmt.Errorf("unsupported format: %s", format)
		}

		sugar := logging.Sugar(logger)
		pipeline.SetLogger(sugar)
		insurance := calculation.NewSocialInsuranceCalculatorWithProvider(provider)
		insurance.SetLogger(sugar)
		tax := calculation.NewTaxCalculator()
		tax.SetLogger(sugar)

		processor := payroll.NewProcessor(
			payroll.WithPipeline(pipeline),
			payroll.WithInsuranceCalculator(insurance),
			payroll.WithTaxCalculator(tax),
			payroll.WithDefaultRegion(region),
			payroll.WithConcurrency(concurrency),
			payroll.WithLogger(sugar),
		)

		start := time.Now()
		slips, err := processor.ProcessBatch(cmd.Context(), run.Requests)
		if err != nil {
			return err
		}
		logger.Info("payroll run complete",
			zap.String("period", run.Period.Key()),
			zap.Int("payslips", len(slips)),
			zap.Duration("elapsed", time.Since(start)))

		data, err := formatter.Format(output.NewReport(run.Period, slips, time.Now()))
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate [run-file]",
	Short: "Validate a payroll run file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parser := config.NewInputParser()
		run, err := parser.LoadFromFile(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Run file is valid: %d employee(s) for %s\n", len(run.Requests), run.Period.Key())
		return nil
	},
}

func init() {
	calculateCmd.Flags().StringP("format", "f", "", "Output format (console, json, csv)")
	calculateCmd.Flags().String("region", "", "Default region for employees without one")
	calculateCmd.Flags().Int("concurrency", 0, "Number of payslips processed in parallel")
}
