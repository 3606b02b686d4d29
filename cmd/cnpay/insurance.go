package main

import (
	"fmt"

	"github.com/rgehrsitz/cnpay/internal/calculation"
	"github.com/rgehrsitz/cnpay/internal/config"
	"github.com/rgehrsitz/cnpay/internal/domain"
	"github.com/rgehrsitz/cnpay/internal/logging"
	"github.com/rgehrsitz/cnpay/internal/output"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var insuranceCmd = &cobra.Command{
	Use:   "insurance",
	Short: "Calculate 五险一金 contributions for a monthly salary",
	RunE: func(cmd *cobra.Command, args []string) error {
		salaryStr, _ := cmd.Flags().GetString("salary")
		salary, err := decimal.NewFromString(salaryStr)
		if err != nil {
			return fmt.Errorf("invalid --salary: %w", err)
		}
		region, _ := cmd.Flags().GetString("region")
		if region == "" {
			region = settings.Payroll.Region
		}
		year, _ := cmd.Flags().GetInt("year")
		month, _ := cmd.Flags().GetInt("month")
		period, err := domain.NewPayrollPeriod(year, month)
		if err != nil {
			return err
		}

		provider, err := config.RegionalProvider(settings.RegionsFile)
		if err != nil {
			return err
		}
		calc := calculation.NewSocialInsuranceCalculatorWithProvider(provider)
		calc.SetLogger(logging.Sugar(logger))
		bases, err := calc.StandardBases(salary, region, year)
		if err != nil {
			return err
		}
		results, err := calc.CalculateAllInsurance(nil, period, bases, region)
		if err != nil {
			return err
		}

		if asJSON(cmd) {
			return writeJSON(cmd, map[string]any{
				"region":        domain.NormalizeRegion(region),
				"results":       results,
				"tax_deduction": calc.CalculateTotalTaxDeduction(results),
			})
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), output.InsuranceTable(results))
		return err
	},
}

var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "List supported regions",
	RunE: func(cmd *cobra.Command, args []string) error {
		provider, err := config.RegionalProvider(settings.RegionsFile)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), output.RegionList(provider.SupportedRegions()))
		return err
	},
}

func init() {
	insuranceCmd.Flags().String("salary", "0", "Monthly salary used as the contribution base")
	insuranceCmd.Flags().String("region", "", "Region (defaults to payroll.region)")
	insuranceCmd.Flags().Int("year", calculation.DefaultTaxYear, "Contribution year")
	insuranceCmd.Flags().Int("month", 1, "Contribution month")
	insuranceCmd.Flags().StringP("format", "f", "console", "Output format (console, json)")
}
