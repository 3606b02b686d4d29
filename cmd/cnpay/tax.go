package main

import (
	"fmt"
	"strings"

	"github.com/rgehrsitz/cnpay/internal/calculation"
	"github.com/rgehrsitz/cnpay/internal/domain"
	"github.com/rgehrsitz/cnpay/internal/logging"
	"github.com/rgehrsitz/cnpay/internal/output"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var taxCmd = &cobra.Command{
	Use:   "tax",
	Short: "Calculate income tax withholding for one period",
	RunE: func(cmd *cobra.Command, args []string) error {
		incomeStr, _ := cmd.Flags().GetString("income")
		income, err := decimal.NewFromString(incomeStr)
		if err != nil {
			return fmt.Errorf("invalid --income: %w", err)
		}
		currentPeriod, _ := cmd.Flags().GetInt("period")
		year, _ := cmd.Flags().GetInt("year")
		period, err := domain.NewPayrollPeriod(year, max(1, min(currentPeriod, 12)))
		if err != nil {
			return err
		}

		tctx := calculation.TaxContext{CurrentPeriod: currentPeriod, Period: &period}
		if s, _ := cmd.Flags().GetString("cumulative-income"); s != "" {
			cumulative, err := decimal.NewFromString(s)
			if err != nil {
				return fmt.Errorf("invalid --cumulative-income: %w", err)
			}
			tctx.CumulativeIncome = &cumulative
		}
		if s, _ := cmd.Flags().GetString("tax-paid"); s != "" {
			paid, err := decimal.NewFromString(s)
			if err != nil {
				return fmt.Errorf("invalid --tax-paid: %w", err)
			}
			tctx.CumulativeTaxPaid = paid
		}
		rawDeductions, _ := cmd.Flags().GetStringArray("deduction")
		employee, err := deductionEmployee(rawDeductions)
		if err != nil {
			return err
		}
		tctx.Deductions = domain.DeductionsForPeriod(employee, max(currentPeriod, 1))

		calc := calculation.NewTaxCalculator()
		calc.SetLogger(logging.Sugar(logger))
		result, err := calc.Calculate(employee, income, tctx)
		if err != nil {
			return err
		}

		var bonus *domain.AnnualBonusTaxResult
		if s, _ := cmd.Flags().GetString("annual-bonus"); s != "" {
			amount, err := decimal.NewFromString(s)
			if err != nil {
				return fmt.Errorf("invalid --annual-bonus: %w", err)
			}
			if bonus, err = calc.CalculateAnnualBonus(amount); err != nil {
				return err
			}
		}

		if asJSON(cmd) {
			return writeJSON(cmd, map[string]any{"tax": result, "annual_bonus": bonus})
		}
		out := output.TaxResultCard(result) + "\n"
		if bonus != nil {
			out += output.AnnualBonusCard(bonus) + "\n"
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), out)
		return err
	},
}

var bracketsCmd = &cobra.Command{
	Use:   "brackets",
	Short: "Show the income tax schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		year, _ := cmd.Flags().GetInt("year")
		monthly, _ := cmd.Flags().GetBool("monthly")
		brackets, err := calculation.NewStatutoryBracketProvider().Brackets(year)
		if err != nil {
			return err
		}
		if monthly {
			brackets = calculation.MonthlyBrackets()
		}
		if asJSON(cmd) {
			return writeJSON(cmd, brackets)
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), output.BracketTable(brackets))
		return err
	},
}

// deductionEmployee holds "type=amount" monthly declarations on a throwaway employee.
func deductionEmployee(raw []string) (*domain.Employee, error) {
	e := &domain.Employee{EmployeeNumber: "cli"}
	if len(raw) == 0 {
		return e, nil
	}
	e.SpecialDeductions = make(map[domain.DeductionType]decimal.Decimal, len(raw))
	for _, r := range raw {
		name, amountStr, ok := strings.Cut(r, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --deduction %q, expected type=amount", r)
		}
		t, err := domain.ParseDeductionType(name)
		if err != nil {
			return nil, err
		}
		amount, err := decimal.NewFromString(strings.TrimSpace(amountStr))
		if err != nil {
			return nil, fmt.Errorf("invalid --deduction amount %q: %w", amountStr, err)
		}
		e.SpecialDeductions[t] = e.SpecialDeductions[t].Add(amount)
	}
	return e, nil
}

func asJSON(cmd *cobra.Command) bool {
	f, _ := cmd.Flags().GetString("format")
	return f == "json"
}

func writeJSON(cmd *cobra.Command, v any) error {
	data, err := output.MarshalJSON(v, true)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}

func init() {
	taxCmd.Flags().String("income", "0", "Taxable income for this period (after employee insurance)")
	taxCmd.Flags().Int("period", 1, "Month index within the tax year (1-12)")
	taxCmd.Flags().Int("year", calculation.DefaultTaxYear, "Tax year")
	taxCmd.Flags().String("cumulative-income", "", "Year-to-date taxable income including this period")
	taxCmd.Flags().String("tax-paid", "", "Tax already withheld this year")
	taxCmd.Flags().StringArray("deduction", nil, "Monthly special deduction as type=amount (repeatable)")
	taxCmd.Flags().String("annual-bonus", "", "Also tax a separately taxed annual bonus")
	taxCmd.Flags().StringP("format", "f", "console", "Output format (console, json)")

	bracketsCmd.Flags().Int("year", calculation.DefaultTaxYear, "Tax year")
	bracketsCmd.Flags().Bool("monthly", false, "Show the monthly schedule used for annual bonuses")
	bracketsCmd.Flags().StringP("format", "f", "console", "Output format (console, json)")
}
