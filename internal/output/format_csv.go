package output

import (
	"bytes"
	"encoding/csv"

	"github.com/rgehrsitz/cnpay/internal/domain"
	"github.com/rgehrsitz/cnpay/internal/payroll"
)

// CSVFormatter writes one row per payslip.
type CSVFormatter struct{}

func (c CSVFormatter) Name() string { return "csv" }

// Format generates CSV output for a report.
func (c CSVFormatter) Format(report *Report) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	header := []string{"EmployeeNumber", "Name", "Period", "Region"}
	for _, t := range domain.AllSalaryItemTypes() {
		if t.IsDeduction() {
			continue
		}
		header = append(header, string(t))
	}
	header = append(header, "Gross", "EmployeeInsurance", "EmployerInsurance", "TaxableIncome", "IncomeTax", "Net")
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, slip := range report.Payslips {
		if err := w.Write(c.formatRow(slip)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c CSVFormatter) formatRow(slip *payroll.Payslip) []string {
	row := []string{slip.EmployeeNumber, slip.EmployeeName, slip.Period.Key(), slip.Region}
	calc := slip.Calculation()
	for _, t := range domain.AllSalaryItemTypes() {
		if t.IsDeduction() {
			continue
		}
		if calc == nil {
			row = append(row, "0.00")
			continue
		}
		row = append(row, calc.AmountOf(t).StringFixed(2))
	}
	return append(row,
		slip.GrossAmount.StringFixed(2),
		slip.EmployeeInsurance.StringFixed(2),
		slip.EmployerInsurance.StringFixed(2),
		slip.TaxableIncome.StringFixed(2),
		slip.IncomeTax.StringFixed(2),
		slip.NetAmount.StringFixed(2),
	)
}
