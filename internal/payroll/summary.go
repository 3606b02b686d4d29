package payroll

import "github.com/shopspring/decimal"

// Summary aggregates the totals of a batch of payslips.
type Summary struct {
	Count             int             `json:"count"`
	GrossAmount       decimal.Decimal `json:"gross_amount"`
	EmployeeInsurance decimal.Decimal `json:"employee_insurance"`
	EmployerInsurance decimal.Decimal `json:"employer_insurance"`
	IncomeTax         decimal.Decimal `json:"income_tax"`
	NetAmount         decimal.Decimal `json:"net_amount"`
}

// EmployerCost is gross pay plus the employer's contributions.
func (s Summary) EmployerCost() decimal.Decimal {
	return s.GrossAmount.Add(s.EmployerInsurance)
}

// Summarize totals slips, skipping nil entries.
func Summarize(slips []*Payslip) Summary {
	var s Summary
	for _, p := range slips {
		if p == nil {
			continue
		}
		s.Count++
		s.GrossAmount = s.GrossAmount.Add(p.GrossAmount)
		s.EmployeeInsurance = s.EmployeeInsurance.Add(p.EmployeeInsurance)
		s.EmployerInsurance = s.EmployerInsurance.Add(p.EmployerInsurance)
		s.IncomeTax = s.IncomeTax.Add(p.IncomeTax)
		s.NetAmount = s.NetAmount.Add(p.NetAmount)
	}
	return s
}
