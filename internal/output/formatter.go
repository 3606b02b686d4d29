package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/rgehrsitz/cnpay/internal/domain"
	"github.com/rgehrsitz/cnpay/internal/payroll"
	"github.com/shopspring/decimal"
)

// Report is a rendered payroll run.
type Report struct {
	Period      domain.PayrollPeriod `json:"period"`
	Payslips    []*payroll.Payslip   `json:"payslips"`
	Summary     payroll.Summary      `json:"summary"`
	GeneratedAt time.Time            `json:"generated_at"`
}

// NewReport builds a report and its summary.
func NewReport(period domain.PayrollPeriod, slips []*payroll.Payslip, at time.Time) *Report {
	return &Report{
		Period:      period,
		Payslips:    slips,
		Summary:     payroll.Summarize(slips),
		GeneratedAt: at,
	}
}

// Formatter renders a report.
type Formatter interface {
	Name() string
	Format(report *Report) ([]byte, error)
}

var formatters = map[string]Formatter{
	"console": ConsoleFormatter{},
	"json":    JSONFormatter{Pretty: true},
	"csv":     CSVFormatter{},
}

// GetFormatterByName returns the named formatter, or nil if unknown.
func GetFormatterByName(name string) Formatter {
	return formatters[strings.ToLower(strings.TrimSpace(name))]
}

// FormatterNames lists the registered formatter names.
func FormatterNames() []string {
	return []string{"console", "csv", "json"}
}

// FormatCurrency renders an amount as ¥1,234.56.
func FormatCurrency(amount decimal.Decimal) string {
	s := amount.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	sign := ""
	if amount.IsNegative() {
		sign = "-"
	}
	return fmt.Sprintf("%s¥%s.%s", sign, b.String(), frac)
}

// FormatPercentage renders a rate such as 0.03 as 3.00%.
func FormatPercentage(rate decimal.Decimal) string {
	return rate.Mul(decimal.NewFromInt(100)).StringFixed(2) + "%"
}
