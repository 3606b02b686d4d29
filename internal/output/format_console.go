package output

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rgehrsitz/cnpay/internal/domain"
	"github.com/rgehrsitz/cnpay/internal/payroll"
	"github.com/shopspring/decimal"
)

// ConsoleFormatter renders payslips as bordered cards followed by a summary.
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console" }

// Format generates the console report.
func (c ConsoleFormatter) Format(report *Report) ([]byte, error) {
	var sb strings.Builder
	sb.WriteString(TitleStyle.Render(fmt.Sprintf("工资计算 %s", report.Period.Key())))
	sb.WriteString("\n")
	if !report.GeneratedAt.IsZero() {
		sb.WriteString(SubtitleStyle.Render("生成时间 " + report.GeneratedAt.Format("2006-01-02 15:04:05")))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	for _, slip := range report.Payslips {
		sb.WriteString(PayslipCard(slip))
		sb.WriteString("\n")
	}

	s := report.Summary
	summary := []string{
		TitleStyle.Render(fmt.Sprintf("汇总 (%d人)", s.Count)),
		row("应发合计", FormatCurrency(s.GrossAmount), AmountStyle),
		row("个人社保公积金", FormatCurrency(s.EmployeeInsurance), DeductionStyle),
		row("单位社保公积金", FormatCurrency(s.EmployerInsurance), AmountStyle),
		row("个人所得税", FormatCurrency(s.IncomeTax), DeductionStyle),
		row("实发合计", FormatCurrency(s.NetAmount), TotalStyle),
		row("用工成本", FormatCurrency(s.EmployerCost()), AmountStyle),
	}
	sb.WriteString(SectionStyle.Render(lipgloss.JoinVertical(lipgloss.Left, summary...)))
	sb.WriteString("\n")
	return []byte(sb.String()), nil
}

// PayslipCard renders one payslip.
func PayslipCard(slip *payroll.Payslip) string {
	lines := []string{
		TitleStyle.Render(fmt.Sprintf("%s %s", slip.EmployeeNumber, slip.EmployeeName)),
		SubtitleStyle.Render(fmt.Sprintf("%s · %s", slip.Period.Key(), slip.Region)),
	}
	for _, item := range slip.Items {
		style := AmountStyle
		if item.IsDeduction() || item.Amount.IsNegative() {
			style = DeductionStyle
		}
		lines = append(lines, row(item.Type.Label(), FormatCurrency(item.Amount), style)+"  "+SubtitleStyle.Render(item.Description))
	}
	lines = append(lines,
		row("应发工资", FormatCurrency(slip.GrossAmount), AmountStyle),
		row("应纳税所得", FormatCurrency(slip.TaxableIncome), AmountStyle),
		row("实发工资", FormatCurrency(slip.NetAmount), TotalStyle),
	)
	return SectionStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// TaxResultCard renders a tax calculation.
func TaxResultCard(r *domain.TaxResult) string {
	lines := []string{
		TitleStyle.Render(fmt.Sprintf("个人所得税 第%d期", r.CurrentPeriod)),
		row("本期收入", FormatCurrency(r.PeriodIncome), AmountStyle),
		row("累计收入", FormatCurrency(r.CumulativeIncome), AmountStyle),
		row("累计减除费用", FormatCurrency(r.BasicExemption), AmountStyle),
		row("专项附加扣除", FormatCurrency(r.SpecialDeductionsTotal), AmountStyle),
		row("累计应纳税所得", FormatCurrency(r.TaxableIncome), AmountStyle),
		row("适用税率", FormatPercentage(r.MarginalTaxRate), AmountStyle),
		row("速算扣除数", FormatCurrency(r.Bracket.QuickDeduction), AmountStyle),
		row("累计应纳税额", FormatCurrency(r.CumulativeTaxDue), AmountStyle),
		row("累计已缴税额", FormatCurrency(r.CumulativeTaxPaid), AmountStyle),
		row("本期应扣税额", FormatCurrency(r.TaxAmount), DeductionStyle),
		row("税后收入", FormatCurrency(r.NetIncome), TotalStyle),
		row("实际税负", FormatPercentage(r.EffectiveTaxRate), AmountStyle),
	}
	return SectionStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// AnnualBonusCard renders a separately taxed annual bonus.
func AnnualBonusCard(r *domain.AnnualBonusTaxResult) string {
	lines := []string{
		TitleStyle.Render("全年一次性奖金"),
		row("奖金", FormatCurrency(r.Bonus), AmountStyle),
		row("月均", FormatCurrency(r.MonthlyAverage), AmountStyle),
		row("适用税率", FormatPercentage(r.Rate), AmountStyle),
		row("速算扣除数", FormatCurrency(r.QuickDeduction), AmountStyle),
		row("应纳税额", FormatCurrency(r.TaxAmount), DeductionStyle),
		row("税后奖金", FormatCurrency(r.NetBonus), TotalStyle),
	}
	return SectionStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// InsuranceTable renders contribution results in type order.
func InsuranceTable(results map[string]*domain.SocialInsuranceResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-12s %12s %8s %12s %8s %12s\n", "险种", "缴费基数", "单位比例", "单位缴纳", "个人比例", "个人缴纳"))
	sb.WriteString(strings.Repeat("-", 72) + "\n")
	var sumEmployer, sumEmployee decimal.Decimal
	for _, t := range domain.AllInsuranceTypes() {
		r, ok := results[string(t)]
		if !ok {
			continue
		}
		sb.WriteString(fmt.Sprintf("%-12s %12s %8s %12s %8s %12s\n",
			t.Label(),
			FormatCurrency(r.ContributionBase),
			FormatPercentage(r.EmployerRate),
			FormatCurrency(r.EmployerAmount),
			FormatPercentage(r.EmployeeRate),
			FormatCurrency(r.EmployeeAmount)))
		sumEmployer = sumEmployer.Add(r.EmployerAmount)
		sumEmployee = sumEmployee.Add(r.EmployeeAmount)
	}
	sb.WriteString(strings.Repeat("-", 72) + "\n")
	sb.WriteString(fmt.Sprintf("%-12s %12s %8s %12s %8s %12s\n", "合计", "", "", FormatCurrency(sumEmployer), "", FormatCurrency(sumEmployee)))
	return sb.String()
}

// BracketTable renders a bracket schedule.
func BracketTable(brackets []domain.TaxBracket) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-4s %16s %16s %8s %12s\n", "级数", "下限", "上限", "税率", "速算扣除数"))
	for i, b := range brackets {
		upper := "∞"
		if !b.IsUnbounded() {
			upper = FormatCurrency(*b.UpperBound)
		}
		sb.WriteString(fmt.Sprintf("%-4d %16s %16s %8s %12s\n",
			i+1, FormatCurrency(b.LowerBound), upper, FormatPercentage(b.Rate), FormatCurrency(b.QuickDeduction)))
	}
	return sb.String()
}

// RegionList renders region names, sorted.
func RegionList(regions []string) string {
	sorted := append([]string(nil), regions...)
	sort.Strings(sorted)
	return strings.Join(sorted, "\n") + "\n"
}
