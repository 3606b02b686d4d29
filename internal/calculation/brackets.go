package calculation

import (
	"fmt"

	"github.com/rgehrsitz/cnpay/internal/domain"
	"github.com/shopspring/decimal"
)

// TAX SCHEDULE NOTES:
//
// 1. Comprehensive income (综合所得) annual schedule, in force since 2019-01-01.
//    Cumulative withholding applies the annual schedule to year-to-date taxable
//    income, so the same table serves every month of the year.
//
// 2. The monthly schedule is only used for separately taxed annual bonuses
//    (全年一次性奖金), where the bracket is chosen by bonus / 12.

// FirstCumulativeWithholdingYear is the first tax year the cumulative method applies.
const FirstCumulativeWithholdingYear = 2019

// TaxBracketProvider supplies the progressive schedule for a tax year.
type TaxBracketProvider interface {
	Brackets(year int) ([]domain.TaxBracket, error)
}

// StatutoryBracketProvider serves the compiled-in PRC schedule.
type StatutoryBracketProvider struct{}

// NewStatutoryBracketProvider creates the default provider.
func NewStatutoryBracketProvider() *StatutoryBracketProvider {
	return &StatutoryBracketProvider{}
}

// Brackets returns the annual schedule for year.
func (StatutoryBracketProvider) Brackets(year int) ([]domain.TaxBracket, error) {
	if year < FirstCumulativeWithholdingYear {
		return nil, domain.NewTaxConfigurationError("year", year,
			"不支持的纳税年度: %d（累计预扣法自%d年起实施）", year, FirstCumulativeWithholdingYear)
	}
	return AnnualBrackets(), nil
}

// AnnualBrackets is the seven-band annual schedule.
func AnnualBrackets() []domain.TaxBracket {
	return buildBrackets(
		[]int64{36000, 144000, 300000, 420000, 660000, 960000},
		[]string{"0.03", "0.10", "0.20", "0.25", "0.30", "0.35", "0.45"},
		[]int64{0, 2520, 16920, 31920, 52920, 85920, 181920},
	)
}

// MonthlyBrackets is the seven-band monthly schedule used for annual bonuses.
func MonthlyBrackets() []domain.TaxBracket {
	return buildBrackets(
		[]int64{3000, 12000, 25000, 35000, 55000, 80000},
		[]string{"0.03", "0.10", "0.20", "0.25", "0.30", "0.35", "0.45"},
		[]int64{0, 210, 1410, 2660, 4410, 7160, 15160},
	)
}

// buildBrackets turns n-1 upper bounds into n contiguous brackets starting at 0.
func buildBrackets(uppers []int64, rates []string, quick []int64) []domain.TaxBracket {
	brackets := make([]domain.TaxBracket, len(rates))
	lower := decimal.Zero
	for i := range rates {
		b := domain.TaxBracket{
			LowerBound:     lower,
			Rate:           decimal.RequireFromString(rates[i]),
			QuickDeduction: decimal.NewFromInt(quick[i]),
		}
		if i < len(uppers) {
			upper := decimal.NewFromInt(uppers[i])
			b.UpperBound = &upper
			lower = upper
		}
		brackets[i] = b
	}
	return brackets
}

// ValidateBrackets checks that brackets start at zero, are sorted and
// contiguous, and that only the last one is unbounded.
func ValidateBrackets(brackets []domain.TaxBracket) error {
	if len(brackets) == 0 {
		return domain.NewTaxConfigurationError("brackets", 0, "税率档次为空")
	}
	if !brackets[0].LowerBound.IsZero() {
		return domain.NewTaxConfigurationError("brackets[0].lower_bound", brackets[0].LowerBound,
			"税率档次必须从0开始, 实际为%s", brackets[0].LowerBound.String())
	}
	for i, b := range brackets {
		last := i == len(brackets)-1
		if b.Rate.IsNegative() || b.Rate.GreaterThan(decimal.NewFromInt(1)) {
			return domain.NewTaxConfigurationError(fmt.Sprintf("brackets[%d].rate", i), b.Rate,
				"税率档次%d的税率无效: %s", i, b.Rate.String())
		}
		if last {
			if !b.IsUnbounded() {
				return domain.NewTaxConfigurationError(fmt.Sprintf("brackets[%d].upper_bound", i), *b.UpperBound,
					"最后一个税率档次必须无上限")
			}
			continue
		}
		if b.IsUnbounded() {
			return domain.NewTaxConfigurationError(fmt.Sprintf("brackets[%d].upper_bound", i), "∞",
				"只有最后一个税率档次可以无上限, 档次%d无上限", i)
		}
		if !b.UpperBound.GreaterThan(b.LowerBound) {
			return domain.NewTaxConfigurationError(fmt.Sprintf("brackets[%d]", i), b.LowerBound,
				"税率档次%d的上限必须大于下限", i)
		}
		if !b.UpperBound.Equal(brackets[i+1].LowerBound) {
			return domain.NewTaxConfigurationError(fmt.Sprintf("brackets[%d]", i+1), brackets[i+1].LowerBound,
				"税率档次不连续: 档次%d上限%s, 档次%d下限%s",
				i, b.UpperBound.String(), i+1, brackets[i+1].LowerBound.String())
		}
	}
	return nil
}

// FindBracket returns the bracket containing amount.
func FindBracket(brackets []domain.TaxBracket, amount decimal.Decimal) (domain.TaxBracket, error) {
	for _, b := range brackets {
		if b.Contains(amount) {
			return b, nil
		}
	}
	return domain.TaxBracket{}, domain.NewTaxConfigurationError("amount", amount,
		"未找到适用的税率档次: %s", amount.StringFixed(2))
}
