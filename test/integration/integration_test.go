package integration

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rgehrsitz/cnpay/internal/calculation"
	"github.com/rgehrsitz/cnpay/internal/config"
	"github.com/rgehrsitz/cnpay/internal/domain"
	"github.com/rgehrsitz/cnpay/internal/output"
	"github.com/rgehrsitz/cnpay/internal/payroll"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const runFile = "../testdata/payroll_run.yaml"

func loadRun(t *testing.T) (*config.Run, *payroll.Processor) {
	t.Helper()
	parser := config.NewInputParser()
	run, err := parser.LoadFromFile(filepath.Clean(runFile))
	require.NoError(t, err)
	pipeline, err := parser.Pipeline(run)
	require.NoError(t, err)
	return run, payroll.NewProcessor(payroll.WithPipeline(pipeline), payroll.WithDefaultRegion(run.Region))
}

func TestIntegrationSmokeTest(t *testing.T) {
	run, processor := loadRun(t)
	slips, err := processor.ProcessBatch(context.Background(), run.Requests)
	require.NoError(t, err)
	require.Len(t, slips, 2)

	assert.Equal(t, "beijing", slips[0].Region)
	assert.Equal(t, "shenzhen", slips[1].Region)
	assert.True(t, slips[1].Calculation().AmountOf(domain.ItemOvertime).IsPositive())
	assert.True(t, slips[1].Calculation().AmountOf(domain.ItemAttendance).IsNegative())

	report := output.NewReport(run.Period, slips, time.Now())
	for _, name := range output.FormatterNames() {
		data, err := output.GetFormatterByName(name).Format(report)
		require.NoError(t, err, name)
		assert.NotEmpty(t, data, name)
	}
}

// A full year of cumulative withholding must add up to the annual liability
// computed in one step.
func TestIntegrationFullYearWithholding(t *testing.T) {
	run, processor := loadRun(t)
	req := run.Requests[0]

	priorIncome, priorTax := decimal.Zero, decimal.Zero
	period := domain.MustPayrollPeriod(2025, 1)
	for month := 1; month <= 12; month++ {
		req.Period = period
		req.PriorIncome = priorIncome
		req.PriorTaxPaid = priorTax

		slip, err := processor.Process(context.Background(), req)
		require.NoError(t, err, "month %d", month)
		assert.True(t, slip.IncomeTax.GreaterThanOrEqual(decimal.Zero))
		assert.True(t, slip.NetAmount.Equal(slip.GrossAmount.Sub(slip.EmployeeInsurance).Sub(slip.IncomeTax)))

		priorIncome = priorIncome.Add(slip.TaxableIncome)
		priorTax = priorTax.Add(slip.IncomeTax)
		period = period.Next()
	}

	// base 20000 plus 3400 allowance (skill 1500, beijing 1000, 研发部 600, bachelor 300)
	// less 4500 insurance: 12 × 18900 - 60000 = 166800 at 20% less 16920
	assert.True(t, priorIncome.Equal(decimal.NewFromInt(226800)), "income %s", priorIncome)
	assert.True(t, priorTax.Equal(decimal.NewFromInt(16440)), "tax %s", priorTax)

	annual, err := calculation.NewTaxCalculator().Calculate(nil, decimal.NewFromInt(18900), calculation.TaxContext{
		CurrentPeriod:     12,
		CumulativeIncome:  &priorIncome,
		CumulativeTaxPaid: decimal.Zero,
	})
	require.NoError(t, err)
	assert.True(t, annual.CumulativeTaxDue.Equal(priorTax))
}

func TestIntegrationConsistency(t *testing.T) {
	run, processor := loadRun(t)
	first, err := processor.ProcessBatch(context.Background(), run.Requests)
	require.NoError(t, err)

	serial := payroll.NewProcessor(payroll.WithDefaultRegion(run.Region), payroll.WithConcurrency(1))
	second, err := serial.ProcessBatch(context.Background(), run.Requests)
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.True(t, first[i].NetAmount.Equal(second[i].NetAmount), first[i].EmployeeNumber)
	}
}

func TestIntegrationErrorHandling(t *testing.T) {
	run, processor := loadRun(t)
	reqs := append([]payroll.PayslipRequest(nil), run.Requests...)
	reqs[1].Region = "chengdu"

	_, err := processor.ProcessBatch(context.Background(), reqs)
	require.Error(t, err)
	var hinter domain.RecoveryHinter
	require.ErrorAs(t, err, &hinter)
	assert.NotEmpty(t, hinter.RecoveryHint())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = processor.ProcessBatch(ctx, run.Requests)
	assert.ErrorIs(t, err, context.Canceled)
}
