package payroll

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/rgehrsitz/cnpay/internal/calculation"
	"github.com/rgehrsitz/cnpay/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var jan2025 = domain.MustPayrollPeriod(2025, 1)

func basicProcessor(opts ...Option) *Processor {
	opts = append([]Option{
		WithPipeline(calculation.NewSalaryPipeline(calculation.NewBasicSalaryRule())),
		WithDefaultRegion("beijing"),
	}, opts...)
	return NewProcessor(opts...)
}

func request(number string, salary int64) PayslipRequest {
	return PayslipRequest{
		Employee: domain.Employee{
			EmployeeNumber: number,
			Name:           "员工" + number,
			BaseSalary:     decimal.NewFromInt(salary),
		},
		Period: jan2025,
	}
}

func TestProcessor_Process(t *testing.T) {
	slip, err := basicProcessor().Process(context.Background(), request("E001", 10000))
	require.NoError(t, err)

	assert.Equal(t, "E001", slip.EmployeeNumber)
	assert.Equal(t, "beijing", slip.Region)
	assert.Len(t, slip.Insurance, 6)
	assert.True(t, slip.GrossAmount.Equal(d("10000")), "gross %s", slip.GrossAmount)
	// 800 + 200 + 50 + 0 + 0 + 1200
	assert.True(t, slip.EmployeeInsurance.Equal(d("2250")), "employee insurance %s", slip.EmployeeInsurance)
	// 1900 + 980 + 50 + 40 + 80 + 1200
	assert.True(t, slip.EmployerInsurance.Equal(d("4250")), "employer insurance %s", slip.EmployerInsurance)
	assert.True(t, slip.TaxableIncome.Equal(d("7750")))
	assert.True(t, slip.IncomeTax.Equal(d("82.5")), "tax %s", slip.IncomeTax)
	assert.True(t, slip.NetAmount.Equal(d("7667.5")), "net %s", slip.NetAmount)

	calc := slip.Calculation()
	require.NotNil(t, calc)
	assert.Equal(t, slip.ID, calc.ID)
	assert.True(t, calc.AmountOf(domain.ItemSocialInsurance).Equal(d("-2250")))
	assert.True(t, calc.AmountOf(domain.ItemIncomeTax).Equal(d("-82.5")))
	assert.True(t, slip.NetAmount.Equal(slip.GrossAmount.Sub(slip.EmployeeInsurance).Sub(slip.IncomeTax)))
	assert.Len(t, slip.Items, 3)
}

func TestProcessor_CumulativeSecondMonth(t *testing.T) {
	req := request("E001", 10000)
	req.Period = domain.MustPayrollPeriod(2025, 2)
	req.PriorIncome = d("7750")
	req.PriorTaxPaid = d("82.5")

	slip, err := basicProcessor().Process(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 2, slip.Tax.CurrentPeriod)
	assert.True(t, slip.Tax.CumulativeIncome.Equal(d("15500")))
	assert.True(t, slip.IncomeTax.Equal(d("82.5")), "tax %s", slip.IncomeTax)
}

func TestProcessor_SpecialDeductions(t *testing.T) {
	req := request("E001", 10000)
	req.Employee.SpecialDeductions = map[domain.DeductionType]decimal.Decimal{
		domain.DeductionChildEducation: d("2000"),
	}
	slip, err := basicProcessor().Process(context.Background(), req)
	require.NoError(t, err)
	// (7750 - 5000 - 2000) * 3%
	assert.True(t, slip.IncomeTax.Equal(d("22.5")), "tax %s", slip.IncomeTax)
}

func TestProcessor_InsuranceBaseOverride(t *testing.T) {
	req := request("E001", 10000)
	low := d("3000")
	req.InsuranceBase = &low

	slip, err := basicProcessor().Process(context.Background(), req)
	require.NoError(t, err)
	// social bases floored at 4800, housing fund at 3000
	assert.True(t, slip.Insurance["pension"].ContributionBase.Equal(d("4800")))
	assert.True(t, slip.Insurance["housing_fund"].ContributionBase.Equal(d("3000")))
	assert.True(t, slip.EmployeeInsurance.Equal(d("864")), "got %s", slip.EmployeeInsurance)
}

func TestProcessor_ExplicitBases(t *testing.T) {
	req := request("E001", 10000)
	req.Bases = []domain.ContributionBase{{
		InsuranceType: domain.InsurancePension,
		SalaryBase:    d("10000"),
		Year:          2025,
	}}
	slip, err := basicProcessor().Process(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, slip.Insurance, 1)
	assert.True(t, slip.EmployeeInsurance.Equal(d("800")))
}

func TestProcessor_RegionPrecedence(t *testing.T) {
	p := basicProcessor()

	req := request("E001", 10000)
	req.Employee.Region = "上海"
	slip, err := p.Process(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "shanghai", slip.Region)

	req.Region = "shenzhen"
	slip, err = p.Process(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "shenzhen", slip.Region)

	slip, err = NewProcessor().Process(context.Background(), request("E002", 10000))
	require.NoError(t, err)
	assert.Equal(t, calculation.DefaultRegion, slip.Region)
}

func TestProcessor_RegionalAllowanceFollowsResolvedRegion(t *testing.T) {
	pipeline := calculation.NewSalaryPipeline(calculation.NewBasicSalaryRule(), calculation.NewAllowanceRule())
	allowance := func(t *testing.T, p *Processor, req PayslipRequest) decimal.Decimal {
		t.Helper()
		slip, err := p.Process(context.Background(), req)
		require.NoError(t, err)
		return slip.Calculation().AmountOf(domain.ItemAllowance)
	}

	none := allowance(t, NewProcessor(WithPipeline(pipeline)), request("E001", 10000))
	inherited := allowance(t, NewProcessor(WithPipeline(pipeline), WithDefaultRegion("beijing")), request("E001", 10000))
	assert.True(t, inherited.Sub(none).Equal(d("1000")), "inherited %s none %s", inherited, none)

	req := request("E001", 10000)
	req.Employee.Region = "上海"
	req.Region = "shenzhen"
	overridden := allowance(t, NewProcessor(WithPipeline(pipeline)), req)
	assert.True(t, overridden.Sub(none).Equal(d("800")), "overridden %s", overridden)
}

func TestProcessor_Errors(t *testing.T) {
	p := basicProcessor()

	_, err := p.Process(context.Background(), request("E001", -1))
	var salErr *domain.SalaryCalculationError
	assert.ErrorAs(t, err, &salErr)

	req := request("E001", 10000)
	req.Region = "chengdu"
	_, err = p.Process(context.Background(), req)
	var insErr *domain.InsuranceCalculationError
	assert.ErrorAs(t, err, &insErr)

	req = request("E001", 10000)
	req.Period = domain.MustPayrollPeriod(2018, 1)
	req.Bases = []domain.ContributionBase{{InsuranceType: domain.InsurancePension, SalaryBase: d("10000"), Year: 2018}}
	_, err = p.Process(context.Background(), req)
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Process(ctx, request("E001", 10000))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcessor_ProcessBatch(t *testing.T) {
	var reqs []PayslipRequest
	for i := 0; i < 20; i++ {
		reqs = append(reqs, request(fmt.Sprintf("E%03d", i), int64(8000+i*1000)))
	}

	slips, err := basicProcessor(WithConcurrency(3)).ProcessBatch(context.Background(), reqs)
	require.NoError(t, err)
	require.Len(t, slips, len(reqs))
	for i, slip := range slips {
		assert.Equal(t, reqs[i].Employee.EmployeeNumber, slip.EmployeeNumber)
	}

	single, err := basicProcessor().Process(context.Background(), reqs[5])
	require.NoError(t, err)
	assert.Equal(t, single.ID, slips[5].ID)
	assert.True(t, single.NetAmount.Equal(slips[5].NetAmount))
}

func TestProcessor_ProcessBatchFailure(t *testing.T) {
	reqs := []PayslipRequest{request("E001", 10000), request("E002", -5), request("E003", 10000)}
	slips, err := basicProcessor().ProcessBatch(context.Background(), reqs)
	assert.Nil(t, slips)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "E002")

	var salErr *domain.SalaryCalculationError
	assert.ErrorAs(t, err, &salErr)
}

type recordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordingLogger) record(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Debugf(format string, args ...any) { l.record(format, args...) }
func (l *recordingLogger) Infof(format string, args ...any)  { l.record(format, args...) }
func (l *recordingLogger) Warnf(format string, args ...any)  { l.record(format, args...) }
func (l *recordingLogger) Errorf(format string, args ...any) { l.record(format, args...) }

func TestProcessor_Logging(t *testing.T) {
	logger := &recordingLogger{}
	p := NewProcessor(WithLogger(logger))
	_, err := p.ProcessBatch(context.Background(), []PayslipRequest{request("E001", 10000)})
	require.NoError(t, err)

	logger.mu.Lock()
	defer logger.mu.Unlock()
	assert.NotEmpty(t, logger.lines)
	assert.Contains(t, logger.lines[len(logger.lines)-1], "processed 1 payslips")
}

func TestSummarize(t *testing.T) {
	slips, err := basicProcessor().ProcessBatch(context.Background(),
		[]PayslipRequest{request("E001", 10000), request("E002", 10000)})
	require.NoError(t, err)

	s := Summarize(append(slips, nil))
	assert.Equal(t, 2, s.Count)
	assert.True(t, s.GrossAmount.Equal(d("20000")))
	assert.True(t, s.EmployeeInsurance.Equal(d("4500")))
	assert.True(t, s.EmployerInsurance.Equal(d("8500")))
	assert.True(t, s.IncomeTax.Equal(d("165")))
	assert.True(t, s.NetAmount.Equal(d("15335")))
	assert.True(t, s.EmployerCost().Equal(d("28500")))

	assert.Equal(t, 0, Summarize(nil).Count)
}
