package payroll

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rgehrsitz/cnpay/internal/calculation"
	"github.com/rgehrsitz/cnpay/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds ProcessBatch when no limit is configured.
const DefaultConcurrency = 4

// PayslipRequest is everything needed to produce one employee's payslip.
type PayslipRequest struct {
	Employee domain.Employee
	Period   domain.PayrollPeriod
	Context  calculation.Context
	// Region overrides the employee's region. Both empty means the processor default.
	Region string
	// Bases are explicit contribution bases. Empty means all six types built
	// from InsuranceBase (or the base salary) with the region's limits.
	Bases         []domain.ContributionBase
	InsuranceBase *decimal.Decimal
	// CurrentPeriod is the month index within the tax year. Zero means Period.Month.
	CurrentPeriod int
	// PriorIncome is taxable income (after employee insurance) already earned this year.
	PriorIncome decimal.Decimal
	// PriorTaxPaid is tax already withheld this year.
	PriorTaxPaid decimal.Decimal
}

// Payslip composes the salary, insurance and tax results for one employee.
type Payslip struct {
	ID                uuid.UUID                                `json:"id"`
	EmployeeNumber    string                                   `json:"employee_number"`
	EmployeeName      string                                   `json:"employee_name,omitempty"`
	Period            domain.PayrollPeriod                     `json:"period"`
	Region            string                                   `json:"region"`
	Items             []domain.SalaryItem                      `json:"items"`
	Insurance         map[string]*domain.SocialInsuranceResult `json:"insurance"`
	Tax               *domain.TaxResult                        `json:"tax"`
	GrossAmount       decimal.Decimal                          `json:"gross_amount"`
	EmployeeInsurance decimal.Decimal                          `json:"employee_insurance"`
	EmployerInsurance decimal.Decimal                          `json:"employer_insurance"`
	TaxableIncome     decimal.Decimal                          `json:"taxable_income"`
	IncomeTax         decimal.Decimal                          `json:"income_tax"`
	NetAmount         decimal.Decimal                          `json:"net_amount"`

	calculation *domain.SalaryCalculation
}

// Calculation returns the underlying salary calculation, including the
// insurance and tax deduction items.
func (p *Payslip) Calculation() *domain.SalaryCalculation {
	return p.calculation
}

// Processor runs the salary pipeline, insurance and tax calculators in sequence.
type Processor struct {
	pipeline      *calculation.SalaryPipeline
	tax           *calculation.TaxCalculator
	insurance     *calculation.SocialInsuranceCalculator
	defaultRegion string
	concurrency   int
	logger        calculation.Logger
}

// Option configures a Processor.
type Option func(*Processor)

// WithPipeline replaces the default rule pipeline.
func WithPipeline(p *calculation.SalaryPipeline) Option {
	return func(pr *Processor) { pr.pipeline = p }
}

// WithTaxCalculator replaces the default tax calculator.
func WithTaxCalculator(tc *calculation.TaxCalculator) Option {
	return func(pr *Processor) { pr.tax = tc }
}

// WithInsuranceCalculator replaces the default insurance calculator.
func WithInsuranceCalculator(ic *calculation.SocialInsuranceCalculator) Option {
	return func(pr *Processor) { pr.insurance = ic }
}

// WithDefaultRegion sets the region used when neither request nor employee names one.
func WithDefaultRegion(region string) Option {
	return func(pr *Processor) { pr.defaultRegion = region }
}

// WithConcurrency bounds the number of payslips processed at once.
func WithConcurrency(n int) Option {
	return func(pr *Processor) { pr.concurrency = n }
}

// WithLogger sets the logger on the processor and the calculators it owns.
func WithLogger(l calculation.Logger) Option {
	return func(pr *Processor) { pr.logger = l }
}

// NewProcessor creates a processor with the built-in rules and tables.
func NewProcessor(opts ...Option) *Processor {
	p := &Processor{
		defaultRegion: calculation.DefaultRegion,
		concurrency:   DefaultConcurrency,
		logger:        calculation.NopLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.pipeline == nil {
		p.pipeline = calculation.NewDefaultPipeline()
		p.pipeline.SetLogger(p.logger)
	}
	if p.tax == nil {
		p.tax = calculation.NewTaxCalculator()
		p.tax.SetLogger(p.logger)
	}
	if p.insurance == nil {
		p.insurance = calculation.NewSocialInsuranceCalculator()
		p.insurance.SetLogger(p.logger)
	}
	if p.concurrency < 1 {
		p.concurrency = 1
	}
	if p.logger == nil {
		p.logger = calculation.NopLogger()
	}
	return p
}

func (p *Processor) regionFor(req PayslipRequest) string {
	switch {
	case req.Region != "":
		return req.Region
	case req.Employee.Region != "":
		return req.Employee.Region
	default:
		return p.defaultRegion
	}
}

// Process produces one payslip.
func (p *Processor) Process(ctx context.Context, req PayslipRequest) (*Payslip, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	employee := req.Employee
	region := domain.NormalizeRegion(p.regionFor(req))
	// allowances follow the region insurance is charged in
	employee.Region = region

	calc, err := p.pipeline.Calculate(employee, req.Period, req.Context)
	if err != nil {
		return nil, err
	}

	bases := req.Bases
	if len(bases) == 0 {
		salary := employee.BaseSalary
		if req.InsuranceBase != nil {
			salary = *req.InsuranceBase
		}
		bases, err = p.insurance.StandardBases(salary, region, req.Period.Year)
		if err != nil {
			return nil, err
		}
	}
	insurance, err := p.insurance.CalculateAllInsurance(&employee, req.Period, bases, region)
	if err != nil {
		return nil, err
	}
	employeeInsurance := p.insurance.CalculateTotalTaxDeduction(insurance)
	employerInsurance := decimal.Zero
	for _, r := range insurance {
		employerInsurance = employerInsurance.Add(r.EmployerAmount)
	}

	gross := calc.GrossAmount()
	calc.AddItem(domain.NewSalaryItem(domain.ItemSocialInsurance, employeeInsurance.Neg(), "个人社保公积金"))

	currentPeriod := req.CurrentPeriod
	if currentPeriod == 0 {
		currentPeriod = req.Period.Month
	}
	taxable := decimal.Max(decimal.Zero, gross.Sub(employeeInsurance))
	cumulative := req.PriorIncome.Add(taxable)
	period := req.Period
	taxResult, err := p.tax.Calculate(&employee, taxable, calculation.TaxContext{
		CurrentPeriod:     currentPeriod,
		CumulativeIncome:  &cumulative,
		CumulativeTaxPaid: req.PriorTaxPaid,
		Deductions:        domain.DeductionsForPeriod(&employee, currentPeriod),
		Period:            &period,
	})
	if err != nil {
		return nil, err
	}
	calc.AddItem(domain.NewSalaryItem(domain.ItemIncomeTax, taxResult.TaxAmount.Neg(), ""))

	p.logger.Debugf("payslip %s %s region=%s gross=%s insurance=%s tax=%s net=%s",
		employee.EmployeeNumber, req.Period.Key(), region, gross.StringFixed(2),
		employeeInsurance.StringFixed(2), taxResult.TaxAmount.StringFixed(2), calc.NetAmount().StringFixed(2))

	return &Payslip{
		ID:                calc.ID,
		EmployeeNumber:    employee.EmployeeNumber,
		EmployeeName:      employee.Name,
		Period:            req.Period,
		Region:            region,
		Items:             calc.Items(),
		Insurance:         insurance,
		Tax:               taxResult,
		GrossAmount:       gross,
		EmployeeInsurance: employeeInsurance,
		EmployerInsurance: employerInsurance,
		TaxableIncome:     taxable,
		IncomeTax:         taxResult.TaxAmount,
		NetAmount:         calc.NetAmount(),
		calculation:       calc,
	}, nil
}

// ProcessBatch processes requests concurrently and returns payslips in input
// order. The first failure cancels the remaining work.
func (p *Processor) ProcessBatch(ctx context.Context, requests []PayslipRequest) ([]*Payslip, error) {
	results := make([]*Payslip, len(requests))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, req := range requests {
		g.Go(func() error {
			slip, err := p.Process(gctx, req)
			if err != nil {
				return fmt.Errorf("employee %s (%s): %w", req.Employee.EmployeeNumber, req.Period.Key(), err)
			}
			results[i] = slip
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	p.logger.Infof("processed %d payslips", len(results))
	return results, nil
}
