package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rgehrsitz/cnpay/internal/calculation"
	"github.com/rgehrsitz/cnpay/internal/domain"
	"github.com/rgehrsitz/cnpay/internal/payroll"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// RunFile is the YAML shape of a payroll run.
type RunFile struct {
	Period    string          `yaml:"period" validate:"required"`
	Region    string          `yaml:"region"`
	Rules     []string        `yaml:"rules"`
	Employees []EmployeeInput `yaml:"employees" validate:"required,min=1,dive"`
}

// EmployeeInput is one employee entry in a run file.
type EmployeeInput struct {
	EmployeeNumber    string                     `yaml:"employee_number" validate:"required"`
	Name              string                     `yaml:"name"`
	BaseSalary        decimal.Decimal            `yaml:"base_salary"`
	HireDate          string                     `yaml:"hire_date" validate:"omitempty,datetime=2006-01-02"`
	Department        string                     `yaml:"department"`
	Region            string                     `yaml:"region"`
	Education         string                     `yaml:"education"`
	SpecialDeductions map[string]decimal.Decimal `yaml:"special_deductions"`
	Context           map[string]any             `yaml:"context"`
	Period            string                     `yaml:"period"`
	CurrentPeriod     int                        `yaml:"current_period" validate:"gte=0,lte=12"`
	InsuranceBase     *decimal.Decimal           `yaml:"insurance_base"`
	Bases             []BaseInput                `yaml:"bases" validate:"dive"`
	PriorIncome       decimal.Decimal            `yaml:"prior_income"`
	PriorTaxPaid      decimal.Decimal            `yaml:"prior_tax_paid"`
}

// BaseInput is an explicit contribution base.
type BaseInput struct {
	InsuranceType string          `yaml:"insurance_type" validate:"required"`
	SalaryBase    decimal.Decimal `yaml:"salary_base"`
	LowerLimit    decimal.Decimal `yaml:"lower_limit"`
	UpperLimit    decimal.Decimal `yaml:"upper_limit"`
	Year          int             `yaml:"year" validate:"omitempty,gte=2019"`
}

// Run is a parsed, validated payroll run ready for the processor.
type Run struct {
	Period   domain.PayrollPeriod
	Region   string
	Rules    []string
	Requests []payroll.PayslipRequest
}

// InputParser handles parsing of payroll run files.
type InputParser struct {
	validate *validator.Validate
	registry *calculation.RuleRegistry
}

// NewInputParser creates a new input parser.
func NewInputParser() *InputParser {
	return &InputParser{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		registry: calculation.NewRuleRegistry(),
	}
}

// LoadFromFile loads a run from a YAML file.
func (ip *InputParser) LoadFromFile(filename string) (*Run, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return ip.Parse(data)
}

// Parse decodes and validates a run.
func (ip *InputParser) Parse(data []byte) (*Run, error) {
	var file RunFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	run, err := ip.Convert(&file)
	if err != nil {
		return nil, fmt.Errorf("run validation failed: %w", err)
	}
	return run, nil
}

// Pipeline assembles the run's rule pipeline; no rules means the defaults.
func (ip *InputParser) Pipeline(run *Run) (*calculation.SalaryPipeline, error) {
	return ip.registry.BuildPipeline(run.Rules)
}

// Convert validates a decoded run file and turns it into processor requests.
func (ip *InputParser) Convert(file *RunFile) (*Run, error) {
	if err := ip.validate.Struct(file); err != nil {
		return nil, describeValidation(err)
	}
	period, err := domain.ParsePeriod(file.Period)
	if err != nil {
		return nil, fmt.Errorf("period: %w", err)
	}
	if _, err := ip.registry.BuildPipeline(file.Rules); err != nil {
		return nil, fmt.Errorf("rules: %w", err)
	}

	seen := make(map[string]bool, len(file.Employees))
	run := &Run{Period: period, Region: file.Region, Rules: file.Rules}
	for i := range file.Employees {
		in := &file.Employees[i]
		req, err := ip.convertEmployee(in, period)
		if err != nil {
			return nil, fmt.Errorf("employee %d (%s): %w", i, in.EmployeeNumber, err)
		}
		key := in.EmployeeNumber + "/" + req.Period.Key()
		if seen[key] {
			return nil, fmt.Errorf("employee %d: duplicate employee number %s for %s", i, in.EmployeeNumber, req.Period.Key())
		}
		seen[key] = true
		run.Requests = append(run.Requests, req)
	}
	return run, nil
}

func (ip *InputParser) convertEmployee(in *EmployeeInput, runPeriod domain.PayrollPeriod) (payroll.PayslipRequest, error) {
	if in.BaseSalary.IsNegative() {
		return payroll.PayslipRequest{}, fmt.Errorf("base salary cannot be negative")
	}
	if in.PriorIncome.IsNegative() || in.PriorTaxPaid.IsNegative() {
		return payroll.PayslipRequest{}, fmt.Errorf("prior income and prior tax paid cannot be negative")
	}
	period := runPeriod
	if in.Period != "" {
		p, err := domain.ParsePeriod(in.Period)
		if err != nil {
			return payroll.PayslipRequest{}, fmt.Errorf("period: %w", err)
		}
		period = p
	}

	employee := domain.Employee{
		EmployeeNumber: in.EmployeeNumber,
		Name:           in.Name,
		BaseSalary:     in.BaseSalary,
		Department:     in.Department,
		Region:         in.Region,
		Education:      in.Education,
	}
	if in.HireDate != "" {
		hired, err := time.Parse("2006-01-02", in.HireDate)
		if err != nil {
			return payroll.PayslipRequest{}, fmt.Errorf("hire_date: %w", err)
		}
		employee.HireDate = hired
	}
	if len(in.SpecialDeductions) > 0 {
		employee.SpecialDeductions = make(map[domain.DeductionType]decimal.Decimal, len(in.SpecialDeductions))
		for raw, amount := range in.SpecialDeductions {
			dt, err := domain.ParseDeductionType(raw)
			if err != nil {
				return payroll.PayslipRequest{}, fmt.Errorf("special_deductions: %w", err)
			}
			if amount.IsNegative() || amount.GreaterThan(dt.MonthlyLimit()) {
				return payroll.PayslipRequest{}, fmt.Errorf("special_deductions: %s must be between 0 and %s",
					dt, dt.MonthlyLimit().String())
			}
			employee.SpecialDeductions[dt] = amount
		}
	}

	ctx := calculation.Context{}
	for k, v := range in.Context {
		if !calculation.IsKnownContextKey(k) {
			return payroll.PayslipRequest{}, fmt.Errorf("context: unknown key %q", k)
		}
		ctx[k] = v
		if _, ok := ctx.Decimal(k); !ok {
			return payroll.PayslipRequest{}, fmt.Errorf("context: %s must be a finite number, got %v", k, v)
		}
	}

	bases := make([]domain.ContributionBase, 0, len(in.Bases))
	for j, b := range in.Bases {
		it, err := domain.ParseInsuranceType(b.InsuranceType)
		if err != nil {
			return payroll.PayslipRequest{}, fmt.Errorf("bases[%d]: %w", j, err)
		}
		year := b.Year
		if year == 0 {
			year = period.Year
		}
		bases = append(bases, domain.ContributionBase{
			InsuranceType: it,
			SalaryBase:    b.SalaryBase,
			LowerLimit:    b.LowerLimit,
			UpperLimit:    b.UpperLimit,
			Region:        in.Region,
			Year:          year,
		})
	}

	return payroll.PayslipRequest{
		Employee:      employee,
		Period:        period,
		Context:       ctx,
		Bases:         bases,
		InsuranceBase: in.InsuranceBase,
		CurrentPeriod: in.CurrentPeriod,
		PriorIncome:   in.PriorIncome,
		PriorTaxPaid:  in.PriorTaxPaid,
	}, nil
}

// describeValidation flattens validator errors into one readable message.
func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid run file: %s", strings.Join(msgs, "; "))
}
