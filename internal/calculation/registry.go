package calculation

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// RuleRegistry maps rule names to factories so pipelines can be assembled from
// configuration strings.
type RuleRegistry struct {
	factories map[string]RuleFactory
}

// RuleFactory creates a rule from string parameters.
type RuleFactory func(params map[string]string) (CalculationRule, error)

// NewRuleRegistry creates a registry with all built-in rules registered.
func NewRuleRegistry() *RuleRegistry {
	registry := &RuleRegistry{
		factories: make(map[string]RuleFactory),
	}

	registry.Register("basic_salary", createBasicSalaryRule)
	registry.Register("overtime", createOvertimeRule)
	registry.Register("allowance", createAllowanceRule)
	registry.Register("bonus", createBonusRule)
	registry.Register("attendance", createAttendanceRule)

	return registry
}

// Register adds a rule factory to the registry.
func (r *RuleRegistry) Register(name string, factory RuleFactory) {
	r.factories[name] = factory
}

// Create creates a rule by name with the given parameters.
func (r *RuleRegistry) Create(name string, params map[string]string) (CalculationRule, error) {
	factory, exists := r.factories[name]
	if !exists {
		return nil, fmt.Errorf("unknown rule: %s", name)
	}
	return factory(params)
}

// List returns the registered rule names, sorted.
func (r *RuleRegistry) List() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseRuleSpec parses a rule specification string.
// Format: "name" or "name:param1=value1,param2=value2"
// Example: "overtime:order=25,multiplier=2"
func (r *RuleRegistry) ParseRuleSpec(spec string) (CalculationRule, error) {
	name, paramsStr, _ := strings.Cut(spec, ":")
	name = strings.TrimSpace(name)
	paramsStr = strings.TrimSpace(paramsStr)

	params := make(map[string]string)
	if paramsStr != "" {
		for _, paramPair := range strings.Split(paramsStr, ",") {
			kv := strings.SplitN(paramPair, "=", 2)
			if len(kv) != 2 {
				return nil, fmt.Errorf("invalid parameter format, expected 'key=value', got: %s", paramPair)
			}
			params[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
		}
	}

	return r.Create(name, params)
}

// BuildPipeline creates a pipeline from rule specs. An empty list yields the
// default pipeline.
func (r *RuleRegistry) BuildPipeline(specs []string) (*SalaryPipeline, error) {
	if len(specs) == 0 {
		return NewDefaultPipeline(), nil
	}
	pipeline := NewSalaryPipeline()
	for _, spec := range specs {
		rule, err := r.ParseRuleSpec(spec)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", spec, err)
		}
		pipeline.AddRule(rule)
	}
	return pipeline, nil
}

// Factory functions for each rule

func parseOrder(params map[string]string, def int) (int, error) {
	orderStr, ok := params["order"]
	if !ok {
		return def, nil
	}
	order, err := strconv.Atoi(orderStr)
	if err != nil {
		return 0, fmt.Errorf("invalid order value: %w", err)
	}
	return order, nil
}

func createBasicSalaryRule(params map[string]string) (CalculationRule, error) {
	order, err := parseOrder(params, OrderBasicSalary)
	if err != nil {
		return nil, err
	}
	return &BasicSalaryRule{Priority: order}, nil
}

func createOvertimeRule(params map[string]string) (CalculationRule, error) {
	order, err := parseOrder(params, OrderOvertime)
	if err != nil {
		return nil, err
	}
	rule := &OvertimeRule{Priority: order, DefaultMultiplier: DefaultOvertimeMultiplier}
	if multStr, ok := params["multiplier"]; ok {
		mult, err := decimal.NewFromString(multStr)
		if err != nil {
			return nil, fmt.Errorf("invalid multiplier value: %w", err)
		}
		if !mult.IsPositive() {
			return nil, fmt.Errorf("multiplier must be positive, got %s", multStr)
		}
		rule.DefaultMultiplier = mult
	}
	return rule, nil
}

func createAllowanceRule(params map[string]string) (CalculationRule, error) {
	order, err := parseOrder(params, OrderAllowance)
	if err != nil {
		return nil, err
	}
	return &AllowanceRule{Priority: order}, nil
}

func createBonusRule(params map[string]string) (CalculationRule, error) {
	order, err := parseOrder(params, OrderBonus)
	if err != nil {
		return nil, err
	}
	return &BonusRule{Priority: order}, nil
}

func createAttendanceRule(params map[string]string) (CalculationRule, error) {
	order, err := parseOrder(params, OrderAttendance)
	if err != nil {
		return nil, err
	}
	return &AttendanceRule{Priority: order}, nil
}
