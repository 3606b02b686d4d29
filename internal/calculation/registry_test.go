package calculation

import (
	"testing"

	"github.com/rgehrsitz/cnpay/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleRegistry_List(t *testing.T) {
	r := NewRuleRegistry()
	assert.Equal(t, []string{"allowance", "attendance", "basic_salary", "bonus", "overtime"}, r.List())
}

func TestRuleRegistry_ParseRuleSpec(t *testing.T) {
	r := NewRuleRegistry()

	tests := []struct {
		spec      string
		wantType  domain.SalaryItemType
		wantOrder int
		wantErr   bool
	}{
		{spec: "basic_salary", wantType: domain.ItemBasicSalary, wantOrder: OrderBasicSalary},
		{spec: "overtime:order=25", wantType: domain.ItemOvertime, wantOrder: 25},
		{spec: " bonus : order = 5 ", wantType: domain.ItemBonus, wantOrder: 5},
		{spec: "overtime:multiplier=2", wantType: domain.ItemOvertime, wantOrder: OrderOvertime},
		{spec: "unknown", wantErr: true},
		{spec: "overtime:order", wantErr: true},
		{spec: "overtime:order=abc", wantErr: true},
		{spec: "overtime:multiplier=-1", wantErr: true},
		{spec: "overtime:multiplier=x", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			rule, err := r.ParseRuleSpec(tt.spec)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, rule.Type())
			assert.Equal(t, tt.wantOrder, rule.Order())
		})
	}
}

func TestRuleRegistry_OvertimeMultiplier(t *testing.T) {
	rule, err := NewRuleRegistry().ParseRuleSpec("overtime:multiplier=2")
	require.NoError(t, err)

	e := testEmployee(17400)
	item := rule.Calculate(&e, march2025, Context{CtxOvertimeHours: 10})
	assert.True(t, item.Amount.Equal(decimal.NewFromInt(2000)))
}

func TestRuleRegistry_BuildPipeline(t *testing.T) {
	r := NewRuleRegistry()

	p, err := r.BuildPipeline(nil)
	require.NoError(t, err)
	assert.Len(t, p.Rules(), 5)

	p, err = r.BuildPipeline([]string{"overtime:order=1", "basic_salary"})
	require.NoError(t, err)
	rules := p.Rules()
	require.Len(t, rules, 2)
	assert.Equal(t, domain.ItemOvertime, rules[0].Type())

	_, err = r.BuildPipeline([]string{"basic_salary", "nope"})
	assert.ErrorContains(t, err, "nope")
}
