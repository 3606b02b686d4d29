package calculation

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Context keys read by the built-in rules.
const (
	CtxOvertimeHours      = "overtime_hours"
	CtxOvertimeMultiplier = "overtime_multiplier"
	CtxBaseSalaryOverride = "base_salary_override"
	CtxWorkedDays         = "worked_days"
	CtxBonus              = "bonus"
	CtxPerformanceBonus   = "performance_bonus"
	CtxCommission         = "commission"
	CtxAbsenceDays        = "absence_days"
)

var knownContextKeys = map[string]bool{
	CtxOvertimeHours: true, CtxOvertimeMultiplier: true, CtxBaseSalaryOverride: true,
	CtxWorkedDays: true, CtxBonus: true, CtxPerformanceBonus: true,
	CtxCommission: true, CtxAbsenceDays: true,
}

// IsKnownContextKey reports whether a built-in rule reads key.
func IsKnownContextKey(key string) bool {
	return knownContextKeys[key]
}

// Context carries optional per-run inputs for the salary rules. Values arrive
// from YAML or callers as numbers or strings; anything that does not parse as a
// finite number is treated as absent.
type Context map[string]any

// Decimal returns the value for key as a decimal.
func (c Context) Decimal(key string) (decimal.Decimal, bool) {
	v, ok := c[key]
	if !ok || v == nil {
		return decimal.Zero, false
	}
	switch n := v.(type) {
	case decimal.Decimal:
		return n, true
	case *decimal.Decimal:
		if n == nil {
			return decimal.Zero, false
		}
		return *n, true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int32:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	case uint:
		return decimal.NewFromInt(int64(n)), true
	case float32:
		return finiteDecimal(float64(n))
	case float64:
		return finiteDecimal(n)
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(n))
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	default:
		return decimal.Zero, false
	}
}

// DecimalOr returns the value for key, or def when absent or malformed.
func (c Context) DecimalOr(key string, def decimal.Decimal) decimal.Decimal {
	if d, ok := c.Decimal(key); ok {
		return d
	}
	return def
}

// Int returns the value for key truncated to an int.
func (c Context) Int(key string) (int, bool) {
	d, ok := c.Decimal(key)
	if !ok {
		return 0, false
	}
	return int(d.IntPart()), true
}

// Has reports whether key holds a usable numeric value.
func (c Context) Has(key string) bool {
	_, ok := c.Decimal(key)
	return ok
}

func finiteDecimal(f float64) (decimal.Decimal, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(f), true
}
