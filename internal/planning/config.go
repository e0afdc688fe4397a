package planning

import (
	"math"

	"github.com/pkg/errors"
)

// ABC classification policies.
const (
	ABCPolicyFixed  = "fixed"
	ABCPolicyPareto = "pareto"
)

// Expiry risk policies.
const (
	ExpiryPolicyThreshold   = "threshold"
	ExpiryPolicyConsumption = "consumption"
)

// Config holds the tunable parameters of an evaluation.
type Config struct {
	ServiceLevelZ    float64 `json:"service_level_z"`
	PeriodLengthDays int     `json:"period_length_days"`
	EvaluationWindow int     `json:"evaluation_window"`

	ABCPolicy        string  `json:"abc_policy"`
	ABCHighThreshold float64 `json:"abc_high_threshold"`
	ABCLowThreshold  float64 `json:"abc_low_threshold"`
	ABCParetoA       float64 `json:"abc_pareto_a"`
	ABCParetoB       float64 `json:"abc_pareto_b"`

	XYZStableCV   float64 `json:"xyz_stable_cv"`
	XYZVariableCV float64 `json:"xyz_variable_cv"`

	ExpiryPolicy   string `json:"expiry_policy"`
	ExpiryRiskDays int    `json:"expiry_risk_days"`

	SupplierRiskCriticalFraction float64 `json:"supplier_risk_critical_fraction"`
	TopNStockoutAlerts           int     `json:"top_n_stockout_alerts"`
	TopNExpiryAlerts             int     `json:"top_n_expiry_alerts"`

	// Workers bounds per-SKU parallelism; it does not affect results.
	Workers int `json:"-"`
}

// DefaultConfig returns the reference policy: 95% service level on monthly
// buckets, fixed ABC cut points and a 60 day expiry horizon.
func DefaultConfig() Config {
	return Config{
		ServiceLevelZ:                1.65,
		PeriodLengthDays:             30,
		EvaluationWindow:             12,
		ABCPolicy:                    ABCPolicyFixed,
		ABCHighThreshold:             50000,
		ABCLowThreshold:              15000,
		ABCParetoA:                   0.80,
		ABCParetoB:                   0.95,
		XYZStableCV:                  0.25,
		XYZVariableCV:                0.5,
		ExpiryPolicy:                 ExpiryPolicyThreshold,
		ExpiryRiskDays:               60,
		SupplierRiskCriticalFraction: 0.2,
		TopNStockoutAlerts:           5,
		TopNExpiryAlerts:             3,
		Workers:                      4,
	}
}

// Validate checks every threshold before any SKU is evaluated.
func (c Config) Validate() error {
	invalid := func(format string, args ...interface{}) error {
		return errors.Wrapf(ErrInvalidConfiguration, format, args...)
	}

	for _, f := range []struct {
		name  string
		value float64
	}{
		{"service level z", c.ServiceLevelZ},
		{"abc high threshold", c.ABCHighThreshold},
		{"abc low threshold", c.ABCLowThreshold},
		{"abc pareto a", c.ABCParetoA},
		{"abc pareto b", c.ABCParetoB},
		{"xyz stable cv", c.XYZStableCV},
		{"xyz variable cv", c.XYZVariableCV},
		{"supplier risk fraction", c.SupplierRiskCriticalFraction},
	} {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return invalid("%s must be finite, got %v", f.name, f.value)
		}
	}

	if c.ServiceLevelZ < 0 {
		return invalid("service level z must be >= 0, got %v", c.ServiceLevelZ)
	}
	if c.PeriodLengthDays <= 0 {
		return invalid("period length must be > 0 days, got %d", c.PeriodLengthDays)
	}
	if c.EvaluationWindow < 2 {
		return invalid("evaluation window must be >= 2 periods, got %d", c.EvaluationWindow)
	}

	switch c.ABCPolicy {
	case ABCPolicyFixed:
		if c.ABCLowThreshold < 0 || c.ABCHighThreshold < c.ABCLowThreshold {
			return invalid("abc thresholds must satisfy 0 <= low <= high, got low=%v high=%v",
				c.ABCLowThreshold, c.ABCHighThreshold)
		}
	case ABCPolicyPareto:
		if c.ABCParetoA <= 0 || c.ABCParetoB < c.ABCParetoA || c.ABCParetoB > 1 {
			return invalid("pareto cut points must satisfy 0 < a <= b <= 1, got a=%v b=%v",
				c.ABCParetoA, c.ABCParetoB)
		}
	default:
		return invalid("unknown abc policy %q", c.ABCPolicy)
	}

	if c.XYZStableCV < 0 || c.XYZVariableCV < c.XYZStableCV {
		return invalid("xyz thresholds must satisfy 0 <= stable <= variable, got stable=%v variable=%v",
			c.XYZStableCV, c.XYZVariableCV)
	}

	switch c.ExpiryPolicy {
	case ExpiryPolicyThreshold, ExpiryPolicyConsumption:
	default:
		return invalid("unknown expiry policy %q", c.ExpiryPolicy)
	}
	if c.ExpiryRiskDays < 0 {
		return invalid("expiry risk days must be >= 0, got %d", c.ExpiryRiskDays)
	}

	if c.SupplierRiskCriticalFraction < 0 || c.SupplierRiskCriticalFraction > 1 {
		return invalid("supplier risk fraction must be within [0,1], got %v", c.SupplierRiskCriticalFraction)
	}
	if c.TopNStockoutAlerts < 0 || c.TopNExpiryAlerts < 0 {
		return invalid("alert limits must be >= 0, got stockout=%d expiry=%d",
			c.TopNStockoutAlerts, c.TopNExpiryAlerts)
	}

	return nil
}

// periodsPerYear is the number of history buckets in a year, e.g. 12 for 30 day periods.
func (c Config) periodsPerYear() float64 {
	return math.Round(365 / float64(c.PeriodLengthDays))
}
