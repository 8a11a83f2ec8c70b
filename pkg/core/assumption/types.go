// Package assumption implements the AssumptionSet that drives the DCF model.
// Rate sequences are clamped: a sequence shorter than the forecast horizon
// reuses its last entry for every remaining year.
package assumption

import (
	"fmt"
	"math"
)

// DefaultYears is the forecast horizon used when a scenario omits `years`.
const DefaultYears = 5

// =============================================================================
// ASSUMPTION SET
// =============================================================================

// AssumptionSet holds every input of a single unlevered-FCF DCF run.
// All rates are fractions (0.10 == 10%).
type AssumptionSet struct {
	RevenueGrowthRates []float64 `json:"revenue_growth_rates" yaml:"revenue_growth_rates"`
	EBITMargins        []float64 `json:"ebit_margins" yaml:"ebit_margins"`
	TaxRate            float64   `json:"tax_rate" yaml:"tax_rate"`
	NWCPercent         float64   `json:"nwc_percent" yaml:"nwc_percent"`     // Net working capital as % of revenue
	CapexPercent       float64   `json:"capex_percent" yaml:"capex_percent"` // Capex as % of revenue
	DiscountRate       float64   `json:"discount_rate" yaml:"discount_rate"` // WACC or required return
	TerminalGrowthRate float64   `json:"terminal_growth_rate" yaml:"terminal_growth_rate"`
	InitialRevenue     float64   `json:"initial_revenue" yaml:"initial_revenue"`
	Years              int       `json:"years" yaml:"years"`
}

// NewAssumptionSet returns an empty set with the default forecast horizon.
// Decoders unmarshal on top of it so an omitted `years` stays at the default
// while an explicit zero is still rejected by Validate.
func NewAssumptionSet() AssumptionSet {
	return AssumptionSet{Years: DefaultYears}
}

// Validate checks the structural preconditions of the projection engine.
// Divergence of the terminal value is checked by the valuation engine.
func (a AssumptionSet) Validate() error {
	if a.Years < 1 {
		return fmt.Errorf("%w: years must be >= 1, got %d", ErrInvalidInput, a.Years)
	}
	if len(a.RevenueGrowthRates) == 0 {
		return fmt.Errorf("%w: revenue_growth_rates is empty", ErrInvalidInput)
	}
	if len(a.EBITMargins) == 0 {
		return fmt.Errorf("%w: ebit_margins is empty", ErrInvalidInput)
	}
	for i, g := range a.RevenueGrowthRates {
		if !isFinite(g) {
			return fmt.Errorf("%w: revenue_growth_rates[%d] is not finite", ErrInvalidInput, i)
		}
	}
	for i, m := range a.EBITMargins {
		if !isFinite(m) {
			return fmt.Errorf("%w: ebit_margins[%d] is not finite", ErrInvalidInput, i)
		}
	}

	scalars := []struct {
		name  string
		value float64
	}{
		{"tax_rate", a.TaxRate},
		{"nwc_percent", a.NWCPercent},
		{"capex_percent", a.CapexPercent},
		{"discount_rate", a.DiscountRate},
		{"terminal_growth_rate", a.TerminalGrowthRate},
		{"initial_revenue", a.InitialRevenue},
	}
	for _, s := range scalars {
		if !isFinite(s.value) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidInput, s.name)
		}
	}
	if a.InitialRevenue <= 0 {
		return fmt.Errorf("%w: initial_revenue must be positive, got %g", ErrInvalidInput, a.InitialRevenue)
	}
	return nil
}

// Clone returns a deep copy whose rate slices share no memory with a.
func (a AssumptionSet) Clone() AssumptionSet {
	out := a
	out.RevenueGrowthRates = append([]float64(nil), a.RevenueGrowthRates...)
	out.EBITMargins = append([]float64(nil), a.EBITMargins...)
	return out
}

// GrowthAt returns the revenue growth rate for forecast year index i (0-based).
func (a AssumptionSet) GrowthAt(i int) float64 {
	return RateAt(a.RevenueGrowthRates, i)
}

// MarginAt returns the EBIT margin for forecast year index i (0-based).
func (a AssumptionSet) MarginAt(i int) float64 {
	return RateAt(a.EBITMargins, i)
}

// RateAt reads seq at min(i, len(seq)-1). The caller guarantees seq is non-empty.
func RateAt(seq []float64, i int) float64 {
	if i >= len(seq) {
		i = len(seq) - 1
	}
	return seq[i]
}

// FlatRates returns a sequence of `years` copies of rate.
func FlatRates(rate float64, years int) []float64 {
	out := make([]float64, years)
	for i := range out {
		out[i] = rate
	}
	return out
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
