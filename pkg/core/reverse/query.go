package reverse

import (
	"fmt"

	"dcf_valuation/pkg/core/assumption"
	"dcf_valuation/pkg/core/valuation"
)

// Query is a reverse-DCF request: every DCF input except revenue growth,
// plus the market data that fixes the target enterprise value.
type Query struct {
	CurrentPrice      float64 `json:"current_price" yaml:"current_price"`
	SharesOutstanding float64 `json:"shares_outstanding" yaml:"shares_outstanding"`
	NetDebt           float64 `json:"net_debt" yaml:"net_debt"` // Total debt minus cash

	InitialRevenue     float64   `json:"initial_revenue" yaml:"initial_revenue"`
	EBITMargins        []float64 `json:"ebit_margins" yaml:"ebit_margins"`
	TaxRate            float64   `json:"tax_rate" yaml:"tax_rate"`
	NWCPercent         float64   `json:"nwc_percent" yaml:"nwc_percent"`
	CapexPercent       float64   `json:"capex_percent" yaml:"capex_percent"`
	DiscountRate       float64   `json:"discount_rate" yaml:"discount_rate"`
	TerminalGrowthRate float64   `json:"terminal_growth_rate" yaml:"terminal_growth_rate"`
	Years              int       `json:"years" yaml:"years"`

	Range SearchRange `json:"search_range" yaml:"search_range"`
}

// NewQuery returns a query with the default horizon and search range.
func NewQuery() Query {
	return Query{Years: assumption.DefaultYears, Range: DefaultSearchRange()}
}

// TargetEV is market capitalisation plus net debt.
func (q Query) TargetEV() float64 {
	return q.CurrentPrice*q.SharesOutstanding + q.NetDebt
}

// Assumptions builds the forward assumption set for a flat growth rate g.
func (q Query) Assumptions(g float64) assumption.AssumptionSet {
	years := q.Years
	if years < 0 {
		years = 0
	}
	return assumption.AssumptionSet{
		RevenueGrowthRates: assumption.FlatRates(g, years),
		EBITMargins:        q.EBITMargins,
		TaxRate:            q.TaxRate,
		NWCPercent:         q.NWCPercent,
		CapexPercent:       q.CapexPercent,
		DiscountRate:       q.DiscountRate,
		TerminalGrowthRate: q.TerminalGrowthRate,
		InitialRevenue:     q.InitialRevenue,
		Years:              q.Years,
	}
}

// Validate checks the market inputs and the growth-independent DCF inputs.
func (q Query) Validate() error {
	market := []struct {
		name  string
		value float64
	}{
		{"current_price", q.CurrentPrice},
		{"shares_outstanding", q.SharesOutstanding},
		{"net_debt", q.NetDebt},
	}
	for _, m := range market {
		if !finite(m.value) {
			return fmt.Errorf("%w: %s is not finite", assumption.ErrInvalidInput, m.name)
		}
	}
	if !finite(q.TargetEV()) {
		return fmt.Errorf("%w: target enterprise value is not finite", assumption.ErrInvalidInput)
	}

	probe := q.Assumptions(0)
	if err := probe.Validate(); err != nil {
		return err
	}
	if q.DiscountRate <= q.TerminalGrowthRate {
		return fmt.Errorf("%w: discount rate %g <= terminal growth %g",
			valuation.ErrDivergentTerminalValue, q.DiscountRate, q.TerminalGrowthRate)
	}
	return nil
}

// Clone returns a deep copy of q.
func (q Query) Clone() Query {
	out := q
	out.EBITMargins = append([]float64(nil), q.EBITMargins...)
	return out
}
