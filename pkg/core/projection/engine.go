// Package projection builds the operating forecast (revenue through free
// cash flow) that the valuation engine discounts.
package projection

import (
	"fmt"
	"math"

	"dcf_valuation/pkg/core/assumption"
)

// ErrOverflow marks finite inputs whose forecast leaves float64 range. It
// wraps assumption.ErrInvalidInput.
var ErrOverflow = fmt.Errorf("%w: projection overflowed", assumption.ErrInvalidInput)

// Project builds the yearly revenue, EBIT, NOPAT, NWC change, capex and FCF
// series for a.
//
// FORMULAS (i = 0..years-1):
//
//	Revenue_i   = Revenue_{i-1} × (1 + g_i)        Revenue_{-1} = initial revenue
//	EBIT_i      = Revenue_i × margin_i
//	NOPAT_i     = EBIT_i × (1 - tax)
//	ΔNWC_i      = NWC%×Revenue_i - NWC%×Revenue_{i-1}
//	Capex_i     = Revenue_i × capex%
//	FCF_i       = NOPAT_i - ΔNWC_i - Capex_i
//
// g_i and margin_i read their sequence at min(i, len-1). A series that
// leaves float64 range fails with ErrOverflow.
func Project(a assumption.AssumptionSet) (Result, error) {
	if err := a.Validate(); err != nil {
		return Result{}, err
	}

	n := a.Years
	res := Result{
		Revenue:   make([]float64, n),
		EBIT:      make([]float64, n),
		NOPAT:     make([]float64, n),
		NWCChange: make([]float64, n),
		Capex:     make([]float64, n),
		FCF:       make([]float64, n),
	}

	// NWC level has n+1 points; level[0] is the opening balance.
	nwcLevel := make([]float64, n+1)
	nwcLevel[0] = a.InitialRevenue * a.NWCPercent

	prevRevenue := a.InitialRevenue
	for i := 0; i < n; i++ {
		revenue := prevRevenue * (1 + a.GrowthAt(i))
		ebit := revenue * a.MarginAt(i)
		nopat := ebit * (1 - a.TaxRate)

		nwcLevel[i+1] = revenue * a.NWCPercent
		nwcChange := nwcLevel[i+1] - nwcLevel[i]

		capex := revenue * a.CapexPercent

		res.Revenue[i] = revenue
		res.EBIT[i] = ebit
		res.NOPAT[i] = nopat
		res.NWCChange[i] = nwcChange
		res.Capex[i] = capex
		res.FCF[i] = nopat - nwcChange - capex

		if !finite(revenue) || !finite(nwcChange) || !finite(res.FCF[i]) {
			return Result{}, fmt.Errorf("%w in year %d", ErrOverflow, i+1)
		}

		prevRevenue = revenue
	}

	return res, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
