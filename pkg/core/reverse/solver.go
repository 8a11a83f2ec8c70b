// Package reverse solves the DCF backwards: given a market price it finds the
// flat revenue growth rate whose enterprise value best matches the market.
package reverse

import (
	"errors"
	"fmt"
	"math"

	"dcf_valuation/pkg/core/assumption"
	"dcf_valuation/pkg/core/projection"
	"dcf_valuation/pkg/core/valuation"
)

// ErrNoConvergence is returned when the search grid has no candidates.
var ErrNoConvergence = errors.New("no convergence")

// maxCandidates bounds the grid so a tiny step cannot stall the caller.
const maxCandidates = 10_000_000

// SearchRange is the half-open growth grid [MinGrowth, MaxGrowth) walked in Step increments.
type SearchRange struct {
	MinGrowth float64 `json:"min_growth" yaml:"min_growth"`
	MaxGrowth float64 `json:"max_growth" yaml:"max_growth"`
	Step      float64 `json:"step" yaml:"step"`
}

// DefaultSearchRange scans 0% to 50% growth in 0.1% steps.
func DefaultSearchRange() SearchRange {
	return SearchRange{MinGrowth: 0, MaxGrowth: 0.5, Step: 0.001}
}

// Len returns the number of grid candidates: ceil((max - min) / step), or 0
// when the range is empty.
func (r SearchRange) Len() (int, error) {
	if !finite(r.MinGrowth) || !finite(r.MaxGrowth) {
		return 0, fmt.Errorf("%w: search bounds must be finite", assumption.ErrInvalidInput)
	}
	if !finite(r.Step) || r.Step <= 0 {
		return 0, fmt.Errorf("%w: search step must be a positive number, got %g", assumption.ErrInvalidInput, r.Step)
	}
	span := math.Ceil((r.MaxGrowth - r.MinGrowth) / r.Step)
	if span <= 0 {
		return 0, nil
	}
	if span > maxCandidates {
		return 0, fmt.Errorf("%w: search grid has %.0f candidates, limit is %d", assumption.ErrInvalidInput, span, maxCandidates)
	}
	return int(span), nil
}

// At returns candidate k: MinGrowth + k×Step.
func (r SearchRange) At(k int) float64 {
	return r.MinGrowth + float64(k)*r.Step
}

// Solution describes the selected grid point.
type Solution struct {
	ImpliedGrowth   float64 `json:"implied_growth"`
	EnterpriseValue float64 `json:"enterprise_value"` // EV at the implied growth
	TargetEV        float64 `json:"target_ev"`
	Difference      float64 `json:"difference"` // |EV - target|
	Candidates      int     `json:"candidates"`
}

// SolveImpliedGrowth returns the grid growth rate whose enterprise value is
// closest to the market-implied target.
func SolveImpliedGrowth(q Query) (float64, error) {
	sol, err := Solve(q)
	if err != nil {
		return 0, err
	}
	return sol.ImpliedGrowth, nil
}

// Solve walks the search grid in ascending order and keeps the candidate with
// the smallest |EV - target|. Ties keep the earliest candidate. Candidates
// whose forecast overflows are skipped; if every one does, Solve fails with
// ErrNoConvergence.
func Solve(q Query) (Solution, error) {
	if err := q.Validate(); err != nil {
		return Solution{}, err
	}
	n, err := q.Range.Len()
	if err != nil {
		return Solution{}, err
	}
	if n == 0 {
		return Solution{}, fmt.Errorf("%w: empty growth grid [%g, %g) step %g",
			ErrNoConvergence, q.Range.MinGrowth, q.Range.MaxGrowth, q.Range.Step)
	}

	target := q.TargetEV()
	best := Solution{TargetEV: target, Difference: math.Inf(1), Candidates: n}
	found := false
	for k := 0; k < n; k++ {
		g := q.Range.At(k)
		res, err := valuation.Value(q.Assumptions(g))
		if errors.Is(err, projection.ErrOverflow) {
			continue
		}
		if err != nil {
			return Solution{}, fmt.Errorf("growth %g: %w", g, err)
		}
		diff := math.Abs(res.EnterpriseValue - target)
		if diff < best.Difference {
			best.ImpliedGrowth = g
			best.EnterpriseValue = res.EnterpriseValue
			best.Difference = diff
			found = true
		}
	}
	if !found {
		return Solution{}, fmt.Errorf("%w: no finite enterprise value on the grid", ErrNoConvergence)
	}
	return best, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
