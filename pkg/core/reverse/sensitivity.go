package reverse

import (
	"fmt"

	"dcf_valuation/pkg/core/assumption"
	"dcf_valuation/pkg/core/sweep"
)

// GrowthPoint is one row of a reverse sensitivity table.
type GrowthPoint struct {
	Perturbation  float64 `json:"perturbation" csv:"change_in_input"`
	ImpliedGrowth float64 `json:"implied_growth" csv:"implied_growth"`
	GrowthDelta   float64 `json:"growth_delta" csv:"growth_delta"` // implied - base implied
}

// Spec names one query field and the perturbations to apply to it.
type Spec struct {
	Variable      QueryField `json:"variable"`
	Perturbations []float64  `json:"perturbations"`
}

// Table is the result of one Spec.
type Table struct {
	Variable   QueryField    `json:"variable"`
	BaseGrowth float64       `json:"base_growth"`
	Points     []GrowthPoint `json:"points"`
}

// RunSensitivity scales `field` of base by (1+p) for each perturbation and
// re-solves the implied growth. The base solve happens once, up front.
func RunSensitivity(base Query, field QueryField, perturbations []float64, opts ...sweep.Option) ([]GrowthPoint, error) {
	t, err := runSensitivity(base, field, perturbations, sweep.Apply(opts))
	if err != nil {
		return nil, err
	}
	return t.Points, nil
}

// RunSensitivityAll runs every spec against the same base query.
func RunSensitivityAll(base Query, specs []Spec, opts ...sweep.Option) ([]Table, error) {
	o := sweep.Apply(opts)
	tables := make([]Table, 0, len(specs))
	for _, s := range specs {
		t, err := runSensitivity(base, s.Variable, s.Perturbations, o)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

func runSensitivity(base Query, field QueryField, perturbations []float64, o sweep.Options) (Table, error) {
	if !field.Valid() {
		return Table{}, fmt.Errorf("%w: %s", assumption.ErrUnknownVariable, field)
	}

	baseGrowth, err := SolveImpliedGrowth(base)
	if err != nil {
		return Table{}, fmt.Errorf("base case: %w", err)
	}

	points, err := sweep.Each(perturbations, o, func(p float64) (GrowthPoint, error) {
		modified, err := base.Scale(field, 1+p)
		if err != nil {
			return GrowthPoint{}, err
		}
		g, err := SolveImpliedGrowth(modified)
		if err != nil {
			return GrowthPoint{}, fmt.Errorf("%s %+.1f%%: %w", field, p*100, err)
		}
		o.Logger.Debugw("reverse sensitivity point",
			"variable", field.String(),
			"perturbation", p,
			"implied_growth", g,
		)
		return GrowthPoint{
			Perturbation:  p,
			ImpliedGrowth: g,
			GrowthDelta:   g - baseGrowth,
		}, nil
	})
	if err != nil {
		return Table{}, err
	}

	return Table{Variable: field, BaseGrowth: baseGrowth, Points: points}, nil
}
