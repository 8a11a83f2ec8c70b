// Package sensitivity re-values a DCF while scaling one assumption at a time.
package sensitivity

import (
	"fmt"

	"dcf_valuation/pkg/core/assumption"
	"dcf_valuation/pkg/core/sweep"
	"dcf_valuation/pkg/core/valuation"
)

// Point is one row of a sensitivity table.
type Point struct {
	Perturbation    float64 `json:"perturbation" csv:"change_in_input"`
	EnterpriseValue float64 `json:"enterprise_value" csv:"enterprise_value"`
	ValueChange     float64 `json:"value_change" csv:"value_change"` // (EV - base EV) / base EV
}

// Spec names one variable and the perturbations to apply to it.
type Spec struct {
	Variable      assumption.Field `json:"variable"`
	Perturbations []float64        `json:"perturbations"`
}

// Table is the result of one Spec.
type Table struct {
	Variable            assumption.Field `json:"variable"`
	BaseEnterpriseValue float64          `json:"base_enterprise_value"`
	Points              []Point          `json:"points"`
}

// Run scales `field` of base by (1+p) for each p in perturbations and
// re-values the DCF. Points are returned in the order of perturbations.
func Run(base assumption.AssumptionSet, field assumption.Field, perturbations []float64, opts ...sweep.Option) ([]Point, error) {
	t, err := run(base, field, perturbations, sweep.Apply(opts))
	if err != nil {
		return nil, err
	}
	return t.Points, nil
}

// RunAll runs every spec against the same base case.
func RunAll(base assumption.AssumptionSet, specs []Spec, opts ...sweep.Option) ([]Table, error) {
	o := sweep.Apply(opts)
	tables := make([]Table, 0, len(specs))
	for _, s := range specs {
		t, err := run(base, s.Variable, s.Perturbations, o)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

func run(base assumption.AssumptionSet, field assumption.Field, perturbations []float64, o sweep.Options) (Table, error) {
	if !field.Valid() {
		return Table{}, fmt.Errorf("%w: %s", assumption.ErrUnknownVariable, field)
	}

	baseRes, err := valuation.Value(base)
	if err != nil {
		return Table{}, fmt.Errorf("base case: %w", err)
	}
	baseEV := baseRes.EnterpriseValue
	if baseEV == 0 {
		return Table{}, fmt.Errorf("%w: base enterprise value is zero, relative change is undefined", assumption.ErrInvalidInput)
	}

	points, err := sweep.Each(perturbations, o, func(p float64) (Point, error) {
		modified, err := base.Scale(field, 1+p)
		if err != nil {
			return Point{}, err
		}
		res, err := valuation.Value(modified)
		if err != nil {
			return Point{}, fmt.Errorf("%s %+.1f%%: %w", field, p*100, err)
		}
		pt := Point{
			Perturbation:    p,
			EnterpriseValue: res.EnterpriseValue,
			ValueChange:     (res.EnterpriseValue - baseEV) / baseEV,
		}
		o.Logger.Debugw("sensitivity point",
			"variable", field.String(),
			"perturbation", p,
			"enterprise_value", pt.EnterpriseValue,
		)
		return pt, nil
	})
	if err != nil {
		return Table{}, err
	}

	return Table{Variable: field, BaseEnterpriseValue: baseEV, Points: points}, nil
}
