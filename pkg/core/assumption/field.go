package assumption

import (
	"fmt"
	"strings"
)

// Field names a perturbable input of an AssumptionSet.
// `years` is structural and not part of the set.
type Field int

const (
	FieldRevenueGrowthRates Field = iota + 1
	FieldEBITMargins
	FieldTaxRate
	FieldNWCPercent
	FieldCapexPercent
	FieldDiscountRate
	FieldTerminalGrowthRate
	FieldInitialRevenue
)

var fieldNames = map[Field]string{
	FieldRevenueGrowthRates: "revenue_growth_rates",
	FieldEBITMargins:        "ebit_margins",
	FieldTaxRate:            "tax_rate",
	FieldNWCPercent:         "nwc_percent",
	FieldCapexPercent:       "capex_percent",
	FieldDiscountRate:       "discount_rate",
	FieldTerminalGrowthRate: "terminal_growth_rate",
	FieldInitialRevenue:     "initial_revenue",
}

// Fields lists every perturbable field in declaration order.
func Fields() []Field {
	return []Field{
		FieldRevenueGrowthRates,
		FieldEBITMargins,
		FieldTaxRate,
		FieldNWCPercent,
		FieldCapexPercent,
		FieldDiscountRate,
		FieldTerminalGrowthRate,
		FieldInitialRevenue,
	}
}

func (f Field) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Field(%d)", int(f))
}

// Valid reports whether f names a known field.
func (f Field) Valid() bool {
	_, ok := fieldNames[f]
	return ok
}

// IsSequence reports whether the field is a per-year rate sequence.
func (f Field) IsSequence() bool {
	return f == FieldRevenueGrowthRates || f == FieldEBITMargins
}

// ParseField maps a snake_case field name to its Field.
func ParseField(name string) (Field, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for f, n := range fieldNames {
		if n == key {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: %q is not a perturbable assumption", ErrUnknownVariable, name)
}

func (f Field) MarshalText() ([]byte, error) {
	if _, ok := fieldNames[f]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownVariable, int(f))
	}
	return []byte(f.String()), nil
}

func (f *Field) UnmarshalText(text []byte) error {
	parsed, err := ParseField(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Scale returns a copy of a with field f multiplied by factor. Sequence fields
// are scaled element-wise. No other field of the copy differs from a.
func (a AssumptionSet) Scale(f Field, factor float64) (AssumptionSet, error) {
	out := a.Clone()
	switch f {
	case FieldRevenueGrowthRates:
		scaleAll(out.RevenueGrowthRates, factor)
	case FieldEBITMargins:
		scaleAll(out.EBITMargins, factor)
	case FieldTaxRate:
		out.TaxRate *= factor
	case FieldNWCPercent:
		out.NWCPercent *= factor
	case FieldCapexPercent:
		out.CapexPercent *= factor
	case FieldDiscountRate:
		out.DiscountRate *= factor
	case FieldTerminalGrowthRate:
		out.TerminalGrowthRate *= factor
	case FieldInitialRevenue:
		out.InitialRevenue *= factor
	default:
		return AssumptionSet{}, fmt.Errorf("%w: %s", ErrUnknownVariable, f)
	}
	return out, nil
}

func scaleAll(seq []float64, factor float64) {
	for i := range seq {
		seq[i] *= factor
	}
}
