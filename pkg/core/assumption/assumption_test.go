package assumption

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func referenceSet() AssumptionSet {
	return AssumptionSet{
		RevenueGrowthRates: []float64{0.15, 0.12, 0.10, 0.08, 0.06},
		EBITMargins:        []float64{0.25, 0.26, 0.27, 0.27, 0.28},
		TaxRate:            0.25,
		NWCPercent:         0.12,
		CapexPercent:       0.08,
		DiscountRate:       0.10,
		TerminalGrowthRate: 0.02,
		InitialRevenue:     1_000_000,
		Years:              5,
	}
}

func TestNewAssumptionSet(t *testing.T) {
	as := NewAssumptionSet()
	if as.Years != DefaultYears {
		t.Errorf("expected default years %d, got %d", DefaultYears, as.Years)
	}
}

func TestAssumptionSet_Validate(t *testing.T) {
	require.NoError(t, referenceSet().Validate())

	cases := map[string]func(*AssumptionSet){
		"zero years":         func(a *AssumptionSet) { a.Years = 0 },
		"negative years":     func(a *AssumptionSet) { a.Years = -3 },
		"empty growth":       func(a *AssumptionSet) { a.RevenueGrowthRates = nil },
		"empty margins":      func(a *AssumptionSet) { a.EBITMargins = []float64{} },
		"nan growth":         func(a *AssumptionSet) { a.RevenueGrowthRates[2] = math.NaN() },
		"inf margin":         func(a *AssumptionSet) { a.EBITMargins[0] = math.Inf(1) },
		"nan tax":            func(a *AssumptionSet) { a.TaxRate = math.NaN() },
		"inf discount":       func(a *AssumptionSet) { a.DiscountRate = math.Inf(-1) },
		"zero revenue":       func(a *AssumptionSet) { a.InitialRevenue = 0 },
		"negative revenue":   func(a *AssumptionSet) { a.InitialRevenue = -10 },
		"nan terminal":       func(a *AssumptionSet) { a.TerminalGrowthRate = math.NaN() },
		"inf capex":          func(a *AssumptionSet) { a.CapexPercent = math.Inf(1) },
		"nan nwc percentage": func(a *AssumptionSet) { a.NWCPercent = math.NaN() },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			as := referenceSet()
			mutate(&as)
			err := as.Validate()
			require.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestRateAt_ClampsToLastEntry(t *testing.T) {
	seq := []float64{0.1, 0.2}
	got := []float64{RateAt(seq, 0), RateAt(seq, 1), RateAt(seq, 2), RateAt(seq, 7)}
	want := []float64{0.1, 0.2, 0.2, 0.2}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("clamped reads mismatch (-want +got):\n%s", diff)
	}
}

func TestAssumptionSet_Clone(t *testing.T) {
	orig := referenceSet()
	cp := orig.Clone()
	cp.RevenueGrowthRates[0] = 0.99
	cp.EBITMargins[0] = 0.99

	require.Equal(t, 0.15, orig.RevenueGrowthRates[0])
	require.Equal(t, 0.25, orig.EBITMargins[0])
}

func TestAssumptionSet_Scale(t *testing.T) {
	t.Run("scalar field", func(t *testing.T) {
		base := referenceSet()
		out, err := base.Scale(FieldDiscountRate, 1.2)
		require.NoError(t, err)
		require.InDelta(t, 0.12, out.DiscountRate, 1e-12)

		// every other field is untouched
		out.DiscountRate = base.DiscountRate
		require.Empty(t, cmp.Diff(base, out))
	})

	t.Run("sequence field scales every element", func(t *testing.T) {
		base := referenceSet()
		out, err := base.Scale(FieldEBITMargins, 0.5)
		require.NoError(t, err)
		for i, m := range base.EBITMargins {
			require.InDelta(t, m*0.5, out.EBITMargins[i], 1e-12)
		}
		require.Equal(t, 0.25, base.EBITMargins[0], "base must not be mutated")
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := referenceSet().Scale(Field(99), 1.1)
		require.ErrorIs(t, err, ErrUnknownVariable)
	})
}

func TestParseField(t *testing.T) {
	for _, f := range Fields() {
		parsed, err := ParseField(f.String())
		require.NoError(t, err)
		require.Equal(t, f, parsed)
	}

	parsed, err := ParseField("  Discount_Rate ")
	require.NoError(t, err)
	require.Equal(t, FieldDiscountRate, parsed)

	_, err = ParseField("years")
	if !errors.Is(err, ErrUnknownVariable) {
		t.Fatalf("expected ErrUnknownVariable for years, got %v", err)
	}
	_, err = ParseField("discount_rte")
	require.ErrorIs(t, err, ErrUnknownVariable)
}

func TestField_JSON(t *testing.T) {
	var req struct {
		Variable Field `json:"variable"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"variable":"terminal_growth_rate"}`), &req))
	require.Equal(t, FieldTerminalGrowthRate, req.Variable)

	err := json.Unmarshal([]byte(`{"variable":"beta"}`), &req)
	require.ErrorIs(t, err, ErrUnknownVariable)

	out, err := json.Marshal(req)
	require.NoError(t, err)
	require.JSONEq(t, `{"variable":"terminal_growth_rate"}`, string(out))
}

func TestField_IsSequence(t *testing.T) {
	require.True(t, FieldRevenueGrowthRates.IsSequence())
	require.True(t, FieldEBITMargins.IsSequence())
	require.False(t, FieldTaxRate.IsSequence())
}

func TestFlatRates(t *testing.T) {
	require.Equal(t, []float64{0.03, 0.03, 0.03}, FlatRates(0.03, 3))
	require.Empty(t, FlatRates(0.03, 0))
}
