package config

import (
	"path/filepath"
	"testing"

	"dcf_valuation/pkg/core/assumption"
	"dcf_valuation/pkg/core/reverse"
	"dcf_valuation/pkg/core/valuation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlScenario = `
name: yaml case
assumptions:
  revenue_growth_rates: [0.15, 0.12, 0.10, 0.08, 0.06]
  ebit_margins: [0.25, 0.26, 0.27, 0.27, 0.28]
  tax_rate: 0.25
  nwc_percent: 0.12
  capex_percent: 0.08
  discount_rate: 0.10
  terminal_growth_rate: 0.02
  initial_revenue: 1000000
market:
  current_price: 2
  shares_outstanding: 1000000
  net_debt: 0
`

func TestDecodeScenario_YAMLDefaultsYears(t *testing.T) {
	s, err := DecodeScenario([]byte(yamlScenario), ".yaml")
	require.NoError(t, err)
	assert.Equal(t, "yaml case", s.Name)
	assert.Equal(t, assumption.DefaultYears, s.Assumptions.Years)

	res, err := valuation.Value(s.Assumptions)
	require.NoError(t, err)
	assert.InEpsilon(t, 2_148_410.7062359136, res.EnterpriseValue, 1e-9)
}

func TestDecodeScenario_LenientJSON(t *testing.T) {
	doc := `{
  // hand-edited
  name: "json case",
  assumptions: {
    revenue_growth_rates: [0.05],
    ebit_margins: [0.2],
    tax_rate: 0.25,
    nwc_percent: 0.1,
    capex_percent: 0.05,
    discount_rate: 0.1,
    terminal_growth_rate: 0.02,
    initial_revenue: 1000000,
  },
}`
	s, err := DecodeScenario([]byte(doc), ".json")
	require.NoError(t, err)
	assert.Equal(t, "json case", s.Name)
	assert.Equal(t, []float64{0.05}, s.Assumptions.RevenueGrowthRates)
	assert.Equal(t, 5, s.Assumptions.Years)
}

func TestDecodeScenario_WACCOverridesDiscountRate(t *testing.T) {
	doc := `{"assumptions": {"discount_rate": 0.5},
	"wacc": {"unlevered_beta": 1, "risk_free_rate": 0.04, "market_risk_premium": 0.05,
	"pre_tax_cost_of_debt": 0.06, "tax_rate": 0.25, "debt_to_equity": 0.5}}`
	s, err := DecodeScenario([]byte(doc), "json")
	require.NoError(t, err)
	assert.InDelta(t, 0.10875*2/3+0.045/3, s.Assumptions.DiscountRate, 1e-12)
}

func TestDecodeScenario_BadWACC(t *testing.T) {
	doc := `{"wacc": {"debt_to_equity": -1}}`
	_, err := DecodeScenario([]byte(doc), "json")
	require.ErrorIs(t, err, assumption.ErrInvalidInput)
}

func TestDecodeScenario_Garbage(t *testing.T) {
	_, err := DecodeScenario([]byte("assumptions: [unclosed"), "yaml")
	require.ErrorIs(t, err, assumption.ErrInvalidInput)
}

func TestScenario_ReverseQuery(t *testing.T) {
	s, err := DecodeScenario([]byte(yamlScenario), "yml")
	require.NoError(t, err)

	q, err := s.ReverseQuery(reverse.DefaultSearchRange())
	require.NoError(t, err)
	assert.Equal(t, 2_000_000.0, q.TargetEV())
	assert.Equal(t, reverse.DefaultSearchRange(), q.Range)

	g, err := reverse.SolveImpliedGrowth(q)
	require.NoError(t, err)
	assert.InDelta(t, 0.091, g, 1e-9)

	s.Market = nil
	_, err = s.ReverseQuery(reverse.DefaultSearchRange())
	require.ErrorIs(t, err, assumption.ErrInvalidInput)
}

func TestScenario_Bridge(t *testing.T) {
	s, err := DecodeScenario([]byte(yamlScenario), "yaml")
	require.NoError(t, err)

	b, err := s.Bridge(3_000_000)
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, 3.0, b.SharePrice)

	s.Market = nil
	b, err = s.Bridge(3_000_000)
	require.NoError(t, err)
	assert.Nil(t, b)
}

func TestLoadScenario_ShippedReference(t *testing.T) {
	s, err := LoadScenario(filepath.Join("..", "..", "config", "scenarios", "reference.yaml"))
	require.NoError(t, err)
	require.NotNil(t, s.MNA)
	rows, err := s.MNA.Model().FootballField(s.MNA.Transactions)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}
