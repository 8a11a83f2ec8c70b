package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dcf_valuation/pkg/core/assumption"
	"dcf_valuation/pkg/core/mna"
	"dcf_valuation/pkg/core/reverse"
	"dcf_valuation/pkg/core/utils"
	"dcf_valuation/pkg/core/valuation"

	"gopkg.in/yaml.v2"
)

// Scenario is a valuation input document. Only Assumptions is required;
// the other blocks enable the equity bridge, reverse DCF and M&A commands.
type Scenario struct {
	Name        string                   `json:"name" yaml:"name"`
	Assumptions assumption.AssumptionSet `json:"assumptions" yaml:"assumptions"`

	// When set, the discount rate is derived from it and replaces
	// assumptions.discount_rate.
	WACC *valuation.WACCInput `json:"wacc,omitempty" yaml:"wacc,omitempty"`

	Market      *Market              `json:"market,omitempty" yaml:"market,omitempty"`
	SearchRange *reverse.SearchRange `json:"search_range,omitempty" yaml:"search_range,omitempty"`
	MNA         *MNA                 `json:"mna,omitempty" yaml:"mna,omitempty"`
}

type Market struct {
	CurrentPrice      float64 `json:"current_price" yaml:"current_price"`
	SharesOutstanding float64 `json:"shares_outstanding" yaml:"shares_outstanding"`
	NetDebt           float64 `json:"net_debt" yaml:"net_debt"`
}

type MNA struct {
	Target       mna.Target        `json:"target" yaml:"target"`
	Comparables  []mna.Comparable  `json:"comparables" yaml:"comparables"`
	Synergies    *mna.Synergies    `json:"synergies,omitempty" yaml:"synergies,omitempty"`
	Transactions []mna.Transaction `json:"transactions" yaml:"transactions"`
}

func (m MNA) Model() mna.Model {
	return mna.Model{Target: m.Target, Comparables: m.Comparables, Synergies: m.Synergies}
}

// NewScenario returns an empty scenario carrying the default horizon.
func NewScenario() Scenario {
	return Scenario{Assumptions: assumption.NewAssumptionSet()}
}

// LoadScenario reads and decodes a scenario file; the extension picks the decoder.
func LoadScenario(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("failed to read scenario: %w", err)
	}
	s, err := DecodeScenario(data, filepath.Ext(path))
	if err != nil {
		return Scenario{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// DecodeScenario parses YAML when format is "yaml"/"yml" (with or without
// a leading dot) and anything else with the lenient JSON chain.
func DecodeScenario(data []byte, format string) (Scenario, error) {
	s := NewScenario()
	switch strings.TrimPrefix(strings.ToLower(format), ".") {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &s); err != nil {
			return Scenario{}, fmt.Errorf("%w: %v", assumption.ErrInvalidInput, err)
		}
	default:
		if _, err := utils.SmartParse(string(data), &s); err != nil {
			return Scenario{}, fmt.Errorf("%w: %v", assumption.ErrInvalidInput, err)
		}
	}
	if err := s.Resolve(); err != nil {
		return Scenario{}, err
	}
	return s, nil
}

// Resolve derives the discount rate from the WACC block, if any.
func (s *Scenario) Resolve() error {
	if s.WACC == nil {
		return nil
	}
	res, err := valuation.CalculateWACC(*s.WACC)
	if err != nil {
		return fmt.Errorf("wacc: %w", err)
	}
	s.Assumptions.DiscountRate = res.WACC
	return nil
}

// ReverseQuery builds a reverse-DCF query from the assumptions and market
// block. fallback is used when the scenario has no search_range.
func (s Scenario) ReverseQuery(fallback reverse.SearchRange) (reverse.Query, error) {
	if s.Market == nil {
		return reverse.Query{}, fmt.Errorf("%w: scenario has no market block", assumption.ErrInvalidInput)
	}
	a := s.Assumptions
	q := reverse.Query{
		CurrentPrice:       s.Market.CurrentPrice,
		SharesOutstanding:  s.Market.SharesOutstanding,
		NetDebt:            s.Market.NetDebt,
		InitialRevenue:     a.InitialRevenue,
		EBITMargins:        append([]float64(nil), a.EBITMargins...),
		TaxRate:            a.TaxRate,
		NWCPercent:         a.NWCPercent,
		CapexPercent:       a.CapexPercent,
		DiscountRate:       a.DiscountRate,
		TerminalGrowthRate: a.TerminalGrowthRate,
		Years:              a.Years,
		Range:              fallback,
	}
	if s.SearchRange != nil {
		q.Range = *s.SearchRange
	}
	return q, nil
}

// Bridge converts ev to equity when the scenario carries market data with
// a share count. It returns nil otherwise.
func (s Scenario) Bridge(ev float64) (*valuation.EquityBridge, error) {
	if s.Market == nil || s.Market.SharesOutstanding == 0 {
		return nil, nil
	}
	b, err := valuation.BridgeToEquity(ev, s.Market.NetDebt, s.Market.SharesOutstanding)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
