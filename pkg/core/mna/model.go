// Package mna values an acquisition target several ways (DCF on free cash
// flow, trading multiples, precedent transactions, synergies) and lays the
// results out as a football field.
package mna

import (
	"errors"
	"fmt"
	"math"

	"dcf_valuation/pkg/core/assumption"
	"dcf_valuation/pkg/core/valuation"

	"github.com/montanaflynn/stats"
)

// ErrNoTransactions is returned by PrecedentTransactions on an empty list.
var ErrNoTransactions = errors.New("no precedent transactions")

// Target holds the acquisition target's current metrics.
type Target struct {
	FCF      float64 `json:"fcf" yaml:"fcf"`
	EBITDA   float64 `json:"ebitda" yaml:"ebitda"`
	Earnings float64 `json:"earnings" yaml:"earnings"`
	Revenue  float64 `json:"revenue" yaml:"revenue"`
	NetDebt  float64 `json:"net_debt" yaml:"net_debt"`
}

// Comparable is a listed peer. Price is the peer's market capitalisation.
type Comparable struct {
	Name     string  `json:"name" yaml:"name" csv:"name"`
	EV       float64 `json:"ev" yaml:"ev" csv:"ev"`
	EBITDA   float64 `json:"ebitda" yaml:"ebitda" csv:"ebitda"`
	Price    float64 `json:"price" yaml:"price" csv:"price"`
	Earnings float64 `json:"earnings" yaml:"earnings" csv:"earnings"`
}

// Transaction is a completed deal for a similar business.
type Transaction struct {
	Name    string  `json:"name" yaml:"name" csv:"name"`
	EV      float64 `json:"ev" yaml:"ev" csv:"ev"`
	EBITDA  float64 `json:"ebitda" yaml:"ebitda" csv:"ebitda"`
	Revenue float64 `json:"revenue" yaml:"revenue" csv:"revenue"`
}

// Synergies are annual run-rate benefits and one-off costs of the deal.
type Synergies struct {
	CostSavings         float64 `json:"cost_savings" yaml:"cost_savings"`
	RevenueSynergies    float64 `json:"revenue_synergies" yaml:"revenue_synergies"`
	ImplementationCosts float64 `json:"implementation_costs" yaml:"implementation_costs"`
}

func (s *Synergies) empty() bool {
	return s == nil || *s == (Synergies{})
}

// Model bundles the target with its peer set.
type Model struct {
	Target      Target       `json:"target" yaml:"target"`
	Comparables []Comparable `json:"comparables" yaml:"comparables"`
	Synergies   *Synergies   `json:"synergies,omitempty" yaml:"synergies,omitempty"`
}

// DCFResult is the output of Model.DCFValuation.
type DCFResult struct {
	ProjectedFCF    []float64 `json:"projected_fcf"`
	TerminalValue   float64   `json:"terminal_value"`
	EnterpriseValue float64   `json:"enterprise_value"`
	EquityValue     float64   `json:"equity_value"`
}

// DCFValuation grows the target's FCF at growth for years periods, caps it
// with a Gordon terminal value and discounts at wacc.
func (m Model) DCFValuation(wacc, growth float64, years int) (DCFResult, error) {
	if years < 1 {
		return DCFResult{}, fmt.Errorf("%w: forecast years must be at least 1, got %d", assumption.ErrInvalidInput, years)
	}
	if !finite(wacc) || !finite(growth) || !finite(m.Target.FCF) || !finite(m.Target.NetDebt) {
		return DCFResult{}, fmt.Errorf("%w: dcf inputs must be finite", assumption.ErrInvalidInput)
	}

	projected := make([]float64, years)
	fcf := m.Target.FCF
	for i := range projected {
		fcf *= 1 + growth
		projected[i] = fcf
	}

	tv, err := valuation.GordonTerminalValue(projected[years-1]*(1+growth), wacc, growth)
	if err != nil {
		return DCFResult{}, err
	}

	factors := valuation.DiscountFactors(wacc, years)
	var ev float64
	for i, cf := range projected {
		ev += cf * factors[i]
	}
	ev += tv * factors[years-1]
	if !finite(ev) {
		return DCFResult{}, fmt.Errorf("%w: dcf enterprise value is not finite", assumption.ErrInvalidInput)
	}

	return DCFResult{
		ProjectedFCF:    projected,
		TerminalValue:   tv,
		EnterpriseValue: ev,
		EquityValue:     ev - m.Target.NetDebt,
	}, nil
}

// TradingResult is the output of Model.TradingMultiples.
type TradingResult struct {
	EVEBITDAMultiple float64 `json:"ev_ebitda_multiple"`
	PEMultiple       float64 `json:"pe_multiple"`
	EVFromEBITDA     float64 `json:"ev_from_ebitda"`
	EquityFromPE     float64 `json:"equity_from_pe"`
}

// TradingMultiples applies the median peer EV/EBITDA and P/E to the target.
func (m Model) TradingMultiples() (TradingResult, error) {
	if len(m.Comparables) == 0 {
		return TradingResult{}, fmt.Errorf("%w: no comparable companies", assumption.ErrInvalidInput)
	}
	evEBITDA := make([]float64, 0, len(m.Comparables))
	pe := make([]float64, 0, len(m.Comparables))
	for _, c := range m.Comparables {
		if c.EBITDA == 0 || c.Earnings == 0 {
			return TradingResult{}, fmt.Errorf("%w: comparable %q has zero ebitda or earnings", assumption.ErrInvalidInput, c.Name)
		}
		evEBITDA = append(evEBITDA, c.EV/c.EBITDA)
		pe = append(pe, c.Price/c.Earnings)
	}

	evMult, err := stats.Median(evEBITDA)
	if err != nil {
		return TradingResult{}, fmt.Errorf("failed to compute ev/ebitda median: %w", err)
	}
	peMult, err := stats.Median(pe)
	if err != nil {
		return TradingResult{}, fmt.Errorf("failed to compute p/e median: %w", err)
	}

	return TradingResult{
		EVEBITDAMultiple: evMult,
		PEMultiple:       peMult,
		EVFromEBITDA:     m.Target.EBITDA * evMult,
		EquityFromPE:     m.Target.Earnings * peMult,
	}, nil
}

// PrecedentResult is the output of Model.PrecedentTransactions.
type PrecedentResult struct {
	EVEBITDAMultiple  float64 `json:"transaction_ev_ebitda"`
	EVRevenueMultiple float64 `json:"transaction_ev_revenue"`
	EVFromEBITDA      float64 `json:"ev_from_ebitda"`
	EVFromRevenue     float64 `json:"ev_from_revenue"`
}

// PrecedentTransactions applies median deal multiples to the target.
func (m Model) PrecedentTransactions(txns []Transaction) (PrecedentResult, error) {
	if len(txns) == 0 {
		return PrecedentResult{}, ErrNoTransactions
	}
	evEBITDA := make([]float64, 0, len(txns))
	evRevenue := make([]float64, 0, len(txns))
	for _, t := range txns {
		if t.EBITDA == 0 || t.Revenue == 0 {
			return PrecedentResult{}, fmt.Errorf("%w: transaction %q has zero ebitda or revenue", assumption.ErrInvalidInput, t.Name)
		}
		evEBITDA = append(evEBITDA, t.EV/t.EBITDA)
		evRevenue = append(evRevenue, t.EV/t.Revenue)
	}

	ebitdaMult, err := stats.Median(evEBITDA)
	if err != nil {
		return PrecedentResult{}, fmt.Errorf("failed to compute ev/ebitda median: %w", err)
	}
	revenueMult, err := stats.Median(evRevenue)
	if err != nil {
		return PrecedentResult{}, fmt.Errorf("failed to compute ev/revenue median: %w", err)
	}

	return PrecedentResult{
		EVEBITDAMultiple:  ebitdaMult,
		EVRevenueMultiple: revenueMult,
		EVFromEBITDA:      m.Target.EBITDA * ebitdaMult,
		EVFromRevenue:     m.Target.Revenue * revenueMult,
	}, nil
}

// SynergyValue capitalises after-tax annual synergies as a perpetuity and
// nets off implementation costs. A model without synergies is worth 0.
func (m Model) SynergyValue(taxRate, wacc float64) (float64, error) {
	if m.Synergies.empty() {
		return 0, nil
	}
	if !(wacc > 0) || math.IsInf(wacc, 0) {
		return 0, fmt.Errorf("%w: wacc must be positive, got %g", assumption.ErrInvalidInput, wacc)
	}
	s := m.Synergies
	afterTax := (s.CostSavings + s.RevenueSynergies) * (1 - taxRate)
	return afterTax/wacc - s.ImplementationCosts, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
