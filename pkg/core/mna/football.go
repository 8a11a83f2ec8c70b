package mna

import (
	"fmt"
	"math"

	"dcf_valuation/pkg/core/assumption"
)

// Football-field defaults.
const (
	DefaultWACC        = 0.10
	DefaultGrowth      = 0.02
	DefaultYears       = 5
	DefaultSynergyTax  = 0.25
	MethodDCF          = "DCF"
	MethodTrading      = "Trading Multiples"
	MethodTransactions = "Transaction Multiples"
	MethodSynergies    = "Synergy Value"
)

// Row is one bar of the football field, in enterprise-value terms except for
// the synergy row, which is the standalone value of the synergies.
type Row struct {
	Method string  `json:"method" csv:"method"`
	Low    float64 `json:"low" csv:"low"`
	High   float64 `json:"high" csv:"high"`
}

// FootballField values the target with every method at the default
// assumptions. The transaction row is left out when txns is empty.
func (m Model) FootballField(txns []Transaction) ([]Row, error) {
	rows := make([]Row, 0, 4)

	dcf, err := m.DCFValuation(DefaultWACC, DefaultGrowth, DefaultYears)
	if err != nil {
		return nil, err
	}
	rows = append(rows, Row{Method: MethodDCF, Low: dcf.EnterpriseValue, High: dcf.EnterpriseValue})

	trading, err := m.TradingMultiples()
	if err != nil {
		return nil, err
	}
	rows = append(rows, span(MethodTrading, trading.EVFromEBITDA, trading.EquityFromPE+m.Target.NetDebt))

	if len(txns) > 0 {
		precedent, err := m.PrecedentTransactions(txns)
		if err != nil {
			return nil, err
		}
		rows = append(rows, span(MethodTransactions, precedent.EVFromEBITDA, precedent.EVFromRevenue))
	}

	synergy, err := m.SynergyValue(DefaultSynergyTax, DefaultWACC)
	if err != nil {
		return nil, err
	}
	rows = append(rows, Row{Method: MethodSynergies, Low: synergy, High: synergy})

	for _, r := range rows {
		if !finite(r.Low) || !finite(r.High) {
			return nil, fmt.Errorf("%w: %s range is not finite", assumption.ErrInvalidInput, r.Method)
		}
	}
	return rows, nil
}

func span(method string, a, b float64) Row {
	return Row{Method: method, Low: math.Min(a, b), High: math.Max(a, b)}
}
