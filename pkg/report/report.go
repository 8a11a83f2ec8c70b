package report

import (
	"fmt"
	"io"

	"dcf_valuation/pkg/core/mna"
	"dcf_valuation/pkg/core/projection"
	"dcf_valuation/pkg/core/reverse"
	"dcf_valuation/pkg/core/sensitivity"
	"dcf_valuation/pkg/core/valuation"
)

// valuationRow is one forecast year in CSV form. The whole-firm columns
// repeat on every row; the bridge columns are empty without a market block.
type valuationRow struct {
	projection.YearRow
	PVFCF           float64  `csv:"pv_fcf"`
	TerminalValue   float64  `csv:"terminal_value"`
	PVTerminalValue float64  `csv:"pv_terminal_value"`
	EnterpriseValue float64  `csv:"enterprise_value"`
	NetDebt         *float64 `csv:"net_debt"`
	EquityValue     *float64 `csv:"equity_value"`
	SharePrice      *float64 `csv:"share_price"`
}

// Valuation writes the yearly projection and the EV build-up. bridge may be nil.
func Valuation(w io.Writer, f Format, res valuation.Result, bridge *valuation.EquityBridge) error {
	years := res.Projection.Rows()
	csvRows := make([]valuationRow, len(years))
	for i, r := range years {
		csvRows[i] = valuationRow{
			YearRow:         r,
			PVFCF:           res.PVFCF[i],
			TerminalValue:   res.TerminalValue,
			PVTerminalValue: res.PVTerminalValue,
			EnterpriseValue: res.EnterpriseValue,
		}
		if bridge != nil {
			csvRows[i].NetDebt = &bridge.NetDebt
			csvRows[i].EquityValue = &bridge.EquityValue
			csvRows[i].SharePrice = &bridge.SharePrice
		}
	}

	projected := table{
		title:   "Projection",
		headers: []string{"Year", "Revenue", "EBIT", "NOPAT", "Change in NWC", "Capex", "FCF", "PV of FCF"},
	}
	for i, r := range years {
		projected.rows = append(projected.rows, []string{
			fmt.Sprint(r.Year), money(r.Revenue), money(r.EBIT), money(r.NOPAT),
			money(r.NWCChange), money(r.Capex), money(r.FCF), money(res.PVFCF[i]),
		})
	}

	summary := table{
		title:   "Enterprise value",
		headers: []string{"Item", "Value"},
		rows: [][]string{
			{"Sum of PV of FCF", money(res.SumPVFCF)},
			{"Terminal value", money(res.TerminalValue)},
			{"PV of terminal value", money(res.PVTerminalValue)},
			{"Enterprise value", money(res.EnterpriseValue)},
		},
	}
	if bridge != nil {
		summary.rows = append(summary.rows,
			[]string{"Net debt", money(bridge.NetDebt)},
			[]string{"Equity value", money(bridge.EquityValue)},
			[]string{"Value per share", money(bridge.SharePrice)},
		)
	}

	return write(w, f, []table{projected, summary}, csvRows)
}

// Projection writes only the yearly operating projection.
func Projection(w io.Writer, f Format, p projection.Result) error {
	years := p.Rows()
	t := table{
		title:   "Projection",
		headers: []string{"Year", "Revenue", "EBIT", "NOPAT", "Change in NWC", "Capex", "FCF"},
	}
	for _, r := range years {
		t.rows = append(t.rows, []string{
			fmt.Sprint(r.Year), money(r.Revenue), money(r.EBIT), money(r.NOPAT),
			money(r.NWCChange), money(r.Capex), money(r.FCF),
		})
	}
	return write(w, f, []table{t}, years)
}

type sensitivityRow struct {
	Variable        string  `csv:"variable"`
	Perturbation    float64 `csv:"change_in_input"`
	EnterpriseValue float64 `csv:"enterprise_value"`
	ValueChange     float64 `csv:"change_in_value"`
}

// Sensitivity writes one table per variable.
func Sensitivity(w io.Writer, f Format, tables []sensitivity.Table) error {
	var (
		out  []table
		rows []sensitivityRow
	)
	for _, st := range tables {
		t := table{
			title:   "Sensitivity: " + st.Variable.String(),
			headers: []string{"Change in input", "Enterprise value", "Change in value"},
		}
		for _, p := range st.Points {
			t.rows = append(t.rows, []string{signedPercent(p.Perturbation), money(p.EnterpriseValue), signedPercent(p.ValueChange)})
			rows = append(rows, sensitivityRow{
				Variable:        st.Variable.String(),
				Perturbation:    p.Perturbation,
				EnterpriseValue: p.EnterpriseValue,
				ValueChange:     p.ValueChange,
			})
		}
		out = append(out, t)
	}
	return write(w, f, out, &rows)
}

// ReverseSolution writes the implied growth and the grid point it came from.
func ReverseSolution(w io.Writer, f Format, sol reverse.Solution) error {
	t := table{
		title:   "Market-implied growth",
		headers: []string{"Item", "Value"},
		rows: [][]string{
			{"Target enterprise value", money(sol.TargetEV)},
			{"Implied growth", percent(sol.ImpliedGrowth)},
			{"Enterprise value at implied growth", money(sol.EnterpriseValue)},
			{"Absolute difference", money(sol.Difference)},
			{"Candidates searched", fmt.Sprint(sol.Candidates)},
		},
	}
	return write(w, f, []table{t}, []reverse.Solution{sol})
}

type reverseRow struct {
	Variable      string  `csv:"variable"`
	Perturbation  float64 `csv:"change_in_input"`
	ImpliedGrowth float64 `csv:"implied_growth"`
	GrowthDelta   float64 `csv:"change_in_growth"`
}

// ReverseSensitivity writes one table per query variable.
func ReverseSensitivity(w io.Writer, f Format, tables []reverse.Table) error {
	var (
		out  []table
		rows []reverseRow
	)
	for _, rt := range tables {
		t := table{
			title:   "Reverse sensitivity: " + rt.Variable.String(),
			headers: []string{"Change in input", "Implied growth", "Change in growth"},
		}
		for _, p := range rt.Points {
			t.rows = append(t.rows, []string{signedPercent(p.Perturbation), percent(p.ImpliedGrowth), signedPercent(p.GrowthDelta)})
			rows = append(rows, reverseRow{
				Variable:      rt.Variable.String(),
				Perturbation:  p.Perturbation,
				ImpliedGrowth: p.ImpliedGrowth,
				GrowthDelta:   p.GrowthDelta,
			})
		}
		out = append(out, t)
	}
	return write(w, f, out, &rows)
}

// FootballField writes the valuation ranges per method.
func FootballField(w io.Writer, f Format, rows []mna.Row) error {
	t := table{
		title:   "Football field",
		headers: []string{"Method", "Low", "High"},
	}
	for _, r := range rows {
		t.rows = append(t.rows, []string{r.Method, money(r.Low), money(r.High)})
	}
	return write(w, f, []table{t}, rows)
}
