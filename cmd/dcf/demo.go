package main

import (
	"fmt"
	"io"

	"dcf_valuation/pkg/config"
	"dcf_valuation/pkg/core/assumption"
	"dcf_valuation/pkg/core/mna"
	"dcf_valuation/pkg/core/reverse"
	"dcf_valuation/pkg/core/sensitivity"
	"dcf_valuation/pkg/core/valuation"
	"dcf_valuation/pkg/report"

	"github.com/spf13/cobra"
)

func demoScenario() config.Scenario {
	return config.Scenario{
		Name: "demo",
		Assumptions: assumption.AssumptionSet{
			RevenueGrowthRates: []float64{0.15, 0.12, 0.10, 0.08, 0.06},
			EBITMargins:        []float64{0.25, 0.26, 0.27, 0.27, 0.28},
			TaxRate:            0.25,
			NWCPercent:         0.12,
			CapexPercent:       0.08,
			DiscountRate:       0.10,
			TerminalGrowthRate: 0.02,
			InitialRevenue:     1_000_000,
			Years:              assumption.DefaultYears,
		},
		Market: &config.Market{CurrentPrice: 50, SharesOutstanding: 1_000_000, NetDebt: 500_000},
		MNA: &config.MNA{
			Target: mna.Target{FCF: 100, EBITDA: 120, Earnings: 80, Revenue: 500, NetDebt: 200},
			Comparables: []mna.Comparable{
				{Name: "Peer A", EV: 1000, EBITDA: 100, Price: 800, Earnings: 60},
				{Name: "Peer B", EV: 1500, EBITDA: 140, Price: 1200, Earnings: 90},
				{Name: "Peer C", EV: 2000, EBITDA: 180, Price: 1600, Earnings: 120},
			},
			Synergies: &mna.Synergies{CostSavings: 20, RevenueSynergies: 10, ImplementationCosts: 50},
		},
	}
}

func (a *app) demoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run every valuation on the built-in reference inputs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDemo(cmd.OutOrStdout(), demoScenario())
		},
	}
}

func (a *app) runDemo(w io.Writer, s config.Scenario) error {
	res, err := valuation.Value(s.Assumptions)
	if err != nil {
		return err
	}
	bridge, err := s.Bridge(res.EnterpriseValue)
	if err != nil {
		return err
	}
	if err := report.Valuation(w, a.report, res, bridge); err != nil {
		return err
	}

	specs, err := a.cfg.SensitivitySpecs()
	if err != nil {
		return err
	}
	tables, err := sensitivity.RunAll(s.Assumptions, specs, a.sweepOptions()...)
	if err != nil {
		return err
	}
	if err := report.Sensitivity(w, a.report, tables); err != nil {
		return err
	}

	q, err := s.ReverseQuery(a.cfg.SearchRange)
	if err != nil {
		return err
	}
	sol, err := reverse.Solve(q)
	if err != nil {
		return err
	}
	if err := report.ReverseSolution(w, a.report, sol); err != nil {
		return err
	}

	rspecs, err := a.cfg.ReverseSensitivitySpecs()
	if err != nil {
		return err
	}
	rtables, err := reverse.RunSensitivityAll(q, rspecs, a.sweepOptions()...)
	if err != nil {
		return err
	}
	if err := report.ReverseSensitivity(w, a.report, rtables); err != nil {
		return err
	}

	rows, err := s.MNA.Model().FootballField(s.MNA.Transactions)
	if err != nil {
		return fmt.Errorf("football field: %w", err)
	}
	return report.FootballField(w, a.report, rows)
}
