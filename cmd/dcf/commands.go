package main

import (
	"fmt"

	"dcf_valuation/pkg/core/assumption"
	"dcf_valuation/pkg/core/mna"
	"dcf_valuation/pkg/core/reverse"
	"dcf_valuation/pkg/core/sensitivity"
	"dcf_valuation/pkg/core/valuation"
	"dcf_valuation/pkg/report"

	"github.com/spf13/cobra"
)

func (a *app) valueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "value",
		Short: "Project free cash flows and compute enterprise value",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.scenario()
			if err != nil {
				return err
			}
			res, err := valuation.Value(s.Assumptions)
			if err != nil {
				return err
			}
			bridge, err := s.Bridge(res.EnterpriseValue)
			if err != nil {
				return err
			}
			a.log.Infow("valued scenario", "scenario", s.Name, "enterprise_value", res.EnterpriseValue)
			return report.Valuation(cmd.OutOrStdout(), a.report, res, bridge)
		},
	}
}

func (a *app) sensitivityCmd() *cobra.Command {
	var (
		variable      string
		perturbations []float64
	)
	cmd := &cobra.Command{
		Use:   "sensitivity",
		Short: "Re-value the DCF while scaling one assumption at a time",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.scenario()
			if err != nil {
				return err
			}
			specs, err := a.cfg.SensitivitySpecs()
			if err != nil {
				return err
			}
			if variable != "" {
				f, err := assumption.ParseField(variable)
				if err != nil {
					return err
				}
				specs = []sensitivity.Spec{{Variable: f, Perturbations: gridFor(perturbations, a.cfg.SensitivityGrids[f.String()])}}
			}
			tables, err := sensitivity.RunAll(s.Assumptions, specs, a.sweepOptions()...)
			if err != nil {
				return err
			}
			return report.Sensitivity(cmd.OutOrStdout(), a.report, tables)
		},
	}
	cmd.Flags().StringVar(&variable, "variable", "", "assumption to perturb (defaults to every configured grid)")
	cmd.Flags().Float64SliceVar(&perturbations, "perturbations", nil, "relative changes, e.g. -0.1,0,0.1")
	return cmd
}

func (a *app) reverseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reverse",
		Short: "Solve for the revenue growth implied by the market price",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.scenario()
			if err != nil {
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
			a.log.Infow("solved implied growth", "scenario", s.Name, "implied_growth", sol.ImpliedGrowth, "difference", sol.Difference)
			return report.ReverseSolution(cmd.OutOrStdout(), a.report, sol)
		},
	}
}

func (a *app) reverseSensitivityCmd() *cobra.Command {
	var (
		variable      string
		perturbations []float64
	)
	cmd := &cobra.Command{
		Use:   "reverse-sensitivity",
		Short: "Re-solve implied growth while scaling one input at a time",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.scenario()
			if err != nil {
				return err
			}
			q, err := s.ReverseQuery(a.cfg.SearchRange)
			if err != nil {
				return err
			}
			specs, err := a.cfg.ReverseSensitivitySpecs()
			if err != nil {
				return err
			}
			if variable != "" {
				f, err := reverse.ParseQueryField(variable)
				if err != nil {
					return err
				}
				specs = []reverse.Spec{{Variable: f, Perturbations: gridFor(perturbations, a.cfg.ReverseSensitivityGrids[f.String()])}}
			}
			tables, err := reverse.RunSensitivityAll(q, specs, a.sweepOptions()...)
			if err != nil {
				return err
			}
			return report.ReverseSensitivity(cmd.OutOrStdout(), a.report, tables)
		},
	}
	cmd.Flags().StringVar(&variable, "variable", "", "query input to perturb (defaults to every configured grid)")
	cmd.Flags().Float64SliceVar(&perturbations, "perturbations", nil, "relative changes, e.g. -0.1,0,0.1")
	return cmd
}

func (a *app) footballFieldCmd() *cobra.Command {
	var comparablesCSV, transactionsCSV string
	cmd := &cobra.Command{
		Use:   "football-field",
		Short: "Value an acquisition target by DCF, multiples and synergies",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.scenario()
			if err != nil {
				return err
			}
			if s.MNA == nil {
				return fmt.Errorf("%w: scenario has no mna block", assumption.ErrInvalidInput)
			}
			deal := *s.MNA
			if comparablesCSV != "" {
				if deal.Comparables, err = mna.LoadComparables(comparablesCSV); err != nil {
					return err
				}
			}
			if transactionsCSV != "" {
				if deal.Transactions, err = mna.LoadTransactions(transactionsCSV); err != nil {
					return err
				}
			}
			rows, err := deal.Model().FootballField(deal.Transactions)
			if err != nil {
				return err
			}
			return report.FootballField(cmd.OutOrStdout(), a.report, rows)
		},
	}
	cmd.Flags().StringVar(&comparablesCSV, "comparables", "", "CSV of comparable companies (name,ev,ebitda,price,earnings)")
	cmd.Flags().StringVar(&transactionsCSV, "transactions", "", "CSV of precedent transactions (name,ev,ebitda,revenue)")
	return cmd
}

// gridFor prefers explicit perturbations, then the configured grid, then a ±10% default.
func gridFor(explicit, configured []float64) []float64 {
	if len(explicit) > 0 {
		return explicit
	}
	if len(configured) > 0 {
		return configured
	}
	return []float64{-0.10, 0, 0.10}
}
