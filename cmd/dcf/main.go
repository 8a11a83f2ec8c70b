package main

import (
	"fmt"
	"os"

	"dcf_valuation/pkg/config"
	"dcf_valuation/pkg/core/logger"
	"dcf_valuation/pkg/core/sweep"
	"dcf_valuation/pkg/report"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app carries the state shared by every subcommand.
type app struct {
	configPath   string
	scenarioPath string
	format       string

	cfg    config.Config
	log    *zap.SugaredLogger
	report report.Format
}

func newRootCmd(log *zap.SugaredLogger) *cobra.Command {
	a := &app{log: log}

	root := &cobra.Command{
		Use:           "dcf",
		Short:         "Discounted cash flow, reverse DCF and M&A valuation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			f, err := report.ParseFormat(a.format)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.report = f
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "path to the YAML config (defaults to $DCF_CONFIG or "+config.DefaultPath+")")
	flags.StringVar(&a.scenarioPath, "scenario", "", "scenario file (.yaml, .yml or JSON/Hjson)")
	flags.StringVarP(&a.format, "format", "f", "md", "output format: md, html or csv")

	root.AddCommand(
		a.valueCmd(),
		a.sensitivityCmd(),
		a.reverseCmd(),
		a.reverseSensitivityCmd(),
		a.footballFieldCmd(),
		a.demoCmd(),
	)
	return root
}

func (a *app) scenario() (config.Scenario, error) {
	if a.scenarioPath == "" {
		return config.Scenario{}, fmt.Errorf("--scenario is required")
	}
	return config.LoadScenario(a.scenarioPath)
}

func (a *app) sweepOptions() []sweep.Option {
	return []sweep.Option{
		sweep.WithParallelism(a.cfg.Parallelism),
		sweep.WithLogger(a.log),
	}
}

// execute runs the command tree and returns the process exit code. Failures
// are reported once, through log.
func execute(log *zap.SugaredLogger, args []string) int {
	cmd := newRootCmd(log)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		log.Errorw("command failed", "error", err)
		return 1
	}
	return 0
}

func main() {
	// .env may set DCF_ENV, so it is read before the logger is built.
	envErr := config.LoadDotEnv()
	log := logger.New()
	if envErr != nil {
		log.Warnw("failed to load .env", "error", envErr)
	}

	code := execute(log, os.Args[1:])
	_ = log.Sync()
	os.Exit(code)
}
