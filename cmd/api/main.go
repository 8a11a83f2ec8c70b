package main

import (
	"os"

	"dcf_valuation/pkg/api/valuation"
	"dcf_valuation/pkg/config"
	"dcf_valuation/pkg/core/logger"

	"github.com/spf13/cobra"
)

func main() {
	var configPath string

	cmd := &cobra.Command{
		Use:           "dcf-api",
		Short:         "Serve DCF, reverse DCF and M&A valuations over HTTP",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.New()
			defer log.Sync()

			if err := config.LoadDotEnv(); err != nil {
				log.Warnw("failed to load .env", "error", err)
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			router := valuation.NewHandler(cfg, log).Router()

			log.Infow("API server starting",
				"addr", cfg.Server.Addr,
				"parallelism", cfg.Parallelism,
				"routes", []string{
					"GET  /healthz",
					"POST /api/dcf/project",
					"POST /api/dcf/value",
					"POST /api/dcf/sensitivity",
					"POST /api/dcf/reverse",
					"POST /api/dcf/reverse/sensitivity",
					"POST /api/mna/football-field",
				},
			)
			return router.Run(cfg.Server.Addr)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to the YAML config (defaults to $DCF_CONFIG or "+config.DefaultPath+")")

	if err := cmd.Execute(); err != nil {
		logger.New().Errorw("server failed", "error", err)
		os.Exit(1)
	}
}
