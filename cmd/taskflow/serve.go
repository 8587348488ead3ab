package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/taskflow/taskflow-api/internal/api"
	apphttp "github.com/taskflow/taskflow-api/internal/infrastructure/http"
)

var skipMigrations bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Starts the TaskFlow HTTP API and blocks until SIGINT or SIGTERM.

With STORE_DRIVER=postgres pending migrations are applied first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := setup(ctx, !skipMigrations)
		if err != nil {
			return err
		}
		defer a.close()

		limiter, err := a.rateLimitStore(ctx)
		if err != nil {
			return err
		}

		router := api.NewRouter(api.RouterDeps{
			AppName:         a.cfg.AppName,
			AppVersion:      a.cfg.AppVersion,
			CORSOrigins:     a.cfg.CORSOrigins,
			Auth:            a.auth,
			Tasks:           a.taskSvc,
			Analytics:       a.analytics,
			RateLimitStore:  limiter,
			ReadinessChecks: a.checks,
			Logger:          a.log,
		})

		srv := apphttp.NewServer(":"+a.cfg.Port, router, a.log)
		if err := srv.Run(ctx); err != nil {
			a.log.Error().Err(err).Msg("server stopped with error")
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "do not apply postgres migrations on startup")
}
