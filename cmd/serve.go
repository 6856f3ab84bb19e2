package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aqlanhadi/solarpayback/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP API server",
	Long: `Starts the HTTP API server. It accepts bill PDFs, appends and deletes
periods, and serves the summary, dashboard data, PDF report and metrics.
Requests are handled one at a time.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := api.DefaultConfig()
		cfg.Port = ":" + viper.GetString("server.port")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return api.New(cfg, newStore(), newState()).Start(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("port", "p", "", "Port to run the API server on (default 8080)")
	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
}
