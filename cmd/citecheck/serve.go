package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/citecheck/internal/server"
	"github.com/pdiddy/citecheck/pkg/types"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve citation resolution over HTTP",
	Long: `Serve starts an HTTP API. POST /v1/resolve accepts
{"sources": "...", "own_domain": "...", "competitors": [...]} and returns the
resolved report. GET /healthz and GET /metrics are also served.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	resolverFlags(serveCmd.Flags())
	serveCmd.Flags().String("addr", ":8080", "listen address")
	serveCmd.Flags().Duration("request-timeout", 0, "upper bound for one resolve request (default 60s)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := bindResolverFlags(cmd.Flags()); err != nil {
		return err
	}
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("server.request_timeout", cmd.Flags().Lookup("request-timeout"))

	cfg, err := loadResolverConfig()
	if err != nil {
		return err
	}
	orch, err := buildOrchestrator(cfg, logger)
	if err != nil {
		return err
	}

	srv := server.New(orch, types.ServerConfig{
		Addr:           viper.GetString("server.addr"),
		RequestTimeout: viper.GetDuration("server.request_timeout"),
	}, logger.Named("server"))
	return srv.ListenAndServe(contextOrBackground(cmd.Context()))
}
