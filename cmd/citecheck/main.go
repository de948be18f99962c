// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the citecheck CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/citecheck/internal/logging"
	"github.com/pdiddy/citecheck/internal/secrets"
	"github.com/pdiddy/citecheck/internal/telemetry"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// loadedSecrets holds API keys loaded from .secrets/ at startup.
	loadedSecrets secrets.Set

	logger = zap.NewNop()

	shutdownTracing telemetry.Shutdown = func(context.Context) error { return nil }
)

// rootCmd is the base command for the citecheck CLI.
var rootCmd = &cobra.Command{
	Use:   "citecheck",
	Short: "Validate and repair the citations of generated articles",
	Long: `citecheck reads a numbered sources block, checks that every cited URL is
reachable and not excluded, and replaces failed citations with authoritative
alternatives found through assisted web search or a built-in authority table.

The output always has one citation per input line, in input order.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.New(viper.GetString("log.level"), viper.GetString("log.format"))
		if err != nil {
			return err
		}
		logger = l

		s, err := secrets.Load(viper.GetString("secrets_dir"), logger)
		if err != nil {
			return err
		}
		loadedSecrets = s

		shutdown, err := telemetry.Setup(cmd.Context(), traceConfig())
		if err != nil {
			return fmt.Errorf("setting up tracing: %w", err)
		}
		shutdownTracing = shutdown

		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Debug("loaded secrets", zap.Strings("keys", keys))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Warn("flushing traces", zap.Error(err))
		}
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./citecheck.yaml or ~/.config/citecheck/citecheck.yaml)")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("log-format", "console", "log format (console, json)")
	pf.String("secrets-dir", ".secrets/", "directory of API key files")
	pf.String("trace-exporter", telemetry.ExporterNone, "trace exporter (none, stdout, otlp)")
	pf.String("trace-endpoint", "localhost:4317", "OTLP gRPC endpoint for the otlp trace exporter")
	pf.Bool("trace-insecure", false, "disable TLS for the OTLP trace exporter")

	_ = viper.BindPFlag("log.level", pf.Lookup("log-level"))
	_ = viper.BindPFlag("log.format", pf.Lookup("log-format"))
	_ = viper.BindPFlag("secrets_dir", pf.Lookup("secrets-dir"))
	_ = viper.BindPFlag("trace.exporter", pf.Lookup("trace-exporter"))
	_ = viper.BindPFlag("trace.endpoint", pf.Lookup("trace-endpoint"))
	_ = viper.BindPFlag("trace.insecure", pf.Lookup("trace-insecure"))
}

// traceConfig reads the tracing settings bound under trace.*.
func traceConfig() telemetry.Config {
	return telemetry.Config{
		Exporter:       viper.GetString("trace.exporter"),
		Endpoint:       viper.GetString("trace.endpoint"),
		Insecure:       viper.GetBool("trace.insecure"),
		ServiceName:    "citecheck",
		ServiceVersion: version,
	}
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("citecheck")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "citecheck"))
		}
	}

	viper.SetEnvPrefix("CITECHECK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
