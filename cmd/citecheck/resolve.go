package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/citecheck/pkg/types"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [file|-]",
	Short: "Validate the citations in a sources block",
	Long: `Resolve reads a sources block ("[n]: URL – Title" lines) from a file or
stdin, checks every URL, and replaces dead or excluded citations with
alternatives. Citations are renumbered from 1; the output keeps one entry
per input citation in input order.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runResolve,
}

func init() {
	resolverFlags(resolveCmd.Flags())
	resolveCmd.Flags().String("own-domain", "", "publisher domain that must not be cited")
	resolveCmd.Flags().StringSlice("competitor", nil, "competitor domain that must not be cited (repeatable)")
	resolveCmd.Flags().StringSlice("forbidden-host", nil, "additional host that must never be cited (repeatable)")
	resolveCmd.Flags().String("format", "text", "output format: text, json or yaml")

	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("unknown format %q: use text, json or yaml", format)
	}

	if err := bindResolverFlags(cmd.Flags()); err != nil {
		return err
	}
	cfg, err := loadResolverConfig()
	if err != nil {
		return err
	}

	sources, err := readSources(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	ownDomain, _ := cmd.Flags().GetString("own-domain")
	competitors, _ := cmd.Flags().GetStringSlice("competitor")
	forbidden, _ := cmd.Flags().GetStringSlice("forbidden-host")

	orch, err := buildOrchestrator(cfg, logger)
	if err != nil {
		return err
	}
	report := orch.Run(contextOrBackground(cmd.Context()), sources, types.Exclusion{
		OwnDomain:      ownDomain,
		Competitors:    competitors,
		ForbiddenHosts: forbidden,
	})

	if err := writeReport(cmd.OutOrStdout(), report, format); err != nil {
		return err
	}
	s := report.Summary
	fmt.Fprintf(cmd.ErrOrStderr(), "%d citation(s): %d valid, %d replaced, %d invalid (%s)\n",
		s.Total, s.Valid, s.Replaced, s.Invalid, report.Elapsed.Round(time.Millisecond))
	return nil
}

// readSources reads the named file, or stdin for "-" or no argument.
func readSources(stdin io.Reader, args []string) (string, error) {
	var data []byte
	var err error
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return "", fmt.Errorf("reading sources: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", fmt.Errorf("sources are empty")
	}
	return string(data), nil
}

// writeReport prints the report as text lines, JSON or YAML.
func writeReport(w io.Writer, report types.Report, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	}

	for _, c := range report.Citations {
		line := fmt.Sprintf("[%d]: %s – %s", c.Number, c.URL, c.Title)
		switch {
		case !c.Valid:
			line += "  (invalid)"
		case c.Replaced():
			line += fmt.Sprintf("  (replaces %s)", c.OriginalURL)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// contextOrBackground guards commands executed without a context.
func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
