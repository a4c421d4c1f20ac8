package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/khoahotran/cpd-tracker/internal/app"
	"github.com/khoahotran/cpd-tracker/internal/config"
	"github.com/khoahotran/cpd-tracker/pkg/logger"
)

type options struct {
	configDir string
	logLevel  string
}

func rootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "cpdctl",
		Short:         "Track CPD hours and compliance",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configDir, "config-dir", ".", "Directory holding config.yaml")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		complianceCmd(opts),
		warningsCmd(opts),
		reportCmd(opts),
		exportCmd(opts),
		backupCmd(opts),
		usageCmd(opts),
		analyzeCmd(),
		chatCmd(),
		hashPasswordCmd(),
	)
	return cmd
}

// withApp loads config, opens the store and runs fn.
func withApp(cmd *cobra.Command, opts *options, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := config.LoadConfig(opts.configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.NewZapLogger(cfg.App.Env, opts.logLevel)
	defer log.Sync()

	ctx := cmd.Context()
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeOutput writes content to path, or to w when path is "-".
func writeOutput(w io.Writer, path, defaultName string, content []byte) error {
	if path == "" {
		path = defaultName
	}
	if path == "-" {
		_, err := w.Write(content)
		return err
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(w, "Wrote %s (%d bytes)\n", path, len(content))
	return nil
}
