// Package cli implements the cibil command line.
package cli

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/cibil-extractor/internal/app"
	"github.com/joseph-ayodele/cibil-extractor/internal/common"
)

var version = "dev"

var (
	configPath string
	jsonLogs   bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "cibil",
	Short: "Extract credit accounts from CIBIL reports",
	Long: `cibil pulls the open and closed credit accounts out of CIBIL credit
report PDFs (or their text) and exports them as CSV, Excel or JSON.
Every run is recorded in the configured database.`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		if configPath != "" {
			return os.Setenv(common.ConfigFileEnv, configPath)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "TOML config file (overrides "+common.ConfigFileEnv+")")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "write logs as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if jsonLogs {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// openApp loads configuration and opens the store for a command.
func openApp(cmd *cobra.Command) (*app.App, error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return nil, err
	}
	return app.New(cmd.Context(), cfg, newLogger(cmd.ErrOrStderr()))
}

// writeOutput writes data to path, or to the command's stdout for "-".
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
