// Command fluxgraphd is the entry binary for the graph-backed dataflow
// engine: it opens a configured store backend, optionally serves it over
// storehttp's wire protocol, and offers one-shot graph/undo/redo
// operations against it plus deploy/undeploy clients for a running serve
// instance, the way the pack's cmd/nornicdb* binaries wire
// their database/server/CLI layers together.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dshills/fluxgraph/config"
	"github.com/dshills/fluxgraph/telemetry"
)

var (
	version = "0.1.0"

	cfgPath string
	envPath string
	cfg     *config.Config
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "fluxgraphd",
		Short: "fluxgraphd is the graph-backed dataflow engine's entry binary",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(cfgPath, envPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := loaded.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			cfg = loaded

			level, err := zerolog.ParseLevel(cfg.Logging.Level)
			if err != nil {
				return fmt.Errorf("invalid logging.level %q: %w", cfg.Logging.Level, err)
			}
			telemetry.SetLevel(level)
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config YAML file")
	rootCmd.PersistentFlags().StringVar(&envPath, "env-file", ".env", "path to .env file (ignored if missing)")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("fluxgraphd v%s\n", version)
		},
	})
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newDeployCmd())
	rootCmd.AddCommand(newUndeployCmd())
	rootCmd.AddCommand(newUndoCmd())
	rootCmd.AddCommand(newRedoCmd())
	rootCmd.AddCommand(newGraphCmd())

	if err := rootCmd.Execute(); err != nil {
		telemetry.Log.Error().Err(err).Msg("fluxgraphd exited with error")
		os.Exit(1)
	}
}
