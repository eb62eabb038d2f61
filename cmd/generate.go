// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/codefl0w/gh-boards/internal/usecase"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Renders SVG artifacts for every manifest in the users directory",
	Long: `Processes each user manifest: fetches the selected repositories, collects
release download totals, renders the configured artifacts, and writes the
cache state and provenance stamps back into the manifest.`,
	Run: func(cmd *cobra.Command, args []string) {
		log, cfg, gw, err := buildEnv(cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to set up: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = log.Sync() }()

		if v, _ := cmd.Flags().GetString("users"); v != "" {
			cfg.UsersDir = v
		}
		if v, _ := cmd.Flags().GetString("out"); v != "" {
			cfg.OutputDir = v
		}

		// Every log line of one batch run shares a run_id.
		runLog := log.With(zap.String("run_id", uuid.NewString()))
		processor := usecase.NewProcessor(gw, runLog, cfg.OutputDir)
		if err := processor.RunBatch(context.Background(), cfg.UsersDir); err != nil {
			runLog.Error("batch run failed", zap.Error(err))
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().String("users", "", "Override the users directory")
	generateCmd.Flags().String("out", "", "Override the output directory")
}
