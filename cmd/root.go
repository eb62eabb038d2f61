// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/codefl0w/gh-boards/internal/config"
	"github.com/codefl0w/gh-boards/internal/gateway"
	"github.com/codefl0w/gh-boards/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "gh-boards",
	Short: "Renders GitHub repository metrics as SVG badges and boards.",
	Long: `gh-boards turns per-user manifest files into SVG artifacts: pill badges
for single metrics (stars, downloads, followers, watchers, workflow status,
license) and multi-row boards ranking repositories by release downloads.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Flags shared by every subcommand.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().String("secrets", "secrets.json", "Path to the optional secrets file")
}

// buildEnv wires the dependencies shared by the network-facing commands.
func buildEnv(cmd *cobra.Command) (*zap.Logger, *config.Config, gateway.Fetcher, error) {
	verbose, _ := cmd.InheritedFlags().GetBool("verbose")
	secretsFile, _ := cmd.InheritedFlags().GetString("secrets")

	log, err := logger.New(verbose)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	cfg, err := config.Load(secretsFile)
	if err != nil {
		return nil, nil, nil, err
	}
	gw, err := gateway.NewGitHubGateway(cfg.GitHubToken, cfg.HTTPTimeout, log)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create GitHub gateway: %w", err)
	}
	return log, cfg, gw, nil
}
