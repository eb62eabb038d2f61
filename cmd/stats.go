// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codefl0w/gh-boards/internal/usecase"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Collects repository metrics for a user and outputs them as JSON",
	Long: `Fetches the user's top starred repositories (or the full listing when the
search comes back empty), collects release download totals, and prints a
JSON report with per-repository figures and summary statistics.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		log, _, gw, err := buildEnv(cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to set up: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = log.Sync() }()

		user, _ := cmd.Flags().GetString("user")
		limit, _ := cmd.Flags().GetInt("limit")

		repos, _, _, err := gw.FetchTopStarred(ctx, user, limit, "")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to fetch repositories: %v\n", err)
			os.Exit(1)
		}
		if len(repos) == 0 {
			repos, err = gw.FetchAllRepositories(ctx, user)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to fetch repositories: %v\n", err)
				os.Exit(1)
			}
		}

		records := usecase.NewAggregator(gw, log).Collect(ctx, user, repos)
		report, err := usecase.BuildReport(user, records)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to build report: %v\n", err)
			os.Exit(1)
		}

		// Marshal the report into a pretty-printed JSON string.
		jsonData, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to marshal report to JSON: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(jsonData))
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().StringP("user", "u", "", "Target GitHub user name (required)")
	statsCmd.MarkFlagRequired("user")
	statsCmd.Flags().Int("limit", 20, "How many top starred repositories to include")
}
