// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codefl0w/gh-boards/internal/config"
	"github.com/codefl0w/gh-boards/internal/intake"
	"github.com/codefl0w/gh-boards/internal/logger"
)

var addUserCmd = &cobra.Command{
	Use:   "add-user",
	Short: "Validates an issue-ops submission and writes the user manifest",
	Long: `Reads ISSUE_AUTHOR and ISSUE_BODY from the environment, validates the
submitted JSON config, and writes it into the users directory. Rejections
are printed as GitHub Actions error annotations so the workflow can post
them back onto the issue.`,
	Run: func(cmd *cobra.Command, args []string) {
		verbose, _ := cmd.InheritedFlags().GetBool("verbose")
		secretsFile, _ := cmd.InheritedFlags().GetString("secrets")

		log, err := logger.New(verbose)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = log.Sync() }()

		cfg, err := config.Load(secretsFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
			os.Exit(1)
		}

		result, err := intake.New(cfg.UsersDir, log).Process(intake.Request{
			Author: os.Getenv("ISSUE_AUTHOR"),
			Body:   os.Getenv("ISSUE_BODY"),
		})
		if err != nil {
			var verr *intake.ValidationError
			if errors.As(err, &verr) {
				fmt.Printf("::error::%s\n", verr.Reason)
			} else {
				fmt.Fprintf(os.Stderr, "Failed to process submission: %v\n", err)
			}
			os.Exit(1)
		}

		fmt.Printf("Successfully wrote manifest to %s\n", result.UserFile)
		if outputPath := os.Getenv("GITHUB_OUTPUT"); outputPath != "" {
			if err := appendStepOutputs(outputPath, result); err != nil {
				fmt.Fprintf(os.Stderr, "Failed to write step outputs: %v\n", err)
				os.Exit(1)
			}
		}
	},
}

func appendStepOutputs(path string, result *intake.Result) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = fmt.Fprintf(f, "USER_FILE=%s\nUSER_NAME=%s\n", result.UserFile, result.UserName)
	return err
}

func init() {
	rootCmd.AddCommand(addUserCmd)
}
