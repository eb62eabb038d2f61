// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/codefl0w/gh-boards/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves badges and boards over HTTP for on-demand embedding",
	Long: `Starts an HTTP server exposing /api/badge and /api/board. Responses are
always SVG images with CDN-friendly cache headers; failures render as error
images so embedded <img> tags keep working.`,
	Run: func(cmd *cobra.Command, args []string) {
		log, cfg, gw, err := buildEnv(cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to set up: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = log.Sync() }()

		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.ListenAddr = addr
		}

		srv := server.New(gw, log)
		httpServer := &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           srv.Router(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		log.Info("listening", zap.String("addr", cfg.ListenAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", zap.Error(err))
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (overrides configuration)")
}
