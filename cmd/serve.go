package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadfilter-cli/internal/aiclassify"
	"github.com/sells-group/leadfilter-cli/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the classification HTTP server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort != 0 {
			cfg.Server.Port = servePort
		}
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		ruleSet, err := loadRuleSet(cfg)
		if err != nil {
			return err
		}

		// The server still serves rule-based filtering when no AI
		// backend is configured.
		var backend aiclassify.Backend
		if b, err := newBackend(cfg, ""); err == nil {
			backend = b
		} else {
			zap.L().Warn("serve: no AI backend configured, /v1/classify disabled", zap.Error(err))
		}

		return server.New(backend, ruleSet).Serve(ctx, cfg.Server.Port)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
