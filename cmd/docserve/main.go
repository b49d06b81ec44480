package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gogotex/docserve/internal/app"
	"github.com/gogotex/docserve/internal/config"
	"github.com/gogotex/docserve/pkg/logger"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:           "docserve",
	Short:         "Document delivery service",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if logLevel == "" {
			logLevel = os.Getenv("LOG_LEVEL")
		}
		logger.Init(logLevel)
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug|info|warn|error (default $LOG_LEVEL or info)")
	rootCmd.AddCommand(serveCmd(), importCmd(), resolveCmd())
	err := rootCmd.Execute()
	logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// buildApp loads configuration and connects the backends.
func buildApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger.Infof("config loaded: serve_method=%s storage=%s mongo=%v redis=%v", cfg.Documents.ServeMethod, cfg.Storage.Backend, cfg.MongoDB.URI != "", cfg.Redis.Host != "")
	return app.Build(ctx, cfg)
}
