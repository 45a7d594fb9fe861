package cli

import (
	"fmt"
	"os"

	"lawdesk/internal/config"
	"lawdesk/internal/gmail"
	"lawdesk/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:          "lawdesk",
		Short:        "lawdesk pulls a client's Gmail correspondence into case files",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.config/lawdesk/config.yaml)")

	cmd.AddCommand(newAuthCmd(&configPath))
	cmd.AddCommand(newFetchCmd(&configPath))
	cmd.AddCommand(newBrowseCmd(&configPath))
	cmd.AddCommand(newOCRCmd(&configPath))
	cmd.AddCommand(newServeCmd(&configPath))

	cmd.SetErr(os.Stderr)
	cmd.SetOut(os.Stdout)

	return cmd
}

func Execute() {
	defer logger.Logger.Sync() //nolint:errcheck
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads and validates the configuration and applies the log
// level and gin mode it names.
func loadConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if err := config.Validate(cfg); err != nil {
		return cfg, err
	}
	if err := logger.SetLevel(cfg.Log.Level); err != nil {
		logger.Logger.Warn("invalid log level, defaulting to info",
			zap.String("level", cfg.Log.Level), zap.Error(err))
	}
	gin.SetMode(cfg.Server.GinMode)
	return cfg, nil
}

// ingestOptions turns config plus an optional --limit into orchestrator options.
func ingestOptions(cfg config.Config, limit int64) []gmail.Option {
	opts := []gmail.Option{
		gmail.WithLimit(cfg.Gmail.MaxResults),
		gmail.WithPolicy(cfg.Policy()),
	}
	if limit > 0 {
		opts = append(opts, gmail.WithLimit(limit))
	}
	return opts
}
