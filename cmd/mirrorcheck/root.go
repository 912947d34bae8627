package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathanspw/mirrors/internal/config"
)

var (
	// Global flags
	cfgPath    string
	mirrorsDir string
	logLevel   string
	logFormat  string

	globalCfg *config.ServiceConfig
	logger    *slog.Logger
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mirrorcheck",
		Short: "Availability checker for the public mirror fleet",
		Long: `mirrorcheck decides which mirrors are healthy enough to stay in the
public mirror list. For every mirror it enumerates the repository metadata
URLs the mirror must serve (every version, repo and architecture the
service config requires) and probes them concurrently, failing the mirror
as soon as any single URL is unreachable.`,
		Example: `  mirrorcheck check
  mirrorcheck check --mirror mirror.example.org --concurrency 5
  mirrorcheck validate`,
		Version: "0.1.0",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogging()

			if shouldSkipConfig(cmd.Name()) {
				return nil
			}

			var err error
			globalCfg, err = config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("failed to load service config: %w", err)
			}

			if mirrorsDir != "" {
				globalCfg.MirrorsDir = mirrorsDir
			}
			if globalCfg.MirrorsDir == "" {
				return fmt.Errorf("no mirrors directory: set mirrors_dir in the config or pass --mirrors-dir")
			}

			logger.Debug("service config loaded",
				"path", cfgPath,
				"versions", len(globalCfg.Versions),
				"repos", len(globalCfg.Repos),
				"mirrors_dir", globalCfg.MirrorsDir)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yml", "path to the service config file")
	cmd.PersistentFlags().StringVar(&mirrorsDir, "mirrors-dir", "", "override the mirror configs directory")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text or json)")

	cmd.AddCommand(
		newCheckCmd(),
		newValidateCmd(),
	)

	return cmd
}

// setupLogging initializes the slog logger based on flags
func setupLogging() {
	var level slog.Level
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var handler slog.Handler
	if strings.ToLower(logFormat) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}

	logger = slog.New(handler)
	slog.SetDefault(logger)
}

// shouldSkipConfig checks if a command should skip config loading
func shouldSkipConfig(cmdName string) bool {
	skipConfigCmds := map[string]bool{
		"help":    true,
		"version": true,
	}
	return skipConfigCmds[cmdName]
}
