package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"surfex/internal/config"
	surferrors "surfex/internal/errors"
	"surfex/internal/slogutil"
	"surfex/internal/version"
)

var (
	// logLevelFlag is the CLI --log-level flag value
	logLevelFlag string
	// logFormatFlag is the CLI --log-format flag value
	logFormatFlag string
	// logFileFlag is the CLI --log-file flag value
	logFileFlag string
	// repoRootFlag is the CLI --repo-root flag value
	repoRootFlag string
)

var rootCmd = &cobra.Command{
	Use:   "surfex",
	Short: "surfex - API surface extractor",
	Long: `surfex extracts the public API surface of a library from a resolved
declaration tree and writes it as a canonical, schema-validated JSON document
suitable for diffing across revisions.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("surfex version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "",
		"Log level: debug, info, warn, or error (default: info)")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "",
		"Log format: human or json (default: human)")
	rootCmd.PersistentFlags().StringVar(&logFileFlag, "log-file", "",
		"Append logs to this file instead of stderr")
	rootCmd.PersistentFlags().StringVar(&repoRootFlag, "repo-root", ".",
		"Repository root to operate in")
}

// newLogger builds the logger for one command run.
// Precedence: CLI flag > SURFEX_LOG_LEVEL env var > config > info.
func newLogger(cfg *config.Config) *slog.Logger {
	level := logLevelFlag
	if level == "" {
		level = os.Getenv("SURFEX_LOG_LEVEL")
	}
	if level == "" && cfg != nil {
		level = cfg.Logging.Level
	}

	format := slogutil.Format(logFormatFlag)
	if format == "" && cfg != nil {
		format = slogutil.Format(cfg.Logging.Format)
	}
	if format != slogutil.FormatJSON {
		format = slogutil.FormatHuman
	}

	if logFileFlag != "" {
		logger, _, err := slogutil.NewFileLogger(logFileFlag, format, slogutil.LevelFromString(level))
		if err == nil {
			// The file handle stays open for the life of the process.
			return logger
		}
		fmt.Fprintf(os.Stderr, "Warning: cannot open log file %s: %v\n", logFileFlag, err)
	}

	return slogutil.New(os.Stderr, format, slogutil.LevelFromString(level))
}

// mustLoadConfig loads the config for the selected repo root or exits.
func mustLoadConfig() *config.Config {
	cfg, err := config.LoadConfig(repoRootFlag)
	if err != nil {
		fatalSurfError(surferrors.New(surferrors.ConfigInvalid, "failed to load config", err))
	}
	if err := cfg.Validate(); err != nil {
		fatalSurfError(surferrors.New(surferrors.ConfigInvalid, err.Error(), err))
	}
	return cfg
}

func newContext() context.Context {
	return context.Background()
}
