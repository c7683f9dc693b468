// Package commands implements the tsqueue-bench subcommands.
package commands

import (
	"fmt"
	"os"

	btclog "github.com/btcsuite/btclog/v2"
	"github.com/roasbeef/tsqueue/envelope"
	"github.com/roasbeef/tsqueue/internal/config"
	"github.com/roasbeef/tsqueue/internal/logging"
	"github.com/roasbeef/tsqueue/queue"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	logDir  string
	cfg     config.Config
)

// RootCmd is the tsqueue-bench entrypoint command.
var RootCmd = &cobra.Command{
	Use:   "tsqueue-bench",
	Short: "Exercise the tsqueue bounded producer/consumer queue",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setUpConfigAndLogging()
	},
}

func init() {
	RootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "path to a YAML config file",
	)
	RootCmd.PersistentFlags().StringVar(
		&logDir, "logdir", "", "directory for the rotating log file",
	)

	RootCmd.AddCommand(runCmd, versionCmd)
}

func setUpConfigAndLogging() error {
	if cfgFile != "" {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded
	} else {
		cfg = config.Default()
	}

	if logDir != "" {
		cfg.Logging.Directory = logDir
	}

	consoleHandler := btclog.NewDefaultHandler(os.Stdout)

	handlers := []btclog.Handler{consoleHandler}

	if cfg.Logging.Directory != "" {
		rotator := logging.NewRotatingLogWriter()
		rotCfg := logging.DefaultLogRotatorConfig()
		rotCfg.LogDir = cfg.Logging.Directory
		if cfg.Logging.MaxLogFiles > 0 {
			rotCfg.MaxLogFiles = cfg.Logging.MaxLogFiles
		}
		if cfg.Logging.MaxLogFileSize > 0 {
			rotCfg.MaxLogFileSize = cfg.Logging.MaxLogFileSize
		}

		if err := rotator.InitLogRotator(rotCfg); err != nil {
			return fmt.Errorf("initializing log rotator: %w", err)
		}

		fileHandler := btclog.NewDefaultHandler(rotator)
		handlers = append(handlers, fileHandler)
	}

	handlerSet := logging.NewHandlerSet(handlers...)
	handlerSet.SetLevel(levelFromName(cfg.Logging.Level))

	baseLogger := btclog.NewSLogger(handlerSet)

	envelope.UseLogger(baseLogger.WithPrefix("ENVL"))
	queue.UseLogger(baseLogger.WithPrefix("QUEU"))

	return nil
}

func levelFromName(name string) btclog.Level {
	switch name {
	case "trace":
		return btclog.LevelTrace
	case "debug":
		return btclog.LevelDebug
	case "warn":
		return btclog.LevelWarn
	case "error":
		return btclog.LevelError
	case "critical":
		return btclog.LevelCritical
	case "off":
		return btclog.LevelOff
	default:
		return btclog.LevelInfo
	}
}
