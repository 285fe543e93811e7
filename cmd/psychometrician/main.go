// Command psychometrician serves and takes adaptive psychometric
// questionnaires.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/okian/psychometrician/internal/config"
	"github.com/okian/psychometrician/pkg/logger"
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// rootFlags are shared by every command.
type rootFlags struct {
	configFile string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "psychometrician",
		Short: "Adaptive psychometric questionnaire",
		Long: `psychometrician runs an adaptive Likert questionnaire over an item bank.

Configuration is read from defaults, then the YAML file named by --config or
PSYM_CONFIG, then PSYM_* environment variables.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&flags.configFile, "config", "", "YAML configuration file")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	root.AddCommand(
		newServeCmd(flags),
		newTakeCmd(flags),
		newBankCmd(flags),
		newGenerateCmd(flags),
		newSimulateCmd(flags),
	)
	return root
}

// setup initializes logging to logOut and loads the configuration.
func setup(ctx context.Context, flags *rootFlags, logOut io.Writer) (*config.Config, error) {
	if err := logger.InitWithWriter(logOut); err != nil {
		return nil, err
	}

	if flags.configFile != "" {
		if err := os.Setenv(config.EnvConfigFile, flags.configFile); err != nil {
			return nil, err
		}
	}

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if flags.logLevel != "" {
		level = flags.logLevel
	}
	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(level); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", level), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return cfg, nil
}
