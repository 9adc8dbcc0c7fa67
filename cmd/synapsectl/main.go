// Command synapsectl is a thin CLI wrapper over the synapse-cpp client
// library: configure/start/stop/info the device, read a live NDTP
// stream, and listen for discovery announcements. Business logic
// lives in internal/*; this package only parses flags and prints
// results.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sciencecorp/synapse-cpp/internal/config"
	"github.com/sciencecorp/synapse-cpp/internal/logging"
)

var (
	version = "0.1.0"
	commit  = "unknown"
)

// appConfig and appLogger are populated by the root command's
// PersistentPreRunE and consulted by subcommands for flag defaults
// and operation logging.
var (
	appConfig *config.Config
	appLogger *logging.Logger
)

var logLevelNames = map[string]logging.LogLevel{
	"silent":  logging.LogLevelSilent,
	"error":   logging.LogLevelError,
	"info":    logging.LogLevelInfo,
	"verbose": logging.LogLevelVerbose,
	"debug":   logging.LogLevelDebug,
}

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "synapsectl",
		Short:         "Client for the neural data acquisition/stimulation device",
		Long:          `synapsectl configures a remote device, drives its lifecycle, and reads its NDTP stream.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			cfg, st := config.Load(configPath, true)
			if !st.Ok() {
				return fmt.Errorf("load config: %v", st)
			}
			appConfig = cfg

			level, ok := logLevelNames[cfg.Logging.Level]
			if !ok {
				level = logging.LogLevelInfo
			}
			logger, err := logging.NewLogger(level, cfg.Logging.LogFile)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			appLogger = logger
			appLogger.LogStartup(cfg.Device.Host, cfg.Device.Port, configPath)
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if appLogger != nil {
				return appLogger.Close()
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath(), "path to synapsectl's YAML config file")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigureCmd())
	rootCmd.AddCommand(newStartCmd())
	rootCmd.AddCommand(newStopCmd())
	rootCmd.AddCommand(newInfoCmd())
	rootCmd.AddCommand(newStreamCmd())
	rootCmd.AddCommand(newDiscoverCmd())
	rootCmd.AddCommand(newTapCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "synapsectl.yaml"
	}
	return home + "/.synapsectl.yaml"
}
