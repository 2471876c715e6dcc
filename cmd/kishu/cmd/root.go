// Package cmd provides the command-line interface for Kishu. It can run
// single experiments, replication batches, and inspect recorded runs.
package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sarchlab/kishu/config"
)

var (
	configFile string // Path to a YAML experiment configuration
	logLevel   string // Log verbosity level
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "kishu",
	Short: "Kishu runs discrete-event simulation experiments.",
	Long: `Kishu runs discrete-event simulation experiments. Experiments are ` +
		`described by a YAML configuration, optionally overridden through ` +
		`KISHU_* environment variables and command-line flags.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()

		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

// Execute runs the CLI root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the configured experiment file, falling back to the
// defaults plus environment overrides when no file is given.
func loadConfig() config.Config {
	if configFile == "" {
		cfg, err := config.Parse(nil)
		if err != nil {
			logrus.Fatalf("Invalid configuration: %s", err)
		}

		return cfg
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		logrus.Fatalf("Cannot load configuration: %s", err)
	}

	return cfg
}

// init sets up the flags shared by all subcommands.
func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"Path to a YAML experiment configuration")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info",
		"Log level (trace, debug, info, warn, error, fatal, panic)")
}
