package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	logLevel string // Log verbosity level
	envFile  string // Optional .env file loaded before any command runs
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "red-blud-eyes",
	Short: "Simulator for the red/blue eyes common-knowledge puzzle",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		found, err := loadDotEnv(envFile, false)
		if err != nil {
			logrus.Fatalf("Failed to load %s: %v", envFile, err)
		}
		if found {
			logrus.Debugf("loaded environment from %s", envFile)
		}
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up the flags shared by every subcommand
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path of a .env file to load (missing file is ignored)")
}
