package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/skillmatch/pkg/logger"
)

const app = "loadtest"

var (
	logFormat string
	logLevel  string

	rootCmd = &cobra.Command{
		Use:           app,
		Short:         "loadtest generates skill exchange fixtures and load tests the match endpoint",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.InitWithOptions(logFormat, cmd.ErrOrStderr()); err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			if err := logger.SetLevelString(logLevel); err != nil {
				return fmt.Errorf("set log level: %w", err)
			}
			return nil
		},
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: text or json")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level")

	rootCmd.AddCommand(generateCmd, runCmd)
}
