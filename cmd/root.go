package cmd

import (
	"fmt"
	"os"

	"committee-notifier/internal/config"
	"committee-notifier/internal/logger"

	"github.com/spf13/cobra"
)

var version = "1.0.0"

var (
	cfg    *config.Config
	cfgErr error
)

var rootCmd = &cobra.Command{
	Use:   "committee-notifier",
	Short: "Monthly debt summary for the building committee",
	Long: `committee-notifier computes what every active resident owes in
committee fees, pending payments and EV charging bills, and mails an HTML
summary to the committee members who opted in.

Run "serve" for the scheduled job with the HTTP and Telegram triggers, or
use "preview" and "send" for one-off runs.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the CLI with the configuration loaded by main.
func Execute(loaded *config.Config, loadErr error) {
	cfg, cfgErr = loaded, loadErr
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func requireConfig() (*config.Config, error) {
	if cfgErr != nil {
		return nil, cfgErr
	}
	return cfg, nil
}
