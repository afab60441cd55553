package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:   "ows",
		Short: "Order webhook service",
		Long: `ows receives payment gateway webhooks, captures authorized payments
and e-mails order confirmations. It also serves a small admin API.

Running ows without a subcommand starts the server.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cfgFile)
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml or ./config/config.yaml)")

	root.AddCommand(
		newServeCmd(&cfgFile),
		newMigrateCmd(&cfgFile),
		newHashPasswordCmd(),
	)
	return root
}
