package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	serve := newServeCmd()

	root := &cobra.Command{
		Use:   "inventory-tracker",
		Short: "Turn free-text household item descriptions into inventory records",
		Long: `inventory-tracker matches free text against a base catalog and estimates weight,
dimensions and category for anything else it finds.

Without a subcommand it runs the HTTP API.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}

	root.AddCommand(serve, newParseCmd(), newMCPCmd())
	return root
}
