package main

import (
	"os"

	mcpDelivery "github.com/JAChelton/ai-inventory-tracker/internal/delivery/mcp"
	"github.com/spf13/cobra"
)

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve analyze_item and parse_inventory as MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// stdout carries the protocol, so logs go to stderr
			a, err := newApp(cmd.Context(), os.Stderr)
			if err != nil {
				return err
			}
			defer a.Close()

			srv := mcpDelivery.NewServer(mcpDelivery.ServerConfig{
				Analyzer: a.resolver,
				Catalog:  a.catalog,
				Matcher:  a.matcher,
				Detector: a.detector,
				Version:  version,
				Logger:   a.logger,
			})
			return mcpDelivery.ServeStdio(srv)
		},
	}
}
