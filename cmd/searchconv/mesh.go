package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/henrybloomingdale/searchconv/internal/output"
)

// meshCmd implements the mesh subcommand.
var meshCmd = &cobra.Command{
	Use:   "mesh <term>",
	Short: "Look up a MeSH term",
	Long:  `Search for a MeSH (Medical Subject Headings) term and display its record including tree numbers, scope note, and entry terms.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newMeshClient()
		term := strings.Join(args, " ")

		record, err := client.Lookup(cmd.Context(), term)
		if err != nil {
			return fmt.Errorf("MeSH lookup failed: %w", err)
		}

		return output.FormatMeSHRecord(os.Stdout, record, outputCfg())
	},
}
