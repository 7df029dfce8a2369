package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/henrybloomingdale/searchconv/internal/dialog"
	"github.com/henrybloomingdale/searchconv/internal/output"
)

// validateCmd implements the validate subcommand.
var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Check a search for Dialog syntax slips",
	Long: `Report lines numbered "1 ..." instead of "1. ..." and "exp" headings
missing their closing "/", without converting anything.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readInput(cmd.InOrStdin(), args)
		if err != nil {
			return err
		}
		return output.FormatValidation(os.Stdout, dialog.Validate(text), outputCfg())
	},
}
