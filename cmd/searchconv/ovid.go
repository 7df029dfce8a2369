package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/henrybloomingdale/searchconv/internal/logger"
	"github.com/henrybloomingdale/searchconv/internal/output"
	"github.com/henrybloomingdale/searchconv/internal/ovid"
)

// ovidCmd implements the ovid subcommand.
var ovidCmd = &cobra.Command{
	Use:   "ovid [query...]",
	Short: "Translate an Ovid MEDLINE query to PubMed",
	Long: `Translate Ovid MEDLINE syntax (exp Heading/, .ti,ab. suffixes, adjN,
$ truncation) to PubMed syntax. With no arguments the query is read from
stdin; a multi-line search history is converted line by line.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")
		if len(args) == 0 {
			var err error
			if text, err = readInput(cmd.InOrStdin(), nil); err != nil {
				return err
			}
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return fmt.Errorf("no query given")
		}

		res := translateOvid(text)
		logger.Trace("ovid", res.Trace)
		if cfg := outputCfg(); !cfg.JSON && !cfg.Human {
			printWarnings(os.Stderr, "", res.Warnings)
		}
		return output.FormatOvid(os.Stdout, text, res, outputCfg())
	},
}

// translateOvid converts a single query, or a search history when text has
// more than one line.
func translateOvid(text string) ovid.Result {
	if strings.Contains(strings.TrimSpace(text), "\n") {
		return ovid.ConvertDocument(text)
	}
	return ovid.Convert(text)
}
