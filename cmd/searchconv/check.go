package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/henrybloomingdale/searchconv/internal/document"
	"github.com/henrybloomingdale/searchconv/internal/eutils"
	"github.com/henrybloomingdale/searchconv/internal/logger"
	"github.com/henrybloomingdale/searchconv/internal/output"
	"github.com/henrybloomingdale/searchconv/internal/warn"
)

var (
	flagPMIDs []string
	flagLines bool
)

func init() {
	checkCmd.Flags().StringArrayVar(&flagPMIDs, "pmids", nil, "Seed PMIDs the search should retrieve (comma-separated or repeated)")
	checkCmd.Flags().BoolVar(&flagLines, "lines", false, "Also report the hit count of every numbered line")
}

// checkPlan is a search document reduced to what ESearch needs.
type checkPlan struct {
	// Query is the whole search as one PubMed query.
	Query string
	// Lines holds every numbered line with references expanded.
	Lines []eutils.Block
	// Leaves holds the numbered lines that reference no other line.
	Leaves   []eutils.Block
	Warnings []string
}

// checkCmd implements the check subcommand.
var checkCmd = &cobra.Command{
	Use:   "check [file | query...]",
	Short: "Count a PubMed search and check seed PMID capture",
	Long: `Run a PubMed search, or a line-numbered search document, through ESearch.
Reports the hit count and PubMed's query translation. With --pmids, reports
which seed articles the search retrieves and, for each one it misses, which
lines of the document fail to match it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := checkInput(cmd, args)
		if err != nil {
			return err
		}
		plan := planCheck(text)
		if plan.Query == "" {
			return fmt.Errorf("no query given")
		}
		if !flagJSON {
			printWarnings(os.Stderr, "", plan.Warnings)
		}
		logger.Debug("query: %s", plan.Query)

		client := newEutilsClient()
		ctx := cmd.Context()
		report := &output.CheckReport{}

		report.Search, err = client.Search(ctx, plan.Query, &eutils.SearchOptions{Limit: 20})
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}

		if flagLines && len(plan.Lines) > 0 {
			report.Lines, err = client.Counts(ctx, plan.Lines)
			if err != nil {
				return fmt.Errorf("line counts failed: %w", err)
			}
		}

		if len(flagPMIDs) > 0 {
			pmids, err := normalizePMIDArgs(flagPMIDs)
			if err != nil {
				return err
			}
			report.Capture, err = client.Capture(ctx, plan.Query, pmids)
			if err != nil {
				return fmt.Errorf("capture check failed: %w", err)
			}
			if len(report.Capture.Missing) > 0 && len(plan.Leaves) > 1 {
				if err := client.Diagnose(ctx, report.Capture, plan.Leaves); err != nil {
					// Non-fatal: the capture rate is still reported.
					fmt.Fprintf(os.Stderr, "Warning: could not diagnose missing PMIDs: %v\n", err)
				}
			}
		}

		return output.FormatCheck(os.Stdout, report, outputCfg())
	},
}

// checkInput reads a single file argument, joins several arguments into a
// query, or reads stdin when there are none.
func checkInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 {
		if st, err := os.Stat(args[0]); err == nil && !st.IsDir() {
			return readInput(cmd.InOrStdin(), args)
		}
	}
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	return readInput(cmd.InOrStdin(), nil)
}

// planCheck expands a search document into the whole-search query and its
// per-line queries.
func planCheck(text string) checkPlan {
	w := warn.New()
	d := document.Parse(text, w)
	plan := checkPlan{Query: document.Query(d, w)}

	e := document.NewExpander(d, document.PubMed, w)
	for i, l := range d.Lines {
		if l.ID == "" {
			continue
		}
		b := eutils.Block{Name: l.Label(), Query: e.Line(i)}
		if b.Query == "" {
			continue
		}
		plan.Lines = append(plan.Lines, b)
		if !d.References(l) {
			plan.Leaves = append(plan.Leaves, b)
		}
	}
	plan.Warnings = w.Warnings()
	return plan
}
