package main

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/henrybloomingdale/searchconv/internal/central"
	"github.com/henrybloomingdale/searchconv/internal/config"
	"github.com/henrybloomingdale/searchconv/internal/ctgov"
	"github.com/henrybloomingdale/searchconv/internal/dialog"
	"github.com/henrybloomingdale/searchconv/internal/document"
	"github.com/henrybloomingdale/searchconv/internal/ictrp"
	"github.com/henrybloomingdale/searchconv/internal/logger"
	"github.com/henrybloomingdale/searchconv/internal/output"
	"github.com/henrybloomingdale/searchconv/internal/ovid"
	"github.com/henrybloomingdale/searchconv/internal/query"
	"github.com/henrybloomingdale/searchconv/internal/synonyms"
	"github.com/henrybloomingdale/searchconv/internal/warn"
)

var (
	flagFrom       string
	flagTo         string
	flagMarkdown   string
	flagSynonyms   string
	flagExpandMeSH bool
)

var targetTitles = map[string]string{
	"central": "Cochrane CENTRAL",
	"dialog":  "Dialog (Embase)",
	"ictrp":   "WHO ICTRP",
	"ctgov":   "ClinicalTrials.gov",
}

// convertOptions carries the settings shared by the target converters.
type convertOptions struct {
	Synonyms          synonyms.Map
	InterventionWords []string
	MaxDepth          int
}

func init() {
	convertCmd.Flags().StringVar(&flagFrom, "from", "pubmed", "Input syntax: pubmed or ovid")
	convertCmd.Flags().StringVar(&flagTo, "to", "", "Comma-separated targets (central, dialog, ictrp, ctgov) or all (default from config)")
	convertCmd.Flags().StringVar(&flagMarkdown, "md", "", "Also write a Markdown report to this file (- for stdout)")
	convertCmd.Flags().StringVar(&flagSynonyms, "synonyms", "", "YAML or JSON file mapping MeSH headings to free-text terms")
	convertCmd.Flags().BoolVar(&flagExpandMeSH, "expand-mesh", false, "Fill missing synonyms with MeSH entry terms from NCBI")
}

// convertCmd implements the convert subcommand.
var convertCmd = &cobra.Command{
	Use:   "convert [file]",
	Short: "Convert a search to other databases",
	Long: `Convert a line-numbered PubMed search (or an Ovid MEDLINE search history
with --from ovid) to Cochrane CENTRAL, Embase on Dialog, WHO ICTRP and
ClinicalTrials.gov. Reads the file argument, or stdin when none is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readInput(cmd.InOrStdin(), args)
		if err != nil {
			return err
		}
		targets, err := parseTargets(flagTo, appConfig.Convert.Targets)
		if err != nil {
			return err
		}
		syn, err := loadSynonyms(flagSynonyms, appConfig.Convert.Synonyms)
		if err != nil {
			return err
		}

		report := &output.Report{Source: text, Generated: time.Now()}
		if src, _ := parseSource(flagFrom); src == "ovid" {
			res := ovid.ConvertDocument(text)
			logger.Trace("ovid", res.Trace)
			report.Origin, report.Source, report.SourceWarnings = text, res.Query, res.Warnings
		}

		if flagExpandMeSH {
			syn, err = expandSynonyms(cmd.Context(), newMeshClient(), report.Source, syn)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: MeSH expansion incomplete: %v\n", err)
			}
		}

		opts := convertOptions{
			Synonyms:          syn,
			InterventionWords: appConfig.CTGov.InterventionWords,
			MaxDepth:          appConfig.ICTRP.MaxDepth,
		}
		for _, t := range targets {
			report.Conversions = append(report.Conversions, convertTarget(t, report.Source, opts))
		}

		cfg := outputCfg()
		if !cfg.JSON {
			printWarnings(os.Stderr, "ovid", report.SourceWarnings)
			if !cfg.Human {
				for _, c := range report.Conversions {
					printWarnings(os.Stderr, c.Target, c.Warnings)
				}
			}
		}

		switch flagMarkdown {
		case "":
		case "-":
			return output.WriteMarkdown(os.Stdout, report)
		default:
			if err := output.WriteMarkdownFile(flagMarkdown, report); err != nil {
				return err
			}
			logger.Info("report written to %s", flagMarkdown)
		}
		return output.FormatReport(os.Stdout, report, cfg)
	},
}

// convertTarget runs one target converter over a PubMed document.
func convertTarget(target, doc string, opts convertOptions) output.Conversion {
	c := output.Conversion{Target: target, Title: targetTitles[target]}
	switch target {
	case "central":
		res := central.Convert(doc)
		c.Text, c.Warnings = res.Text, res.Warnings
	case "dialog":
		res := dialog.Convert(doc)
		c.Text, c.Warnings = res.Text, res.Warnings
		c.Commands = dialog.CommandLines(res.Text)
	case "ictrp":
		conv := &ictrp.Converter{Synonyms: opts.Synonyms, MaxDepth: opts.MaxDepth}
		res := conv.Convert(doc)
		c.Text, c.Warnings = res.Text, res.Warnings
	case "ctgov":
		conv := &ctgov.Converter{Synonyms: opts.Synonyms, InterventionWords: opts.InterventionWords}
		res := conv.Convert(doc)
		c.Text, c.Fields, c.Warnings = ctgov.Format(res), res.Fields, res.Warnings
	}
	if c.Warnings == nil {
		c.Warnings = []string{}
	}
	return c
}

// parseSource checks the --from value.
func parseSource(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "pubmed":
		return "pubmed", nil
	case "ovid":
		return "ovid", nil
	}
	return "", fmt.Errorf("unknown source %q (valid: pubmed, ovid)", s)
}

// parseTargets splits a --to value. An empty value yields defaults; "all"
// yields every target. Duplicates are dropped and order follows
// config.Targets.
func parseTargets(s string, defaults []string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		if len(defaults) == 0 {
			return slices.Clone(config.Targets), nil
		}
		return defaults, nil
	}
	want := make(map[string]bool)
	for _, t := range strings.Split(s, ",") {
		t = strings.ToLower(strings.TrimSpace(t))
		switch {
		case t == "":
		case t == "all":
			return slices.Clone(config.Targets), nil
		case slices.Contains(config.Targets, t):
			want[t] = true
		default:
			return nil, fmt.Errorf("unknown target %q (valid: %s, all)", t, strings.Join(config.Targets, ", "))
		}
	}
	var out []string
	for _, t := range config.Targets {
		if want[t] {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no targets in %q", s)
	}
	return out, nil
}

// loadSynonyms reads the --synonyms file, falling back to the configured
// one. Neither set yields an empty map.
func loadSynonyms(flagPath, configPath string) (synonyms.Map, error) {
	path := flagPath
	if path == "" {
		path = configPath
	}
	if path == "" {
		return synonyms.Map{}, nil
	}
	m, err := synonyms.Load(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded %d synonym entries from %s", len(m), path)
	return m, nil
}

// expandSynonyms adds MeSH entry terms for every heading in doc that m
// does not cover yet.
func expandSynonyms(ctx context.Context, lookup synonyms.EntryTermLookup, doc string, m synonyms.Map) (synonyms.Map, error) {
	descs := meshDescriptors(doc)
	if len(descs) == 0 {
		return m, nil
	}
	logger.Section("mesh expansion")
	logger.Debug("looking up %d heading(s): %s", len(descs), strings.Join(descs, "; "))
	return synonyms.Expand(ctx, lookup, descs, m)
}

// meshDescriptors lists the distinct MeSH headings of doc in order of
// first appearance.
func meshDescriptors(doc string) []string {
	d := document.Parse(doc, warn.New())
	seen := make(map[string]bool)
	var out []string
	for _, l := range d.Blocks() {
		for _, desc := range query.MeSHDescriptors(l.Expr) {
			k := strings.ToLower(desc)
			if !seen[k] {
				seen[k] = true
				out = append(out, desc)
			}
		}
	}
	return out
}
