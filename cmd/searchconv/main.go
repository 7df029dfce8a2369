// Command searchconv converts systematic-review literature searches
// between PubMed, Ovid MEDLINE, Cochrane CENTRAL, Embase on Dialog,
// ClinicalTrials.gov and the WHO ICTRP portal.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/henrybloomingdale/searchconv/internal/config"
	"github.com/henrybloomingdale/searchconv/internal/eutils"
	"github.com/henrybloomingdale/searchconv/internal/logger"
	"github.com/henrybloomingdale/searchconv/internal/mesh"
	"github.com/henrybloomingdale/searchconv/internal/ncbi"
	"github.com/henrybloomingdale/searchconv/internal/output"
)

var (
	flagJSON    bool
	flagHuman   bool
	flagVerbose bool
	flagConfig  string
	flagAPIKey  string
)

// appConfig is loaded before every command runs.
var appConfig = config.Default()

// limiter is shared by every NCBI client built in one run.
var limiter *rate.Limiter

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "searchconv",
	Short: "Systematic review search converter",
	Long: `Convert PubMed search strategies to Cochrane CENTRAL, Embase (Dialog),
ClinicalTrials.gov and WHO ICTRP syntax, translate Ovid MEDLINE searches to
PubMed, and check searches against PubMed.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := validateGlobalFlags(cmd); err != nil {
			return err
		}
		logger.SetVerbose(flagVerbose)
		if cmd.HasParent() && cmd.Parent().Name() == "config" {
			return nil
		}
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if cfg.Path != "" {
			logger.Debug("config loaded from %s", cfg.Path)
		}
		appConfig = cfg
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as structured JSON")
	rootCmd.PersistentFlags().BoolVarP(&flagHuman, "human", "H", false, "Rich colorful terminal output")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log conversion stages and HTTP requests to stderr")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default ~/.searchconv/config.toml)")
	rootCmd.PersistentFlags().StringVar(&flagAPIKey, "api-key", "", "NCBI API key (or set NCBI_API_KEY env var)")

	rootCmd.AddCommand(ovidCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(meshCmd)
	rootCmd.AddCommand(configCmd)
}

// validateGlobalFlags rejects flag combinations before any work is done.
func validateGlobalFlags(cmd *cobra.Command) error {
	if flagJSON && flagHuman {
		return errors.New("--json and --human cannot be used together")
	}
	switch cmd.Name() {
	case "convert":
		if _, err := parseSource(flagFrom); err != nil {
			return err
		}
		if flagTo != "" {
			if _, err := parseTargets(flagTo, nil); err != nil {
				return err
			}
		}
		if flagJSON && flagMarkdown == "-" {
			return errors.New("--md - writes Markdown to stdout and cannot be combined with --json")
		}
	case "check":
		if len(flagPMIDs) > 0 {
			if _, err := normalizePMIDArgs(flagPMIDs); err != nil {
				return err
			}
		}
	}
	return nil
}

func outputCfg() output.OutputConfig {
	return output.OutputConfig{
		JSON:  flagJSON,
		Human: flagHuman,
	}
}

func newBaseClient() *ncbi.BaseClient {
	apiKey := flagAPIKey
	if apiKey == "" {
		apiKey = appConfig.NCBI.APIKey
	}
	var opts []ncbi.Option
	if apiKey != "" {
		opts = append(opts, ncbi.WithAPIKey(apiKey))
	}
	if appConfig.NCBI.Email != "" {
		opts = append(opts, ncbi.WithEmail(appConfig.NCBI.Email))
	}
	if appConfig.NCBI.Tool != "" {
		opts = append(opts, ncbi.WithTool(appConfig.NCBI.Tool))
	}
	if limiter != nil {
		opts = append(opts, ncbi.WithLimiter(limiter))
	}
	c := ncbi.NewBaseClient(opts...)
	limiter = c.Limiter
	return c
}

func newEutilsClient() *eutils.Client {
	return eutils.NewClientWithBase(newBaseClient())
}

func newMeshClient() *mesh.Client {
	return mesh.NewClient(newBaseClient())
}

// readInput returns the contents of the file named by args[0], or stdin
// when there is no argument or it is "-".
func readInput(stdin io.Reader, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return string(data), nil
}

// printWarnings writes one "Warning: " line per message to w.
func printWarnings(w io.Writer, prefix string, msgs []string) {
	for _, m := range msgs {
		if prefix != "" {
			fmt.Fprintf(w, "Warning: [%s] %s\n", prefix, m)
			continue
		}
		fmt.Fprintf(w, "Warning: %s\n", m)
	}
}

var pmidRe = regexp.MustCompile(`^\d+$`)

// normalizePMIDArgs accepts PMIDs as separate arguments, comma-separated
// lists, or both.
func normalizePMIDArgs(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		for _, p := range strings.FieldsFunc(arg, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' }) {
			if !pmidRe.MatchString(p) {
				return nil, fmt.Errorf("invalid PMID %q: must be numeric", p)
			}
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil, errors.New("no PMIDs given")
	}
	return out, nil
}
