// Package config loads searchconv settings from a TOML file, by default
// ~/.searchconv/config.toml:
//
//	[ncbi]
//	api_key = "..."
//	email = "me@example.org"
//
//	[convert]
//	targets = ["central", "dialog"]
//	synonyms = "synonyms.yaml"
//
//	[ctgov]
//	intervention_words = ["treatment", "therapy", "stimulation"]
//
//	[ictrp]
//	max_depth = 2
//
// A missing default file is not an error. NCBI_API_KEY overrides the file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Targets lists the conversion targets in output order.
var Targets = []string{"central", "dialog", "ictrp", "ctgov"}

// Config holds every setting.
type Config struct {
	NCBI    NCBI    `toml:"ncbi"`
	Convert Convert `toml:"convert"`
	CTGov   CTGov   `toml:"ctgov"`
	ICTRP   ICTRP   `toml:"ictrp"`

	// Path is the file the config was read from, empty for defaults.
	Path string `toml:"-"`
}

// NCBI configures E-utilities access.
type NCBI struct {
	APIKey string `toml:"api_key,omitempty"`
	Email  string `toml:"email,omitempty"`
	Tool   string `toml:"tool,omitempty"`
}

// Convert configures the convert command.
type Convert struct {
	Targets  []string `toml:"targets"`
	Synonyms string   `toml:"synonyms,omitempty"`
}

// CTGov configures ClinicalTrials.gov field routing.
type CTGov struct {
	InterventionWords []string `toml:"intervention_words"`
}

// ICTRP configures ICTRP output.
type ICTRP struct {
	MaxDepth int `toml:"max_depth"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Convert: Convert{Targets: slices.Clone(Targets)},
		CTGov:   CTGov{InterventionWords: []string{"treatment", "therapy", "drug", "medication"}},
		ICTRP:   ICTRP{MaxDepth: 2},
	}
}

// DefaultPath returns ~/.searchconv/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}
	return filepath.Join(home, ".searchconv", "config.toml"), nil
}

// Load reads path, or the default path when path is empty. Only a missing
// default file falls back to defaults; a missing explicit path is an error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist) && !explicit:
		cfg.applyEnv()
		return cfg, nil
	case err != nil:
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := cfg.decode(data); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Path = path
	if s := cfg.Convert.Synonyms; s != "" && !filepath.IsAbs(s) {
		cfg.Convert.Synonyms = filepath.Join(filepath.Dir(path), s)
	}
	cfg.applyEnv()
	return cfg, nil
}

// Parse decodes TOML over the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := cfg.decode(data); err != nil {
		return nil, err
	}
	return cfg, nil
}

// fileConfig mirrors Config with nil-able fields so that keys absent from
// the file keep their defaults.
type fileConfig struct {
	NCBI    NCBI `toml:"ncbi"`
	Convert struct {
		Targets  []string `toml:"targets"`
		Synonyms string   `toml:"synonyms"`
	} `toml:"convert"`
	CTGov struct {
		InterventionWords []string `toml:"intervention_words"`
	} `toml:"ctgov"`
	ICTRP struct {
		MaxDepth *int `toml:"max_depth"`
	} `toml:"ictrp"`
}

func (c *Config) decode(data []byte) error {
	var f fileConfig
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return fmt.Errorf("unknown config keys:\n%s", strict.String())
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	c.NCBI = f.NCBI
	if f.Convert.Targets != nil {
		c.Convert.Targets = f.Convert.Targets
	}
	c.Convert.Synonyms = f.Convert.Synonyms
	if f.CTGov.InterventionWords != nil {
		c.CTGov.InterventionWords = f.CTGov.InterventionWords
	}
	if f.ICTRP.MaxDepth != nil {
		c.ICTRP.MaxDepth = *f.ICTRP.MaxDepth
	}
	return c.Validate()
}

func (c *Config) applyEnv() {
	if key := os.Getenv("NCBI_API_KEY"); key != "" {
		c.NCBI.APIKey = key
	}
}

// Validate checks targets and limits.
func (c *Config) Validate() error {
	for i, t := range c.Convert.Targets {
		t = strings.ToLower(strings.TrimSpace(t))
		if !slices.Contains(Targets, t) {
			return fmt.Errorf("unknown target %q (valid: %s)", t, strings.Join(Targets, ", "))
		}
		c.Convert.Targets[i] = t
	}
	if c.ICTRP.MaxDepth < 1 {
		return fmt.Errorf("ictrp.max_depth must be at least 1, got %d", c.ICTRP.MaxDepth)
	}
	return nil
}

// Save writes c to path as TOML, creating the directory if needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
