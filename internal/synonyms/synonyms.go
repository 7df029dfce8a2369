// Package synonyms holds the free-text terms that stand in for MeSH
// headings in registries without a controlled vocabulary (ICTRP and
// ClinicalTrials.gov).
//
// A synonym file is YAML (or JSON, which YAML accepts) mapping each
// descriptor to its terms:
//
//	Essential Tremor:
//	  - essential tremor
//	  - benign tremor
//	  - familial tremor
package synonyms

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Map maps a descriptor, compared case-insensitively, to its terms.
type Map map[string][]string

// Parse decodes a YAML or JSON synonym map.
func Parse(data []byte) (Map, error) {
	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing synonyms: %w", err)
	}
	m := make(Map, len(raw))
	for desc, terms := range raw {
		m.Add(desc, terms...)
	}
	return m, nil
}

// Load reads a synonym file.
func Load(path string) (Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading synonyms: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Add appends terms to desc, skipping blanks and case-insensitive
// duplicates.
func (m Map) Add(desc string, terms ...string) {
	key := key(desc)
	if key == "" {
		return
	}
	list := m[key]
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t == "" || contains(list, t) {
			continue
		}
		list = append(list, t)
	}
	if len(list) > 0 {
		m[key] = list
	}
}

// Lookup returns the terms for desc, or nil.
func (m Map) Lookup(desc string) []string {
	return m[key(desc)]
}

// Clone returns an independent copy of m. Cloning a nil Map yields an
// empty one.
func (m Map) Clone() Map {
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// EntryTermLookup fetches the entry terms (synonyms) of a MeSH descriptor.
type EntryTermLookup interface {
	EntryTerms(ctx context.Context, descriptor string) ([]string, error)
}

// Expand returns a copy of m with an entry for every descriptor m does not
// already cover. The descriptor itself is listed first, followed by its
// entry terms. Descriptors whose lookup fails are left out and their errors
// returned together; the partial map is still usable.
func Expand(ctx context.Context, lookup EntryTermLookup, descriptors []string, m Map) (Map, error) {
	out := m.Clone()
	var errs []error
	for _, desc := range descriptors {
		if out.Lookup(desc) != nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return out, err
		}
		terms, err := lookup.EntryTerms(ctx, desc)
		if err != nil {
			errs = append(errs, fmt.Errorf("entry terms for %q: %w", desc, err))
			continue
		}
		out.Add(desc, append([]string{desc}, terms...)...)
	}
	return out, errors.Join(errs...)
}

func key(desc string) string {
	return strings.ToLower(strings.TrimSpace(desc))
}

func contains(list []string, t string) bool {
	for _, s := range list {
		if strings.EqualFold(s, t) {
			return true
		}
	}
	return false
}
