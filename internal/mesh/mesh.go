// Package mesh looks up MeSH descriptors through NCBI E-utilities. Entry
// terms feed synonym expansion for registries that have no MeSH index.
package mesh

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/henrybloomingdale/searchconv/internal/ncbi"
)

// Record is a MeSH descriptor record.
type Record struct {
	UI          string   `json:"ui"`
	Name        string   `json:"name"`
	ScopeNote   string   `json:"scope_note"`
	TreeNumbers []string `json:"tree_numbers"`
	EntryTerms  []string `json:"entry_terms"`
	Annotation  string   `json:"annotation,omitempty"`
}

// Client looks up MeSH records.
type Client struct {
	*ncbi.BaseClient
}

// NewClient creates a client sharing base with other NCBI clients.
func NewClient(base *ncbi.BaseClient) *Client {
	return &Client{BaseClient: base}
}

type searchResponse struct {
	Result struct {
		Count  string   `json:"count"`
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

// Lookup returns the best-matching descriptor for a free-text term.
func (c *Client) Lookup(ctx context.Context, term string) (*Record, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, fmt.Errorf("MeSH term cannot be empty")
	}
	return c.first(ctx, term, term)
}

// EntryTerms returns the entry terms of the descriptor named exactly
// descriptor. It satisfies synonyms.EntryTermLookup.
func (c *Client) EntryTerms(ctx context.Context, descriptor string) ([]string, error) {
	descriptor = strings.TrimSpace(descriptor)
	if descriptor == "" {
		return nil, fmt.Errorf("MeSH descriptor cannot be empty")
	}
	rec, err := c.first(ctx, `"`+descriptor+`"[MH]`, descriptor)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(rec.Name, descriptor) {
		return nil, fmt.Errorf("MeSH descriptor %q not found (closest: %q)", descriptor, rec.Name)
	}
	return rec.EntryTerms, nil
}

func (c *Client) first(ctx context.Context, query, label string) (*Record, error) {
	ids, err := c.search(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("MeSH term %q not found", label)
	}
	return c.fetch(ctx, ids[0])
}

func (c *Client) search(ctx context.Context, query string) ([]string, error) {
	params := url.Values{}
	params.Set("db", "mesh")
	params.Set("term", query)
	params.Set("retmode", "json")

	body, err := c.DoGet(ctx, "esearch.fcgi", params)
	if err != nil {
		return nil, fmt.Errorf("MeSH search failed: %w", err)
	}
	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing MeSH search response: %w", err)
	}
	return resp.Result.IDList, nil
}

func (c *Client) fetch(ctx context.Context, uid string) (*Record, error) {
	params := url.Values{}
	params.Set("db", "mesh")
	params.Set("id", uid)
	params.Set("rettype", "full")
	params.Set("retmode", "text")

	body, err := c.DoGet(ctx, "efetch.fcgi", params)
	if err != nil {
		return nil, fmt.Errorf("MeSH fetch failed: %w", err)
	}
	rec := parseRecord(string(body))
	return &rec, nil
}

// parseRecord reads the MeSH ASCII format ("KEY = value" lines).
func parseRecord(text string) Record {
	var rec Record
	for _, line := range strings.Split(text, "\n") {
		key, value, ok := strings.Cut(strings.TrimSpace(line), " = ")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "MH":
			rec.Name = value
		case "UI":
			rec.UI = value
		case "MS":
			rec.ScopeNote = value
		case "MN":
			rec.TreeNumbers = append(rec.TreeNumbers, value)
		case "AN":
			rec.Annotation = value
		case "ENTRY", "PRINT ENTRY":
			// Term|semantic type|... ; only the term is kept.
			term, _, _ := strings.Cut(value, "|")
			if term = strings.TrimSpace(term); term != "" {
				rec.EntryTerms = append(rec.EntryTerms, term)
			}
		}
	}
	return rec
}
