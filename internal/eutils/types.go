package eutils

// SearchResult is the outcome of an ESearch query.
type SearchResult struct {
	Count            int      `json:"count"`
	IDs              []string `json:"ids"`
	QueryTranslation string   `json:"query_translation"`
	// PhrasesNotFound lists terms PubMed could not match at all.
	PhrasesNotFound []string `json:"phrases_not_found,omitempty"`
	// Warnings holds PubMed's notes on ignored or truncated terms.
	Warnings []string `json:"warnings,omitempty"`
}

// SearchOptions configures a search.
type SearchOptions struct {
	Limit   int    `json:"limit,omitempty"`
	MinDate string `json:"min_date,omitempty"`
	MaxDate string `json:"max_date,omitempty"`
}

// CaptureResult reports which seed PMIDs a query retrieves.
type CaptureResult struct {
	Query    string   `json:"query"`
	Count    int      `json:"count"`
	Captured []string `json:"captured"`
	Missing  []string `json:"missing"`
	// Blocks explains each missing PMID, when block queries were given.
	Blocks []BlockCoverage `json:"blocks,omitempty"`
}

// Rate returns the share of seeds captured, from 0 to 1. An empty seed
// set counts as fully captured.
func (r *CaptureResult) Rate() float64 {
	total := len(r.Captured) + len(r.Missing)
	if total == 0 {
		return 1
	}
	return float64(len(r.Captured)) / float64(total)
}

// BlockCoverage tells which blocks of a search retrieve one missing PMID.
// A PMID that PubMed does not know has Exists false and no Hits.
type BlockCoverage struct {
	PMID   string          `json:"pmid"`
	Exists bool            `json:"exists"`
	Hits   map[string]bool `json:"hits,omitempty"`
}

// Block is a named sub-query of a search document.
type Block struct {
	Name  string `json:"name"`
	Query string `json:"query"`
}

// BlockCount is the PubMed hit count of one block.
type BlockCount struct {
	Name  string `json:"name"`
	Query string `json:"query"`
	Count int    `json:"count"`
}
