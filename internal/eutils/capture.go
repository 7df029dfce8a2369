package eutils

import (
	"context"
	"fmt"
	"slices"
	"strings"
)

// Capture runs query restricted to pmids and reports which of them it
// retrieves. The query is sent once as "(query) AND (p1[uid] OR ...)".
func (c *Client) Capture(ctx context.Context, query string, pmids []string) (*CaptureResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("capture query cannot be empty")
	}
	seeds := uniqueIDs(pmids)
	res := &CaptureResult{Query: query, Captured: []string{}, Missing: []string{}}

	total, err := c.Search(ctx, query, &SearchOptions{Limit: 1})
	if err != nil {
		return nil, fmt.Errorf("counting query: %w", err)
	}
	res.Count = total.Count
	if len(seeds) == 0 {
		return res, nil
	}

	hits, err := c.Search(ctx, restrict(query, seeds), &SearchOptions{Limit: len(seeds)})
	if err != nil {
		return nil, fmt.Errorf("checking seed PMIDs: %w", err)
	}
	found := make(map[string]bool, len(hits.IDs))
	for _, id := range hits.IDs {
		found[id] = true
	}
	for _, id := range seeds {
		if found[id] {
			res.Captured = append(res.Captured, id)
		} else {
			res.Missing = append(res.Missing, id)
		}
	}
	return res, nil
}

// Diagnose explains each missing PMID in res by running every block
// restricted to that PMID. It fills res.Blocks.
func (c *Client) Diagnose(ctx context.Context, res *CaptureResult, blocks []Block) error {
	for _, id := range res.Missing {
		cov := BlockCoverage{PMID: id}
		exists, err := c.Search(ctx, id+"[uid]", &SearchOptions{Limit: 1})
		if err != nil {
			return fmt.Errorf("looking up PMID %s: %w", id, err)
		}
		if exists.Count > 0 {
			cov.Exists = true
			cov.Hits = make(map[string]bool, len(blocks))
			for _, b := range blocks {
				r, err := c.Search(ctx, "("+b.Query+") AND "+id+"[uid]", &SearchOptions{Limit: 1})
				if err != nil {
					return fmt.Errorf("checking block %s for PMID %s: %w", b.Name, id, err)
				}
				cov.Hits[b.Name] = r.Count > 0
			}
		}
		res.Blocks = append(res.Blocks, cov)
	}
	return nil
}

func restrict(query string, pmids []string) string {
	uids := make([]string, len(pmids))
	for i, id := range pmids {
		uids[i] = id + "[uid]"
	}
	return "(" + query + ") AND (" + strings.Join(uids, " OR ") + ")"
}

// uniqueIDs trims, drops blanks and duplicates, and sorts numerically.
func uniqueIDs(pmids []string) []string {
	var out []string
	for _, id := range pmids {
		id = strings.TrimSpace(id)
		if id != "" && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	slices.SortFunc(out, func(a, b string) int {
		if len(a) != len(b) {
			return len(a) - len(b)
		}
		return strings.Compare(a, b)
	})
	return out
}

// Counts returns the hit count of every block, in order.
func (c *Client) Counts(ctx context.Context, blocks []Block) ([]BlockCount, error) {
	out := make([]BlockCount, 0, len(blocks))
	for _, b := range blocks {
		r, err := c.Search(ctx, b.Query, &SearchOptions{Limit: 1})
		if err != nil {
			return nil, fmt.Errorf("counting %s: %w", b.Name, err)
		}
		out = append(out, BlockCount{Name: b.Name, Query: b.Query, Count: r.Count})
	}
	return out, nil
}
