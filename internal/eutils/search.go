package eutils

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

type esearchResponse struct {
	Result esearchResult `json:"esearchresult"`
}

type esearchResult struct {
	Count            string   `json:"count"`
	IDList           []string `json:"idlist"`
	QueryTranslation string   `json:"querytranslation"`
	ErrorList        struct {
		PhrasesNotFound []string `json:"phrasesnotfound"`
		FieldsNotFound  []string `json:"fieldsnotfound"`
	} `json:"errorlist"`
	WarningList struct {
		PhrasesIgnored       []string `json:"phrasesignored"`
		QuotedPhraseNotFound []string `json:"quotedphrasesnotfound"`
		OutputMessages       []string `json:"outputmessages"`
	} `json:"warninglist"`
	ERROR string `json:"ERROR"`
}

// Search performs an ESearch query against PubMed.
func (c *Client) Search(ctx context.Context, query string, opts *SearchOptions) (*SearchResult, error) {
	if query == "" {
		return nil, fmt.Errorf("search query cannot be empty")
	}

	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("term", query)
	params.Set("retmode", "json")

	limit := 20
	if opts != nil {
		if opts.Limit > 0 {
			limit = opts.Limit
		}
		if opts.MinDate != "" && opts.MaxDate != "" {
			params.Set("datetype", "pdat")
			params.Set("mindate", opts.MinDate)
			params.Set("maxdate", opts.MaxDate)
		}
	}
	params.Set("retmax", strconv.Itoa(limit))

	body, err := c.DoGet(ctx, "esearch.fcgi", params)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}

	var resp esearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing search response: %w", err)
	}
	r := resp.Result
	if r.ERROR != "" {
		return nil, fmt.Errorf("PubMed rejected the query: %s", r.ERROR)
	}

	count, _ := strconv.Atoi(r.Count)
	res := &SearchResult{
		Count:            count,
		IDs:              r.IDList,
		QueryTranslation: r.QueryTranslation,
		PhrasesNotFound:  r.ErrorList.PhrasesNotFound,
	}
	if res.IDs == nil {
		res.IDs = []string{}
	}
	for _, f := range r.ErrorList.FieldsNotFound {
		res.Warnings = append(res.Warnings, fmt.Sprintf("field not found: %s", f))
	}
	for _, p := range r.WarningList.PhrasesIgnored {
		res.Warnings = append(res.Warnings, fmt.Sprintf("phrase ignored: %s", p))
	}
	for _, p := range r.WarningList.QuotedPhraseNotFound {
		res.Warnings = append(res.Warnings, fmt.Sprintf("quoted phrase not found: %s", p))
	}
	res.Warnings = append(res.Warnings, r.WarningList.OutputMessages...)
	return res, nil
}
