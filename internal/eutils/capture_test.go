package eutils

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// fakeESearch answers ESearch requests from a term → (count, ids) table.
func fakeESearch(t *testing.T, answers map[string][]string, terms *[]string) *httptest.Server {
	t.Helper()
	var mu sync.Mutex
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		term := r.URL.Query().Get("term")
		mu.Lock()
		*terms = append(*terms, term)
		mu.Unlock()
		ids, ok := answers[term]
		if !ok {
			fmt.Fprint(w, `{"esearchresult": {"count": "0", "idlist": []}}`)
			return
		}
		quoted := make([]string, len(ids))
		for i, id := range ids {
			quoted[i] = `"` + id + `"`
		}
		fmt.Fprintf(w, `{"esearchresult": {"count": "%d", "idlist": [%s]}}`, len(ids)*10, strings.Join(quoted, ","))
	}))
}

func TestCapture(t *testing.T) {
	const query = `helicobacter[tiab] AND nsaid*[tiab]`
	restricted := "(" + query + ") AND (1415095[uid] OR 9576450[uid] OR 99999999[uid])"
	var terms []string
	srv := fakeESearch(t, map[string][]string{
		query:      {"38292123"},
		restricted: {"9576450", "1415095"},
	}, &terms)
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithAPIKey("test"))
	res, err := c.Capture(context.Background(), query, []string{"9576450", " 1415095", "99999999", "1415095", ""})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Count != 10 {
		t.Errorf("expected count 10, got %d", res.Count)
	}
	if strings.Join(res.Captured, ",") != "1415095,9576450" {
		t.Errorf("captured = %v", res.Captured)
	}
	if strings.Join(res.Missing, ",") != "99999999" {
		t.Errorf("missing = %v", res.Missing)
	}
	if len(terms) != 2 || terms[1] != restricted {
		t.Errorf("unexpected terms sent: %q", terms)
	}
	if got := res.Rate(); got < 0.66 || got > 0.67 {
		t.Errorf("expected rate 2/3, got %v", got)
	}
}

func TestCapture_NoSeeds(t *testing.T) {
	var terms []string
	srv := fakeESearch(t, map[string][]string{"asthma": {"1"}}, &terms)
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithAPIKey("test"))
	res, err := c.Capture(context.Background(), "asthma", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(terms) != 1 {
		t.Errorf("expected only the count request, got %q", terms)
	}
	if res.Rate() != 1 || len(res.Missing) != 0 {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestCapture_EmptyQuery(t *testing.T) {
	c := NewClient()
	if _, err := c.Capture(context.Background(), "  ", []string{"1"}); err == nil {
		t.Error("expected error for empty query")
	}
}

func TestDiagnose(t *testing.T) {
	var terms []string
	srv := fakeESearch(t, map[string][]string{
		"99999999[uid]":                          {"99999999"},
		"(helicobacter[tiab]) AND 99999999[uid]": {"99999999"},
	}, &terms)
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithAPIKey("test"))
	res := &CaptureResult{Missing: []string{"99999999", "11111111"}}
	blocks := []Block{
		{Name: "#1", Query: "helicobacter[tiab]"},
		{Name: "#2", Query: "nsaid*[tiab]"},
	}
	if err := c.Diagnose(context.Background(), res, blocks); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.Blocks) != 2 {
		t.Fatalf("expected 2 coverage entries, got %d", len(res.Blocks))
	}
	first := res.Blocks[0]
	if !first.Exists || !first.Hits["#1"] || first.Hits["#2"] {
		t.Errorf("unexpected coverage %+v", first)
	}
	second := res.Blocks[1]
	if second.Exists || second.Hits != nil {
		t.Errorf("expected unknown PMID, got %+v", second)
	}
}

func TestCounts(t *testing.T) {
	var terms []string
	srv := fakeESearch(t, map[string][]string{
		"helicobacter[tiab]": {"1", "2"},
	}, &terms)
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithAPIKey("test"))
	got, err := c.Counts(context.Background(), []Block{
		{Name: "#1", Query: "helicobacter[tiab]"},
		{Name: "#2", Query: "zzqx[tiab]"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].Count != 20 || got[1].Count != 0 || got[1].Name != "#2" {
		t.Errorf("unexpected counts %+v", got)
	}
}
