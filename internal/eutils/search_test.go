package eutils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func loadTestdata(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("loading testdata %s: %v", name, err)
	}
	return data
}

func TestSearch_Success(t *testing.T) {
	fixture := loadTestdata(t, "esearch_helicobacter.json")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/esearch.fcgi" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		q := r.URL.Query()
		if got := q.Get("db"); got != "pubmed" {
			t.Errorf("expected db=pubmed, got %q", got)
		}
		if got := q.Get("retmax"); got != "3" {
			t.Errorf("expected retmax=3, got %q", got)
		}
		if got := q.Get("mindate"); got != "2000" {
			t.Errorf("expected mindate=2000, got %q", got)
		}
		w.Write(fixture)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithAPIKey("test"))
	res, err := c.Search(context.Background(), `"helicobacter"[Mesh] AND nsaid*[tiab]`,
		&SearchOptions{Limit: 3, MinDate: "2000", MaxDate: "2024"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Count != 1234 {
		t.Errorf("expected count 1234, got %d", res.Count)
	}
	if len(res.IDs) != 3 || res.IDs[0] != "38292123" {
		t.Errorf("unexpected ids %v", res.IDs)
	}
	if !strings.Contains(res.QueryTranslation, "Title/Abstract") {
		t.Errorf("unexpected translation %q", res.QueryTranslation)
	}
	if len(res.PhrasesNotFound) != 1 || res.PhrasesNotFound[0] != "zzqxhelico" {
		t.Errorf("unexpected phrases not found %v", res.PhrasesNotFound)
	}
	want := []string{"phrase ignored: and", "No items found."}
	if strings.Join(res.Warnings, "|") != strings.Join(want, "|") {
		t.Errorf("warnings = %v, want %v", res.Warnings, want)
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	c := NewClient()
	if _, err := c.Search(context.Background(), "", nil); err == nil {
		t.Error("expected error for empty query")
	}
}

func TestSearch_QueryRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"esearchresult": {"ERROR": "Invalid query"}}`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithAPIKey("test"))
	_, err := c.Search(context.Background(), "((", nil)
	if err == nil || !strings.Contains(err.Error(), "Invalid query") {
		t.Errorf("expected rejection error, got %v", err)
	}
}

func TestSearch_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithAPIKey("test"))
	if _, err := c.Search(context.Background(), "asthma", nil); err == nil {
		t.Error("expected parse error")
	}
}
