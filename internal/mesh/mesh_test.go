package mesh

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/henrybloomingdale/searchconv/internal/ncbi"
)

func loadTestdata(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("loading testdata %s: %v", name, err)
	}
	return data
}

func newTestClient(t *testing.T, srvURL string) *Client {
	t.Helper()
	base := ncbi.NewBaseClient(
		ncbi.WithBaseURL(srvURL),
		ncbi.WithAPIKey("test-key"),
		ncbi.WithEmail("test@example.com"),
	)
	return NewClient(base)
}

// meshServer serves the search and fetch fixtures and records search terms.
func meshServer(t *testing.T, terms *[]string) *httptest.Server {
	t.Helper()
	searchFixture := loadTestdata(t, "mesh_search.json")
	fetchFixture := loadTestdata(t, "mesh_fetch.txt")
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if got := q.Get("db"); got != "mesh" {
			t.Errorf("expected db=mesh, got %q", got)
		}
		switch r.URL.Path {
		case "/esearch.fcgi":
			*terms = append(*terms, q.Get("term"))
			w.Write(searchFixture)
		case "/efetch.fcgi":
			if got := q.Get("id"); got != "68020329" {
				t.Errorf("expected id=68020329, got %q", got)
			}
			w.Write(fetchFixture)
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestLookup_Success(t *testing.T) {
	var terms []string
	srv := meshServer(t, &terms)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	rec, err := c.Lookup(context.Background(), " essential tremor ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if terms[0] != "essential tremor" {
		t.Errorf("expected trimmed search term, got %q", terms[0])
	}
	if rec.UI != "D020329" {
		t.Errorf("expected UI 'D020329', got %q", rec.UI)
	}
	if rec.Name != "Essential Tremor" {
		t.Errorf("expected name 'Essential Tremor', got %q", rec.Name)
	}
	if !strings.HasPrefix(rec.ScopeNote, "A relatively common disorder") {
		t.Errorf("unexpected scope note %q", rec.ScopeNote)
	}
	if len(rec.TreeNumbers) != 3 || rec.TreeNumbers[0] != "C10.228.662.700" {
		t.Errorf("unexpected tree numbers %v", rec.TreeNumbers)
	}
	if rec.Annotation == "" {
		t.Error("expected non-empty annotation")
	}
}

func TestEntryTerms(t *testing.T) {
	var terms []string
	srv := meshServer(t, &terms)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	got, err := c.EntryTerms(context.Background(), "Essential Tremor")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if terms[0] != `"Essential Tremor"[MH]` {
		t.Errorf("expected exact heading search, got %q", terms[0])
	}
	want := []string{
		"Benign Essential Tremor",
		"Familial Tremor",
		"Essential Tremor, Benign",
		"Tremor, Essential",
		"Tremor, Familial",
	}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("entry terms = %v, want %v", got, want)
	}
}

func TestEntryTerms_NameMismatch(t *testing.T) {
	var terms []string
	srv := meshServer(t, &terms)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.EntryTerms(context.Background(), "Tremor")
	if err == nil || !strings.Contains(err.Error(), "closest") {
		t.Errorf("expected mismatch error, got %v", err)
	}
}

func TestLookup_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"esearchresult":{"count":"0","idlist":[]}}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	if _, err := c.Lookup(context.Background(), "nonexistent_mesh_term_xyz"); err == nil {
		t.Error("expected error for not found term, got nil")
	}
}

func TestLookup_EmptyTerm(t *testing.T) {
	c := NewClient(ncbi.NewBaseClient(ncbi.WithBaseURL("http://example.com"), ncbi.WithAPIKey("key")))
	if _, err := c.Lookup(context.Background(), "  "); err == nil {
		t.Error("expected error for empty term, got nil")
	}
	if _, err := c.EntryTerms(context.Background(), ""); err == nil {
		t.Error("expected error for empty descriptor, got nil")
	}
}

func TestLookup_ResponseTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("X", 2048)))
	}))
	defer srv.Close()

	c := NewClient(ncbi.NewBaseClient(
		ncbi.WithBaseURL(srv.URL),
		ncbi.WithAPIKey("test"),
		ncbi.WithMaxResponseBytes(1024),
	))
	_, err := c.Lookup(context.Background(), "test")
	if err == nil || !strings.Contains(err.Error(), "exceeds maximum size") {
		t.Errorf("expected 'exceeds maximum size' error, got: %v", err)
	}
}

func TestParseRecord_IgnoresNoise(t *testing.T) {
	rec := parseRecord("*NEWRECORD\nMH = Asthma\nnot a field\nENTRY = |T047\nUI = D001249\n")
	if rec.Name != "Asthma" || rec.UI != "D001249" {
		t.Errorf("unexpected record %+v", rec)
	}
	if len(rec.EntryTerms) != 0 {
		t.Errorf("expected blank entry term to be skipped, got %v", rec.EntryTerms)
	}
}
