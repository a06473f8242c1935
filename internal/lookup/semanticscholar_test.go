// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package lookup

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/namecle/internal/httputil"
)

func newTestClient() *httputil.Client {
	return httputil.NewClient(5*time.Second, 0)
}

func TestSemanticScholarByDOI(t *testing.T) {
	var gotPath, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-api-key")
		w.Write([]byte(`{
			"paperId": "abc",
			"title": "A Study of Things",
			"year": 2019,
			"citationCount": 1234,
			"authors": [{"authorId": "1", "name": "Jane Doe"}, {"authorId": "2", "name": "John Smith"}]
		}`))
	}))
	defer srv.Close()

	orig := semanticAPIBase
	semanticAPIBase = srv.URL + "/"
	defer func() { semanticAPIBase = orig }()

	b := &SemanticScholarBackend{Client: newTestClient(), APIKey: "sk_test"}
	rec, err := b.ByDOI(context.Background(), "10.1000/xyz123")
	if err != nil {
		t.Fatalf("ByDOI: %v", err)
	}

	if !strings.HasPrefix(gotPath, "/DOI:10.1000/") {
		t.Errorf("request path = %q, want DOI: prefix", gotPath)
	}
	if gotKey != "sk_test" {
		t.Errorf("x-api-key = %q, want configured key", gotKey)
	}
	if rec.Title != "A Study of Things" {
		t.Errorf("Title = %q", rec.Title)
	}
	if rec.Authors != "Jane Doe, John Smith" {
		t.Errorf("Authors = %q", rec.Authors)
	}
	if rec.Year != "2019" {
		t.Errorf("Year = %q", rec.Year)
	}
	if rec.DOI != "10.1000/xyz123" {
		t.Errorf("DOI = %q, want input DOI carried through", rec.DOI)
	}
	if rec.CitationCount == nil || *rec.CitationCount != 1234 {
		t.Errorf("CitationCount = %v, want 1234", rec.CitationCount)
	}
}

func TestSemanticScholarByDOINotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "Paper not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	orig := semanticAPIBase
	semanticAPIBase = srv.URL + "/"
	defer func() { semanticAPIBase = orig }()

	b := &SemanticScholarBackend{Client: newTestClient()}
	_, err := b.ByDOI(context.Background(), "10.1000/absent")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSemanticScholarByTitleAuthor(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		w.Write([]byte(`{
			"total": 1, "offset": 0,
			"data": [{"paperId": "abc", "title": "A Study of Things", "year": 2019, "citationCount": 7, "authors": []}]
		}`))
	}))
	defer srv.Close()

	orig := semanticAPIBase
	semanticAPIBase = srv.URL + "/"
	defer func() { semanticAPIBase = orig }()

	b := &SemanticScholarBackend{Client: newTestClient()}
	rec, err := b.ByTitleAuthor(context.Background(), "A Study of Things", "Jane Doe")
	if err != nil {
		t.Fatalf("ByTitleAuthor: %v", err)
	}
	if gotQuery != "A Study of Things Jane Doe" {
		t.Errorf("query = %q, want title plus author hint", gotQuery)
	}
	if rec.Title != "A Study of Things" {
		t.Errorf("Title = %q", rec.Title)
	}
}

func TestSemanticScholarSearchEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"total": 0, "offset": 0, "data": []}`))
	}))
	defer srv.Close()

	orig := semanticAPIBase
	semanticAPIBase = srv.URL + "/"
	defer func() { semanticAPIBase = orig }()

	b := &SemanticScholarBackend{Client: newTestClient()}
	_, err := b.ByTitleAuthor(context.Background(), "Unknown Paper", "")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSemanticScholarEmptyTitleShortCircuits(t *testing.T) {
	b := &SemanticScholarBackend{Client: newTestClient()}
	_, err := b.ByTitleAuthor(context.Background(), "", "Jane Doe")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound without any request", err)
	}
}
