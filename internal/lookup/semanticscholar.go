// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/namecle/internal/httputil"
	"github.com/pdiddy/namecle/pkg/types"
)

// semanticAPIBase is the Semantic Scholar Graph API paper endpoint. Declared
// as a var so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1/paper/"

const semanticFields = "title,authors,citationCount,year"

// SemanticScholarBackend queries the Semantic Scholar Graph API.
type SemanticScholarBackend struct {
	Client *httputil.Client
	APIKey string
	Agent  string
}

// Name returns the backend identifier.
func (b *SemanticScholarBackend) Name() string { return "semantic_scholar" }

// ByDOI fetches a paper by exact DOI.
func (b *SemanticScholarBackend) ByDOI(ctx context.Context, doi string) (types.CandidateMetadata, error) {
	if !strings.HasPrefix(strings.ToUpper(doi), "DOI:") {
		doi = "DOI:" + doi
	}
	reqURL := semanticAPIBase + doi + "?fields=" + semanticFields

	var paper semanticPaper
	if err := b.get(ctx, reqURL, &paper); err != nil {
		return types.CandidateMetadata{}, err
	}
	if paper.Title == "" && len(paper.Authors) == 0 {
		return types.CandidateMetadata{}, ErrNotFound
	}
	rec := paper.candidate()
	rec.DOI = strings.TrimPrefix(doi, "DOI:")
	return rec, nil
}

// ByTitleAuthor searches for the single best match on title, optionally
// narrowed by the first author's name.
func (b *SemanticScholarBackend) ByTitleAuthor(ctx context.Context, title, author string) (types.CandidateMetadata, error) {
	if title == "" {
		return types.CandidateMetadata{}, ErrNotFound
	}
	query := title
	if author != "" {
		query += " " + author
	}
	params := url.Values{
		"query":  {query},
		"limit":  {"1"},
		"fields": {semanticFields},
	}
	reqURL := semanticAPIBase + "search?" + params.Encode()

	var sr semanticSearchResponse
	if err := b.get(ctx, reqURL, &sr); err != nil {
		return types.CandidateMetadata{}, err
	}
	if len(sr.Data) == 0 {
		return types.CandidateMetadata{}, ErrNotFound
	}
	return sr.Data[0].candidate(), nil
}

func (b *SemanticScholarBackend) get(ctx context.Context, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if b.Agent != "" {
		req.Header.Set("User-Agent", b.Agent)
	}
	if b.APIKey != "" {
		req.Header.Set("x-api-key", b.APIKey)
	}

	resp, err := b.Client.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("Semantic Scholar API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Semantic Scholar API returned HTTP %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing Semantic Scholar response: %w", err)
	}
	return nil
}

// Semantic Scholar API JSON structures.
type semanticSearchResponse struct {
	Total  int             `json:"total"`
	Offset int             `json:"offset"`
	Data   []semanticPaper `json:"data"`
}

type semanticPaper struct {
	PaperID       string           `json:"paperId"`
	Title         string           `json:"title"`
	Year          int              `json:"year"`
	CitationCount *int             `json:"citationCount"`
	Authors       []semanticAuthor `json:"authors"`
}

type semanticAuthor struct {
	AuthorID string `json:"authorId"`
	Name     string `json:"name"`
}

func (p semanticPaper) candidate() types.CandidateMetadata {
	names := make([]string, 0, len(p.Authors))
	for _, a := range p.Authors {
		if a.Name != "" {
			names = append(names, a.Name)
		}
	}
	c := types.CandidateMetadata{
		Title:         p.Title,
		Authors:       strings.Join(names, ", "),
		CitationCount: p.CitationCount,
	}
	if p.Year > 0 {
		c.Year = strconv.Itoa(p.Year)
	}
	return c
}
