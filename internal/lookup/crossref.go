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

// crossrefAPIBase is the CrossRef works endpoint. Declared as a var so tests
// can substitute an httptest server.
var crossrefAPIBase = "https://api.crossref.org/works"

// CrossRefBackend queries the CrossRef REST API. Mailto goes into the
// User-Agent per CrossRef's etiquette guidelines, which grants access to the
// polite request pool.
type CrossRefBackend struct {
	Client *httputil.Client
	Agent  string
	Mailto string
}

// Name returns the backend identifier.
func (b *CrossRefBackend) Name() string { return "crossref" }

// ByDOI fetches a work by exact DOI.
func (b *CrossRefBackend) ByDOI(ctx context.Context, doi string) (types.CandidateMetadata, error) {
	reqURL := crossrefAPIBase + "/" + url.PathEscape(doi)

	var cr crossrefSingleResponse
	if err := b.get(ctx, reqURL, &cr); err != nil {
		return types.CandidateMetadata{}, err
	}
	if cr.Message.empty() {
		return types.CandidateMetadata{}, ErrNotFound
	}
	rec := cr.Message.candidate()
	rec.DOI = doi
	return rec, nil
}

// ByTitleAuthor searches for the single most relevant work by title,
// optionally narrowed by author.
func (b *CrossRefBackend) ByTitleAuthor(ctx context.Context, title, author string) (types.CandidateMetadata, error) {
	if title == "" {
		return types.CandidateMetadata{}, ErrNotFound
	}
	params := url.Values{
		"query.title": {title},
		"rows":        {"1"},
	}
	if author != "" {
		params.Set("query.author", author)
	}
	reqURL := crossrefAPIBase + "?" + params.Encode()

	var cr crossrefListResponse
	if err := b.get(ctx, reqURL, &cr); err != nil {
		return types.CandidateMetadata{}, err
	}
	if len(cr.Message.Items) == 0 || cr.Message.Items[0].empty() {
		return types.CandidateMetadata{}, ErrNotFound
	}
	return cr.Message.Items[0].candidate(), nil
}

func (b *CrossRefBackend) get(ctx context.Context, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	agent := b.Agent
	if b.Mailto != "" {
		agent = strings.TrimSpace(agent + " (mailto:" + b.Mailto + ")")
	}
	if agent != "" {
		req.Header.Set("User-Agent", agent)
	}

	resp, err := b.Client.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("CrossRef API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("CrossRef API returned HTTP %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing CrossRef response: %w", err)
	}
	return nil
}

// CrossRef API JSON structures.
type crossrefSingleResponse struct {
	Message crossrefWork `json:"message"`
}

type crossrefListResponse struct {
	Message struct {
		Items []crossrefWork `json:"items"`
	} `json:"message"`
}

type crossrefWork struct {
	Title             []string         `json:"title"`
	Author            []crossrefAuthor `json:"author"`
	Issued            crossrefDate     `json:"issued"`
	ReferencedByCount *int             `json:"is-referenced-by-count"`
}

type crossrefAuthor struct {
	Given  string `json:"given"`
	Family string `json:"family"`
}

type crossrefDate struct {
	DateParts [][]int `json:"date-parts"`
}

func (w crossrefWork) empty() bool {
	return len(w.Title) == 0 && len(w.Author) == 0
}

func (w crossrefWork) candidate() types.CandidateMetadata {
	c := types.CandidateMetadata{
		CitationCount: w.ReferencedByCount,
	}
	if len(w.Title) > 0 {
		c.Title = w.Title[0]
	}

	names := make([]string, 0, len(w.Author))
	for _, a := range w.Author {
		name := strings.TrimSpace(a.Given + " " + a.Family)
		if name != "" {
			names = append(names, name)
		}
	}
	c.Authors = strings.Join(names, ", ")

	if len(w.Issued.DateParts) > 0 && len(w.Issued.DateParts[0]) > 0 && w.Issued.DateParts[0][0] > 0 {
		c.Year = strconv.Itoa(w.Issued.DateParts[0][0])
	}
	return c
}
