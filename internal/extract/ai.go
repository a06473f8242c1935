// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/template"
	"time"

	"github.com/pdiddy/namecle/pkg/types"
)

// AIBackend abstracts the LLM metadata extractor so tests can supply a mock.
// Failures are opaque to the pipeline: any error means "no candidate".
type AIBackend interface {
	Extract(ctx context.Context, annotated string) (types.CandidateMetadata, error)
}

// extractionPromptTmpl instructs the model to pull title, authors, and year
// out of layout-annotated first-page text.
var extractionPromptTmpl = template.Must(template.New("extraction").Parse(`You are a bibliography extraction assistant.
Extract the paper title, author names, and publication year from the text below.

Important rules:
- The text contains layout tags like <Title>...</Title>. The text inside these tags is highly likely to be the title.
- Ignore generic headers like "Original Article" or journal names if they are not the main title.
- Respond with a single valid JSON object and nothing else.

Output format:
{"title": "The exact title of the paper", "authors": "Author 1, Author 2, ...", "year": "YYYY"}

Text:
{{.Text}}
`))

// ChatBackend calls an OpenAI-style chat completion endpoint. Pointing
// Endpoint at a local llama.cpp server keeps extraction fully offline.
type ChatBackend struct {
	Endpoint string
	Model    string
	APIKey   string
	Client   *http.Client
}

// NewChatBackend builds a ChatBackend from configuration.
func NewChatBackend(cfg types.AIConfig, timeout time.Duration) *ChatBackend {
	return &ChatBackend{
		Endpoint: cfg.Endpoint,
		Model:    cfg.Model,
		APIKey:   cfg.APIKey,
		Client:   &http.Client{Timeout: timeout},
	}
}

type chatRequest struct {
	Model       string        `json:"model,omitempty"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// aiGuess is the JSON object the model is asked to produce. Year tolerates
// both "2019" and 2019.
type aiGuess struct {
	Title   string     `json:"title"`
	Authors string     `json:"authors"`
	Year    flexString `json:"year"`
}

// flexString decodes a JSON string or number into a string.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(data)
	return nil
}

// Extract renders the prompt, calls the endpoint, and parses the JSON guess
// out of the model reply.
func (b *ChatBackend) Extract(ctx context.Context, annotated string) (types.CandidateMetadata, error) {
	if strings.TrimSpace(annotated) == "" {
		return types.CandidateMetadata{}, fmt.Errorf("no text to extract from")
	}

	var prompt bytes.Buffer
	if err := extractionPromptTmpl.Execute(&prompt, struct{ Text string }{annotated}); err != nil {
		return types.CandidateMetadata{}, fmt.Errorf("rendering prompt: %w", err)
	}

	reqBody := chatRequest{
		Model:       b.Model,
		MaxTokens:   300,
		Temperature: 0.1,
		Messages:    []chatMessage{{Role: "user", Content: prompt.String()}},
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return types.CandidateMetadata{}, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.Endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return types.CandidateMetadata{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if b.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+b.APIKey)
	}

	client := b.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return types.CandidateMetadata{}, fmt.Errorf("LLM request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return types.CandidateMetadata{}, fmt.Errorf("LLM endpoint returned HTTP %d: %s", resp.StatusCode, body)
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return types.CandidateMetadata{}, fmt.Errorf("parsing LLM response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return types.CandidateMetadata{}, fmt.Errorf("LLM response has no choices")
	}

	return parseGuess(cr.Choices[0].Message.Content)
}

// parseGuess extracts the JSON object from a model reply that may be wrapped
// in markdown fences or surrounding prose.
func parseGuess(reply string) (types.CandidateMetadata, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 {
		return types.CandidateMetadata{}, fmt.Errorf("no JSON object in LLM reply")
	}
	var jsonStr string
	if end > start {
		jsonStr = reply[start : end+1]
	} else {
		// Truncated replies sometimes lose the closing brace.
		jsonStr = reply[start:] + "}"
	}

	var g aiGuess
	if err := json.Unmarshal([]byte(jsonStr), &g); err != nil {
		return types.CandidateMetadata{}, fmt.Errorf("parsing LLM guess: %w", err)
	}

	c := types.CandidateMetadata{
		Title:   strings.TrimSpace(g.Title),
		Authors: strings.TrimSpace(g.Authors),
		Year:    strings.TrimSpace(string(g.Year)),
	}
	if c.IsEmpty() {
		return types.CandidateMetadata{}, fmt.Errorf("LLM guess is empty")
	}
	return c, nil
}
