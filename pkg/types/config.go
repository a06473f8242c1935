// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make network
// requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "namecle/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ScanConfig holds settings for PDF text and layout extraction.
type ScanConfig struct {
	// PreviewPages is how many leading pages of text feed the DOI, author,
	// and year regexes (default 5).
	PreviewPages int `json:"preview_pages" yaml:"preview_pages"`

	// TitleFontSizeThreshold is the absolute font size in points above which
	// a first-page span qualifies as a heuristic title (default 15).
	TitleFontSizeThreshold float64 `json:"title_font_size_threshold" yaml:"title_font_size_threshold"`

	// MinTitleLength is the minimum trimmed length of a heuristic title
	// (default 5).
	MinTitleLength int `json:"min_title_length" yaml:"min_title_length"`

	// MaxAuthors caps how many regex-matched names enter the heuristic
	// author list (default 5).
	MaxAuthors int `json:"max_authors" yaml:"max_authors"`
}

// LookupConfig holds settings for the bibliographic lookup chain.
type LookupConfig struct {
	HTTPConfig `yaml:",inline"`

	// SemanticScholarAPIKey is an optional API key for higher rate limits.
	SemanticScholarAPIKey string `json:"semantic_scholar_api_key,omitempty" yaml:"semantic_scholar_api_key,omitempty"`

	// CrossRefMailto is the contact address sent to CrossRef per their
	// etiquette guidelines.
	CrossRefMailto string `json:"crossref_mailto,omitempty" yaml:"crossref_mailto,omitempty"`

	// PolitenessDelay is the minimum spacing between API requests
	// (default 1s).
	PolitenessDelay time.Duration `json:"politeness_delay" yaml:"politeness_delay"`
}

// AIConfig holds settings for the LLM metadata extractor. The extractor
// speaks the OpenAI-style chat completion protocol, so Endpoint may point at
// a local llama.cpp server as well as a hosted API.
type AIConfig struct {
	// Endpoint is the chat completion URL
	// (e.g. "http://127.0.0.1:8080/v1/chat/completions").
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// Model is the model identifier passed through to the endpoint.
	Model string `json:"model" yaml:"model"`

	// APIKey is optional; local servers usually need none.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxInputChars caps the annotated text sent to the model (default 2500).
	MaxInputChars int `json:"max_input_chars" yaml:"max_input_chars"`
}

// RenameConfig holds settings for reconciliation and filename synthesis.
type RenameConfig struct {
	// MaxFilenameLength is the budget for the synthesized name including the
	// ".pdf" suffix (default 255, matching common filesystem limits).
	MaxFilenameLength int `json:"max_filename_length" yaml:"max_filename_length"`

	// TitleSimilarityThreshold gates whether a lookup record corroborates an
	// AI-extracted title (default 0.75).
	TitleSimilarityThreshold float64 `json:"title_similarity_threshold" yaml:"title_similarity_threshold"`

	// Grades is the citation-count tier table.
	Grades GradeThresholds `json:"grades" yaml:"grades"`

	// DryRun runs the full pipeline without touching the filesystem.
	DryRun bool `json:"dry_run" yaml:"dry_run"`

	// WriteMetadata emits a YAML sidecar next to each renamed file.
	WriteMetadata bool `json:"write_metadata" yaml:"write_metadata"`
}

// HistoryConfig holds settings for the run-history store.
type HistoryConfig struct {
	// DBPath is the SQLite database location. Empty disables history.
	DBPath string `json:"db_path" yaml:"db_path"`
}

// PipelineConfig groups all component configurations.
type PipelineConfig struct {
	Scan    ScanConfig    `json:"scan" yaml:"scan"`
	Lookup  LookupConfig  `json:"lookup" yaml:"lookup"`
	AI      AIConfig      `json:"ai" yaml:"ai"`
	Rename  RenameConfig  `json:"rename" yaml:"rename"`
	History HistoryConfig `json:"history" yaml:"history"`
}
