// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract derives candidate bibliographic metadata from PDF text:
// a DOI by pattern match, a title by font-size heuristics, authors and year
// by regular expressions, and optionally a structured guess from an LLM.
package extract

import (
	"regexp"
	"strings"

	"github.com/pdiddy/namecle/internal/pdfscan"
	"github.com/pdiddy/namecle/pkg/types"
)

// doiPattern matches DOIs in running text, with or without a doi.org or
// "doi:" prefix. Group 1 is the bare identifier ("10.xxxx/...").
var doiPattern = regexp.MustCompile(`(?i)\b(?:https?://doi\.org/|doi[:\s]*)?(10\.\d{4,9}/[-._;()/:A-Z0-9]+)\b`)

// authorPattern matches capitalized name shapes: initials followed by a
// surname ("J.R. Smith") or two capitalized words ("Jane Smith").
var authorPattern = regexp.MustCompile(`([A-Z]\.[A-Z]?\.?\s?[A-Z][a-z]+|[A-Z][a-z]+\s[A-Z][a-z]+)`)

// yearPattern matches a plausible publication year.
var yearPattern = regexp.MustCompile(`(20\d{2}|19\d{2})`)

// FindDOI returns the first DOI found in text, or "".
func FindDOI(text string) string {
	m := doiPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}

// Heuristics builds a candidate from layout spans and the preview text
// without any network or model involvement. Title: the first page-one line
// whose font size exceeds the configured threshold and whose trimmed length
// exceeds the minimum. Authors: the first MaxAuthors regex matches over the
// preview text, deduplicated in order, comma-joined. Year: the first
// four-digit match.
func Heuristics(spans []pdfscan.Span, previewText string, cfg types.ScanConfig) types.CandidateMetadata {
	var c types.CandidateMetadata

	for _, s := range spans {
		t := strings.TrimSpace(s.Text)
		if s.FontSize > cfg.TitleFontSizeThreshold && len(t) > cfg.MinTitleLength {
			c.Title = t
			break
		}
	}

	matches := authorPattern.FindAllString(previewText, -1)
	seen := make(map[string]bool, len(matches))
	var names []string
	for _, name := range matches {
		if len(names) >= cfg.MaxAuthors {
			break
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	c.Authors = strings.Join(names, ", ")

	c.Year = yearPattern.FindString(previewText)
	return c
}

// titleBandRatio is the fraction of the page's maximum font size a line must
// reach to be tagged as title material for the LLM prompt.
const titleBandRatio = 0.9

// AnnotatedText renders first-page spans as plain lines with
// <Title>...</Title> wrapped around those in the top font-size band, capped
// at maxChars. The tags are layout hints for the LLM extractor.
func AnnotatedText(spans []pdfscan.Span, maxChars int) string {
	var maxSize float64
	for _, s := range spans {
		if s.FontSize > maxSize {
			maxSize = s.FontSize
		}
	}
	threshold := maxSize * titleBandRatio

	var lines []string
	for _, s := range spans {
		t := strings.TrimSpace(s.Text)
		if t == "" {
			continue
		}
		if maxSize > 0 && s.FontSize >= threshold {
			t = "<Title>" + t + "</Title>"
		}
		lines = append(lines, t)
	}

	out := strings.Join(lines, "\n")
	if maxChars > 0 && len(out) > maxChars {
		// Cap on a rune boundary; a byte slice could split a multibyte
		// character and ship invalid UTF-8 to the model.
		if r := []rune(out); len(r) > maxChars {
			out = string(r[:maxChars])
		}
	}
	return out
}
