// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdfscan reads text and layout spans from PDF files. It is the
// extraction collaborator for the rename pipeline: callers get per-line text
// with font sizes for the first page, and raw concatenated text for the
// leading pages. Any error from this package means the file is unreadable
// and the pipeline treats it as "no candidate, no DOI".
package pdfscan

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// spacingCoefficient multiplied by font size decides whether two adjacent
// text fragments on a line belong to separate words.
const spacingCoefficient = 0.16

// Span is one assembled line of first-page text with its dominant font size.
type Span struct {
	Text     string
	FontSize float64
}

// Validate checks that path names a readable, regular .pdf file.
func Validate(path string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("file does not exist: %s", path)
	}
	if err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", path)
	}
	if !strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return fmt.Errorf("file is not a PDF: %s", path)
	}
	return nil
}

// ReadFirstPages returns the concatenated plain text of up to n leading
// pages.
func ReadFirstPages(path string, n int) (text string, err error) {
	defer recoverReader(&err)

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}
	defer f.Close()

	last := r.NumPage()
	if n > 0 && n < last {
		last = n
	}

	var b strings.Builder
	for i := 1; i <= last; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		pageText, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(pageText)
	}
	return b.String(), nil
}

// ReadPageSpans returns the first page's text assembled into lines, each
// with the maximum font size seen on that line, in top-to-bottom reading
// order.
func ReadPageSpans(path string) (spans []Span, err error) {
	defer recoverReader(&err)

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer f.Close()

	if r.NumPage() < 1 {
		return nil, fmt.Errorf("PDF has no pages")
	}
	p := r.Page(1)
	if p.V.IsNull() {
		return nil, fmt.Errorf("PDF first page is empty")
	}

	return assembleLines(p.Content().Text), nil
}

// assembleLines groups raw text fragments by Y coordinate into lines. PDF Y
// grows upward, so lines are ordered by descending Y; fragments within a
// line by ascending X, with a space inserted at word-sized gaps.
func assembleLines(texts []pdf.Text) []Span {
	byY := make(map[float64][]pdf.Text)
	for _, t := range texts {
		if strings.TrimSpace(t.S) == "" && t.S != " " {
			continue
		}
		byY[t.Y] = append(byY[t.Y], t)
	}

	ys := make([]float64, 0, len(byY))
	for y := range byY {
		ys = append(ys, y)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(ys)))

	var spans []Span
	for _, y := range ys {
		frags := byY[y]
		sort.Slice(frags, func(i, j int) bool { return frags[i].X < frags[j].X })

		var b strings.Builder
		var size, endX float64
		for i, t := range frags {
			if i > 0 && t.X-endX > spacingCoefficient*t.FontSize {
				b.WriteByte(' ')
			}
			b.WriteString(t.S)
			endX = t.X + t.W
			if t.FontSize > size {
				size = t.FontSize
			}
		}

		line := strings.TrimSpace(b.String())
		if line == "" {
			continue
		}
		spans = append(spans, Span{Text: line, FontSize: size})
	}
	return spans
}

// recoverReader converts reader panics into errors. The underlying PDF
// library panics on some malformed files rather than returning an error.
func recoverReader(err *error) {
	if val := recover(); val != nil {
		if e, ok := val.(error); ok {
			*err = fmt.Errorf("reader panic: %w", e)
			return
		}
		*err = fmt.Errorf("reader panic: %v", val)
	}
}
