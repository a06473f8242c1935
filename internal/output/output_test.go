// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/namecle/internal/batch"
	"github.com/pdiddy/namecle/internal/history"
	"github.com/pdiddy/namecle/pkg/types"
)

func intPtr(n int) *int { return &n }

func TestWriteResults(t *testing.T) {
	outcomes := []types.RenameOutcome{
		{
			OriginalName: "input.pdf",
			NewName:      "2019 sss A Study A, B.pdf",
			Record: &types.CanonicalRecord{
				CandidateMetadata: types.CandidateMetadata{Title: "A Study", CitationCount: intPtr(5000)},
				Grade:             types.GradeSSS,
			},
		},
		{OriginalName: "scan.pdf", Err: types.ErrNoIdentity},
		{OriginalName: "locked.pdf", Err: types.ErrFileLocked, Detail: "permission denied"},
	}
	sum := batch.Summary{Renamed: 1, Skipped: 1, Failed: 1}

	var buf bytes.Buffer
	WriteResults(&buf, outcomes, sum)
	got := buf.String()

	for _, want := range []string{
		"2019 sss A Study A, B.pdf",
		"5000",
		"SSS",
		"skipped: no-identity",
		"failed: file-locked",
		"Processed 3 files",
		"1 renamed",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestWriteResultsEmpty(t *testing.T) {
	var buf bytes.Buffer
	WriteResults(&buf, nil, batch.Summary{})
	if !strings.Contains(buf.String(), "No files processed") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestWriteRecord(t *testing.T) {
	rec := types.CanonicalRecord{
		CandidateMetadata: types.CandidateMetadata{
			Title:         "A Study of Things",
			Authors:       "Jane Doe, John Smith",
			Year:          "2019",
			DOI:           "10.1000/xyz123",
			CitationCount: intPtr(42),
		},
		Grade: types.GradeAAA,
	}

	var buf bytes.Buffer
	WriteRecord(&buf, "input.pdf", rec, "2019 aaa A Study of Things Jane Doe, John Smith.pdf")
	got := buf.String()

	for _, want := range []string{"A Study of Things", "10.1000/xyz123", "42", "AAA", "2019 aaa"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestWriteHistory(t *testing.T) {
	entries := []history.Entry{
		{
			Original:  "input.pdf",
			NewName:   "2019 sss A Study.pdf",
			Grade:     "SSS",
			RenamedAt: time.Date(2026, 8, 1, 10, 30, 0, 0, time.UTC),
		},
		{Original: "scan.pdf", ErrorKind: "no-identity"},
	}

	var buf bytes.Buffer
	WriteHistory(&buf, entries)
	got := buf.String()

	for _, want := range []string{"2019 sss A Study.pdf", "2026-08-01 10:30", "no-identity"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestWriteHistoryEmpty(t *testing.T) {
	var buf bytes.Buffer
	WriteHistory(&buf, nil)
	if !strings.Contains(buf.String(), "No rename history") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate() = %q", got)
	}
	got := truncate("a very long original filename.pdf", 10)
	if len([]rune(got)) != 10 || !strings.HasSuffix(got, "…") {
		t.Errorf("truncate() = %q, want 10 runes ending in ellipsis", got)
	}
}
