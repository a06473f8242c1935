// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the shared data model and configuration for namecle.
package types

import "strings"

// CandidateSource identifies where a metadata candidate came from.
type CandidateSource string

const (
	SourceHeuristic   CandidateSource = "heuristic"
	SourceAI          CandidateSource = "ai"
	SourceLookupDOI   CandidateSource = "lookup-doi"
	SourceLookupTitle CandidateSource = "lookup-title"
	SourceManual      CandidateSource = "manual"
)

// CandidateMetadata is one extraction source's guess at a paper's
// bibliographic identity. Instances are built once per file per source and
// never mutated afterwards.
type CandidateMetadata struct {
	// Title is the paper title, or "" when the source found none.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Authors is a comma-joined author list in extraction order, with
	// duplicates removed.
	Authors string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// Year is a four-digit publication year, or "".
	Year string `json:"year,omitempty" yaml:"year,omitempty"`

	// DOI is the Digital Object Identifier, or "".
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// CitationCount is nil when the source carries no citation data.
	// Only lookup backends ever set it.
	CitationCount *int `json:"citation_count,omitempty" yaml:"citation_count,omitempty"`
}

// IsEmpty reports whether the candidate carries no usable field at all.
// Citation count alone never makes a candidate usable.
func (c CandidateMetadata) IsEmpty() bool {
	return c.Title == "" && c.Authors == "" && c.Year == ""
}

// FirstAuthor returns the first comma-separated author entry, trimmed.
func (c CandidateMetadata) FirstAuthor() string {
	first, _, _ := strings.Cut(c.Authors, ",")
	return strings.TrimSpace(first)
}

// Grade is a coarse citation-count tier embedded in the synthesized filename.
type Grade string

const (
	GradeSSS Grade = "SSS"
	GradeAAA Grade = "AAA"
	GradeBBB Grade = "BBB"
	GradeCCC Grade = "CCC"
)

// Token returns the lowercase form used inside filenames.
func (g Grade) Token() string {
	return strings.ToLower(string(g))
}

// GradeThresholds holds the citation-count lower bounds for each tier.
// The table is read-only configuration; below BBB (or with no citation data
// at all) a record grades CCC.
type GradeThresholds struct {
	SSS int `json:"sss" yaml:"sss"`
	AAA int `json:"aaa" yaml:"aaa"`
	BBB int `json:"bbb" yaml:"bbb"`
}

// DefaultGradeThresholds returns the standard tier table.
func DefaultGradeThresholds() GradeThresholds {
	return GradeThresholds{SSS: 1000, AAA: 100, BBB: 10}
}

// Grade evaluates the thresholds highest-first against a citation count.
// A nil count yields CCC.
func (t GradeThresholds) Grade(citations *int) Grade {
	if citations == nil {
		return GradeCCC
	}
	switch c := *citations; {
	case c >= t.SSS:
		return GradeSSS
	case c >= t.AAA:
		return GradeAAA
	case c >= t.BBB:
		return GradeBBB
	default:
		return GradeCCC
	}
}

// CanonicalRecord is the single reconciled metadata result for one file.
// Grade is always set; it is consumed by filename synthesis and then
// discarded.
type CanonicalRecord struct {
	CandidateMetadata `yaml:",inline"`

	// Grade is derived solely from CitationCount (CCC when unset).
	Grade Grade `json:"grade" yaml:"grade"`
}

// ErrorKind is the finite per-file failure taxonomy. Every kind is contained
// at the file boundary; none aborts the batch.
type ErrorKind string

const (
	// ErrNone marks a successful outcome.
	ErrNone ErrorKind = ""

	// ErrNoIdentity means no DOI, no extracted title, and no manual title
	// were available; the file is skipped, not retried.
	ErrNoIdentity ErrorKind = "no-identity"

	// ErrLookupFailed means every lookup backend missed or errored and no
	// local candidate existed to fall back on.
	ErrLookupFailed ErrorKind = "lookup-failed"

	// ErrUnreadable means the PDF could not be opened or parsed.
	ErrUnreadable ErrorKind = "unreadable"

	// ErrFileLocked means the rename hit a permission error, typically the
	// file being open in another program.
	ErrFileLocked ErrorKind = "file-locked"

	// ErrRenameIO covers any other filesystem error during rename.
	ErrRenameIO ErrorKind = "rename-io"

	// ErrManualCancelled means the user declined to supply a title.
	ErrManualCancelled ErrorKind = "manual-cancelled"
)

// RenameOutcome is the per-file result handed to the presentation layer.
// Every processed file produces exactly one outcome, success or failure.
type RenameOutcome struct {
	// OriginalName is the base name of the input file.
	OriginalName string `json:"original_name" yaml:"original_name"`

	// Record is the reconciled metadata, nil when reconciliation failed.
	Record *CanonicalRecord `json:"record,omitempty" yaml:"record,omitempty"`

	// NewName is the synthesized filename, "" when no rename happened.
	NewName string `json:"new_name,omitempty" yaml:"new_name,omitempty"`

	// Err classifies the failure; ErrNone on success.
	Err ErrorKind `json:"error,omitempty" yaml:"error,omitempty"`

	// Detail carries the underlying error message for ErrRenameIO and
	// friends.
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// Failed reports whether the outcome is an error row.
func (o RenameOutcome) Failed() bool {
	return o.Err != ErrNone
}
