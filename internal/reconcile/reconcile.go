// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package reconcile combines locally extracted metadata candidates with
// bibliographic lookup results into one canonical record per file, applying
// deterministic fallback and tie-break rules.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/pdiddy/namecle/internal/lookup"
	"github.com/pdiddy/namecle/pkg/types"
)

// Searcher is the lookup capability the engine depends on. Both methods
// return lookup.ErrNotFound when no registry had a matching record.
type Searcher interface {
	ByDOI(ctx context.Context, doi string) (types.CandidateMetadata, error)
	ByTitleAuthor(ctx context.Context, title, author string) (types.CandidateMetadata, error)
}

// Failure is a reconciliation error carrying its ErrorKind so the batch
// controller can classify the outcome without string matching.
type Failure struct {
	Kind types.ErrorKind
	Msg  string
}

func (f *Failure) Error() string { return f.Msg }

// KindOf extracts the ErrorKind from a reconciliation error; foreign errors
// (cancelled context, transport) map to lookup-failed.
func KindOf(err error) types.ErrorKind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return types.ErrLookupFailed
}

// CandidateFunc lazily produces the heuristic or AI extraction result. The
// engine only invokes it when the DOI branch did not settle the record, so
// an authoritative DOI hit skips model inference entirely.
type CandidateFunc func(ctx context.Context) (types.CandidateMetadata, types.CandidateSource)

// ManualFunc is the blocking rendezvous with the user: it returns the
// supplied title and whether the user accepted. The engine suspends until it
// returns; no other file is processed in the meantime.
type ManualFunc func(ctx context.Context, defaultTitle string) (text string, ok bool, err error)

// Input collects the evidence providers for one file.
type Input struct {
	// DOI found in the document text, or "".
	DOI string

	// Candidate supplies the local extraction result; nil means no local
	// extraction is available.
	Candidate CandidateFunc

	// Manual, when non-nil, is consulted after local extraction: the user's
	// title replaces the search key entirely (author hint discarded, no
	// similarity gate).
	Manual ManualFunc
}

// Engine produces exactly one CanonicalRecord per file.
type Engine struct {
	Lookup              Searcher
	SimilarityThreshold float64
	Grades              types.GradeThresholds
	Log                 io.Writer
}

// Reconcile resolves the input to a canonical record. Branches in priority
// order, first success wins:
//
//  1. A DOI-keyed lookup hit is authoritative; no similarity check, and the
//     candidate provider is never invoked.
//  2. An AI title corroborated by a title search (similarity at or above the
//     threshold) adopts the lookup record; below the threshold the AI
//     fields are kept verbatim with the citation count unset.
//  3. A heuristic or manual title adopts any lookup hit ungated.
//  4. A lookup miss falls back to the local candidate when one exists.
//
// Whichever branch runs, one of title/authors/year present is enough for a
// record; a citation count alone never is.
func (e *Engine) Reconcile(ctx context.Context, in Input) (types.CanonicalRecord, error) {
	if in.DOI != "" {
		rec, err := e.Lookup.ByDOI(ctx, in.DOI)
		switch {
		case err == nil:
			e.logf("doi %s matched, skipping text extraction", in.DOI)
			if rec.DOI == "" {
				rec.DOI = in.DOI
			}
			return e.finalize(rec), nil
		case errors.Is(err, lookup.ErrNotFound):
			e.logf("doi %s not found, falling back to text candidates", in.DOI)
		default:
			return types.CanonicalRecord{}, err
		}
	}

	var cand types.CandidateMetadata
	source := types.SourceHeuristic
	if in.Candidate != nil {
		cand, source = in.Candidate(ctx)
	}

	searchTitle := cand.Title
	searchAuthor := cand.FirstAuthor()
	gated := source == types.SourceAI
	manualTitle := ""
	manual := false

	if in.Manual != nil {
		text, ok, err := in.Manual(ctx, cand.Title)
		if err != nil {
			return types.CanonicalRecord{}, err
		}
		if !ok {
			return types.CanonicalRecord{}, &Failure{
				Kind: types.ErrManualCancelled,
				Msg:  "manual title entry cancelled",
			}
		}
		manual, manualTitle = true, text
		searchTitle, searchAuthor, gated = text, "", false
	}

	if searchTitle == "" && cand.IsEmpty() {
		return types.CanonicalRecord{}, &Failure{
			Kind: types.ErrNoIdentity,
			Msg:  "no DOI, no extracted title, and no manual title",
		}
	}

	if searchTitle != "" {
		rec, err := e.Lookup.ByTitleAuthor(ctx, searchTitle, searchAuthor)
		switch {
		case err == nil:
			if gated {
				sim := Similarity(cand.Title, rec.Title)
				e.logf("title similarity %.2f (ai vs lookup)", sim)
				if sim < e.SimilarityThreshold {
					// An uncorroborated AI guess must never inherit a
					// mismatched lookup's citation count.
					e.logf("mismatch: discarding lookup record, keeping ai fields")
					return e.finalize(withoutCitations(cand)), nil
				}
			}
			return e.finalize(rec), nil
		case errors.Is(err, lookup.ErrNotFound):
			// Fall through to the local candidate.
		default:
			return types.CanonicalRecord{}, err
		}
	}

	if !cand.IsEmpty() {
		e.logf("registry search failed, using extracted fields as-is")
		return e.finalize(withoutCitations(cand)), nil
	}
	if manual && manualTitle != "" {
		return e.finalize(types.CandidateMetadata{Title: manualTitle}), nil
	}

	return types.CanonicalRecord{}, &Failure{
		Kind: types.ErrLookupFailed,
		Msg:  fmt.Sprintf("no registry matched %q and no local candidate exists", searchTitle),
	}
}

// finalize grades the chosen metadata and wraps it as the canonical record.
func (e *Engine) finalize(c types.CandidateMetadata) types.CanonicalRecord {
	return types.CanonicalRecord{
		CandidateMetadata: c,
		Grade:             e.Grades.Grade(c.CitationCount),
	}
}

// withoutCitations strips the citation count from a local candidate; only
// lookup records carry trustworthy counts.
func withoutCitations(c types.CandidateMetadata) types.CandidateMetadata {
	c.CitationCount = nil
	return c
}

func (e *Engine) logf(format string, args ...any) {
	if e.Log == nil {
		return
	}
	fmt.Fprintf(e.Log, "  > "+format+"\n", args...)
}
