// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package batch drives the rename pipeline over a file list: extraction,
// lookup, reconciliation, filename synthesis, and the rename itself. Files
// are processed strictly sequentially; the registries want at least a second
// between requests, so there is nothing to gain from fanning out.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/namecle/internal/extract"
	"github.com/pdiddy/namecle/internal/filename"
	"github.com/pdiddy/namecle/internal/pdfscan"
	"github.com/pdiddy/namecle/internal/reconcile"
	"github.com/pdiddy/namecle/pkg/types"
)

// Scanner abstracts PDF reading so tests can run without real files.
type Scanner interface {
	Validate(path string) error
	ReadFirstPages(path string, n int) (string, error)
	ReadPageSpans(path string) ([]pdfscan.Span, error)
}

// FileScanner is the production Scanner backed by internal/pdfscan.
type FileScanner struct{}

func (FileScanner) Validate(path string) error { return pdfscan.Validate(path) }
func (FileScanner) ReadFirstPages(path string, n int) (string, error) {
	return pdfscan.ReadFirstPages(path, n)
}
func (FileScanner) ReadPageSpans(path string) ([]pdfscan.Span, error) {
	return pdfscan.ReadPageSpans(path)
}

// ManualInput is the blocking request/response hand-off for human-supplied
// titles. Request must not return until the user answers or cancels; the
// worker resumes exactly where it left off for the current file.
type ManualInput interface {
	Request(ctx context.Context, file, defaultTitle string) (text string, ok bool, err error)
}

// Events receives progress and per-file outcomes. Progress pairs are
// monotonically increasing; every processed file produces exactly one
// Outcome call, success or failure.
type Events interface {
	Progress(current, total int)
	Outcome(o types.RenameOutcome)
}

// Recorder persists outcomes; satisfied by *history.Store.
type Recorder interface {
	Append(runID string, o types.RenameOutcome) error
}

// Summary tallies a batch run.
type Summary struct {
	Renamed int
	Skipped int
	Failed  int
}

// Total returns the number of files processed.
func (s Summary) Total() int { return s.Renamed + s.Skipped + s.Failed }

// HasFailures reports whether any file failed.
func (s Summary) HasFailures() bool { return s.Failed > 0 }

// Controller runs the pipeline. All fields except Scan, Engine, and Cfg are
// optional.
type Controller struct {
	Scan    Scanner
	AI      extract.AIBackend // nil runs heuristic extraction instead
	Engine  *reconcile.Engine
	Manual  ManualInput // nil disables manual title entry
	Events  Events
	History Recorder
	Log     io.Writer
	Cfg     types.PipelineConfig

	abort atomic.Bool
}

// Abort requests a clean stop. The loop checks the flag only at file
// boundaries: the in-flight file finishes, subsequent files never start.
func (c *Controller) Abort() { c.abort.Store(true) }

// Run processes files in order and returns the tally. Per-file errors are
// contained at the file boundary; nothing short of Abort or a cancelled
// context stops the loop.
func (c *Controller) Run(ctx context.Context, files []string) Summary {
	var sum Summary
	total := len(files)
	runID := time.Now().UTC().Format("20060102T150405Z")

	for i, path := range files {
		if c.abort.Load() || ctx.Err() != nil {
			c.logf("aborted after %d of %d files", i, total)
			break
		}

		if c.Events != nil {
			c.Events.Progress(i+1, total)
		}
		c.logf("[%d/%d] processing %s", i+1, total, filepath.Base(path))

		o := c.processFile(ctx, path)

		if c.History != nil {
			if err := c.History.Append(runID, o); err != nil {
				c.logf("warning: history write failed: %v", err)
			}
		}
		if c.Events != nil {
			c.Events.Outcome(o)
		}

		switch o.Err {
		case types.ErrNone:
			sum.Renamed++
		case types.ErrNoIdentity, types.ErrManualCancelled:
			sum.Skipped++
		default:
			sum.Failed++
		}
	}
	return sum
}

// processFile runs the full pipeline for one file and always returns an
// outcome. At most one rename attempt happens per file per run.
func (c *Controller) processFile(ctx context.Context, path string) types.RenameOutcome {
	base := filepath.Base(path)
	o := types.RenameOutcome{OriginalName: base}

	if err := c.Scan.Validate(path); err != nil {
		c.logf("  > skipping: %v", err)
		o.Err, o.Detail = types.ErrUnreadable, err.Error()
		return o
	}

	// Unreadable text is not fatal yet: manual entry can still rescue the
	// file, so it degrades to "no candidate, no DOI".
	previewText, err := c.Scan.ReadFirstPages(path, c.Cfg.Scan.PreviewPages)
	if err != nil {
		c.logf("  > text extraction failed: %v", err)
		previewText = ""
	}

	doi := extract.FindDOI(previewText)
	if doi != "" {
		c.logf("  > doi found: %s", doi)
	}

	in := reconcile.Input{
		DOI:       doi,
		Candidate: c.candidateFunc(path, previewText),
	}
	if c.Manual != nil {
		in.Manual = func(ctx context.Context, defaultTitle string) (string, bool, error) {
			return c.Manual.Request(ctx, base, defaultTitle)
		}
	}

	rec, err := c.Engine.Reconcile(ctx, in)
	if err != nil {
		kind := reconcile.KindOf(err)
		c.logf("  > skipping: %v", err)
		o.Err, o.Detail = kind, err.Error()
		return o
	}
	o.Record = &rec

	name := filename.Synthesize(rec, c.Cfg.Rename.MaxFilenameLength)
	dest := filename.Resolve(name, path)
	o.NewName = filepath.Base(dest)

	if c.Cfg.Rename.DryRun {
		c.logf("  > dry run: would rename to %s", o.NewName)
		return o
	}

	if err := filename.Apply(path, dest); err != nil {
		var re *filename.RenameError
		if errors.As(err, &re) {
			o.Err = re.Kind
		} else {
			o.Err = types.ErrRenameIO
		}
		o.Detail = err.Error()
		o.NewName = ""
		c.logf("  > rename failed: %v", err)
		return o
	}
	c.logf("  > renamed to %s", o.NewName)

	if c.Cfg.Rename.WriteMetadata {
		if err := writeSidecar(dest, rec); err != nil {
			c.logf("  > warning: metadata sidecar failed: %v", err)
		}
	}
	return o
}

// candidateFunc defers extraction so a successful DOI lookup never pays for
// model inference.
func (c *Controller) candidateFunc(path, previewText string) reconcile.CandidateFunc {
	return func(ctx context.Context) (types.CandidateMetadata, types.CandidateSource) {
		spans, err := c.Scan.ReadPageSpans(path)
		if err != nil {
			c.logf("  > layout extraction failed: %v", err)
			spans = nil
		}

		if c.AI != nil {
			annotated := extract.AnnotatedText(spans, c.Cfg.AI.MaxInputChars)
			cand, err := c.AI.Extract(ctx, annotated)
			if err == nil {
				c.logf("  > ai title: %s", cand.Title)
				c.logf("  > ai authors: %s", cand.Authors)
				return cand, types.SourceAI
			}
			c.logf("  > ai extraction failed, trying heuristics: %v", err)
		}

		cand := extract.Heuristics(spans, previewText, c.Cfg.Scan)
		if cand.Title != "" {
			c.logf("  > heuristic title: %s", cand.Title)
		}
		return cand, types.SourceHeuristic
	}
}

// writeSidecar records the reconciled metadata next to the renamed file.
func writeSidecar(pdfPath string, rec types.CanonicalRecord) error {
	data, err := yaml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}
	side := pdfPath[:len(pdfPath)-len(filepath.Ext(pdfPath))] + ".yaml"
	return os.WriteFile(side, data, 0o644)
}

func (c *Controller) logf(format string, args ...any) {
	if c.Log == nil {
		return
	}
	fmt.Fprintf(c.Log, format+"\n", args...)
}
