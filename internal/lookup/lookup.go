// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package lookup queries bibliographic registries for paper metadata. Each
// registry (Semantic Scholar, CrossRef) implements the Backend interface per
// the Strategy pattern; Chain tries them in a fixed priority order and stops
// at the first hit, so the fallback order is visible configuration rather
// than implicit control flow.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/pdiddy/namecle/pkg/types"
)

// ErrNotFound is returned when a backend (or the whole chain) explicitly
// found no matching record, as opposed to a transport or decoding failure.
var ErrNotFound = errors.New("no matching record")

// Backend looks up a single bibliographic registry.
type Backend interface {
	Name() string
	ByDOI(ctx context.Context, doi string) (types.CandidateMetadata, error)
	ByTitleAuthor(ctx context.Context, title, author string) (types.CandidateMetadata, error)
}

// Chain tries backends in order and returns the first found record. Backend
// errors are logged and folded into the miss: the reconciliation engine only
// needs "found" or "not found" to pick its fallback branch.
type Chain struct {
	Backends []Backend
	Log      io.Writer
}

// ByDOI queries each backend with the DOI until one returns a record.
func (c *Chain) ByDOI(ctx context.Context, doi string) (types.CandidateMetadata, error) {
	for _, b := range c.Backends {
		rec, err := b.ByDOI(ctx, doi)
		if err == nil {
			return rec, nil
		}
		c.warn(b, err)
		if ctx.Err() != nil {
			return types.CandidateMetadata{}, ctx.Err()
		}
	}
	return types.CandidateMetadata{}, ErrNotFound
}

// ByTitleAuthor queries each backend with title plus author hint, then each
// backend with the title alone. The author pass runs first because it is the
// more selective query; dropping the hint widens the net when it misses.
func (c *Chain) ByTitleAuthor(ctx context.Context, title, author string) (types.CandidateMetadata, error) {
	passes := []string{author}
	if author != "" {
		passes = append(passes, "")
	}

	for _, a := range passes {
		for _, b := range c.Backends {
			rec, err := b.ByTitleAuthor(ctx, title, a)
			if err == nil {
				return rec, nil
			}
			c.warn(b, err)
			if ctx.Err() != nil {
				return types.CandidateMetadata{}, ctx.Err()
			}
		}
	}
	return types.CandidateMetadata{}, ErrNotFound
}

func (c *Chain) warn(b Backend, err error) {
	if c.Log == nil || errors.Is(err, ErrNotFound) {
		return
	}
	fmt.Fprintf(c.Log, "warning: backend %s failed: %v\n", b.Name(), err)
}
