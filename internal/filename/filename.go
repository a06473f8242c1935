// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package filename maps canonical records to filesystem-legal names within a
// fixed length budget, resolves collisions in the target directory, and
// performs the actual rename.
package filename

import (
	"fmt"
	"strings"

	"github.com/pdiddy/namecle/pkg/types"
)

const (
	ext = ".pdf"

	// ellipsisPad is the extra characters removed from an overlong title:
	// three for the appended "..." plus one for the separator kept after
	// the title.
	ellipsisPad = 4
)

// sanitizer replaces every filesystem-reserved character with an underscore.
var sanitizer = strings.NewReplacer(
	`\`, "_", "/", "_", "*", "_", "?", "_", ":", "_",
	`"`, "_", "<", "_", ">", "_", "|", "_",
)

// Synthesize deterministically maps a record to a single filename no longer
// than maxLen (including the ".pdf" suffix). Construction order is
// "{year} {grade} {title} {authors}.pdf" with absent components omitted
// along with their separator. Over budget, the author list collapses to
// "First et al." first; only if that is not enough does the title lose its
// tail in favor of "...". Synthesis is pure: re-running it on a compliant
// record yields the identical name.
func Synthesize(rec types.CanonicalRecord, maxLen int) string {
	title := sanitizer.Replace(rec.Title)
	authors := sanitizer.Replace(rec.Authors)

	name := assemble(rec.Year, rec.Grade, title, authors)
	if runeLen(name) <= maxLen {
		return name
	}

	// Author shortening comes strictly before title truncation.
	if authors != "" {
		first, _, _ := strings.Cut(authors, ",")
		authors = strings.TrimSpace(first) + " et al."
		name = assemble(rec.Year, rec.Grade, title, authors)
	}

	if overflow := runeLen(name) - maxLen; overflow > 0 && title != "" {
		cut := overflow + ellipsisPad
		r := []rune(title)
		if cut >= len(r) {
			// Degraded but still emitted.
			title = "..."
		} else {
			title = string(r[:len(r)-cut]) + "..."
		}
		name = assemble(rec.Year, rec.Grade, title, authors)
	}

	// A pathological author entry can still blow the budget on its own;
	// clamp the stem rather than fail the file.
	if r := []rune(name); len(r) > maxLen {
		name = string(r[:maxLen-len(ext)]) + ext
	}
	return name
}

func assemble(year string, grade types.Grade, title, authors string) string {
	parts := make([]string, 0, 4)
	if year != "" {
		parts = append(parts, year)
	}
	parts = append(parts, grade.Token())
	if title != "" {
		parts = append(parts, title)
	}
	if authors != "" {
		parts = append(parts, authors)
	}
	return strings.Join(parts, " ") + ext
}

func runeLen(s string) int {
	return len([]rune(s))
}

// Split separates a filename into stem and extension for counter insertion.
func split(name string) (stem, suffix string) {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[:i], name[i:]
	}
	return name, ""
}

// counterName returns "stem (n).ext".
func counterName(name string, n int) string {
	stem, suffix := split(name)
	return fmt.Sprintf("%s (%d)%s", stem, n, suffix)
}
