// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package output renders batch results and history for the terminal.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/pdiddy/namecle/internal/batch"
	"github.com/pdiddy/namecle/internal/history"
	"github.com/pdiddy/namecle/pkg/types"
)

var (
	cyan     = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	bold     = lipgloss.NewStyle().Bold(true)
	dim      = lipgloss.NewStyle().Faint(true)
	green    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	red      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	yellow   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	labelSty = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4"))
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("6")).
			Padding(0, 1)
)

// truncate cuts a string to maxLen characters, appending "…" if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-1] + "…"
}

// WriteResults renders the per-file outcome table and the run summary.
func WriteResults(w io.Writer, outcomes []types.RenameOutcome, sum batch.Summary) {
	if len(outcomes) == 0 {
		fmt.Fprintln(w, "No files processed.")
		return
	}

	var rows [][]string
	for _, o := range outcomes {
		rows = append(rows, outcomeRow(o))
	}

	t := table.New().
		Headers("Original", "New Name", "Grade", "Cites", "Status").
		Rows(rows...).
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("8"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4"))
			}
			return lipgloss.NewStyle()
		})

	fmt.Fprintln(w, t.Render())
	fmt.Fprintln(w)
	fmt.Fprintln(w, summaryLine(sum))
}

func outcomeRow(o types.RenameOutcome) []string {
	grade, cites := "", ""
	if o.Record != nil {
		grade = string(o.Record.Grade)
		if o.Record.CitationCount != nil {
			cites = fmt.Sprintf("%d", *o.Record.CitationCount)
		}
	}

	status := green.Render("renamed")
	switch o.Err {
	case types.ErrNone:
	case types.ErrNoIdentity, types.ErrManualCancelled:
		status = yellow.Render("skipped: " + string(o.Err))
	default:
		status = red.Render("failed: " + string(o.Err))
	}

	return []string{
		dim.Render(truncate(o.OriginalName, 40)),
		bold.Render(truncate(o.NewName, 60)),
		grade,
		cites,
		status,
	}
}

func summaryLine(sum batch.Summary) string {
	parts := []string{
		green.Render(fmt.Sprintf("%d renamed", sum.Renamed)),
		yellow.Render(fmt.Sprintf("%d skipped", sum.Skipped)),
	}
	if sum.Failed > 0 {
		parts = append(parts, red.Render(fmt.Sprintf("%d failed", sum.Failed)))
	} else {
		parts = append(parts, dim.Render("0 failed"))
	}
	return fmt.Sprintf("%s  %s", bold.Render(fmt.Sprintf("Processed %d files:", sum.Total())), strings.Join(parts, ", "))
}

// WriteRecord renders one reconciled record as a card, used by inspect.
func WriteRecord(w io.Writer, file string, rec types.CanonicalRecord, newName string) {
	title := rec.Title
	if title == "" {
		title = dim.Render("(no title)")
	} else {
		title = bold.Render(title)
	}
	card := title + "\n" + cyan.Render(file)
	fmt.Fprintln(w, boxStyle.Render(card))
	fmt.Fprintln(w)

	if rec.Authors != "" {
		fmt.Fprintf(w, "  %s %s\n", labelSty.Render("Authors:"), rec.Authors)
	}
	if rec.Year != "" {
		fmt.Fprintf(w, "  %s %s\n", labelSty.Render("Year:"), rec.Year)
	}
	if rec.DOI != "" {
		fmt.Fprintf(w, "  %s %s\n", labelSty.Render("DOI:"), yellow.Render(rec.DOI))
	}
	if rec.CitationCount != nil {
		fmt.Fprintf(w, "  %s %d\n", labelSty.Render("Citations:"), *rec.CitationCount)
	}
	fmt.Fprintf(w, "  %s %s\n", labelSty.Render("Grade:"), string(rec.Grade))
	if newName != "" {
		fmt.Fprintf(w, "  %s %s\n", labelSty.Render("Filename:"), green.Render(newName))
	}
}

// WriteHistory renders recorded outcomes newest-first.
func WriteHistory(w io.Writer, entries []history.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No rename history.")
		return
	}

	var out [][]string
	for _, e := range entries {
		status := green.Render("renamed")
		if e.ErrorKind != "" {
			status = red.Render(e.ErrorKind)
		}
		out = append(out, []string{
			dim.Render(e.RenamedAt.Format("2006-01-02 15:04")),
			dim.Render(truncate(e.Original, 36)),
			bold.Render(truncate(e.NewName, 56)),
			e.Grade,
			status,
		})
	}

	t := table.New().
		Headers("When", "Original", "New Name", "Grade", "Status").
		Rows(out...).
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("8"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4"))
			}
			return lipgloss.NewStyle()
		})

	fmt.Fprintln(w, t.Render())
}
