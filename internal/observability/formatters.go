// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/dice-autopilot/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintRunSummary outputs the terminal record of a run.
func (p *Printer) PrintRunSummary(summary *types.RunSummary) {
	if summary == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Run ID:   %s\n", summary.RunID))
	sb.WriteString(fmt.Sprintf("Found:    %d\n", summary.TotalFound))
	sb.WriteString(fmt.Sprintf("Applied:  %d\n", summary.Applied))
	sb.WriteString(fmt.Sprintf("Failed:   %d\n", summary.Failed))
	sb.WriteString(fmt.Sprintf("Elapsed:  %s", summary.ExecutionTime))

	p.printBox("RUN SUMMARY", sb.String())
}

// PrintListings outputs the first few listings of a batch under a title.
func (p *Printer) PrintListings(title string, listings []types.JobListing) {
	if len(listings) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total: %d\n\n", len(listings)))

	count := min(len(listings), maxItemsToShow)
	for i := 0; i < count; i++ {
		l := listings[i]
		text := l.Title
		if len(text) > 45 {
			text = text[:42] + "..."
		}
		sb.WriteString(fmt.Sprintf("• %s\n", text))
		sb.WriteString(fmt.Sprintf("  %s — %s\n", l.Company, l.Location))
		if l.ExclusionReason != "" {
			reason := l.ExclusionReason
			if len(reason) > 45 {
				reason = reason[:42] + "..."
			}
			sb.WriteString(fmt.Sprintf("  [%s]\n", reason))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(listings) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more", len(listings)-maxItemsToShow))
	}

	p.printBox(title, sb.String())
}
