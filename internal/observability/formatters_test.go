package observability

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/dice-autopilot/internal/types"
)

func TestPrintRunSummary(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRunSummary(&types.RunSummary{
		RunID:         "8e6f",
		TotalFound:    42,
		Applied:       7,
		Failed:        2,
		ExecutionTime: "12m30s",
	})
	output := buf.String()

	assert.Contains(t, output, "RUN SUMMARY")
	assert.Contains(t, output, "8e6f")
	assert.Contains(t, output, "42")
	assert.Contains(t, output, "12m30s")
}

func TestPrintRunSummary_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRunSummary(nil)

	assert.Empty(t, buf.String())
}

func TestPrintListings(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	listings := []types.JobListing{
		{Title: "Data Analyst", Company: "Acme", Location: "Remote"},
		{Title: "Data Engineering Manager", Company: "Globex", Location: "NYC",
			ExclusionReason: "Contains excluded keywords: manager"},
	}

	p.PrintListings("EXCLUDED JOBS", listings)
	output := buf.String()

	assert.Contains(t, output, "EXCLUDED JOBS")
	assert.Contains(t, output, "Data Analyst")
	assert.Contains(t, output, "Acme")
	assert.Contains(t, output, "excluded keywords")
}

func TestPrintListings_TruncatesLongBatches(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	listings := make([]types.JobListing, 8)
	for i := range listings {
		listings[i] = types.JobListing{Title: "Job", Company: "Acme", Location: "Remote"}
	}

	p.PrintListings("INCLUDED JOBS", listings)

	assert.Contains(t, buf.String(), "... and 3 more")
}

func TestPrintListings_Empty(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintListings("INCLUDED JOBS", nil)

	assert.Empty(t, buf.String())
}
