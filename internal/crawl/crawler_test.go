package crawl

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/dice-autopilot/internal/driver/drivertest"
	"github.com/jonathan/dice-autopilot/internal/types"
)

const onePageResults = `
<html><body>
	<dhi-search-card>
		<a data-cy="card-title-link" id="job-1">Senior Data Analyst</a>
	</dhi-search-card>
	<dhi-search-card>
		<a data-cy="card-title-link" id="job-2">Data Analyst Manager</a>
	</dhi-search-card>
	<dhi-search-card>
		<a data-cy="card-title-link" id="job-3">Java Developer</a>
	</dhi-search-card>
</body></html>`

func TestCrawl_FiltersAndCollects(t *testing.T) {
	d := &drivertest.Driver{
		// results count, then cards-present for the single page
		ScriptResults: []any{"42", "cards"},
		HTML:          []string{onePageResults},
	}
	c := &Crawler{Driver: d}

	included, excluded := c.Crawl(context.Background(), "Data Analyst", []string{"Data"}, []string{"Manager"})

	require.Len(t, included, 1)
	assert.Equal(t, "Senior Data Analyst", included[0].Title)

	require.Len(t, excluded, 2)
	assert.Equal(t, "Contains excluded keywords: Manager", excluded[0].ExclusionReason)
	assert.Equal(t, "Missing required keywords: Data", excluded[1].ExclusionReason)
}

func TestCrawl_WalksEveryPage(t *testing.T) {
	d := &drivertest.Driver{
		ScriptResults: []any{"250", "cards", "cards", "cards"},
		HTML:          []string{onePageResults, onePageResults, onePageResults},
	}
	c := &Crawler{Driver: d}

	included, _ := c.Crawl(context.Background(), "Data", nil, nil)

	// 3 pages of the same fixture; dedup is not the crawler's job.
	assert.Len(t, included, 9)
	require.Len(t, d.Navigations, 3)
	assert.Contains(t, d.Navigations[1], "page=2")
	assert.Contains(t, d.Navigations[2], "page=3")
}

func TestCrawl_InitialNavigationFailureAbortsQuery(t *testing.T) {
	boom := errors.New("net::ERR_CONNECTION_RESET")
	d := &drivertest.Driver{
		NavigateErrs: []error{boom, boom, boom},
	}
	c := &Crawler{Driver: d}

	included, excluded := c.Crawl(context.Background(), "Data", nil, nil)

	assert.Empty(t, included)
	assert.Empty(t, excluded)
	// three attempts, nothing more
	assert.Len(t, d.Navigations, 3)
}

func TestCrawl_PageLoadFailureSkipsPageOnly(t *testing.T) {
	boom := errors.New("timeout")
	d := &drivertest.Driver{
		// page 1 loads; page 2 fails all three retries
		NavigateErrs:  []error{nil, boom, boom, boom},
		ScriptResults: []any{"150", "cards"},
		HTML:          []string{onePageResults},
	}
	c := &Crawler{Driver: d}

	included, _ := c.Crawl(context.Background(), "Data", nil, nil)

	// page 1 contributed; page 2 was skipped without aborting the query
	assert.Len(t, included, 3)
}

func TestCrawl_NoResultsPageContributesNothing(t *testing.T) {
	d := &drivertest.Driver{
		ScriptResults: []any{"5", "empty"},
	}
	c := &Crawler{Driver: d}

	included, excluded := c.Crawl(context.Background(), "Data", nil, nil)
	assert.Empty(t, included)
	assert.Empty(t, excluded)
}

func TestCrawl_CancelledContextStopsEarly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := &drivertest.Driver{}
	c := &Crawler{Driver: d}

	included, excluded := c.Crawl(ctx, "Data", nil, nil)
	assert.Empty(t, included)
	assert.Empty(t, excluded)
}

func TestAccumulator_FirstSeenWins(t *testing.T) {
	a := NewAccumulator()
	first := types.JobListing{URL: "https://example.com/j/1", Title: "From Query One"}
	dup := types.JobListing{URL: "https://example.com/j/1", Title: "From Query Two"}
	other := types.JobListing{URL: "https://example.com/j/2", Title: "Other"}

	a.Add([]types.JobListing{first}, nil)
	a.Add([]types.JobListing{dup, other}, nil)

	require.Len(t, a.Included(), 2)
	assert.Equal(t, "From Query One", a.Included()[0].Title)
	assert.Equal(t, "Other", a.Included()[1].Title)
}

func TestAccumulator_ExcludedIsMultiset(t *testing.T) {
	a := NewAccumulator()
	l := types.JobListing{URL: "https://example.com/j/1", ExclusionReason: "r"}

	a.Add(nil, []types.JobListing{l})
	a.Add(nil, []types.JobListing{l})

	assert.Len(t, a.Excluded(), 2)
}

func TestSearchURL(t *testing.T) {
	u := searchURL("AI ML", 2)
	assert.Contains(t, u, "q=AI+ML")
	assert.Contains(t, u, "page=2")
	assert.Contains(t, u, "pageSize=100")
}
