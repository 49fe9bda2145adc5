package crawl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resultsPage = `
<html><body>
	<span id="totalJobCount">247</span>
	<dhi-search-card>
		<a data-cy="card-title-link" id="aaa-111">Senior Data Analyst</a>
		<a data-cy="search-result-company-name">Initech</a>
		<span data-cy="search-result-location">Austin, TX</span>
		<span data-cy="search-result-employment-type">Contract</span>
		<span data-cy="card-posted-date">Posted today</span>
	</dhi-search-card>
	<dhi-search-card>
		<a data-cy="card-title-link" id="bbb-222">Machine Learning Engineer</a>
		<a data-cy="search-result-company-name">Globex</a>
	</dhi-search-card>
	<dhi-search-card>
		<a data-cy="card-title-link">Card Without Id</a>
	</dhi-search-card>
</body></html>`

func TestParseCards_ExtractsFields(t *testing.T) {
	cards := ParseCards(resultsPage)
	require.Len(t, cards, 2)

	assert.Equal(t, "Senior Data Analyst", cards[0].Title)
	assert.Equal(t, "https://www.dice.com/job-detail/aaa-111", cards[0].URL)
	assert.Equal(t, "Initech", cards[0].Company)
	assert.Equal(t, "Austin, TX", cards[0].Location)
	assert.Equal(t, "Contract", cards[0].EmploymentType)
	assert.Equal(t, "Posted today", cards[0].PostedDate)
	assert.False(t, cards[0].Applied)
}

func TestParseCards_MissingFieldsDegradeToUnknown(t *testing.T) {
	cards := ParseCards(resultsPage)
	require.Len(t, cards, 2)

	assert.Equal(t, "Machine Learning Engineer", cards[1].Title)
	assert.Equal(t, "Unknown", cards[1].Location)
	assert.Equal(t, "Unknown", cards[1].EmploymentType)
	assert.Equal(t, "Unknown", cards[1].PostedDate)
}

func TestParseCards_CardWithoutIdIsDropped(t *testing.T) {
	for _, card := range ParseCards(resultsPage) {
		assert.NotEqual(t, "Card Without Id", card.Title)
	}
}

func TestParseCards_EmptyPage(t *testing.T) {
	assert.Empty(t, ParseCards(`<html><body><div class="no-results-container"></div></body></html>`))
}

func TestPageCount(t *testing.T) {
	tests := []struct {
		total, pages int
	}{
		{0, 1},
		{1, 1},
		{100, 1},
		{101, 2},
		{250, 3},
		{1100, 11},
		{5000, 11}, // capped
	}
	for _, tt := range tests {
		assert.Equal(t, tt.pages, PageCount(tt.total), "total=%d", tt.total)
	}
}
