package crawl

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/dice-autopilot/internal/types"
)

// jobDetailPrefix turns a card's posting id into its canonical detail URL,
// which is the listing's identity everywhere downstream.
const jobDetailPrefix = "https://www.dice.com/job-detail/"

// ParseCards extracts the listing cards from a rendered results page.
// A card whose title link carries no posting id is dropped: without a URL it
// can be neither deduplicated nor applied to. Other missing fields degrade
// to "Unknown" so one sparse card never aborts the page.
func ParseCards(html string) []types.JobListing {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var listings []types.JobListing
	doc.Find("dhi-search-card").Each(func(_ int, card *goquery.Selection) {
		title := card.Find(`a[data-cy='card-title-link']`)
		id, ok := title.Attr("id")
		if !ok || strings.TrimSpace(id) == "" {
			return
		}

		listings = append(listings, types.JobListing{
			Title:          textOr(title, "Unknown"),
			URL:            jobDetailPrefix + strings.TrimSpace(id),
			Company:        textOr(card.Find(`a[data-cy='search-result-company-name']`), "Unknown"),
			Location:       textOr(card.Find(`span[data-cy='search-result-location']`), "Unknown"),
			EmploymentType: textOr(card.Find(`span[data-cy='search-result-employment-type']`), "Unknown"),
			PostedDate:     textOr(card.Find(`span[data-cy='card-posted-date']`), "Unknown"),
		})
	})
	return listings
}

func textOr(sel *goquery.Selection, fallback string) string {
	text := strings.TrimSpace(sel.First().Text())
	if text == "" {
		return fallback
	}
	return text
}
