// Package crawl runs one search query against the board: it determines the
// page count, walks each results page, extracts listing cards, and applies
// the keyword filter. Failures degrade per-page and per-card; a query that
// cannot load at all simply contributes nothing to the run.
package crawl

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/jonathan/dice-autopilot/internal/driver"
	"github.com/jonathan/dice-autopilot/internal/filter"
	"github.com/jonathan/dice-autopilot/internal/types"
)

const (
	// PageSize is the number of listings requested per results page.
	PageSize = 100
	// MaxPages caps the pages walked per query regardless of result volume,
	// to bound run time.
	MaxPages = 11
	// FallbackPages is used when the results count cannot be parsed.
	FallbackPages = 3

	navRetries   = 3
	retryBackoff = 2 * time.Second

	pollInterval = 500 * time.Millisecond
	// Later pages load noticeably slower; give them a bigger budget.
	cardAttemptsEarly = 30 // 15s
	cardAttemptsLate  = 50 // 25s
	countAttempts     = 20 // 10s
)

// Site coupling: results-page script and selectors, re-derived against the
// live target.
const (
	countScript = `(() => {
		const el = document.getElementById('totalJobCount');
		return el && el.innerText ? el.innerText.trim() : '';
	})()`

	cardsStateScript = `(() => {
		if (document.querySelectorAll('dhi-search-card').length > 0) return 'cards';
		if (document.querySelector('.no-results-container')) return 'empty';
		return '';
	})()`
)

// searchURL builds the results URL for a query and page, with the operator's
// standing filters (posted today, contract roles) already applied.
func searchURL(query string, page int) string {
	return fmt.Sprintf(
		"https://www.dice.com/jobs?q=%s&countryCode=US&radius=30&radiusUnit=mi&page=%d&pageSize=%d&filters.postedDate=ONE&filters.employmentType=CONTRACTS&language=en",
		url.QueryEscape(query), page, PageSize,
	)
}

// Crawler walks search results through a shared PageDriver.
type Crawler struct {
	Driver driver.PageDriver
	// Limiter throttles page navigations; nil disables throttling.
	Limiter *rate.Limiter
	Verbose bool
}

// Crawl processes one query and returns the filtered listings. It never
// fails the run: a query whose pages cannot be loaded returns empty slices
// and the caller moves on. Deduplication across pages and queries is the
// accumulator's job, not the crawler's.
func (c *Crawler) Crawl(ctx context.Context, query string, include, exclude []string) (included, excluded []types.JobListing) {
	log.Printf("[CRAWL] query %q", query)

	if err := c.navigateWithRetries(ctx, searchURL(query, 1)); err != nil {
		log.Printf("[CRAWL] query %q: initial page failed after %d attempts: %v", query, navRetries, err)
		return nil, nil
	}

	totalPages := c.totalPages(ctx, query)

	for page := 1; page <= totalPages; page++ {
		if ctx.Err() != nil {
			return included, excluded
		}

		if page > 1 {
			if err := c.navigateWithRetries(ctx, searchURL(query, page)); err != nil {
				log.Printf("[CRAWL] query %q: skipping page %d: %v", query, page, err)
				continue
			}
		}

		state, err := c.waitForCards(ctx, page)
		if err != nil || state != "cards" {
			if state == "empty" {
				log.Printf("[CRAWL] query %q: no results on page %d", query, page)
			} else {
				log.Printf("[CRAWL] query %q: cards never appeared on page %d", query, page)
			}
			continue
		}

		html, err := c.Driver.OuterHTML(ctx, "body")
		if err != nil {
			log.Printf("[CRAWL] query %q: reading page %d: %v", query, page, err)
			continue
		}

		cards := ParseCards(html)
		if c.Verbose {
			log.Printf("[CRAWL] query %q: page %d/%d: %d cards", query, page, totalPages, len(cards))
		}

		for _, card := range cards {
			res := filter.Classify(card.Title, include, exclude)
			if res.Included {
				included = append(included, card)
			} else {
				card.ExclusionReason = res.Reason
				excluded = append(excluded, card)
			}
		}
	}

	log.Printf("[CRAWL] query %q: %d included, %d excluded", query, len(included), len(excluded))
	return included, excluded
}

// totalPages reads the results count and converts it to a bounded page
// count. An unreadable count falls back to FallbackPages rather than failing
// the query.
func (c *Crawler) totalPages(ctx context.Context, query string) int {
	var text string
	found, err := driver.Poll(ctx, countAttempts, pollInterval, func(ctx context.Context) (bool, error) {
		if err := c.Driver.RunScript(ctx, countScript, &text); err != nil {
			return false, err
		}
		return text != "", nil
	})
	if err != nil || !found {
		log.Printf("[CRAWL] query %q: results count unavailable, defaulting to %d pages", query, FallbackPages)
		return FallbackPages
	}

	count, err := strconv.Atoi(strings.ReplaceAll(text, ",", ""))
	if err != nil {
		log.Printf("[CRAWL] query %q: unparseable results count %q, defaulting to %d pages", query, text, FallbackPages)
		return FallbackPages
	}

	pages := PageCount(count)
	log.Printf("[CRAWL] query %q: %d jobs, %d pages", query, count, pages)
	return pages
}

// PageCount converts a results total into the number of pages to walk:
// min(MaxPages, ceil(count/PageSize)), and at least one page.
func PageCount(total int) int {
	pages := (total + PageSize - 1) / PageSize
	if pages > MaxPages {
		return MaxPages
	}
	if pages < 1 {
		return 1
	}
	return pages
}

// waitForCards polls until the page resolves to listing cards or an explicit
// no-results marker. It returns the observed state ("cards", "empty", or ""
// when the budget is exhausted).
func (c *Crawler) waitForCards(ctx context.Context, page int) (string, error) {
	attempts := cardAttemptsEarly
	if page > 3 {
		attempts = cardAttemptsLate
	}

	var state string
	_, err := driver.Poll(ctx, attempts, pollInterval, func(ctx context.Context) (bool, error) {
		if err := c.Driver.RunScript(ctx, cardsStateScript, &state); err != nil {
			return false, err
		}
		return state != "", nil
	})
	return state, err
}

func (c *Crawler) navigateWithRetries(ctx context.Context, url string) error {
	var lastErr error
	for attempt := 1; attempt <= navRetries; attempt++ {
		if c.Limiter != nil {
			if err := c.Limiter.Wait(ctx); err != nil {
				return err
			}
		}
		if lastErr = c.Driver.Navigate(ctx, url); lastErr == nil {
			return nil
		}
		if attempt < navRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryBackoff):
			}
		}
	}
	return lastErr
}
