// Package sweep reconciles the ledger with the applications visible on the
// operator's my-jobs view. Applications made outside the pipeline (manual UI
// actions) show up there first; the sweep folds them back into the ledger.
package sweep

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/dice-autopilot/internal/driver"
	"github.com/jonathan/dice-autopilot/internal/ledger"
)

const (
	myJobsURL = "https://www.dice.com/my-jobs?type=applied&page=%d"

	entrySelector      = "li.flex.justify-between.gap-x-6.py-5"
	paginationSelector = "nav section span"
	companySelector    = "p.text-font-secondary.text-sm"

	pageTimeout = 10 * time.Second
)

// Result counts what one sweep did.
type Result struct {
	PagesScanned int
	NewEntries   int
	Moved        int
}

// Entry is one row of the my-jobs view.
type Entry struct {
	Title      string
	URL        string
	Company    string
	PostedDate string
}

// Sweeper walks the my-jobs pages newest-first and stops at the first entry
// already present in the reference set: anything newer has been seen, and
// new applications always surface at the front.
type Sweeper struct {
	Driver driver.PageDriver
	Store  *ledger.Store
	// Client resolves entry links through their redirects to canonical job
	// URLs. Defaults to http.DefaultClient.
	Client  *http.Client
	Verbose bool
}

// Sweep scans the my-jobs view, grows the reference set with every entry
// found before the stopping point, and moves matching not-applied rows into
// the applied partition.
func (s *Sweeper) Sweep(ctx context.Context) (Result, error) {
	var res Result

	refs, err := s.Store.ReferenceURLs(ctx)
	if err != nil {
		return res, fmt.Errorf("loading reference set: %w", err)
	}
	log.Printf("[SWEEP] %d known applied jobs in reference", len(refs))

	maxPage, err := s.pageCount(ctx)
	if err != nil {
		return res, err
	}
	log.Printf("[SWEEP] scanning %d pages", maxPage)

scan:
	for page := 1; page <= maxPage; page++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		entries, err := s.loadPage(ctx, page)
		if err != nil {
			log.Printf("[SWEEP] page %d: %v", page, err)
			res.PagesScanned++
			continue
		}
		res.PagesScanned++

		for _, e := range entries {
			canonical, err := s.resolve(ctx, e.URL)
			if err != nil {
				log.Printf("[SWEEP] resolving %s: %v", e.URL, err)
				continue
			}
			if _, known := refs[canonical]; known {
				log.Printf("[SWEEP] reached known entry %s, stopping", canonical)
				break scan
			}
			ref := ledger.ReferenceEntry{
				URL:        canonical,
				Title:      e.Title,
				Company:    e.Company,
				PostedDate: e.PostedDate,
			}
			if err := s.Store.AddReference(ctx, ref); err != nil {
				return res, fmt.Errorf("adding reference %s: %w", canonical, err)
			}
			refs[canonical] = struct{}{}
			res.NewEntries++
		}
	}

	moved, err := s.reconcile(ctx, refs)
	if err != nil {
		return res, err
	}
	res.Moved = moved
	log.Printf("[SWEEP] done: %d pages, %d new, %d moved", res.PagesScanned, res.NewEntries, res.Moved)
	return res, nil
}

// reconcile moves every not-applied row whose URL is in the reference set
// into the applied partition.
func (s *Sweeper) reconcile(ctx context.Context, refs map[string]struct{}) (int, error) {
	notApplied, err := s.Store.NotAppliedURLs(ctx)
	if err != nil {
		return 0, fmt.Errorf("loading not-applied set: %w", err)
	}
	moved := 0
	for url := range notApplied {
		if _, ok := refs[url]; !ok {
			continue
		}
		ok, err := s.Store.MoveToApplied(ctx, url)
		if err != nil {
			return moved, fmt.Errorf("moving %s: %w", url, err)
		}
		if ok {
			moved++
		}
	}
	return moved, nil
}

// pageCount loads the first my-jobs page and reads the total page number
// from its pagination control. A page without readable pagination yields a
// single-page scan.
func (s *Sweeper) pageCount(ctx context.Context) (int, error) {
	if err := s.Driver.Navigate(ctx, fmt.Sprintf(myJobsURL, 1)); err != nil {
		return 0, fmt.Errorf("opening my-jobs view: %w", err)
	}
	if err := s.Driver.WaitReady(ctx, entrySelector, pageTimeout); err != nil {
		return 0, fmt.Errorf("my-jobs view never rendered: %w", err)
	}
	html, err := s.Driver.OuterHTML(ctx, "html")
	if err != nil {
		return 0, err
	}
	if n := ParseMaxPage(html); n > 0 {
		return n, nil
	}
	if s.Verbose {
		log.Printf("[SWEEP] pagination unreadable, scanning first page only")
	}
	return 1, nil
}

func (s *Sweeper) loadPage(ctx context.Context, page int) ([]Entry, error) {
	if err := s.Driver.Navigate(ctx, fmt.Sprintf(myJobsURL, page)); err != nil {
		return nil, err
	}
	if err := s.Driver.WaitReady(ctx, entrySelector, pageTimeout); err != nil {
		return nil, err
	}
	html, err := s.Driver.OuterHTML(ctx, "html")
	if err != nil {
		return nil, err
	}
	return ParseEntries(html), nil
}

// resolve follows the entry link's redirects and returns the final URL,
// which is the canonical job identity the ledger keys on.
func (s *Sweeper) resolve(ctx context.Context, rawURL string) (string, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	return resp.Request.URL.String(), nil
}

// ParseEntries extracts the application rows from a my-jobs page. Rows
// without a link are dropped.
func ParseEntries(html string) []Entry {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}
	var entries []Entry
	doc.Find(entrySelector).Each(func(_ int, row *goquery.Selection) {
		link := row.Find("h3 a").First()
		href, ok := link.Attr("href")
		if !ok || href == "" {
			return
		}
		e := Entry{
			Title:   strings.TrimSpace(link.Text()),
			URL:     href,
			Company: strings.TrimSpace(row.Find(companySelector).First().Text()),
		}
		if divs := row.Find("div"); divs.Length() > 0 {
			e.PostedDate = strings.TrimSpace(divs.Last().Text())
		}
		entries = append(entries, e)
	})
	return entries
}

// ParseMaxPage reads the total page count from the pagination control, the
// second span inside the pagination section. Returns 0 when unreadable.
func ParseMaxPage(html string) int {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return 0
	}
	spans := doc.Find(paginationSelector)
	if spans.Length() < 2 {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(spans.Eq(1).Text()))
	if err != nil || n < 1 {
		return 0
	}
	return n
}
