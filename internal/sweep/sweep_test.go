package sweep

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jonathan/dice-autopilot/internal/driver/drivertest"
	"github.com/jonathan/dice-autopilot/internal/ledger"
	"github.com/jonathan/dice-autopilot/internal/types"
)

// redirectServer serves /go/{id} as a redirect to /job-detail/{id}, the same
// shape as the tracking links on the my-jobs view.
func redirectServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := strings.CutPrefix(r.URL.Path, "/go/"); ok {
			http.Redirect(w, r, "/job-detail/"+id, http.StatusFound)
			return
		}
		fmt.Fprint(w, "job page")
	}))
	t.Cleanup(srv.Close)
	return srv
}

func entryRow(href, title, company, posted string) string {
	return fmt.Sprintf(`<li class="flex justify-between gap-x-6 py-5">
		<div><h3><a href=%q>%s</a></h3>
		<p class="text-font-secondary text-sm">%s</p></div>
		<div>%s</div>
	</li>`, href, title, company, posted)
}

func myJobsPage(maxPage int, rows ...string) string {
	pagination := ""
	if maxPage > 0 {
		pagination = fmt.Sprintf(`<nav><section><span>Page</span><span>%d</span></section></nav>`, maxPage)
	}
	return fmt.Sprintf(`<html><body><ul>%s</ul>%s</body></html>`,
		strings.Join(rows, "\n"), pagination)
}

func openStore(t *testing.T) *ledger.Store {
	t.Helper()
	store, err := ledger.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestParseEntries(t *testing.T) {
	html := myJobsPage(1,
		entryRow("https://example.com/go/a", "Data Analyst", "Acme", "Applied Mar 2"),
		`<li class="flex justify-between gap-x-6 py-5"><div><h3>no link</h3></div></li>`,
	)

	entries := ParseEntries(html)
	require.Len(t, entries, 1)
	require.Equal(t, "Data Analyst", entries[0].Title)
	require.Equal(t, "https://example.com/go/a", entries[0].URL)
	require.Equal(t, "Acme", entries[0].Company)
	require.Equal(t, "Applied Mar 2", entries[0].PostedDate)
}

func TestParseMaxPage(t *testing.T) {
	require.Equal(t, 7, ParseMaxPage(myJobsPage(7)))
	require.Equal(t, 0, ParseMaxPage(myJobsPage(0)))
	require.Equal(t, 0, ParseMaxPage("<html><body>no pagination</body></html>"))
}

func TestSweepAddsEntriesAndMovesNotApplied(t *testing.T) {
	ctx := context.Background()
	srv := redirectServer(t)
	store := openStore(t)

	// Job a was attempted earlier and recorded as not applied; the sweep
	// must discover it on the my-jobs view and move it.
	canonicalA := srv.URL + "/job-detail/a"
	require.NoError(t, store.RecordOutcome(ctx, types.JobListing{Title: "Job A", URL: canonicalA}, false))

	page1 := myJobsPage(2,
		entryRow(srv.URL+"/go/a", "Job A", "Acme", "Mar 2"),
		entryRow(srv.URL+"/go/b", "Job B", "Globex", "Mar 1"),
	)
	page2 := myJobsPage(2,
		entryRow(srv.URL+"/go/c", "Job C", "Initech", "Feb 28"),
	)
	// Page 1 renders twice: once for the page count, once during the scan.
	d := &drivertest.Driver{HTML: []string{page1, page1, page2}}

	res, err := (&Sweeper{Driver: d, Store: store, Client: srv.Client()}).Sweep(ctx)
	require.NoError(t, err)
	require.Equal(t, Result{PagesScanned: 2, NewEntries: 3, Moved: 1}, res)

	refs, err := store.ReferenceURLs(ctx)
	require.NoError(t, err)
	require.Contains(t, refs, canonicalA)
	require.Contains(t, refs, srv.URL+"/job-detail/b")
	require.Contains(t, refs, srv.URL+"/job-detail/c")

	applied, err := store.AppliedURLs(ctx)
	require.NoError(t, err)
	require.Contains(t, applied, canonicalA)
	notApplied, err := store.NotAppliedURLs(ctx)
	require.NoError(t, err)
	require.Empty(t, notApplied)
}

func TestSweepStopsAtFirstKnownEntry(t *testing.T) {
	ctx := context.Background()
	srv := redirectServer(t)
	store := openStore(t)

	// b is already in the reference set; everything after it is older and
	// must not be fetched.
	require.NoError(t, store.AddReference(ctx, ledger.ReferenceEntry{URL: srv.URL + "/job-detail/b"}))

	page1 := myJobsPage(3,
		entryRow(srv.URL+"/go/a", "Job A", "Acme", "Mar 2"),
		entryRow(srv.URL+"/go/b", "Job B", "Globex", "Mar 1"),
	)
	d := &drivertest.Driver{HTML: []string{page1, page1}}

	res, err := (&Sweeper{Driver: d, Store: store, Client: srv.Client()}).Sweep(ctx)
	require.NoError(t, err)
	require.Equal(t, Result{PagesScanned: 1, NewEntries: 1, Moved: 0}, res)

	// Only page 1 was ever requested despite the 3-page pagination.
	require.Len(t, d.Navigations, 2)
	for _, url := range d.Navigations {
		require.Contains(t, url, "page=1")
	}
}

func TestSweepScansSinglePageWhenPaginationUnreadable(t *testing.T) {
	ctx := context.Background()
	srv := redirectServer(t)
	store := openStore(t)

	page := myJobsPage(0, entryRow(srv.URL+"/go/a", "Job A", "Acme", "Mar 2"))
	d := &drivertest.Driver{HTML: []string{page, page}}

	res, err := (&Sweeper{Driver: d, Store: store, Client: srv.Client()}).Sweep(ctx)
	require.NoError(t, err)
	require.Equal(t, Result{PagesScanned: 1, NewEntries: 1, Moved: 0}, res)
}
