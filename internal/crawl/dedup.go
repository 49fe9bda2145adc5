package crawl

import "github.com/jonathan/dice-autopilot/internal/types"

// Accumulator merges per-query crawl results into one URL-keyed set of
// unique included listings and a flat audit log of everything excluded.
// First occurrence of a URL wins; later duplicates are dropped silently.
// Excluded listings are deliberately a multiset, not a set — they exist for
// forensic review, and the same listing excluded by two queries appears
// twice.
type Accumulator struct {
	seen     map[string]struct{}
	included []types.JobListing
	excluded []types.JobListing
}

func NewAccumulator() *Accumulator {
	return &Accumulator{seen: make(map[string]struct{})}
}

// Add merges one query's results. Discovery order across queries is
// preserved for the included set.
func (a *Accumulator) Add(included, excluded []types.JobListing) {
	for _, l := range included {
		if _, dup := a.seen[l.URL]; dup {
			continue
		}
		a.seen[l.URL] = struct{}{}
		a.included = append(a.included, l)
	}
	a.excluded = append(a.excluded, excluded...)
}

// Included returns the unique included listings in discovery order.
func (a *Accumulator) Included() []types.JobListing {
	return a.included
}

// Excluded returns every excluded listing, duplicates preserved.
func (a *Accumulator) Excluded() []types.JobListing {
	return a.excluded
}
