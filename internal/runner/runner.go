// Package runner sequences a full run: search every query, reconcile the
// results against the ledger, and apply to whatever remains. The whole
// pipeline executes on a single worker goroutine over a single browser
// session; progress leaves the worker only through the event hub.
package runner

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jonathan/dice-autopilot/internal/crawl"
	"github.com/jonathan/dice-autopilot/internal/events"
	"github.com/jonathan/dice-autopilot/internal/ledger"
	"github.com/jonathan/dice-autopilot/internal/observability"
	"github.com/jonathan/dice-autopilot/internal/types"
)

// Crawler walks one query's result pages and returns the listings that
// passed and failed the keyword filter.
type Crawler interface {
	Crawl(ctx context.Context, query string, include, exclude []string) (included, excluded []types.JobListing)
}

// Applier attempts one job application and reports whether the job ended up
// applied.
type Applier interface {
	Apply(ctx context.Context, jobURL string) (bool, error)
}

// Params are the operator inputs for one run.
type Params struct {
	Queries []string
	Include []string
	Exclude []string
	// JobLimit caps how many pending jobs get an apply attempt; zero means
	// no cap.
	JobLimit int
}

// Runner owns the run state machine. Login is invoked once before searching
// when set; its failure is the only condition that fails the whole run apart
// from ledger errors.
type Runner struct {
	Crawler Crawler
	Applier Applier
	Store   *ledger.Store
	Hub     *events.Hub
	Login   func(ctx context.Context) error
	// Printer, when set, renders the included/excluded batches after the
	// search phase for forensic review.
	Printer *observability.Printer
	Verbose bool
}

// Run executes the pipeline and returns the terminal summary. The summary is
// also persisted through the ledger before returning, on every terminal
// phase including Stopped.
func (r *Runner) Run(ctx context.Context, s *Session, p Params) (types.RunSummary, error) {
	if r.Login != nil {
		if err := r.Login(ctx); err != nil {
			return r.fail(s, fmt.Errorf("starting session: %w", err))
		}
	}

	s.setPhase(events.PhaseSearching)
	acc := crawl.NewAccumulator()
	for _, query := range p.Queries {
		if r.cancelled(ctx, s) {
			return r.stopped(s)
		}
		included, excluded := r.Crawler.Crawl(ctx, query, p.Include, p.Exclude)
		acc.Add(included, excluded)
		s.setFound(len(acc.Included()))
		r.publish(s, fmt.Sprintf("searched %q", query), 0)
	}

	if err := r.Store.RecordExcluded(ctx, acc.Excluded()); err != nil {
		// Exclusions are bookkeeping; losing them does not affect the run.
		log.Printf("[RUN] recording exclusions: %v", err)
	}
	if r.Printer != nil {
		r.Printer.PrintListings("INCLUDED JOBS", acc.Included())
		r.Printer.PrintListings("EXCLUDED JOBS", acc.Excluded())
	}

	s.setPhase(events.PhaseReconciling)
	pending, err := r.pending(ctx, acc.Included(), p.JobLimit)
	if err != nil {
		return r.fail(s, err)
	}
	r.publish(s, fmt.Sprintf("%d jobs pending", len(pending)), s.ETA(len(pending)))

	s.setPhase(events.PhaseApplying)
	for i, job := range pending {
		if r.cancelled(ctx, s) {
			return r.stopped(s)
		}

		start := time.Now()
		applied, err := r.Applier.Apply(ctx, job.URL)
		if err != nil {
			// An attempt aborted by an operator stop has no outcome to
			// record; the job stays pending for the next run.
			if r.cancelled(ctx, s) {
				return r.stopped(s)
			}
			log.Printf("[RUN] apply %s: %v", job.URL, err)
			applied = false
		}
		elapsed := time.Since(start)

		// One durable write per job; a crash later never loses this one.
		// The write runs even when a stop arrived during the attempt, so
		// completed work survives the stop.
		if err := r.Store.RecordOutcome(context.WithoutCancel(ctx), job, applied); err != nil {
			return r.fail(s, fmt.Errorf("recording outcome for %s: %w", job.URL, err))
		}
		s.recordOutcome(applied, elapsed)

		remaining := len(pending) - i - 1
		r.publish(s, fmt.Sprintf("applied to %s", job.Title), s.ETA(remaining))
	}

	s.setPhase(events.PhaseCompleted)
	summary := r.summary(s)
	if err := r.Store.WriteSummary(summary); err != nil {
		log.Printf("[RUN] writing summary: %v", err)
	}
	r.publish(s, "run complete", 0)
	return summary, nil
}

// pending filters out already-applied listings and applies the job cap,
// preserving discovery order.
func (r *Runner) pending(ctx context.Context, included []types.JobListing, limit int) ([]types.JobListing, error) {
	appliedSet, err := r.Store.AppliedURLs(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading applied set: %w", err)
	}
	var pending []types.JobListing
	for _, l := range included {
		if _, ok := appliedSet[l.URL]; ok {
			if r.Verbose {
				log.Printf("[RUN] skipping %s: already applied", l.URL)
			}
			continue
		}
		pending = append(pending, l)
	}
	if limit > 0 && len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

func (r *Runner) cancelled(ctx context.Context, s *Session) bool {
	return ctx.Err() != nil || !s.Active()
}

func (r *Runner) stopped(s *Session) (types.RunSummary, error) {
	s.setPhase(events.PhaseStopped)
	summary := r.summary(s)
	if err := r.Store.WriteSummary(summary); err != nil {
		log.Printf("[RUN] writing summary: %v", err)
	}
	r.publish(s, "run stopped", 0)
	return summary, nil
}

func (r *Runner) fail(s *Session, cause error) (types.RunSummary, error) {
	s.setPhase(events.PhaseFailed)
	summary := r.summary(s)
	if err := r.Store.WriteSummary(summary); err != nil {
		log.Printf("[RUN] writing summary: %v", err)
	}
	r.publish(s, cause.Error(), 0)
	return summary, cause
}

func (r *Runner) summary(s *Session) types.RunSummary {
	found, applied, failed := s.Counts()
	return types.RunSummary{
		RunID:         s.ID,
		TotalFound:    found,
		Applied:       applied,
		Failed:        failed,
		ExecutionTime: s.Elapsed().Round(time.Millisecond).String(),
		Timestamp:     time.Now().UTC(),
	}
}

func (r *Runner) publish(s *Session, msg string, eta time.Duration) {
	if r.Hub == nil {
		return
	}
	found, applied, failed := s.Counts()
	r.Hub.Publish(events.Event{
		Phase:   s.Phase(),
		Message: msg,
		Found:   found,
		Applied: applied,
		Failed:  failed,
		ETA:     eta,
	})
}
