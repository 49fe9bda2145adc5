// Package driver defines the narrow page-automation capability the pipeline
// depends on, plus the chromedp-backed implementation. Everything the engine
// observes or affects on the target site goes through PageDriver, so the
// automation technology stays behind this boundary.
package driver

import (
	"context"
	"time"
)

// PageDriver is the only way the engine touches the outside world.
type PageDriver interface {
	// Navigate loads a URL and waits for the document body to be ready.
	Navigate(ctx context.Context, url string) error

	// CurrentURL returns the URL the page is currently at.
	CurrentURL(ctx context.Context) (string, error)

	// RunScript evaluates a JavaScript expression against the page and
	// unmarshals the structured result into out. Pass nil to discard.
	RunScript(ctx context.Context, src string, out any) error

	// WaitReady blocks until the selector exists in the DOM or the timeout
	// elapses.
	WaitReady(ctx context.Context, selector string, timeout time.Duration) error

	// OuterHTML returns the rendered HTML of the first element matching the
	// selector.
	OuterHTML(ctx context.Context, selector string) (string, error)

	// SendKeys types a value into the first element matching the selector.
	SendKeys(ctx context.Context, selector, value string) error

	// Click waits for the selector to be visible within the timeout and
	// clicks it.
	Click(ctx context.Context, selector string, timeout time.Duration) error

	// Close releases the browser session.
	Close() error
}

// Poll runs check up to attempts times, interval apart, until it reports
// done. It returns false without error when every attempt comes back not
// done: exhausting the budget is an observation, not a failure. This is the
// engine's single retry-with-delay primitive; polling loops are never hidden
// inside incidental control flow.
func Poll(ctx context.Context, attempts int, interval time.Duration, check func(ctx context.Context) (bool, error)) (bool, error) {
	for i := 0; i < attempts; i++ {
		done, err := check(ctx)
		if err != nil {
			return false, err
		}
		if done {
			return true, nil
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(interval):
		}
	}
	return false, nil
}
