// Package drivertest provides a scripted in-memory PageDriver for tests that
// must run without a browser.
package drivertest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Driver is a fake PageDriver. Script results, HTML bodies, and wait errors
// are queued per call site; navigations are recorded so tests can assert on
// the exact page flow.
type Driver struct {
	mu sync.Mutex

	// Navigations records every URL passed to Navigate, in order.
	Navigations []string
	// NavigateErrs is consumed one entry per Navigate call; nil entries
	// succeed. When exhausted, Navigate succeeds.
	NavigateErrs []error

	// ScriptResults is consumed one entry per RunScript call. Each entry is
	// JSON-marshalled into the caller's out value. When exhausted, RunScript
	// returns an error.
	ScriptResults []any

	// WaitErrs is consumed one entry per WaitReady call; nil entries succeed.
	// When exhausted, WaitReady succeeds.
	WaitErrs []error

	// HTML is consumed one entry per OuterHTML call. When exhausted,
	// OuterHTML returns an error.
	HTML []string

	// ClickErrs is consumed one entry per Click call; nil entries succeed.
	// When exhausted, Click succeeds.
	ClickErrs []error

	// Current is the URL reported by CurrentURL; Navigate updates it.
	Current string

	Closed bool
}

// Navigate records the URL and honors context cancellation the way the real
// driver does: a cancelled context refuses the navigation.
func (d *Driver) Navigate(ctx context.Context, url string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Navigations = append(d.Navigations, url)
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(d.NavigateErrs) > 0 {
		err := d.NavigateErrs[0]
		d.NavigateErrs = d.NavigateErrs[1:]
		if err != nil {
			return err
		}
	}
	d.Current = url
	return nil
}

func (d *Driver) CurrentURL(context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Current, nil
}

func (d *Driver) RunScript(_ context.Context, _ string, out any) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.ScriptResults) == 0 {
		return fmt.Errorf("drivertest: no script result queued")
	}
	res := d.ScriptResults[0]
	d.ScriptResults = d.ScriptResults[1:]
	if out == nil {
		return nil
	}
	b, err := json.Marshal(res)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

func (d *Driver) WaitReady(_ context.Context, _ string, _ time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.WaitErrs) > 0 {
		err := d.WaitErrs[0]
		d.WaitErrs = d.WaitErrs[1:]
		return err
	}
	return nil
}

func (d *Driver) OuterHTML(context.Context, string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.HTML) == 0 {
		return "", fmt.Errorf("drivertest: no HTML queued")
	}
	html := d.HTML[0]
	d.HTML = d.HTML[1:]
	return html, nil
}

func (d *Driver) SendKeys(context.Context, string, string) error {
	return nil
}

func (d *Driver) Click(_ context.Context, _ string, _ time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.ClickErrs) > 0 {
		err := d.ClickErrs[0]
		d.ClickErrs = d.ClickErrs[1:]
		return err
	}
	return nil
}

func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Closed = true
	return nil
}
