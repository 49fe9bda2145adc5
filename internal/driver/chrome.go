// Package driver - chrome.go implements PageDriver on a chromedp session.
package driver

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// ChromeOptions configures the browser session.
type ChromeOptions struct {
	Headless bool
	Verbose  bool
}

// Chrome drives a single Chrome/Chromium session via the DevTools protocol.
// One Chrome instance is shared by every pipeline stage; it is not safe for
// concurrent use and the engine never parallelizes around it.
type Chrome struct {
	ctx     context.Context
	cancels []context.CancelFunc
	verbose bool
}

// NewChrome starts a browser session. A failure here is fatal to the run:
// the caller is expected to surface it and stop.
func NewChrome(ctx context.Context, opts ChromeOptions) (*Chrome, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("window-size", "1920,1080"),
		// The target site is hostile to obvious automation.
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-popup-blocking", true),
		chromedp.Flag("disable-notifications", true),
		chromedp.Flag("incognito", true),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	c := &Chrome{
		ctx:     browserCtx,
		cancels: []context.CancelFunc{cancelBrowser, cancelAlloc},
		verbose: opts.Verbose,
	}

	// Force the browser process to start now so session failures surface
	// before the pipeline begins, and mask the webdriver marker.
	err := chromedp.Run(browserCtx,
		chromedp.Evaluate(`Object.defineProperty(navigator, 'webdriver', {get: () => undefined}); true`, nil),
	)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("starting browser session: %w", err)
	}

	return c, nil
}

func (c *Chrome) Navigate(ctx context.Context, url string) error {
	if c.verbose {
		fmt.Printf("[DRIVER] navigate: %s\n", url)
	}
	if err := c.run(ctx, chromedp.Navigate(url), chromedp.WaitReady("body")); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

func (c *Chrome) CurrentURL(ctx context.Context) (string, error) {
	var url string
	if err := c.run(ctx, chromedp.Location(&url)); err != nil {
		return "", fmt.Errorf("reading current URL: %w", err)
	}
	return url, nil
}

func (c *Chrome) RunScript(ctx context.Context, src string, out any) error {
	if err := c.run(ctx, chromedp.Evaluate(src, out)); err != nil {
		return fmt.Errorf("running page script: %w", err)
	}
	return nil
}

func (c *Chrome) WaitReady(ctx context.Context, selector string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tctx, cancel := context.WithTimeout(c.ctx, timeout)
	defer cancel()
	if err := chromedp.Run(tctx, chromedp.WaitReady(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("waiting for %q: %w", selector, err)
	}
	return nil
}

func (c *Chrome) OuterHTML(ctx context.Context, selector string) (string, error) {
	var html string
	if err := c.run(ctx, chromedp.OuterHTML(selector, &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("reading HTML of %q: %w", selector, err)
	}
	return html, nil
}

func (c *Chrome) SendKeys(ctx context.Context, selector, value string) error {
	if err := c.run(ctx, chromedp.SendKeys(selector, value, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("typing into %q: %w", selector, err)
	}
	return nil
}

func (c *Chrome) Click(ctx context.Context, selector string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tctx, cancel := context.WithTimeout(c.ctx, timeout)
	defer cancel()
	if err := chromedp.Run(tctx, chromedp.Click(selector, chromedp.NodeVisible, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("clicking %q: %w", selector, err)
	}
	return nil
}

// Close tears down the browser session. Safe to call more than once.
func (c *Chrome) Close() error {
	for _, cancel := range c.cancels {
		cancel()
	}
	return nil
}

// run executes actions on the browser context. Caller cancellation is checked
// up front; an action already in flight is allowed to finish, which is the
// cooperative-cancel contract the run controller relies on.
func (c *Chrome) run(ctx context.Context, actions ...chromedp.Action) error {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return chromedp.Run(c.ctx, actions...)
}
