// Package apply drives the per-job application workflow: detect the
// submission widget, classify its state, and walk the Easy-apply wizard
// through to confirmation. Every path leaves the page driver back at the URL
// it was at before the call, so the caller's navigation state survives both
// success and failure.
package apply

import (
	"context"
	"log"
	"time"

	"github.com/jonathan/dice-autopilot/internal/driver"
	"github.com/jonathan/dice-autopilot/internal/types"
)

const (
	// widgetAttempts x widgetInterval bounds the shadow-DOM state poll.
	widgetAttempts = 10
	widgetInterval = 500 * time.Millisecond

	anchorTimeout = 10 * time.Second

	// Wizard steps render asynchronously too; each gets its own bounded poll.
	stepAttempts = 20
	stepInterval = 500 * time.Millisecond
)

// Applier runs the apply workflow through a shared PageDriver.
type Applier struct {
	Driver  driver.PageDriver
	Verbose bool

	// Interval overrides the delay between poll attempts when non-zero.
	Interval time.Duration
}

func (a *Applier) pollInterval(def time.Duration) time.Duration {
	if a.Interval > 0 {
		return a.Interval
	}
	return def
}

// widgetCheck is the tagged result of the widget-state script.
type widgetCheck struct {
	Found  bool   `json:"found"`
	State  string `json:"state"`
	Detail string `json:"detail"`
}

// Apply navigates to the job and attempts to submit an application.
// It returns true when the job ends up applied — either because the widget
// reports a prior submission, or because the wizard ran through to its
// confirmation banner. Any other outcome, including driver errors, is false;
// the error carries detail for the log but never aborts the run.
func (a *Applier) Apply(ctx context.Context, jobURL string) (applied bool, err error) {
	original, err := a.Driver.CurrentURL(ctx)
	if err != nil {
		return false, err
	}

	// Restore the pre-call URL on every path out of this function. The
	// restore runs on a detached context so a cancellation mid-attempt
	// still leaves the driver where the caller had it.
	defer func() {
		if original == "" || original == jobURL {
			return
		}
		if navErr := a.Driver.Navigate(context.WithoutCancel(ctx), original); navErr != nil {
			log.Printf("[APPLY] could not restore %s: %v", original, navErr)
		}
	}()

	if err := a.Driver.Navigate(ctx, jobURL); err != nil {
		return false, err
	}

	if err := a.Driver.WaitReady(ctx, applyAnchor, anchorTimeout); err != nil {
		// No apply control on this posting; nothing to do.
		if a.Verbose {
			log.Printf("[APPLY] %s: apply control never appeared", jobURL)
		}
		return false, nil
	}

	state, err := a.pollWidgetState(ctx)
	if err != nil {
		return false, err
	}

	switch state {
	case types.WidgetAlreadyApplied:
		log.Printf("[APPLY] %s: already applied, skipping submission", jobURL)
		return true, nil
	case types.WidgetCanApply:
		return a.submit(ctx, jobURL)
	default:
		if a.Verbose {
			log.Printf("[APPLY] %s: widget state undetermined after %d attempts", jobURL, widgetAttempts)
		}
		return false, nil
	}
}

// pollWidgetState queries the widget's shadow DOM until a marker appears or
// the attempt budget runs out.
func (a *Applier) pollWidgetState(ctx context.Context) (types.WidgetState, error) {
	var check widgetCheck
	found, err := driver.Poll(ctx, widgetAttempts, a.pollInterval(widgetInterval), func(ctx context.Context) (bool, error) {
		if err := a.Driver.RunScript(ctx, widgetStateScript, &check); err != nil {
			return false, err
		}
		return check.Found, nil
	})
	if err != nil || !found {
		return types.WidgetUndetermined, err
	}

	switch check.State {
	case "already_applied":
		return types.WidgetAlreadyApplied, nil
	case "can_apply":
		return types.WidgetCanApply, nil
	default:
		return types.WidgetUndetermined, nil
	}
}

// submit walks the wizard: apply control, Next, Submit, confirmation banner.
// A step that cannot be completed fails the job without failing the run.
func (a *Applier) submit(ctx context.Context, jobURL string) (bool, error) {
	var clicked bool
	if err := a.Driver.RunScript(ctx, easyApplyClickScript, &clicked); err != nil {
		return false, err
	}
	if !clicked {
		log.Printf("[APPLY] %s: could not activate the apply control", jobURL)
		return false, nil
	}

	for _, label := range []string{"Next", "Submit"} {
		ok, err := a.clickStep(ctx, label)
		if err != nil {
			return false, err
		}
		if !ok {
			log.Printf("[APPLY] %s: %s control never became available", jobURL, label)
			return false, nil
		}
	}

	var confirmed bool
	ok, err := driver.Poll(ctx, stepAttempts, a.pollInterval(stepInterval), func(ctx context.Context) (bool, error) {
		if err := a.Driver.RunScript(ctx, confirmationScript, &confirmed); err != nil {
			return false, err
		}
		return confirmed, nil
	})
	if err != nil {
		return false, err
	}
	if !ok {
		log.Printf("[APPLY] %s: submission not confirmed", jobURL)
		return false, nil
	}

	log.Printf("[APPLY] %s: application confirmed", jobURL)
	return true, nil
}

func (a *Applier) clickStep(ctx context.Context, label string) (bool, error) {
	script := stepClickScript(label)
	var clicked bool
	return driver.Poll(ctx, stepAttempts, a.pollInterval(stepInterval), func(ctx context.Context) (bool, error) {
		if err := a.Driver.RunScript(ctx, script, &clicked); err != nil {
			return false, err
		}
		return clicked, nil
	})
}
