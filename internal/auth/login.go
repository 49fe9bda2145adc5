// Package auth performs the operator login against the job board. Login is
// the one step whose failure is fatal to a run.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/jonathan/dice-autopilot/internal/driver"
)

// LoginURL is the board's sign-in entry point.
const LoginURL = "https://www.dice.com/dashboard/login"

// Site coupling: sign-in form selectors, re-derived against the live target.
const (
	emailField     = `input[name="email"]`
	continueButton = `button[data-testid="sign-in-button"]`
	passwordField  = `input[name="password"]`
	submitButton   = `button[data-testid="submit-password"]`
	// dashboardMarker appears only after a successful sign-in.
	dashboardMarker = `form.flex.h-auto.w-full.flex-row`
)

const stepTimeout = 10 * time.Second

// Credentials identifies the operator session. Loading them is the caller's
// concern; both fields must be non-empty before a run starts.
type Credentials struct {
	Email    string
	Password string
}

// Validate rejects incomplete credentials before any browser work happens.
func (c Credentials) Validate() error {
	if c.Email == "" {
		return fmt.Errorf("missing account email")
	}
	if c.Password == "" {
		return fmt.Errorf("missing account password")
	}
	return nil
}

// Login signs the operator in. The two-step form types the email, continues,
// then types the password and submits; success is confirmed by the dashboard
// marker appearing.
func Login(ctx context.Context, d driver.PageDriver, creds Credentials) error {
	if err := creds.Validate(); err != nil {
		return err
	}

	if err := d.Navigate(ctx, LoginURL); err != nil {
		return fmt.Errorf("loading sign-in page: %w", err)
	}

	if err := d.WaitReady(ctx, emailField, stepTimeout); err != nil {
		return fmt.Errorf("sign-in form did not appear: %w", err)
	}
	if err := d.SendKeys(ctx, emailField, creds.Email); err != nil {
		return fmt.Errorf("entering email: %w", err)
	}
	if err := d.Click(ctx, continueButton, stepTimeout); err != nil {
		return fmt.Errorf("continuing past email step: %w", err)
	}

	if err := d.WaitReady(ctx, passwordField, stepTimeout); err != nil {
		return fmt.Errorf("password field did not appear: %w", err)
	}
	if err := d.SendKeys(ctx, passwordField, creds.Password); err != nil {
		return fmt.Errorf("entering password: %w", err)
	}
	if err := d.Click(ctx, submitButton, stepTimeout); err != nil {
		return fmt.Errorf("submitting password: %w", err)
	}

	if err := d.WaitReady(ctx, dashboardMarker, stepTimeout); err != nil {
		return fmt.Errorf("login not confirmed: %w", err)
	}
	return nil
}
