// Package session owns the browser session lifecycle: it is the only
// consumer of the access-restricted signal, tearing the whole session
// down and retrying with a fixed backoff and a capped attempt count.
package session

import (
	"context"
	"fmt"
	"time"

	"catalogworker/config"
	"catalogworker/internal/browser"
	"catalogworker/logger"
	cerrors "catalogworker/pkg/errors"
)

// Crawler runs one full traversal over an open browser session
type Crawler interface {
	Run(ctx context.Context) error
}

// Runner retries whole sessions. Each attempt gets a brand-new browser;
// nothing from a restricted session is reused.
type Runner struct {
	cfg        *config.Config
	newDriver  func() (browser.Driver, error)
	newCrawler func(browser.Driver) Crawler
	log        *logger.Logger
}

// NewRunner creates a session runner from driver and crawler factories
func NewRunner(
	cfg *config.Config,
	newDriver func() (browser.Driver, error),
	newCrawler func(browser.Driver) Crawler,
) *Runner {
	return &Runner{
		cfg:        cfg,
		newDriver:  newDriver,
		newCrawler: newCrawler,
		log:        logger.ForSession(),
	}
}

// Run drives sessions until one completes, a non-restricted error
// occurs, or the attempt cap is reached
func (r *Runner) Run(ctx context.Context) error {
	var lastErr error

	for attempt := 1; attempt <= r.cfg.RetryMaxAttempts; attempt++ {
		r.log.Info().
			Int("attempt", attempt).
			Int("max_attempts", r.cfg.RetryMaxAttempts).
			Msg("Starting session")

		driver, err := r.newDriver()
		if err != nil {
			return fmt.Errorf("failed to start session: %w", err)
		}

		err = r.newCrawler(driver).Run(ctx)
		if closeErr := driver.Close(); closeErr != nil {
			r.log.Error().Err(closeErr).Msg("Failed to close browser")
		}

		if err == nil {
			r.log.Info().Int("attempt", attempt).Msg("Session completed")
			return nil
		}
		if !cerrors.IsAccessRestricted(err) {
			return err
		}

		lastErr = err
		if attempt == r.cfg.RetryMaxAttempts {
			break
		}

		r.log.Warn().
			Int("attempt", attempt).
			Int("max_attempts", r.cfg.RetryMaxAttempts).
			Dur("retry_delay", r.cfg.RetryDelay).
			Msg("Access restricted, retrying with a fresh session")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.cfg.RetryDelay):
		}
	}

	return fmt.Errorf("max retries reached after %d attempts: %w", r.cfg.RetryMaxAttempts, lastErr)
}
