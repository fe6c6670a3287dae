package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"

	"catalogworker/config"
	"catalogworker/logger"
)

// tabHandle pairs a chromedp tab context with its cancel function
type tabHandle struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// ChromeDriver implements Driver on top of a chromedp-managed Chrome
// instance. Tabs form a stack; the last entry is always foreground.
type ChromeDriver struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	tabs        []tabHandle
	sel         config.Selectors
	log         *logger.Logger
}

// NewChromeDriver starts a Chrome instance configured from cfg and
// returns a driver whose initial foreground tab is the browser's
// first page.
func NewChromeDriver(cfg *config.Config) (*ChromeDriver, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("incognito", true),
		chromedp.Flag("disable-popup-blocking", true),
	)
	if cfg.ProxyEnabled {
		opts = append(opts, chromedp.ProxyServer(
			fmt.Sprintf("%s:%d", cfg.ProxyHostname, cfg.ProxyPort)))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Force the browser process to start so a broken Chrome install
	// fails here instead of on the first navigation.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	return &ChromeDriver{
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		tabs:        []tabHandle{{ctx: browserCtx, cancel: browserCancel}},
		sel:         cfg.Selectors,
		log:         logger.ForBrowser(),
	}, nil
}

// current returns the foreground tab context
func (d *ChromeDriver) current() context.Context {
	return d.tabs[len(d.tabs)-1].ctx
}

// Navigate loads a URL in the current foreground tab
func (d *ChromeDriver) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.log.Debug().Str("url", url).Msg("Navigating")
	return chromedp.Run(d.current(), chromedp.Navigate(url))
}

// OpenTab opens a URL in a new foreground tab
func (d *ChromeDriver) OpenTab(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tabCtx, tabCancel := chromedp.NewContext(d.tabs[0].ctx)
	if err := chromedp.Run(tabCtx, chromedp.Navigate(url)); err != nil {
		tabCancel()
		return fmt.Errorf("failed to open tab for %s: %w", url, err)
	}
	d.tabs = append(d.tabs, tabHandle{ctx: tabCtx, cancel: tabCancel})
	d.log.Debug().Str("url", url).Int("tabs", len(d.tabs)).Msg("Opened tab")
	return nil
}

// CloseTab closes the foreground tab and falls back to the previous one.
// The first tab is the browser's root page and is never popped.
func (d *ChromeDriver) CloseTab() error {
	if len(d.tabs) <= 1 {
		return nil
	}
	last := d.tabs[len(d.tabs)-1]
	last.cancel()
	d.tabs = d.tabs[:len(d.tabs)-1]
	d.log.Debug().Int("tabs", len(d.tabs)).Msg("Closed tab")
	return nil
}

// WaitVisible blocks until the selector is visible or the timeout expires
func (d *ChromeDriver) WaitVisible(ctx context.Context, sel string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tctx, cancel := context.WithTimeout(d.current(), timeout)
	defer cancel()
	return chromedp.Run(tctx, chromedp.WaitVisible(sel, chromedp.ByQuery))
}

// Count returns the number of elements matching the selector right now
func (d *ChromeDriver) Count(ctx context.Context, sel string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var nodes []*cdp.Node
	err := chromedp.Run(d.current(),
		chromedp.Nodes(sel, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0)))
	if err != nil {
		return 0, err
	}
	return len(nodes), nil
}

// HTML returns the rendered outer HTML of the first match
func (d *ChromeDriver) HTML(ctx context.Context, sel string, timeout time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	tctx, cancel := context.WithTimeout(d.current(), timeout)
	defer cancel()
	var html string
	if err := chromedp.Run(tctx, chromedp.OuterHTML(sel, &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

// ScrollToBottom scrolls the matched container to its full height
func (d *ChromeDriver) ScrollToBottom(ctx context.Context, sel string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	script := fmt.Sprintf(
		`(() => { const el = document.querySelector(%q); if (el) { el.scrollTop = el.scrollHeight; } })()`,
		sel)
	return chromedp.Run(d.current(), chromedp.Evaluate(script, nil))
}

// CurrentURL returns the foreground tab's canonical URL
func (d *ChromeDriver) CurrentURL(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var url string
	if err := chromedp.Run(d.current(), chromedp.Location(&url)); err != nil {
		return "", err
	}
	return url, nil
}

// Login clicks through the site login form with the given credentials
func (d *ChromeDriver) Login(ctx context.Context, email, password string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.log.Info().Msg("Logging in")
	return chromedp.Run(d.current(), chromedp.Tasks{
		chromedp.WaitVisible(d.sel.LoginLink, chromedp.ByQuery),
		chromedp.Click(d.sel.LoginLink, chromedp.ByQuery),
		chromedp.WaitVisible(d.sel.LoginEmail, chromedp.ByQuery),
		chromedp.SendKeys(d.sel.LoginEmail, email, chromedp.ByQuery),
		chromedp.SendKeys(d.sel.LoginPassword, password, chromedp.ByQuery),
		chromedp.Click(d.sel.LoginSubmit, chromedp.ByQuery),
		chromedp.Sleep(5 * time.Second),
	})
}

// Close tears down every tab and the browser process
func (d *ChromeDriver) Close() error {
	for i := len(d.tabs) - 1; i >= 0; i-- {
		d.tabs[i].cancel()
	}
	d.tabs = nil
	d.allocCancel()
	d.log.Info().Msg("Browser closed")
	return nil
}
