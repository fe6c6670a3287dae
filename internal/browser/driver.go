package browser

import (
	"context"
	"time"
)

// Driver is the page driver capability the traversal core consumes.
// Selector strings are opaque locators owned by config.Selectors; the
// core never hardcodes them. Only one tab is foreground at a time:
// OpenTab pushes a new foreground tab and CloseTab pops back to the
// previous one.
type Driver interface {
	// Navigate loads a URL in the current foreground tab
	Navigate(ctx context.Context, url string) error

	// OpenTab opens a URL in a new foreground tab
	OpenTab(ctx context.Context, url string) error

	// CloseTab closes the foreground tab and returns to the previous one
	CloseTab() error

	// WaitVisible blocks until the selector matches a visible element
	// or the timeout expires
	WaitVisible(ctx context.Context, sel string, timeout time.Duration) error

	// Count returns the number of elements currently matching the selector
	Count(ctx context.Context, sel string) (int, error)

	// HTML returns the rendered outer HTML of the first element matching
	// the selector, waiting up to timeout for it to appear
	HTML(ctx context.Context, sel string, timeout time.Duration) (string, error)

	// ScrollToBottom scrolls the matched container to its full height,
	// forcing lazy-loaded content to render
	ScrollToBottom(ctx context.Context, sel string) error

	// CurrentURL returns the foreground tab's canonical URL
	CurrentURL(ctx context.Context) (string, error)

	// Login performs the site login flow with the given credentials
	Login(ctx context.Context, email, password string) error

	// Close tears down every tab and the browser process
	Close() error
}
