package crawler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"catalogworker/config"
	"catalogworker/internal/skipset"
	"catalogworker/services/cache"
)

// fakePage scripts one page's probe answers and rendered snapshots
type fakePage struct {
	visible map[string]bool
	counts  map[string]int
	html    map[string]string
}

// newFakePage returns a page with access granted and the main and
// product content containers visible
func newFakePage() *fakePage {
	sel := config.DefaultSelectors()
	return &fakePage{
		visible: map[string]bool{
			sel.ProtectionIndicator: true,
			sel.MainContent:         true,
			sel.ProductContent:      true,
		},
		counts: map[string]int{},
		html:   map[string]string{},
	}
}

// restrict makes the protection indicator never show up on this page
func (p *fakePage) restrict() *fakePage {
	sel := config.DefaultSelectors()
	p.visible[sel.ProtectionIndicator] = false
	return p
}

// fakeDriver serves scripted pages keyed by URL and tracks tab usage
type fakeDriver struct {
	pages      map[string]*fakePage
	stack      []string
	opened     []string
	closedTabs int
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{pages: map[string]*fakePage{}}
}

func (d *fakeDriver) page() *fakePage {
	return d.pages[d.stack[len(d.stack)-1]]
}

func (d *fakeDriver) Navigate(ctx context.Context, url string) error {
	if _, ok := d.pages[url]; !ok {
		return errors.New("no such page: " + url)
	}
	d.stack = []string{url}
	return nil
}

func (d *fakeDriver) OpenTab(ctx context.Context, url string) error {
	if _, ok := d.pages[url]; !ok {
		return errors.New("no such page: " + url)
	}
	d.stack = append(d.stack, url)
	d.opened = append(d.opened, url)
	return nil
}

func (d *fakeDriver) CloseTab() error {
	if len(d.stack) > 1 {
		d.stack = d.stack[:len(d.stack)-1]
	}
	d.closedTabs++
	return nil
}

func (d *fakeDriver) WaitVisible(ctx context.Context, sel string, timeout time.Duration) error {
	if d.page().visible[sel] {
		return nil
	}
	return errors.New("wait timed out: " + sel)
}

func (d *fakeDriver) Count(ctx context.Context, sel string) (int, error) {
	return d.page().counts[sel], nil
}

func (d *fakeDriver) HTML(ctx context.Context, sel string, timeout time.Duration) (string, error) {
	if html, ok := d.page().html[sel]; ok {
		return html, nil
	}
	return "", errors.New("no element for selector: " + sel)
}

func (d *fakeDriver) ScrollToBottom(ctx context.Context, sel string) error { return nil }

func (d *fakeDriver) CurrentURL(ctx context.Context) (string, error) {
	return d.stack[len(d.stack)-1], nil
}

func (d *fakeDriver) Login(ctx context.Context, email, password string) error { return nil }

func (d *fakeDriver) Close() error { return nil }

// fakeStore is an in-memory document store
type fakeStore struct {
	inserted   []ProductRecord
	links      map[string]bool
	failInsert bool
	findCalls  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{links: map[string]bool{}}
}

func (s *fakeStore) Insert(ctx context.Context, record interface{}) error {
	if s.failInsert {
		return errors.New("store unavailable")
	}
	rec := record.(ProductRecord)
	s.inserted = append(s.inserted, rec)
	s.links[rec.Link] = true
	return nil
}

func (s *fakeStore) FindByLink(ctx context.Context, link string) (bool, error) {
	s.findCalls++
	return s.links[link], nil
}

func (s *fakeStore) Close(ctx context.Context) error { return nil }

// fakePublisher collects published messages
type fakePublisher struct {
	published [][]byte
	fail      bool
}

func (p *fakePublisher) Publish(key string, message []byte) error {
	if p.fail {
		return errors.New("publisher unavailable")
	}
	p.published = append(p.published, message)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

// testConfig returns a config with collapsed timeouts for fast tests
func testConfig() *config.Config {
	return &config.Config{
		BaseURL:      "https://catalog.test/",
		NavTimeout:   time.Millisecond,
		ProbeTimeout: time.Millisecond,
		SettleDelay:  0,
		TabPause:     0,
		Selectors:    config.DefaultSelectors(),
	}
}

// emptySkipSet loads a skip set backed by a pre-created empty file so
// the built-in defaults do not interfere with the fixtures
func emptySkipSet(t *testing.T) *skipset.SkipSet {
	t.Helper()
	path := filepath.Join(t.TempDir(), "skip_list.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))
	s, err := skipset.Load(path)
	require.NoError(t, err)
	return s
}

// newSeenLinks wraps the store without a cache backend
func newSeenLinks(st *fakeStore) *cache.SeenLinks {
	return cache.NewSeenLinks(nil, st, time.Minute)
}

// newTestController wires a controller over fakes with a fixed clock
func newTestController(t *testing.T, d *fakeDriver, st *fakeStore) *Controller {
	t.Helper()
	return newTestControllerWithConfig(t, d, st, testConfig())
}

func newTestControllerWithConfig(t *testing.T, d *fakeDriver, st *fakeStore, cfg *config.Config) *Controller {
	t.Helper()
	c := NewController(d, st, newSeenLinks(st), nil, emptySkipSet(t), NewMetrics(), cfg)
	c.now = func() time.Time {
		return time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	}
	return c
}
