// Package crawler implements the depth-first traversal of the catalog:
// classify each visited page, dispatch to the handler for its kind,
// manage tab lifecycle, enforce the skip set and propagate the
// access-restricted signal up to the session runner.
package crawler

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"catalogworker/config"
	"catalogworker/internal/browser"
	"catalogworker/internal/classifier"
	"catalogworker/internal/skipset"
	"catalogworker/internal/store"
	"catalogworker/logger"
	cerrors "catalogworker/pkg/errors"
	"catalogworker/services/cache"
	"catalogworker/services/publisher"
)

// Controller drives the traversal. It is the single writer of the skip
// set and the only component that opens and closes tabs.
type Controller struct {
	driver     browser.Driver
	classifier *classifier.Classifier
	store      store.DocumentStore
	seen       *cache.SeenLinks
	publisher  publisher.Publisher // optional, may be nil
	skips      *skipset.SkipSet
	metrics    *Metrics
	cfg        *config.Config
	sel        config.Selectors
	log        *logger.Logger
	now        func() time.Time
}

// NewController wires a traversal controller
func NewController(
	d browser.Driver,
	st store.DocumentStore,
	seen *cache.SeenLinks,
	pub publisher.Publisher,
	skips *skipset.SkipSet,
	metrics *Metrics,
	cfg *config.Config,
) *Controller {
	return &Controller{
		driver:     d,
		classifier: classifier.New(d, cfg),
		store:      st,
		seen:       seen,
		publisher:  pub,
		skips:      skips,
		metrics:    metrics,
		cfg:        cfg,
		sel:        cfg.Selectors,
		log:        logger.ForCrawler(),
		now:        time.Now,
	}
}

// Run loads the catalog root and walks it depth-first. The only error
// it returns with session-fatal meaning is access-restricted; the
// session runner tears the browser down and retries on it.
func (c *Controller) Run(ctx context.Context) error {
	if err := c.driver.Navigate(ctx, c.cfg.BaseURL); err != nil {
		return cerrors.NewNotFound("root", "failed to load site", err)
	}
	time.Sleep(c.cfg.SettleDelay)

	if c.cfg.LoginEnabled {
		if err := c.driver.Login(ctx, c.cfg.CredEmail, c.cfg.CredPass); err != nil {
			return cerrors.NewNotFound("login", "login flow failed", err)
		}
		c.log.Info().Msg("Logged in")
	}

	restricted, err := c.classifier.Restricted(ctx)
	if err != nil {
		return err
	}
	if restricted {
		c.metrics.RestrictionEvents.Inc()
		return cerrors.NewAccessRestricted(c.cfg.BaseURL)
	}

	return c.handleCategoryRoot(ctx)
}

// document parses a rendered HTML snapshot
func (c *Controller) document(html string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

// dispatch routes a classified page to its handler. An access-restricted
// classification becomes the session-fatal error here; every handler
// above re-returns it unchanged.
func (c *Controller) dispatch(ctx context.Context, kind classifier.Kind, crumb Breadcrumb, link string) error {
	c.metrics.PagesClassified.WithLabelValues(kind.String()).Inc()

	switch kind {
	case classifier.AccessRestricted:
		c.metrics.RestrictionEvents.Inc()
		return cerrors.NewAccessRestricted(link)
	case classifier.TablePage, classifier.ProductPage:
		return c.handleProductPage(ctx, crumb)
	case classifier.SubcategoryIndex:
		return c.handleSubcategoryIndex(ctx, crumb)
	case classifier.TypesIndex:
		return c.handleTypesIndex(ctx, crumb)
	default:
		c.log.Warn().Str("link", link).Msg("Unhandled page encountered")
		return nil
	}
}

// abortTraversal reports whether err must collapse the whole traversal
// instead of only the current unit
func abortTraversal(ctx context.Context, err error) bool {
	return cerrors.IsAccessRestricted(err) || ctx.Err() != nil
}

// closeTab closes the foreground tab and pauses before the next sibling
func (c *Controller) closeTab() {
	if err := c.driver.CloseTab(); err != nil {
		c.log.Error().Err(err).Msg("Failed to close tab")
	}
	time.Sleep(c.cfg.TabPause)
}
