// Package classifier decides which kind of catalog page is currently
// loaded. The legacy probes overlapped; here the precedence is total:
// AccessRestricted > TablePage > SubcategoryIndex > TypesIndex >
// ProductPage > Unknown.
package classifier

import (
	"context"
	"time"

	"catalogworker/config"
	"catalogworker/internal/browser"
	"catalogworker/logger"
)

// Kind is the classification of a loaded catalog page
type Kind int

const (
	// Unknown means no signal matched; the page gets no handler
	Unknown Kind = iota
	// AccessRestricted means the site blocked the session. Detection is
	// inverted: the data-protection element's presence means access is
	// granted, so its absence within the probe timeout means restricted.
	AccessRestricted
	// TablePage has at least one specification table
	TablePage
	// SubcategoryIndex carries the rendered-content tile container
	SubcategoryIndex
	// TypesIndex has at least one type-group presentation container
	TypesIndex
	// ProductPage is a leaf page with product sections
	ProductPage
)

// String returns the kind name for logging
func (k Kind) String() string {
	switch k {
	case AccessRestricted:
		return "access_restricted"
	case TablePage:
		return "table_page"
	case SubcategoryIndex:
		return "subcategory_index"
	case TypesIndex:
		return "types_index"
	case ProductPage:
		return "product_page"
	default:
		return "unknown"
	}
}

// Classifier inspects the driver's foreground page
type Classifier struct {
	driver       browser.Driver
	sel          config.Selectors
	navTimeout   time.Duration
	probeTimeout time.Duration
	settleDelay  time.Duration
	log          *logger.Logger
}

// New creates a classifier bound to a driver and the configured
// selector set and timeout profile
func New(d browser.Driver, cfg *config.Config) *Classifier {
	return &Classifier{
		driver:       d,
		sel:          cfg.Selectors,
		navTimeout:   cfg.NavTimeout,
		probeTimeout: cfg.ProbeTimeout,
		settleDelay:  cfg.SettleDelay,
		log:          logger.ForComponent("classifier"),
	}
}

// Restricted probes only the access-restriction signal. The traversal
// controller evaluates it first after every navigation.
func (c *Classifier) Restricted(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := c.driver.WaitVisible(ctx, c.sel.ProtectionIndicator, c.probeTimeout); err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return true, nil
	}
	return false, nil
}

// Classify settles the page, waits for the main content container and
// returns exactly one kind. Errors are driver-level only; a page that
// matches nothing is Unknown, not an error.
func (c *Classifier) Classify(ctx context.Context) (Kind, error) {
	time.Sleep(c.settleDelay)

	restricted, err := c.Restricted(ctx)
	if err != nil {
		return Unknown, err
	}
	if restricted {
		return AccessRestricted, nil
	}

	// Visibility of the main content container is a hard precondition
	// for every probe below.
	if err := c.driver.WaitVisible(ctx, c.sel.MainContent, c.navTimeout); err != nil {
		if ctx.Err() != nil {
			return Unknown, ctx.Err()
		}
		c.log.Warn().Err(err).Msg("Main content never became visible")
		return Unknown, nil
	}

	if n, err := c.driver.Count(ctx, c.sel.Table); err != nil {
		return Unknown, err
	} else if n > 0 {
		return TablePage, nil
	}

	if n, err := c.driver.Count(ctx, c.sel.RenderedContent); err != nil {
		return Unknown, err
	} else if n > 0 {
		return SubcategoryIndex, nil
	}

	if n, err := c.driver.Count(ctx, c.sel.TypeGroup); err != nil {
		return Unknown, err
	} else if n > 0 {
		return TypesIndex, nil
	}

	// No type groups anywhere: a page container or an explicit product
	// marker identifies a product page.
	if n, err := c.driver.Count(ctx, c.sel.PageContainer); err != nil {
		return Unknown, err
	} else if n > 0 {
		return ProductPage, nil
	}
	if n, err := c.driver.Count(ctx, c.sel.ProductMarker); err != nil {
		return Unknown, err
	} else if n > 0 {
		return ProductPage, nil
	}

	c.log.Warn().Msg("Unhandled page encountered")
	return Unknown, nil
}
