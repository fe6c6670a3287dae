package crawler

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	cerrors "catalogworker/pkg/errors"
)

// typeItem is one anchor inside a type-group container
type typeItem struct {
	group string
	link  string
	title string
}

// handleTypesIndex enumerates the group containers of a types index
// page and their anchor items. Items already captured (by skip set or
// by a matching link in the document store) are skipped; the rest open
// in a tab and go through the product handler.
func (c *Controller) handleTypesIndex(ctx context.Context, crumb Breadcrumb) error {
	html, err := c.driver.HTML(ctx, c.sel.MainContent, c.cfg.NavTimeout)
	if err != nil {
		return cerrors.NewNotFound(crumb.LeafKey(), "types index content not found", err)
	}
	doc, err := c.document(html)
	if err != nil {
		return cerrors.NewNotFound(crumb.LeafKey(), "failed to parse types index", err)
	}

	items := c.parseTypeItems(doc)
	c.log.Info().Int("items", len(items)).Msg("Walking types index")

	for _, item := range items {
		if c.skips.Contains(item.title) {
			c.metrics.UnitsSkipped.Inc()
			c.log.Info().Str("title", item.title).Msg("Skipping, found in skip list")
			continue
		}

		c.log.Info().
			Str("group", item.group).
			Str("title", item.title).
			Str("link", item.link).
			Msg("Processing type item")

		seen, err := c.seen.Seen(ctx, item.link)
		if err != nil {
			// Store failure: skip the unit without learning it, so it
			// retries on the next run.
			c.log.Error().Err(err).Str("link", item.link).Msg("Link lookup failed")
			continue
		}
		if seen {
			c.metrics.ProductsDeduped.Inc()
			c.log.Info().Str("title", item.title).Msg("Already captured, backfilling skip list")
			if err := c.skips.Add(item.title); err != nil {
				c.log.Error().Err(err).Msg("Failed to persist skip list")
			}
			continue
		}

		if err := c.visitTypeItem(ctx, crumb, item); err != nil {
			if abortTraversal(ctx, err) {
				return err
			}
			c.log.Error().Err(err).Str("title", item.title).Msg("Failed to process type item")
		}
	}
	return nil
}

// visitTypeItem opens the item in a new tab, verifies access and runs
// the product handler
func (c *Controller) visitTypeItem(ctx context.Context, crumb Breadcrumb, item typeItem) error {
	if err := c.driver.OpenTab(ctx, item.link); err != nil {
		return cerrors.NewNotFound(item.link, "failed to open tab", err)
	}
	defer c.closeTab()

	restricted, err := c.classifier.Restricted(ctx)
	if err != nil {
		return err
	}
	if restricted {
		c.metrics.RestrictionEvents.Inc()
		return cerrors.NewAccessRestricted(item.link)
	}

	return c.handleProductPage(ctx, crumb)
}

// parseTypeItems extracts link and title from every anchor in every
// group container
func (c *Controller) parseTypeItems(doc *goquery.Document) []typeItem {
	var items []typeItem
	doc.Find(c.sel.TypeGroup).Each(func(_ int, group *goquery.Selection) {
		groupName := strings.TrimSpace(group.Find(c.sel.TypeGroupTitle).First().Text())
		group.Find(c.sel.TypeItem).Each(func(_ int, a *goquery.Selection) {
			link, ok := a.Attr("href")
			if !ok || link == "" {
				return
			}
			items = append(items, typeItem{
				group: groupName,
				link:  link,
				title: strings.TrimSpace(a.Find(c.sel.TypeItemTitle).First().Text()),
			})
		})
	})
	return items
}
