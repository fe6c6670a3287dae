package crawler

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"catalogworker/internal/classifier"
	cerrors "catalogworker/pkg/errors"
)

// leafItem is one category leaf discovered on the root page
type leafItem struct {
	category string
	subcat1  string
	subcat2  string
	link     string
}

// handleCategoryRoot enumerates category containers, their subcategory
// blocks and leaf items, and visits every leaf not in the skip set.
func (c *Controller) handleCategoryRoot(ctx context.Context) error {
	html, err := c.driver.HTML(ctx, c.sel.HomeContent, c.cfg.NavTimeout)
	if err != nil {
		return cerrors.NewNotFound("root", "home page content not found", err)
	}
	doc, err := c.document(html)
	if err != nil {
		return cerrors.NewNotFound("root", "failed to parse home page", err)
	}

	leaves := c.parseCategoryLeaves(doc)
	c.log.Info().
		Int("leaves", len(leaves)).
		Int("skip_keys", c.skips.Len()).
		Msg("Walking category root")

	for _, leaf := range leaves {
		crumb := Breadcrumb{Category: leaf.category, Subcat1: leaf.subcat1, Subcat2: leaf.subcat2}
		key := crumb.LeafKey()
		if c.skips.Contains(key) {
			c.metrics.UnitsSkipped.Inc()
			c.log.Info().Str("key", key).Msg("Skipping, found in skip list")
			continue
		}

		c.log.Info().
			Str("category", leaf.category).
			Str("subcategory_1", leaf.subcat1).
			Str("subcategory_2", leaf.subcat2).
			Str("link", leaf.link).
			Msg("Processing category leaf")

		if err := c.visitLeaf(ctx, crumb, key, leaf.link); err != nil {
			if abortTraversal(ctx, err) {
				return err
			}
			c.log.Error().Err(err).Str("key", key).Msg("Failed to process category leaf")
		}
	}
	return nil
}

// visitLeaf opens the leaf in a new tab, classifies it and dispatches.
// The crawl key is learned only after the dispatched handler returns
// without raising access-restricted.
func (c *Controller) visitLeaf(ctx context.Context, crumb Breadcrumb, key, link string) error {
	if err := c.driver.OpenTab(ctx, link); err != nil {
		return cerrors.NewNotFound(link, "failed to open tab", err)
	}
	defer c.closeTab()

	kind, err := c.classifier.Classify(ctx)
	if err != nil {
		return err
	}
	if err := c.dispatch(ctx, kind, crumb, link); err != nil {
		return err
	}
	if kind == classifier.Unknown {
		// Unknown pages are not learned; they retry on the next run.
		return nil
	}
	return c.skips.Add(key)
}

// parseCategoryLeaves flattens the root page's category > subcategory >
// leaf hierarchy, honoring the configured category start offset.
func (c *Controller) parseCategoryLeaves(doc *goquery.Document) []leafItem {
	var leaves []leafItem

	categories := doc.Find(c.sel.Category)
	categories.Each(func(i int, cat *goquery.Selection) {
		if i < c.cfg.CategoryStartOffset {
			return
		}
		category := strings.TrimSpace(cat.Find(c.sel.CategoryTitle).First().Text())
		if category == "" {
			return
		}

		cat.Find(c.sel.Subcategory).Each(func(_ int, sub *goquery.Selection) {
			subcat1 := strings.TrimSpace(sub.Find(c.sel.SubcategoryTitle).First().Text())

			sub.Find(c.sel.SubcategoryItem).Each(func(_ int, item *goquery.Selection) {
				subcat2 := strings.TrimSpace(item.Text())
				link, ok := item.Find(c.sel.SubcategoryLink).First().Attr("href")
				if !ok || link == "" {
					return
				}
				leaves = append(leaves, leafItem{
					category: category,
					subcat1:  subcat1,
					subcat2:  subcat2,
					link:     link,
				})
			})
		})
	})

	return leaves
}
