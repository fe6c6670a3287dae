package crawler

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"catalogworker/helpers"
	"catalogworker/internal/classifier"
	cerrors "catalogworker/pkg/errors"
)

// subcatTile is one anchor tile inside the rendered-content container
type subcatTile struct {
	link        string
	title       string
	image       string
	description string
	count       string
}

// handleSubcategoryIndex enumerates the tiles of a subcategory index
// page and recurses into each one that is not in the skip set. Tile
// titles become the third subcategory level.
func (c *Controller) handleSubcategoryIndex(ctx context.Context, crumb Breadcrumb) error {
	html, err := c.driver.HTML(ctx, c.sel.RenderedContent, c.cfg.NavTimeout)
	if err != nil {
		return cerrors.NewNotFound(crumb.LeafKey(), "rendered content container not found", err)
	}
	doc, err := c.document(html)
	if err != nil {
		return cerrors.NewNotFound(crumb.LeafKey(), "failed to parse subcategory index", err)
	}

	tiles := c.parseSubcatTiles(doc)
	c.log.Info().Int("tiles", len(tiles)).Msg("Walking subcategory index")

	for _, tile := range tiles {
		if c.skips.Contains(tile.title) {
			c.metrics.UnitsSkipped.Inc()
			c.log.Info().Str("title", tile.title).Msg("Skipping, found in skip list")
			continue
		}

		c.log.Info().
			Str("subcategory_3", tile.title).
			Str("products", tile.count).
			Str("link", tile.link).
			Str("description", helpers.Truncate(tile.description, 50)).
			Msg("Processing subcategory tile")

		if err := c.visitSubcatTile(ctx, crumb, tile); err != nil {
			if abortTraversal(ctx, err) {
				return err
			}
			c.log.Error().Err(err).Str("title", tile.title).Msg("Failed to process subcategory tile")
		}
	}
	return nil
}

// visitSubcatTile opens the tile in a new tab, classifies it and
// dispatches to the table/product/types handler. The title is learned
// into the skip set only after the dispatched handler succeeds.
func (c *Controller) visitSubcatTile(ctx context.Context, crumb Breadcrumb, tile subcatTile) error {
	if err := c.driver.OpenTab(ctx, tile.link); err != nil {
		return cerrors.NewNotFound(tile.link, "failed to open tab", err)
	}
	defer c.closeTab()

	kind, err := c.classifier.Classify(ctx)
	if err != nil {
		return err
	}
	c.metrics.PagesClassified.WithLabelValues(kind.String()).Inc()

	next := crumb
	next.Subcat3 = tile.title

	switch kind {
	case classifier.AccessRestricted:
		c.metrics.RestrictionEvents.Inc()
		return cerrors.NewAccessRestricted(tile.link)
	case classifier.TablePage, classifier.ProductPage:
		if err := c.handleProductPage(ctx, next); err != nil {
			return err
		}
	case classifier.TypesIndex:
		if err := c.handleTypesIndex(ctx, next); err != nil {
			return err
		}
	default:
		c.log.Debug().Str("kind", kind.String()).Str("link", tile.link).Msg("No subcategory branch for page kind")
	}

	return c.skips.Add(tile.title)
}

// parseSubcatTiles extracts link, image, title, description and product
// count from every anchor tile in the rendered-content container
func (c *Controller) parseSubcatTiles(doc *goquery.Document) []subcatTile {
	var tiles []subcatTile
	doc.Find(c.sel.Tile).Each(func(_ int, a *goquery.Selection) {
		link, ok := a.Attr("href")
		if !ok || link == "" {
			return
		}
		image, _ := a.Find(c.sel.TileImage).First().Attr("src")
		tiles = append(tiles, subcatTile{
			link:        link,
			title:       strings.TrimSpace(a.Find(c.sel.TileTitle).First().Text()),
			image:       image,
			description: strings.TrimSpace(a.Find(c.sel.TileCopy).First().Text()),
			count:       strings.TrimSpace(a.Find(c.sel.TileProductCount).First().Text()),
		})
	})
	return tiles
}
