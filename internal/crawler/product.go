package crawler

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"catalogworker/internal/extract"
	cerrors "catalogworker/pkg/errors"
)

// handleProductPage scrolls the product content to force lazy loading,
// then builds and persists one product record per non-auxiliary section
// of the page container. Every record carries the full set of table
// results found on the page, in document order.
func (c *Controller) handleProductPage(ctx context.Context, crumb Breadcrumb) error {
	if err := c.driver.WaitVisible(ctx, c.sel.ProductContent, c.cfg.NavTimeout); err != nil {
		return cerrors.NewNotFound(crumb.LeafKey(), "product page content not found", err)
	}
	if err := c.driver.ScrollToBottom(ctx, c.sel.ProductContent); err != nil {
		c.log.Warn().Err(err).Msg("Failed to scroll product content")
	}
	time.Sleep(c.cfg.SettleDelay)

	link, err := c.driver.CurrentURL(ctx)
	if err != nil {
		return cerrors.NewNotFound(crumb.LeafKey(), "failed to read current url", err)
	}

	html, err := c.driver.HTML(ctx, c.sel.PageContainer, c.cfg.NavTimeout)
	if err != nil {
		return cerrors.NewNotFound(link, "page container not found", err)
	}
	doc, err := c.document(html)
	if err != nil {
		return cerrors.NewNotFound(link, "failed to parse product page", err)
	}

	sections := c.includedSections(doc)
	c.log.Info().Int("sections", len(sections)).Str("link", link).Msg("Processing product page")

	// A link already captured is never re-inserted; just learn the
	// section titles so index pages skip them next time.
	seen, err := c.seen.Seen(ctx, link)
	if err != nil {
		return cerrors.NewStore(link, "link lookup failed", err)
	}
	if seen {
		c.metrics.ProductsDeduped.Inc()
		for _, sec := range sections {
			title := strings.TrimSpace(sec.Find(c.sel.ProductTitle).First().Text())
			if title == "" {
				continue
			}
			if err := c.skips.Add(title); err != nil {
				c.log.Error().Err(err).Msg("Failed to persist skip list")
			}
		}
		c.log.Info().Str("link", link).Msg("Already captured, skipping insert")
		return nil
	}

	tableResults := c.extractTables(doc, link)

	for _, sec := range sections {
		record := c.buildRecord(sec, crumb, link, tableResults)

		c.log.Info().Str("title", record.Title).Msg("Saving product record")
		if err := c.store.Insert(ctx, record); err != nil {
			// Unit fatal: skip set stays untouched so the unit retries
			// on the next run.
			return cerrors.NewStore(link, "failed to insert product record", err)
		}
		c.metrics.ProductsInserted.Inc()
		c.seen.Mark(link)
		c.publishRecord(record)

		if record.Title != "" {
			if err := c.skips.Add(record.Title); err != nil {
				c.log.Error().Err(err).Msg("Failed to persist skip list")
			}
		}
		c.log.Info().Str("title", record.Title).Msg("Saved product record")
	}
	return nil
}

// buildRecord assembles one immutable product record from a section
func (c *Controller) buildRecord(sec *goquery.Selection, crumb Breadcrumb, link string, tables []TableResult) ProductRecord {
	title := strings.TrimSpace(sec.Find(c.sel.ProductTitle).First().Text())
	description := strings.TrimSpace(sec.Find(c.sel.ProductCopy).First().Text())

	return ProductRecord{
		Category:     crumb.Category,
		Subcategory1: crumb.Subcat1,
		Subcategory2: crumb.Subcat2,
		Subcategory3: crumb.Subcat3,
		Title:        title,
		Link:         link,
		Timestamp:    captureTimestamp(c.now()),
		Images:       c.sectionImages(sec),
		Description:  description,
		Data:         tables,
	}
}

// sectionImages collects the section's image URLs, deduplicated
func (c *Controller) sectionImages(sec *goquery.Selection) []string {
	unique := make(map[string]struct{})
	sec.Find(c.sel.ProductImage).Each(func(_ int, img *goquery.Selection) {
		if src, ok := img.Attr("src"); ok {
			if src = strings.TrimSpace(src); src != "" {
				unique[src] = struct{}{}
			}
		}
	})
	images := make([]string, 0, len(unique))
	for src := range unique {
		images = append(images, src)
	}
	sort.Strings(images)
	return images
}

// includedSections returns the page container's sections, excluding
// the auxiliary blocks marked by the skip class
func (c *Controller) includedSections(doc *goquery.Document) []*goquery.Selection {
	var sections []*goquery.Selection
	doc.Find(c.sel.ProductSection).Each(func(_ int, sec *goquery.Selection) {
		class, _ := sec.Attr("class")
		if strings.TrimSpace(class) == c.sel.ProductSectionSkip {
			return
		}
		sections = append(sections, sec)
	})
	return sections
}

// extractTables runs the extractor over every table on the page.
// Failures become error markers inside the results, never fatal.
func (c *Controller) extractTables(doc *goquery.Document, link string) []TableResult {
	tables := doc.Find(c.sel.Table)
	total := tables.Length()
	if total == 0 {
		c.log.Warn().Str("link", link).Msg("No tables found on product page")
		return []TableResult{{Info: "No table data found on this page"}}
	}

	results := make([]TableResult, 0, total)
	tables.Each(func(i int, table *goquery.Selection) {
		rows, err := extract.Table(table)
		if err != nil {
			c.metrics.ExtractionFailures.Inc()
			c.log.Error().Err(err).Str("link", link).Int("table", i+1).Msg("Table extraction failed")
			results = append(results, TableResult{Error: fmt.Sprintf("Extraction failed: %v", err)})
			return
		}
		c.metrics.TablesExtracted.Inc()
		c.log.Info().Int("table", i+1).Int("total", total).Int("rows", len(rows)).Msg("Extracted table")
		results = append(results, TableResult{Rows: rows})
	})
	return results
}

// publishRecord hands an inserted record to the publisher, best effort
func (c *Controller) publishRecord(record ProductRecord) {
	if c.publisher == nil {
		return
	}
	data, err := json.Marshal(record)
	if err != nil {
		c.log.Error().Err(err).Str("title", record.Title).Msg("Failed to marshal record for publishing")
		return
	}
	if err := c.publisher.Publish("product", data); err != nil {
		c.log.Error().Err(err).Str("title", record.Title).Msg("Failed to publish record")
	}
}
