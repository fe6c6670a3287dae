// Package extract flattens irregular nested specification tables into
// row records keyed by the table's column headers and two inherited
// grouping labels.
package extract

import (
	"errors"

	"github.com/PuerkitoBio/goquery"

	"catalogworker/helpers"
)

const (
	// PropertyA is the row-group's primary dimension label, taken from
	// the first body row's header cell and inherited by every row.
	PropertyA = "Property A"
	// PropertyB is the secondary grouping label, updated whenever a row
	// carries its own header cell differing from the dimension value and
	// otherwise inherited from the previous row.
	PropertyB = "Property B"
	// SerialColumn is the synthetic header inserted one position before
	// the last header, standing in for the unlabeled trailing data column.
	SerialColumn = "serial_nu"
)

// RowRecord is one flattened specification row
type RowRecord map[string]string

// ErrNoTableBody reports a table without a body section. Non-fatal:
// the caller records the condition and moves on.
var ErrNoTableBody = errors.New("table has no body section")

// Table flattens one rendered specification table into row records.
// The selection must point at a single <table> element.
func Table(table *goquery.Selection) ([]RowRecord, error) {
	tbody := table.Find("tbody")
	if tbody.Length() == 0 {
		return nil, ErrNoTableBody
	}
	rows := tbody.Find("tr")
	if rows.Length() == 0 {
		return []RowRecord{}, nil
	}

	dimension := dimensionValue(rows.First())
	headers := headerLabels(table)

	records := make([]RowRecord, 0, rows.Length())
	currentGroup := ""

	rows.Each(func(_ int, row *goquery.Selection) {
		if th := row.Find("th"); th.Length() > 0 {
			text := helpers.CleanCellText(th.First().Text())
			if text != "" && text != dimension {
				currentGroup = text
			}
		}

		cells := row.Find("td")
		if cells.Length() == 0 {
			// Header-only grouping row, contributes no record.
			return
		}

		rec := RowRecord{
			PropertyA: dimension,
			PropertyB: currentGroup,
		}
		cells.Each(func(i int, cell *goquery.Selection) {
			// Cells beyond the header count are dropped.
			if i < len(headers) {
				rec[headers[i]] = helpers.CleanCellText(cell.Text())
			}
		})
		records = append(records, rec)
	})

	return records, nil
}

// dimensionValue reads the primary dimension from the first body row:
// its header cell if present, otherwise the full row text.
func dimensionValue(first *goquery.Selection) string {
	if th := first.Find("th"); th.Length() > 0 {
		return helpers.CleanCellText(th.First().Text())
	}
	return helpers.CleanCellText(first.Text())
}

// headerLabels collects the non-empty header cell texts and inserts the
// synthetic serial column one position before the end, reproducing the
// source column-to-header alignment.
func headerLabels(table *goquery.Selection) []string {
	var headers []string
	table.Find("thead td").Each(func(_ int, cell *goquery.Selection) {
		if text := helpers.CleanCellText(cell.Text()); text != "" {
			headers = append(headers, text)
		}
	})

	idx := len(headers) - 1
	if idx < 0 {
		idx = 0
	}
	headers = append(headers, "")
	copy(headers[idx+1:], headers[idx:])
	headers[idx] = SerialColumn
	return headers
}
