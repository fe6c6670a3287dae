package crawler

import (
	"time"

	"catalogworker/internal/extract"
)

// TableResult is the extraction output for one rendered table: either
// its row records, or an error/info marker when extraction failed or
// found nothing. Markers never abort the product.
type TableResult struct {
	Rows  []extract.RowRecord `bson:"rows,omitempty" json:"rows,omitempty"`
	Error string              `bson:"error,omitempty" json:"error,omitempty"`
	Info  string              `bson:"info,omitempty" json:"info,omitempty"`
}

// ProductRecord is one captured product document. Immutable once built;
// inserted exactly once, never upserted.
type ProductRecord struct {
	Category     string        `bson:"category" json:"category"`
	Subcategory1 string        `bson:"subcategory_1" json:"subcategory_1"`
	Subcategory2 string        `bson:"subcategory_2" json:"subcategory_2"`
	Subcategory3 string        `bson:"subcategory_3" json:"subcategory_3"`
	Title        string        `bson:"title" json:"title"`
	Link         string        `bson:"link" json:"link"`
	Timestamp    string        `bson:"timestamp" json:"timestamp"`
	Images       []string      `bson:"images" json:"images"`
	Description  string        `bson:"description,omitempty" json:"description,omitempty"`
	Data         []TableResult `bson:"data" json:"data"`
}

// Breadcrumb carries the category path accumulated on the way down
type Breadcrumb struct {
	Category string
	Subcat1  string
	Subcat2  string
	Subcat3  string
}

// LeafKey is the crawl key for a category leaf. It is computed the same
// way regardless of which handler path reached the node.
func (b Breadcrumb) LeafKey() string {
	return b.Category + "/" + b.Subcat2
}

// istZone is the fixed capture-timestamp offset, +5:30 from UTC
var istZone = time.FixedZone("IST", (5*60+30)*60)

// captureTimestamp formats a capture time in the fixed IST offset
func captureTimestamp(now time.Time) string {
	return now.In(istZone).Format("2006-01-02 15:04:05 PM IST")
}
