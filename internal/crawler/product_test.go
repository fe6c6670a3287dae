package crawler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalogworker/internal/extract"
	cerrors "catalogworker/pkg/errors"
)

const productPageHTML = `
<div id="PageCntnr">
  <section class="ap">
    <h3>Auxiliary Block</h3>
  </section>
  <section>
    <h3>Alloy Steel Socket Head Screws</h3>
    <img src="https://img.test/screw.png"/>
    <img src="https://img.test/screw.png"/>
    <img src="https://img.test/diagram.png"/>
    <div class="CpyCntnr">The hardest screws we carry.</div>
    <table>
      <thead><tr><td>Material</td><td>Length</td></tr></thead>
      <tbody>
        <tr><th>2-56</th><td>Steel</td><td>10mm</td></tr>
        <tr><th>2-56</th><td>Brass</td><td>12mm</td></tr>
      </tbody>
    </table>
  </section>
</div>`

func productDriver(url, html string) *fakeDriver {
	d := newFakeDriver()
	page := newFakePage()
	page.html[testConfig().Selectors.PageContainer] = html
	d.pages[url] = page
	d.stack = []string{url}
	return d
}

func TestHandleProductPageBuildsRecords(t *testing.T) {
	link := "https://catalog.test/screws"
	d := productDriver(link, productPageHTML)
	st := newFakeStore()
	c := newTestController(t, d, st)

	crumb := Breadcrumb{Category: "Fastening", Subcat1: "Fasteners", Subcat2: "Screws and Bolts"}
	require.NoError(t, c.handleProductPage(context.Background(), crumb))

	// The auxiliary section is excluded, so exactly one record lands.
	require.Len(t, st.inserted, 1)
	rec := st.inserted[0]
	assert.Equal(t, "Fastening", rec.Category)
	assert.Equal(t, "Fasteners", rec.Subcategory1)
	assert.Equal(t, "Screws and Bolts", rec.Subcategory2)
	assert.Equal(t, "Alloy Steel Socket Head Screws", rec.Title)
	assert.Equal(t, link, rec.Link)
	assert.Equal(t, "The hardest screws we carry.", rec.Description)
	assert.Equal(t, []string{"https://img.test/diagram.png", "https://img.test/screw.png"}, rec.Images)

	require.Len(t, rec.Data, 1)
	require.Len(t, rec.Data[0].Rows, 2)
	assert.Equal(t, extract.RowRecord{
		extract.PropertyA:    "2-56",
		extract.PropertyB:    "",
		"Material":           "Steel",
		extract.SerialColumn: "10mm",
	}, rec.Data[0].Rows[0])

	assert.True(t, c.skips.Contains("Alloy Steel Socket Head Screws"))
}

func TestHandleProductPageTimestampIsIST(t *testing.T) {
	link := "https://catalog.test/screws"
	d := productDriver(link, productPageHTML)
	st := newFakeStore()
	c := newTestController(t, d, st)

	// Fixed clock is 2026-08-26 12:00:00 UTC, which is 17:30 in IST.
	require.NoError(t, c.handleProductPage(context.Background(), Breadcrumb{}))
	require.Len(t, st.inserted, 1)
	assert.Equal(t, "2026-08-26 17:30:00 PM IST", st.inserted[0].Timestamp)
}

func TestHandleProductPageSkipsCapturedLink(t *testing.T) {
	link := "https://catalog.test/screws"
	d := productDriver(link, productPageHTML)
	st := newFakeStore()
	st.links[link] = true
	c := newTestController(t, d, st)

	require.NoError(t, c.handleProductPage(context.Background(), Breadcrumb{}))

	assert.Empty(t, st.inserted)
	// The section title is still learned so index pages skip it next run.
	assert.True(t, c.skips.Contains("Alloy Steel Socket Head Screws"))
}

func TestHandleProductPageWithoutTables(t *testing.T) {
	link := "https://catalog.test/plain"
	html := `<div id="PageCntnr"><section><h3>Plain Washers</h3></section></div>`
	d := productDriver(link, html)
	st := newFakeStore()
	c := newTestController(t, d, st)

	require.NoError(t, c.handleProductPage(context.Background(), Breadcrumb{}))

	require.Len(t, st.inserted, 1)
	require.Len(t, st.inserted[0].Data, 1)
	assert.Equal(t, "No table data found on this page", st.inserted[0].Data[0].Info)
	assert.Empty(t, st.inserted[0].Data[0].Rows)
}

func TestHandleProductPageBrokenTableBecomesErrorMarker(t *testing.T) {
	link := "https://catalog.test/broken"
	html := `<div id="PageCntnr">
		<section><h3>Broken</h3></section>
		<table><thead><tr><td>Material</td></tr></thead></table>
	</div>`
	d := productDriver(link, html)
	st := newFakeStore()
	c := newTestController(t, d, st)

	require.NoError(t, c.handleProductPage(context.Background(), Breadcrumb{}))

	require.Len(t, st.inserted, 1)
	require.Len(t, st.inserted[0].Data, 1)
	assert.Contains(t, st.inserted[0].Data[0].Error, "Extraction failed")
}

func TestHandleProductPageStoreFailureLeavesSkipSetUntouched(t *testing.T) {
	link := "https://catalog.test/screws"
	d := productDriver(link, productPageHTML)
	st := newFakeStore()
	st.failInsert = true
	c := newTestController(t, d, st)

	err := c.handleProductPage(context.Background(), Breadcrumb{})
	require.Error(t, err)
	assert.False(t, cerrors.IsAccessRestricted(err))
	assert.False(t, c.skips.Contains("Alloy Steel Socket Head Screws"))
}

func TestHandleProductPagePublishesRecords(t *testing.T) {
	link := "https://catalog.test/screws"
	d := productDriver(link, productPageHTML)
	st := newFakeStore()
	c := newTestController(t, d, st)
	pub := &fakePublisher{}
	c.publisher = pub

	require.NoError(t, c.handleProductPage(context.Background(), Breadcrumb{}))
	require.Len(t, pub.published, 1)
	assert.Contains(t, string(pub.published[0]), "Alloy Steel Socket Head Screws")
}

func TestHandleProductPagePublisherFailureIsBestEffort(t *testing.T) {
	link := "https://catalog.test/screws"
	d := productDriver(link, productPageHTML)
	st := newFakeStore()
	c := newTestController(t, d, st)
	c.publisher = &fakePublisher{fail: true}

	require.NoError(t, c.handleProductPage(context.Background(), Breadcrumb{}))
	assert.Len(t, st.inserted, 1)
}
