package config

// Selectors contains the CSS selectors the crawler probes and parses.
// The traversal core treats them as opaque locators; everything
// site-specific is concentrated here.
type Selectors struct {
	// Page-level probes
	MainContent         string // main content container, visibility gates every classification
	ProtectionIndicator string // data-protection element; its PRESENCE means access is granted
	Table               string

	// Category root page
	HomeContent      string
	Category         string
	CategoryTitle    string
	Subcategory      string
	SubcategoryTitle string
	SubcategoryItem  string
	SubcategoryLink  string

	// Subcategory index page
	RenderedContent  string
	Tile             string
	TileImage        string
	TileTitle        string
	TileCopy         string
	TileProductCount string

	// Types index page
	TypeGroup      string
	TypeGroupTitle string
	TypeItem       string
	TypeItemTitle  string
	TypeItemCopy   string
	TypeItemImage  string

	// Product page
	PageContainer      string
	ProductMarker      string
	ProductContent     string
	ProductSection     string
	ProductSectionSkip string // section class marking auxiliary blocks
	ProductTitle       string
	ProductImage       string
	ProductCopy        string

	// Login form
	LoginLink     string
	LoginEmail    string
	LoginPassword string
	LoginSubmit   string
}

// DefaultSelectors returns the selector set for the target catalog site
func DefaultSelectors() Selectors {
	return Selectors{
		MainContent:         "#MainContent",
		ProtectionIndicator: "#ProdDatProtectionWebPart_MainContentCntnr",
		Table:               "table",

		HomeContent:      "#HomePageContent",
		Category:         ".catg",
		CategoryTitle:    "h1",
		Subcategory:      ".subcat",
		SubcategoryTitle: "h2",
		SubcategoryItem:  "li",
		SubcategoryLink:  "a",

		RenderedContent:  "#ClientRenderedContentWebPart",
		Tile:             "a",
		TileImage:        "div[class^='TileLayout_imageContainer'] img",
		TileTitle:        "div[class^='TileLayout_titleContainer']",
		TileCopy:         "div[class^='TileLayout_copyContainer']",
		TileProductCount: "div[class^='ProductCount_productCount']",

		TypeGroup:      ".GroupPrsnttn",
		TypeGroupTitle: "h3",
		TypeItem:       "a",
		TypeItemTitle:  ".ke",
		TypeItemCopy:   ".PrsnttnCpy",
		TypeItemImage:  "img",

		PageContainer:      "#PageCntnr",
		ProductMarker:      "#ProductPage",
		ProductContent:     "#ProdPageContent",
		ProductSection:     "section",
		ProductSectionSkip: "ap",
		ProductTitle:       "h3",
		ProductImage:       "img",
		ProductCopy:        ".CpyCntnr",

		LoginLink:     "#LoginUsrCtrlWebPart_LoginLnk",
		LoginEmail:    "#Email",
		LoginPassword: "#Password",
		LoginSubmit:   "input[class^='FormButton_primaryButton']",
	}
}
