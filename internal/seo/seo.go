package seo

// Meta holds the head tags of a page.
type Meta struct {
	Title       string
	Description string
	Canonical   string
	Image       string
	SiteName    string
	Locale      string
}
