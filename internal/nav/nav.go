package nav

import (
	"strings"

	"github.com/daivuongnguyen/yen-may-vintage-website/internal/content"
)

// RenderedItem is a view model for templates.
type RenderedItem struct {
	Href     string
	Label    string
	Anchor   string
	External bool
}

// Build renders the configured navigation links. In-page anchors keep their
// fragment so the header can highlight the section in view.
func Build(links []content.NavLink) []RenderedItem {
	items := make([]RenderedItem, 0, len(links))
	for _, l := range links {
		href := strings.TrimSpace(l.Href)
		label := strings.TrimSpace(l.Label)
		if href == "" || label == "" {
			continue
		}
		item := RenderedItem{Href: href, Label: label}
		switch {
		case strings.HasPrefix(href, "#"):
			item.Anchor = strings.TrimPrefix(href, "#")
			// Anchors must resolve against the page root so they work from
			// fragment URLs such as /?category=Dresses.
			item.Href = "/" + href
		case strings.HasPrefix(href, "http://"), strings.HasPrefix(href, "https://"):
			item.External = true
		}
		items = append(items, item)
	}
	return items
}
