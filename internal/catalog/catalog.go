// Package catalog derives filtered views of the product list and drives the
// product detail carousel.
package catalog

import (
	"strings"

	"github.com/daivuongnguyen/yen-may-vintage-website/internal/content"
)

// All is the pseudo-category that selects every product.
const All = "All"

// Categories returns "All" followed by the distinct non-empty categories of
// items in first-seen order.
func Categories(items []content.ProductItem) []string {
	out := []string{All}
	seen := map[string]bool{All: true}
	for _, it := range items {
		c := strings.TrimSpace(it.Category)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// Filter returns the items in category, keeping their relative order.
// An empty category or "All" returns a copy of the whole list.
func Filter(items []content.ProductItem, category string) []content.ProductItem {
	category = strings.TrimSpace(category)
	if category == "" || category == All {
		return append([]content.ProductItem(nil), items...)
	}
	var out []content.ProductItem
	for _, it := range items {
		if strings.TrimSpace(it.Category) == category {
			out = append(out, it)
		}
	}
	return out
}

// Selected normalises a requested category against the known set. Unknown
// values fall back to "All".
func Selected(items []content.ProductItem, category string) string {
	category = strings.TrimSpace(category)
	for _, c := range Categories(items) {
		if c == category {
			return c
		}
	}
	return All
}

// IndexOf resolves a title against the canonical list. It returns -1 when absent.
func IndexOf(items []content.ProductItem, title string) int {
	title = strings.TrimSpace(title)
	if title == "" {
		return -1
	}
	for i, it := range items {
		if it.Title == title {
			return i
		}
	}
	return -1
}

// Lookup returns the canonical item with the given title.
func Lookup(items []content.ProductItem, title string) (content.ProductItem, bool) {
	i := IndexOf(items, title)
	if i < 0 {
		return content.ProductItem{}, false
	}
	return items[i], true
}
