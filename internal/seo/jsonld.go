package seo

import (
	"encoding/json"
	"strings"

	"github.com/daivuongnguyen/yen-may-vintage-website/internal/content"
)

// JSON marshals v to a compact JSON string. It returns an empty string on error.
func JSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// ClothingStore describes the shop as a schema.org ClothingStore.
func ClothingStore(brand content.Brand, loc content.Location, url, image string) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "ClothingStore",
		"name":     strings.TrimSpace(brand.Name + " " + titleCase(brand.Tagline)),
	}
	if brand.Slogan != "" {
		m["slogan"] = brand.Slogan
	}
	if url != "" {
		m["url"] = url
	}
	if image != "" {
		m["image"] = image
	}
	if brand.InstagramURL != "" {
		m["sameAs"] = []string{brand.InstagramURL}
	}
	if loc.Address.Full != "" {
		m["address"] = map[string]any{
			"@type":           "PostalAddress",
			"streetAddress":   strings.TrimSuffix(strings.TrimSpace(loc.Address.Line1), ","),
			"addressLocality": strings.TrimSpace(loc.Address.Line2),
			"addressCountry":  "VN",
		}
	}
	if loc.Hours != "" {
		m["openingHours"] = loc.Hours
	}
	return m
}

// ItemList lists products in display order.
func ItemList(items []content.ProductItem, pageURL string) map[string]any {
	el := make([]map[string]any, 0, len(items))
	for i, it := range items {
		entry := map[string]any{
			"@type":    "ListItem",
			"position": i + 1,
			"item":     Product(it),
		}
		if pageURL != "" {
			entry["url"] = pageURL + "#gallery"
		}
		el = append(el, entry)
	}
	return map[string]any{
		"@context":        "https://schema.org",
		"@type":           "ItemList",
		"itemListElement": el,
	}
}

// Product returns a minimal product schema payload with its availability.
func Product(it content.ProductItem) map[string]any {
	m := map[string]any{
		"@type": "Product",
		"name":  it.Title,
	}
	if imgs := it.ImageList(); len(imgs) > 0 {
		m["image"] = imgs
	}
	if it.Category != "" {
		m["category"] = it.Category
	}
	if it.Size != "" {
		m["size"] = it.Size
	}
	m["offers"] = map[string]any{
		"@type":        "Offer",
		"availability": availability(it.Status),
	}
	return m
}

func availability(s content.Status) string {
	switch s {
	case content.StatusReserved:
		return "https://schema.org/LimitedAvailability"
	case content.StatusSoldOut:
		return "https://schema.org/SoldOut"
	default:
		return "https://schema.org/InStoreOnly"
	}
}

func titleCase(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
