package feedsync

import (
	"sort"

	"github.com/daivuongnguyen/yen-may-vintage-website/internal/content"
	"github.com/daivuongnguyen/yen-may-vintage-website/internal/feed"
)

// Known feed names.
const (
	FeedProducts  = "products"
	FeedCommunity = "community"
	FeedBrand     = "brand"
)

// Merger maps one feed's text onto a staged store write. An empty mapped list
// must leave the tree untouched.
type Merger func(tx *content.Tx, text string) (feed.Report, error)

// DefaultMergers returns the mergers for the products, community and brand feeds.
func DefaultMergers() map[string]Merger {
	return map[string]Merger{
		FeedProducts:  MergeProducts,
		FeedCommunity: MergeCommunity,
		FeedBrand:     MergeBrand,
	}
}

// MergeProducts replaces the gallery items with the feed's valid rows.
func MergeProducts(tx *content.Tx, text string) (feed.Report, error) {
	items, rep := feed.MapProducts(feed.Rows(text))
	if len(items) == 0 {
		return rep, nil
	}
	return rep, tx.ReplaceProducts(items)
}

// MergeCommunity replaces the community photos with the feed's valid rows.
func MergeCommunity(tx *content.Tx, text string) (feed.Report, error) {
	photos, rep := feed.MapCommunity(feed.Rows(text))
	if len(photos) == 0 {
		return rep, nil
	}
	return rep, tx.ReplaceCommunityPhotos(photos)
}

// MergeBrand overwrites the brand fields the settings sheet sets.
func MergeBrand(tx *content.Tx, text string) (feed.Report, error) {
	p, rep := feed.MapBrand(feed.Rows(text))
	tx.PatchBrand(p)
	return rep, nil
}

// SourcesFrom builds sources from a name → URL map, sorted by name. Names in
// optional fail on their own without failing the cycle.
func SourcesFrom(urls map[string]string, optional []string) []Source {
	opt := make(map[string]bool, len(optional))
	for _, name := range optional {
		opt[name] = true
	}
	out := make([]Source, 0, len(urls))
	for name, url := range urls {
		out = append(out, Source{Name: name, URL: url, Optional: opt[name]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
