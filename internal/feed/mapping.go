package feed

import (
	"fmt"
	"iter"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/daivuongnguyen/yen-may-vintage-website/internal/content"
)

// Header aliases accepted for each field, in priority order. Older sheets
// used the longer names.
var (
	titleKeys    = []string{"title", "name", "product", "productName"}
	statusKeys   = []string{"status", "availability"}
	sizeKeys     = []string{"size"}
	categoryKeys = []string{"category", "type", "collection"}
	badgeKeys    = []string{"badge", "tag", "label"}
	imageKeys    = []string{"image", "imageUrl", "image_url", "photo", "img"}
	imageAltKeys = []string{"imageAlt", "image_alt", "alt"}
	photoAltKeys = []string{"alt", "imageAlt", "caption"}
	usernameKeys = []string{"username", "user", "handle", "instagram"}
	dateKeys     = []string{"date", "postedAt"}
)

// Report counts what happened to the rows of one feed.
type Report struct {
	Accepted int
	Rejected int
	Problems []string
}

const maxProblems = 10

func (r *Report) reject(line int, reason string) {
	r.Rejected++
	if len(r.Problems) < maxProblems {
		r.Problems = append(r.Problems, fmt.Sprintf("row %d: %s", line, reason))
	}
}

// MapProducts converts rows into gallery items. Rows without a title or an
// image are rejected.
func MapProducts(rows iter.Seq[Row]) ([]content.ProductItem, Report) {
	var (
		out []content.ProductItem
		rep Report
		n   int
	)
	for row := range rows {
		n++
		item := content.ProductItem{
			Title:    value(row, titleKeys...),
			Status:   content.ParseStatus(value(row, statusKeys...)),
			Size:     value(row, sizeKeys...),
			Category: value(row, categoryKeys...),
			Badge:    value(row, badgeKeys...),
			Image:    value(row, imageKeys...),
			ImageAlt: value(row, imageAltKeys...),
		}
		for _, img := range row.Images {
			item.Images = append(item.Images, clean(img))
		}
		item.Normalize()
		switch {
		case item.Title == "":
			rep.reject(n, "missing title")
			continue
		case item.Image == "":
			rep.reject(n, "missing image")
			continue
		}
		if item.ImageAlt == "" {
			item.ImageAlt = item.Title
		}
		out = append(out, item)
		rep.Accepted++
	}
	return out, rep
}

// MapCommunity converts rows into community photos. Rows without an image are rejected.
func MapCommunity(rows iter.Seq[Row]) ([]content.CommunityPhoto, Report) {
	var (
		out []content.CommunityPhoto
		rep Report
		n   int
	)
	for row := range rows {
		n++
		photo := content.CommunityPhoto{
			Image:    value(row, imageKeys...),
			Alt:      value(row, photoAltKeys...),
			Username: handle(value(row, usernameKeys...)),
			Date:     value(row, dateKeys...),
		}
		if photo.Image == "" {
			rep.reject(n, "missing image")
			continue
		}
		out = append(out, photo)
		rep.Accepted++
	}
	return out, rep
}

func value(row Row, keys ...string) string {
	return clean(row.Get(keys...))
}

func clean(v string) string {
	return norm.NFC.String(strings.TrimSpace(v))
}

func handle(v string) string {
	if v == "" || strings.HasPrefix(v, "@") {
		return v
	}
	return "@" + v
}

var brandFields = map[string]func(*content.BrandPatch, string){
	"name":            func(p *content.BrandPatch, v string) { p.Name = v },
	"tagline":         func(p *content.BrandPatch, v string) { p.Tagline = v },
	"established":     func(p *content.BrandPatch, v string) { p.Established = v },
	"instagramhandle": func(p *content.BrandPatch, v string) { p.InstagramHandle = handle(v) },
	"instagramurl":    func(p *content.BrandPatch, v string) { p.InstagramURL = v },
	"slogan":          func(p *content.BrandPatch, v string) { p.Slogan = v },
	"copyright":       func(p *content.BrandPatch, v string) { p.Copyright = v },
}

// MapBrand reads key/value rows ("key", "value" columns) into a brand patch.
// Unknown keys are rejected; blank values are ignored.
func MapBrand(rows iter.Seq[Row]) (content.BrandPatch, Report) {
	var (
		p   content.BrandPatch
		rep Report
		n   int
	)
	for row := range rows {
		n++
		key := strings.ToLower(strings.NewReplacer("_", "", " ", "", "-", "").Replace(value(row, "key", "field", "setting")))
		set, ok := brandFields[key]
		if !ok {
			rep.reject(n, fmt.Sprintf("unknown brand field %q", key))
			continue
		}
		if v := value(row, "value"); v != "" {
			set(&p, v)
			rep.Accepted++
		}
	}
	return p, rep
}
