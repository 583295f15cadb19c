package render

import (
	"fmt"
	"html/template"
	"net/url"
	"strconv"
	"time"

	"github.com/daivuongnguyen/yen-may-vintage-website/internal/catalog"
	"github.com/daivuongnguyen/yen-may-vintage-website/internal/content"
	"github.com/daivuongnguyen/yen-may-vintage-website/internal/format"
	"github.com/daivuongnguyen/yen-may-vintage-website/internal/nav"
	"github.com/daivuongnguyen/yen-may-vintage-website/internal/paging"
	"github.com/daivuongnguyen/yen-may-vintage-website/internal/seo"
)

// State is the request-driven part of a page: filters and the open product.
type State struct {
	Category string
	Visible  int
	Product  string
	Image    string
}

// view is the data handed to section templates.
type view struct {
	content.Tree
	Nav           []nav.RenderedItem
	GalleryGrid   galleryView
	CommunityGrid communityView
	Countdown     countdownView
	Lang          string
}

type galleryView struct {
	Tabs     []categoryTab
	Selected string
	Cards    []productCard
	Empty    bool
}

type categoryTab struct {
	Name        string
	Active      bool
	URL         string
	FragmentURL string
}

type productCard struct {
	content.ProductItem
	Rotation  string
	TapeClass string
	PageURL   string
	DetailURL string
}

type communityView struct {
	Photos          []content.CommunityPhoto
	Visible         int
	Total           int
	HasMore         bool
	MoreURL         string
	MoreFragmentURL string
	Handle          string
}

type countdownView struct {
	Show           bool
	Expired        bool
	Title          string
	Target         string
	ExpiredMessage string
}

type detailView struct {
	Item      content.ProductItem
	Index     int
	Count     int
	Current   string
	Thumbs    []thumb
	PrevURL   string
	NextURL   string
	CloseURL  string
	ReserveAt string
}

type thumb struct {
	Src    string
	URL    string
	Active bool
}

type sectionHTML struct {
	ID   string
	HTML template.HTML
}

type pageView struct {
	Meta     seo.Meta
	JSONLD   []template.JS
	Sections []sectionHTML
	Detail   template.HTML
	ChatURL  string
	Lang     string
}

var rotations = []string{"rotate-1", "-rotate-1", "rotate-2", "-rotate-2", "rotate-1", "-rotate-1"}

func buildView(tree content.Tree, st State, pageSize int, now time.Time) *view {
	v := &view{Tree: tree, Nav: nav.Build(tree.Navigation), Lang: "en"}
	v.GalleryGrid = buildGallery(tree.Gallery.Items, st.Category)
	v.CommunityGrid = buildCommunity(tree, st.Visible, pageSize)
	v.Countdown = buildCountdown(tree.Hero.Countdown, now)
	return v
}

func buildGallery(items []content.ProductItem, category string) galleryView {
	selected := catalog.Selected(items, category)
	g := galleryView{Selected: selected}
	for _, c := range catalog.Categories(items) {
		g.Tabs = append(g.Tabs, categoryTab{
			Name:        c,
			Active:      c == selected,
			URL:         pageURL(url.Values{"category": categoryParam(c)}) + "#gallery",
			FragmentURL: "/fragments/gallery?" + url.Values{"category": categoryParam(c)}.Encode(),
		})
	}
	for i, it := range catalog.Filter(items, selected) {
		rot := rotations[i%len(rotations)]
		tape := "tape-tilt-right"
		if rot[0] == '-' {
			tape = "tape-tilt-left"
		}
		g.Cards = append(g.Cards, productCard{
			ProductItem: it,
			Rotation:    rot,
			TapeClass:   tape,
			PageURL:     pageURL(url.Values{"category": categoryParam(selected), "product": {it.Title}}) + "#product-detail",
			DetailURL:   "/fragments/product?" + url.Values{"title": {it.Title}}.Encode(),
		})
	}
	g.Empty = len(g.Cards) == 0
	return g
}

func categoryParam(c string) []string {
	if c == catalog.All {
		return nil
	}
	return []string{c}
}

func pageURL(q url.Values) string {
	if enc := q.Encode(); enc != "" {
		return "/?" + enc
	}
	return "/"
}

func buildCommunity(tree content.Tree, visible, pageSize int) communityView {
	photos := tree.Community.Photos
	total := len(photos)
	shown := paging.Visible(visible, pageSize, total)
	c := communityView{
		Photos:  photos[:shown],
		Visible: shown,
		Total:   total,
		HasMore: paging.HasMore(shown, total),
		Handle:  tree.Brand.InstagramHandle,
	}
	if c.HasMore {
		next := strconv.Itoa(paging.Next(shown, pageSize, total))
		c.MoreURL = pageURL(url.Values{"visible": {next}}) + "#community"
		c.MoreFragmentURL = "/fragments/community?visible=" + next
	}
	return c
}

func buildCountdown(cd content.Countdown, now time.Time) countdownView {
	if !cd.Enabled {
		return countdownView{}
	}
	at := format.CountdownAt(cd.TargetDate, now)
	if !at.Valid {
		return countdownView{}
	}
	return countdownView{
		Show:           true,
		Expired:        at.Expired,
		Title:          cd.Title,
		Target:         at.Target.Format(time.RFC3339),
		ExpiredMessage: cd.ExpiredMessage,
	}
}

// heroExpiry is the moment a cached hero stops being valid.
func heroExpiry(cd content.Countdown, now time.Time) time.Time {
	if !cd.Enabled {
		return time.Time{}
	}
	at := format.CountdownAt(cd.TargetDate, now)
	if !at.Valid || at.Expired {
		return time.Time{}
	}
	return at.Target
}

func buildDetail(c *catalog.Carousel, instagramURL string) detailView {
	item := c.Item()
	images := c.Images()
	cur := c.Index()
	link := func(action string, extra url.Values) string {
		q := url.Values{"title": {item.Title}, "image": {images[cur]}}
		if action != "" {
			q.Set("action", action)
		}
		for k, v := range extra {
			q[k] = v
		}
		return "/fragments/product?" + q.Encode()
	}
	d := detailView{
		Item:      item,
		Index:     cur,
		Count:     len(images),
		Current:   images[cur],
		PrevURL:   link("prev", nil),
		NextURL:   link("next", nil),
		CloseURL:  "/fragments/product?action=close",
		ReserveAt: instagramURL,
	}
	for i, src := range images {
		d.Thumbs = append(d.Thumbs, thumb{
			Src:    src,
			URL:    link("", url.Values{"index": {strconv.Itoa(i)}}),
			Active: i == cur,
		})
	}
	return d
}

func counterLabel(index, count int) string {
	return fmt.Sprintf("%d / %d", index+1, count)
}
