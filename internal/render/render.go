// Package render projects the content tree into HTML sections and fragments.
//
// Default-state sections are cached per subtree version; Refresh re-renders
// only the sections that read the changed subtrees.
package render

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/daivuongnguyen/yen-may-vintage-website/internal/catalog"
	"github.com/daivuongnguyen/yen-may-vintage-website/internal/content"
	"github.com/daivuongnguyen/yen-may-vintage-website/internal/paging"
	"github.com/daivuongnguyen/yen-may-vintage-website/internal/seo"
)

//go:embed templates
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// ErrProductNotFound is returned when a detail request names a title that is
// not in the canonical product list.
var ErrProductNotFound = errors.New("render: product not found")

// Assets exposes the embedded css and js.
func Assets() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// Deps wires the renderer.
type Deps struct {
	Store             *content.Store
	Logger            *zap.Logger
	Clock             func() time.Time
	CommunityPageSize int
	BaseURL           string
	// Templates overrides the embedded templates. Optional.
	Templates fs.FS
	// Dev reparses templates on every render and bypasses the section cache.
	Dev bool
}

// DetailRequest carries the raw query of a product detail request.
type DetailRequest struct {
	Title  string
	Image  string
	Action string
	Index  string
}

type entry struct {
	html     template.HTML
	versions []uint64
	expires  time.Time
}

// Renderer renders pages and fragments from a content store.
type Renderer struct {
	store    *content.Store
	logger   *zap.Logger
	clock    func() time.Time
	pageSize int
	baseURL  string
	fsys     fs.FS
	dev      bool
	tmpl     *template.Template

	mu    sync.RWMutex
	cache map[Section]entry
}

// New parses the templates. It does not render; call Refresh to warm the cache.
func New(deps Deps) (*Renderer, error) {
	if deps.Store == nil {
		return nil, errors.New("render: store is required")
	}
	r := &Renderer{
		store:    deps.Store,
		logger:   deps.Logger,
		clock:    deps.Clock,
		pageSize: deps.CommunityPageSize,
		baseURL:  strings.TrimRight(deps.BaseURL, "/"),
		fsys:     deps.Templates,
		dev:      deps.Dev,
		cache:    make(map[Section]entry),
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	if r.clock == nil {
		r.clock = time.Now
	}
	if r.pageSize <= 0 {
		r.pageSize = 9
	}
	if r.fsys == nil {
		sub, err := fs.Sub(templateFS, "templates")
		if err != nil {
			return nil, err
		}
		r.fsys = sub
	}
	t, err := parseTemplates(r.fsys)
	if err != nil {
		return nil, err
	}
	r.tmpl = t
	return r, nil
}

func parseTemplates(fsys fs.FS) (*template.Template, error) {
	var files []string
	if err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".tmpl") {
			files = append(files, path)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.New("render: no templates found")
	}
	t, err := template.New("_root").Funcs(funcMap).ParseFS(fsys, files...)
	if err != nil {
		return nil, fmt.Errorf("render: parse templates: %w", err)
	}
	return t, nil
}

func (r *Renderer) templates() (*template.Template, error) {
	if r.dev {
		return parseTemplates(r.fsys)
	}
	return r.tmpl, nil
}

// Refresh re-renders the default-state output of every section that reads
// one of subtrees, or of every section when none are given. A section that
// fails keeps its previous output; the failures are joined into the result.
func (r *Renderer) Refresh(subtrees ...content.Subtree) error {
	t, err := r.templates()
	if err != nil {
		return err
	}
	tree, versions := r.store.View()
	now := r.clock()
	v := buildView(tree, State{}, r.pageSize, now)

	var errs []error
	for _, s := range affected(subtrees) {
		e, err := r.renderSection(t, s, v, versions, now)
		if err != nil {
			r.logger.Error("section render failed, keeping previous output",
				zap.String("section", string(s)), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		r.put(s, e)
	}
	return errors.Join(errs...)
}

// Watch re-renders affected sections after every store write. The returned
// func stops watching.
func (r *Renderer) Watch() (cancel func()) {
	return r.store.Subscribe(func(c content.Change) {
		if err := r.Refresh(c.Subtrees...); err != nil {
			r.logger.Warn("refresh after content change failed", zap.Error(err))
			return
		}
		r.logger.Debug("sections refreshed", zap.Int("subtrees", len(c.Subtrees)))
	})
}

// Section returns the cached default-state output of s.
func (r *Renderer) Section(s Section) (template.HTML, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.cache[s]
	return e.html, ok
}

func (r *Renderer) renderSection(t *template.Template, s Section, v *view, versions map[content.Subtree]uint64, now time.Time) (entry, error) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, s.template(), v); err != nil {
		return entry{}, fmt.Errorf("render %s: %w", s, err)
	}
	e := entry{html: template.HTML(buf.String()), versions: versionsOf(s, versions)}
	if s == SectionHero {
		e.expires = heroExpiry(v.Hero.Countdown, now)
	}
	return e, nil
}

func versionsOf(s Section, versions map[content.Subtree]uint64) []uint64 {
	deps := sectionDeps[s]
	out := make([]uint64, len(deps))
	for i, d := range deps {
		out[i] = versions[d]
	}
	return out
}

// put stores e unless the cache already holds output for newer content.
func (r *Renderer) put(s Section, e entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.cache[s]; ok {
		for i := range old.versions {
			if old.versions[i] > e.versions[i] {
				return
			}
		}
	}
	r.cache[s] = e
}

// cached returns the default-state section for the given versions, rendering
// and storing it when the cache is cold, stale or expired.
func (r *Renderer) cached(t *template.Template, s Section, v *view, versions map[content.Subtree]uint64, now time.Time) (template.HTML, error) {
	want := versionsOf(s, versions)
	r.mu.RLock()
	e, ok := r.cache[s]
	r.mu.RUnlock()
	fresh := ok && slices.Equal(e.versions, want) && (e.expires.IsZero() || now.Before(e.expires))
	if fresh && !r.dev {
		return e.html, nil
	}
	next, err := r.renderSection(t, s, v, versions, now)
	if err != nil {
		if ok {
			r.logger.Error("section render failed, serving previous output",
				zap.String("section", string(s)), zap.Error(err))
			return e.html, nil
		}
		return "", err
	}
	r.put(s, next)
	return next.html, nil
}

// Page writes the full document for st.
func (r *Renderer) Page(w io.Writer, st State) error {
	t, err := r.templates()
	if err != nil {
		return err
	}
	tree, versions := r.store.View()
	now := r.clock()
	v := buildView(tree, st, r.pageSize, now)

	liveGallery := v.GalleryGrid.Selected != catalog.All
	liveCommunity := v.CommunityGrid.Visible != paging.Visible(0, r.pageSize, v.CommunityGrid.Total)

	pv := pageView{
		Meta:    r.meta(tree),
		ChatURL: tree.Brand.InstagramURL,
		Lang:    v.Lang,
	}
	pageURL := ""
	if r.baseURL != "" {
		pageURL = r.baseURL + "/"
	}
	pv.JSONLD = []template.JS{
		template.JS(seo.JSON(seo.ClothingStore(tree.Brand, tree.Location, pageURL, tree.Hero.BackgroundImage))),
		template.JS(seo.JSON(seo.ItemList(tree.Gallery.Items, pageURL))),
	}

	for _, s := range Sections() {
		var html template.HTML
		if (s == SectionGallery && liveGallery) || (s == SectionCommunity && liveCommunity) {
			e, err := r.renderSection(t, s, v, versions, now)
			if err != nil {
				return err
			}
			html = e.html
		} else if html, err = r.cached(t, s, v, versions, now); err != nil {
			return err
		}
		pv.Sections = append(pv.Sections, sectionHTML{ID: s.ID(), HTML: html})
	}

	if strings.TrimSpace(st.Product) != "" {
		c, err := openCarousel(tree.Gallery.Items, DetailRequest{Title: st.Product, Image: st.Image})
		switch {
		case err == nil:
			var buf bytes.Buffer
			if err := t.ExecuteTemplate(&buf, "product_detail", buildDetail(c, tree.Brand.InstagramURL)); err != nil {
				return fmt.Errorf("render detail: %w", err)
			}
			pv.Detail = template.HTML(buf.String())
		case errors.Is(err, ErrProductNotFound), errors.Is(err, catalog.ErrNoImages):
			r.logger.Debug("detail not shown", zap.String("title", st.Product), zap.Error(err))
		default:
			return err
		}
	}
	return execute(t, w, "page", pv)
}

func (r *Renderer) meta(tree content.Tree) seo.Meta {
	m := seo.Meta{
		Title:       strings.TrimSpace(tree.Brand.Name + " " + tree.Brand.Tagline),
		Description: tree.Hero.Description,
		Image:       tree.Hero.BackgroundImage,
		SiteName:    tree.Brand.Name,
		Locale:      "en_US",
	}
	if tree.Location.StoreName != "" {
		m.Title += " | " + tree.Location.StoreName
	}
	if r.baseURL != "" {
		m.Canonical = r.baseURL + "/"
	}
	return m
}

// Gallery writes the category tabs and product grid for category.
func (r *Renderer) Gallery(w io.Writer, category string) error {
	t, err := r.templates()
	if err != nil {
		return err
	}
	tree := r.store.Snapshot()
	v := buildView(tree, State{Category: category}, r.pageSize, r.clock())
	return execute(t, w, "gallery_grid", v)
}

// SelectedCategory resolves category against the current product list.
func (r *Renderer) SelectedCategory(category string) string {
	return catalog.Selected(r.store.Products(), category)
}

// Community writes the community grid showing visible photos.
func (r *Renderer) Community(w io.Writer, visible int) error {
	t, err := r.templates()
	if err != nil {
		return err
	}
	tree := r.store.Snapshot()
	v := buildView(tree, State{Visible: visible}, r.pageSize, r.clock())
	return execute(t, w, "community_grid", v)
}

// ProductDetail writes the detail carousel for req. The carousel is rebuilt
// from the canonical item on every call.
func (r *Renderer) ProductDetail(w io.Writer, req DetailRequest) error {
	t, err := r.templates()
	if err != nil {
		return err
	}
	if req.Action == "close" {
		return execute(t, w, "product_detail_closed", nil)
	}
	tree := r.store.Snapshot()
	c, err := openCarousel(tree.Gallery.Items, req)
	if err != nil {
		return err
	}
	return execute(t, w, "product_detail", buildDetail(c, tree.Brand.InstagramURL))
}

func openCarousel(items []content.ProductItem, req DetailRequest) (*catalog.Carousel, error) {
	item, ok := catalog.Lookup(items, req.Title)
	if !ok {
		return nil, ErrProductNotFound
	}
	c := &catalog.Carousel{}
	if err := c.Open(item); err != nil {
		return nil, err
	}
	if req.Image != "" {
		if i := c.IndexOfImage(req.Image); i >= 0 {
			_ = c.Jump(i)
		}
	}
	if req.Index != "" {
		i, err := strconv.Atoi(strings.TrimSpace(req.Index))
		if err != nil || c.Jump(i) != nil {
			_ = c.Jump(0)
		}
	}
	switch req.Action {
	case "next":
		_ = c.Next()
	case "prev":
		_ = c.Prev()
	}
	return c, nil
}

// execute renders into a buffer first so a failing template never writes a
// partial response.
func execute(t *template.Template, w io.Writer, name string, data any) error {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}
