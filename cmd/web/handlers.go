package main

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/daivuongnguyen/yen-may-vintage-website/internal/catalog"
	"github.com/daivuongnguyen/yen-may-vintage-website/internal/feedsync"
	mw "github.com/daivuongnguyen/yen-may-vintage-website/internal/middleware"
	"github.com/daivuongnguyen/yen-may-vintage-website/internal/observability"
	"github.com/daivuongnguyen/yen-may-vintage-website/internal/render"
)

const syncTokenHeader = "X-Sync-Token"

func (a *app) home(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	st := render.State{
		Category: q.Get("category"),
		Visible:  atoi(q.Get("visible")),
		Product:  q.Get("product"),
		Image:    q.Get("image"),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := a.renderer.Page(w, st); err != nil {
		observability.FromContext(r.Context()).Error("page render failed", zap.Error(err))
		mw.WriteError(w, r, http.StatusInternalServerError, "page unavailable")
	}
}

func (a *app) galleryFragment(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if mw.IsHTMX(r.Context()) {
		push := "/"
		if selected := a.renderer.SelectedCategory(category); selected != catalog.All {
			push = "/?" + url.Values{"category": {selected}}.Encode()
		}
		w.Header().Set("HX-Push-Url", push)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := a.renderer.Gallery(w, category); err != nil {
		observability.FromContext(r.Context()).Error("gallery render failed", zap.Error(err))
		mw.WriteError(w, r, http.StatusInternalServerError, "gallery unavailable")
	}
}

func (a *app) communityFragment(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := a.renderer.Community(w, atoi(r.URL.Query().Get("visible"))); err != nil {
		observability.FromContext(r.Context()).Error("community render failed", zap.Error(err))
		mw.WriteError(w, r, http.StatusInternalServerError, "photos unavailable")
	}
}

func (a *app) productFragment(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := render.DetailRequest{
		Title:  q.Get("title"),
		Image:  q.Get("image"),
		Action: q.Get("action"),
		Index:  q.Get("index"),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := a.renderer.ProductDetail(w, req)
	switch {
	case err == nil:
	case errors.Is(err, render.ErrProductNotFound), errors.Is(err, catalog.ErrNoImages):
		mw.WriteError(w, r, http.StatusNotFound, "This piece is no longer listed.")
	default:
		observability.FromContext(r.Context()).Error("product render failed", zap.Error(err))
		mw.WriteError(w, r, http.StatusInternalServerError, "product unavailable")
	}
}

func (a *app) contentExport(w http.ResponseWriter, r *http.Request) {
	tree := a.store.Snapshot()
	tree.Feeds = nil
	w.Header().Set("Cache-Control", "no-cache")
	writeJSON(w, http.StatusOK, tree)
}

// manualSync triggers a sync cycle. The endpoint does not exist unless a
// token is configured.
func (a *app) manualSync(w http.ResponseWriter, r *http.Request) {
	token := a.cfg.Sync.Token
	if token == "" {
		http.NotFound(w, r)
		return
	}
	got := strings.TrimSpace(r.Header.Get(syncTokenHeader))
	if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid sync token"})
		return
	}

	// The cycle is shared with other callers, so it must outlive this request.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), 2*a.cfg.Sync.Timeout)
	defer cancel()
	res, err := a.sync.Sync(ctx)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, res)
	case errors.Is(err, feedsync.ErrSyncFailed):
		writeJSON(w, http.StatusBadGateway, res)
	default:
		observability.FromContext(r.Context()).Error("manual sync failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, res)
	}
}

type healthResponse struct {
	Status   string           `json:"status"`
	Time     time.Time        `json:"time"`
	LastSync *feedsync.Result `json:"lastSync,omitempty"`
}

func (a *app) healthz(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Time: time.Now().UTC()}
	if last, ok := a.sync.Last(); ok {
		resp.LastSync = &last
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
