package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/go-chi/chi/v5"
	chiMid "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/daivuongnguyen/yen-may-vintage-website/internal/observability"
)

func TestHTMXMarksRequests(t *testing.T) {
	var seen []bool
	h := HTMX(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, IsHTMX(r.Context()))
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("HX-Request", "true")
	h.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("HX-Request", "true")
	req.Header.Set("HX-History-Restore-Request", "true")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if len(seen) != 3 || seen[0] || !seen[1] || seen[2] {
		t.Fatalf("unexpected htmx flags: %v", seen)
	}
}

func TestAssetsWithCacheETag(t *testing.T) {
	fsys := fstest.MapFS{
		"css/site.css": &fstest.MapFile{Data: []byte("body{color:#222}")},
	}
	h := AssetsWithCache(fsys, "/assets")

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/assets/css/site.css", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	etag := rr.Header().Get("ETag")
	if !strings.HasPrefix(etag, `W/"`) {
		t.Fatalf("expected weak etag, got %q", etag)
	}
	if !strings.Contains(rr.Body.String(), "color:#222") {
		t.Fatalf("unexpected body: %s", rr.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/assets/css/site.css", nil)
	req.Header.Set("If-None-Match", etag)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotModified {
		t.Fatalf("expected 304, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/assets/css/", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected directory listing to be refused, got %d", rr.Code)
	}
}

func TestLoggerWritesRequestEntry(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	r := chi.NewRouter()
	r.Use(chiMid.RequestID)
	r.Use(HTMX)
	r.Use(Logger(zap.New(core)))
	r.Get("/fragments/{name}", func(w http.ResponseWriter, r *http.Request) {
		observability.FromContext(r.Context()).Info("inside handler")
		w.WriteHeader(http.StatusTeapot)
	})

	req := httptest.NewRequest(http.MethodGet, "/fragments/gallery", nil)
	req.Header.Set("HX-Request", "true")
	r.ServeHTTP(httptest.NewRecorder(), req)

	if got := logs.FilterMessage("inside handler").Len(); got != 1 {
		t.Fatalf("expected handler log through context, got %d", got)
	}
	entries := logs.FilterMessage("request completed").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 request entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["route"] != "/fragments/{name}" {
		t.Errorf("unexpected route: %v", fields["route"])
	}
	if fields["status"] != int64(http.StatusTeapot) {
		t.Errorf("unexpected status: %v", fields["status"])
	}
	if fields["htmx"] != true {
		t.Errorf("expected htmx flag, got %v", fields["htmx"])
	}
	if fields["request_id"] == "" {
		t.Errorf("expected request id")
	}
	if entries[0].Level != zapcore.WarnLevel {
		t.Errorf("expected warn level for 4xx, got %s", entries[0].Level)
	}
}

func TestWriteErrorHTMXFragment(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithHTMX(req.Context(), true))
	rr := httptest.NewRecorder()
	WriteError(rr, req, http.StatusNotFound, "item <gone>")

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "item &lt;gone&gt;") {
		t.Fatalf("expected escaped fragment, got %s", rr.Body.String())
	}
}

func TestWriteErrorCarriesRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/fragments/product", nil)
	ctx := WithHTMX(req.Context(), true)
	req = req.WithContext(WithRequestID(ctx, "host/abc-000001"))
	rr := httptest.NewRecorder()
	WriteError(rr, req, http.StatusNotFound, "gone")

	if !strings.Contains(rr.Body.String(), `data-request-id="host/abc-000001"`) {
		t.Fatalf("expected request id on fragment, got %s", rr.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithHTMX(req.Context(), true))
	rr = httptest.NewRecorder()
	WriteError(rr, req, http.StatusNotFound, "gone")
	if strings.Contains(rr.Body.String(), "data-request-id") {
		t.Fatalf("unexpected request id attribute: %s", rr.Body.String())
	}
}
