package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultTimeout  = 10 * time.Second
	defaultMaxBytes = 5 << 20
	cacheBustParam  = "t"
)

// ErrBodyTooLarge is returned when a feed exceeds the size cap.
var ErrBodyTooLarge = errors.New("feed: response body too large")

// StatusError reports a non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("feed: remote status %d", e.StatusCode)
}

// Fetcher downloads feed text. It makes a single attempt per call.
type Fetcher struct {
	client   *http.Client
	now      func() time.Time
	maxBytes int64
	tracer   trace.Tracer
}

// Option customises a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient replaces the default client. Its timeout is kept as is.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// WithClock overrides the time source used for cache busting.
func WithClock(now func() time.Time) Option {
	return func(f *Fetcher) {
		if now != nil {
			f.now = now
		}
	}
}

// WithMaxBytes caps the accepted body size.
func WithMaxBytes(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBytes = n
		}
	}
}

// NewFetcher returns a Fetcher whose client gives up after timeout.
func NewFetcher(timeout time.Duration, opts ...Option) *Fetcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	f := &Fetcher{
		client:   &http.Client{Timeout: timeout},
		now:      time.Now,
		maxBytes: defaultMaxBytes,
		tracer:   otel.Tracer("github.com/daivuongnguyen/yen-may-vintage-website/internal/feed"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch GETs baseURL with a cache-busting parameter and returns the body.
func (f *Fetcher) Fetch(ctx context.Context, baseURL string) (text string, err error) {
	ctx, span := f.tracer.Start(ctx, "feed.Fetch", trace.WithSpanKind(trace.SpanKindClient))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	target := CacheBust(baseURL, f.now())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("feed: build request: %w", err)
	}
	req.Header.Set("Accept", "text/tab-separated-values, text/csv, text/plain;q=0.9, */*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("feed: fetch: %w", err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return "", &StatusError{URL: baseURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("feed: read body: %w", err)
	}
	if int64(len(body)) > f.maxBytes {
		return "", ErrBodyTooLarge
	}
	span.SetAttributes(attribute.Int("feed.bytes", len(body)))
	return string(body), nil
}

// CacheBust appends t=<unix millis> to rawURL, using & when a query string
// is already present. A fragment stays at the end.
func CacheBust(rawURL string, t time.Time) string {
	base, fragment := rawURL, ""
	if i := strings.IndexByte(rawURL, '#'); i >= 0 {
		base, fragment = rawURL[:i], rawURL[i:]
	}
	sep := "?"
	switch {
	case strings.HasSuffix(base, "?") || strings.HasSuffix(base, "&"):
		sep = ""
	case strings.Contains(base, "?"):
		sep = "&"
	}
	return base + sep + cacheBustParam + "=" + strconv.FormatInt(t.UnixMilli(), 10) + fragment
}
