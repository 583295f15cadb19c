// Package feedsync pulls the configured spreadsheet feeds and merges them into
// the content store.
package feedsync

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/daivuongnguyen/yen-may-vintage-website/internal/content"
)

// ErrSyncFailed marks a cycle in which nothing was merged because a required feed failed.
var ErrSyncFailed = errors.New("feedsync: sync failed")

// Fetcher retrieves the raw text of a feed.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Source is one configured feed.
type Source struct {
	Name     string
	URL      string
	Optional bool
}

// FeedStatus is the outcome of one feed within a cycle.
type FeedStatus string

const (
	FeedSkipped FeedStatus = "skipped"
	FeedFailed  FeedStatus = "failed"
	FeedEmpty   FeedStatus = "empty"
	FeedApplied FeedStatus = "applied"
)

// FeedResult describes one feed within a cycle.
type FeedResult struct {
	Name     string        `json:"name"`
	Status   FeedStatus    `json:"status"`
	Accepted int           `json:"accepted"`
	Rejected int           `json:"rejected"`
	Problems []string      `json:"problems,omitempty"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"durationNs"`
}

// Result describes one sync cycle.
type Result struct {
	RunID      string            `json:"runId"`
	StartedAt  time.Time         `json:"startedAt"`
	FinishedAt time.Time         `json:"finishedAt"`
	Feeds      []FeedResult      `json:"feeds"`
	Changed    []content.Subtree `json:"changed"`
	Error      string            `json:"error,omitempty"`
}

// Deps bundles the orchestrator's collaborators.
type Deps struct {
	Store       *content.Store
	Fetcher     Fetcher
	Sources     []Source
	Mergers     map[string]Merger
	Logger      *zap.Logger
	Clock       func() time.Time
	IDGenerator func() string
}

// Orchestrator runs sync cycles. Concurrent Sync calls share one in-flight cycle.
type Orchestrator struct {
	store   *content.Store
	fetcher Fetcher
	sources []Source
	mergers map[string]Merger
	logger  *zap.Logger
	clock   func() time.Time
	newID   func() string
	tracer  trace.Tracer

	group singleflight.Group

	mu   sync.RWMutex
	last *Result
}

// New validates deps and builds an Orchestrator. Mergers default to DefaultMergers.
func New(deps Deps) (*Orchestrator, error) {
	if deps.Store == nil {
		return nil, errors.New("feedsync: store is required")
	}
	if deps.Fetcher == nil {
		return nil, errors.New("feedsync: fetcher is required")
	}
	mergers := deps.Mergers
	if mergers == nil {
		mergers = DefaultMergers()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	newID := deps.IDGenerator
	if newID == nil {
		newID = func() string { return ulid.Make().String() }
	}
	return &Orchestrator{
		store:   deps.Store,
		fetcher: deps.Fetcher,
		sources: slices.Clone(deps.Sources),
		mergers: mergers,
		logger:  logger,
		clock: func() time.Time {
			return clock().UTC()
		},
		newID:  newID,
		tracer: otel.Tracer("github.com/daivuongnguyen/yen-may-vintage-website/internal/feedsync"),
	}, nil
}

// Sources returns the configured feeds.
func (o *Orchestrator) Sources() []Source {
	return slices.Clone(o.sources)
}

// Last returns the most recent completed cycle.
func (o *Orchestrator) Last() (Result, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.last == nil {
		return Result{}, false
	}
	return *o.last, true
}

// Sync runs one cycle, or joins the cycle already in flight. The returned
// error wraps ErrSyncFailed when nothing could be merged.
func (o *Orchestrator) Sync(ctx context.Context) (Result, error) {
	v, err, shared := o.group.Do("sync", func() (any, error) {
		return o.run(ctx)
	})
	if shared {
		o.logger.Debug("joined in-flight sync")
	}
	res, _ := v.(Result)
	return res, err
}

// Run syncs once immediately and then every interval until ctx is done.
// A non-positive interval syncs once.
func (o *Orchestrator) Run(ctx context.Context, interval time.Duration) {
	_, _ = o.Sync(ctx)
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = o.Sync(ctx)
		}
	}
}

type fetched struct {
	text string
	err  error
}

func (o *Orchestrator) run(ctx context.Context) (res Result, err error) {
	res = Result{RunID: o.newID(), StartedAt: o.clock()}
	logger := o.logger.With(zap.String("run_id", res.RunID))

	ctx, span := o.tracer.Start(ctx, "feedsync.Sync", trace.WithAttributes(attribute.String("sync.run_id", res.RunID)))
	defer func() {
		res.FinishedAt = o.clock()
		if err != nil {
			res.Error = err.Error()
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		o.remember(res)
	}()

	res.Feeds = make([]FeedResult, len(o.sources))
	bodies := make([]fetched, len(o.sources))
	durations := make([]time.Duration, len(o.sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range o.sources {
		res.Feeds[i] = FeedResult{Name: src.Name}
		if strings.TrimSpace(src.URL) == "" {
			res.Feeds[i].Status = FeedSkipped
			continue
		}
		if _, ok := o.mergers[src.Name]; !ok {
			logger.Warn("no merger registered for feed", zap.String("feed", src.Name))
			res.Feeds[i].Status = FeedSkipped
			continue
		}
		g.Go(func() error {
			started := time.Now()
			text, err := o.fetcher.Fetch(gctx, src.URL)
			durations[i] = time.Since(started)
			bodies[i] = fetched{text: text, err: err}
			if err != nil && !src.Optional {
				return fmt.Errorf("feed %s: %w", src.Name, err)
			}
			return nil
		})
	}
	waitErr := g.Wait()

	for i, src := range o.sources {
		fr := &res.Feeds[i]
		fr.Duration = durations[i]
		if fr.Status == FeedSkipped {
			continue
		}
		if bodies[i].err != nil {
			fr.Status = FeedFailed
			fr.Error = bodies[i].err.Error()
			logger.Warn("feed fetch failed",
				zap.String("feed", src.Name),
				zap.Bool("optional", src.Optional),
				zap.Error(bodies[i].err),
			)
		}
	}

	if waitErr != nil {
		logger.Error("sync failed, keeping current content", zap.Error(waitErr))
		return res, fmt.Errorf("%w: %w", ErrSyncFailed, waitErr)
	}

	changed, err := o.store.Update(func(tx *content.Tx) error {
		for i, src := range o.sources {
			fr := &res.Feeds[i]
			if fr.Status == FeedSkipped || fr.Status == FeedFailed {
				continue
			}
			rep, err := o.mergers[src.Name](tx, bodies[i].text)
			fr.Accepted, fr.Rejected, fr.Problems = rep.Accepted, rep.Rejected, rep.Problems
			if err != nil {
				return fmt.Errorf("merge %s: %w", src.Name, err)
			}
			fr.Status = FeedApplied
			if rep.Accepted == 0 {
				fr.Status = FeedEmpty
			}
			if rep.Rejected > 0 {
				logger.Warn("feed rows rejected",
					zap.String("feed", src.Name),
					zap.Int("rejected", rep.Rejected),
					zap.Strings("problems", rep.Problems),
				)
			}
		}
		return nil
	})
	if err != nil {
		logger.Error("sync merge failed, keeping current content", zap.Error(err))
		return res, fmt.Errorf("%w: %w", ErrSyncFailed, err)
	}
	res.Changed = changed

	fields := []zap.Field{zap.Int("feeds", len(o.sources))}
	for _, fr := range res.Feeds {
		fields = append(fields, zap.String("feed_"+fr.Name, string(fr.Status)))
	}
	if len(changed) > 0 {
		names := make([]string, len(changed))
		for i, s := range changed {
			names[i] = string(s)
		}
		fields = append(fields, zap.Strings("changed", names))
		logger.Info("sync merged", fields...)
	} else {
		logger.Debug("sync unchanged", fields...)
	}
	return res, nil
}

func (o *Orchestrator) remember(res Result) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.last = &res
}
