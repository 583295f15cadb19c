package feedsync

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/daivuongnguyen/yen-may-vintage-website/internal/content"
)

const (
	productsURL  = "https://sheets.test/products?output=tsv"
	communityURL = "https://sheets.test/community?output=tsv"

	productsTSV = "title\tstatus\tsize\tcategory\timages\n" +
		"Biker Jacket\tReserved\tSize L\tLeather\tj1.jpg, j2.jpg\n" +
		"Silk Midi\tAvailable\tSize M\tDresses\tm1.jpg\n"
	communityTSV = "image\talt\tusername\n" +
		"c1.jpg\tHappy shopper\t@thao\n"
)

type stubFetcher struct {
	mu      sync.Mutex
	bodies  map[string]string
	errs    map[string]error
	calls   atomic.Int32
	gate    chan struct{}
	started chan struct{}
}

func (f *stubFetcher) Fetch(ctx context.Context, url string) (string, error) {
	f.calls.Add(1)
	if f.started != nil {
		select {
		case f.started <- struct{}{}:
		default:
		}
	}
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs[url]; err != nil {
		return "", err
	}
	return f.bodies[url], nil
}

func newTestOrchestrator(t *testing.T, fetcher Fetcher, sources []Source) (*Orchestrator, *content.Store, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	store := content.NewStore(content.Default())
	orch, err := New(Deps{
		Store:       store,
		Fetcher:     fetcher,
		Sources:     sources,
		Logger:      zap.New(core),
		IDGenerator: func() string { return "run-1" },
	})
	require.NoError(t, err)
	return orch, store, logs
}

func bothSources() []Source {
	return SourcesFrom(map[string]string{
		FeedProducts:  productsURL,
		FeedCommunity: communityURL,
	}, nil)
}

func TestSyncMergesAndIsIdempotent(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{bodies: map[string]string{productsURL: productsTSV, communityURL: communityTSV}}
	orch, store, _ := newTestOrchestrator(t, fetcher, bothSources())

	res, err := orch.Sync(context.Background())
	require.NoError(t, err)
	require.Equal(t, "run-1", res.RunID)
	require.Equal(t, []content.Subtree{content.SubtreeGallery, content.SubtreeCommunity}, res.Changed)

	items := store.Products()
	require.Len(t, items, 2)
	require.Equal(t, "j1.jpg", items[0].Image)
	require.Equal(t, []string{"j1.jpg", "j2.jpg"}, items[0].Images)
	require.Len(t, store.CommunityPhotos(), 1)

	snapshot := store.Snapshot()
	galleryVersion := store.Version(content.SubtreeGallery)

	res, err = orch.Sync(context.Background())
	require.NoError(t, err)
	require.Empty(t, res.Changed)
	require.Equal(t, snapshot, store.Snapshot())
	require.Equal(t, galleryVersion, store.Version(content.SubtreeGallery))

	last, ok := orch.Last()
	require.True(t, ok)
	require.Equal(t, FeedApplied, last.Feeds[0].Status)
}

func TestSyncEmptyFeedKeepsDefaults(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{bodies: map[string]string{
		productsURL:  "title\tstatus\n",
		communityURL: "image\talt\n\t no image here\n",
	}}
	orch, store, _ := newTestOrchestrator(t, fetcher, bothSources())
	before := store.Snapshot()

	res, err := orch.Sync(context.Background())
	require.NoError(t, err)
	require.Empty(t, res.Changed)
	require.Equal(t, before, store.Snapshot())

	statuses := map[string]FeedStatus{}
	for _, fr := range res.Feeds {
		statuses[fr.Name] = fr.Status
	}
	require.Equal(t, FeedEmpty, statuses[FeedProducts])
	require.Equal(t, FeedEmpty, statuses[FeedCommunity])
	require.Equal(t, 1, res.Feeds[0].Rejected)
}

func TestSyncRequiredFailureMergesNothing(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{
		bodies: map[string]string{productsURL: productsTSV},
		errs:   map[string]error{communityURL: errors.New("connection reset")},
	}
	orch, store, logs := newTestOrchestrator(t, fetcher, bothSources())
	before := store.Snapshot()

	res, err := orch.Sync(context.Background())
	require.ErrorIs(t, err, ErrSyncFailed)
	require.NotEmpty(t, res.Error)
	require.Equal(t, before, store.Snapshot())
	require.Equal(t, 1, logs.FilterMessage("sync failed, keeping current content").Len())
}

func TestSyncOptionalFailureStillMerges(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{
		bodies: map[string]string{productsURL: productsTSV},
		errs:   map[string]error{communityURL: errors.New("status 500")},
	}
	sources := SourcesFrom(map[string]string{
		FeedProducts:  productsURL,
		FeedCommunity: communityURL,
	}, []string{FeedCommunity})
	orch, store, logs := newTestOrchestrator(t, fetcher, sources)

	res, err := orch.Sync(context.Background())
	require.NoError(t, err)
	require.Equal(t, []content.Subtree{content.SubtreeGallery}, res.Changed)
	require.Len(t, store.Products(), 2)
	require.Len(t, store.CommunityPhotos(), 12)

	entries := logs.FilterMessage("feed fetch failed").All()
	require.Len(t, entries, 1)
	require.Equal(t, FeedCommunity, entries[0].ContextMap()["feed"])
}

func TestSyncSkipsMissingURLAndUnknownFeeds(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{bodies: map[string]string{productsURL: productsTSV}}
	sources := []Source{
		{Name: FeedProducts, URL: productsURL},
		{Name: FeedCommunity},
		{Name: "lookbook", URL: "https://sheets.test/lookbook"},
	}
	orch, _, logs := newTestOrchestrator(t, fetcher, sources)

	res, err := orch.Sync(context.Background())
	require.NoError(t, err)
	require.Equal(t, FeedApplied, res.Feeds[0].Status)
	require.Equal(t, FeedSkipped, res.Feeds[1].Status)
	require.Equal(t, FeedSkipped, res.Feeds[2].Status)
	require.EqualValues(t, 1, fetcher.calls.Load())
	require.Equal(t, 1, logs.FilterMessage("no merger registered for feed").Len())
}

func TestSyncCoalescesConcurrentCalls(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{
		bodies:  map[string]string{productsURL: productsTSV},
		gate:    make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	orch, _, _ := newTestOrchestrator(t, fetcher, []Source{{Name: FeedProducts, URL: productsURL}})

	var wg sync.WaitGroup
	results := make([]Result, 3)
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], _ = orch.Sync(context.Background())
	}()
	<-fetcher.started
	for i := 1; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], _ = orch.Sync(context.Background())
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(fetcher.gate)
	wg.Wait()

	require.EqualValues(t, 1, fetcher.calls.Load())
	require.Equal(t, results[0].RunID, results[1].RunID)
	require.Equal(t, results[0].RunID, results[2].RunID)
}

func TestRunStopsWithContext(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{bodies: map[string]string{productsURL: productsTSV}}
	orch, store, _ := newTestOrchestrator(t, fetcher, []Source{{Name: FeedProducts, URL: productsURL}})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		orch.Run(ctx, time.Hour)
		close(done)
	}()

	require.Eventually(t, func() bool { return len(store.Products()) == 2 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestNewRequiresStoreAndFetcher(t *testing.T) {
	t.Parallel()

	_, err := New(Deps{Fetcher: &stubFetcher{}})
	require.Error(t, err)
	_, err = New(Deps{Store: content.NewStore(content.Default())})
	require.Error(t, err)
}

func TestSyncPatchesBrand(t *testing.T) {
	t.Parallel()

	const brandURL = "https://sheets.test/brand?output=csv"
	fetcher := &stubFetcher{bodies: map[string]string{brandURL: "key,value\ntagline,ARCHIVE\n"}}
	orch, store, _ := newTestOrchestrator(t, fetcher, SourcesFrom(map[string]string{FeedBrand: brandURL}, nil))

	res, err := orch.Sync(context.Background())
	require.NoError(t, err)
	require.Equal(t, []content.Subtree{content.SubtreeBrand}, res.Changed)
	require.Equal(t, "ARCHIVE", store.Snapshot().Brand.Tagline)
	require.Equal(t, "Yen May", store.Snapshot().Brand.Name)
}
