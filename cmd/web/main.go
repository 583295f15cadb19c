package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/daivuongnguyen/yen-may-vintage-website/internal/config"
	"github.com/daivuongnguyen/yen-may-vintage-website/internal/content"
	"github.com/daivuongnguyen/yen-may-vintage-website/internal/feed"
	"github.com/daivuongnguyen/yen-may-vintage-website/internal/feedsync"
	mw "github.com/daivuongnguyen/yen-may-vintage-website/internal/middleware"
	"github.com/daivuongnguyen/yen-may-vintage-website/internal/observability"
	"github.com/daivuongnguyen/yen-may-vintage-website/internal/render"
)

// app holds the wired services shared by the handlers.
type app struct {
	cfg      config.Config
	logger   *zap.Logger
	store    *content.Store
	renderer *render.Renderer
	sync     *feedsync.Orchestrator
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	baseLogger, err := observability.NewLogger(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()
	logger := baseLogger.Named("web")

	a, err := newApp(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialise storefront", zap.Error(err))
	}

	stopWatch := a.renderer.Watch()
	defer stopWatch()

	syncCtx, cancelSync := context.WithCancel(ctx)
	syncDone := make(chan struct{})
	go func() {
		defer close(syncDone)
		a.sync.Run(syncCtx, cfg.Sync.Interval)
	}()

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           newRouter(a),
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("web listening", zap.String("addr", srv.Addr), zap.Bool("dev", cfg.Server.Dev))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			logger.Error("server error", zap.Error(err))
		}
	}

	cancelSync()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	<-syncDone
	logger.Info("server stopped")
}

// newApp loads content, paints every section once and wires the sync
// orchestrator. A failing first render is fatal; nothing has been served yet.
func newApp(cfg config.Config, logger *zap.Logger) (*app, error) {
	tree, err := content.LoadFile(cfg.Content.File, content.Default())
	if err != nil {
		return nil, err
	}
	store := content.NewStore(tree)

	renderer, err := render.New(render.Deps{
		Store:             store,
		Logger:            logger.Named("render"),
		CommunityPageSize: cfg.Render.CommunityPageSize,
		BaseURL:           cfg.Render.BaseURL,
		Dev:               cfg.Server.Dev,
	})
	if err != nil {
		return nil, err
	}
	if err := renderer.Refresh(); err != nil {
		return nil, fmt.Errorf("initial render: %w", err)
	}

	sources := feedsync.SourcesFrom(cfg.Sync.FeedURLs(store.Feeds()), cfg.Sync.Optional)
	orch, err := feedsync.New(feedsync.Deps{
		Store:   store,
		Fetcher: feed.NewFetcher(cfg.Sync.Timeout),
		Sources: sources,
		Logger:  logger.Named("sync"),
	})
	if err != nil {
		return nil, err
	}
	for _, s := range sources {
		logger.Debug("feed configured", zap.String("feed", s.Name), zap.Bool("enabled", s.URL != ""), zap.Bool("optional", s.Optional))
	}

	return &app{cfg: cfg, logger: logger, store: store, renderer: renderer, sync: orch}, nil
}

func newRouter(a *app) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.Trace)
	r.Use(mw.Logger(a.logger.Named("http")))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(mw.HTMX)

	r.Get("/healthz", a.healthz)
	r.Handle("/assets/*", mw.AssetsWithCache(render.Assets(), "/assets"))
	if dir := filepath.Join(a.cfg.Server.PublicDir, "images"); isDir(dir) {
		r.Handle("/images/*", mw.AssetsWithCache(os.DirFS(dir), "/images"))
	}

	r.Get("/", a.home)
	r.Route("/fragments", func(r chi.Router) {
		r.Get("/gallery", a.galleryFragment)
		r.Get("/community", a.communityFragment)
		r.Get("/product", a.productFragment)
	})

	r.Route("/api", func(r chi.Router) {
		origins := a.cfg.Server.AllowedOrigins
		if len(origins) == 0 {
			origins = []string{"*"}
		}
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{"GET", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
		r.Get("/content", a.contentExport)
	})

	r.Post("/internal/sync", a.manualSync)
	return r
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
