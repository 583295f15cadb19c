// Command media scans the site's image folder and writes the media manifest
// used when filling in the product and community sheets.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/daivuongnguyen/yen-may-vintage-website/internal/media"
	"github.com/daivuongnguyen/yen-may-vintage-website/internal/observability"
)

func main() {
	root := flag.String("root", ".", "project directory the image paths are relative to")
	dir := flag.String("dir", "images", "image folder inside root")
	out := flag.String("out", "media-data.js", "manifest file to write")
	formatFlag := flag.String("format", "", "js or json (default: from -out extension)")
	thumbs := flag.String("thumbs", "", "write jpeg thumbnails into this folder inside root")
	thumbSize := flag.Int("thumb-size", 300, "longest thumbnail edge in pixels")
	logLevel := flag.String("log-level", "info", "debug, info, warn or error")
	flag.Parse()

	logger, err := observability.NewLogger(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()
	logger = logger.Named("media")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, options{
		root:      *root,
		dir:       filepath.ToSlash(filepath.Clean(*dir)),
		out:       *out,
		format:    *formatFlag,
		thumbs:    *thumbs,
		thumbSize: *thumbSize,
	}); err != nil {
		logger.Fatal("media manifest failed", zap.Error(err))
	}
}

type options struct {
	root      string
	dir       string
	out       string
	format    string
	thumbs    string
	thumbSize int
}

func run(ctx context.Context, logger *zap.Logger, opts options) error {
	format, err := resolveFormat(opts.format, opts.out)
	if err != nil {
		return err
	}

	fsys := os.DirFS(opts.root)
	entries, err := media.Scan(fsys, opts.dir)
	if err != nil {
		return err
	}

	if opts.thumbs != "" {
		entries, err = media.Thumbnails(ctx, fsys, opts.dir, entries, media.ThumbnailOptions{
			Dir:    filepath.Join(opts.root, opts.thumbs),
			Size:   opts.thumbSize,
			Logger: logger,
		})
		if err != nil {
			return err
		}
		// Manifest paths are relative to root like the image paths.
		prefix := filepath.ToSlash(filepath.Clean(opts.root)) + "/"
		for i := range entries {
			entries[i].Thumbnail = strings.TrimPrefix(entries[i].Thumbnail, prefix)
		}
	}

	out := opts.out
	if !filepath.IsAbs(out) {
		out = filepath.Join(opts.root, out)
	}
	if err := media.WriteFile(out, entries, format); err != nil {
		return err
	}

	counts := map[media.Kind]int{}
	for _, e := range entries {
		counts[e.Type]++
	}
	logger.Info("media manifest written",
		zap.String("out", out),
		zap.Int("images", len(entries)),
		zap.Int("product", counts[media.KindProduct]),
		zap.Int("community", counts[media.KindCommunity]),
		zap.Int("site", counts[media.KindSite]),
		zap.Int("other", counts[media.KindOther]),
	)
	return nil
}

func resolveFormat(flagValue, out string) (media.Format, error) {
	if flagValue != "" {
		return media.ParseFormat(flagValue)
	}
	if strings.EqualFold(filepath.Ext(out), ".json") {
		return media.FormatJSON, nil
	}
	return media.FormatJS, nil
}
