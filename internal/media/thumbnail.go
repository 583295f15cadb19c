package media

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/natefinch/atomic"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultThumbSize    = 300
	defaultThumbQuality = 70
)

// ThumbnailOptions controls thumbnail generation.
type ThumbnailOptions struct {
	// Dir is where thumbnails are written. Entries record it slash-separated.
	Dir string
	// Size bounds the longer edge in pixels.
	Size    int
	Quality int
	Logger  *zap.Logger
}

// Thumbnails writes a jpeg thumbnail for every entry that has dimensions and
// records its path on the returned copy. Entries that fail to decode keep no
// thumbnail and are logged; write failures abort.
func Thumbnails(ctx context.Context, fsys fs.FS, root string, entries []Entry, opts ThumbnailOptions) ([]Entry, error) {
	if opts.Size <= 0 {
		opts.Size = defaultThumbSize
	}
	if opts.Quality <= 0 {
		opts.Quality = defaultThumbQuality
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	out := append([]Entry(nil), entries...)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i := range out {
		if out[i].Width == 0 {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rel := strings.TrimPrefix(strings.TrimPrefix(out[i].Path, root), "/")
			rel = strings.TrimSuffix(rel, path.Ext(rel)) + ".jpg"
			dst := filepath.Join(opts.Dir, filepath.FromSlash(rel))

			data, err := thumbnail(fsys, out[i].Path, opts.Size, opts.Quality)
			if err != nil {
				opts.Logger.Warn("thumbnail skipped", zap.String("path", out[i].Path), zap.Error(err))
				return nil
			}
			if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
				return fmt.Errorf("media: create %s: %w", filepath.Dir(dst), err)
			}
			if err := atomic.WriteFile(dst, bytes.NewReader(data)); err != nil {
				return fmt.Errorf("media: write %s: %w", dst, err)
			}
			out[i].Thumbnail = filepath.ToSlash(dst)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func thumbnail(fsys fs.FS, p string, size, quality int) ([]byte, error) {
	f, err := fsys.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, err := imaging.Decode(f, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	b := img.Bounds()
	if b.Dx() > size || b.Dy() > size {
		img = imaging.Fit(img, size, size, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return buf.Bytes(), nil
}
