package main

import (
	"context"
	"encoding/json"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/daivuongnguyen/yen-may-vintage-website/internal/media"
)

func writeImage(t *testing.T, path string, w, h int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, imaging.Save(image.NewNRGBA(image.Rect(0, 0, w, h)), path))
}

func TestRunWritesManifestAndThumbnails(t *testing.T) {
	root := t.TempDir()
	writeImage(t, filepath.Join(root, "images", "products", "dress.jpg"), 800, 400)
	writeImage(t, filepath.Join(root, "images", "community", "thao.png"), 50, 50)

	err := run(context.Background(), zap.NewNop(), options{
		root:      root,
		dir:       "images",
		out:       "media.json",
		thumbs:    "thumbs",
		thumbSize: 200,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(root, "media.json"))
	require.NoError(t, err)
	var entries []media.Entry
	require.NoError(t, json.Unmarshal(data, &entries))
	require.Len(t, entries, 2)

	dress := entries[1]
	require.Equal(t, "images/products/dress.jpg", dress.Path)
	require.Equal(t, media.KindProduct, dress.Type)
	require.Equal(t, 800, dress.Width)
	require.Equal(t, "thumbs/products/dress.jpg", dress.Thumbnail)

	thumb, err := imaging.Open(filepath.Join(root, filepath.FromSlash(dress.Thumbnail)))
	require.NoError(t, err)
	require.Equal(t, 200, thumb.Bounds().Dx())
}

func TestRunDefaultsToScriptFormat(t *testing.T) {
	root := t.TempDir()
	writeImage(t, filepath.Join(root, "images", "site", "logo.png"), 10, 10)

	require.NoError(t, run(context.Background(), zap.NewNop(), options{root: root, dir: "images", out: "media-data.js"}))

	data, err := os.ReadFile(filepath.Join(root, "media-data.js"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "const MEDIA_DATA = "))
	require.Contains(t, string(data), `"type": "site"`)
}

func TestResolveFormat(t *testing.T) {
	f, err := resolveFormat("", "out/MEDIA.JSON")
	require.NoError(t, err)
	require.Equal(t, media.FormatJSON, f)

	_, err = resolveFormat("csv", "x.js")
	require.Error(t, err)
}
