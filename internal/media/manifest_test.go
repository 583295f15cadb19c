package media

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		img.Set(x, h/2, color.NRGBA{R: 180, G: 80, B: 40, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func testFS(t *testing.T) fstest.MapFS {
	return fstest.MapFS{
		"images/products/coat.PNG":     &fstest.MapFile{Data: pngBytes(t, 600, 300)},
		"images/community/thao.png":    &fstest.MapFile{Data: pngBytes(t, 40, 40)},
		"images/site/logo.svg":         &fstest.MapFile{Data: []byte("<svg/>")},
		"images/misc/broken.jpg":       &fstest.MapFile{Data: []byte("not a jpeg")},
		"images/products/notes.txt":    &fstest.MapFile{Data: []byte("ignore me")},
		"images/website-hero/hero.gif": &fstest.MapFile{Data: []byte("GIF89a")},
	}
}

func TestClassify(t *testing.T) {
	cases := map[string]Kind{
		"images/products/a.jpg":           KindProduct,
		"images/community/b.jpg":          KindCommunity,
		"images/site/c.jpg":               KindSite,
		"images/website/d.jpg":            KindSite,
		"images/community/products/e.jpg": KindProduct,
		"images/misc/f.jpg":               KindOther,
	}
	for p, want := range cases {
		require.Equal(t, want, Classify(p), p)
	}
}

func TestScanListsImagesWithDimensions(t *testing.T) {
	entries, err := Scan(testFS(t), "images")
	require.NoError(t, err)

	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		paths = append(paths, e.Path)
	}
	require.Equal(t, []string{
		"images/community/thao.png",
		"images/misc/broken.jpg",
		"images/products/coat.PNG",
		"images/site/logo.svg",
		"images/website-hero/hero.gif",
	}, paths)

	require.Equal(t, Entry{Path: "images/products/coat.PNG", Name: "coat.PNG", Type: KindProduct, Width: 600, Height: 300}, entries[2])
	require.Zero(t, entries[1].Width)
	require.Equal(t, KindOther, entries[1].Type)
	require.Zero(t, entries[3].Width)
	require.Equal(t, KindSite, entries[4].Type)
}

func TestScanMissingRoot(t *testing.T) {
	_, err := Scan(fstest.MapFS{}, "images")
	require.Error(t, err)
}

func TestEncodeFormats(t *testing.T) {
	entries := []Entry{{Path: "images/site/logo.svg", Name: "logo.svg", Type: KindSite}}

	var js bytes.Buffer
	require.NoError(t, Encode(&js, entries, FormatJS))
	out := js.String()
	require.True(t, strings.HasPrefix(out, "const MEDIA_DATA = ["), out)
	require.True(t, strings.HasSuffix(out, "];"), out)

	var raw bytes.Buffer
	require.NoError(t, Encode(&raw, nil, FormatJSON))
	require.Equal(t, "[]\n", raw.String())

	require.Error(t, Encode(&raw, entries, Format("xml")))

	f, err := ParseFormat(" JS ")
	require.NoError(t, err)
	require.Equal(t, FormatJS, f)
	_, err = ParseFormat("yaml")
	require.Error(t, err)
}

func TestWriteFileReplacesManifest(t *testing.T) {
	out := filepath.Join(t.TempDir(), "media.json")
	require.NoError(t, os.WriteFile(out, []byte("stale"), 0o644))

	entries := []Entry{{Path: "images/products/a.jpg", Name: "a.jpg", Type: KindProduct, Width: 10, Height: 20}}
	require.NoError(t, WriteFile(out, entries, FormatJSON))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var got []Entry
	require.NoError(t, json.Unmarshal(data, &got))
	require.Equal(t, entries, got)
}

func TestThumbnailsFitLongerEdge(t *testing.T) {
	fsys := testFS(t)
	entries, err := Scan(fsys, "images")
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "thumbs")
	out, err := Thumbnails(context.Background(), fsys, "images", entries, ThumbnailOptions{Dir: dir, Size: 120})
	require.NoError(t, err)
	require.Empty(t, entries[2].Thumbnail, "input must not be modified")

	coat := out[2]
	require.Equal(t, filepath.ToSlash(filepath.Join(dir, "products", "coat.jpg")), coat.Thumbnail)
	img, err := imaging.Open(filepath.FromSlash(coat.Thumbnail))
	require.NoError(t, err)
	require.Equal(t, 120, img.Bounds().Dx())
	require.Equal(t, 60, img.Bounds().Dy())

	small, err := imaging.Open(filepath.FromSlash(out[0].Thumbnail))
	require.NoError(t, err)
	require.Equal(t, 40, small.Bounds().Dx(), "small images are not upscaled")

	require.Empty(t, out[1].Thumbnail)
	require.Empty(t, out[3].Thumbnail)
}
