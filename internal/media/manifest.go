// Package media builds the image manifest the shop admin uses to pick
// product and community photos.
package media

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/natefinch/atomic"
)

// Kind classifies an image by the folder it lives in.
type Kind string

const (
	KindProduct   Kind = "product"
	KindCommunity Kind = "community"
	KindSite      Kind = "site"
	KindOther     Kind = "other"
)

// Format is the manifest output format.
type Format string

const (
	FormatJSON Format = "json"
	FormatJS   Format = "js"
)

// ParseFormat accepts "json" or "js".
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatJS:
		return f, nil
	}
	return "", fmt.Errorf("media: unknown format %q", s)
}

// Entry is one image in the manifest.
type Entry struct {
	Path      string `json:"path"`
	Name      string `json:"name"`
	Type      Kind   `json:"type"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true, ".svg": true,
}

// Classify derives the kind from a slash-separated path. The first matching
// folder name wins in the order products, community, site.
func Classify(p string) Kind {
	switch {
	case strings.Contains(p, "products"):
		return KindProduct
	case strings.Contains(p, "community"):
		return KindCommunity
	case strings.Contains(p, "site"):
		return KindSite
	}
	return KindOther
}

// Scan walks root inside fsys and returns every image in lexical order.
// Dimensions are filled for formats with a registered decoder (jpeg, png and
// gif, plus bmp and tiff through imaging); svg and webp are listed without them.
func Scan(fsys fs.FS, root string) ([]Entry, error) {
	var entries []Entry
	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !imageExts[strings.ToLower(path.Ext(d.Name()))] {
			return nil
		}
		e := Entry{Path: p, Name: d.Name(), Type: Classify(p)}
		if w, h, ok := dimensions(fsys, p); ok {
			e.Width, e.Height = w, h
		}
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("media: scan %s: %w", root, err)
	}
	return entries, nil
}

func dimensions(fsys fs.FS, p string) (int, int, bool) {
	f, err := fsys.Open(p)
	if err != nil {
		return 0, 0, false
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, false
	}
	return cfg.Width, cfg.Height, true
}

// Encode writes the manifest. The js format wraps the JSON in a
// `const MEDIA_DATA = …;` statement for static pages.
func Encode(w io.Writer, entries []Entry, format Format) error {
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.MarshalIndent(entries, "", "    ")
	if err != nil {
		return err
	}
	switch format {
	case FormatJS:
		_, err = fmt.Fprintf(w, "const MEDIA_DATA = %s;", data)
	case FormatJSON:
		data = append(data, '\n')
		_, err = w.Write(data)
	default:
		err = fmt.Errorf("media: unknown format %q", format)
	}
	return err
}

// WriteFile replaces out with the encoded manifest atomically.
func WriteFile(out string, entries []Entry, format Format) error {
	var buf bytes.Buffer
	if err := Encode(&buf, entries, format); err != nil {
		return err
	}
	if err := atomic.WriteFile(out, &buf); err != nil {
		return fmt.Errorf("media: write %s: %w", out, err)
	}
	return nil
}
