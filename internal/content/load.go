package content

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrEmptyList is returned when a replace would wipe a list.
var ErrEmptyList = errors.New("content: refusing to replace with an empty list")

// Default returns the built-in shop content.
func Default() Tree {
	tree, err := decode(bytes.NewReader(defaultsYAML), Tree{})
	if err != nil {
		panic(fmt.Sprintf("content: embedded defaults: %v", err))
	}
	return tree
}

// LoadFile overlays the YAML document at path onto base. Keys absent from the
// file keep their base value; lists present in the file replace the base list.
// An empty path returns base unchanged.
func LoadFile(path string, base Tree) (Tree, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return base.Clone(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return Tree{}, fmt.Errorf("content: open %s: %w", path, err)
	}
	defer f.Close()
	tree, err := decode(f, base)
	if err != nil {
		return Tree{}, fmt.Errorf("content: %s: %w", path, err)
	}
	return tree, nil
}

func decode(r io.Reader, base Tree) (Tree, error) {
	tree := base.Clone()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&tree); err != nil && !errors.Is(err, io.EOF) {
		return Tree{}, fmt.Errorf("decode yaml: %w", err)
	}
	for i := range tree.Gallery.Items {
		tree.Gallery.Items[i].Status = ParseStatus(string(tree.Gallery.Items[i].Status))
		tree.Gallery.Items[i].Normalize()
	}
	return tree, nil
}
