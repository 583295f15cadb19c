package content

import (
	"slices"
	"strings"
	"sync"
)

// Change describes one committed write.
type Change struct {
	Subtrees []Subtree
	Versions map[Subtree]uint64
}

// Store owns the live content tree. Readers get deep copies; writers go
// through Update so a batch of replacements commits atomically.
type Store struct {
	mu       sync.RWMutex
	tree     Tree
	versions map[Subtree]uint64

	subMu sync.Mutex
	subs  map[int]func(Change)
	next  int
}

// NewStore takes ownership of a copy of tree.
func NewStore(tree Tree) *Store {
	tree = tree.Clone()
	for i := range tree.Gallery.Items {
		tree.Gallery.Items[i].Normalize()
	}
	versions := make(map[Subtree]uint64, len(AllSubtrees()))
	for _, s := range AllSubtrees() {
		versions[s] = 1
	}
	return &Store{tree: tree, versions: versions, subs: map[int]func(Change){}}
}

// Snapshot returns a deep copy of the current tree.
func (s *Store) Snapshot() Tree {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Clone()
}

// View returns a deep copy of the tree together with the subtree versions it
// corresponds to.
func (s *Store) View() (Tree, map[Subtree]uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	versions := make(map[Subtree]uint64, len(s.versions))
	for k, v := range s.versions {
		versions[k] = v
	}
	return s.tree.Clone(), versions
}

// Version returns the current version of a subtree. Versions start at 1.
func (s *Store) Version(sub Subtree) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.versions[sub]
}

// Versions returns a copy of every subtree version.
func (s *Store) Versions() map[Subtree]uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[Subtree]uint64, len(s.versions))
	for k, v := range s.versions {
		out[k] = v
	}
	return out
}

// Products returns a copy of the canonical product list.
func (s *Store) Products() []ProductItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneProducts(s.tree.Gallery.Items)
}

// CommunityPhotos returns a copy of the canonical community photo list.
func (s *Store) CommunityPhotos() []CommunityPhoto {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.tree.Community.Photos)
}

// Feeds returns the feed URLs declared in the tree.
func (s *Store) Feeds() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.tree.Feeds))
	for k, v := range s.tree.Feeds {
		out[k] = v
	}
	return out
}

// Subscribe registers fn to be called after every write that changed at
// least one subtree. Callbacks run on the writer's goroutine, outside the lock.
func (s *Store) Subscribe(fn func(Change)) (cancel func()) {
	s.subMu.Lock()
	id := s.next
	s.next++
	s.subs[id] = fn
	s.subMu.Unlock()
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// Tx stages writes against a private copy of the tree.
type Tx struct {
	tree    Tree
	changed map[Subtree]bool
}

// ReplaceProducts swaps the whole product list. Items are normalized first.
// A list equal to the current one is not a change.
func (tx *Tx) ReplaceProducts(items []ProductItem) error {
	if len(items) == 0 {
		return ErrEmptyList
	}
	next := cloneProducts(items)
	for i := range next {
		next[i].Normalize()
	}
	if slices.EqualFunc(tx.tree.Gallery.Items, next, ProductItem.Equal) {
		return nil
	}
	tx.tree.Gallery.Items = next
	tx.changed[SubtreeGallery] = true
	return nil
}

// ReplaceCommunityPhotos swaps the whole community photo list.
func (tx *Tx) ReplaceCommunityPhotos(photos []CommunityPhoto) error {
	if len(photos) == 0 {
		return ErrEmptyList
	}
	if slices.Equal(tx.tree.Community.Photos, photos) {
		return nil
	}
	tx.tree.Community.Photos = slices.Clone(photos)
	tx.changed[SubtreeCommunity] = true
	return nil
}

// PatchBrand overwrites the brand fields that are set in p.
func (tx *Tx) PatchBrand(p BrandPatch) {
	b := tx.tree.Brand
	set := func(dst *string, v string) {
		if v = strings.TrimSpace(v); v != "" {
			*dst = v
		}
	}
	set(&b.Name, p.Name)
	set(&b.Tagline, p.Tagline)
	set(&b.Established, p.Established)
	set(&b.InstagramHandle, p.InstagramHandle)
	set(&b.InstagramURL, p.InstagramURL)
	set(&b.Slogan, p.Slogan)
	set(&b.Copyright, p.Copyright)
	if b != tx.tree.Brand {
		tx.tree.Brand = b
		tx.changed[SubtreeBrand] = true
	}
}

// Update runs fn against a staged copy and commits it only when fn returns
// nil. It returns the subtrees whose content actually changed.
func (s *Store) Update(fn func(tx *Tx) error) ([]Subtree, error) {
	s.mu.Lock()
	tx := &Tx{tree: s.tree.Clone(), changed: map[Subtree]bool{}}
	if err := fn(tx); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	var changed []Subtree
	for _, sub := range AllSubtrees() {
		if tx.changed[sub] {
			changed = append(changed, sub)
			s.versions[sub]++
		}
	}
	if len(changed) == 0 {
		s.mu.Unlock()
		return nil, nil
	}
	s.tree = tx.tree
	versions := make(map[Subtree]uint64, len(changed))
	for _, sub := range changed {
		versions[sub] = s.versions[sub]
	}
	s.mu.Unlock()

	s.notify(Change{Subtrees: slices.Clone(changed), Versions: versions})
	return changed, nil
}

// ReplaceProducts is a single-write convenience around Update.
func (s *Store) ReplaceProducts(items []ProductItem) (bool, error) {
	changed, err := s.Update(func(tx *Tx) error { return tx.ReplaceProducts(items) })
	return len(changed) > 0, err
}

// ReplaceCommunityPhotos is a single-write convenience around Update.
func (s *Store) ReplaceCommunityPhotos(photos []CommunityPhoto) (bool, error) {
	changed, err := s.Update(func(tx *Tx) error { return tx.ReplaceCommunityPhotos(photos) })
	return len(changed) > 0, err
}

// PatchBrand is a single-write convenience around Update.
func (s *Store) PatchBrand(p BrandPatch) bool {
	changed, _ := s.Update(func(tx *Tx) error {
		tx.PatchBrand(p)
		return nil
	})
	return len(changed) > 0
}

func (s *Store) notify(c Change) {
	s.subMu.Lock()
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(Change), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn(c)
	}
}
