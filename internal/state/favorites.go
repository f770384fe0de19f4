package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
)

// Store persists the favorite page ids.
type Store interface {
	Load() ([]string, error)
	Save(ids []string) error
}

// FileStore keeps favorites in a JSON file.
type FileStore struct {
	Path string
}

func (s FileStore) Load() ([]string, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read favorites: %w", err)
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("parse favorites %s: %w", s.Path, err)
	}
	return ids, nil
}

func (s FileStore) Save(ids []string) error {
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return fmt.Errorf("write favorites: %w", err)
	}
	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write favorites: %w", err)
	}
	return os.Rename(tmp, s.Path)
}

// MemoryStore keeps favorites in memory.
type MemoryStore struct {
	ids []string
}

func (s *MemoryStore) Load() ([]string, error) { return slices.Clone(s.ids), nil }

func (s *MemoryStore) Save(ids []string) error {
	s.ids = slices.Clone(ids)
	return nil
}

// Favorites is the set of favorite page ids, written through to its store
// on every toggle.
type Favorites struct {
	mu    sync.Mutex
	ids   map[string]struct{}
	store Store
}

// NewFavorites loads the favorites from store.
func NewFavorites(store Store) (*Favorites, error) {
	ids, err := store.Load()
	if err != nil {
		return nil, err
	}
	f := &Favorites{ids: make(map[string]struct{}, len(ids)), store: store}
	for _, id := range ids {
		f.ids[id] = struct{}{}
	}
	return f, nil
}

// Toggle adds or removes id and persists the result. It returns whether id
// is now a favorite. On a store error the change is rolled back.
func (f *Favorites) Toggle(id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, had := f.ids[id]
	if had {
		delete(f.ids, id)
	} else {
		f.ids[id] = struct{}{}
	}
	if err := f.store.Save(f.listLocked()); err != nil {
		if had {
			f.ids[id] = struct{}{}
		} else {
			delete(f.ids, id)
		}
		return had, err
	}
	return !had, nil
}

// Has reports whether id is a favorite.
func (f *Favorites) Has(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.ids[id]
	return ok
}

// List returns the favorite ids in sorted order.
func (f *Favorites) List() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listLocked()
}

func (f *Favorites) listLocked() []string {
	ids := make([]string, 0, len(f.ids))
	for id := range f.ids {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
