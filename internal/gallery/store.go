package gallery

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Store implements the gallery operations on top of a Repository. Every
// mutation is a whole-record read-modify-write under a per-key lock, so
// writes to different galleries never contend and writes to the same
// gallery within this process never interleave.
type Store struct {
	repo Repository
	now  func() time.Time

	mu    sync.Mutex
	locks map[string]*keyLock

	saveMu sync.Mutex
}

// NewStore creates a Store over repo.
func NewStore(repo Repository) *Store {
	return &Store{
		repo:  repo,
		now:   time.Now,
		locks: make(map[string]*keyLock),
	}
}

// keyLock is a per-key mutex that is dropped from the map once no
// goroutine holds or waits for it.
type keyLock struct {
	mu   sync.Mutex
	refs int
}

func (s *Store) lock(id string) func() {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &keyLock{}
		s.locks[id] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, id)
		}
		s.mu.Unlock()
	}
}

// Save creates a new gallery and returns it. The key is derived from the
// current time; when that key is taken the time is advanced a second at a
// time until a free key is found. Duplicate paths are dropped.
func (s *Store) Save(ctx context.Context, name string, paths []string, caption string, tags []string) (*Gallery, error) {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	now := s.now()
	created := now.Truncate(time.Second)
	id := KeyFor(created)
	for {
		existing, err := s.repo.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("check gallery key %s: %w", id, err)
		}
		if existing == nil {
			break
		}
		created = created.Add(time.Second)
		id = KeyFor(created)
	}

	g := &Gallery{
		ID:         id,
		Name:       name,
		CreatedAt:  now,
		UpdatedAt:  now,
		MediaPaths: appendUnique(nil, paths),
		Caption:    caption,
		Tags:       tags,
	}

	unlock := s.lock(id)
	defer unlock()
	if err := s.repo.Put(ctx, g); err != nil {
		return nil, fmt.Errorf("save gallery %q: %w", name, err)
	}

	log.Info().
		Str("gallery", id).
		Str("name", name).
		Int("media_count", len(g.MediaPaths)).
		Msg("Gallery saved")
	return g, nil
}

// Get returns the gallery for key, or nil when it does not exist.
func (s *Store) Get(ctx context.Context, key string) (*Gallery, error) {
	id, err := NormalizeKey(key)
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// List returns every readable gallery, newest first.
func (s *Store) List(ctx context.Context) ([]*Gallery, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})
	return all, nil
}

// Update replaces the name and caption of a gallery in one read-modify-write.
// An empty name keeps the current name and a nil caption keeps the current
// caption. Returns false when the gallery does not exist.
func (s *Store) Update(ctx context.Context, key, name string, caption *string) (bool, error) {
	return s.mutate(ctx, key, func(g *Gallery) bool {
		if name != "" {
			g.Name = name
		}
		if caption != nil {
			g.Caption = *caption
		}
		return true
	})
}

// AddMedia appends paths the gallery does not already contain and returns
// how many were added. found is false when the gallery does not exist.
func (s *Store) AddMedia(ctx context.Context, key string, paths []string) (added int, found bool, err error) {
	found, err = s.mutate(ctx, key, func(g *Gallery) bool {
		before := len(g.MediaPaths)
		g.MediaPaths = appendUnique(g.MediaPaths, paths)
		added = len(g.MediaPaths) - before
		return true
	})
	if !found || err != nil {
		return 0, found, err
	}
	return added, true, nil
}

// RemoveMediaEverywhere drops path from every gallery that references it and
// returns how many galleries were rewritten. Galleries are never deleted,
// even when they end up empty.
func (s *Store) RemoveMediaEverywhere(ctx context.Context, path string) (int, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return 0, err
	}

	changed := 0
	for _, g := range all {
		if !g.Contains(path) {
			continue
		}
		ok, err := s.mutate(ctx, g.ID, func(cur *Gallery) bool {
			kept := make([]string, 0, len(cur.MediaPaths))
			for _, p := range cur.MediaPaths {
				if p != path {
					kept = append(kept, p)
				}
			}
			if len(kept) == len(cur.MediaPaths) {
				return false
			}
			cur.MediaPaths = kept
			return true
		})
		if err != nil {
			return changed, fmt.Errorf("remove %s from gallery %s: %w", path, g.ID, err)
		}
		if ok {
			changed++
		}
	}

	log.Info().Str("path", path).Int("galleries_updated", changed).Msg("Media removed from galleries")
	return changed, nil
}

// Delete removes a gallery. Returns false when it did not exist.
func (s *Store) Delete(ctx context.Context, key string) (bool, error) {
	id, err := NormalizeKey(key)
	if err != nil {
		return false, err
	}
	unlock := s.lock(id)
	defer unlock()

	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return false, nil
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return false, err
	}
	log.Info().Str("gallery", id).Msg("Gallery deleted")
	return true, nil
}

// mutate loads a gallery under its lock, applies fn and writes the record
// back when fn reports a change. It returns false without error when the
// gallery does not exist or fn made no change.
func (s *Store) mutate(ctx context.Context, key string, fn func(*Gallery) bool) (bool, error) {
	id, err := NormalizeKey(key)
	if err != nil {
		return false, err
	}
	unlock := s.lock(id)
	defer unlock()

	g, err := s.repo.Get(ctx, id)
	if err != nil {
		return false, err
	}
	if g == nil {
		log.Debug().Str("gallery", id).Msg("Gallery not found")
		return false, nil
	}
	if !fn(g) {
		return false, nil
	}

	g.UpdatedAt = s.now()
	if err := s.repo.Put(ctx, g); err != nil {
		return false, err
	}
	return true, nil
}

// appendUnique appends the paths of add not yet in dst, preserving order.
func appendUnique(dst, add []string) []string {
	seen := make(map[string]bool, len(dst)+len(add))
	for _, p := range dst {
		seen[p] = true
	}
	for _, p := range add {
		if seen[p] {
			continue
		}
		seen[p] = true
		dst = append(dst, p)
	}
	return dst
}
