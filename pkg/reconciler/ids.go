package reconciler

import (
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"
)

const (
	FavoritesKey      = "favorites"
	RecentlyPlayedKey = "recently-played"

	// MaxRecentlyPlayed caps the recently played list.
	MaxRecentlyPlayed = 20
)

// IDList is a locally stored list of game ids.
type IDList interface {
	// IDs returns the ids in display order.
	IDs() []uint
	// Drop removes the given ids, leaving every other id in place.
	Drop(ids map[uint]bool) error
}

// load decodes the value stored under key. Unreadable data yields the zero value.
func load[T any](s Storage, key string) (T, error) {
	var v T
	b, err := s.Get(key)
	if err != nil || len(b) == 0 {
		return v, err
	}
	if err := json.Unmarshal(b, &v); err != nil {
		var zero T
		return zero, nil
	}
	return v, nil
}

func save(s Storage, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(key, b)
}

// Favorites is the set of favorite game ids, kept in insertion order.
type Favorites struct {
	mu    sync.Mutex
	store Storage
	ids   []uint
}

func LoadFavorites(s Storage) (*Favorites, error) {
	ids, err := load[[]uint](s, FavoritesKey)
	if err != nil {
		return nil, err
	}
	return &Favorites{store: s, ids: dedupe(ids)}, nil
}

func (f *Favorites) Has(id uint) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Contains(f.ids, id)
}

func (f *Favorites) Add(id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if slices.Contains(f.ids, id) {
		return nil
	}
	return f.commit(append(slices.Clone(f.ids), id))
}

func (f *Favorites) Remove(id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := slices.Index(f.ids, id)
	if i < 0 {
		return nil
	}
	return f.commit(slices.Delete(slices.Clone(f.ids), i, i+1))
}

// commit persists ids and only then makes them current. Callers hold f.mu.
func (f *Favorites) commit(ids []uint) error {
	if err := save(f.store, FavoritesKey, ids); err != nil {
		return err
	}
	f.ids = ids
	return nil
}

// Toggle adds or removes id and reports whether it is now a favorite.
func (f *Favorites) Toggle(id uint) (bool, error) {
	if f.Has(id) {
		return false, f.Remove(id)
	}
	return true, f.Add(id)
}

func (f *Favorites) IDs() []uint {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.ids)
}

func (f *Favorites) Drop(ids map[uint]bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := slices.DeleteFunc(slices.Clone(f.ids), func(id uint) bool { return ids[id] })
	if len(kept) == len(f.ids) {
		return nil
	}
	return f.commit(kept)
}

// Entry is one recently played game.
type Entry struct {
	ID       uint      `json:"id"`
	PlayedAt time.Time `json:"playedAt"`
}

// RecentlyPlayed lists games most recent first, holding each id at most once.
type RecentlyPlayed struct {
	mu      sync.Mutex
	store   Storage
	entries []Entry
	now     func() time.Time
}

func LoadRecentlyPlayed(s Storage) (*RecentlyPlayed, error) {
	entries, err := load[[]Entry](s, RecentlyPlayedKey)
	if err != nil {
		return nil, err
	}
	if len(entries) > MaxRecentlyPlayed {
		entries = entries[:MaxRecentlyPlayed]
	}
	return &RecentlyPlayed{store: s, entries: entries, now: time.Now}, nil
}

// Add moves id to the front with a fresh timestamp, evicting the oldest entry when
// the list is full.
func (r *RecentlyPlayed) Add(id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := slices.DeleteFunc(slices.Clone(r.entries), func(e Entry) bool { return e.ID == id })
	entries = slices.Insert(entries, 0, Entry{ID: id, PlayedAt: r.now()})
	if len(entries) > MaxRecentlyPlayed {
		entries = entries[:MaxRecentlyPlayed]
	}
	return r.commit(entries)
}

func (r *RecentlyPlayed) Remove(id uint) error {
	return r.Drop(map[uint]bool{id: true})
}

func (r *RecentlyPlayed) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.commit([]Entry{})
}

// commit persists entries and only then makes them current. Callers hold r.mu.
func (r *RecentlyPlayed) commit(entries []Entry) error {
	if err := save(r.store, RecentlyPlayedKey, entries); err != nil {
		return err
	}
	r.entries = entries
	return nil
}

func (r *RecentlyPlayed) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.entries)
}

func (r *RecentlyPlayed) IDs() []uint {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]uint, len(r.entries))
	for i, e := range r.entries {
		ids[i] = e.ID
	}
	return ids
}

func (r *RecentlyPlayed) Drop(ids map[uint]bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := slices.DeleteFunc(slices.Clone(r.entries), func(e Entry) bool { return ids[e.ID] })
	if len(kept) == len(r.entries) {
		return nil
	}
	return r.commit(kept)
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
