package reconciler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/AhmedSarhan/gamer-boy/pkg/client"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pagedFetcher serves pages of ints from a fixed total per filter and can hold a
// fetch open until released.
type pagedFetcher struct {
	mu      sync.Mutex
	total   map[string]int
	size    int
	calls   []string
	fail    bool
	hold    chan struct{}
	started chan struct{}
}

func (p *pagedFetcher) fetch(ctx context.Context, filter string, page int) ([]int, bool, error) {
	p.mu.Lock()
	p.calls = append(p.calls, fmt.Sprintf("%s:%d", filter, page))
	hold, started, fail := p.hold, p.started, p.fail
	p.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if hold != nil {
		<-hold
	}
	if fail {
		return nil, false, errors.New("network down")
	}

	total := p.total[filter]
	var items []int
	for i := (page-1)*p.size + 1; i <= min(page*p.size, total); i++ {
		items = append(items, i)
	}
	return items, page*p.size < total, nil
}

func TestInfiniteListPagesInOrder(t *testing.T) {
	p := &pagedFetcher{total: map[string]int{"all": 5}, size: 2}
	l := NewInfiniteList[int, string](p.fetch, "all")
	ctx := context.Background()

	require.NoError(t, l.LoadInitial(ctx))
	require.NoError(t, l.LoadMore(ctx))
	require.NoError(t, l.LoadMore(ctx))
	require.NoError(t, l.LoadMore(ctx))

	s := l.Snapshot()
	assert.Equal(t, []int{1, 2, 3, 4, 5}, s.Items)
	assert.Equal(t, 3, s.Page)
	assert.False(t, s.HasMore)
	assert.False(t, s.IsLoading)
	assert.Equal(t, []string{"all:1", "all:2", "all:3"}, p.calls)
}

func TestInfiniteListIgnoresLoadMoreWhileLoading(t *testing.T) {
	p := &pagedFetcher{total: map[string]int{"all": 10}, size: 2}
	l := NewInfiniteList[int, string](p.fetch, "all")
	ctx := context.Background()
	require.NoError(t, l.LoadInitial(ctx))

	p.mu.Lock()
	p.hold = make(chan struct{})
	p.started = make(chan struct{}, 1)
	p.mu.Unlock()
	done := make(chan error, 1)
	go func() { done <- l.LoadMore(ctx) }()
	<-p.started

	assert.True(t, l.Snapshot().IsLoading)
	assert.NoError(t, l.LoadMore(ctx))

	close(p.hold)
	require.NoError(t, <-done)
	assert.Equal(t, []string{"all:1", "all:2"}, p.calls)
	assert.Equal(t, []int{1, 2, 3, 4}, l.Snapshot().Items)
}

func TestInfiniteListDiscardsStaleFilterResults(t *testing.T) {
	p := &pagedFetcher{total: map[string]int{"action": 10, "puzzle": 1}, size: 2}
	l := NewInfiniteList[int, string](p.fetch, "action")
	ctx := context.Background()
	require.NoError(t, l.LoadInitial(ctx))

	release := make(chan struct{})
	p.mu.Lock()
	p.hold = release
	p.started = make(chan struct{}, 1)
	p.mu.Unlock()
	done := make(chan error, 1)
	go func() { done <- l.LoadMore(ctx) }()
	<-p.started

	p.mu.Lock()
	p.hold, p.started = nil, nil
	p.mu.Unlock()
	require.NoError(t, l.SetFilter(ctx, "puzzle"))
	assert.Equal(t, []int{1}, l.Snapshot().Items)

	// The action page 2 response arrives after the switch and must be dropped.
	close(release)
	require.NoError(t, <-done)

	s := l.Snapshot()
	assert.Equal(t, []int{1}, s.Items)
	assert.Equal(t, 1, s.Page)
	assert.False(t, s.HasMore)
	assert.Equal(t, "puzzle", l.Filter())
	assert.Equal(t, []string{"action:1", "action:2", "puzzle:1"}, p.calls)
}

func TestInfiniteListStopsAfterFailure(t *testing.T) {
	p := &pagedFetcher{total: map[string]int{"all": 10}, size: 2}
	l := NewInfiniteList[int, string](p.fetch, "all")
	ctx := context.Background()
	require.NoError(t, l.LoadInitial(ctx))

	p.mu.Lock()
	p.fail = true
	p.mu.Unlock()
	assert.Error(t, l.LoadMore(ctx))
	s := l.Snapshot()
	assert.False(t, s.HasMore)
	assert.Error(t, s.Err)
	assert.Equal(t, []int{1, 2}, s.Items)

	assert.NoError(t, l.LoadMore(ctx))
	assert.Len(t, p.calls, 2)

	p.mu.Lock()
	p.fail = false
	p.mu.Unlock()
	require.NoError(t, l.Reload(ctx))
	s = l.Snapshot()
	assert.True(t, s.HasMore)
	assert.NoError(t, s.Err)
	assert.Equal(t, []int{1, 2}, s.Items)
}

func TestInfiniteListClosedDropsResults(t *testing.T) {
	p := &pagedFetcher{total: map[string]int{"all": 4}, size: 2}
	l := NewInfiniteList[int, string](p.fetch, "all")
	l.Close()

	require.NoError(t, l.LoadInitial(context.Background()))
	assert.Empty(t, l.Snapshot().Items)
	assert.Empty(t, p.calls)
}

func TestRecentlyPlayedBoundAndDedup(t *testing.T) {
	r, err := LoadRecentlyPlayed(NewMemoryStorage())
	require.NoError(t, err)
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	for id := uint(1); id <= 21; id++ {
		require.NoError(t, r.Add(id))
	}
	require.NoError(t, r.Add(1))

	ids := r.IDs()
	require.Len(t, ids, MaxRecentlyPlayed)
	assert.EqualValues(t, 1, ids[0])
	assert.EqualValues(t, 21, ids[1])
	assert.NotContains(t, ids, uint(2))

	entries := r.Entries()
	assert.True(t, entries[0].PlayedAt.After(entries[1].PlayedAt))
}

func TestRecentlyPlayedPersists(t *testing.T) {
	store, err := NewFileStorage(filepath.Join(t.TempDir(), "state"))
	require.NoError(t, err)

	r, err := LoadRecentlyPlayed(store)
	require.NoError(t, err)
	require.NoError(t, r.Add(7))
	require.NoError(t, r.Add(9))
	require.NoError(t, r.Remove(7))

	again, err := LoadRecentlyPlayed(store)
	require.NoError(t, err)
	assert.Equal(t, []uint{9}, again.IDs())

	require.NoError(t, again.Clear())
	again, err = LoadRecentlyPlayed(store)
	require.NoError(t, err)
	assert.Empty(t, again.IDs())
}

func TestFavorites(t *testing.T) {
	store := NewMemoryStorage()
	f, err := LoadFavorites(store)
	require.NoError(t, err)

	on, err := f.Toggle(5)
	require.NoError(t, err)
	assert.True(t, on)
	require.NoError(t, f.Add(3))
	require.NoError(t, f.Add(5))
	assert.Equal(t, []uint{5, 3}, f.IDs())

	on, err = f.Toggle(5)
	require.NoError(t, err)
	assert.False(t, on)
	assert.False(t, f.Has(5))

	reloaded, err := LoadFavorites(store)
	require.NoError(t, err)
	assert.Equal(t, []uint{3}, reloaded.IDs())
}

func TestCorruptStorageStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FavoritesKey+".json"), []byte("{not json"), 0o600))

	f, err := LoadFavorites(&FileStorage{Dir: dir})
	require.NoError(t, err)
	assert.Empty(t, f.IDs())
}

func gamesFetcher(known ...uint) GamesByIDsFunc {
	set := make(map[uint]bool, len(known))
	for _, id := range known {
		set[id] = true
	}
	return func(ctx context.Context, ids []uint) ([]client.Game, error) {
		// Deliberately answer in a different order than asked.
		var out []client.Game
		for i := len(ids) - 1; i >= 0; i-- {
			if set[ids[i]] {
				out = append(out, client.Game{ID: ids[i], Slug: fmt.Sprintf("game-%d", ids[i])})
			}
		}
		return out, nil
	}
}

func TestResolveKeepsLocalOrderAndPrunes(t *testing.T) {
	r, err := LoadRecentlyPlayed(NewMemoryStorage())
	require.NoError(t, err)
	for _, id := range []uint{4, 8, 2, 6} {
		require.NoError(t, r.Add(id))
	}

	games, err := Resolve(context.Background(), r, gamesFetcher(2, 4, 6))
	require.NoError(t, err)

	got := make([]uint, len(games))
	for i, g := range games {
		got[i] = g.ID
	}
	assert.Equal(t, []uint{6, 2, 4}, got)
	assert.Equal(t, []uint{6, 2, 4}, r.IDs())
}

func TestResolveKeepsIdsAddedDuringFetch(t *testing.T) {
	favs, err := LoadFavorites(NewMemoryStorage())
	require.NoError(t, err)
	require.NoError(t, favs.Add(1))
	require.NoError(t, favs.Add(2))

	fetch := func(ctx context.Context, ids []uint) ([]client.Game, error) {
		// The user favorites another game while the request is out.
		require.NoError(t, favs.Add(3))
		return gamesFetcher(1)(ctx, ids)
	}

	games, err := Resolve(context.Background(), favs, fetch)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.EqualValues(t, 1, games[0].ID)
	assert.Equal(t, []uint{1, 3}, favs.IDs())
}

func TestRecentlyPlayedDropKeepsOthers(t *testing.T) {
	r, err := LoadRecentlyPlayed(NewMemoryStorage())
	require.NoError(t, err)
	for _, id := range []uint{1, 2, 3} {
		require.NoError(t, r.Add(id))
	}

	require.NoError(t, r.Drop(map[uint]bool{2: true, 99: true}))
	assert.Equal(t, []uint{3, 1}, r.IDs())
}

// flakyStorage fails every Set while broken is true.
type flakyStorage struct {
	*MemoryStorage
	broken bool
}

func (s *flakyStorage) Set(key string, value []byte) error {
	if s.broken {
		return errors.New("disk full")
	}
	return s.MemoryStorage.Set(key, value)
}

func TestFailedSaveLeavesListsUnchanged(t *testing.T) {
	store := &flakyStorage{MemoryStorage: NewMemoryStorage()}

	favs, err := LoadFavorites(store)
	require.NoError(t, err)
	require.NoError(t, favs.Add(1))

	recent, err := LoadRecentlyPlayed(store)
	require.NoError(t, err)
	require.NoError(t, recent.Add(1))
	require.NoError(t, recent.Add(2))

	store.broken = true
	assert.Error(t, favs.Add(2))
	assert.Error(t, favs.Remove(1))
	assert.Error(t, favs.Drop(map[uint]bool{1: true}))
	assert.Equal(t, []uint{1}, favs.IDs())

	assert.Error(t, recent.Add(1))
	assert.Error(t, recent.Add(3))
	assert.Error(t, recent.Remove(2))
	assert.Error(t, recent.Clear())
	assert.Equal(t, []uint{2, 1}, recent.IDs())

	store.broken = false
	reloaded, err := LoadRecentlyPlayed(store)
	require.NoError(t, err)
	assert.Equal(t, recent.IDs(), reloaded.IDs())
}

func TestViewRefreshKeepsGamesOnFailure(t *testing.T) {
	f, err := LoadFavorites(NewMemoryStorage())
	require.NoError(t, err)
	require.NoError(t, f.Add(1))

	fail := false
	fetch := func(ctx context.Context, ids []uint) ([]client.Game, error) {
		if fail {
			return nil, errors.New("offline")
		}
		return gamesFetcher(1)(ctx, ids)
	}

	v := NewView(f, fetch)
	require.NoError(t, v.Refresh(context.Background()))
	assert.Len(t, v.Games(), 1)

	fail = true
	assert.Error(t, v.Refresh(context.Background()))
	assert.Len(t, v.Games(), 1)
	assert.Error(t, v.Err())
	assert.Equal(t, []uint{1}, f.IDs())
}

func intPtr(n int) *int { return &n }

func TestRatingSubmissionSuccess(t *testing.T) {
	s := NewRatingSubmission(&client.Rating{GameID: 1, AverageRating: 3, TotalRatings: 2, UserRating: intPtr(2)})

	require.NoError(t, s.Begin(5))
	v := s.View()
	assert.Equal(t, Submitting, v.State)
	assert.Equal(t, 5, v.Stars)
	assert.False(t, v.InputEnabled)
	assert.ErrorIs(t, s.Begin(4), ErrSubmitting)

	require.NoError(t, s.Resolve(&client.Rating{GameID: 1, AverageRating: 3.5, TotalRatings: 2, UserRating: intPtr(5)}))
	v = s.View()
	assert.Equal(t, Succeeded, v.State)
	assert.Equal(t, 5, v.Stars)
	assert.Equal(t, 3.5, v.AverageRating)
	assert.True(t, v.InputEnabled)
}

func TestRatingSubmissionFailureReverts(t *testing.T) {
	s := NewRatingSubmission(&client.Rating{GameID: 1, AverageRating: 4, TotalRatings: 1, UserRating: intPtr(4)})

	limited := &client.APIError{Status: http.StatusTooManyRequests, Code: "RATE_LIMIT_EXCEEDED", RetryAfter: 30}
	err := s.Submit(context.Background(), 1, func(ctx context.Context, stars int) (*client.Rating, error) {
		assert.Equal(t, 1, s.View().Stars)
		return nil, limited
	})
	assert.ErrorIs(t, err, limited)

	v := s.View()
	assert.Equal(t, Failed, v.State)
	assert.Equal(t, 4, v.Stars)
	assert.True(t, v.InputEnabled)

	secs, ok := s.RetryAfter()
	assert.True(t, ok)
	assert.Equal(t, 30, secs)

	// A new click is a new attempt.
	err = s.Submit(context.Background(), 2, func(ctx context.Context, stars int) (*client.Rating, error) {
		return &client.Rating{GameID: 1, AverageRating: 2, TotalRatings: 1}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, s.View().Stars)
	_, ok = s.RetryAfter()
	assert.False(t, ok)
}

func TestRatingSubmissionEmptyResponseReverts(t *testing.T) {
	s := NewRatingSubmission(&client.Rating{GameID: 1, AverageRating: 4, TotalRatings: 1, UserRating: intPtr(4)})

	err := s.Submit(context.Background(), 2, func(ctx context.Context, stars int) (*client.Rating, error) {
		return nil, nil
	})
	assert.ErrorIs(t, err, ErrEmptyResponse)

	v := s.View()
	assert.Equal(t, Failed, v.State)
	assert.Equal(t, 4, v.Stars)
	assert.True(t, v.InputEnabled)
	assert.ErrorIs(t, v.Err, ErrEmptyResponse)
}

func TestRatingSubmissionGuards(t *testing.T) {
	s := NewRatingSubmission(nil)
	assert.Error(t, s.Begin(0))
	assert.Error(t, s.Begin(6))
	assert.ErrorIs(t, s.Resolve(&client.Rating{}), ErrNotSubmitting)
	assert.ErrorIs(t, s.Reject(errors.New("x")), ErrNotSubmitting)
	assert.Equal(t, Idle, s.View().State)
	assert.Equal(t, "idle", Idle.String())
}
