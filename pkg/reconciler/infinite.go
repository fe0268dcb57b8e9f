// Package reconciler keeps client-side game lists consistent with the API: paged
// listings that grow on demand, locally stored id lists resolved against the server,
// and optimistic rating submissions.
package reconciler

import (
	"context"
	"slices"
	"sync"
)

// PageFetcher loads page (1-based) of a listing for filter and reports whether more
// pages follow.
type PageFetcher[T, F any] func(ctx context.Context, filter F, page int) (items []T, hasMore bool, err error)

// ListState is a snapshot of an InfiniteList.
type ListState[T any] struct {
	Items     []T
	Page      int
	HasMore   bool
	IsLoading bool
	// Err is the failure of the last fetch. A failed list stops loading more pages
	// until it is reloaded or its filter changes.
	Err error
}

// InfiniteList appends pages in increasing order, one fetch at a time. Changing the
// filter discards everything loaded so far, including responses still in flight.
type InfiniteList[T, F any] struct {
	mu         sync.Mutex
	fetch      PageFetcher[T, F]
	filter     F
	state      ListState[T]
	generation uint64
	closed     bool
}

func NewInfiniteList[T, F any](fetch PageFetcher[T, F], filter F) *InfiniteList[T, F] {
	return &InfiniteList[T, F]{
		fetch:  fetch,
		filter: filter,
		state:  ListState[T]{HasMore: true},
	}
}

// Snapshot returns a copy of the current state.
func (l *InfiniteList[T, F]) Snapshot() ListState[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := l.state
	s.Items = slices.Clone(l.state.Items)
	return s
}

// Filter returns the active filter.
func (l *InfiniteList[T, F]) Filter() F {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.filter
}

// LoadInitial discards the current state and loads the first page.
func (l *InfiniteList[T, F]) LoadInitial(ctx context.Context) error {
	l.mu.Lock()
	filter := l.filter
	l.mu.Unlock()
	return l.SetFilter(ctx, filter)
}

// Reload is LoadInitial under the name used after a failure.
func (l *InfiniteList[T, F]) Reload(ctx context.Context) error {
	return l.LoadInitial(ctx)
}

// SetFilter switches to filter and loads its first page.
func (l *InfiniteList[T, F]) SetFilter(ctx context.Context, filter F) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.generation++
	l.filter = filter
	l.state = ListState[T]{HasMore: true, IsLoading: true}
	gen := l.generation
	l.mu.Unlock()

	return l.load(ctx, gen, filter, 1)
}

// LoadMore fetches the next page. It does nothing while a fetch is running, after the
// last page, or after a failure.
func (l *InfiniteList[T, F]) LoadMore(ctx context.Context) error {
	l.mu.Lock()
	if l.closed || l.state.IsLoading || !l.state.HasMore {
		l.mu.Unlock()
		return nil
	}
	l.state.IsLoading = true
	gen, filter, page := l.generation, l.filter, l.state.Page+1
	l.mu.Unlock()

	return l.load(ctx, gen, filter, page)
}

// Close makes the list drop every pending and future result.
func (l *InfiniteList[T, F]) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
}

func (l *InfiniteList[T, F]) load(ctx context.Context, gen uint64, filter F, page int) error {
	items, hasMore, err := l.fetch(ctx, filter, page)

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed || gen != l.generation {
		return nil
	}

	l.state.IsLoading = false
	if err != nil {
		l.state.HasMore = false
		l.state.Err = err
		return err
	}
	l.state.Items = append(l.state.Items, items...)
	l.state.Page = page
	l.state.HasMore = hasMore
	l.state.Err = nil
	return nil
}
