package reconciler

import (
	"context"
	"sync"

	"github.com/AhmedSarhan/gamer-boy/pkg/client"
)

// GamesByIDsFunc fetches authoritative game data, e.g. (*client.Client).GamesByIDs.
type GamesByIDsFunc func(ctx context.Context, ids []uint) ([]client.Game, error)

// Resolve returns the games of list in list order. Ids the server no longer knows are
// dropped from the result and from list.
func Resolve(ctx context.Context, list IDList, fetch GamesByIDsFunc) ([]client.Game, error) {
	ids := list.IDs()
	if len(ids) == 0 {
		return []client.Game{}, nil
	}

	games, err := fetch(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[uint]client.Game, len(games))
	for _, g := range games {
		byID[g.ID] = g
	}

	out := make([]client.Game, 0, len(ids))
	missing := make(map[uint]bool)
	for _, id := range ids {
		if g, ok := byID[id]; ok {
			out = append(out, g)
		} else {
			missing[id] = true
		}
	}
	// Only ids that were asked for and not returned are dropped; ids added while the
	// fetch ran stay.
	if len(missing) > 0 {
		if err := list.Drop(missing); err != nil {
			return out, err
		}
	}
	return out, nil
}

// View holds the resolved games of an IDList. Refresh is called when the list is
// shown and again whenever it becomes visible; nothing polls.
type View struct {
	list  IDList
	fetch GamesByIDsFunc

	mu    sync.Mutex
	games []client.Game
	err   error
}

func NewView(list IDList, fetch GamesByIDsFunc) *View {
	return &View{list: list, fetch: fetch}
}

// Refresh re-resolves the list. On failure the previously resolved games are kept.
func (v *View) Refresh(ctx context.Context) error {
	games, err := Resolve(ctx, v.list, v.fetch)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.err = err
	if games != nil {
		v.games = games
	}
	return err
}

// Games returns the games from the last successful Refresh.
func (v *View) Games() []client.Game {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]client.Game(nil), v.games...)
}

// Err returns the error of the last Refresh.
func (v *View) Err() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.err
}
