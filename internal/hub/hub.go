package hub

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/AhmedSarhan/gamer-boy/internal/rating"
)

// EventRatingUpdated is sent whenever a game's rating aggregate changes.
const EventRatingUpdated = "rating.updated"

// Event represents a real-time event to be sent to clients.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// RatingPayload is the public part of a rating summary. The submitter's own rating is
// never broadcast.
type RatingPayload struct {
	GameID        uint    `json:"gameId"`
	AverageRating float64 `json:"averageRating"`
	TotalRatings  int64   `json:"totalRatings"`
}

// Client is a single stream subscriber. The SSE handler drains it until it is closed.
type Client chan []byte

// Hub fans events out to the subscribers of each game.
type Hub struct {
	games map[uint]map[Client]bool
	mu    sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		games: make(map[uint]map[Client]bool),
	}
}

// Subscribe adds client to the subscribers of gameID.
func (h *Hub) Subscribe(gameID uint, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.games[gameID]; !ok {
		h.games[gameID] = make(map[Client]bool)
	}
	h.games[gameID][client] = true
}

// Unsubscribe removes client from gameID and closes it. Unknown clients are ignored.
func (h *Hub) Unsubscribe(gameID uint, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.games[gameID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client)
	if len(clients) == 0 {
		delete(h.games, gameID)
	}
}

// Subscribers reports how many clients listen to gameID.
func (h *Hub) Subscribers(gameID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.games[gameID])
}

// Pending reports how many events are queued for gameID's subscribers but not yet
// taken by their streams.
func (h *Hub) Pending(gameID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for client := range h.games[gameID] {
		n += len(client)
	}
	return n
}

// Broadcast sends event to every subscriber of gameID. Slow clients miss the event
// instead of blocking the publisher.
func (h *Hub) Broadcast(gameID uint, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.games[gameID]
	if !ok {
		return
	}
	msg, err := json.Marshal(event)
	if err != nil {
		slog.Error("marshal hub event", "type", event.Type, "error", err)
		return
	}

	for client := range clients {
		select {
		case client <- msg:
		default:
			slog.Debug("dropping event for slow subscriber", "game_id", gameID, "type", event.Type)
		}
	}
}

// PublishRating implements rating.Publisher.
func (h *Hub) PublishRating(s rating.Summary) {
	h.Broadcast(s.GameID, Event{
		Type: EventRatingUpdated,
		Payload: RatingPayload{
			GameID:        s.GameID,
			AverageRating: s.AverageRating,
			TotalRatings:  s.TotalRatings,
		},
	})
}
