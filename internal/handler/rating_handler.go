package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/AhmedSarhan/gamer-boy/internal/apperr"
	"github.com/AhmedSarhan/gamer-boy/internal/hub"
	"github.com/AhmedSarhan/gamer-boy/internal/rating"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

type RatingInput struct {
	Rating      int    `json:"rating" example:"4"`
	Fingerprint string `json:"fingerprint" example:"c1a9f0e2"`
}

type RatingResponse struct {
	GameID        uint    `json:"gameId" example:"1"`
	AverageRating float64 `json:"averageRating" example:"4.3"`
	TotalRatings  int64   `json:"totalRatings" example:"12"`
	UserRating    *int    `json:"userRating" example:"4"`
}

type SubmitRatingResponse struct {
	Success bool `json:"success" example:"true"`
	RatingResponse
}

func newRatingResponse(s *rating.Summary) RatingResponse {
	return RatingResponse{
		GameID:        s.GameID,
		AverageRating: s.AverageRating,
		TotalRatings:  s.TotalRatings,
		UserRating:    s.UserRating,
	}
}

// endregion

// GetRating godoc
// @Summary      Get the rating of a game
// @Description  Returns the average and count of ratings for a game. When a fingerprint is given, userRating holds its own rating or null.
// @Tags         ratings
// @Produce      json
// @Param        gameId      path  int    true  "Game ID"
// @Param        fingerprint query string false "Client fingerprint"
// @Success      200 {object} RatingResponse
// @Failure      400 {object} apperr.Envelope
// @Failure      429 {object} apperr.Envelope
// @Failure      500 {object} apperr.Envelope
// @Router       /ratings/{gameId} [get]
func (h *Handler) GetRating(c *gin.Context) {
	gameID, err := parseID(c.Param("gameId"), "game id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	summary, err := h.ratings.Summary(c.Request.Context(), gameID, c.Query("fingerprint"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, newRatingResponse(summary))
}

// SubmitRating godoc
// @Summary      Rate a game
// @Description  Stores a 1-5 rating for the fingerprint, replacing its earlier rating of the same game, and returns the new aggregate.
// @Tags         ratings
// @Accept       json
// @Produce      json
// @Param        gameId path int         true "Game ID"
// @Param        input  body RatingInput true "Rating"
// @Success      200 {object} SubmitRatingResponse
// @Failure      400 {object} apperr.Envelope
// @Failure      429 {object} apperr.Envelope "Too many submissions"
// @Failure      500 {object} apperr.Envelope
// @Router       /ratings/{gameId} [post]
func (h *Handler) SubmitRating(c *gin.Context) {
	gameID, err := parseID(c.Param("gameId"), "game id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	var input RatingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		_ = c.Error(apperr.BadRequestf("invalid request body"))
		return
	}

	summary, err := h.ratings.Submit(c.Request.Context(), gameID, rating.SubmitInput{
		Rating:      input.Rating,
		Fingerprint: input.Fingerprint,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, SubmitRatingResponse{Success: true, RatingResponse: newRatingResponse(summary)})
}

// StreamRatings godoc
// @Summary      Stream rating updates
// @Description  Server-sent events carrying the rating aggregate of a game: once on connect, then after every submission.
// @Tags         ratings
// @Produce      text/event-stream
// @Param        gameId path int true "Game ID"
// @Success      200 {object} hub.RatingPayload "rating.updated events"
// @Failure      400 {object} apperr.Envelope
// @Router       /ratings/{gameId}/stream [get]
func (h *Handler) StreamRatings(c *gin.Context) {
	gameID, err := parseID(c.Param("gameId"), "game id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	ctx := c.Request.Context()
	summary, err := h.ratings.Summary(ctx, gameID, "")
	if err != nil {
		_ = c.Error(err)
		return
	}
	initial, err := json.Marshal(hub.Event{
		Type: hub.EventRatingUpdated,
		Payload: hub.RatingPayload{
			GameID:        summary.GameID,
			AverageRating: summary.AverageRating,
			TotalRatings:  summary.TotalRatings,
		},
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	client := make(hub.Client, 8)
	h.hub.Subscribe(gameID, client)
	defer h.hub.Unsubscribe(gameID, client)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	c.SSEvent(hub.EventRatingUpdated, string(initial))
	c.Writer.Flush()

	keepAlive := time.NewTicker(h.streamKeepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-client:
			if !ok {
				return
			}
			c.SSEvent(hub.EventRatingUpdated, string(msg))
			c.Writer.Flush()
		case <-keepAlive.C:
			c.SSEvent("keepalive", "")
			c.Writer.Flush()
		}
	}
}
