package handler

import (
	"net/http"
	"unicode/utf8"

	"github.com/AhmedSarhan/gamer-boy/internal/apperr"
	"github.com/AhmedSarhan/gamer-boy/internal/catalog"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

// GameListResponse is one page of a game listing.
type GameListResponse struct {
	Games      []GameResponse `json:"games"`
	Pagination PaginationMeta `json:"pagination"`
}

// GamesResponse is an unpaginated list of games.
type GamesResponse struct {
	Games []GameResponse `json:"games"`
}

// endregion

// GetGames godoc
// @Summary      List games
// @Description  Returns a page of games, newest first, optionally filtered by a case-insensitive title search and by categories. A game matches the category filter when it has any of the listed categories.
// @Tags         games
// @Produce      json
// @Param        q          query  string  false  "Search in game titles"
// @Param        categories query  string  false  "Category slugs, comma-separated or repeated; \"all\" disables the filter"
// @Param        page       query  int     false  "Page number" default(1)
// @Param        limit      query  int     false  "Items per page (max 100)" default(12)
// @Success      200 {object} GameListResponse
// @Failure      400 {object} apperr.Envelope
// @Failure      429 {object} apperr.Envelope
// @Failure      500 {object} apperr.Envelope
// @Router       /games [get]
func (h *Handler) GetGames(c *gin.Context) {
	page, limit, err := parsePagination(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	search := c.Query("q")
	if utf8.RuneCountInString(search) > MaxSearchLength {
		_ = c.Error(apperr.Validationf(map[string]any{"field": "q", "max": MaxSearchLength},
			"search must be at most %d characters", MaxSearchLength))
		return
	}

	listing, err := h.catalog.ListGames(c.Request.Context(), catalog.GameFilter{
		Search:     search,
		Categories: queryList(c, "categories"),
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, GameListResponse{
		Games:      newGameResponses(listing.Games),
		Pagination: NewPaginationMeta(listing),
	})
}

// GetGamesByIDs godoc
// @Summary      Get games by ids
// @Description  Returns the games for the given ids in the order of the ids. Unknown ids are skipped.
// @Tags         games
// @Produce      json
// @Param        ids query string true "Comma-separated game ids (max 100)"
// @Success      200 {object} GamesResponse
// @Failure      400 {object} apperr.Envelope
// @Failure      429 {object} apperr.Envelope
// @Failure      500 {object} apperr.Envelope
// @Router       /games/by-ids [get]
func (h *Handler) GetGamesByIDs(c *gin.Context) {
	raw := queryList(c, "ids")
	if len(raw) == 0 {
		_ = c.Error(apperr.BadRequestf("ids is required"))
		return
	}

	ids := make([]uint, 0, len(raw))
	for _, s := range raw {
		id, err := parseID(s, "id")
		if err != nil {
			_ = c.Error(err)
			return
		}
		ids = append(ids, id)
	}

	games, err := h.catalog.GamesByIDs(c.Request.Context(), ids)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, GamesResponse{Games: newGameResponses(games)})
}

// GetGameBySlug godoc
// @Summary      Get a single game
// @Description  Returns a game with its categories.
// @Tags         games
// @Produce      json
// @Param        slug path string true "Game slug"
// @Success      200 {object} GameResponse
// @Failure      404 {object} apperr.Envelope "Game not found"
// @Failure      429 {object} apperr.Envelope
// @Router       /games/{slug} [get]
func (h *Handler) GetGameBySlug(c *gin.Context) {
	game, err := h.catalog.GameBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, newGameResponse(*game))
}

// GetRelatedGames godoc
// @Summary      Get related games
// @Description  Returns games sharing categories with the given game, most shared categories first.
// @Tags         games
// @Produce      json
// @Param        slug  path  string true  "Game slug"
// @Param        limit query int    false "Number of games (max 24)" default(6)
// @Success      200 {object} GamesResponse
// @Failure      400 {object} apperr.Envelope
// @Failure      404 {object} apperr.Envelope "Game not found"
// @Router       /games/{slug}/related [get]
func (h *Handler) GetRelatedGames(c *gin.Context) {
	limit, err := positiveQueryInt(c, "limit", catalog.DefaultRelatedLimit)
	if err != nil {
		_ = c.Error(err)
		return
	}

	game, err := h.catalog.GameBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	related, err := h.catalog.RelatedGames(c.Request.Context(), game.Game.ID, limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, GamesResponse{Games: newGameResponses(related)})
}
