package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

type CategoriesResponse struct {
	Categories []CategoryResponse `json:"categories"`
}

// CategoryGamesResponse is a listing of one category. Category is null for an
// unknown slug.
type CategoryGamesResponse struct {
	Category   *CategoryResponse `json:"category"`
	Games      []GameResponse    `json:"games"`
	Pagination PaginationMeta    `json:"pagination"`
}

// endregion

// GetCategories godoc
// @Summary      List categories
// @Description  Returns every category ordered by name.
// @Tags         categories
// @Produce      json
// @Success      200 {object} CategoriesResponse
// @Failure      429 {object} apperr.Envelope
// @Failure      500 {object} apperr.Envelope
// @Router       /categories [get]
func (h *Handler) GetCategories(c *gin.Context) {
	categories, err := h.catalog.AllCategories(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	response := make([]CategoryResponse, 0, len(categories))
	for _, cat := range categories {
		response = append(response, newCategoryResponse(cat))
	}
	c.JSON(http.StatusOK, CategoriesResponse{Categories: response})
}

// GetCategoryGames godoc
// @Summary      List the games of a category
// @Description  Returns a page of games in one category, newest first. An unknown slug yields an empty page.
// @Tags         categories
// @Produce      json
// @Param        slug  path  string true  "Category slug"
// @Param        page  query int    false "Page number" default(1)
// @Param        limit query int    false "Items per page (max 100)" default(12)
// @Success      200 {object} CategoryGamesResponse
// @Failure      400 {object} apperr.Envelope
// @Failure      429 {object} apperr.Envelope
// @Router       /categories/{slug}/games [get]
func (h *Handler) GetCategoryGames(c *gin.Context) {
	page, limit, err := parsePagination(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	listing, err := h.catalog.GamesByCategory(c.Request.Context(), c.Param("slug"), page, limit)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response := CategoryGamesResponse{
		Games:      newGameResponses(listing.Games),
		Pagination: NewPaginationMeta(&listing.GamePage),
	}
	if listing.Category != nil {
		cat := newCategoryResponse(*listing.Category)
		response.Category = &cat
	}
	c.JSON(http.StatusOK, response)
}
