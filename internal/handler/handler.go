package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/AhmedSarhan/gamer-boy/internal/apperr"
	"github.com/AhmedSarhan/gamer-boy/internal/catalog"
	"github.com/AhmedSarhan/gamer-boy/internal/hub"
	"github.com/AhmedSarhan/gamer-boy/internal/models"
	"github.com/AhmedSarhan/gamer-boy/internal/rating"

	"github.com/gin-gonic/gin"
)

// MaxSearchLength bounds the q parameter of listings.
const MaxSearchLength = 100

// Handler serves the catalog and rating endpoints.
type Handler struct {
	catalog *catalog.Service
	ratings *rating.Service
	hub     *hub.Hub

	// streamKeepAlive is the interval of comment frames on rating streams.
	streamKeepAlive time.Duration
}

func New(catalogSvc *catalog.Service, ratingSvc *rating.Service, h *hub.Hub) *Handler {
	return &Handler{
		catalog:         catalogSvc,
		ratings:         ratingSvc,
		hub:             h,
		streamKeepAlive: 25 * time.Second,
	}
}

// region --- DTOs ---

type CategoryResponse struct {
	ID        uint      `json:"id" example:"3"`
	Name      string    `json:"name" example:"Puzzle"`
	Slug      string    `json:"slug" example:"puzzle"`
	CreatedAt time.Time `json:"createdAt"`
}

func newCategoryResponse(cat models.Category) CategoryResponse {
	return CategoryResponse{
		ID:        cat.ID,
		Name:      cat.Name,
		Slug:      cat.Slug,
		CreatedAt: cat.CreatedAt,
	}
}

type GameResponse struct {
	ID               uint               `json:"id" example:"1"`
	Title            string             `json:"title" example:"Super Runner"`
	Slug             string             `json:"slug" example:"super-runner"`
	Description      string             `json:"description"`
	Thumbnail        string             `json:"thumbnail"`
	ExternalPlayerID string             `json:"externalPlayerId"`
	CreatedAt        time.Time          `json:"createdAt"`
	UpdatedAt        time.Time          `json:"updatedAt"`
	Categories       []CategoryResponse `json:"categories"`
}

func newGameResponse(g models.GameWithCategories) GameResponse {
	categories := make([]CategoryResponse, 0, len(g.Categories))
	for _, cat := range g.Categories {
		categories = append(categories, newCategoryResponse(cat))
	}
	return GameResponse{
		ID:               g.Game.ID,
		Title:            g.Game.Title,
		Slug:             g.Game.Slug,
		Description:      g.Game.Description,
		Thumbnail:        g.Game.Thumbnail,
		ExternalPlayerID: g.Game.ExternalPlayerID,
		CreatedAt:        g.Game.CreatedAt,
		UpdatedAt:        g.Game.UpdatedAt,
		Categories:       categories,
	}
}

func newGameResponses(games []models.GameWithCategories) []GameResponse {
	out := make([]GameResponse, 0, len(games))
	for _, g := range games {
		out = append(out, newGameResponse(g))
	}
	return out
}

// endregion

// Helper to split comma-separated strings
func splitCommaSeparated(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// queryList collects a query parameter given either repeated or comma-separated.
func queryList(c *gin.Context, name string) []string {
	var out []string
	for _, v := range c.QueryArray(name) {
		out = append(out, splitCommaSeparated(v)...)
	}
	return out
}

func parseID(raw, name string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 32)
	if err != nil || id == 0 {
		return 0, apperr.BadRequestf("invalid %s %q", name, raw)
	}
	return uint(id), nil
}
