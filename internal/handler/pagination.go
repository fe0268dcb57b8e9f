package handler

import (
	"strconv"

	"github.com/AhmedSarhan/gamer-boy/internal/apperr"
	"github.com/AhmedSarhan/gamer-boy/internal/catalog"

	"github.com/gin-gonic/gin"
)

// PaginationMeta defines the structure for pagination metadata.
type PaginationMeta struct {
	Page    int   `json:"page" example:"1"`
	Limit   int   `json:"limit" example:"12"`
	Total   int64 `json:"total" example:"42"`
	HasMore bool  `json:"hasMore" example:"true"`
}

// NewPaginationMeta builds the metadata for a listing page.
func NewPaginationMeta(p *catalog.GamePage) PaginationMeta {
	return PaginationMeta{
		Page:    p.Page,
		Limit:   p.Limit,
		Total:   p.TotalCount,
		HasMore: p.HasMore(),
	}
}

// parsePagination reads page and limit. Missing values take the defaults, a limit over
// the maximum is capped, and non-numeric, non-positive or out-of-range pages are rejected.
func parsePagination(c *gin.Context) (page, limit int, err error) {
	page, err = positiveQueryInt(c, "page", catalog.DefaultPage)
	if err != nil {
		return 0, 0, err
	}
	if page > catalog.MaxPage {
		return 0, 0, apperr.Validationf(map[string]any{"field": "page", "max": catalog.MaxPage}, "page must be at most %d", catalog.MaxPage)
	}
	limit, err = positiveQueryInt(c, "limit", catalog.DefaultLimit)
	if err != nil {
		return 0, 0, err
	}
	if limit > catalog.MaxLimit {
		limit = catalog.MaxLimit
	}
	return page, limit, nil
}

func positiveQueryInt(c *gin.Context, name string, def int) (int, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.BadRequestf("%s must be an integer", name)
	}
	if n < 1 {
		return 0, apperr.Validationf(map[string]any{"field": name, "min": 1}, "%s must be at least 1", name)
	}
	return n, nil
}
