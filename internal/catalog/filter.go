package catalog

import (
	"math"
	"strings"

	"github.com/AhmedSarhan/gamer-boy/internal/models"
)

const (
	DefaultPage  = 1
	DefaultLimit = 12
	MaxLimit     = 100

	// MaxPage keeps (page-1)*limit within an int32 offset.
	MaxPage = math.MaxInt32 / MaxLimit

	// MaxIDs bounds a single GamesByIDs lookup.
	MaxIDs = 100

	DefaultRelatedLimit = 6
	MaxRelatedLimit     = 24

	// AllCategories is the sentinel slug meaning "no category filter".
	AllCategories = "all"
)

// GameFilter selects a page of games. Categories are matched with OR semantics and
// ANDed with the title search.
type GameFilter struct {
	Search     string
	Categories []string
	Page       int
	Limit      int
}

// Normalize applies defaults and bounds. An empty search or a category list holding
// only blanks, or holding the "all" sentinel, disables the respective filter.
func (f GameFilter) Normalize() GameFilter {
	if f.Page < 1 {
		f.Page = DefaultPage
	}
	if f.Page > MaxPage {
		f.Page = MaxPage
	}
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	f.Search = strings.TrimSpace(f.Search)
	f.Categories = normalizeSlugs(f.Categories)
	return f
}

func (f GameFilter) offset() int {
	return (f.Page - 1) * f.Limit
}

func normalizeSlugs(slugs []string) []string {
	var out []string
	seen := make(map[string]bool, len(slugs))
	for _, s := range slugs {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == AllCategories {
			return nil
		}
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// escapeLike escapes LIKE metacharacters so user input matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// GamePage is one page of a filtered listing.
type GamePage struct {
	Games      []models.GameWithCategories
	TotalCount int64
	Page       int
	Limit      int
}

// HasMore reports whether pages after this one exist.
func (p *GamePage) HasMore() bool {
	if p.Limit <= 0 || p.TotalCount <= 0 {
		return false
	}
	return int64(p.Page) <= (p.TotalCount-1)/int64(p.Limit)
}

// CategoryPage is a listing scoped to a single category. Category is nil when the
// slug is unknown.
type CategoryPage struct {
	Category *models.Category
	GamePage
}
