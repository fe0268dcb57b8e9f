package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/AhmedSarhan/gamer-boy/internal/apperr"
	"github.com/AhmedSarhan/gamer-boy/internal/models"

	"gorm.io/gorm"
)

// Service answers paginated, filtered and category-annotated catalog reads.
// Categories are always attached with one join query per result set, never per row.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// ListGames returns one page of games matching f together with the total match count.
func (s *Service) ListGames(ctx context.Context, f GameFilter) (*GamePage, error) {
	f = f.Normalize()
	page := &GamePage{Games: []models.GameWithCategories{}, Page: f.Page, Limit: f.Limit}

	query := s.db.WithContext(ctx).Model(&models.Game{})

	if len(f.Categories) > 0 {
		var categoryIDs []uint
		err := s.db.WithContext(ctx).Model(&models.Category{}).
			Where("slug IN ?", f.Categories).
			Pluck("id", &categoryIDs).Error
		if err != nil {
			return nil, apperr.DB(err, "resolve categories")
		}
		// Unknown slugs never widen the search to the whole catalog.
		if len(categoryIDs) == 0 {
			return page, nil
		}
		matching := s.db.Model(&models.GameCategory{}).
			Select("game_id").
			Where("category_id IN ?", categoryIDs)
		query = query.Where("games.id IN (?)", matching)
	}

	if f.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(f.Search)) + "%"
		query = query.Where(`LOWER(games.title) LIKE ? ESCAPE '\'`, pattern)
	}

	base := query.Session(&gorm.Session{})

	if err := base.Count(&page.TotalCount).Error; err != nil {
		return nil, apperr.DB(err, "count games")
	}

	var games []models.Game
	err := base.
		Order("games.created_at DESC").
		Order("games.id DESC").
		Offset(f.offset()).
		Limit(f.Limit).
		Find(&games).Error
	if err != nil {
		return nil, apperr.DB(err, "list games")
	}

	page.Games, err = s.attachCategories(ctx, games)
	if err != nil {
		return nil, err
	}
	return page, nil
}

// GamesByIDs returns the games for ids in the order of ids. Unknown ids are dropped and
// repeated ids keep their first position.
func (s *Service) GamesByIDs(ctx context.Context, ids []uint) ([]models.GameWithCategories, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return []models.GameWithCategories{}, nil
	}
	if len(ids) > MaxIDs {
		return nil, apperr.Validationf(map[string]int{"max": MaxIDs, "got": len(ids)},
			"at most %d ids may be requested at once", MaxIDs)
	}

	var games []models.Game
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&games).Error; err != nil {
		return nil, apperr.DB(err, "games by ids")
	}

	byID := make(map[uint]models.Game, len(games))
	for _, g := range games {
		byID[g.ID] = g
	}
	ordered := make([]models.Game, 0, len(games))
	for _, id := range ids {
		if g, ok := byID[id]; ok {
			ordered = append(ordered, g)
		}
	}
	return s.attachCategories(ctx, ordered)
}

// GamesByCategory lists the games of a single category.
func (s *Service) GamesByCategory(ctx context.Context, slug string, page, limit int) (*CategoryPage, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))

	var category models.Category
	err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		f := GameFilter{Page: page, Limit: limit}.Normalize()
		return &CategoryPage{GamePage: GamePage{
			Games: []models.GameWithCategories{},
			Page:  f.Page,
			Limit: f.Limit,
		}}, nil
	}
	if err != nil {
		return nil, apperr.DB(err, "find category")
	}

	listing, err := s.ListGames(ctx, GameFilter{Categories: []string{slug}, Page: page, Limit: limit})
	if err != nil {
		return nil, err
	}
	return &CategoryPage{Category: &category, GamePage: *listing}, nil
}

// GameBySlug returns a single game with its categories.
func (s *Service) GameBySlug(ctx context.Context, slug string) (*models.GameWithCategories, error) {
	var game models.Game
	err := s.db.WithContext(ctx).Where("slug = ?", strings.TrimSpace(slug)).First(&game).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFoundf("game %q not found", slug)
	}
	if err != nil {
		return nil, apperr.DB(err, "find game")
	}

	out, err := s.attachCategories(ctx, []models.Game{game})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// RelatedGames ranks other games by how many categories they share with gameID.
// Equal counts are ordered by ascending game id.
func (s *Service) RelatedGames(ctx context.Context, gameID uint, limit int) ([]models.GameWithCategories, error) {
	if limit <= 0 {
		limit = DefaultRelatedLimit
	}
	if limit > MaxRelatedLimit {
		limit = MaxRelatedLimit
	}

	var categoryIDs []uint
	err := s.db.WithContext(ctx).Model(&models.GameCategory{}).
		Where("game_id = ?", gameID).
		Pluck("category_id", &categoryIDs).Error
	if err != nil {
		return nil, apperr.DB(err, "target categories")
	}
	if len(categoryIDs) == 0 {
		return []models.GameWithCategories{}, nil
	}

	type candidate struct {
		GameID uint
		Shared int64
	}
	var candidates []candidate
	err = s.db.WithContext(ctx).Model(&models.GameCategory{}).
		Select("game_id, COUNT(DISTINCT category_id) AS shared").
		Where("category_id IN ? AND game_id <> ?", categoryIDs, gameID).
		Group("game_id").
		Order("shared DESC").
		Order("game_id ASC").
		Limit(limit).
		Find(&candidates).Error
	if err != nil {
		return nil, apperr.DB(err, "related games")
	}

	ids := make([]uint, len(candidates))
	for i, c := range candidates {
		ids[i] = c.GameID
	}
	return s.GamesByIDs(ctx, ids)
}

// AllCategories returns every category ordered by name.
func (s *Service) AllCategories(ctx context.Context) ([]models.Category, error) {
	categories := []models.Category{}
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, apperr.DB(err, "list categories")
	}
	return categories, nil
}

type gameCategoryRow struct {
	GameID    uint
	ID        uint
	Name      string
	Slug      string
	CreatedAt time.Time
}

// attachCategories resolves the categories of games with a single join query and
// returns the games in their original order.
func (s *Service) attachCategories(ctx context.Context, games []models.Game) ([]models.GameWithCategories, error) {
	out := make([]models.GameWithCategories, len(games))
	if len(games) == 0 {
		return out, nil
	}

	ids := make([]uint, len(games))
	for i, g := range games {
		ids[i] = g.ID
	}

	var rows []gameCategoryRow
	err := s.db.WithContext(ctx).Table("game_categories").
		Select("game_categories.game_id, categories.id, categories.name, categories.slug, categories.created_at").
		Joins("JOIN categories ON categories.id = game_categories.category_id").
		Where("game_categories.game_id IN ?", ids).
		Order("categories.name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, apperr.DB(err, "attach categories")
	}

	byGame := make(map[uint][]models.Category, len(games))
	for _, r := range rows {
		byGame[r.GameID] = append(byGame[r.GameID], models.Category{
			ID:        r.ID,
			Name:      r.Name,
			Slug:      r.Slug,
			CreatedAt: r.CreatedAt,
		})
	}

	for i, g := range games {
		cats := byGame[g.ID]
		if cats == nil {
			cats = []models.Category{}
		}
		out[i] = models.GameWithCategories{Game: g, Categories: cats}
	}
	return out, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
