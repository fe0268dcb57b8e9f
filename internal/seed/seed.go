// Package seed loads a JSON catalog of categories and games into the database.
// Loading is idempotent: existing slugs and category links are left untouched.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"

	"github.com/AhmedSarhan/gamer-boy/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

type Catalog struct {
	Categories []Category `json:"categories"`
	Games      []Game     `json:"games"`
}

type Category struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type Game struct {
	Title            string   `json:"title"`
	Slug             string   `json:"slug"`
	Description      string   `json:"description"`
	Thumbnail        string   `json:"thumbnail"`
	ExternalPlayerID string   `json:"externalPlayerId"`
	Categories       []string `json:"categories"`
}

// Result counts the rows written by Apply.
type Result struct {
	Categories int64
	Games      int64
	Links      int64
}

// ReadFile decodes the catalog stored at path.
func ReadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads and validates a catalog.
func Decode(r io.Reader) (*Catalog, error) {
	var c Catalog
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decode seed catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks slugs and that every referenced category is declared.
func (c *Catalog) Validate() error {
	declared := make(map[string]bool, len(c.Categories))
	for _, cat := range c.Categories {
		if !slugPattern.MatchString(cat.Slug) {
			return fmt.Errorf("category %q: invalid slug %q", cat.Name, cat.Slug)
		}
		if cat.Name == "" {
			return fmt.Errorf("category %q: name is required", cat.Slug)
		}
		declared[cat.Slug] = true
	}

	games := make(map[string]bool, len(c.Games))
	for _, g := range c.Games {
		if !slugPattern.MatchString(g.Slug) {
			return fmt.Errorf("game %q: invalid slug %q", g.Title, g.Slug)
		}
		if g.Title == "" {
			return fmt.Errorf("game %q: title is required", g.Slug)
		}
		if games[g.Slug] {
			return fmt.Errorf("game %q declared twice", g.Slug)
		}
		games[g.Slug] = true
		for _, s := range g.Categories {
			if !declared[s] {
				return fmt.Errorf("game %q references unknown category %q", g.Slug, s)
			}
		}
	}
	return nil
}

// Apply writes the catalog inside one transaction.
func Apply(ctx context.Context, db *gorm.DB, c *Catalog) (Result, error) {
	var res Result
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(c.Categories) > 0 {
			rows := make([]models.Category, len(c.Categories))
			for i, cat := range c.Categories {
				rows[i] = models.Category{Name: cat.Name, Slug: cat.Slug}
			}
			r := tx.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "slug"}}, DoNothing: true}).Create(&rows)
			if r.Error != nil {
				return fmt.Errorf("insert categories: %w", r.Error)
			}
			res.Categories = r.RowsAffected
		}

		if len(c.Games) == 0 {
			return nil
		}

		rows := make([]models.Game, len(c.Games))
		slugs := make([]string, len(c.Games))
		for i, g := range c.Games {
			rows[i] = models.Game{
				Title:            g.Title,
				Slug:             g.Slug,
				Description:      g.Description,
				Thumbnail:        g.Thumbnail,
				ExternalPlayerID: g.ExternalPlayerID,
			}
			slugs[i] = g.Slug
		}
		r := tx.Omit(clause.Associations).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "slug"}}, DoNothing: true}).
			Create(&rows)
		if r.Error != nil {
			return fmt.Errorf("insert games: %w", r.Error)
		}
		res.Games = r.RowsAffected

		gameIDs, err := idsBySlug(tx, &models.Game{}, slugs)
		if err != nil {
			return err
		}
		categoryIDs, err := idsBySlug(tx, &models.Category{}, nil)
		if err != nil {
			return err
		}

		var links []models.GameCategory
		for _, g := range c.Games {
			for _, s := range g.Categories {
				links = append(links, models.GameCategory{GameID: gameIDs[g.Slug], CategoryID: categoryIDs[s]})
			}
		}
		if len(links) == 0 {
			return nil
		}
		r = tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&links)
		if r.Error != nil {
			return fmt.Errorf("link categories: %w", r.Error)
		}
		res.Links = r.RowsAffected
		return nil
	})
	return res, err
}

// idsBySlug maps slug to id for model rows; a nil slugs list loads every row.
func idsBySlug(tx *gorm.DB, model any, slugs []string) (map[string]uint, error) {
	var rows []struct {
		ID   uint
		Slug string
	}
	q := tx.Model(model).Select("id, slug")
	if slugs != nil {
		q = q.Where("slug IN ?", slugs)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("resolve slugs: %w", err)
	}
	out := make(map[string]uint, len(rows))
	for _, r := range rows {
		out[r.Slug] = r.ID
	}
	return out, nil
}
