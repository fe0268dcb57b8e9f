package models

import "time"

// Game represents an embeddable HTML5 game in the catalog.
// Slug is the externally addressable identifier; ID is internal.
type Game struct {
	ID               uint   `gorm:"primaryKey"`
	Title            string `gorm:"size:255;not null;index"`
	Slug             string `gorm:"size:255;uniqueIndex;not null"`
	Description      string `gorm:"type:text"`
	Thumbnail        string `gorm:"size:1024"`
	ExternalPlayerID string `gorm:"size:255"`
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Categories []*Category `gorm:"many2many:game_categories;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// GameCategory is a row of the game_categories join table.
type GameCategory struct {
	GameID     uint `gorm:"primaryKey"`
	CategoryID uint `gorm:"primaryKey"`
}

func (GameCategory) TableName() string {
	return "game_categories"
}

// GameWithCategories is a game with its resolved categories. It is built on every
// read and never persisted.
type GameWithCategories struct {
	Game       Game
	Categories []Category
}
