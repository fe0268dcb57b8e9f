package models

import "time"

// Rating is one anonymous score for a game. At most one row exists per
// (GameID, UserFingerprint); the unique index backs the upsert in the rating service.
type Rating struct {
	ID              uint      `gorm:"primaryKey"`
	GameID          uint      `gorm:"not null;uniqueIndex:idx_ratings_game_fingerprint,priority:1"`
	UserFingerprint string    `gorm:"size:64;not null;uniqueIndex:idx_ratings_game_fingerprint,priority:2"`
	Rating          int       `gorm:"not null;check:chk_ratings_range,rating >= 1 AND rating <= 5"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime"`

	Game Game `gorm:"foreignKey:GameID;constraint:OnDelete:CASCADE;"`
}
