// Package rating records one anonymous rating per (game, fingerprint) and reports
// per-game averages.
package rating

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/AhmedSarhan/gamer-boy/internal/apperr"
	"github.com/AhmedSarhan/gamer-boy/internal/models"

	"golang.org/x/crypto/blake2b"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	MinRating = 1
	MaxRating = 5

	// MaxFingerprintLength bounds the client token before hashing.
	MaxFingerprintLength = 256
)

// Summary is the aggregate rating of a game. UserRating is nil when no fingerprint
// was given or the fingerprint has not rated the game.
type Summary struct {
	GameID        uint
	AverageRating float64
	TotalRatings  int64
	UserRating    *int
}

// Display renders the average for humans; games without ratings show "No ratings".
func (s Summary) Display() string {
	if s.TotalRatings == 0 {
		return "No ratings"
	}
	return fmt.Sprintf("%.1f", s.AverageRating)
}

// SubmitInput is the body of a rating submission.
type SubmitInput struct {
	Rating      int
	Fingerprint string
}

// Publisher receives fresh summaries after a rating is stored.
type Publisher interface {
	PublishRating(s Summary)
}

type Service struct {
	db        *gorm.DB
	publisher Publisher
}

func NewService(db *gorm.DB, publisher Publisher) *Service {
	return &Service{db: db, publisher: publisher}
}

// Summary returns the average and count for gameID and, when fingerprint is set, the
// fingerprint's own rating.
func (s *Service) Summary(ctx context.Context, gameID uint, fingerprint string) (*Summary, error) {
	if gameID == 0 {
		return nil, apperr.BadRequestf("invalid game id")
	}
	fingerprint = strings.TrimSpace(fingerprint)
	if len(fingerprint) > MaxFingerprintLength {
		return nil, apperr.BadRequestf("fingerprint must be at most %d characters", MaxFingerprintLength)
	}

	db := s.db.WithContext(ctx)
	sum, err := aggregate(db, gameID)
	if err != nil {
		return nil, err
	}
	if fingerprint == "" {
		return sum, nil
	}

	var own models.Rating
	err = db.Where("game_id = ? AND user_fingerprint = ?", gameID, HashFingerprint(fingerprint)).
		First(&own).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
	case err != nil:
		return nil, apperr.DB(err, "find user rating")
	default:
		sum.UserRating = &own.Rating
	}
	return sum, nil
}

// Submit stores in.Rating for (gameID, in.Fingerprint), replacing an earlier rating
// from the same fingerprint, and returns the recomputed summary.
func (s *Service) Submit(ctx context.Context, gameID uint, in SubmitInput) (*Summary, error) {
	if gameID == 0 {
		return nil, apperr.BadRequestf("invalid game id")
	}
	if in.Rating < MinRating || in.Rating > MaxRating {
		return nil, apperr.BadRequestf("rating must be an integer between %d and %d", MinRating, MaxRating)
	}
	fingerprint := strings.TrimSpace(in.Fingerprint)
	if fingerprint == "" {
		return nil, apperr.BadRequestf("fingerprint is required")
	}
	if len(fingerprint) > MaxFingerprintLength {
		return nil, apperr.BadRequestf("fingerprint must be at most %d characters", MaxFingerprintLength)
	}

	var sum *Summary
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&models.Game{}).Where("id = ?", gameID).Count(&exists).Error; err != nil {
			return apperr.DB(err, "find game")
		}
		if exists == 0 {
			return apperr.BadRequestf("game %d not found", gameID)
		}

		row := models.Rating{
			GameID:          gameID,
			UserFingerprint: HashFingerprint(fingerprint),
			Rating:          in.Rating,
		}
		err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "game_id"}, {Name: "user_fingerprint"}},
			DoUpdates: clause.Assignments(map[string]any{"rating": in.Rating, "updated_at": time.Now()}),
		}).Create(&row).Error
		if err != nil {
			return apperr.DB(err, "upsert rating")
		}

		sum, err = aggregate(tx, gameID)
		return err
	})
	if err != nil {
		return nil, err
	}

	rating := in.Rating
	sum.UserRating = &rating
	if s.publisher != nil {
		s.publisher.PublishRating(*sum)
	}
	return sum, nil
}

func aggregate(db *gorm.DB, gameID uint) (*Summary, error) {
	var agg struct {
		Average float64
		Total   int64
	}
	err := db.Model(&models.Rating{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS total").
		Where("game_id = ?", gameID).
		Scan(&agg).Error
	if err != nil {
		return nil, apperr.DB(err, "aggregate ratings")
	}
	return &Summary{
		GameID:        gameID,
		AverageRating: RoundAverage(agg.Average),
		TotalRatings:  agg.Total,
	}, nil
}

// RoundAverage rounds to one decimal place for display; stored ratings stay integers.
func RoundAverage(avg float64) float64 {
	return math.Round(avg*10) / 10
}

// HashFingerprint returns the hex BLAKE2b-256 digest stored in place of the raw token.
func HashFingerprint(fingerprint string) string {
	sum := blake2b.Sum256([]byte(fingerprint))
	return hex.EncodeToString(sum[:])
}
