package seed

import (
	"context"
	"strings"
	"testing"

	"github.com/AhmedSarhan/gamer-boy/internal/database"
	"github.com/AhmedSarhan/gamer-boy/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadFileAndApply(t *testing.T) {
	db, err := database.Open("sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	c, err := ReadFile("testdata/catalog.json")
	require.NoError(t, err)

	res, err := Apply(context.Background(), db, c)
	require.NoError(t, err)
	assert.EqualValues(t, 3, res.Categories)
	assert.EqualValues(t, 3, res.Games)
	assert.EqualValues(t, 3, res.Links)

	var game models.Game
	require.NoError(t, db.Preload("Categories").Where("slug = ?", "super-runner").First(&game).Error)
	assert.Equal(t, "sr-1024", game.ExternalPlayerID)
	assert.Len(t, game.Categories, 2)

	// A second run is a no-op.
	res, err = Apply(context.Background(), db, c)
	require.NoError(t, err)
	assert.Zero(t, res.Categories)
	assert.Zero(t, res.Games)
	assert.Zero(t, res.Links)

	var links int64
	require.NoError(t, db.Model(&models.GameCategory{}).Count(&links).Error)
	assert.EqualValues(t, 3, links)
}

func TestDecodeRejectsInvalidCatalogs(t *testing.T) {
	cases := map[string]string{
		"bad slug":         `{"categories":[{"name":"Action","slug":"Action Games"}]}`,
		"unknown category": `{"categories":[],"games":[{"title":"A","slug":"a","categories":["x"]}]}`,
		"duplicate game":   `{"games":[{"title":"A","slug":"a"},{"title":"B","slug":"a"}]}`,
		"missing title":    `{"games":[{"slug":"a"}]}`,
		"unknown field":    `{"games":[],"extra":true}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(body))
			assert.Error(t, err)
		})
	}
}
