package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/AhmedSarhan/gamer-boy/internal/database"
	"github.com/AhmedSarhan/gamer-boy/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogJSON = `{
  "categories": [{"name": "Puzzle", "slug": "puzzle"}],
  "games": [{"title": "Block Puzzle", "slug": "block-puzzle", "categories": ["puzzle"]}]
}`

func TestMigrateAndSeedCommands(t *testing.T) {
	dir := t.TempDir()
	dsn := "file:" + filepath.Join(dir, "test.db") + "?_pragma=foreign_keys(1)"
	catalogPath := filepath.Join(dir, "catalog.json")
	require.NoError(t, os.WriteFile(catalogPath, []byte(catalogJSON), 0o600))

	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", dsn)
	t.Setenv("LOG_LEVEL", "error")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"migrate"})
	require.NoError(t, cmd.Execute())

	cmd = newRootCmd()
	cmd.SetArgs([]string{"seed", catalogPath})
	require.NoError(t, cmd.Execute())

	db, err := database.Open("sqlite", dsn)
	require.NoError(t, err)
	defer database.Close(db)

	var games int64
	require.NoError(t, db.Model(&models.Game{}).Count(&games).Error)
	assert.EqualValues(t, 1, games)
}

func TestSeedWithoutCatalogFails(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", "file:"+filepath.Join(t.TempDir(), "x.db"))
	t.Setenv("SEED_FILE", "")
	t.Setenv("LOG_LEVEL", "error")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"seed"})
	assert.ErrorContains(t, cmd.Execute(), "no catalog given")
}

func TestInvalidDriverFlag(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"migrate", "--db-driver", "mysql"})
	assert.ErrorContains(t, cmd.Execute(), "unsupported DB_DRIVER")
}
