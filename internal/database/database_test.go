package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/pageza/chefai/backend/config"
	"github.com/pageza/chefai/backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOpenSQLite(t *testing.T) {
	cfg := config.Defaults()
	cfg.DBPath = filepath.Join(t.TempDir(), "chefai.db")

	db, err := Open(cfg, zap.NewNop())
	require.NoError(t, err)
	defer Close(db)

	require.NoError(t, RunMigrations(db, zap.NewNop()))
	// migrations are idempotent
	require.NoError(t, RunMigrations(db, zap.NewNop()))

	assert.True(t, db.Migrator().HasTable(&model.Recipe{}))
	assert.True(t, db.Migrator().HasColumn(&model.Recipe{}, "recipe_title"))
	assert.NoError(t, HealthCheck(context.Background(), db))

	recipe := model.Recipe{Title: "Toast", Ingredients: model.StringList{"bread"}}
	require.NoError(t, db.Create(&recipe).Error)
	assert.NotZero(t, recipe.ID)

	var stored model.Recipe
	require.NoError(t, db.First(&stored, recipe.ID).Error)
	assert.Equal(t, model.StringList{"bread"}, stored.Ingredients)
	assert.Equal(t, model.StringList{}, stored.Instructions)
	assert.Nil(t, stored.ImageURL)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	cfg := config.Defaults()
	cfg.DBDriver = "oracle"

	_, err := Open(cfg, zap.NewNop())
	assert.Error(t, err)
}
