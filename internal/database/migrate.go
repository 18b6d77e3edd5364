package database

import (
	"fmt"

	"github.com/pageza/chefai/backend/internal/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RunMigrations creates or updates the recipe schema
func RunMigrations(db *gorm.DB, log *zap.Logger) error {
	log.Info("running auto-migration", zap.String("dialect", db.Dialector.Name()))
	if err := db.AutoMigrate(&model.Recipe{}); err != nil {
		return fmt.Errorf("failed to migrate recipes table: %w", err)
	}

	return nil
}
