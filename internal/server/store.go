package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/pageza/chefai/backend/config"
	"github.com/pageza/chefai/backend/internal/database"
	"github.com/pageza/chefai/backend/internal/repository"
	"github.com/pageza/chefai/backend/internal/service"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Store bundles the database, the optional Redis client and the recipe repository
type Store struct {
	DB       *gorm.DB
	Redis    *redis.Client
	Notifier repository.Notifier
	Recipes  *repository.RecipeRepository

	logger *zap.Logger
}

// OpenStore connects to the configured database, migrates it and opens the recipe
// repository. Redis is optional unless it carries change notifications.
func OpenStore(cfg *config.Config, logger *zap.Logger) (*Store, error) {
	db, err := database.Open(cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := database.RunMigrations(db, logger); err != nil {
		_ = database.Close(db)
		return nil, err
	}

	store := &Store{DB: db, logger: logger}

	if cfg.RedisConfigured() {
		rdb, err := database.NewRedisClient(cfg, logger)
		if err != nil {
			if cfg.Notifier == config.NotifierRedis {
				_ = store.Close()
				return nil, err
			}
			// Continue without rate limiting if Redis is not available
			logger.Warn("redis unavailable, continuing without it", zap.Error(err))
		} else {
			store.Redis = rdb
		}
	}

	notifier, err := repository.NewNotifier(cfg, db, store.Redis, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	store.Notifier = notifier
	store.Recipes = repository.NewRecipeRepository(db, notifier, logger, cfg.LiveQueryGrace)
	return store, nil
}

// Close stops the live queries and releases every connection
func (s *Store) Close() error {
	var errs []error
	if s.Recipes != nil {
		s.Recipes.Close()
	}
	if s.Notifier != nil {
		errs = append(errs, s.Notifier.Close())
	}
	if s.Redis != nil {
		errs = append(errs, s.Redis.Close())
	}
	if s.DB != nil {
		errs = append(errs, database.Close(s.DB))
	}
	return errors.Join(errs...)
}

// NewTextGenerator builds the client of the configured text provider
func NewTextGenerator(ctx context.Context, cfg *config.Config, logger *zap.Logger) (service.TextGenerator, error) {
	if err := config.RequireTextProvider(cfg); err != nil {
		return nil, err
	}
	switch cfg.LLMProvider {
	case config.ProviderGemini:
		return service.NewGenAITextClient(ctx, cfg.GeminiAPIKey, "", cfg.GeminiModel, cfg.LLMTimeout, logger)
	case config.ProviderOpenAI:
		return service.NewOpenAIChatClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.ChatModel, cfg.LLMTimeout, logger)
	default:
		return nil, fmt.Errorf("unsupported text provider %q", cfg.LLMProvider)
	}
}

// NewImageGenerator builds the picture client, re-hosting images on S3 when a bucket is
// configured. It returns nil when pictures are disabled.
func NewImageGenerator(ctx context.Context, cfg *config.Config, logger *zap.Logger) (service.ImageGenerator, error) {
	if !cfg.ImagesEnabled() {
		logger.Info("no OpenAI API key configured, recipes will be generated without pictures")
		return nil, nil
	}

	s3Config, err := config.NewS3Config(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return service.NewOpenAIImageClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.ImageModel, cfg.LLMTimeout, s3Config, logger)
}

// NewGenerator wires the full generation pipeline over store
func NewGenerator(ctx context.Context, cfg *config.Config, store *Store, logger *zap.Logger) (*service.Generator, error) {
	text, err := NewTextGenerator(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	images, err := NewImageGenerator(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return service.NewGenerator(text, images, store.Recipes, cfg.LLMTimeout, logger), nil
}
