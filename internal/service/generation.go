package service

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/pageza/chefai/backend/internal/model"
	"go.uber.org/zap"
)

// GenerateRequest carries the user's input for one generation
type GenerateRequest struct {
	Idea        string `json:"idea"`
	Ingredients string `json:"ingredients"`
	Name        string `json:"name,omitempty"`
}

// Generator turns a request into a stored recipe: text generation, parsing, an optional
// picture and persistence
type Generator struct {
	text    TextGenerator
	images  ImageGenerator
	store   RecipeStore
	timeout time.Duration
	logger  *zap.Logger

	persistFailures atomic.Int64
}

// NewGenerator creates a generator. images may be nil to skip pictures; timeout bounds
// each remote call and is ignored when not positive.
func NewGenerator(text TextGenerator, images ImageGenerator, store RecipeStore, timeout time.Duration, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		text:    text,
		images:  images,
		store:   store,
		timeout: timeout,
		logger:  logger,
	}
}

// Generate runs the pipeline once. Image failures are logged and leave the image unset.
// Persistence failures are logged and counted, and the unsaved recipe is still returned.
func (g *Generator) Generate(ctx context.Context, req GenerateRequest) (*model.Recipe, error) {
	log := g.logger.With(zap.String("idea", req.Idea))

	raw, err := g.generateText(ctx, req)
	if err != nil {
		log.Error("recipe text generation failed", zap.Error(err))
		return nil, err
	}
	log.Debug("raw recipe response", zap.String("content", raw))

	if strings.TrimSpace(raw) == "" {
		log.Warn("recipe response was empty")
		return nil, ErrEmptyResponse
	}

	recipe, err := ParseRecipeResponse(raw)
	if err != nil {
		log.Warn("failed to parse recipe response", zap.Int("length", len(raw)))
		return nil, err
	}

	if strings.TrimSpace(recipe.ImagePrompt) == "" || g.images == nil {
		log.Debug("skipping image generation")
	} else if url, err := g.generateImage(ctx, recipe.ImagePrompt); err != nil {
		log.Warn("image generation failed", zap.Error(err))
	} else {
		*recipe = recipe.WithImageURL(url)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	saved, err := g.store.InsertOrReplace(ctx, recipe)
	if err != nil {
		g.persistFailures.Add(1)
		log.Error("failed to save recipe", zap.String("title", recipe.Title), zap.Error(err))
		return recipe, nil
	}

	log.Info("recipe generated", zap.Uint("id", saved.ID), zap.String("title", saved.Title))
	return saved, nil
}

// PersistFailures returns how many generated recipes could not be saved
func (g *Generator) PersistFailures() int64 {
	return g.persistFailures.Load()
}

func (g *Generator) generateText(ctx context.Context, req GenerateRequest) (string, error) {
	ctx, cancel := g.callContext(ctx)
	defer cancel()

	raw, err := g.text.GenerateText(ctx, TextRequest{
		System: BuildSystemPrompt(),
		User:   BuildUserPrompt(req.Idea, req.Ingredients, req.Name),
	})
	if err != nil {
		var transportErr *TransportError
		if !errors.As(err, &transportErr) {
			err = &TransportError{Op: "chat", Err: err}
		}
		return "", err
	}
	return raw, nil
}

func (g *Generator) generateImage(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := g.callContext(ctx)
	defer cancel()

	url, err := g.images.GenerateImage(ctx, prompt)
	if err != nil {
		return "", &ImageGenerationError{Prompt: prompt, Err: err}
	}
	if strings.TrimSpace(url) == "" {
		return "", &ImageGenerationError{Prompt: prompt, Err: errors.New("empty image URL")}
	}
	return url, nil
}

func (g *Generator) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout > 0 {
		return context.WithTimeout(ctx, g.timeout)
	}
	return context.WithCancel(ctx)
}
