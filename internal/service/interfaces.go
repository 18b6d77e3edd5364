package service

import (
	"context"

	"github.com/pageza/chefai/backend/internal/model"
)

// TextRequest is one prompt pair sent to a text model
type TextRequest struct {
	System string
	User   string
	// Model overrides the client's configured model when set
	Model string
}

// TextGenerator produces the raw recipe text for a prompt pair
type TextGenerator interface {
	GenerateText(ctx context.Context, req TextRequest) (string, error)
}

// ImageGenerator produces a picture of a dish and returns where it can be fetched
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

// RecipeStore persists generated recipes
type RecipeStore interface {
	InsertOrReplace(ctx context.Context, recipe *model.Recipe) (*model.Recipe, error)
}

// RecipeGenerator runs one complete generation
type RecipeGenerator interface {
	Generate(ctx context.Context, req GenerateRequest) (*model.Recipe, error)
}
