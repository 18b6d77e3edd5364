package mocks

import (
	"context"

	"github.com/pageza/chefai/backend/internal/model"
	"github.com/pageza/chefai/backend/internal/service"
	"github.com/stretchr/testify/mock"
)

// MockTextGenerator is a mock implementation of service.TextGenerator
type MockTextGenerator struct {
	mock.Mock
}

// GenerateText mocks the GenerateText method
func (m *MockTextGenerator) GenerateText(ctx context.Context, req service.TextRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

// MockImageGenerator is a mock implementation of service.ImageGenerator
type MockImageGenerator struct {
	mock.Mock
}

// GenerateImage mocks the GenerateImage method
func (m *MockImageGenerator) GenerateImage(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

// MockRecipeStore is a mock implementation of service.RecipeStore
type MockRecipeStore struct {
	mock.Mock
}

// InsertOrReplace mocks the InsertOrReplace method
func (m *MockRecipeStore) InsertOrReplace(ctx context.Context, recipe *model.Recipe) (*model.Recipe, error) {
	args := m.Called(ctx, recipe)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recipe), args.Error(1)
}

// MockRecipeGenerator is a mock implementation of service.RecipeGenerator
type MockRecipeGenerator struct {
	mock.Mock
}

// Generate mocks the Generate method
func (m *MockRecipeGenerator) Generate(ctx context.Context, req service.GenerateRequest) (*model.Recipe, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recipe), args.Error(1)
}
