package api

import (
	"strings"

	"github.com/pageza/chefai/backend/internal/model"
	"github.com/pageza/chefai/backend/internal/service"
)

// GenerateRecipeRequest is the body of both generation endpoints
type GenerateRecipeRequest struct {
	Idea        string `json:"idea"`
	Ingredients string `json:"ingredients"`
	Name        string `json:"name"`
}

// Validate checks that the idea and ingredients were filled in
func (r GenerateRecipeRequest) Validate() error {
	if strings.TrimSpace(r.Idea) == "" || strings.TrimSpace(r.Ingredients) == "" {
		return errMissingInput
	}
	return nil
}

func (r GenerateRecipeRequest) toService() service.GenerateRequest {
	return service.GenerateRequest{
		Idea:        strings.TrimSpace(r.Idea),
		Ingredients: strings.TrimSpace(r.Ingredients),
		Name:        strings.TrimSpace(r.Name),
	}
}

// RecipeListResponse is one snapshot of a recipe list or search
type RecipeListResponse struct {
	Query   string         `json:"query"`
	Count   int            `json:"count"`
	Recipes []model.Recipe `json:"recipes"`
}

// StateResponse describes a generation session state
type StateResponse struct {
	State  string        `json:"state"`
	Recipe *model.Recipe `json:"recipe,omitempty"`
	Error  string        `json:"error,omitempty"`
}

func newStateResponse(state service.State) StateResponse {
	resp := StateResponse{State: state.Name()}
	switch s := state.(type) {
	case service.StateSuccess:
		resp.Recipe = s.Recipe
	case service.StateError:
		resp.Error = s.Message
	}
	return resp
}

func newListResponse(key string, recipes []model.Recipe) RecipeListResponse {
	return RecipeListResponse{Query: key, Count: len(recipes), Recipes: recipes}
}
