package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pageza/chefai/backend/internal/model"
	"github.com/pageza/chefai/backend/internal/repository"
	"github.com/pageza/chefai/backend/internal/service"
	"go.uber.org/zap"
)

// RecipeRepository is the part of the recipe store the handlers use
type RecipeRepository interface {
	Get(ctx context.Context, id uint) (*model.Recipe, error)
	InsertOrReplace(ctx context.Context, recipe *model.Recipe) (*model.Recipe, error)
	ListAll() *repository.LiveQuery
	Search(title string) *repository.LiveQuery
}

type RecipeHandler struct {
	recipes   RecipeRepository
	generator service.RecipeGenerator
	logger    *zap.Logger
}

func NewRecipeHandler(recipes RecipeRepository, generator service.RecipeGenerator, logger *zap.Logger) *RecipeHandler {
	return &RecipeHandler{
		recipes:   recipes,
		generator: generator,
		logger:    logger,
	}
}

// GenerateRecipe runs one generation for this request and returns the stored recipe
func (h *RecipeHandler) GenerateRecipe(c *gin.Context) {
	var req GenerateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, StateResponse{State: "error", Error: errInvalidBody.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(statusFor(err), StateResponse{State: "error", Error: err.Error()})
		return
	}

	recipe, err := h.generator.Generate(c.Request.Context(), req.toService())
	if err != nil {
		h.logger.Warn("recipe generation failed", zap.String("idea", req.Idea), zap.Error(err))
		c.JSON(statusFor(err), StateResponse{State: "error", Error: service.UserMessage(err)})
		return
	}

	c.JSON(http.StatusCreated, StateResponse{State: "success", Recipe: recipe})
}

// ListRecipes returns the current result of the list or, with ?q=, the title search
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	query := h.query(c)

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	snap, ok := <-query.Subscribe(ctx)
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "request cancelled"})
		return
	}
	if snap.Err != nil {
		h.logger.Error("failed to list recipes", zap.String("query", query.Key()), zap.Error(snap.Err))
		c.JSON(statusFor(snap.Err), gin.H{"error": "Failed to fetch recipes"})
		return
	}

	c.JSON(http.StatusOK, newListResponse(query.Key(), snap.Recipes))
}

// StreamRecipes pushes a new result of the list or search after every change
func (h *RecipeHandler) StreamRecipes(c *gin.Context) {
	query := h.query(c)
	snapshots := query.Subscribe(c.Request.Context())

	streamEvents(c, snapshots, func(snap repository.Snapshot) (string, any, bool) {
		if snap.Err != nil {
			return "error", gin.H{"error": snap.Err.Error()}, true
		}
		return "recipes", newListResponse(query.Key(), snap.Recipes), false
	})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}

	recipe, err := h.recipes.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, recipe)
}

// UpdateRecipe replaces the recipe with the given ID, creating it if needed
func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}

	var recipe model.Recipe
	if err := c.ShouldBindJSON(&recipe); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBody.Error()})
		return
	}
	recipe.ID = id

	saved, err := h.recipes.InsertOrReplace(c.Request.Context(), &recipe)
	if err != nil {
		h.logger.Error("failed to update recipe", zap.Uint("id", id), zap.Error(err))
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, saved)
}

func (h *RecipeHandler) query(c *gin.Context) *repository.LiveQuery {
	if term := strings.TrimSpace(c.Query("q")); term != "" {
		return h.recipes.Search(term)
	}
	return h.recipes.ListAll()
}

func recipeID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidID.Error()})
		return 0, false
	}
	return uint(id), true
}
