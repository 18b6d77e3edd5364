package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pageza/chefai/backend/internal/database"
	"github.com/pageza/chefai/backend/internal/middleware"
	"github.com/pageza/chefai/backend/internal/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Dependencies holds everything the HTTP handlers need
type Dependencies struct {
	DB        *gorm.DB
	Recipes   RecipeRepository
	Generator service.RecipeGenerator
	Session   *service.GenerationSession
	// Auth protects the write routes when set
	Auth middleware.TokenValidator
	// RateLimiter limits generations when set
	RateLimiter *middleware.RateLimiter
	// BaseContext outlives requests and bounds background session generations
	BaseContext context.Context
	Logger      *zap.Logger
}

// HealthCheck returns the health status of the API and its database
func HealthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := gin.H{
			"status":  "healthy",
			"message": "ChefAI API is running",
		}
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := database.HealthCheck(ctx, db); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status": "unhealthy",
					"error":  err.Error(),
				})
				return
			}
			status["database"] = "ok"
		}
		c.JSON(http.StatusOK, status)
	}
}

// RegisterRoutes registers all API routes
func RegisterRoutes(router *gin.Engine, deps Dependencies) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	// Health check endpoint (no auth required)
	router.GET("/health", HealthCheck(deps.DB))

	auth := middleware.AuthMiddleware(deps.Auth)
	generation := func(handler gin.HandlerFunc) []gin.HandlerFunc {
		chain := []gin.HandlerFunc{auth}
		if deps.RateLimiter != nil {
			chain = append(chain, deps.RateLimiter.RateLimitMiddleware())
		}
		return append(chain, handler)
	}

	v1 := router.Group("/api/v1")

	recipeHandler := NewRecipeHandler(deps.Recipes, deps.Generator, logger)
	recipes := v1.Group("/recipes")
	{
		recipes.GET("", recipeHandler.ListRecipes)
		recipes.GET("/stream", recipeHandler.StreamRecipes)
		recipes.GET("/:id", recipeHandler.GetRecipe)
		recipes.PUT("/:id", auth, recipeHandler.UpdateRecipe)
		recipes.POST("/generate", generation(recipeHandler.GenerateRecipe)...)
	}

	if deps.Session != nil {
		sessionHandler := NewSessionHandler(deps.BaseContext, deps.Session, logger)
		session := v1.Group("/session")
		{
			session.GET("/state", sessionHandler.GetState)
			session.GET("/stream", sessionHandler.StreamState)
			session.POST("/generate", generation(sessionHandler.Generate)...)
			session.POST("/reset", auth, sessionHandler.Reset)
		}
	}
}
