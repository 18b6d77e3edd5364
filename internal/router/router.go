package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pageza/chefai/backend/internal/api"
	"github.com/pageza/chefai/backend/internal/middleware"
	"go.uber.org/zap"
)

// SetupRouter configures the middleware chain and the application routes
func SetupRouter(deps api.Dependencies, corsOrigins []string) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
		deps.Logger = logger
	}

	router := gin.New()
	router.Use(
		middleware.RequestLogger(logger),
		middleware.Recovery(logger),
		middleware.CORS(corsOrigins),
		middleware.ErrorHandler(logger),
	)
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, middleware.ErrorResponse{Error: "route not found"})
	})

	api.RegisterRoutes(router, deps)
	return router
}
