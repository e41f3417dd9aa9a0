package server

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/slivora/slivora-backend/internal/handlers"
	"github.com/slivora/slivora-backend/internal/middleware"
)

// Generation and export limits per user, matching the product's
// fair-use policy.
const (
	generateLimit = 5
	exportLimit   = 3
	rateWindow    = 10 * time.Minute
)

type RouterConfig struct {
	AuthMiddleware      *middleware.AuthMiddleware
	RateLimitMiddleware *middleware.RateLimitMiddleware
	ProjectHandler      *handlers.ProjectHandler
	TokenHandler        *handlers.TokenHandler
	AllowedOrigins      []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{
			"http://localhost:3000",
			"http://localhost:5173",
		}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// Public
	router.GET("/healthcheck", handlers.HealthCheck)

	// Protected
	api := router.Group("/api")
	api.Use(cfg.AuthMiddleware.RequireAuth())

	generateLimited := cfg.RateLimitMiddleware.Limit("generate", generateLimit, rateWindow)
	exportLimited := cfg.RateLimitMiddleware.Limit("export", exportLimit, rateWindow)

	// Projects
	api.POST("/projects", generateLimited, cfg.ProjectHandler.Create)
	api.GET("/projects", cfg.ProjectHandler.List)
	api.GET("/projects/:id", cfg.ProjectHandler.Get)
	api.DELETE("/projects/:id", cfg.ProjectHandler.Delete)
	api.POST("/projects/:id/generate", generateLimited, cfg.ProjectHandler.Regenerate)
	api.POST("/projects/:id/export", exportLimited, cfg.ProjectHandler.Export)

	// Catalog and account
	api.GET("/themes", handlers.ListThemes)
	api.GET("/tokens", cfg.TokenHandler.Balance)

	return router
}
