package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/slivora/slivora-backend/internal/clients/openai"
	"github.com/slivora/slivora-backend/internal/db"
	"github.com/slivora/slivora-backend/internal/handlers"
	"github.com/slivora/slivora-backend/internal/middleware"
	"github.com/slivora/slivora-backend/internal/pkg/logger"
	"github.com/slivora/slivora-backend/internal/repos"
	"github.com/slivora/slivora-backend/internal/server"
	"github.com/slivora/slivora-backend/internal/services"
	"github.com/slivora/slivora-backend/internal/synth"
	"github.com/slivora/slivora-backend/internal/utils"
	"github.com/slivora/slivora-backend/internal/watermark"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("Postgres init failed", "error", err)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Fatal("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	projectRepo := repos.NewProjectRepo(thePG, log)
	tokenUsageRepo := repos.NewTokenUsageRepo(thePG, log)

	// Rate limiter backend. Redis shares counts across replicas; the
	// in-memory fallback is fine for a single instance.
	var limiter middleware.Limiter
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     redisAddr,
			Password: os.Getenv("REDIS_PASSWORD"),
		})
		limiter = middleware.NewRedisLimiter(redisClient)
		log.Info("Rate limiting backed by Redis", "addr", redisAddr)
	} else {
		limiter = middleware.NewMemoryLimiter()
		log.Warn("REDIS_ADDR not set, using in-memory rate limiting")
	}

	// Clients
	llmClient, err := openai.NewClient(log)
	if err != nil {
		log.Fatal("OpenAI client init failed", "error", err)
	}

	// Services
	log.Info("Setting up services from main...")
	authService := services.NewAuthService(userRepo, log)
	bucketService, err := services.NewBucketService(log)
	if err != nil {
		log.Fatal("Bucket service init failed", "error", err)
	}
	tokenService := services.NewTokenService(thePG, userRepo, tokenUsageRepo, log)
	projectService := services.NewProjectService(projectRepo, log)
	synthesizer := synth.NewSynthesizer(log, llmClient)
	generationService := services.NewGenerationService(synthesizer, projectRepo, tokenService, log)
	watermarkSource := watermark.NewSource(log)
	exportService := services.NewExportService(projectRepo, bucketService, tokenService, watermarkSource, log)

	// Handlers
	projectHandler := handlers.NewProjectHandler(log, projectService, generationService, exportService, tokenService)
	tokenHandler := handlers.NewTokenHandler(log, userRepo)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(log, authService)
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(limiter, log)

	// Router
	var allowedOrigins []string
	if raw := os.Getenv("CORS_ALLOWED_ORIGINS"); raw != "" {
		for _, origin := range strings.Split(raw, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				allowedOrigins = append(allowedOrigins, origin)
			}
		}
	}
	router := server.NewRouter(server.RouterConfig{
		AuthMiddleware:      authMiddleware,
		RateLimitMiddleware: rateLimitMiddleware,
		ProjectHandler:      projectHandler,
		TokenHandler:        tokenHandler,
		AllowedOrigins:      allowedOrigins,
	})

	port := utils.GetEnv("PORT", "8080", log)
	log.Info("Starting server", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Server exited", "error", err)
	}
}
