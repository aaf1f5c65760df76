package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"speakcheck/internal/adapter"
	"speakcheck/internal/adapter/scoring"
	"speakcheck/internal/cache"
	"speakcheck/internal/config"
	"speakcheck/internal/database"
	"speakcheck/internal/handler"
	"speakcheck/internal/logger"
	"speakcheck/internal/middleware"
	"speakcheck/internal/repository"
	"speakcheck/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// requestLogger is a middleware that logs HTTP requests
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		path := c.Path()
		method := c.Method()

		err := c.Next()

		duration := time.Since(start)
		status := c.Response().StatusCode()

		logger.Get().Info("HTTP Request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("duration", duration),
			zap.String("ip", c.IP()),
			zap.String("user_agent", c.Get("User-Agent")),
		)

		return err
	}
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	// Connect to database
	db, err := database.NewSQLXOracleDB(cfg.GetDSN())
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Initialize repositories
	sentenceRepository := repository.NewSQLXSentenceRepository(db)
	sessionRepository := repository.NewSQLXSessionRepository(db)
	answerRepository := repository.NewSQLXAnswerRepository(db)
	userRepository := repository.NewUserRepository(db)
	txManager := repository.NewTransactionManagerAdapter(db)

	// Initialize Redis client and cache adapter
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	cacheAdapter := adapter.NewRedisCacheAdapter(redisClient)
	appLogger.Info("RedisCacheAdapter initialized")

	// Scoring provider adapter
	scoringProvider := scoring.NewClient(cfg.Scoring)
	appLogger.Info("Scoring provider initialized", zap.String("base_url", cfg.Scoring.BaseURL))

	// Initialize services
	refModelService := service.NewReferenceModelService(sentenceRepository, scoringProvider)
	progressCacheService := service.NewProgressCacheService(cacheAdapter, cfg.Test.ProgressCacheTTL)
	testService := service.NewTestService(
		sentenceRepository,
		sessionRepository,
		answerRepository,
		scoringProvider,
		refModelService,
		progressCacheService,
		txManager,
		cfg,
	)
	sentenceService := service.NewSentenceService(sentenceRepository, refModelService, cacheAdapter, cfg.Test.CatalogCacheTTL)

	authService, err := service.NewAuthService(userRepository, cfg)
	if err != nil {
		appLogger.Fatal("Failed to create AuthService", zap.Error(err))
	}
	userService := service.NewUserService(userRepository, sessionRepository)

	// Initialize handlers
	testHandler := handler.NewTestHandler(testService, userService)
	sentenceHandler := handler.NewSentenceHandler(sentenceService)
	authHandler := handler.NewAuthHandler(authService, cfg)
	userHandler := handler.NewUserHandler(userService)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		BodyLimit:    10 * 1024 * 1024,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(requestLogger())
	app.Use(cors.New(cors.Config{AllowOrigins: "*", AllowMethods: "GET,POST,PUT,DELETE,OPTIONS", AllowHeaders: "Origin,Content-Type,Accept,Authorization", MaxAge: 300}))
	app.Use(recover.New())

	// API group
	apiGroup := app.Group("/api")

	// Auth routes
	authGroup := apiGroup.Group("/auth")
	authGroup.Get("/google/login", authHandler.GoogleLogin)
	authGroup.Get("/google/callback", authHandler.GoogleCallback)
	authGroup.Post("/refresh", authHandler.RefreshToken)
	authGroup.Post("/logout", middleware.Protected(authService), authHandler.Logout)

	// User routes (all protected)
	userGroup := apiGroup.Group("/users", middleware.Protected(authService))
	userGroup.Get("/me", userHandler.GetMyProfile)
	userGroup.Get("/me/sessions", userHandler.GetMySessions)

	// Test session routes
	testGroup := apiGroup.Group("/tests", middleware.Protected(authService))
	testGroup.Post("/", testHandler.StartTest)
	testGroup.Get("/:id", testHandler.GetTest)
	testGroup.Post("/:id/answers", testHandler.SubmitAnswer)
	testGroup.Get("/:id/answers", testHandler.GetTestAnswers)
	testGroup.Post("/:id/abandon", testHandler.AbandonTest)

	// Sentence catalog
	apiGroup.Get("/sentences", middleware.Protected(authService), sentenceHandler.ListSentences)

	// Admin routes
	adminGroup := apiGroup.Group("/admin", middleware.Protected(authService))
	adminGroup.Post("/sentences", sentenceHandler.CreateSentence)
	adminGroup.Post("/sentences/:id/model", sentenceHandler.PrewarmModel)
	adminGroup.Put("/sentences/:id/model", sentenceHandler.RegenerateModel)

	// Start server
	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", os.Getenv("ENV")))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
