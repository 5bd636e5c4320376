package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/serenoa/backend/internal/api/handlers"
	"github.com/serenoa/backend/internal/assessment"
	"github.com/serenoa/backend/internal/cache/redis"
	"github.com/serenoa/backend/internal/chat"
	"github.com/serenoa/backend/internal/directory"
	"github.com/serenoa/backend/internal/journal"
	"github.com/serenoa/backend/internal/llm"
	"github.com/serenoa/backend/internal/metrics"
	"github.com/serenoa/backend/internal/middleware/ratelimit"
	"github.com/serenoa/backend/internal/middleware/security"
	"github.com/serenoa/backend/internal/middleware/validation"
	"github.com/serenoa/backend/internal/mood"
	"github.com/serenoa/backend/internal/storage/sqlite"
	"github.com/serenoa/backend/internal/vector/milvus"
	"github.com/serenoa/backend/pkg/config"
	appLogger "github.com/serenoa/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting Serenoa API Server")

	metrics.Init()

	sqliteClient, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer sqliteClient.Close()

	err = sqliteClient.InitSchema()
	if err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	redisClient, err := redis.NewClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		appLogger.Warn("Redis unavailable, caching disabled", zap.Error(err))
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	var milvusClient *milvus.Client
	milvusClient, err = milvus.NewClient(cfg.Milvus.Endpoint, cfg.Milvus.CollectionName, cfg.Milvus.VectorDim)
	if err != nil {
		appLogger.Warn("Milvus unavailable, journal similarity disabled", zap.Error(err))
		milvusClient = nil
	} else {
		defer milvusClient.Close()
		if err := milvusClient.CreateCollection(context.Background()); err != nil {
			appLogger.Fatal("Failed to create collection", zap.Error(err))
		}
	}

	llmClient, err := llm.NewClient(context.Background(), cfg.LLM)
	if err != nil {
		appLogger.Fatal("Failed to create LLM client", zap.Error(err))
	}

	loader := assessment.NewLoader(cfg.Model)
	pipeline := assessment.NewPipeline(loader, time.Duration(cfg.Model.LoadTimeoutSec)*time.Second)

	assessmentService := assessment.NewService(pipeline, sqliteClient)
	journalService := journal.NewService(sqliteClient, llmClient, milvusClient, redisClient)
	moodService := mood.NewService(sqliteClient)
	chatService := chat.NewService(llmClient, sqliteClient)
	directoryClient := directory.NewClient(cfg.Directory.BaseURL, redisClient,
		time.Duration(cfg.Directory.CacheTTL)*time.Second)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	rateLimiter := ratelimit.New(ratelimit.Config{
		MaxRequestsPerMinute: cfg.RateLimit.MaxRequestsPerMinute,
		Logger:               appLogger.GetLogger(),
	})
	defer rateLimiter.Stop()

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{}))
	app.Use(rateLimiter.Middleware())
	app.Use(validation.Middleware(validation.Config{
		Logger: appLogger.GetLogger(),
	}))

	assessmentHandler := handlers.NewAssessmentHandler(assessmentService)
	journalHandler := handlers.NewJournalHandler(journalService)
	moodHandler := handlers.NewMoodHandler(moodService)
	chatHandler := handlers.NewChatHandler(chatService)
	directoryHandler := handlers.NewDirectoryHandler(directoryClient)

	api := app.Group("/api/v1")

	api.Post("/assessments", assessmentHandler.HandleSubmit)
	api.Get("/assessments", assessmentHandler.HandleHistory)
	api.Get("/assessments/:id", assessmentHandler.HandleGet)
	api.Get("/assessments/:id/recommendations", assessmentHandler.HandleRecommendations)

	api.Post("/journal", journalHandler.HandleCreate)
	api.Get("/journal", journalHandler.HandleList)
	api.Get("/journal/:id", journalHandler.HandleGet)
	api.Put("/journal/:id", journalHandler.HandleUpdate)
	api.Delete("/journal/:id", journalHandler.HandleDelete)
	api.Get("/journal/:id/related", journalHandler.HandleRelated)

	api.Post("/moods", moodHandler.HandleRecord)
	api.Get("/moods/trend", moodHandler.HandleTrend)

	api.Post("/chat", chatHandler.HandleSend)
	api.Get("/chat/:session_id", chatHandler.HandleHistory)

	api.Get("/directory", directoryHandler.HandleSearch)
	api.Get("/crisis-resources", directoryHandler.HandleCrisisResources)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/chat", websocket.New(chatHandler.HandleConnection))

	app.Get("/metrics", metrics.MetricsHandler())

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	api.Get("/ready", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ready",
		})
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}
