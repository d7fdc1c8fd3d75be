// @title MailPilot API
// @version 1.0
// @description Email triage backend: classifies incoming mail, generates summaries, reply drafts, and event proposals, and answers questions over the stored corpus
// @contact.name API Support
// @contact.email support@example.com
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
// @host localhost:8080
// @BasePath /api

package main

import (
	"context"
	"log"
	"time"

	"mailpilot-be/config"
	"mailpilot-be/internal/database"
	"mailpilot-be/internal/handlers"
	"mailpilot-be/internal/middleware"
	"mailpilot-be/internal/repository"
	"mailpilot-be/internal/search"
	"mailpilot-be/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "mailpilot-be/docs"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const indexSaveInterval = 5 * time.Minute

func main() {
	// Load configuration
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	// Connect to MongoDB
	mongodb, err := database.NewMongoDB(cfg.MongoDBURI, cfg.MongoDBDatabase)
	if err != nil {
		logger.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer mongodb.Disconnect()

	if err := mongodb.EnsureIndexes(context.Background()); err != nil {
		logger.Fatal("failed to ensure MongoDB indexes", zap.Error(err))
	}

	store := repository.NewStore(mongodb)

	// Semantic index: load the persisted artifacts when present, otherwise
	// rebuild from the store of record.
	embedder := services.NewEmbeddingService(cfg)
	index, err := search.Load(cfg.IndexDir, embedder)
	if err != nil {
		logger.Warn("could not load persisted index, rebuilding from store", zap.Error(err))
		index = search.NewIndex(embedder)
		emails, err := store.FetchAllEmails(context.Background())
		if err != nil {
			logger.Fatal("failed to load emails for index rebuild", zap.Error(err))
		}
		if err := index.Rebuild(context.Background(), emails); err != nil {
			logger.Warn("index rebuild failed, starting with an empty index", zap.Error(err))
		}
	}
	logger.Info("semantic index ready", zap.Int("entries", index.Len()))

	saverCtx, stopSaver := context.WithCancel(context.Background())
	defer stopSaver()
	services.StartIndexSaver(saverCtx, indexSaveInterval, index, cfg.IndexDir, logger)

	// Initialize services
	gen := services.NewGenerationService(cfg)
	preferences := services.NewPreferenceService(store, logger)
	triage, err := services.NewTriageService(store, index, gen, preferences, cfg.DecisionThreshold, logger)
	if err != nil {
		logger.Fatal("failed to initialize triage service", zap.Error(err))
	}
	actions := services.NewActionService(store, index, gen, services.SenderIdentity{
		Name:  cfg.SenderName,
		Email: cfg.SenderEmail,
	}, logger)
	chat := services.NewChatService(cfg, store, index, gen, logger)
	gmailService := services.NewGmailService(cfg)

	// Initialize handlers
	emailHandler := handlers.NewEmailHandler(triage)
	actionHandler := handlers.NewActionHandler(actions)
	searchHandler := handlers.NewSearchHandler(index, store)
	chatHandler := handlers.NewChatHandler(chat)
	gmailHandler := handlers.NewGmailHandler(gmailService, triage, store, cfg.GmailSyncMax, logger)

	// Initialize Gin
	r := gin.Default()

	// Apply CORS middleware
	r.Use(middleware.CORS(cfg))

	api := r.Group("/api")
	{
		// Health check
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":   "ok",
				"message":  "MailPilot API is running",
				"database": "MongoDB connected",
			})
		})

		api.POST("/new_email", emailHandler.NewEmail)

		action := api.Group("/action")
		{
			action.POST("/approve", actionHandler.Approve)
			action.POST("/reject", actionHandler.Reject)
			action.POST("/modify", actionHandler.Modify)
		}

		searchGroup := api.Group("/search")
		{
			searchGroup.POST("/semantic", searchHandler.Semantic)
			searchGroup.GET("/suggestions", searchHandler.Suggestions)
		}

		api.POST("/chat", chatHandler.Chat)
		api.POST("/gmail/sync", gmailHandler.Sync)
	}

	// Swagger route
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Start server
	logger.Info("server starting",
		zap.String("port", cfg.Port),
		zap.String("database", cfg.MongoDBDatabase))

	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}
