package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SAP-F-2025/text-answer-service/internal/auth"
	"github.com/SAP-F-2025/text-answer-service/internal/cache"
	"github.com/SAP-F-2025/text-answer-service/internal/config"
	"github.com/SAP-F-2025/text-answer-service/internal/handlers"
	"github.com/SAP-F-2025/text-answer-service/internal/metrics"
	"github.com/SAP-F-2025/text-answer-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/text-answer-service/internal/services"
	"github.com/SAP-F-2025/text-answer-service/internal/utils"
	"github.com/SAP-F-2025/text-answer-service/internal/validator"
	"github.com/SAP-F-2025/text-answer-service/pkg"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.NewLogger(false).Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.IsProduction())
	slogger := logger.Slog()

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.LogError(err, "Failed to initialize database")
		os.Exit(1)
	}

	cacheService := cache.NewNoopCache()
	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.Warn("Redis unavailable, running without cache", "error", err)
	} else {
		defer redisClient.Close()
		cacheService = cache.NewRedisCache(redisClient, "text-answer", slogger)
	}

	publisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		logger.LogError(err, "Failed to create event publisher")
		os.Exit(1)
	}
	defer publisher.Close()

	m := metrics.New()
	serviceManager := services.NewServiceManager(services.Dependencies{
		Stores: services.AnswerStores{
			Long:  postgres.NewLongAnswerPostgreSQL(db),
			Short: postgres.NewShortAnswerPostgreSQL(db),
		},
		Questions:  postgres.NewQuestionPostgreSQL(db, cacheService, cfg.Cache.TTL),
		Weights:    postgres.NewQuizRelationshipPostgreSQL(db, cacheService, cfg.Cache.TTL),
		Results:    postgres.NewResultPostgreSQL(db),
		Transactor: postgres.NewTransactor(db),
		Publisher:  publisher,
		Metrics:    m,
		Validator:  validator.New(),
		Logger:     slogger,
		Config: services.EvaluatorConfig{
			LongAnswerDefaultMaxScore: cfg.Scoring.LongAnswerDefaultMaxScore,
		},
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), utils.RequestID(), utils.LoggerMiddleware(logger), m.Middleware())
	router.GET("/metrics", m.Handler())

	tokenParser := auth.NewCasdoorTokenParser(cfg.Casdoor)
	handlers.NewHandlerManager(serviceManager, logger).SetupRoutes(router, auth.Middleware(tokenParser))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.LogError(err, "Server failed")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.LogError(err, "Server forced to shutdown")
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	logger.Info("Server exited")
}
