package main

import (
	"context"
	"fmt"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskhive/internal/api/handlers"
	"taskhive/internal/api/middleware"
	"taskhive/internal/api/routes"
	"taskhive/internal/domain/ai"
	"taskhive/internal/domain/audit"
	"taskhive/internal/domain/task"
	"taskhive/internal/domain/user"
	"taskhive/internal/infrastructure/cache"
	"taskhive/internal/infrastructure/persistence/mongodb"
	"taskhive/internal/infrastructure/scheduler"
	"taskhive/pkg/config"
	"taskhive/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig("")
	if err != nil {
		stdlog.Fatalf("Failed to load configuration: %v", err)
	}

	log := logger.NewWithLevel(cfg.Logging.Level)
	defer log.Sync()

	log.Info("configuration loaded", zap.String("mode", cfg.Server.Mode))

	// Database
	ctx := context.Background()
	db, err := mongodb.Connect(ctx, cfg.Mongo)
	if err != nil {
		log.Fatal("failed to connect to mongodb", zap.Error(err))
	}
	if err := db.EnsureIndexes(ctx); err != nil {
		log.Fatal("failed to create indexes", zap.Error(err))
	}
	log.Info("connected to mongodb", zap.String("database", cfg.Mongo.Database))

	// Cache is optional; the API degrades gracefully without it.
	var redisClient *cache.RedisClient
	if cfg.Redis.Host != "" {
		redisClient, err = cache.NewRedisClient(cfg.Redis)
		if err != nil {
			log.Error("redis unavailable, running without cache", zap.Error(err))
			redisClient = nil
		} else {
			log.Info("connected to redis")
		}
	}

	// Repositories and services
	taskRepo := task.NewRepository(db)
	userRepo := user.NewRepository(db)
	auditRepo := audit.NewRepository(db)

	taskService := task.NewService(taskRepo, redisClient, log.Logger)
	userService := user.NewService(userRepo, cfg.Auth, log.Logger)
	recorder := audit.NewRecorder(auditRepo)

	aiClient := ai.NewOpenAIClient(cfg.AI)
	if aiClient == nil {
		log.Info("no AI api key configured, using local fallbacks")
	}
	aiService := ai.NewService(aiClient, taskService, log.Logger)

	// HTTP server
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(gzip.Gzip(gzip.DefaultCompression))
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           12 * time.Hour,
	}
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	}
	router.Use(cors.New(corsConfig))

	audits := middleware.NewAuditMiddleware(recorder)

	authHandler := handlers.NewAuthHandler(userService, recorder)
	taskHandler := handlers.NewTaskHandler(taskService, redisClient)
	aiHandler := handlers.NewAIHandler(aiService)
	adminHandler := handlers.NewAdminHandler(userService, taskService, recorder)

	routes.NewAuthRoutes(authHandler, audits, cfg.Auth.JWTSecret).RegisterRoutes(router)
	routes.NewTaskRoutes(taskHandler, audits, cfg.Auth.JWTSecret).RegisterRoutes(router)
	routes.NewAIRoutes(aiHandler, audits, cfg.Auth.JWTSecret).RegisterRoutes(router)
	routes.NewAdminRoutes(adminHandler, audits, cfg.Auth.JWTSecret).RegisterRoutes(router)
	routes.NewHealthRoutes(db).RegisterRoutes(router)

	// Reminder scheduler
	sched := scheduler.New(taskRepo, log.Logger)
	if err := sched.Start(); err != nil {
		log.Fatal("failed to start scheduler", zap.Error(err))
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	go func() {
		log.Info("server starting", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}

	if err := redisClient.Close(); err != nil {
		log.Error("failed to close redis", zap.Error(err))
	}
	if err := db.Disconnect(shutdownCtx); err != nil {
		log.Error("failed to disconnect mongodb", zap.Error(err))
	}

	log.Info("server stopped")
}
