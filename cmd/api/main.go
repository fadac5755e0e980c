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
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ShakirYasin/exact-sol-test/internal/api/handlers"
	"github.com/ShakirYasin/exact-sol-test/internal/api/routes"
	"github.com/ShakirYasin/exact-sol-test/internal/domain/task"
	"github.com/ShakirYasin/exact-sol-test/internal/domain/user"
	"github.com/ShakirYasin/exact-sol-test/internal/infrastructure/cache"
	"github.com/ShakirYasin/exact-sol-test/internal/infrastructure/persistence/postgres/connection"
	"github.com/ShakirYasin/exact-sol-test/internal/infrastructure/persistence/postgres/migrations"
	"github.com/ShakirYasin/exact-sol-test/pkg/config"
	"github.com/ShakirYasin/exact-sol-test/pkg/logger"
	"github.com/ShakirYasin/exact-sol-test/pkg/security/auth"
)

// RequestLoggerMiddleware logs all incoming HTTP requests
func RequestLoggerMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		log.Info("Request completed",
			zap.String("path", path),
			zap.String("method", method),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func main() {
	cfg, err := config.LoadConfig("")
	if err != nil {
		stdlog.Fatalf("Failed to load configuration: %v", err)
	}

	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Configuration loaded successfully")
	log.Info("Server mode: " + cfg.Server.Mode)

	if cfg.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	gin.DefaultWriter = os.Stdout

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLoggerMiddleware(log))
	router.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORS.AllowedOrigins,
		AllowMethods: cfg.CORS.AllowedMethods,
		AllowHeaders: cfg.CORS.AllowedHeaders,
		ExposeHeaders: []string{
			"Content-Length",
			"X-RateLimit-Remaining",
			"X-RateLimit-Reset",
		},
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	// Connect to database and migrate
	db, err := connection.NewDatabase(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := migrations.AutoMigrate(db, cfg, log.Logger); err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Redis backs the login rate limiter and the readiness probe
	redisClient, err := cache.NewRedisClient(cache.NewConfigFromEnv(cfg))
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	rateLimiter := auth.NewRedisRateLimiter(redisClient.Client(), 1*time.Minute, 30)
	jwtService := auth.NewJWTService(cfg)
	blacklist := auth.NewTokenBlacklist()

	// Realtime stack: hub, notifier, event log
	realtimeSystem := SetupRealtimeSystem(db, log, cfg.Server.Mode != "production")

	// Repositories
	userRepo := user.NewRepository(db)
	taskRepo := task.NewRepository(db)

	// Services
	userService := user.NewService(userRepo, log.Logger)
	taskService := task.NewService(taskRepo, userRepo, realtimeSystem.Notifier, log.Logger)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService, jwtService, blacklist, realtimeSystem.Notifier, log)
	userHandler := handlers.NewUserHandler(userService, log)
	taskHandler := handlers.NewTaskHandler(taskService, log)
	eventHandler := handlers.NewEventHandler(realtimeSystem.EventService, log)
	realtimeHandler := handlers.NewRealtimeHandler(realtimeSystem.Hub, log)

	// Routes
	routes.SetupHealthRoutes(router, db, redisClient)
	routes.NewAuthRoutes(authHandler, cfg.Auth.JWTSecret, blacklist, rateLimiter).RegisterRoutes(router)
	routes.NewUserRoutes(userHandler, cfg.Auth.JWTSecret, blacklist).RegisterRoutes(router)
	routes.NewTaskRoutes(taskHandler, cfg.Auth.JWTSecret, blacklist, redisClient).RegisterRoutes(router)
	routes.NewEventRoutes(eventHandler, cfg.Auth.JWTSecret, blacklist).RegisterRoutes(router)
	routes.NewRealtimeRoutes(realtimeHandler, cfg.Auth.JWTSecret, blacklist).RegisterRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Info("Starting server", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.Timeout)
	defer cancel()

	// Closing the hub first pushes close frames to websocket clients before
	// the listener stops accepting.
	realtimeSystem.Shutdown()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}
