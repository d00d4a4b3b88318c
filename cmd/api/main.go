package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/yourusername/interview-api/internal/ai"
	"github.com/yourusername/interview-api/internal/config"
	"github.com/yourusername/interview-api/internal/handler"
	"github.com/yourusername/interview-api/internal/middleware"
	pgRepo "github.com/yourusername/interview-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/interview-api/internal/repository/redis"
	"github.com/yourusername/interview-api/internal/service"
	"github.com/yourusername/interview-api/internal/service/evaluator"
	"github.com/yourusername/interview-api/pkg/auth"
	"github.com/yourusername/interview-api/pkg/database"
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	// Применяем миграции
	if err := database.MigrateDB(db); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к Redis
	redisClient, err := database.NewUniversalRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	log.Println("Successfully connected to Redis")

	// Инициализируем репозитории
	interviewRepo := pgRepo.NewInterviewRepo(db)

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
	if err != nil {
		log.Printf("Failed to initialize CacheRepo: %v", err)
		os.Exit(1)
	}

	// Клиент генерации и оценивания ответов
	aiClient := ai.NewClient(
		cfg.OpenAI.APIKey,
		cfg.OpenAI.BaseURL,
		cfg.OpenAI.Model,
		time.Duration(cfg.OpenAI.TimeoutSec)*time.Second,
	)

	evaluatorService := evaluator.NewEvaluator(evaluator.DefaultConfig(), &evaluator.Dependencies{
		Generator: aiClient,
		CacheRepo: cacheRepo,
	})

	// Инициализируем сервисы
	interviewService := service.NewInterviewService(interviewRepo, cacheRepo, evaluatorService)

	// Инициализируем обработчики
	interviewHandler := handler.NewInterviewHandler(interviewService)

	// Инициализируем middleware
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpirationSecs)
	authMiddleware := middleware.NewAuthMiddleware(jwtService)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	// Инициализируем роутер Gin
	router := gin.Default()

	isProduction := gin.Mode() == gin.ReleaseMode

	// Настройка доверенных прокси для корректной работы c.ClientIP()
	if isProduction {
		// Production: не доверять прокси-заголовкам
		// Если используете load balancer, замените nil на []string{"IP_БАЛАНСИРОВЩИКА"}
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	} else {
		// Development: доверяем localhost
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	}

	// Настройка CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Настраиваем маршруты API
	api := router.Group("/api")
	{
		interviews := api.Group("/interviews")
		interviews.Use(authMiddleware.RequireAuth())
		{
			interviews.POST("", rateLimiter.LimitByUser(middleware.CreateInterviewRateLimitConfig()), interviewHandler.CreateInterview)
			interviews.GET("", interviewHandler.ListInterviews)
			interviews.GET("/stats", interviewHandler.GetUserStats)

			// Группа маршрутов, требующих interviewID
			interviewWithID := interviews.Group("/:id")
			interviewWithID.Use(middleware.ExtractUintParam("id", "interviewID"))
			{
				interviewWithID.GET("", interviewHandler.GetInterview)
				interviewWithID.PUT("/answer", rateLimiter.LimitByUser(middleware.SubmitAnswerRateLimitConfig()), interviewHandler.SubmitAnswer)
				interviewWithID.DELETE("", interviewHandler.DeleteInterview)
				interviewWithID.GET("/result", interviewHandler.GetInterviewResult)
				interviewWithID.GET("/result/export", interviewHandler.ExportInterviewResult)
			}
		}
	}

	// Настраиваем HTTP сервер с тайм-аутами для защиты от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Запускаем сервер в горутине
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	// Ждем сигнал остановки
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	if err := redisClient.Close(); err != nil {
		log.Printf("Error closing Redis client: %v", err)
	}

	// Graceful shutdown сервера
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	log.Println("Server exited properly")
}
