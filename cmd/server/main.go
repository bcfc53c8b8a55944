package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"

	"naviai-server/internal/ai"
	"naviai-server/internal/config"
	"naviai-server/internal/database"
	"naviai-server/internal/handler"
	"naviai-server/internal/interfaces"
	"naviai-server/internal/logger"
	"naviai-server/internal/middleware"
	"naviai-server/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		zlog.Info().Msg("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		zlog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	initZerolog(cfg)

	appLogger, err := logger.New(logger.Config{
		Level:    cfg.LogLevel,
		Encoding: encodingFor(cfg.Env),
	})
	if err != nil {
		zlog.Fatal().Err(err).Msg("Failed to initialize logger")
	}
	defer appLogger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.NewPool(ctx, database.PoolConfig{
		DSN:         cfg.GetDSN(),
		MaxConns:    cfg.DBMaxConns,
		MaxIdleTime: cfg.DBIdleTimeout,
	})
	if err != nil {
		zlog.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	if err := database.RunMigrations(cfg.GetDSN()); err != nil {
		zlog.Fatal().Err(err).Msg("Failed to run database migrations")
	}
	appLogger.Info("Database ready", zap.String("host", cfg.DBHost), zap.String("db", cfg.DBName))

	var repo interfaces.ScenarioRepository = database.NewPgScenarioRepository(pool)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			zlog.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("Failed to connect to Redis")
		}
		defer redisClient.Close()
		repo = database.NewCachedScenarioRepository(repo, redisClient, cfg.CacheTTL, appLogger)
		appLogger.Info("Scenario list cache enabled", zap.String("addr", cfg.RedisAddr))
	}

	analyzer, err := ai.NewAnalyzer(ai.ProviderConfig{
		Provider:    cfg.AIProvider,
		Model:       cfg.AIModel,
		BaseURL:     cfg.AIBaseURL,
		APIKey:      cfg.AIAPIKey,
		Timeout:     cfg.AITimeout,
		MaxAttempts: cfg.AIMaxAttempts,
		RetryDelay:  cfg.AIRetryBaseWait,
	})
	if err != nil {
		zlog.Fatal().Err(err).Msg("Failed to initialize scenario analyzer")
	}

	scenarioService := service.NewScenarioService(repo, appLogger)
	analysisService := service.NewAnalysisService(repo, analyzer, appLogger)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(appLogger))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	prom := ginprometheus.NewPrometheus("gin")
	prom.Use(router)

	router.GET("/health", func(c *gin.Context) {
		if err := pool.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	scenarioHandler := handler.NewScenarioHandler(scenarioService, analysisService, appLogger)
	scenarioHandler.RegisterRoutes(router)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}

	go func() {
		appLogger.Info("Server starting", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Err(err).Msg("Forced server shutdown")
	}
	appLogger.Info("Server stopped")
}

// initZerolog configures the global zerolog logger used by the repository and
// AI layers.
func initZerolog(cfg *config.Config) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.Env != "production" {
		zlog.Logger = zlog.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

func encodingFor(env string) string {
	if env == "production" {
		return "json"
	}
	return "console"
}
