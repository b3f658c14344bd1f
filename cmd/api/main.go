package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"vf4-sportsbook-backend/internal/config"
	"vf4-sportsbook-backend/internal/games"
	"vf4-sportsbook-backend/internal/handlers"
	"vf4-sportsbook-backend/internal/ledger"
	"vf4-sportsbook-backend/internal/logger"
	"vf4-sportsbook-backend/internal/metrics"
	"vf4-sportsbook-backend/internal/middleware"
	"vf4-sportsbook-backend/internal/services"
	"vf4-sportsbook-backend/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog, err := logger.New("sportsbook-api", cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zlog.Sync()

	var st store.Store
	var redisStore *store.RedisStore
	if cfg.RedisAddr != "" {
		redisStore, err = store.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.HistoryCap)
		if err != nil {
			zlog.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer redisStore.Close()
		st = redisStore
		zlog.Info("using redis store", zap.String("addr", cfg.RedisAddr))
	} else {
		st = store.NewMemoryStore(cfg.HistoryCap)
		zlog.Info("using in-memory store")
	}

	clientSeed, err := games.GenerateSeed()
	if err != nil {
		zlog.Fatal("failed to generate client seed", zap.Error(err))
	}
	src, err := games.NewRandomHashSource(clientSeed)
	if err != nil {
		zlog.Fatal("failed to initialize draw source", zap.Error(err))
	}

	m := metrics.New()
	metrics.StartServer(cfg.MetricsPort, func(ctx context.Context) error {
		if redisStore != nil {
			return redisStore.Ping(ctx)
		}
		return nil
	})

	l := ledger.New()
	jwtService := services.NewJWTService(cfg.JWTSecret, cfg.SessionTTL)
	sessionService := services.NewSessionService(l, st, jwtService, zlog, cfg.StartingBalanceCents, cfg.SessionTTL)
	engine := services.NewWagerEngine(l, st, src, m, zlog, cfg.MaxStakeCents)

	wsHandler := handlers.NewWebSocketHandler(engine, zlog)
	engine.SetNotifier(wsHandler)

	if cfg.KafkaBrokers != "" {
		consumer := services.NewSettlementConsumer(cfg.KafkaBrokers, cfg.ResultsTopic, cfg.ConsumerGroup, engine, zlog)
		defer consumer.Close()
		go consumer.Run(context.Background())
	}

	authHandler := handlers.NewAuthHandler(sessionService)
	userHandler := handlers.NewUserHandler(sessionService, engine)
	betHandler := handlers.NewBetHandler(engine)
	gameHandler := handlers.NewGameHandler(engine, src)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.POST("/auth/login", authHandler.Login)

	var limiter middleware.Limiter = middleware.NewMemoryLimiter()
	if redisStore != nil {
		limiter = redisStore
	}

	protected := router.Group("/api")
	protected.Use(middleware.AuthMiddleware(jwtService, st))
	protected.Use(middleware.RateLimitMiddleware(limiter))
	{
		protected.GET("/me", userHandler.GetCurrentUser)
		protected.GET("/balance", userHandler.GetBalance)
		protected.POST("/logout", userHandler.Logout)

		protected.GET("/ws", wsHandler.HandleWebSocket)

		bets := protected.Group("/bets")
		{
			bets.POST("", betHandler.PlaceBet)
			bets.GET("", betHandler.ListBets)
			bets.POST("/:id/settle", betHandler.SettleBet)
		}

		gamesGroup := protected.Group("/games")
		{
			gamesGroup.POST("/play", gameHandler.Play)
			gamesGroup.GET("/history", gameHandler.GetHistory)
			gamesGroup.GET("/fairness", gameHandler.GetFairness)
			gamesGroup.POST("/verify", gameHandler.VerifyDraw)
		}
	}

	zlog.Info("server starting", zap.String("port", cfg.Port))
	if err := router.Run(":" + cfg.Port); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}
