package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"triplemerge/internal/auth"
	"triplemerge/internal/cache"
	"triplemerge/internal/config"
	"triplemerge/internal/database"
	"triplemerge/internal/handlers"
	"triplemerge/internal/i18n"
	"triplemerge/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if err := cfg.ValidateServer(); err != nil {
		log.Fatal().Err(err).Msg("invalid server configuration")
	}

	if lvl, err := zerolog.ParseLevel(cfg.Server.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	// Initialize database
	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("failed to connect to database")
	}
	defer db.Close()

	// Initialize Redis cache, falling back to process memory
	var appCache cache.Cache = cache.NewMemoryCache()
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedisCache(cfg)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to Redis, continuing with in-memory cache")
		} else {
			appCache = redisCache
		}
	}
	defer appCache.Close()

	tokens := auth.NewTokenService(cfg, appCache)
	translations := i18n.New(cfg.I18n.DefaultLanguage, cfg.I18n.SupportedLanguages)

	// Initialize handlers
	sessionHandler := handlers.NewSessionHandler(tokens, db)
	leaderboardHandler := handlers.NewLeaderboardHandler(db, appCache, cfg.Leaderboard.CacheTTL, cfg.Leaderboard.MaxEntries)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize WebSocket hub
	hub := websocket.NewHub(cfg, db, appCache, tokens, leaderboardHandler, translations)
	go hub.Run(ctx)

	// Create Gin router
	router := gin.New()
	router.Use(gin.Recovery(), handlers.RequestLogger())

	// Configure CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.Server.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))
	router.Use(i18n.Middleware(translations))

	// Health check endpoint
	if cfg.Server.EnableHealthCheck {
		router.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status":  "healthy",
				"service": "triplemerge",
				"clients": hub.ClientCount(),
			})
		})
	}

	// WebSocket endpoint
	router.GET("/ws", hub.HandleWebSocket)

	// Public API routes (no authentication required)
	publicAPI := router.Group("/api/public")
	{
		publicAPI.GET("/leaderboard", leaderboardHandler.GetLeaderboard)
		publicAPI.POST("/lang/:lang", i18n.SetLanguage(translations))
	}
	router.POST("/api/session", sessionHandler.CreateSession)

	// API routes (protected)
	apiRoutes := router.Group("/api")
	apiRoutes.Use(handlers.AuthMiddleware(tokens))
	{
		apiRoutes.GET("/session", sessionHandler.Me)
		apiRoutes.DELETE("/session", sessionHandler.Logout)
		apiRoutes.GET("/best", leaderboardHandler.GetBestScore)
	}

	// Start server with graceful shutdown
	srv := &http.Server{
		Addr:    cfg.GetServerAddress(),
		Handler: router,
	}

	go func() {
		log.Info().Str("addr", cfg.GetServerAddress()).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
}
