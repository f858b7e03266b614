package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/nahid2887/padzzey-sub000/internal/config"
	"github.com/nahid2887/padzzey-sub000/internal/database"
	"github.com/nahid2887/padzzey-sub000/internal/handlers"
	"github.com/nahid2887/padzzey-sub000/internal/mailer"
	"github.com/nahid2887/padzzey-sub000/internal/middlewares"
	"github.com/nahid2887/padzzey-sub000/internal/mls"
	"github.com/nahid2887/padzzey-sub000/internal/realtime"
	"github.com/nahid2887/padzzey-sub000/internal/repositories"
	"github.com/nahid2887/padzzey-sub000/internal/routes"
	"github.com/nahid2887/padzzey-sub000/internal/services"
	"github.com/nahid2887/padzzey-sub000/internal/storage"
	"github.com/nahid2887/padzzey-sub000/internal/utils"
)

// Deps are the external resources the router is built on.
type Deps struct {
	DB        *gorm.DB
	Blacklist services.TokenBlacklist
	Cache     mls.Cache
	Mailer    mailer.Mailer
}

// NewServer connects to Postgres and Redis, migrates the schema and returns
// the configured HTTP server. Connections are closed on shutdown.
func NewServer(cfg *config.Config, log zerolog.Logger) (*http.Server, error) {
	db, err := database.Open(cfg.Database, log)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db, log); err != nil {
		return nil, err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Fail fast with a clear message when Redis is unreachable.
	{
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Redis.Addr(), err)
		}
		log.Info().Str("addr", cfg.Redis.Addr()).Msg("connected to Redis")
	}

	redisRepo := repositories.NewRedisRepository(rdb)
	router, err := NewRouter(cfg, log, Deps{
		DB:        db,
		Blacklist: redisRepo,
		Cache:     redisRepo,
		Mailer:    mailer.New(cfg.SMTP, log),
	})
	if err != nil {
		return nil, err
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	server.RegisterOnShutdown(func() {
		if err := rdb.Close(); err != nil {
			log.Warn().Err(err).Msg("closing redis")
		}
		if sqlDB, err := db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				log.Warn().Err(err).Msg("closing database")
			}
		}
	})
	return server, nil
}

// NewRouter wires repositories, services and handlers onto a gin engine.
func NewRouter(cfg *config.Config, log zerolog.Logger, deps Deps) (*gin.Engine, error) {
	gin.SetMode(cfg.GinMode)
	if err := handlers.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("register validators: %w", err)
	}

	// Dependency injection
	store := repositories.NewStore(deps.DB)
	files := storage.NewLocalStorage(cfg.Media.Root, cfg.Media.URL)
	hub := realtime.NewHub(cfg.CORSOrigins, log)
	notifier := services.NewNotifier(hub, log)
	tokens := utils.NewTokenIssuer(
		cfg.Auth.AccessTokenSecret,
		cfg.Auth.RefreshTokenSecret,
		cfg.Auth.AccessTokenTTL,
		cfg.Auth.RefreshTokenTTL,
	)

	authService := services.NewAuthService(store, tokens, deps.Blacklist, log)
	userService := services.NewUserService(store, files)
	legalService := services.NewLegalService(store)
	platformService := services.NewPlatformDocumentService(store, files, log)

	h := routes.Handlers{
		Auth:           handlers.NewAuthHandler(authService, userService),
		User:           handlers.NewUserHandler(userService, services.NewPreferencesService(store)),
		Notification:   handlers.NewNotificationHandler(services.NewNotificationService(store)),
		SellingRequest: handlers.NewSellingRequestHandler(services.NewSellingRequestService(store, notifier)),
		Document:       handlers.NewDocumentHandler(services.NewDocumentService(store, files, notifier, log)),
		Listing:        handlers.NewListingHandler(services.NewListingService(store, files, log)),
		Showing:        handlers.NewShowingHandler(services.NewShowingService(store, notifier)),
		Buyer:          handlers.NewBuyerHandler(services.NewBuyerService(store, files, log), platformService),
		MLS:            handlers.NewMLSHandler(mls.New(cfg.Paragon, deps.Cache, log)),
		Common: handlers.NewCommonHandler(
			services.NewPasswordResetService(store, deps.Mailer, cfg.OTPExpiry(), log),
			legalService,
		),
		Legal:     handlers.NewLegalHandler(legalService, platformService),
		Messaging: handlers.NewMessagingHandler(services.NewMessagingService(store, hub, log), hub),
		Admin:     handlers.NewAdminHandler(services.NewAdminService(store, log)),
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middlewares.RequestLogger(log))
	router.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	router.Use(otelgin.Middleware(cfg.TelemetryService))

	if prefix := strings.TrimRight(cfg.Media.URL, "/"); strings.HasPrefix(prefix, "/") && prefix != "" {
		router.Static(prefix, files.Root())
	}

	routes.RegisterRoutes(router, h, routes.Guard{
		Verifier: authService,
		Accounts: store.Accounts,
	})
	return router, nil
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || utils.Contains(origins, "*") {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	c.AllowCredentials = true
	return c
}
