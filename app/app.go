// File: app/app.go
package app

import (
	"context"
	"database/sql"
	"go-auth-api/config"
	"go-auth-api/db"
	"go-auth-api/handler"
	"go-auth-api/logger"
	"go-auth-api/repository"
	"go-auth-api/router"
	"go-auth-api/service"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// Stores groups the three persistence ports the services run on.
type Stores struct {
	Users  repository.IUserRepository
	Tokens repository.ITokenRepository
	Audit  repository.IAuditRepository
}

// NewPostgresStores returns the Postgres implementations of every store.
func NewPostgresStores(database *sql.DB) Stores {
	return Stores{
		Users:  repository.NewUserRepository(database),
		Tokens: repository.NewTokenRepository(database),
		Audit:  repository.NewAuditRepository(database),
	}
}

type App struct {
	Config   *config.Config
	Sessions *service.SessionService
	Audit    *service.AuditService
	Codec    *service.TokenCodec
	Router   http.Handler
}

// New wires services, handlers and routes over the given stores. cache may be nil to disable profile caching.
func New(cfg *config.Config, stores Stores, cache service.ICacheClient) *App {
	var profiles *service.ProfileCache
	if cache != nil {
		profiles = service.NewProfileCache(cache, cfg.Redis.TTL)
	}

	codec := service.NewTokenCodec(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	auditService := service.NewAuditService(stores.Audit)
	sessionService := service.NewSessionService(
		stores.Users,
		stores.Tokens,
		auditService,
		codec,
		service.NewBcryptHasher(cfg.Auth.BcryptCost),
		profiles,
	)

	authHandler := handler.NewAuthHandler(sessionService, cfg.Server.CookieSecure, cfg.Server.TrustProxy)
	auditHandler := handler.NewAuditHandler(auditService)
	authMiddleware := handler.NewAuthMiddleware(codec)

	return &App{
		Config:   cfg,
		Sessions: sessionService,
		Audit:    auditService,
		Codec:    codec,
		Router:   router.NewRouter(authHandler, auditHandler, authMiddleware, cfg.CORS.AllowedOrigin),
	}
}

func Run() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Error loading configuration: %v", err)
	}
	logger.Init(cfg.Log.Level)
	logger.Log.Info("Configuration loaded successfully")

	if err := cfg.Validate(); err != nil {
		logger.Log.Fatalf("Invalid configuration: %v", err)
	}
	if !cfg.IsProduction() && cfg.JWT.AccessSecret == config.DefaultAccessSecret {
		logger.Log.Warn("Using development JWT secrets; never run like this in production")
	}

	database, err := db.Connect(cfg)
	if err != nil {
		logger.Log.Fatalf("Error connecting to the database: %v", err)
	}
	defer database.Close()

	if err := db.Migrate(cfg.MigrationURL()); err != nil {
		logger.Log.Fatalf("Error running migrations: %v", err)
	}

	var cache service.ICacheClient
	if cfg.Redis.Enabled {
		rdb, err := db.ConnectRedis(cfg)
		if err != nil {
			logger.Log.WithError(err).Warn("Redis unavailable, profile cache disabled")
		} else {
			defer rdb.Close()
			cache = rdb
		}
	}

	a := New(cfg, NewPostgresStores(database), cache)

	// --- Start the Server with Graceful Shutdown ---
	port := cfg.Server.Port
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Infof("Server starting on port :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Warn("Shutdown signal received. Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Errorf("Server forced to shutdown: %v", err)
		return
	}

	logger.Log.Info("Server exited properly")
}
