package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/vidstream/account-service/docs"
	"github.com/vidstream/account-service/internal/api/handler"
	"github.com/vidstream/account-service/internal/api/middleware"
	"github.com/vidstream/account-service/internal/core/ports"
	"github.com/vidstream/account-service/internal/core/service"
	mongorepo "github.com/vidstream/account-service/internal/infrastructure/db/mongo"
	rediscache "github.com/vidstream/account-service/internal/infrastructure/db/redis"
	"github.com/vidstream/account-service/internal/pkg/config"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, storage ports.MediaStorage, cfg *config.Config, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowCredentials: true,
	}))
	e.Use(echoprometheus.NewMiddleware("account"))

	// Body limits are per-route: the JSON cap would reject any realistic
	// image upload, so the multipart register route gets its own.
	jsonLimit := echomiddleware.BodyLimit(cfg.BodyLimit)
	uploadLimit := echomiddleware.BodyLimit(cfg.UploadLimit)

	// --- Dependencies ---
	accountRepo := mongorepo.NewAccountRepository(db)
	accountCache := rediscache.NewAccountCache(rdb, cfg.Token.AccessTTL)
	tokenService := service.NewTokenService(
		cfg.Token.AccessSecret,
		cfg.Token.RefreshSecret,
		cfg.Token.AccessTTL,
		cfg.Token.RefreshTTL,
	)
	accountService := service.NewAccountService(accountRepo, tokenService, storage)
	accountHandler := handler.NewAccountHandler(accountService, cfg.TempDir)
	session := middleware.Session(tokenService, accountRepo, accountCache)

	// --- Account routes ---
	users := e.Group("/api/v1/users")
	users.POST("/register", accountHandler.Register, uploadLimit)
	users.POST("/login", accountHandler.Login, jsonLimit)
	users.POST("/refresh-token", accountHandler.Refresh, jsonLimit)
	users.POST("/logout", accountHandler.Logout, jsonLimit, session)
	users.GET("/me", accountHandler.Me, session)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
