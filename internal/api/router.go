package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/openshelf/library-system/internal/api/handler"
	"github.com/openshelf/library-system/internal/api/middleware"
	"github.com/openshelf/library-system/internal/core/domain"
	"github.com/openshelf/library-system/internal/core/service"
	"github.com/openshelf/library-system/internal/importer"
	"github.com/openshelf/library-system/internal/infrastructure/config"
	mongostore "github.com/openshelf/library-system/internal/infrastructure/db/mongo"
	redisstore "github.com/openshelf/library-system/internal/infrastructure/db/redis"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("library"))

	// --- Dependencies ---
	userRepo := mongostore.NewUserRepository(db)
	bookRepo := mongostore.NewBookRepository(db)
	loanRepo := mongostore.NewLoanRepository(db)
	revoker := redisstore.NewTokenRevoker(rdb)

	authService := service.NewAuthService(userRepo, revoker, cfg.JWTSecret, cfg.TokenTTL, cfg.RememberTokenTTL, log)
	catalogService := service.NewCatalogService(bookRepo, loanRepo, log)
	lendingService := service.NewLendingService(loanRepo, bookRepo, userRepo, log)
	accountService := service.NewAccountService(userRepo, log)
	bulkImporter := importer.New(bookRepo, log)

	authHandler := handler.NewAuthHandler(authService)
	bookHandler := handler.NewBookHandler(catalogService, lendingService)
	loanHandler := handler.NewLoanHandler(lendingService)
	userHandler := handler.NewUserHandler(accountService)
	dashboardHandler := handler.NewDashboardHandler(lendingService)
	importHandler := handler.NewImportHandler(bulkImporter)

	authMW := middleware.Auth(cfg.JWTSecret, revoker)
	anyRole := middleware.RBAC(domain.RoleAdmin, domain.RoleUser)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout, authMW)

	// --- Member routes ---
	v1 := e.Group("/v1", authMW, anyRole)
	v1.GET("/books", bookHandler.List)
	v1.POST("/books/:id/issue", bookHandler.Issue)
	v1.POST("/loans/:id/return", loanHandler.Return)
	v1.GET("/loans/me", loanHandler.ListMine)
	v1.GET("/dashboard/me", dashboardHandler.Me)

	// --- Admin routes ---
	admin := e.Group("/v1", authMW, adminOnly)
	admin.POST("/books", bookHandler.Create)
	admin.PUT("/books/:id", bookHandler.Update)
	admin.DELETE("/books/:id", bookHandler.Delete)
	admin.POST("/books/import", importHandler.Import)
	admin.POST("/loans", loanHandler.Create)
	admin.GET("/loans", loanHandler.List)
	admin.GET("/users", userHandler.List)
	admin.POST("/users/:id/toggle-active", userHandler.ToggleActive)
	admin.GET("/dashboard", dashboardHandler.Admin)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)

	// --- Observability & docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
