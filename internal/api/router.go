package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/optixtrade/trading-platform/internal/api/handler"
	"github.com/optixtrade/trading-platform/internal/api/metrics"
	"github.com/optixtrade/trading-platform/internal/api/middleware"
	"github.com/optixtrade/trading-platform/internal/core/domain"
	"github.com/optixtrade/trading-platform/internal/core/ports"
	"github.com/optixtrade/trading-platform/internal/core/service"
	mongostore "github.com/optixtrade/trading-platform/internal/infrastructure/db/mongo"
	redisstore "github.com/optixtrade/trading-platform/internal/infrastructure/db/redis"
	"github.com/optixtrade/trading-platform/internal/pkg/config"
	"github.com/optixtrade/trading-platform/internal/security"
	"github.com/optixtrade/trading-platform/pkg/logger"
)

const tokenTTL = 24 * time.Hour

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg *config.Config) *echo.Echo {
	log := logger.Get()

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("trading"))

	// --- Repositories ---
	userRepo := mongostore.NewUserRepository(db)
	walletRepo := mongostore.NewWalletRepository(db)
	tradeRepo := mongostore.NewTradeRepository(db)
	eventRepo := mongostore.NewSecurityEventRepository(db)

	// --- Services ---
	auditService := service.NewAuditService(eventRepo, log)
	authService := service.NewAuthService(userRepo, auditService, cfg.JWTSecret, tokenTTL, log)
	payoutService := service.NewPayoutService(userRepo, auditService, cfg.DefaultPayoutPct, log)
	tradeService := service.NewTradeService(tradeRepo, walletRepo, payoutService, auditService, log)
	walletService := service.NewWalletService(walletRepo, auditService, log)
	userService := service.NewUserService(userRepo, auditService, log)

	// --- Bootstrap guard ---
	limiter := redisstore.NewRateLimiter(rdb, cfg.BootstrapRateLimit, cfg.BootstrapRateWindow, "ratelimit:bootstrap")
	guard := security.NewBootstrapGuard(cfg.BootstrapKey, limiter)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(authService, guard, auditService)
	tradeHandler := handler.NewTradeHandler(tradeService)
	walletHandler := handler.NewWalletHandler(walletService)
	adminHandler := handler.NewAdminHandler(tradeService, payoutService, userService)
	securityHandler := handler.NewSecurityHandler(auditService)
	csrfHandler := handler.NewCSRFHandler()

	authMW := middleware.Auth(cfg.JWTSecret)
	csrfMW := newCSRFMiddleware(auditService)

	// --- Auth routes (pre-session, no CSRF cookie yet) ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// Bootstrap authenticates with the pre-shared key, not a browser
	// session, so it stays outside the CSRF group.
	e.POST("/admin/bootstrap", authHandler.Bootstrap)

	// --- CSRF token issuance ---
	e.GET("/csrf", csrfHandler.Token, csrfMW)

	// --- Trades ---
	trades := e.Group("/trades", authMW, csrfMW)
	trades.POST("", tradeHandler.Place, middleware.Require(domain.CapPlaceTrade))
	trades.GET("", tradeHandler.List)

	// --- Wallets ---
	wallets := e.Group("/wallets", authMW, csrfMW)
	wallets.GET("", walletHandler.List)
	wallets.GET("/transactions", walletHandler.Transactions)
	wallets.POST("/deposit", walletHandler.Deposit)
	wallets.POST("/withdraw", walletHandler.Withdraw)

	// --- Staff routes ---
	admin := e.Group("/admin", authMW, csrfMW)
	admin.POST("/trades/override", adminHandler.OverrideTrade, middleware.Require(domain.CapOverrideTrade))
	admin.POST("/users/payout", adminHandler.SetPayout, middleware.Require(domain.CapSetPayout))
	admin.POST("/users/payout/bulk", adminHandler.SetPayoutBulk, middleware.Require(domain.CapSetPayout))
	admin.POST("/users/role", adminHandler.SetRole, middleware.Require(domain.CapChangeRole))

	secGroup := e.Group("/security", authMW)
	secGroup.GET("/events", securityHandler.Events, middleware.Require(domain.CapReadSecurityEvents))

	// --- Observability (no auth required) ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/health", handler.NewHealthHandler().Liveness)
	e.GET("/health/ready", handler.NewReadinessHandler(db, rdb).Readiness)

	return e
}

// newCSRFMiddleware configures the double-submit check: the token rides
// in the _csrf cookie and must be echoed back in the X-CSRF-Token header
// on every state-changing request. Rejections land in the audit log
// before any handler runs, so no ledger state can change.
func newCSRFMiddleware(audit ports.AuditService) echo.MiddlewareFunc {
	return echomiddleware.CSRFWithConfig(echomiddleware.CSRFConfig{
		TokenLookup:    "header:X-CSRF-Token",
		CookieName:     "_csrf",
		CookiePath:     "/",
		CookieSameSite: http.SameSiteStrictMode,
		ErrorHandler: func(err error, c echo.Context) error {
			metrics.CSRFRejectionsTotal.Inc()
			actorID, _ := c.Get("user_id").(string)
			_ = audit.Record(c.Request().Context(), domain.EventCSRFRejected, domain.EventDenied,
				actorID, c.RealIP(), c.Request().Method+" "+c.Path())
			return domain.ErrCSRFRejected
		},
	})
}
