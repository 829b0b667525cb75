package router

import (
	"time"

	"github.com/Neo52000/ma-papeterie-sub000/internal/config"
	"github.com/Neo52000/ma-papeterie-sub000/internal/handler"
	"github.com/Neo52000/ma-papeterie-sub000/internal/middleware"
	"github.com/Neo52000/ma-papeterie-sub000/internal/model"
	"github.com/Neo52000/ma-papeterie-sub000/internal/repository"
	"github.com/Neo52000/ma-papeterie-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	rulesetRepo := repository.NewRulesetRepository(db)
	ruleRepo := repository.NewRuleRepository(db)
	simulationRepo := repository.NewSimulationRepository(db)
	priceLogRepo := repository.NewPriceChangeLogRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	clock := service.SystemClock()
	authSvc := service.NewAuthService(userRepo, cfg)
	rulesetSvc := service.NewRulesetService(rulesetRepo, ruleRepo)
	simulationSvc := service.NewSimulationService(simulationRepo, rulesetRepo, ruleRepo, productRepo, clock)
	pricingSvc := service.NewPricingService(simulationRepo, productRepo, priceLogRepo, clock)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUsersHandler(authSvc)
	rulesetsH := handler.NewRulesetsHandler(rulesetSvc)
	rulesH := handler.NewRulesHandler(rulesetSvc)
	cacheTTL := time.Duration(cfg.SimulationCacheTTLMinutes) * time.Minute
	simulationsH := handler.NewSimulationsHandler(simulationSvc, handler.NewRedisSimulationCache(rdb, cacheTTL))
	pricingH := handler.NewPricingHandler(pricingSvc)
	priceLogH := handler.NewPriceLogHandler(priceLogRepo)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	admins := middleware.RequireRole(model.RoleAdmin, model.RoleSuperAdmin)
	readers := middleware.RequireRole(model.RoleAdmin, model.RoleSuperAdmin, model.RoleViewer)

	v1 := r.Group("/v1", jwtMW)
	{
		// Rulesets and rules — admin/super_admin only
		rulesets := v1.Group("/rulesets", admins)
		{
			rulesets.POST("", rulesetsH.Create)
			rulesets.GET("", rulesetsH.List)
			rulesets.GET("/:id", rulesetsH.Get)
			rulesets.PUT("/:id", rulesetsH.Update)
			rulesets.DELETE("/:id", rulesetsH.Delete)
			rulesets.PATCH("/:id/activate", rulesetsH.Activate)
			rulesets.PATCH("/:id/deactivate", rulesetsH.Deactivate)
			rulesets.POST("/:id/rules", rulesH.Create)
			rulesets.GET("/:id/rules", rulesH.List)
		}
		rules := v1.Group("/rules", admins)
		{
			rules.PUT("/:id", rulesH.Update)
			rules.DELETE("/:id", rulesH.Delete)
			rules.PATCH("/:id/activate", rulesH.Activate)
			rules.PATCH("/:id/deactivate", rulesH.Deactivate)
		}

		// Simulations — viewers can read, only admins can run
		v1.POST("/simulations", admins, simulationsH.Run)
		v1.GET("/simulations", readers, simulationsH.List)
		v1.GET("/simulations/:id", readers, simulationsH.Get)

		// Apply / rollback — the only two catalog-mutating endpoints
		v1.POST("/pricing-apply", admins, pricingH.Apply)
		v1.POST("/pricing-rollback", admins, pricingH.Rollback)

		// Price-change ledger (read-only surface)
		v1.GET("/products/:id/price-log", readers, priceLogH.ListByProduct)

		// User management — super_admin only
		users := v1.Group("/users", middleware.RequireRole(model.RoleSuperAdmin))
		{
			users.POST("", usersH.Create)
			users.GET("", usersH.List)
			users.PUT("/:id", usersH.Update)
			users.DELETE("/:id", usersH.Deactivate)
			users.PATCH("/:id/reactivate", usersH.Reactivate)
		}
	}

	return r
}
