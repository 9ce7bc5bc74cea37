package handlers

import (
	"fmt"
	"slices"
	"time"

	"github.com/SscSPs/water_billing_ledger/cmd/docs"
	portssvc "github.com/SscSPs/water_billing_ledger/internal/core/ports/services"
	"github.com/SscSPs/water_billing_ledger/internal/middleware"
	"github.com/SscSPs/water_billing_ledger/internal/platform/config"
	"github.com/SscSPs/water_billing_ledger/internal/utils"
	"github.com/SscSPs/water_billing_ledger/pkg/clock"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	clk clock.Clock,
	posthogClient *utils.PosthogClientWrapper,
) error {
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})
	r.GET("/", getHome)

	uploadLimiter, err := middleware.NewLimiter(cfg.RateLimit)
	if err != nil {
		return fmt.Errorf("invalid RATE_LIMIT %q: %w", cfg.RateLimit, err)
	}

	// Setup API v1 routes with Auth Middleware, passing service interfaces
	setupAPIV1Routes(r, cfg, services, clk, middleware.RateLimit(uploadLimiter), posthogClient)

	// Swagger routes (typically public or conditionally available)
	setupSwaggerRoutes(r, cfg)
	return nil
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	clk clock.Clock,
	uploadLimit gin.HandlerFunc,
	posthogClient *utils.PosthogClientWrapper,
) {
	// Auth first so usage tracking sees the user
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret), middleware.PosthogMiddleware(posthogClient))

	registerAccountRoutes(v1, services.Account, uploadLimit)
	registerLedgerRoutes(v1, services.Ledger, clk)
	registerTariffRoutes(v1, services.Tariff)
	registerBillingRoutes(v1, services)
	registerDebtCaseRoutes(v1, services.DebtCase, clk)
	registerReconciliationRoutes(v1, services.Reconciliation, uploadLimit)
	registerCheckClosingRoutes(v1, services.CheckClosing)
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cfg
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	// Swagger setup
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
