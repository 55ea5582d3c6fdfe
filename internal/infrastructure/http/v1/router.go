// Package v1 provides HTTP API version 1: the MRP read surface.
package v1

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dangquyenbui-dotcom/production-portal-github/internal/domain/mrp"
	"github.com/dangquyenbui-dotcom/production-portal-github/internal/infrastructure/http/v1/handlers"
	"github.com/dangquyenbui-dotcom/production-portal-github/internal/infrastructure/http/v1/middleware"
	"github.com/dangquyenbui-dotcom/production-portal-github/pkg/logger"
)

// cacheGetter matches (*mrpcache.Cache).Get's signature, keeping the router
// decoupled from the cache package's concrete type.
type cacheGetter interface {
	Get(ctx context.Context) (mrp.RunOutput, error)
}

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Cache serves a fresh-enough engine run for every read handler.
	Cache cacheGetter

	// Store is the Local Projection Store, written by the projection
	// upsert endpoint only.
	Store mrp.ProjectionStore

	// ERPPool and ProjectionsPool back the liveness probe.
	ERPPool         *pgxpool.Pool
	ProjectionsPool *pgxpool.Pool

	// Logger for request logging.
	Logger *logger.Logger
}

// NewRouter creates and configures the Gin router for the MRP read surface.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.ERPPool, cfg.ProjectionsPool)
	router.GET("/healthz", healthHandler.Live)

	mrpHandler := handlers.NewMRPHandler(cfg.Cache, cfg.Store)
	router.GET("/mrp", mrpHandler.Dashboard)
	router.GET("/mrp/summary", mrpHandler.Summary)
	router.GET("/mrp/buyer-view", mrpHandler.BuyerView)

	router.POST("/scheduling/api/update-projection", mrpHandler.UpdateProjection)

	return router
}
