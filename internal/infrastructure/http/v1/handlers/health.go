package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// HealthHandler serves the liveness probe supplemented in place of the
// tenant-aware health surface the engine's original host carried.
type HealthHandler struct {
	erpPool         *pgxpool.Pool
	projectionsPool *pgxpool.Pool
}

// NewHealthHandler constructs a HealthHandler over both Postgres pools.
func NewHealthHandler(erpPool, projectionsPool *pgxpool.Pool) *HealthHandler {
	return &HealthHandler{erpPool: erpPool, projectionsPool: projectionsPool}
}

// Live serves GET /healthz: it pings both pools with a short timeout and
// reports 200 only if both answer.
func (h *HealthHandler) Live(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.erpPool.Ping(ctx); err != nil {
		c.JSON(503, gin.H{"status": "down", "component": "erp"})
		return
	}
	if err := h.projectionsPool.Ping(ctx); err != nil {
		c.JSON(503, gin.H{"status": "down", "component": "projections"})
		return
	}

	c.JSON(200, gin.H{"status": "ok"})
}
