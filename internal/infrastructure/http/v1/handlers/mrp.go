// Package handlers implements the gin handlers for the MRP read surface.
package handlers

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dangquyenbui-dotcom/production-portal-github/internal/core/apperror"
	"github.com/dangquyenbui-dotcom/production-portal-github/internal/domain/mrp"
	"github.com/dangquyenbui-dotcom/production-portal-github/internal/domain/mrp/aggregator"
	"github.com/dangquyenbui-dotcom/production-portal-github/internal/domain/mrp/quantity"
	"github.com/dangquyenbui-dotcom/production-portal-github/internal/infrastructure/http/v1/dto"
)

// cacheGetter matches (*mrpcache.Cache).Get's signature without importing
// the cache package, keeping handlers decoupled from its concrete type.
type cacheGetter interface {
	Get(ctx context.Context) (mrp.RunOutput, error)
}

// MRPHandler serves the dashboard, customer summary, and purchasing
// shortage views over the most recent cached engine run.
type MRPHandler struct {
	cache cacheGetter
	store mrp.ProjectionStore
}

// NewMRPHandler constructs an MRPHandler.
func NewMRPHandler(cache cacheGetter, store mrp.ProjectionStore) *MRPHandler {
	return &MRPHandler{cache: cache, store: store}
}

// Dashboard serves GET /mrp.
func (h *MRPHandler) Dashboard(c *gin.Context) {
	out, err := h.cache.Get(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	filter, err := parseDashboardFilter(c)
	if err != nil {
		_ = c.Error(apperror.NewValidation(err.Error()))
		return
	}

	view, err := aggregator.Dashboard(out.Results, filter)
	if err != nil {
		_ = c.Error(apperror.NewValidation(err.Error()))
		return
	}

	c.JSON(200, dto.FromDashboardView(view))
}

// Summary serves GET /mrp/summary.
func (h *MRPHandler) Summary(c *gin.Context) {
	customer := strings.TrimSpace(c.Query("customer"))
	if customer == "" {
		_ = c.Error(apperror.NewValidation("customer is required"))
		return
	}

	out, err := h.cache.Get(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	summary, err := aggregator.ForCustomer(out.Results, customer)
	if err != nil {
		_ = c.Error(apperror.NewValidation(err.Error()))
		return
	}

	c.JSON(200, dto.FromCustomerSummary(summary))
}

// BuyerView serves GET /mrp/buyer-view.
func (h *MRPHandler) BuyerView(c *gin.Context) {
	out, err := h.cache.Get(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	filter, err := parseShortageFilter(c)
	if err != nil {
		_ = c.Error(apperror.NewValidation(err.Error()))
		return
	}

	rows := aggregator.PurchasingShortageReport(out.Results, out.Inventory, filter)
	c.JSON(200, dto.FromComponentShortages(rows))
}

// UpdateProjection serves POST /scheduling/api/update-projection. It never
// triggers a run; it only writes to the Local Projection Store per §4.6.
// The actor recorded as updated_by is taken from the X-Actor request header.
func (h *MRPHandler) UpdateProjection(c *gin.Context) {
	var req dto.ProjectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperror.NewValidation(err.Error()))
		return
	}

	risk := mrp.RiskType(req.RiskType)
	if !risk.Valid() {
		_ = c.Error(apperror.NewValidation("risk_type must be NoLowRisk or HighRisk"))
		return
	}

	qty, err := quantity.FromString(req.Quantity)
	if err != nil {
		_ = c.Error(apperror.NewValidation("quantity must be a decimal number"))
		return
	}
	if qty.IsNegative() {
		_ = c.Error(apperror.NewValidation("quantity must be >= 0"))
		return
	}

	updatedBy := c.GetHeader("X-Actor")

	p := mrp.UserProjection{
		SONumber:   req.SONumber,
		PartNumber: req.PartNumber,
		RiskType:   risk,
		Quantity:   qty,
		UpdatedAt:  time.Now().UTC(),
		UpdatedBy:  updatedBy,
	}

	if err := h.store.UpsertProjection(c.Request.Context(), p); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(200, dto.ProjectionResponse{
		SONumber:   p.SONumber,
		PartNumber: p.PartNumber,
		RiskType:   string(p.RiskType),
		Quantity:   p.Quantity.String(),
		UpdatedAt:  p.UpdatedAt,
		UpdatedBy:  p.UpdatedBy,
	})
}

func parseDashboardFilter(c *gin.Context) (aggregator.DashboardFilter, error) {
	f := aggregator.DashboardFilter{
		BusinessUnit: c.Query("bu"),
		Customer:     c.Query("customer"),
		FGPart:       c.Query("fg"),
		Bucket:       aggregator.StatusBucket(c.Query("status")),
	}

	if due := c.Query("due_ship"); due != "" {
		if strings.EqualFold(due, "Blank") {
			f.DueShipBlank = true
		} else {
			month, year, err := parseMonthYear(due)
			if err != nil {
				return f, err
			}
			f.DueShipMonth, f.DueShipYear = month, year
		}
	}

	if limit := c.Query("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil {
			return f, err
		}
		f.Limit = n
	}
	if offset := c.Query("offset"); offset != "" {
		n, err := strconv.Atoi(offset)
		if err != nil {
			return f, err
		}
		f.Offset = n
	}

	return f, nil
}

func parseMonthYear(s string) (month, year int, err error) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return 0, 0, errInvalidDueShip
	}
	month, err = strconv.Atoi(parts[0])
	if err != nil || month < 1 || month > 12 {
		return 0, 0, errInvalidDueShip
	}
	year, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, errInvalidDueShip
	}
	return month, year, nil
}

var errInvalidDueShip = errDueShipFormat{}

type errDueShipFormat struct{}

func (errDueShipFormat) Error() string { return "due_ship must be MM/YYYY or \"Blank\"" }

func parseShortageFilter(c *gin.Context) (aggregator.ShortageFilter, error) {
	f := aggregator.ShortageFilter{
		Now:      time.Now().UTC(),
		Customer: c.Query("customer"),
		Query:    c.Query("q"),
	}

	urgency := c.Query("urgency_days")
	switch {
	case urgency == "" || strings.EqualFold(urgency, "all"):
		f.UrgencyAll = true
	default:
		n, err := strconv.Atoi(urgency)
		if err != nil {
			return f, err
		}
		f.UrgencyDays = n
	}

	return f, nil
}
