// Package dto holds the JSON wire shapes for the MRP read surface, per §6.
package dto

import (
	"time"

	"github.com/dangquyenbui-dotcom/production-portal-github/internal/domain/mrp"
	"github.com/dangquyenbui-dotcom/production-portal-github/internal/domain/mrp/aggregator"
)

// ComponentDetail is one BOM component's contribution to an order row.
type ComponentDetail struct {
	Component        string            `json:"component"`
	Required         string            `json:"required"`
	ApprovedConsumed string            `json:"approved_consumed"`
	QCConsumed       string            `json:"qc_consumed"`
	POConsumed       string            `json:"po_consumed"`
	Shortfall        string            `json:"shortfall"`
	PriorAllocations []PriorAllocation `json:"prior_allocations"`
}

// PriorAllocation is one (so_number, qty) tooltip entry.
type PriorAllocation struct {
	SONumber string `json:"so_number"`
	Qty      string `json:"qty"`
}

// Order is one row of the dashboard, customer summary, and order-detail views.
type Order struct {
	SONumber             string            `json:"so_number"`
	Customer             string            `json:"customer"`
	BusinessUnit         string            `json:"business_unit"`
	Facility             string            `json:"facility"`
	FGPart               string            `json:"fg_part"`
	DueShip              *time.Time        `json:"due_ship"`
	Required             string            `json:"required"`
	Shippable            string            `json:"shippable"`
	Producible           string            `json:"producible"`
	TotalDeliverable     string            `json:"total_deliverable"`
	Status               string            `json:"status"`
	JobCreated           bool              `json:"job_created"`
	BottleneckComponents []string          `json:"bottleneck_components"`
	Components           []ComponentDetail `json:"components"`
	UnitPrice            string            `json:"unit_price"`
}

// DashboardSummary is the status-bucket rollup on GET /mrp.
type DashboardSummary struct {
	Total             int `json:"total"`
	ReadyToShip       int `json:"ready_to_ship"`
	PendingQC         int `json:"pending_qc"`
	JobCreated        int `json:"job_created"`
	FullProduction    int `json:"full_production"`
	PartialProduction int `json:"partial_production"`
	PartialShip       int `json:"partial_ship"`
	Critical          int `json:"critical"`
}

// DashboardResponse is the body of GET /mrp.
type DashboardResponse struct {
	Orders  []Order          `json:"orders"`
	Summary DashboardSummary `json:"summary"`
}

// CustomerSummaryResponse is the body of GET /mrp/summary.
type CustomerSummaryResponse struct {
	Customer string  `json:"customer"`
	Total    int     `json:"total"`
	OnTrack  int     `json:"on_track"`
	AtRisk   int      `json:"at_risk"`
	Critical int     `json:"critical"`
	Orders   []Order `json:"orders"`
}

// ShortageAffected is one SO contributing to a component shortage row.
type ShortageAffected struct {
	SONumber  string     `json:"so_number"`
	Customer  string     `json:"customer"`
	Shortfall string     `json:"shortfall"`
	DueShip   *time.Time `json:"due_ship"`
}

// ComponentShortage is one row of GET /mrp/buyer-view.
type ComponentShortage struct {
	ComponentPart   string             `json:"component_part"`
	Description     string             `json:"description"`
	OnHandApproved  string             `json:"on_hand_approved"`
	OpenPOQty       string             `json:"open_po_qty"`
	TotalShortfall  string             `json:"total_shortfall"`
	Affected        []ShortageAffected `json:"affected"`
	EarliestDueShip *time.Time         `json:"earliest_due_ship"`
}

// ProjectionRequest is the body of POST /scheduling/api/update-projection.
type ProjectionRequest struct {
	SONumber   string `json:"so_number" binding:"required"`
	PartNumber string `json:"part_number" binding:"required"`
	RiskType   string `json:"risk_type" binding:"required"`
	Quantity   string `json:"quantity" binding:"required"`
}

// ProjectionResponse echoes back the persisted projection.
type ProjectionResponse struct {
	SONumber   string    `json:"so_number"`
	PartNumber string    `json:"part_number"`
	RiskType   string    `json:"risk_type"`
	Quantity   string    `json:"quantity"`
	UpdatedAt  time.Time `json:"updated_at"`
	UpdatedBy  string    `json:"updated_by"`
}

func componentDetails(cds []mrp.ComponentDetail) []ComponentDetail {
	out := make([]ComponentDetail, 0, len(cds))
	for _, cd := range cds {
		priors := make([]PriorAllocation, 0, len(cd.PriorAllocations))
		for _, p := range cd.PriorAllocations {
			priors = append(priors, PriorAllocation{SONumber: p.SONumber, Qty: p.Qty.String()})
		}
		out = append(out, ComponentDetail{
			Component:        cd.Component,
			Required:         cd.Required.String(),
			ApprovedConsumed: cd.ApprovedConsumed.String(),
			QCConsumed:       cd.QCConsumed.String(),
			POConsumed:       cd.POConsumed.String(),
			Shortfall:        cd.Shortfall.String(),
			PriorAllocations: priors,
		})
	}
	return out
}

// FromDashboardOrder converts an aggregator.DashboardOrder to its wire shape.
func FromDashboardOrder(o aggregator.DashboardOrder) Order {
	return Order{
		SONumber:             o.SONumber,
		Customer:             o.Customer,
		BusinessUnit:         o.BusinessUnit,
		Facility:             o.Facility,
		FGPart:               o.FGPart,
		DueShip:              o.DueShip,
		Required:             o.Required.String(),
		Shippable:            o.Shippable.String(),
		Producible:           o.Producible.String(),
		TotalDeliverable:     o.TotalDeliverable.String(),
		Status:               string(o.Status),
		JobCreated:           o.JobCreated,
		BottleneckComponents: o.BottleneckComponents,
		Components:           componentDetails(o.Components),
		UnitPrice:            o.UnitPrice.StringFixed(2),
	}
}

// FromDashboardView converts an aggregator.DashboardView to the GET /mrp body.
func FromDashboardView(v aggregator.DashboardView) DashboardResponse {
	orders := make([]Order, 0, len(v.Orders))
	for _, o := range v.Orders {
		orders = append(orders, FromDashboardOrder(o))
	}
	return DashboardResponse{
		Orders: orders,
		Summary: DashboardSummary{
			Total:             v.Summary.Total,
			ReadyToShip:       v.Summary.ReadyToShip,
			PendingQC:         v.Summary.PendingQC,
			JobCreated:        v.Summary.JobCreated,
			FullProduction:    v.Summary.FullProduction,
			PartialProduction: v.Summary.PartialProduction,
			PartialShip:       v.Summary.PartialShip,
			Critical:          v.Summary.Critical,
		},
	}
}

// FromCustomerSummary converts an aggregator.CustomerSummary to the
// GET /mrp/summary body.
func FromCustomerSummary(s aggregator.CustomerSummary) CustomerSummaryResponse {
	orders := make([]Order, 0, len(s.Orders))
	for _, o := range s.Orders {
		orders = append(orders, FromDashboardOrder(o))
	}
	return CustomerSummaryResponse{
		Customer: s.Customer,
		Total:    s.Total,
		OnTrack:  s.OnTrack,
		AtRisk:   s.AtRisk,
		Critical: s.Critical,
		Orders:   orders,
	}
}

// FromComponentShortages converts aggregator.ComponentShortage rows to the
// GET /mrp/buyer-view body.
func FromComponentShortages(rows []aggregator.ComponentShortage) []ComponentShortage {
	out := make([]ComponentShortage, 0, len(rows))
	for _, r := range rows {
		affected := make([]ShortageAffected, 0, len(r.Affected))
		for _, a := range r.Affected {
			affected = append(affected, ShortageAffected{
				SONumber:  a.SONumber,
				Customer:  a.Customer,
				Shortfall: a.Shortfall.String(),
				DueShip:   a.DueShip,
			})
		}
		out = append(out, ComponentShortage{
			ComponentPart:   r.ComponentPart,
			OnHandApproved:  r.OnHandApproved.String(),
			OpenPOQty:       r.OpenPOQty.String(),
			TotalShortfall:  r.TotalShortfall.String(),
			Affected:        affected,
			EarliestDueShip: r.EarliestDueShip,
		})
	}
	return out
}
