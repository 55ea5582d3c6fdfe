// Package mrp implements the Material Requirements Planning allocation
// engine: given a snapshot of open sales orders, inventory pools, open
// purchase orders, open jobs, and single-level BOMs, it derives a
// disposition for every order and the components that bottleneck it.
package mrp

import (
	"time"

	"github.com/dangquyenbui-dotcom/production-portal-github/internal/core/types"
	"github.com/dangquyenbui-dotcom/production-portal-github/internal/domain/mrp/quantity"
)

// Qty aliases the package's fixed-point quantity type so the rest of the
// domain layer (engine, aggregator, ports, handlers) can refer to it
// without importing the quantity package directly.
type Qty = quantity.Qty

// RiskType enumerates the two buckets a user-entered schedule projection
// can be filed under.
type RiskType string

const (
	RiskNoLow RiskType = "NoLowRisk"
	RiskHigh  RiskType = "HighRisk"
)

// Valid reports whether r is one of the enumerated risk types.
func (r RiskType) Valid() bool {
	return r == RiskNoLow || r == RiskHigh
}

// SalesOrderLine is one open line of a customer sales order.
type SalesOrderLine struct {
	SONumber     string
	LineKey      string
	PartNumber   string
	Customer     string
	BusinessUnit string
	SOType       string
	Facility     string
	DueShip      *time.Time
	UnitPrice    types.Money
	RequiredQty  quantity.Qty
	ShippedQty   quantity.Qty
}

// NetQty is required_qty - shipped_qty, the quantity the engine must dispose.
func (l SalesOrderLine) NetQty() quantity.Qty {
	return l.RequiredQty.Sub(l.ShippedQty)
}

// OpenJob marks that a production job exists against a sales order.
type OpenJob struct {
	JobNumber   string
	SONumber    string
	PartNumber  string
	RequiredQty quantity.Qty
	CompletedQty quantity.Qty
}

// BomLine is one single-level component requirement of a parent part.
type BomLine struct {
	ParentPart    string
	ComponentPart string
	QtyPerUnit    quantity.Qty
	ScrapPercent  quantity.Qty
}

// EffectiveQtyPerUnit is qty_per_unit * (1 + scrap_percent/100).
func (b BomLine) EffectiveQtyPerUnit() quantity.Qty {
	hundred := quantity.FromFloat64(100).Decimal()
	one := quantity.FromFloat64(1).Decimal()
	factor := quantity.FromDecimal(b.ScrapPercent.Decimal().Div(hundred).Add(one))
	return b.QtyPerUnit.Mul(factor)
}

// UserProjection is a user-entered "no/low risk" or "high risk" quantity
// filed against one (so_number, part_number, risk_type) key.
type UserProjection struct {
	SONumber   string
	PartNumber string
	RiskType   RiskType
	Quantity   quantity.Qty
	UpdatedAt  time.Time
	UpdatedBy  string
}

// InventorySnapshot is the ERP gateway's normalized view of inventory and
// purchasing state at the start of a run. Keys are part numbers; a missing
// key implies zero.
type InventorySnapshot struct {
	Approved  map[string]quantity.Qty
	QCPending map[string]quantity.Qty
	OpenPO    map[string]quantity.Qty
}

func (s InventorySnapshot) at(pool map[string]quantity.Qty, part string) quantity.Qty {
	if pool == nil {
		return quantity.Zero
	}
	if q, ok := pool[part]; ok {
		return q
	}
	return quantity.Zero
}

// ApprovedOf returns the approved quantity for part, zero if absent.
func (s InventorySnapshot) ApprovedOf(part string) quantity.Qty { return s.at(s.Approved, part) }

// QCPendingOf returns the QC-pending quantity for part, zero if absent.
func (s InventorySnapshot) QCPendingOf(part string) quantity.Qty { return s.at(s.QCPending, part) }

// OpenPOOf returns the open-PO quantity for part, zero if absent.
func (s InventorySnapshot) OpenPOOf(part string) quantity.Qty { return s.at(s.OpenPO, part) }

// Allocation records a single pool consumption by a single sales order,
// kept purely for dashboard tooltips; it has no bearing on run outcomes.
type Allocation struct {
	SONumber       string
	Part           string
	ApprovedUsed   quantity.Qty
	QCUsed         quantity.Qty
	POUsed         quantity.Qty
}

// Total is the sum of the three pool draws this allocation recorded.
func (a Allocation) Total() quantity.Qty {
	return a.ApprovedUsed.Add(a.QCUsed).Add(a.POUsed)
}

// ComponentDetail reports one BOM line's contribution to an SO's result.
type ComponentDetail struct {
	Component        string
	Required         quantity.Qty
	ApprovedConsumed quantity.Qty
	QCConsumed       quantity.Qty
	POConsumed       quantity.Qty
	Shortfall        quantity.Qty
	PriorAllocations []PriorAllocation
}

// PriorAllocation is one tooltip-facing (so_number, qty) consumption entry.
type PriorAllocation struct {
	SONumber string
	Qty      quantity.Qty
}

// Status is one of the seven mutually exclusive SO dispositions.
type Status string

const (
	StatusReadyToShip           Status = "Ready to Ship"
	StatusJobCreated            Status = "Job Created"
	StatusPartialShip           Status = "Partial Ship"
	StatusPendingQC             Status = "Pending QC"
	StatusFullProductionReady   Status = "Full Production Ready"
	StatusPartialProductionReady Status = "Partial Production Ready"
	StatusCriticalShortage      Status = "Critical Shortage"
)

// SoResult is the engine's per-SO output record.
type SoResult struct {
	SONumber            string
	Customer            string
	BusinessUnit        string
	Facility            string
	FGPart              string
	DueShip             *time.Time
	RequiredQty         quantity.Qty
	Status              Status
	JobCreated          bool
	ShippableFromStock  quantity.Qty
	ProducibleQty       quantity.Qty
	TotalDeliverable    quantity.Qty
	BottleneckComponents []string
	ComponentDetails    []ComponentDetail
	UnitPrice           types.Money
}
