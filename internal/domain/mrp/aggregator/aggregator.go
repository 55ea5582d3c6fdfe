// Package aggregator transforms one MRP engine run into the three
// published views: the dashboard, the per-customer summary, and the
// purchasing shortage report (§4.5). It never re-queries the ERP gateway;
// it operates purely on the engine's output and the input snapshot it
// already read.
package aggregator

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dangquyenbui-dotcom/production-portal-github/internal/core/types"
	"github.com/dangquyenbui-dotcom/production-portal-github/internal/domain/mrp"
)

// StatusBucket is one of the three coarse groupings the dashboard filters
// by, per §4.5.
type StatusBucket string

const (
	BucketReadyToShip      StatusBucket = "ready-to-ship"
	BucketProductionNeeded StatusBucket = "production-needed"
	BucketActionRequired   StatusBucket = "action-required"
)

func (b StatusBucket) valid() bool {
	switch b {
	case "", BucketReadyToShip, BucketProductionNeeded, BucketActionRequired:
		return true
	default:
		return false
	}
}

var productionNeeded = map[mrp.Status]bool{
	mrp.StatusFullProductionReady:    true, // "ok" per §4.5's union wording
	mrp.StatusPartialProductionReady: true,
	mrp.StatusPartialShip:            true,
	mrp.StatusJobCreated:             true,
}

var actionRequired = map[mrp.Status]bool{
	mrp.StatusCriticalShortage: true,
	mrp.StatusPendingQC:        true,
}

func inBucket(status mrp.Status, bucket StatusBucket) bool {
	switch bucket {
	case "":
		return true
	case BucketReadyToShip:
		return status == mrp.StatusReadyToShip
	case BucketProductionNeeded:
		return productionNeeded[status]
	case BucketActionRequired:
		return actionRequired[status]
	default:
		return false
	}
}

// DashboardFilter is the validated query for the dashboard view.
type DashboardFilter struct {
	BusinessUnit string
	Customer     string
	FGPart       string
	DueShipMonth int // 1-12, 0 means unfiltered
	DueShipYear  int // 0 means unfiltered
	DueShipBlank bool
	Bucket       StatusBucket
	Limit        int
	Offset       int
}

// Validate checks enumerated fields and clamps pagination, matching the
// reference report filter's default/clamp behavior (default 100, cap 1000).
func (f *DashboardFilter) Validate() error {
	if !f.Bucket.valid() {
		return fmt.Errorf("unknown status bucket %q", f.Bucket)
	}
	if f.Limit <= 0 {
		f.Limit = 100
	}
	if f.Limit > 1000 {
		f.Limit = 1000
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return nil
}

// DashboardOrder is one row of the dashboard response.
type DashboardOrder struct {
	SONumber            string
	Customer            string
	BusinessUnit        string
	Facility            string
	FGPart              string
	DueShip             *time.Time
	Required            mrp.Qty
	Shippable           mrp.Qty
	Producible          mrp.Qty
	TotalDeliverable    mrp.Qty
	Status              mrp.Status
	JobCreated          bool
	BottleneckComponents []string
	Components          []mrp.ComponentDetail
	UnitPrice           types.Money
}

// DashboardSummary is the status-bucket rollup returned alongside the order list.
type DashboardSummary struct {
	Total              int
	ReadyToShip        int
	PendingQC          int
	JobCreated         int
	FullProduction     int
	PartialProduction  int
	PartialShip        int
	Critical           int
}

// DashboardView is the full response for GET /mrp.
type DashboardView struct {
	Orders  []DashboardOrder
	Summary DashboardSummary
}

// Dashboard builds the filtered, paginated dashboard view from a run's results.
func Dashboard(results []mrp.SoResult, filter DashboardFilter) (DashboardView, error) {
	if err := filter.Validate(); err != nil {
		return DashboardView{}, err
	}

	var summary DashboardSummary
	filtered := make([]mrp.SoResult, 0, len(results))
	for _, r := range results {
		tallyStatus(&summary, r.Status)

		if filter.BusinessUnit != "" && r.BusinessUnit != filter.BusinessUnit {
			continue
		}
		if filter.Customer != "" && r.Customer != filter.Customer {
			continue
		}
		if filter.FGPart != "" && r.FGPart != filter.FGPart {
			continue
		}
		if filter.DueShipBlank && r.DueShip != nil {
			continue
		}
		if !filter.DueShipBlank && (filter.DueShipMonth != 0 || filter.DueShipYear != 0) {
			if r.DueShip == nil {
				continue
			}
			if filter.DueShipMonth != 0 && int(r.DueShip.Month()) != filter.DueShipMonth {
				continue
			}
			if filter.DueShipYear != 0 && r.DueShip.Year() != filter.DueShipYear {
				continue
			}
		}
		if !inBucket(r.Status, filter.Bucket) {
			continue
		}
		filtered = append(filtered, r)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		a, b := filtered[i], filtered[j]
		switch {
		case a.DueShip == nil && b.DueShip == nil:
			return a.SONumber < b.SONumber
		case a.DueShip == nil:
			return false
		case b.DueShip == nil:
			return true
		case !a.DueShip.Equal(*b.DueShip):
			return a.DueShip.Before(*b.DueShip)
		default:
			return a.SONumber < b.SONumber
		}
	})

	start := filter.Offset
	if start > len(filtered) {
		start = len(filtered)
	}
	end := start + filter.Limit
	if end > len(filtered) {
		end = len(filtered)
	}
	page := filtered[start:end]

	orders := make([]DashboardOrder, 0, len(page))
	for _, r := range page {
		orders = append(orders, DashboardOrder{
			SONumber:             r.SONumber,
			Customer:             r.Customer,
			BusinessUnit:         r.BusinessUnit,
			Facility:             r.Facility,
			FGPart:               r.FGPart,
			DueShip:              r.DueShip,
			Required:             r.RequiredQty,
			Shippable:            r.ShippableFromStock,
			Producible:           r.ProducibleQty,
			TotalDeliverable:     r.TotalDeliverable,
			Status:               r.Status,
			JobCreated:           r.JobCreated,
			BottleneckComponents: r.BottleneckComponents,
			Components:           r.ComponentDetails,
			UnitPrice:            r.UnitPrice,
		})
	}

	return DashboardView{Orders: orders, Summary: summary}, nil
}

func tallyStatus(s *DashboardSummary, status mrp.Status) {
	s.Total++
	switch status {
	case mrp.StatusReadyToShip:
		s.ReadyToShip++
	case mrp.StatusPendingQC:
		s.PendingQC++
	case mrp.StatusJobCreated:
		s.JobCreated++
	case mrp.StatusFullProductionReady:
		s.FullProduction++
	case mrp.StatusPartialProductionReady:
		s.PartialProduction++
	case mrp.StatusPartialShip:
		s.PartialShip++
	case mrp.StatusCriticalShortage:
		s.Critical++
	}
}

// CustomerSummary is the response for GET /mrp/summary?customer=….
type CustomerSummary struct {
	Customer string
	Total    int
	OnTrack  int
	AtRisk   int
	Critical int
	Orders   []DashboardOrder
}

var onTrack = map[mrp.Status]bool{
	mrp.StatusReadyToShip:          true,
	mrp.StatusFullProductionReady:  true,
	mrp.StatusJobCreated:           true,
}

var atRisk = map[mrp.Status]bool{
	mrp.StatusPartialShip:            true,
	mrp.StatusPartialProductionReady: true,
	mrp.StatusPendingQC:              true,
}

// ForCustomer groups results for one customer into the On-Track/At-Risk/
// Critical buckets, per §4.5.
func ForCustomer(results []mrp.SoResult, customer string) (CustomerSummary, error) {
	if customer == "" {
		return CustomerSummary{}, fmt.Errorf("customer is required")
	}

	out := CustomerSummary{Customer: customer}
	for _, r := range results {
		if r.Customer != customer {
			continue
		}
		out.Total++
		switch {
		case onTrack[r.Status]:
			out.OnTrack++
		case atRisk[r.Status]:
			out.AtRisk++
		case r.Status == mrp.StatusCriticalShortage:
			out.Critical++
		}
		out.Orders = append(out.Orders, DashboardOrder{
			SONumber:             r.SONumber,
			Customer:             r.Customer,
			BusinessUnit:         r.BusinessUnit,
			Facility:             r.Facility,
			FGPart:               r.FGPart,
			DueShip:              r.DueShip,
			Required:             r.RequiredQty,
			Shippable:            r.ShippableFromStock,
			Producible:           r.ProducibleQty,
			TotalDeliverable:     r.TotalDeliverable,
			Status:               r.Status,
			JobCreated:           r.JobCreated,
			BottleneckComponents: r.BottleneckComponents,
			Components:           r.ComponentDetails,
			UnitPrice:            r.UnitPrice,
		})
	}
	return out, nil
}

// ShortageAffected is one SO contributing to a component's shortage.
type ShortageAffected struct {
	SONumber  string
	Customer  string
	Shortfall mrp.Qty
	DueShip   *time.Time
}

// ComponentShortage is one row of the purchasing shortage report.
type ComponentShortage struct {
	ComponentPart  string
	OnHandApproved mrp.Qty
	OpenPOQty      mrp.Qty
	TotalShortfall mrp.Qty
	Affected       []ShortageAffected
	EarliestDueShip *time.Time
}

// ShortageFilter validates urgency-window and customer/text filters for
// GET /mrp/buyer-view.
type ShortageFilter struct {
	Now          time.Time
	UrgencyDays  int  // ignored when UrgencyAll is true
	UrgencyAll   bool
	Customer     string
	Query        string // matched against component_part, case-insensitive substring
}

// PurchasingShortageReport aggregates per-SO component shortfalls by
// component, sorted by earliest due date then part number, per §4.5/§6.
func PurchasingShortageReport(results []mrp.SoResult, inv mrp.InventorySnapshot, filter ShortageFilter) []ComponentShortage {
	byComponent := make(map[string]*ComponentShortage)

	for _, r := range results {
		if filter.Customer != "" && r.Customer != filter.Customer {
			continue
		}
		for _, cd := range r.ComponentDetails {
			if !cd.Shortfall.IsPositive() {
				continue
			}
			cs, ok := byComponent[cd.Component]
			if !ok {
				cs = &ComponentShortage{
					ComponentPart:  cd.Component,
					OnHandApproved: inv.ApprovedOf(cd.Component),
					OpenPOQty:      inv.OpenPOOf(cd.Component),
				}
				byComponent[cd.Component] = cs
			}
			cs.TotalShortfall = cs.TotalShortfall.Add(cd.Shortfall)
			cs.Affected = append(cs.Affected, ShortageAffected{
				SONumber:  r.SONumber,
				Customer:  r.Customer,
				Shortfall: cd.Shortfall,
				DueShip:   r.DueShip,
			})
			if r.DueShip != nil && (cs.EarliestDueShip == nil || r.DueShip.Before(*cs.EarliestDueShip)) {
				cs.EarliestDueShip = r.DueShip
			}
		}
	}

	out := make([]ComponentShortage, 0, len(byComponent))
	for _, cs := range byComponent {
		if filter.Query != "" && !strings.Contains(strings.ToLower(cs.ComponentPart), strings.ToLower(filter.Query)) {
			continue
		}
		if !filter.UrgencyAll {
			if cs.EarliestDueShip == nil {
				continue
			}
			daysOut := int(cs.EarliestDueShip.Sub(filter.Now).Hours() / 24)
			if daysOut > filter.UrgencyDays {
				continue
			}
		}
		out = append(out, *cs)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.EarliestDueShip == nil && b.EarliestDueShip == nil:
			return a.ComponentPart < b.ComponentPart
		case a.EarliestDueShip == nil:
			return false
		case b.EarliestDueShip == nil:
			return true
		case !a.EarliestDueShip.Equal(*b.EarliestDueShip):
			return a.EarliestDueShip.Before(*b.EarliestDueShip)
		default:
			return a.ComponentPart < b.ComponentPart
		}
	})

	return out
}

