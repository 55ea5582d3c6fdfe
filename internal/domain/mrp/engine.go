package mrp

import (
	"context"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel"

	"github.com/dangquyenbui-dotcom/production-portal-github/internal/core/apperror"
	"github.com/dangquyenbui-dotcom/production-portal-github/internal/domain/mrp/quantity"
	"github.com/dangquyenbui-dotcom/production-portal-github/pkg/logger"
)

// Zero re-exports quantity.Zero at package scope for readability within
// this file's arithmetic.
var Zero = quantity.Zero

var tracer = otel.Tracer("mrp.engine")

// EngineConfig carries the run-scoped tunables from §6.
type EngineConfig struct {
	QtyTolerance Qty
	ScrapCap     Qty
}

// Engine orchestrates one MRP run (§4.4). It holds no state between calls
// to Run; every run pulls a fresh snapshot from Gateway and ProjectionStore.
type Engine struct {
	gateway  Gateway
	store    ProjectionStore
	cfg      EngineConfig
}

// NewEngine constructs an Engine over the given read boundaries.
func NewEngine(gateway Gateway, store ProjectionStore, cfg EngineConfig) *Engine {
	return &Engine{gateway: gateway, store: store, cfg: cfg}
}

// RunOutput is everything one call to Run produces: the per-SO results the
// aggregator consumes, the input snapshot it needs for the purchasing
// shortage report's on-hand/open-PO columns, and the user-entered
// projections read alongside the ERP snapshot (§2's data flow; the engine
// reads them but never writes them, and no published view currently
// surfaces them back — they are read purely so a future view can join
// against them without a second store round trip).
type RunOutput struct {
	Results     []SoResult
	Inventory   InventorySnapshot
	Projections []UserProjection
}

// Run executes a single MRP run and returns the ordered SoResult list.
// It fails closed: any gateway or data-integrity error aborts the run and
// returns no partial view.
func (e *Engine) Run(ctx context.Context) (RunOutput, error) {
	ctx, span := tracer.Start(ctx, "mrp.run")
	defer span.End()

	orders, err := e.gateway.OpenSalesOrders(ctx)
	if err != nil {
		return RunOutput{}, apperror.NewUpstreamUnavailable(err)
	}
	approved, err := e.gateway.InventoryApproved(ctx)
	if err != nil {
		return RunOutput{}, apperror.NewUpstreamUnavailable(err)
	}
	qcPending, err := e.gateway.InventoryQCPending(ctx)
	if err != nil {
		return RunOutput{}, apperror.NewUpstreamUnavailable(err)
	}
	openPO, err := e.gateway.OpenPOQuantities(ctx)
	if err != nil {
		return RunOutput{}, apperror.NewUpstreamUnavailable(err)
	}
	jobs, err := e.gateway.OpenJobs(ctx)
	if err != nil {
		return RunOutput{}, apperror.NewUpstreamUnavailable(err)
	}

	orders = openOnly(orders)

	soNumbers := make([]string, 0, len(orders))
	for _, o := range orders {
		soNumbers = append(soNumbers, o.SONumber)
	}
	projections, err := e.store.ReadProjectionsFor(ctx, soNumbers)
	if err != nil {
		return RunOutput{}, apperror.NewLocalStoreUnavailable(err)
	}

	fgParts := make(map[string]struct{}, len(orders))
	for _, o := range orders {
		fgParts[o.PartNumber] = struct{}{}
	}
	partsList := make([]string, 0, len(fgParts))
	for p := range fgParts {
		partsList = append(partsList, p)
	}
	boms, err := e.gateway.BOMFor(ctx, partsList)
	if err != nil {
		if appErr, ok := apperror.AsAppError(err); ok {
			return RunOutput{}, appErr
		}
		return RunOutput{}, apperror.NewUpstreamUnavailable(err)
	}
	if err := e.validateBoms(boms); err != nil {
		return RunOutput{}, err
	}

	snapshot := InventorySnapshot{Approved: approved, QCPending: qcPending, OpenPO: openPO}
	inv := NewLiveInventory(snapshot)

	jobIndex := make(map[string]OpenJob, len(jobs)) // keyed by so_number|part_number
	for _, j := range jobs {
		jobIndex[j.SONumber+"|"+j.PartNumber] = j
	}

	sortSalesOrders(orders)

	results := make([]SoResult, 0, len(orders))
	for _, so := range orders {
		res, err := e.processOne(inv, so, boms[so.PartNumber], jobIndex)
		if err != nil {
			return RunOutput{}, err
		}
		results = append(results, res)
	}

	logger.Info(ctx, "mrp run completed", "orders", len(results))
	return RunOutput{Results: results, Inventory: snapshot, Projections: projections}, nil
}

// openOnly filters to SOs with net_qty > 0, per §3.
func openOnly(orders []SalesOrderLine) []SalesOrderLine {
	out := make([]SalesOrderLine, 0, len(orders))
	for _, o := range orders {
		if o.NetQty().IsPositive() {
			out = append(out, o)
		}
	}
	return out
}

// sortSalesOrders orders by (due_ship ASC, so_number ASC); missing
// due_ship sorts last. The comparator is stable and total, per §4.4.
func sortSalesOrders(orders []SalesOrderLine) {
	sort.SliceStable(orders, func(i, j int) bool {
		a, b := orders[i], orders[j]
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
}

func (e *Engine) validateBoms(boms map[string][]BomLine) error {
	for parent, lines := range boms {
		for _, l := range lines {
			if l.ComponentPart == "" {
				return apperror.NewDataIntegrity(fmt.Sprintf("BOM for %s has a line with no component part", parent))
			}
			if l.ScrapPercent.GreaterThan(e.cfg.ScrapCap) {
				return apperror.NewDataIntegrity(fmt.Sprintf("BOM %s -> %s scrap_percent exceeds SCRAP_CAP", parent, l.ComponentPart))
			}
		}
	}
	return nil
}

// processOne runs the finished-good pass and, if needed, the two-pass
// component computation for a single sales order, per §4.4.
func (e *Engine) processOne(inv *LiveInventory, so SalesOrderLine, bom []BomLine, jobIndex map[string]OpenJob) (SoResult, error) {
	netQty := so.NetQty()
	_, hasJob := jobIndex[so.SONumber+"|"+so.PartNumber]

	res := SoResult{
		SONumber:     so.SONumber,
		Customer:     so.Customer,
		BusinessUnit: so.BusinessUnit,
		Facility:     so.Facility,
		FGPart:       so.PartNumber,
		DueShip:      so.DueShip,
		RequiredQty:  netQty,
		JobCreated:   hasJob,
		UnitPrice:    so.UnitPrice,
	}

	// Job Created shortcut (§4.4 step 1, final paragraph): a job against
	// this SO/part means the engine trusts the job to satisfy the
	// remainder and never attempts component allocation.
	if hasJob {
		shippable := inv.Consume(so.PartNumber, netQty, ApprovedOnly)
		inv.RecordAllocation(so.PartNumber, so.SONumber, shippable)
		res.ShippableFromStock = shippable.Total()
		res.TotalDeliverable = res.ShippableFromStock
		if res.ShippableFromStock.GreaterThanOrEqual(netQty) {
			res.Status = StatusReadyToShip
		} else {
			res.Status = StatusJobCreated
		}
		return res, nil
	}

	shippable := inv.Consume(so.PartNumber, netQty, ApprovedOnly)
	inv.RecordAllocation(so.PartNumber, so.SONumber, shippable)
	res.ShippableFromStock = shippable.Total()

	outcome := soOutcome{
		netQty:             netQty,
		shippableFromStock: res.ShippableFromStock,
	}

	if res.ShippableFromStock.GreaterThanOrEqual(netQty) {
		res.Status = StatusReadyToShip
		res.TotalDeliverable = res.ShippableFromStock
		return res, nil
	}

	if res.ShippableFromStock.IsZero() {
		outcome.approvedPlusQC = inv.ProbeApprovedPlusQC(so.PartNumber)
		if outcome.approvedPlusQC.GreaterThanOrEqual(netQty) {
			res.Status = StatusPendingQC
			return res, nil
		}
	}

	remainingNeeded := netQty.Sub(res.ShippableFromStock)
	outcome.remainingNeeded = remainingNeeded

	producibleMax, details, bottlenecks, err := e.computeComponentPass(inv, so.SONumber, bom, remainingNeeded)
	if err != nil {
		return SoResult{}, err
	}
	outcome.producibleMax = producibleMax

	res.ProducibleQty = producibleMax
	res.TotalDeliverable = res.ShippableFromStock.Add(producibleMax)
	res.ComponentDetails = details
	res.BottleneckComponents = bottlenecks
	res.Status = deriveStatus(outcome)

	return res, nil
}

// computeComponentPass runs Pass A (discovery) then Pass B (allocation)
// over bom, per §4.4 step 2.
func (e *Engine) computeComponentPass(inv *LiveInventory, soNumber string, bom []BomLine, remainingNeeded Qty) (Qty, []ComponentDetail, []string, error) {
	if len(bom) == 0 {
		// No BOM at all: nothing constrains production, so nothing can be
		// produced either. Treated as a zero-producible critical shortage
		// rather than an unconstrained pass.
		return Zero, nil, nil, nil
	}

	// Pass A: discovery, non-destructive.
	type discovery struct {
		line          BomLine
		effectiveRate Qty
		maxProducible Qty
	}
	discoveries := make([]discovery, 0, len(bom))
	producibleMax := remainingNeeded
	for _, line := range bom {
		rate := line.EffectiveQtyPerUnit()
		avail := inv.ProbeTotal(line.ComponentPart)
		maxByComponent := avail.DivFloor(rate)
		discoveries = append(discoveries, discovery{line: line, effectiveRate: rate, maxProducible: maxByComponent})
		producibleMax = producibleMax.Min(maxByComponent)
	}
	if producibleMax.IsNegative() {
		producibleMax = Zero
	}

	// Pass B: allocation, destructive.
	details := make([]ComponentDetail, 0, len(bom))
	bottlenecks := make([]string, 0, 1)
	for _, d := range discoveries {
		toConsume := producibleMax.Mul(d.effectiveRate)
		draw := inv.Consume(d.line.ComponentPart, toConsume, ApprovedThenQCThenPO)
		inv.RecordAllocation(d.line.ComponentPart, soNumber, draw)

		needed := remainingNeeded.Mul(d.effectiveRate)
		shortfall := needed.Sub(draw.Total())
		if shortfall.IsNegative() {
			shortfall = Zero
		}

		details = append(details, ComponentDetail{
			Component:        d.line.ComponentPart,
			Required:         needed,
			ApprovedConsumed: draw.Approved,
			QCConsumed:       draw.QC,
			POConsumed:       draw.PO,
			Shortfall:        shortfall,
			PriorAllocations: inv.PriorAllocationsFor(d.line.ComponentPart, soNumber),
		})

		if d.maxProducible.LessThan(producibleMax.Add(e.cfg.QtyTolerance)) {
			bottlenecks = append(bottlenecks, d.line.ComponentPart)
		}
	}

	return producibleMax, details, bottlenecks, nil
}
