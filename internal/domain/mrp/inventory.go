package mrp

import (
	"sync"

	"github.com/dangquyenbui-dotcom/production-portal-github/internal/domain/mrp/quantity"
)

// PoolPreference selects which pools Consume is allowed to draw from, and
// in what order, per §4.3.
type PoolPreference int

const (
	// ApprovedOnly is used by the finished-good shippable pass.
	ApprovedOnly PoolPreference = iota
	// ApprovedThenQCThenPO is used by the component producibility pass.
	ApprovedThenQCThenPO
)

type poolTriplet struct {
	approved quantity.Qty
	qc       quantity.Qty
	po       quantity.Qty
}

// Draw is the result of one Consume call: how much was actually taken from
// each pool, in preference order.
type Draw struct {
	Approved quantity.Qty
	QC       quantity.Qty
	PO       quantity.Qty
}

// Total is the sum of the three pool draws.
func (d Draw) Total() quantity.Qty {
	return d.Approved.Add(d.QC).Add(d.PO)
}

// LiveInventory is the mutable, run-scoped ledger described in §4.3: a
// mapping from part number to a remaining (approved, qc_pending, open_po)
// triplet, plus the allocation log used for dashboard tooltips. It is
// never shared across runs and is not safe to reuse once Run completes.
type LiveInventory struct {
	mu          sync.Mutex
	pools       map[string]*poolTriplet
	allocations map[string][]Allocation // keyed by part number, in recording order
}

// NewLiveInventory constructs the ledger from a gateway snapshot.
func NewLiveInventory(snapshot InventorySnapshot) *LiveInventory {
	inv := &LiveInventory{
		pools:       make(map[string]*poolTriplet),
		allocations: make(map[string][]Allocation),
	}
	parts := make(map[string]struct{})
	for p := range snapshot.Approved {
		parts[p] = struct{}{}
	}
	for p := range snapshot.QCPending {
		parts[p] = struct{}{}
	}
	for p := range snapshot.OpenPO {
		parts[p] = struct{}{}
	}
	for p := range parts {
		inv.pools[p] = &poolTriplet{
			approved: snapshot.ApprovedOf(p),
			qc:       snapshot.QCPendingOf(p),
			po:       snapshot.OpenPOOf(p),
		}
	}
	return inv
}

func (inv *LiveInventory) triplet(part string) *poolTriplet {
	t, ok := inv.pools[part]
	if !ok {
		t = &poolTriplet{}
		inv.pools[part] = t
	}
	return t
}

// Remaining returns the current (approved, qc, po) triplet for part.
func (inv *LiveInventory) Remaining(part string) Draw {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	t := inv.triplet(part)
	return Draw{Approved: t.approved, QC: t.qc, PO: t.po}
}

// ProbeApprovedPlusQC returns approved + qc_pending without consuming
// anything. It backs the finished-good Pending-QC check (§4.4 step 1),
// which needs to know what is available without disturbing pool state.
func (inv *LiveInventory) ProbeApprovedPlusQC(part string) quantity.Qty {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	t := inv.triplet(part)
	return t.approved.Add(t.qc)
}

// ProbeTotal returns approved + qc_pending + open_po without consuming
// anything, used by Pass A to compute maxProducible_i per component.
func (inv *LiveInventory) ProbeTotal(part string) quantity.Qty {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	t := inv.triplet(part)
	return t.approved.Add(t.qc).Add(t.po)
}

// Consume deducts qty from part's pools in the order dictated by pref,
// returning how much was actually drawn from each pool. The sum of the
// draw never exceeds min(qty, total remaining); Consume never drives a
// pool negative.
func (inv *LiveInventory) Consume(part string, qty quantity.Qty, pref PoolPreference) Draw {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	t := inv.triplet(part)

	remaining := qty
	var draw Draw

	takeFrom := func(pool *quantity.Qty) {
		if remaining.IsZero() || !remaining.IsPositive() {
			return
		}
		take := remaining.Min(*pool)
		if take.IsNegative() {
			take = quantity.Zero
		}
		*pool = pool.Sub(take)
		remaining = remaining.Sub(take)
		switch {
		case pool == &t.approved:
			draw.Approved = draw.Approved.Add(take)
		case pool == &t.qc:
			draw.QC = draw.QC.Add(take)
		case pool == &t.po:
			draw.PO = draw.PO.Add(take)
		}
	}

	switch pref {
	case ApprovedOnly:
		takeFrom(&t.approved)
	case ApprovedThenQCThenPO:
		takeFrom(&t.approved)
		takeFrom(&t.qc)
		takeFrom(&t.po)
	}

	return draw
}

// RecordAllocation appends an entry to part's allocation log. It never
// touches pool quantities; callers always pair it with a prior Consume
// call whose draw it records.
func (inv *LiveInventory) RecordAllocation(part, soNumber string, draw Draw) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.allocations[part] = append(inv.allocations[part], Allocation{
		SONumber:     soNumber,
		Part:         part,
		ApprovedUsed: draw.Approved,
		QCUsed:       draw.QC,
		POUsed:       draw.PO,
	})
}

// PriorAllocationsFor returns the tooltip-facing (so_number, qty) history
// for part, in recording order, excluding the given SO itself (a result's
// "prior_allocations" lists only predecessors).
func (inv *LiveInventory) PriorAllocationsFor(part, excludeSO string) []PriorAllocation {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	log := inv.allocations[part]
	out := make([]PriorAllocation, 0, len(log))
	for _, a := range log {
		if a.SONumber == excludeSO {
			continue
		}
		out = append(out, PriorAllocation{SONumber: a.SONumber, Qty: a.Total()})
	}
	return out
}
