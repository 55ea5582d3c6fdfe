package mrp

// soOutcome carries everything the status table in §4.4 needs to decide
// between the seven dispositions; it is an intermediate computed by the
// engine's finished-good and component passes.
type soOutcome struct {
	netQty             Qty
	shippableFromStock Qty
	approvedPlusQC     Qty // probe only, never consumed
	producibleMax      Qty
	remainingNeeded    Qty
}

// deriveStatus applies the precedence table in §4.4 top to bottom; first
// match wins. The two Open Questions in §9 are resolved here: Partial Ship
// takes precedence over either Production Ready variant whenever any
// stock shipped, and the Pending-QC probe never affects pool state (the
// caller is responsible for using ProbeApprovedPlusQC, not Consume, to
// populate approvedPlusQC).
func deriveStatus(o soOutcome) Status {
	switch {
	case o.shippableFromStock.GreaterThanOrEqual(o.netQty):
		return StatusReadyToShip
	case o.shippableFromStock.IsPositive() && o.producibleMax.GreaterThanOrEqual(o.remainingNeeded):
		return StatusPartialShip
	case o.shippableFromStock.IsZero() && o.approvedPlusQC.GreaterThanOrEqual(o.netQty):
		return StatusPendingQC
	case o.shippableFromStock.IsZero() && o.producibleMax.GreaterThanOrEqual(o.netQty):
		return StatusFullProductionReady
	case o.producibleMax.IsPositive() && o.producibleMax.LessThan(o.remainingNeeded):
		return StatusPartialProductionReady
	default:
		return StatusCriticalShortage
	}
}
