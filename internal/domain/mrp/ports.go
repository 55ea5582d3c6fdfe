package mrp

import "context"

// Gateway is the ERP Read Gateway boundary (§4.1): six pure read
// operations returning normalized snapshots. Implementations must fail the
// whole call (never a partial snapshot) on any read error. Engine.Run
// reports a plain error from these calls as UpstreamUnavailable and passes
// an apperror (such as a DataIntegrity error from BOMFor) through as is.
type Gateway interface {
	OpenSalesOrders(ctx context.Context) ([]SalesOrderLine, error)
	InventoryApproved(ctx context.Context) (map[string]Qty, error)
	InventoryQCPending(ctx context.Context) (map[string]Qty, error)
	OpenPOQuantities(ctx context.Context) (map[string]Qty, error)
	OpenJobs(ctx context.Context) ([]OpenJob, error)
	// BOMFor returns the single-level BOM lines for every part in parts.
	// Callers batch across parts rather than issuing one call per part.
	BOMFor(ctx context.Context, parts []string) (map[string][]BomLine, error)
}

// ProjectionStore is the Local Projection Store boundary (§4.2).
type ProjectionStore interface {
	ReadProjectionsFor(ctx context.Context, soNumbers []string) ([]UserProjection, error)
	UpsertProjection(ctx context.Context, p UserProjection) error
}
