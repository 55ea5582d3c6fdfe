package mrp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dangquyenbui-dotcom/production-portal-github/internal/domain/mrp/quantity"
)

// fakeGateway is an in-memory mrp.Gateway fixture; each end-to-end scenario
// populates just the fields it needs.
type fakeGateway struct {
	orders    []SalesOrderLine
	approved  map[string]quantity.Qty
	qcPending map[string]quantity.Qty
	openPO    map[string]quantity.Qty
	jobs      []OpenJob
	boms      map[string][]BomLine
}

func (g *fakeGateway) OpenSalesOrders(ctx context.Context) ([]SalesOrderLine, error) {
	return g.orders, nil
}
func (g *fakeGateway) InventoryApproved(ctx context.Context) (map[string]quantity.Qty, error) {
	return g.approved, nil
}
func (g *fakeGateway) InventoryQCPending(ctx context.Context) (map[string]quantity.Qty, error) {
	return g.qcPending, nil
}
func (g *fakeGateway) OpenPOQuantities(ctx context.Context) (map[string]quantity.Qty, error) {
	return g.openPO, nil
}
func (g *fakeGateway) OpenJobs(ctx context.Context) ([]OpenJob, error) { return g.jobs, nil }
func (g *fakeGateway) BOMFor(ctx context.Context, parts []string) (map[string][]BomLine, error) {
	out := make(map[string][]BomLine, len(parts))
	for _, p := range parts {
		out[p] = g.boms[p]
	}
	return out, nil
}

var _ Gateway = (*fakeGateway)(nil)

// fakeStore is a no-op mrp.ProjectionStore fixture; no scenario exercises
// projection content, only that the engine calls through to it.
type fakeStore struct {
	readCalls int
}

func (s *fakeStore) ReadProjectionsFor(ctx context.Context, soNumbers []string) ([]UserProjection, error) {
	s.readCalls++
	return nil, nil
}
func (s *fakeStore) UpsertProjection(ctx context.Context, p UserProjection) error { return nil }

var _ ProjectionStore = (*fakeStore)(nil)

func newEngine(gw *fakeGateway) (*Engine, *fakeStore) {
	store := &fakeStore{}
	eng := NewEngine(gw, store, EngineConfig{
		QtyTolerance: quantity.MustFromString("0.01"),
		ScrapCap:     quantity.MustFromString("100"),
	})
	return eng, store
}

func due(t time.Time) *time.Time { return &t }

func TestScenarioA_ShipFromStock(t *testing.T) {
	gw := &fakeGateway{
		orders: []SalesOrderLine{
			{SONumber: "SO1", PartNumber: "P", RequiredQty: quantity.MustFromString("10"), DueShip: due(time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC))},
		},
		approved: map[string]quantity.Qty{"P": quantity.MustFromString("15")},
	}
	eng, store := newEngine(gw)

	out, err := eng.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, out.Results, 1)

	r := out.Results[0]
	assert.Equal(t, StatusReadyToShip, r.Status)
	assert.Equal(t, "10.00", r.ShippableFromStock.String())
	assert.Equal(t, "0.00", r.ProducibleQty.String())
	assert.Equal(t, 1, store.readCalls)
}

func TestScenarioB_PartialShipPlusProduction(t *testing.T) {
	earlier := due(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	later := due(time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC))
	gw := &fakeGateway{
		orders: []SalesOrderLine{
			{SONumber: "SO1", PartNumber: "P", RequiredQty: quantity.MustFromString("20"), DueShip: earlier},
			{SONumber: "SO2", PartNumber: "P", RequiredQty: quantity.MustFromString("20"), DueShip: later},
		},
		approved: map[string]quantity.Qty{
			"P": quantity.MustFromString("30"),
			"C": quantity.MustFromString("10"),
		},
		boms: map[string][]BomLine{
			"P": {{ParentPart: "P", ComponentPart: "C", QtyPerUnit: quantity.MustFromString("1"), ScrapPercent: quantity.Zero}},
		},
	}
	eng, _ := newEngine(gw)

	out, err := eng.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, out.Results, 2)

	so1, so2 := out.Results[0], out.Results[1]
	assert.Equal(t, "SO1", so1.SONumber)
	assert.Equal(t, StatusReadyToShip, so1.Status)
	assert.Equal(t, "20.00", so1.ShippableFromStock.String())
	assert.Equal(t, "0.00", so1.ProducibleQty.String())

	assert.Equal(t, "SO2", so2.SONumber)
	assert.Equal(t, StatusPartialShip, so2.Status)
	assert.Equal(t, "10.00", so2.ShippableFromStock.String())
	assert.Equal(t, "10.00", so2.ProducibleQty.String())
}

func TestScenarioC_PendingQC(t *testing.T) {
	gw := &fakeGateway{
		orders: []SalesOrderLine{
			{SONumber: "SO1", PartNumber: "P", RequiredQty: quantity.MustFromString("5")},
		},
		qcPending: map[string]quantity.Qty{"P": quantity.MustFromString("5")},
	}
	eng, _ := newEngine(gw)

	out, err := eng.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, out.Results, 1)

	r := out.Results[0]
	assert.Equal(t, StatusPendingQC, r.Status)
	assert.True(t, r.ShippableFromStock.IsZero())
	assert.True(t, r.ProducibleQty.IsZero())
}

func TestScenarioD_CriticalShortage(t *testing.T) {
	gw := &fakeGateway{
		orders: []SalesOrderLine{
			{SONumber: "SO1", PartNumber: "P", RequiredQty: quantity.MustFromString("10")},
		},
		approved: map[string]quantity.Qty{"C1": quantity.MustFromString("100")},
		boms: map[string][]BomLine{
			"P": {
				{ParentPart: "P", ComponentPart: "C1", QtyPerUnit: quantity.MustFromString("1"), ScrapPercent: quantity.Zero},
				{ParentPart: "P", ComponentPart: "C2", QtyPerUnit: quantity.MustFromString("2"), ScrapPercent: quantity.Zero},
			},
		},
	}
	eng, _ := newEngine(gw)

	out, err := eng.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, out.Results, 1)

	r := out.Results[0]
	assert.Equal(t, StatusCriticalShortage, r.Status)
	assert.True(t, r.ProducibleQty.IsZero())
	assert.Equal(t, []string{"C2"}, r.BottleneckComponents)

	// C1 is plentiful but producible_max is zero, so Pass B must draw nothing
	// from it even though the BOM lists it.
	for _, cd := range r.ComponentDetails {
		if cd.Component == "C1" {
			assert.True(t, cd.ApprovedConsumed.IsZero())
		}
	}
}

func TestScenarioE_Scrap(t *testing.T) {
	gw := &fakeGateway{
		orders: []SalesOrderLine{
			{SONumber: "SO1", PartNumber: "P", RequiredQty: quantity.MustFromString("100")},
		},
		approved: map[string]quantity.Qty{"C": quantity.MustFromString("110")},
		boms: map[string][]BomLine{
			"P": {{ParentPart: "P", ComponentPart: "C", QtyPerUnit: quantity.MustFromString("1"), ScrapPercent: quantity.MustFromString("10")}},
		},
	}
	eng, _ := newEngine(gw)

	out, err := eng.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, out.Results, 1)

	r := out.Results[0]
	assert.Equal(t, StatusFullProductionReady, r.Status)
	assert.Equal(t, "100.00", r.ProducibleQty.String())
	require.Len(t, r.ComponentDetails, 1)
	assert.Equal(t, "110.00", r.ComponentDetails[0].ApprovedConsumed.String())
}

func TestScenarioF_JobCreatedShortcut(t *testing.T) {
	gw := &fakeGateway{
		orders: []SalesOrderLine{
			{SONumber: "SO1", PartNumber: "P", RequiredQty: quantity.MustFromString("50")},
		},
		approved: map[string]quantity.Qty{"P": quantity.MustFromString("20")},
		jobs: []OpenJob{
			{JobNumber: "J1", SONumber: "SO1", PartNumber: "P", RequiredQty: quantity.MustFromString("50")},
		},
		boms: map[string][]BomLine{
			"P": {{ParentPart: "P", ComponentPart: "C", QtyPerUnit: quantity.MustFromString("1"), ScrapPercent: quantity.Zero}},
		},
	}
	eng, _ := newEngine(gw)

	out, err := eng.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, out.Results, 1)

	r := out.Results[0]
	assert.Equal(t, StatusJobCreated, r.Status)
	assert.True(t, r.JobCreated)
	assert.Equal(t, "20.00", r.ShippableFromStock.String())
	assert.Empty(t, r.ComponentDetails) // no component allocation is attempted
}

func TestPoolConservation(t *testing.T) {
	gw := &fakeGateway{
		orders: []SalesOrderLine{
			{SONumber: "SO1", PartNumber: "P", RequiredQty: quantity.MustFromString("20")},
			{SONumber: "SO2", PartNumber: "P", RequiredQty: quantity.MustFromString("20")},
		},
		approved: map[string]quantity.Qty{
			"P": quantity.MustFromString("30"),
			"C": quantity.MustFromString("10"),
		},
		boms: map[string][]BomLine{
			"P": {{ParentPart: "P", ComponentPart: "C", QtyPerUnit: quantity.MustFromString("1"), ScrapPercent: quantity.Zero}},
		},
	}
	eng, _ := newEngine(gw)

	out, err := eng.Run(context.Background())
	require.NoError(t, err)

	var consumedP, consumedC quantity.Qty
	for _, r := range out.Results {
		consumedP = consumedP.Add(r.ShippableFromStock)
		for _, cd := range r.ComponentDetails {
			if cd.Component == "C" {
				consumedC = consumedC.Add(cd.ApprovedConsumed).Add(cd.QCConsumed).Add(cd.POConsumed)
			}
		}
	}
	assert.Equal(t, "30.00", consumedP.String())
	assert.Equal(t, "10.00", consumedC.String())
}

func TestDeterminism_TwoRunsMatch(t *testing.T) {
	gw := &fakeGateway{
		orders: []SalesOrderLine{
			{SONumber: "SO1", PartNumber: "P", RequiredQty: quantity.MustFromString("10")},
		},
		approved: map[string]quantity.Qty{"P": quantity.MustFromString("15")},
	}

	eng1, _ := newEngine(gw)
	out1, err := eng1.Run(context.Background())
	require.NoError(t, err)

	eng2, _ := newEngine(gw)
	out2, err := eng2.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, out1.Results, out2.Results)
}

func TestValidateBoms_RejectsScrapOverCap(t *testing.T) {
	gw := &fakeGateway{
		orders: []SalesOrderLine{
			{SONumber: "SO1", PartNumber: "P", RequiredQty: quantity.MustFromString("10")},
		},
		boms: map[string][]BomLine{
			"P": {{ParentPart: "P", ComponentPart: "C", QtyPerUnit: quantity.MustFromString("1"), ScrapPercent: quantity.MustFromString("150")}},
		},
	}
	eng, _ := newEngine(gw)

	_, err := eng.Run(context.Background())
	require.Error(t, err)
}
