package aggregator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dangquyenbui-dotcom/production-portal-github/internal/domain/mrp"
	"github.com/dangquyenbui-dotcom/production-portal-github/internal/domain/mrp/quantity"
)

func dueShip(days int) *time.Time {
	t := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, days)
	return &t
}

func sampleResults() []mrp.SoResult {
	return []mrp.SoResult{
		{SONumber: "SO-1", Customer: "Acme", BusinessUnit: "BU1", FGPart: "FG-1", DueShip: dueShip(5), Status: mrp.StatusReadyToShip},
		{SONumber: "SO-2", Customer: "Acme", BusinessUnit: "BU1", FGPart: "FG-2", DueShip: dueShip(2), Status: mrp.StatusCriticalShortage},
		{SONumber: "SO-3", Customer: "Beta", BusinessUnit: "BU2", FGPart: "FG-1", DueShip: dueShip(10), Status: mrp.StatusPartialShip},
		{SONumber: "SO-4", Customer: "Beta", BusinessUnit: "BU2", FGPart: "FG-3", DueShip: nil, Status: mrp.StatusPendingQC},
	}
}

func TestDashboard_FiltersByCustomerAndSortsByDueShip(t *testing.T) {
	view, err := Dashboard(sampleResults(), DashboardFilter{Customer: "Acme"})
	require.NoError(t, err)

	require.Len(t, view.Orders, 2)
	assert.Equal(t, "SO-2", view.Orders[0].SONumber) // due_ship +2 sorts before +5
	assert.Equal(t, "SO-1", view.Orders[1].SONumber)

	// Summary tallies over the whole run, not just the filtered customer.
	assert.Equal(t, 4, view.Summary.Total)
	assert.Equal(t, 1, view.Summary.Critical)
}

func TestDashboard_NilDueShipSortsLast(t *testing.T) {
	view, err := Dashboard(sampleResults(), DashboardFilter{Customer: "Beta"})
	require.NoError(t, err)
	require.Len(t, view.Orders, 2)
	assert.Equal(t, "SO-3", view.Orders[0].SONumber)
	assert.Equal(t, "SO-4", view.Orders[1].SONumber)
}

func TestDashboard_BucketFilter(t *testing.T) {
	view, err := Dashboard(sampleResults(), DashboardFilter{Bucket: BucketActionRequired})
	require.NoError(t, err)

	gotSO := make([]string, 0, len(view.Orders))
	for _, o := range view.Orders {
		gotSO = append(gotSO, o.SONumber)
	}
	assert.ElementsMatch(t, []string{"SO-2", "SO-4"}, gotSO)
}

func TestDashboard_RejectsUnknownBucket(t *testing.T) {
	_, err := Dashboard(sampleResults(), DashboardFilter{Bucket: "not-a-bucket"})
	assert.Error(t, err)
}

func TestDashboard_PaginationClampsToDefaultAndCap(t *testing.T) {
	f := DashboardFilter{}
	require.NoError(t, f.Validate())
	assert.Equal(t, 100, f.Limit)

	f = DashboardFilter{Limit: 5000}
	require.NoError(t, f.Validate())
	assert.Equal(t, 1000, f.Limit)
}

func TestForCustomer_RequiresCustomer(t *testing.T) {
	_, err := ForCustomer(sampleResults(), "")
	assert.Error(t, err)
}

func TestForCustomer_BucketsOnTrackAtRiskCritical(t *testing.T) {
	summary, err := ForCustomer(sampleResults(), "Beta")
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 2, summary.AtRisk)   // Partial Ship + Pending QC
	assert.Equal(t, 0, summary.Critical) // Pending QC is at-risk, not critical
}

func TestPurchasingShortageReport_AggregatesAcrossSOsAndFiltersByUrgency(t *testing.T) {
	results := []mrp.SoResult{
		{
			SONumber: "SO-1", Customer: "Acme", DueShip: dueShip(1),
			ComponentDetails: []mrp.ComponentDetail{
				{Component: "C-1", Shortfall: quantity.MustFromString("5")},
			},
		},
		{
			SONumber: "SO-2", Customer: "Beta", DueShip: dueShip(40),
			ComponentDetails: []mrp.ComponentDetail{
				{Component: "C-1", Shortfall: quantity.MustFromString("3")},
				{Component: "C-2", Shortfall: quantity.MustFromString("0")}, // not a shortage
			},
		},
	}
	inv := mrp.InventorySnapshot{
		Approved: map[string]quantity.Qty{"C-1": quantity.MustFromString("2")},
		OpenPO:   map[string]quantity.Qty{"C-1": quantity.MustFromString("1")},
	}

	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

	all := PurchasingShortageReport(results, inv, ShortageFilter{Now: now, UrgencyAll: true})
	require.Len(t, all, 1)
	assert.Equal(t, "C-1", all[0].ComponentPart)
	assert.Equal(t, "8.00", all[0].TotalShortfall.String())
	assert.Len(t, all[0].Affected, 2)

	urgent := PurchasingShortageReport(results, inv, ShortageFilter{Now: now, UrgencyDays: 5})
	require.Len(t, urgent, 1) // earliest due (SO-1, +1 day) is within the window

	notUrgent := PurchasingShortageReport(results, inv, ShortageFilter{Now: now, UrgencyDays: 5, Customer: "Beta"})
	assert.Empty(t, notUrgent) // Beta's SO is due in 40 days, outside the 5-day window
}

func TestPurchasingShortageReport_QueryFilterIsCaseInsensitiveSubstring(t *testing.T) {
	results := []mrp.SoResult{
		{
			SONumber: "SO-1", DueShip: dueShip(1),
			ComponentDetails: []mrp.ComponentDetail{
				{Component: "Widget-Bracket", Shortfall: quantity.MustFromString("1")},
			},
		},
	}
	inv := mrp.InventorySnapshot{}
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

	matched := PurchasingShortageReport(results, inv, ShortageFilter{Now: now, UrgencyAll: true, Query: "bracket"})
	assert.Len(t, matched, 1)

	unmatched := PurchasingShortageReport(results, inv, ShortageFilter{Now: now, UrgencyAll: true, Query: "screw"})
	assert.Empty(t, unmatched)
}
