// Package erp implements mrp.Gateway against a read-only Postgres mirror
// of the upstream ERP tables (sales orders, inventory, purchase orders,
// jobs, and bills of material).
package erp

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/dangquyenbui-dotcom/production-portal-github/internal/core/apperror"
	"github.com/dangquyenbui-dotcom/production-portal-github/internal/domain/mrp"
	"github.com/dangquyenbui-dotcom/production-portal-github/internal/domain/mrp/quantity"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Gateway is the Postgres-backed mrp.Gateway.
type Gateway struct {
	pool *pgxpool.Pool
}

// New constructs a Gateway over pool.
func New(pool *pgxpool.Pool) *Gateway {
	return &Gateway{pool: pool}
}

var _ mrp.Gateway = (*Gateway)(nil)

type soRow struct {
	SONumber     string          `db:"so_number"`
	LineKey      string          `db:"line_key"`
	PartNumber   string          `db:"part_number"`
	Customer     string          `db:"customer"`
	BusinessUnit string          `db:"business_unit"`
	SOType       string          `db:"so_type"`
	Facility     string          `db:"facility"`
	DueShip      *dbTime         `db:"due_ship"`
	UnitPrice    decimal.Decimal `db:"unit_price"`
	RequiredQty  decimal.Decimal `db:"required_qty"`
	ShippedQty   decimal.Decimal `db:"shipped_qty"`
}

// OpenSalesOrders returns every SO line where shipped_qty < required_qty.
func (g *Gateway) OpenSalesOrders(ctx context.Context) ([]mrp.SalesOrderLine, error) {
	q, args, err := psql.Select(
		"so_number", "line_key", "part_number", "customer", "business_unit",
		"so_type", "facility", "due_ship", "unit_price", "required_qty", "shipped_qty",
	).From("sales_order_lines").
		Where(sq.Lt{"shipped_qty": sq.Expr("required_qty")}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build open sales orders query: %w", err)
	}

	var rows []soRow
	if err := pgxscan.Select(ctx, g.pool, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("query open sales orders: %w", err)
	}

	out := make([]mrp.SalesOrderLine, 0, len(rows))
	for _, r := range rows {
		out = append(out, mrp.SalesOrderLine{
			SONumber:     r.SONumber,
			LineKey:      r.LineKey,
			PartNumber:   r.PartNumber,
			Customer:     r.Customer,
			BusinessUnit: r.BusinessUnit,
			SOType:       r.SOType,
			Facility:     r.Facility,
			DueShip:      r.DueShip.asTimePtr(),
			UnitPrice:    r.UnitPrice,
			RequiredQty:  quantity.FromDecimal(r.RequiredQty),
			ShippedQty:   quantity.FromDecimal(r.ShippedQty),
		})
	}
	return out, nil
}

func (g *Gateway) sumByPart(ctx context.Context, table string) (map[string]quantity.Qty, error) {
	q, args, err := psql.Select("part_number", "SUM(qty) AS qty").
		From(table).
		GroupBy("part_number").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", table, err)
	}

	type row struct {
		PartNumber string          `db:"part_number"`
		Qty        decimal.Decimal `db:"qty"`
	}
	var rows []row
	if err := pgxscan.Select(ctx, g.pool, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}

	out := make(map[string]quantity.Qty, len(rows))
	for _, r := range rows {
		out[r.PartNumber] = quantity.FromDecimal(r.Qty)
	}
	return out, nil
}

// InventoryApproved returns unrestricted, unallocated, not-issued-to-job
// quantity per part.
func (g *Gateway) InventoryApproved(ctx context.Context) (map[string]quantity.Qty, error) {
	return g.sumByPart(ctx, "inventory_approved")
}

// InventoryQCPending returns received-but-not-inspected quantity per part.
func (g *Gateway) InventoryQCPending(ctx context.Context) (map[string]quantity.Qty, error) {
	return g.sumByPart(ctx, "inventory_qc_pending")
}

// OpenPOQuantities returns outstanding, not-yet-received PO quantity per part.
func (g *Gateway) OpenPOQuantities(ctx context.Context) (map[string]quantity.Qty, error) {
	return g.sumByPart(ctx, "open_purchase_order_lines")
}

type jobRow struct {
	JobNumber    string          `db:"job_number"`
	SONumber     *string         `db:"so_number"`
	PartNumber   string          `db:"part_number"`
	RequiredQty  decimal.Decimal `db:"required_qty"`
	CompletedQty decimal.Decimal `db:"completed_qty"`
}

// OpenJobs returns every open production job.
func (g *Gateway) OpenJobs(ctx context.Context) ([]mrp.OpenJob, error) {
	q, args, err := psql.Select("job_number", "so_number", "part_number", "required_qty", "completed_qty").
		From("open_jobs").
		Where(sq.Lt{"completed_qty": sq.Expr("required_qty")}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build open jobs query: %w", err)
	}

	var rows []jobRow
	if err := pgxscan.Select(ctx, g.pool, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("query open jobs: %w", err)
	}

	out := make([]mrp.OpenJob, 0, len(rows))
	for _, r := range rows {
		so := ""
		if r.SONumber != nil {
			so = *r.SONumber
		}
		out = append(out, mrp.OpenJob{
			JobNumber:    r.JobNumber,
			SONumber:     so,
			PartNumber:   r.PartNumber,
			RequiredQty:  quantity.FromDecimal(r.RequiredQty),
			CompletedQty: quantity.FromDecimal(r.CompletedQty),
		})
	}
	return out, nil
}

type bomRow struct {
	ParentPart    string          `db:"parent_part"`
	ComponentPart string          `db:"component_part"`
	QtyPerUnit    decimal.Decimal `db:"qty_per_unit"`
	ScrapPercent  decimal.Decimal `db:"scrap_percent"`
}

// BOMFor returns single-level BOM lines for every part in parts, batched
// into one query rather than one round trip per part.
func (g *Gateway) BOMFor(ctx context.Context, parts []string) (map[string][]mrp.BomLine, error) {
	if len(parts) == 0 {
		return map[string][]mrp.BomLine{}, nil
	}

	inParts := make([]string, len(parts))
	copy(inParts, parts)

	q, args, err := psql.Select("parent_part", "component_part", "qty_per_unit", "scrap_percent").
		From("bom_lines").
		Where(sq.Eq{"parent_part": inParts}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build bom query: %w", err)
	}

	var rows []bomRow
	if err := pgxscan.Select(ctx, g.pool, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("query bom lines: %w", err)
	}

	out := make(map[string][]mrp.BomLine, len(parts))
	for _, r := range rows {
		if r.ComponentPart == "" {
			return nil, apperror.NewDataIntegrity(fmt.Sprintf("BOM line for %s has an empty component_part", r.ParentPart))
		}
		out[r.ParentPart] = append(out[r.ParentPart], mrp.BomLine{
			ParentPart:    r.ParentPart,
			ComponentPart: r.ComponentPart,
			QtyPerUnit:    quantity.FromDecimal(r.QtyPerUnit),
			ScrapPercent:  quantity.FromDecimal(r.ScrapPercent),
		})
	}
	return out, nil
}
