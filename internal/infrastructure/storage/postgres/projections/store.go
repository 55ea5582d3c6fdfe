// Package projections implements mrp.ProjectionStore against a Postgres
// table keyed by (so_number, part_number, risk_type), per §6's persisted
// state layout.
package projections

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/dangquyenbui-dotcom/production-portal-github/internal/domain/mrp"
	"github.com/dangquyenbui-dotcom/production-portal-github/internal/domain/mrp/quantity"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const schema = `
CREATE TABLE IF NOT EXISTS schedule_projections (
	so_number   TEXT NOT NULL,
	part_number TEXT NOT NULL,
	risk_type   TEXT NOT NULL,
	quantity    NUMERIC(15,4) NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_by  TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (so_number, part_number, risk_type)
)`

// Store is the Postgres-backed mrp.ProjectionStore.
type Store struct {
	pool *pgxpool.Pool
}

// New constructs a Store over pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

var _ mrp.ProjectionStore = (*Store)(nil)

// EnsureSchema creates the projections table if it doesn't already exist.
// Idempotent at startup, per §6.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schedule_projections schema: %w", err)
	}
	return nil
}

type projectionRow struct {
	SONumber   string          `db:"so_number"`
	PartNumber string          `db:"part_number"`
	RiskType   string          `db:"risk_type"`
	Quantity   decimal.Decimal `db:"quantity"`
	UpdatedAt  time.Time       `db:"updated_at"`
	UpdatedBy  string          `db:"updated_by"`
}

// ReadProjectionsFor returns every projection filed against one of soNumbers.
// A missing (so_number, part_number, risk_type) triple implies quantity 0
// and is never synthesized here.
func (s *Store) ReadProjectionsFor(ctx context.Context, soNumbers []string) ([]mrp.UserProjection, error) {
	if len(soNumbers) == 0 {
		return nil, nil
	}

	q, args, err := psql.Select("so_number", "part_number", "risk_type", "quantity", "updated_at", "updated_by").
		From("schedule_projections").
		Where(sq.Eq{"so_number": soNumbers}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build projections query: %w", err)
	}

	var rows []projectionRow
	if err := pgxscan.Select(ctx, s.pool, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("query projections: %w", err)
	}

	out := make([]mrp.UserProjection, 0, len(rows))
	for _, r := range rows {
		out = append(out, mrp.UserProjection{
			SONumber:   r.SONumber,
			PartNumber: r.PartNumber,
			RiskType:   mrp.RiskType(r.RiskType),
			Quantity:   quantity.FromDecimal(r.Quantity),
			UpdatedAt:  r.UpdatedAt,
			UpdatedBy:  r.UpdatedBy,
		})
	}
	return out, nil
}

// UpsertProjection writes p, replacing any existing row for the same
// (so_number, part_number, risk_type) key. Concurrency: Postgres serializes
// concurrent upserts to the same key via the primary key index, satisfying
// §4.2's "writes serialize on (so_number, part_number, risk_type)".
func (s *Store) UpsertProjection(ctx context.Context, p mrp.UserProjection) error {
	q, args, err := psql.Insert("schedule_projections").
		Columns("so_number", "part_number", "risk_type", "quantity", "updated_at", "updated_by").
		Values(p.SONumber, p.PartNumber, string(p.RiskType), p.Quantity.String(), p.UpdatedAt, p.UpdatedBy).
		Suffix("ON CONFLICT (so_number, part_number, risk_type) DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = EXCLUDED.updated_at, updated_by = EXCLUDED.updated_by").
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert projection query: %w", err)
	}

	if _, err := s.pool.Exec(ctx, q, args...); err != nil {
		return fmt.Errorf("upsert projection: %w", err)
	}
	return nil
}
