// Package quantity provides the fixed-point decimal type used throughout
// the MRP data model: sales order quantities, inventory pools, BOM factors,
// and allocation amounts all carry at least four fractional digits
// internally and round to two for display.
package quantity

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// internalScale is the minimum number of fractional digits carried
// internally, per the data model contract in §4.1.
const internalScale = 4

// displayScale is the number of fractional digits shown to callers.
const displayScale = 2

// Qty is a non-negative-by-convention fixed-point quantity. Negative values
// are representable (allocation math subtracts) but the data model never
// emits a negative quantity across a boundary.
type Qty struct {
	d decimal.Decimal
}

// Zero is the additive identity.
var Zero = Qty{d: decimal.Zero}

// FromFloat64 builds a Qty from a float, truncated to the internal scale.
func FromFloat64(f float64) Qty {
	return Qty{d: decimal.NewFromFloat(f).Truncate(internalScale)}
}

// FromString parses a decimal string into a Qty.
func FromString(s string) (Qty, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("parse quantity %q: %w", s, err)
	}
	return Qty{d: d.Truncate(internalScale)}, nil
}

// MustFromString is FromString, panicking on error. Use only for test fixtures.
func MustFromString(s string) Qty {
	q, err := FromString(s)
	if err != nil {
		panic(err)
	}
	return q
}

// FromDecimal wraps an existing decimal.Decimal, truncating to internal scale.
func FromDecimal(d decimal.Decimal) Qty {
	return Qty{d: d.Truncate(internalScale)}
}

// Decimal exposes the underlying decimal.Decimal for callers that need
// arbitrary-precision arithmetic the Qty API does not cover directly.
func (q Qty) Decimal() decimal.Decimal { return q.d }

// Add returns q + other.
func (q Qty) Add(other Qty) Qty { return Qty{d: q.d.Add(other.d).Truncate(internalScale)} }

// Sub returns q - other.
func (q Qty) Sub(other Qty) Qty { return Qty{d: q.d.Sub(other.d).Truncate(internalScale)} }

// Mul returns q * other.
func (q Qty) Mul(other Qty) Qty { return Qty{d: q.d.Mul(other.d).Truncate(internalScale)} }

// DivFloor returns floor(q / other) at two-place (display) precision,
// matching §4.4 Pass A's "floor at 0.01 precision" producibility
// computation. The quotient is first rounded to six places to absorb
// rounding noise from prior ops, then truncated to two places.
func (q Qty) DivFloor(other Qty) Qty {
	if other.IsZero() {
		return Zero
	}
	return Qty{d: q.d.DivRound(other.d, displayScale+4).Truncate(displayScale)}
}

// Min returns the smaller of q and other.
func (q Qty) Min(other Qty) Qty {
	if q.d.LessThan(other.d) {
		return q
	}
	return other
}

// Max returns the larger of q and other.
func (q Qty) Max(other Qty) Qty {
	if q.d.GreaterThan(other.d) {
		return q
	}
	return other
}

// IsZero reports whether q is exactly zero.
func (q Qty) IsZero() bool { return q.d.IsZero() }

// IsPositive reports whether q is strictly greater than zero.
func (q Qty) IsPositive() bool { return q.d.IsPositive() }

// IsNegative reports whether q is strictly less than zero.
func (q Qty) IsNegative() bool { return q.d.IsNegative() }

// LessThan reports whether q < other.
func (q Qty) LessThan(other Qty) bool { return q.d.LessThan(other.d) }

// GreaterThan reports whether q > other.
func (q Qty) GreaterThan(other Qty) bool { return q.d.GreaterThan(other.d) }

// GreaterThanOrEqual reports whether q >= other.
func (q Qty) GreaterThanOrEqual(other Qty) bool { return q.d.GreaterThanOrEqual(other.d) }

// WithinTolerance reports whether |q - other| <= tol.
func (q Qty) WithinTolerance(other, tol Qty) bool {
	diff := q.d.Sub(other.d).Abs()
	return diff.LessThanOrEqual(tol.d)
}

// String renders the quantity rounded to the display scale.
func (q Qty) String() string {
	return q.d.Round(displayScale).StringFixed(displayScale)
}

// MarshalJSON renders the quantity as a JSON number at display precision.
func (q Qty) MarshalJSON() ([]byte, error) {
	return []byte(q.d.Round(displayScale).StringFixed(displayScale)), nil
}

// UnmarshalJSON accepts either a JSON number or string.
func (q *Qty) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*q = Zero
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := FromString(s)
		if err != nil {
			return err
		}
		*q = parsed
		return nil
	}
	parsed, err := FromString(string(data))
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}
