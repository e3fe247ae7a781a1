package money

import "github.com/shopspring/decimal"

// sharePrecision is the minimum number of fractional digits a Quantity keeps
// when rounded for display (fractional shares from DRIPs and splits need more
// than 2 decimal places to stay exact).
const sharePrecision = 6

// Quantity represents a share count, kept at full decimal precision through
// computation.
type Quantity struct {
	value decimal.Decimal
}

// Q builds a Quantity from a primitive numeric type or a decimal.Decimal.
func Q[T numeric](v T) Quantity { return Quantity{value: toDecimal(v)} }

// QD builds a Quantity directly from a decimal.Decimal.
func QD(v decimal.Decimal) Quantity { return Quantity{value: v} }

// Decimal exposes the raw underlying decimal value.
func (q Quantity) Decimal() decimal.Decimal { return q.value }

func (q Quantity) Add(p Quantity) Quantity { return Quantity{q.value.Add(p.value)} }
func (q Quantity) Sub(p Quantity) Quantity { return Quantity{q.value.Sub(p.value)} }
func (q Quantity) Mul(p Quantity) Quantity { return Quantity{q.value.Mul(p.value)} }
func (q Quantity) Div(p Quantity) Quantity { return Quantity{q.value.Div(p.value)} }
func (q Quantity) Neg() Quantity           { return Quantity{q.value.Neg()} }

func (q Quantity) Cmp(p Quantity) int { return q.value.Cmp(p.value) }

func (q Quantity) Equal(p Quantity) bool       { return q.value.Equal(p.value) }
func (q Quantity) LessThan(p Quantity) bool    { return q.value.LessThan(p.value) }
func (q Quantity) GreaterThan(p Quantity) bool { return q.value.GreaterThan(p.value) }
func (q Quantity) IsZero() bool                { return q.value.IsZero() }
func (q Quantity) IsPositive() bool            { return q.value.IsPositive() }
func (q Quantity) IsNegative() bool            { return q.value.IsNegative() }

// Round rounds the quantity to the minimum display precision (6dp).
func (q Quantity) Round() Quantity { return Quantity{q.value.Round(sharePrecision)} }

func (q Quantity) String() string { return q.value.String() }

func (q Quantity) MarshalJSON() ([]byte, error) { return q.value.MarshalJSON() }
func (q *Quantity) UnmarshalJSON(b []byte) error { return q.value.UnmarshalJSON(b) }
