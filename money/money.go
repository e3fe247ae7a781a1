// Package money implements fixed-precision decimal arithmetic for the ledger:
// Money (a currency-tagged amount) and Quantity (a share count), both backed
// by shopspring/decimal so that sums of thousands of lots never drift the way
// floating point would.
package money

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

func decimalFromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

// Money represents a monetary amount tagged with its ISO-4217 currency code.
// Internally it keeps full decimal precision; rounding to 2 fractional digits
// only happens at output boundaries via Round.
type Money struct {
	value decimal.Decimal
	cur   string
}

// numeric is the set of primitive types New accepts directly.
type numeric interface {
	float32 | float64 | int | int32 | int64 | decimal.Decimal
}

func toDecimal[T numeric](v T) decimal.Decimal {
	switch x := any(v).(type) {
	case decimal.Decimal:
		return x
	case float32:
		return decimal.NewFromFloat32(x)
	case float64:
		return decimal.NewFromFloat(x)
	case int:
		return decimal.NewFromInt(int64(x))
	case int32:
		return decimal.NewFromInt32(x)
	case int64:
		return decimal.NewFromInt(x)
	default:
		panic("money: unsupported numeric type")
	}
}

// New builds a Money value in the given ISO currency code.
func New[T numeric](v T, currency string) Money {
	return Money{value: toDecimal(v), cur: currency}
}

// Zero returns a zero-valued Money in the given currency.
func Zero(currency string) Money { return Money{cur: currency} }

// Currency returns the ISO-4217 currency code.
func (m Money) Currency() string { return m.cur }

// Decimal exposes the raw underlying decimal value.
func (m Money) Decimal() decimal.Decimal { return m.value }

func currencyOf(a, b Money) string {
	if a.cur == "" {
		return b.cur
	}
	if b.cur == "" {
		return a.cur
	}
	if a.cur != b.cur {
		panic("money: currency mismatch " + a.cur + " != " + b.cur)
	}
	return a.cur
}

// Add returns a+b. Panics if both operands carry different non-empty currencies.
func (m Money) Add(n Money) Money { return Money{value: m.value.Add(n.value), cur: currencyOf(m, n)} }

// Sub returns a-b. Panics if both operands carry different non-empty currencies.
func (m Money) Sub(n Money) Money { return Money{value: m.value.Sub(n.value), cur: currencyOf(m, n)} }

// Neg returns -m.
func (m Money) Neg() Money { return Money{value: m.value.Neg(), cur: m.cur} }

// Mul multiplies a money amount by a share quantity (e.g. price * shares).
func (m Money) Mul(q Quantity) Money { return Money{value: m.value.Mul(q.value), cur: m.cur} }

// MulDecimal multiplies a money amount by a plain decimal factor (e.g. an FX rate).
func (m Money) MulDecimal(factor decimal.Decimal) Money {
	return Money{value: m.value.Mul(factor), cur: m.cur}
}

// DivShares divides a total money amount by a share quantity, yielding a per-share amount.
func (m Money) DivShares(q Quantity) Money {
	if q.IsZero() {
		return Zero(m.cur)
	}
	return Money{value: m.value.Div(q.value), cur: m.cur}
}

// ConvertCAD converts a native-currency amount to CAD using the given native→CAD rate.
func (m Money) ConvertCAD(fxRate decimal.Decimal) Money {
	return Money{value: m.value.Mul(fxRate), cur: "CAD"}
}

func (m Money) Cmp(n Money) int { return m.value.Cmp(n.value) }

func (m Money) Equal(n Money) bool              { return m.value.Equal(n.value) }
func (m Money) IsZero() bool                    { return m.value.IsZero() }
func (m Money) IsPositive() bool                { return m.value.IsPositive() }
func (m Money) IsNegative() bool                { return m.value.IsNegative() }
func (m Money) LessThan(n Money) bool           { return m.value.LessThan(n.value) }
func (m Money) LessThanOrEqual(n Money) bool     { return m.value.LessThanOrEqual(n.value) }
func (m Money) GreaterThan(n Money) bool        { return m.value.GreaterThan(n.value) }
func (m Money) GreaterThanOrEqual(n Money) bool { return m.value.GreaterThanOrEqual(n.value) }

// Round rounds to 2 fractional digits using banker's rounding (round-half-to-even),
// the only rounding policy applied at output/equality boundaries per the spec.
func (m Money) Round() Money {
	return Money{value: m.value.RoundBank(2), cur: m.cur}
}

// currency resolves the go-money Currency metadata for formatting, defaulting
// to a never-nil currency even for unknown/empty codes.
func (m Money) currency() *money.Currency {
	return money.New(0, m.cur).Currency()
}

// String renders the amount using the currency's formatter.
func (m Money) String() string {
	cur := m.currency()
	shifted := m.value.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(shifted.IntPart())
}
