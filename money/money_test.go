package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestMoneyArithmetic(t *testing.T) {
	buy := New(100, "CAD")
	fees := New(10, "CAD")
	total := buy.Add(fees)
	if !total.Equal(New(110, "CAD")) {
		t.Fatalf("Add: got %v, want 110 CAD", total)
	}

	perShare := total.DivShares(Q(100))
	if !perShare.Round().Equal(New(dec("1.10"), "CAD")) {
		t.Fatalf("DivShares: got %v, want 1.10 CAD", perShare)
	}
}

func TestMoneyBankersRounding(t *testing.T) {
	// 2.125 rounds to 2.12 (round half to even) not 2.13.
	m := New(dec("2.125"), "CAD")
	if got := m.Round(); !got.Equal(New(dec("2.12"), "CAD")) {
		t.Fatalf("RoundBank: got %v, want 2.12", got)
	}
}

func TestConvertCAD(t *testing.T) {
	usd := New(100, "USD")
	cad := usd.ConvertCAD(dec("1.35"))
	if !cad.Equal(New(dec("135"), "CAD")) || cad.Currency() != "CAD" {
		t.Fatalf("ConvertCAD: got %v %s, want 135 CAD", cad, cad.Currency())
	}
}

func TestQuantityArithmetic(t *testing.T) {
	a := Q(100)
	b := Q(50)
	if !a.Sub(b).Equal(Q(50)) {
		t.Fatalf("Sub mismatch")
	}
	if !a.IsPositive() || !Q(0).IsZero() {
		t.Fatalf("sign predicates mismatch")
	}
}
