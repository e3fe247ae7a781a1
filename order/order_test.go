package order

import (
	"testing"
	"time"

	"github.com/canledger/acb/date"
	"github.com/canledger/acb/ledger"
	"github.com/canledger/acb/money"
)

func rec(typ ledger.EventType, day date.Date, seq uint64, qty float64) ledger.Record {
	return ledger.Record{Type: typ, Date: day, Seq: seq, Quantity: money.Q(qty)}
}

func TestSortTypeRankTieBreak(t *testing.T) {
	d := date.New(2025, time.January, 1)
	recs := []ledger.Record{
		rec(ledger.TypeSell, d, 2, 10),
		rec(ledger.TypeBuy, d, 1, 10),
		rec(ledger.TypeSplit, d, 3, 0),
	}
	sorted := Sort(recs)
	want := []ledger.EventType{ledger.TypeSplit, ledger.TypeBuy, ledger.TypeSell}
	for i, r := range sorted {
		if r.Type != want[i] {
			t.Fatalf("position %d: got %s, want %s", i, r.Type, want[i])
		}
	}
}

func TestLegalSameDayBuyThenSell(t *testing.T) {
	d := date.New(2025, time.January, 1)
	recs := Sort([]ledger.Record{
		rec(ledger.TypeBuy, d, 1, 100),
		rec(ledger.TypeSell, d, 2, 100),
	})
	if err := Legal(recs); err != nil {
		t.Fatalf("expected legal same-day buy-then-sell, got %v", err)
	}
}

func TestIllegalSellBeforeHoldings(t *testing.T) {
	d := date.New(2025, time.January, 1)
	// Same rank-3 sell precedes a later buy chronologically but the oracle
	// only cares about the canonical order, so a sell with seq before any buy
	// on an earlier date is illegal.
	recs := Sort([]ledger.Record{
		rec(ledger.TypeSell, d, 1, 50),
		rec(ledger.TypeBuy, d.AddDays(1), 2, 100),
	})
	if err := Legal(recs); err == nil {
		t.Fatalf("expected a legality error for sell-before-holdings")
	}
}
