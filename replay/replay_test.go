package replay

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/canledger/acb/date"
	"github.com/canledger/acb/ledger"
	"github.com/canledger/acb/money"
	"github.com/canledger/acb/order"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func d(day int) date.Date { return date.New(2025, time.January, day) }

func buy(id string, day date.Date, seq uint64, qty, price, fees float64) ledger.Record {
	return ledger.Record{
		ID: id, Type: ledger.TypeBuy, Date: day, Seq: seq,
		Quantity: money.Q(qty), Price: money.New(price, "CAD"), Fees: money.New(fees, "CAD"),
	}
}

func sell(id string, day date.Date, seq uint64, qty, price, fees float64) ledger.Record {
	return ledger.Record{
		ID: id, Type: ledger.TypeSell, Date: day, Seq: seq,
		Quantity: money.Q(qty), Price: money.New(price, "CAD"), Fees: money.New(fees, "CAD"),
	}
}

func findByID(entries []*Computed, id string) *Computed {
	for _, e := range entries {
		if e.RecordID == id {
			return e
		}
	}
	return nil
}

// test 1: buy then a sell producing an ordinary gain.
func TestBuyThenSellOrdinaryGain(t *testing.T) {
	records := []ledger.Record{
		buy("b1", d(1), 1, 100, 50, 10),
		sell("s1", d(2), 2, 100, 60, 10),
	}
	entries, pos := Replay(records)

	b := findByID(entries, "b1")
	if !b.ACBAfter.Equal(money.New(5010, "CAD")) {
		t.Fatalf("buy acbAfter: got %s, want 5010", b.ACBAfter)
	}
	s := findByID(entries, "s1")
	if !s.CapitalGain.Equal(money.New(980, "CAD")) {
		t.Fatalf("sell capitalGain: got %s, want 980", s.CapitalGain)
	}
	if !s.ACBAfter.Equal(money.Zero("CAD")) {
		t.Fatalf("sell acbAfter: got %s, want 0", s.ACBAfter)
	}
	if !pos.Shares.IsZero() {
		t.Fatalf("terminal shares: got %s, want 0", pos.Shares)
	}
}

// test 2: two same-date buys average into a single acbPerShare.
func TestTwoSameDateBuysAverage(t *testing.T) {
	records := []ledger.Record{
		buy("b1", d(1), 1, 100, 50, 0),
		buy("b2", d(1), 2, 100, 51, 0),
	}
	entries, _ := Replay(records)
	b2 := findByID(entries, "b2")
	if !b2.ACBAfter.Equal(money.New(10100, "CAD")) {
		t.Fatalf("acbAfter: got %s, want 10100", b2.ACBAfter)
	}
	if !b2.ACBPerShare.Round().Equal(money.New(50.50, "CAD").Round()) {
		t.Fatalf("acbPerShare: got %s, want 50.50", b2.ACBPerShare)
	}
}

// test 3: USD-denominated buy/sell converted via distinct FX rates.
func TestUSDBuySellWithFX(t *testing.T) {
	buyFx := dec("1.35")
	sellFx := dec("1.30")
	records := []ledger.Record{
		{ID: "b1", Type: ledger.TypeBuy, Date: d(1), Seq: 1,
			Quantity: money.Q(100), Price: money.New(50, "USD"), Fees: money.Zero("USD"), FXRate: &buyFx},
		{ID: "s1", Type: ledger.TypeSell, Date: d(2), Seq: 2,
			Quantity: money.Q(100), Price: money.New(60, "USD"), Fees: money.Zero("USD"), FXRate: &sellFx},
	}
	entries, _ := Replay(records)
	b := findByID(entries, "b1")
	if !b.ACBAfter.Equal(money.New(6750, "CAD")) {
		t.Fatalf("acbAfter: got %s, want 6750", b.ACBAfter)
	}
	s := findByID(entries, "s1")
	if !s.CapitalGain.Equal(money.New(1050, "CAD")) {
		t.Fatalf("capitalGain: got %s, want 1050", s.CapitalGain)
	}
}

// test 4: a return-of-capital exceeding the ACB clamps it to 0 and emits the excess as a gain.
func TestROCExcessBecomesGain(t *testing.T) {
	records := []ledger.Record{
		buy("b1", d(1), 1, 100, 8, 0),
		{ID: "r1", Type: ledger.TypeROC, Date: d(2), Seq: 2,
			Quantity: money.Q(100), ROCPerShare: money.New(10, "CAD")},
	}
	entries, _ := Replay(records)
	r := findByID(entries, "r1")
	if !r.ACBAfter.Equal(money.Zero("CAD")) {
		t.Fatalf("acbAfter: got %s, want 0", r.ACBAfter)
	}
	if !r.CapitalGain.Equal(money.New(200, "CAD")) {
		t.Fatalf("capitalGain: got %s, want 200", r.CapitalGain)
	}
}

// test 5: a 2-for-1 split doubles shares, leaves ACB unchanged, halves acbPerShare.
func TestSplitPreservesACB(t *testing.T) {
	ratio := dec("2")
	records := []ledger.Record{
		buy("b1", d(1), 1, 100, 50, 0),
		{ID: "sp1", Type: ledger.TypeSplit, Date: d(2), Seq: 2, Ratio: &ratio},
	}
	entries, pos := Replay(records)
	sp := findByID(entries, "sp1")
	if !sp.SharesAfter.Equal(money.Q(200)) {
		t.Fatalf("sharesAfter: got %s, want 200", sp.SharesAfter)
	}
	if !sp.ACBAfter.Equal(money.New(5000, "CAD")) {
		t.Fatalf("acbAfter: got %s, want 5000", sp.ACBAfter)
	}
	if !sp.ACBPerShare.Equal(money.New(25, "CAD")) {
		t.Fatalf("acbPerShare: got %s, want 25", sp.ACBPerShare)
	}
	if !pos.Shares.Equal(money.Q(200)) {
		t.Fatalf("terminal shares: got %s, want 200", pos.Shares)
	}
}

// test 76: a partial-window replacement buy a few days after a loss sale
// defers the full loss onto that buy's ACB, and never bumps the disposing
// sell itself or the pre-sale lot it was sold out of (shares hit 0 at the
// sell, so acbAfter must stay 0 there per Invariant 3).
func TestSuperficialLossPartialWindowReplacement(t *testing.T) {
	records := order.Sort([]ledger.Record{
		buy("b1", d(1), 1, 100, 50, 0),
		sell("s1", d(2), 2, 100, 40, 0),
		buy("b2", d(7), 3, 100, 38, 0),
	})
	entries, _ := Replay(records)

	s := findByID(entries, "s1")
	if !s.CapitalGain.Equal(money.Zero("CAD")) {
		t.Fatalf("sell capitalGain: got %s, want 0 (fully deferred)", s.CapitalGain)
	}
	if !s.ACBAfter.Equal(money.Zero("CAD")) {
		t.Fatalf("sell acbAfter: got %s, want 0 (sharesAfter=0)", s.ACBAfter)
	}
	b1 := findByID(entries, "b1")
	if !b1.ACBAfter.Equal(money.New(5000, "CAD")) {
		t.Fatalf("pre-sale lot acbAfter: got %s, want 5000 (unbumped)", b1.ACBAfter)
	}
	b2 := findByID(entries, "b2")
	if !b2.ACBAfter.Equal(money.New(4800, "CAD")) {
		t.Fatalf("replacement buy acbAfter: got %s, want 4800", b2.ACBAfter)
	}
}

// test 78: a same-day buy/sell pair is sorted buy-before-sell by the
// Ordering Oracle (typeRank 1 < 3), so the buy has already blended into the
// pool average the sale itself used — it is not a later "replacement" and
// earns no deferral; the sale's own loss stands.
func TestSuperficialLossSameDayBuyIsNotAReplacement(t *testing.T) {
	records := order.Sort([]ledger.Record{
		buy("b1", d(1), 1, 100, 50, 0),
		sell("s1", d(2), 2, 100, 40, 0),
		buy("b2", d(2), 3, 100, 40, 0),
	})
	entries, _ := Replay(records)

	s := findByID(entries, "s1")
	if !s.CapitalGain.Equal(money.New(-500, "CAD")) {
		t.Fatalf("sell capitalGain: got %s, want -500 (no deferral)", s.CapitalGain)
	}
	if !s.SuperficialLossDeferred.IsZero() {
		t.Fatalf("superficialLossDeferred: got %s, want 0", s.SuperficialLossDeferred)
	}
	b2 := findByID(entries, "b2")
	if !b2.ACBAfter.Equal(money.New(9000, "CAD")) {
		t.Fatalf("same-day buy acbAfter: got %s, want 9000 (unbumped)", b2.ACBAfter)
	}
}

// two post-sale replacement buys split the deferred loss proportionally to
// their own quantity, not to array position: b2 gets half of the 1000
// deferred even though b3 comes later.
func TestSuperficialLossSplitsAcrossTwoReplacementBuys(t *testing.T) {
	records := order.Sort([]ledger.Record{
		buy("b1", d(1), 1, 100, 50, 0),
		sell("s1", d(2), 2, 100, 40, 0),
		buy("b2", d(5), 3, 50, 38, 0),
		buy("b3", d(6), 4, 50, 38, 0),
	})
	entries, _ := Replay(records)

	s := findByID(entries, "s1")
	if !s.ACBAfter.Equal(money.Zero("CAD")) {
		t.Fatalf("sell acbAfter: got %s, want 0 (sharesAfter=0)", s.ACBAfter)
	}
	b2 := findByID(entries, "b2")
	if !b2.ACBAfter.Equal(money.New(2400, "CAD")) {
		t.Fatalf("first replacement buy acbAfter: got %s, want 2400", b2.ACBAfter)
	}
	b3 := findByID(entries, "b3")
	if !b3.ACBAfter.Equal(money.New(4800, "CAD")) {
		t.Fatalf("second replacement buy acbAfter: got %s, want 4800", b3.ACBAfter)
	}
}

// test 7: deleting the earliest of two buys leaves the sell's acbUsed
// reflecting only the surviving buy.
func TestDeleteEarliestBuyRecomputesSurvivor(t *testing.T) {
	full := []ledger.Record{
		buy("b1", d(1), 1, 100, 50, 0),
		buy("b2", d(2), 2, 100, 60, 0),
		sell("s1", d(3), 3, 50, 70, 0),
	}
	_, _ = Replay(full)

	afterDelete := []ledger.Record{
		buy("b2", d(2), 2, 100, 60, 0),
		sell("s1", d(3), 3, 50, 70, 0),
	}
	entries, _ := Replay(afterDelete)
	s := findByID(entries, "s1")
	if !s.ACBUsed.Equal(money.New(3000, "CAD")) {
		t.Fatalf("acbUsed after deletion: got %s, want 3000", s.ACBUsed)
	}
}

// property: acbUsed always equals acbBefore * quantity / sharesBefore.
func TestSellACBUsedMatchesProportionalFormula(t *testing.T) {
	records := []ledger.Record{
		buy("b1", d(1), 1, 300, 10, 0), // acb 3000, shares 300
		sell("s1", d(2), 2, 100, 20, 0),
	}
	entries, _ := Replay(records)
	s := findByID(entries, "s1")
	// acbBefore=3000, sharesBefore=300, quantity=100 -> acbUsed = 3000*100/300 = 1000
	if !s.ACBUsed.Equal(money.New(1000, "CAD")) {
		t.Fatalf("acbUsed: got %s, want 1000", s.ACBUsed)
	}
}
