package replay

import (
	"github.com/canledger/acb/date"
	"github.com/canledger/acb/ledger"
	"github.com/canledger/acb/money"
)

// superficialLossWindowDays is half of the CRA's 61-day window (30 days
// before the sale through 30 days after).
const superficialLossWindowDays = 30

// sharesHeldAt returns the running share balance as of the last record dated
// on or before target.
func sharesHeldAt(records []ledger.Record, entries []*Computed, target date.Date) money.Quantity {
	shares := money.Q(0)
	for i, r := range records {
		if r.Date.After(target) {
			break
		}
		shares = entries[i].SharesAfter
	}
	return shares
}

// acquisitionsAfterSale returns the indices of buy/drip records dated within
// [start, end] that occur strictly after the sale at index saleIdx in
// canonical order, in their existing (chronological) order. A buy ordered at
// or before the sale already fed the sale's own acbUsed through the forward
// pool average; only a buy the sale could not itself have consumed is a
// genuine replacement lot.
func acquisitionsAfterSale(records []ledger.Record, saleIdx int, start, end date.Date) []int {
	var idxs []int
	for i, r := range records {
		if i <= saleIdx {
			continue
		}
		if r.Type != ledger.TypeBuy && r.Type != ledger.TypeDrip {
			continue
		}
		if r.Date.Before(start) || r.Date.After(end) {
			continue
		}
		idxs = append(idxs, i)
	}
	return idxs
}

// applySuperficialLoss runs Pass 2 (§4.4): for every sell whose Pass 1 raw
// gain was a loss, it checks whether replacement shares were bought within
// the 61-day window and still held 30 days out. The denied portion of the
// loss is added back into the sell's reported capital gain and distributed
// onto the ACB of the replacement buys, in the spirit of tsiemens-acb's
// getSuperficialLossInfo/getSuperficialLossRatio — simplified here to a
// single slice with no affiliate accounts to track.
//
// Only buys strictly after the loss sale are eligible replacement lots: a
// buy at or before the sale already blended into the pool average the sale
// itself used, so bumping it would also bump the disposing sell's own
// ACBAfter, violating the sharesAfter=0 => acbAfter=0 invariant. The ACB
// bump is propagated forward from each replacement buy's own index into
// later records' ACBAfter/ACBPerShare, up to the first record at which the
// position is fully sold, but a later sell's own
// ACBUsed/CapitalGain is not recomputed against the bumped ACB: those were
// already fixed by the forward pass that produced this sell's own proceeds.
func applySuperficialLoss(records []ledger.Record, entries []*Computed) {
	for i, r := range records {
		if r.Type != ledger.TypeSell {
			continue
		}
		e := entries[i]
		if !e.rawGain.IsNegative() {
			continue
		}

		start := r.Date.AddDays(-superficialLossWindowDays)
		end := r.Date.AddDays(superficialLossWindowDays)

		buys := acquisitionsAfterSale(records, i, start, end)
		acquired := money.Q(0)
		for _, bi := range buys {
			acquired = acquired.Add(records[bi].Quantity)
		}
		heldAfter := sharesHeldAt(records, entries, end)

		replacement := r.Quantity
		if acquired.LessThan(replacement) {
			replacement = acquired
		}
		if heldAfter.LessThan(replacement) {
			replacement = heldAfter
		}
		if !replacement.IsPositive() {
			continue
		}

		deniedFraction := replacement.Div(r.Quantity)
		lossMagnitude := e.rawGain.Neg()
		deferred := lossMagnitude.Mul(deniedFraction)

		e.SuperficialLossDeferred = deferred
		e.CapitalGain = e.rawGain.Add(deferred)

		remaining := replacement
		for _, bi := range buys {
			if !remaining.IsPositive() {
				break
			}
			attributed := records[bi].Quantity
			if remaining.LessThan(attributed) {
				attributed = remaining
			}
			buyShare := attributed.Div(replacement)
			addOn := deferred.Mul(buyShare)
			bumpACBForward(records, entries, bi, addOn)
			remaining = remaining.Sub(attributed)
		}
	}
}

// bumpACBForward adds addOn to ACBAfter (and recomputes ACBPerShare) for
// record bi and every record after it in canonical order, stopping at the
// first record whose SharesAfter is zero: pass 1 reset the ACB to 0 there, so
// neither it nor any later record carries the bumped lot's cost.
func bumpACBForward(records []ledger.Record, entries []*Computed, from int, addOn money.Money) {
	for i := from; i < len(records); i++ {
		e := entries[i]
		if e.SharesAfter.IsZero() {
			break
		}
		e.ACBAfter = e.ACBAfter.Add(addOn)
		e.ACBPerShare = e.ACBAfter.DivShares(e.SharesAfter)
	}
}
