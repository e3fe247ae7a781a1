// Package replay implements the Replay Engine (C4): a pure function that
// takes an already canonically-ordered event slice (order.Sort has already
// run — this package never re-sorts, per §4.5's "read paths do not re-sort")
// and produces the per-event computed view plus the terminal position.
//
// It is deliberately free of I/O, in the same spirit as the teacher's
// snapshot.go being a "stateless calculator" over a Journal: Replay takes a
// slice, returns values, and touches no store.
package replay

import (
	"github.com/canledger/acb/money"
)

// Position is the running (shares, ACB) state of a (account, security) slice.
type Position struct {
	Shares money.Quantity
	ACB    money.Money
}

// Computed is the per-event output described in spec §3's second table.
type Computed struct {
	RecordID    string
	SharesAfter money.Quantity
	ACBAfter    money.Money
	ACBPerShare money.Money

	// Sell fields. CapitalGain is also set on a ROC whose amount exceeds
	// the running ACB.
	Proceeds                money.Money
	ACBUsed                 money.Money
	CapitalGain             money.Money
	SuperficialLossDeferred money.Money

	// Dividend-only field: informational cash total, never feeds ACB.
	DividendCash money.Money

	// rawGain is the pre-superficial-loss capital gain/loss on a sell; kept
	// unexported since it is Pass 2's working value, not part of the public
	// computed view.
	rawGain money.Money
}
