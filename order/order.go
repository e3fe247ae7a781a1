// Package order implements the Ordering Oracle (§4.3): the deterministic
// total order over events sharing a trade date, and the legality check that
// rejects a sell without prior holdings. Grounded on the teacher's
// compile-to-ordered-events idiom (journal.go) and on tsiemens-acb's
// txSorter/SortTxs, adapted to this spec's explicit (date, typeRank, seq) key.
package order

import (
	"sort"

	"github.com/canledger/acb/ledger"
	"github.com/canledger/acb/ledgererr"
	"github.com/canledger/acb/money"
)

// TypeRank resolves intra-day ordering ambiguity per spec §4.3's table.
func TypeRank(t ledger.EventType) int {
	switch t {
	case ledger.TypeSplit:
		return 0
	case ledger.TypeBuy, ledger.TypeDrip:
		return 1
	case ledger.TypeDividend, ledger.TypeROC:
		return 2
	case ledger.TypeSell:
		return 3
	default:
		return 99
	}
}

// Sort returns records ordered by the canonical key (date, typeRank, seq).
// The input slice is not mutated.
func Sort(records []ledger.Record) []ledger.Record {
	sorted := make([]ledger.Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		ra, rb := TypeRank(a.Type), TypeRank(b.Type)
		if ra != rb {
			return ra < rb
		}
		return a.Seq < b.Seq
	})
	return sorted
}

// Legal walks a canonically-sorted slice and returns a ledgererr.Legality
// error for the first sell whose effective position at its ordered point
// would be negative. Dividends and ROC never affect share count for this
// check; a split multiplies the running share count by its ratio.
func Legal(sorted []ledger.Record) error {
	var shares = money.Q(0)
	for _, r := range sorted {
		switch r.Type {
		case ledger.TypeBuy, ledger.TypeDrip:
			shares = shares.Add(r.Quantity)
		case ledger.TypeSell:
			if r.Quantity.GreaterThan(shares) {
				return ledgererr.Legalityf(
					"sell of %s shares on %s exceeds held position of %s shares",
					r.Quantity, r.Date, shares)
			}
			shares = shares.Sub(r.Quantity)
		case ledger.TypeSplit:
			if r.Ratio != nil {
				shares = shares.Mul(money.QD(*r.Ratio))
			}
		}
	}
	return nil
}
