package replay

import "github.com/canledger/acb/ledger"

// Replay runs the full two-pass engine over a single (account, security)
// slice's records, which must already be in canonical order (order.Sort).
// It never re-sorts and never touches storage.
func Replay(records []ledger.Record) ([]*Computed, Position) {
	entries, pos := pass1(records)
	applySuperficialLoss(records, entries)
	if n := len(entries); n > 0 {
		pos.ACB = entries[n-1].ACBAfter
	}
	return entries, pos
}
