// Package coordinator implements the Mutation Coordinator (C5): the single
// entry point for every write, wrapping validation, the store operation, and
// a per-slice recompute through the Ordering Oracle and Replay Engine,
// serialised by a striped lock. Grounded on aristath-sentinel's
// internal/modules/display/state_manager.go for the guarded-state idiom and
// on the teacher's Ledger.Append/AppendOrUpdate for the write-then-recompute
// shape.
package coordinator

import (
	"sort"
	"sync"

	"github.com/canledger/acb/ledger"
)

// lockTable hands out one *sync.Mutex per slice, creating it lazily. It is
// the striped lock spec §5 requires: disjoint slices never contend.
type lockTable struct {
	mu    sync.Mutex
	locks map[ledger.Slice]*sync.Mutex
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[ledger.Slice]*sync.Mutex)}
}

func (t *lockTable) get(s ledger.Slice) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	m, ok := t.locks[s]
	if !ok {
		m = &sync.Mutex{}
		t.locks[s] = m
	}
	return m
}

// lockSlices locks one or two slices in a fixed total order so that an edit
// touching two slices never deadlocks against a concurrent edit touching the
// same pair in the opposite order. It returns the unlock function.
func (t *lockTable) lockSlices(slices ...ledger.Slice) func() {
	uniq := dedupSlices(slices)
	sort.Slice(uniq, func(i, j int) bool {
		if uniq[i].AccountID != uniq[j].AccountID {
			return uniq[i].AccountID < uniq[j].AccountID
		}
		return uniq[i].SecurityID < uniq[j].SecurityID
	})
	for _, s := range uniq {
		t.get(s).Lock()
	}
	return func() {
		for i := len(uniq) - 1; i >= 0; i-- {
			t.get(uniq[i]).Unlock()
		}
	}
}

func dedupSlices(slices []ledger.Slice) []ledger.Slice {
	out := make([]ledger.Slice, 0, len(slices))
	for _, s := range slices {
		found := false
		for _, o := range out {
			if o == s {
				found = true
				break
			}
		}
		if !found {
			out = append(out, s)
		}
	}
	return out
}
