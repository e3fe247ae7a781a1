package coordinator

import (
	"context"
	"sync"
	"time"

	"github.com/canledger/acb/fx"
	"github.com/canledger/acb/ledger"
	"github.com/canledger/acb/ledgererr"
	"github.com/canledger/acb/order"
	"github.com/canledger/acb/replay"
)

// DefaultSliceTimeout bounds a single slice's recompute during BulkImport,
// per spec §5 ("hard wall-clock timeout, default 30s per slice").
const DefaultSliceTimeout = 30 * time.Second

// Coordinator is the sole writer of ledger events and the sole consumer of
// the Ordering Oracle; every read of a computed view or position goes
// through its cache rather than re-running Pass 1/2 itself.
type Coordinator struct {
	store      ledger.Store
	catalog    ledger.SecurityCatalog
	fxProvider fx.Provider
	locks      *lockTable

	viewsMu   sync.RWMutex
	views     map[string]*replay.Computed  // by record id
	positions map[ledger.Slice]replay.Position
}

// New builds a Coordinator over the given store and catalog. Without an FX
// provider, events on a non-CAD security must carry an explicit fxRate.
func New(store ledger.Store, catalog ledger.SecurityCatalog) *Coordinator {
	return &Coordinator{
		store:     store,
		catalog:   catalog,
		locks:     newLockTable(),
		views:     make(map[string]*replay.Computed),
		positions: make(map[ledger.Slice]replay.Position),
	}
}

// WithFXProvider attaches a Provider used to auto-fill a missing fxRate on
// write (spec §3: "auto-filled from the FX provider if absent").
func (c *Coordinator) WithFXProvider(p fx.Provider) *Coordinator {
	c.fxProvider = p
	return c
}

// fillFXRate auto-fills r.FXRate from the provider when the security's
// currency requires conversion and the caller didn't supply one.
func (c *Coordinator) fillFXRate(ctx context.Context, r *ledger.Record, security ledger.Security) error {
	if c.fxProvider == nil || r.FXRate != nil {
		return nil
	}
	if security.Currency == "" || security.Currency == "CAD" {
		return nil
	}
	rate, err := c.fxProvider.Rate(ctx, security.Currency+"CAD", r.Date)
	if err != nil {
		return err
	}
	r.FXRate = &rate
	return nil
}

func sliceOf(r ledger.Record) ledger.Slice {
	return ledger.Slice{AccountID: r.AccountID, SecurityID: r.SecurityID}
}

// recompute reloads a slice's records, sorts them canonically, checks
// legality, runs Pass 1+2, and caches the resulting views and terminal
// position. Caller must already hold the slice's lock.
func (c *Coordinator) recompute(ctx context.Context, s ledger.Slice) error {
	records, err := c.store.List(ctx, s.AccountID, s.SecurityID)
	if err != nil {
		return ledgererr.Wrap(ledgererr.DependencyFailure, "loading slice records", err)
	}
	sorted := order.Sort(records)
	if err := order.Legal(sorted); err != nil {
		return err
	}
	entries, pos := replay.Replay(sorted)

	c.viewsMu.Lock()
	defer c.viewsMu.Unlock()
	for _, e := range entries {
		c.views[e.RecordID] = e
	}
	if pos.Shares.IsZero() {
		delete(c.positions, s)
	} else {
		c.positions[s] = pos
	}
	return nil
}

// View returns the cached computed view for a record id.
func (c *Coordinator) View(id string) (*replay.Computed, bool) {
	c.viewsMu.RLock()
	defer c.viewsMu.RUnlock()
	v, ok := c.views[id]
	return v, ok
}

// Positions returns the currently-held positions, optionally filtered by account.
func (c *Coordinator) Positions(accountID string) []PositionView {
	c.viewsMu.RLock()
	defer c.viewsMu.RUnlock()
	out := make([]PositionView, 0, len(c.positions))
	for s, p := range c.positions {
		if accountID != "" && s.AccountID != accountID {
			continue
		}
		out = append(out, PositionView{Slice: s, Position: p})
	}
	return out
}

// PositionView pairs a slice identity with its terminal running state.
type PositionView struct {
	Slice    ledger.Slice
	Position replay.Position
}

// List returns records in canonical order (§6.1: "sorted by canonical
// order"), the Coordinator being the only path that may re-sort. Either
// filter may be empty; an empty accountID or securityID matches every value
// for that field.
func (c *Coordinator) List(ctx context.Context, accountID, securityID string) ([]ledger.Record, error) {
	var records []ledger.Record
	var err error
	if accountID != "" && securityID != "" {
		records, err = c.store.List(ctx, accountID, securityID)
	} else {
		records, err = c.store.ListAll(ctx)
	}
	if err != nil {
		return nil, ledgererr.Wrap(ledgererr.DependencyFailure, "loading records", err)
	}

	filtered := records[:0:0]
	for _, r := range records {
		if accountID != "" && r.AccountID != accountID {
			continue
		}
		if securityID != "" && r.SecurityID != securityID {
			continue
		}
		filtered = append(filtered, r)
	}
	return order.Sort(filtered), nil
}

// Get returns a single event by id.
func (c *Coordinator) Get(ctx context.Context, id string) (ledger.Record, error) {
	return c.store.Get(ctx, id)
}

// Create validates and inserts a new event, recomputes the affected slice,
// and returns its computed view. On legality failure the store write is
// rolled back.
func (c *Coordinator) Create(ctx context.Context, r ledger.Record) (*replay.Computed, error) {
	security, err := c.catalog.Security(ctx, r.SecurityID)
	if err != nil {
		return nil, err
	}
	if err := c.fillFXRate(ctx, &r, security); err != nil {
		return nil, ledgererr.Wrap(ledgererr.DependencyFailure, "fx provider", err)
	}
	if err := ledger.Validate(r, security); err != nil {
		return nil, err
	}

	s := ledger.Slice{AccountID: r.AccountID, SecurityID: r.SecurityID}
	unlock := c.locks.lockSlices(s)
	defer unlock()

	inserted, err := c.store.Insert(ctx, r)
	if err != nil {
		return nil, err
	}

	if err := c.recompute(ctx, s); err != nil {
		if delErr := c.store.Delete(ctx, inserted.ID); delErr != nil {
			return nil, ledgererr.Wrap(ledgererr.Internal, "rollback after legality failure", delErr)
		}
		return nil, err
	}

	view, _ := c.View(inserted.ID)
	return view, nil
}

// Edit applies patch to an existing event and recomputes the affected
// slice(s): the original slice, and the destination slice too when the edit
// moves the event to a different account or security.
func (c *Coordinator) Edit(ctx context.Context, id string, patch ledger.Patch) (*replay.Computed, error) {
	existing, err := c.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	merged := patch.Apply(existing)

	security, err := c.catalog.Security(ctx, merged.SecurityID)
	if err != nil {
		return nil, err
	}
	if err := c.fillFXRate(ctx, &merged, security); err != nil {
		return nil, ledgererr.Wrap(ledgererr.DependencyFailure, "fx provider", err)
	}
	if patch.FXRate == nil && merged.FXRate != nil {
		patch.FXRate = merged.FXRate
	}
	if err := ledger.Validate(merged, security); err != nil {
		return nil, err
	}

	oldSlice, newSlice := sliceOf(existing), sliceOf(merged)
	unlock := c.locks.lockSlices(oldSlice, newSlice)
	defer unlock()

	if _, err := c.store.Update(ctx, id, patch); err != nil {
		return nil, err
	}

	affected := []ledger.Slice{oldSlice}
	if newSlice != oldSlice {
		affected = append(affected, newSlice)
	}
	for _, s := range affected {
		if err := c.recompute(ctx, s); err != nil {
			c.rollbackToRecord(ctx, existing)
			return nil, err
		}
	}

	view, _ := c.View(id)
	return view, nil
}

// rollbackToRecord restores a record to exactly its pre-edit shape and
// re-runs the recompute for its original slice, best-effort: a failure here
// indicates store corruption and is deliberately not surfaced as the
// caller's error, since the caller already has the real failure to report.
func (c *Coordinator) rollbackToRecord(ctx context.Context, original ledger.Record) {
	full := ledger.Patch{
		ExternalID: &original.ExternalID, Date: &original.Date, Type: &original.Type,
		AccountID: &original.AccountID, SecurityID: &original.SecurityID,
		Quantity: &original.Quantity, Price: &original.Price, Fees: &original.Fees,
		FXRate: original.FXRate, ROCPerShare: &original.ROCPerShare, Ratio: original.Ratio,
		Broker: &original.Broker,
	}
	_, _ = c.store.Update(ctx, original.ID, full)
	_ = c.recompute(ctx, sliceOf(original))
}

// Delete removes an event and recomputes its slice. A delete can itself
// violate legality (deleting a buy that a later sell depended on), in which
// case the record is restored verbatim.
func (c *Coordinator) Delete(ctx context.Context, id string) error {
	existing, err := c.store.Get(ctx, id)
	if err != nil {
		return err
	}

	s := sliceOf(existing)
	unlock := c.locks.lockSlices(s)
	defer unlock()

	if err := c.store.Delete(ctx, id); err != nil {
		return err
	}

	if err := c.recompute(ctx, s); err != nil {
		if restoreErr := c.store.Restore(ctx, existing); restoreErr != nil {
			return ledgererr.Wrap(ledgererr.Internal, "rollback after legality failure", restoreErr)
		}
		_ = c.recompute(ctx, s)
		return err
	}
	return nil
}

// BulkImport streams records into their slices, running Pass 1+2 once per
// slice at the end rather than per event (spec §5), under a hard per-slice
// timeout. Records already failing structural validation abort the whole
// import before any slice is touched.
func (c *Coordinator) BulkImport(ctx context.Context, records []ledger.Record, perSliceTimeout time.Duration) error {
	if perSliceTimeout <= 0 {
		perSliceTimeout = DefaultSliceTimeout
	}

	bySlice := make(map[ledger.Slice][]ledger.Record)
	for _, r := range records {
		security, err := c.catalog.Security(ctx, r.SecurityID)
		if err != nil {
			return err
		}
		if err := c.fillFXRate(ctx, &r, security); err != nil {
			return ledgererr.Wrap(ledgererr.DependencyFailure, "fx provider", err)
		}
		if err := ledger.Validate(r, security); err != nil {
			return err
		}
		s := sliceOf(r)
		bySlice[s] = append(bySlice[s], r)
	}

	for s, recs := range bySlice {
		if err := c.importSlice(ctx, s, recs, perSliceTimeout); err != nil {
			return err
		}
	}
	return nil
}

func (c *Coordinator) importSlice(ctx context.Context, s ledger.Slice, recs []ledger.Record, timeout time.Duration) error {
	sctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	unlock := c.locks.lockSlices(s)
	defer unlock()

	inserted := make([]ledger.Record, 0, len(recs))
	for _, r := range recs {
		if sctx.Err() != nil {
			c.rollbackInserts(ctx, inserted)
			return ledgererr.Wrap(ledgererr.Internal, "bulk import slice timed out", sctx.Err())
		}
		ins, err := c.store.Insert(sctx, r)
		if err != nil {
			c.rollbackInserts(ctx, inserted)
			return err
		}
		inserted = append(inserted, ins)
	}

	if err := c.recompute(sctx, s); err != nil {
		c.rollbackInserts(ctx, inserted)
		return err
	}
	return nil
}

func (c *Coordinator) rollbackInserts(ctx context.Context, inserted []ledger.Record) {
	for _, r := range inserted {
		_ = c.store.Delete(ctx, r.ID)
	}
}
