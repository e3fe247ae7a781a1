package ledger

import "context"

// Store is the content-agnostic event repository (§4.2). Implementations must
// guarantee durability of the raw-event truth set; computed views are never
// stored as truth by the Store itself. Backing persistence is pluggable — the
// core only requires these operations plus atomic multi-row updates, which
// Update/Delete are expected to honour within a single implementation-owned
// transaction.
type Store interface {
	// Insert assigns id and seq and persists the record. It fails with a
	// ledgererr.Duplicate error if ExternalID is non-empty and already used
	// on the same AccountID.
	Insert(ctx context.Context, r Record) (Record, error)

	// Update merges patch onto the stored record for id and persists it.
	Update(ctx context.Context, id string, patch Patch) (Record, error)

	// Delete removes the record for id.
	Delete(ctx context.Context, id string) error

	// Restore reinserts r verbatim, preserving its ID and Seq. Used only by
	// the Coordinator to roll back a Delete that a legality recompute
	// rejected; never reassigns identity the way Insert does.
	Restore(ctx context.Context, r Record) error

	// Get returns the stored record for id.
	Get(ctx context.Context, id string) (Record, error)

	// List returns every record for the given slice, in storage order
	// (arbitrary — callers must route through order.Sort for canonical order).
	List(ctx context.Context, accountID, securityID string) ([]Record, error)

	// ListAll returns every record in the store.
	ListAll(ctx context.Context) ([]Record, error)
}

// SecurityCatalog is the read-only view onto the securities/accounts metadata
// catalog (§6.2) that the core needs: just enough to resolve a security's
// currency for FX and validation purposes.
type SecurityCatalog interface {
	Security(ctx context.Context, id string) (Security, error)
}
