package coordinator

import (
	"context"
	"testing"

	"github.com/canledger/acb/catalog"
	"github.com/canledger/acb/date"
	"github.com/canledger/acb/ledger"
	"github.com/canledger/acb/ledger/memstore"
	"github.com/canledger/acb/ledgererr"
	"github.com/canledger/acb/money"
)

func newTestCoordinator(t *testing.T) (*Coordinator, *catalog.Catalog, ledger.Security, ledger.Account) {
	t.Helper()
	ctx := context.Background()
	cat := catalog.New()
	sec, err := cat.CreateSecurity(ctx, ledger.Security{Symbol: "ACME", Currency: "CAD", Type: "equity"})
	if err != nil {
		t.Fatalf("create security: %v", err)
	}
	acc, err := cat.CreateAccount(ctx, ledger.Account{Name: "non-reg"})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	return New(memstore.New(), cat), cat, sec, acc
}

func TestCreateThenReadComputedView(t *testing.T) {
	ctx := context.Background()
	c, _, sec, acc := newTestCoordinator(t)

	view, err := c.Create(ctx, ledger.Record{
		Type: ledger.TypeBuy, Date: date.New(2025, 1, 1), AccountID: acc.ID, SecurityID: sec.ID,
		Quantity: money.Q(100), Price: money.New(50, "CAD"), Fees: money.New(10, "CAD"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !view.ACBAfter.Equal(money.New(5010, "CAD")) {
		t.Fatalf("acbAfter: got %s, want 5010", view.ACBAfter)
	}

	positions := c.Positions(acc.ID)
	if len(positions) != 1 {
		t.Fatalf("expected 1 open position, got %d", len(positions))
	}
}

func TestCreateSellWithoutHoldingsIsRejected(t *testing.T) {
	ctx := context.Background()
	c, _, sec, acc := newTestCoordinator(t)

	_, err := c.Create(ctx, ledger.Record{
		Type: ledger.TypeSell, Date: date.New(2025, 1, 1), AccountID: acc.ID, SecurityID: sec.ID,
		Quantity: money.Q(10), Price: money.New(50, "CAD"),
	})
	if err == nil {
		t.Fatal("expected a legality error for a sell without holdings")
	}
	if e, ok := ledgererr.As(err); !ok || e.Kind != ledgererr.Legality {
		t.Fatalf("expected a Legality error, got %v", err)
	}

	// The rejected write must not have left a record behind.
	if len(c.Positions(acc.ID)) != 0 {
		t.Fatalf("expected no positions after a rolled-back create")
	}
}

func TestDuplicateExternalIDRejected(t *testing.T) {
	ctx := context.Background()
	c, _, sec, acc := newTestCoordinator(t)

	base := ledger.Record{
		Type: ledger.TypeBuy, Date: date.New(2025, 1, 1), AccountID: acc.ID, SecurityID: sec.ID,
		Quantity: money.Q(10), Price: money.New(50, "CAD"), ExternalID: "broker-tx-1",
	}
	if _, err := c.Create(ctx, base); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := c.Create(ctx, base)
	if err == nil {
		t.Fatal("expected a duplicate error")
	}
	if e, ok := ledgererr.As(err); !ok || e.Kind != ledgererr.Duplicate {
		t.Fatalf("expected a Duplicate error, got %v", err)
	}
}

func TestEditRecomputesSlice(t *testing.T) {
	ctx := context.Background()
	c, _, sec, acc := newTestCoordinator(t)

	buyView, err := c.Create(ctx, ledger.Record{
		Type: ledger.TypeBuy, Date: date.New(2025, 1, 1), AccountID: acc.ID, SecurityID: sec.ID,
		Quantity: money.Q(100), Price: money.New(50, "CAD"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	newPrice := money.New(60, "CAD")
	updated, err := c.Edit(ctx, buyView.RecordID, ledger.Patch{Price: &newPrice})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if !updated.ACBAfter.Equal(money.New(6000, "CAD")) {
		t.Fatalf("acbAfter after edit: got %s, want 6000", updated.ACBAfter)
	}
}

func TestDeleteRollsBackOnLegalityFailure(t *testing.T) {
	ctx := context.Background()
	c, _, sec, acc := newTestCoordinator(t)

	buyView, err := c.Create(ctx, ledger.Record{
		Type: ledger.TypeBuy, Date: date.New(2025, 1, 1), AccountID: acc.ID, SecurityID: sec.ID,
		Quantity: money.Q(100), Price: money.New(50, "CAD"),
	})
	if err != nil {
		t.Fatalf("create buy: %v", err)
	}
	if _, err := c.Create(ctx, ledger.Record{
		Type: ledger.TypeSell, Date: date.New(2025, 1, 2), AccountID: acc.ID, SecurityID: sec.ID,
		Quantity: money.Q(100), Price: money.New(60, "CAD"),
	}); err != nil {
		t.Fatalf("create sell: %v", err)
	}

	err = c.Delete(ctx, buyView.RecordID)
	if err == nil {
		t.Fatal("expected deleting the only covering buy to be rejected")
	}
	if _, ok := c.View(buyView.RecordID); !ok {
		t.Fatal("expected the buy to remain after a rolled-back delete")
	}
}

func TestBulkImportTimeoutDefault(t *testing.T) {
	ctx := context.Background()
	c, _, sec, acc := newTestCoordinator(t)

	records := []ledger.Record{
		{Type: ledger.TypeBuy, Date: date.New(2025, 1, 1), AccountID: acc.ID, SecurityID: sec.ID,
			Quantity: money.Q(100), Price: money.New(50, "CAD")},
		{Type: ledger.TypeSell, Date: date.New(2025, 1, 2), AccountID: acc.ID, SecurityID: sec.ID,
			Quantity: money.Q(40), Price: money.New(60, "CAD")},
	}
	if err := c.BulkImport(ctx, records, 0); err != nil {
		t.Fatalf("bulk import: %v", err)
	}
	if len(c.Positions(acc.ID)) != 1 {
		t.Fatalf("expected 1 open position after bulk import")
	}
}
