// Package ledger implements the ACB ledger's data model (§3) and Event Store
// (§4.2): securities, accounts, and the document-shaped Record that is the
// store's unit of truth for every event type.
package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/canledger/acb/date"
	"github.com/canledger/acb/money"
)

// Security is a tradeable asset. Immutable after creation except descriptive
// fields; Currency determines whether FX conversion applies to any event
// touching it.
type Security struct {
	ID       string `json:"id"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name,omitempty"`
	Currency string `json:"currency"` // "CAD" or "USD"
	Type     string `json:"type"`
}

// Account scopes events; Broker is an optional tag attached to individual events.
type Account struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Broker string `json:"broker,omitempty"`
}

// EventType identifies the kind of ledger event (spec §3).
type EventType string

const (
	TypeBuy      EventType = "buy"
	TypeSell     EventType = "sell"
	TypeDividend EventType = "dividend"
	TypeDrip     EventType = "drip"
	TypeROC      EventType = "roc"
	TypeSplit    EventType = "split"
)

// Record is the canonical, document-shaped stored representation of an event
// — the store's unit of truth (§4.2). Fields not relevant to a given Type are
// simply left zero/nil; it mirrors spec §3's table directly, one field per
// column, exactly the way the teacher's baseCmd/secCmd document a transaction's
// wire shape before Validate/typed-dispatch takes over.
type Record struct {
	ID          string
	ExternalID  string
	Date        date.Date
	Seq         uint64
	Type        EventType
	AccountID   string
	SecurityID  string
	Quantity    money.Quantity
	Price       money.Money
	Fees        money.Money
	FXRate      *decimal.Decimal
	ROCPerShare money.Money
	Ratio       *decimal.Decimal
	Broker      string
}

// Patch is a partial update to a Record: every field is optional, only
// non-nil fields are merged. Date and Type changes are allowed per §4.2.
type Patch struct {
	ExternalID  *string
	Date        *date.Date
	Type        *EventType
	AccountID   *string
	SecurityID  *string
	Quantity    *money.Quantity
	Price       *money.Money
	Fees        *money.Money
	FXRate      *decimal.Decimal
	ROCPerShare *money.Money
	Ratio       *decimal.Decimal
	Broker      *string
}

// Apply merges the patch's non-nil fields onto a copy of r.
func (p Patch) Apply(r Record) Record {
	if p.ExternalID != nil {
		r.ExternalID = *p.ExternalID
	}
	if p.Date != nil {
		r.Date = *p.Date
	}
	if p.Type != nil {
		r.Type = *p.Type
	}
	if p.AccountID != nil {
		r.AccountID = *p.AccountID
	}
	if p.SecurityID != nil {
		r.SecurityID = *p.SecurityID
	}
	if p.Quantity != nil {
		r.Quantity = *p.Quantity
	}
	if p.Price != nil {
		r.Price = *p.Price
	}
	if p.Fees != nil {
		r.Fees = *p.Fees
	}
	if p.FXRate != nil {
		r.FXRate = p.FXRate
	}
	if p.ROCPerShare != nil {
		r.ROCPerShare = *p.ROCPerShare
	}
	if p.Ratio != nil {
		r.Ratio = p.Ratio
	}
	if p.Broker != nil {
		r.Broker = *p.Broker
	}
	return r
}

// Slice identifies the (accountId, securityId) partition that the engine
// serialises mutations within and replays independently (spec's "Slice").
type Slice struct {
	AccountID  string
	SecurityID string
}
