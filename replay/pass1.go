package replay

import (
	"github.com/shopspring/decimal"

	"github.com/canledger/acb/ledger"
	"github.com/canledger/acb/money"
)

var oneRate = decimal.NewFromInt(1)

// fxRateOf returns the record's native→CAD conversion rate, defaulting to 1
// for CAD-denominated events (Validate already rejects a missing rate on any
// non-CAD security, so a nil rate here always means "no conversion needed").
func fxRateOf(r ledger.Record) decimal.Decimal {
	if r.FXRate != nil {
		return *r.FXRate
	}
	return oneRate
}

// pass1 runs the forward replay (§4.4 Pass 1): maintains the running
// (shares, acb) position and computes each event's CAD-denominated effect.
func pass1(records []ledger.Record) ([]*Computed, Position) {
	shares := money.Q(0)
	acb := money.Zero("CAD")

	entries := make([]*Computed, 0, len(records))
	for _, r := range records {
		fx := fxRateOf(r)
		e := &Computed{RecordID: r.ID}

		switch r.Type {
		case ledger.TypeBuy, ledger.TypeDrip:
			nativeCost := r.Price.Mul(r.Quantity).Add(r.Fees)
			cadCost := nativeCost.ConvertCAD(fx)
			shares = shares.Add(r.Quantity)
			acb = acb.Add(cadCost)

		case ledger.TypeSell:
			nativeProceeds := r.Price.Mul(r.Quantity).Sub(r.Fees)
			cadProceeds := nativeProceeds.ConvertCAD(fx)
			acbUsed := acb.Mul(r.Quantity).DivShares(shares)
			rawGain := cadProceeds.Sub(acbUsed)

			shares = shares.Sub(r.Quantity)
			acb = acb.Sub(acbUsed)
			if shares.IsZero() {
				acb = money.Zero("CAD")
			}

			e.Proceeds = cadProceeds
			e.ACBUsed = acbUsed
			e.rawGain = rawGain
			e.CapitalGain = rawGain // overwritten by pass 2 if the loss is superficial

		case ledger.TypeDividend:
			e.DividendCash = r.Price.Mul(r.Quantity).ConvertCAD(fx)

		case ledger.TypeROC:
			cadRoc := r.ROCPerShare.Mul(r.Quantity).ConvertCAD(fx)
			remaining := acb.Sub(cadRoc)
			if remaining.IsNegative() {
				e.CapitalGain = remaining.Neg()
				acb = money.Zero("CAD")
			} else {
				acb = remaining
			}

		case ledger.TypeSplit:
			ratio := money.QD(*r.Ratio)
			shares = shares.Mul(ratio)
		}

		e.SharesAfter = shares
		e.ACBAfter = acb
		if shares.IsZero() {
			e.ACBPerShare = money.Zero("CAD")
		} else {
			e.ACBPerShare = acb.DivShares(shares)
		}
		entries = append(entries, e)
	}

	return entries, Position{Shares: shares, ACB: acb}
}
