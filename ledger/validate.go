package ledger

import (
	"github.com/canledger/acb/ledgererr"
)

// Validate checks the structural constraints for r's Type (§4.5 step 1):
// required fields per type, non-negative quantities/fees, a positive split
// ratio, and FX-rate presence when the security's currency is not CAD. It
// mirrors the teacher's per-type Validate-method dispatch (validation.go),
// generalized to this spec's event shape.
func Validate(r Record, security Security) error {
	if r.AccountID == "" {
		return ledgererr.Validationf("accountId is required")
	}
	if r.SecurityID == "" {
		return ledgererr.Validationf("securityId is required")
	}
	needsFX := security.Currency != "" && security.Currency != "CAD"

	switch r.Type {
	case TypeBuy, TypeDrip:
		if r.Quantity.IsZero() || r.Quantity.IsNegative() {
			return ledgererr.Validationf("%s requires a positive quantity", r.Type)
		}
		if r.Price.IsNegative() {
			return ledgererr.Validationf("%s requires a non-negative price", r.Type)
		}
		if r.Fees.IsNegative() {
			return ledgererr.Validationf("%s requires non-negative fees", r.Type)
		}
		if needsFX && r.FXRate == nil {
			return ledgererr.Validationf("%s on a %s security requires fxRate", r.Type, security.Currency)
		}
	case TypeSell:
		if r.Quantity.IsZero() || r.Quantity.IsNegative() {
			return ledgererr.Validationf("sell requires a positive quantity")
		}
		if r.Price.IsNegative() {
			return ledgererr.Validationf("sell requires a non-negative price")
		}
		if r.Fees.IsNegative() {
			return ledgererr.Validationf("sell requires non-negative fees")
		}
		if needsFX && r.FXRate == nil {
			return ledgererr.Validationf("sell on a %s security requires fxRate", security.Currency)
		}
	case TypeDividend:
		if r.Quantity.IsNegative() {
			return ledgererr.Validationf("dividend requires a non-negative quantity")
		}
		if r.Price.IsNegative() {
			return ledgererr.Validationf("dividend requires a non-negative price")
		}
		if r.Fees.IsNegative() {
			return ledgererr.Validationf("dividend requires non-negative fees")
		}
		if needsFX && r.FXRate == nil {
			return ledgererr.Validationf("dividend on a %s security requires fxRate", security.Currency)
		}
	case TypeROC:
		if r.Quantity.IsNegative() {
			return ledgererr.Validationf("roc requires a non-negative quantity")
		}
		if r.ROCPerShare.IsNegative() {
			return ledgererr.Validationf("roc requires a non-negative rocPerShare")
		}
		if r.Fees.IsNegative() {
			return ledgererr.Validationf("roc requires non-negative fees")
		}
		if needsFX && r.FXRate == nil {
			return ledgererr.Validationf("roc on a %s security requires fxRate", security.Currency)
		}
	case TypeSplit:
		if r.Ratio == nil || r.Ratio.IsZero() || r.Ratio.IsNegative() {
			return ledgererr.Validationf("split requires a positive ratio")
		}
	default:
		return ledgererr.Validationf("unknown event type %q", r.Type)
	}
	return nil
}
