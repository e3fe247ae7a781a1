// Package fx implements the FX-rate collaborator contract from spec §6.2:
// getRate(currencyPair, date) with weekend/holiday fallback to the nearest
// prior business-day rate. Grounded on penny-vault-pv-data's figi/openfigi.go
// for the resty-client-plus-rate-limiter shape.
package fx

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/canledger/acb/date"
)

// Provider resolves a native-to-CAD conversion rate for a currency pair on a
// given date.
type Provider interface {
	Rate(ctx context.Context, pair string, on date.Date) (decimal.Decimal, error)
}

// maxLookback bounds how many calendar days Rate will walk backward looking
// for a business day with a published rate before giving up (covers the
// longest plausible holiday run).
const maxLookback = 10
