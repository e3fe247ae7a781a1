package fx

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/canledger/acb/date"
	"github.com/canledger/acb/ledgererr"
)

type rateResponse struct {
	Rate string `json:"rate"`
}

type cacheKey struct {
	pair string
	day  date.Date
}

// RestyProvider is a Provider backed by an HTTP rate service, the way
// penny-vault-pv-data's openfigi.go wraps an external data API: a resty
// client, a rate.Limiter to stay under the upstream's quota, and a cache so
// a bulk import doesn't refetch the same day's rate per event.
type RestyProvider struct {
	client  *resty.Client
	limiter *rate.Limiter

	mu    sync.Mutex
	cache map[cacheKey]decimal.Decimal
}

// NewRestyProvider builds a provider against baseURL, limited to qps queries
// per second with a burst of burst.
func NewRestyProvider(baseURL string, qps float64, burst int) *RestyProvider {
	return &RestyProvider{
		client:  resty.New().SetBaseURL(baseURL).SetTimeout(defaultTimeout),
		limiter: rate.NewLimiter(rate.Limit(qps), burst),
		cache:   make(map[cacheKey]decimal.Decimal),
	}
}

// Rate implements Provider, walking backward from `on` across weekends and
// holidays (days the upstream has no published rate for) until it finds one,
// per spec §6.2's "nearest prior business-day rate" fallback.
func (p *RestyProvider) Rate(ctx context.Context, pair string, on date.Date) (decimal.Decimal, error) {
	d := on
	var lastErr error
	for i := 0; i < maxLookback; i++ {
		if d.IsWeekend() {
			d = d.AddDays(-1)
			continue
		}
		if v, ok := p.cached(pair, d); ok {
			return v, nil
		}
		v, err := p.fetch(ctx, pair, d)
		if err == nil {
			p.store(pair, d, v)
			return v, nil
		}
		lastErr = err
		d = d.AddDays(-1)
	}
	return decimal.Decimal{}, ledgererr.Wrap(ledgererr.DependencyFailure,
		fmt.Sprintf("no %s rate found within %d days before %s", pair, maxLookback, on), lastErr)
}

func (p *RestyProvider) cached(pair string, d date.Date) (decimal.Decimal, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.cache[cacheKey{pair, d}]
	return v, ok
}

func (p *RestyProvider) store(pair string, d date.Date, v decimal.Decimal) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cache[cacheKey{pair, d}] = v
}

func (p *RestyProvider) fetch(ctx context.Context, pair string, d date.Date) (decimal.Decimal, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return decimal.Decimal{}, err
	}

	var out rateResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParam("pair", pair).
		SetQueryParam("date", d.String()).
		SetResult(&out).
		Get("/rates")
	if err != nil {
		return decimal.Decimal{}, err
	}
	if resp.StatusCode() == 404 {
		return decimal.Decimal{}, fmt.Errorf("no rate published for %s on %s", pair, d)
	}
	if resp.StatusCode() >= 400 {
		return decimal.Decimal{}, fmt.Errorf("fx provider returned %d: %s", resp.StatusCode(), resp.Body())
	}
	return decimal.NewFromString(out.Rate)
}

// defaultTimeout bounds every request the resty client issues, so a wedged
// upstream can't hang a bulk import indefinitely.
const defaultTimeout = 5 * time.Second
