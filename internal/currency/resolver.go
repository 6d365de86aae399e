package currency

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/fkhayef/splitpot/pkg/logger"
)

var one = decimal.NewFromInt(1)

// Resolver converts between currencies using a cached base-currency rate
// table. Conversion is deliberately fail-open: when the provider is down or a
// code is unknown, the rate degrades to 1.0 with a logged warning instead of
// failing the caller's request.
type Resolver struct {
	provider Provider
	base     string
	ttl      time.Duration
	now      func() time.Time

	group singleflight.Group

	mu        sync.Mutex
	table     map[string]decimal.Decimal
	fetchedAt time.Time
}

// NewResolver creates a resolver with the given provider and cache TTL.
// A nil provider puts the resolver in degraded mode where every cross-currency
// rate is 1.0.
func NewResolver(provider Provider, base string, ttl time.Duration) *Resolver {
	if provider == nil {
		logger.Log.Warn("no exchange-rate provider configured, all conversions degrade to rate 1.0")
	}
	return &Resolver{
		provider: provider,
		base:     base,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Resolve returns the rate converting one unit of from into to.
// Same-currency conversions never touch the provider.
func (r *Resolver) Resolve(ctx context.Context, from, to string) decimal.Decimal {
	if from == to {
		return one
	}

	table := r.rateTable(ctx)
	if table == nil {
		return one
	}

	fromRate, okFrom := r.lookup(table, from)
	toRate, okTo := r.lookup(table, to)
	if !okFrom || !okTo {
		logger.Log.WithFields(map[string]interface{}{
			"from": from,
			"to":   to,
		}).Warn("currency missing from rate table, falling back to rate 1.0")
		return one
	}

	// Cross rate through the base currency: rate(from→to) = base→to / base→from
	return toRate.Div(fromRate)
}

// lookup resolves a single code against the table; the base currency itself
// may be absent from provider responses.
func (r *Resolver) lookup(table map[string]decimal.Decimal, code string) (decimal.Decimal, bool) {
	if code == r.base {
		return one, true
	}
	rate, ok := table[code]
	if !ok || rate.IsZero() {
		return decimal.Decimal{}, false
	}
	return rate, true
}

// rateTable returns a usable rate table, refreshing the cache when stale.
// Returns nil when no table can be obtained at all.
func (r *Resolver) rateTable(ctx context.Context) map[string]decimal.Decimal {
	r.mu.Lock()
	if r.table != nil && r.now().Sub(r.fetchedAt) < r.ttl {
		table := r.table
		r.mu.Unlock()
		return table
	}
	r.mu.Unlock()

	if r.provider == nil {
		return nil
	}

	// Collapse concurrent refreshes into a single provider call.
	v, err, _ := r.group.Do("rates", func() (interface{}, error) {
		table, err := r.provider.FetchRates(ctx, r.base)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.table = table
		r.fetchedAt = r.now()
		r.mu.Unlock()
		return table, nil
	})
	if err == nil {
		return v.(map[string]decimal.Decimal)
	}

	// Fetch failed: serve the stale table if one exists.
	r.mu.Lock()
	stale := r.table
	r.mu.Unlock()

	if stale != nil {
		logger.Log.WithError(err).Warn("exchange-rate fetch failed, serving stale rate table")
		return stale
	}

	logger.Log.WithError(err).Warn("exchange-rate fetch failed with no cached table, falling back to rate 1.0")
	return nil
}
