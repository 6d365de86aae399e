package currency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// fakeProvider counts calls and can be flipped into failure mode
type fakeProvider struct {
	rates map[string]decimal.Decimal
	err   error
	calls int
}

func (p *fakeProvider) FetchRates(_ context.Context, _ string) (map[string]decimal.Decimal, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.rates, nil
}

func usdTable() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		"EUR": decimal.NewFromFloat(0.90),
		"GBP": decimal.NewFromFloat(0.80),
		"JPY": decimal.NewFromFloat(150),
	}
}

func TestResolveSameCurrencySkipsProvider(t *testing.T) {
	p := &fakeProvider{rates: usdTable()}
	r := NewResolver(p, "USD", time.Hour)

	rate := r.Resolve(context.Background(), "EUR", "EUR")
	if !rate.Equal(decimal.NewFromInt(1)) {
		t.Errorf("rate = %s, want 1", rate)
	}
	if p.calls != 0 {
		t.Errorf("provider called %d times, want 0", p.calls)
	}
}

func TestResolveCrossRate(t *testing.T) {
	p := &fakeProvider{rates: usdTable()}
	r := NewResolver(p, "USD", time.Hour)
	ctx := context.Background()

	tests := []struct {
		name string
		from string
		to   string
		want decimal.Decimal
	}{
		{"base to quote", "USD", "EUR", decimal.NewFromFloat(0.90)},
		{"quote to base", "EUR", "USD", decimal.NewFromInt(1).Div(decimal.NewFromFloat(0.90))},
		{"quote to quote", "EUR", "GBP", decimal.NewFromFloat(0.80).Div(decimal.NewFromFloat(0.90))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rate := r.Resolve(ctx, tt.from, tt.to)
			if !rate.Equal(tt.want) {
				t.Errorf("rate(%s→%s) = %s, want %s", tt.from, tt.to, rate, tt.want)
			}
		})
	}

	if p.calls != 1 {
		t.Errorf("provider called %d times, want 1 (cache hit after first)", p.calls)
	}
}

func TestResolveCacheExpiry(t *testing.T) {
	p := &fakeProvider{rates: usdTable()}
	r := NewResolver(p, "USD", time.Hour)

	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return clock }

	ctx := context.Background()
	r.Resolve(ctx, "USD", "EUR")
	if p.calls != 1 {
		t.Fatalf("provider called %d times, want 1", p.calls)
	}

	// Within TTL the cached table is reused
	clock = clock.Add(30 * time.Minute)
	r.Resolve(ctx, "USD", "EUR")
	if p.calls != 1 {
		t.Errorf("provider called %d times, want 1", p.calls)
	}

	// Past TTL the table is refetched
	clock = clock.Add(31 * time.Minute)
	r.Resolve(ctx, "USD", "EUR")
	if p.calls != 2 {
		t.Errorf("provider called %d times, want 2", p.calls)
	}
}

func TestResolveServesStaleOnFailure(t *testing.T) {
	p := &fakeProvider{rates: usdTable()}
	r := NewResolver(p, "USD", time.Hour)

	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return clock }

	ctx := context.Background()
	first := r.Resolve(ctx, "USD", "EUR")

	// Provider goes down after the TTL expires
	p.err = errors.New("provider unavailable")
	clock = clock.Add(2 * time.Hour)

	rate := r.Resolve(ctx, "USD", "EUR")
	if !rate.Equal(first) {
		t.Errorf("rate = %s, want stale %s", rate, first)
	}
	if p.calls != 2 {
		t.Errorf("provider called %d times, want 2", p.calls)
	}
}

func TestResolveFallsBackWithoutAnyTable(t *testing.T) {
	p := &fakeProvider{err: errors.New("provider unavailable")}
	r := NewResolver(p, "USD", time.Hour)

	rate := r.Resolve(context.Background(), "USD", "EUR")
	if !rate.Equal(decimal.NewFromInt(1)) {
		t.Errorf("rate = %s, want 1", rate)
	}
}

func TestResolveNilProvider(t *testing.T) {
	r := NewResolver(nil, "USD", time.Hour)

	rate := r.Resolve(context.Background(), "EUR", "GBP")
	if !rate.Equal(decimal.NewFromInt(1)) {
		t.Errorf("rate = %s, want 1", rate)
	}
}

func TestResolveUnknownCode(t *testing.T) {
	p := &fakeProvider{rates: usdTable()}
	r := NewResolver(p, "USD", time.Hour)

	rate := r.Resolve(context.Background(), "XXX", "EUR")
	if !rate.Equal(decimal.NewFromInt(1)) {
		t.Errorf("rate = %s, want 1", rate)
	}
}

func TestIsValidCode(t *testing.T) {
	for _, code := range []string{"USD", "EUR", "JPY", "SAR"} {
		if !IsValidCode(code) {
			t.Errorf("IsValidCode(%s) = false, want true", code)
		}
	}
	for _, code := range []string{"", "usd", "XGD", "DOLLARS"} {
		if IsValidCode(code) {
			t.Errorf("IsValidCode(%s) = true, want false", code)
		}
	}
}
