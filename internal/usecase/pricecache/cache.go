package pricecache

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simaogato/portfolio-backend/internal/domain"
	"github.com/simaogato/portfolio-backend/internal/logger"
)

// DefaultTTL is the maximum age of cached data before a lookup refetches it
const DefaultTTL = 15 * time.Minute

// entry holds everything cached for one symbol.
// history is keyed by the Unix seconds of each UTC start of day and only grows.
type entry struct {
	history       map[int64]decimal.Decimal
	latest        decimal.Decimal
	lastRefreshed time.Time
}

// PriceCache implements domain.PriceProvider on top of a domain.PriceSource.
// It serves stale data rather than failing when the source is unavailable.
type PriceCache struct {
	Source domain.PriceSource
	TTL    time.Duration

	now     func() time.Time
	mu      sync.RWMutex
	entries map[string]*entry
}

// Option configures a PriceCache
type Option func(*PriceCache)

// WithClock replaces the wall clock used for staleness checks
func WithClock(now func() time.Time) Option {
	return func(c *PriceCache) {
		c.now = now
	}
}

// NewPriceCache creates a new PriceCache instance
func NewPriceCache(source domain.PriceSource, ttl time.Duration, opts ...Option) *PriceCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &PriceCache{
		Source:  source,
		TTL:     ttl,
		now:     time.Now,
		entries: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetPrice returns the close of symbol on date
func (c *PriceCache) GetPrice(ctx context.Context, symbol string, date time.Time) (decimal.Decimal, error) {
	c.refreshIfNeeded(ctx, symbol)
	day := domain.UTCStartOfDay(date)

	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[symbol]
	if !ok || len(e.history) == 0 {
		return decimal.Zero, fmt.Errorf("%w: %s", domain.ErrSymbolNotFound, symbol)
	}
	price, ok := e.history[day.Unix()]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s on %s", domain.ErrDateNotFound, symbol, day.Format(time.DateOnly))
	}
	return price, nil
}

// GetLatestPrice returns the close of the most recent day of the last fetched series
func (c *PriceCache) GetLatestPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	c.refreshIfNeeded(ctx, symbol)

	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[symbol]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", domain.ErrSymbolNotFound, symbol)
	}
	return e.latest, nil
}

// GetAvailableDates returns every cached day, most recent first
func (c *PriceCache) GetAvailableDates(ctx context.Context, symbol string) ([]time.Time, error) {
	c.refreshIfNeeded(ctx, symbol)

	c.mu.RLock()
	e, ok := c.entries[symbol]
	if !ok {
		c.mu.RUnlock()
		return nil, fmt.Errorf("%w: %s", domain.ErrSymbolNotFound, symbol)
	}
	keys := make([]int64, 0, len(e.history))
	for k := range e.history {
		keys = append(keys, k)
	}
	c.mu.RUnlock()

	sort.Slice(keys, func(i, j int) bool { return keys[i] > keys[j] })
	dates := make([]time.Time, len(keys))
	for i, k := range keys {
		dates[i] = time.Unix(k, 0).UTC()
	}
	return dates, nil
}

// Symbols lists every symbol with cached data, sorted
func (c *PriceCache) Symbols() []string {
	c.mu.RLock()
	symbols := make([]string, 0, len(c.entries))
	for s := range c.entries {
		symbols = append(symbols, s)
	}
	c.mu.RUnlock()

	sort.Strings(symbols)
	return symbols
}

// Refresh fetches symbol from the source regardless of age and merges the result.
// It reports whether new data was stored; failures leave the cache untouched.
func (c *PriceCache) Refresh(ctx context.Context, symbol string) bool {
	series, ok := c.Source.FetchSeries(ctx, symbol)
	if !ok || len(series) == 0 {
		logger.Debugf("pricecache: no data fetched for %s, keeping cached state", symbol)
		return false
	}

	fetched := make(map[int64]decimal.Decimal, len(series))
	var newest int64
	for i, p := range series {
		k := domain.UTCStartOfDay(p.Date).Unix()
		fetched[k] = p.Price
		if i == 0 || k > newest {
			newest = k
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e, exists := c.entries[symbol]
	if !exists {
		e = &entry{history: make(map[int64]decimal.Decimal, len(fetched))}
		c.entries[symbol] = e
	}
	for k, v := range fetched {
		e.history[k] = v
	}
	e.latest = fetched[newest]
	e.lastRefreshed = c.now().UTC()
	return true
}

// refreshIfNeeded refetches a symbol that was never fetched or whose data outlived the TTL.
// Two callers may both see a stale entry and both refresh; the later merge wins.
func (c *PriceCache) refreshIfNeeded(ctx context.Context, symbol string) {
	c.mu.RLock()
	e, ok := c.entries[symbol]
	stale := !ok || c.now().Sub(e.lastRefreshed) > c.TTL
	c.mu.RUnlock()

	if stale {
		c.Refresh(ctx, symbol)
	}
}
