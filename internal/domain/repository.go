package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PriceSource defines the external market-data collaborator.
// FetchSeries reports ok=false on any transport, decoding or status failure;
// callers never see the underlying error.
type PriceSource interface {
	FetchSeries(ctx context.Context, symbol string) (series []PricePoint, ok bool)
}

// PriceProvider defines cached price lookups
type PriceProvider interface {
	// GetPrice returns the close for date, which must be a UTC start of day
	GetPrice(ctx context.Context, symbol string, date time.Time) (decimal.Decimal, error)

	// GetLatestPrice returns the close of the most recent date in the last fetched series
	GetLatestPrice(ctx context.Context, symbol string) (decimal.Decimal, error)

	// GetAvailableDates returns every cached date, most recent first
	GetAvailableDates(ctx context.Context, symbol string) ([]time.Time, error)
}

// PositionRepository defines the interface for the position ledger
type PositionRepository interface {
	// Get retrieves the open position for a symbol
	// Returns ErrNoSuchHolding if there is none
	Get(ctx context.Context, symbol string) (SymbolPosition, error)

	// Apply folds an order into the symbol's position as one atomic replace.
	// open is false when the order closed the position, which is then removed.
	// Returns ErrPositionTooLarge, leaving the position untouched, if the share count would overflow
	Apply(ctx context.Context, symbol string, direction Direction, shares int64, price decimal.Decimal) (pos SymbolPosition, open bool, err error)

	// Symbols lists every symbol with an open position, sorted
	Symbols(ctx context.Context) []string
}

// BucketRepository defines the interface for the bucket index.
// Implementations keep bucket->symbols and symbol->buckets as mirror images.
type BucketRepository interface {
	// Create registers an empty bucket
	// Returns ErrBucketAlreadyExists if the name is taken
	Create(ctx context.Context, name string) error

	// Delete removes a bucket and strips it from every symbol's memberships
	// Returns ErrBucketNotFound if absent
	Delete(ctx context.Context, name string) error

	// List returns every bucket with its sorted symbol list
	List(ctx context.Context) map[string][]string

	// AddMembership puts symbol into each bucket, creating missing buckets on the way
	AddMembership(ctx context.Context, symbol string, buckets []string)

	// RemoveMembership unpairs bucket and symbol; a no-op if either side is absent
	RemoveMembership(ctx context.Context, bucket, symbol string)

	// RemoveAllMemberships removes symbol from every bucket referencing it
	RemoveAllMemberships(ctx context.Context, symbol string)

	// SymbolsIn returns the sorted members of a bucket
	// Returns ErrBucketNotFound if the bucket was never created
	SymbolsIn(ctx context.Context, bucket string) ([]string, error)

	// BucketsFor returns the sorted buckets holding symbol, empty if none
	BucketsFor(ctx context.Context, symbol string) []string
}
