package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/simaogato/portfolio-backend/internal/domain"
)

// positionRepository implements domain.PositionRepository.
// Positions are immutable values; Apply installs each merge result as a single replace.
type positionRepository struct {
	mu        sync.RWMutex
	positions map[string]domain.SymbolPosition
}

// NewPositionRepository creates a new in-memory position ledger
func NewPositionRepository() domain.PositionRepository {
	return &positionRepository{positions: make(map[string]domain.SymbolPosition)}
}

// Get retrieves the open position for a symbol
func (r *positionRepository) Get(ctx context.Context, symbol string) (domain.SymbolPosition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pos, ok := r.positions[symbol]
	if !ok {
		return domain.SymbolPosition{}, fmt.Errorf("%w: %s", domain.ErrNoSuchHolding, symbol)
	}
	return pos, nil
}

// Apply merges an order into the current position, opening one if none exists
func (r *positionRepository) Apply(ctx context.Context, symbol string, direction domain.Direction, shares int64, price decimal.Decimal) (domain.SymbolPosition, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.positions[symbol]
	if !exists {
		pos := domain.NewSymbolPosition(direction, symbol, shares, price)
		r.positions[symbol] = pos
		return pos, true, nil
	}

	if !current.CanAbsorb(direction, shares) {
		return current, true, fmt.Errorf("%w: %s holds %d, order adds %d", domain.ErrPositionTooLarge, symbol, current.AbsShares(), shares)
	}

	merged, open := current.Merge(direction, shares, price)
	if !open {
		delete(r.positions, symbol)
		return domain.SymbolPosition{}, false, nil
	}
	r.positions[symbol] = merged
	return merged, true, nil
}

// Symbols lists symbols with an open position
func (r *positionRepository) Symbols(ctx context.Context) []string {
	r.mu.RLock()
	symbols := make([]string, 0, len(r.positions))
	for s := range r.positions {
		symbols = append(symbols, s)
	}
	r.mu.RUnlock()

	sort.Strings(symbols)
	return symbols
}
