package refresher

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSymbolLister is a mock implementation of SymbolLister for testing
type MockSymbolLister struct {
	mock.Mock
}

func (m *MockSymbolLister) Symbols(ctx context.Context) []string {
	args := m.Called(ctx)
	return args.Get(0).([]string)
}

// MockPriceRefresher is a mock implementation of PriceRefresher for testing
type MockPriceRefresher struct {
	mock.Mock
}

func (m *MockPriceRefresher) Refresh(ctx context.Context, symbol string) bool {
	args := m.Called(ctx, symbol)
	return args.Bool(0)
}

func TestRunOnce_RefreshesEverySymbol(t *testing.T) {
	ctx := context.Background()
	symbols := new(MockSymbolLister)
	prices := new(MockPriceRefresher)

	symbols.On("Symbols", ctx).Return([]string{"AMZN", "NVDA", "TSLA"})
	prices.On("Refresh", mock.Anything, "AMZN").Return(true).Once()
	prices.On("Refresh", mock.Anything, "NVDA").Return(false).Once()
	prices.On("Refresh", mock.Anything, "TSLA").Return(true).Once()

	r := NewRefresher(symbols, prices, 2, 0)
	refreshed, failed := r.RunOnce(ctx)

	assert.Equal(t, 2, refreshed)
	assert.Equal(t, 1, failed)
	symbols.AssertExpectations(t)
	prices.AssertExpectations(t)
}

func TestRunOnce_NoSymbols(t *testing.T) {
	ctx := context.Background()
	symbols := new(MockSymbolLister)
	prices := new(MockPriceRefresher)
	symbols.On("Symbols", ctx).Return([]string{})

	refreshed, failed := NewRefresher(symbols, prices, 0, 0).RunOnce(ctx)

	assert.Zero(t, refreshed)
	assert.Zero(t, failed)
	prices.AssertNotCalled(t, "Refresh", mock.Anything, mock.Anything)
}

// blockingRefresher tracks how many refreshes overlap
type blockingRefresher struct {
	mu       sync.Mutex
	inFlight int
	peak     int
	calls    atomic.Int32
}

func (b *blockingRefresher) Refresh(ctx context.Context, symbol string) bool {
	b.calls.Add(1)
	b.mu.Lock()
	b.inFlight++
	if b.inFlight > b.peak {
		b.peak = b.inFlight
	}
	b.mu.Unlock()

	time.Sleep(10 * time.Millisecond)

	b.mu.Lock()
	b.inFlight--
	b.mu.Unlock()
	return true
}

func TestRunOnce_BoundsConcurrency(t *testing.T) {
	ctx := context.Background()
	symbols := new(MockSymbolLister)
	symbols.On("Symbols", ctx).Return([]string{"A", "B", "C", "D", "E", "F", "G", "H"})
	prices := &blockingRefresher{}

	refreshed, _ := NewRefresher(symbols, prices, 3, 0).RunOnce(ctx)

	assert.Equal(t, 8, refreshed)
	assert.Equal(t, int32(8), prices.calls.Load())
	assert.LessOrEqual(t, prices.peak, 3)
}

func TestRegister(t *testing.T) {
	r := NewRefresher(new(MockSymbolLister), new(MockPriceRefresher), 1, time.Second)

	require.NoError(t, r.Register(""))
	require.NoError(t, r.Register("0 * * * *"))
	assert.Len(t, r.Cron.Entries(), 2)

	assert.Error(t, r.Register("not a schedule"))
}

func TestTick_AppliesTimeout(t *testing.T) {
	symbols := new(MockSymbolLister)
	prices := new(MockPriceRefresher)

	symbols.On("Symbols", mock.Anything).Return([]string{"NVDA"})
	prices.On("Refresh", mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	}), "NVDA").Return(true).Once()

	NewRefresher(symbols, prices, 1, time.Second).tick()

	prices.AssertExpectations(t)
}
