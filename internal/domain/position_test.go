package domain

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "expected %s, got %s", want, got)
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		input   string
		want    Direction
		wantErr bool
	}{
		{input: "BUY", want: DirectionLong},
		{input: "long", want: DirectionLong},
		{input: " Sell ", want: DirectionShort},
		{input: "SHORT", want: DirectionShort},
		{input: "HOLD", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDirection(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewSymbolPosition(t *testing.T) {
	tests := []struct {
		name       string
		direction  Direction
		wantShares int64
	}{
		{name: "Long position has positive signed shares", direction: DirectionLong, wantShares: 100},
		{name: "Short position has negative signed shares", direction: DirectionShort, wantShares: -100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos := NewSymbolPosition(tt.direction, "NVDA", 100, dec("470.61"))

			assert.Equal(t, tt.direction, pos.Direction())
			assert.Equal(t, "NVDA", pos.Symbol())
			assert.Equal(t, int64(100), pos.AbsShares())
			assert.Equal(t, tt.wantShares, pos.Shares())
			assertDecimal(t, "470.61", pos.AvgCostPerShare())
			assertDecimal(t, "47061", pos.TotalCost())
		})
	}
}

func TestNewSymbolPosition_RoundsPrice(t *testing.T) {
	pos := NewSymbolPosition(DirectionLong, "NVDA", 1, dec("462.4150"))
	assertDecimal(t, "462.42", pos.AvgCostPerShare())
}

func TestSymbolPosition_Merge(t *testing.T) {
	tests := []struct {
		name          string
		start         SymbolPosition
		direction     Direction
		shares        int64
		price         string
		wantOpen      bool
		wantDirection Direction
		wantShares    int64
		wantAvg       string
		wantCost      string
	}{
		{
			name:          "Two buy orders average the cost",
			start:         NewSymbolPosition(DirectionLong, "NVDA", 2, dec("328.98")),
			direction:     DirectionLong,
			shares:        2,
			price:         "333.18",
			wantOpen:      true,
			wantDirection: DirectionLong,
			wantShares:    4,
			wantAvg:       "331.08",
			wantCost:      "1324.32",
		},
		{
			name:          "Two sell orders average the cost",
			start:         NewSymbolPosition(DirectionShort, "NVDA", 2, dec("328.98")),
			direction:     DirectionShort,
			shares:        2,
			price:         "333.18",
			wantOpen:      true,
			wantDirection: DirectionShort,
			wantShares:    -4,
			wantAvg:       "331.08",
			wantCost:      "1324.32",
		},
		{
			name:          "Long flips to short at the order price",
			start:         NewSymbolPosition(DirectionLong, "NVDA", 2, dec("328.98")),
			direction:     DirectionShort,
			shares:        4,
			price:         "333.18",
			wantOpen:      true,
			wantDirection: DirectionShort,
			wantShares:    -2,
			wantAvg:       "333.18",
			wantCost:      "666.36",
		},
		{
			name:          "Short flips to long at the order price",
			start:         NewSymbolPosition(DirectionShort, "NVDA", 2, dec("328.98")),
			direction:     DirectionLong,
			shares:        4,
			price:         "333.18",
			wantOpen:      true,
			wantDirection: DirectionLong,
			wantShares:    2,
			wantAvg:       "333.18",
			wantCost:      "666.36",
		},
		{
			name:          "Partial close keeps the average cost",
			start:         NewSymbolPosition(DirectionLong, "NVDA", 4, dec("500.00")),
			direction:     DirectionShort,
			shares:        2,
			price:         "796.45",
			wantOpen:      true,
			wantDirection: DirectionLong,
			wantShares:    2,
			wantAvg:       "500.00",
			wantCost:      "1000.00",
		},
		{
			name:      "Exact close removes the position",
			start:     NewSymbolPosition(DirectionShort, "NVDA", 3, dec("120.00")),
			direction: DirectionLong,
			shares:    3,
			price:     "90.00",
			wantOpen:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged, open := tt.start.Merge(tt.direction, tt.shares, dec(tt.price))

			require.Equal(t, tt.wantOpen, open)
			if !open {
				return
			}
			assert.Equal(t, tt.start.Symbol(), merged.Symbol())
			assert.Equal(t, tt.wantDirection, merged.Direction())
			assert.Equal(t, tt.wantShares, merged.Shares())
			assertDecimal(t, tt.wantAvg, merged.AvgCostPerShare())
			assertDecimal(t, tt.wantCost, merged.TotalCost())
		})
	}
}

func TestSymbolPosition_Merge_DoesNotMutateReceiver(t *testing.T) {
	pos := NewSymbolPosition(DirectionLong, "NVDA", 2, dec("700.00"))

	_, _ = pos.Merge(DirectionLong, 2, dec("300.00"))

	assert.Equal(t, int64(2), pos.AbsShares())
	assertDecimal(t, "700.00", pos.AvgCostPerShare())
}

func TestSymbolPosition_CanAbsorb(t *testing.T) {
	full := NewSymbolPosition(DirectionLong, "X", math.MaxInt64-1, dec("1"))

	tests := []struct {
		name      string
		direction Direction
		shares    int64
		want      bool
	}{
		{name: "Fits exactly", direction: DirectionLong, shares: 1, want: true},
		{name: "Same direction overflow", direction: DirectionLong, shares: 2, want: false},
		{name: "Largest order overflows", direction: DirectionLong, shares: math.MaxInt64, want: false},
		{name: "Opposite direction always fits", direction: DirectionShort, shares: math.MaxInt64, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, full.CanAbsorb(tt.direction, tt.shares))
		})
	}
}

func TestDirection_Valid(t *testing.T) {
	assert.True(t, DirectionLong.Valid())
	assert.True(t, DirectionShort.Valid())
	assert.False(t, Direction("").Valid())
	assert.False(t, Direction("BUY").Valid())
}

func TestSymbolPosition_MergeSequence(t *testing.T) {
	for _, start := range []Direction{DirectionLong, DirectionShort} {
		t.Run(string(start), func(t *testing.T) {
			sign := start.Sign()
			pos := NewSymbolPosition(start, "NVDA", 2, dec("700.00"))

			pos, open := pos.Merge(start, 2, dec("300.00"))
			require.True(t, open)
			assert.Equal(t, 4*sign, pos.Shares())
			assertDecimal(t, "500.00", pos.AvgCostPerShare())

			pos, open = pos.Merge(start.Opposite(), 2, dec("796.45"))
			require.True(t, open)
			assert.Equal(t, start, pos.Direction())
			assert.Equal(t, 2*sign, pos.Shares())
			assertDecimal(t, "500.00", pos.AvgCostPerShare())

			pos, open = pos.Merge(start, 2, dec("700.00"))
			require.True(t, open)
			assert.Equal(t, 4*sign, pos.Shares())
			assertDecimal(t, "600.00", pos.AvgCostPerShare())
		})
	}
}

func TestSymbolPosition_WeightedAverageIsOrderIndependent(t *testing.T) {
	type order struct {
		shares int64
		price  string
	}
	orders := []order{{3, "100.00"}, {1, "140.00"}, {4, "110.00"}}

	forward := NewSymbolPosition(DirectionLong, "AAPL", orders[0].shares, dec(orders[0].price))
	for _, o := range orders[1:] {
		forward, _ = forward.Merge(DirectionLong, o.shares, dec(o.price))
	}

	last := len(orders) - 1
	backward := NewSymbolPosition(DirectionLong, "AAPL", orders[last].shares, dec(orders[last].price))
	for i := last - 1; i >= 0; i-- {
		backward, _ = backward.Merge(DirectionLong, orders[i].shares, dec(orders[i].price))
	}

	// (300 + 140 + 440) / 8
	assertDecimal(t, "110.00", forward.AvgCostPerShare())
	assertDecimal(t, "110.00", backward.AvgCostPerShare())
	assert.Equal(t, int64(8), forward.Shares())
}

func TestSymbolPosition_ProfitLoss(t *testing.T) {
	tests := []struct {
		name        string
		direction   Direction
		avgCost     string
		marketPrice string
		wantAmount  string
		wantPercent string
	}{
		{name: "Long position profit", direction: DirectionLong, avgCost: "328.98", marketPrice: "330.98", wantAmount: "20.00", wantPercent: "0.61"},
		{name: "Short position profit", direction: DirectionShort, avgCost: "330.98", marketPrice: "328.98", wantAmount: "20.00", wantPercent: "0.60"},
		{name: "Long position loss", direction: DirectionLong, avgCost: "330.98", marketPrice: "328.98", wantAmount: "-20.00", wantPercent: "-0.60"},
		{name: "Short position loss", direction: DirectionShort, avgCost: "328.98", marketPrice: "330.98", wantAmount: "-20.00", wantPercent: "-0.61"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos := NewSymbolPosition(tt.direction, "NVDA", 10, dec(tt.avgCost))

			assertDecimal(t, tt.wantAmount, pos.ProfitLoss(dec(tt.marketPrice)))
			assertDecimal(t, tt.wantPercent, pos.ProfitLossPercent(dec(tt.marketPrice)))
		})
	}
}

func TestSymbolPosition_MarketValue(t *testing.T) {
	long := NewSymbolPosition(DirectionLong, "NVDA", 5, dec("462.41"))
	short := NewSymbolPosition(DirectionShort, "NVDA", 5, dec("462.41"))

	// market value is a magnitude for either direction
	assertDecimal(t, "2278.60", long.MarketValue(dec("455.72")))
	assertDecimal(t, "2278.60", short.MarketValue(dec("455.72")))
	assertDecimal(t, "2312.05", long.TotalCost())
	assertDecimal(t, "-33.45", long.ProfitLoss(dec("455.72")))
	assertDecimal(t, "-1.45", long.ProfitLossPercent(dec("455.72")))
}

func TestPercent(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		base   string
		want   string
	}{
		{name: "Rounds the ratio to four digits first", amount: "264.20", base: "3948.05", want: "6.69"},
		{name: "Small negative ratio", amount: "-0.90", base: "692.05", want: "-0.13"},
		{name: "Zero base yields zero", amount: "15.00", base: "0", want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertDecimal(t, tt.want, Percent(dec(tt.amount), dec(tt.base)))
		})
	}
}
