package domain

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Direction represents the stance held on a symbol
type Direction string

const (
	DirectionLong  Direction = "LONG"
	DirectionShort Direction = "SHORT"
)

const (
	// moneyPlaces is the number of fractional digits kept for prices, costs and P&L
	moneyPlaces int32 = 2
	// ratioPlaces is the intermediate precision used before scaling a ratio to a percentage
	ratioPlaces int32 = 4
)

var hundred = decimal.NewFromInt(100)

// ParseDirection accepts BUY/LONG and SELL/SHORT, case-insensitive
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BUY", "LONG":
		return DirectionLong, nil
	case "SELL", "SHORT":
		return DirectionShort, nil
	default:
		return "", fmt.Errorf("invalid direction %q: must be BUY/LONG or SELL/SHORT", s)
	}
}

// Valid reports whether d is LONG or SHORT
func (d Direction) Valid() bool {
	return d == DirectionLong || d == DirectionShort
}

// Opposite returns the flipped direction
func (d Direction) Opposite() Direction {
	if d == DirectionLong {
		return DirectionShort
	}
	return DirectionLong
}

// Sign returns +1 for LONG and -1 for SHORT
func (d Direction) Sign() int64 {
	if d == DirectionLong {
		return 1
	}
	return -1
}

// SymbolPosition represents an open position on a single symbol.
// It is an immutable value: Merge always returns a new SymbolPosition and
// derived figures (total cost, signed quantity) are computed on read.
type SymbolPosition struct {
	direction       Direction
	symbol          string
	absShares       int64
	avgCostPerShare decimal.Decimal
}

// NewSymbolPosition opens a position from a first order.
// The execution price is rounded to two fractional digits.
func NewSymbolPosition(direction Direction, symbol string, shares int64, pricePerShare decimal.Decimal) SymbolPosition {
	return SymbolPosition{
		direction:       direction,
		symbol:          symbol,
		absShares:       shares,
		avgCostPerShare: RoundMoney(pricePerShare),
	}
}

func (p SymbolPosition) Direction() Direction             { return p.direction }
func (p SymbolPosition) Symbol() string                   { return p.symbol }
func (p SymbolPosition) AbsShares() int64                 { return p.absShares }
func (p SymbolPosition) AvgCostPerShare() decimal.Decimal { return p.avgCostPerShare }

// Shares returns the signed share count: positive when LONG, negative when SHORT
func (p SymbolPosition) Shares() int64 {
	return p.absShares * p.direction.Sign()
}

// TotalCost returns avgCost × absShares
func (p SymbolPosition) TotalCost() decimal.Decimal {
	return RoundMoney(p.avgCostPerShare.Mul(decimal.NewFromInt(p.absShares)))
}

// CanAbsorb reports whether a same-direction order of shares fits in the share count.
// Opposite-direction orders only shrink or flip the position and always fit.
func (p SymbolPosition) CanAbsorb(direction Direction, shares int64) bool {
	if direction != p.direction {
		return true
	}
	return shares <= math.MaxInt64-p.absShares
}

// Merge folds a new order into the position.
// Callers check CanAbsorb first; a same-direction overflow is not detected here.
// The boolean result is false when the order closes the position exactly.
//
// Logic:
//   - Same direction: shares add up, average cost becomes the share-weighted mean
//   - Opposite direction, partial close: shares shrink, average cost is unchanged
//   - Opposite direction, reversal: old position is closed and a new one opens
//     in the flipped direction at the order price
func (p SymbolPosition) Merge(direction Direction, shares int64, pricePerShare decimal.Decimal) (SymbolPosition, bool) {
	price := RoundMoney(pricePerShare)

	if direction == p.direction {
		newShares := p.absShares + shares
		totalPaid := p.TotalCost().Add(RoundMoney(price.Mul(decimal.NewFromInt(shares))))
		return SymbolPosition{
			direction:       p.direction,
			symbol:          p.symbol,
			absShares:       newShares,
			avgCostPerShare: totalPaid.DivRound(decimal.NewFromInt(newShares), moneyPlaces),
		}, true
	}

	net := p.absShares - shares
	switch {
	case net == 0:
		return SymbolPosition{}, false
	case net > 0:
		return SymbolPosition{
			direction:       p.direction,
			symbol:          p.symbol,
			absShares:       net,
			avgCostPerShare: p.avgCostPerShare,
		}, true
	default:
		return SymbolPosition{
			direction:       p.direction.Opposite(),
			symbol:          p.symbol,
			absShares:       -net,
			avgCostPerShare: price,
		}, true
	}
}

// ProfitLoss returns (marketPrice − avgCost) × absShares, sign-adjusted for SHORT
func (p SymbolPosition) ProfitLoss(marketPrice decimal.Decimal) decimal.Decimal {
	return RoundMoney(marketPrice).
		Sub(p.avgCostPerShare).
		Mul(decimal.NewFromInt(p.absShares)).
		Mul(decimal.NewFromInt(p.direction.Sign()))
}

// ProfitLossPercent returns ProfitLoss / TotalCost × 100
func (p SymbolPosition) ProfitLossPercent(marketPrice decimal.Decimal) decimal.Decimal {
	return Percent(p.ProfitLoss(marketPrice), p.TotalCost())
}

// MarketValue returns absShares × marketPrice, always non-negative
func (p SymbolPosition) MarketValue(marketPrice decimal.Decimal) decimal.Decimal {
	return RoundMoney(decimal.NewFromInt(p.absShares).Mul(marketPrice))
}

// RoundMoney rounds a value to two fractional digits, half away from zero
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(moneyPlaces)
}

// Percent computes amount / base × 100.
// The ratio is rounded to four digits before scaling, then the result to two.
// A zero base yields zero.
func Percent(amount, base decimal.Decimal) decimal.Decimal {
	if base.IsZero() {
		return decimal.Zero
	}
	return RoundMoney(amount.DivRound(base, ratioPlaces).Mul(hundred))
}
