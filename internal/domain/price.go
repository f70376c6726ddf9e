package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PricePoint represents the closing price of a symbol on one calendar day
type PricePoint struct {
	Date  time.Time
	Price decimal.Decimal
}

// UTCStartOfDay maps any instant to 00:00 UTC of its UTC calendar day
func UTCStartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
