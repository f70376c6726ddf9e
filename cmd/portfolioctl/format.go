package main

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// formatMoney renders a USD amount, e.g. -$1,234.50
func formatMoney(d decimal.Decimal) string {
	cur := money.GetCurrency(money.USD)
	minor := d.Shift(int32(cur.Fraction)).Round(0)
	return money.New(minor.IntPart(), money.USD).Display()
}

func formatPercent(d decimal.Decimal) string {
	return d.StringFixed(2) + "%"
}
