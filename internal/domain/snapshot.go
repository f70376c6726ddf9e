package domain

import "github.com/shopspring/decimal"

// StockPosition is the valuation report of a single open position
type StockPosition struct {
	Symbol            string          `json:"symbol"`
	TradeType         Direction       `json:"tradeType"`
	Quantity          int64           `json:"quantity"`
	TotalPurchaseCost decimal.Decimal `json:"totalPurchaseCost"`
	TotalMarketValue  decimal.Decimal `json:"totalMarketValue"`
	AvgCostPerShare   decimal.Decimal `json:"avgCostPerShare"`
	ProfitLossAmount  decimal.Decimal `json:"profitLossAmount"`
	ProfitLossPercent decimal.Decimal `json:"profitLossPercent"`
	Buckets           []string        `json:"buckets"`
}

// SymbolProfitLoss is one line of a bucket breakdown
type SymbolProfitLoss struct {
	Symbol            string          `json:"symbol"`
	ProfitLossAmount  decimal.Decimal `json:"profitLossAmount"`
	ProfitLossPercent decimal.Decimal `json:"profitLossPercent"`
}

// BucketPosition is the aggregate valuation of every position in a bucket.
// TotalNumberOfSharesShort is the sum of negative signed counts and is never positive.
type BucketPosition struct {
	Name                     string             `json:"name"`
	TotalNumberOfSharesLong  int64              `json:"totalNumberOfSharesLong"`
	TotalNumberOfSharesShort int64              `json:"totalNumberOfSharesShort"`
	TotalPurchaseCost        decimal.Decimal    `json:"totalPurchaseCost"`
	TotalMarketValue         decimal.Decimal    `json:"totalMarketValue"`
	NumberOfPositions        int                `json:"numberOfPositions"`
	ProfitLossAmount         decimal.Decimal    `json:"profitLossAmount"`
	ProfitLossPercent        decimal.Decimal    `json:"profitLossPercent"`
	BucketBreakdown          []SymbolProfitLoss `json:"bucketBreakdown"`
}
