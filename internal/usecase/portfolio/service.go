package portfolio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simaogato/portfolio-backend/internal/domain"
	"github.com/simaogato/portfolio-backend/internal/logger"
	"golang.org/x/sync/errgroup"
)

// priceFetchLimit bounds concurrent latest-price lookups during a bucket valuation
const priceFetchLimit = 8

// OrderRequest represents a buy or sell order for a symbol
type OrderRequest struct {
	Direction domain.Direction
	Symbol    string
	TradeDate time.Time
	Quantity  int64
	Buckets   []string
}

// BucketsUpdateRequest represents a change of bucket memberships for a held symbol
type BucketsUpdateRequest struct {
	Symbol  string
	Buckets []string
}

// PortfolioService combines the position ledger, the bucket index and market prices.
// Updates to the ledger and the index are not atomic with respect to each other.
type PortfolioService struct {
	PositionRepo domain.PositionRepository
	BucketRepo   domain.BucketRepository
	Prices       domain.PriceProvider
}

// NewPortfolioService creates a new PortfolioService instance
func NewPortfolioService(positionRepo domain.PositionRepository, bucketRepo domain.BucketRepository, prices domain.PriceProvider) *PortfolioService {
	return &PortfolioService{
		PositionRepo: positionRepo,
		BucketRepo:   bucketRepo,
		Prices:       prices,
	}
}

// CreateBucket registers an empty bucket
func (s *PortfolioService) CreateBucket(ctx context.Context, name string) error {
	return s.BucketRepo.Create(ctx, name)
}

// DeleteBucket removes a bucket and all of its memberships
func (s *PortfolioService) DeleteBucket(ctx context.Context, name string) error {
	return s.BucketRepo.Delete(ctx, name)
}

// ListBuckets returns every bucket with its sorted members
func (s *PortfolioService) ListBuckets(ctx context.Context) map[string][]string {
	return s.BucketRepo.List(ctx)
}

// GetAvailableDates returns the days with market data for symbol, most recent first
func (s *PortfolioService) GetAvailableDates(ctx context.Context, symbol string) ([]time.Time, error) {
	return s.Prices.GetAvailableDates(ctx, symbol)
}

// AddOrder folds an order into the ledger at the close of its trade date.
// Logic:
// 1. Direction must be LONG or SHORT and quantity must be positive
// 2. Price is the close on the UTC start of the trade date
// 3. Requested buckets are always applied, then every membership is dropped if the order closed the position
func (s *PortfolioService) AddOrder(ctx context.Context, req OrderRequest) error {
	if !req.Direction.Valid() {
		return fmt.Errorf("%w: got %q", domain.ErrInvalidDirection, req.Direction)
	}
	if req.Quantity <= 0 {
		return fmt.Errorf("%w: got %d", domain.ErrInvalidQuantity, req.Quantity)
	}

	price, err := s.Prices.GetPrice(ctx, req.Symbol, domain.UTCStartOfDay(req.TradeDate))
	if err != nil {
		return err
	}

	pos, open, err := s.PositionRepo.Apply(ctx, req.Symbol, req.Direction, req.Quantity, price)
	if err != nil {
		return err
	}

	s.BucketRepo.AddMembership(ctx, req.Symbol, domain.NormalizeBucketSet(req.Buckets))

	if !open {
		s.BucketRepo.RemoveAllMemberships(ctx, req.Symbol)
		logger.Infof("portfolio: position in %s closed", req.Symbol)
		return nil
	}

	logger.Debugf("portfolio: %s %d %s @ %s -> %s %d @ %s",
		req.Direction, req.Quantity, req.Symbol, price, pos.Direction(), pos.AbsShares(), pos.AvgCostPerShare())
	return nil
}

// AddToBuckets puts a held symbol into more buckets
func (s *PortfolioService) AddToBuckets(ctx context.Context, req BucketsUpdateRequest) error {
	buckets, err := s.checkBucketsUpdate(ctx, req)
	if err != nil {
		return err
	}
	s.BucketRepo.AddMembership(ctx, req.Symbol, buckets)
	return nil
}

// RemoveFromBuckets takes a held symbol out of buckets; unknown pairings are ignored
func (s *PortfolioService) RemoveFromBuckets(ctx context.Context, req BucketsUpdateRequest) error {
	buckets, err := s.checkBucketsUpdate(ctx, req)
	if err != nil {
		return err
	}
	for _, b := range buckets {
		s.BucketRepo.RemoveMembership(ctx, b, req.Symbol)
	}
	return nil
}

func (s *PortfolioService) checkBucketsUpdate(ctx context.Context, req BucketsUpdateRequest) ([]string, error) {
	if _, err := s.PositionRepo.Get(ctx, req.Symbol); err != nil {
		return nil, err
	}
	buckets := domain.NormalizeBucketSet(req.Buckets)
	if len(buckets) == 0 {
		return nil, domain.ErrEmptyBucketSet
	}
	return buckets, nil
}

// GetPosition values the open position in symbol at the latest market price
func (s *PortfolioService) GetPosition(ctx context.Context, symbol string) (*domain.StockPosition, error) {
	pos, err := s.PositionRepo.Get(ctx, symbol)
	if err != nil {
		return nil, err
	}

	latest, err := s.Prices.GetLatestPrice(ctx, symbol)
	if err != nil {
		return nil, err
	}

	return &domain.StockPosition{
		Symbol:            symbol,
		TradeType:         pos.Direction(),
		Quantity:          pos.Shares(),
		TotalPurchaseCost: pos.TotalCost(),
		TotalMarketValue:  pos.MarketValue(latest),
		AvgCostPerShare:   pos.AvgCostPerShare(),
		ProfitLossAmount:  pos.ProfitLoss(latest),
		ProfitLossPercent: pos.ProfitLossPercent(latest),
		Buckets:           s.BucketRepo.BucketsFor(ctx, symbol),
	}, nil
}

// GetBucketPosition aggregates the valuation of every position in a bucket.
// A bucket without members yields an all-zero report.
func (s *PortfolioService) GetBucketPosition(ctx context.Context, bucket string) (*domain.BucketPosition, error) {
	symbols, err := s.BucketRepo.SymbolsIn(ctx, bucket)
	if err != nil {
		return nil, err
	}

	positions := make([]domain.SymbolPosition, 0, len(symbols))
	for _, symbol := range symbols {
		pos, err := s.PositionRepo.Get(ctx, symbol)
		if errors.Is(err, domain.ErrNoSuchHolding) {
			// closed concurrently, memberships are being purged
			continue
		}
		if err != nil {
			return nil, err
		}
		positions = append(positions, pos)
	}

	report := &domain.BucketPosition{
		Name:              bucket,
		TotalPurchaseCost: decimal.Zero,
		TotalMarketValue:  decimal.Zero,
		ProfitLossAmount:  decimal.Zero,
		ProfitLossPercent: decimal.Zero,
		BucketBreakdown:   []domain.SymbolProfitLoss{},
	}
	if len(positions) == 0 {
		return report, nil
	}

	prices, err := s.latestPrices(ctx, positions)
	if err != nil {
		return nil, err
	}

	for i, pos := range positions {
		latest := prices[i]
		if shares := pos.Shares(); shares > 0 {
			report.TotalNumberOfSharesLong += shares
		} else {
			report.TotalNumberOfSharesShort += shares
		}
		report.TotalPurchaseCost = report.TotalPurchaseCost.Add(pos.TotalCost())
		report.TotalMarketValue = report.TotalMarketValue.Add(pos.MarketValue(latest))
		report.ProfitLossAmount = report.ProfitLossAmount.Add(pos.ProfitLoss(latest))

		// symbols come sorted from the index, so the breakdown is too
		report.BucketBreakdown = append(report.BucketBreakdown, domain.SymbolProfitLoss{
			Symbol:            pos.Symbol(),
			ProfitLossAmount:  pos.ProfitLoss(latest),
			ProfitLossPercent: pos.ProfitLossPercent(latest),
		})
	}
	report.NumberOfPositions = len(positions)
	report.ProfitLossPercent = domain.Percent(report.ProfitLossAmount, report.TotalPurchaseCost)

	return report, nil
}

// latestPrices looks up the latest price of every position concurrently.
// The result is index-aligned with positions.
func (s *PortfolioService) latestPrices(ctx context.Context, positions []domain.SymbolPosition) ([]decimal.Decimal, error) {
	prices := make([]decimal.Decimal, len(positions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(priceFetchLimit)
	for i, pos := range positions {
		i, symbol := i, pos.Symbol()
		g.Go(func() error {
			price, err := s.Prices.GetLatestPrice(gctx, symbol)
			if err != nil {
				return err
			}
			prices[i] = price
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return prices, nil
}
