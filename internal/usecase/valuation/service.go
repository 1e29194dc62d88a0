package valuation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/simaogato/valuation-service/internal/domain"
)

// ValuationService computes collateral and market values for accounts
type ValuationService struct {
	PositionSource    domain.PositionSource
	EligibilitySource domain.EligibilitySource
	PriceSource       domain.PriceSource
	FXRateSource      domain.FXRateSource

	workers int
	logger  *slog.Logger
}

// Option configures a ValuationService
type Option func(*ValuationService)

// WithWorkers sets how many accounts are valued concurrently
// Values below 2 keep the computation on the calling goroutine
func WithWorkers(n int) Option {
	return func(s *ValuationService) {
		s.workers = n
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *ValuationService) {
		s.logger = logger
	}
}

// NewValuationService creates a new ValuationService instance
func NewValuationService(
	positionSource domain.PositionSource,
	eligibilitySource domain.EligibilitySource,
	priceSource domain.PriceSource,
	fxRateSource domain.FXRateSource,
	opts ...Option,
) *ValuationService {
	s := &ValuationService{
		PositionSource:    positionSource,
		EligibilitySource: eligibilitySource,
		PriceSource:       priceSource,
		FXRateSource:      fxRateSource,
		workers:           1,
		logger:            slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// lookups holds the read-only structures shared by every account of one call
type lookups struct {
	prices    map[string]domain.Price
	discounts discountIndex
	fx        fxTable
	divisor   decimal.Decimal // USD -> target currency
}

// CalculateValuation values every account returned by the position source in currencyCode
// Logic:
//  1. Fetch positions once for all accounts (nothing else is fetched if there are none)
//  2. Fetch eligibility and prices once for the distinct assets, then the FX table once
//  3. Per account: market += fx(price currency) * price * quantity,
//     collateral += that amount * discount of the first matching eligible rule
//  4. Convert both USD totals into currencyCode and round half-up to 2 decimals
//
// Positions without a price are skipped. A missing currency (price or target) or a
// zero target rate fails the whole call with a CurrencyNotFoundError; no partial
// results are ever returned.
func (s *ValuationService) CalculateValuation(ctx context.Context, accountIDs []string, currencyCode string) ([]domain.AccountValuation, error) {
	result := make([]domain.AccountValuation, 0)
	if len(accountIDs) == 0 {
		return result, nil
	}

	accountPositions, err := s.PositionSource.GetPositions(ctx, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("get positions: %w", err)
	}
	if len(accountPositions) == 0 {
		return result, nil
	}

	lk, err := s.buildLookups(ctx, accountIDs, accountPositions, currencyCode)
	if err != nil {
		return nil, err
	}

	result = make([]domain.AccountValuation, len(accountPositions))
	if s.workers > 1 && len(accountPositions) > 1 {
		err = s.valueConcurrently(ctx, accountPositions, lk, result)
	} else {
		for i := range accountPositions {
			result[i], err = valueAccount(&accountPositions[i], lk)
			if err != nil {
				break
			}
		}
	}
	if err != nil {
		return nil, err
	}

	s.logger.DebugContext(ctx, "valuation calculated",
		"accounts", len(result),
		"assets", len(lk.prices),
		"currency", currencyCode,
	)

	return result, nil
}

// buildLookups performs the single round of eligibility, price and FX calls
func (s *ValuationService) buildLookups(
	ctx context.Context,
	accountIDs []string,
	accountPositions []domain.AccountPosition,
	currencyCode string,
) (*lookups, error) {
	assetIDs := domain.DistinctAssetIDs(accountPositions)

	rules, err := s.EligibilitySource.GetEligibility(ctx, accountIDs, assetIDs)
	if err != nil {
		return nil, fmt.Errorf("get eligibility: %w", err)
	}

	prices, err := s.PriceSource.GetPrices(ctx, assetIDs)
	if err != nil {
		return nil, fmt.Errorf("get prices: %w", err)
	}
	byAsset, duplicatePrices := priceMap(prices)
	if duplicatePrices > 0 {
		s.logger.DebugContext(ctx, "ignored duplicate prices", "count", duplicatePrices)
	}

	rates, err := s.FXRateSource.GetFXRates(ctx)
	if err != nil {
		return nil, fmt.Errorf("get fx rates: %w", err)
	}
	fx, duplicateRates, err := newFXTable(rates)
	if err != nil {
		return nil, err
	}
	if duplicateRates > 0 {
		s.logger.DebugContext(ctx, "ignored duplicate fx rates", "count", duplicateRates)
	}

	// Every account converts into the same currency, so resolve it once
	divisor, err := fx.divisor(currencyCode)
	if err != nil {
		return nil, err
	}

	return &lookups{
		prices:    byAsset,
		discounts: newDiscountIndex(rules),
		fx:        fx,
		divisor:   divisor,
	}, nil
}

// valueConcurrently spreads accounts over a bounded worker pool
// Lookups are never written after construction and each worker owns its result slot.
func (s *ValuationService) valueConcurrently(
	ctx context.Context,
	accountPositions []domain.AccountPosition,
	lk *lookups,
	result []domain.AccountValuation,
) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i := range accountPositions {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			valuation, err := valueAccount(&accountPositions[i], lk)
			if err != nil {
				return err
			}
			result[i] = valuation
			return nil
		})
	}

	return g.Wait()
}

// valueAccount accumulates one account in USD and converts the totals to the target currency
func valueAccount(ap *domain.AccountPosition, lk *lookups) (domain.AccountValuation, error) {
	collateral := decimal.Zero
	market := decimal.Zero

	for _, position := range ap.Positions {
		price, ok := lk.prices[position.AssetID]
		if !ok {
			continue
		}

		usdUnitPrice, err := lk.fx.toUSD(price.EffectiveCurrency(), price.Price)
		if err != nil {
			return domain.AccountValuation{}, fmt.Errorf("price of asset %s: %w", position.AssetID, err)
		}
		usdTotal := usdUnitPrice.Mul(decimal.NewFromInt(position.Quantity))

		discount := lk.discounts.discount(ap.AccountID, position.AssetID)
		collateral = collateral.Add(usdTotal.Mul(discount))
		market = market.Add(usdTotal)
	}

	return domain.AccountValuation{
		AccountID:       ap.AccountID,
		CollateralValue: domain.RoundMoney(collateral.Div(lk.divisor)),
		MarketValue:     domain.RoundMoney(market.Div(lk.divisor)),
	}, nil
}
