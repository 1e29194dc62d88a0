package seeder

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/simaogato/valuation-service/internal/domain"
)

// FXSeeder makes sure the FX store carries the USD pivot rate
type FXSeeder struct {
	store  domain.FXRateStore
	logger *slog.Logger
}

// NewFXSeeder creates a new FXSeeder instance
func NewFXSeeder(store domain.FXRateStore, logger *slog.Logger) *FXSeeder {
	return &FXSeeder{
		store:  store,
		logger: logger,
	}
}

// Seed ensures the base currency exists with a multiplier of exactly 1
// A missing row is created; a row with any other multiplier is corrected.
func (s *FXSeeder) Seed(ctx context.Context) error {
	rates, err := s.store.GetFXRates(ctx)
	if err != nil {
		return fmt.Errorf("read fx rates: %w", err)
	}

	one := decimal.NewFromInt(1)
	for _, rate := range rates {
		if rate.Currency != domain.BaseCurrency {
			continue
		}
		if rate.Multiplier.Equal(one) {
			// Pivot already in place, no action needed
			return nil
		}
		s.logger.WarnContext(ctx, "correcting base fx rate",
			"currency", rate.Currency,
			"multiplier", rate.Multiplier.String(),
		)
		break
	}

	pivot := &domain.FXRate{Currency: domain.BaseCurrency, Multiplier: one}
	if err := s.store.Upsert(ctx, pivot); err != nil {
		return fmt.Errorf("seed base fx rate: %w", err)
	}

	s.logger.InfoContext(ctx, "seeded base fx rate", "currency", pivot.Currency)
	return nil
}
