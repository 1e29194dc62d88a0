package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/simaogato/valuation-service/internal/domain"
)

// fxRateRepository implements domain.FXRateStore
type fxRateRepository struct {
	db *DB
}

// NewFXRateRepository creates a new FX rate repository
func NewFXRateRepository(db *DB) domain.FXRateStore {
	return &fxRateRepository{db: db}
}

// GetFXRates retrieves the whole FX table
func (r *fxRateRepository) GetFXRates(ctx context.Context) ([]domain.FXRate, error) {
	query := `
		SELECT currency, multiplier
		FROM fx_rates
		ORDER BY currency
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query fx rates: %w", err)
	}
	defer rows.Close()

	result := make([]domain.FXRate, 0)
	for rows.Next() {
		var rate domain.FXRate
		var multiplierStr string

		if err := rows.Scan(&rate.Currency, &multiplierStr); err != nil {
			return nil, fmt.Errorf("failed to scan fx rate: %w", err)
		}

		// Parse multiplier (DECIMAL)
		multiplier, err := decimal.NewFromString(multiplierStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse multiplier of %s: %w", rate.Currency, err)
		}
		rate.Multiplier = multiplier

		result = append(result, rate)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate fx rates: %w", err)
	}

	return result, nil
}

// Upsert creates the rate or replaces the multiplier of an existing currency
func (r *fxRateRepository) Upsert(ctx context.Context, rate *domain.FXRate) error {
	query := `
		INSERT INTO fx_rates (currency, multiplier, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (currency)
		DO UPDATE SET multiplier = EXCLUDED.multiplier, updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query, rate.Currency, rate.Multiplier.String())
	if err != nil {
		return fmt.Errorf("failed to upsert fx rate %s: %w", rate.Currency, err)
	}

	return nil
}
