package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/simaogato/valuation-service/internal/domain"
)

// priceRepository implements domain.PriceSource
type priceRepository struct {
	db *DB
}

// NewPriceRepository creates a new price repository
func NewPriceRepository(db *DB) domain.PriceSource {
	return &priceRepository{db: db}
}

// GetPrices retrieves the current price of each requested asset that has one
func (r *priceRepository) GetPrices(ctx context.Context, assetIDs []string) ([]domain.Price, error) {
	query := `
		SELECT asset_id, price, currency
		FROM prices
		WHERE asset_id = ANY($1)
		ORDER BY asset_id
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(assetIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to query prices: %w", err)
	}
	defer rows.Close()

	result := make([]domain.Price, 0)
	for rows.Next() {
		var price domain.Price
		var priceStr string
		var currency sql.NullString

		if err := rows.Scan(&price.AssetID, &priceStr, &currency); err != nil {
			return nil, fmt.Errorf("failed to scan price: %w", err)
		}

		// Parse price (DECIMAL)
		value, err := decimal.NewFromString(priceStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse price of asset %s: %w", price.AssetID, err)
		}
		price.Price = value

		// NULL currency falls back to the domain default
		if currency.Valid {
			price.Currency = currency.String
		}

		result = append(result, price)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate prices: %w", err)
	}

	return result, nil
}
