package postgres

import (
	"context"
	"fmt"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/simaogato/valuation-service/internal/domain"
)

// eligibilityRepository implements domain.EligibilitySource
type eligibilityRepository struct {
	db *DB
}

// NewEligibilityRepository creates a new eligibility repository
func NewEligibilityRepository(db *DB) domain.EligibilitySource {
	return &eligibilityRepository{db: db}
}

// GetEligibility retrieves the rules that mention at least one of the accounts and one of the assets
// Rules are returned by ascending priority, which is the precedence the valuation relies on
func (r *eligibilityRepository) GetEligibility(ctx context.Context, accountIDs, assetIDs []string) ([]domain.Eligibility, error) {
	query := `
		SELECT eligible, asset_ids, account_ids, discount
		FROM eligibility_rules
		WHERE account_ids && $1::text[]
		  AND asset_ids && $2::text[]
		ORDER BY priority, id
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(accountIDs), pq.Array(assetIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to query eligibility rules: %w", err)
	}
	defer rows.Close()

	result := make([]domain.Eligibility, 0)
	for rows.Next() {
		var rule domain.Eligibility
		var discountStr string

		if err := rows.Scan(
			&rule.Eligible,
			pq.Array(&rule.AssetIDs),
			pq.Array(&rule.AccountIDs),
			&discountStr,
		); err != nil {
			return nil, fmt.Errorf("failed to scan eligibility rule: %w", err)
		}

		// Parse discount (DECIMAL)
		discount, err := decimal.NewFromString(discountStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse discount: %w", err)
		}
		rule.Discount = discount

		result = append(result, rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate eligibility rules: %w", err)
	}

	return result, nil
}
