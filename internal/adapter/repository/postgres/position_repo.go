package postgres

import (
	"context"
	"fmt"

	"github.com/lib/pq"
	"github.com/simaogato/valuation-service/internal/domain"
)

// positionRepository implements domain.PositionSource
type positionRepository struct {
	db *DB
}

// NewPositionRepository creates a new position repository
func NewPositionRepository(db *DB) domain.PositionSource {
	return &positionRepository{db: db}
}

// GetPositions retrieves the positions of the given accounts
// Accounts come back in request order, positions in insertion (seq) order.
// Accounts without any row are omitted.
func (r *positionRepository) GetPositions(ctx context.Context, accountIDs []string) ([]domain.AccountPosition, error) {
	query := `
		SELECT account_id, asset_id, quantity
		FROM account_positions
		WHERE account_id = ANY($1)
		ORDER BY array_position($1::text[], account_id), seq
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(accountIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	result := make([]domain.AccountPosition, 0)
	for rows.Next() {
		var accountID string
		var position domain.Position
		if err := rows.Scan(&accountID, &position.AssetID, &position.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}

		// Rows are grouped by account, so a new account starts a new entry
		if n := len(result); n == 0 || result[n-1].AccountID != accountID {
			result = append(result, domain.AccountPosition{AccountID: accountID})
		}
		last := &result[len(result)-1]
		last.Positions = append(last.Positions, position)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate positions: %w", err)
	}

	return result, nil
}
