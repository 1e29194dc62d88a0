package fxapi

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/simaogato/valuation-service/internal/domain"
)

// RateEntry is one row of the rate table as served by the feed.
// Multiplier accepts both JSON numbers and strings.
type RateEntry struct {
	Currency   string          `json:"currency"`
	Multiplier decimal.Decimal `json:"multiplier"`
}

// RatesResponse is the body of GET /rates.
type RatesResponse struct {
	Base  string      `json:"base,omitempty"`
	Rates []RateEntry `json:"rates"`
}

// GetFXRates fetches the full currency to USD table.
func (c *Client) GetFXRates(ctx context.Context) ([]domain.FXRate, error) {
	body, err := c.doWithRetry(ctx, RatesPath)
	if err != nil {
		return nil, err
	}

	var resp RatesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	if resp.Base != "" && resp.Base != domain.BaseCurrency {
		return nil, fmt.Errorf("unexpected fx base %q, want %q", resp.Base, domain.BaseCurrency)
	}

	rates := make([]domain.FXRate, 0, len(resp.Rates))
	for _, entry := range resp.Rates {
		if entry.Currency == "" {
			c.logger.WarnContext(ctx, "skipping fx entry without currency")
			continue
		}
		rates = append(rates, domain.FXRate{
			Currency:   entry.Currency,
			Multiplier: entry.Multiplier,
		})
	}

	c.logger.DebugContext(ctx, "fetched fx rates", "count", len(rates))

	return rates, nil
}
