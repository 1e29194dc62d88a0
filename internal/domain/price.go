package domain

import "github.com/shopspring/decimal"

// DefaultPriceCurrency is the currency assumed for a price that carries none
const DefaultPriceCurrency = "GBP"

// Price represents the current unit price of an asset in its native currency
type Price struct {
	AssetID  string
	Price    decimal.Decimal
	Currency string // Empty means DefaultPriceCurrency
}

// EffectiveCurrency returns the price currency, falling back to DefaultPriceCurrency
func (p *Price) EffectiveCurrency() string {
	if p.Currency == "" {
		return DefaultPriceCurrency
	}
	return p.Currency
}
