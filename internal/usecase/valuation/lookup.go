package valuation

import (
	"github.com/shopspring/decimal"
	"github.com/simaogato/valuation-service/internal/domain"
)

// priceMap indexes prices by asset ID
// The first price returned for an asset wins
func priceMap(prices []domain.Price) (map[string]domain.Price, int) {
	byAsset := make(map[string]domain.Price, len(prices))
	duplicates := 0

	for _, price := range prices {
		if _, ok := byAsset[price.AssetID]; ok {
			duplicates++
			continue
		}
		byAsset[price.AssetID] = price
	}

	return byAsset, duplicates
}

// fxTable maps a currency code to its USD multiplier
type fxTable map[string]decimal.Decimal

// newFXTable builds the FX lookup; the first rate returned for a currency wins
// An empty rate list means the FX source had nothing to offer
func newFXTable(rates []domain.FXRate) (fxTable, int, error) {
	if len(rates) == 0 {
		return nil, 0, domain.ErrFXRatesUnavailable
	}

	table := make(fxTable, len(rates))
	duplicates := 0
	for _, rate := range rates {
		if _, ok := table[rate.Currency]; ok {
			duplicates++
			continue
		}
		table[rate.Currency] = rate.Multiplier
	}

	return table, duplicates, nil
}

// toUSD converts an amount expressed in currency into USD
func (t fxTable) toUSD(currency string, amount decimal.Decimal) (decimal.Decimal, error) {
	rate, ok := t[currency]
	if !ok {
		return decimal.Zero, &domain.CurrencyNotFoundError{Currency: currency}
	}
	return rate.Mul(amount), nil
}

// divisor returns the rate used to convert USD amounts into currency
// A zero rate cannot be divided by and is reported like a missing currency
func (t fxTable) divisor(currency string) (decimal.Decimal, error) {
	rate, ok := t[currency]
	if !ok {
		return decimal.Zero, &domain.CurrencyNotFoundError{Currency: currency}
	}
	if rate.IsZero() {
		return decimal.Zero, &domain.CurrencyNotFoundError{Currency: currency, ZeroRate: true}
	}
	return rate, nil
}

// discountKey identifies an (account, asset) pair
type discountKey struct {
	accountID string
	assetID   string
}

// discountIndex resolves the discount for an (account, asset) pair in constant time
type discountIndex map[discountKey]decimal.Decimal

// newDiscountIndex precomputes discounts from the eligibility rules
// Rules are visited in the order received and a pair keeps the discount of the
// first eligible rule listing it, so later rules never override earlier ones.
// Rules with Eligible == false are skipped entirely.
func newDiscountIndex(rules []domain.Eligibility) discountIndex {
	index := make(discountIndex)

	for i := range rules {
		rule := &rules[i]
		if !rule.Eligible {
			continue
		}
		for _, accountID := range rule.AccountIDs {
			for _, assetID := range rule.AssetIDs {
				key := discountKey{accountID: accountID, assetID: assetID}
				if _, ok := index[key]; ok {
					continue
				}
				index[key] = rule.Discount
			}
		}
	}

	return index
}

// discount returns the discount for the pair, or zero when no eligible rule lists it
func (idx discountIndex) discount(accountID, assetID string) decimal.Decimal {
	if d, ok := idx[discountKey{accountID: accountID, assetID: assetID}]; ok {
		return d
	}
	return decimal.Zero
}
