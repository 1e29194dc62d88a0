package domain

import "github.com/shopspring/decimal"

// MoneyPlaces is the number of fractional digits reported on valuation results
const MoneyPlaces = 2

// AccountValuation is the valuation result for a single account, expressed in
// the currency requested by the caller
type AccountValuation struct {
	AccountID       string
	CollateralValue decimal.Decimal // Rounded to MoneyPlaces, half-up
	MarketValue     decimal.Decimal // Rounded to MoneyPlaces, half-up
}

// RoundMoney rounds a monetary amount to MoneyPlaces using half-up rounding
// (ties are rounded away from zero, like BigDecimal HALF_UP)
func RoundMoney(value decimal.Decimal) decimal.Decimal {
	return value.Round(MoneyPlaces)
}
