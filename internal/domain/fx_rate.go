package domain

import "github.com/shopspring/decimal"

// BaseCurrency is the pivot currency every FX multiplier converts into
const BaseCurrency = "USD"

// FXRate converts one unit of Currency into USD: usd = Multiplier * native.
// Going from USD back to Currency divides by Multiplier.
type FXRate struct {
	Currency   string
	Multiplier decimal.Decimal
}
