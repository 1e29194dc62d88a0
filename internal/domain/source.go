package domain

import "context"

// PositionSource retrieves the positions held by a set of accounts
type PositionSource interface {
	// GetPositions returns one AccountPosition per account that has positions
	// The order of the returned slice drives the order of valuation results
	GetPositions(ctx context.Context, accountIDs []string) ([]AccountPosition, error)
}

// EligibilitySource retrieves the collateral eligibility rules relevant to a set of accounts and assets
type EligibilitySource interface {
	// GetEligibility returns rules in precedence order: earlier rules win
	GetEligibility(ctx context.Context, accountIDs, assetIDs []string) ([]Eligibility, error)
}

// PriceSource retrieves current prices for a set of assets
type PriceSource interface {
	GetPrices(ctx context.Context, assetIDs []string) ([]Price, error)
}

// FXRateSource retrieves the full currency to USD multiplier table
type FXRateSource interface {
	GetFXRates(ctx context.Context) ([]FXRate, error)
}

// FXRateStore is an FXRateSource that can also record rates
type FXRateStore interface {
	FXRateSource

	// Upsert creates the rate or replaces the multiplier of an existing currency
	Upsert(ctx context.Context, rate *FXRate) error
}
