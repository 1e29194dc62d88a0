package domain

import "github.com/shopspring/decimal"

// Eligibility represents a collateral eligibility rule
// The discount applies to any (account, asset) pair where the account is in AccountIDs
// and the asset is in AssetIDs, provided Eligible is true.
// An explicitly ineligible rule (Eligible == false) never matches, which is kept
// distinct from the absence of any rule even though both yield a zero discount today.
type Eligibility struct {
	Eligible   bool
	AssetIDs   []string
	AccountIDs []string
	Discount   decimal.Decimal // Fraction of market value counted as collateral, conceptually in [0, 1]
}
