package rest

import (
	"github.com/simaogato/valuation-service/internal/domain"
	"github.com/simaogato/valuation-service/internal/usecase/valuation"
)

// ValuationRequestSchema is the body of POST /v1/valuations
type ValuationRequestSchema = valuation.Input

type AccountValuationSchema struct {
	AccountID       string `json:"account_id"`
	CollateralValue string `json:"collateral_value"`
	MarketValue     string `json:"market_value"`
}

type ValuationResponseSchema struct {
	ValuationID string                   `json:"valuation_id"`
	Currency    string                   `json:"currency"`
	Accounts    []AccountValuationSchema `json:"accounts"`
}

type ErrorSchema struct {
	Error string `json:"error"`
}

func newValuationResponse(result *valuation.Result) ValuationResponseSchema {
	accounts := make([]AccountValuationSchema, 0, len(result.Accounts))
	for _, a := range result.Accounts {
		accounts = append(accounts, AccountValuationSchema{
			AccountID:       a.AccountID,
			CollateralValue: a.CollateralValue.StringFixed(domain.MoneyPlaces),
			MarketValue:     a.MarketValue.StringFixed(domain.MoneyPlaces),
		})
	}
	return ValuationResponseSchema{
		ValuationID: result.ValuationID.String(),
		Currency:    result.Currency,
		Accounts:    accounts,
	}
}
