package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrCurrencyNotFound is matched by every CurrencyNotFoundError
	ErrCurrencyNotFound = errors.New("currency not found in fx rates")

	// ErrFXRatesUnavailable is returned when the FX source returns no rates at all
	ErrFXRatesUnavailable = errors.New("fx rates could not be retrieved from fx source")

	// ErrInvalidInput marks requests rejected before any source is queried
	ErrInvalidInput = errors.New("invalid input")
)

// CurrencyNotFoundError reports a currency with no usable FX rate
// ZeroRate is set when the currency exists but its rate cannot be used as a divisor
type CurrencyNotFoundError struct {
	Currency string
	ZeroRate bool
}

func (e *CurrencyNotFoundError) Error() string {
	if e.ZeroRate {
		return fmt.Sprintf("currency code '%s' has a zero rate in fx rates", e.Currency)
	}
	return fmt.Sprintf("currency code '%s' not found in fx rates", e.Currency)
}

// Is lets errors.Is(err, ErrCurrencyNotFound) match any CurrencyNotFoundError
func (e *CurrencyNotFoundError) Is(target error) bool {
	return target == ErrCurrencyNotFound
}
