package valuation

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/simaogato/valuation-service/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report json names so transport errors read like the request body
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Input is a valuation request as received by a transport
type Input struct {
	AccountIDs []string `json:"account_ids" validate:"dive,required"`
	Currency   string   `json:"currency" validate:"required,len=3,alpha"`
}

// Result is one served valuation
type Result struct {
	ValuationID uuid.UUID
	Currency    string
	Accounts    []domain.AccountValuation
}

// ValidateInput checks the request shape
// Failures wrap domain.ErrInvalidInput.
func ValidateInput(in *Input) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(msgs, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "len":
		return fmt.Sprintf("%s must be %s characters", fe.Field(), fe.Param())
	case "alpha":
		return fmt.Sprintf("%s must contain letters only", fe.Field())
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}

// Valuate validates a transport request, values it and tags the result with a fresh id
func (s *ValuationService) Valuate(ctx context.Context, in Input) (*Result, error) {
	if err := ValidateInput(&in); err != nil {
		return nil, err
	}

	id := uuid.New()
	logger := s.logger.With("valuation_id", id.String())

	accounts, err := s.CalculateValuation(ctx, in.AccountIDs, in.Currency)
	if err != nil {
		logger.WarnContext(ctx, "valuation failed", "currency", in.Currency, "error", err)
		return nil, err
	}

	logger.InfoContext(ctx, "valuation served",
		"accounts", len(accounts),
		"currency", in.Currency,
	)

	return &Result{
		ValuationID: id,
		Currency:    in.Currency,
		Accounts:    accounts,
	}, nil
}
