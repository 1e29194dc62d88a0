package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/valuation-service/internal/domain"
	"github.com/simaogato/valuation-service/internal/usecase/valuation"
)

const testToken = "test-token-123"

// MockValuator is a mock implementation of Valuator
type MockValuator struct {
	mock.Mock
}

func (m *MockValuator) Valuate(ctx context.Context, in valuation.Input) (*valuation.Result, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*valuation.Result), args.Error(1)
}

func newTestServer() (*Server, *MockValuator) {
	valuator := new(MockValuator)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(valuator, testToken, logger), valuator
}

func newValuationRequest(body string, token string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/v1/valuations", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHealth(t *testing.T) {
	server, _ := newTestServer()

	resp, err := server.App().Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody[map[string]string](t, resp)
	assert.Equal(t, "ok", body["status"])
}

func TestCalculateValuation_Success(t *testing.T) {
	server, valuator := newTestServer()

	id := uuid.New()
	valuator.On("Valuate", mock.Anything, valuation.Input{AccountIDs: []string{"E1"}, Currency: "INR"}).
		Return(&valuation.Result{
			ValuationID: id,
			Currency:    "INR",
			Accounts: []domain.AccountValuation{
				{AccountID: "E1", CollateralValue: decimal.RequireFromString("584640"), MarketValue: decimal.RequireFromString("778766.67")},
			},
		}, nil)

	resp, err := server.App().Test(newValuationRequest(`{"account_ids":["E1"],"currency":"INR"}`, testToken))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody[ValuationResponseSchema](t, resp)
	assert.Equal(t, id.String(), body.ValuationID)
	assert.Equal(t, "INR", body.Currency)
	assert.Equal(t, []AccountValuationSchema{
		{AccountID: "E1", CollateralValue: "584640.00", MarketValue: "778766.67"},
	}, body.Accounts)
	valuator.AssertExpectations(t)
}

func TestCalculateValuation_MissingAccountsIsEmpty(t *testing.T) {
	server, valuator := newTestServer()

	valuator.On("Valuate", mock.Anything, valuation.Input{AccountIDs: []string{}, Currency: "USD"}).
		Return(&valuation.Result{ValuationID: uuid.New(), Currency: "USD", Accounts: []domain.AccountValuation{}}, nil)

	resp, err := server.App().Test(newValuationRequest(`{"currency":"USD"}`, testToken))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody[ValuationResponseSchema](t, resp)
	assert.NotNil(t, body.Accounts)
	assert.Empty(t, body.Accounts)
}

func TestCalculateValuation_Auth(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		wantMsg string
	}{
		{"MissingHeader", "", "missing authorization header"},
		{"WrongToken", "Bearer nope", "invalid token"},
		{"NoBearerPrefix", testToken, "invalid token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, valuator := newTestServer()

			req := newValuationRequest(`{"account_ids":["E1"],"currency":"USD"}`, "")
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			resp, err := server.App().Test(req)
			require.NoError(t, err)

			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			body := decodeBody[ErrorSchema](t, resp)
			assert.Equal(t, tt.wantMsg, body.Error)
			valuator.AssertNotCalled(t, "Valuate", mock.Anything, mock.Anything)
		})
	}
}

func TestCalculateValuation_MalformedBody(t *testing.T) {
	server, valuator := newTestServer()

	resp, err := server.App().Test(newValuationRequest(`{"account_ids":`, testToken))
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeBody[ErrorSchema](t, resp)
	assert.Equal(t, "malformed request body", body.Error)
	valuator.AssertNotCalled(t, "Valuate", mock.Anything, mock.Anything)
}

func TestCalculateValuation_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"InvalidInput", fmt.Errorf("%w: currency is required", domain.ErrInvalidInput), http.StatusUnprocessableEntity},
		{"CurrencyNotFound", &domain.CurrencyNotFoundError{Currency: "CHF"}, http.StatusNotFound},
		{"FXUnavailable", domain.ErrFXRatesUnavailable, http.StatusServiceUnavailable},
		{"Timeout", fmt.Errorf("get positions: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{"SourceFailure", fmt.Errorf("get prices: %w", errors.New("connection refused")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, valuator := newTestServer()
			valuator.On("Valuate", mock.Anything, mock.Anything).Return(nil, tt.err)

			resp, err := server.App().Test(newValuationRequest(`{"account_ids":["E1"],"currency":"USD"}`, testToken))
			require.NoError(t, err)

			assert.Equal(t, tt.code, resp.StatusCode)
			body := decodeBody[ErrorSchema](t, resp)
			assert.Equal(t, tt.err.Error(), body.Error)
		})
	}
}

func TestCalculateValuation_ThroughService(t *testing.T) {
	// A real service without sources still rejects bad input before any lookup
	service := valuation.NewValuationService(nil, nil, nil, nil)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	server := NewServer(service, testToken, logger)

	resp, err := server.App().Test(newValuationRequest(`{"account_ids":["E1",""],"currency":"US"}`, testToken))
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	body := decodeBody[ErrorSchema](t, resp)
	assert.Contains(t, body.Error, "account_ids[1] is required")
	assert.Contains(t, body.Error, "currency must be 3 characters")
}

func TestRoutes_NotFound(t *testing.T) {
	server, _ := newTestServer()

	resp, err := server.App().Test(httptest.NewRequest(http.MethodGet, "/v2/unknown", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
