package fxapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	t.Run("DefaultValues", func(t *testing.T) {
		c := NewClient("https://fx.example.com")

		assert.Equal(t, "https://fx.example.com", c.baseURL)
		assert.Empty(t, c.apiKey)
		assert.Equal(t, 10*time.Second, c.httpClient.Timeout)
		assert.Equal(t, 3, c.maxRetries)
		assert.Equal(t, 500*time.Millisecond, c.retryBackoff)
		assert.NotNil(t, c.logger)
	})

	t.Run("WithOptions", func(t *testing.T) {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		c := NewClient("https://fx.example.com",
			WithAPIKey("secret"),
			WithTimeout(2*time.Second),
			WithRetries(5, time.Second),
			WithLogger(logger),
		)

		assert.Equal(t, "secret", c.apiKey)
		assert.Equal(t, 2*time.Second, c.httpClient.Timeout)
		assert.Equal(t, 5, c.maxRetries)
		assert.Equal(t, time.Second, c.retryBackoff)
		assert.Same(t, logger, c.logger)
	})

	t.Run("WithHTTPClient", func(t *testing.T) {
		hc := &http.Client{Timeout: time.Minute}
		c := NewClient("https://fx.example.com", WithHTTPClient(hc))
		assert.Same(t, hc, c.httpClient)
	})
}

func TestAPIError_IsRetryable(t *testing.T) {
	tests := []struct {
		code int
		want bool
	}{
		{http.StatusBadRequest, false},
		{http.StatusUnauthorized, false},
		{http.StatusNotFound, false},
		{http.StatusTooManyRequests, true},
		{http.StatusInternalServerError, true},
		{http.StatusBadGateway, true},
		{http.StatusServiceUnavailable, true},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.code), func(t *testing.T) {
			err := &APIError{StatusCode: tt.code}
			assert.Equal(t, tt.want, err.IsRetryable())
		})
	}
}

func TestClient_GetFXRates(t *testing.T) {
	t.Run("ParsesRates", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, RatesPath, r.URL.Path)
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"base":"USD","rates":[
				{"currency":"USD","multiplier":"1"},
				{"currency":"GBP","multiplier":1.27},
				{"currency":"INR","multiplier":"0.012"}
			]}`))
		}))
		defer server.Close()

		c := NewClient(server.URL, WithAPIKey("secret"))
		rates, err := c.GetFXRates(context.Background())
		require.NoError(t, err)
		require.Len(t, rates, 3)

		assert.Equal(t, "USD", rates[0].Currency)
		assert.True(t, decimal.NewFromInt(1).Equal(rates[0].Multiplier))
		assert.Equal(t, "GBP", rates[1].Currency)
		assert.True(t, decimal.RequireFromString("1.27").Equal(rates[1].Multiplier))
		assert.Equal(t, "INR", rates[2].Currency)
		assert.True(t, decimal.RequireFromString("0.012").Equal(rates[2].Multiplier))
	})

	t.Run("NoAuthorizationWithoutKey", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Empty(t, r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`{"rates":[]}`))
		}))
		defer server.Close()

		rates, err := NewClient(server.URL).GetFXRates(context.Background())
		require.NoError(t, err)
		assert.Empty(t, rates)
	})

	t.Run("SkipsEntriesWithoutCurrency", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"rates":[{"currency":"","multiplier":"2"},{"currency":"EUR","multiplier":"1.1"}]}`))
		}))
		defer server.Close()

		rates, err := NewClient(server.URL).GetFXRates(context.Background())
		require.NoError(t, err)
		require.Len(t, rates, 1)
		assert.Equal(t, "EUR", rates[0].Currency)
	})

	t.Run("RejectsForeignBase", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"base":"EUR","rates":[{"currency":"USD","multiplier":"0.9"}]}`))
		}))
		defer server.Close()

		_, err := NewClient(server.URL).GetFXRates(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected fx base")
	})

	t.Run("MalformedBody", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		}))
		defer server.Close()

		_, err := NewClient(server.URL).GetFXRates(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unmarshal response")
	})

	t.Run("BadMultiplier", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"rates":[{"currency":"EUR","multiplier":"abc"}]}`))
		}))
		defer server.Close()

		_, err := NewClient(server.URL).GetFXRates(context.Background())
		require.Error(t, err)
	})
}

func TestClient_Retry(t *testing.T) {
	t.Run("RecoversAfterServerErrors", func(t *testing.T) {
		var attempts int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&attempts, 1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			_, _ = w.Write([]byte(`{"rates":[{"currency":"USD","multiplier":"1"}]}`))
		}))
		defer server.Close()

		c := NewClient(server.URL, WithRetries(3, time.Millisecond))
		rates, err := c.GetFXRates(context.Background())
		require.NoError(t, err)
		assert.Len(t, rates, 1)
		assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
	})

	t.Run("RetriesRateLimit", func(t *testing.T) {
		var attempts int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&attempts, 1) == 1 {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			_, _ = w.Write([]byte(`{"rates":[]}`))
		}))
		defer server.Close()

		c := NewClient(server.URL, WithRetries(2, time.Millisecond))
		_, err := c.GetFXRates(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
	})

	t.Run("NoRetryOnClientError", func(t *testing.T) {
		var attempts int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&attempts, 1)
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"bad key"}`))
		}))
		defer server.Close()

		c := NewClient(server.URL, WithRetries(3, time.Millisecond))
		_, err := c.GetFXRates(context.Background())
		require.Error(t, err)

		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
		assert.Contains(t, string(apiErr.Body), "bad key")
		assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
	})

	t.Run("GivesUpAfterMaxRetries", func(t *testing.T) {
		var attempts int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&attempts, 1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		c := NewClient(server.URL, WithRetries(2, time.Millisecond))
		_, err := c.GetFXRates(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max retries exceeded")

		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
		assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
	})

	t.Run("StopsOnCancelledContext", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		c := NewClient(server.URL, WithRetries(3, time.Hour))
		_, err := c.GetFXRates(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
