package grpc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/valuation-service/internal/domain"
	"github.com/simaogato/valuation-service/internal/usecase/valuation"
)

// Valuator serves one validated valuation request
type Valuator interface {
	Valuate(ctx context.Context, in valuation.Input) (*valuation.Result, error)
}

// Server implements the ValuationService gRPC server
type Server struct {
	Valuator Valuator
}

// NewServer creates a new gRPC server instance
func NewServer(valuator Valuator) *Server {
	return &Server{
		Valuator: valuator,
	}
}

// NewGRPCServer builds a grpc.Server with the valuation and health services registered
// Health checks bypass the token check so orchestrators can check liveness without credentials.
func NewGRPCServer(server *Server, apiToken string, logger *slog.Logger) *grpc.Server {
	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			LoggingInterceptor(logger),
			AuthInterceptor(apiToken, healthpb.Health_Check_FullMethodName),
		),
	)

	RegisterValuationServiceServer(s, server)

	healthServer := health.NewServer()
	healthServer.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, healthServer)

	return s
}

// CalculateValuation handles the CalculateValuation RPC
// Request:  {"account_ids": ["E1", ...], "currency": "USD"}
// Response: {"valuation_id": "...", "currency": "USD", "accounts": [{"account_id", "collateral_value", "market_value"}]}
func (s *Server) CalculateValuation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	input, err := inputFromStruct(req)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "%v", err)
	}

	// Call usecase service
	result, err := s.Valuator.Valuate(ctx, input)
	if err != nil {
		return nil, mapError(err)
	}

	// Build response
	resp, err := resultToStruct(result)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	return resp, nil
}

// inputFromStruct reads the request fields, treating a missing account list as empty
func inputFromStruct(req *structpb.Struct) (valuation.Input, error) {
	input := valuation.Input{AccountIDs: []string{}}
	fields := req.GetFields()

	if v, ok := fields["currency"]; ok {
		currency, ok := v.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return input, errors.New("currency must be a string")
		}
		input.Currency = currency.StringValue
	}

	if v, ok := fields["account_ids"]; ok {
		list, ok := v.GetKind().(*structpb.Value_ListValue)
		if !ok {
			return input, errors.New("account_ids must be a list")
		}
		for i, item := range list.ListValue.GetValues() {
			id, ok := item.GetKind().(*structpb.Value_StringValue)
			if !ok {
				return input, fmt.Errorf("account_ids[%d] must be a string", i)
			}
			input.AccountIDs = append(input.AccountIDs, id.StringValue)
		}
	}

	return input, nil
}

// resultToStruct renders money as fixed 2-decimal strings so no precision is lost to float64
func resultToStruct(result *valuation.Result) (*structpb.Struct, error) {
	accounts := make([]any, 0, len(result.Accounts))
	for _, a := range result.Accounts {
		accounts = append(accounts, map[string]any{
			"account_id":       a.AccountID,
			"collateral_value": a.CollateralValue.StringFixed(domain.MoneyPlaces),
			"market_value":     a.MarketValue.StringFixed(domain.MoneyPlaces),
		})
	}

	return structpb.NewStruct(map[string]any{
		"valuation_id": result.ValuationID.String(),
		"currency":     result.Currency,
		"accounts":     accounts,
	})
}

// mapError converts domain errors to gRPC status errors
func mapError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return status.Errorf(codes.InvalidArgument, "%s", err)
	case errors.Is(err, domain.ErrCurrencyNotFound):
		return status.Errorf(codes.NotFound, "%s", err)
	case errors.Is(err, domain.ErrFXRatesUnavailable):
		return status.Errorf(codes.Unavailable, "%s", err)
	case errors.Is(err, context.DeadlineExceeded):
		return status.Errorf(codes.DeadlineExceeded, "%s", err)
	case errors.Is(err, context.Canceled):
		return status.Errorf(codes.Canceled, "%s", err)
	}

	// Default to Internal error for unknown errors
	return status.Errorf(codes.Internal, "%s", err)
}
