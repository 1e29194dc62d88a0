package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Messages travel as google.protobuf.Struct so the service needs no generated code
// and has no .proto file behind it.
const (
	ServiceName              = "valuation.v1.ValuationService"
	CalculateValuationMethod = "/" + ServiceName + "/CalculateValuation"
)

// ValuationServiceServer is the server API for the valuation service
type ValuationServiceServer interface {
	CalculateValuation(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// ValuationServiceDesc describes the valuation service for grpc.Server.RegisterService
var ValuationServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ValuationServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "CalculateValuation",
			Handler:    calculateValuationHandler,
		},
	},
	Streams: []grpc.StreamDesc{},
}

func calculateValuationHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ValuationServiceServer).CalculateValuation(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: CalculateValuationMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ValuationServiceServer).CalculateValuation(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// RegisterValuationServiceServer registers srv on s
func RegisterValuationServiceServer(s grpc.ServiceRegistrar, srv ValuationServiceServer) {
	s.RegisterService(&ValuationServiceDesc, srv)
}

// ValuationServiceClient is the client API for the valuation service
type ValuationServiceClient interface {
	CalculateValuation(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type valuationServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewValuationServiceClient creates a client on top of an existing connection
func NewValuationServiceClient(cc grpc.ClientConnInterface) ValuationServiceClient {
	return &valuationServiceClient{cc: cc}
}

func (c *valuationServiceClient) CalculateValuation(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, CalculateValuationMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
