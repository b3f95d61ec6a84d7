package v1alpha1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Method names of the dice service
const (
	ServiceName         = "rpgsheets.dice.v1alpha1.DiceService"
	ParseFullMethodName = "/" + ServiceName + "/Parse"
	RollFullMethodName  = "/" + ServiceName + "/Roll"
)

// DiceServiceServer is the server API for the dice service. Requests and
// responses are well-known protobuf types so no generated code is needed.
type DiceServiceServer interface {
	// Parse normalizes notation and reports its statistics
	Parse(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	// Roll rolls {notation, crit, times}
	Roll(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// DiceServiceDesc is the grpc.ServiceDesc for the dice service
var DiceServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DiceServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Parse",
			Handler:    parseHandler,
		},
		{
			MethodName: "Roll",
			Handler:    rollHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "rpgsheets/dice/v1alpha1/dice.proto",
}

// RegisterDiceServiceServer registers srv on s
func RegisterDiceServiceServer(s grpc.ServiceRegistrar, srv DiceServiceServer) {
	s.RegisterService(&DiceServiceDesc, srv)
}

func parseHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DiceServiceServer).Parse(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ParseFullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DiceServiceServer).Parse(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func rollHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DiceServiceServer).Roll(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: RollFullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DiceServiceServer).Roll(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// DiceServiceClient is the client API for the dice service
type DiceServiceClient interface {
	Parse(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	Roll(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type diceServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewDiceServiceClient creates a client on cc
func NewDiceServiceClient(cc grpc.ClientConnInterface) DiceServiceClient {
	return &diceServiceClient{cc: cc}
}

func (c *diceServiceClient) Parse(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ParseFullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *diceServiceClient) Roll(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, RollFullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
