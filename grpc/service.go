package statusgrpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"

	"github.com/blockberries/ledgerstatus/types"
)

const serviceName = "ledgerstatus.v1.StatusService"

// StatusServiceServer is the server-side interface for the status gRPC
// service.
type StatusServiceServer interface {
	Status(context.Context, *types.StatusQuery) (*types.Outcome, error)
	Ping(context.Context, *PingRequest) (*PingResponse, error)
}

// RegisterStatusServiceServer registers the StatusServiceServer on a
// gRPC server.
func RegisterStatusServiceServer(s grpc.ServiceRegistrar, srv StatusServiceServer) {
	s.RegisterService(&serviceDesc, srv)
}

// --- Handler functions ---

func handlerStatus(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := new(types.StatusQuery)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(StatusServiceServer).Status(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod("Status")}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(StatusServiceServer).Status(ctx, req.(*types.StatusQuery))
	}
	return interceptor(ctx, req, info, handler)
}

func handlerPing(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := new(PingRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(StatusServiceServer).Ping(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod("Ping")}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(StatusServiceServer).Ping(ctx, req.(*PingRequest))
	}
	return interceptor(ctx, req, info, handler)
}

// fullMethod builds the full gRPC method path.
func fullMethod(method string) string {
	return fmt.Sprintf("/%s/%s", serviceName, method)
}

// serviceDesc is the manual gRPC service descriptor for the status
// service.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*StatusServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Status", Handler: handlerStatus},
		{MethodName: "Ping", Handler: handlerPing},
	},
	Metadata: "ledgerstatus/v1/service.cram",
}
