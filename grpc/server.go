package statusgrpc

import (
	"context"
	"errors"
	"fmt"

	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/blockberries/ledgerstatus"
	"github.com/blockberries/ledgerstatus/server"
	"github.com/blockberries/ledgerstatus/types"
)

// Compile-time interface check.
var _ StatusServiceServer = (*GRPCServer)(nil)

// GRPCServer exposes a status server over gRPC. No type conversion is
// needed; domain types are serialized directly via cramberry.
type GRPCServer struct {
	srv *server.Server
	log *zap.Logger
}

// NewGRPCServer creates a gRPC service wrapping srv. A nil logger
// disables logging.
func NewGRPCServer(srv *server.Server, log *zap.Logger) *GRPCServer {
	if log == nil {
		log = zap.NewNop()
	}
	return &GRPCServer{srv: srv, log: log}
}

// Register adds the status service to a gRPC server.
func (s *GRPCServer) Register(gs grpc.ServiceRegistrar) {
	RegisterStatusServiceServer(gs, s)
}

// NewServer returns a grpc.Server with the status service registered
// and per-method prometheus metrics recorded on registerer.
func (s *GRPCServer) NewServer(registerer prometheus.Registerer, opts ...grpc.ServerOption) (*grpc.Server, error) {
	metrics := grpc_prometheus.NewServerMetrics()
	if err := registerer.Register(metrics); err != nil {
		return nil, fmt.Errorf("register grpc metrics: %w", err)
	}
	opts = append(opts,
		grpc.ChainUnaryInterceptor(metrics.UnaryServerInterceptor()),
		grpc.ChainStreamInterceptor(metrics.StreamServerInterceptor()),
	)
	gs := grpc.NewServer(opts...)
	s.Register(gs)
	metrics.InitializeMetrics(gs)
	return gs, nil
}

func (s *GRPCServer) Status(ctx context.Context, req *types.StatusQuery) (*types.Outcome, error) {
	outcome, err := s.srv.Status(ctx, *req)
	if err != nil {
		return nil, s.toStatus(err)
	}
	return &outcome, nil
}

func (s *GRPCServer) Ping(ctx context.Context, _ *PingRequest) (*PingResponse, error) {
	if err := s.srv.Ping(ctx); err != nil {
		return nil, s.toStatus(err)
	}
	return &PingResponse{}, nil
}

// toStatus maps a server error onto a gRPC status. Rejections become
// InvalidArgument so clients can rebuild them; everything else is the
// backend's fault.
func (s *GRPCServer) toStatus(err error) error {
	if rej, ok := ledgerstatus.IsRejection(err); ok {
		return status.Error(codes.InvalidArgument, rej.Error())
	}
	switch {
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	s.log.Error("status rpc failed", zap.Error(err))
	return status.Error(codes.Unavailable, err.Error())
}
