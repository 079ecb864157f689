package handler

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// NewGRPCServer returns a server exposing the store service and the standard
// health service, with the store reported as SERVING.
func NewGRPCServer(h *GRPCHandler, logger *zap.Logger) *grpc.Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := grpc.NewServer(grpc.ChainUnaryInterceptor(loggingInterceptor(logger)))
	RegisterStoreServiceServer(s, h)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(s, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(StoreServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	return s
}

func loggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.Info("grpc request",
			zap.String("method", info.FullMethod),
			zap.Stringer("code", status.Code(err)),
			zap.Duration("duration", time.Since(start)))
		return resp, err
	}
}

// StoreClient calls the store service over conn.
type StoreClient struct {
	conn grpc.ClientConnInterface
}

func NewStoreClient(conn grpc.ClientConnInterface) *StoreClient {
	return &StoreClient{conn: conn}
}

// Call invokes the named store method, e.g. "RecordSale".
func (c *StoreClient) Call(ctx context.Context, method string, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if req == nil {
		req = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, "/"+StoreServiceName+"/"+method, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
