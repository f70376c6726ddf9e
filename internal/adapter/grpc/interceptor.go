package grpc

import (
	"context"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/simaogato/portfolio-backend/internal/logger"
)

// RequestIDKey is the metadata key carrying the request id
const RequestIDKey = "x-request-id"

// LoggingInterceptor returns a gRPC unary server interceptor that tags each call
// with a request id, echoed back in the response header, and logs its outcome.
// An incoming x-request-id is reused.
func LoggingInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		requestID := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if ids := md.Get(RequestIDKey); len(ids) > 0 {
				requestID = ids[0]
			}
		}
		if requestID == "" {
			requestID = uuid.NewString()
		}
		_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDKey, requestID))

		start := time.Now()
		resp, err := handler(ctx, req)

		logger.With(
			"request_id", requestID,
			"method", info.FullMethod,
			"code", status.Code(err).String(),
			"latency", time.Since(start),
		).Info("grpc call")

		return resp, err
	}
}

// DeadlineInterceptor returns a gRPC unary server interceptor that bounds every
// call by timeout unless the client already asked for an earlier deadline.
func DeadlineInterceptor(timeout time.Duration) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		if timeout <= 0 {
			return handler(ctx, req)
		}
		if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) <= timeout {
			return handler(ctx, req)
		}

		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return handler(ctx, req)
	}
}
