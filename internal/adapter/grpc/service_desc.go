package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully-qualified gRPC service name
const ServiceName = "portfolio.v1.PortfolioService"

// PortfolioServiceServer is the server API for portfolio.v1.PortfolioService.
// Every method exchanges google.protobuf.Struct messages.
type PortfolioServiceServer interface {
	CreateBucket(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteBucket(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListBuckets(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AddOrder(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AddToBuckets(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RemoveFromBuckets(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetPosition(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetBucketPosition(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetAvailableDates(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(PortfolioServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// FullMethod returns the invocation path of a method, e.g. /portfolio.v1.PortfolioService/AddOrder
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

func unaryHandler(method string, call unaryMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(PortfolioServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(PortfolioServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc describes portfolio.v1.PortfolioService for grpc.Server.RegisterService
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PortfolioServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler("CreateBucket", PortfolioServiceServer.CreateBucket),
		unaryHandler("DeleteBucket", PortfolioServiceServer.DeleteBucket),
		unaryHandler("ListBuckets", PortfolioServiceServer.ListBuckets),
		unaryHandler("AddOrder", PortfolioServiceServer.AddOrder),
		unaryHandler("AddToBuckets", PortfolioServiceServer.AddToBuckets),
		unaryHandler("RemoveFromBuckets", PortfolioServiceServer.RemoveFromBuckets),
		unaryHandler("GetPosition", PortfolioServiceServer.GetPosition),
		unaryHandler("GetBucketPosition", PortfolioServiceServer.GetBucketPosition),
		unaryHandler("GetAvailableDates", PortfolioServiceServer.GetAvailableDates),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "portfolio/v1/portfolio.proto",
}

// RegisterPortfolioServiceServer registers srv on a gRPC server
func RegisterPortfolioServiceServer(s grpc.ServiceRegistrar, srv PortfolioServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}
