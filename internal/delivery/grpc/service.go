package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "inventory.v1.InventoryService"

// InventoryServer is the server side of inventory.v1.InventoryService. Messages are
// google.protobuf.Struct values carrying the same JSON shapes as the HTTP API.
type InventoryServer interface {
	ListCategories(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListProducts(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	AdjustStock(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetSummary(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(s InventoryServer, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, call unaryCall) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		s := srv.(InventoryServer)
		if interceptor == nil {
			return call(s, ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: FullMethod(method),
		}
		return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
			return call(s, ctx, req.(*structpb.Struct))
		})
	}
}

// FullMethod returns the wire name of method, e.g. /inventory.v1.InventoryService/GetSummary.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*InventoryServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListCategories", Handler: unaryHandler("ListCategories", InventoryServer.ListCategories)},
		{MethodName: "ListProducts", Handler: unaryHandler("ListProducts", InventoryServer.ListProducts)},
		{MethodName: "AdjustStock", Handler: unaryHandler("AdjustStock", InventoryServer.AdjustStock)},
		{MethodName: "GetSummary", Handler: unaryHandler("GetSummary", InventoryServer.GetSummary)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "inventory/v1/inventory.proto",
}

func RegisterInventoryServer(s grpc.ServiceRegistrar, srv InventoryServer) {
	s.RegisterService(&ServiceDesc, srv)
}
