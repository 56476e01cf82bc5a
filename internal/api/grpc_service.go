package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ItemCatalogServiceName is the fully qualified gRPC service name.
const ItemCatalogServiceName = "itemcatalog.v1.ItemCatalog"

// ItemCatalogServer is the server API for the ItemCatalog service. Requests
// and responses are google.protobuf.Struct messages; the field layout of
// each method is documented on GRPCHandler.
type ItemCatalogServer interface {
	ListItems(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetItem(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SearchItems(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListByCategories(context.Context, *structpb.Struct) (*structpb.Struct, error)
	FilterItems(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateItem(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateItem(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type structMethod func(ItemCatalogServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(name string, call structMethod) grpc.MethodDesc {
	fullMethod := "/" + ItemCatalogServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(ItemCatalogServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(ItemCatalogServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ItemCatalogServiceDesc describes the ItemCatalog service for grpc.Server.
var ItemCatalogServiceDesc = grpc.ServiceDesc{
	ServiceName: ItemCatalogServiceName,
	HandlerType: (*ItemCatalogServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler("ListItems", ItemCatalogServer.ListItems),
		unaryHandler("GetItem", ItemCatalogServer.GetItem),
		unaryHandler("SearchItems", ItemCatalogServer.SearchItems),
		unaryHandler("ListByCategories", ItemCatalogServer.ListByCategories),
		unaryHandler("FilterItems", ItemCatalogServer.FilterItems),
		unaryHandler("CreateItem", ItemCatalogServer.CreateItem),
		unaryHandler("UpdateItem", ItemCatalogServer.UpdateItem),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "itemcatalog/v1/item_catalog.proto",
}

// RegisterItemCatalogServer registers srv on s.
func RegisterItemCatalogServer(s grpc.ServiceRegistrar, srv ItemCatalogServer) {
	s.RegisterService(&ItemCatalogServiceDesc, srv)
}

// ItemCatalogClient calls the ItemCatalog service.
type ItemCatalogClient struct {
	cc grpc.ClientConnInterface
}

// NewItemCatalogClient wraps a client connection.
func NewItemCatalogClient(cc grpc.ClientConnInterface) *ItemCatalogClient {
	return &ItemCatalogClient{cc: cc}
}

// Call invokes method with in and returns the response struct.
func (c *ItemCatalogClient) Call(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ItemCatalogServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
