package grpc

import (
	"context"

	"github.com/example/clickmenu/pkg/models"
	"google.golang.org/grpc"
)

const (
	orderServiceName = "clickmenu.v1.OrderService"
	storeServiceName = "clickmenu.v1.StoreService"
)

type OrderServiceServer interface {
	ListOrders(ctx context.Context, req *ListOrdersRequest) (*OrderList, error)
	GetOrder(ctx context.Context, req *GetOrderRequest) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, req *UpdateOrderStatusRequest) (*models.Order, error)
	GetAnalytics(ctx context.Context, req *AnalyticsRequest) (*AnalyticsResponse, error)
}

type StoreServiceServer interface {
	ListStores(ctx context.Context, req *ListStoresRequest) (*StoreList, error)
	GetStore(ctx context.Context, req *GetStoreRequest) (*models.Store, error)
	BulkUpdateStores(ctx context.Context, req *BulkUpdateStoresRequest) (*BulkResponse, error)
	BulkResetPasscodes(ctx context.Context, req *BulkResetPasscodesRequest) (*BulkResponse, error)
}

func fullMethod(service, method string) string {
	return "/" + service + "/" + method
}

// unary adapts a typed server method to grpc.MethodHandler, running the
// configured interceptor chain the way generated code does.
func unary[S any, Req any, Resp any](service, method string, call func(S, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(S), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(service, method)}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(S), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var OrderServiceDesc = grpc.ServiceDesc{
	ServiceName: orderServiceName,
	HandlerType: (*OrderServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(orderServiceName, "ListOrders", OrderServiceServer.ListOrders),
		unary(orderServiceName, "GetOrder", OrderServiceServer.GetOrder),
		unary(orderServiceName, "UpdateOrderStatus", OrderServiceServer.UpdateOrderStatus),
		unary(orderServiceName, "GetAnalytics", OrderServiceServer.GetAnalytics),
	},
	Streams: []grpc.StreamDesc{},
}

var StoreServiceDesc = grpc.ServiceDesc{
	ServiceName: storeServiceName,
	HandlerType: (*StoreServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(storeServiceName, "ListStores", StoreServiceServer.ListStores),
		unary(storeServiceName, "GetStore", StoreServiceServer.GetStore),
		unary(storeServiceName, "BulkUpdateStores", StoreServiceServer.BulkUpdateStores),
		unary(storeServiceName, "BulkResetPasscodes", StoreServiceServer.BulkResetPasscodes),
	},
	Streams: []grpc.StreamDesc{},
}
