package grpc

import (
	"context"

	"github.com/example/clickmenu/pkg/models"
	"github.com/example/clickmenu/pkg/service"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// OrderServer exposes order operations and analytics to operator tooling.
type OrderServer struct {
	orders    service.OrderService
	analytics service.AnalyticsService
	logger    *zap.Logger
}

func NewOrderServer(orders service.OrderService, analytics service.AnalyticsService, logger *zap.Logger) *OrderServer {
	return &OrderServer{orders: orders, analytics: analytics, logger: logger.Named("order-rpc")}
}

func (s *OrderServer) ListOrders(ctx context.Context, req *ListOrdersRequest) (*OrderList, error) {
	filter := models.OrderFilter{
		StoreID: req.StoreID,
		Query:   req.Query,
		From:    req.From,
		To:      req.To,
		Page:    models.Page{Limit: req.Limit, Offset: req.Offset},
	}
	if req.Status != "" {
		st, ok := models.ParseOrderStatus(req.Status)
		if !ok {
			return nil, status.Errorf(codes.InvalidArgument, "unknown status %q", req.Status)
		}
		filter.Status = st
	}

	page, err := s.orders.ListOrders(ctx, scopeFromContext(ctx), filter)
	if err != nil {
		return nil, toStatus(s.logger, "ListOrders", err)
	}
	return &OrderList{Orders: page.Items, Total: page.Total, Limit: page.Limit, Offset: page.Offset}, nil
}

func (s *OrderServer) GetOrder(ctx context.Context, req *GetOrderRequest) (*models.Order, error) {
	order, err := s.orders.GetOrder(ctx, scopeFromContext(ctx), req.StoreID, req.RequestID)
	if err != nil {
		return nil, toStatus(s.logger, "GetOrder", err)
	}
	return order, nil
}

func (s *OrderServer) UpdateOrderStatus(ctx context.Context, req *UpdateOrderStatusRequest) (*models.Order, error) {
	order, err := s.orders.UpdateStatus(ctx, scopeFromContext(ctx), req.StoreID, req.RequestID, req.Status)
	if err != nil {
		return nil, toStatus(s.logger, "UpdateOrderStatus", err)
	}
	s.logger.Info("Order status updated over RPC",
		zap.String("request_id", order.RequestID),
		zap.String("status", string(order.Status)))
	return order, nil
}

func (s *OrderServer) GetAnalytics(ctx context.Context, req *AnalyticsRequest) (*AnalyticsResponse, error) {
	scope := scopeFromContext(ctx)
	if req.StoreID != "" {
		summary, err := s.analytics.MerchantAnalytics(ctx, scope, req.StoreID)
		if err != nil {
			return nil, toStatus(s.logger, "GetAnalytics", err)
		}
		return &AnalyticsResponse{Store: summary}, nil
	}
	summary, err := s.analytics.PlatformAnalytics(ctx, scope)
	if err != nil {
		return nil, toStatus(s.logger, "GetAnalytics", err)
	}
	return &AnalyticsResponse{Platform: summary}, nil
}
