package service

import (
	"context"

	"github.com/example/clickmenu/pkg/analytics"
	"github.com/example/clickmenu/pkg/models"
	"go.uber.org/zap"
)

// AnalyticsService loads a scope's orders and items and aggregates them.
// Every call reads fresh records, so the today and week windows follow
// the service clock.
type AnalyticsService interface {
	MerchantAnalytics(ctx context.Context, scope Scope, storeID string) (*analytics.Summary, error)
	PlatformAnalytics(ctx context.Context, scope Scope) (*analytics.PlatformSummary, error)
}

func NewAnalyticsService(
	orders models.OrderRepository,
	menu models.MenuRepository,
	stores models.StoreRepository,
	logger *zap.Logger,
	opts ...Option,
) AnalyticsService {
	return &analyticsService{
		orders: orders,
		menu:   menu,
		stores: stores,
		logger: logger.Named("analytics-service"),
		opts:   buildOptions(opts),
	}
}

type analyticsService struct {
	orders models.OrderRepository
	menu   models.MenuRepository
	stores models.StoreRepository
	logger *zap.Logger
	opts   options
}

func (s *analyticsService) MerchantAnalytics(ctx context.Context, scope Scope, storeID string) (*analytics.Summary, error) {
	storeID, err := scope.storeFor(storeID)
	if err != nil {
		return nil, err
	}
	if storeID == "" {
		return nil, invalid("store_id", "is required")
	}

	if _, err := s.stores.Find(ctx, storeID); err != nil {
		return nil, err
	}
	orders, err := s.orders.ListAll(ctx, storeID)
	if err != nil {
		return nil, err
	}
	items, err := s.menu.ListByStores(ctx, []string{storeID})
	if err != nil {
		return nil, err
	}

	summary := analytics.Aggregate(orders, items, s.opts.now())
	s.logger.Debug("Store analytics computed",
		zap.String("store_id", storeID),
		zap.Int("orders", len(orders)),
		zap.Int("items", len(items)))
	return &summary, nil
}

func (s *analyticsService) PlatformAnalytics(ctx context.Context, scope Scope) (*analytics.PlatformSummary, error) {
	if !scope.Admin {
		return nil, ErrScope
	}

	stores, err := s.stores.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	orders, err := s.orders.ListAll(ctx, "")
	if err != nil {
		return nil, err
	}
	items, err := s.menu.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	summary := analytics.Platform(stores, orders, items, s.opts.now())
	s.logger.Debug("Platform analytics computed",
		zap.Int("stores", len(stores)),
		zap.Int("orders", len(orders)))
	return &summary, nil
}
