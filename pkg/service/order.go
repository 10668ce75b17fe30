package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/clickmenu/pkg/events"
	"github.com/example/clickmenu/pkg/models"
	"github.com/example/clickmenu/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	requestIDAttempts = 5
	defaultSource     = "storefront"
)

// NewLineItem is one requested item as submitted by the storefront.
type NewLineItem struct {
	ItemID string
	Title  string
	Qty    int
	Price  *decimal.Decimal
}

// NewOrder is the normalized order submission.
type NewOrder struct {
	CustomerName    string
	CustomerPhone   string
	CustomerEmail   string
	Notes           string
	Items           []NewLineItem
	FulfillmentType string
	Parish          string
	LocationDetails string
	DeliveryNotes   string
	PreferredTime   string
	Total           *decimal.Decimal
	Source          string
}

// Receipt is what the storefront gets back after placing an order.
type Receipt struct {
	Order       *models.Order `json:"order"`
	Summary     string        `json:"summary"`
	Message     string        `json:"message"`
	WhatsAppURL string        `json:"whatsapp_url,omitempty"`
}

type OrderService interface {
	CreateOrder(ctx context.Context, storeID string, in NewOrder) (*Receipt, error)
	GetOrder(ctx context.Context, scope Scope, storeID, requestID string) (*models.Order, error)
	// UpdateStatus moves one order to status. Admin scopes may leave storeID
	// empty and address the order by request id alone.
	UpdateStatus(ctx context.Context, scope Scope, storeID, requestID, status string) (*models.Order, error)
	ListOrders(ctx context.Context, scope Scope, filter models.OrderFilter) (*Page[models.Order], error)
}

type Option func(*options)

type options struct {
	now   func() time.Time
	newID func() string
}

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func WithRequestIDs(gen func() string) Option {
	return func(o *options) { o.newID = gen }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now, newID: NewRequestID}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewRequestID returns "ORD-" and the first 8 hex digits of a random UUID, upper-cased.
func NewRequestID() string {
	return "ORD-" + strings.ToUpper(uuid.NewString()[:8])
}

func NewOrderService(
	orders models.OrderRepository,
	menu models.MenuRepository,
	stores models.StoreRepository,
	cache Cache,
	dispatcher events.Dispatcher,
	logger *zap.Logger,
	opts ...Option,
) OrderService {
	return &orderService{
		orders:     orders,
		menu:       menu,
		stores:     stores,
		cache:      cache,
		dispatcher: dispatcher,
		logger:     logger.Named("order-service"),
		opts:       buildOptions(opts),
	}
}

type orderService struct {
	orders     models.OrderRepository
	menu       models.MenuRepository
	stores     models.StoreRepository
	cache      Cache
	dispatcher events.Dispatcher
	logger     *zap.Logger
	opts       options
}

func validateNewOrder(in NewOrder) error {
	var v validator
	v.check(strings.TrimSpace(in.CustomerName) != "", "customer_name", "is required")
	v.check(strings.TrimSpace(in.CustomerPhone) != "", "customer_phone", "is required")
	v.check(len(in.Items) > 0, "items", "must contain at least one item")
	for i, it := range in.Items {
		field := fmt.Sprintf("items[%d]", i)
		v.check(strings.TrimSpace(it.ItemID) != "", field+".item_id", "is required")
		v.check(it.Qty >= 0, field+".qty", "must not be negative")
		v.check(it.Price == nil || !it.Price.IsNegative(), field+".price", "must not be negative")
	}
	ft := models.FulfillmentType(strings.ToLower(strings.TrimSpace(in.FulfillmentType)))
	v.check(ft.Valid(), "fulfillment_type", "must be pickup or delivery")
	if ft == models.FulfillmentDelivery {
		v.check(strings.TrimSpace(in.LocationDetails) != "", "location_details", "is required for delivery")
		v.check(strings.TrimSpace(in.Parish) != "", "parish", "is required for delivery")
	}
	v.check(in.Total == nil || !in.Total.IsNegative(), "total", "must not be negative")
	return v.err()
}

func (s *orderService) CreateOrder(ctx context.Context, storeID string, in NewOrder) (*Receipt, error) {
	if err := validateNewOrder(in); err != nil {
		return nil, err
	}

	store, err := s.stores.Find(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if !store.Public() {
		return nil, models.ErrStoreNotFound
	}

	items, err := s.snapshotItems(ctx, storeID, in.Items)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		StoreID:         storeID,
		Status:          models.StatusNew,
		CustomerName:    strings.TrimSpace(in.CustomerName),
		CustomerPhone:   strings.TrimSpace(in.CustomerPhone),
		CustomerEmail:   strings.TrimSpace(in.CustomerEmail),
		Notes:           in.Notes,
		Items:           items,
		FulfillmentType: models.FulfillmentType(strings.ToLower(strings.TrimSpace(in.FulfillmentType))),
		Parish:          in.Parish,
		LocationDetails: in.LocationDetails,
		DeliveryNotes:   in.DeliveryNotes,
		PreferredTime:   in.PreferredTime,
		Source:          in.Source,
		CreatedAt:       s.opts.now(),
	}
	if order.Source == "" {
		order.Source = defaultSource
	}
	if in.Total != nil {
		order.Subtotal = *in.Total
	} else {
		order.Subtotal = order.ItemsTotal()
	}

	if err := s.insert(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("Order created",
		zap.String("request_id", order.RequestID),
		zap.String("store_id", storeID),
		zap.Int("items", len(order.Items)))

	s.dispatch(ctx, events.OrderCreated{
		RequestID:       order.RequestID,
		StoreID:         storeID,
		Subtotal:        order.Subtotal.StringFixed(2),
		ItemCount:       len(order.Items),
		FulfillmentType: string(order.FulfillmentType),
		Source:          order.Source,
		At:              order.CreatedAt,
	})

	return buildReceipt(store, order), nil
}

// insert assigns a fresh request id, retrying when one collides.
func (s *orderService) insert(ctx context.Context, order *models.Order) error {
	var err error
	for attempt := 0; attempt < requestIDAttempts; attempt++ {
		order.RequestID = s.opts.newID()
		err = s.orders.Create(ctx, order)
		if !errors.Is(err, models.ErrDuplicateRequestID) {
			return err
		}
		s.logger.Warn("Request id collision", zap.String("request_id", order.RequestID))
	}
	return fmt.Errorf("allocate request id after %d attempts: %w", requestIDAttempts, err)
}

// snapshotItems freezes title and price for each line. Catalog values win
// over submitted ones; items the catalog does not know keep what was sent.
func (s *orderService) snapshotItems(ctx context.Context, storeID string, in []NewLineItem) ([]models.LineItem, error) {
	catalog, err := s.menu.ListByStores(ctx, []string{storeID})
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*models.MenuItem, len(catalog))
	for i := range catalog {
		byID[catalog[i].ItemID] = &catalog[i]
	}

	var v validator
	out := make([]models.LineItem, 0, len(in))
	for i, it := range in {
		li := models.LineItem{ItemID: strings.TrimSpace(it.ItemID), Title: it.Title, Qty: it.Qty}
		if li.Qty == 0 {
			li.Qty = 1
		}
		if it.Price != nil {
			li.Price = *it.Price
		}
		if m, ok := byID[li.ItemID]; ok {
			v.check(m.Status.Visible(), fmt.Sprintf("items[%d]", i), "is not available")
			li.Title = m.Title
			li.Price = m.Price
		}
		if li.Title == "" {
			li.Title = "Item"
		}
		out = append(out, li)
	}
	if err := v.err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *orderService) find(ctx context.Context, storeID, requestID string) (*models.Order, error) {
	if storeID == "" {
		return s.orders.FindByRequestID(ctx, requestID)
	}
	return s.orders.Find(ctx, storeID, requestID)
}

func (s *orderService) GetOrder(ctx context.Context, scope Scope, storeID, requestID string) (*models.Order, error) {
	storeID, err := scope.storeFor(storeID)
	if err != nil {
		return nil, err
	}

	key := repository.OrderKey(requestID)
	var cached models.Order
	if err := s.cache.Load(ctx, key, &cached); err == nil {
		if storeID == "" || cached.StoreID == storeID {
			return &cached, nil
		}
		return nil, models.ErrOrderNotFound
	} else if !errors.Is(err, repository.ErrCacheMiss) {
		s.logger.Warn("Order cache read failed", zap.String("request_id", requestID), zap.Error(err))
	}

	version, verErr := s.cache.Version(ctx, key)
	if verErr != nil {
		s.logger.Warn("Order cache version read failed", zap.String("request_id", requestID), zap.Error(verErr))
	}
	order, err := s.find(ctx, storeID, requestID)
	if err != nil {
		return nil, err
	}
	if verErr == nil {
		if err := s.cache.StoreIf(ctx, key, version, order); err != nil {
			s.logger.Warn("Failed to cache order", zap.String("request_id", requestID), zap.Error(err))
		}
	}
	return order, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, scope Scope, storeID, requestID, status string) (*models.Order, error) {
	storeID, err := scope.storeFor(storeID)
	if err != nil {
		return nil, err
	}
	next, ok := models.ParseOrderStatus(status)
	if !ok {
		return nil, invalid("status", fmt.Sprintf("unknown status %q", status))
	}

	order, err := s.find(ctx, storeID, requestID)
	if err != nil {
		return nil, err
	}
	if order.Status == next {
		return order, nil
	}
	if !order.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, next)
	}

	prev := order.Status
	if err := s.orders.UpdateStatus(ctx, order.StoreID, order.RequestID, prev, next); err != nil {
		return nil, err
	}
	order.Status = next

	s.logger.Info("Order status updated",
		zap.String("request_id", order.RequestID),
		zap.String("store_id", order.StoreID),
		zap.String("from", string(prev)),
		zap.String("to", string(next)),
		zap.String("actor", scope.Actor))

	invalidate(ctx, s.cache, s.logger, repository.OrderKey(order.RequestID))
	s.dispatch(ctx, events.OrderStatusChanged{
		RequestID: order.RequestID,
		StoreID:   order.StoreID,
		From:      string(prev),
		To:        string(next),
		Actor:     scope.Actor,
		At:        s.opts.now(),
	})
	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, scope Scope, filter models.OrderFilter) (*Page[models.Order], error) {
	storeID, err := scope.storeFor(filter.StoreID)
	if err != nil {
		return nil, err
	}
	filter.StoreID = storeID
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, invalid("status", fmt.Sprintf("unknown status %q", filter.Status))
	}
	if !filter.From.IsZero() && !filter.To.IsZero() && filter.To.Before(filter.From) {
		return nil, invalid("to", "must not be before from")
	}
	filter.Page = models.NewPage(filter.Limit, filter.Offset)

	orders, total, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return newPage(orders, total, filter.Page), nil
}

func (s *orderService) dispatch(ctx context.Context, e events.Event) {
	if err := s.dispatcher.Dispatch(ctx, e); err != nil {
		s.logger.Warn("Event dispatch failed", zap.String("type", e.Type()), zap.Error(err))
	}
}
