package grpc

import (
	"context"
	"fmt"
	"time"

	"github.com/example/clickmenu/pkg/config"
	"github.com/example/clickmenu/pkg/discovery"
	"github.com/example/clickmenu/pkg/models"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// OrderClient calls OrderService on a remote order process.
type OrderClient struct {
	cc grpc.ClientConnInterface
}

func NewOrderClient(cc grpc.ClientConnInterface) *OrderClient {
	return &OrderClient{cc: cc}
}

func (c *OrderClient) ListOrders(ctx context.Context, in *ListOrdersRequest) (*OrderList, error) {
	out := new(OrderList)
	if err := c.cc.Invoke(ctx, fullMethod(orderServiceName, "ListOrders"), in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OrderClient) GetOrder(ctx context.Context, in *GetOrderRequest) (*models.Order, error) {
	out := new(models.Order)
	if err := c.cc.Invoke(ctx, fullMethod(orderServiceName, "GetOrder"), in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OrderClient) UpdateOrderStatus(ctx context.Context, in *UpdateOrderStatusRequest) (*models.Order, error) {
	out := new(models.Order)
	if err := c.cc.Invoke(ctx, fullMethod(orderServiceName, "UpdateOrderStatus"), in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OrderClient) GetAnalytics(ctx context.Context, in *AnalyticsRequest) (*AnalyticsResponse, error) {
	out := new(AnalyticsResponse)
	if err := c.cc.Invoke(ctx, fullMethod(orderServiceName, "GetAnalytics"), in, out); err != nil {
		return nil, err
	}
	return out, nil
}

// StoreClient calls StoreService on a remote order process.
type StoreClient struct {
	cc grpc.ClientConnInterface
}

func NewStoreClient(cc grpc.ClientConnInterface) *StoreClient {
	return &StoreClient{cc: cc}
}

func (c *StoreClient) ListStores(ctx context.Context, in *ListStoresRequest) (*StoreList, error) {
	out := new(StoreList)
	if err := c.cc.Invoke(ctx, fullMethod(storeServiceName, "ListStores"), in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *StoreClient) GetStore(ctx context.Context, in *GetStoreRequest) (*models.Store, error) {
	out := new(models.Store)
	if err := c.cc.Invoke(ctx, fullMethod(storeServiceName, "GetStore"), in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *StoreClient) BulkUpdateStores(ctx context.Context, in *BulkUpdateStoresRequest) (*BulkResponse, error) {
	out := new(BulkResponse)
	if err := c.cc.Invoke(ctx, fullMethod(storeServiceName, "BulkUpdateStores"), in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *StoreClient) BulkResetPasscodes(ctx context.Context, in *BulkResetPasscodesRequest) (*BulkResponse, error) {
	out := new(BulkResponse)
	if err := c.cc.Invoke(ctx, fullMethod(storeServiceName, "BulkResetPasscodes"), in, out); err != nil {
		return nil, err
	}
	return out, nil
}

// DialOptions are the options every client connection needs: the JSON
// codec and the bearer token.
func DialOptions(token string) []grpc.DialOption {
	return []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codecName)),
		grpc.WithPerRPCCredentials(tokenCredentials(token)),
	}
}

// ClientManager holds the connection to the order process.
type ClientManager struct {
	config    *config.Config
	discovery *discovery.ServiceDiscovery
	logger    *zap.Logger

	orderClient *OrderClient
	storeClient *StoreClient

	conn *grpc.ClientConn
}

// NewClientManager prepares a manager. disc may be nil, in which case the
// configured server address is used directly.
func NewClientManager(cfg *config.Config, logger *zap.Logger, disc *discovery.ServiceDiscovery) *ClientManager {
	return &ClientManager{
		config:    cfg,
		discovery: disc,
		logger:    logger,
	}
}

// Connect resolves the order service, preferring an etcd registration over
// addr, and opens one connection shared by both clients.
func (m *ClientManager) Connect(addr, token string) error {
	target := addr
	if target == "" {
		target = fmt.Sprintf("%s:%d", m.config.Server.Host, m.config.Server.Port)
	}

	if m.discovery != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		instances, err := m.discovery.Discover(ctx, m.config.Server.Name)
		if err == nil && len(instances) > 0 {
			target = instances[0].Addr()
			m.logger.Info("Discovered order service", zap.String("address", target))
		} else {
			m.logger.Info("Using default address for order service", zap.String("address", target), zap.Error(err))
		}
	}

	conn, err := grpc.NewClient(target, DialOptions(token)...)
	if err != nil {
		return fmt.Errorf("failed to connect to order service: %w", err)
	}

	m.conn = conn
	m.orderClient = NewOrderClient(conn)
	m.storeClient = NewStoreClient(conn)

	m.logger.Debug("Order service client ready", zap.String("target", target))
	return nil
}

func (m *ClientManager) OrderClient() *OrderClient {
	return m.orderClient
}

func (m *ClientManager) StoreClient() *StoreClient {
	return m.storeClient
}

func (m *ClientManager) Close() error {
	if m.conn == nil {
		return nil
	}
	if err := m.conn.Close(); err != nil {
		return fmt.Errorf("order connection close error: %w", err)
	}
	return nil
}
