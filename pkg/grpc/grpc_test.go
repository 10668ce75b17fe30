package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/example/clickmenu/pkg/auth"
	"github.com/example/clickmenu/pkg/config"
	"github.com/example/clickmenu/pkg/events"
	"github.com/example/clickmenu/pkg/models"
	"github.com/example/clickmenu/pkg/repository"
	"github.com/example/clickmenu/pkg/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type rpcFixture struct {
	orders service.OrderService
	tokens *auth.TokenIssuer
	dial   func(t *testing.T, token string) *grpc.ClientConn
}

func newRPCFixture(t *testing.T) *rpcFixture {
	t.Helper()
	logger := zap.NewNop()
	db := repository.NewMemoryStore()
	cache := repository.NewMemoryCache(time.Minute)
	passcodes := &auth.BcryptManager{Cost: bcrypt.MinCost}
	tokens := auth.NewTokenIssuer("rpc-secret", time.Hour)

	orders := service.NewOrderService(db.Orders(), db.Menu(), db.Stores(), cache, events.Nop{}, logger)
	stores := service.NewStoreService(db.Stores(), passcodes, tokens, service.AdminAccount{}, events.Nop{}, logger)
	analytics := service.NewAnalyticsService(db.Orders(), db.Menu(), db.Stores(), logger)

	ctx := context.Background()
	for _, id := range []string{"jerk-hut", "patty-place"} {
		require.NoError(t, db.Stores().Create(ctx, &models.Store{
			StoreID: id, Name: id, Status: models.StoreActive, Authorized: true, WhatsApp: "876-555-1234",
		}))
	}
	require.NoError(t, db.Menu().Upsert(ctx, &models.MenuItem{
		StoreID: "jerk-hut", ItemID: "jerk", Title: "Jerk Chicken", Category: "Mains",
		Price: decimal.NewFromInt(1200), Status: models.ItemAvailable,
	}))

	srv := NewServer(&config.Config{}, logger, orders, analytics, stores, tokens)
	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	return &rpcFixture{
		orders: orders,
		tokens: tokens,
		dial: func(t *testing.T, token string) *grpc.ClientConn {
			opts := append(DialOptions(token), grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
				return lis.DialContext(ctx)
			}))
			conn, err := grpc.NewClient("passthrough:///bufnet", opts...)
			require.NoError(t, err)
			t.Cleanup(func() { _ = conn.Close() })
			return conn
		},
	}
}

func (f *rpcFixture) adminConn(t *testing.T) *grpc.ClientConn {
	token, err := f.tokens.IssueAdmin("ops")
	require.NoError(t, err)
	return f.dial(t, token)
}

func (f *rpcFixture) placeOrder(t *testing.T) *models.Order {
	receipt, err := f.orders.CreateOrder(context.Background(), "jerk-hut", service.NewOrder{
		CustomerName:    "Keisha",
		CustomerPhone:   "876-555-0000",
		FulfillmentType: "pickup",
		Items:           []service.NewLineItem{{ItemID: "jerk", Qty: 2}},
	})
	require.NoError(t, err)
	return receipt.Order
}

func TestOrderServiceOverRPC(t *testing.T) {
	f := newRPCFixture(t)
	placed := f.placeOrder(t)
	client := NewOrderClient(f.adminConn(t))
	ctx := context.Background()

	list, err := client.ListOrders(ctx, &ListOrdersRequest{StoreID: "jerk-hut"})
	require.NoError(t, err)
	require.Equal(t, int64(1), list.Total)
	assert.Equal(t, placed.RequestID, list.Orders[0].RequestID)
	assert.True(t, decimal.NewFromInt(2400).Equal(list.Orders[0].Subtotal))

	got, err := client.GetOrder(ctx, &GetOrderRequest{StoreID: "jerk-hut", RequestID: placed.RequestID})
	require.NoError(t, err)
	assert.Equal(t, models.StatusNew, got.Status)

	updated, err := client.UpdateOrderStatus(ctx, &UpdateOrderStatusRequest{RequestID: placed.RequestID, Status: "preparing"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPreparing, updated.Status)

	_, err = client.UpdateOrderStatus(ctx, &UpdateOrderStatusRequest{RequestID: placed.RequestID, Status: "new"})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	_, err = client.GetOrder(ctx, &GetOrderRequest{StoreID: "jerk-hut", RequestID: "ORD-MISSING0"})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = client.UpdateOrderStatus(ctx, &UpdateOrderStatusRequest{RequestID: placed.RequestID, Status: "shipped"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.ListOrders(ctx, &ListOrdersRequest{Status: "shipped"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	list, err = client.ListOrders(ctx, &ListOrdersRequest{Status: "pending"})
	require.NoError(t, err)
	assert.Zero(t, list.Total)
}

func TestAnalyticsOverRPC(t *testing.T) {
	f := newRPCFixture(t)
	f.placeOrder(t)
	client := NewOrderClient(f.adminConn(t))

	res, err := client.GetAnalytics(context.Background(), &AnalyticsRequest{StoreID: "jerk-hut"})
	require.NoError(t, err)
	require.NotNil(t, res.Store)
	assert.Nil(t, res.Platform)
	assert.Equal(t, 1, res.Store.TotalOrders)

	res, err = client.GetAnalytics(context.Background(), &AnalyticsRequest{})
	require.NoError(t, err)
	require.NotNil(t, res.Platform)
	assert.Equal(t, 2, res.Platform.TotalStores)
	assert.Equal(t, 1, res.Platform.TotalOrders)
}

func TestStoreServiceOverRPC(t *testing.T) {
	f := newRPCFixture(t)
	client := NewStoreClient(f.adminConn(t))
	ctx := context.Background()

	res, err := client.BulkUpdateStores(ctx, &BulkUpdateStoresRequest{
		StoreIDs: []string{"jerk-hut", "missing", "jerk-hut"},
		Action:   "pause",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"jerk-hut"}, res.Succeeded)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, "missing", res.Failed[0].StoreID)

	store, err := client.GetStore(ctx, &GetStoreRequest{StoreID: "jerk-hut"})
	require.NoError(t, err)
	assert.Equal(t, models.StorePaused, store.Status)

	list, err := client.ListStores(ctx, &ListStoresRequest{Status: "active"})
	require.NoError(t, err)
	require.Equal(t, int64(1), list.Total)
	assert.Equal(t, "patty-place", list.Stores[0].StoreID)

	reset, err := client.BulkResetPasscodes(ctx, &BulkResetPasscodesRequest{StoreIDs: []string{"patty-place"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"patty-place"}, reset.Succeeded)
	assert.NotEmpty(t, reset.Passcodes["patty-place"])

	_, err = client.BulkUpdateStores(ctx, &BulkUpdateStoresRequest{StoreIDs: []string{"jerk-hut"}, Action: "delete"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestAdminInterceptor(t *testing.T) {
	f := newRPCFixture(t)
	ctx := context.Background()

	_, err := NewStoreClient(f.dial(t, "")).ListStores(ctx, &ListStoresRequest{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = NewStoreClient(f.dial(t, "garbage")).ListStores(ctx, &ListStoresRequest{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	merchant, err := f.tokens.IssueMerchant("jerk-hut")
	require.NoError(t, err)
	_, err = NewStoreClient(f.dial(t, merchant)).ListStores(ctx, &ListStoresRequest{})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))
}
