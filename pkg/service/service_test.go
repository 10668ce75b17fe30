package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/example/clickmenu/pkg/auth"
	"github.com/example/clickmenu/pkg/events"
	"github.com/example/clickmenu/pkg/models"
	"github.com/example/clickmenu/pkg/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var now = time.Date(2024, 6, 5, 12, 0, 0, 0, time.UTC)

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Dispatch(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type())
	}
	return out
}

func (r *recorder) reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}

type fixture struct {
	db        *repository.MemoryStore
	cache     *repository.MemoryCache
	events    *recorder
	passcodes auth.PasscodeManager
	tokens    *auth.TokenIssuer

	orders    OrderService
	menu      MenuService
	stores    StoreService
	analytics AnalyticsService
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		db:        repository.NewMemoryStore().WithClock(func() time.Time { return now }),
		cache:     repository.NewMemoryCache(time.Minute).WithClock(func() time.Time { return now }),
		events:    &recorder{},
		passcodes: &auth.BcryptManager{Cost: bcrypt.MinCost},
		tokens:    auth.NewTokenIssuer("test-secret", time.Hour),
	}
	logger := zap.NewNop()
	opts = append([]Option{WithClock(func() time.Time { return now })}, opts...)

	adminHash, err := f.passcodes.Hash("hunter2")
	require.NoError(t, err)

	f.orders = NewOrderService(f.db.Orders(), f.db.Menu(), f.db.Stores(), f.cache, f.events, logger, opts...)
	f.menu = NewMenuService(f.db.Menu(), f.db.Stores(), f.events, logger, opts...)
	f.stores = NewStoreService(f.db.Stores(), f.passcodes, f.tokens,
		AdminAccount{Username: "ops", PasswordHash: adminHash}, f.events, logger, opts...)
	f.analytics = NewAnalyticsService(f.db.Orders(), f.db.Menu(), f.db.Stores(), logger, opts...)
	return f
}

func (f *fixture) store(t *testing.T, id string, status models.StoreStatus, authorized bool) {
	t.Helper()
	hash, err := f.passcodes.Hash("pass-" + id)
	require.NoError(t, err)
	require.NoError(t, f.db.Stores().Create(context.Background(), &models.Store{
		StoreID:      id,
		Name:         "Store " + id,
		Status:       status,
		Authorized:   authorized,
		WhatsApp:     "+1 (876) 555-1234",
		ProfileEmail: id + "@example.com",
		PasscodeHash: hash,
		CreatedAt:    now.Add(-48 * time.Hour),
		UpdatedAt:    now.Add(-48 * time.Hour),
	}))
}

func (f *fixture) item(t *testing.T, storeID, itemID, title string, price int64, status models.ItemStatus) {
	t.Helper()
	require.NoError(t, f.db.Menu().Upsert(context.Background(), &models.MenuItem{
		StoreID:  storeID,
		ItemID:   itemID,
		Title:    title,
		Category: "Mains",
		Price:    decimal.NewFromInt(price),
		Status:   status,
	}))
}

func pickup(items ...NewLineItem) NewOrder {
	return NewOrder{
		CustomerName:    "Keisha",
		CustomerPhone:   "876-555-0000",
		FulfillmentType: "pickup",
		Items:           items,
	}
}

func price(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}
