package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/example/clickmenu/pkg/models"
)

type itemKey struct {
	storeID string
	itemID  string
}

// MemoryStore keeps stores, menu items and orders in maps. Each instance is
// independent; it backs tests and the "memory" storage driver.
type MemoryStore struct {
	mu     sync.RWMutex
	orders map[string]*models.Order
	items  map[itemKey]*models.MenuItem
	stores map[string]*models.Store
	now    func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		orders: make(map[string]*models.Order),
		items:  make(map[itemKey]*models.MenuItem),
		stores: make(map[string]*models.Store),
		now:    time.Now,
	}
}

// WithClock makes the store stamp created_at/updated_at from now.
func (m *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	m.now = now
	return m
}

// Reset drops every record.
func (m *MemoryStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders = make(map[string]*models.Order)
	m.items = make(map[itemKey]*models.MenuItem)
	m.stores = make(map[string]*models.Store)
}

func (m *MemoryStore) Orders() models.OrderRepository { return memoryOrders{m} }
func (m *MemoryStore) Menu() models.MenuRepository    { return memoryMenu{m} }
func (m *MemoryStore) Stores() models.StoreRepository { return memoryStores{m} }

func copyOrder(o *models.Order) *models.Order {
	c := *o
	c.Items = append([]models.LineItem(nil), o.Items...)
	return &c
}

func copyItem(it *models.MenuItem) *models.MenuItem {
	c := *it
	if it.ImageURLs != nil {
		c.ImageURLs = append([]string(nil), it.ImageURLs...)
	}
	return &c
}

func copyStore(s *models.Store) *models.Store {
	c := *s
	return &c
}

type memoryOrders struct{ m *MemoryStore }

func (r memoryOrders) Create(_ context.Context, order *models.Order) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.orders[order.RequestID]; ok {
		return models.ErrDuplicateRequestID
	}
	now := r.m.now()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	r.m.orders[order.RequestID] = copyOrder(order)
	return nil
}

func (r memoryOrders) Find(_ context.Context, storeID, requestID string) (*models.Order, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	o, ok := r.m.orders[requestID]
	if !ok || o.StoreID != storeID {
		return nil, models.ErrOrderNotFound
	}
	return copyOrder(o), nil
}

func (r memoryOrders) FindByRequestID(_ context.Context, requestID string) (*models.Order, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	o, ok := r.m.orders[requestID]
	if !ok {
		return nil, models.ErrOrderNotFound
	}
	return copyOrder(o), nil
}

func (r memoryOrders) UpdateStatus(_ context.Context, storeID, requestID string, from, to models.OrderStatus) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	o, ok := r.m.orders[requestID]
	if !ok || o.StoreID != storeID {
		return models.ErrOrderNotFound
	}
	if o.Status != from {
		return models.ErrStatusConflict
	}
	o.Status = to
	return nil
}

// sortOrders orders newest first, request id ascending on ties.
func sortOrders(orders []models.Order) {
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.After(orders[j].CreatedAt)
		}
		return orders[i].RequestID < orders[j].RequestID
	})
}

func (r memoryOrders) List(_ context.Context, f models.OrderFilter) ([]models.Order, int64, error) {
	r.m.mu.RLock()
	var matched []models.Order
	for _, o := range r.m.orders {
		if f.Match(o) {
			matched = append(matched, *copyOrder(o))
		}
	}
	r.m.mu.RUnlock()

	sortOrders(matched)
	start, end := f.Page.Slice(len(matched))
	return append([]models.Order{}, matched[start:end]...), int64(len(matched)), nil
}

func (r memoryOrders) ListAll(_ context.Context, storeID string) ([]models.Order, error) {
	r.m.mu.RLock()
	out := []models.Order{}
	for _, o := range r.m.orders {
		if storeID == "" || o.StoreID == storeID {
			out = append(out, *copyOrder(o))
		}
	}
	r.m.mu.RUnlock()
	sortOrders(out)
	return out, nil
}

type memoryMenu struct{ m *MemoryStore }

func (r memoryMenu) Upsert(_ context.Context, item *models.MenuItem) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	k := itemKey{item.StoreID, item.ItemID}
	now := r.m.now()
	if prev, ok := r.m.items[k]; ok {
		item.CreatedAt = prev.CreatedAt
	} else if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now
	r.m.items[k] = copyItem(item)
	return nil
}

func (r memoryMenu) Find(_ context.Context, storeID, itemID string) (*models.MenuItem, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	it, ok := r.m.items[itemKey{storeID, itemID}]
	if !ok {
		return nil, models.ErrItemNotFound
	}
	return copyItem(it), nil
}

func (r memoryMenu) Save(_ context.Context, item *models.MenuItem) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	k := itemKey{item.StoreID, item.ItemID}
	prev, ok := r.m.items[k]
	if !ok {
		return models.ErrItemNotFound
	}
	item.CreatedAt = prev.CreatedAt
	r.m.items[k] = copyItem(item)
	return nil
}

func (r memoryMenu) List(_ context.Context, f models.MenuFilter) ([]models.MenuItem, int64, error) {
	r.m.mu.RLock()
	var matched []models.MenuItem
	for _, it := range r.m.items {
		if f.Match(it) {
			matched = append(matched, *copyItem(it))
		}
	}
	r.m.mu.RUnlock()

	sortItems(matched)
	start, end := f.Page.Slice(len(matched))
	return append([]models.MenuItem{}, matched[start:end]...), int64(len(matched)), nil
}

func (r memoryMenu) ListByStores(_ context.Context, storeIDs []string) ([]models.MenuItem, error) {
	want := make(map[string]bool, len(storeIDs))
	for _, id := range storeIDs {
		want[id] = true
	}
	r.m.mu.RLock()
	out := []models.MenuItem{}
	for _, it := range r.m.items {
		if want[it.StoreID] {
			out = append(out, *copyItem(it))
		}
	}
	r.m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.StoreID != b.StoreID {
			return a.StoreID < b.StoreID
		}
		if a.Featured != b.Featured {
			return a.Featured
		}
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		return a.ItemID < b.ItemID
	})
	return out, nil
}

func (r memoryMenu) ListAll(_ context.Context) ([]models.MenuItem, error) {
	r.m.mu.RLock()
	out := make([]models.MenuItem, 0, len(r.m.items))
	for _, it := range r.m.items {
		out = append(out, *copyItem(it))
	}
	r.m.mu.RUnlock()
	sortItems(out)
	return out, nil
}

func sortItems(items []models.MenuItem) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].StoreID != items[j].StoreID {
			return items[i].StoreID < items[j].StoreID
		}
		return items[i].ItemID < items[j].ItemID
	})
}

type memoryStores struct{ m *MemoryStore }

func (r memoryStores) Create(_ context.Context, store *models.Store) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.stores[store.StoreID]; ok {
		return models.ErrStoreExists
	}
	now := r.m.now()
	if store.CreatedAt.IsZero() {
		store.CreatedAt = now
	}
	if store.UpdatedAt.IsZero() {
		store.UpdatedAt = store.CreatedAt
	}
	r.m.stores[store.StoreID] = copyStore(store)
	return nil
}

func (r memoryStores) Find(_ context.Context, storeID string) (*models.Store, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	s, ok := r.m.stores[storeID]
	if !ok {
		return nil, models.ErrStoreNotFound
	}
	return copyStore(s), nil
}

func (r memoryStores) FindByLogin(_ context.Context, login string) (*models.Store, error) {
	login = strings.TrimSpace(login)
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	if s, ok := r.m.stores[login]; ok {
		return copyStore(s), nil
	}
	var found *models.Store
	for _, s := range r.m.stores {
		if s.ProfileEmail != "" && strings.EqualFold(s.ProfileEmail, login) {
			if found == nil || s.StoreID < found.StoreID {
				found = s
			}
		}
	}
	if found == nil {
		return nil, models.ErrStoreNotFound
	}
	return copyStore(found), nil
}

func (r memoryStores) Save(_ context.Context, store *models.Store) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	prev, ok := r.m.stores[store.StoreID]
	if !ok {
		return models.ErrStoreNotFound
	}
	store.CreatedAt = prev.CreatedAt
	r.m.stores[store.StoreID] = copyStore(store)
	return nil
}

func sortStores(stores []models.Store) {
	sort.Slice(stores, func(i, j int) bool {
		if !stores[i].CreatedAt.Equal(stores[j].CreatedAt) {
			return stores[i].CreatedAt.After(stores[j].CreatedAt)
		}
		return stores[i].StoreID < stores[j].StoreID
	})
}

func (r memoryStores) List(_ context.Context, f models.StoreFilter) ([]models.Store, int64, error) {
	r.m.mu.RLock()
	var matched []models.Store
	for _, s := range r.m.stores {
		if f.Match(s) {
			matched = append(matched, *s)
		}
	}
	r.m.mu.RUnlock()

	sortStores(matched)
	start, end := f.Page.Slice(len(matched))
	return append([]models.Store{}, matched[start:end]...), int64(len(matched)), nil
}

func (r memoryStores) ListAll(_ context.Context) ([]models.Store, error) {
	r.m.mu.RLock()
	out := make([]models.Store, 0, len(r.m.stores))
	for _, s := range r.m.stores {
		out = append(out, *s)
	}
	r.m.mu.RUnlock()
	sortStores(out)
	return out, nil
}
