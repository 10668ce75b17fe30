package models

import (
	"context"
)

type OrderRepository interface {
	// Create fails with ErrDuplicateRequestID when the request id is taken.
	Create(ctx context.Context, order *Order) error
	Find(ctx context.Context, storeID, requestID string) (*Order, error)
	FindByRequestID(ctx context.Context, requestID string) (*Order, error)
	// UpdateStatus writes to only if the stored status is still from.
	UpdateStatus(ctx context.Context, storeID, requestID string, from, to OrderStatus) error
	List(ctx context.Context, filter OrderFilter) ([]Order, int64, error)
	// ListAll returns every order of storeID, or of all stores when storeID is empty.
	ListAll(ctx context.Context, storeID string) ([]Order, error)
}

type MenuRepository interface {
	Upsert(ctx context.Context, item *MenuItem) error
	Find(ctx context.Context, storeID, itemID string) (*MenuItem, error)
	// Save overwrites an existing item and fails with ErrItemNotFound otherwise.
	Save(ctx context.Context, item *MenuItem) error
	List(ctx context.Context, filter MenuFilter) ([]MenuItem, int64, error)
	ListByStores(ctx context.Context, storeIDs []string) ([]MenuItem, error)
	ListAll(ctx context.Context) ([]MenuItem, error)
}

type StoreRepository interface {
	Create(ctx context.Context, store *Store) error
	Find(ctx context.Context, storeID string) (*Store, error)
	// FindByLogin matches either the store id or the profile email.
	FindByLogin(ctx context.Context, login string) (*Store, error)
	Save(ctx context.Context, store *Store) error
	List(ctx context.Context, filter StoreFilter) ([]Store, int64, error)
	ListAll(ctx context.Context) ([]Store, error)
}
