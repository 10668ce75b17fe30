package models

import "errors"

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrItemNotFound       = errors.New("menu item not found")
	ErrStoreNotFound      = errors.New("store not found")
	ErrStoreExists        = errors.New("store already exists")
	ErrDuplicateRequestID = errors.New("duplicate request id")
	// ErrStatusConflict means the order left the expected status before the write landed.
	ErrStatusConflict = errors.New("order status changed concurrently")
)
