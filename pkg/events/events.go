// Package events carries domain events from the services to their sinks.
package events

import (
	"context"
	"time"
)

const (
	TypeOrderCreated       = "order.created"
	TypeOrderStatusChanged = "order.status_changed"
	TypeMenuItemChanged    = "menu.item_changed"
	TypeStoreChanged       = "store.changed"
	TypePasscodeReset      = "store.passcode_reset"
	TypeStoresBulkUpdated  = "stores.bulk_updated"
)

type Event interface {
	Type() string
	// Key is the partition key; events of one store share it.
	Key() string
	Time() time.Time
}

// Dispatcher hands events to the sinks without blocking the caller on them.
type Dispatcher interface {
	Dispatch(ctx context.Context, event Event) error
}

type Sink interface {
	Handle(ctx context.Context, event Event) error
}

type OrderCreated struct {
	RequestID       string    `json:"request_id"`
	StoreID         string    `json:"store_id"`
	Subtotal        string    `json:"subtotal"`
	ItemCount       int       `json:"item_count"`
	FulfillmentType string    `json:"fulfillment_type"`
	Source          string    `json:"source"`
	At              time.Time `json:"at"`
}

func (e OrderCreated) Type() string    { return TypeOrderCreated }
func (e OrderCreated) Key() string     { return e.StoreID }
func (e OrderCreated) Time() time.Time { return e.At }

type OrderStatusChanged struct {
	RequestID string    `json:"request_id"`
	StoreID   string    `json:"store_id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Actor     string    `json:"actor"`
	At        time.Time `json:"at"`
}

func (e OrderStatusChanged) Type() string    { return TypeOrderStatusChanged }
func (e OrderStatusChanged) Key() string     { return e.StoreID }
func (e OrderStatusChanged) Time() time.Time { return e.At }

type MenuItemChanged struct {
	StoreID string    `json:"store_id"`
	ItemID  string    `json:"item_id"`
	Status  string    `json:"status"`
	Actor   string    `json:"actor"`
	At      time.Time `json:"at"`
}

func (e MenuItemChanged) Type() string    { return TypeMenuItemChanged }
func (e MenuItemChanged) Key() string     { return e.StoreID }
func (e MenuItemChanged) Time() time.Time { return e.At }

type StoreChanged struct {
	StoreID string    `json:"store_id"`
	Status  string    `json:"status"`
	Actor   string    `json:"actor"`
	At      time.Time `json:"at"`
}

func (e StoreChanged) Type() string    { return TypeStoreChanged }
func (e StoreChanged) Key() string     { return e.StoreID }
func (e StoreChanged) Time() time.Time { return e.At }

type PasscodeReset struct {
	StoreID string    `json:"store_id"`
	Actor   string    `json:"actor"`
	At      time.Time `json:"at"`
}

func (e PasscodeReset) Type() string    { return TypePasscodeReset }
func (e PasscodeReset) Key() string     { return e.StoreID }
func (e PasscodeReset) Time() time.Time { return e.At }

type StoresBulkUpdated struct {
	Action    string    `json:"action"`
	Succeeded []string  `json:"succeeded"`
	Failed    []string  `json:"failed"`
	Actor     string    `json:"actor"`
	At        time.Time `json:"at"`
}

func (e StoresBulkUpdated) Type() string    { return TypeStoresBulkUpdated }
func (e StoresBulkUpdated) Key() string     { return "admin" }
func (e StoresBulkUpdated) Time() time.Time { return e.At }

// Nop drops every event.
type Nop struct{}

func (Nop) Dispatch(context.Context, Event) error { return nil }
