package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type FulfillmentType string

const (
	FulfillmentPickup   FulfillmentType = "pickup"
	FulfillmentDelivery FulfillmentType = "delivery"
)

func (f FulfillmentType) Valid() bool {
	return f == FulfillmentPickup || f == FulfillmentDelivery
}

// Order is a customer order request. RequestID is the only handle exposed
// outside the owning store. Status is the only column written after insert.
type Order struct {
	RequestID       string                        `gorm:"primaryKey;type:varchar(32);uniqueIndex:idx_orders_store_request,priority:2" json:"request_id"`
	StoreID         string                        `gorm:"type:varchar(64);not null;uniqueIndex:idx_orders_store_request,priority:1;index:idx_orders_store_created,priority:1" json:"store_id"`
	Status          OrderStatus                   `gorm:"type:varchar(20);not null;default:'new';index" json:"status"`
	CustomerName    string                        `gorm:"type:varchar(120);not null" json:"customer_name"`
	CustomerPhone   string                        `gorm:"type:varchar(40);not null" json:"customer_phone"`
	CustomerEmail   string                        `gorm:"type:varchar(191)" json:"customer_email,omitempty"`
	Notes           string                        `gorm:"type:text" json:"notes,omitempty"`
	Items           datatypes.JSONSlice[LineItem] `gorm:"type:json" json:"items"`
	FulfillmentType FulfillmentType               `gorm:"type:varchar(16);not null" json:"fulfillment_type"`
	Parish          string                        `gorm:"type:varchar(64)" json:"parish,omitempty"`
	LocationDetails string                        `gorm:"type:text" json:"location_details,omitempty"`
	DeliveryNotes   string                        `gorm:"type:text" json:"delivery_notes,omitempty"`
	PreferredTime   string                        `gorm:"type:varchar(64)" json:"preferred_time,omitempty"`
	Subtotal        decimal.Decimal               `gorm:"type:decimal(10,2)" json:"subtotal"`
	Source          string                        `gorm:"type:varchar(32)" json:"source"`
	CreatedAt       time.Time                     `gorm:"index:idx_orders_store_created,priority:2" json:"created_at"`
}

func (Order) TableName() string {
	return "orders"
}

// LineItem is the price and title of a menu item captured when the order was placed.
type LineItem struct {
	ItemID string          `json:"item_id"`
	Title  string          `json:"title"`
	Qty    int             `json:"qty"`
	Price  decimal.Decimal `json:"price"`
}

// Quantity treats an absent or non-positive qty as a single unit.
func (l LineItem) Quantity() int {
	if l.Qty <= 0 {
		return 1
	}
	return l.Qty
}

func (l LineItem) Total() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity())))
}

// ItemsTotal sums qty x price over the snapshot.
func (o *Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.Total())
	}
	return total
}
