package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type ItemStatus string

const (
	ItemAvailable ItemStatus = "available"
	ItemLimited   ItemStatus = "limited"
	ItemSoldOut   ItemStatus = "sold_out"
	ItemHidden    ItemStatus = "hidden"
)

func (s ItemStatus) Valid() bool {
	switch s {
	case ItemAvailable, ItemLimited, ItemSoldOut, ItemHidden:
		return true
	}
	return false
}

// Visible reports whether shoppers can see and order the item.
func (s ItemStatus) Visible() bool {
	return s == ItemAvailable || s == ItemLimited
}

// MenuItem is identified by StoreID+ItemID. Items are never removed, only hidden.
type MenuItem struct {
	StoreID     string                      `gorm:"primaryKey;type:varchar(64)" json:"store_id"`
	ItemID      string                      `gorm:"primaryKey;type:varchar(64)" json:"item_id"`
	Title       string                      `gorm:"type:varchar(160);not null" json:"title"`
	Description string                      `gorm:"type:text" json:"description,omitempty"`
	Category    string                      `gorm:"type:varchar(80);index" json:"category,omitempty"`
	Price       decimal.Decimal             `gorm:"type:decimal(10,2)" json:"price"`
	Status      ItemStatus                  `gorm:"type:varchar(16);not null;default:'available'" json:"status"`
	Featured    bool                        `gorm:"not null;default:false" json:"featured"`
	ImageURLs   datatypes.JSONSlice[string] `gorm:"type:json" json:"image_urls"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
}

func (MenuItem) TableName() string {
	return "menu_items"
}

// MenuItemPatch carries the editable fields of a menu item; nil means unchanged.
type MenuItemPatch struct {
	Title       *string          `json:"title,omitempty"`
	Description *string          `json:"description,omitempty"`
	Category    *string          `json:"category,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Status      *ItemStatus      `json:"status,omitempty"`
	Featured    *bool            `json:"featured,omitempty"`
	ImageURLs   []string         `json:"image_urls,omitempty"`
}

// Apply copies the set fields onto item.
func (p MenuItemPatch) Apply(item *MenuItem) {
	if p.Title != nil {
		item.Title = *p.Title
	}
	if p.Description != nil {
		item.Description = *p.Description
	}
	if p.Category != nil {
		item.Category = *p.Category
	}
	if p.Price != nil {
		item.Price = *p.Price
	}
	if p.Status != nil {
		item.Status = *p.Status
	}
	if p.Featured != nil {
		item.Featured = *p.Featured
	}
	if p.ImageURLs != nil {
		item.ImageURLs = datatypes.JSONSlice[string](p.ImageURLs)
	}
}
