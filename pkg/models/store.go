package models

import (
	"time"
)

type StoreStatus string

const (
	StoreActive     StoreStatus = "active"
	StorePaused     StoreStatus = "paused"
	StoreOnboarding StoreStatus = "onboarding"
	StoreFlagged    StoreStatus = "flagged"
)

func (s StoreStatus) Valid() bool {
	switch s {
	case StoreActive, StorePaused, StoreOnboarding, StoreFlagged:
		return true
	}
	return false
}

// Store is the merchant profile, keyed by the public store id.
type Store struct {
	StoreID      string      `gorm:"primaryKey;type:varchar(64)" json:"store_id"`
	Name         string      `gorm:"type:varchar(120);not null" json:"name"`
	Status       StoreStatus `gorm:"type:varchar(16);not null;default:'onboarding';index" json:"status"`
	Authorized   bool        `gorm:"not null;default:false" json:"authorized"`
	WhatsApp     string      `gorm:"type:varchar(40)" json:"whatsapp,omitempty"`
	ProfileEmail string      `gorm:"type:varchar(191);index" json:"profile_email,omitempty"`
	LogoURL      string      `gorm:"type:varchar(512)" json:"logo_url,omitempty"`
	Parish       string      `gorm:"type:varchar(64)" json:"parish,omitempty"`
	PasscodeHash string      `gorm:"type:varchar(100)" json:"-"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

func (Store) TableName() string {
	return "stores"
}

// Public reports whether the storefront may be shown and take orders.
func (s *Store) Public() bool {
	return s.Status == StoreActive && s.Authorized
}

// StorePatch carries the editable fields of a store; nil means unchanged.
type StorePatch struct {
	Name         *string      `json:"name,omitempty"`
	Status       *StoreStatus `json:"status,omitempty"`
	Authorized   *bool        `json:"authorized,omitempty"`
	WhatsApp     *string      `json:"whatsapp,omitempty"`
	ProfileEmail *string      `json:"profile_email,omitempty"`
	LogoURL      *string      `json:"logo_url,omitempty"`
	Parish       *string      `json:"parish,omitempty"`
}

func (p StorePatch) Apply(s *Store) {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Status != nil {
		s.Status = *p.Status
	}
	if p.Authorized != nil {
		s.Authorized = *p.Authorized
	}
	if p.WhatsApp != nil {
		s.WhatsApp = *p.WhatsApp
	}
	if p.ProfileEmail != nil {
		s.ProfileEmail = *p.ProfileEmail
	}
	if p.LogoURL != nil {
		s.LogoURL = *p.LogoURL
	}
	if p.Parish != nil {
		s.Parish = *p.Parish
	}
}
