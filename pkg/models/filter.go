package models

import (
	"strings"
	"time"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

type Page struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// NewPage clamps limit into [1, MaxPageLimit] and offset to >= 0.
// A zero limit selects DefaultPageLimit.
func NewPage(limit, offset int) Page {
	switch {
	case limit <= 0:
		limit = DefaultPageLimit
	case limit > MaxPageLimit:
		limit = MaxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return Page{Limit: limit, Offset: offset}
}

// Slice returns the [offset, offset+limit) window of n elements.
func (p Page) Slice(n int) (start, end int) {
	p = NewPage(p.Limit, p.Offset)
	start = p.Offset
	if start > n {
		start = n
	}
	end = start + p.Limit
	if end > n {
		end = n
	}
	return start, end
}

// OrderFilter selects orders. StoreID empty means every store (admin only).
// From and To are inclusive; a zero value leaves that side open.
type OrderFilter struct {
	StoreID string
	Query   string
	Status  OrderStatus
	From    time.Time
	To      time.Time
	Page
}

func (f OrderFilter) Match(o *Order) bool {
	if f.StoreID != "" && o.StoreID != f.StoreID {
		return false
	}
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	if !f.From.IsZero() && o.CreatedAt.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && o.CreatedAt.After(f.To) {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		return containsAny(q, o.RequestID, o.StoreID, o.CustomerName, o.CustomerPhone, o.CustomerEmail)
	}
	return true
}

type MenuFilter struct {
	StoreID      string
	Query        string
	Category     string
	Status       ItemStatus
	Featured     *bool
	MissingMedia bool
	Page
}

func (f MenuFilter) Match(m *MenuItem) bool {
	if f.StoreID != "" && m.StoreID != f.StoreID {
		return false
	}
	if f.Category != "" && !strings.EqualFold(m.Category, f.Category) {
		return false
	}
	if f.Status != "" && m.Status != f.Status {
		return false
	}
	if f.Featured != nil && m.Featured != *f.Featured {
		return false
	}
	if f.MissingMedia && len(m.ImageURLs) > 0 {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		return containsAny(q, m.ItemID, m.StoreID, m.Title, m.Category)
	}
	return true
}

type StoreFilter struct {
	Query  string
	Status StoreStatus
	Page
}

func (f StoreFilter) Match(s *Store) bool {
	if f.Status != "" && s.Status != f.Status {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		return containsAny(q, s.StoreID, s.Name, s.ProfileEmail)
	}
	return true
}

func containsAny(q string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}
