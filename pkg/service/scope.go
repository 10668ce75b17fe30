package service

import "github.com/example/clickmenu/pkg/models"

// Scope is the verified identity a call runs under. Merchant scopes always
// carry the store id taken from the caller's token.
type Scope struct {
	StoreID string
	Admin   bool
	Actor   string
}

func MerchantScope(storeID string) Scope {
	return Scope{StoreID: storeID, Actor: "merchant:" + storeID}
}

func AdminScope(name string) Scope {
	return Scope{Admin: true, Actor: "admin:" + name}
}

func (s Scope) validate() error {
	if !s.Admin && s.StoreID == "" {
		return ErrScope
	}
	return nil
}

// storeFor resolves which store a call may touch. Merchants are pinned to
// their own store; asking for another one is rejected, not filtered.
func (s Scope) storeFor(requested string) (string, error) {
	if err := s.validate(); err != nil {
		return "", err
	}
	if s.Admin {
		return requested, nil
	}
	if requested != "" && requested != s.StoreID {
		return "", ErrScope
	}
	return s.StoreID, nil
}

// Page is one window of a filtered list. Total counts the whole filtered set.
type Page[T any] struct {
	Items  []T   `json:"items"`
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

func newPage[T any](items []T, total int64, p models.Page) *Page[T] {
	p = models.NewPage(p.Limit, p.Offset)
	if items == nil {
		items = []T{}
	}
	return &Page[T]{Items: items, Total: total, Limit: p.Limit, Offset: p.Offset}
}
