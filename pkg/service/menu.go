package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/example/clickmenu/pkg/events"
	"github.com/example/clickmenu/pkg/models"
	"go.uber.org/zap"
)

// MaxCombinedStores caps how many storefronts one combined menu may merge.
const MaxCombinedStores = 3

// StoreMenu is a storefront with the items a shopper may see.
type StoreMenu struct {
	Store *models.Store     `json:"store"`
	Items []models.MenuItem `json:"items"`
}

type MenuService interface {
	UpsertItem(ctx context.Context, scope Scope, item models.MenuItem) (*models.MenuItem, error)
	UpdateItem(ctx context.Context, scope Scope, storeID, itemID string, patch models.MenuItemPatch) (*models.MenuItem, error)
	// ArchiveItem hides the item; items are never deleted.
	ArchiveItem(ctx context.Context, scope Scope, storeID, itemID string) (*models.MenuItem, error)
	ListItems(ctx context.Context, scope Scope, filter models.MenuFilter) (*Page[models.MenuItem], error)

	// StoreMenu lists a public store's orderable items; includeAll adds
	// sold out ones. Hidden items are never public.
	StoreMenu(ctx context.Context, storeID string, includeAll bool) (*StoreMenu, error)
	CombinedMenu(ctx context.Context, storeIDs []string) ([]StoreMenu, error)
}

func NewMenuService(
	menu models.MenuRepository,
	stores models.StoreRepository,
	dispatcher events.Dispatcher,
	logger *zap.Logger,
	opts ...Option,
) MenuService {
	return &menuService{
		menu:       menu,
		stores:     stores,
		dispatcher: dispatcher,
		logger:     logger.Named("menu-service"),
		opts:       buildOptions(opts),
	}
}

type menuService struct {
	menu       models.MenuRepository
	stores     models.StoreRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	opts       options
}

func validateItem(item *models.MenuItem) error {
	var v validator
	v.check(item.ItemID != "", "item_id", "is required")
	v.check(strings.TrimSpace(item.Title) != "", "title", "is required")
	v.check(item.Status.Valid(), "status", "must be available, limited, sold_out or hidden")
	v.check(!item.Price.IsNegative(), "price", "must not be negative")
	return v.err()
}

func (s *menuService) UpsertItem(ctx context.Context, scope Scope, item models.MenuItem) (*models.MenuItem, error) {
	storeID, err := scope.storeFor(item.StoreID)
	if err != nil {
		return nil, err
	}
	if storeID == "" {
		return nil, invalid("store_id", "is required")
	}
	item.StoreID = storeID
	item.ItemID = strings.TrimSpace(item.ItemID)
	if item.Status == "" {
		item.Status = models.ItemAvailable
	}
	if err := validateItem(&item); err != nil {
		return nil, err
	}
	if _, err := s.stores.Find(ctx, storeID); err != nil {
		return nil, err
	}

	if prev, err := s.menu.Find(ctx, storeID, item.ItemID); err == nil {
		item.CreatedAt = prev.CreatedAt
	} else {
		item.CreatedAt = s.opts.now()
	}
	item.UpdatedAt = s.opts.now()
	if err := s.menu.Upsert(ctx, &item); err != nil {
		return nil, err
	}
	s.changed(ctx, scope, &item)
	return &item, nil
}

func (s *menuService) UpdateItem(ctx context.Context, scope Scope, storeID, itemID string, patch models.MenuItemPatch) (*models.MenuItem, error) {
	storeID, err := scope.storeFor(storeID)
	if err != nil {
		return nil, err
	}
	item, err := s.menu.Find(ctx, storeID, itemID)
	if err != nil {
		return nil, err
	}
	patch.Apply(item)
	if err := validateItem(item); err != nil {
		return nil, err
	}
	item.UpdatedAt = s.opts.now()
	if err := s.menu.Save(ctx, item); err != nil {
		return nil, err
	}
	s.changed(ctx, scope, item)
	return item, nil
}

func (s *menuService) ArchiveItem(ctx context.Context, scope Scope, storeID, itemID string) (*models.MenuItem, error) {
	hidden := models.ItemHidden
	return s.UpdateItem(ctx, scope, storeID, itemID, models.MenuItemPatch{Status: &hidden})
}

func (s *menuService) ListItems(ctx context.Context, scope Scope, filter models.MenuFilter) (*Page[models.MenuItem], error) {
	storeID, err := scope.storeFor(filter.StoreID)
	if err != nil {
		return nil, err
	}
	filter.StoreID = storeID
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, invalid("availability", fmt.Sprintf("unknown availability %q", filter.Status))
	}
	filter.Page = models.NewPage(filter.Limit, filter.Offset)

	items, total, err := s.menu.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return newPage(items, total, filter.Page), nil
}

func (s *menuService) StoreMenu(ctx context.Context, storeID string, includeAll bool) (*StoreMenu, error) {
	menus, err := s.menus(ctx, []string{storeID}, includeAll)
	if err != nil {
		return nil, err
	}
	if len(menus) == 0 {
		return nil, models.ErrStoreNotFound
	}
	return &menus[0], nil
}

// CombinedMenu merges up to MaxCombinedStores public storefronts. Unknown or
// hidden stores are skipped, duplicate ids collapse.
func (s *menuService) CombinedMenu(ctx context.Context, storeIDs []string) ([]StoreMenu, error) {
	ids := make([]string, 0, MaxCombinedStores)
	seen := make(map[string]bool)
	for _, id := range storeIDs {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
		if len(ids) == MaxCombinedStores {
			break
		}
	}
	if len(ids) == 0 {
		return nil, invalid("store_ids", "at least one store id is required")
	}
	return s.menus(ctx, ids, false)
}

func (s *menuService) menus(ctx context.Context, ids []string, includeAll bool) ([]StoreMenu, error) {
	var visible []string
	stores := make(map[string]*models.Store)
	for _, id := range ids {
		st, err := s.stores.Find(ctx, id)
		if err != nil {
			if errors.Is(err, models.ErrStoreNotFound) {
				continue
			}
			return nil, err
		}
		if !st.Public() {
			continue
		}
		stores[id] = st
		visible = append(visible, id)
	}

	items, err := s.menu.ListByStores(ctx, visible)
	if err != nil {
		return nil, err
	}
	byStore := make(map[string][]models.MenuItem)
	for _, it := range items {
		if it.Status.Visible() || (includeAll && it.Status == models.ItemSoldOut) {
			byStore[it.StoreID] = append(byStore[it.StoreID], it)
		}
	}

	out := make([]StoreMenu, 0, len(visible))
	for _, id := range visible {
		list := byStore[id]
		if list == nil {
			list = []models.MenuItem{}
		}
		out = append(out, StoreMenu{Store: stores[id], Items: list})
	}
	return out, nil
}

func (s *menuService) changed(ctx context.Context, scope Scope, item *models.MenuItem) {
	s.logger.Info("Menu item saved",
		zap.String("store_id", item.StoreID),
		zap.String("item_id", item.ItemID),
		zap.String("status", string(item.Status)))
	if err := s.dispatcher.Dispatch(ctx, events.MenuItemChanged{
		StoreID: item.StoreID,
		ItemID:  item.ItemID,
		Status:  string(item.Status),
		Actor:   scope.Actor,
		At:      s.opts.now(),
	}); err != nil {
		s.logger.Warn("Event dispatch failed", zap.Error(err))
	}
}
