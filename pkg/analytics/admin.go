package analytics

import (
	"sort"
	"time"

	"github.com/example/clickmenu/pkg/models"
)

// DeadAfter is the inactivity span after which a merchant counts as dead.
const DeadAfter = 30 * 24 * time.Hour

type MerchantActivity struct {
	StoreID      string    `json:"store_id"`
	Name         string    `json:"name"`
	Status       string    `json:"status"`
	LastActivity time.Time `json:"last_activity"`
	DaysInactive int       `json:"days_inactive"`
}

type MerchantOrders struct {
	StoreID string `json:"store_id"`
	Name    string `json:"name"`
	Orders  int    `json:"orders"`
}

// PlatformSummary is the admin dashboard snapshot across every store.
type PlatformSummary struct {
	TotalStores       int                `json:"total_stores"`
	StoresByStatus    map[string]int     `json:"stores_by_status"`
	TotalOrders       int                `json:"total_orders"`
	OrdersToday       int                `json:"orders_today"`
	OrdersThisWeek    int                `json:"orders_this_week"`
	Orders7dAvg       int                `json:"orders_7d_avg"`
	NewOrders         int                `json:"new_orders"`
	TotalItems        int                `json:"total_items"`
	InactiveMerchants int                `json:"inactive_merchants"`
	TopMerchants      []MerchantOrders   `json:"top_merchants"`
	DeadMerchants     []MerchantActivity `json:"dead_merchants"`
	TopItems          []ItemCount        `json:"top_items"`
	Fulfillment       FulfillmentMix     `json:"fulfillment"`
	Daily             []DayCount         `json:"daily"`
}

// Platform aggregates every store. Item counts are keyed by store and item
// id since item ids are only unique inside one store.
func Platform(stores []models.Store, orders []models.Order, items []models.MenuItem, now time.Time) PlatformSummary {
	base := Aggregate(orders, items, now)
	ps := PlatformSummary{
		TotalStores:    len(stores),
		StoresByStatus: make(map[string]int),
		TotalOrders:    base.TotalOrders,
		OrdersToday:    base.OrdersToday,
		OrdersThisWeek: base.OrdersThisWeek,
		Orders7dAvg:    base.Orders7dAvg,
		NewOrders:      base.NewOrders,
		TotalItems:     base.TotalItems,
		Fulfillment:    base.Fulfillment,
		Daily:          base.Daily,
		TopMerchants:   TopMerchants(stores, orders, now, topLimit),
		TopItems:       TopStoreItems(orders, items, topLimit),
	}
	for _, s := range stores {
		ps.StoresByStatus[string(s.Status)]++
	}
	dead := DeadMerchants(stores, orders, now, len(stores))
	ps.InactiveMerchants = len(dead)
	ps.DeadMerchants = dead[:min(topLimit, len(dead))]
	return ps
}

// DeadMerchants lists stores idle for at least DeadAfter, most idle first,
// capped at limit. Activity is the newest order, else the profile's
// updated_at, else its created_at.
func DeadMerchants(stores []models.Store, orders []models.Order, now time.Time, limit int) []MerchantActivity {
	latest := make(map[string]time.Time)
	for i := range orders {
		o := &orders[i]
		if o.CreatedAt.After(latest[o.StoreID]) {
			latest[o.StoreID] = o.CreatedAt
		}
	}

	out := []MerchantActivity{}
	for _, s := range stores {
		last, ok := latest[s.StoreID]
		if !ok {
			last = s.UpdatedAt
			if last.IsZero() {
				last = s.CreatedAt
			}
		}
		idle := now.Sub(last)
		if idle < DeadAfter {
			continue
		}
		out = append(out, MerchantActivity{
			StoreID:      s.StoreID,
			Name:         s.Name,
			Status:       string(s.Status),
			LastActivity: last,
			DaysInactive: int(idle / (24 * time.Hour)),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastActivity.Equal(out[j].LastActivity) {
			return out[i].LastActivity.Before(out[j].LastActivity)
		}
		return out[i].StoreID < out[j].StoreID
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// TopMerchants ranks stores by orders placed in the rolling seven days.
// Stores without orders in the window are left out.
func TopMerchants(stores []models.Store, orders []models.Order, now time.Time, limit int) []MerchantOrders {
	weekStart := now.Add(-weekWindow)
	counts := make(map[string]int)
	for i := range orders {
		if !orders[i].CreatedAt.Before(weekStart) {
			counts[orders[i].StoreID]++
		}
	}
	names := make(map[string]string, len(stores))
	for _, s := range stores {
		names[s.StoreID] = s.Name
	}

	out := []MerchantOrders{}
	for _, rc := range rankCounts(counts) {
		out = append(out, MerchantOrders{StoreID: rc.id, Name: names[rc.id], Orders: rc.count})
	}
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// TopStoreItems ranks platform-wide items by requested quantity. Items no
// longer in the catalog are skipped.
func TopStoreItems(orders []models.Order, items []models.MenuItem, limit int) []ItemCount {
	type key struct{ store, item string }
	catalog := make(map[key]*models.MenuItem, len(items))
	for i := range items {
		catalog[key{items[i].StoreID, items[i].ItemID}] = &items[i]
	}
	counts := make(map[key]int)
	for i := range orders {
		for _, li := range orders[i].Items {
			if li.ItemID != "" {
				counts[key{orders[i].StoreID, li.ItemID}] += li.Quantity()
			}
		}
	}

	out := []ItemCount{}
	for k, c := range counts {
		it, ok := catalog[k]
		if !ok {
			continue
		}
		out = append(out, ItemCount{StoreID: k.store, ItemID: k.item, Title: it.Title, Category: it.Category, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if out[i].StoreID != out[j].StoreID {
			return out[i].StoreID < out[j].StoreID
		}
		return out[i].ItemID < out[j].ItemID
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
