// Package analytics turns already-loaded orders and menu items into dashboard
// summaries. Every function is pure: callers fetch the data and pass the
// current time in.
package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/example/clickmenu/pkg/models"
)

const (
	weekWindow = 7 * 24 * time.Hour
	topLimit   = 5
)

type ItemCount struct {
	StoreID  string `json:"store_id,omitempty"`
	ItemID   string `json:"item_id"`
	Title    string `json:"title"`
	Category string `json:"category,omitempty"`
	Count    int    `json:"count"`
}

type FulfillmentMix struct {
	Pickup      int `json:"pickup"`
	Delivery    int `json:"delivery"`
	Other       int `json:"other"`
	PickupPct   int `json:"pickup_pct"`
	DeliveryPct int `json:"delivery_pct"`
	OtherPct    int `json:"other_pct"`
}

type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Summary is the merchant dashboard snapshot.
type Summary struct {
	OrdersToday       int            `json:"orders_today"`
	OrdersThisWeek    int            `json:"orders_this_week"`
	Orders7dAvg       int            `json:"orders_7d_avg"`
	NewOrders         int            `json:"new_orders"`
	TotalOrders       int            `json:"total_orders"`
	TotalItems        int            `json:"total_items"`
	ItemRequestCounts map[string]int `json:"item_request_counts"`
	TopItem           *ItemCount     `json:"top_item"`
	WorstItem         *ItemCount     `json:"worst_item"`
	TopItems          []ItemCount    `json:"top_items"`
	// TopCategory is the category with the most catalog entries, not the best seller.
	TopCategory        string         `json:"top_category"`
	TopSellingCategory string         `json:"top_selling_category"`
	Fulfillment        FulfillmentMix `json:"fulfillment"`
	Daily              []DayCount     `json:"daily"`
}

// Aggregate computes the summary for the given orders against the catalog items.
func Aggregate(orders []models.Order, items []models.MenuItem, now time.Time) Summary {
	todayStart := StartOfDay(now)
	weekStart := now.Add(-weekWindow)

	s := Summary{
		TotalOrders:       len(orders),
		TotalItems:        len(items),
		ItemRequestCounts: ItemRequestCounts(orders),
		TopItems:          []ItemCount{},
	}
	for i := range orders {
		o := &orders[i]
		if !o.CreatedAt.Before(todayStart) {
			s.OrdersToday++
		}
		if !o.CreatedAt.Before(weekStart) {
			s.OrdersThisWeek++
		}
		if o.Status == models.StatusNew {
			s.NewOrders++
		}
	}
	s.Orders7dAvg = int(math.Round(float64(s.OrdersThisWeek) / 7))

	catalog := make(map[string]*models.MenuItem, len(items))
	for i := range items {
		if _, ok := catalog[items[i].ItemID]; !ok {
			catalog[items[i].ItemID] = &items[i]
		}
	}

	ranked := rankCounts(s.ItemRequestCounts)
	if len(ranked) > 0 {
		s.TopItem = resolve(ranked[0], catalog)
	}
	var resolved []ItemCount
	for _, rc := range ranked {
		if ic := resolve(rc, catalog); ic != nil {
			resolved = append(resolved, *ic)
		}
	}
	if len(resolved) > 0 {
		worst := resolved[len(resolved)-1]
		s.WorstItem = &worst
		s.TopItems = resolved[:min(topLimit, len(resolved))]
	}

	s.TopCategory = TopCategory(items)
	s.TopSellingCategory = topSellingCategory(ranked, catalog)
	s.Fulfillment = Fulfillment(orders)
	s.Daily = DailyCounts(orders, now, 7)
	return s
}

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ItemRequestCounts sums the requested quantity per item id over every order.
func ItemRequestCounts(orders []models.Order) map[string]int {
	counts := make(map[string]int)
	for i := range orders {
		for _, li := range orders[i].Items {
			if li.ItemID == "" {
				continue
			}
			counts[li.ItemID] += li.Quantity()
		}
	}
	return counts
}

// TopCategory is the most frequent non-empty category in the catalog. Ties
// go to the alphabetically first name.
func TopCategory(items []models.MenuItem) string {
	counts := make(map[string]int)
	for _, it := range items {
		if it.Category == "" {
			continue
		}
		counts[it.Category]++
	}
	return maxKey(counts)
}

// Fulfillment splits orders by fulfillment type. The other share is the
// remainder so the three percentages always add up to 100.
func Fulfillment(orders []models.Order) FulfillmentMix {
	var mix FulfillmentMix
	for i := range orders {
		switch orders[i].FulfillmentType {
		case models.FulfillmentPickup:
			mix.Pickup++
		case models.FulfillmentDelivery:
			mix.Delivery++
		default:
			mix.Other++
		}
	}
	n := len(orders)
	if n == 0 {
		return mix
	}
	mix.PickupPct = int(math.Round(100 * float64(mix.Pickup) / float64(n)))
	mix.DeliveryPct = int(math.Round(100 * float64(mix.Delivery) / float64(n)))
	if mix.PickupPct+mix.DeliveryPct > 100 {
		mix.DeliveryPct = 100 - mix.PickupPct
	}
	mix.OtherPct = 100 - mix.PickupPct - mix.DeliveryPct
	return mix
}

// DailyCounts buckets orders into the last days calendar days, oldest first.
func DailyCounts(orders []models.Order, now time.Time, days int) []DayCount {
	today := StartOfDay(now)
	out := make([]DayCount, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		day := today.AddDate(0, 0, i-days+1)
		key := day.Format(time.DateOnly)
		out[i] = DayCount{Date: key}
		index[key] = i
	}
	for i := range orders {
		key := orders[i].CreatedAt.In(now.Location()).Format(time.DateOnly)
		if j, ok := index[key]; ok {
			out[j].Count++
		}
	}
	return out
}

type rankedCount struct {
	id    string
	count int
}

// rankCounts sorts by count descending, then id ascending.
func rankCounts(counts map[string]int) []rankedCount {
	out := make([]rankedCount, 0, len(counts))
	for id, c := range counts {
		out = append(out, rankedCount{id: id, count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].id < out[j].id
	})
	return out
}

func resolve(rc rankedCount, catalog map[string]*models.MenuItem) *ItemCount {
	it, ok := catalog[rc.id]
	if !ok {
		return nil
	}
	return &ItemCount{ItemID: it.ItemID, Title: it.Title, Category: it.Category, Count: rc.count}
}

func topSellingCategory(ranked []rankedCount, catalog map[string]*models.MenuItem) string {
	counts := make(map[string]int)
	for _, rc := range ranked {
		if it, ok := catalog[rc.id]; ok && it.Category != "" {
			counts[it.Category] += rc.count
		}
	}
	return maxKey(counts)
}

func maxKey(counts map[string]int) string {
	best, bestCount := "", 0
	for k, c := range counts {
		if c > bestCount || (c == bestCount && k < best) {
			best, bestCount = k, c
		}
	}
	return best
}
