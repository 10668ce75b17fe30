package analytics

import (
	"testing"
	"time"

	"github.com/example/clickmenu/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 5, 20, 15, 30, 0, 0, time.UTC)

func order(id string, created time.Time, items ...models.LineItem) models.Order {
	return models.Order{
		RequestID:       id,
		StoreID:         "T1",
		Status:          models.StatusNew,
		FulfillmentType: models.FulfillmentPickup,
		Items:           items,
		CreatedAt:       created,
	}
}

func TestAggregateWindows(t *testing.T) {
	orders := []models.Order{
		order("ORD-1", now),
		order("ORD-2", now.AddDate(0, 0, -1)),
		order("ORD-3", now.AddDate(0, 0, -10)),
	}

	s := Aggregate(orders, nil, now)
	assert.Equal(t, 1, s.OrdersToday)
	assert.Equal(t, 2, s.OrdersThisWeek)
	assert.Equal(t, 0, s.Orders7dAvg)
	assert.Equal(t, 3, s.TotalOrders)
	assert.Equal(t, 3, s.NewOrders)
}

func TestAggregateTodayIsCalendarDay(t *testing.T) {
	orders := []models.Order{
		order("ORD-1", StartOfDay(now)),
		order("ORD-2", StartOfDay(now).Add(-time.Minute)),
	}
	s := Aggregate(orders, nil, now)
	assert.Equal(t, 1, s.OrdersToday)
	assert.Equal(t, 2, s.OrdersThisWeek)
}

func TestAggregateNewOrders(t *testing.T) {
	a := order("ORD-1", now)
	b := order("ORD-2", now)
	b.Status = models.StatusReady
	s := Aggregate([]models.Order{a, b}, nil, now)
	assert.Equal(t, 1, s.NewOrders)
}

func TestAggregateItemCounts(t *testing.T) {
	items := []models.MenuItem{
		{StoreID: "T1", ItemID: "A", Title: "Ackee", Category: "Breakfast"},
		{StoreID: "T1", ItemID: "B", Title: "Bammy", Category: "Sides"},
	}
	orders := []models.Order{
		order("ORD-1", now, models.LineItem{ItemID: "A", Qty: 2}, models.LineItem{ItemID: "B", Qty: 1}),
		order("ORD-2", now, models.LineItem{ItemID: "A", Qty: 1}),
	}

	s := Aggregate(orders, items, now)
	assert.Equal(t, map[string]int{"A": 3, "B": 1}, s.ItemRequestCounts)
	require.NotNil(t, s.TopItem)
	assert.Equal(t, "A", s.TopItem.ItemID)
	assert.Equal(t, 3, s.TopItem.Count)
	require.NotNil(t, s.WorstItem)
	assert.Equal(t, "B", s.WorstItem.ItemID)
	assert.Len(t, s.TopItems, 2)
	assert.Equal(t, "Breakfast", s.TopSellingCategory)
}

func TestAggregateMissingQtyCountsOne(t *testing.T) {
	orders := []models.Order{order("ORD-1", now, models.LineItem{ItemID: "A"}, models.LineItem{ItemID: ""})}
	s := Aggregate(orders, nil, now)
	assert.Equal(t, map[string]int{"A": 1}, s.ItemRequestCounts)
}

func TestAggregateUnknownTopItemIsNil(t *testing.T) {
	items := []models.MenuItem{{ItemID: "B", Title: "Bammy"}}
	orders := []models.Order{
		order("ORD-1", now, models.LineItem{ItemID: "gone", Qty: 5}, models.LineItem{ItemID: "B", Qty: 1}),
	}
	s := Aggregate(orders, items, now)
	assert.Nil(t, s.TopItem)
	require.NotNil(t, s.WorstItem)
	assert.Equal(t, "B", s.WorstItem.ItemID)
}

func TestAggregateEmpty(t *testing.T) {
	s := Aggregate(nil, nil, now)
	assert.Nil(t, s.TopItem)
	assert.Nil(t, s.WorstItem)
	assert.Empty(t, s.TopItems)
	assert.Equal(t, "", s.TopCategory)
	assert.Equal(t, FulfillmentMix{}, s.Fulfillment)
	assert.Len(t, s.Daily, 7)
}

func TestAggregateDeterministic(t *testing.T) {
	items := []models.MenuItem{
		{ItemID: "A", Category: "x"},
		{ItemID: "B", Category: "y"},
	}
	orders := []models.Order{
		order("ORD-1", now, models.LineItem{ItemID: "A", Qty: 1}, models.LineItem{ItemID: "B", Qty: 1}),
	}
	assert.Equal(t, Aggregate(orders, items, now), Aggregate(orders, items, now))
}

func TestTopCategoryCountsCatalog(t *testing.T) {
	items := []models.MenuItem{
		{ItemID: "1", Category: "Drinks"},
		{ItemID: "2", Category: "Drinks"},
		{ItemID: "3", Category: "Mains"},
		{ItemID: "4"},
		{ItemID: "5"},
		{ItemID: "6"},
	}
	assert.Equal(t, "Drinks", TopCategory(items))

	tie := []models.MenuItem{{Category: "b"}, {Category: "a"}}
	assert.Equal(t, "a", TopCategory(tie))
}

func TestFulfillmentSumsTo100(t *testing.T) {
	for n := 1; n <= 60; n++ {
		for p := 0; p <= n; p++ {
			for d := 0; d <= n-p; d++ {
				orders := make([]models.Order, 0, n)
				for i := 0; i < n; i++ {
					ft := models.FulfillmentType("")
					switch {
					case i < p:
						ft = models.FulfillmentPickup
					case i < p+d:
						ft = models.FulfillmentDelivery
					}
					orders = append(orders, models.Order{FulfillmentType: ft})
				}
				mix := Fulfillment(orders)
				require.Equal(t, 100, mix.PickupPct+mix.DeliveryPct+mix.OtherPct, "n=%d p=%d d=%d", n, p, d)
				require.GreaterOrEqual(t, mix.OtherPct, 0)
			}
		}
	}
}

func TestFulfillmentCounts(t *testing.T) {
	orders := []models.Order{
		{FulfillmentType: models.FulfillmentPickup},
		{FulfillmentType: models.FulfillmentPickup},
		{FulfillmentType: models.FulfillmentDelivery},
	}
	mix := Fulfillment(orders)
	assert.Equal(t, FulfillmentMix{Pickup: 2, Delivery: 1, PickupPct: 67, DeliveryPct: 33, OtherPct: 0}, mix)
}

func TestDailyCounts(t *testing.T) {
	orders := []models.Order{
		order("ORD-1", now),
		order("ORD-2", now.Add(-time.Hour)),
		order("ORD-3", now.AddDate(0, 0, -6)),
		order("ORD-4", now.AddDate(0, 0, -7)),
	}
	days := DailyCounts(orders, now, 7)
	require.Len(t, days, 7)
	assert.Equal(t, "2024-05-14", days[0].Date)
	assert.Equal(t, 1, days[0].Count)
	assert.Equal(t, "2024-05-20", days[6].Date)
	assert.Equal(t, 2, days[6].Count)
}
