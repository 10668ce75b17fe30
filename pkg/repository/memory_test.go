package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/example/clickmenu/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func seedOrders(t *testing.T, repo models.OrderRepository, n int) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < n; i++ {
		store := "S1"
		if i%3 == 0 {
			store = "S2"
		}
		status := models.StatusNew
		if i%2 == 0 {
			status = models.StatusReady
		}
		require.NoError(t, repo.Create(ctx, &models.Order{
			RequestID:    fmt.Sprintf("ORD-%08X", i),
			StoreID:      store,
			Status:       status,
			CustomerName: fmt.Sprintf("Customer %d", i),
			// pairs share a timestamp to exercise the request id tie-break
			CreatedAt: t0.Add(time.Duration(i/2) * time.Hour),
		}))
	}
}

func TestMemoryOrdersCreateDuplicate(t *testing.T) {
	repo := NewMemoryStore().Orders()
	ctx := context.Background()
	o := &models.Order{RequestID: "ORD-AAAA0000", StoreID: "S1"}
	require.NoError(t, repo.Create(ctx, o))
	assert.False(t, o.CreatedAt.IsZero())

	err := repo.Create(ctx, &models.Order{RequestID: "ORD-AAAA0000", StoreID: "S2"})
	assert.ErrorIs(t, err, models.ErrDuplicateRequestID)
}

func TestMemoryOrdersFindIsTenantScoped(t *testing.T) {
	repo := NewMemoryStore().Orders()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &models.Order{RequestID: "ORD-1", StoreID: "S1"}))

	_, err := repo.Find(ctx, "S2", "ORD-1")
	assert.ErrorIs(t, err, models.ErrOrderNotFound)

	o, err := repo.Find(ctx, "S1", "ORD-1")
	require.NoError(t, err)
	assert.Equal(t, "S1", o.StoreID)
}

func TestMemoryOrdersUpdateStatus(t *testing.T) {
	repo := NewMemoryStore().Orders()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &models.Order{RequestID: "ORD-1", StoreID: "S1", Status: models.StatusNew}))

	t.Run("compare and set", func(t *testing.T) {
		require.NoError(t, repo.UpdateStatus(ctx, "S1", "ORD-1", models.StatusNew, models.StatusConfirmed))
		err := repo.UpdateStatus(ctx, "S1", "ORD-1", models.StatusNew, models.StatusReady)
		assert.ErrorIs(t, err, models.ErrStatusConflict)

		o, err := repo.Find(ctx, "S1", "ORD-1")
		require.NoError(t, err)
		assert.Equal(t, models.StatusConfirmed, o.Status)
	})

	t.Run("missing order is not created", func(t *testing.T) {
		err := repo.UpdateStatus(ctx, "S1", "ORD-999", models.StatusNew, models.StatusReady)
		assert.ErrorIs(t, err, models.ErrOrderNotFound)
		_, err = repo.FindByRequestID(ctx, "ORD-999")
		assert.ErrorIs(t, err, models.ErrOrderNotFound)
	})
}

func TestMemoryOrdersReturnsCopies(t *testing.T) {
	repo := NewMemoryStore().Orders()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &models.Order{
		RequestID: "ORD-1", StoreID: "S1",
		Items: []models.LineItem{{ItemID: "A", Title: "Ackee", Qty: 1}},
	}))

	o, err := repo.Find(ctx, "S1", "ORD-1")
	require.NoError(t, err)
	o.Items[0].Title = "changed"

	again, err := repo.Find(ctx, "S1", "ORD-1")
	require.NoError(t, err)
	assert.Equal(t, "Ackee", again.Items[0].Title)
}

func TestMemoryOrdersPagination(t *testing.T) {
	repo := NewMemoryStore().Orders()
	seedOrders(t, repo, 23)
	ctx := context.Background()

	filters := []models.OrderFilter{
		{},
		{StoreID: "S1"},
		{Status: models.StatusReady},
		{Query: "customer 1"},
		{From: t0.Add(2 * time.Hour), To: t0.Add(6 * time.Hour)},
	}
	for _, f := range filters {
		t.Run(fmt.Sprintf("%+v", f), func(t *testing.T) {
			seen := map[string]bool{}
			var total int64 = -1
			for offset := 0; ; offset += 4 {
				f.Page = models.Page{Limit: 4, Offset: offset}
				page, n, err := repo.List(ctx, f)
				require.NoError(t, err)
				if total >= 0 {
					require.Equal(t, total, n)
				}
				total = n
				if len(page) == 0 {
					break
				}
				for _, o := range page {
					require.False(t, seen[o.RequestID], "order %s on two pages", o.RequestID)
					seen[o.RequestID] = true
				}
			}
			assert.EqualValues(t, total, len(seen))
		})
	}
}

func TestMemoryOrdersListOrdering(t *testing.T) {
	repo := NewMemoryStore().Orders()
	seedOrders(t, repo, 4)

	all, err := repo.ListAll(context.Background(), "")
	require.NoError(t, err)
	ids := make([]string, 0, len(all))
	for _, o := range all {
		ids = append(ids, o.RequestID)
	}
	assert.Equal(t, []string{"ORD-00000002", "ORD-00000003", "ORD-00000000", "ORD-00000001"}, ids)

	filtered, total, err := repo.List(context.Background(), models.OrderFilter{StoreID: "S2"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, filtered, 2)
}

func TestMemoryMenu(t *testing.T) {
	repo := NewMemoryStore().WithClock(func() time.Time { return t0 }).Menu()
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &models.MenuItem{StoreID: "S1", ItemID: "a", Title: "Ackee", Status: models.ItemAvailable}))
	require.NoError(t, repo.Upsert(ctx, &models.MenuItem{StoreID: "S1", ItemID: "b", Title: "Bammy", Status: models.ItemHidden, Featured: true}))
	require.NoError(t, repo.Upsert(ctx, &models.MenuItem{StoreID: "S2", ItemID: "a", Title: "Aloo", Status: models.ItemAvailable}))

	t.Run("save requires existing item", func(t *testing.T) {
		err := repo.Save(ctx, &models.MenuItem{StoreID: "S1", ItemID: "zzz"})
		assert.ErrorIs(t, err, models.ErrItemNotFound)
	})

	t.Run("list filters and counts", func(t *testing.T) {
		items, total, err := repo.List(ctx, models.MenuFilter{StoreID: "S1", Status: models.ItemAvailable})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, items, 1)
		assert.Equal(t, "Ackee", items[0].Title)
	})

	t.Run("list by stores puts featured first", func(t *testing.T) {
		items, err := repo.ListByStores(ctx, []string{"S1"})
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "b", items[0].ItemID)
	})

	t.Run("upsert keeps created_at", func(t *testing.T) {
		item, err := repo.Find(ctx, "S1", "a")
		require.NoError(t, err)
		item.Title = "Ackee & Saltfish"
		require.NoError(t, repo.Upsert(ctx, item))
		again, err := repo.Find(ctx, "S1", "a")
		require.NoError(t, err)
		assert.Equal(t, t0, again.CreatedAt)
		assert.Equal(t, "Ackee & Saltfish", again.Title)
	})

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestMemoryStores(t *testing.T) {
	repo := NewMemoryStore().Stores()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Store{StoreID: "jerk-hut", Name: "Jerk Hut", ProfileEmail: "Owner@JerkHut.com"}))
	assert.ErrorIs(t, repo.Create(ctx, &models.Store{StoreID: "jerk-hut"}), models.ErrStoreExists)

	s, err := repo.FindByLogin(ctx, "owner@jerkhut.com")
	require.NoError(t, err)
	assert.Equal(t, "jerk-hut", s.StoreID)

	s, err = repo.FindByLogin(ctx, " jerk-hut ")
	require.NoError(t, err)
	assert.Equal(t, "jerk-hut", s.StoreID)

	_, err = repo.FindByLogin(ctx, "nobody")
	assert.ErrorIs(t, err, models.ErrStoreNotFound)

	assert.ErrorIs(t, repo.Save(ctx, &models.Store{StoreID: "ghost"}), models.ErrStoreNotFound)

	list, total, err := repo.List(ctx, models.StoreFilter{Query: "jerk"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, list, 1)
}

func TestMemoryStoreInstancesAreIsolated(t *testing.T) {
	a, b := NewMemoryStore(), NewMemoryStore()
	require.NoError(t, a.Stores().Create(context.Background(), &models.Store{StoreID: "S1"}))
	_, err := b.Stores().Find(context.Background(), "S1")
	assert.ErrorIs(t, err, models.ErrStoreNotFound)

	a.Reset()
	_, err = a.Stores().Find(context.Background(), "S1")
	assert.ErrorIs(t, err, models.ErrStoreNotFound)
}
