package service

import (
	"context"
	"testing"

	"github.com/example/clickmenu/pkg/auth"
	"github.com/example/clickmenu/pkg/events"
	"github.com/example/clickmenu/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	f := newFixture(t)
	f.store(t, "S1", models.StoreActive, true)
	f.store(t, "paused", models.StorePaused, true)
	ctx := context.Background()

	session, err := f.stores.Login(ctx, "S1@Example.com", "pass-S1")
	require.NoError(t, err)
	assert.Equal(t, auth.RoleMerchant, session.Role)
	assert.Equal(t, "S1", session.Store.StoreID)

	claims, err := f.tokens.Parse(session.Token)
	require.NoError(t, err)
	assert.Equal(t, "S1", claims.StoreID)

	_, err = f.stores.Login(ctx, "S1", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.stores.Login(ctx, "nobody", "pass-S1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.stores.Login(ctx, "paused", "pass-paused")
	assert.ErrorIs(t, err, ErrStoreInactive)
	_, err = f.stores.Login(ctx, "paused", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAdminLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	session, err := f.stores.AdminLogin(ctx, "ops", "hunter2")
	require.NoError(t, err)
	claims, err := f.tokens.Parse(session.Token)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin, claims.Role)
	assert.Equal(t, "ops", claims.Subject)

	_, err = f.stores.AdminLogin(ctx, "ops", "hunter3")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.stores.AdminLogin(ctx, "root", "hunter2")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCreateStore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := AdminScope("ops")

	creds, err := f.stores.CreateStore(ctx, admin, NewStore{StoreID: "jerk-hut", Name: "Jerk Hut", Status: models.StoreActive})
	require.NoError(t, err)
	assert.Regexp(t, `^[0-9a-f]{8}$`, creds.Passcode)
	assert.NotEqual(t, creds.Passcode, creds.Store.PasscodeHash)

	_, err = f.stores.Login(ctx, "jerk-hut", creds.Passcode)
	require.NoError(t, err)

	_, err = f.stores.CreateStore(ctx, admin, NewStore{StoreID: "jerk-hut", Name: "Again"})
	assert.ErrorIs(t, err, models.ErrStoreExists)

	creds, err = f.stores.CreateStore(ctx, admin, NewStore{StoreID: "new-one", Name: "New", Passcode: "1234"})
	require.NoError(t, err)
	assert.Equal(t, "1234", creds.Passcode)
	assert.Equal(t, models.StoreOnboarding, creds.Store.Status)

	_, err = f.stores.CreateStore(ctx, admin, NewStore{StoreID: "has space", Name: "X"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.stores.CreateStore(ctx, MerchantScope("jerk-hut"), NewStore{StoreID: "x", Name: "X"})
	assert.ErrorIs(t, err, ErrScope)
}

func TestPublicStore(t *testing.T) {
	f := newFixture(t)
	f.store(t, "S1", models.StoreActive, true)
	f.store(t, "S2", models.StoreOnboarding, true)
	ctx := context.Background()

	st, err := f.stores.PublicStore(ctx, "S1")
	require.NoError(t, err)
	assert.Equal(t, "S1", st.StoreID)

	_, err = f.stores.PublicStore(ctx, "S2")
	assert.ErrorIs(t, err, models.ErrStoreNotFound)
}

func TestUpdateProfileKeepsPlatformFields(t *testing.T) {
	f := newFixture(t)
	f.store(t, "S1", models.StoreOnboarding, false)
	ctx := context.Background()

	name := "Jerk Hut Deluxe"
	active := models.StoreActive
	yes := true
	st, err := f.stores.UpdateProfile(ctx, MerchantScope("S1"), models.StorePatch{Name: &name, Status: &active, Authorized: &yes})
	require.NoError(t, err)
	assert.Equal(t, name, st.Name)
	assert.Equal(t, models.StoreOnboarding, st.Status)
	assert.False(t, st.Authorized)
	assert.Equal(t, now, st.UpdatedAt)

	_, err = f.stores.UpdateStore(ctx, MerchantScope("S1"), "S1", models.StorePatch{Status: &active})
	assert.ErrorIs(t, err, ErrScope)

	st, err = f.stores.UpdateStore(ctx, AdminScope("ops"), "S1", models.StorePatch{Status: &active, Authorized: &yes})
	require.NoError(t, err)
	assert.True(t, st.Public())
}

func TestListStores(t *testing.T) {
	f := newFixture(t)
	f.store(t, "S1", models.StoreActive, true)
	f.store(t, "S2", models.StorePaused, true)
	ctx := context.Background()

	page, err := f.stores.ListStores(ctx, AdminScope("ops"), models.StoreFilter{Status: models.StorePaused})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)
	assert.Equal(t, "S2", page.Items[0].StoreID)

	_, err = f.stores.ListStores(ctx, MerchantScope("S1"), models.StoreFilter{})
	assert.ErrorIs(t, err, ErrScope)
}

func TestBulkUpdateStatusIsBestEffort(t *testing.T) {
	f := newFixture(t)
	f.store(t, "S1", models.StoreActive, true)
	f.store(t, "S3", models.StoreActive, true)
	ctx := context.Background()

	res, err := f.stores.BulkUpdateStatus(ctx, AdminScope("ops"), []string{"S1", "S2", "S3", "S1"}, BulkPause)
	require.NoError(t, err)
	assert.Equal(t, []string{"S1", "S3"}, res.Succeeded)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, "S2", res.Failed[0].StoreID)
	assert.NotEmpty(t, res.Failed[0].Error)

	for _, id := range []string{"S1", "S3"} {
		st, err := f.db.Stores().Find(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, models.StorePaused, st.Status)
	}

	types := f.events.types()
	assert.Equal(t, events.TypeStoresBulkUpdated, types[len(types)-1])

	_, err = f.stores.BulkUpdateStatus(ctx, AdminScope("ops"), []string{"S1"}, "delete")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.stores.BulkUpdateStatus(ctx, AdminScope("ops"), nil, BulkActivate)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.stores.BulkUpdateStatus(ctx, MerchantScope("S1"), []string{"S1"}, BulkActivate)
	assert.ErrorIs(t, err, ErrScope)
}

func TestBulkResetPasscodes(t *testing.T) {
	f := newFixture(t)
	f.store(t, "S1", models.StoreActive, true)
	f.store(t, "S2", models.StoreActive, true)
	ctx := context.Background()

	res, err := f.stores.BulkResetPasscodes(ctx, AdminScope("ops"), []string{"S1", "ghost", "S2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"S1", "S2"}, res.Succeeded)
	require.Len(t, res.Failed, 1)
	require.Len(t, res.Passcodes, 2)

	_, err = f.stores.Login(ctx, "S1", "pass-S1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.stores.Login(ctx, "S1", res.Passcodes[0].Passcode)
	assert.NoError(t, err)

	assert.Contains(t, f.events.types(), events.TypePasscodeReset)
}
