package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/supplyconnect/internal/models"
	"github.com/GTDGit/supplyconnect/internal/utils"
)

func TestHaversineKm(t *testing.T) {
	assert.InDelta(t, 0, HaversineKm(-6.2, 106.8, -6.2, 106.8), 1e-9)
	// Jakarta to Bandung, roughly 116 km.
	assert.InDelta(t, 116, HaversineKm(-6.2088, 106.8456, -6.9175, 107.6191), 3)
	// One degree of latitude.
	assert.InDelta(t, 111.19, HaversineKm(0, 0, 1, 0), 0.05)
}

func seedDealers(t *testing.T, store *memAccountStore) (shop uuid.UUID, near, mid, far uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	sk := &models.Shopkeeper{Name: "Sari", Email: "sari@example.com", ShopName: "Toko Sari", Latitude: -6.2, Longitude: 106.8}
	require.NoError(t, store.CreateShopkeeper(ctx, sk))

	mk := func(name string, lat float64) uuid.UUID {
		d := &models.Dealer{Name: name, Email: name + "@example.com", CompanyName: name + " Co", Latitude: lat, Longitude: 106.8}
		require.NoError(t, store.CreateDealer(ctx, d))
		return d.ID
	}
	// 0.01 degree of latitude is about 1.1 km.
	near = mk("near", -6.21)
	mid = mk("mid", -6.25)
	far = mk("far", -6.5)
	return sk.ID, near, mid, far
}

func TestDealerService_NearbyDealers(t *testing.T) {
	store := newMemAccountStore()
	svc := NewDealerService(store)
	shop, near, mid, _ := seedDealers(t, store)

	got, err := svc.NearbyDealers(context.Background(), shop, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, near, got[0].ID)
	assert.Equal(t, mid, got[1].ID)
	assert.InDelta(t, 1.11, got[0].DistanceKm, 0.01)
	assert.LessOrEqual(t, got[0].DistanceKm, got[1].DistanceKm)

	wide, err := svc.NearbyDealers(context.Background(), shop, 50)
	require.NoError(t, err)
	assert.Len(t, wide, 3)
}

func TestDealerService_RadiusCapped(t *testing.T) {
	store := newMemAccountStore()
	svc := NewDealerService(store)
	shop, _, _, _ := seedDealers(t, store)
	require.NoError(t, store.CreateDealer(context.Background(), &models.Dealer{Name: "x", Email: "x@example.com", Latitude: -8.2, Longitude: 106.8}))

	got, err := svc.NearbyDealers(context.Background(), shop, 10000)
	require.NoError(t, err)
	for _, d := range got {
		assert.LessOrEqual(t, d.DistanceKm, MaxDealerRadiusKm)
	}
	assert.Len(t, got, 3)
}

func TestDealerService_ConnectAndShops(t *testing.T) {
	store := newMemAccountStore()
	svc := NewDealerService(store)
	shop, near, mid, _ := seedDealers(t, store)

	dealer, err := svc.ConnectDealer(context.Background(), shop, near)
	require.NoError(t, err)
	assert.Equal(t, "near Co", dealer.CompanyName)

	shops, err := svc.DealerShops(context.Background(), near)
	require.NoError(t, err)
	require.Len(t, shops, 1)
	assert.Equal(t, "Toko Sari", shops[0].ShopName)

	none, err := svc.DealerShops(context.Background(), mid)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDealerService_UnknownDealer(t *testing.T) {
	store := newMemAccountStore()
	svc := NewDealerService(store)
	shop, _, _, _ := seedDealers(t, store)

	_, err := svc.ConnectDealer(context.Background(), shop, uuid.New())
	assert.ErrorIs(t, err, utils.ErrDealerNotFound)

	_, err = svc.DealerShops(context.Background(), uuid.New())
	assert.ErrorIs(t, err, utils.ErrDealerNotFound)
}
