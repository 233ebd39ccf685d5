package service

import (
	"context"
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/supplyconnect/internal/models"
)

const (
	// DefaultDealerRadiusKm is used when no search radius is given.
	DefaultDealerRadiusKm = 10.0
	// MaxDealerRadiusKm caps the search radius.
	MaxDealerRadiusKm = 100.0

	earthRadiusKm = 6371.0
)

// DealerStore is the account persistence the dealer directory needs.
type DealerStore interface {
	GetShopkeeperByID(ctx context.Context, id uuid.UUID) (*models.Shopkeeper, error)
	GetDealerByID(ctx context.Context, id uuid.UUID) (*models.Dealer, error)
	ListDealers(ctx context.Context) ([]models.Dealer, error)
	SetConnectedDealer(ctx context.Context, shopkeeperID, dealerID uuid.UUID) error
	ListShopkeepersByDealer(ctx context.Context, dealerID uuid.UUID) ([]models.Shopkeeper, error)
}

// DealerService finds dealers near a shop and manages shop/dealer links.
type DealerService struct {
	store DealerStore
}

// NewDealerService creates a new DealerService.
func NewDealerService(store DealerStore) *DealerService {
	return &DealerService{store: store}
}

// HaversineKm returns the great-circle distance between two coordinates.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	toRad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// NearbyDealers returns dealers within radiusKm of the shopkeeper, nearest
// first. A non-positive radius uses the default; larger radii are capped.
func (s *DealerService) NearbyDealers(ctx context.Context, shopkeeperID uuid.UUID, radiusKm float64) ([]models.NearbyDealer, error) {
	if radiusKm <= 0 || math.IsNaN(radiusKm) {
		radiusKm = DefaultDealerRadiusKm
	}
	if radiusKm > MaxDealerRadiusKm {
		radiusKm = MaxDealerRadiusKm
	}

	shop, err := s.store.GetShopkeeperByID(ctx, shopkeeperID)
	if err != nil {
		return nil, err
	}
	dealers, err := s.store.ListDealers(ctx)
	if err != nil {
		return nil, err
	}

	nearby := []models.NearbyDealer{}
	for _, d := range dealers {
		dist := HaversineKm(shop.Latitude, shop.Longitude, d.Latitude, d.Longitude)
		if dist <= radiusKm {
			nearby = append(nearby, models.NearbyDealer{Dealer: d, DistanceKm: math.Round(dist*100) / 100})
		}
	}
	sort.SliceStable(nearby, func(i, j int) bool { return nearby[i].DistanceKm < nearby[j].DistanceKm })

	log.Debug().Str("shopkeeper_id", shopkeeperID.String()).Float64("radius_km", radiusKm).Int("found", len(nearby)).Msg("nearby dealers")
	return nearby, nil
}

// ConnectDealer links the shopkeeper to a dealer.
func (s *DealerService) ConnectDealer(ctx context.Context, shopkeeperID, dealerID uuid.UUID) (*models.Dealer, error) {
	dealer, err := s.store.GetDealerByID(ctx, dealerID)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetConnectedDealer(ctx, shopkeeperID, dealerID); err != nil {
		return nil, err
	}
	log.Info().Str("shopkeeper_id", shopkeeperID.String()).Str("dealer_id", dealerID.String()).Msg("dealer connected")
	return dealer, nil
}

// DealerShops returns the shops connected to a dealer.
func (s *DealerService) DealerShops(ctx context.Context, dealerID uuid.UUID) ([]models.Shopkeeper, error) {
	if _, err := s.store.GetDealerByID(ctx, dealerID); err != nil {
		return nil, err
	}
	return s.store.ListShopkeepersByDealer(ctx, dealerID)
}

