package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/supplyconnect/internal/models"
	"github.com/GTDGit/supplyconnect/internal/utils"
)

type memProductStore struct {
	mu       sync.Mutex
	products map[uuid.UUID]*models.Product
	updates  int
	failSKU  string
}

func newMemProductStore() *memProductStore {
	return &memProductStore{products: make(map[uuid.UUID]*models.Product)}
}

func (s *memProductStore) List(ctx context.Context, shopkeeperID uuid.UUID, search string) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := strings.ToLower(search)
	out := []models.Product{}
	for _, p := range s.products {
		if p.ShopkeeperID != shopkeeperID {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(p.Name), q) && !strings.Contains(strings.ToLower(p.Category), q) {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (s *memProductStore) GetByID(ctx context.Context, shopkeeperID, id uuid.UUID) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok || p.ShopkeeperID != shopkeeperID {
		return nil, utils.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *memProductStore) Create(ctx context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.products[p.ID] = &cp
	return nil
}

func (s *memProductStore) Update(ctx context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates++
	cp := *p
	s.products[p.ID] = &cp
	return nil
}

// ApplyPredictedDemand stages every write and only commits when the whole
// batch succeeds. failSKU makes the batch fail when it reaches that SKU.
func (s *memProductStore) ApplyPredictedDemand(ctx context.Context, shopkeeperID uuid.UUID, predictions []models.Prediction) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	staged := map[*models.Product]float64{}
	matched := []string{}
	for _, pred := range predictions {
		if s.failSKU != "" && pred.ProductID == s.failSKU {
			return nil, errors.New("connection reset")
		}
		for _, p := range s.products {
			if p.ShopkeeperID == shopkeeperID && p.SKU == pred.ProductID {
				staged[p] = pred.PredictedDemand
				matched = append(matched, pred.ProductID)
				break
			}
		}
	}
	for p, demand := range staged {
		p.PredictedDemand = demand
	}
	return matched, nil
}

func seedCatalog(t *testing.T, svc *ProductService, owner uuid.UUID) map[string]*models.Product {
	t.Helper()
	rows := []CreateProductRequest{
		{SKU: "1", Name: "Premium Smartphone", Category: "Electronics", Stock: 24, PredictedDemand: 35, Price: decimal.RequireFromString("899.99")},
		{SKU: "2", Name: "Wireless Earbuds", Category: "Audio", Stock: 45, PredictedDemand: 30, Price: decimal.RequireFromString("129.99")},
		{SKU: "3", Name: "Smart Watch", Category: "Wearables", Stock: 18, PredictedDemand: 25, Price: decimal.RequireFromString("249.99")},
		{SKU: "6", Name: "Gaming Console", Category: "Gaming", Stock: 0, PredictedDemand: 40, Price: decimal.RequireFromString("499.99")},
	}
	out := map[string]*models.Product{}
	for i := range rows {
		p, err := svc.CreateProduct(context.Background(), owner, &rows[i])
		require.NoError(t, err)
		out[p.Name] = p
	}
	return out
}

func TestProductService_ListSearch(t *testing.T) {
	svc := NewProductService(newMemProductStore())
	owner := uuid.New()
	seedCatalog(t, svc, owner)

	got, err := svc.ListProducts(context.Background(), owner, "  AUDIO ")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Wireless Earbuds", got[0].Name)

	all, err := svc.ListProducts(context.Background(), owner, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)

	other, err := svc.ListProducts(context.Background(), uuid.New(), "")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestProductService_StockAlerts(t *testing.T) {
	svc := NewProductService(newMemProductStore())
	owner := uuid.New()
	seedCatalog(t, svc, owner)

	alerts, err := svc.StockAlerts(context.Background(), owner)
	require.NoError(t, err)

	names := map[string]models.StockStatus{}
	for _, p := range alerts {
		names[p.Name] = p.Status()
	}
	assert.Equal(t, map[string]models.StockStatus{
		"Premium Smartphone": models.StockStatusLowStock,
		"Smart Watch":        models.StockStatusLowStock,
		"Gaming Console":     models.StockStatusOutOfStock,
	}, names)
}

func TestProductService_UpdateRederivesStatus(t *testing.T) {
	svc := NewProductService(newMemProductStore())
	owner := uuid.New()
	catalog := seedCatalog(t, svc, owner)
	watch := catalog["Smart Watch"]
	require.Equal(t, models.StockStatusLowStock, watch.Status())

	stock := 30
	updated, err := svc.UpdateProduct(context.Background(), owner, watch.ID, &UpdateProductRequest{Stock: &stock})
	require.NoError(t, err)
	assert.Equal(t, models.StockStatusInStock, updated.Status())

	zero := 0
	updated, err = svc.UpdateProduct(context.Background(), owner, watch.ID, &UpdateProductRequest{Stock: &zero})
	require.NoError(t, err)
	assert.Equal(t, models.StockStatusOutOfStock, updated.Status())

	demand := 0.0
	five := 5
	updated, err = svc.UpdateProduct(context.Background(), owner, watch.ID, &UpdateProductRequest{Stock: &five, PredictedDemand: &demand})
	require.NoError(t, err)
	assert.Equal(t, models.StockStatusInStock, updated.Status())
}

func TestProductService_UpdateRejectsInvalidValues(t *testing.T) {
	store := newMemProductStore()
	svc := NewProductService(store)
	owner := uuid.New()
	catalog := seedCatalog(t, svc, owner)
	phone := catalog["Premium Smartphone"]

	negative := -1
	_, err := svc.UpdateProduct(context.Background(), owner, phone.ID, &UpdateProductRequest{Stock: &negative})
	assert.ErrorIs(t, err, utils.ErrInvalidStockValues)

	badDemand := -3.0
	_, err = svc.UpdateProduct(context.Background(), owner, phone.ID, &UpdateProductRequest{PredictedDemand: &badDemand})
	assert.ErrorIs(t, err, utils.ErrInvalidStockValues)

	price := decimal.NewFromInt(-1)
	_, err = svc.UpdateProduct(context.Background(), owner, phone.ID, &UpdateProductRequest{Price: &price})
	assert.ErrorIs(t, err, utils.ErrInvalidRequest)

	assert.Equal(t, 0, store.updates)
	stored, _ := store.GetByID(context.Background(), owner, phone.ID)
	assert.Equal(t, 24, stored.Stock)
}

func TestProductService_UpdateNotFound(t *testing.T) {
	svc := NewProductService(newMemProductStore())
	_, err := svc.UpdateProduct(context.Background(), uuid.New(), uuid.New(), &UpdateProductRequest{})
	assert.ErrorIs(t, err, utils.ErrProductNotFound)
}

func TestProductService_CreateValidation(t *testing.T) {
	svc := NewProductService(newMemProductStore())
	owner := uuid.New()

	_, err := svc.CreateProduct(context.Background(), owner, &CreateProductRequest{Name: "No SKU"})
	assert.ErrorIs(t, err, utils.ErrInvalidRequest)

	_, err = svc.CreateProduct(context.Background(), owner, &CreateProductRequest{SKU: "X", Name: "Bad", Stock: -2})
	assert.ErrorIs(t, err, utils.ErrInvalidStockValues)
}

func TestProductService_ApplyPredictions(t *testing.T) {
	store := newMemProductStore()
	svc := NewProductService(store)
	owner := uuid.New()
	catalog := seedCatalog(t, svc, owner)

	res, err := svc.ApplyPredictions(context.Background(), owner, []models.Prediction{
		{ProductID: "2", PredictedDemand: 60},
		{ProductID: "99", PredictedDemand: 10},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, res.Updated)
	assert.Equal(t, []string{"99"}, res.Unmatched)

	earbuds, err := store.GetByID(context.Background(), owner, catalog["Wireless Earbuds"].ID)
	require.NoError(t, err)
	assert.Equal(t, 60.0, earbuds.PredictedDemand)
	assert.Equal(t, models.StockStatusLowStock, earbuds.Status())
}

func TestProductService_ApplyPredictionsIsAllOrNothing(t *testing.T) {
	store := newMemProductStore()
	svc := NewProductService(store)
	owner := uuid.New()
	catalog := seedCatalog(t, svc, owner)
	store.failSKU = "3"

	_, err := svc.ApplyPredictions(context.Background(), owner, []models.Prediction{
		{ProductID: "1", PredictedDemand: 5},
		{ProductID: "2", PredictedDemand: 60},
		{ProductID: "3", PredictedDemand: 7},
	})
	require.Error(t, err)

	for name, want := range map[string]float64{"Premium Smartphone": 35, "Wireless Earbuds": 30, "Smart Watch": 25} {
		p, err := store.GetByID(context.Background(), owner, catalog[name].ID)
		require.NoError(t, err)
		assert.Equal(t, want, p.PredictedDemand, name)
	}
}

func TestProductService_ApplyPredictionsValidatesBeforeWriting(t *testing.T) {
	store := newMemProductStore()
	svc := NewProductService(store)
	owner := uuid.New()
	catalog := seedCatalog(t, svc, owner)

	_, err := svc.ApplyPredictions(context.Background(), owner, []models.Prediction{
		{ProductID: "1", PredictedDemand: 5},
		{ProductID: "2", PredictedDemand: -1},
	})
	assert.ErrorIs(t, err, utils.ErrInvalidStockValues)

	phone, err := store.GetByID(context.Background(), owner, catalog["Premium Smartphone"].ID)
	require.NoError(t, err)
	assert.Equal(t, 35.0, phone.PredictedDemand)
}
