package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/GTDGit/supplyconnect/internal/models"
	"github.com/GTDGit/supplyconnect/internal/utils"
)

// ProductStore is the persistence the catalog needs.
type ProductStore interface {
	List(ctx context.Context, shopkeeperID uuid.UUID, search string) ([]models.Product, error)
	GetByID(ctx context.Context, shopkeeperID, id uuid.UUID) (*models.Product, error)
	Create(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, p *models.Product) error
	// ApplyPredictedDemand writes the batch atomically and returns the
	// SKUs that matched a product.
	ApplyPredictedDemand(ctx context.Context, shopkeeperID uuid.UUID, predictions []models.Prediction) ([]string, error)
}

// CreateProductRequest is the payload for adding a catalog product.
type CreateProductRequest struct {
	SKU             string          `json:"sku"`
	Name            string          `json:"name"`
	Category        string          `json:"category"`
	Stock           int             `json:"stock"`
	PredictedDemand float64         `json:"predictedDemand"`
	Price           decimal.Decimal `json:"price"`
}

// UpdateProductRequest is a partial product update; nil fields are kept.
type UpdateProductRequest struct {
	Name            *string          `json:"name"`
	Category        *string          `json:"category"`
	Stock           *int             `json:"stock"`
	PredictedDemand *float64         `json:"predictedDemand"`
	Price           *decimal.Decimal `json:"price"`
}

// ApplyResult reports how slot predictions were matched against the catalog.
type ApplyResult struct {
	Updated   []string `json:"updated"`
	Unmatched []string `json:"unmatched"`
}

// ProductService manages the shopkeeper product catalog.
type ProductService struct {
	store ProductStore
}

// NewProductService creates a new ProductService.
func NewProductService(store ProductStore) *ProductService {
	return &ProductService{store: store}
}

// ListProducts returns the catalog, optionally filtered by a case-insensitive
// substring of name or category.
func (s *ProductService) ListProducts(ctx context.Context, shopkeeperID uuid.UUID, search string) ([]models.Product, error) {
	return s.store.List(ctx, shopkeeperID, strings.TrimSpace(search))
}

// StockAlerts returns products that are low on or out of stock.
func (s *ProductService) StockAlerts(ctx context.Context, shopkeeperID uuid.UUID) ([]models.Product, error) {
	products, err := s.store.List(ctx, shopkeeperID, "")
	if err != nil {
		return nil, err
	}
	alerts := []models.Product{}
	for _, p := range products {
		if p.Status() != models.StockStatusInStock {
			alerts = append(alerts, p)
		}
	}
	return alerts, nil
}

// CreateProduct validates and inserts a product.
func (s *ProductService) CreateProduct(ctx context.Context, shopkeeperID uuid.UUID, req *CreateProductRequest) (*models.Product, error) {
	req.SKU = strings.TrimSpace(req.SKU)
	req.Name = strings.TrimSpace(req.Name)
	if req.SKU == "" {
		return nil, &utils.ValidationError{Field: "sku", Message: "is required"}
	}
	if req.Name == "" {
		return nil, &utils.ValidationError{Field: "name", Message: "is required"}
	}
	if err := validatePrice(req.Price); err != nil {
		return nil, err
	}
	status, err := DeriveStockStatus(req.Stock, req.PredictedDemand)
	if err != nil {
		return nil, err
	}

	p := &models.Product{
		ID:              uuid.New(),
		ShopkeeperID:    shopkeeperID,
		SKU:             req.SKU,
		Name:            req.Name,
		Category:        strings.TrimSpace(req.Category),
		Stock:           req.Stock,
		PredictedDemand: req.PredictedDemand,
		Price:           req.Price,
	}
	if err := s.store.Create(ctx, p); err != nil {
		return nil, err
	}
	log.Info().Str("shopkeeper_id", shopkeeperID.String()).Str("sku", p.SKU).Str("status", string(status)).Msg("product created")
	return p, nil
}

// UpdateProduct applies a partial update. The merged stock and demand are
// validated before anything is written and the status is derived from the
// merged record.
func (s *ProductService) UpdateProduct(ctx context.Context, shopkeeperID, id uuid.UUID, req *UpdateProductRequest) (*models.Product, error) {
	p, err := s.store.GetByID(ctx, shopkeeperID, id)
	if err != nil {
		return nil, err
	}
	before := p.Status()

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, &utils.ValidationError{Field: "name", Message: "must not be empty"}
		}
		p.Name = name
	}
	if req.Category != nil {
		p.Category = strings.TrimSpace(*req.Category)
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
	}
	if req.PredictedDemand != nil {
		p.PredictedDemand = *req.PredictedDemand
	}
	if req.Price != nil {
		if err := validatePrice(*req.Price); err != nil {
			return nil, err
		}
		p.Price = *req.Price
	}

	after, err := DeriveStockStatus(p.Stock, p.PredictedDemand)
	if err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, p); err != nil {
		return nil, err
	}

	if after != before {
		log.Info().
			Str("product_id", p.ID.String()).
			Str("from", string(before)).
			Str("to", string(after)).
			Msg("product stock status changed")
	}
	return p, nil
}

// ApplyPredictions copies predicted demand onto products whose SKU equals a
// prediction's product id. The whole batch is validated first and written in
// a single store call, so either every match is updated or none is.
func (s *ProductService) ApplyPredictions(ctx context.Context, shopkeeperID uuid.UUID, predictions []models.Prediction) (*ApplyResult, error) {
	for _, pred := range predictions {
		if err := ValidateStockInputs(0, pred.PredictedDemand); err != nil {
			return nil, err
		}
	}

	updated, err := s.store.ApplyPredictedDemand(ctx, shopkeeperID, predictions)
	if err != nil {
		return nil, err
	}

	matched := make(map[string]bool, len(updated))
	for _, sku := range updated {
		matched[sku] = true
	}
	result := &ApplyResult{Updated: updated, Unmatched: []string{}}
	for _, pred := range predictions {
		if !matched[pred.ProductID] {
			result.Unmatched = append(result.Unmatched, pred.ProductID)
		}
	}

	log.Info().
		Str("shopkeeper_id", shopkeeperID.String()).
		Int("updated", len(result.Updated)).
		Int("unmatched", len(result.Unmatched)).
		Msg("predictions applied to catalog")
	return result, nil
}

func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return &utils.ValidationError{Field: "price", Message: "must not be negative"}
	}
	return nil
}
