package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockStatus is the availability classification derived from stock and demand.
type StockStatus string

const (
	StockStatusInStock    StockStatus = "In Stock"
	StockStatusLowStock   StockStatus = "Low Stock"
	StockStatusOutOfStock StockStatus = "Out of Stock"
)

// LowStockRatio is the share of predicted demand below which stock is low.
const LowStockRatio = 0.8

// DeriveStockStatus classifies a product. Inputs are expected to have passed
// ValidateStockInputs.
func DeriveStockStatus(stock int, predictedDemand float64) StockStatus {
	switch {
	case stock == 0:
		return StockStatusOutOfStock
	case float64(stock) < predictedDemand*LowStockRatio:
		return StockStatusLowStock
	default:
		return StockStatusInStock
	}
}

// Product is a catalog entry owned by a shopkeeper.
// Status is never stored; it is derived on read.
type Product struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	ShopkeeperID    uuid.UUID       `db:"shopkeeper_id" json:"shopkeeperId"`
	SKU             string          `db:"sku" json:"sku"`
	Name            string          `db:"name" json:"name"`
	Category        string          `db:"category" json:"category"`
	Stock           int             `db:"stock" json:"stock"`
	PredictedDemand float64         `db:"predicted_demand" json:"predictedDemand"`
	Price           decimal.Decimal `db:"price" json:"price"`
	CreatedAt       time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updatedAt"`
}

// Status derives the product's stock status from its current fields.
func (p Product) Status() StockStatus {
	return DeriveStockStatus(p.Stock, p.PredictedDemand)
}

// MarshalJSON adds the derived status to the serialized product.
func (p Product) MarshalJSON() ([]byte, error) {
	type alias Product
	return json.Marshal(struct {
		alias
		Status StockStatus `json:"status"`
	}{
		alias:  alias(p),
		Status: p.Status(),
	})
}
