package models

import (
	"time"

	"github.com/google/uuid"
)

// SaleRecord is one dated sales row kept from an uploaded file.
type SaleRecord struct {
	ShopkeeperID uuid.UUID `db:"shopkeeper_id" json:"-"`
	FileSHA256   string    `db:"file_sha256" json:"-"`
	ProductID    string    `db:"product_id" json:"productId"`
	ProductName  string    `db:"product_name" json:"productName"`
	SaleDate     time.Time `db:"sale_date" json:"saleDate"`
	Quantity     float64   `db:"quantity" json:"quantity"`
}

// DashboardRange selects the window a dashboard covers.
type DashboardRange string

const (
	DashboardRangeWeek  DashboardRange = "week"
	DashboardRangeMonth DashboardRange = "month"
	DashboardRangeYear  DashboardRange = "year"
)

// DashboardStats are totals for the selected window. Each growth figure is
// the percentage change against the window of equal length just before it.
type DashboardStats struct {
	TotalSales           float64 `json:"totalSales"`
	SalesGrowth          float64 `json:"salesGrowth"`
	TotalOrders          int     `json:"totalOrders"`
	OrdersGrowth         float64 `json:"ordersGrowth"`
	TotalProducts        int     `json:"totalProducts"`
	ProductsGrowth       float64 `json:"productsGrowth"`
	AverageOrderSize     float64 `json:"averageOrderSize"`
	AverageOrderGrowth   float64 `json:"averageOrderGrowth"`
	PredictionRuns       int     `json:"predictionRuns"`
	PredictionRunsGrowth float64 `json:"predictionRunsGrowth"`
}

// Series is a labelled list of values for a chart.
type Series struct {
	Labels []string  `json:"labels"`
	Data   []float64 `json:"data"`
}

// ProductShare is a product's share of units sold in the window.
type ProductShare struct {
	Name       string  `json:"name"`
	Quantity   float64 `json:"quantity"`
	Percentage float64 `json:"percentage"`
}

// Dashboard is the shopkeeper's sales overview.
type Dashboard struct {
	Range       DashboardRange `json:"range"`
	From        time.Time      `json:"from"`
	To          time.Time      `json:"to"`
	Stats       DashboardStats `json:"stats"`
	Sales       Series         `json:"salesData"`
	TopProducts []ProductShare `json:"topProducts"`
	OrdersByDay Series         `json:"ordersByDay"`
}
