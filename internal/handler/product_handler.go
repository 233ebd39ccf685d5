package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/GTDGit/supplyconnect/internal/middleware"
	"github.com/GTDGit/supplyconnect/internal/service"
	"github.com/GTDGit/supplyconnect/internal/utils"
)

// ProductHandler handles the shopkeeper's catalog endpoints.
type ProductHandler struct {
	productService *service.ProductService
}

// NewProductHandler constructs a ProductHandler.
func NewProductHandler(productService *service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// ListProducts handles GET /v1/shopkeeper/products?search=
func (h *ProductHandler) ListProducts(c *gin.Context) {
	owner := middleware.GetSession(c).AccountID
	products, err := h.productService.ListProducts(c.Request.Context(), owner, c.Query("search"))
	if err != nil {
		handleError(c, err)
		return
	}
	utils.Success(c, 200, "Products retrieved", gin.H{
		"products": products,
	})
}

// StockAlerts handles GET /v1/shopkeeper/products/alerts
func (h *ProductHandler) StockAlerts(c *gin.Context) {
	owner := middleware.GetSession(c).AccountID
	products, err := h.productService.StockAlerts(c.Request.Context(), owner)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.Success(c, 200, "Stock alerts retrieved", gin.H{
		"products": products,
	})
}

// CreateProduct handles POST /v1/shopkeeper/products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req service.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	owner := middleware.GetSession(c).AccountID
	product, err := h.productService.CreateProduct(c.Request.Context(), owner, &req)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.Success(c, 201, "Product created", product)
}

// UpdateProduct handles PATCH /v1/shopkeeper/products/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handleError(c, utils.ErrProductNotFound)
		return
	}

	var req service.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	owner := middleware.GetSession(c).AccountID
	product, err := h.productService.UpdateProduct(c.Request.Context(), owner, id, &req)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.Success(c, 200, "Product updated", product)
}
