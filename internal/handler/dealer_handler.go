package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/GTDGit/supplyconnect/internal/middleware"
	"github.com/GTDGit/supplyconnect/internal/service"
	"github.com/GTDGit/supplyconnect/internal/utils"
)

// DealerHandler serves the dealer directory for both roles.
type DealerHandler struct {
	dealerService *service.DealerService
}

// NewDealerHandler creates a new DealerHandler.
func NewDealerHandler(dealerService *service.DealerService) *DealerHandler {
	return &DealerHandler{dealerService: dealerService}
}

// NearbyDealers handles GET /v1/shopkeeper/dealers/nearby?radius=
func (h *DealerHandler) NearbyDealers(c *gin.Context) {
	radius := service.DefaultDealerRadiusKm
	if v := c.Query("radius"); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil || r <= 0 {
			utils.Error(c, 400, "INVALID_REQUEST", "radius must be a positive number of kilometres")
			return
		}
		radius = r
	}

	owner := middleware.GetSession(c).AccountID
	dealers, err := h.dealerService.NearbyDealers(c.Request.Context(), owner, radius)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.Success(c, 200, "Nearby dealers retrieved", gin.H{
		"dealers": dealers,
	})
}

// ConnectDealer handles POST /v1/shopkeeper/dealers/:dealerId/connect
func (h *DealerHandler) ConnectDealer(c *gin.Context) {
	dealerID, err := uuid.Parse(c.Param("dealerId"))
	if err != nil {
		handleError(c, utils.ErrDealerNotFound)
		return
	}

	owner := middleware.GetSession(c).AccountID
	dealer, err := h.dealerService.ConnectDealer(c.Request.Context(), owner, dealerID)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.Success(c, 200, "Dealer connected", dealer)
}

// Shops handles GET /v1/dealer/shops
func (h *DealerHandler) Shops(c *gin.Context) {
	dealerID := middleware.GetSession(c).AccountID
	shops, err := h.dealerService.DealerShops(c.Request.Context(), dealerID)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.Success(c, 200, "Connected shops retrieved", gin.H{
		"shops": shops,
	})
}
