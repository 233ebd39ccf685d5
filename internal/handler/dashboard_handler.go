package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/GTDGit/supplyconnect/internal/middleware"
	"github.com/GTDGit/supplyconnect/internal/service"
	"github.com/GTDGit/supplyconnect/internal/utils"
)

// DashboardHandler serves the shopkeeper sales overview.
type DashboardHandler struct {
	dashboard *service.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// GetDashboard handles GET /v1/shopkeeper/dashboard?range=week|month|year
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	owner := middleware.GetSession(c).AccountID
	dashboard, err := h.dashboard.Dashboard(c.Request.Context(), owner, c.Query("range"))
	if err != nil {
		handleError(c, err)
		return
	}
	utils.Success(c, 200, "Dashboard retrieved", dashboard)
}
