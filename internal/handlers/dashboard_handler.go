package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/temu/internal/auth"
	"github.com/justsurfingit/temu/internal/services"
)

type DashboardHandler struct {
	Service *services.DashboardService
}

func NewDashboardHandler(s *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{Service: s}
}

// GET /dashboard
func (h *DashboardHandler) Get(c *gin.Context) {
	id, _ := auth.FromContext(c)
	d, err := h.Service.ForUser(c.Request.Context(), id.UserID, id.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}
