package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/temu/internal/auth"
	"github.com/justsurfingit/temu/internal/dtos"
	"github.com/justsurfingit/temu/internal/services"
)

type ApplicationHandler struct {
	Service *services.ApplicationService
}

func NewApplicationHandler(s *services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{Service: s}
}

// POST /jobs/:id/applications
func (h *ApplicationHandler) Apply(c *gin.Context) {
	jobID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req dtos.ApplyRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid JSON format", err)
			return
		}
	}
	id, _ := auth.FromContext(c)
	app, err := h.Service.Apply(c.Request.Context(), id.UserID, jobID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, app)
}

// GET /jobs/:id/applications
func (h *ApplicationHandler) ListForJob(c *gin.Context) {
	jobID, ok := idParam(c, "id")
	if !ok {
		return
	}
	id, _ := auth.FromContext(c)
	apps, err := h.Service.ListForJob(c.Request.Context(), id.UserID, jobID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, apps)
}

// GET /applications
func (h *ApplicationHandler) ListMine(c *gin.Context) {
	id, _ := auth.FromContext(c)
	apps, err := h.Service.ListForSeeker(c.Request.Context(), id.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, apps)
}

// PATCH /applications/:id
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	appID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req dtos.ApplicationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid JSON format", err)
		return
	}
	id, _ := auth.FromContext(c)
	app, err := h.Service.UpdateStatus(c.Request.Context(), id.UserID, appID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}

// GET /applications/:id/events
func (h *ApplicationHandler) Events(c *gin.Context) {
	appID, ok := idParam(c, "id")
	if !ok {
		return
	}
	id, _ := auth.FromContext(c)
	events, err := h.Service.Events(c.Request.Context(), id.UserID, appID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}
