package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/temu/internal/auth"
	"github.com/justsurfingit/temu/internal/dtos"
	"github.com/justsurfingit/temu/internal/flows"
	"github.com/justsurfingit/temu/internal/models"
	"github.com/justsurfingit/temu/internal/services"
)

type OnboardingHandler struct {
	Service *services.OnboardingService
	// Timeout bounds every load, save and reset. Zero means no bound.
	Timeout time.Duration
}

func NewOnboardingHandler(s *services.OnboardingService, timeout time.Duration) *OnboardingHandler {
	return &OnboardingHandler{Service: s, Timeout: timeout}
}

func (h *OnboardingHandler) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.Timeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), h.Timeout)
}

// flow resolves the :flow parameter and checks the caller may run it.
func (h *OnboardingHandler) flow(c *gin.Context) (auth.Identity, string, bool) {
	id, _ := auth.FromContext(c)
	name := c.Param("flow")
	if _, err := flows.Lookup(name); err != nil {
		respondError(c, err)
		return id, "", false
	}
	if id.Role != models.RoleAdmin && id.Role != flows.Role(name) {
		abort(c, http.StatusForbidden, dtos.ErrorResponse{
			Error: "the " + name + " wizard is only available to " + flows.Role(name),
			Code:  CodeForbidden,
		})
		return id, "", false
	}
	return id, name, true
}

// GET /onboarding/:flow
func (h *OnboardingHandler) Get(c *gin.Context) {
	id, name, ok := h.flow(c)
	if !ok {
		return
	}
	ctx, cancel := h.requestContext(c)
	defer cancel()
	snap, err := h.Service.Load(ctx, id.UserID, name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// POST /onboarding/:flow
func (h *OnboardingHandler) Save(c *gin.Context) {
	id, name, ok := h.flow(c)
	if !ok {
		return
	}
	var req dtos.SaveStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid JSON format", err)
		return
	}
	ctx, cancel := h.requestContext(c)
	defer cancel()
	res, err := h.Service.SaveStep(ctx, id.UserID, name, req.ToWizard())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// DELETE /onboarding/:flow
func (h *OnboardingHandler) Reset(c *gin.Context) {
	id, name, ok := h.flow(c)
	if !ok {
		return
	}
	ctx, cancel := h.requestContext(c)
	defer cancel()
	if err := h.Service.Reset(ctx, id.UserID, name); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
