package handler

import (
	"net/http"

	"github.com/Neo52000/ma-papeterie-sub000/internal/apierror"
	"github.com/Neo52000/ma-papeterie-sub000/internal/dto"
	"github.com/Neo52000/ma-papeterie-sub000/internal/middleware"
	"github.com/Neo52000/ma-papeterie-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PricingHandler exposes the two catalog-mutating endpoints. Role gating
// (admin/super_admin) happens in the router middleware, before any read.
type PricingHandler struct{ svc service.PricingService }

func NewPricingHandler(svc service.PricingService) *PricingHandler {
	return &PricingHandler{svc: svc}
}

// Apply handles POST /pricing-apply.
func (h *PricingHandler) Apply(c *gin.Context) {
	userID, req, ok := h.bindPricing(c)
	if !ok {
		return
	}
	resp, err := h.svc.Apply(c.Request.Context(), userID, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Rollback handles POST /pricing-rollback.
func (h *PricingHandler) Rollback(c *gin.Context) {
	userID, req, ok := h.bindPricing(c)
	if !ok {
		return
	}
	resp, err := h.svc.Rollback(c.Request.Context(), userID, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PricingHandler) bindPricing(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	var req dto.PricingRequest
	if !bindAndValidate(c, &req) {
		return uuid.Nil, uuid.Nil, false
	}
	simulationID, err := uuid.Parse(req.SimulationID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("simulation_id invalide"))
		return uuid.Nil, uuid.Nil, false
	}
	claims := middleware.GetClaims(c)
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Token mal formé"))
		return uuid.Nil, uuid.Nil, false
	}
	return userID, simulationID, true
}
