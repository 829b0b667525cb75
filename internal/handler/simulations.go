package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Neo52000/ma-papeterie-sub000/internal/apierror"
	"github.com/Neo52000/ma-papeterie-sub000/internal/dto"
	"github.com/Neo52000/ma-papeterie-sub000/internal/model"
	"github.com/Neo52000/ma-papeterie-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SimulationsHandler struct {
	svc   service.SimulationService
	cache SimulationCache
}

func NewSimulationsHandler(svc service.SimulationService, cache SimulationCache) *SimulationsHandler {
	return &SimulationsHandler{svc: svc, cache: cache}
}

func (h *SimulationsHandler) Run(c *gin.Context) {
	var req dto.RunSimulationRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Run(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *SimulationsHandler) List(c *gin.Context) {
	var filter dto.SimulationFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get serves a simulation with its items. Only rolled_back simulations are
// cached: that status is terminal, while completed and applied can both
// still advance and must be served fresh.
func (h *SimulationsHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalide"))
		return
	}
	ctx := c.Request.Context()

	if payload, ok := h.cache.Get(ctx, id.String()); ok {
		var resp dto.SimulationResponse
		if jsonErr := json.Unmarshal(payload, &resp); jsonErr == nil {
			c.JSON(http.StatusOK, resp)
			return
		}
	}

	resp, err := h.svc.Get(ctx, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if resp.Status == string(model.SimulationRolledBack) {
		// Populate cache — best effort, ignore errors
		if payload, jsonErr := json.Marshal(resp); jsonErr == nil {
			h.cache.Set(context.Background(), id.String(), payload)
		}
	}

	c.JSON(http.StatusOK, resp)
}
