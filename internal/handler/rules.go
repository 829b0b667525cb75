package handler

import (
	"net/http"

	"github.com/Neo52000/ma-papeterie-sub000/internal/apierror"
	"github.com/Neo52000/ma-papeterie-sub000/internal/dto"
	"github.com/Neo52000/ma-papeterie-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RulesHandler struct{ svc service.RulesetService }

func NewRulesHandler(svc service.RulesetService) *RulesHandler {
	return &RulesHandler{svc: svc}
}

// Create handles POST /rulesets/:id/rules.
func (h *RulesHandler) Create(c *gin.Context) {
	rulesetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalide"))
		return
	}
	var req dto.CreateRuleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateRule(c.Request.Context(), rulesetID, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List handles GET /rulesets/:id/rules.
func (h *RulesHandler) List(c *gin.Context) {
	rulesetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalide"))
		return
	}
	resp, err := h.svc.ListRules(c.Request.Context(), rulesetID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RulesHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalide"))
		return
	}
	var req dto.UpdateRuleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateRule(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RulesHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalide"))
		return
	}
	if err := h.svc.DeleteRule(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RulesHandler) Activate(c *gin.Context)   { h.setActive(c, true) }
func (h *RulesHandler) Deactivate(c *gin.Context) { h.setActive(c, false) }

func (h *RulesHandler) setActive(c *gin.Context, active bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalide"))
		return
	}
	if err := h.svc.SetRuleActive(c.Request.Context(), id, active); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
