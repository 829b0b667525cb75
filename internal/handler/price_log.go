package handler

import (
	"net/http"
	"time"

	"github.com/Neo52000/ma-papeterie-sub000/internal/apierror"
	"github.com/Neo52000/ma-papeterie-sub000/internal/dto"
	"github.com/Neo52000/ma-papeterie-sub000/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PriceLogHandler serves the read side of the price-change ledger.
type PriceLogHandler struct {
	repo repository.PriceChangeLogRepository
}

func NewPriceLogHandler(repo repository.PriceChangeLogRepository) *PriceLogHandler {
	return &PriceLogHandler{repo: repo}
}

// ListByProduct handles GET /products/:id/price-log.
func (h *PriceLogHandler) ListByProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalide"))
		return
	}
	var filter dto.PriceLogFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}

	entries, total, err := h.repo.ListByProduct(c.Request.Context(), productID, filter.Page, filter.Limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	resp := dto.PriceLogListResponse{Total: total, Items: make([]dto.PriceLogEntryResponse, 0, len(entries))}
	for i := range entries {
		e := &entries[i]
		item := dto.PriceLogEntryResponse{
			ID:                 e.ID.String(),
			ProductID:          e.ProductID.String(),
			SimulationID:       e.SimulationID.String(),
			RuleType:           string(e.RuleType),
			OldPriceHT:         e.OldPriceHT,
			NewPriceHT:         e.NewPriceHT,
			PriceChangePercent: e.PriceChangePercent,
			OldMarginPercent:   e.OldMarginPercent,
			NewMarginPercent:   e.NewMarginPercent,
			Reason:             e.Reason,
			AppliedBy:          e.AppliedBy.String(),
			AppliedAt:          e.AppliedAt.Format(time.RFC3339),
			IsRollback:         e.IsRollback,
		}
		if e.RollbackOf != nil {
			of := e.RollbackOf.String()
			item.RollbackOf = &of
		}
		resp.Items = append(resp.Items, item)
	}
	c.JSON(http.StatusOK, resp)
}
