package handler

import (
	"net/http"

	"github.com/kantman01/ai-stock-management-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type PricingHandler struct{ svc service.PricingService }

func NewPricingHandler(svc service.PricingService) *PricingHandler {
	return &PricingHandler{svc: svc}
}

// BySKU handles GET /v1/price/:sku — the cached price lookup used by
// point-of-sale terminals.
func (h *PricingHandler) BySKU(c *gin.Context) {
	resp, err := h.svc.BySKU(c.Request.Context(), c.Param("sku"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
