package handler

import (
	"net/http"

	"github.com/kantman01/ai-stock-management-sub000/internal/dto"
	"github.com/kantman01/ai-stock-management-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type BarcodeHandler struct{ svc service.SupplierOrderService }

func NewBarcodeHandler(svc service.SupplierOrderService) *BarcodeHandler {
	return &BarcodeHandler{svc: svc}
}

// Scan handles POST /v1/barcode/scan. Scanning a product confirms arrival of
// every shipped supplier order containing it.
func (h *BarcodeHandler) Scan(c *gin.Context) {
	var req dto.BarcodeScanRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Scan(c.Request.Context(), req.Code)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
