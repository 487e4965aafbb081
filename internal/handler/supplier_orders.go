package handler

import (
	"net/http"

	"github.com/kantman01/ai-stock-management-sub000/internal/apierror"
	"github.com/kantman01/ai-stock-management-sub000/internal/dto"
	"github.com/kantman01/ai-stock-management-sub000/internal/middleware"
	"github.com/kantman01/ai-stock-management-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SupplierOrdersHandler struct{ svc service.SupplierOrderService }

func NewSupplierOrdersHandler(svc service.SupplierOrderService) *SupplierOrdersHandler {
	return &SupplierOrdersHandler{svc: svc}
}

// Create handles POST /v1/supplier-orders (manual purchase order).
func (h *SupplierOrdersHandler) Create(c *gin.Context) {
	var req dto.CreateSupplierOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req, middleware.GetActor(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// UpdateStatus handles PATCH /v1/supplier-orders/:id/status. Suppliers may
// only walk their own orders forward; staff may perform any non-terminal
// edit. Entering completed is rejected here — use Complete.
func (h *SupplierOrdersHandler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid supplier order id"))
		return
	}
	var req dto.UpdateSupplierOrderStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateStatus(c.Request.Context(), id, req.Status, middleware.GetActor(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Complete handles POST /v1/supplier-orders/:id/complete — the receiving
// step, with optional per-item quantity overrides.
func (h *SupplierOrdersHandler) Complete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid supplier order id"))
		return
	}
	var req dto.CompleteSupplierOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Complete(c.Request.Context(), id, req.Overrides, middleware.GetActor(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get handles GET /v1/supplier-orders/:id.
func (h *SupplierOrdersHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid supplier order id"))
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// List handles GET /v1/supplier-orders.
func (h *SupplierOrdersHandler) List(c *gin.Context) {
	var filter dto.SupplierOrderFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
