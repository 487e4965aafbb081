package handler

import (
	"net/http"
	"strconv"

	"github.com/kantman01/ai-stock-management-sub000/internal/apierror"
	"github.com/kantman01/ai-stock-management-sub000/internal/dto"
	"github.com/kantman01/ai-stock-management-sub000/internal/middleware"
	"github.com/kantman01/ai-stock-management-sub000/internal/repository"
	"github.com/kantman01/ai-stock-management-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type StockHandler struct{ ledger service.LedgerService }

func NewStockHandler(ledger service.LedgerService) *StockHandler {
	return &StockHandler{ledger: ledger}
}

// CreateMovement handles POST /v1/stock/movements — manual ledger entries:
// receipts, supplier returns, waste, and adjustments. Sales and customer
// returns are only written by the order flows.
func (h *StockHandler) CreateMovement(c *gin.Context) {
	var req dto.StockMovementRequest
	if !bindAndValidate(c, &req) {
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid product id"))
		return
	}

	actor := middleware.GetActor(c)
	actorID := actor.ID
	mov, err := h.ledger.Record(c.Request.Context(), productID, req.Kind, req.Quantity, req.Note, &actorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.StockMovementResponse{
		ID:            mov.ID.String(),
		ProductID:     mov.ProductID.String(),
		Kind:          mov.Kind,
		Quantity:      mov.Quantity,
		PreviousStock: mov.PreviousStock,
		NewStock:      mov.NewStock,
		Note:          mov.Note,
		CreatedAt:     mov.CreatedAt.Format("2006-01-02T15:04:05Z"),
	})
}

// ListMovements handles GET /v1/stock/movements.
func (h *StockHandler) ListMovements(c *gin.Context) {
	var filter repository.StockMovementFilter
	if raw := c.Query("product_id"); raw != "" {
		pid, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("invalid product_id filter"))
			return
		}
		filter.ProductID = &pid
	}
	filter.Kind = c.Query("kind")
	filter.Page = intQuery(c, "page", 1)
	filter.Limit = intQuery(c, "limit", 100)

	resp, err := h.ledger.List(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func intQuery(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil || v < 1 {
		return def
	}
	return v
}
