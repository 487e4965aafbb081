package handler

import (
	"net/http"

	"github.com/kantman01/ai-stock-management-sub000/internal/dto"
	"github.com/kantman01/ai-stock-management-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type ReplenishmentHandler struct{ svc service.ReplenishmentService }

func NewReplenishmentHandler(svc service.ReplenishmentService) *ReplenishmentHandler {
	return &ReplenishmentHandler{svc: svc}
}

// Run handles POST /v1/replenishment/run. With a document in the body the
// pipeline runs on it directly; without one the service asks the generator
// for a fresh analysis of the current low-stock snapshot.
func (h *ReplenishmentHandler) Run(c *gin.Context) {
	var req dto.RunReplenishmentRequest
	if !bindAndValidate(c, &req) {
		return
	}

	var (
		resp *dto.RunReplenishmentResponse
		err  error
	)
	if len(req.Document) > 0 {
		resp, err = h.svc.Run(c.Request.Context(), req.Document, req.Context)
	} else {
		resp, err = h.svc.RunFromGenerator(c.Request.Context(), "manual", req.Context)
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
