package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/proptax/backend/internal/application/ledger"
	"github.com/proptax/backend/internal/interfaces/http/router"
)

// BillHandler serves /bills
type BillHandler struct {
	BaseHandler
	delivery *ledger.DeliveryService
}

// NewBillHandler creates a new BillHandler
func NewBillHandler(delivery *ledger.DeliveryService) *BillHandler {
	return &BillHandler{delivery: delivery}
}

// RegisterRoutes implements router.Registrar
func (h *BillHandler) RegisterRoutes(rg *gin.RouterGroup) {
	router.NewResource("/bills").
		PUT("/:id/delivery", h.UpdateDelivery).
		RegisterRoutes(rg)
}

// UpdateDelivery handles PUT /bills/:id/delivery
func (h *BillHandler) UpdateDelivery(c *gin.Context) {
	id, ok := h.parseID(c, "bill")
	if !ok {
		return
	}
	var req DeliveryRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.delivery.Transition(c.Request.Context(), id, req.Status, req.Notes, actorID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, DeliveryResponse{
		Success:  true,
		BillID:   result.BillID,
		Status:   string(result.Status),
		ServedAt: result.ServedAt,
		ServedBy: result.ServedBy,
		Notes:    result.Notes,
	})
}
