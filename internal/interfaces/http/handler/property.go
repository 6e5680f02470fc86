package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/proptax/backend/internal/application/ledger"
	"github.com/proptax/backend/internal/domain/shared"
	"github.com/proptax/backend/internal/interfaces/http/middleware"
	"github.com/proptax/backend/internal/interfaces/http/router"
)

// PropertyServices groups the application services behind the property routes
type PropertyServices struct {
	Properties    *ledger.PropertyService
	Inspector     *ledger.RelationshipInspector
	Deletion      *ledger.DeletionService
	Balance       *ledger.BalanceService
	Billing       *ledger.BillingService
	AuditTrail    *ledger.AuditTrailService
	DeleteLimiter *middleware.RateLimiter
}

// PropertyHandler serves /properties
type PropertyHandler struct {
	BaseHandler
	svc PropertyServices
}

// NewPropertyHandler creates a new PropertyHandler
func NewPropertyHandler(svc PropertyServices) *PropertyHandler {
	return &PropertyHandler{svc: svc}
}

// Routes returns the property route group
func (h *PropertyHandler) Routes() *router.Resource {
	deleteChain := []gin.HandlerFunc{middleware.RequireActor()}
	if h.svc.DeleteLimiter != nil {
		deleteChain = append(deleteChain, middleware.RateLimit(h.svc.DeleteLimiter))
	}
	deleteChain = append(deleteChain, h.Delete)

	return router.NewResource("/properties").
		POST("", h.Create).
		POST("/preview-bill", h.PreviewBill).
		GET("/:id", h.Get).
		PUT("/:id", h.Update).
		DELETE("/:id", deleteChain...).
		GET("/:id/relationships", h.Relationships).
		GET("/:id/balance", h.Balance).
		GET("/:id/audit-logs", h.AuditLogs).
		POST("/:id/bills", h.GenerateBill)
}

// RegisterRoutes implements router.Registrar
func (h *PropertyHandler) RegisterRoutes(rg *gin.RouterGroup) {
	h.Routes().RegisterRoutes(rg)
}

// Get handles GET /properties/:id
func (h *PropertyHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c, "property")
	if !ok {
		return
	}
	prop, err := h.svc.Properties.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"property": prop.Snapshot()})
}

// Create handles POST /properties
func (h *PropertyHandler) Create(c *gin.Context) {
	var req UpsertPropertyRequest
	if !h.bindJSON(c, &req) {
		return
	}
	prop, err := h.svc.Properties.Create(c.Request.Context(), req.input(), actorID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, gin.H{"property": prop.Snapshot()})
}

// Update handles PUT /properties/:id
func (h *PropertyHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "property")
	if !ok {
		return
	}
	var req UpsertPropertyRequest
	if !h.bindJSON(c, &req) {
		return
	}
	prop, err := h.svc.Properties.Update(c.Request.Context(), id, req.input(), actorID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"property": prop.Snapshot()})
}

// PreviewBill handles POST /properties/preview-bill
func (h *PropertyHandler) PreviewBill(c *gin.Context) {
	var req PreviewBillRequest
	if !h.bindJSON(c, &req) {
		return
	}
	preview, err := h.svc.Properties.PreviewBill(c.Request.Context(), req.input())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, preview)
}

// Relationships handles GET /properties/:id/relationships
func (h *PropertyHandler) Relationships(c *gin.Context) {
	id, ok := h.parseID(c, "property")
	if !ok {
		return
	}
	rel, err := h.svc.Inspector.Inspect(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rel)
}

// Delete handles DELETE /properties/:id
func (h *PropertyHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "property")
	if !ok {
		return
	}
	result, err := h.svc.Deletion.Execute(c.Request.Context(), id, actorID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, DeletionResponse{
		Success: true,
		Message: result.Message(),
		Data:    *result,
	})
}

// Balance handles GET /properties/:id/balance
func (h *PropertyHandler) Balance(c *gin.Context) {
	id, ok := h.parseID(c, "property")
	if !ok {
		return
	}
	balance, err := h.svc.Balance.CurrentBalance(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, balance)
}

// AuditLogs handles GET /properties/:id/audit-logs
func (h *PropertyHandler) AuditLogs(c *gin.Context) {
	id, ok := h.parseID(c, "property")
	if !ok {
		return
	}
	var q AuditLogQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	filter := shared.DefaultFilter()
	if q.Page > 0 {
		filter.Page = q.Page
	}
	if q.PageSize > 0 {
		filter.PageSize = q.PageSize
	}
	entries, err := h.svc.AuditTrail.ForProperty(c.Request.Context(), id, q.Action, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, newAuditLogResponses(entries))
}

// GenerateBill handles POST /properties/:id/bills
func (h *PropertyHandler) GenerateBill(c *gin.Context) {
	id, ok := h.parseID(c, "property")
	if !ok {
		return
	}
	var req GenerateBillRequest
	if !h.bindJSON(c, &req) {
		return
	}
	bill, err := h.svc.Billing.GenerateAnnualBill(c.Request.Context(), id, req.Year, actorID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, gin.H{"bill": newBillResponse(bill)})
}
