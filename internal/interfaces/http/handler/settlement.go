package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/mobidist/backend/internal/application/settlement"
	"github.com/mobidist/backend/internal/domain/order"
	"github.com/mobidist/backend/internal/domain/shared"
	domainsettlement "github.com/mobidist/backend/internal/domain/settlement"
)

// SettlementHandler handles settlement ledger API endpoints
type SettlementHandler struct {
	BaseHandler
	settlementService *settlement.SettlementService
	orderLookup       order.SnapshotLookup
}

// NewSettlementHandler creates a new SettlementHandler
func NewSettlementHandler(settlementService *settlement.SettlementService, orderLookup order.SnapshotLookup) *SettlementHandler {
	return &SettlementHandler{
		settlementService: settlementService,
		orderLookup:       orderLookup,
	}
}

// CreateSettlementRequest opens the ledger rows for an order
type CreateSettlementRequest struct {
	OrderID string `json:"order_id" binding:"required,uuid"`
}

// MarkPaidRequest records the disbursement of a settlement
type MarkPaidRequest struct {
	Method    string `json:"method" binding:"required"`
	Reference string `json:"reference"`
}

// ReasonRequest carries the operator's reason for a transition
type ReasonRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// NotesRequest updates the free-form notes on a settlement
type NotesRequest struct {
	Notes string `json:"notes" binding:"max=2000"`
}

// Create opens settlements for a settleable order
// POST /api/v1/settlements
func (h *SettlementHandler) Create(c *gin.Context) {
	var req CreateSettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	orderID, err := parseUUID(req.OrderID)
	if err != nil {
		h.BadRequest(c, "Invalid order_id")
		return
	}

	snapshot, err := h.orderLookup.FindByID(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if snapshot == nil {
		h.HandleError(c, shared.ErrNotFound)
		return
	}

	responses, err := h.settlementService.CreateForOrder(c.Request.Context(), *snapshot)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, responses)
}

// Get returns one settlement
// GET /api/v1/settlements/:id
func (h *SettlementHandler) Get(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	response, err := h.settlementService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}

// List returns settlements matching the filter with pagination
// GET /api/v1/settlements
func (h *SettlementHandler) List(c *gin.Context) {
	var filter settlement.SettlementListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	responses, total, err := h.settlementService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, responses, total, filter.Page, filter.PageSize)
}

// ListByOrder returns all settlements opened for one order
// GET /api/v1/orders/:id/settlements
func (h *SettlementHandler) ListByOrder(c *gin.Context) {
	orderID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	responses, err := h.settlementService.ListByOrder(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, responses)
}

// Approve moves a pending settlement to approved
// POST /api/v1/settlements/:id/approve
func (h *SettlementHandler) Approve(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	approverID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Approver identity required")
		return
	}

	response, err := h.settlementService.Approve(c.Request.Context(), id, approverID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}

// MarkPaid records the payment of an approved settlement
// POST /api/v1/settlements/:id/pay
func (h *SettlementHandler) MarkPaid(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req MarkPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	method := domainsettlement.PaymentMethod(req.Method)
	response, err := h.settlementService.MarkAsPaid(c.Request.Context(), id, method, req.Reference)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}

// MarkUnpaid flags an approved settlement whose payment bounced
// POST /api/v1/settlements/:id/unpaid
func (h *SettlementHandler) MarkUnpaid(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req ReasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	response, err := h.settlementService.MarkAsUnpaid(c.Request.Context(), id, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}

// Cancel voids a settlement that has not been paid
// POST /api/v1/settlements/:id/cancel
func (h *SettlementHandler) Cancel(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req ReasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	response, err := h.settlementService.Cancel(c.Request.Context(), id, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}

// SetNotes updates the notes on a settlement
// PUT /api/v1/settlements/:id/notes
func (h *SettlementHandler) SetNotes(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req NotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	response, err := h.settlementService.SetNotes(c.Request.Context(), id, req.Notes)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}
