package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/mobidist/backend/internal/application/settlement"
	domainsettlement "github.com/mobidist/backend/internal/domain/settlement"
)

// GradeHandler handles grade tracking and grade bonus API endpoints
type GradeHandler struct {
	BaseHandler
	trackingService *settlement.GradeTrackingService
	bonusService    *settlement.GradeBonusService
}

// NewGradeHandler creates a new GradeHandler
func NewGradeHandler(trackingService *settlement.GradeTrackingService, bonusService *settlement.GradeBonusService) *GradeHandler {
	return &GradeHandler{
		trackingService: trackingService,
		bonusService:    bonusService,
	}
}

// SetupTracking opens a grade target for a company, policy and period
// POST /api/v1/grade-trackings
func (h *GradeHandler) SetupTracking(c *gin.Context) {
	var req settlement.SetupTrackingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	response, err := h.trackingService.SetupTarget(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, response)
}

// GetTracking returns one grade tracking
// GET /api/v1/grade-trackings/:id
func (h *GradeHandler) GetTracking(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	response, err := h.trackingService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}

// ListTrackingsByCompany returns all trackings for a company
// GET /api/v1/companies/:id/grade-trackings
func (h *GradeHandler) ListTrackingsByCompany(c *gin.Context) {
	companyID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	responses, err := h.trackingService.ListByCompany(c.Request.Context(), companyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, responses)
}

// Recount re-derives a tracking's counters from the settlement ledger
// POST /api/v1/grade-trackings/:id/recount
func (h *GradeHandler) Recount(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	response, err := h.trackingService.RecountTracking(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}

// GetHistory returns the achievement history of a tracking
// GET /api/v1/grade-trackings/:id/history
func (h *GradeHandler) GetHistory(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	responses, err := h.trackingService.GetHistory(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, responses)
}

// DeactivateTracking closes a tracking so it no longer accrues orders
// POST /api/v1/grade-trackings/:id/deactivate
func (h *GradeHandler) DeactivateTracking(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	response, err := h.trackingService.Deactivate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}

// GetBonus returns one grade bonus settlement
// GET /api/v1/grade-bonuses/:id
func (h *GradeHandler) GetBonus(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	response, err := h.bonusService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}

// ListBonusesByTracking returns the bonus ledger rows of a tracking
// GET /api/v1/grade-trackings/:id/bonuses
func (h *GradeHandler) ListBonusesByTracking(c *gin.Context) {
	trackingID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	responses, err := h.bonusService.ListByTracking(c.Request.Context(), trackingID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, responses)
}

// ListBonusesByCompany returns all bonuses for a company
// GET /api/v1/companies/:id/grade-bonuses
func (h *GradeHandler) ListBonusesByCompany(c *gin.Context) {
	companyID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	responses, err := h.bonusService.ListByCompany(c.Request.Context(), companyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, responses)
}

// ApproveBonus approves a pending bonus, freezing its amount
// POST /api/v1/grade-bonuses/:id/approve
func (h *GradeHandler) ApproveBonus(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	approverID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Approver identity required")
		return
	}

	response, err := h.bonusService.Approve(c.Request.Context(), id, approverID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}

// PayBonus records the disbursement of an approved bonus
// POST /api/v1/grade-bonuses/:id/pay
func (h *GradeHandler) PayBonus(c *gin.Context) {
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
	response, err := h.bonusService.MarkAsPaid(c.Request.Context(), id, method, req.Reference)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}

// CancelBonus voids an unpaid bonus
// POST /api/v1/grade-bonuses/:id/cancel
func (h *GradeHandler) CancelBonus(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req ReasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	response, err := h.bonusService.Cancel(c.Request.Context(), id, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}
