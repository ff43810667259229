package handler

import (
	"github.com/gin-gonic/gin"
	apppolicy "github.com/mobidist/backend/internal/application/policy"
	"github.com/mobidist/backend/internal/domain/policy"
)

// PolicyHandler handles commission policy API endpoints
type PolicyHandler struct {
	BaseHandler
	policyService *apppolicy.PolicyService
}

// NewPolicyHandler creates a new PolicyHandler
func NewPolicyHandler(policyService *apppolicy.PolicyService) *PolicyHandler {
	return &PolicyHandler{policyService: policyService}
}

// PolicyListQuery holds the list filter query parameters
type PolicyListQuery struct {
	Carrier  string `form:"carrier"`
	IsActive *bool  `form:"is_active"`
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// UpdateTiersRequest replaces a policy's grade schedule
type UpdateTiersRequest struct {
	GradeTiers []apppolicy.GradeTierRequest `json:"grade_tiers" binding:"required,min=1"`
}

// Create publishes a commission policy
// POST /api/v1/policies
func (h *PolicyHandler) Create(c *gin.Context) {
	var req apppolicy.CreatePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	response, err := h.policyService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, response)
}

// Get returns one policy
// GET /api/v1/policies/:id
func (h *PolicyHandler) Get(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	response, err := h.policyService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}

// List returns policies matching the filter
// GET /api/v1/policies
func (h *PolicyHandler) List(c *gin.Context) {
	var query PolicyListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	filter := policy.PolicyFilter{
		Search:   query.Search,
		IsActive: query.IsActive,
		Page:     query.Page,
		PageSize: query.PageSize,
	}
	if query.Carrier != "" {
		carrier := policy.Carrier(query.Carrier)
		if !carrier.IsValid() {
			h.BadRequest(c, "Unknown carrier: "+query.Carrier)
			return
		}
		filter.Carrier = &carrier
	}

	responses, err := h.policyService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, responses)
}

// UpdateTiers replaces a policy's grade schedule
// PUT /api/v1/policies/:id/tiers
func (h *PolicyHandler) UpdateTiers(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateTiersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	response, err := h.policyService.UpdateGradeTiers(c.Request.Context(), id, req.GradeTiers)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}

// Deactivate retires a policy
// POST /api/v1/policies/:id/deactivate
func (h *PolicyHandler) Deactivate(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	response, err := h.policyService.Deactivate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}

// ListRebates returns the rebate matrix of a policy
// GET /api/v1/policies/:id/rebates
func (h *PolicyHandler) ListRebates(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	responses, err := h.policyService.ListRebates(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, responses)
}

// SetRebate upserts one rebate matrix cell
// PUT /api/v1/policies/:id/rebates
func (h *PolicyHandler) SetRebate(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req apppolicy.SetRebateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	response, err := h.policyService.SetRebate(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}

// GetSplitRules returns the commission split configuration
// GET /api/v1/split-rules
func (h *PolicyHandler) GetSplitRules(c *gin.Context) {
	rules, err := h.policyService.GetSplitRules(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, rules)
}

// SetSplitRule upserts the split rule for one company type
// PUT /api/v1/split-rules
func (h *PolicyHandler) SetSplitRule(c *gin.Context) {
	var req apppolicy.SetSplitRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	rule, err := h.policyService.SetSplitRule(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, rule)
}
